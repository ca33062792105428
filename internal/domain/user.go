package domain

import "time"

// UserProjection is the minimal, non-sensitive subset of a user record that
// may be stored behind a session key. It never carries emails, secrets, or
// provider tokens.
type UserProjection struct {
	ID          string `json:"id"`
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

// User is the full internal user record held by the identity resolver.
type User struct {
	ID          string
	AccountID   string
	DisplayName string
	Email       string
	AvatarURL   string
	Bio         string
	Provider    string
	ExternalID  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Projection reduces a user record to the session-safe subset.
func (u *User) Projection() UserProjection {
	return UserProjection{
		ID:          u.ID,
		AccountID:   u.AccountID,
		DisplayName: u.DisplayName,
	}
}

// ExternalProfile is the federated profile returned by the identity provider
// after a successful login. Facts only, no decisions.
type ExternalProfile struct {
	Provider    string
	SubjectID   string
	Email       string
	DisplayName string
}

// NewUserDefaults holds the derived defaults applied when a first login
// creates an internal user record.
type NewUserDefaults struct {
	AccountID   string
	DisplayName string
}

// UserPatch is a partial update to a user record. Nil fields are untouched.
type UserPatch struct {
	AccountID   *string
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}
