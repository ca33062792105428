package domain

// SessionKey is an opaque reference to a stored user projection. Consumers
// must not parse it beyond emptiness checks; it is a capability, not a
// structured identifier.
type SessionKey string

// SessionToken is the browser-held token threaded through a single session's
// requests. It is created once at the login transition and passed through
// unchanged on every later request until logout destroys it.
type SessionToken struct {
	ExternalSubjectID string
	Provider          string
	SessionKey        SessionKey
}

// IsZero reports whether the token carries no session at all.
func (t SessionToken) IsZero() bool {
	return t.ExternalSubjectID == "" && t.Provider == "" && t.SessionKey == ""
}

// RequestSession is the explicit request-scoped session state handed to
// handlers. Constructed once at request entry, passed by value, never read
// from a global.
type RequestSession struct {
	SessionKey SessionKey
	Provider   string
}

// TokenIssuedEvent is the immutable payload of the token-issuance transition.
// Federated is non-nil only at the login transition; on token refreshes within
// the same browser session it is nil and Current must pass through unchanged.
type TokenIssuedEvent struct {
	Current   SessionToken
	Federated *ExternalProfile
}
