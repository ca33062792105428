package domain

import "context"

// SessionStore is the key-value contract behind session indirection. Keys are
// opaque strings; values are JSON-serialized projections. Get reports a
// missing entry through the boolean, not an error.
type SessionStore interface {
	Put(ctx context.Context, key string, value string) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
}

// ObjectStorage is the contract over the object storage service. Uploads go
// directly from the client to storage through the URL returned by
// CreateUploadURL; this service never buffers object bytes.
type ObjectStorage interface {
	CreateUploadURL(ctx context.Context, key string) (string, error)
	Copy(ctx context.Context, srcKey, dstKey string) (string, error)
	Delete(ctx context.Context, key string) error
}

// IdentityResolver maps external identities to internal user records.
// FindByExternalProfileID returns (nil, nil) when no user exists for the
// (provider, externalID) pair.
type IdentityResolver interface {
	FindByExternalProfileID(ctx context.Context, provider, externalID string) (*User, error)
	CreateUser(ctx context.Context, profile ExternalProfile, defaults NewUserDefaults) (*User, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*User, error)
}

// IdentityVerifier validates an identity-provider session cookie and returns
// the federated profile it asserts.
type IdentityVerifier interface {
	VerifySession(ctx context.Context, cookie string) (*ExternalProfile, error)
}

// SessionTokenCodec encodes the browser-held session token into its transport
// form and back.
type SessionTokenCodec interface {
	Encode(token SessionToken) (string, error)
	Decode(raw string) (SessionToken, error)
}
