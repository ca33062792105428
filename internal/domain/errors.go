package domain

import "errors"

// Authorization errors.
var (
	ErrUnauthorized = errors.New("authentication required")
	ErrTokenInvalid = errors.New("session token invalid")
)

// Upload errors.
var (
	ErrPayloadTooLarge = errors.New("upload exceeds size limit")
	ErrObjectNotFound  = errors.New("staged object not found")
)

// External service errors. Fatal to the enclosing request; never retried at
// this layer.
var (
	ErrStoreUnavailable    = errors.New("session store unavailable")
	ErrStorageUnavailable  = errors.New("object storage unavailable")
	ErrIdentityUnavailable = errors.New("identity provider unavailable")
)

// Token errors.
var (
	ErrTokenGeneration = errors.New("token generation failed")
)
