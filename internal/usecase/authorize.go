package usecase

import (
	"context"

	"session-hub/internal/domain"
)

// Authorize determines the acting user for a request. It is the only place
// route handlers resolve the current identity.
type Authorize struct {
	broker *SessionKeyBroker
}

// NewAuthorize creates a new authorize usecase.
func NewAuthorize(broker *SessionKeyBroker) *Authorize {
	return &Authorize{broker: broker}
}

// Execute extracts the session key from the request-scoped session state and
// resolves it. With throwWhenUnauthenticated set, a missing key or missing
// projection fails with domain.ErrUnauthorized; otherwise both yield nil,
// keeping read paths resilient to key expiry or eviction.
func (uc *Authorize) Execute(ctx context.Context, sess domain.RequestSession, throwWhenUnauthenticated bool) (*domain.UserProjection, error) {
	if sess.SessionKey == "" {
		if throwWhenUnauthenticated {
			return nil, domain.ErrUnauthorized
		}
		return nil, nil
	}
	return uc.broker.Resolve(ctx, sess.SessionKey, throwWhenUnauthenticated)
}
