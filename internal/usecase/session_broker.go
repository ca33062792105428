package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"session-hub/internal/domain"

	"github.com/google/uuid"
)

// SessionKeyBroker decouples the authenticated identity from client-visible
// session state. It mints opaque keys bound to user projections, resolves
// them on every request, and revokes them at logout.
type SessionKeyBroker struct {
	store  domain.SessionStore
	logger *slog.Logger
}

// NewSessionKeyBroker creates a new session key broker.
func NewSessionKeyBroker(store domain.SessionStore, logger *slog.Logger) *SessionKeyBroker {
	return &SessionKeyBroker{store: store, logger: logger}
}

// Mint generates a fresh session key for the projection and writes the
// serialized projection to the store. Every call allocates a new key, so
// concurrent logins by the same identity never collide.
func (b *SessionKeyBroker) Mint(ctx context.Context, projection domain.UserProjection) (domain.SessionKey, error) {
	key := domain.SessionKey(fmt.Sprintf("auth:%s:%s", projection.ID, uuid.NewString()))

	payload, err := json.Marshal(projection)
	if err != nil {
		return "", fmt.Errorf("serialize projection: %w", err)
	}

	if err := b.store.Put(ctx, string(key), string(payload)); err != nil {
		return "", err
	}

	b.logger.InfoContext(ctx, "session key minted", "user_id", projection.ID)
	return key, nil
}

// Resolve maps a session key back to its projection. An empty key or a
// missing store entry means anonymous: a revoked or expired key is
// indistinguishable from "never logged in". With strict set, anonymous is
// reported as domain.ErrUnauthorized instead of nil.
func (b *SessionKeyBroker) Resolve(ctx context.Context, key domain.SessionKey, strict bool) (*domain.UserProjection, error) {
	if key == "" {
		return b.anonymous(strict)
	}

	payload, found, err := b.store.Get(ctx, string(key))
	if err != nil {
		return nil, err
	}
	if !found {
		return b.anonymous(strict)
	}

	var projection domain.UserProjection
	if err := json.Unmarshal([]byte(payload), &projection); err != nil {
		return nil, fmt.Errorf("deserialize projection: %w", err)
	}
	return &projection, nil
}

// Revoke deletes the store entry for the key. Revoking an unknown or
// already-revoked key is a no-op.
func (b *SessionKeyBroker) Revoke(ctx context.Context, key domain.SessionKey) error {
	if key == "" {
		return nil
	}
	if err := b.store.Delete(ctx, string(key)); err != nil {
		return err
	}
	b.logger.InfoContext(ctx, "session key revoked")
	return nil
}

func (b *SessionKeyBroker) anonymous(strict bool) (*domain.UserProjection, error) {
	if strict {
		return nil, domain.ErrUnauthorized
	}
	return nil, nil
}
