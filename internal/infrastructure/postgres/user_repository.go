// Package postgres implements the identity resolver contract against
// PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"session-hub/internal/domain"
)

// DatabaseIface defines the database surface used by the repository. It is
// satisfied by *pgxpool.Pool and by pgxmock in tests.
type DatabaseIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements domain.IdentityResolver for PostgreSQL.
type UserRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db DatabaseIface, logger *slog.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger.With("component", "user_repository"),
	}
}

const userColumns = `id, account_id, display_name, email, avatar_url, bio, provider, external_id, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.AccountID,
		&user.DisplayName,
		&user.Email,
		&user.AvatarURL,
		&user.Bio,
		&user.Provider,
		&user.ExternalID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByExternalProfileID looks up the user owning the (provider, externalID)
// pair. Returns (nil, nil) when no such user exists.
func (r *UserRepository) FindByExternalProfileID(ctx context.Context, provider, externalID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider = $1 AND external_id = $2`

	user, err := scanUser(r.db.QueryRow(ctx, query, provider, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityUnavailable, err)
	}
	return user, nil
}

// CreateUser inserts a new user record for a first federated login.
func (r *UserRepository) CreateUser(ctx context.Context, profile domain.ExternalProfile, defaults domain.NewUserDefaults) (*domain.User, error) {
	query := `
		INSERT INTO users (id, account_id, display_name, email, avatar_url, bio, provider, external_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, '', '', $5, $6, now(), now())
		RETURNING ` + userColumns

	id := uuid.NewString()
	user, err := scanUser(r.db.QueryRow(ctx, query,
		id,
		defaults.AccountID,
		defaults.DisplayName,
		profile.Email,
		profile.Provider,
		profile.SubjectID,
	))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityUnavailable, err)
	}

	r.logger.InfoContext(ctx, "user created", "user_id", user.ID, "provider", profile.Provider)
	return user, nil
}

// UpdateUser applies a partial patch to a user record and returns the updated
// row. Nil patch fields leave the column untouched.
func (r *UserRepository) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	query := `
		UPDATE users SET
			account_id   = COALESCE($2, account_id),
			display_name = COALESCE($3, display_name),
			bio          = COALESCE($4, bio),
			avatar_url   = COALESCE($5, avatar_url),
			updated_at   = now()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query,
		id,
		patch.AccountID,
		patch.DisplayName,
		patch.Bio,
		patch.AvatarURL,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %s", domain.ErrIdentityUnavailable, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityUnavailable, err)
	}
	return user, nil
}
