// Package token implements the browser-held session token as a signed JWT.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"session-hub/internal/domain"
)

// JWTConfig holds session token signing configuration.
type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// sessionClaims carries the session token payload. The session key is the
// only state the browser ever holds; the projection stays server-side.
type sessionClaims struct {
	Provider   string `json:"provider,omitempty"`
	SessionKey string `json:"session_key,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec encodes session tokens as HS256-signed JWTs.
// Implements domain.SessionTokenCodec.
type JWTCodec struct {
	cfg JWTConfig
}

// NewJWTCodec creates a new session token codec.
func NewJWTCodec(cfg JWTConfig) *JWTCodec {
	return &JWTCodec{cfg: cfg}
}

// Encode signs the token into its cookie form.
func (c *JWTCodec) Encode(token domain.SessionToken) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Provider:   token.Provider,
		SessionKey: string(token.SessionKey),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.cfg.Issuer,
			Subject:   token.ExternalSubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrTokenGeneration, err)
	}
	return signed, nil
}

// Decode verifies the signed form and returns the session token. Any
// malformed, expired, or tampered input yields domain.ErrTokenInvalid; the
// caller treats that as anonymous rather than failing the request.
func (c *JWTCodec) Decode(raw string) (domain.SessionToken, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(c.cfg.Secret), nil
		},
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.SessionToken{}, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}

	return domain.SessionToken{
		ExternalSubjectID: claims.Subject,
		Provider:          claims.Provider,
		SessionKey:        domain.SessionKey(claims.SessionKey),
	}, nil
}
