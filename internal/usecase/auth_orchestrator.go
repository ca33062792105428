package usecase

import (
	"context"
	"log/slog"
	"strings"

	"session-hub/internal/domain"
)

// AuthOrchestrator wires identity-provider lifecycle events to the session
// key broker and the identity resolver. It is a small state machine with
// three transitions: token issuance, session materialization, and logout.
type AuthOrchestrator struct {
	resolver domain.IdentityResolver
	broker   *SessionKeyBroker
	logger   *slog.Logger
}

// NewAuthOrchestrator creates a new auth orchestrator.
func NewAuthOrchestrator(resolver domain.IdentityResolver, broker *SessionKeyBroker, logger *slog.Logger) *AuthOrchestrator {
	return &AuthOrchestrator{resolver: resolver, broker: broker, logger: logger}
}

// OnTokenIssued handles the token-issuance transition. When the event carries
// federated-account evidence (login), it resolves or creates the internal
// user, mints a session key, and returns a new token. Without that evidence
// (a refresh within the same browser session) the current token passes
// through unchanged, so minting happens at most once per login.
func (o *AuthOrchestrator) OnTokenIssued(ctx context.Context, evt domain.TokenIssuedEvent) (domain.SessionToken, error) {
	if evt.Federated == nil {
		return evt.Current, nil
	}

	profile := *evt.Federated

	// Identity matching is keyed strictly on (provider, subject). Matching by
	// email would allow account takeover across providers sharing an address.
	user, err := o.resolver.FindByExternalProfileID(ctx, profile.Provider, profile.SubjectID)
	if err != nil {
		return domain.SessionToken{}, err
	}

	if user == nil {
		user, err = o.resolver.CreateUser(ctx, profile, defaultsFromProfile(profile))
		if err != nil {
			return domain.SessionToken{}, err
		}
		o.logger.InfoContext(ctx, "user created from federated login",
			"provider", profile.Provider,
			"user_id", user.ID)
	}

	key, err := o.broker.Mint(ctx, user.Projection())
	if err != nil {
		return domain.SessionToken{}, err
	}

	return domain.SessionToken{
		ExternalSubjectID: profile.SubjectID,
		Provider:          profile.Provider,
		SessionKey:        key,
	}, nil
}

// OnSessionMaterialized copies the session key and provider out of the token
// into explicit request-scoped state. Pure; fires on every request that needs
// session data.
func (o *AuthOrchestrator) OnSessionMaterialized(token domain.SessionToken) domain.RequestSession {
	return domain.RequestSession{
		SessionKey: token.SessionKey,
		Provider:   token.Provider,
	}
}

// OnLogout revokes the current request's session key before the logout
// redirect completes.
func (o *AuthOrchestrator) OnLogout(ctx context.Context, sess domain.RequestSession) error {
	return o.broker.Revoke(ctx, sess.SessionKey)
}

// defaultsFromProfile derives the defaults for a first-login user record: the
// display name comes from the provider profile and the account handle from
// the local part of the profile email with non-alphanumerics stripped.
func defaultsFromProfile(profile domain.ExternalProfile) domain.NewUserDefaults {
	handle := profile.Email
	if at := strings.IndexByte(handle, '@'); at >= 0 {
		handle = handle[:at]
	}
	handle = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, handle)

	return domain.NewUserDefaults{
		AccountID:   handle,
		DisplayName: profile.DisplayName,
	}
}
