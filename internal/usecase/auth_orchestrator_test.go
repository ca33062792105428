package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"session-hub/internal/domain"

	"github.com/stretchr/testify/assert"
)

// mockResolver implements domain.IdentityResolver for testing.
type mockResolver struct {
	users    map[string]*domain.User
	created  int
	findErr  error
	nextID   int
	defaults domain.NewUserDefaults
}

func newMockResolver() *mockResolver {
	return &mockResolver{users: make(map[string]*domain.User)}
}

func identityKey(provider, externalID string) string {
	return provider + "/" + externalID
}

func (m *mockResolver) FindByExternalProfileID(_ context.Context, provider, externalID string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.users[identityKey(provider, externalID)], nil
}

func (m *mockResolver) CreateUser(_ context.Context, profile domain.ExternalProfile, defaults domain.NewUserDefaults) (*domain.User, error) {
	m.created++
	m.nextID++
	m.defaults = defaults
	user := &domain.User{
		ID:          fmt.Sprintf("u%d", m.nextID),
		AccountID:   defaults.AccountID,
		DisplayName: defaults.DisplayName,
		Email:       profile.Email,
		Provider:    profile.Provider,
		ExternalID:  profile.SubjectID,
	}
	m.users[identityKey(profile.Provider, profile.SubjectID)] = user
	return user, nil
}

func (m *mockResolver) UpdateUser(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			if patch.DisplayName != nil {
				user.DisplayName = *patch.DisplayName
			}
			return user, nil
		}
	}
	return nil, fmt.Errorf("user %s not found", id)
}

func newOrchestrator(resolver domain.IdentityResolver) (*AuthOrchestrator, *SessionKeyBroker, *mockStore) {
	store := newMockStore()
	broker := NewSessionKeyBroker(store, slog.Default())
	return NewAuthOrchestrator(resolver, broker, slog.Default()), broker, store
}

func TestAuthOrchestrator_OnTokenIssued_PassThroughWithoutFederatedEvidence(t *testing.T) {
	orchestrator, _, store := newOrchestrator(newMockResolver())

	current := domain.SessionToken{
		ExternalSubjectID: "sub-1",
		Provider:          "google",
		SessionKey:        "auth:u1:existing",
	}

	token, err := orchestrator.OnTokenIssued(context.Background(), domain.TokenIssuedEvent{Current: current})

	assert.NoError(t, err)
	assert.Equal(t, current, token, "refresh passes the token through unchanged")
	assert.Empty(t, store.entries, "no mint on refresh")
}

func TestAuthOrchestrator_OnTokenIssued_CreatesUserOnFirstLogin(t *testing.T) {
	resolver := newMockResolver()
	orchestrator, broker, _ := newOrchestrator(resolver)

	token, err := orchestrator.OnTokenIssued(context.Background(), domain.TokenIssuedEvent{
		Federated: &domain.ExternalProfile{
			Provider:    "google",
			SubjectID:   "sub-42",
			Email:       "jane.doe+test@example.com",
			DisplayName: "Jane Doe",
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, resolver.created)
	assert.Equal(t, "google", token.Provider)
	assert.Equal(t, "sub-42", token.ExternalSubjectID)
	assert.NotEmpty(t, token.SessionKey)

	// Default handle strips the email domain and non-alphanumeric separators.
	assert.Equal(t, "janedoetest", resolver.defaults.AccountID)
	assert.Equal(t, "Jane Doe", resolver.defaults.DisplayName)

	projection, err := broker.Resolve(context.Background(), token.SessionKey, false)
	assert.NoError(t, err)
	assert.Equal(t, "janedoetest", projection.AccountID)
}

func TestAuthOrchestrator_OnTokenIssued_ReusesExistingUser(t *testing.T) {
	resolver := newMockResolver()
	orchestrator, _, _ := newOrchestrator(resolver)

	profile := &domain.ExternalProfile{
		Provider:    "google",
		SubjectID:   "sub-7",
		Email:       "a@b.test",
		DisplayName: "A",
	}

	first, err := orchestrator.OnTokenIssued(context.Background(), domain.TokenIssuedEvent{Federated: profile})
	assert.NoError(t, err)
	second, err := orchestrator.OnTokenIssued(context.Background(), domain.TokenIssuedEvent{Federated: profile})
	assert.NoError(t, err)

	assert.Equal(t, 1, resolver.created, "second login reuses the user record")
	assert.NotEqual(t, first.SessionKey, second.SessionKey, "each login mints a fresh key")
}

func TestAuthOrchestrator_TwoLoginsResolveToSameUser(t *testing.T) {
	resolver := newMockResolver()
	orchestrator, broker, _ := newOrchestrator(resolver)

	profile := &domain.ExternalProfile{Provider: "google", SubjectID: "sub-9", Email: "x@y.test", DisplayName: "X"}

	first, err := orchestrator.OnTokenIssued(context.Background(), domain.TokenIssuedEvent{Federated: profile})
	assert.NoError(t, err)
	second, err := orchestrator.OnTokenIssued(context.Background(), domain.TokenIssuedEvent{Federated: profile})
	assert.NoError(t, err)

	p1, err := broker.Resolve(context.Background(), first.SessionKey, false)
	assert.NoError(t, err)
	p2, err := broker.Resolve(context.Background(), second.SessionKey, false)
	assert.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)
}

func TestAuthOrchestrator_OnSessionMaterialized(t *testing.T) {
	orchestrator, _, _ := newOrchestrator(newMockResolver())

	sess := orchestrator.OnSessionMaterialized(domain.SessionToken{
		ExternalSubjectID: "sub-1",
		Provider:          "google",
		SessionKey:        "auth:u1:abc",
	})

	assert.Equal(t, domain.RequestSession{SessionKey: "auth:u1:abc", Provider: "google"}, sess)
}

func TestAuthOrchestrator_OnLogout_RevokesKey(t *testing.T) {
	resolver := newMockResolver()
	orchestrator, broker, _ := newOrchestrator(resolver)

	token, err := orchestrator.OnTokenIssued(context.Background(), domain.TokenIssuedEvent{
		Federated: &domain.ExternalProfile{Provider: "google", SubjectID: "sub-1", Email: "a@b.test", DisplayName: "A"},
	})
	assert.NoError(t, err)

	sess := orchestrator.OnSessionMaterialized(token)
	assert.NoError(t, orchestrator.OnLogout(context.Background(), sess))

	projection, err := broker.Resolve(context.Background(), token.SessionKey, false)
	assert.NoError(t, err)
	assert.Nil(t, projection)
}

func TestDefaultsFromProfile_NoEmail(t *testing.T) {
	defaults := defaultsFromProfile(domain.ExternalProfile{DisplayName: "Jane"})
	assert.Empty(t, defaults.AccountID)
	assert.Equal(t, "Jane", defaults.DisplayName)
}
