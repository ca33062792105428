package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"session-hub/internal/domain"

	kratos "github.com/ory/kratos-client-go"
)

// KratosGateway verifies identity-provider sessions against Ory Kratos.
// Implements domain.IdentityVerifier. The OAuth exchange itself happens
// inside Kratos; this gateway only consumes its outcome.
type KratosGateway struct {
	client *kratos.APIClient
}

// NewKratosGateway creates a new Kratos gateway with tuned HTTP transport.
func NewKratosGateway(baseURL string, timeout time.Duration) *KratosGateway {
	configuration := kratos.NewConfiguration()
	configuration.Servers = []kratos.ServerConfiguration{
		{URL: baseURL},
	}

	configuration.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &KratosGateway{client: kratos.NewAPIClient(configuration)}
}

// VerifySession validates the identity-provider session cookie and returns
// the federated profile it asserts. The subject is the Kratos identity id;
// the provider comes from the OIDC authentication method when present.
func (g *KratosGateway) VerifySession(ctx context.Context, cookie string) (*domain.ExternalProfile, error) {
	if cookie == "" {
		return nil, domain.ErrUnauthorized
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	session, resp, err := g.client.FrontendAPI.ToSession(ctx).Cookie(cookie).Execute()
	if err != nil {
		if resp != nil {
			if resp.StatusCode == http.StatusUnauthorized {
				return nil, domain.ErrUnauthorized
			}
			return nil, fmt.Errorf("%w: kratos returned status %d", domain.ErrIdentityUnavailable, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrIdentityUnavailable, err)
	}

	if session.Active != nil && !*session.Active {
		return nil, domain.ErrUnauthorized
	}
	if session.Identity == nil {
		return nil, domain.ErrUnauthorized
	}

	profile := &domain.ExternalProfile{
		Provider:  "kratos",
		SubjectID: session.Identity.Id,
	}

	for _, method := range session.AuthenticationMethods {
		if method.Method != nil && *method.Method == "oidc" && method.Provider != nil {
			profile.Provider = *method.Provider
			break
		}
	}

	if traits, ok := session.Identity.Traits.(map[string]interface{}); ok {
		if email, ok := traits["email"].(string); ok {
			profile.Email = email
		}
		if name, ok := traits["name"].(string); ok {
			profile.DisplayName = name
		}
	}

	return profile, nil
}
