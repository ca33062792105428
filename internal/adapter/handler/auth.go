package handler

import (
	"net/http"
	"strings"
	"time"

	"session-hub/internal/domain"
	"session-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

const (
	// sessionCookieName is the browser-held token cookie. It carries the
	// opaque session key, never the projection itself.
	sessionCookieName = "session_hub_token"

	// idpCookieName is the identity-provider session cookie set by Kratos.
	idpCookieName = "ory_kratos_session"
)

// AuthHandler drives the identity-provider lifecycle transitions over HTTP:
// token issuance and session materialization on /auth/session, revocation on
// /auth/logout.
type AuthHandler struct {
	orchestrator  *usecase.AuthOrchestrator
	authorize     *usecase.Authorize
	verifier      domain.IdentityVerifier
	codec         domain.SessionTokenCodec
	cookieTTL     time.Duration
	secureCookies bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	orchestrator *usecase.AuthOrchestrator,
	authorize *usecase.Authorize,
	verifier domain.IdentityVerifier,
	codec domain.SessionTokenCodec,
	cookieTTL time.Duration,
	secureCookies bool,
) *AuthHandler {
	return &AuthHandler{
		orchestrator:  orchestrator,
		authorize:     authorize,
		verifier:      verifier,
		codec:         codec,
		cookieTTL:     cookieTTL,
		secureCookies: secureCookies,
	}
}

// sessionToken decodes the broker token cookie. An absent or invalid cookie
// yields the zero token: the request is simply anonymous.
func (h *AuthHandler) sessionToken(c echo.Context) domain.SessionToken {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil {
		return domain.SessionToken{}
	}
	token, err := h.codec.Decode(cookie.Value)
	if err != nil {
		return domain.SessionToken{}
	}
	return token
}

// RequestSession builds the explicit request-scoped session state other
// handlers receive. Constructed once at request entry, passed by value.
func (h *AuthHandler) RequestSession(c echo.Context) domain.RequestSession {
	return h.orchestrator.OnSessionMaterialized(h.sessionToken(c))
}

// sessionUser is the user object returned to the frontend.
type sessionUser struct {
	ID          string `json:"id"`
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
}

// sessionResponse is the /auth/session JSON body.
type sessionResponse struct {
	OK   bool         `json:"ok"`
	User *sessionUser `json:"user"`
}

// HandleSession processes GET /auth/session. A request arriving with
// identity-provider evidence but no broker token is the login transition:
// the token is minted once and set as a cookie. Every other request passes
// its token through unchanged and merely resolves the projection.
func (h *AuthHandler) HandleSession(c echo.Context) error {
	ctx := c.Request().Context()
	current := h.sessionToken(c)

	evt := domain.TokenIssuedEvent{Current: current}
	if current.IsZero() && h.hasIdentityProviderCookie(c) {
		profile, err := h.verifier.VerifySession(ctx, c.Request().Header.Get("Cookie"))
		switch {
		case err == nil:
			evt.Federated = profile
		case mapDomainError(err).Code == http.StatusUnauthorized:
			// Stale IdP cookie: stay anonymous.
		default:
			return mapDomainError(err)
		}
	}

	token, err := h.orchestrator.OnTokenIssued(ctx, evt)
	if err != nil {
		return mapDomainError(err)
	}

	if token != current && !token.IsZero() {
		encoded, err := h.codec.Encode(token)
		if err != nil {
			return mapDomainError(err)
		}
		c.SetCookie(h.tokenCookie(encoded, h.cookieTTL))
	}

	sess := h.orchestrator.OnSessionMaterialized(token)
	projection, err := h.authorize.Execute(ctx, sess, false)
	if err != nil {
		return mapDomainError(err)
	}

	if projection == nil {
		return c.JSON(http.StatusOK, sessionResponse{OK: false, User: nil})
	}
	return c.JSON(http.StatusOK, sessionResponse{
		OK: true,
		User: &sessionUser{
			ID:          projection.ID,
			AccountID:   projection.AccountID,
			DisplayName: projection.DisplayName,
		},
	})
}

// HandleLogout processes POST /auth/logout: revoke the session key, destroy
// the token cookie, redirect home.
func (h *AuthHandler) HandleLogout(c echo.Context) error {
	sess := h.RequestSession(c)

	if err := h.orchestrator.OnLogout(c.Request().Context(), sess); err != nil {
		return mapDomainError(err)
	}

	c.SetCookie(h.tokenCookie("", -time.Hour))
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) hasIdentityProviderCookie(c echo.Context) bool {
	_, err := c.Cookie(idpCookieName)
	return err == nil
}

func (h *AuthHandler) tokenCookie(value string, ttl time.Duration) *http.Cookie {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		cookie.MaxAge = -1
	} else if ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	return cookie
}

// sessionKeyFromPath is used by the internal resolution endpoint, where the
// key arrives as a path parameter rather than a cookie.
func sessionKeyFromPath(c echo.Context) domain.SessionKey {
	return domain.SessionKey(strings.TrimSpace(c.Param("key")))
}
