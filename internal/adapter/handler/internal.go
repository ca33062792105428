package handler

import (
	"net/http"

	"session-hub/internal/domain"
	"session-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// InternalHandler resolves opaque session keys for sibling backend services.
// Routes mounting it sit behind the shared-secret middleware.
type InternalHandler struct {
	authorize *usecase.Authorize
}

// NewInternalHandler creates a new internal handler.
func NewInternalHandler(authorize *usecase.Authorize) *InternalHandler {
	return &InternalHandler{authorize: authorize}
}

// HandleResolveSession processes GET /internal/sessions/:key. Unlike the
// public session endpoint, an unknown key is a 404 here: the calling service
// needs to distinguish "no such session" from its own auth failures.
func (h *InternalHandler) HandleResolveSession(c echo.Context) error {
	key := sessionKeyFromPath(c)
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing session key")
	}

	projection, err := h.authorize.Execute(c.Request().Context(),
		domain.RequestSession{SessionKey: key}, false)
	if err != nil {
		return mapDomainError(err)
	}
	if projection == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	return c.JSON(http.StatusOK, sessionUser{
		ID:          projection.ID,
		AccountID:   projection.AccountID,
		DisplayName: projection.DisplayName,
	})
}
