package handler

import (
	"net/http"

	"session-hub/internal/domain"
	"session-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// UserHandler exposes the entity-update leg of the upload flow: after a
// promotion, the client persists the returned URL through PATCH /users/me.
type UserHandler struct {
	resolver  domain.IdentityResolver
	authorize *usecase.Authorize
	auth      *AuthHandler
}

// NewUserHandler creates a new user handler.
func NewUserHandler(resolver domain.IdentityResolver, authorize *usecase.Authorize, auth *AuthHandler) *UserHandler {
	return &UserHandler{resolver: resolver, authorize: authorize, auth: auth}
}

type updateUserRequest struct {
	AccountID   *string `json:"accountId" validate:"omitempty,min=1,max=64"`
	DisplayName *string `json:"displayName" validate:"omitempty,min=1,max=128"`
	Bio         *string `json:"bio" validate:"omitempty,max=1024"`
	AvatarURL   *string `json:"avatarUrl" validate:"omitempty,url"`
}

type userResponse struct {
	ID          string `json:"id"`
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
	Bio         string `json:"bio"`
}

// HandleUpdateMe processes PATCH /users/me. Only the authenticated user's own
// record can be patched.
func (h *UserHandler) HandleUpdateMe(c echo.Context) error {
	ctx := c.Request().Context()

	projection, err := h.authorize.Execute(ctx, h.auth.RequestSession(c), true)
	if err != nil {
		return mapDomainError(err)
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.resolver.UpdateUser(ctx, projection.ID, domain.UserPatch{
		AccountID:   req.AccountID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, userResponse{
		ID:          user.ID,
		AccountID:   user.AccountID,
		DisplayName: user.DisplayName,
		AvatarURL:   user.AvatarURL,
		Bio:         user.Bio,
	})
}
