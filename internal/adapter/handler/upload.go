package handler

import (
	"net/http"

	"session-hub/internal/domain"
	"session-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// UploadHandler exposes the upload broker: staging on POST /uploads,
// promotion on POST /uploads/promote. Both are mutation-style operations and
// require an authenticated actor.
type UploadHandler struct {
	broker    *usecase.UploadBroker
	authorize *usecase.Authorize
	auth      *AuthHandler
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(broker *usecase.UploadBroker, authorize *usecase.Authorize, auth *AuthHandler) *UploadHandler {
	return &UploadHandler{broker: broker, authorize: authorize, auth: auth}
}

type beginUploadRequest struct {
	Filename    string `json:"filename" validate:"required"`
	Size        int64  `json:"size" validate:"gte=0"`
	ContentType string `json:"contentType"`
}

type beginUploadResponse struct {
	TmpKey    string `json:"tmpKey"`
	UploadURL string `json:"uploadUrl"`
}

// HandleBegin processes POST /uploads. The response carries a presigned URL;
// the client pushes the bytes directly to storage with a PUT matching the
// declared content type.
func (h *UploadHandler) HandleBegin(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.authorize.Execute(ctx, h.auth.RequestSession(c), true); err != nil {
		return mapDomainError(err)
	}

	var req beginUploadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.broker.BeginUpload(ctx, domain.FileDescriptor{
		Name:        req.Filename,
		Size:        req.Size,
		ContentType: req.ContentType,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, beginUploadResponse{
		TmpKey:    result.StagedKey,
		UploadURL: result.UploadURL,
	})
}

type promoteRequest struct {
	TmpKey     string `json:"tmpKey" validate:"required"`
	EntityName string `json:"entityName" validate:"required"`
	FieldName  string `json:"fieldName" validate:"required"`
	EntityID   string `json:"entityId" validate:"required"`
}

type promoteResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// HandlePromote processes POST /uploads/promote. Promotion copies the staged
// object to its permanent key; persisting the returned URL on the owning
// entity is a separate call (PATCH /users/me for avatars).
func (h *UploadHandler) HandlePromote(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := h.authorize.Execute(ctx, h.auth.RequestSession(c), true); err != nil {
		return mapDomainError(err)
	}

	var req promoteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.broker.Promote(ctx, req.TmpKey, domain.PromoteTarget{
		EntityName: req.EntityName,
		FieldName:  req.FieldName,
		EntityID:   req.EntityID,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, promoteResponse{
		Key: result.PermanentKey,
		URL: result.PublicURL,
	})
}
