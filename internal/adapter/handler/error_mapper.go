package handler

import (
	"errors"
	"net/http"

	"session-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrTokenInvalid):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrPayloadTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "upload exceeds size limit")

	case errors.Is(err, domain.ErrObjectNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "staged object not found")

	case errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrStorageUnavailable),
		errors.Is(err, domain.ErrIdentityUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream service unavailable")

	case errors.Is(err, domain.ErrTokenGeneration):
		return echo.NewHTTPError(http.StatusInternalServerError, "token generation error")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
