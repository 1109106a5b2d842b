package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eslsoft/lexdrill/internal/entity"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps domain errors onto HTTP status codes. Unknown errors
// become opaque 500s so storage details never leak to clients.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrWordNotFound),
		errors.Is(err, entity.ErrProgressNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, entity.ErrInvalidWordID),
		errors.Is(err, entity.ErrInvalidWordTerm),
		errors.Is(err, entity.ErrInvalidUserID),
		errors.Is(err, entity.ErrInvalidReviewResult),
		errors.Is(err, entity.ErrInvalidReviewMode),
		errors.Is(err, entity.ErrInvalidGameKind),
		errors.Is(err, entity.ErrInvalidFilter):
		return c.JSON(http.StatusBadRequest, errorResponse{Code: "INVALID_ARGUMENT", Message: err.Error()})
	case errors.Is(err, entity.ErrDuplicateWord),
		errors.Is(err, entity.ErrDuplicateProgress),
		errors.Is(err, entity.ErrConflict):
		return c.JSON(http.StatusConflict, errorResponse{Code: "CONFLICT", Message: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: "internal error"})
	}
}
