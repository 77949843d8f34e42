package controller

import (
	"ctchen222/book-catalog/internal/api/response"
	"ctchen222/book-catalog/internal/api/service"
	"ctchen222/book-catalog/internal/auth"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// writeError maps service and auth errors onto the error envelope. Anything
// unrecognised is logged and hidden behind a generic 500.
func writeError(c *gin.Context, err error) {
	var weak *service.WeakCredentialError
	var dup *service.DuplicateTitlesError

	switch {
	case errors.As(err, &weak):
		response.ErrorResponse(c, http.StatusBadRequest, weak.Error())
	case errors.Is(err, service.ErrInvalidPageParams),
		errors.Is(err, service.ErrPageOutOfRange),
		errors.Is(err, service.ErrEmptyBatch),
		errors.Is(err, service.ErrEmptyIDList),
		errors.Is(err, service.ErrInvalidBook):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicateIdentity), errors.As(err, &dup):
		response.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredential), auth.IsTokenError(err):
		response.ErrorResponse(c, http.StatusUnauthorized, response.ErrUnauthorized.Message)
	case errors.Is(err, service.ErrTooManyAttempts):
		response.ErrorResponse(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, service.ErrNotFound):
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, response.ErrInternal.Message)
	}
}
