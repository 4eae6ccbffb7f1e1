package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/snapster/internal/common"
)

var (
	errPayloadTooLarge      = errors.New("file too large")
	errUnsupportedMediaType = errors.New("only png and jpeg images are accepted")
	errMissingFile          = errors.New("multipart field \"file\" is required")
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors onto HTTP status codes and client-safe messages.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, errUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, errMissingFile):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrInvalidMediaType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, authMessage(err)
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, common.ErrStorageWriteFailed),
		errors.Is(err, common.ErrStorageReadFailed),
		errors.Is(err, common.ErrStorageDeleteFailed):
		return http.StatusBadGateway, "storage unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return "session expired"
	default:
		return "unauthorized"
	}
}

// writeError records err on the context for the request log and renders it.
func writeError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
