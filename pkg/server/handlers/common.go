package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/graphrecall"
	"github.com/soundprediction/graphrecall/pkg/server/dto"
)

// respondError maps domain errors onto HTTP status codes.
// Parameter problems are the caller's fault, a missing or populating
// index is a temporary condition, and everything else is a server error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, graphrecall.ErrInvalidParameter):
		writeError(c, http.StatusBadRequest, "invalid_parameter", err)
	case errors.Is(err, graphrecall.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, graphrecall.ErrIndexNotReady):
		writeError(c, http.StatusServiceUnavailable, "index_not_ready", err)
	case errors.Is(err, graphrecall.ErrIndexConflict):
		writeError(c, http.StatusConflict, "index_conflict", err)
	default:
		writeError(c, http.StatusInternalServerError, "internal_error", err)
	}
}

func writeError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

func badRequest(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, "invalid_request", err)
}
