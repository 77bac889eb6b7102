package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Daviipontes/Dev-Web/pkg/global"
)

// respondError maps a service error onto a status code and the error
// envelope. Storage details are logged, never returned.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, global.ErrValidation):
		status, message = http.StatusBadRequest, "Validation failed"
	case errors.Is(err, global.ErrNotFound):
		status, message = http.StatusNotFound, "Not found"
	case errors.Is(err, global.ErrConflict):
		status, message = http.StatusConflict, "Conflict"
	case errors.Is(err, global.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, global.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	default:
		slog.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, global.ErrorResponse(message, nil))
		return
	}

	var e *global.Error
	if errors.As(err, &e) && e.Message != "" {
		message = e.Message
	}
	c.JSON(status, global.ErrorResponse(message, global.FieldErrors(err)))
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request body", []global.ValidationError{
		{Field: "body", Message: err.Error(), Code: "bind_error"},
	}))
}
