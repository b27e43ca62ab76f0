package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/pkg/response"
	"github.com/oksasatya/go-recipe-api/pkg/validation"
)

// writeError maps application errors onto HTTP responses.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *app.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "validation failed", validation.FieldErrors(verr.Fields))
	case errors.Is(err, app.ErrInvalidCredentials):
		response.Error[any](c, http.StatusBadRequest, "invalid credentials", validation.FieldErrors{
			"non_field_errors": {"unable to authenticate with provided credentials"},
		})
	case errors.Is(err, app.ErrNotFound):
		response.Error[any](c, http.StatusNotFound, "not found", nil)
	case errors.Is(err, app.ErrSearchUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, "search unavailable", nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

func badPayload(c *gin.Context, err error) {
	response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
}
