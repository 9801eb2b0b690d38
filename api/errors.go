package api

import (
	"errors"
	"net/http"

	"summa/auth"
	"summa/domain/entities"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []entities.FieldError `json:"fields,omitempty"`
}

// statusFor maps domain errors to HTTP status codes. A stored record that
// fails its schema is a server fault even though it wraps a ValidationError.
func statusFor(err error) int {
	var decodeErr *entities.DecodeError
	switch {
	case errors.As(err, &decodeErr):
		return http.StatusInternalServerError
	case entities.IsValidation(err):
		return http.StatusBadRequest
	case entities.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, entities.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, entities.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var validationErr *entities.ValidationError
	if status == http.StatusBadRequest && errors.As(err, &validationErr) {
		resp.Fields = validationErr.Fields
	}

	if status == http.StatusInternalServerError {
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"route":  c.FullPath(),
		}).WithError(err).Error("Request failed")
		resp = errorResponse{Error: "internal error"}
	}

	c.AbortWithStatusJSON(status, resp)
}

func abortBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}
