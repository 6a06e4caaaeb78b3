package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carexpert-server/internal/apperr"
)

// ResponseData is the envelope every careXpert client expects.
type ResponseData struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		StatusCode: http.StatusOK,
		Message:    message,
		Success:    true,
		Data:       data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		StatusCode: http.StatusCreated,
		Message:    message,
		Success:    true,
		Data:       data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, ResponseData{
		StatusCode: statusCode,
		Message:    message,
		Success:    false,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// DomainError translates a service-layer error into the envelope. Invalid
// transitions surface as 409 so a dashboard refreshing stale state can tell
// "already changed" apart from a plain bad request.
func DomainError(c *gin.Context, err error) {
	var validation *apperr.ValidationError
	var forbidden *apperr.ForbiddenError
	var invalidState *apperr.InvalidStateError
	var notFound *apperr.NotFoundError
	switch {
	case errors.As(err, &validation):
		BadRequest(c, validation.Error())
	case errors.As(err, &forbidden):
		Forbidden(c, forbidden.Error())
	case errors.As(err, &invalidState):
		Conflict(c, invalidState.Error())
	case errors.As(err, &notFound):
		NotFound(c, notFound.Error())
	default:
		InternalServerError(c, err.Error())
	}
}
