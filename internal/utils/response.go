package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medichain-server/internal/domain"
)

// ResponseData represents the structure of a standard API response.
type ResponseData struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a standard success response.
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, ResponseData{
		Status:  http.StatusOK,
		Message: message,
		Data:    data,
	})
}

// Created sends a standard resource created response.
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, ResponseData{
		Status:  http.StatusCreated,
		Message: message,
		Data:    data,
	})
}

// Error sends a standard error response.
func Error(c *gin.Context, statusCode int, errorMessage string) {
	c.JSON(statusCode, ResponseData{
		Status:  statusCode,
		Message: "An error occurred",
		Error:   errorMessage,
	})
}

// BadRequest sends a 400 Bad Request error response.
func BadRequest(c *gin.Context, errorMessage string) {
	Error(c, http.StatusBadRequest, errorMessage)
}

// Unauthorized sends a 401 Unauthorized error response.
func Unauthorized(c *gin.Context, errorMessage string) {
	Error(c, http.StatusUnauthorized, errorMessage)
}

// Forbidden sends a 403 Forbidden error response.
func Forbidden(c *gin.Context, errorMessage string) {
	Error(c, http.StatusForbidden, errorMessage)
}

// NotFound sends a 404 Not Found error response.
func NotFound(c *gin.Context, errorMessage string) {
	Error(c, http.StatusNotFound, errorMessage)
}

// Conflict sends a 409 Conflict error response.
func Conflict(c *gin.Context, errorMessage string) {
	Error(c, http.StatusConflict, errorMessage)
}

// TooManyRequests sends a 429 Too Many Requests error response.
func TooManyRequests(c *gin.Context, errorMessage string) {
	Error(c, http.StatusTooManyRequests, errorMessage)
}

// InternalServerError sends a 500 Internal Server Error response.
func InternalServerError(c *gin.Context, errorMessage string) {
	Error(c, http.StatusInternalServerError, errorMessage)
}

// ServiceUnavailable sends a 503 Service Unavailable error response.
func ServiceUnavailable(c *gin.Context, errorMessage string) {
	Error(c, http.StatusServiceUnavailable, errorMessage)
}

// DomainError maps a service-layer failure onto the HTTP surface by kind.
func DomainError(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		BadRequest(c, err.Error())
	case domain.KindNotFound:
		NotFound(c, err.Error())
	case domain.KindForbidden:
		Forbidden(c, err.Error())
	case domain.KindConflict:
		Conflict(c, err.Error())
	case domain.KindLedgerUnavailable, domain.KindStorageUnavailable, domain.KindDeadlineExceeded:
		ServiceUnavailable(c, err.Error())
	default:
		InternalServerError(c, err.Error())
	}
}
