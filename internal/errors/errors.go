package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform body of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitzero"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// Error kinds. Clients only see the HTTP status and message; the kind is
// kept for logging.
const (
	KindValidation         = "ValidationError"
	KindConflict           = "Conflict"
	KindUnauthorized       = "Unauthorized"
	KindForbidden          = "Forbidden"
	KindNotFound           = "NotFound"
	KindInternal           = "InternalError"
	KindServiceUnavailable = "ServiceUnavailable"
	KindTooManyRequests    = "TooManyRequests"
)

// ContextKeyErrorKind records the kind of the last error response on the
// gin context.
const ContextKeyErrorKind = "error_kind"

// Success sends a 200 envelope carrying data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a 201 envelope carrying data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// List sends a 200 envelope carrying items and their count.
func List(c *gin.Context, items interface{}, count int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: items, Count: &count})
}

// Message sends a 200 envelope carrying only a message.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// RespondWithError sends a failure envelope and aborts the handler chain.
func RespondWithError(c *gin.Context, statusCode int, kind, message string) {
	c.Set(ContextKeyErrorKind, kind)
	c.AbortWithStatusJSON(statusCode, Envelope{Success: false, Message: message})
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, KindValidation, message)
}

// Conflict sends a 400 response. Unique-constraint violations share the
// validation status code.
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource already exists"
	}
	RespondWithError(c, http.StatusBadRequest, KindConflict, message)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Not authorized"
	}
	RespondWithError(c, http.StatusUnauthorized, KindUnauthorized, message)
}

// Forbidden sends a 401 response. Ownership failures are reported with the
// same status as authentication failures.
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Not authorized"
	}
	RespondWithError(c, http.StatusUnauthorized, KindForbidden, message)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, KindNotFound, message)
}

// InternalError sends a 500 response with the underlying error message and
// records err on the context for the request logger.
func InternalError(c *gin.Context, err error) {
	message := "Server error"
	if err != nil {
		_ = c.Error(err)
		message = err.Error()
	}
	RespondWithError(c, http.StatusInternalServerError, KindInternal, message)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, KindServiceUnavailable, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	RespondWithError(c, http.StatusTooManyRequests, KindTooManyRequests, message)
}
