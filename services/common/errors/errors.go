package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code and message, so a sentinel still
// matches after Wrap attached a cause to a copy of it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err as its cause. base itself is left untouched.
func Wrap(base *Error, err error) *Error {
	return New(base.Code, base.Message, err)
}

// ErrInternalServer is what any unrecognised error renders as.
var ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)

// Request guard errors
var (
	ErrRateLimited      = New(http.StatusTooManyRequests, "Too many attempts, try later.", nil)
	ErrPayloadTooLarge  = New(http.StatusRequestEntityTooLarge, "Payload too large", nil)
	ErrOriginNotAllowed = New(http.StatusForbidden, "Origin not allowed", nil)
)

// Validation error types
var (
	ErrInvalidInput = New(http.StatusBadRequest, "Invalid input", nil)
	ErrMissingField = New(http.StatusBadRequest, "Missing required field", nil)
	ErrWeakPassword = New(http.StatusBadRequest, "Password must be at least 6 characters", nil)
)

// Authentication error types
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid email or password", nil)
	ErrDuplicateEmail     = New(http.StatusConflict, "Email already registered", nil)
)

// Webhook error types
var (
	ErrSignatureMismatch = New(http.StatusBadRequest, "invalid signature", nil)
)

// From converts any error into an *Error. Unknown errors become a 500 that keeps
// the cause for logging but never exposes it in the response body.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(ErrInternalServer, err)
}

// ErrorMiddleware renders the last error pushed with c.Error.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := From(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.Code, appErr)
	}
}
