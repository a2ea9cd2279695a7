package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/identity"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/services"
)

// Error is an error with the HTTP status it should be reported as.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Wrap returns a copy of e carrying err.
func (e *Error) Wrap(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Err: err}
}

var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
	ErrInvalidToken       = New(http.StatusUnauthorized, "Invalid token", nil)
	ErrMissingDevice      = New(http.StatusBadRequest, "Device id is required", nil)
)

// FromService maps errors from the cart, catalog and identity layers to
// HTTP errors.
func FromService(err error) *Error {
	var appErr *Error
	switch {
	case err == nil:
		return nil
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, services.ErrMissingDevice):
		return ErrMissingDevice.Wrap(err)
	case stderrors.Is(err, services.ErrInvalidOperation),
		stderrors.Is(err, services.ErrEmptyCart),
		stderrors.Is(err, services.ErrInvalidAddress),
		stderrors.Is(err, services.ErrEmptyBuild),
		stderrors.Is(err, services.ErrUnknownBuildStep),
		stderrors.Is(err, identity.ErrMissingUser):
		return New(http.StatusBadRequest, err.Error(), err)
	case stderrors.Is(err, services.ErrNotAuthenticated),
		stderrors.Is(err, identity.ErrInvalidToken):
		return New(http.StatusUnauthorized, err.Error(), err)
	case stderrors.Is(err, services.ErrProductNotFound):
		return ErrNotFound.Wrap(err)
	case services.IsStoreError(err), stderrors.Is(err, services.ErrCheckoutUnavailable):
		return ErrServiceUnavailable.Wrap(err)
	default:
		return ErrInternalServer.Wrap(err)
	}
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := FromService(c.Errors.Last().Err)
		c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message, "code": appErr.Code})
	}
}
