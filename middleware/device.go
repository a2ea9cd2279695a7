package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

const (
	DeviceIDKey    = "device_id"
	DeviceIDHeader = "X-Device-ID"
	DeviceIDCookie = "device_id"
)

var deviceIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// RequireDevice resolves the shopper device from the X-Device-ID header or
// the device_id cookie and rejects requests without a usable one.
func RequireDevice() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(DeviceIDHeader)
		if id == "" {
			id, _ = c.Cookie(DeviceIDCookie)
		}
		if !deviceIDPattern.MatchString(id) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing or invalid device id"})
			return
		}
		c.Set(DeviceIDKey, id)
		c.Next()
	}
}
