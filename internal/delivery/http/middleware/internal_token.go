package middleware

import (
	"crypto/subtle"
	"net/http"

	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/security"

	"github.com/gin-gonic/gin"
)

// InternalTokenHeader authenticates service-to-service calls
const InternalTokenHeader = "X-Internal-Token"

// InternalToken guards webhook routes called by other backend services.
// An empty expected token disables the routes.
func InternalToken(expected string, secLog *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			response.Error(c, http.StatusServiceUnavailable, "Internal API is not configured", nil)
			c.Abort()
			return
		}

		got := c.GetHeader(InternalTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			secLog.Log(c.Request.Context(), security.SecurityEvent{
				Event:     security.EventInvalidInternalToken,
				IP:        c.ClientIP(),
				UserAgent: c.GetHeader("User-Agent"),
				RequestID: c.GetString(string(domain.KeyRequestID)),
				Details:   map[string]interface{}{"endpoint": c.FullPath()},
			})
			response.Error(c, http.StatusUnauthorized, "Invalid internal token", nil)
			c.Abort()
			return
		}

		c.Next()
	}
}
