package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"talentlink-appointments/config"
	"talentlink-appointments/internal/delivery/http/response"
	"talentlink-appointments/internal/domain"
	"talentlink-appointments/pkg/auth"
	"talentlink-appointments/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthCookieName carries the session token for browser clients
const AuthCookieName = "auth_token"

// keyCookieAuth marks requests whose token came from the cookie
const keyCookieAuth = "cookie_auth"

// AuthMiddleware validates the bearer token issued by the identity service.
// HS256 tokens are checked against JWT_SECRET, RS256 tokens against the JWKS.
// The user id comes from "sub" and the role from the "role" claim.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config, secLog *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string
		fromCookie := false

		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		} else if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
			tokenString = cookie
			fromCookie = true
		}

		if tokenString == "" {
			reject(c, secLog, "missing token", "Authorization header or auth_token cookie required")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
				if cfg.JWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
				}
				return []byte(cfg.JWTSecret), nil
			}

			if _, ok := token.Method.(*jwt.SigningMethodRSA); ok {
				if !jwksProvider.Configured() {
					return nil, fmt.Errorf("RS256 token received but JWKS_URL is not configured")
				}
				return jwksProvider.KeyFunc(token)
			}

			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			reject(c, secLog, "invalid token", "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject(c, secLog, "invalid claims", "Invalid claims")
			return
		}

		userID, ok := subjectID(claims["sub"])
		if !ok {
			reject(c, secLog, "non numeric subject", "Invalid token subject")
			return
		}
		role, _ := claims["role"].(string)
		email, _ := claims["email"].(string)

		c.Set(string(domain.KeyUserID), userID)
		c.Set(string(domain.KeyUserEmail), email)
		c.Set(string(domain.KeyUserRole), strings.ToLower(role))
		c.Set(keyCookieAuth, fromCookie)

		c.Next()
	}
}

// RequireRole lets the request through only for users carrying role
func RequireRole(role string, secLog *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(string(domain.KeyUserRole)) != role {
			secLog.LogForbiddenRole(
				c.Request.Context(),
				c.GetInt64(string(domain.KeyUserID)),
				c.GetString(string(domain.KeyUserRole)),
				role,
				c.ClientIP(),
				c.GetString(string(domain.KeyRequestID)),
				c.FullPath(),
			)
			response.Error(c, http.StatusForbidden, "Access restricted to "+role+"s", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// subjectID accepts numeric subjects encoded either as a JSON string or number
func subjectID(sub interface{}) (int64, bool) {
	switch v := sub.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil && id > 0
	case float64:
		id := int64(v)
		return id, float64(id) == v && id > 0
	}
	return 0, false
}

func reject(c *gin.Context, secLog *security.SecurityLogger, reason, message string) {
	secLog.LogUnauthorized(
		c.Request.Context(),
		c.ClientIP(),
		c.GetHeader("User-Agent"),
		c.GetString(string(domain.KeyRequestID)),
		reason,
	)
	response.Error(c, http.StatusUnauthorized, message, nil)
	c.Abort()
}
