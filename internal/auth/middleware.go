package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// usernameKey is the gin context key carrying the authenticated username.
const usernameKey = "auth.username"

// bearerPrefix is the expected Authorization scheme.
const bearerPrefix = "Bearer "

// Middleware rejects requests that do not carry a valid bearer token. When
// dev is true every request passes, which matches the DEV environment
// switch.
func Middleware(jwtManager *JWTManager, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dev {
			c.Next()
			return
		}

		username, ok := authenticate(c, jwtManager)
		if !ok {
			unauthorized(c)
			return
		}

		c.Set(usernameKey, username)
		c.Next()
	}
}

// authenticate extracts and validates the bearer token, returning the
// subject username.
func authenticate(c *gin.Context, jwtManager *JWTManager) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	claims, err := jwtManager.ValidateToken(strings.TrimPrefix(header, bearerPrefix))
	if err != nil {
		return "", false
	}

	return claims.Subject, true
}

// unauthorized aborts with 401 and the bearer challenge header.
func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "could not validate credentials"})
}

// Username returns the authenticated username set by the middleware.
func Username(c *gin.Context) string {
	return c.GetString(usernameKey)
}

// HasValidToken reports whether the request carries a valid bearer token.
// Routes with a conditional bootstrap path (set-admin) use it directly
// instead of the middleware.
func HasValidToken(c *gin.Context, jwtManager *JWTManager) bool {
	_, ok := authenticate(c, jwtManager)
	return ok
}
