package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// BearerToken extracts the token from an "Authorization: Bearer" header.
// The message describes what is wrong when ok is false.
func BearerToken(c *gin.Context) (token, msg string, ok bool) {
	authz := c.GetHeader("Authorization")
	if authz == "" {
		return "", "Missing Authorization header", false
	}
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return "", "Invalid token format", false
	}
	return strings.TrimSpace(authz[len("Bearer "):]), "", true
}

// Middleware rejects requests without a valid bearer access token and
// stores the caller's id in the context.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, msg, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		claims, err := ParseAccessToken(token, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id != 0
}
