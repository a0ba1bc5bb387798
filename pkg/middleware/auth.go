package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"commercial-file-service/internal/model/user"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
	tokenKey  = "accessToken"
)

type TokenParser interface {
	ParseToken(ctx context.Context, token string) (uint32, user.Role, error)
}

// Auth requires a valid "Authorization: Bearer <token>" header.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abort(c, http.StatusUnauthorized, "authorization token not provided")
			return
		}

		uid, role, err := parser.ParseToken(c.Request.Context(), token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(userIDKey, uid)
		c.Set(roleKey, role)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, Role(c)) {
			abort(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) uint32 {
	uid, _ := c.Get(userIDKey)
	id, _ := uid.(uint32)
	return id
}

func Role(c *gin.Context) user.Role {
	role, _ := c.Get(roleKey)
	r, _ := role.(user.Role)
	return r
}

func AccessToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message, "data": nil})
}
