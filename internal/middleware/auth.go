package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ParthVaghani-21/campuslife/pkg/token"
	"github.com/gin-gonic/gin"
)

const (
	AuthClaimsKey = "auth_claims"
	RoleAdmin     = "admin"
)

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || strings.ToLower(bearerToken[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid Authorization header format. Expected: Bearer <token>"})
			return
		}

		claims, err := token.ValidateJWT(bearerToken[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token: " + err.Error()})
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Next()
	}
}

// AdminMiddleware gates routes to the moderator credential. The portal has a
// single static admin identity, so the role lives in the JWT claims rather
// than a user-role table.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaimsFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: " + err.Error()})
			return
		}
		if !strings.EqualFold(claims.Role, RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "You don't have permission to access this resource",
			})
			return
		}
		c.Next()
	}
}

// GetClaimsFromContext extracts the validated JWT claims from the context.
func GetClaimsFromContext(c *gin.Context) (*token.Claims, error) {
	claimsVal, exists := c.Get(AuthClaimsKey)
	if !exists {
		return nil, errors.New("claims not found in context")
	}
	claims, ok := claimsVal.(*token.Claims)
	if !ok {
		return nil, errors.New("claims in context have unexpected type")
	}
	return claims, nil
}
