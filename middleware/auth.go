package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const (
	ActorContextKey = "actor"
	RoleContextKey  = "role"
)

// StaffAuth resolves the acting staff member from identity headers injected
// by the gateway, cookie fallback, or a bearer token. The core treats an
// authenticated caller as authorized.
func StaffAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := c.GetHeader("X-User-ID")
		role := c.GetHeader("X-User-Role")

		if actor == "" {
			if v, err := c.Cookie("user_id"); err == nil && v != "" {
				actor = v
			}
		}
		if role == "" {
			if v, err := c.Cookie("user_role"); err == nil && v != "" {
				role = v
			}
		}

		if actor == "" {
			if claims, err := parseBearer(c, jwtSecret); err == nil {
				if sub, ok := claims["sub"].(string); ok {
					actor = sub
				}
				if r, ok := claims["role"].(string); ok && role == "" {
					role = r
				}
			}
		}

		if actor == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		c.Set(ActorContextKey, actor)
		c.Set(RoleContextKey, role)
		c.Next()
	}
}

// AdminOnly restricts access to admin role.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleContextKey)
		if !exists || role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// Actor returns the authenticated staff id, or "unknown" when absent.
func Actor(c *gin.Context) string {
	if val, ok := c.Get(ActorContextKey); ok {
		if actor, ok := val.(string); ok && actor != "" {
			return actor
		}
	}
	return "unknown"
}

func parseBearer(c *gin.Context, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("no bearer token")
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
