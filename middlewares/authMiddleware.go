package middlewares

import (
	"net/http"
	"strings"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/nazar-zhcet26/Tenant-management/utils"
)

const (
	TenantIDKey = "user_id"
	AuthCookie  = "auth_token"
)

// AuthMiddleware accepts a bearer token or the auth_token cookie and stores the
// tenant id in the context.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "JWT secret not configured"})
			c.Abort()
			return
		}

		tokenString := ""
		if authHeader := c.Request.Header.Get("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if cookie, err := c.Cookie(AuthCookie); err == nil {
			tokenString = cookie
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "No authorization token provided"})
			c.Abort()
			return
		}

		tenantID, err := utils.ParseToken(tokenString, jwtSecret)
		if err != nil {
			log.Debugf("Token validation failed: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization token"})
			c.Abort()
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

// TenantID returns the id stored by AuthMiddleware.
func TenantID(c *gin.Context) (string, bool) {
	v, exists := c.Get(TenantIDKey)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
