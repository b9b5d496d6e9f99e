package middlewares

import (
	"net/http"
	"strings"

	"github.com/buildsmart/erp_backend/utils"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware gates every protected route on a bearer session token.
// A missing or malformed Authorization header is unauthenticated (401); a
// token that fails signature or expiry checks is forbidden (403). The two
// are distinct on purpose, and neither reveals whether the identity exists.
// On success the decoded identity/role claims are attached to the request
// context. No role check happens here: any valid token may invoke any
// protected operation.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(parts[1])
		claims, err := utils.JwtValidate(token)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUserIdInContext(ctx, claims.ID)
		ctx = utils.SetEmailInContext(ctx, claims.Email)
		ctx = utils.SetRoleInContext(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
