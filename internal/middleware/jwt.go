package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shb-modernhill/confirmation-form-api/internal/service"
	appErrors "github.com/shb-modernhill/confirmation-form-api/pkg/errors"
	"github.com/shb-modernhill/confirmation-form-api/pkg/response"
)

// ContextAdminKey is the gin context key storing the admin session claims.
const ContextAdminKey = "currentAdmin"

// AdminAuth protects console routes by requiring a valid, non-revoked
// session token.
func AdminAuth(adminService *service.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		claims, err := adminService.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}
