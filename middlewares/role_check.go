package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/utils"
)

// RequirePermission rejects requests whose role does not grant perm.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if role == "" {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		if !utils.HasPermission(role, perm) {
			utils.ErrorLogger.WithFields(map[string]interface{}{
				"role":       role,
				"permission": perm,
				"path":       c.Request.URL.Path,
			}).Warn("Permission denied")
			utils.RespondError(c, http.StatusForbidden, fmt.Errorf("%s permission required", perm))
			c.Abort()
			return
		}

		c.Next()
	}
}
