package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/choprek/utils"
)

// WebSocketAuthMiddleware reads the token from the query string, since browsers cannot
// set headers on a websocket handshake.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("token missing"))
			c.Abort()
			return
		}
		if !authenticate(c, token) {
			return
		}
		c.Next()
	}
}
