package middlewares

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yeremiapane/choprek/utils"
)

const (
	CSRFCookie = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRFMiddleware implements the double-submit cookie pattern. Safe requests receive a
// token cookie; unsafe requests must echo it in the X-CSRF-Token header. Requests that
// authenticate with a bearer token are exempt because the browser never attaches it on
// its own.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(CSRFCookie)

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			if err != nil || cookie == "" {
				cookie = IssueCSRFToken(c)
			}
			c.Set(CSRFCookie, cookie)
			c.Header(CSRFHeader, cookie)
			c.Next()
			return
		}

		if strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.Next()
			return
		}

		header := c.GetHeader(CSRFHeader)
		if err != nil || cookie == "" || header == "" ||
			subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			utils.RespondError(c, http.StatusForbidden, errors.New("invalid csrf token"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// IssueCSRFToken sets a fresh token cookie and returns the token.
func IssueCSRFToken(c *gin.Context) string {
	token := uuid.NewString()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CSRFCookie, token, 24*60*60, "/", "", false, false)
	return token
}
