package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookieName is the opaque per-browser id cookie. It carries no
	// credentials itself; tokens live server-side keyed by this id.
	SessionCookieName = "portal_session"

	sessionContextKey = "sessionID"
	sessionCookieAge  = 30 * 24 * 60 * 60 // seconds
)

// SessionMiddleware ensures every request carries a browser session id,
// issuing a new one when the cookie is absent. secure marks the cookie
// HTTPS-only and must be set whenever the portal is served over TLS.
func SessionMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(SessionCookieName, sid, sessionCookieAge, "/", "", secure, true)
		}
		c.Set(sessionContextKey, sid)
		c.Next()
	}
}

// SessionID returns the browser session id for the current request.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}
