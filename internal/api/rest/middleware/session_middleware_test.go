package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueCookie(t *testing.T, secure bool) *http.Cookie {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(secure))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie issued", SessionCookieName)
	return nil
}

func TestSessionMiddlewareIssuesCookie(t *testing.T) {
	cookie := issueCookie(t, false)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.False(t, cookie.Secure)
}

func TestSessionMiddlewareSecureCookie(t *testing.T) {
	cookie := issueCookie(t, true)
	assert.True(t, cookie.Secure)
}

func TestSessionMiddlewareKeepsExistingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(false))
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = SessionID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "existing-id"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, "existing-id", seen)
	assert.Empty(t, w.Result().Cookies(), "no new cookie should be issued")
}
