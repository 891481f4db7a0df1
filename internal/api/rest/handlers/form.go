package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carisaa/customer-portal/pkg/res"
)

// isFormPost reports whether the request is a plain HTML form submission.
// Form posts navigate by redirect; fetch callers get JSON bodies instead.
func isFormPost(c *gin.Context) bool {
	ct := c.ContentType()
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// seeOther sends a form submission to its next page.
func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// backWithError sends a form submission back to its page with the message
// in the query string, where the page renders it inline.
func backWithError(c *gin.Context, backTo, message string) {
	sep := "?"
	if strings.Contains(backTo, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusSeeOther, backTo+sep+"error="+url.QueryEscape(message))
}

// rejectInvalid reports a malformed submission.
func rejectInvalid(c *gin.Context, backTo, message string) {
	if isFormPost(c) {
		backWithError(c, backTo, message)
		return
	}
	res.Error(c, http.StatusUnprocessableEntity, message)
}

// verifyEmailPath builds the verification page URL for an address. The
// address is query-escaped: a "+" left raw would decode as a space and the
// page would resubmit the wrong address.
func verifyEmailPath(email string) string {
	return "/verify-email?email=" + url.QueryEscape(email)
}
