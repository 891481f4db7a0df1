package res

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON shape of every error the portal returns.
type ErrorResponse struct {
	Error     string `json:"error"`                // user-facing message
	ErrorCode int    `json:"error_code,omitempty"` // HTTP status, for programmatic handling
	Details   any    `json:"details,omitempty"`    // e.g. field validation errors
}

// Error writes an ErrorResponse with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message, ErrorCode: status})
}

// ErrorWithDetails writes an ErrorResponse carrying extra detail payload.
func ErrorWithDetails(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, ErrorCode: status, Details: details})
}

// OK writes a 200 JSON response.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}
