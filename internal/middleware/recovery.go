package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
	"storefront-backend/internal/response"
)

// Recovery turns a panic into a 500 envelope and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logging.Entry(c).WithField("stack", string(debug.Stack())).Error("panic recovered")
				response.Abort(c, http.StatusInternalServerError, fmt.Sprintf("panic: %v", r))
			}
		}()
		c.Next()
	}
}
