// Package response writes every JSON body the API returns.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/logging"
)

// GenericError replaces the message of every 500 response.
const GenericError = "Something went wrong."

type Envelope struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// JSON writes the wrapped envelope. A 500 logs message and sends GenericError instead.
func JSON(c *gin.Context, status int, message string, data, meta interface{}) {
	if status == http.StatusInternalServerError {
		logging.Entry(c).WithField("status", status).Error(message)
		message = GenericError
	}
	c.JSON(status, Envelope{Message: message, Data: data, Meta: meta})
}

// Raw writes body as-is.
func Raw(c *gin.Context, status int, body interface{}) {
	c.JSON(status, body)
}

// Abort writes the wrapped envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	JSON(c, status, message, nil, nil)
	c.Abort()
}
