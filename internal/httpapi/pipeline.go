// Package httpapi maps the HTTP surface onto the services.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-backend/internal/apperr"
	"storefront-backend/internal/logging"
	"storefront-backend/internal/response"
	"storefront-backend/internal/validation"
)

// source says where a request struct is bound from.
type source int

const (
	fromNone source = iota
	fromBody
	fromQuery
)

// result is what an endpoint hands back to the pipeline. raw, when set, is written as-is
// instead of the envelope. data is also sent alongside an error.
type result struct {
	message string
	data    interface{}
	meta    interface{}
	raw     interface{}
}

// handle binds and validates T, runs fn and writes the response. Validation failures stop
// the request before fn runs.
func handle[T any](src source, fn func(c *gin.Context, in *T) (result, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if err := bind(c, src, &in); err != nil {
			logging.Entry(c).WithError(err).Debug("request rejected by validation")
			response.JSON(c, http.StatusBadRequest, validation.Message(err), nil, nil)
			return
		}

		res, err := fn(c, &in)
		if err != nil {
			status, message := apperr.Status(err)
			if status == http.StatusInternalServerError {
				res.data = nil
			}
			response.JSON(c, status, message, res.data, nil)
			return
		}
		if res.raw != nil {
			response.Raw(c, http.StatusOK, res.raw)
			return
		}
		response.JSON(c, http.StatusOK, res.message, res.data, res.meta)
	}
}

func bind(c *gin.Context, src source, in interface{}) error {
	switch src {
	case fromBody:
		return c.ShouldBindJSON(in)
	case fromQuery:
		return c.ShouldBindQuery(in)
	default:
		return nil
	}
}

type none struct{}

// failed hands err to the pipeline together with list, unless the service produced none.
func failed[E any](list []E, err error) (result, error) {
	if list == nil {
		return result{}, err
	}
	return result{data: list}, err
}
