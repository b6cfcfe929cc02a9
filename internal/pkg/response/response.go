// Package response writes the {code, message, data} JSON envelope every
// endpoint speaks. Failures ride HTTP 200 with a non-zero code so the
// storefront widget can always parse the body.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi/proxyutil"
)

// wireErr satisfies the coded-error shape proxyutil serializes.
type wireErr struct {
	code uint32
	msg  string
}

func (e wireErr) Error() string {
	return e.msg
}

func (e wireErr) Code() uint32 {
	return e.code
}

func Success(c *gin.Context, data interface{}) {
	proxyutil.SuccessJson(c, data)
}

func Error(c *gin.Context, code int, message string) {
	proxyutil.FailJson(c, http.StatusOK, wireErr{code: uint32(code), msg: message})
}
