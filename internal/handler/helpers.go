package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/bijouxelegance/boutique/internal/pkg/errcode"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
	"github.com/bijouxelegance/boutique/internal/pkg/response"
)

// sessionID identifies an anonymous storefront visitor. The widget sends it
// on every request; carts are keyed by it.
func sessionID(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-Id"); sid != "" {
		return sid
	}
	return c.Query("session")
}

func paramID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.ErrInvalid
	}
	return id, nil
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errors.Is(err, errs.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	case errors.Is(err, errs.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case errors.Is(err, errs.ErrConflict):
		response.Error(c, errcode.ErrConflict, err.Error())
	case errors.Is(err, errs.ErrTooMany):
		response.Error(c, errcode.ErrTooMany, "too many requests")
	case errors.Is(err, errs.ErrBusy):
		response.Error(c, errcode.ErrIndexingBusy, "indexing already running")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
