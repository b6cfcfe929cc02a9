package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bijouxelegance/boutique/internal/pkg/errcode"
	"github.com/bijouxelegance/boutique/internal/pkg/response"
	"github.com/bijouxelegance/boutique/internal/service"
)

type CartHandler struct {
	catalog *service.CatalogService
}

func NewCartHandler(catalog *service.CatalogService) *CartHandler {
	return &CartHandler{catalog: catalog}
}

type cartAddRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *CartHandler) Add(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		response.Error(c, errcode.ErrInvalid, "session id is required")
		return
	}
	var req cartAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.ProductID <= 0 || req.Quantity <= 0 {
		response.Error(c, errcode.ErrInvalid, "product_id and a positive quantity are required")
		return
	}
	if err := h.catalog.AddToCart(c.Request.Context(), sid, req.ProductID, req.Quantity); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *CartHandler) List(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		response.Error(c, errcode.ErrInvalid, "session id is required")
		return
	}
	lines, err := h.catalog.CartLines(c.Request.Context(), sid)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, lines)
}

func (h *CartHandler) Remove(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		response.Error(c, errcode.ErrInvalid, "session id is required")
		return
	}
	productID, err := paramID(c, "id")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid product id")
		return
	}
	if err := h.catalog.RemoveFromCart(c.Request.Context(), sid, productID); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *CartHandler) Count(c *gin.Context) {
	sid := sessionID(c)
	if sid == "" {
		response.Success(c, gin.H{"count": 0})
		return
	}
	count, err := h.catalog.CartCount(c.Request.Context(), sid)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}
