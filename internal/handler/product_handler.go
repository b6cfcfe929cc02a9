package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errcode"
	"github.com/bijouxelegance/boutique/internal/pkg/response"
	"github.com/bijouxelegance/boutique/internal/service"
)

type ProductHandler struct {
	catalog *service.CatalogService
}

func NewProductHandler(catalog *service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	OldPrice    float64 `json:"old_price"`
	CategoryID  int64   `json:"category_id"`
	ImageKey    string  `json:"image_key"`
	Stock       int     `json:"stock"`
	IsFeatured  bool    `json:"is_featured"`
}

func (r *productRequest) toModel() *model.Product {
	return &model.Product{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		OldPrice:    r.OldPrice,
		CategoryID:  r.CategoryID,
		ImageKey:    r.ImageKey,
		Stock:       r.Stock,
		IsFeatured:  r.IsFeatured,
	}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.Name == "" || req.Price <= 0 {
		response.Error(c, errcode.ErrInvalid, "name and a positive price are required")
		return
	}
	id, err := h.catalog.CreateProduct(c.Request.Context(), req.toModel())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid product id")
		return
	}
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	product := req.toModel()
	product.ID = id
	if err := h.catalog.UpdateProduct(c.Request.Context(), product); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid product id")
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *ProductHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid product id")
		return
	}
	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	var categoryID int64
	if raw := c.Query("category_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.Error(c, errcode.ErrInvalid, "invalid category_id")
			return
		}
		categoryID = parsed
	}
	products, err := h.catalog.ListProducts(c.Request.Context(), categoryID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, products)
}
