package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errcode"
	"github.com/bijouxelegance/boutique/internal/pkg/response"
	"github.com/bijouxelegance/boutique/internal/service"
)

type CategoryHandler struct {
	catalog *service.CatalogService
}

func NewCategoryHandler(catalog *service.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconClass   string `json:"icon_class"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if req.Name == "" {
		response.Error(c, errcode.ErrInvalid, "name is required")
		return
	}
	id, err := h.catalog.CreateCategory(c.Request.Context(), &model.Category{
		Name:        req.Name,
		Description: req.Description,
		IconClass:   req.IconClass,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid category id")
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request body")
		return
	}
	if err := h.catalog.UpdateCategory(c.Request.Context(), &model.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IconClass:   req.IconClass,
	}); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid category id")
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid category id")
		return
	}
	cat, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, cat)
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, categories)
}
