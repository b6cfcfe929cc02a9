package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bijouxelegance/boutique/internal/middleware"
)

type RouterDeps struct {
	Chat       *ChatHandler
	Products   *ProductHandler
	Categories *CategoryHandler
	Cart       *CartHandler
	Images     *ImageHandler
	Admin      *AdminHandler

	ChatWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	chatGroup := api.Group("")
	if deps.ChatWindow > 0 {
		chatGroup.Use(middleware.RateLimit(deps.ChatWindow))
	}
	chatGroup.POST("/chat", deps.Chat.Ask)

	api.GET("/products", deps.Products.List)
	api.GET("/products/:id", deps.Products.Get)
	api.GET("/categories", deps.Categories.List)
	api.GET("/categories/:id", deps.Categories.Get)

	api.GET("/cart", deps.Cart.List)
	api.GET("/cart/count", deps.Cart.Count)
	api.POST("/cart", deps.Cart.Add)
	api.DELETE("/cart/:id", deps.Cart.Remove)

	api.POST("/admin/products", deps.Products.Create)
	api.PUT("/admin/products/:id", deps.Products.Update)
	api.DELETE("/admin/products/:id", deps.Products.Delete)
	api.POST("/admin/categories", deps.Categories.Create)
	api.PUT("/admin/categories/:id", deps.Categories.Update)
	api.DELETE("/admin/categories/:id", deps.Categories.Delete)
	api.POST("/admin/images", deps.Images.Upload)
	api.POST("/admin/reindex", deps.Admin.Reindex)

	api.GET("/images/:key", deps.Images.Get)
}
