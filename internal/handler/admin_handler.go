package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bijouxelegance/boutique/internal/pkg/response"
	"github.com/bijouxelegance/boutique/internal/service"
)

type AdminHandler struct {
	indexer *service.Indexer
}

func NewAdminHandler(indexer *service.Indexer) *AdminHandler {
	return &AdminHandler{indexer: indexer}
}

// Reindex runs synchronously: catalogs are small and the caller wants the
// per-product failure counts. A run already in flight yields a busy error.
func (h *AdminHandler) Reindex(c *gin.Context) {
	report, err := h.indexer.ReindexAll(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, report)
}
