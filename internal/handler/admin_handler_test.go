package handler

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bijouxelegance/boutique/internal/ai"
	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/service"
	"github.com/bijouxelegance/boutique/internal/vector"
)

// blockingCatalog parks FindAllFacts until released, so a second reindex
// request can be fired while the first run holds the guard.
type blockingCatalog struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingCatalog) FindAllFacts(ctx context.Context) ([]model.ProductFact, error) {
	close(b.entered)
	<-b.release
	return nil, nil
}

func (b *blockingCatalog) FindFactsByIDs(ctx context.Context, ids []int64) ([]model.ProductFact, error) {
	return nil, nil
}

func (b *blockingCatalog) FindFeaturedFacts(ctx context.Context, limit int) ([]model.ProductFact, error) {
	return nil, nil
}

func TestAdminReindexConflictWhileRunning(t *testing.T) {
	gin.SetMode(gin.TestMode)
	catalog := &blockingCatalog{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	provider, err := ai.NewEmbedProvider("mock", map[string]interface{}{"dimension": 4})
	require.NoError(t, err)
	embedder := ai.NewEmbedder(provider, ai.EmbedderConfig{Model: "mock", Dimension: 4})
	indexer := service.NewIndexer(catalog, embedder, vector.NewMemoryIndex(), config.IndexingConfig{
		BatchSize: 3,
	})

	engine := gin.New()
	engine.POST("/api/v1/admin/reindex", NewAdminHandler(indexer).Reindex)

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/admin/reindex", nil))
		done <- w
	}()

	<-catalog.entered
	second := httptest.NewRecorder()
	engine.ServeHTTP(second, httptest.NewRequest("POST", "/api/v1/admin/reindex", nil))
	require.Equal(t, 200, second.Code)
	require.Contains(t, second.Body.String(), "indexing already running")

	close(catalog.release)
	first := <-done
	require.Equal(t, 200, first.Code)
	require.Contains(t, first.Body.String(), "total")
}
