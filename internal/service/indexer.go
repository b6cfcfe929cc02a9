package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/bijouxelegance/boutique/internal/ai"
	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
	"github.com/bijouxelegance/boutique/internal/vector"
)

type IndexReport struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Indexer walks the full catalog and upserts one vector per product,
// throttled to stay under upstream rate limits.
type Indexer struct {
	catalog  CatalogStore
	embedder ai.IEmbedder
	index    vector.Index
	cfg      config.IndexingConfig
	running  atomic.Bool
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewIndexer(catalog CatalogStore, embedder ai.IEmbedder, index vector.Index, cfg config.IndexingConfig) *Indexer {
	return &Indexer{
		catalog:  catalog,
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

// ReindexAll is best-effort: a product that fails to embed or upsert is
// counted and skipped, never aborting the run. Only one run may be in
// flight per process; a second trigger gets ErrBusy.
func (s *Indexer) ReindexAll(ctx context.Context) (*IndexReport, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, errs.ErrBusy
	}
	defer s.running.Store(false)

	logger := logutil.GetLogger(ctx)
	start := time.Now()

	products, err := s.catalog.FindAllFacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	report := &IndexReport{Total: len(products)}
	if len(products) == 0 {
		logger.Info("no products to index")
		return report, nil
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 3
	}
	requestDelay := time.Duration(s.cfg.RequestDelayMs) * time.Millisecond
	batchDelay := time.Duration(s.cfg.BatchDelayMs) * time.Millisecond
	totalBatches := (len(products) + batchSize - 1) / batchSize

	logger.Info("product indexing started",
		zap.Int("total", len(products)),
		zap.Int("batch_size", batchSize),
		zap.Int("batches", totalBatches),
	)

	for i := 0; i < len(products); i += batchSize {
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		for _, product := range products[i:end] {
			if requestDelay > 0 {
				if err := s.sleep(ctx, requestDelay); err != nil {
					return report, err
				}
			}
			if err := s.indexProduct(ctx, product); err != nil {
				report.Failed++
				logger.Error("indexing failed for product",
					zap.Int64("product_id", product.ID),
					zap.Error(err),
				)
				continue
			}
			report.Succeeded++
		}
		logger.Info("batch completed",
			zap.Int("batch", i/batchSize+1),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed),
		)
		if end < len(products) && batchDelay > 0 {
			if err := s.sleep(ctx, batchDelay); err != nil {
				return report, err
			}
		}
	}

	logger.Info("product indexing finished",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	return report, nil
}

func (s *Indexer) indexProduct(ctx context.Context, product model.ProductFact) error {
	text := product.Name + "\n\n" + ai.PlainText(product.Description)
	emb, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	metadata := map[string]interface{}{
		"productId":  product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"category":   product.Category,
		"stock":      product.Stock,
		"isFeatured": product.IsFeatured,
	}
	return s.index.Upsert(ctx, fmt.Sprintf("%d", product.ID), emb, metadata)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
