package ai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

// IEmbedder is what the retrieval engine and the indexer depend on.
type IEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
	ModelName() string
}

type EmbedderConfig struct {
	Model      string
	Dimension  int
	MaxRetries int
}

type embedder struct {
	provider IEmbedProvider
	cfg      EmbedderConfig
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewEmbedder(provider IEmbedProvider, cfg EmbedderConfig) IEmbedder {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	return &embedder{
		provider: provider,
		cfg:      cfg,
		sleep:    sleepCtx,
	}
}

// Embed retries rate-limited calls with exponential backoff plus jitter,
// preferring the upstream Retry-After hint over the computed delay. The
// attempt budget is cfg.MaxRetries+1; exhausting it surfaces ErrRateLimited.
func (e *embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("provider", e.provider.Name()), zap.String("model", e.cfg.Model))
	var rateErr *errs.RateLimitError
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		vec, err := e.provider.Embed(ctx, e.cfg.Model, text)
		if err == nil {
			if e.cfg.Dimension > 0 && len(vec) != e.cfg.Dimension {
				return nil, fmt.Errorf("%w: expected dimension %d, got %d", errs.ErrProvider, e.cfg.Dimension, len(vec))
			}
			return vec, nil
		}
		if !errors.As(err, &rateErr) {
			logger.Error("embedding request failed", zap.Error(err))
			return nil, err
		}
		if attempt == e.cfg.MaxRetries {
			break
		}
		delay := backoffDelay(attempt, rateErr.RetryAfter)
		logger.Warn("rate limited, retrying", zap.Int("attempt", attempt+1), zap.Duration("delay", delay))
		if err := e.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	logger.Warn("rate limit budget exhausted", zap.Int("max_retries", e.cfg.MaxRetries))
	return nil, rateErr
}

func (e *embedder) Dimension() int {
	return e.cfg.Dimension
}

func (e *embedder) ModelName() string {
	return e.cfg.Model
}

func backoffDelay(attempt int, hint time.Duration) time.Duration {
	if hint > 0 {
		return hint
	}
	jitter := time.Duration(rand.Intn(900)+100) * time.Millisecond
	return time.Duration(math.Pow(2, float64(attempt)))*time.Second + jitter
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
