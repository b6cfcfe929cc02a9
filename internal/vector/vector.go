package vector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bijouxelegance/boutique/internal/config"
)

// Match is one similarity hit. Metadata is whatever was captured at indexing
// time; it is only a fallback for when the catalog join misses.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]interface{}
}

// Index stores and queries vectors. Query returns matches in the backend's
// native ranking order; re-ranking happens upstream.
type Index interface {
	Upsert(ctx context.Context, id string, vec []float32, metadata map[string]interface{}) error
	Query(ctx context.Context, vec []float32, topK int) ([]Match, error)
}

// New builds the configured backend. Configuration problems are construction
// errors, not per-call ones.
func New(cfg config.VectorConfig, db *sql.DB) (Index, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "hosted":
		return NewHostedIndex(cfg)
	case "pgvector":
		if db == nil {
			return nil, fmt.Errorf("pgvector index requires a database connection")
		}
		return NewPGVectorIndex(db, cfg.IndexName), nil
	case "memory":
		return NewMemoryIndex(), nil
	default:
		return nil, fmt.Errorf("unsupported vector index type: %s", cfg.Type)
	}
}
