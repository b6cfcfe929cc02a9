package vector

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

// PGVectorIndex keeps product vectors in the catalog's own postgres, in the
// product_vectors table, using cosine distance for ranking.
type PGVectorIndex struct {
	db        *sql.DB
	indexName string
}

func NewPGVectorIndex(db *sql.DB, indexName string) *PGVectorIndex {
	return &PGVectorIndex{db: db, indexName: indexName}
}

func (p *PGVectorIndex) Upsert(ctx context.Context, id string, vec []float32, metadata map[string]interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	blob, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	const query = `
		INSERT INTO product_vectors (index_name, product_id, embedding, metadata, mtime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (index_name, product_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata,
			mtime = EXCLUDED.mtime
	`
	if _, err := p.db.ExecContext(ctx, query, p.indexName, id, pgvector.NewVector(vec), blob, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("%w: upsert: %v", errs.ErrIndexOperation, err)
	}
	return nil
}

func (p *PGVectorIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	// Cosine distance is in [0,2]; 1 - distance yields the similarity score
	// hosted backends report.
	const query = `
		SELECT product_id, 1 - (embedding <=> $2) AS score, metadata
		FROM product_vectors
		WHERE index_name = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`
	rows, err := p.db.QueryContext(ctx, query, p.indexName, pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", errs.ErrIndexOperation, err)
	}
	defer rows.Close()
	var matches []Match
	for rows.Next() {
		var m Match
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Score, &blob); err != nil {
			return nil, err
		}
		if len(blob) > 0 {
			if err := json.Unmarshal(blob, &m.Metadata); err != nil {
				return nil, err
			}
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
