package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

// HostedIndex is a REST client to a managed similarity-search service
// exposing the Pinecone-style /vectors/upsert and /query endpoints on an
// index-specific URL.
type HostedIndex struct {
	baseURL   string
	apiKey    string
	indexName string
	client    *http.Client
}

func NewHostedIndex(cfg config.VectorConfig) (*HostedIndex, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, fmt.Errorf("%w: vector.endpoint is required", errs.ErrIndexUnavailable)
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: vector.api_key is required", errs.ErrIndexUnavailable)
	}
	return &HostedIndex{
		baseURL:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:    cfg.APIKey,
		indexName: cfg.IndexName,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type hostedVector struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata map[string]interface{} `json:"metadata"`
}

type hostedUpsertRequest struct {
	Vectors []hostedVector `json:"vectors"`
}

type hostedQueryRequest struct {
	TopK            int       `json:"topK"`
	Vector          []float32 `json:"vector"`
	IncludeMetadata bool      `json:"includeMetadata"`
	IncludeValues   bool      `json:"includeValues"`
}

type hostedQueryResponse struct {
	Matches []struct {
		ID       string                 `json:"id"`
		Score    float32                `json:"score"`
		Metadata map[string]interface{} `json:"metadata"`
	} `json:"matches"`
}

func (h *HostedIndex) Upsert(ctx context.Context, id string, vec []float32, metadata map[string]interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	payload := hostedUpsertRequest{
		Vectors: []hostedVector{{ID: id, Values: vec, Metadata: metadata}},
	}
	return h.post(ctx, "/vectors/upsert", "upsert", payload, nil)
}

func (h *HostedIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	// Metadata piggybacks on the match so a miss on the catalog join can
	// still be resolved; raw vector values are dead weight on the wire.
	payload := hostedQueryRequest{
		TopK:            topK,
		Vector:          vec,
		IncludeMetadata: true,
		IncludeValues:   false,
	}
	var out hostedQueryResponse
	if err := h.post(ctx, "/query", "query", payload, &out); err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(out.Matches))
	for _, m := range out.Matches {
		matches = append(matches, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

func (h *HostedIndex) post(ctx context.Context, path, op string, payload interface{}, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", h.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		return &errs.IndexOperationError{Op: op, Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return &errs.IndexOperationError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
