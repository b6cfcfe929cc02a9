package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-process fake for tests and offline runs.
type MemoryIndex struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	vec      []float32
	metadata map[string]interface{}
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{entries: make(map[string]memoryEntry)}
}

func (m *MemoryIndex) Upsert(ctx context.Context, id string, vec []float32, metadata map[string]interface{}) error {
	_ = ctx
	stored := make([]float32, len(vec))
	copy(stored, vec)
	m.mu.Lock()
	m.entries[id] = memoryEntry{vec: stored, metadata: metadata}
	m.mu.Unlock()
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	_ = ctx
	m.mu.RLock()
	matches := make([]Match, 0, len(m.entries))
	for id, entry := range m.entries {
		matches = append(matches, Match{
			ID:       id,
			Score:    cosineSimilarity(vec, entry.vec),
			Metadata: entry.metadata,
		})
	}
	m.mu.RUnlock()
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// IDs returns the currently indexed ids, for tests.
func (m *MemoryIndex) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
