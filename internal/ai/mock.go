package ai

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

type mockConfig struct {
	Dimension int `json:"dimension"`
}

// mockEmbedProvider generates deterministic pseudo-random vectors seeded by
// the input text, so the same text always lands at the same point in space.
// Used for tests and offline development.
type mockEmbedProvider struct {
	dimension int
}

func (p *mockEmbedProvider) Name() string {
	return "mock"
}

func (p *mockEmbedProvider) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	_ = ctx
	_ = model
	hash := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(hash[:8]))
	rng := rand.New(rand.NewSource(seed))
	vec := make([]float32, p.dimension)
	var norm float64
	for i := range vec {
		vec[i] = float32(rng.Float64()*2 - 1)
		norm += float64(vec[i]) * float64(vec[i])
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec, nil
}

func createMockEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &mockConfig{}
	if args != nil {
		if err := decodeConfig(args, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = 1536
	}
	return &mockEmbedProvider{dimension: cfg.Dimension}, nil
}

func init() {
	RegisterEmbed("mock", createMockEmbedFactory)
}
