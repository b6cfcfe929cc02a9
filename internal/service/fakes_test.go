package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bijouxelegance/boutique/internal/ai"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/vector"
)

type fakeCatalog struct {
	facts    []model.ProductFact
	featured []model.ProductFact
	err      error
}

func (f *fakeCatalog) FindFactsByIDs(ctx context.Context, ids []int64) ([]model.ProductFact, error) {
	if f.err != nil {
		return nil, f.err
	}
	byID := make(map[int64]model.ProductFact, len(f.facts))
	for _, fact := range f.facts {
		byID[fact.ID] = fact
	}
	out := make([]model.ProductFact, 0, len(ids))
	for _, id := range ids {
		if fact, ok := byID[id]; ok {
			out = append(out, fact)
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindFeaturedFacts(ctx context.Context, limit int) ([]model.ProductFact, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.featured) > limit {
		return f.featured[:limit], nil
	}
	return f.featured, nil
}

func (f *fakeCatalog) FindAllFacts(ctx context.Context) ([]model.ProductFact, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.facts, nil
}

type fakeEmbedder struct {
	mu    sync.Mutex
	calls int
	err   error
	// failFor makes Embed fail only for texts containing the substring.
	failFor string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.failFor != "" && strings.Contains(text, f.failFor) {
		return nil, fmt.Errorf("embed rejected: %s", text)
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) Dimension() int    { return 3 }
func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeIndex struct {
	mu         sync.Mutex
	matches    []vector.Match
	queryCalls int
	err        error
}

func (f *fakeIndex) Upsert(ctx context.Context, id string, vec []float32, metadata map[string]interface{}) error {
	return f.err
}

func (f *fakeIndex) Query(ctx context.Context, vec []float32, topK int) ([]vector.Match, error) {
	f.mu.Lock()
	f.queryCalls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func (f *fakeIndex) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queryCalls
}

type chatCall struct {
	Model  string
	System string
}

type fakeChat struct {
	mu    sync.Mutex
	calls []chatCall
	// errQueue is consumed one error per call; nil entries succeed.
	errQueue []error
	reply    string
}

func (f *fakeChat) Name() string { return "fake-chat" }

func (f *fakeChat) Complete(ctx context.Context, req *ai.ChatRequest) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, chatCall{Model: req.Model, System: req.System})
	n := len(f.calls)
	f.mu.Unlock()
	if n <= len(f.errQueue) && f.errQueue[n-1] != nil {
		return "", f.errQueue[n-1]
	}
	if f.reply != "" {
		return f.reply, nil
	}
	return "Voici ce que je vous propose.", nil
}

func (f *fakeChat) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeChat) lastSystem() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1].System
}

func (f *fakeChat) callModels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Model)
	}
	return out
}
