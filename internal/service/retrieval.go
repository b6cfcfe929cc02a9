package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/bijouxelegance/boutique/internal/ai"
	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
	"github.com/bijouxelegance/boutique/internal/vector"
)

// RetrievalResult is what one retrieval pass produced. Exactly one of the
// shapes holds: a clarification request, a direct suggestion short-circuit
// with its templated reply, or a ranked fact list for LLM grounding.
type RetrievalResult struct {
	Facts              []model.ProductFact
	Matches            []vector.Match
	NeedsClarification bool
	Direct             bool
	Reply              string
}

type RetrievalEngine struct {
	catalog  CatalogStore
	embedder ai.IEmbedder
	index    vector.Index
	cfg      config.AssistantConfig
	cache    *expirable.LRU[string, []float32]
}

func NewRetrievalEngine(catalog CatalogStore, embedder ai.IEmbedder, index vector.Index, cfg config.AssistantConfig) *RetrievalEngine {
	return &RetrievalEngine{
		catalog:  catalog,
		embedder: embedder,
		index:    index,
		cfg:      cfg,
		cache:    expirable.NewLRU[string, []float32](2048, nil, 15*time.Minute),
	}
}

func (e *RetrievalEngine) Retrieve(ctx context.Context, query string) (*RetrievalResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("query", query))
	lower := strings.ToLower(strings.TrimSpace(query))

	queryEmb, err := e.embedQuery(ctx, query)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errs.ErrRetrievalUnavailable, err)
	}

	matches, err := e.index.Query(ctx, queryEmb, e.cfg.TopK)
	if err != nil {
		logger.Error("vector query failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errs.ErrRetrievalUnavailable, err)
	}
	if len(matches) == 0 {
		return &RetrievalResult{}, nil
	}

	facts := e.resolveMatches(ctx, matches)

	// Policy filter: wedding/ring intent narrows to ring products. An empty
	// narrowed set asks for clarification instead of falling back to the
	// unfiltered candidates.
	if containsAny(lower, e.cfg.RingWords) {
		var rings []model.ProductFact
		for _, f := range facts {
			if isRingProduct(f) {
				rings = append(rings, f)
			}
		}
		if len(rings) == 0 {
			return &RetrievalResult{
				NeedsClarification: true,
				Reply:              "Je n'ai pas de bagues de mariage pertinentes dans le contexte. Voulez-vous que je cherche des bagues similaires ou indiquez un matériau préféré (or, argent, diamant) ?",
			}, nil
		}
		facts = rings
	}
	if len(facts) == 0 {
		return &RetrievalResult{Matches: matches}, nil
	}

	ranked := rankFacts(facts, matches)

	// Direct recommendation intent short-circuits the model call entirely.
	if containsAny(lower, e.cfg.RecommendWords) {
		top := ranked
		if len(top) > e.cfg.SuggestionLimit {
			top = top[:e.cfg.SuggestionLimit]
		}
		return &RetrievalResult{
			Facts:   top,
			Matches: matches,
			Direct:  true,
			Reply:   suggestionReply(top),
		}, nil
	}

	if len(ranked) > e.cfg.ContextLimit {
		ranked = ranked[:e.cfg.ContextLimit]
	}
	return &RetrievalResult{Facts: ranked, Matches: matches}, nil
}

func (e *RetrievalEngine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	hash := sha256.Sum256([]byte(query))
	key := hex.EncodeToString(hash[:])
	if cached, ok := e.cache.Get(key); ok {
		return cached, nil
	}
	emb, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	e.cache.Add(key, emb)
	return emb, nil
}

// resolveMatches joins matches back to live catalog rows. Unparsable or
// unresolved ids fall back to the metadata captured at indexing time, and
// are dropped when that is missing too.
func (e *RetrievalEngine) resolveMatches(ctx context.Context, matches []vector.Match) []model.ProductFact {
	logger := logutil.GetLogger(ctx)
	ids := make([]int64, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			logger.Debug("skipping unparsable match id", zap.String("id", m.ID))
			continue
		}
		ids = append(ids, id)
	}
	facts, err := e.catalog.FindFactsByIDs(ctx, ids)
	if err != nil {
		logger.Debug("catalog join failed, using match metadata", zap.Error(err))
		facts = nil
	}
	resolved := make(map[int64]model.ProductFact, len(facts))
	for _, f := range facts {
		resolved[f.ID] = f
	}
	out := make([]model.ProductFact, 0, len(matches))
	for _, m := range matches {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			continue
		}
		if f, ok := resolved[id]; ok {
			out = append(out, f)
			continue
		}
		if f, ok := factFromMetadata(id, m.Metadata); ok {
			out = append(out, f)
			continue
		}
		logger.Debug("dropping unresolved match", zap.Int64("product_id", id))
	}
	return out
}

// rankFacts applies the business ordering: featured first, then in-stock,
// then raw similarity. Featured in-stock items always outrank closer but
// non-featured or out-of-stock ones.
func rankFacts(facts []model.ProductFact, matches []vector.Match) []model.ProductFact {
	scores := make(map[int64]float32, len(matches))
	for _, m := range matches {
		if id, err := strconv.ParseInt(m.ID, 10, 64); err == nil {
			scores[id] = m.Score
		}
	}
	ranked := make([]model.ProductFact, len(facts))
	copy(ranked, facts)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.IsFeatured != b.IsFeatured {
			return a.IsFeatured
		}
		if a.InStock() != b.InStock() {
			return a.InStock()
		}
		return scores[a.ID] > scores[b.ID]
	})
	return ranked
}

func suggestionReply(facts []model.ProductFact) string {
	lines := make([]string, 0, len(facts))
	for i, f := range facts {
		lines = append(lines, fmt.Sprintf("%d) %s — %s — %s", i+1, f.Name, formatPrice(f.Price), f.Availability()))
	}
	return "Voici des suggestions adaptées : " + strings.Join(lines, "; ") + ".\nSouhaitez-vous ajouter l'un de ces articles à votre panier ?"
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', 2, 64) + " €"
}

func isRingProduct(f model.ProductFact) bool {
	return strings.Contains(strings.ToLower(f.Category), "bag") ||
		strings.Contains(strings.ToLower(f.Name), "bague")
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if w == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

func factFromMetadata(id int64, metadata map[string]interface{}) (model.ProductFact, bool) {
	if metadata == nil {
		return model.ProductFact{}, false
	}
	name, _ := metadata["name"].(string)
	if name == "" {
		return model.ProductFact{}, false
	}
	fact := model.ProductFact{ID: id, Name: name}
	if price, ok := metadata["price"].(float64); ok {
		fact.Price = price
	}
	if category, ok := metadata["category"].(string); ok {
		fact.Category = category
	}
	if stock, ok := metadata["stock"].(float64); ok {
		fact.Stock = int(stock)
	}
	if featured, ok := metadata["isFeatured"].(bool); ok {
		fact.IsFeatured = featured
	}
	return fact, true
}
