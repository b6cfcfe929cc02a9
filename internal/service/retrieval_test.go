package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
	"github.com/bijouxelegance/boutique/internal/vector"
)

func testAssistantConfig() config.AssistantConfig {
	return config.AssistantConfig{
		TopK:               10,
		ContextLimit:       8,
		SuggestionLimit:    4,
		TurnTimeoutSeconds: 45,
		Greetings:          []string{"bonjour", "salut", "bonsoir", "hello", "hi"},
		CartWords:          []string{"panier", "acheter", "checkout", "commander"},
		RingWords:          []string{"mariage", "alliance", "alliances", "bague de mariage", "bague"},
		RecommendWords:     []string{"sugg", "propose", "recommande", "conseil", "cherche", "je veux", "montre", "quel", "quels", "suggest"},
	}
}

func ringFacts() []model.ProductFact {
	return []model.ProductFact{
		{ID: 1, Name: "Bague Éternité", Price: 890, Category: "Bagues", Stock: 5, IsFeatured: true},
		{ID: 2, Name: "Bague Solitaire", Price: 1290, Category: "Bagues", Stock: 4, IsFeatured: true},
		{ID: 3, Name: "Bague Promesse", Price: 450, Category: "Bagues", Stock: 7, IsFeatured: true},
	}
}

func TestRetrieveRanksFeaturedAndStockBeforeScore(t *testing.T) {
	catalog := &fakeCatalog{facts: []model.ProductFact{
		{ID: 1, Name: "Collier Perle", Price: 320, Category: "Colliers", Stock: 0, IsFeatured: true},
		{ID: 2, Name: "Collier Or", Price: 540, Category: "Colliers", Stock: 6, IsFeatured: false},
		{ID: 3, Name: "Collier Argent", Price: 210, Category: "Colliers", Stock: 3, IsFeatured: true},
	}}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "2", Score: 0.95},
		{ID: "1", Score: 0.90},
		{ID: "3", Score: 0.40},
	}}
	engine := NewRetrievalEngine(catalog, &fakeEmbedder{}, index, testAssistantConfig())

	result, err := engine.Retrieve(context.Background(), "un collier pour un anniversaire")
	require.NoError(t, err)
	require.False(t, result.Direct)
	require.False(t, result.NeedsClarification)
	require.Len(t, result.Facts, 3)
	// featured + in stock first, then featured out of stock, then the closest match
	require.Equal(t, int64(3), result.Facts[0].ID)
	require.Equal(t, int64(1), result.Facts[1].ID)
	require.Equal(t, int64(2), result.Facts[2].ID)
}

func TestRetrieveRingQueryKeepsOnlyRings(t *testing.T) {
	catalog := &fakeCatalog{facts: []model.ProductFact{
		{ID: 1, Name: "Bague Éternité", Category: "Bagues", Stock: 5, IsFeatured: true},
		{ID: 2, Name: "Collier Or", Category: "Colliers", Stock: 6, IsFeatured: true},
	}}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "2", Score: 0.95},
		{ID: "1", Score: 0.60},
	}}
	engine := NewRetrievalEngine(catalog, &fakeEmbedder{}, index, testAssistantConfig())

	result, err := engine.Retrieve(context.Background(), "une alliance pour mon mariage")
	require.NoError(t, err)
	require.False(t, result.NeedsClarification)
	require.Len(t, result.Facts, 1)
	require.Equal(t, "Bague Éternité", result.Facts[0].Name)
}

func TestRetrieveRingQueryWithoutRingsAsksClarification(t *testing.T) {
	catalog := &fakeCatalog{facts: []model.ProductFact{
		{ID: 2, Name: "Collier Or", Category: "Colliers", Stock: 6, IsFeatured: true},
		{ID: 3, Name: "Bracelet Argent", Category: "Bracelets", Stock: 2},
	}}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "2", Score: 0.95},
		{ID: "3", Score: 0.80},
	}}
	engine := NewRetrievalEngine(catalog, &fakeEmbedder{}, index, testAssistantConfig())

	result, err := engine.Retrieve(context.Background(), "une alliance")
	require.NoError(t, err)
	require.True(t, result.NeedsClarification)
	require.NotEmpty(t, result.Reply)
	require.Empty(t, result.Facts)
}

func TestRetrieveRecommendationShortCircuits(t *testing.T) {
	catalog := &fakeCatalog{facts: []model.ProductFact{
		{ID: 1, Name: "Bague Éternité", Price: 890, Category: "Bagues", Stock: 5, IsFeatured: true},
		{ID: 2, Name: "Collier Or", Price: 540, Category: "Colliers", Stock: 6, IsFeatured: true},
		{ID: 3, Name: "Bracelet Argent", Price: 210, Category: "Bracelets", Stock: 2},
		{ID: 4, Name: "Boucles Perle", Price: 180, Category: "Boucles", Stock: 9},
		{ID: 5, Name: "Montre Acier", Price: 1450, Category: "Montres", Stock: 1},
	}}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "1", Score: 0.9}, {ID: "2", Score: 0.8}, {ID: "3", Score: 0.7},
		{ID: "4", Score: 0.6}, {ID: "5", Score: 0.5},
	}}
	engine := NewRetrievalEngine(catalog, &fakeEmbedder{}, index, testAssistantConfig())

	result, err := engine.Retrieve(context.Background(), "propose-moi un cadeau")
	require.NoError(t, err)
	require.True(t, result.Direct)
	require.Len(t, result.Facts, 4)
	require.Contains(t, result.Reply, "Voici des suggestions adaptées")
	require.Contains(t, result.Reply, "Bague Éternité")
	require.Contains(t, result.Reply, "panier")
}

func TestRetrieveFallsBackToMatchMetadata(t *testing.T) {
	catalog := &fakeCatalog{}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "42", Score: 0.9, Metadata: map[string]interface{}{
			"name": "Pendentif Lune", "price": 260.0, "category": "Colliers",
			"stock": 4.0, "isFeatured": true,
		}},
		{ID: "not-a-number", Score: 0.8},
		{ID: "43", Score: 0.7}, // no metadata, no catalog row: dropped
	}}
	engine := NewRetrievalEngine(catalog, &fakeEmbedder{}, index, testAssistantConfig())

	result, err := engine.Retrieve(context.Background(), "un pendentif discret")
	require.NoError(t, err)
	require.Len(t, result.Facts, 1)
	require.Equal(t, int64(42), result.Facts[0].ID)
	require.Equal(t, "Pendentif Lune", result.Facts[0].Name)
	require.Equal(t, model.StockAvailable, result.Facts[0].Availability())
}

func TestRetrieveCachesQueryEmbeddings(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	engine := NewRetrievalEngine(&fakeCatalog{}, embedder, index, testAssistantConfig())

	_, err := engine.Retrieve(context.Background(), "un bracelet en or")
	require.NoError(t, err)
	_, err = engine.Retrieve(context.Background(), "un bracelet en or")
	require.NoError(t, err)

	require.Equal(t, 1, embedder.callCount())
	require.Equal(t, 2, index.queryCount())
}

func TestRetrieveWrapsEmbeddingFailures(t *testing.T) {
	embedder := &fakeEmbedder{err: context.DeadlineExceeded}
	engine := NewRetrievalEngine(&fakeCatalog{}, embedder, &fakeIndex{}, testAssistantConfig())

	_, err := engine.Retrieve(context.Background(), "un collier")
	require.ErrorIs(t, err, errs.ErrRetrievalUnavailable)
}
