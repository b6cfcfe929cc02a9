package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
	"github.com/bijouxelegance/boutique/internal/vector"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		Provider:      "groq",
		Model:         "llama-3.1-8b-instant",
		FallbackModel: "llama-3.3-70b-versatile",
		Temperature:   0.2,
		MaxTokens:     500,
	}
}

func newChatService(catalog *fakeCatalog, embedder *fakeEmbedder, index *fakeIndex, chat *fakeChat) *ChatService {
	cfg := testAssistantConfig()
	retrieval := NewRetrievalEngine(catalog, embedder, index, cfg)
	return NewChatService(retrieval, catalog, chat, testChatConfig(), cfg)
}

func TestHandleGreetingSkipsRetrieval(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &fakeIndex{}
	chat := &fakeChat{}
	svc := newChatService(&fakeCatalog{}, embedder, index, chat)

	turn := svc.Handle(context.Background(), "bonjour", nil)
	require.Equal(t, model.ChatSourceHeuristic, turn.Source)
	require.NotEmpty(t, turn.Reply)
	require.Empty(t, turn.Products)
	require.Zero(t, embedder.callCount())
	require.Zero(t, index.queryCount())
	require.Zero(t, chat.callCount())
}

func TestHandleShortMessageIsTreatedAsGreeting(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := newChatService(&fakeCatalog{}, embedder, &fakeIndex{}, &fakeChat{})

	turn := svc.Handle(context.Background(), "aidez", nil)
	require.Equal(t, model.ChatSourceHeuristic, turn.Source)
	require.Zero(t, embedder.callCount())
}

func TestHandleEmptyMessage(t *testing.T) {
	svc := newChatService(&fakeCatalog{}, &fakeEmbedder{}, &fakeIndex{}, &fakeChat{})

	turn := svc.Handle(context.Background(), "   ", nil)
	require.Equal(t, model.ChatSourceHeuristic, turn.Source)
	require.Equal(t, replyEmptyMessage, turn.Reply)
}

func TestHandleCartWordWithEmptyCartShowsFeatured(t *testing.T) {
	catalog := &fakeCatalog{featured: []model.ProductFact{
		{ID: 1, Name: "Bague Éternité", Price: 890, Category: "Bagues", Stock: 5, IsFeatured: true},
		{ID: 2, Name: "Collier Or", Price: 540, Category: "Colliers", Stock: 6, IsFeatured: true},
		{ID: 3, Name: "Bracelet Argent", Price: 210, Category: "Bracelets", Stock: 2, IsFeatured: true},
		{ID: 4, Name: "Montre Acier", Price: 1450, Category: "Montres", Stock: 1, IsFeatured: true},
	}}
	embedder := &fakeEmbedder{}
	chat := &fakeChat{}
	svc := newChatService(catalog, embedder, &fakeIndex{}, chat)

	turn := svc.Handle(context.Background(), "que contient mon panier ?", nil)
	require.Equal(t, model.ChatSourceHeuristic, turn.Source)
	require.Len(t, turn.Products, 3)
	require.Zero(t, embedder.callCount())
	require.Zero(t, chat.callCount())
}

func TestHandleCartWordWithItemsGoesThroughRetrieval(t *testing.T) {
	catalog := &fakeCatalog{facts: ringFacts()}
	index := &fakeIndex{matches: []vector.Match{{ID: "1", Score: 0.9}}}
	chat := &fakeChat{reply: "La Bague Éternité irait très bien avec votre panier."}
	svc := newChatService(catalog, &fakeEmbedder{}, index, chat)

	cart := []model.LocalCartItem{{ProductID: 2, Quantity: 1}}
	turn := svc.Handle(context.Background(), "un bijou assorti à mon panier actuel", cart)
	require.Equal(t, model.ChatSourceRetrieval, turn.Source)
	require.Equal(t, 1, chat.callCount())
}

func TestHandlePromptResolvesLocalCartToNames(t *testing.T) {
	catalog := &fakeCatalog{facts: append(ringFacts(),
		model.ProductFact{ID: 7, Name: "Collier Perle", Price: 320, Category: "Colliers", Stock: 2},
	)}
	index := &fakeIndex{matches: []vector.Match{{ID: "1", Score: 0.9}}}
	chat := &fakeChat{}
	svc := newChatService(catalog, &fakeEmbedder{}, index, chat)

	cart := []model.LocalCartItem{{ProductID: 7, Quantity: 2}, {ProductID: 999, Quantity: 1}}
	turn := svc.Handle(context.Background(), "un bijou assorti à mon collier", cart)
	require.Equal(t, model.ChatSourceRetrieval, turn.Source)

	system := chat.lastSystem()
	require.Contains(t, system, "Panier actuel du client :")
	require.Contains(t, system, "Collier Perle")
	require.Contains(t, system, "Bientôt saturé")
	require.NotContains(t, system, "article 7")
	require.NotContains(t, system, "x2")
	require.NotContains(t, system, "999")
}

func TestHandleGreetingWordInsideMessageIsNotAGreeting(t *testing.T) {
	catalog := &fakeCatalog{facts: ringFacts()}
	index := &fakeIndex{matches: []vector.Match{{ID: "1", Score: 0.9}}}
	chat := &fakeChat{}
	embedder := &fakeEmbedder{}
	svc := newChatService(catalog, embedder, index, chat)

	turn := svc.Handle(context.Background(), "j'ai vu hier un joli collier en or, en avez-vous ?", nil)
	require.Equal(t, model.ChatSourceRetrieval, turn.Source)
	require.Equal(t, 1, embedder.callCount())
	require.NotEqual(t, replyGreeting, turn.Reply)
}

func TestHandleGreetingPrefixStillMatches(t *testing.T) {
	embedder := &fakeEmbedder{}
	svc := newChatService(&fakeCatalog{}, embedder, &fakeIndex{}, &fakeChat{})

	turn := svc.Handle(context.Background(), "Bonjour, que me proposez-vous aujourd'hui ?", nil)
	require.Equal(t, model.ChatSourceHeuristic, turn.Source)
	require.Equal(t, replyGreeting, turn.Reply)
	require.Zero(t, embedder.callCount())
}

func TestHandleDirectRecommendationSkipsModel(t *testing.T) {
	facts := ringFacts()
	catalog := &fakeCatalog{facts: facts}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "1", Score: 0.9}, {ID: "2", Score: 0.7}, {ID: "3", Score: 0.5},
	}}
	chat := &fakeChat{}
	svc := newChatService(catalog, &fakeEmbedder{}, index, chat)

	turn := svc.Handle(context.Background(), "suggère-moi une bague de mariage", nil)
	require.Equal(t, model.ChatSourceSuggestion, turn.Source)
	require.Zero(t, chat.callCount())
	require.Len(t, turn.Products, 3)
	// all featured and in stock: similarity order holds
	require.Equal(t, "Bague Éternité", turn.Products[0].Name)
	require.Equal(t, "Bague Solitaire", turn.Products[1].Name)
	require.Equal(t, "Bague Promesse", turn.Products[2].Name)
	require.Contains(t, turn.Reply, "Souhaitez-vous ajouter l'un de ces articles à votre panier ?")
}

func TestHandleRingClarification(t *testing.T) {
	catalog := &fakeCatalog{facts: []model.ProductFact{
		{ID: 2, Name: "Collier Or", Category: "Colliers", Stock: 6, IsFeatured: true},
	}}
	index := &fakeIndex{matches: []vector.Match{{ID: "2", Score: 0.95}}}
	chat := &fakeChat{}
	svc := newChatService(catalog, &fakeEmbedder{}, index, chat)

	turn := svc.Handle(context.Background(), "auriez-vous une alliance ?", nil)
	require.Equal(t, model.ChatSourceHeuristic, turn.Source)
	require.Zero(t, chat.callCount())
	require.Empty(t, turn.Products)
	require.NotEmpty(t, turn.Reply)
}

func TestHandleDegradesWhenRetrievalFails(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("%w: upstream", errs.ErrEmbeddingUnavailable)}
	chat := &fakeChat{}
	svc := newChatService(&fakeCatalog{}, embedder, &fakeIndex{}, chat)

	turn := svc.Handle(context.Background(), "un collier en or blanc pour un anniversaire", nil)
	require.Equal(t, model.ChatSourceFallback, turn.Source)
	require.Equal(t, replyDegraded, turn.Reply)
	require.Empty(t, turn.Products)
	require.Zero(t, chat.callCount())
}

func TestHandleDegradesWhenModelFails(t *testing.T) {
	catalog := &fakeCatalog{facts: ringFacts()}
	index := &fakeIndex{matches: []vector.Match{{ID: "1", Score: 0.9}}}
	chat := &fakeChat{errQueue: []error{
		fmt.Errorf("%w: upstream 500", errs.ErrModel),
	}}
	svc := newChatService(catalog, &fakeEmbedder{}, index, chat)

	turn := svc.Handle(context.Background(), "un bijou original pour ma sœur", nil)
	require.Equal(t, model.ChatSourceFallback, turn.Source)
	require.Equal(t, replyModelFailure, turn.Reply)
	require.Empty(t, turn.Products)
	require.Equal(t, 1, chat.callCount())
}

func TestHandleRetriesOnceOnDecommissionedModel(t *testing.T) {
	catalog := &fakeCatalog{facts: ringFacts()}
	index := &fakeIndex{matches: []vector.Match{
		{ID: "1", Score: 0.9}, {ID: "2", Score: 0.7},
	}}
	chat := &fakeChat{
		errQueue: []error{fmt.Errorf("%w: llama-3.1-8b-instant", errs.ErrModelDecommissioned), nil},
		reply:    "La Bague Éternité est une belle pièce intemporelle.",
	}
	svc := newChatService(catalog, &fakeEmbedder{}, index, chat)

	turn := svc.Handle(context.Background(), "un cadeau élégant pour un anniversaire de couple", nil)
	require.Equal(t, model.ChatSourceRetrieval, turn.Source)
	require.Equal(t, "La Bague Éternité est une belle pièce intemporelle.", turn.Reply)
	require.Equal(t, []string{"llama-3.1-8b-instant", "llama-3.3-70b-versatile"}, chat.callModels())
	require.Len(t, turn.Products, 2)
}

func TestHandleNeverReturnsProductIDsOrRawStock(t *testing.T) {
	catalog := &fakeCatalog{facts: ringFacts()}
	index := &fakeIndex{matches: []vector.Match{{ID: "1", Score: 0.9}}}
	svc := newChatService(catalog, &fakeEmbedder{}, index, &fakeChat{})

	turn := svc.Handle(context.Background(), "une jolie bague de fiançailles pour ma compagne", nil)
	require.Equal(t, model.ChatSourceRetrieval, turn.Source)
	for _, p := range turn.Products {
		require.NotEmpty(t, p.Name)
		require.NotEmpty(t, p.StockStatus)
	}
	require.GreaterOrEqual(t, turn.LatencyMs, int64(0))
}
