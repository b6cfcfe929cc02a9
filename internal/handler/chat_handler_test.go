package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/bijouxelegance/boutique/internal/ai"
	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/service"
	"github.com/bijouxelegance/boutique/internal/vector"
)

type stubCatalog struct{}

func (stubCatalog) FindFactsByIDs(ctx context.Context, ids []int64) ([]model.ProductFact, error) {
	return nil, nil
}

func (stubCatalog) FindFeaturedFacts(ctx context.Context, limit int) ([]model.ProductFact, error) {
	return nil, nil
}

func (stubCatalog) FindAllFacts(ctx context.Context) ([]model.ProductFact, error) {
	return nil, nil
}

type stubChatProvider struct{}

func (stubChatProvider) Name() string { return "stub" }

func (stubChatProvider) Complete(ctx context.Context, req *ai.ChatRequest) (string, error) {
	return "ok", nil
}

func newTestChatRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider, err := ai.NewEmbedProvider("mock", map[string]interface{}{"dimension": 8})
	require.NoError(t, err)
	embedder := ai.NewEmbedder(provider, ai.EmbedderConfig{Model: "mock", Dimension: 8})

	assistant := config.AssistantConfig{
		TopK: 5, ContextLimit: 5, SuggestionLimit: 3, TurnTimeoutSeconds: 5,
		Greetings:      []string{"bonjour"},
		CartWords:      []string{"panier"},
		RingWords:      []string{"bague"},
		RecommendWords: []string{"sugg"},
	}
	retrieval := service.NewRetrievalEngine(stubCatalog{}, embedder, vector.NewMemoryIndex(), assistant)
	chat := service.NewChatService(retrieval, stubCatalog{}, stubChatProvider{}, config.ChatConfig{Model: "stub-model"}, assistant)

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.POST("/chat", NewChatHandler(chat).Ask)
	return engine
}

func TestChatHandlerGreeting(t *testing.T) {
	engine := newTestChatRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"message":"bonjour"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), model.ChatSourceHeuristic)
}

func TestChatHandlerNoMatchesStaysUp(t *testing.T) {
	engine := newTestChatRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"message":"un collier en or pour un anniversaire","localCart":[]}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "reply")
}

func TestChatHandlerMalformedBody(t *testing.T) {
	engine := newTestChatRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/chat", strings.NewReader(`{"message":`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	require.Contains(t, w.Body.String(), "invalid request body")
}
