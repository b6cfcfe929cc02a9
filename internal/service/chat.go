package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/bijouxelegance/boutique/internal/ai"
	"github.com/bijouxelegance/boutique/internal/config"
	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

const (
	replyEmptyMessage = "Je suis là 🤍 Que puis-je faire pour vous ?"
	replyGreeting     = "Bonjour 🤍 Bienvenue chez Bijoux Élégance. Cherchez-vous un type de bijou en particulier, un matériau (or, argent, diamant) ou avez-vous un budget en tête ?"
	replyEmptyCart    = "Votre panier est vide pour le moment. Voici quelques-unes de nos pièces phares :"
	replyDegraded     = "Je suis désolée, la recherche dans notre catalogue est momentanément indisponible. Pouvez-vous réessayer dans quelques instants ?"
	replyModelFailure = "Je suis désolée, je n'arrive pas à vous répondre pour le moment. Pouvez-vous reformuler ou réessayer dans quelques instants ?"
	replyNoResults    = "Je n'ai pas trouvé d'article correspondant à votre demande. Pouvez-vous préciser le type de bijou, le matériau ou votre budget ?"

	descriptionLimit = 220
)

type ChatService struct {
	retrieval *RetrievalEngine
	catalog   CatalogStore
	chat      ai.IChatProvider
	chatCfg   config.ChatConfig
	cfg       config.AssistantConfig
}

func NewChatService(retrieval *RetrievalEngine, catalog CatalogStore, chat ai.IChatProvider, chatCfg config.ChatConfig, cfg config.AssistantConfig) *ChatService {
	return &ChatService{
		retrieval: retrieval,
		catalog:   catalog,
		chat:      chat,
		chatCfg:   chatCfg,
		cfg:       cfg,
	}
}

// Handle runs one assistant turn. It never returns an error: every failure
// downgrades to a polite reply with Source set to fallback so the storefront
// widget always has something to render.
func (s *ChatService) Handle(ctx context.Context, message string, localCart []model.LocalCartItem) *model.ChatTurn {
	start := time.Now()
	if s.cfg.TurnTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.TurnTimeoutSeconds)*time.Second)
		defer cancel()
	}
	turn := s.handle(ctx, message, localCart)
	turn.LatencyMs = time.Since(start).Milliseconds()
	return turn
}

func (s *ChatService) handle(ctx context.Context, message string, localCart []model.LocalCartItem) *model.ChatTurn {
	logger := logutil.GetLogger(ctx)
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	if trimmed == "" {
		return &model.ChatTurn{Reply: replyEmptyMessage, Source: model.ChatSourceHeuristic}
	}
	if s.isGreeting(lower) {
		return &model.ChatTurn{Reply: replyGreeting, Source: model.ChatSourceHeuristic}
	}
	if containsAny(lower, s.cfg.CartWords) && len(localCart) == 0 {
		return s.featuredTurn(ctx)
	}

	result, err := s.retrieval.Retrieve(ctx, trimmed)
	if err != nil {
		logger.Error("retrieval failed, degrading turn", zap.Error(err))
		return &model.ChatTurn{Reply: replyDegraded, Source: model.ChatSourceFallback}
	}
	if result.NeedsClarification {
		return &model.ChatTurn{Reply: result.Reply, Source: model.ChatSourceHeuristic}
	}
	if result.Direct {
		return &model.ChatTurn{
			Reply:    result.Reply,
			Products: suggestionsOf(result.Facts),
			Source:   model.ChatSourceSuggestion,
		}
	}
	if len(result.Facts) == 0 {
		return &model.ChatTurn{Reply: replyNoResults, Source: model.ChatSourceHeuristic}
	}

	reply, err := s.complete(ctx, trimmed, result.Facts, localCart)
	if err != nil {
		logger.Error("chat completion failed, degrading turn", zap.Error(err))
		return &model.ChatTurn{Reply: replyModelFailure, Source: model.ChatSourceFallback}
	}
	turn := &model.ChatTurn{
		Reply:  reply,
		Source: model.ChatSourceRetrieval,
	}
	top := result.Facts
	if len(top) > s.cfg.SuggestionLimit {
		top = top[:s.cfg.SuggestionLimit]
	}
	turn.Products = suggestionsOf(top)
	return turn
}

// complete calls the chat model, retrying once on a fallback model when the
// configured one has been decommissioned.
func (s *ChatService) complete(ctx context.Context, message string, facts []model.ProductFact, localCart []model.LocalCartItem) (string, error) {
	if s.chatCfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.chatCfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	req := &ai.ChatRequest{
		Model:       s.chatCfg.Model,
		System:      s.systemPrompt(facts, s.resolveCart(ctx, localCart)),
		User:        message,
		Temperature: s.chatCfg.Temperature,
		MaxTokens:   s.chatCfg.MaxTokens,
	}
	reply, err := s.chat.Complete(ctx, req)
	if err == nil {
		return reply, nil
	}
	if errors.Is(err, errs.ErrModelDecommissioned) && s.chatCfg.FallbackModel != "" && s.chatCfg.FallbackModel != req.Model {
		logutil.GetLogger(ctx).Warn("model decommissioned, retrying with fallback",
			zap.String("model", req.Model), zap.String("fallback", s.chatCfg.FallbackModel))
		req.Model = s.chatCfg.FallbackModel
		return s.chat.Complete(ctx, req)
	}
	return "", err
}

// resolveCart turns the client's cart hint into catalog rows. Unknown or
// malformed ids are dropped; the model only ever sees resolved articles.
func (s *ChatService) resolveCart(ctx context.Context, localCart []model.LocalCartItem) []model.ProductFact {
	if len(localCart) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(localCart))
	ids := make([]int64, 0, len(localCart))
	for _, item := range localCart {
		if item.ProductID <= 0 {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	if len(ids) == 0 {
		return nil
	}
	facts, err := s.catalog.FindFactsByIDs(ctx, ids)
	if err != nil {
		logutil.GetLogger(ctx).Warn("failed to resolve local cart, omitting from prompt", zap.Error(err))
		return nil
	}
	return facts
}

func (s *ChatService) systemPrompt(facts []model.ProductFact, cart []model.ProductFact) string {
	var b strings.Builder
	b.WriteString("Tu es l'assistante de la boutique de bijoux en ligne Bijoux Élégance. ")
	b.WriteString("Tu réponds en français, avec chaleur et concision.\n\n")
	b.WriteString("Articles du catalogue pertinents pour cette demande :\n")
	for _, f := range facts {
		desc := truncate(ai.PlainText(f.Description), descriptionLimit)
		b.WriteString(fmt.Sprintf("- %s | %s | %s | %s", f.Name, formatPrice(f.Price), f.Availability(), f.Category))
		if desc != "" {
			b.WriteString(" | " + desc)
		}
		b.WriteString("\n")
	}
	if len(cart) > 0 {
		b.WriteString("\nPanier actuel du client :\n")
		for _, f := range cart {
			b.WriteString(fmt.Sprintf("- %s | %s | %s | %s\n", f.Name, formatPrice(f.Price), f.Availability(), f.Category))
		}
	}
	b.WriteString("\nRègles strictes :\n")
	b.WriteString("- Ne mentionne jamais d'identifiants techniques ni de quantités exactes en stock ; utilise uniquement les statuts Disponible, Bientôt saturé ou Non disponible.\n")
	b.WriteString("- N'invente jamais de produit, de prix ni de promotion absents de la liste ci-dessus.\n")
	b.WriteString("- Si aucun article ne convient, dis-le simplement et propose de préciser la recherche.\n")
	b.WriteString("- Réponds en trois phrases maximum.\n")
	return b.String()
}

func (s *ChatService) featuredTurn(ctx context.Context) *model.ChatTurn {
	featured, err := s.catalog.FindFeaturedFacts(ctx, 3)
	if err != nil || len(featured) == 0 {
		if err != nil {
			logutil.GetLogger(ctx).Error("failed to load featured products", zap.Error(err))
		}
		return &model.ChatTurn{Reply: replyEmptyMessage, Source: model.ChatSourceHeuristic}
	}
	return &model.ChatTurn{
		Reply:    replyEmptyCart,
		Products: suggestionsOf(featured),
		Source:   model.ChatSourceHeuristic,
	}
}

// A greeting is any very short message, or a message that opens with a
// greeting word followed by a word boundary.
func (s *ChatService) isGreeting(lower string) bool {
	if utf8.RuneCountInString(lower) <= 6 {
		return true
	}
	for _, g := range s.cfg.Greetings {
		g = strings.ToLower(strings.TrimSpace(g))
		if g == "" || !strings.HasPrefix(lower, g) {
			continue
		}
		rest := lower[len(g):]
		if rest == "" {
			return true
		}
		if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func suggestionsOf(facts []model.ProductFact) []model.ProductSuggestion {
	out := make([]model.ProductSuggestion, 0, len(facts))
	for _, f := range facts {
		out = append(out, model.SuggestionOf(f))
	}
	return out
}

func truncate(text string, limit int) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
