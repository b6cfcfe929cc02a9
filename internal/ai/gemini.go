package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

type geminiChatProvider struct {
	apiKey string
}

func (p *geminiChatProvider) Name() string {
	return "gemini"
}

func (p *geminiChatProvider) Complete(ctx context.Context, req *ChatRequest) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%w: gemini api key not configured", errs.ErrModel)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrModel, err)
	}
	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.System}}},
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	resp, err := client.Models.GenerateContent(
		ctx,
		req.Model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: req.User}}}},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrModel, err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

type geminiEmbedProvider struct {
	apiKey string
}

func (p *geminiEmbedProvider) Name() string {
	return "gemini"
}

func (p *geminiEmbedProvider) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	if p.apiKey == "" {
		return nil, errs.ErrEmbeddingUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrProvider, err)
	}
	resp, err := client.Models.EmbedContent(
		ctx,
		model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: text}}}},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrProvider, err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding values returned", errs.ErrProvider)
	}
	return resp.Embeddings[0].Values, nil
}

func createGeminiChatFactory(args interface{}) (IChatProvider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiChatProvider{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func createGeminiEmbedFactory(args interface{}) (IEmbedProvider, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	return &geminiEmbedProvider{apiKey: strings.TrimSpace(cfg.APIKey)}, nil
}

func init() {
	RegisterChat("gemini", createGeminiChatFactory)
	RegisterEmbed("gemini", createGeminiEmbedFactory)
}
