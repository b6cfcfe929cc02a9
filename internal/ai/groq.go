package ai

import (
	"net/http"
	"strings"
)

// Groq speaks the OpenAI wire protocol; only the base URL differs.
const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

func createGroqChatFactory(args interface{}) (IChatProvider, error) {
	cfg := &openAIConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	return &openAIChatProvider{
		name:    "groq",
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
		client:  http.DefaultClient,
	}, nil
}

func init() {
	RegisterChat("groq", createGroqChatFactory)
}
