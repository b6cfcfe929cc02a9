package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port        int              `json:"port"`
	BaseURL     string           `json:"base_url"`
	CORSOrigins []string         `json:"cors_origins"`
	LogConfig   logger.LogConfig `json:"log_config"`
	Database    DatabaseConfig   `json:"database"`
	FileStore   FileStoreConfig  `json:"file_store"`
	AI          AIConfig         `json:"ai"`
	Vector      VectorConfig     `json:"vector"`
	Indexing    IndexingConfig   `json:"indexing"`
	Assistant   AssistantConfig  `json:"assistant"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Embed EmbedConfig `json:"embed"`
	Chat  ChatConfig  `json:"chat"`
}

type EmbedConfig struct {
	Provider   string      `json:"provider"`
	Model      string      `json:"model"`
	Dimension  int         `json:"dimension"`
	MaxRetries int         `json:"max_retries"`
	Data       interface{} `json:"data"`
}

type ChatConfig struct {
	Provider       string      `json:"provider"`
	Model          string      `json:"model"`
	FallbackModel  string      `json:"fallback_model"`
	Temperature    float64     `json:"temperature"`
	MaxTokens      int         `json:"max_tokens"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	Data           interface{} `json:"data"`
}

type VectorConfig struct {
	Type      string `json:"type"`
	Endpoint  string `json:"endpoint"`
	APIKey    string `json:"api_key"`
	IndexName string `json:"index_name"`
}

type IndexingConfig struct {
	BatchSize      int    `json:"batch_size"`
	RequestDelayMs int    `json:"request_delay_ms"`
	BatchDelayMs   int    `json:"batch_delay_ms"`
	ReindexOnStart bool   `json:"reindex_on_start"`
	Cron           string `json:"cron"`
}

type AssistantConfig struct {
	TopK               int      `json:"top_k"`
	ContextLimit       int      `json:"context_limit"`
	SuggestionLimit    int      `json:"suggestion_limit"`
	TurnTimeoutSeconds int      `json:"turn_timeout_seconds"`
	Greetings          []string `json:"greetings"`
	CartWords          []string `json:"cart_words"`
	RingWords          []string `json:"ring_words"`
	RecommendWords     []string `json:"recommend_words"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	applyAIDefaults(&cfg.AI)
	applyVectorDefaults(&cfg.Vector)
	applyIndexingDefaults(&cfg.Indexing)
	applyAssistantDefaults(&cfg.Assistant)
	return &cfg, nil
}

func applyAIDefaults(cfg *AIConfig) {
	if cfg.Embed.Provider == "" {
		cfg.Embed.Provider = "mock"
	}
	if cfg.Embed.Model == "" {
		cfg.Embed.Model = "text-embedding-3-small"
	}
	if cfg.Embed.Dimension == 0 {
		cfg.Embed.Dimension = 1536
	}
	if cfg.Embed.MaxRetries == 0 {
		cfg.Embed.MaxRetries = 5
	}
	if cfg.Chat.Provider == "" {
		cfg.Chat.Provider = "groq"
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = "llama-3.1-8b-instant"
	}
	if cfg.Chat.Temperature == 0 {
		cfg.Chat.Temperature = 0.2
	}
	if cfg.Chat.MaxTokens == 0 {
		cfg.Chat.MaxTokens = 500
	}
	if cfg.Chat.TimeoutSeconds == 0 {
		cfg.Chat.TimeoutSeconds = 30
	}
}

func applyVectorDefaults(cfg *VectorConfig) {
	if cfg.Type == "" {
		cfg.Type = "pgvector"
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "products-index"
	}
}

func applyIndexingDefaults(cfg *IndexingConfig) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 3
	}
	if cfg.RequestDelayMs == 0 {
		cfg.RequestDelayMs = 2000
	}
	if cfg.BatchDelayMs == 0 {
		cfg.BatchDelayMs = 10000
	}
}

func applyAssistantDefaults(cfg *AssistantConfig) {
	if cfg.TopK == 0 {
		cfg.TopK = 10
	}
	if cfg.ContextLimit == 0 {
		cfg.ContextLimit = 8
	}
	if cfg.SuggestionLimit == 0 {
		cfg.SuggestionLimit = 4
	}
	if cfg.TurnTimeoutSeconds == 0 {
		cfg.TurnTimeoutSeconds = 45
	}
	if len(cfg.Greetings) == 0 {
		cfg.Greetings = []string{"bonjour", "salut", "bonsoir", "hello", "hi"}
	}
	if len(cfg.CartWords) == 0 {
		cfg.CartWords = []string{"panier", "acheter", "checkout", "commander"}
	}
	if len(cfg.RingWords) == 0 {
		cfg.RingWords = []string{"mariage", "alliance", "alliances", "bague de mariage", "bague"}
	}
	if len(cfg.RecommendWords) == 0 {
		cfg.RecommendWords = []string{"sugg", "propose", "recommande", "conseil", "cherche", "je veux", "montre", "quel", "quels", "suggest"}
	}
}
