package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every setting the service reads.
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Database DatabaseConfig
	Novel    NovelConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	database, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	novel, err := loadNovelConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Database: database, Novel: novel}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat model used for page generation.
type AIConfig struct {
	APIKey         string
	AccessKey      string
	SecretKey      string
	Model          string
	BaseURL        string
	Region         string
	Temperature    *float64
	TopP           *float64
	MaxTokens      *int
	StreamResponse bool
}

// Enabled reports whether the required model credentials are present.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("model credentials missing: provide ARK_API_KEY + Model, or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	stream, err := parseBoolEnv("ARK_STREAM", true)
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:         strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:      strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:          strings.TrimSpace(os.Getenv("Model")),
		BaseURL:        getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:         getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:    temperature,
		TopP:           topP,
		MaxTokens:      maxTokens,
		StreamResponse: stream,
	}, nil
}

// DatabaseConfig describes the Postgres connection. An empty DSN selects
// the in-memory store.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	ConnectAttempts int
	ConnectInterval time.Duration
	SkipMigrations  bool
}

// Enabled reports whether a Postgres DSN was provided.
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	maxConns := 10
	if override, err := parseOptionalIntEnv("PG_MAX_CONNS"); err != nil {
		return DatabaseConfig{}, err
	} else if override != nil && *override > 0 {
		maxConns = *override
	}

	attempts := 3
	if override, err := parseOptionalIntEnv("PG_CONNECT_ATTEMPTS"); err != nil {
		return DatabaseConfig{}, err
	} else if override != nil && *override > 0 {
		attempts = *override
	}

	interval := 3 * time.Second
	if raw := strings.TrimSpace(os.Getenv("PG_CONNECT_INTERVAL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid PG_CONNECT_INTERVAL value %q: %w", raw, err)
		}
		interval = parsed
	}

	skip, err := parseBoolEnv("PG_SKIP_MIGRATIONS", false)
	if err != nil {
		return DatabaseConfig{}, err
	}

	return DatabaseConfig{
		DSN:             strings.TrimSpace(os.Getenv("DATABASE_URL")),
		MaxConns:        int32(maxConns),
		ConnectAttempts: attempts,
		ConnectInterval: interval,
		SkipMigrations:  skip,
	}, nil
}

// NovelConfig tunes pagination behavior.
type NovelConfig struct {
	ChunkSize      int
	CreateAttempts int
}

func loadNovelConfig() (NovelConfig, error) {
	chunkSize := 0
	if override, err := parseOptionalIntEnv("NOVEL_CHUNK_SIZE"); err != nil {
		return NovelConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return NovelConfig{}, fmt.Errorf("NOVEL_CHUNK_SIZE must be positive, got %d", *override)
		}
		chunkSize = *override
	}

	attempts := 0
	if override, err := parseOptionalIntEnv("NOVEL_CREATE_ATTEMPTS"); err != nil {
		return NovelConfig{}, err
	} else if override != nil {
		if *override < 1 {
			return NovelConfig{}, fmt.Errorf("NOVEL_CREATE_ATTEMPTS must be positive, got %d", *override)
		}
		attempts = *override
	}

	return NovelConfig{ChunkSize: chunkSize, CreateAttempts: attempts}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
