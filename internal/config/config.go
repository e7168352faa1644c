package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	OpenAIBaseURL  string
	OpenAIAPIKey   string
	EmbeddingModel string
	ChatModel      string
	VectorSize     int
	Temperature    float32
	MaxTokens      int

	ChunkSize    int
	ChunkOverlap int
	TopK         int

	SourcePath    string
	IndexPath     string
	IndexMetaPath string
	DBPath        string

	StorageGatewayURL string
	StorageRootHash   string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the chunking parameters.
// If a .env file exists in the current directory or project root, it will be loaded
// automatically. Environment variables already set take precedence over .env values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		ChatModel:      getEnv("CHAT_MODEL", "gpt-4o"),

		SourcePath:    getEnv("SOURCE_PATH", "./repomix-output.xml"),
		IndexPath:     getEnv("INDEX_CACHE_PATH", "./data/index-cache.json"),
		IndexMetaPath: getEnv("INDEX_META_PATH", "./data/index-meta.json"),
		DBPath:        getEnv("DB_PATH", "./data/openio.db"),

		StorageGatewayURL: getEnv("STORAGE_GATEWAY_URL", ""),
		StorageRootHash:   getEnv("EMBEDDINGS_ROOT_HASH", ""),

		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	var parseErr error
	cfg.VectorSize, parseErr = getEnvInt("VECTOR_SIZE", 1536)
	if parseErr != nil {
		return nil, parseErr
	}
	cfg.ChunkSize, parseErr = getEnvInt("CHUNK_SIZE", 1200)
	if parseErr != nil {
		return nil, parseErr
	}
	cfg.ChunkOverlap, parseErr = getEnvInt("CHUNK_OVERLAP", 200)
	if parseErr != nil {
		return nil, parseErr
	}
	cfg.TopK, parseErr = getEnvInt("TOP_K", 5)
	if parseErr != nil {
		return nil, parseErr
	}
	cfg.MaxTokens, parseErr = getEnvInt("MAX_TOKENS", 1000)
	if parseErr != nil {
		return nil, parseErr
	}

	tempStr := getEnv("TEMPERATURE", "0.3")
	temp, err := strconv.ParseFloat(tempStr, 32)
	if err != nil {
		return nil, fmt.Errorf("TEMPERATURE must be a valid number: %w", err)
	}
	cfg.Temperature = float32(temp)

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	// The chunker loop advances by size-overlap per iteration. Reject
	// parameters that would make it stall before the first document arrives.
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}
	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE must be greater than 0")
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE)")
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("TOP_K must be greater than 0")
	}

	// Create ./data directory if it doesn't exist (snapshot + DB files)
	for _, p := range []string{cfg.IndexPath, cfg.IndexMetaPath, cfg.DBPath} {
		if dir := filepath.Dir(p); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

// parseLogLevel converts a level name to a slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL: %s", level)
	}
}
