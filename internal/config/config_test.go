package config

import (
	"log/slog"
	"path/filepath"
	"testing"
)

// setDataEnv points every file-producing path at a temp dir so Load does not
// create ./data in the repo during tests.
func setDataEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("INDEX_CACHE_PATH", filepath.Join(dir, "index-cache.json"))
	t.Setenv("INDEX_META_PATH", filepath.Join(dir, "index-meta.json"))
	t.Setenv("DB_PATH", filepath.Join(dir, "openio.db"))
}

func TestLoad_Defaults(t *testing.T) {
	setDataEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.OpenAIBaseURL != "https://api.openai.com" {
		t.Errorf("OpenAIBaseURL = %v, want https://api.openai.com", cfg.OpenAIBaseURL)
	}
	if cfg.EmbeddingModel != "text-embedding-3-small" {
		t.Errorf("EmbeddingModel = %v, want text-embedding-3-small", cfg.EmbeddingModel)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %v, want gpt-4o", cfg.ChatModel)
	}
	if cfg.VectorSize != 1536 {
		t.Errorf("VectorSize = %v, want 1536", cfg.VectorSize)
	}
	if cfg.ChunkSize != 1200 {
		t.Errorf("ChunkSize = %v, want 1200", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %v, want 200", cfg.ChunkOverlap)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %v, want 5", cfg.TopK)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %v, want 1000", cfg.MaxTokens)
	}
	if cfg.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", cfg.Temperature)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setDataEnv(t)
	t.Setenv("CHUNK_SIZE", "800")
	t.Setenv("CHUNK_OVERLAP", "100")
	t.Setenv("TOP_K", "3")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_PORT", "8080")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChunkSize != 800 {
		t.Errorf("ChunkSize = %v, want 800", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 100 {
		t.Errorf("ChunkOverlap = %v, want 100", cfg.ChunkOverlap)
	}
	if cfg.TopK != 3 {
		t.Errorf("TopK = %v, want 3", cfg.TopK)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.APIPort != "8080" {
		t.Errorf("APIPort = %v, want 8080", cfg.APIPort)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-integer chunk size", key: "CHUNK_SIZE", value: "abc"},
		{name: "zero chunk size", key: "CHUNK_SIZE", value: "0"},
		{name: "negative overlap", key: "CHUNK_OVERLAP", value: "-1"},
		{name: "overlap equal to size", key: "CHUNK_OVERLAP", value: "1200"},
		{name: "zero vector size", key: "VECTOR_SIZE", value: "0"},
		{name: "zero top k", key: "TOP_K", value: "0"},
		{name: "bad temperature", key: "TEMPERATURE", value: "warm"},
		{name: "bad log level", key: "LOG_LEVEL", value: "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setDataEnv(t)
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s expected error, got nil", tt.key, tt.value)
			}
		})
	}
}
