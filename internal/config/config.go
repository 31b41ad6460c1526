package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingVectorSize int
	EmbeddingTimeout    time.Duration
	DocStoreBaseURL     string
	DBPath              string
	ChunkSizeChars      int
	ChunkOverlapPercent float64
	SimilarityThreshold float64
	CatchUpBatchSize    int
	CatchUpRatePerSec   float64
	QueueDrainInterval  time.Duration
	APIPort             string
	LogLevel            slog.Level
	LogFormat           string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

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
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "nomic-embed-text"),
		DocStoreBaseURL:    getEnv("DOCSTORE_BASE_URL", "http://localhost:8765"),
		DBPath:             getEnv("DB_PATH", "./data/recall-ai.db"),
		APIPort:            getEnv("API_PORT", "9100"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	// Note: EMBEDDING_VECTOR_SIZE must match the output vector size of the
	// embeddings model. For nomic-embed-text this is 768 dimensions. If the
	// vector size changes, stored embeddings must be regenerated.
	vectorSize, err := getEnvInt("EMBEDDING_VECTOR_SIZE", 768)
	if err != nil {
		return nil, err
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.EmbeddingVectorSize = vectorSize

	timeoutSec, err := getEnvInt("EMBEDDING_TIMEOUT_SECONDS", 30)
	if err != nil {
		return nil, err
	}
	cfg.EmbeddingTimeout = time.Duration(timeoutSec) * time.Second

	cfg.ChunkSizeChars, err = getEnvInt("CHUNK_SIZE_CHARS", 2000)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkSizeChars <= 0 {
		return nil, fmt.Errorf("CHUNK_SIZE_CHARS must be greater than 0")
	}

	cfg.ChunkOverlapPercent, err = getEnvFloat("CHUNK_OVERLAP_PERCENT", 0.15)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkOverlapPercent < 0 || cfg.ChunkOverlapPercent >= 1 {
		return nil, fmt.Errorf("CHUNK_OVERLAP_PERCENT must be in [0,1)")
	}

	cfg.SimilarityThreshold, err = getEnvFloat("SIMILARITY_THRESHOLD", 0.7)
	if err != nil {
		return nil, err
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in [0,1]")
	}

	cfg.CatchUpBatchSize, err = getEnvInt("CATCHUP_BATCH_SIZE", 10)
	if err != nil {
		return nil, err
	}
	if cfg.CatchUpBatchSize <= 0 {
		return nil, fmt.Errorf("CATCHUP_BATCH_SIZE must be greater than 0")
	}

	cfg.CatchUpRatePerSec, err = getEnvFloat("CATCHUP_RATE_PER_SEC", 2)
	if err != nil {
		return nil, err
	}
	if cfg.CatchUpRatePerSec <= 0 {
		return nil, fmt.Errorf("CATCHUP_RATE_PER_SEC must be greater than 0")
	}

	drainSec, err := getEnvInt("QUEUE_DRAIN_INTERVAL_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.QueueDrainInterval = time.Duration(drainSec) * time.Second

	cfg.LogLevel = parseLogLevel(getEnv("LOG_LEVEL", "info"))

	// Create the data directory if it doesn't exist (for the DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
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

// getEnvFloat gets a float environment variable or returns a default value.
func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}

// parseLogLevel maps a level name to a slog.Level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
