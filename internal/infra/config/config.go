package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config carries everything the service needs at startup. Load never
// fails; Validate rejects configurations the service cannot run with
// before anything connects.
type Config struct {
	Env  string
	Port string

	DB         DBConfig
	Redis      RedisConfig
	Embedder   ModelConfig
	Generator  ModelConfig
	Classifier ClassifierConfig

	EmbeddingDim       int
	ChunkSize          int
	ChunkOverlap       int
	RetrievalLimit     int
	TopK               int
	AnswerMaxTokens    int
	IngestConcurrency  int
	ClassifierCacheLen int
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// DSN renders the postgres connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	URL string
}

// ModelConfig points one pipeline stage at an Ollama endpoint and model.
type ModelConfig struct {
	BaseURL string
	Model   string
}

type ClassifierConfig struct {
	ModelConfig
	RatePerSecond float64
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "askdocs-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "askdocs_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "askdocs_password"),
			Name:     getEnv("DB_NAME", "askdocs_db"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://askdocs-redis:6379/0"),
		},
		Embedder: ModelConfig{
			BaseURL: getEnv("OLLAMA_URL", "http://ollama:11434"),
			Model:   getEnv("EMBEDDING_MODEL", "embeddinggemma"),
		},
		Generator: ModelConfig{
			BaseURL: getEnvWithAlt("GENERATOR_URL", "OLLAMA_URL", "http://ollama:11434"),
			Model:   getEnv("GENERATOR_MODEL", "gemma3:4b"),
		},
		Classifier: ClassifierConfig{
			ModelConfig: ModelConfig{
				BaseURL: getEnvWithAlt("CLASSIFIER_URL", "OLLAMA_URL", "http://ollama:11434"),
				Model:   getEnv("CLASSIFIER_MODEL", "gemma3:4b"),
			},
			RatePerSecond: getEnvFloat("CLASSIFIER_RPS", 4.0),
		},
		EmbeddingDim:       getEnvInt("EMBEDDING_DIM", 768),
		ChunkSize:          getEnvInt("CHUNK_SIZE", 800),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 80),
		RetrievalLimit:     getEnvInt("RETRIEVAL_LIMIT", 20),
		TopK:               getEnvInt("RANK_TOP_K", 6),
		AnswerMaxTokens:    getEnvInt("ANSWER_MAX_TOKENS", 1024),
		IngestConcurrency:  getEnvInt("INGEST_CONCURRENCY", 4),
		ClassifierCacheLen: getEnvInt("CLASSIFIER_CACHE_SIZE", 4096),
	}
}

// Validate rejects configurations the service cannot start with. Called
// once at startup; a failure here is fatal.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.DB.Host == "" || c.DB.Name == "" || c.DB.User == "" {
		return fmt.Errorf("database host, name and user are required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL must not be empty")
	}
	if c.Embedder.BaseURL == "" || c.Embedder.Model == "" {
		return fmt.Errorf("embedder URL and model are required")
	}
	if c.Generator.BaseURL == "" || c.Generator.Model == "" {
		return fmt.Errorf("generator URL and model are required")
	}
	if c.Classifier.BaseURL == "" || c.Classifier.Model == "" {
		return fmt.Errorf("classifier URL and model are required")
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.EmbeddingDim)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.ChunkOverlap)
	}
	if c.RetrievalLimit <= 0 {
		return fmt.Errorf("RETRIEVAL_LIMIT must be positive, got %d", c.RetrievalLimit)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RANK_TOP_K must be positive, got %d", c.TopK)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvWithAlt(key, altKey, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	if value, ok := os.LookupEnv(altKey); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
