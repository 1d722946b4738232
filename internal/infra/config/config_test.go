package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "9020", cfg.Port)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 80, cfg.ChunkOverlap)
	assert.Equal(t, 20, cfg.RetrievalLimit)
	assert.Equal(t, 6, cfg.TopK)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("CHUNK_SIZE", "400")
	t.Setenv("CLASSIFIER_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, "8088", cfg.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 400, cfg.ChunkSize)
	assert.Equal(t, 2.5, cfg.Classifier.RatePerSecond)
}

func TestLoad_GeneratorFallsBackToOllamaURL(t *testing.T) {
	t.Setenv("OLLAMA_URL", "http://models:11434")

	cfg := Load()

	assert.Equal(t, "http://models:11434", cfg.Generator.BaseURL)
	assert.Equal(t, "http://models:11434", cfg.Classifier.BaseURL)
}

func TestDBConfig_DSN(t *testing.T) {
	dsn := DBConfig{
		Host:     "db",
		Port:     "5432",
		User:     "u",
		Password: "p",
		Name:     "corpus",
	}.DSN()

	assert.Equal(t, "postgres://u:p@db:5432/corpus", dsn)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Load()
		require.NoError(t, cfg.Validate())
		return cfg
	}

	t.Run("Rejects overlap at or above chunk size", func(t *testing.T) {
		cfg := valid()
		cfg.ChunkOverlap = cfg.ChunkSize
		assert.Error(t, cfg.Validate())
	})

	t.Run("Rejects missing embedder model", func(t *testing.T) {
		cfg := valid()
		cfg.Embedder.Model = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Rejects non-positive embedding dimension", func(t *testing.T) {
		cfg := valid()
		cfg.EmbeddingDim = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("Rejects empty redis url", func(t *testing.T) {
		cfg := valid()
		cfg.Redis.URL = ""
		assert.Error(t, cfg.Validate())
	})
}
