// Package config loads process configuration from the environment, with an
// optional .env file picked up at startup.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	StoreFile     = "file"
	StorePostgres = "postgres"
)

type EmbeddingsConfig struct {
	Provider  string
	Model     string
	Dimension int
	BatchSize int
}

type LLMConfig struct {
	Provider    string
	Model       string
	Temperature float32
}

type Config struct {
	DataDir   string
	IndexPath string

	VectorStore string
	PostgresDSN string

	ChunkSize     int
	MinChunkChars int
	TopK          int
	MemorySize    int

	ExpandQueries bool

	Embeddings EmbeddingsConfig
	LLM        LLMConfig

	OllamaHost    string
	OpenAIAPIKey  string
	OpenAIBaseURL string

	ListenAddr string
	AdminToken string
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		DataDir:       getEnv("DATA_DIR", "data"),
		IndexPath:     getEnv("INDEX_PATH", "index.bin"),
		VectorStore:   getEnv("VECTOR_STORE", StoreFile),
		PostgresDSN:   getEnv("POSTGRES_DSN", "postgres://localhost:5432/apiary?sslmode=disable"),
		ChunkSize:     getEnvInt("CHUNK_SIZE", 1000),
		MinChunkChars: getEnvInt("MIN_CHUNK_CHARS", 50),
		TopK:          getEnvInt("TOP_K", 8),
		MemorySize:    getEnvInt("MEMORY_SIZE", 5),
		ExpandQueries: getEnvBool("EXPAND_QUERIES", false),
		Embeddings: EmbeddingsConfig{
			Provider:  getEnv("EMBEDDINGS_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDINGS_DIMENSION", 1536),
			BatchSize: getEnvInt("EMBEDDINGS_BATCH_SIZE", 32),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:       getEnv("LLM_MODEL", "gpt-4.1-mini"),
			Temperature: float32(getEnvFloat("LLM_TEMPERATURE", 0.3)),
		},
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),
		AdminToken:    getEnv("ADMIN_TOKEN", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
