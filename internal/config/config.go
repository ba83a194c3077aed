package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Ai        AIConfig
	Pipeline  PipelineConfig
	Cache     CacheConfig
	Validator ValidatorConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "none"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	LLMProvider       string // "ollama"
	LLMModel          string // e.g. "llama3", "qwen2.5"
	GenerationTimeout time.Duration
	MaxAttempts       int
	BackoffBase       time.Duration
	BackoffMultiplier float64
	Temperature       float64
	MaxTokens         int
}

type PipelineConfig struct {
	RetrievalK          int
	RetrieverRefresh    time.Duration
	ComplexityThreshold float64
	PatternThreshold    float64
	HybridThreshold     float64
}

type CacheConfig struct {
	MinTTL      time.Duration
	MaxTTL      time.Duration
	NegativeTTL time.Duration
	Capacity    int
}

type ValidatorConfig struct {
	SecurityTier  string // "strict", "moderate", "permissive"
	MaxRows       int
	MaxJoins      int
	MaxSubqueries int
	ExecTimeout   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", 30*time.Second),
			MaxAttempts:       getEnvAsInt("GENERATION_MAX_ATTEMPTS", 3),
			BackoffBase:       getEnvAsDuration("GENERATION_BACKOFF_BASE", 500*time.Millisecond),
			BackoffMultiplier: getEnvAsFloat("GENERATION_BACKOFF_MULTIPLIER", 2.0),
			Temperature:       getEnvAsFloat("GENERATION_TEMPERATURE", 0.1),
			MaxTokens:         getEnvAsInt("GENERATION_MAX_TOKENS", 1024),
		},
		Pipeline: PipelineConfig{
			RetrievalK:          getEnvAsInt("RETRIEVAL_TOP_K", 5),
			RetrieverRefresh:    getEnvAsDuration("RETRIEVER_REFRESH_INTERVAL", 15*time.Minute),
			ComplexityThreshold: getEnvAsFloat("ROUTER_COMPLEXITY_THRESHOLD", 0.6),
			PatternThreshold:    getEnvAsFloat("ROUTER_PATTERN_THRESHOLD", 0.8),
			HybridThreshold:     getEnvAsFloat("ROUTER_HYBRID_THRESHOLD", 0.5),
		},
		Cache: CacheConfig{
			MinTTL:      getEnvAsDuration("CACHE_MIN_TTL", 5*time.Minute),
			MaxTTL:      getEnvAsDuration("CACHE_MAX_TTL", 60*time.Minute),
			NegativeTTL: getEnvAsDuration("CACHE_NEGATIVE_TTL", 30*time.Second),
			Capacity:    getEnvAsInt("CACHE_CAPACITY", 1000),
		},
		Validator: ValidatorConfig{
			SecurityTier:  getEnv("VALIDATOR_SECURITY_TIER", "strict"),
			MaxRows:       getEnvAsInt("EXECUTOR_MAX_ROWS", 500),
			MaxJoins:      getEnvAsInt("VALIDATOR_MAX_JOINS", 3),
			MaxSubqueries: getEnvAsInt("VALIDATOR_MAX_SUBQUERIES", 1),
			ExecTimeout:   getEnvAsDuration("EXECUTOR_TIMEOUT", 3*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
