package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the service. Values come from the
// environment (a .env file is loaded by the entrypoint); each field has a
// working default so the binary starts with nothing but PG credentials set.
type Config struct {
	ServerAddr string

	PGHost   string
	PGPort   int
	PGUser   string
	PGPass   string
	PGDBName string

	EmbedURL      string
	EmbedModel    string
	GenerateURL   string
	GenerateModel string

	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	TopK         int
	TokenBudget  int

	SessionTTL      time.Duration
	SweepInterval   time.Duration
	ProviderTimeout time.Duration

	LogFile string
	Prod    bool
}

func Load() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8000"),

		PGHost:   getEnv("PG_HOST", "localhost"),
		PGPort:   getEnvInt("PG_PORT", 5432),
		PGUser:   getEnv("PG_USER", "postgres"),
		PGPass:   getEnv("PG_PASS", "postgres"),
		PGDBName: getEnv("PG_DB_NAME", "docqa"),

		EmbedURL:      getEnv("OLLAMA_EMBEDDING_URL", "http://localhost:11434/api/embed"),
		EmbedModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
		GenerateURL:   getEnv("LLM_URL", "http://localhost:11434/api/generate"),
		GenerateModel: getEnv("LLM_MODEL", "llama3.1"),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),
		BatchSize:    getEnvInt("INGEST_BATCH_SIZE", 100),
		TopK:         getEnvInt("QUERY_TOP_K", 5),
		TokenBudget:  getEnvInt("CONTEXT_TOKEN_BUDGET", 3000),

		SessionTTL:      getEnvDuration("SESSION_TTL", 60*time.Minute),
		SweepInterval:   getEnvDuration("SWEEP_INTERVAL", 10*time.Minute),
		ProviderTimeout: getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),

		LogFile: getEnv("LOG_FILE", "logs/docqa.log"),
		Prod:    getEnvBool("PROD", false),
	}
}

// DSN builds the Postgres connection string the same way the server always
// did, from the individual PG_* variables.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.PGHost, c.PGPort, c.PGUser, c.PGPass, c.PGDBName)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
