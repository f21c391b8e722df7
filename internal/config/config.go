package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no config path is given on the command line or in FINX_CONFIG.
const DefaultPath = "configs/finx-server.yaml"

// Config application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	WebSearch   WebSearchConfig   `yaml:"webSearch"`
	Routing     RoutingConfig     `yaml:"routing"`
	Redis       RedisConfig       `yaml:"redis"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port           int           `yaml:"port"`
	Name           string        `yaml:"name"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// LogConfig logging settings
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// OpenAIConfig generation and embedding backend
type OpenAIConfig struct {
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	ChatModel      string        `yaml:"chatModel"`
	EmbeddingModel string        `yaml:"embeddingModel"`
	Timeout        time.Duration `yaml:"timeout"`
}

// Configured reports whether the generation backend has a credential.
func (c OpenAIConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// VectorStoreConfig knowledge base backend
type VectorStoreConfig struct {
	Provider string         `yaml:"provider"` // pinecone, pgvector, memory
	TopK     int            `yaml:"topK"`
	Pinecone PineconeConfig `yaml:"pinecone"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// PineconeConfig Pinecone index settings
type PineconeConfig struct {
	APIKey       string `yaml:"apiKey"`
	IndexName    string `yaml:"indexName"`
	Host         string `yaml:"host"`
	ControlPlane string `yaml:"controlPlane"`
}

// PostgresConfig pgvector settings
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// Configured reports whether the selected vector store backend has what it needs.
func (c VectorStoreConfig) Configured() bool {
	switch c.Provider {
	case "memory":
		return true
	case "pgvector":
		return c.Postgres.DSN != ""
	default:
		return c.Pinecone.APIKey != "" && c.Pinecone.IndexName != ""
	}
}

// WebSearchConfig live web search backend
type WebSearchConfig struct {
	APIKey       string        `yaml:"apiKey"`
	BaseURL      string        `yaml:"baseUrl"`
	NumResults   int           `yaml:"numResults"`
	ExcerptChars int           `yaml:"excerptChars"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Configured reports whether web search has a credential.
func (c WebSearchConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// RoutingConfig vocabulary used to classify queries and pick namespaces
type RoutingConfig struct {
	DefaultNamespace string         `yaml:"defaultNamespace"`
	HistoryLimit     int            `yaml:"historyLimit"`
	Entities         []EntityConfig `yaml:"entities"` // priority order, first match wins
	DomainTerms      []string       `yaml:"domainTerms"`
	WebIntentTerms   []string       `yaml:"webIntentTerms"`
	SystemPrompt     string         `yaml:"systemPrompt"`
}

// EntityConfig one tracked company and the aliases that select its namespace
type EntityConfig struct {
	Namespace string   `yaml:"namespace"`
	Aliases   []string `yaml:"aliases"`
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Configured reports whether a Redis host was set.
func (c RedisConfig) Configured() bool {
	return c.Host != ""
}

// IngestConfig offline ingestion job settings
type IngestConfig struct {
	DataRoot     string `yaml:"dataRoot"`
	ChunkSize    int    `yaml:"chunkSize"`
	ChunkOverlap int    `yaml:"chunkOverlap"`
	BatchSize    int    `yaml:"batchSize"`
	MaxRetries   int    `yaml:"maxRetries"`
}

// LoadConfig loads the YAML file at path, applies environment overrides and defaults.
// A missing file at DefaultPath is not an error so the service can run from env alone.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overrides credentials and endpoints from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	str(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	str(&c.VectorStore.Pinecone.APIKey, "PINECONE_API_KEY")
	str(&c.VectorStore.Pinecone.IndexName, "PINECONE_INDEX_NAME", "PINECONE_INDEX")
	// PINECODE_HOST is a typo seen in existing deployments.
	str(&c.VectorStore.Pinecone.Host, "PINECONE_HOST", "PINECODE_HOST")
	str(&c.VectorStore.Postgres.DSN, "DATABASE_URL")
	str(&c.WebSearch.APIKey, "EXA_API_KEY")
	str(&c.Log.Level, "LOG_LEVEL")

	if v, ok := lookup("PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		host, port, found := strings.Cut(v, ":")
		c.Redis.Host = host
		if found {
			if p, err := strconv.Atoi(port); err == nil {
				c.Redis.Port = p
			}
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Name == "" {
		c.Server.Name = "finx-server"
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if c.OpenAI.ChatModel == "" {
		c.OpenAI.ChatModel = "gpt-4o-mini"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-3-large"
	}
	if c.OpenAI.Timeout <= 0 {
		c.OpenAI.Timeout = 25 * time.Second
	}

	if c.VectorStore.Provider == "" {
		c.VectorStore.Provider = "pinecone"
	}
	if c.VectorStore.TopK <= 0 {
		c.VectorStore.TopK = 8
	}
	if c.VectorStore.Pinecone.ControlPlane == "" {
		c.VectorStore.Pinecone.ControlPlane = "https://api.pinecone.io"
	}
	if c.VectorStore.Postgres.Table == "" {
		c.VectorStore.Postgres.Table = "finx_vectors"
	}

	if c.WebSearch.BaseURL == "" {
		c.WebSearch.BaseURL = "https://api.exa.ai"
	}
	if c.WebSearch.NumResults <= 0 {
		c.WebSearch.NumResults = 3
	}
	if c.WebSearch.ExcerptChars <= 0 {
		c.WebSearch.ExcerptChars = 500
	}
	if c.WebSearch.Timeout <= 0 {
		c.WebSearch.Timeout = 10 * time.Second
	}

	c.Routing.applyDefaults()

	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Ingest.DataRoot == "" {
		c.Ingest.DataRoot = "data"
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 1000
	}
	if c.Ingest.ChunkOverlap <= 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		c.Ingest.ChunkOverlap = c.Ingest.ChunkSize / 5
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 100
	}
	if c.Ingest.MaxRetries <= 0 {
		c.Ingest.MaxRetries = 3
	}
}
