package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "finx.yaml")
	yaml := `
server:
  port: 9090
  requestTimeout: 5s
vectorStore:
  provider: memory
routing:
  defaultNamespace: industry
  historyLimit: 6
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Server.Port != 9090 || cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Routing.DefaultNamespace != "industry" || cfg.Routing.HistoryLimit != 6 {
		t.Errorf("routing = %+v", cfg.Routing)
	}
	if len(cfg.Routing.Entities) != 3 || cfg.Routing.Entities[0].Namespace != "cipla" {
		t.Errorf("default entities not applied: %+v", cfg.Routing.Entities)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o-mini" || cfg.OpenAI.EmbeddingModel != "text-embedding-3-large" {
		t.Errorf("openai defaults = %+v", cfg.OpenAI)
	}
	if cfg.VectorStore.TopK != 8 || cfg.WebSearch.NumResults != 3 || cfg.WebSearch.ExcerptChars != 500 {
		t.Errorf("retrieval defaults = %+v / %+v", cfg.VectorStore, cfg.WebSearch)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 || cfg.Ingest.BatchSize != 100 || cfg.Ingest.MaxRetries != 3 {
		t.Errorf("ingest defaults = %+v", cfg.Ingest)
	}
	if !cfg.VectorStore.Configured() {
		t.Error("memory store should always be configured")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing path should fail")
	}
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("server: [unclosed"), 0o644)
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"OPENAI_API_KEY":   "sk-1",
		"PINECONE_API_KEY": "pc-1",
		"PINECONE_INDEX":   "finx-legacy",
		"PINECODE_HOST":    "finx.svc.pinecone.io",
		"EXA_API_KEY":      "exa-1",
		"PORT":             "3000",
		"REDIS_ADDR":       "redis.local:6380",
		"LOG_LEVEL":        "debug",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	var cfg Config
	cfg.applyEnv(lookup)
	cfg.applyDefaults()

	if !cfg.OpenAI.Configured() || !cfg.WebSearch.Configured() {
		t.Error("credentials not picked up")
	}
	p := cfg.VectorStore.Pinecone
	if p.APIKey != "pc-1" || p.IndexName != "finx-legacy" || p.Host != "finx.svc.pinecone.io" {
		t.Errorf("pinecone = %+v", p)
	}
	if !cfg.VectorStore.Configured() {
		t.Error("pinecone should be configured")
	}
	if cfg.Server.Port != 3000 || cfg.Log.Level != "debug" {
		t.Errorf("server/log = %+v / %+v", cfg.Server, cfg.Log)
	}
	if cfg.Redis.Host != "redis.local" || cfg.Redis.Port != 6380 || !cfg.Redis.Configured() {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestApplyEnvPrefersPrimaryNames(t *testing.T) {
	env := map[string]string{
		"PINECONE_INDEX_NAME": "primary",
		"PINECONE_INDEX":      "legacy",
		"PINECONE_HOST":       "primary-host",
		"PINECODE_HOST":       "typo-host",
	}
	var cfg Config
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.VectorStore.Pinecone.IndexName != "primary" || cfg.VectorStore.Pinecone.Host != "primary-host" {
		t.Errorf("pinecone = %+v", cfg.VectorStore.Pinecone)
	}
}

func TestNothingConfiguredByDefault(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	if cfg.OpenAI.Configured() || cfg.WebSearch.Configured() || cfg.VectorStore.Configured() || cfg.Redis.Configured() {
		t.Errorf("empty config reports configured backends: %+v", cfg)
	}
}

func TestChunkOverlapClamped(t *testing.T) {
	cfg := Config{Ingest: IngestConfig{ChunkSize: 500, ChunkOverlap: 800}}
	cfg.applyDefaults()
	if cfg.Ingest.ChunkOverlap != 100 {
		t.Errorf("overlap = %d, want size/5", cfg.Ingest.ChunkOverlap)
	}
}
