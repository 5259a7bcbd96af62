package config

import (
	"strings"
	"testing"
	"time"
)

func clearAPIKeys(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_AI_API_KEY", "")
}

func TestLoadDefaults(t *testing.T) {
	clearAPIKeys(t)
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults to load, got: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.LLM.DefaultModel != "gpt-4o-mini" {
		t.Errorf("unexpected default model: %q", cfg.LLM.DefaultModel)
	}
	if cfg.LLM.MaxRetries != 2 {
		t.Errorf("expected 2 retries, got %d", cfg.LLM.MaxRetries)
	}
	if cfg.LLM.RetryDelay != time.Second {
		t.Errorf("expected 1s retry delay, got %v", cfg.LLM.RetryDelay)
	}
	if cfg.Neo4j.URI != "bolt://localhost:7687" {
		t.Errorf("unexpected neo4j uri: %q", cfg.Neo4j.URI)
	}
	if cfg.Usage.LedgerPath != "token_usage.csv" {
		t.Errorf("unexpected ledger path: %q", cfg.Usage.LedgerPath)
	}
	if cfg.Pipeline.BatchTimeout != 5*time.Minute {
		t.Errorf("unexpected batch timeout: %v", cfg.Pipeline.BatchTimeout)
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	clearAPIKeys(t)

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error with no API keys configured")
	}
	if !strings.Contains(err.Error(), "API key") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadGeminiKeyAlone(t *testing.T) {
	clearAPIKeys(t)
	t.Setenv("GEMINI_API_KEY", "gem-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected gemini key to satisfy validation, got: %v", err)
	}
	if cfg.LLM.GeminiAPIKey != "gem-key" {
		t.Errorf("gemini key not bound: %q", cfg.LLM.GeminiAPIKey)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearAPIKeys(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("NEO4J_URI", "neo4j://graph.internal:7687")
	t.Setenv("NEO4J_USER", "svc")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("NEO4J_DATABASE", "articles")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected load to succeed, got: %v", err)
	}

	if cfg.Neo4j.URI != "neo4j://graph.internal:7687" {
		t.Errorf("neo4j uri not overridden: %q", cfg.Neo4j.URI)
	}
	if cfg.Neo4j.User != "svc" || cfg.Neo4j.Password != "secret" || cfg.Neo4j.Database != "articles" {
		t.Errorf("neo4j credentials not bound: %+v", cfg.Neo4j)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.OpenAIAPIKey = "key"
	cfg.LLM.MaxRetries = -1
	cfg.Server.Port = 99999

	err := validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if !strings.Contains(err.Error(), "max_retries") {
		t.Errorf("expected retries error, got: %v", err)
	}
	if !strings.Contains(err.Error(), "port") {
		t.Errorf("expected port error, got: %v", err)
	}
}
