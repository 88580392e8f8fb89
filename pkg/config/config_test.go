package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalYAML = `
llm:
  base_url: "https://api.example.com/v1"
  api_key: "llm-key"
  model: "gpt-test"
reddit:
  client_id: "rid"
  client_secret: "rsecret"
search:
  tavily:
    api_key: "tkey"
`

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Analysis.MinInterval() != time.Second {
		t.Errorf("MinInterval = %v, want 1s default", cfg.Analysis.MinInterval())
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BaseDelay() != time.Second || cfg.Retry.Multiplier != 2.0 {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}
	if cfg.Limits.RedditPostsPerQuery != 10 || cfg.Limits.MaxCompetitors != 5 {
		t.Errorf("limit defaults = %+v", cfg.Limits)
	}
	if cfg.Reddit.UserAgent == "" {
		t.Error("user agent default missing")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "env-llm")
	t.Setenv("REDDIT_CLIENT_SECRET", "env-secret")

	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LLM.APIKey != "env-llm" {
		t.Errorf("LLM.APIKey = %q, want the env value", cfg.LLM.APIKey)
	}
	if cfg.Reddit.ClientSecret != "env-secret" {
		t.Errorf("Reddit.ClientSecret = %q, want the env value", cfg.Reddit.ClientSecret)
	}
}

func TestValidateMissingCredentials(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
llm:
  model: "gpt-test"
`))
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected a config error for missing credentials")
	}
}

func TestValidateSearxngNeedsBaseURL(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Search.Provider = "searxng"
	cfg.Search.SearXNG.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected a config error when searxng is selected without a base url")
	}
}
