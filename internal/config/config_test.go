package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_EnabledInstitutionNeedsBaseURL(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Institutions: map[string]InstitutionConfig{
			"yargitay": {Enabled: true},
		},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for enabled institution without base_url")
	}

	expected := "institutions.yargitay.base_url is required when enabled"
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_DisabledInstitutionNeedsNoBaseURL(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Institutions: map[string]InstitutionConfig{
			"yargitay": {Enabled: false},
		},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_NegativeRateLimit(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Institutions: map[string]InstitutionConfig{
			"danistay": {Enabled: true, BaseURL: "https://example.test", RateLimit: -1},
		},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative rate limit")
	}
}

func TestValidate_NoDatabaseIsAllowed(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("a database-less config must be valid, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Search.DefaultPageSize != 20 {
		t.Errorf("expected DefaultPageSize=20, got %d", cfg.Search.DefaultPageSize)
	}
	if cfg.Search.MaxPageSize != 100 {
		t.Errorf("expected MaxPageSize=100, got %d", cfg.Search.MaxPageSize)
	}
	if cfg.Search.HistoryEntries != 50 {
		t.Errorf("expected HistoryEntries=50, got %d", cfg.Search.HistoryEntries)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected default model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxTokens != 2048 {
		t.Errorf("expected MaxTokens=2048, got %d", cfg.LLM.MaxTokens)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 120, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Search:   SearchConfig{DefaultPageSize: 50, MaxPageSize: 500, HistoryEntries: 10},
		LLM:      LLMConfig{Model: "custom-model", MaxTokens: 512},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Search.DefaultPageSize != 50 {
		t.Errorf("expected DefaultPageSize=50, got %d", cfg.Search.DefaultPageSize)
	}
	if cfg.LLM.Model != "custom-model" {
		t.Errorf("expected model unchanged, got %q", cfg.LLM.Model)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("KARARBUL_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("api_key: ${KARARBUL_TEST_KEY}\nurl: ${KARARBUL_TEST_URL:-https://fallback.test}")))
	want := "api_key: secret\nurl: https://fallback.test"
	if got != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", got, want)
	}
}
