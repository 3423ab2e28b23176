package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.DBPath != "./data/planner.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.AttemptTimeout != 45*time.Second {
		t.Errorf("AttemptTimeout = %v", cfg.LLM.AttemptTimeout)
	}
	if cfg.LLM.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d", cfg.LLM.MaxAttempts)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("LLM_MODEL", "gpt-4o")
	t.Setenv("LLM_TIMEOUT", "10s")
	t.Setenv("SESSION_TTL", "1h")
	t.Setenv("LLM_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if !cfg.LLM.Configured() {
		t.Error("LLM should be configured")
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("Model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.AttemptTimeout != 10*time.Second {
		t.Errorf("AttemptTimeout = %v", cfg.LLM.AttemptTimeout)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.LLM.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d", cfg.LLM.MaxAttempts)
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("LLM_TIMEOUT", "not-a-duration")
	t.Setenv("LLM_MAX_ATTEMPTS", "zero")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.AttemptTimeout != 45*time.Second {
		t.Errorf("AttemptTimeout = %v", cfg.LLM.AttemptTimeout)
	}
	if cfg.LLM.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d", cfg.LLM.MaxAttempts)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:       "8080",
			DBPath:     "./x.db",
			SessionTTL: time.Hour,
			LLM:        LLMConfig{Model: "m", AttemptTimeout: time.Second},
		}
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	broken := []func(*Config){
		func(c *Config) { c.Port = "" },
		func(c *Config) { c.DBPath = "" },
		func(c *Config) { c.SessionTTL = 0 },
		func(c *Config) { c.LLM.Model = "" },
		func(c *Config) { c.LLM.AttemptTimeout = 0 },
	}
	for i, mutate := range broken {
		cfg := base()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestGoogleConfigured(t *testing.T) {
	if (GoogleConfig{}).Configured() {
		t.Error("empty credentials should not be configured")
	}
	if (GoogleConfig{ClientEmail: "a@b"}).Configured() {
		t.Error("email alone is not enough")
	}
	if !(GoogleConfig{ClientEmail: "a@b", PrivateKey: "k"}).Configured() {
		t.Error("both parts present should be configured")
	}
}

func TestIsDevelopment(t *testing.T) {
	dev := []string{"", "http://localhost:5173", "http://127.0.0.1:3000"}
	for _, url := range dev {
		if !(&Config{FrontendURL: url}).IsDevelopment() {
			t.Errorf("%q should be development", url)
		}
	}
	if (&Config{FrontendURL: "https://planner.example.com"}).IsDevelopment() {
		t.Error("production URL should not be development")
	}
}
