package configs

import (
	"os"
	"testing"
)

var testEnvKeys = []string{
	"APP_ENV",
	"APP_PORT",
	"LMSTUDIO_BASE_URL",
	"LMSTUDIO_API_KEY",
	"LMSTUDIO_MODEL",
	"LMSTUDIO_TIMEOUT_MS",
	"LMSTUDIO_STREAM",
	"GENERATE_MAX_TOKENS",
	"GENERATE_TEMPERATURE",
	"GENERATE_SEED",
}

// setupTestEnv sets the LM Studio environment overrides used by the tests
func setupTestEnv() {
	os.Setenv("APP_ENV", "test")
	os.Setenv("APP_PORT", "8080")
	os.Setenv("LMSTUDIO_BASE_URL", "http://127.0.0.1:5678/v1")
	os.Setenv("LMSTUDIO_API_KEY", "secret")
	os.Setenv("LMSTUDIO_MODEL", "test-model")
	os.Setenv("LMSTUDIO_TIMEOUT_MS", "30000")
	os.Setenv("LMSTUDIO_STREAM", "false")
}

// cleanupTestEnv cleans up environment variables after tests
func cleanupTestEnv() {
	for _, key := range testEnvKeys {
		os.Unsetenv(key)
	}
}

// TestLoadReadsConfigFile tests that values come from config.yaml when no env overrides are set
func TestLoadReadsConfigFile(t *testing.T) {
	cleanupTestEnv()

	cfg, err := Load(".", "test")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.App.Env != "local" {
		t.Errorf("expected App.Env to be local, got %s", cfg.App.Env)
	}
	if cfg.App.Port != "9089" {
		t.Errorf("expected App.Port to be 9089, got %s", cfg.App.Port)
	}
	if cfg.LMStudio.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected LMStudio.BaseURL to be http://localhost:1234/v1, got %s", cfg.LMStudio.BaseURL)
	}
	if cfg.LMStudio.APIKey != "lm-studio" {
		t.Errorf("expected LMStudio.APIKey to be lm-studio, got %s", cfg.LMStudio.APIKey)
	}
	if cfg.LMStudio.TimeoutMs != 60000 {
		t.Errorf("expected LMStudio.TimeoutMs to be 60000, got %d", cfg.LMStudio.TimeoutMs)
	}
	if !cfg.LMStudio.Stream {
		t.Error("expected LMStudio.Stream to be true")
	}
	if cfg.Generate.MaxTokens != 256 {
		t.Errorf("expected Generate.MaxTokens to be 256, got %d", cfg.Generate.MaxTokens)
	}
	if cfg.Generate.Seed != -1 {
		t.Errorf("expected Generate.Seed to be -1, got %d", cfg.Generate.Seed)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected Metrics.Path to be /metrics, got %s", cfg.Metrics.Path)
	}
}

// TestLMStudioEnvOverrides tests that LMSTUDIO_* variables override the config file
func TestLMStudioEnvOverrides(t *testing.T) {
	setupTestEnv()
	defer cleanupTestEnv()

	cfg, err := Load(".", "test")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.LMStudio.BaseURL != "http://127.0.0.1:5678/v1" {
		t.Errorf("expected overridden BaseURL, got %s", cfg.LMStudio.BaseURL)
	}
	if cfg.LMStudio.APIKey != "secret" {
		t.Errorf("expected overridden APIKey, got %s", cfg.LMStudio.APIKey)
	}
	if cfg.LMStudio.Model != "test-model" {
		t.Errorf("expected LMStudio.Model to be test-model, got %s", cfg.LMStudio.Model)
	}
	if cfg.LMStudio.TimeoutMs != 30000 {
		t.Errorf("expected LMStudio.TimeoutMs to be 30000, got %d", cfg.LMStudio.TimeoutMs)
	}
	if cfg.LMStudio.Stream {
		t.Error("expected LMStudio.Stream to be false")
	}
	if cfg.App.Port != "8080" {
		t.Errorf("expected App.Port to be 8080, got %s", cfg.App.Port)
	}
}

// TestGenerateEnvOverrides tests that sampling defaults can be overridden from the environment
func TestGenerateEnvOverrides(t *testing.T) {
	defer cleanupTestEnv()
	os.Setenv("GENERATE_MAX_TOKENS", "64")
	os.Setenv("GENERATE_TEMPERATURE", "0.2")
	os.Setenv("GENERATE_SEED", "42")

	cfg, err := Load(".", "test")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if cfg.Generate.MaxTokens != 64 {
		t.Errorf("expected Generate.MaxTokens to be 64, got %d", cfg.Generate.MaxTokens)
	}
	if cfg.Generate.Temperature != 0.2 {
		t.Errorf("expected Generate.Temperature to be 0.2, got %v", cfg.Generate.Temperature)
	}
	if cfg.Generate.Seed != 42 {
		t.Errorf("expected Generate.Seed to be 42, got %d", cfg.Generate.Seed)
	}
}

// TestLoadWithoutConfigFileUsesDefaults tests that a missing config.yaml falls back to defaults
func TestLoadWithoutConfigFileUsesDefaults(t *testing.T) {
	cleanupTestEnv()

	cfg, err := Load(t.TempDir(), "ci")
	if err != nil {
		t.Fatalf("expected no error without config file, got: %v", err)
	}

	if cfg.App.Env != "ci" {
		t.Errorf("expected App.Env to default to ci, got %s", cfg.App.Env)
	}
	if cfg.LMStudio.BaseURL != "http://localhost:1234/v1" {
		t.Errorf("expected default BaseURL, got %s", cfg.LMStudio.BaseURL)
	}
	if cfg.Generate.TopK != 40 {
		t.Errorf("expected default TopK 40, got %d", cfg.Generate.TopK)
	}
	if cfg.Generate.MinP != 0.05 {
		t.Errorf("expected default MinP 0.05, got %v", cfg.Generate.MinP)
	}
}

// TestConfigAccess tests config access via configs.GetViper()
func TestConfigAccess(t *testing.T) {
	setupTestEnv()
	defer cleanupTestEnv()

	InitViper(".", "test")

	cfg := GetViper()
	if cfg.LMStudio.Model != "test-model" {
		t.Errorf("expected cfg.LMStudio.Model to be test-model, got %s", cfg.LMStudio.Model)
	}

	// promoted field access
	if cfg.Model != "test-model" {
		t.Errorf("expected direct access cfg.Model to be test-model, got %s", cfg.Model)
	}
}
