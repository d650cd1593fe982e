package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

// fixture mirrors the YAML layout of config.yaml for test setup.
type fixture struct {
	Port      string         `yaml:"port,omitempty"`
	Env       string         `yaml:"env,omitempty"`
	BaseURL   string         `yaml:"base_url,omitempty"`
	Origins   string         `yaml:"allowed_origins,omitempty"`
	Database  map[string]any `yaml:"database,omitempty"`
	Warehouse map[string]any `yaml:"warehouse,omitempty"`
	Redis     map[string]any `yaml:"redis,omitempty"`
	LLM       map[string]any `yaml:"llm,omitempty"`
	Retention map[string]any `yaml:"retention,omitempty"`
}

func writeConfigFixture(t *testing.T, dir string, f fixture) {
	t.Helper()
	data, err := yaml.Marshal(f)
	if err != nil {
		t.Fatalf("failed to marshal fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() {
		os.Chdir(originalDir)
	})
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfigFixture(t, tmpDir, fixture{
		Port:    "8000",
		Env:     "test",
		Origins: "http://localhost:3000, http://localhost:3001",
		Database: map[string]any{
			"host":     "db.example.com",
			"port":     5432,
			"user":     "testuser",
			"database": "testdb",
		},
		Warehouse: map[string]any{
			"host":     "wh.example.com",
			"database": "sales",
		},
		LLM: map[string]any{
			"provider": "openai",
			"model":    "gpt-4o-mini",
		},
	})
	chdir(t, tmpDir)

	// Clear env vars that might interfere with test
	os.Unsetenv("PGHOST")
	os.Unsetenv("BASE_URL")

	// Set env vars to override YAML values
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("expected Port=9000 (from env), got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("expected Env=production (from env), got %s", cfg.Env)
	}
	if cfg.Version != "test-version" {
		t.Errorf("expected Version=test-version, got %s", cfg.Version)
	}
	if cfg.BaseURL != "http://localhost:9000" {
		t.Errorf("expected BaseURL=http://localhost:9000 (auto-derived from PORT), got %s", cfg.BaseURL)
	}

	// YAML values survive where no env override exists
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("expected Database.Host=db.example.com (from yaml), got %s", cfg.Database.Host)
	}
	if cfg.Warehouse.Host != "wh.example.com" {
		t.Errorf("expected Warehouse.Host=wh.example.com (from yaml), got %s", cfg.Warehouse.Host)
	}

	// Comma-separated origins are parsed and trimmed
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://localhost:3001" {
		t.Errorf("expected two parsed origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoad_EnvOnlyWhenNoFile(t *testing.T) {
	chdir(t, t.TempDir())

	os.Unsetenv("PGHOST")
	t.Setenv("WAREHOUSE_DATABASE", "retail")
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("LLM_MODEL", "claude-sonnet-4-20250514")

	cfg, err := Load("dev")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Warehouse.Database != "retail" {
		t.Errorf("expected Warehouse.Database=retail, got %s", cfg.Warehouse.Database)
	}
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected LLM.Provider=anthropic, got %s", cfg.LLM.Provider)
	}

	// Defaults apply without a config file
	if cfg.Database.Host != "localhost" {
		t.Errorf("expected default Database.Host=localhost, got %s", cfg.Database.Host)
	}
	if cfg.Fraud.AmountThreshold != 10000 {
		t.Errorf("expected default Fraud.AmountThreshold=10000, got %v", cfg.Fraud.AmountThreshold)
	}
	if cfg.Retention.Schedule != "0 3 * * *" {
		t.Errorf("expected default retention schedule, got %s", cfg.Retention.Schedule)
	}
}

func TestLoad_BaseURLExplicit(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfigFixture(t, tmpDir, fixture{
		Port:    "8000",
		Env:     "test",
		BaseURL: "http://advisor.internal:8080",
		Database: map[string]any{
			"host": "localhost",
		},
	})
	chdir(t, tmpDir)

	os.Unsetenv("BASE_URL")
	os.Unsetenv("PORT")

	cfg, err := Load("test-version")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.BaseURL != "http://advisor.internal:8080" {
		t.Errorf("expected BaseURL=http://advisor.internal:8080 (explicit), got %s", cfg.BaseURL)
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LLM_PROVIDER", "mystery")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error for unknown llm provider, got nil")
	}
}

func TestLoad_RejectsNegativeRetention(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("RETENTION_CHAT_HISTORY_DAYS", "-1")

	if _, err := Load("dev"); err == nil {
		t.Fatal("expected error for negative retention horizon, got nil")
	}
}

func TestConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 5432, User: "advisor",
		Password: "secret", Database: "advisor_engine", SSLMode: "disable",
	}
	want := "host=localhost port=5432 user=advisor password=secret dbname=advisor_engine sslmode=disable"
	if got := c.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}

	w := WarehouseConfig{
		Host: "wh", Port: 5433, User: "reader",
		Password: "pw", Database: "sales", SSLMode: "require",
	}
	wantW := "host=wh port=5433 user=reader password=pw dbname=sales sslmode=require"
	if got := w.ConnectionString(); got != wantW {
		t.Errorf("ConnectionString() = %q, want %q", got, wantW)
	}
}
