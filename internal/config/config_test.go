package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
openfoodfacts:
  base_url: "http://localhost:4000"
  offline: true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr() != "127.0.0.1:9000" {
		t.Errorf("unexpected server addr: %s", cfg.Server.Addr())
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.OpenFoodFacts.BaseURL != "http://localhost:4000" || !cfg.OpenFoodFacts.Offline {
		t.Errorf("unexpected openfoodfacts config: %+v", cfg.OpenFoodFacts)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}

func TestLoad_invalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  database_path: "./data/taberu.db"
  catalog_path: "/var/lib/taberu/catalog.bleve"
import:
  directories: ["./inbox"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "taberu.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if cfg.Storage.CatalogPath != "/var/lib/taberu/catalog.bleve" {
		t.Errorf("absolute catalog_path changed: %s", cfg.Storage.CatalogPath)
	}
	if len(cfg.Import.Directories) != 1 || cfg.Import.Directories[0] != filepath.Join(dir, "inbox") {
		t.Errorf("import directories = %v", cfg.Import.Directories)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("default server: %+v", cfg.Server)
	}
	if cfg.Search.Debounce() != 450*time.Millisecond {
		t.Errorf("default debounce: got %v", cfg.Search.Debounce())
	}
	if cfg.Search.CatalogLimit != 50 {
		t.Errorf("default catalog limit: got %d", cfg.Search.CatalogLimit)
	}
	if cfg.Import.Settle() != 400*time.Millisecond {
		t.Errorf("default settle: got %v", cfg.Import.Settle())
	}
	if cfg.Search.HistoryLimit != 100 {
		t.Errorf("default history limit: got %d", cfg.Search.HistoryLimit)
	}
	if cfg.OpenFoodFacts.Timeout() != 10*time.Second {
		t.Errorf("default timeout: got %v", cfg.OpenFoodFacts.Timeout())
	}
	if cfg.OpenFoodFacts.BaseURL != "https://world.openfoodfacts.org" {
		t.Errorf("default base url: got %s", cfg.OpenFoodFacts.BaseURL)
	}
	if len(cfg.Import.Extensions) != 2 || cfg.Import.Extensions[1] != ".xlsx" {
		t.Errorf("import extensions: got %v", cfg.Import.Extensions)
	}
}

func TestApplyEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "TABERU_CATALOG_PATH=/tmp/from-dotenv.bleve\nTABERU_PORT=7000\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	// registers a restore, then leaves the variable unset for .env to fill
	t.Setenv(EnvCatalogPath, "")
	os.Unsetenv(EnvCatalogPath)
	// already set variables win over .env
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvOFFBaseURL, "http://off.test/")
	t.Setenv(EnvDatabasePath, "/tmp/override.db")

	cfg := Default()
	if err := ApplyEnv(cfg, envFile); err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be set from env")
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.OpenFoodFacts.BaseURL != "http://off.test" {
		t.Errorf("base url = %s", cfg.OpenFoodFacts.BaseURL)
	}
	if cfg.Storage.CatalogPath != "/tmp/from-dotenv.bleve" {
		t.Errorf("catalog path = %s, want value from .env", cfg.Storage.CatalogPath)
	}
	if cfg.Storage.DatabasePath != "/tmp/override.db" {
		t.Errorf("database path = %s", cfg.Storage.DatabasePath)
	}
}

func TestApplyEnv_missingEnvFileIsIgnored(t *testing.T) {
	cfg := Default()
	if err := ApplyEnv(cfg, filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should be ignored: %v", err)
	}
}

func TestApplyEnv_invalidBool(t *testing.T) {
	t.Setenv(EnvOFFOffline, "sometimes")
	if err := ApplyEnv(Default(), ""); err == nil {
		t.Error("expected error for invalid bool")
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
