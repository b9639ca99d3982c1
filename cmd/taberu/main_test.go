package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{"single word", []string{"yogurt"}, "yogurt"},
		{"multiple words", []string{"greek", "yogurt"}, "greek yogurt"},
		{"single quoted phrase", []string{"greek yogurt"}, "greek yogurt"},
		{"empty args", []string{}, ""},
		{"blank args", []string{"  ", "  "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSearchQuery(tt.args)
			if got != tt.expected {
				t.Errorf("buildSearchQuery(%v) = %q, want %q", tt.args, got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while configPath from t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s (canon %s), want %s (canon %s)", resolved, resolvedCanon, configPath, configPathCanon)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "./test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
}

func TestLoadConfig_missingDefaultUsesDefaults(t *testing.T) {
	if fileExists(defaultConfigPath) {
		t.Skip("a config is installed at the default path")
	}
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != "" {
		t.Errorf("resolved path = %q, want empty", resolved)
	}
	if cfg.Search.HistoryLimit != 100 || cfg.Search.DebounceMillis != 450 {
		t.Errorf("unexpected search defaults: %+v", cfg.Search)
	}
}

func TestLoadConfig_envFileNextToConfig(t *testing.T) {
	t.Setenv("TABERU_PORT", "")
	os.Unsetenv("TABERU_PORT")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 9000\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("TABERU_PORT=9100\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want 9100 from .env", cfg.Server.Port)
	}
}

func TestLoadConfig_invalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("server: [\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := loadConfig(configPath); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

// writeOfflineConfig writes a config that keeps every file under dir and
// never contacts the product database.
func writeOfflineConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`
storage:
  database_path: %q
  catalog_path: %q
openfoodfacts:
  offline: true
`, filepath.Join(dir, "taberu.db"), filepath.Join(dir, "catalog.bleve"))
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	outputFlag = "text"
	lookupSource, searchSource = "", ""
	listTab, listRemote, listToday = "recent", false, false
	favoriteRemove, initForce = false, false
	logName, logBrand, logMeal = "", "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_OfflineWorkflow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeOfflineConfig(t, dir)

	out, err := execute(t, "r\n", "--config", cfgPath, "lookup", "4006381333931")
	if err != nil {
		t.Fatalf("lookup reset: %v", err)
	}
	if !strings.Contains(out, "No product found for barcode 4006381333931.") || !strings.Contains(out, "Ready for the next scan.") {
		t.Errorf("unexpected lookup output:\n%s", out)
	}

	answers := strings.Join([]string{"m", "Granola", "Home", "45", "g", "200", "5", "30", "7", "", "", "", "", "", ""}, "\n") + "\n"
	out, err = execute(t, answers, "--config", cfgPath, "lookup", "4006381333931")
	if err != nil {
		t.Fatalf("lookup manual: %v", err)
	}
	if !strings.Contains(out, "Granola (Home)") || !strings.Contains(out, "per 100 g") {
		t.Errorf("manual entry not shown:\n%s", out)
	}

	out, err = execute(t, "", "--config", cfgPath, "lookup", "4006381333931")
	if err != nil {
		t.Fatalf("lookup found: %v", err)
	}
	if !strings.Contains(out, "Barcode:       4006381333931") {
		t.Errorf("catalog lookup did not find the manual entry:\n%s", out)
	}

	out, err = execute(t, "", "--config", cfgPath, "list", "--tab", "added")
	if err != nil {
		t.Fatalf("list added: %v", err)
	}
	if !strings.Contains(out, "Granola (Home)") {
		t.Errorf("added tab missing food:\n%s", out)
	}

	out, err = execute(t, "", "--config", cfgPath, "log", "--name", "granola", "--brand", "home", "--meal", "breakfast")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if !strings.Contains(out, "breakfast") {
		t.Errorf("log output missing meal:\n%s", out)
	}

	out, err = execute(t, "", "--config", cfgPath, "list", "--today", "-o", "compact")
	if err != nil {
		t.Fatalf("list today: %v", err)
	}
	if !strings.Contains(out, "breakfast\tGranola\tHome") {
		t.Errorf("today missing entry:\n%s", out)
	}

	out, err = execute(t, "", "--config", cfgPath, "favorite", "Granola", "Home")
	if err != nil {
		t.Fatalf("favorite: %v", err)
	}
	if !strings.Contains(out, "Added Granola (Home) to favorites.") {
		t.Errorf("unexpected favorite output:\n%s", out)
	}

	out, err = execute(t, "", "--config", cfgPath, "search", "--source", "catalog", "granola")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Granola (Home)") {
		t.Errorf("catalog search missing food:\n%s", out)
	}

	xlsx := filepath.Join(dir, "export.xlsx")
	if _, err := execute(t, "", "--config", cfgPath, "export", xlsx); err != nil {
		t.Fatalf("export: %v", err)
	}
	out, err = execute(t, "", "--config", cfgPath, "import", xlsx)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "imported 1") {
		t.Errorf("unexpected import output:\n%s", out)
	}

	if _, err := execute(t, "", "--config", cfgPath, "forget", "Granola", "Home"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	out, err = execute(t, "", "--config", cfgPath, "search", "--source", "catalog", "granola")
	if err != nil {
		t.Fatalf("search after forget: %v", err)
	}
	if !strings.Contains(out, "No foods found.") {
		t.Errorf("forgotten food still in catalog:\n%s", out)
	}
}

func TestCommands_InitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "config.yaml")
	out, err := execute(t, "", "--config", path, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, "Wrote "+path) {
		t.Errorf("unexpected init output: %s", out)
	}
	cfg, _, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.HistoryLimit != 100 {
		t.Errorf("history limit = %d, want 100", cfg.Search.HistoryLimit)
	}
	if _, err := execute(t, "", "--config", path, "init"); err == nil {
		t.Error("expected error when config exists")
	}
	if _, err := execute(t, "", "--config", path, "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestCommands_AddRejectsInvalidEntry(t *testing.T) {
	cfgPath := writeOfflineConfig(t, t.TempDir())
	_, err := execute(t, "", "--config", cfgPath, "add", "--name", "Granola", "--brand", "Home", "--amount", "0", "--calories", "200")
	if err == nil {
		t.Fatal("expected validation error for zero amount")
	}
}

func TestCommands_LogRequiresFood(t *testing.T) {
	cfgPath := writeOfflineConfig(t, t.TempDir())
	if _, err := execute(t, "", "--config", cfgPath, "log"); err == nil {
		t.Error("expected error without barcode or name")
	}
	if _, err := execute(t, "", "--config", cfgPath, "log", "--name", "nothing here"); err == nil {
		t.Error("expected error for unknown food")
	}
}
