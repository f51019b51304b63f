package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

var envVars = []string{
	"SLATE_PORT",
	"SLATE_READ_TIMEOUT",
	"SLATE_WRITE_TIMEOUT",
	"SLATE_SHUTDOWN_TIMEOUT",
	"SLATE_DB_PATH",
	"SLATE_API_KEY",
	"SLATE_DEV_MODE",
	"SLATE_BACKUP_INTERVAL",
	"SLATE_BACKUP_DIR",
	"SLATE_BACKUP_KEEP",
	"SLATE_LOG_LEVEL",
	"SLATE_LOG_FORMAT",
	"SLATE_CONFIG_PATH",
}

// clearEnv blanks every config env var for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
	// Point at a file that does not exist so a developer's config is never read.
	t.Setenv("SLATE_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "slate.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func dur(d Duration) time.Duration {
	return time.Duration(d)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DEV_MODE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if dur(cfg.Server.ShutdownTimeout) != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", dur(cfg.Server.ShutdownTimeout))
	}
	if cfg.Database.Path != "data/slate.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if dur(cfg.Worker.BackupInterval) != 6*time.Hour || cfg.Worker.BackupKeep != 7 {
		t.Errorf("Worker = %+v", cfg.Worker)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if !cfg.Auth.DevMode {
		t.Error("Auth.DevMode = false")
	}
}

func TestLoad_RequiresAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "SLATE_API_KEY") {
		t.Fatalf("Load() error = %v, want SLATE_API_KEY required", err)
	}

	t.Setenv("SLATE_API_KEY", "test-api-key")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with key error = %v", err)
	}
	if cfg.Auth.APIKey != "test-api-key" {
		t.Errorf("Auth.APIKey = %q", cfg.Auth.APIKey)
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DEV_MODE", "true")
	t.Setenv("SLATE_PORT", "9090")
	t.Setenv("SLATE_READ_TIMEOUT", "5s")
	t.Setenv("SLATE_DB_PATH", "/tmp/x.db")
	t.Setenv("SLATE_BACKUP_INTERVAL", "30m")
	t.Setenv("SLATE_BACKUP_DIR", "/tmp/bk")
	t.Setenv("SLATE_BACKUP_KEEP", "3")
	t.Setenv("SLATE_LOG_LEVEL", "debug")
	t.Setenv("SLATE_LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 || dur(cfg.Server.ReadTimeout) != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if dur(cfg.Worker.BackupInterval) != 30*time.Minute || cfg.Worker.BackupDir != "/tmp/bk" || cfg.Worker.BackupKeep != 3 {
		t.Errorf("Worker = %+v", cfg.Worker)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoad_UnparseableEnvIgnored(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DEV_MODE", "true")
	t.Setenv("SLATE_PORT", "eighty")
	t.Setenv("SLATE_BACKUP_INTERVAL", "often")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 || dur(cfg.Worker.BackupInterval) != 6*time.Hour {
		t.Errorf("bad env values applied: %+v %+v", cfg.Server, cfg.Worker)
	}
}

func TestLoadFromFile_ValidYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DEV_MODE", "true")
	path := writeConfig(t, `
server:
  port: 9000
  write_timeout: 45s
database:
  path: /var/lib/slate/slate.db
worker:
  backup_interval: 0s
log:
  level: warn
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || dur(cfg.Server.WriteTimeout) != 45*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if dur(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("unset ReadTimeout = %v, want default 30s", dur(cfg.Server.ReadTimeout))
	}
	if cfg.Database.Path != "/var/lib/slate/slate.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Worker.BackupInterval != 0 {
		t.Errorf("explicit 0s BackupInterval = %v", dur(cfg.Worker.BackupInterval))
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DEV_MODE", "true")
	t.Setenv("SLATE_CONFIG_PATH", writeConfig(t, "server:\n  port: 9000\n"))
	t.Setenv("SLATE_PORT", "9100")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want env value 9100", cfg.Server.Port)
	}
}

func TestLoadFromFile_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DEV_MODE", "true")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"invalid yaml", "server: [", "parsing config file"},
		{"invalid duration", "server:\n  read_timeout: soon\n", "invalid duration"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"zero keep", "worker:\n  backup_keep: 0\n", "backup_keep"},
		{"empty template", "templates:\n  sprint:\n    phases: []\n", "no phases"},
		{"zero-day phase", "templates:\n  sprint:\n    phases:\n      - label: Build\n        business_days: 0\n", "at least one business day"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadFromFile error = %v, want containing %q", err, tt.want)
			}
		})
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFromFile(missing) error = nil")
	}
}

func TestConfig_Templates(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DEV_MODE", "true")
	cfg, err := LoadFromFile(writeConfig(t, `
templates:
  sprint:
    phases:
      - label: Build
        phase: Production
        business_days: 3
    delivery_gap: 1
    go_live_gap: 1
`))
	if err != nil {
		t.Fatal(err)
	}

	if got := strings.Join(cfg.TemplateNames(), ","); got != "sprint,standard" {
		t.Errorf("TemplateNames() = %s", got)
	}

	std, ok := cfg.Template("")
	if !ok || std.Name != "standard" || len(std.Phases) != 3 {
		t.Errorf("default template = %+v, %v", std, ok)
	}

	sprint, ok := cfg.Template("sprint")
	if !ok || sprint.Name != "sprint" || sprint.Phases[0].BusinessDays != 3 {
		t.Errorf("sprint = %+v, %v", sprint, ok)
	}

	if _, ok := cfg.Template("epic"); ok {
		t.Error("unknown template found")
	}
}

func TestConfig_SecretsNotInYAML(t *testing.T) {
	cfg := newDefaults()
	cfg.Auth.APIKey = "secret-key"

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret-key") {
		t.Error("API key serialized to YAML")
	}
	if !strings.Contains(string(data), "backup_interval: 6h0m0s") {
		t.Errorf("Duration not marshaled as string:\n%s", data)
	}
}

func TestLoadLocal_NoAPIKeyRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("SLATE_DB_PATH", "/tmp/local.db")

	cfg, err := LoadLocal()
	if err != nil {
		t.Fatalf("LoadLocal() error = %v", err)
	}
	if cfg.Database.Path != "/tmp/local.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}

	t.Setenv("SLATE_LOG_LEVEL", "loud")
	if _, err := LoadLocal(); err == nil {
		t.Error("LoadLocal() accepted an invalid log level")
	}
}
