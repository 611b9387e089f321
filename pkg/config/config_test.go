package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assetform.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: file:assets.db
log:
  level: debug
fixtures: catalog.yaml
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := &Config{
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "file:assets.db"},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Log:      LogConfig{Level: "debug", Format: FormatJSON},
		Fixtures: "catalog.yaml",
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ASSETFORM_HTTP_ADDR":  "127.0.0.1:9000",
		"ASSETFORM_LOG_FORMAT": "console",
		"ASSETFORM_FIXTURES":   "",
	}
	cfg := Default()
	cfg.Fixtures = "seed.yaml"
	cfg.ApplyEnv(func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	if cfg.HTTP.Addr != "127.0.0.1:9000" || cfg.Log.Format != FormatConsole {
		t.Fatalf("expected overrides to apply, got %+v", cfg)
	}
	if cfg.Fixtures != "seed.yaml" {
		t.Fatalf("expected empty override to be ignored, got %q", cfg.Fixtures)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: DriverSQLite},
		Log:      LogConfig{Level: "loud", Format: "xml"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, fragment := range []string{"database.dsn", "http.addr", "log.level", "log.format"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "database: [")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = FormatConsole
	logger, err := cfg.Logger()
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.InfoLevel) || logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected info level logging")
	}
}
