package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if w := cfg.Weights(); w.Threshold != 0.001 || w.Exponent != 1 {
		t.Errorf("default weights = %+v", w)
	}
	if cfg.Tagging.Workers != 4 || cfg.Store.Driver != "memory" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "keyphrase.yaml", `
transitions: models/transitions.msgpack
rules: models/rules.txt
ranking:
  threshold: 0.01
  top: 15
store:
  driver: sqlite
  path: reports.db
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transitions != "models/transitions.msgpack" || cfg.Rules != "models/rules.txt" {
		t.Errorf("paths = %q %q", cfg.Transitions, cfg.Rules)
	}
	if cfg.Ranking.Threshold != 0.01 || cfg.Ranking.Top != 15 {
		t.Errorf("ranking = %+v", cfg.Ranking)
	}
	// unset keys keep their defaults
	if cfg.Ranking.Exponent != 1 || cfg.Tagging.Workers != 4 {
		t.Errorf("defaults lost: %+v %+v", cfg.Ranking, cfg.Tagging)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "reports.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "keyphrase.toml", `
rules = "rules.txt"

[ranking]
exponent = 2.0

[tagging]
workers = 8

[server]
addr = "127.0.0.1:9000"
allowed_origins = ["https://example.org"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Rules != "rules.txt" || cfg.Ranking.Exponent != 2 || cfg.Tagging.Workers != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Ranking.Threshold != 0.001 {
		t.Errorf("threshold default lost: %v", cfg.Ranking.Threshold)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown extension", "cfg.ini", "x=1"},
		{"negative threshold", "cfg.yaml", "ranking:\n  threshold: -1\n"},
		{"zero workers", "cfg.yaml", "tagging:\n  workers: 0\n"},
		{"sqlite without path", "cfg.toml", "[store]\ndriver = \"sqlite\"\n"},
		{"unknown driver", "cfg.yaml", "store:\n  driver: redis\n"},
		{"unknown log format", "cfg.yaml", "log:\n  format: xml\n"},
		{"broken yaml", "cfg.yaml", "ranking: [\n"},
		{"broken toml", "cfg.toml", "ranking = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			if _, err := Load(path); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Load = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	for _, name := range []string{"missing.yaml", "missing.toml"} {
		_, err := Load(filepath.Join(t.TempDir(), name))
		if err == nil {
			t.Errorf("%s: expected error", name)
		}
		if errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("%s: missing file reported as invalid config", name)
		}
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"
	if l := cfg.Logger("test"); l.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want warn", l.GetLevel())
	}
	cfg.Log.Level = "nonsense"
	if l := cfg.Logger("test"); l.GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info fallback", l.GetLevel())
	}
}
