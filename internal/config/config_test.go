package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.Practice.Words != nil || cfg.Ranking.ServerURL != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[practice]
time-limit = 90
words = 30
words-file = "/tmp/words.txt"

[ranking]
server-url = "http://localhost:8080"
username = "neo"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Practice.TimeLimit == nil || *cfg.Practice.TimeLimit != 90 {
		t.Fatalf("unexpected time-limit: %v", cfg.Practice.TimeLimit)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != 30 {
		t.Fatalf("unexpected words: %v", cfg.Practice.Words)
	}
	if cfg.Practice.WordsFile == nil || *cfg.Practice.WordsFile != "/tmp/words.txt" {
		t.Fatalf("unexpected words-file: %v", cfg.Practice.WordsFile)
	}
	if cfg.Practice.CapsPct != nil {
		t.Fatalf("unset keys must stay nil")
	}
	if cfg.Ranking.ServerURL == nil || *cfg.Ranking.ServerURL != "http://localhost:8080" {
		t.Fatalf("unexpected server-url: %v", cfg.Ranking.ServerURL)
	}
	if cfg.Ranking.Username == nil || *cfg.Ranking.Username != "neo" {
		t.Fatalf("unexpected username: %v", cfg.Ranking.Username)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[practice\nwords = "), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadServerDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "DB_PATH", "LOG_LEVEL", "CLIENT_SKEW_MS", "LEADERBOARD_LIMIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("load server: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.ClientSkewMs != 10000 || cfg.LeaderboardLimit != 100 || cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadServerOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CLIENT_SKEW_MS", "5000")
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("load server: %v", err)
	}
	if cfg.HTTPAddr != ":9999" || cfg.LogLevel != slog.LevelDebug || cfg.ClientSkewMs != 5000 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestXDGPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DefaultConfigPath(); got != "/tmp/cfg/typerank/config.toml" {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != "/tmp/data/typerank/typerank.db" {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultTextsDir(); got != "/tmp/cfg/typerank/texts" {
		t.Fatalf("unexpected texts dir %q", got)
	}
}
