package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typerank/internal/model"
)

func validPracticeConfig() model.Config {
	return model.Config{
		Mode:     model.ModePractice,
		PunctSet: defaultPunctSet,
		Timeout:  time.Duration(defaultTimeout) * time.Second,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*model.Config) {}},
		{name: "ranking", mutate: func(c *model.Config) { c.Mode = model.ModeRanking }},
		{name: "unknown mode", mutate: func(c *model.Config) { c.Mode = "arcade" }, wantErr: "--mode"},
		{name: "hour limit", mutate: func(c *model.Config) { c.TimeLimit = time.Hour }},
		{name: "limit too long", mutate: func(c *model.Config) { c.TimeLimit = time.Hour + time.Second }, wantErr: "--time-limit"},
		{name: "caps out of range", mutate: func(c *model.Config) { c.CapsPct = 1.5 }, wantErr: "--caps"},
		{name: "punct without set", mutate: func(c *model.Config) { c.PunctPct = 0.3; c.PunctSet = "" }, wantErr: "--punct-set"},
		{name: "long username", mutate: func(c *model.Config) { c.Username = strings.Repeat("x", 21) }, wantErr: "--username"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validPracticeConfig()
			tc.mutate(&cfg)
			err := validateConfig(cfg)
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestTextSourcePassagesFromDir(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{"a.txt": "first passage", "b.txt": "second\npassage"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write passage: %v", err)
		}
	}
	cfg := validPracticeConfig()
	cfg.TextsDir = dir
	next, err := newTextSource(cfg)
	if err != nil {
		t.Fatalf("text source: %v", err)
	}
	prev := ""
	for i := 0; i < 10; i++ {
		text := next(prev)
		if text != "first passage" && text != "second passage" {
			t.Fatalf("unexpected passage %q", text)
		}
		if text == prev {
			t.Fatalf("passage repeated back to back")
		}
		prev = text
	}
}

func TestTextSourceGeneratedWords(t *testing.T) {
	cfg := validPracticeConfig()
	cfg.Words = 7
	next, err := newTextSource(cfg)
	if err != nil {
		t.Fatalf("text source: %v", err)
	}
	if got := len(strings.Fields(next(""))); got != 7 {
		t.Fatalf("expected 7 words, got %d", got)
	}
}

func TestTextSourceWordsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	if err := os.WriteFile(path, []byte("kiwi\n\nkiwi\n"), 0o644); err != nil {
		t.Fatalf("write words: %v", err)
	}
	cfg := validPracticeConfig()
	cfg.Words = 3
	cfg.WordsFile = path
	next, err := newTextSource(cfg)
	if err != nil {
		t.Fatalf("text source: %v", err)
	}
	if got := next(""); got != "kiwi kiwi kiwi" {
		t.Fatalf("expected words from file, got %q", got)
	}

	cfg.WordsFile = filepath.Join(t.TempDir(), "missing.txt")
	if _, err := newTextSource(cfg); err == nil {
		t.Fatalf("expected error for missing words file")
	}
}
