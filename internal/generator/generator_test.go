package generator

import (
	"strings"
	"testing"
	"time"
	"unicode"
)

func TestPickAvoidsPrevious(t *testing.T) {
	g := NewSeeded(1)
	passages := []string{"one", "two", "three"}
	prev := "two"
	for i := 0; i < 50; i++ {
		got := g.Pick(passages, prev)
		if got == prev {
			t.Fatalf("picked the previous passage %q", got)
		}
		prev = got
	}
	if got := g.Pick([]string{"only"}, "only"); got != "only" {
		t.Fatalf("single passage must be returned, got %q", got)
	}
	if got := g.Pick(nil, ""); got != "" {
		t.Fatalf("expected empty pick, got %q", got)
	}
}

func TestPickWhenEveryPassageEqualsPrevious(t *testing.T) {
	g := NewSeeded(1)
	done := make(chan string, 1)
	go func() {
		done <- g.Pick([]string{"same text", "same text"}, "same text")
	}()
	select {
	case got := <-done:
		if got != "same text" {
			t.Fatalf("expected the repeated passage, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("pick did not return")
	}
	for i := 0; i < 20; i++ {
		if got := g.Pick([]string{"same", "same", "other"}, "same"); got != "other" {
			t.Fatalf("expected the only differing passage, got %q", got)
		}
	}
}

func TestTextWordCountAndRules(t *testing.T) {
	g := NewSeeded(7)
	text := g.Text([]string{"alpha", "beta"}, 12, 1, 1, []rune{'.'})
	words := strings.Fields(text)
	if len(words) != 12 {
		t.Fatalf("expected 12 words, got %d", len(words))
	}
	for _, w := range words {
		if !unicode.IsUpper([]rune(w)[0]) || !strings.HasSuffix(w, ".") {
			t.Fatalf("caps/punct rules not applied to %q", w)
		}
	}
	plain := g.Text([]string{"alpha"}, 3, 0, 0, nil)
	if plain != "alpha alpha alpha" {
		t.Fatalf("unexpected plain text %q", plain)
	}
}
