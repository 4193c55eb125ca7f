package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/model"
)

func historyFixture() []model.HistoryEntry {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	scores := []int{800, 1200, 1000, 1500}
	entries := make([]model.HistoryEntry, len(scores))
	for i, score := range scores {
		entries[i] = model.HistoryEntry{
			Date:     base.Add(time.Duration(i) * 24 * time.Hour),
			Score:    score,
			CPM:      200 + i*10,
			Accuracy: 90 + float64(i),
		}
	}
	return entries
}

func TestSummarize(t *testing.T) {
	s := Summarize(historyFixture())
	if s.Count != 4 || s.Best.Score != 1500 || s.Last.Score != 1500 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.AvgScore() != 1125 || s.AvgCPM() != 215 || s.AvgAccuracy() != 91.5 {
		t.Fatalf("unexpected averages: %v %v %v", s.AvgScore(), s.AvgCPM(), s.AvgAccuracy())
	}
	s = s.Add(model.HistoryEntry{Score: 100})
	if s.Best.Score != 1500 || s.Last.Score != 100 || s.Count != 5 {
		t.Fatalf("add did not keep best: %+v", s)
	}
	var empty Summary
	if empty.AvgScore() != 0 || empty.AvgAccuracy() != 0 {
		t.Fatalf("empty summary averages must be zero")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 9}); got != " @" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("flat sparkline should use the middle glyph, got %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, historyFixture(), HistoryOptions{Width: 3, Recent: 2}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Games: 4", "Best score: 1500", "Avg CPM: 215.0", "Score trend", "Recent"} {
		if !strings.Contains(out, want) {
			t.Fatalf("history output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if got := lines[len(lines)-2]; !strings.Contains(got, "1500") {
		t.Fatalf("newest entry should be listed first, got %q", got)
	}
	if strings.Contains(out, " 800 ") {
		t.Fatalf("recent list should be trimmed:\n%s", out)
	}

	buf.Reset()
	if err := RenderHistory(&buf, nil, HistoryOptions{}); err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(buf.String(), "No ranked games") {
		t.Fatalf("unexpected empty output %q", buf.String())
	}
}

func TestRenderLeaderboard(t *testing.T) {
	var buf bytes.Buffer
	err := RenderLeaderboard(&buf, []client.LeaderboardEntry{
		{Rank: 1, Username: "alice", Score: 2000, CPM: 300, Accuracy: 99},
		{Rank: 2, Username: "bob", Score: 900, CPM: 150, Accuracy: 88.5},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %q", lines)
	}
	if !strings.HasPrefix(lines[1], "   1 alice") || !strings.Contains(lines[2], "88.5%") {
		t.Fatalf("unexpected rows: %q", lines)
	}
}
