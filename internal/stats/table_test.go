package stats

import (
	"testing"

	"github.com/verte-zerg/typerank/internal/client"
)

func TestRenderTableLeaderboardLayout(t *testing.T) {
	rows := [][]string{
		leaderboardRow(client.LeaderboardEntry{Rank: 1, Username: "alice", Score: 11672, CPM: 312, Accuracy: 98.5}),
		leaderboardRow(client.LeaderboardEntry{Rank: 10, Username: "bo", Score: 980, CPM: 95, Accuracy: 100}),
	}
	lines := renderTable(leaderboardColumns, rows)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Rank Username Score CPM Accuracy" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "   1 alice    11672 312    98.5%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "  10 bo         980  95   100.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestRenderTableWideUsernames(t *testing.T) {
	cols := []column{{title: "Name"}, {title: "Score", right: true}}
	lines := renderTable(cols, [][]string{
		{"山田", "1"},
		{"ab", "2", "dropped"},
	})
	if lines[1] != "山田     1" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "ab       2" {
		t.Fatalf("unexpected padded row: %q", lines[2])
	}
}
