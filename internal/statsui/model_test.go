package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/model"
)

type fakeBoard struct {
	entries []client.LeaderboardEntry
	err     error
	limits  []int
}

func (b *fakeBoard) Leaderboard(_ context.Context, limit int) ([]client.LeaderboardEntry, error) {
	b.limits = append(b.limits, limit)
	return b.entries, b.err
}

type fakeHistory []model.HistoryEntry

func (h fakeHistory) ListHistory(context.Context, int) ([]model.HistoryEntry, error) {
	return h, nil
}

func TestLeaderboardTabShowsFetchedRows(t *testing.T) {
	board := &fakeBoard{entries: []client.LeaderboardEntry{
		{Rank: 1, Username: "alice", Score: 2400, CPM: 310, Accuracy: 98.5},
		{Rank: 2, Username: "bob", Score: 1800, CPM: 260, Accuracy: 95},
	}}
	m := NewModel(board, fakeHistory(nil), 50, 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	cmd := m.Init()
	if cmd == nil || !m.loading {
		t.Fatalf("expected an initial fetch")
	}
	m.Update(cmd())
	if len(board.limits) != 1 || board.limits[0] != 50 {
		t.Fatalf("unexpected fetch limits %v", board.limits)
	}
	out := m.View()
	for _, want := range []string{"Leaderboard", "alice", "2400", "bob", "98.5%"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestLeaderboardErrorAndRefresh(t *testing.T) {
	board := &fakeBoard{err: errors.New("server down")}
	m := NewModel(board, nil, 100, 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 20})
	m.Update(m.Init()())
	if !strings.Contains(m.View(), "server down") {
		t.Fatalf("expected error in footer:\n%s", m.View())
	}

	board.err = nil
	board.entries = []client.LeaderboardEntry{{Rank: 1, Username: "carol", Score: 10}}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatalf("refresh should fetch again")
	}
	m.Update(cmd())
	if m.boardErr != "" || !strings.Contains(m.View(), "carol") {
		t.Fatalf("refresh did not recover:\n%s", m.View())
	}
}

func TestNoServerConfigured(t *testing.T) {
	m := NewModel(nil, nil, 100, 1)
	if cmd := m.Init(); cmd != nil {
		t.Fatalf("no fetch expected without a server")
	}
	if m.boardErr != client.ErrNotConfigured.Error() {
		t.Fatalf("unexpected error %q", m.boardErr)
	}
}

func TestHistoryTab(t *testing.T) {
	history := fakeHistory{
		{Date: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), Score: 900, CPM: 200, Accuracy: 96},
		{Date: time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC), Score: 1300, CPM: 240, Accuracy: 98},
	}
	m := NewModel(nil, history, 100, 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabHistory {
		t.Fatalf("expected history tab, got %d", m.activeTab)
	}
	out := m.View()
	for _, want := range []string{"2 ranked games", "Best", "1300"} {
		if !strings.Contains(out, want) {
			t.Fatalf("history view missing %q:\n%s", want, out)
		}
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabLeaderboard {
		t.Fatalf("tabs should wrap around")
	}
}
