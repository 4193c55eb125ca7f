package stats

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/model"
)

type column struct {
	title string
	right bool
}

var leaderboardColumns = []column{
	{title: "Rank", right: true},
	{title: "Username"},
	{title: "Score", right: true},
	{title: "CPM", right: true},
	{title: "Accuracy", right: true},
}

var historyColumns = []column{
	{title: "Date"},
	{title: "Score", right: true},
	{title: "CPM", right: true},
	{title: "Accuracy", right: true},
}

func leaderboardRow(e client.LeaderboardEntry) []string {
	return []string{
		fmt.Sprintf("%d", e.Rank),
		e.Username,
		fmt.Sprintf("%d", e.Score),
		fmt.Sprintf("%d", e.CPM),
		formatAccuracy(e.Accuracy),
	}
}

func historyRow(e model.HistoryEntry) []string {
	return []string{
		e.Date.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", e.Score),
		fmt.Sprintf("%d", e.CPM),
		formatAccuracy(e.Accuracy),
	}
}

func formatAccuracy(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// renderTable lays rows out under cols. Cells past the last column are dropped.
func renderTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = displayWidth(c.title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], displayWidth(row[i]))
			}
		}
	}

	titles := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = c.title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(cols, widths, titles))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		value := ""
		if i < len(row) {
			value = row[i]
		}
		pad := strings.Repeat(" ", max(0, widths[i]-displayWidth(value)))
		if c.right {
			cells[i] = pad + value
		} else {
			cells[i] = value + pad
		}
	}
	return strings.Join(cells, " ")
}

// displayWidth counts terminal columns so CJK usernames stay aligned.
func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
