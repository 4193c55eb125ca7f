// Package stats summarises local history and renders score reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typerank/internal/client"
	"github.com/verte-zerg/typerank/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Summary aggregates a history log.
type Summary struct {
	Count int
	Best  model.HistoryEntry
	Last  model.HistoryEntry

	totalScore int
	totalCPM   int
	totalAcc   float64
}

// Summarize folds entries, oldest first, into a Summary.
func Summarize(entries []model.HistoryEntry) Summary {
	var s Summary
	for _, e := range entries {
		s = s.Add(e)
	}
	return s
}

// Add returns the summary extended by one newer entry.
func (s Summary) Add(e model.HistoryEntry) Summary {
	if s.Count == 0 || e.Score > s.Best.Score {
		s.Best = e
	}
	s.Last = e
	s.Count++
	s.totalScore += e.Score
	s.totalCPM += e.CPM
	s.totalAcc += e.Accuracy
	return s
}

// AvgScore returns the mean score, zero for an empty log.
func (s Summary) AvgScore() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.totalScore) / float64(s.Count)
}

// AvgCPM returns the mean CPM.
func (s Summary) AvgCPM() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.totalCPM) / float64(s.Count)
}

// AvgAccuracy returns the mean accuracy percentage.
func (s Summary) AvgAccuracy() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.totalAcc / float64(s.Count)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// HistoryOptions controls RenderHistory.
type HistoryOptions struct {
	// Width caps the sparkline length; zero means one column per entry.
	Width int
	// Window smooths the sparkline with a moving average.
	Window int
	// Recent is how many of the newest entries to list.
	Recent int
}

// RenderHistory prints a summary, a score sparkline and the newest entries.
func RenderHistory(w io.Writer, entries []model.HistoryEntry, opts HistoryOptions) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No ranked games yet.")
		return err
	}
	s := Summarize(entries)
	lines := []string{
		"Summary",
		fmt.Sprintf("Games: %d", s.Count),
		fmt.Sprintf("Best score: %d (%s)", s.Best.Score, s.Best.Date.Local().Format("2006-01-02")),
		fmt.Sprintf("Avg score: %.0f", s.AvgScore()),
		fmt.Sprintf("Avg CPM: %.1f", s.AvgCPM()),
		fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy()),
		"",
	}

	scores := make([]float64, len(entries))
	for i, e := range entries {
		scores[i] = float64(e.Score)
	}
	scores = MovingAverage(scores, opts.Window)
	if opts.Width > 0 && len(scores) > opts.Width {
		scores = scores[len(scores)-opts.Width:]
	}
	lines = append(lines, "Score trend", Sparkline(scores), "")

	recent := entries
	if opts.Recent > 0 && len(recent) > opts.Recent {
		recent = recent[len(recent)-opts.Recent:]
	}
	rows := make([][]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		rows = append(rows, historyRow(recent[i]))
	}
	lines = append(lines, "Recent")
	lines = append(lines, renderTable(historyColumns, rows)...)
	return writeLines(w, lines)
}

// RenderLeaderboard prints leaderboard rows as an aligned table.
func RenderLeaderboard(w io.Writer, entries []client.LeaderboardEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "Leaderboard is empty.")
		return err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, leaderboardRow(e))
	}
	return writeLines(w, renderTable(leaderboardColumns, rows))
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
