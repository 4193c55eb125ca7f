package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/verte-zerg/typerank/internal/model"
)

const defaultLeaderboardLimit = 100

// LeaderboardEntry is one row of the public leaderboard.
type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	Username     string    `json:"username"`
	Score        int       `json:"score"`
	CPM          int       `json:"cpm"`
	Accuracy     float64   `json:"accuracy"`
	CreatedAt    time.Time `json:"created_at"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

// RankResponse is the rank a score would hold.
type RankResponse struct {
	Rank int `json:"rank"`
}

func handleLeaderboard(logger *slog.Logger, board Leaderboard, maxLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := maxLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = min(n, maxLimit)
		}

		records, err := board.Top(r.Context(), limit)
		if err != nil {
			logger.Error("leaderboard query failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, toEntries(records))
	}
}

func handleRank(logger *slog.Logger, board Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		score, err := strconv.Atoi(r.URL.Query().Get("score"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid score")
			return
		}
		rank, err := board.Rank(r.Context(), score)
		if err != nil {
			logger.Error("rank query failed", "error", err)
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		writeJSON(w, http.StatusOK, RankResponse{Rank: rank})
	}
}

// Tied scores share a rank, matching count(score > x) + 1.
func toEntries(records []model.ScoreRecord) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(records))
	for i, rec := range records {
		rank := i + 1
		if i > 0 && rec.Score == records[i-1].Score {
			rank = entries[i-1].Rank
		}
		entries = append(entries, LeaderboardEntry{
			Rank:         rank,
			Username:     rec.Username,
			Score:        rec.Score,
			CPM:          rec.CPM,
			Accuracy:     rec.Accuracy,
			CreatedAt:    rec.CreatedAt,
			LastPlayedAt: rec.LastPlayedAt,
		})
	}
	return entries
}
