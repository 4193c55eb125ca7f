package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/verte-zerg/typerank/internal/model"
)

// Submitter validates and records a raw attempt.
type Submitter interface {
	Submit(ctx context.Context, sub model.Submission, now time.Time) (model.SubmitResult, error)
}

// Leaderboard is the read side of the ranking store.
type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]model.ScoreRecord, error)
	Rank(ctx context.Context, score int) (int, error)
}

// Checker reports the health of a dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the handlers need.
type Deps struct {
	Submitter        Submitter
	Leaderboard      Leaderboard
	Health           Checker
	LeaderboardLimit int
	Now              func() time.Time
}

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	limit := deps.LeaderboardLimit
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	r.Get("/healthz", handleHealth(logger, deps.Health))

	r.Route("/api", func(r chi.Router) {
		r.Post("/scores", handleSubmit(logger, deps.Submitter, now))
		r.Get("/leaderboard", handleLeaderboard(logger, deps.Leaderboard, limit))
		r.Get("/rank", handleRank(logger, deps.Leaderboard))
	})

	// Path used by the hosted function deployment.
	r.Post("/functions/v1/submit-score", handleSubmit(logger, deps.Submitter, now))
}
