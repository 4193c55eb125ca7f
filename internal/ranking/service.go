package ranking

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/typerank/internal/model"
	"github.com/verte-zerg/typerank/internal/validation"
)

// Recorder is the ranking store as seen by the submission flow.
type Recorder interface {
	Record(ctx context.Context, username string, m model.ScoreMetrics, at time.Time) (bool, error)
	Rank(ctx context.Context, score int) (int, error)
}

// Service validates submissions and reconciles them with the store.
type Service struct {
	validator *validation.Validator
	store     Recorder
}

// NewService wires a validator to a store.
func NewService(v *validation.Validator, store Recorder) *Service {
	return &Service{validator: v, store: store}
}

// Submit validates sub as received at now, records the recomputed metrics
// and ranks them. A *validation.Error means the store was not touched.
func (s *Service) Submit(ctx context.Context, sub model.Submission, now time.Time) (model.SubmitResult, error) {
	res, err := s.validator.Validate(sub, now)
	if err != nil {
		return model.SubmitResult{}, err
	}
	high, err := s.store.Record(ctx, res.Username, res.Metrics, now)
	if err != nil {
		return model.SubmitResult{}, fmt.Errorf("failed to record score: %w", err)
	}
	rank, err := s.store.Rank(ctx, res.Metrics.Score)
	if err != nil {
		return model.SubmitResult{}, fmt.Errorf("failed to rank score: %w", err)
	}
	return model.SubmitResult{
		Success:     true,
		Score:       res.Metrics.Score,
		CPM:         res.Metrics.CPM,
		Accuracy:    res.Metrics.Accuracy,
		Rank:        rank,
		IsHighScore: high,
	}, nil
}
