// Package model defines shared data structures.
package model

import "time"

// Mode selects how an attempt is played and whether it can be submitted.
type Mode string

const (
	// ModePractice allows an optional time limit and an early finish.
	ModePractice Mode = "practice"
	// ModeRanking uses a fixed time limit and submits the attempt for ranking.
	ModeRanking Mode = "ranking"
)

// RankingTimeLimit is the fixed budget for ranking attempts.
const RankingTimeLimit = 180 * time.Second

// MaxPracticeTimeLimit bounds the optional practice time limit.
const MaxPracticeTimeLimit = 60 * time.Minute

// Config defines practice settings.
type Config struct {
	Mode      Mode
	TimeLimit time.Duration
	Words     int
	CapsPct   float64
	PunctPct  float64
	PunctSet  string
	TextsDir  string
	WordsFile string
	ServerURL string
	Username  string
	Timeout   time.Duration
}

// Attempt is the immutable snapshot of one finished session.
type Attempt struct {
	TargetText string
	Input      string
	StartedAt  time.Time
	EndedAt    time.Time
	TimeLimit  time.Duration
}

// Elapsed returns the wall-clock duration of the attempt.
func (a Attempt) Elapsed() time.Duration {
	return a.EndedAt.Sub(a.StartedAt)
}

// ScoreMetrics are the derived numbers for an attempt.
type ScoreMetrics struct {
	CPM      int     `json:"cpm"`
	Accuracy float64 `json:"accuracy"`
	Score    int     `json:"score"`
}

// ScoreRecord is the best score stored for one username.
type ScoreRecord struct {
	Username     string    `json:"username"`
	Score        int       `json:"score"`
	CPM          int       `json:"cpm"`
	Accuracy     float64   `json:"accuracy"`
	CreatedAt    time.Time `json:"created_at"`
	LastPlayedAt time.Time `json:"last_played_at"`
}

// Submission is the raw attempt sent for server-side validation.
// Timestamps are Unix epoch milliseconds.
type Submission struct {
	Input       string `json:"input"`
	TargetText  string `json:"targetText"`
	StartTime   int64  `json:"startTime"`
	EndTime     int64  `json:"endTime"`
	Username    string `json:"username"`
	SubmittedAt int64  `json:"submittedAt,omitempty"`
}

// SubmitResult is the server response to an accepted submission.
type SubmitResult struct {
	Success     bool    `json:"success"`
	Score       int     `json:"score"`
	CPM         int     `json:"cpm"`
	Accuracy    float64 `json:"accuracy"`
	Rank        int     `json:"rank"`
	IsHighScore bool    `json:"isHighScore"`
}

// HistoryEntry is one locally logged competitive result.
type HistoryEntry struct {
	Date     time.Time
	Score    int
	CPM      int
	Accuracy float64
}
