// Package validation re-derives and checks submitted attempts on the server.
package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/typerank/internal/model"
	"github.com/verte-zerg/typerank/internal/scoring"
)

// Reason names the first check a submission failed.
type Reason string

// Reasons in check order.
const (
	ReasonMissingParams   Reason = "Missing required parameters"
	ReasonInvalidUsername Reason = "Invalid username (must be 1-20 characters)"
	ReasonBadTimestamps   Reason = "Invalid timestamps"
	ReasonTimeOrder       Reason = "End time must be after start time"
	ReasonFutureTime      Reason = "Timestamps cannot be in the future"
	ReasonClockMismatch   Reason = "Client time mismatch (possible time manipulation)"
	ReasonBadDuration     Reason = "Invalid play duration"
	ReasonInputTooLong    Reason = "Input too long"
	ReasonCPMTooHigh      Reason = "CPM too high (physically impossible)"
	ReasonBadTarget       Reason = "Invalid target text"
)

// Limits bound what a plausible attempt looks like.
const (
	MaxUsernameLen      = 20
	DefaultMaxClockSkew = 10 * time.Second
	MinElapsedSeconds   = 0.1
	MaxElapsedSeconds   = 600.0
	MaxInputRatio       = 1.5
	MaxCPM              = 600.0
)

// Error is a rejected submission.
type Error struct {
	Reason Reason
}

func (e *Error) Error() string {
	return string(e.Reason)
}

func reject(r Reason) error {
	return &Error{Reason: r}
}

// Result is an accepted submission with its authoritative metrics.
type Result struct {
	Username       string
	ElapsedSeconds float64
	Metrics        model.ScoreMetrics
}

// Validator runs the ordered checks.
type Validator struct {
	MaxClockSkew time.Duration
}

// New returns a Validator with the given clock skew tolerance.
// A non-positive skew uses DefaultMaxClockSkew.
func New(maxSkew time.Duration) *Validator {
	if maxSkew <= 0 {
		maxSkew = DefaultMaxClockSkew
	}
	return &Validator{MaxClockSkew: maxSkew}
}

// Validate checks sub against server-observed time now and, on success,
// recomputes its metrics. The first failing check is returned as *Error.
func (v *Validator) Validate(sub model.Submission, now time.Time) (Result, error) {
	if sub.Input == "" || sub.TargetText == "" || sub.StartTime == 0 || sub.EndTime == 0 || sub.Username == "" {
		return Result{}, reject(ReasonMissingParams)
	}

	username := strings.TrimSpace(sub.Username)
	if n := utf8.RuneCountInString(username); n < 1 || n > MaxUsernameLen {
		return Result{}, reject(ReasonInvalidUsername)
	}

	if sub.StartTime <= 0 || sub.EndTime <= 0 {
		return Result{}, reject(ReasonBadTimestamps)
	}
	if sub.EndTime <= sub.StartTime {
		return Result{}, reject(ReasonTimeOrder)
	}

	nowMs := now.UnixMilli()
	if sub.StartTime > nowMs || sub.EndTime > nowMs {
		return Result{}, reject(ReasonFutureTime)
	}

	declared := sub.SubmittedAt
	if declared == 0 {
		declared = nowMs
	}
	if abs64(nowMs-declared) > v.MaxClockSkew.Milliseconds() {
		return Result{}, reject(ReasonClockMismatch)
	}

	elapsed := float64(sub.EndTime-sub.StartTime) / 1000
	if elapsed < MinElapsedSeconds || elapsed > MaxElapsedSeconds {
		return Result{}, reject(ReasonBadDuration)
	}

	inLen := utf8.RuneCountInString(sub.Input)
	targetLen := utf8.RuneCountInString(sub.TargetText)
	if float64(inLen) > float64(targetLen)*MaxInputRatio {
		return Result{}, reject(ReasonInputTooLong)
	}

	if float64(inLen)/elapsed*60 > MaxCPM {
		return Result{}, reject(ReasonCPMTooHigh)
	}

	// Duplicates the missing-parameter check; it keeps the last rule in the list.
	if targetLen == 0 {
		return Result{}, reject(ReasonBadTarget)
	}

	return Result{
		Username:       username,
		ElapsedSeconds: elapsed,
		Metrics:        scoring.Compute(sub.Input, sub.TargetText, elapsed, 0),
	}, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
