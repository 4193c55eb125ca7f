// Package scoring computes typing metrics shared by the client and the server.
package scoring

import (
	"math"
	"time"

	"github.com/verte-zerg/typerank/internal/model"
)

// MinElapsedSeconds is the lower clamp applied before dividing by elapsed time.
const MinElapsedSeconds = 0.1

// EditDistance returns the Levenshtein distance between a and b over runes.
func EditDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	// rb is the shorter sequence; rows are sized by it.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Accuracy returns the similarity of input to targetPrefix as a percentage
// rounded to one decimal. Either string being empty yields 0.
func Accuracy(input, targetPrefix string) float64 {
	inLen := len([]rune(input))
	targetLen := len([]rune(targetPrefix))
	if inLen == 0 || targetLen == 0 {
		return 0
	}
	maxLen := max(inLen, targetLen)
	dist := EditDistance(input, targetPrefix)
	pct := float64(maxLen-dist) / float64(maxLen) * 100
	return math.Max(0, round10(pct))
}

// TargetPrefix truncates target to its first n runes.
func TargetPrefix(target string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(target)
	if n >= len(runes) {
		return target
	}
	return string(runes[:n])
}

// CPM returns characters per minute. Elapsed time is clamped to at least
// MinElapsedSeconds and, when limitSeconds > 0, to at most limitSeconds.
func CPM(inputLen int, elapsedSeconds, limitSeconds float64) int {
	elapsed := ClampElapsed(elapsedSeconds, limitSeconds)
	return int(math.Round(float64(inputLen) / elapsed * 60))
}

// ClampElapsed applies the CPM clamps to an elapsed duration in seconds.
func ClampElapsed(elapsedSeconds, limitSeconds float64) float64 {
	elapsed := elapsedSeconds
	if limitSeconds > 0 && elapsed > limitSeconds {
		elapsed = limitSeconds
	}
	if elapsed < MinElapsedSeconds {
		elapsed = MinElapsedSeconds
	}
	return elapsed
}

// CompositeScore combines speed, accuracy and a logarithmic length bonus:
// round(cpm * accuracy/100 * log10(inputLen+1) * 100).
func CompositeScore(cpm int, accuracy float64, inputLen int) int {
	if inputLen <= 0 || cpm <= 0 || accuracy <= 0 {
		return 0
	}
	return int(math.Round(float64(cpm) * (accuracy / 100) * math.Log10(float64(inputLen)+1) * 100))
}

// Compute derives all metrics for one attempt. Accuracy is measured only
// against the part of the target the input actually covers.
func Compute(input, target string, elapsedSeconds, limitSeconds float64) model.ScoreMetrics {
	inLen := len([]rune(input))
	cpm := CPM(inLen, elapsedSeconds, limitSeconds)
	acc := Accuracy(input, TargetPrefix(target, inLen))
	return model.ScoreMetrics{
		CPM:      cpm,
		Accuracy: acc,
		Score:    CompositeScore(cpm, acc, inLen),
	}
}

// ForAttempt computes provisional metrics for a finished attempt.
func ForAttempt(a model.Attempt) model.ScoreMetrics {
	return Compute(a.Input, a.TargetText, Seconds(a.Elapsed()), Seconds(a.TimeLimit))
}

func round10(v float64) float64 {
	return math.Round(v*10) / 10
}

// Seconds converts a duration to fractional seconds, 0 for non-positive input.
func Seconds(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return d.Seconds()
}
