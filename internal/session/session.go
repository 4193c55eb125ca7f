// Package session implements the typing session state machine.
package session

import (
	"time"

	"github.com/verte-zerg/typerank/internal/model"
)

// State is the lifecycle phase of a session.
type State int

const (
	// StateIdle means no attempt is in progress.
	StateIdle State = iota
	// StatePlaying means input is being captured.
	StatePlaying
	// StateFinished means the attempt has ended and can be scored.
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Clock returns the current wall-clock time.
type Clock func() time.Time

// Session holds one participant's attempt. It is not safe for concurrent use;
// the owning UI drives it from a single goroutine.
type Session struct {
	now Clock

	state     State
	target    string
	input     string
	startedAt time.Time
	endedAt   time.Time
	timeLimit time.Duration
	secsLeft  int

	// epoch changes on every transition so ticks scheduled for an earlier
	// attempt can be recognised and dropped.
	epoch uint64
}

// New returns an idle session. A nil clock uses time.Now.
func New(clock Clock) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{now: clock}
}

// Start begins an attempt on text. A zero limit means untimed.
// It returns false unless the session is idle.
func (s *Session) Start(text string, limit time.Duration) bool {
	if s.state != StateIdle {
		return false
	}
	if limit < 0 {
		limit = 0
	}
	s.target = text
	s.input = ""
	s.startedAt = s.now()
	s.endedAt = time.Time{}
	s.timeLimit = limit
	s.secsLeft = int(limit / time.Second)
	s.state = StatePlaying
	s.epoch++
	return true
}

// UpdateInput replaces the typed text. Ignored unless playing.
func (s *Session) UpdateInput(input string) bool {
	if s.state != StatePlaying {
		return false
	}
	s.input = input
	return true
}

// Finish ends the attempt and returns its snapshot.
// The second result is false unless the session was playing.
func (s *Session) Finish() (model.Attempt, bool) {
	if s.state != StatePlaying {
		return model.Attempt{}, false
	}
	s.endedAt = s.now()
	s.state = StateFinished
	s.epoch++
	return s.attempt(), true
}

// Reset discards all state and returns to idle. Valid from any state.
func (s *Session) Reset() {
	s.state = StateIdle
	s.target = ""
	s.input = ""
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.timeLimit = 0
	s.secsLeft = 0
	s.epoch++
}

// Ticking reports whether the countdown should be running, and the epoch
// a tick must carry to be accepted.
func (s *Session) Ticking() (uint64, bool) {
	return s.epoch, s.state == StatePlaying && s.timeLimit > 0
}

// Tick advances the countdown by one second. Ticks from another epoch or
// outside a timed Playing state are ignored. It returns true when the tick
// finished the attempt.
func (s *Session) Tick(epoch uint64) bool {
	if epoch != s.epoch || s.state != StatePlaying || s.timeLimit <= 0 {
		return false
	}
	if s.secsLeft > 0 {
		s.secsLeft--
	}
	if s.secsLeft > 0 {
		return false
	}
	_, ok := s.Finish()
	return ok
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Target returns the reference text.
func (s *Session) Target() string { return s.target }

// Input returns the typed text.
func (s *Session) Input() string { return s.input }

// StartedAt returns the start instant, zero when idle.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// EndedAt returns the end instant, zero until finished.
func (s *Session) EndedAt() time.Time { return s.endedAt }

// TimeLimit returns the configured limit, zero when untimed.
func (s *Session) TimeLimit() time.Duration { return s.timeLimit }

// SecondsLeft returns the countdown value. ok is false when the value has
// no meaning (untimed or not playing).
func (s *Session) SecondsLeft() (secs int, ok bool) {
	if s.state != StatePlaying || s.timeLimit <= 0 {
		return 0, false
	}
	return s.secsLeft, true
}

// Attempt returns the snapshot of a finished session.
func (s *Session) Attempt() (model.Attempt, bool) {
	if s.state != StateFinished {
		return model.Attempt{}, false
	}
	return s.attempt(), true
}

func (s *Session) attempt() model.Attempt {
	return model.Attempt{
		TargetText: s.target,
		Input:      s.input,
		StartedAt:  s.startedAt,
		EndedAt:    s.endedAt,
		TimeLimit:  s.timeLimit,
	}
}
