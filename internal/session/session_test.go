package session

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSession() (*Session, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return New(clock.now), clock
}

func TestStartOnlyFromIdle(t *testing.T) {
	s, _ := newTestSession()
	if !s.Start("hello", 0) {
		t.Fatalf("expected start from idle to succeed")
	}
	if s.State() != StatePlaying {
		t.Fatalf("expected playing, got %s", s.State())
	}
	if s.Start("other", 0) {
		t.Fatalf("expected start from playing to be ignored")
	}
	if s.Target() != "hello" {
		t.Fatalf("target changed by ignored start: %q", s.Target())
	}
	s.Finish()
	if s.Start("other", 0) {
		t.Fatalf("expected start from finished to be ignored")
	}
}

func TestFinishOnlyFromPlaying(t *testing.T) {
	s, clock := newTestSession()
	if _, ok := s.Finish(); ok {
		t.Fatalf("expected finish from idle to be ignored")
	}
	if !s.EndedAt().IsZero() {
		t.Fatalf("end time set by ignored finish")
	}
	s.Start("hello", 0)
	s.UpdateInput("hel")
	clock.advance(2 * time.Second)
	a, ok := s.Finish()
	if !ok {
		t.Fatalf("expected finish from playing")
	}
	if a.Input != "hel" || a.TargetText != "hello" {
		t.Fatalf("unexpected attempt: %+v", a)
	}
	if a.Elapsed() != 2*time.Second {
		t.Fatalf("expected 2s elapsed, got %s", a.Elapsed())
	}
	end := s.EndedAt()
	clock.advance(time.Second)
	if _, ok := s.Finish(); ok {
		t.Fatalf("expected second finish to be ignored")
	}
	if !s.EndedAt().Equal(end) {
		t.Fatalf("end time must be set exactly once")
	}
}

func TestUpdateInputIgnoredOutsidePlaying(t *testing.T) {
	s, _ := newTestSession()
	if s.UpdateInput("abc") {
		t.Fatalf("expected update while idle to be ignored")
	}
	s.Start("abc", 0)
	s.UpdateInput("ab")
	s.Finish()
	if s.UpdateInput("abc") {
		t.Fatalf("expected update while finished to be ignored")
	}
	if s.Input() != "ab" {
		t.Fatalf("input mutated after finish: %q", s.Input())
	}
}

func TestResetClearsFromAnyState(t *testing.T) {
	for _, finish := range []bool{false, true} {
		s, _ := newTestSession()
		s.Start("hello", 10*time.Second)
		s.UpdateInput("he")
		if finish {
			s.Finish()
		}
		s.Reset()
		if s.State() != StateIdle {
			t.Fatalf("expected idle after reset, got %s", s.State())
		}
		if s.Target() != "" || s.Input() != "" || !s.StartedAt().IsZero() || !s.EndedAt().IsZero() || s.TimeLimit() != 0 {
			t.Fatalf("fields not cleared after reset")
		}
		if _, ok := s.SecondsLeft(); ok {
			t.Fatalf("countdown should be meaningless after reset")
		}
		if _, ok := s.Attempt(); ok {
			t.Fatalf("no attempt should survive reset")
		}
	}
}

func TestCountdownFinishesAtZero(t *testing.T) {
	s, clock := newTestSession()
	s.Start("hello world", 5*time.Second)
	epoch, ticking := s.Ticking()
	if !ticking {
		t.Fatalf("expected timed session to tick")
	}
	for i := 0; i < 4; i++ {
		clock.advance(time.Second)
		if s.Tick(epoch) {
			t.Fatalf("finished early at tick %d", i+1)
		}
	}
	left, ok := s.SecondsLeft()
	if !ok || left != 1 {
		t.Fatalf("expected 1 second left, got %d (%v)", left, ok)
	}
	clock.advance(time.Second)
	if !s.Tick(epoch) {
		t.Fatalf("expected fifth tick to finish the session")
	}
	if s.State() != StateFinished {
		t.Fatalf("expected finished, got %s", s.State())
	}
	if s.secsLeft != 0 {
		t.Fatalf("expected 0 seconds left, got %d", s.secsLeft)
	}
	a, _ := s.Attempt()
	if a.Elapsed() != 5*time.Second {
		t.Fatalf("expected 5s elapsed, got %s", a.Elapsed())
	}
}

func TestStaleTickIgnored(t *testing.T) {
	s, _ := newTestSession()
	s.Start("first", 2*time.Second)
	stale, _ := s.Ticking()
	s.Reset()
	s.Start("second", 2*time.Second)
	if s.Tick(stale) {
		t.Fatalf("stale tick must not finish a later session")
	}
	if left, _ := s.SecondsLeft(); left != 2 {
		t.Fatalf("stale tick changed countdown: %d", left)
	}
}

func TestUntimedSessionDoesNotTick(t *testing.T) {
	s, _ := newTestSession()
	s.Start("hello", 0)
	epoch, ticking := s.Ticking()
	if ticking {
		t.Fatalf("untimed session should not tick")
	}
	if s.Tick(epoch) {
		t.Fatalf("tick finished an untimed session")
	}
	if s.State() != StatePlaying {
		t.Fatalf("expected playing, got %s", s.State())
	}
}
