package clock

import (
	"testing"
	"time"

	"github.com/autonomysim/coresim/pkg/spatial"
)

func TestSteppableClockAdvancesByPeriod(t *testing.T) {
	c := NewSteppableClock(spatial.SecondsToDelta(0.1))
	if c.Now() != 0 {
		t.Fatalf("expected a fresh clock to start at zero")
	}
	first := c.Step()
	if first != spatial.TimePoint(spatial.SecondsToDelta(0.1)) {
		t.Fatalf("expected first step to land at 0.1s, got %v", first)
	}
	second := c.Step()
	if second != spatial.TimePoint(spatial.SecondsToDelta(0.2)) {
		t.Fatalf("expected second step to land at 0.2s, got %v", second)
	}
}

func TestSteppableClockStepByOverridesPeriod(t *testing.T) {
	c := NewSteppableClock(spatial.SecondsToDelta(0.1))
	got := c.StepBy(spatial.SecondsToDelta(5))
	if got != spatial.TimePoint(spatial.SecondsToDelta(5)) {
		t.Fatalf("expected StepBy to advance by the explicit delta, got %v", got)
	}
	// The configured period is untouched by StepBy.
	next := c.Step()
	if next != spatial.TimePoint(spatial.SecondsToDelta(5.1)) {
		t.Fatalf("expected the next Step to still use the configured period, got %v", next)
	}
}

func TestSteppableClockReset(t *testing.T) {
	c := NewSteppableClock(spatial.SecondsToDelta(1))
	c.Step()
	c.Reset()
	if c.Now() != 0 {
		t.Fatalf("expected Reset to rewind to zero, got %v", c.Now())
	}
}

func TestSteppableClockUpdateSince(t *testing.T) {
	c := NewSteppableClock(spatial.SecondsToDelta(1))
	c.Step()
	delta, since := c.UpdateSince(0)
	if delta != spatial.SecondsToDelta(1) {
		t.Fatalf("expected a 1s delta since zero, got %v", delta)
	}
	if since != c.Now() {
		t.Fatalf("expected UpdateSince to report the clock's current time")
	}
}

func TestScalableClockSpeedBoundary(t *testing.T) {
	// Below real time: sleeping should take longer wall time than the
	// virtual duration requested.
	slow := NewScalableClock(0.5)
	before := time.Now()
	slow.SleepFor(0.02)
	wallElapsed := time.Since(before)
	if wallElapsed < 30*time.Millisecond {
		t.Fatalf("expected sub-real-time speed to stretch the wall sleep beyond the virtual duration, got %v", wallElapsed)
	}

	// Above real time: sleeping should take less wall time than the virtual
	// duration requested.
	fast := NewScalableClock(4.0)
	before = time.Now()
	fast.SleepFor(0.02)
	wallElapsed = time.Since(before)
	if wallElapsed > 15*time.Millisecond {
		t.Fatalf("expected above-real-time speed to compress the wall sleep below the virtual duration, got %v", wallElapsed)
	}
}

func TestScalableClockSetSpeedDoesNotJumpVirtualTime(t *testing.T) {
	c := NewScalableClock(1.0)
	before := c.Now()
	c.SetSpeed(10.0)
	after := c.Now()
	if after < before {
		t.Fatalf("expected virtual time to never regress across a speed change")
	}
	if c.Speed() != 10.0 {
		t.Fatalf("expected Speed() to report the new speed, got %v", c.Speed())
	}
}

func TestScalableClockReset(t *testing.T) {
	c := NewScalableClock(1.0)
	c.SleepFor(0.01)
	c.Reset()
	if c.Now() > spatial.TimePoint(spatial.SecondsToDelta(0.005)) {
		t.Fatalf("expected Reset to rewind virtual time close to zero, got %v", c.Now())
	}
}
