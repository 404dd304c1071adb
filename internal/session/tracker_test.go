package session

import (
	"errors"
	"testing"
	"time"

	"backend-rucktracker/internal/telemetry"
)

// testClock drives a tracker with a controllable wall clock.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTracker(cfg telemetry.Thresholds) (*Tracker, *testClock) {
	clock := &testClock{t: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)}
	tr := NewTracker("session-1", "user-1", cfg, 80, 15, nil)
	tr.now = clock.now
	tr.startedAt = clock.t
	tr.runningSince = clock.t
	tr.lastAccepted = clock.t
	return tr, clock
}

func walkFix(at time.Time, lat float64) telemetry.LocationFix {
	return telemetry.LocationFix{Lat: lat, Lng: -105.0, ElevationM: 1600, AccuracyM: 5, Timestamp: at}
}

// walk advances the tracker n fixes at ~1.1 m/s, one fix per 10 seconds,
// and returns the latitude cursor.
func walk(tr *Tracker, clock *testClock, lat float64, n int) float64 {
	for i := 0; i < n; i++ {
		clock.advance(10 * time.Second)
		lat += 0.0001
		tr.SubmitFix(walkFix(clock.t, lat))
	}
	return lat
}

func TestTrackerUnlocksStatsAfterInitialDistance(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{InitialDistanceM: 50})
	if tr.Snapshot().State != StateCollecting {
		t.Fatalf("expected collecting state")
	}

	clock.advance(10 * time.Second)
	lat := 40.0
	tr.SubmitFix(walkFix(clock.t, lat))

	var unlocked bool
	for i := 0; i < 10 && !unlocked; i++ {
		clock.advance(10 * time.Second)
		lat += 0.0001
		r := tr.SubmitFix(walkFix(clock.t, lat))
		if r.Event != nil && r.Event.Kind == EventStatsUnlocked {
			unlocked = true
			if r.State != StateActive {
				t.Fatalf("expected active after unlock, got %v", r.State)
			}
			if r.Snapshot.DistanceM < 50 {
				t.Fatalf("hidden distance not folded in: %v", r.Snapshot.DistanceM)
			}
		}
	}
	if !unlocked {
		t.Fatalf("stats never unlocked")
	}
}

func TestTrackerAutoPauseAndResume(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{StationaryFixLimit: 3})
	lat := walk(tr, clock, 40.0, 10)

	// stationary fixes: same position, clock running
	var paused bool
	for i := 0; i < 3; i++ {
		clock.advance(10 * time.Second)
		r := tr.SubmitFix(walkFix(clock.t, lat))
		if r.Event != nil && r.Event.Kind == EventAutoPaused {
			paused = true
			if i != 2 {
				t.Fatalf("auto-paused after %d stationary fixes, want 3", i+1)
			}
		}
	}
	if !paused || tr.Snapshot().State != StateAutoPaused {
		t.Fatalf("expected auto-paused state, got %v", tr.Snapshot().State)
	}

	// genuine motion resumes; the segment spans the stationary gap, so
	// move far enough to clear the stationary speed floor
	clock.advance(10 * time.Second)
	lat += 0.0003
	r := tr.SubmitFix(walkFix(clock.t, lat))
	if r.Event == nil || r.Event.Kind != EventResumed || r.State != StateActive {
		t.Fatalf("expected resume on motion, got %+v", r)
	}
}

func TestTrackerRejectedFixDoesNotChangeState(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{})
	lat := walk(tr, clock, 40.0, 10)
	before := tr.Snapshot()

	// out-of-order timestamp is always rejected, regardless of distance
	r := tr.SubmitFix(walkFix(clock.t.Add(-time.Minute), lat+0.0001))
	if r.Decision.Code != telemetry.Reject || r.Decision.Reason != telemetry.ReasonNonMonotonicTime {
		t.Fatalf("expected non-monotonic reject, got %+v", r.Decision)
	}
	after := tr.Snapshot()
	if after.State != before.State || after.Metrics.DistanceM != before.Metrics.DistanceM {
		t.Fatalf("rejected fix mutated state")
	}
}

func TestTrackerIdleTimeoutRequiresConfirmation(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{IdleTimeout: 2 * time.Minute})
	lat := walk(tr, clock, 40.0, 12)

	// silence beyond the idle timeout, then a fix arrives
	clock.advance(3 * time.Minute)
	r := tr.SubmitFix(walkFix(clock.t, lat+0.00001))
	if r.Event == nil || r.Event.Kind != EventIdlePending {
		t.Fatalf("expected idle-pending event, got %+v", r)
	}
	if tr.Ended() {
		t.Fatalf("idle timeout must not end the session without confirmation")
	}

	// fixes are held while the confirmation is pending
	clock.advance(10 * time.Second)
	r = tr.SubmitFix(walkFix(clock.t, lat+0.0002))
	if r.Decision.Reason != reasonIdlePending {
		t.Fatalf("expected fix held during idle confirmation, got %+v", r.Decision)
	}

	// decline: back to active with a fresh segment
	r, err := tr.ConfirmIdleEnd(false)
	if err != nil || r.Event.Kind != EventResumed {
		t.Fatalf("decline failed: %v %+v", err, r)
	}
	distBefore := tr.acc.HiddenDistanceM()
	clock.advance(10 * time.Second)
	tr.SubmitFix(walkFix(clock.t, lat+0.01))
	if tr.acc.HiddenDistanceM() != distBefore {
		t.Fatalf("idle gap was integrated as distance")
	}
}

func TestTrackerConfirmIdleEndFinalizes(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{IdleTimeout: 2 * time.Minute})
	lat := walk(tr, clock, 40.0, 20) // ~222 m over 200 s

	clock.advance(3 * time.Minute)
	tr.SubmitFix(walkFix(clock.t, lat))

	r, err := tr.ConfirmIdleEnd(true)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if r.Event.Kind != EventEnded || !tr.Ended() {
		t.Fatalf("expected session ended, got %+v", r)
	}
	final := tr.Stop() // idempotent, returns the same result
	if final.Reason != EndIdle {
		t.Fatalf("expected idle end reason, got %v", final.Reason)
	}
}

func TestTrackerConfirmIdleEndWithoutPending(t *testing.T) {
	tr, _ := newTestTracker(telemetry.Thresholds{})
	if _, err := tr.ConfirmIdleEnd(true); !errors.Is(err, ErrNoIdlePending) {
		t.Fatalf("expected ErrNoIdlePending, got %v", err)
	}
}

func TestTrackerStopTooShort(t *testing.T) {
	// thresholds 100 m / 180 s; walk 90 m in 170 s
	tr, clock := newTestTracker(telemetry.Thresholds{
		MinSessionDistanceM: 100,
		MinSessionDuration:  180 * time.Second,
	})

	lat := 40.0
	tr.SubmitFix(walkFix(clock.t, lat))
	for i := 0; i < 8; i++ { // 8 segments of ~11 m = ~89 m
		clock.advance(20 * time.Second)
		lat += 0.0001
		tr.SubmitFix(walkFix(clock.t, lat))
	}
	clock.advance(10 * time.Second) // total 170 s

	final := tr.Stop()
	if final.Reason != EndRejectedTooShort {
		t.Fatalf("expected rejected-too-short, got %v (%.0fm %s)", final.Reason, final.DistanceM, final.ActiveDuration)
	}
	if final.Savable() {
		t.Fatalf("too-short session must not be savable")
	}
}

func TestTrackerStopCompleted(t *testing.T) {
	// 200 s and ~155 m clears 100 m / 180 s
	tr, clock := newTestTracker(telemetry.Thresholds{
		MinSessionDistanceM: 100,
		MinSessionDuration:  180 * time.Second,
	})

	lat := 40.0
	tr.SubmitFix(walkFix(clock.t, lat))
	for i := 0; i < 14; i++ {
		clock.advance(14 * time.Second)
		lat += 0.0001
		tr.SubmitFix(walkFix(clock.t, lat))
	}
	clock.advance(4 * time.Second) // 200 s total

	final := tr.Stop()
	if final.Reason != EndCompleted {
		t.Fatalf("expected completed, got %v (%.0fm %s)", final.Reason, final.DistanceM, final.ActiveDuration)
	}
	if !final.Savable() {
		t.Fatalf("completed session must be savable")
	}
	if final.DistanceM < 100 || final.ActiveDuration < 180*time.Second {
		t.Fatalf("unexpected totals: %.0fm %s", final.DistanceM, final.ActiveDuration)
	}
}

func TestTrackerStopIsIdempotent(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{})
	walk(tr, clock, 40.0, 25)

	first := tr.Stop()
	second := tr.Stop()
	if first != second {
		t.Fatalf("expected identical finalized results")
	}

	// fixes after the end are ignored, not errors
	clock.advance(10 * time.Second)
	r := tr.SubmitFix(walkFix(clock.t, 41.0))
	if r.Decision.Reason != reasonSessionEnded || r.State != StateEnded {
		t.Fatalf("expected ignored fix after end, got %+v", r)
	}
}

func TestTrackerExplicitPauseStopsActiveClock(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{})
	lat := walk(tr, clock, 40.0, 10)

	if _, err := tr.Pause(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if _, err := tr.Pause(); !errors.Is(err, ErrAlreadyPaused) {
		t.Fatalf("expected ErrAlreadyPaused, got %v", err)
	}
	pausedAt := tr.activeDuration()

	// fixes during an explicit pause are ignored
	clock.advance(10 * time.Minute)
	r := tr.SubmitFix(walkFix(clock.t, lat+0.01))
	if r.Decision.Reason != reasonSessionPaused {
		t.Fatalf("expected paused ignore, got %+v", r.Decision)
	}
	if tr.activeDuration() != pausedAt {
		t.Fatalf("active clock ran during pause")
	}

	if _, err := tr.Resume(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if _, err := tr.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Fatalf("expected ErrNotPaused, got %v", err)
	}
	clock.advance(time.Minute)
	if tr.activeDuration() != pausedAt+time.Minute {
		t.Fatalf("active clock did not restart after resume")
	}
}

func TestTrackerCheckIdleTick(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{IdleTimeout: 2 * time.Minute})
	walk(tr, clock, 40.0, 5)

	if r := tr.CheckIdle(); r != nil {
		t.Fatalf("unexpected idle before timeout")
	}

	clock.advance(3 * time.Minute)
	r := tr.CheckIdle()
	if r == nil || r.Event.Kind != EventIdlePending {
		t.Fatalf("expected idle-pending from tick, got %+v", r)
	}
	// re-checks while pending stay quiet
	if tr.CheckIdle() != nil {
		t.Fatalf("expected single idle-pending signal")
	}
}

func TestTrackerCheckIdleIgnoredWhenPausedOrEnded(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{IdleTimeout: 2 * time.Minute})
	walk(tr, clock, 40.0, 5)

	if _, err := tr.Pause(); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	clock.advance(10 * time.Minute)
	if tr.CheckIdle() != nil {
		t.Fatalf("idle check must not fire during explicit pause")
	}

	if _, err := tr.Resume(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	tr.Stop()
	clock.advance(10 * time.Minute)
	if tr.CheckIdle() != nil {
		t.Fatalf("idle check must not fire after end")
	}
}

func TestTrackerStopCancelsIdleConfirmation(t *testing.T) {
	tr, clock := newTestTracker(telemetry.Thresholds{IdleTimeout: 2 * time.Minute})
	walk(tr, clock, 40.0, 25)

	clock.advance(3 * time.Minute)
	if tr.CheckIdle() == nil {
		t.Fatalf("expected idle pending")
	}

	final := tr.Stop()
	if final.Reason != EndCompleted {
		t.Fatalf("expected completed stop, got %v", final.Reason)
	}
	if _, err := tr.ConfirmIdleEnd(true); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded after stop, got %v", err)
	}
}

func TestValidatorBoundaries(t *testing.T) {
	v := NewValidator(telemetry.Thresholds{
		MinSessionDistanceM: 100,
		MinSessionDuration:  180 * time.Second,
	})

	if err := v.Validate(90, 170*time.Second); !errors.Is(err, ErrSessionTooShort) {
		t.Fatalf("expected too-short for 90m/170s")
	}
	if err := v.Validate(150, 170*time.Second); !errors.Is(err, ErrSessionTooShort) {
		t.Fatalf("expected too-short for short duration")
	}
	if err := v.Validate(90, 200*time.Second); !errors.Is(err, ErrSessionTooShort) {
		t.Fatalf("expected too-short for short distance")
	}
	if err := v.Validate(150, 200*time.Second); err != nil {
		t.Fatalf("expected valid session, got %v", err)
	}
	if err := v.Validate(100, 180*time.Second); err != nil {
		t.Fatalf("expected boundary values to pass, got %v", err)
	}
}
