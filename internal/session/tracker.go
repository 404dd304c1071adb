package session

import (
	"errors"
	"time"

	"backend-rucktracker/internal/telemetry"
)

// Logger receives structured-ish warnings for rejected fixes and state
// transitions. log.Printf satisfies it.
type Logger func(format string, args ...any)

var (
	ErrSessionEnded  = errors.New("session already ended")
	ErrNotPaused     = errors.New("session not paused")
	ErrNoIdlePending = errors.New("no idle confirmation pending")
	ErrAlreadyPaused = errors.New("session already paused")
)

// Fix-handling reasons that do not come from the geo filter.
const (
	reasonSessionEnded  = "session-ended"
	reasonSessionPaused = "session-paused"
	reasonIdlePending   = "awaiting-idle-confirmation"
)

// Tracker owns all mutable state for one ruck session: the geo filter,
// the metric accumulators and the lifecycle state machine. It is written
// for a single caller; the Engine serializes access to it.
type Tracker struct {
	id     string
	userID string

	cfg       telemetry.Thresholds
	filter    *telemetry.GeoFilter
	acc       *telemetry.Accumulator
	validator Validator

	state         State
	endReason     EndReason
	stationaryRun int
	idlePending   bool

	startedAt    time.Time
	endedAt      time.Time
	activeDur    time.Duration
	runningSince time.Time
	lastAccepted time.Time

	userWeightKg float64
	ruckWeightKg float64

	final *FinalizedSession

	logf Logger
	now  func() time.Time
}

// SnapshotView is the read-only display state polled by clients.
type SnapshotView struct {
	SessionID      string             `json:"session_id"`
	State          State              `json:"state"`
	IdlePending    bool               `json:"idle_pending"`
	StartedAt      time.Time          `json:"started_at"`
	ActiveDuration time.Duration      `json:"active_duration"`
	Metrics        telemetry.Snapshot `json:"metrics"`
}

func NewTracker(id, userID string, cfg telemetry.Thresholds, userWeightKg, ruckWeightKg float64, logf Logger) *Tracker {
	cfg = cfg.Normalize()
	if logf == nil {
		logf = func(string, ...any) {}
	}
	t := &Tracker{
		id:           id,
		userID:       userID,
		cfg:          cfg,
		filter:       telemetry.NewGeoFilter(cfg),
		acc:          telemetry.NewAccumulator(cfg, userWeightKg, ruckWeightKg),
		validator:    NewValidator(cfg),
		state:        StateCollecting,
		userWeightKg: userWeightKg,
		ruckWeightKg: ruckWeightKg,
		logf:         logf,
		now:          time.Now,
	}
	t.startedAt = t.now()
	t.runningSince = t.startedAt
	t.lastAccepted = t.startedAt
	return t
}

func (t *Tracker) ID() string { return t.id }

// SubmitFix runs one fix through filter, accumulators and the state
// machine. Rejected fixes never fail the session; they are logged and the
// current state is returned.
func (t *Tracker) SubmitFix(fix telemetry.LocationFix) Result {
	if t.state == StateEnded {
		return t.ignored(reasonSessionEnded)
	}
	if t.idlePending {
		return t.ignored(reasonIdlePending)
	}
	if t.state == StatePaused {
		return t.ignored(reasonSessionPaused)
	}

	decision := t.filter.Evaluate(fix, t.acc.Last())
	result := Result{SessionID: t.id, Decision: decision}

	switch decision.Code {
	case telemetry.Accept:
		t.acc.Accept(fix)
		t.lastAccepted = t.now()
		t.stationaryRun = 0

		switch {
		case t.state == StateAutoPaused:
			t.toActive()
			result.Event = t.event(EventResumed, "")
		case t.state == StateCollecting && t.acc.StatsVisible():
			t.state = StateActive
			result.Event = t.event(EventStatsUnlocked, "")
		}

	case telemetry.Reject:
		t.logf("session %s: fix rejected (%s)", t.id, decision.Reason)

	case telemetry.RequestAutoPause:
		t.stationaryRun++
		if t.state == StateActive && t.stationaryRun >= t.cfg.StationaryFixLimit {
			t.state = StateAutoPaused
			t.stopClock()
			result.Event = t.event(EventAutoPaused, decision.Reason)
			t.logf("session %s: auto-paused after %d stationary fixes", t.id, t.stationaryRun)
		}

	case telemetry.RequestAutoEnd:
		t.idlePending = true
		result.Event = t.event(EventIdlePending, decision.Reason)
		t.logf("session %s: idle timeout, awaiting confirmation", t.id)
	}

	result.Snapshot = t.acc.Snapshot()
	result.State = t.state
	return result
}

// CheckIdle is the timer-driven counterpart of the filter's idle rule: it
// raises the pending confirmation when no fix has been accepted for the
// idle timeout. Returns nil when nothing changed.
func (t *Tracker) CheckIdle() *Result {
	switch t.state {
	case StateEnded, StatePaused:
		return nil
	}
	if t.idlePending {
		return nil
	}
	if t.now().Sub(t.lastAccepted) <= t.cfg.IdleTimeout {
		return nil
	}

	t.idlePending = true
	t.logf("session %s: idle timeout (tick), awaiting confirmation", t.id)
	return &Result{
		SessionID: t.id,
		Decision:  telemetry.Decision{Code: telemetry.RequestAutoEnd, Reason: telemetry.ReasonIdleTimeout},
		Event:     t.event(EventIdlePending, telemetry.ReasonIdleTimeout),
		Snapshot:  t.acc.Snapshot(),
		State:     t.state,
	}
}

// ConfirmIdleEnd resolves a pending idle-timeout: end=true finalizes the
// session, end=false reverts to active with a fresh segment so the idle
// gap is never integrated as distance.
func (t *Tracker) ConfirmIdleEnd(end bool) (Result, error) {
	if t.state == StateEnded {
		return Result{}, ErrSessionEnded
	}
	if !t.idlePending {
		return Result{}, ErrNoIdlePending
	}

	t.idlePending = false
	if end {
		final := t.finalize(EndIdle)
		return Result{
			SessionID: t.id,
			Event:     t.event(EventEnded, string(final.Reason)),
			Snapshot:  t.acc.Snapshot(),
			State:     t.state,
		}, nil
	}

	t.acc.ResetSegment()
	t.stationaryRun = 0
	t.lastAccepted = t.now()
	t.toActive()
	return Result{
		SessionID: t.id,
		Event:     t.event(EventResumed, ""),
		Snapshot:  t.acc.Snapshot(),
		State:     t.state,
	}, nil
}

// Pause is the explicit user pause. The active-duration clock stops and
// the current segment is forgotten so the pause gap adds no distance.
func (t *Tracker) Pause() (Result, error) {
	if t.state == StateEnded {
		return Result{}, ErrSessionEnded
	}
	if t.state == StatePaused {
		return Result{}, ErrAlreadyPaused
	}

	t.state = StatePaused
	t.stopClock()
	t.acc.ResetSegment()
	t.stationaryRun = 0
	return Result{
		SessionID: t.id,
		Event:     t.event(EventPaused, ""),
		Snapshot:  t.acc.Snapshot(),
		State:     t.state,
	}, nil
}

// Resume lifts an explicit or automatic pause.
func (t *Tracker) Resume() (Result, error) {
	if t.state == StateEnded {
		return Result{}, ErrSessionEnded
	}
	if t.state != StatePaused && t.state != StateAutoPaused {
		return Result{}, ErrNotPaused
	}

	t.lastAccepted = t.now()
	t.toActive()
	return Result{
		SessionID: t.id,
		Event:     t.event(EventResumed, ""),
		Snapshot:  t.acc.Snapshot(),
		State:     t.state,
	}, nil
}

// Stop ends the session on user request. Stopping an already ended
// session is a no-op returning the same finalized result.
func (t *Tracker) Stop() FinalizedSession {
	if t.final != nil {
		return *t.final
	}
	t.idlePending = false
	return t.finalize(EndCompleted)
}

// Snapshot returns the current display state.
func (t *Tracker) Snapshot() SnapshotView {
	return SnapshotView{
		SessionID:      t.id,
		State:          t.state,
		IdlePending:    t.idlePending,
		StartedAt:      t.startedAt,
		ActiveDuration: t.activeDuration(),
		Metrics:        t.acc.Snapshot(),
	}
}

// Ended reports whether the session has been finalized.
func (t *Tracker) Ended() bool {
	return t.state == StateEnded
}

// finalize freezes the session exactly once. The validator is consulted
// here: sessions under the distance or duration minimum are marked
// rejected regardless of how the end was requested.
func (t *Tracker) finalize(requested EndReason) FinalizedSession {
	t.stopClock()
	totals := t.acc.FinalTotals()

	reason := requested
	if err := t.validator.Validate(totals.DistanceM, t.activeDur); err != nil {
		reason = EndRejectedTooShort
		t.logf("session %s: rejected as too short (%.0fm, %s)", t.id, totals.DistanceM, t.activeDur)
	}

	t.state = StateEnded
	t.endReason = reason
	t.endedAt = t.now()

	final := FinalizedSession{
		ID:              t.id,
		UserID:          t.userID,
		Reason:          reason,
		StartedAt:       t.startedAt,
		EndedAt:         t.endedAt,
		ActiveDuration:  t.activeDur,
		DistanceM:       totals.DistanceM,
		ElevationGainM:  totals.ElevationGainM,
		ElevationLossM:  totals.ElevationLossM,
		Calories:        totals.Calories,
		AvgPaceSecPerKm: totals.PaceSecPerKm,
		UserWeightKg:    t.userWeightKg,
		RuckWeightKg:    t.ruckWeightKg,
	}
	t.final = &final
	return final
}

func (t *Tracker) toActive() {
	if t.acc.StatsVisible() {
		t.state = StateActive
	} else {
		t.state = StateCollecting
	}
	if t.runningSince.IsZero() {
		t.runningSince = t.now()
	}
	t.stationaryRun = 0
}

func (t *Tracker) stopClock() {
	if !t.runningSince.IsZero() {
		t.activeDur += t.now().Sub(t.runningSince)
		t.runningSince = time.Time{}
	}
}

func (t *Tracker) activeDuration() time.Duration {
	d := t.activeDur
	if !t.runningSince.IsZero() {
		d += t.now().Sub(t.runningSince)
	}
	return d
}

func (t *Tracker) event(kind EventKind, reason string) *LifecycleEvent {
	return &LifecycleEvent{Kind: kind, Reason: reason, State: t.state}
}

func (t *Tracker) ignored(reason string) Result {
	t.logf("session %s: fix ignored (%s)", t.id, reason)
	return Result{
		SessionID: t.id,
		Decision:  telemetry.Decision{Code: telemetry.Reject, Reason: reason},
		Snapshot:  t.acc.Snapshot(),
		State:     t.state,
	}
}
