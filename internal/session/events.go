package session

import (
	"time"

	"backend-rucktracker/internal/telemetry"
)

// State is the lifecycle state of one ruck session.
type State string

const (
	// StateCollecting is the warm-up phase before the initial-distance
	// threshold is crossed; stats are accumulated but hidden.
	StateCollecting State = "collecting_initial_distance"
	StateActive     State = "active"
	StateAutoPaused State = "auto_paused"
	// StatePaused is an explicit user pause, distinct from auto-pause.
	StatePaused State = "paused"
	StateEnded  State = "ended"
)

// EndReason says why a session reached StateEnded.
type EndReason string

const (
	EndCompleted        EndReason = "completed"
	EndRejectedTooShort EndReason = "rejected_too_short"
	EndIdle             EndReason = "idle"
)

// EventKind tags a lifecycle transition surfaced to the caller.
type EventKind string

const (
	EventStatsUnlocked EventKind = "stats_unlocked"
	EventAutoPaused    EventKind = "auto_paused"
	EventResumed       EventKind = "resumed"
	EventPaused        EventKind = "paused"
	EventIdlePending   EventKind = "idle_timeout_pending"
	EventEnded         EventKind = "ended"
)

// LifecycleEvent is an optional transition emitted while processing a fix
// or command.
type LifecycleEvent struct {
	Kind   EventKind `json:"kind"`
	Reason string    `json:"reason,omitempty"`
	State  State     `json:"state"`
}

// Result bundles everything one submitted fix or tick produced.
type Result struct {
	SessionID string             `json:"session_id"`
	Decision  telemetry.Decision `json:"decision"`
	Event     *LifecycleEvent    `json:"event,omitempty"`
	Snapshot  telemetry.Snapshot `json:"snapshot"`
	State     State              `json:"state"`
}

// FinalizedSession is the frozen outcome handed to persistence once a
// session ends. Rejected sessions carry their reason and must be
// discarded rather than saved.
type FinalizedSession struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Reason          EndReason     `json:"reason"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         time.Time     `json:"ended_at"`
	ActiveDuration  time.Duration `json:"active_duration"`
	DistanceM       float64       `json:"distance_m"`
	ElevationGainM  float64       `json:"elevation_gain_m"`
	ElevationLossM  float64       `json:"elevation_loss_m"`
	Calories        float64       `json:"calories"`
	AvgPaceSecPerKm float64       `json:"avg_pace_sec_per_km"`
	UserWeightKg    float64       `json:"user_weight_kg"`
	RuckWeightKg    float64       `json:"ruck_weight_kg"`
}

// Savable reports whether the finalized session passed validation and
// should be persisted.
func (f FinalizedSession) Savable() bool {
	return f.Reason != EndRejectedTooShort
}
