package tracking

import (
	"time"

	"backend-rucktracker/internal/session"
)

// StartRequest creates and starts a new ruck session.
type StartRequest struct {
	UserID       string  `json:"user_id"`
	UserWeightKg float64 `json:"user_weight_kg"`
	RuckWeightKg float64 `json:"ruck_weight_kg"`
}

// SessionInfo is returned when a session starts.
type SessionInfo struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	State        session.State `json:"state"`
	UserWeightKg float64       `json:"user_weight_kg"`
	RuckWeightKg float64       `json:"ruck_weight_kg"`
	StartedAt    time.Time     `json:"started_at"`
}

// IdleDecision resolves a pending idle-timeout confirmation.
type IdleDecision struct {
	End bool `json:"end"`
}

// StopResponse reports the finalized session. Saved is false when the
// session was rejected as too short and its row was discarded.
type StopResponse struct {
	Session session.FinalizedSession `json:"session"`
	Saved   bool                     `json:"saved"`
}
