package session

import (
	"errors"
	"time"

	"backend-rucktracker/internal/telemetry"
)

// ErrSessionTooShort marks a session that ended below the minimum
// distance or active duration. The caller discards it instead of saving.
var ErrSessionTooShort = errors.New("session too short to save")

// Validator holds the minimum-session rules consulted exactly once when a
// session transitions into the ended state.
type Validator struct {
	MinDistanceM float64
	MinDuration  time.Duration
}

func NewValidator(cfg telemetry.Thresholds) Validator {
	cfg = cfg.Normalize()
	return Validator{
		MinDistanceM: cfg.MinSessionDistanceM,
		MinDuration:  cfg.MinSessionDuration,
	}
}

// Validate returns ErrSessionTooShort when either minimum is not met.
func (v Validator) Validate(distanceM float64, activeDuration time.Duration) error {
	if distanceM < v.MinDistanceM || activeDuration < v.MinDuration {
		return ErrSessionTooShort
	}
	return nil
}
