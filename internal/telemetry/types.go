package telemetry

import "time"

// LocationFix is a single GPS measurement as delivered by the client's
// location provider. Fixes arrive in submission order, which is not
// guaranteed to be monotonic by timestamp.
type LocationFix struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	ElevationM float64   `json:"elevation_m"`
	AccuracyM  float64   `json:"accuracy_m"`
	SpeedMps   float64   `json:"speed_mps,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Thresholds holds the tunable limits for fix filtering and session
// validation. Zero values are replaced by defaults via Normalize.
type Thresholds struct {
	MinSessionDistanceM float64       `json:"min_session_distance_m"`
	MinSessionDuration  time.Duration `json:"min_session_duration"`
	IdleTimeout         time.Duration `json:"idle_timeout"`
	InitialDistanceM    float64       `json:"initial_distance_m"`
	MaxPlausibleSpeed   float64       `json:"max_plausible_speed_mps"`
	MaxAccuracyM        float64       `json:"max_accuracy_m"`
	StationarySpeed     float64       `json:"stationary_speed_mps"`
	StationaryFixLimit  int           `json:"stationary_fix_limit"`
	PaceWindow          int           `json:"pace_window"`
	PaceTrimFraction    float64       `json:"pace_trim_fraction"`
	PaceSmoothingAlpha  float64       `json:"pace_smoothing_alpha"`
}

// DefaultThresholds returns the production limits used when nothing is
// configured.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSessionDistanceM: 100,
		MinSessionDuration:  3 * time.Minute,
		IdleTimeout:         2 * time.Minute,
		InitialDistanceM:    50,
		MaxPlausibleSpeed:   7.0,
		MaxAccuracyM:        50,
		StationarySpeed:     0.3,
		StationaryFixLimit:  3,
		PaceWindow:          30,
		PaceTrimFraction:    0.1,
		PaceSmoothingAlpha:  0.05,
	}
}

// Normalize fills unset fields from the defaults so partially configured
// thresholds stay usable.
func (t Thresholds) Normalize() Thresholds {
	def := DefaultThresholds()
	if t.MinSessionDistanceM <= 0 {
		t.MinSessionDistanceM = def.MinSessionDistanceM
	}
	if t.MinSessionDuration <= 0 {
		t.MinSessionDuration = def.MinSessionDuration
	}
	if t.IdleTimeout <= 0 {
		t.IdleTimeout = def.IdleTimeout
	}
	if t.InitialDistanceM <= 0 {
		t.InitialDistanceM = def.InitialDistanceM
	}
	if t.MaxPlausibleSpeed <= 0 {
		t.MaxPlausibleSpeed = def.MaxPlausibleSpeed
	}
	if t.MaxAccuracyM <= 0 {
		t.MaxAccuracyM = def.MaxAccuracyM
	}
	if t.StationarySpeed <= 0 {
		t.StationarySpeed = def.StationarySpeed
	}
	if t.StationaryFixLimit <= 0 {
		t.StationaryFixLimit = def.StationaryFixLimit
	}
	if t.PaceWindow <= 0 {
		t.PaceWindow = def.PaceWindow
	}
	if t.PaceTrimFraction <= 0 {
		t.PaceTrimFraction = def.PaceTrimFraction
	}
	if t.PaceSmoothingAlpha <= 0 {
		t.PaceSmoothingAlpha = def.PaceSmoothingAlpha
	}
	return t
}

// DecisionCode classifies the outcome of evaluating one candidate fix.
type DecisionCode int

const (
	Accept DecisionCode = iota
	Reject
	RequestAutoPause
	RequestAutoEnd
)

func (c DecisionCode) String() string {
	switch c {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case RequestAutoPause:
		return "request_auto_pause"
	case RequestAutoEnd:
		return "request_auto_end"
	}
	return "unknown"
}

// Rejection and signal reasons reported alongside a Decision.
const (
	ReasonNonMonotonicTime = "non-monotonic-time"
	ReasonImplausibleSpeed = "implausible-speed"
	ReasonLowAccuracy      = "low-accuracy"
	ReasonIdleTimeout      = "idle-timeout"
	ReasonStationary       = "stationary"
)

// Decision is the result of GeoFilter.Evaluate for one candidate fix.
type Decision struct {
	Code   DecisionCode `json:"code"`
	Reason string       `json:"reason,omitempty"`
}

// DeltaMetrics describes what a single accepted fix contributed.
type DeltaMetrics struct {
	DistanceM      float64 `json:"distance_m"`
	ElevationGainM float64 `json:"elevation_gain_m"`
	ElevationLossM float64 `json:"elevation_loss_m"`
	Calories       float64 `json:"calories"`
	PaceSecPerKm   float64 `json:"pace_sec_per_km"`
}

// Snapshot is the display-ready aggregate for one session. Before the
// initial-distance threshold is crossed the metric fields read as zero
// even though accumulation continues internally.
type Snapshot struct {
	DistanceM      float64      `json:"distance_m"`
	DistanceKm     float64      `json:"distance_km"`
	ElevationGainM float64      `json:"elevation_gain_m"`
	ElevationLossM float64      `json:"elevation_loss_m"`
	Calories       float64      `json:"calories"`
	PaceSecPerKm   float64      `json:"pace_sec_per_km"`
	StatsVisible   bool         `json:"stats_visible"`
	LastFix        *LocationFix `json:"last_fix,omitempty"`
}
