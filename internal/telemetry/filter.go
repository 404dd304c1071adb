package telemetry

import "backend-rucktracker/internal/shared/geo"

// GeoFilter decides whether a candidate fix may enter the accumulators.
// It is a pure function of the candidate, the previously accepted fix and
// the configured thresholds; the caller supplies the previous fix.
type GeoFilter struct {
	cfg Thresholds
}

func NewGeoFilter(cfg Thresholds) *GeoFilter {
	return &GeoFilter{cfg: cfg.Normalize()}
}

// Evaluate applies the filter rules in order. previous is nil for the
// first fix of a session, which is accepted unconditionally.
func (f *GeoFilter) Evaluate(candidate LocationFix, previous *LocationFix) Decision {
	if previous == nil {
		return Decision{Code: Accept}
	}

	elapsed := candidate.Timestamp.Sub(previous.Timestamp)
	if elapsed <= 0 {
		return Decision{Code: Reject, Reason: ReasonNonMonotonicTime}
	}

	distanceM := geo.HaversineM(previous.Lat, previous.Lng, candidate.Lat, candidate.Lng)
	impliedSpeed := distanceM / elapsed.Seconds()

	if impliedSpeed > f.cfg.MaxPlausibleSpeed {
		return Decision{Code: Reject, Reason: ReasonImplausibleSpeed}
	}

	if candidate.AccuracyM > f.cfg.MaxAccuracyM {
		return Decision{Code: Reject, Reason: ReasonLowAccuracy}
	}

	// previous is always the last accepted fix, so elapsed doubles as the
	// time since accepted motion.
	if elapsed > f.cfg.IdleTimeout {
		return Decision{Code: RequestAutoEnd, Reason: ReasonIdleTimeout}
	}

	if impliedSpeed < f.cfg.StationarySpeed {
		return Decision{Code: RequestAutoPause, Reason: ReasonStationary}
	}

	return Decision{Code: Accept}
}
