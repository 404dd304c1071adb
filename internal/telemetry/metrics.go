package telemetry

import (
	"backend-rucktracker/internal/shared/geo"
)

// Accumulator integrates accepted fixes into cumulative session metrics.
// It owns the snapshot: nothing else mutates distance, elevation or
// calories. Distance, elevation gain, elevation loss and calories are all
// monotonically non-decreasing.
type Accumulator struct {
	cfg    Thresholds
	bodyKg float64
	loadKg float64

	distanceM float64
	gainM     float64
	lossM     float64
	calories  float64

	pace *PaceSmoother
	last *LocationFix

	unlocked bool
}

func NewAccumulator(cfg Thresholds, bodyKg, loadKg float64) *Accumulator {
	cfg = cfg.Normalize()
	return &Accumulator{
		cfg:    cfg,
		bodyKg: bodyKg,
		loadKg: loadKg,
		pace:   NewPaceSmoother(cfg),
	}
}

// Last returns the most recently accepted fix, nil before the first one.
func (a *Accumulator) Last() *LocationFix {
	return a.last
}

// ResetSegment forgets the last accepted fix so the next fix starts a
// fresh segment. Used after a declined idle-timeout so the gap is not
// integrated as distance.
func (a *Accumulator) ResetSegment() {
	a.last = nil
}

// Accept integrates one fix that GeoFilter has already accepted and
// returns that fix's contribution. The first fix of a segment only
// establishes position.
func (a *Accumulator) Accept(fix LocationFix) DeltaMetrics {
	prev := a.last
	a.last = &fix
	if prev == nil {
		return DeltaMetrics{}
	}

	distanceM := geo.HaversineM(prev.Lat, prev.Lng, fix.Lat, fix.Lng)
	elapsed := fix.Timestamp.Sub(prev.Timestamp)

	delta := DeltaMetrics{DistanceM: distanceM}
	a.distanceM += distanceM

	elevDelta := fix.ElevationM - prev.ElevationM
	if elevDelta > 0 {
		a.gainM += elevDelta
		delta.ElevationGainM = elevDelta
	} else if elevDelta < 0 {
		a.lossM += -elevDelta
		delta.ElevationLossM = -elevDelta
	}

	if elapsed > 0 {
		speed := distanceM / elapsed.Seconds()
		grade := geo.GradePercent(elevDelta, distanceM)
		kcal := segmentCalories(a.bodyKg, a.loadKg, speed, grade, elapsed.Minutes())
		a.calories += kcal
		delta.Calories = kcal
	}

	// Zero-distance segments have no defined pace; skip the update
	// instead of dividing by zero.
	if distanceM > 0 && elapsed > 0 {
		instPace := elapsed.Seconds() / (distanceM / 1000)
		delta.PaceSecPerKm = a.pace.Update(instPace)
	}

	if !a.unlocked && a.distanceM >= a.cfg.InitialDistanceM {
		a.unlocked = true
	}

	return delta
}

// HiddenDistanceM reports accumulated distance regardless of whether
// stats are visible yet.
func (a *Accumulator) HiddenDistanceM() float64 {
	return a.distanceM
}

// StatsVisible reports whether the initial-distance threshold has been
// crossed.
func (a *Accumulator) StatsVisible() bool {
	return a.unlocked
}

// Snapshot returns the display-ready aggregate. Until the session has
// covered the initial-distance threshold the metrics read as zero; the
// hidden totals fold into the visible ones in one step at unlock, so the
// display never jumps backward.
func (a *Accumulator) Snapshot() Snapshot {
	snap := Snapshot{
		StatsVisible: a.unlocked,
		LastFix:      a.last,
	}
	if !a.unlocked {
		return snap
	}

	snap.DistanceM = a.distanceM
	snap.DistanceKm = a.distanceM / 1000
	snap.ElevationGainM = a.gainM
	snap.ElevationLossM = a.lossM
	snap.Calories = a.calories
	snap.PaceSecPerKm = a.pace.Current()
	return snap
}

// FinalTotals returns the raw accumulated metrics, visible or not. Used
// when finalizing a session.
func (a *Accumulator) FinalTotals() Snapshot {
	return Snapshot{
		DistanceM:      a.distanceM,
		DistanceKm:     a.distanceM / 1000,
		ElevationGainM: a.gainM,
		ElevationLossM: a.lossM,
		Calories:       a.calories,
		PaceSecPerKm:   a.pace.Current(),
		StatsVisible:   a.unlocked,
		LastFix:        a.last,
	}
}
