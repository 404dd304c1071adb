package telemetry

import (
	"math/rand"
	"testing"
	"time"
)

func trackFix(ts time.Time, lat, lng, elev float64) LocationFix {
	return LocationFix{Lat: lat, Lng: lng, ElevationM: elev, AccuracyM: 5, Timestamp: ts}
}

func TestAccumulatorFirstFixEstablishesPosition(t *testing.T) {
	acc := NewAccumulator(Thresholds{}, 80, 15)
	delta := acc.Accept(trackFix(time.Now(), 40.0, -105.0, 1600))
	if delta.DistanceM != 0 || delta.Calories != 0 {
		t.Fatalf("expected empty delta for first fix, got %+v", delta)
	}
	if acc.Last() == nil {
		t.Fatalf("expected last fix recorded")
	}
}

func TestAccumulatorDistanceAndElevation(t *testing.T) {
	acc := NewAccumulator(Thresholds{}, 80, 15)
	base := time.Now()

	acc.Accept(trackFix(base, 40.0, -105.0, 1600))
	delta := acc.Accept(trackFix(base.Add(10*time.Second), 40.0001, -105.0, 1603))

	if delta.DistanceM < 10 || delta.DistanceM > 12.5 {
		t.Fatalf("unexpected segment distance: %v", delta.DistanceM)
	}
	if delta.ElevationGainM != 3 || delta.ElevationLossM != 0 {
		t.Fatalf("unexpected elevation delta: %+v", delta)
	}
	if delta.Calories <= 0 {
		t.Fatalf("expected calories burned, got %v", delta.Calories)
	}

	delta = acc.Accept(trackFix(base.Add(20*time.Second), 40.0002, -105.0, 1598))
	if delta.ElevationLossM != 5 || delta.ElevationGainM != 0 {
		t.Fatalf("unexpected elevation loss delta: %+v", delta)
	}
}

func TestAccumulatorMonotonicUnderArbitraryInput(t *testing.T) {
	acc := NewAccumulator(Thresholds{}, 80, 15)
	rng := rand.New(rand.NewSource(42))
	base := time.Now()

	var prevDist, prevGain, prevLoss, prevCal float64
	lat, elev := 40.0, 1600.0
	for i := 0; i < 200; i++ {
		lat += rng.Float64() * 0.0001
		elev += (rng.Float64() - 0.5) * 10
		acc.Accept(trackFix(base.Add(time.Duration(i)*10*time.Second), lat, -105.0, elev))

		totals := acc.FinalTotals()
		if totals.DistanceM < prevDist {
			t.Fatalf("distance decreased at fix %d", i)
		}
		if totals.ElevationGainM < prevGain || totals.ElevationLossM < prevLoss {
			t.Fatalf("elevation accumulator decreased at fix %d", i)
		}
		if totals.Calories < prevCal {
			t.Fatalf("calories decreased at fix %d", i)
		}
		prevDist, prevGain, prevLoss, prevCal = totals.DistanceM, totals.ElevationGainM, totals.ElevationLossM, totals.Calories
	}
}

func TestAccumulatorHidesStatsUntilInitialDistance(t *testing.T) {
	acc := NewAccumulator(Thresholds{InitialDistanceM: 50}, 80, 15)
	base := time.Now()

	// ~11 m per fix; 50 m threshold crossed on the fifth segment
	for i := 0; i <= 4; i++ {
		acc.Accept(trackFix(base.Add(time.Duration(i)*10*time.Second), 40.0+float64(i)*0.0001, -105.0, 1600))
		if i < 4 {
			snap := acc.Snapshot()
			if snap.StatsVisible || snap.DistanceM != 0 {
				t.Fatalf("stats visible too early at fix %d: %+v", i, snap)
			}
		}
	}

	if acc.HiddenDistanceM() < 40 {
		t.Fatalf("hidden distance not accumulated: %v", acc.HiddenDistanceM())
	}

	acc.Accept(trackFix(base.Add(50*time.Second), 40.0005, -105.0, 1600))
	snap := acc.Snapshot()
	if !snap.StatsVisible {
		t.Fatalf("expected stats unlocked")
	}
	// the hidden distance folds into the visible total in one step
	if snap.DistanceM < 50 {
		t.Fatalf("hidden distance not folded in: %v", snap.DistanceM)
	}
}

func TestAccumulatorZeroDistanceSkipsPace(t *testing.T) {
	acc := NewAccumulator(Thresholds{}, 80, 15)
	base := time.Now()

	acc.Accept(trackFix(base, 40.0, -105.0, 1600))
	delta := acc.Accept(trackFix(base.Add(10*time.Second), 40.0, -105.0, 1600))
	if delta.PaceSecPerKm != 0 {
		t.Fatalf("expected pace update skipped for zero-distance segment, got %v", delta.PaceSecPerKm)
	}
}

func TestAccumulatorResetSegment(t *testing.T) {
	acc := NewAccumulator(Thresholds{}, 80, 15)
	base := time.Now()

	acc.Accept(trackFix(base, 40.0, -105.0, 1600))
	acc.ResetSegment()
	if acc.Last() != nil {
		t.Fatalf("expected last fix cleared")
	}

	// the fix after a reset contributes no distance
	delta := acc.Accept(trackFix(base.Add(5*time.Minute), 40.01, -105.0, 1600))
	if delta.DistanceM != 0 {
		t.Fatalf("expected no distance after segment reset, got %v", delta.DistanceM)
	}
}

func TestMetForSpeedAndGrade(t *testing.T) {
	flat := metFor(1.5, 0)
	uphill := metFor(1.5, 10)
	downhill := metFor(1.5, -10)

	if uphill <= flat {
		t.Fatalf("expected climbing to cost more: flat=%v uphill=%v", flat, uphill)
	}
	if downhill >= flat {
		t.Fatalf("expected descending discount: flat=%v downhill=%v", flat, downhill)
	}
	if metFor(0.1, -100) < minMET {
		t.Fatalf("expected MET floor")
	}
}

func TestSegmentCalories(t *testing.T) {
	// 80 kg body + 15 kg ruck at brisk pace for 10 minutes
	kcal := segmentCalories(80, 15, 1.5, 0, 10)
	want := (80 + 0.75*15) * 5.0 * 10 / 60
	if kcal != want {
		t.Fatalf("expected %v kcal, got %v", want, kcal)
	}

	if segmentCalories(0, 15, 1.5, 0, 10) != 0 {
		t.Fatalf("expected zero kcal without body weight")
	}
	if segmentCalories(80, 15, 1.5, 0, 0) != 0 {
		t.Fatalf("expected zero kcal for zero duration")
	}
}
