package telemetry

// MET-based calorie model for loaded walking. The carried load counts at
// 75% of body weight in the energy formula, and the grade is clamped to
// the range the model was fitted for.
const (
	loadWeightFactor = 0.75
	minGradePct      = -20.0
	maxGradePct      = 30.0
	minMET           = 1.5
)

// metFor estimates the metabolic equivalent for rucking at a given speed
// (m/s) and grade (percent). Flat-ground values follow the compendium
// walking/hiking entries; climbing adds effort per percent grade and
// descending gives a small discount.
func metFor(speedMps, gradePct float64) float64 {
	var met float64
	switch {
	case speedMps < 0.9: // slow walk, under ~3.2 km/h
		met = 2.3
	case speedMps < 1.34: // moderate walk
		met = 3.5
	case speedMps < 1.79: // brisk walk
		met = 5.0
	case speedMps < 2.24: // very brisk / loaded hike
		met = 7.0
	default: // running pace under load
		met = 9.0
	}

	if gradePct < minGradePct {
		gradePct = minGradePct
	} else if gradePct > maxGradePct {
		gradePct = maxGradePct
	}

	if gradePct > 0 {
		met += gradePct * 0.6
	} else {
		met += gradePct * 0.05
	}

	if met < minMET {
		met = minMET
	}
	return met
}

// segmentCalories returns the kcal burned over one accepted segment:
// (bodyKg + 0.75*loadKg) * MET * minutes / 60.
func segmentCalories(bodyKg, loadKg, speedMps, gradePct, minutes float64) float64 {
	if bodyKg <= 0 || minutes <= 0 {
		return 0
	}
	effectiveKg := bodyKg + loadWeightFactor*loadKg
	return effectiveKg * metFor(speedMps, gradePct) * minutes / 60
}
