package telemetry

import "sort"

// PaceSmoother turns noisy instantaneous segment paces into a stable
// display value. Stage one keeps a bounded window of recent paces and
// takes a trimmed mean; stage two blends that through an exponential
// moving average so a single GPS spike moves the displayed pace by at
// most alpha times the trimmed outlier delta.
type PaceSmoother struct {
	window    []float64
	size      int
	trim      float64
	alpha     float64
	displayed float64
	primed    bool
}

func NewPaceSmoother(cfg Thresholds) *PaceSmoother {
	cfg = cfg.Normalize()
	return &PaceSmoother{
		window: make([]float64, 0, cfg.PaceWindow),
		size:   cfg.PaceWindow,
		trim:   cfg.PaceTrimFraction,
		alpha:  cfg.PaceSmoothingAlpha,
	}
}

// Update feeds one instantaneous pace (seconds per kilometer) and returns
// the new displayed pace. Callers must skip zero-distance segments; an
// instantaneous pace is undefined there.
func (p *PaceSmoother) Update(instantaneous float64) float64 {
	if len(p.window) == p.size {
		copy(p.window, p.window[1:])
		p.window = p.window[:p.size-1]
	}
	p.window = append(p.window, instantaneous)

	trimmed := trimmedMean(p.window, p.trim)
	if !p.primed {
		p.displayed = trimmed
		p.primed = true
		return p.displayed
	}

	p.displayed = p.displayed*(1-p.alpha) + trimmed*p.alpha
	return p.displayed
}

// Current returns the last displayed pace, zero before the first sample.
func (p *PaceSmoother) Current() float64 {
	return p.displayed
}

// trimmedMean drops the top and bottom fraction of the sorted sample and
// averages the rest. Small windows fall back to a simple mean.
func trimmedMean(sample []float64, fraction float64) float64 {
	if len(sample) == 0 {
		return 0
	}

	sorted := make([]float64, len(sample))
	copy(sorted, sample)
	sort.Float64s(sorted)

	cut := int(float64(len(sorted)) * fraction)
	if len(sorted)-2*cut < 1 {
		cut = 0
	}
	sorted = sorted[cut : len(sorted)-cut]

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}
