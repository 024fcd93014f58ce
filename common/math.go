package common

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SeriesEquivalent combines two stiffness-like coefficients in series.
// Values at or below 0.01 are treated as absent and yield zero.
func SeriesEquivalent(a, b float64) float64 {
	if a <= 0.01 || b <= 0.01 {
		return 0
	}
	return 1 / ((1 / a) + (1 / b))
}
