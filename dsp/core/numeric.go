// Package core holds the dB conversions used by the level measurements.
package core

import "math"

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return 10 * math.Log10(power)
}

// PowerRatioDB returns 10*log10(power/reference).
//
// Zero power yields -Inf regardless of the reference, so a silent input
// never produces NaN from 0/0. A zero or negative reference with positive
// power is not a meaningful ratio and yields NaN.
func PowerRatioDB(power, reference float64) float64 {
	if power == 0 {
		return math.Inf(-1)
	}

	if reference <= 0 || power < 0 {
		return math.NaN()
	}

	return LinearPowerToDB(power / reference)
}
