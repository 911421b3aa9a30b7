package spl

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/octaveband/dsp/core"
)

// NoEnergy is the level reported for a band with zero energy.
var NoEnergy = math.Inf(-1)

// IsNoEnergy reports whether level is the NoEnergy sentinel.
func IsNoEnergy(level float64) bool { return math.IsInf(level, -1) }

// Energy returns the sum of squared samples of x.
func Energy(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	return vecmath.DotProduct(x, x)
}

// Energies returns the energy of every band output.
func Energies(outputs [][]float64) []float64 {
	e := make([]float64, len(outputs))
	for i, out := range outputs {
		e[i] = Energy(out)
	}

	return e
}

// Levels converts band energies to dB relative to the largest of them.
//
// The largest energy maps to 0 dB. Zero energies map to NoEnergy; when all
// energies are zero, every level is NoEnergy.
func Levels(energies []float64) []float64 {
	levels := make([]float64, len(energies))
	if len(energies) == 0 {
		return levels
	}

	ref := floats.Max(energies)

	for i, e := range energies {
		if e <= 0 || ref <= 0 {
			levels[i] = NoEnergy
			continue
		}

		levels[i] = core.PowerRatioDB(e, ref)
	}

	return levels
}

// BandLevels is Levels(Energies(outputs)).
func BandLevels(outputs [][]float64) []float64 {
	return Levels(Energies(outputs))
}

// Peak returns the index of the loudest band, or -1 when levels is empty
// or every band is NoEnergy.
func Peak(levels []float64) int {
	if len(levels) == 0 {
		return -1
	}

	i := floats.MaxIdx(levels)
	if IsNoEnergy(levels[i]) {
		return -1
	}

	return i
}
