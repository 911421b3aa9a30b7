package spl

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/octaveband/dsp/filter/bank"
)

// ErrInvalidInput reports an empty signal, a NaN or infinite sample, or a
// non-positive sample rate.
var ErrInvalidInput = errors.New("spl: invalid input")

// SpectralEnergies returns the energy of x inside every band as seen by
// an ideal brick-wall filter.
//
// x is zero-padded to a power of two and transformed once. By Parseval's
// theorem the energies are on the same scale as [Energy]: the energies of
// bands that tile the spectrum of x add up to Energy(x). Bins outside every
// band are ignored.
func SpectralEnergies(x []float64, sampleRate float64, bands []bank.BandSpec) ([]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrInvalidInput)
	}

	if !(sampleRate > 0) || math.IsInf(sampleRate, 1) {
		return nil, fmt.Errorf("%w: sample rate %g", ErrInvalidInput, sampleRate)
	}

	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: %v at index %d", ErrInvalidInput, v, i)
		}
	}

	n := nextPowerOfTwo(len(x))

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, fmt.Errorf("spl: fft plan for %d points: %w", n, err)
	}

	buf := make([]complex128, n)
	for i, v := range x {
		buf[i] = complex(v, 0)
	}

	if err := plan.Forward(buf, buf); err != nil {
		return nil, fmt.Errorf("spl: forward fft: %w", err)
	}

	binHz := sampleRate / float64(n)
	scale := 1 / float64(n)
	energies := make([]float64, len(bands))

	for k := 0; k <= n/2; k++ {
		f := float64(k) * binHz

		p := real(buf[k])*real(buf[k]) + imag(buf[k])*imag(buf[k])
		if k != 0 && k != n/2 {
			// Negative-frequency mirror.
			p *= 2
		}

		for b := range bands {
			if bands[b].Contains(f) {
				energies[b] += p * scale
			}
		}
	}

	return energies, nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	return 1 << bits.Len(uint(n-1))
}
