package bank

import (
	"fmt"
	"math"
)

// BandSpec describes one fractional-octave band. Edges are the nominal
// -3 dB points of the band-pass filter designed for it.
type BandSpec struct {
	CenterFreq float64 // centre frequency in Hz
	LowerEdge  float64 // lower band edge in Hz
	UpperEdge  float64 // upper band edge in Hz
}

// Bandwidth returns UpperEdge - LowerEdge in Hz.
func (b BandSpec) Bandwidth() float64 { return b.UpperEdge - b.LowerEdge }

// Contains reports whether freqHz lies within [LowerEdge, UpperEdge).
func (b BandSpec) Contains(freqHz float64) bool {
	return freqHz >= b.LowerEdge && freqHz < b.UpperEdge
}

func (b BandSpec) validate() error {
	if !(b.LowerEdge > 0 && b.LowerEdge < b.CenterFreq && b.CenterFreq < b.UpperEdge) ||
		math.IsInf(b.UpperEdge, 0) || math.IsNaN(b.UpperEdge) {
		return fmt.Errorf("%w: band edges %.6g < %.6g < %.6g Hz violated",
			ErrConfiguration, b.LowerEdge, b.CenterFreq, b.UpperEdge)
	}

	return nil
}

// Plan returns the 1/nthOct-octave bands covering the configured range,
// ordered by ascending centre frequency.
//
// nthOct is the fractional resolution: 1 gives octave bands, 3 gives
// third-octave bands. Non-integer values are allowed. A resolution so
// coarse that only one band (or none) covers the range is not an error.
func Plan(nthOct float64, opts ...Option) ([]BandSpec, error) {
	if err := validateNthOct(nthOct); err != nil {
		return nil, err
	}

	return planBands(nthOct, applyOptions(opts))
}

func validateNthOct(nthOct float64) error {
	if !(nthOct > 0) || math.IsInf(nthOct, 1) {
		return fmt.Errorf("%w: nth_oct must be a finite value > 0, got %g", ErrConfiguration, nthOct)
	}

	return nil
}

func planBands(n float64, cfg config) ([]BandSpec, error) {
	g := cfg.octaveRatio()
	logG := math.Log(g)

	// The first and last bands are the ones whose pass-band contains the
	// range limits: round to the nearest band index in the log domain.
	kMin := math.Round(n * math.Log(cfg.lowerHz/cfg.referenceHz) / logG)
	kMax := math.Round(n * math.Log(cfg.upperHz/cfg.referenceHz) / logG)

	if kMax < kMin {
		return nil, nil
	}

	if kMax-kMin+1 > maxBands {
		return nil, fmt.Errorf("%w: nth_oct %g yields %.0f bands, limit is %d",
			ErrConfiguration, n, kMax-kMin+1, maxBands)
	}

	halfBW := math.Pow(g, 1/(2*n))

	specs := make([]BandSpec, 0, int(kMax-kMin)+1)
	for k := kMin; k <= kMax; k++ {
		fc := cfg.referenceHz * math.Pow(g, k/n)
		specs = append(specs, BandSpec{
			CenterFreq: fc,
			LowerEdge:  fc / halfBW,
			UpperEdge:  fc * halfBW,
		})
	}

	return specs, nil
}

// CenterFrequencies extracts the centre frequencies of specs.
func CenterFrequencies(specs []BandSpec) []float64 {
	out := make([]float64, len(specs))
	for i, s := range specs {
		out[i] = s.CenterFreq
	}

	return out
}
