package bank

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/octaveband/dsp/filter/biquad"
)

// BandFilter is a designed band-pass filter for one band at one sample rate.
//
// Order is the Butterworth prototype order N. The digital band-pass has 2N
// poles and is realised as N biquad sections.
type BandFilter struct {
	Spec       BandSpec
	Order      int
	SampleRate float64
	Sections   []biquad.Coefficients
}

// DesignBandFilter designs a Butterworth band-pass filter of prototype order
// order whose -3 dB points are spec.LowerEdge and spec.UpperEdge.
//
// The design works directly in the z-domain using the low-pass to
// band-pass substitution
//
//	s = (1 - 2*c0*z^-1 + z^-2) / (1 - z^-2)
//
// with c0 = sin(w1+w2) / (sin w1 + sin w2) and prototype cutoff
// beta = tan((w2-w1)/2), where w1 and w2 are the band edges in rad/sample.
// Every prototype pole q maps to the two z-plane poles
//
//	z = (c0 ± sqrt(c0² - 1 + q²)) / (1 - q)
//
// and each of them forms a biquad together with its complex conjugate. The
// zeros sit at z = ±1, and every section is scaled to unity gain at the
// centre frequency w0 = acos(c0), so the cascade has 0 dB at w0 and -3.01 dB
// at both edges.
//
// Bands reaching the Nyquist frequency are rejected with ErrAboveNyquist.
func DesignBandFilter(spec BandSpec, sampleRate float64, order int) (*BandFilter, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	if err := validateOrder(order); err != nil {
		return nil, err
	}

	nyquist := sampleRate / 2
	if spec.UpperEdge >= nyquist {
		return nil, fmt.Errorf("%w: band %.6g Hz upper edge %.6g Hz, Nyquist %.6g Hz",
			ErrAboveNyquist, spec.CenterFreq, spec.UpperEdge, nyquist)
	}

	if err := spec.validate(); err != nil {
		return nil, err
	}

	return &BandFilter{
		Spec:       spec,
		Order:      order,
		SampleRate: sampleRate,
		Sections:   butterworthBandpass(spec.LowerEdge, spec.UpperEdge, sampleRate, order),
	}, nil
}

func validateSampleRate(sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 1) {
		return fmt.Errorf("%w: sample rate must be a finite value > 0, got %g", ErrConfiguration, sampleRate)
	}

	return nil
}

func validateOrder(order int) error {
	if order <= 0 || order > maxOrder {
		return fmt.Errorf("%w: filter order must be in 1..%d, got %d", ErrConfiguration, maxOrder, order)
	}

	return nil
}

func butterworthBandpass(lowHz, highHz, sampleRate float64, order int) []biquad.Coefficients {
	c0, beta := bandpassWarp(lowHz, highHz, sampleRate)

	// z^-1 evaluated at the centre frequency, for per-section normalization.
	zc := cmplx.Exp(complex(0, -math.Acos(c0)))

	sections := make([]biquad.Coefficients, 0, order)

	for k := range order / 2 {
		theta := math.Pi * float64(2*k+1) / float64(2*order)
		q := complex(-beta*math.Sin(theta), beta*math.Cos(theta))

		za, zb := bandpassPoles(c0, q)
		sections = append(sections,
			bandpassSection(-2*real(za), real(za*cmplx.Conj(za)), zc),
			bandpassSection(-2*real(zb), real(zb*cmplx.Conj(zb)), zc),
		)
	}

	if order%2 != 0 {
		// Real prototype pole q = -beta: the two z-poles are either a
		// conjugate pair or both real, and their sum and product are real.
		a1 := -2 * c0 / (1 + beta)
		a2 := (1 - beta) / (1 + beta)
		sections = append(sections, bandpassSection(a1, a2, zc))
	}

	return sections
}

// bandpassWarp returns the substitution constant c0 and the prototype
// cutoff beta for a band with the given edges.
func bandpassWarp(lowHz, highHz, sampleRate float64) (c0, beta float64) {
	w1 := 2 * math.Pi * lowHz / sampleRate
	w2 := 2 * math.Pi * highHz / sampleRate

	c0 = math.Sin(w1+w2) / (math.Sin(w1) + math.Sin(w2))
	beta = math.Tan((w2 - w1) / 2)

	return c0, beta
}

// PeakFrequency returns the frequency in Hz of unity gain. It equals the
// geometric centre for bands far below Nyquist and moves up as the band
// approaches it.
func (f *BandFilter) PeakFrequency() float64 {
	c0, _ := bandpassWarp(f.Spec.LowerEdge, f.Spec.UpperEdge, f.SampleRate)

	return math.Acos(c0) * f.SampleRate / (2 * math.Pi)
}

// bandpassPoles maps one prototype pole q to its two z-plane poles.
func bandpassPoles(c0 float64, q complex128) (complex128, complex128) {
	c := complex(c0, 0)
	r := cmplx.Sqrt(c*c - 1 + q*q)
	den := 1 - q

	return (c + r) / den, (c - r) / den
}

// bandpassSection builds a section with zeros at z = ±1 and the given
// denominator, scaled to unity magnitude at z^-1 = zc.
func bandpassSection(a1, a2 float64, zc complex128) biquad.Coefficients {
	num := 1 - zc*zc
	den := 1 + complex(a1, 0)*zc + complex(a2, 0)*zc*zc
	g := cmplx.Abs(den) / cmplx.Abs(num)

	return biquad.Coefficients{B0: g, B1: 0, B2: -g, A1: a1, A2: a2}
}

// Chain returns a fresh cascade with zero state.
func (f *BandFilter) Chain() *biquad.Chain {
	return biquad.NewChain(f.Sections)
}

// MagnitudeDB returns the magnitude response in dB at freqHz.
func (f *BandFilter) MagnitudeDB(freqHz float64) float64 {
	return f.Chain().MagnitudeDB(freqHz, f.SampleRate)
}

// Stable reports whether every pole of the filter lies strictly inside
// the unit circle.
func (f *BandFilter) Stable() bool {
	return f.Chain().Stable()
}
