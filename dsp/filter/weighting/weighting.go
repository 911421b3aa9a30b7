package weighting

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/cwbudde/octaveband/dsp/filter/biquad"
)

// ErrInvalid reports an unknown weighting name or an invalid sample rate.
var ErrInvalid = errors.New("weighting: invalid weighting")

// IEC 61672 analog prototype pole frequencies (Hz).
const (
	f1 = 20.598997 // double high-pass pole, A and C
	f2 = 107.65265 // high-pass pole, A
	f4 = 737.86223 // high-pass pole, A
	f5 = 12194.217 // double low-pass pole, A and C
)

// Type identifies a frequency weighting curve.
type Type int

const (
	TypeZ Type = iota // no weighting
	TypeA
	TypeC
)

func (t Type) String() string {
	switch t {
	case TypeZ:
		return "Z"
	case TypeA:
		return "A"
	case TypeC:
		return "C"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType parses "A", "C" or "Z" (case-insensitive). The empty string
// is Z.
func ParseType(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "Z":
		return TypeZ, nil
	case "A":
		return TypeA, nil
	case "C":
		return TypeC, nil
	default:
		return TypeZ, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
}

// New returns a fresh weighting filter for sampleRate, normalized to 0 dB
// at 1 kHz. A and C need a sample rate above twice the 12.2 kHz prototype
// pole.
func New(t Type, sampleRate float64) (*biquad.Chain, error) {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 1) {
		return nil, fmt.Errorf("%w: sample rate %g Hz", ErrInvalid, sampleRate)
	}

	if t != TypeZ && sampleRate <= 2*f5 {
		return nil, fmt.Errorf("%w: %v weighting needs a sample rate above %.0f Hz, got %g",
			ErrInvalid, t, 2*f5, sampleRate)
	}

	var coeffs []biquad.Coefficients

	switch t {
	case TypeZ:
		return biquad.NewChain([]biquad.Coefficients{{B0: 1}}), nil
	case TypeA:
		// s^4 / ((s+w1)^2 (s+w2) (s+w4) (s+w5)^2)
		coeffs = []biquad.Coefficients{
			highPass2(f1, sampleRate),
			highPass1(f2, sampleRate),
			highPass1(f4, sampleRate),
			lowPass1(f5, sampleRate),
			lowPass1(f5, sampleRate),
		}
	case TypeC:
		// s^2 / ((s+w1)^2 (s+w5)^2)
		coeffs = []biquad.Coefficients{
			highPass2(f1, sampleRate),
			lowPass1(f5, sampleRate),
			lowPass1(f5, sampleRate),
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalid, t)
	}

	h := complex(1, 0)
	for i := range coeffs {
		h *= coeffs[i].Response(1000, sampleRate)
	}

	return biquad.NewChain(coeffs, biquad.WithGain(1/cmplx.Abs(h))), nil
}

// Apply returns x filtered by the weighting t. x is not modified; for
// TypeZ the result is a copy of x.
func Apply(t Type, sampleRate float64, x []float64) ([]float64, error) {
	chain, err := New(t, sampleRate)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(x))
	chain.ProcessBlockTo(out, x)

	return out, nil
}

// Bilinear-transformed sections with K = tan(pi*f/fs).

// highPass2 is s^2/(s+w)^2.
func highPass2(f, fs float64) biquad.Coefficients {
	k := math.Tan(math.Pi * f / fs)
	d := (1 + k) * (1 + k)

	return biquad.Coefficients{
		B0: 1 / d,
		B1: -2 / d,
		B2: 1 / d,
		A1: 2 * (k*k - 1) / d,
		A2: (1 - k) * (1 - k) / d,
	}
}

// highPass1 is s/(s+w).
func highPass1(f, fs float64) biquad.Coefficients {
	k := math.Tan(math.Pi * f / fs)

	return biquad.Coefficients{B0: 1 / (1 + k), B1: -1 / (1 + k), A1: (k - 1) / (k + 1)}
}

// lowPass1 is w/(s+w).
func lowPass1(f, fs float64) biquad.Coefficients {
	k := math.Tan(math.Pi * f / fs)

	return biquad.Coefficients{B0: k / (1 + k), B1: k / (1 + k), A1: (k - 1) / (k + 1)}
}
