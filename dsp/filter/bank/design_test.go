package bank

import (
	"errors"
	"math"
	"testing"
)

const halfPowerDB = -3.0102999566398120 // 10*log10(0.5)

func TestDesignBandFilter_StableOverPlan(t *testing.T) {
	specs, err := Plan(3)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	for _, fs := range []float64{44100, 48000, 96000} {
		for order := 1; order <= 8; order++ {
			for _, spec := range specs {
				f, err := DesignBandFilter(spec, fs, order)
				if errors.Is(err, ErrAboveNyquist) {
					continue
				}

				if err != nil {
					t.Fatalf("fs=%g order=%d band %.2f Hz: %v", fs, order, spec.CenterFreq, err)
				}

				if len(f.Sections) != order {
					t.Fatalf("order %d: got %d sections", order, len(f.Sections))
				}

				if !f.Stable() {
					t.Fatalf("fs=%g order=%d band %.2f Hz: pole radius %v",
						fs, order, spec.CenterFreq, f.Chain().MaxPoleRadius())
				}
			}
		}
	}
}

func TestDesignBandFilter_UnityAtPeakHalfPowerAtEdges(t *testing.T) {
	specs, err := Plan(3)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	const fs = 48000

	for _, order := range []int{1, 2, 3, 4, 6} {
		for _, spec := range specs {
			f, err := DesignBandFilter(spec, fs, order)
			if err != nil {
				t.Fatalf("order=%d band %.2f Hz: %v", order, spec.CenterFreq, err)
			}

			if got := f.MagnitudeDB(f.PeakFrequency()); math.Abs(got) > 1e-6 {
				t.Errorf("order=%d band %.2f Hz: peak gain %v dB, want 0", order, spec.CenterFreq, got)
			}

			for _, edge := range []float64{spec.LowerEdge, spec.UpperEdge} {
				if got := f.MagnitudeDB(edge); math.Abs(got-halfPowerDB) > 1e-3 {
					t.Errorf("order=%d band %.2f Hz: gain at edge %.2f Hz = %v dB, want %v",
						order, spec.CenterFreq, edge, got, halfPowerDB)
				}
			}
		}
	}
}

func TestDesignBandFilter_NoGainAboveUnity(t *testing.T) {
	spec := BandSpec{CenterFreq: 1000, LowerEdge: 1000 / math.Pow(2, 1.0/6), UpperEdge: 1000 * math.Pow(2, 1.0/6)}

	f, err := DesignBandFilter(spec, 48000, 4)
	if err != nil {
		t.Fatalf("DesignBandFilter: %v", err)
	}

	for freq := 10.0; freq < 24000; freq *= 1.01 {
		if got := f.MagnitudeDB(freq); got > 1e-9 {
			t.Fatalf("gain at %.1f Hz = %v dB, want <= 0", freq, got)
		}
	}
}

func TestDesignBandFilter_Selectivity(t *testing.T) {
	spec := BandSpec{CenterFreq: 1000, LowerEdge: 1000 / math.Pow(2, 1.0/6), UpperEdge: 1000 * math.Pow(2, 1.0/6)}

	low, err := DesignBandFilter(spec, 48000, 2)
	if err != nil {
		t.Fatal(err)
	}

	high, err := DesignBandFilter(spec, 48000, 6)
	if err != nil {
		t.Fatal(err)
	}

	// One octave away, a higher order must attenuate more.
	for _, freq := range []float64{500, 2000} {
		if !(high.MagnitudeDB(freq) < low.MagnitudeDB(freq)-10) {
			t.Errorf("%.0f Hz: order 6 %v dB, order 2 %v dB", freq, high.MagnitudeDB(freq), low.MagnitudeDB(freq))
		}
	}

	// Zeros at DC and Nyquist.
	if got := high.MagnitudeDB(0); !math.IsInf(got, -1) && got > -200 {
		t.Errorf("DC gain = %v dB", got)
	}
}

func TestDesignBandFilter_PeakNearGeometricCentre(t *testing.T) {
	spec := BandSpec{CenterFreq: 100, LowerEdge: 100 / math.Pow(2, 1.0/6), UpperEdge: 100 * math.Pow(2, 1.0/6)}

	f, err := DesignBandFilter(spec, 48000, 4)
	if err != nil {
		t.Fatal(err)
	}

	if got := f.PeakFrequency(); math.Abs(got-100) > 0.01 {
		t.Fatalf("PeakFrequency = %v, want ~100", got)
	}
}

func TestDesignBandFilter_AboveNyquist(t *testing.T) {
	spec := BandSpec{CenterFreq: 20000, LowerEdge: 17800, UpperEdge: 22400}

	_, err := DesignBandFilter(spec, 44100, 4)
	if !errors.Is(err, ErrAboveNyquist) {
		t.Fatalf("error = %v, want ErrAboveNyquist", err)
	}

	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("ErrAboveNyquist must wrap ErrConfiguration")
	}
}

func TestDesignBandFilter_InvalidArguments(t *testing.T) {
	valid := BandSpec{CenterFreq: 1000, LowerEdge: 891, UpperEdge: 1122}

	tests := []struct {
		name       string
		spec       BandSpec
		sampleRate float64
		order      int
	}{
		{"zero sample rate", valid, 0, 4},
		{"negative sample rate", valid, -48000, 4},
		{"NaN sample rate", valid, math.NaN(), 4},
		{"zero order", valid, 48000, 0},
		{"negative order", valid, 48000, -2},
		{"huge order", valid, 48000, maxOrder + 1},
		{"inverted edges", BandSpec{CenterFreq: 1000, LowerEdge: 1122, UpperEdge: 891}, 48000, 4},
		{"zero lower edge", BandSpec{CenterFreq: 1000, LowerEdge: 0, UpperEdge: 1122}, 48000, 4},
		{"NaN edge", BandSpec{CenterFreq: 1000, LowerEdge: 891, UpperEdge: math.NaN()}, 48000, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DesignBandFilter(tt.spec, tt.sampleRate, tt.order); !errors.Is(err, ErrConfiguration) {
				t.Fatalf("error = %v, want ErrConfiguration", err)
			}
		})
	}
}
