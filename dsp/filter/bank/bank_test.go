package bank

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/cwbudde/octaveband/internal/testutil"
)

func bandEnergies(outputs [][]float64) []float64 {
	e := make([]float64, len(outputs))
	for i, out := range outputs {
		for _, v := range out {
			e[i] += v * v
		}
	}

	return e
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}

	return best
}

func TestNew_ThirdOctaveAt48k(t *testing.T) {
	fb, err := New(48000, DefaultOrder, DefaultNthOct)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	specs, _ := Plan(DefaultNthOct)
	if fb.NumBands() != len(specs) {
		t.Fatalf("NumBands = %d, want %d", fb.NumBands(), len(specs))
	}

	if len(fb.Skipped()) != 0 {
		t.Fatalf("unexpected skipped bands: %+v", fb.Skipped())
	}

	if fb.SampleRate() != 48000 || fb.Order() != DefaultOrder || fb.NthOct() != DefaultNthOct {
		t.Fatalf("accessors: fs=%v order=%d nth=%v", fb.SampleRate(), fb.Order(), fb.NthOct())
	}

	testutil.RequireStrictlyIncreasing(t, fb.CenterFrequencies())
}

func TestNew_SkipsBandsAboveNyquist(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	fb, err := New(44100, 4, 3, WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	skipped := fb.Skipped()
	if len(skipped) != 1 || math.Abs(skipped[0].CenterFreq-20158.7) > 1 {
		t.Fatalf("Skipped = %+v, want the 20 kHz band", skipped)
	}

	if fb.NumBands() != 31 {
		t.Fatalf("NumBands = %d, want 31", fb.NumBands())
	}

	if !strings.Contains(logBuf.String(), "skipping band above Nyquist") {
		t.Fatalf("missing warning, log: %q", logBuf.String())
	}
}

func TestNew_LowSampleRateKeepsLowBands(t *testing.T) {
	fb, err := New(8000, 4, 1, WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Octave bands up to 2 kHz fit below 4 kHz; 4, 8 and 16 kHz do not.
	if fb.NumBands() != 8 || len(fb.Skipped()) != 3 {
		t.Fatalf("bands=%d skipped=%d, want 8 and 3", fb.NumBands(), len(fb.Skipped()))
	}
}

func TestNew_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		order      int
		nthOct     float64
	}{
		{"zero sample rate", 0, 4, 3},
		{"negative sample rate", -1, 4, 3},
		{"zero order", 48000, 0, 3},
		{"negative order", 48000, -1, 3},
		{"zero nth", 48000, 4, 0},
		{"negative nth", 48000, 4, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.sampleRate, tt.order, tt.nthOct)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("error = %v, want ErrConfiguration", err)
			}
		})
	}
}

func TestFilter_SineLandsInItsBand(t *testing.T) {
	const fs = 48000

	fb, err := New(fs, 4, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, freq := range []float64{125, 1000, 8000} {
		x := testutil.DeterministicSine(freq, fs, 1, fs)

		outputs, states, err := fb.Filter(x)
		if err != nil {
			t.Fatalf("Filter: %v", err)
		}

		if len(outputs) != fb.NumBands() || len(states) != fb.NumBands() {
			t.Fatalf("got %d outputs, %d states for %d bands", len(outputs), len(states), fb.NumBands())
		}

		for i, out := range outputs {
			if len(out) != len(x) {
				t.Fatalf("band %d output length %d, want %d", i, len(out), len(x))
			}
		}

		want := testutil.NearestIndex(fb.CenterFrequencies(), freq)
		if got := argmax(bandEnergies(outputs)); got != want {
			t.Errorf("%g Hz sine: loudest band %d (%.1f Hz), want %d", freq, got, fb.CenterFrequencies()[got], want)
		}
	}
}

func TestFilter_Deterministic(t *testing.T) {
	x := testutil.DeterministicNoise(7, 0.5, 4096)

	a, err := New(48000, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	b, err := New(48000, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	outA, _, err := a.Filter(x)
	if err != nil {
		t.Fatal(err)
	}

	outB, _, err := b.Filter(x)
	if err != nil {
		t.Fatal(err)
	}

	outC, _, err := a.Filter(x)
	if err != nil {
		t.Fatal(err)
	}

	for i := range outA {
		testutil.RequireSliceNearlyEqual(t, outB[i], outA[i], 0)
		testutil.RequireSliceNearlyEqual(t, outC[i], outA[i], 0)
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	fb, err := New(48000, 2, 1)
	if err != nil {
		t.Fatal(err)
	}

	x := testutil.DeterministicNoise(3, 1, 512)
	orig := append([]float64(nil), x...)

	if _, _, err := fb.Filter(x); err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, x, orig, 0)
}

func TestFilterFrom_ChunkedMatchesOneShot(t *testing.T) {
	fb, err := New(48000, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	x := testutil.DeterministicNoise(11, 1, 3000)

	want, wantStates, err := fb.Filter(x)
	if err != nil {
		t.Fatal(err)
	}

	got := make([][]float64, fb.NumBands())
	states := fb.InitialState()

	for _, bounds := range [][2]int{{0, 1}, {1, 700}, {700, 2048}, {2048, 3000}} {
		chunk := x[bounds[0]:bounds[1]]

		out, next, err := fb.FilterFrom(chunk, states)
		if err != nil {
			t.Fatalf("FilterFrom %v: %v", bounds, err)
		}

		for i := range out {
			got[i] = append(got[i], out[i]...)
		}

		states = next
	}

	for i := range want {
		testutil.RequireSliceNearlyEqual(t, got[i], want[i], 1e-12)

		for s := range states[i].Sections {
			for k := range 2 {
				if math.Abs(states[i].Sections[s][k]-wantStates[i].Sections[s][k]) > 1e-12 {
					t.Fatalf("band %d section %d: final state differs", i, s)
				}
			}
		}
	}
}

func TestFilterFrom_DoesNotMutateStates(t *testing.T) {
	fb, err := New(48000, 2, 1)
	if err != nil {
		t.Fatal(err)
	}

	_, states, err := fb.Filter(testutil.DeterministicNoise(5, 1, 256))
	if err != nil {
		t.Fatal(err)
	}

	saved := CloneStates(states)

	if _, _, err := fb.FilterFrom(testutil.DeterministicNoise(6, 1, 256), states); err != nil {
		t.Fatal(err)
	}

	for i := range states {
		for s := range states[i].Sections {
			if states[i].Sections[s] != saved[i].Sections[s] {
				t.Fatalf("band %d section %d state was modified", i, s)
			}
		}
	}
}

func TestFilter_WorkersMatchSequential(t *testing.T) {
	x := testutil.DeterministicNoise(9, 1, 2048)

	seq, err := New(48000, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	par, err := New(48000, 4, 3, WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}

	want, _, err := seq.Filter(x)
	if err != nil {
		t.Fatal(err)
	}

	got, _, err := par.Filter(x)
	if err != nil {
		t.Fatal(err)
	}

	for i := range want {
		testutil.RequireSliceNearlyEqual(t, got[i], want[i], 0)
	}
}

func TestFilter_EmptyInput(t *testing.T) {
	fb, err := New(48000, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	for _, x := range [][]float64{nil, {}} {
		if _, _, err := fb.Filter(x); !errors.Is(err, ErrEmptyInput) || !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("error = %v, want ErrEmptyInput", err)
		}
	}
}

func TestFilter_NonFiniteInput(t *testing.T) {
	fb, err := New(48000, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		v    float64
	}{
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := testutil.DeterministicSine(1000, 48000, 1, 4800)
			x[100] = tt.v

			outputs, states, err := fb.Filter(x)
			if !errors.Is(err, ErrNonFinite) || !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrNonFinite", err)
			}

			if outputs != nil || states != nil {
				t.Fatal("expected no outputs on error")
			}

			if !strings.Contains(err.Error(), "index 100") {
				t.Errorf("error %q does not name the sample index", err)
			}

			if _, _, err := fb.FilterFrom(x, fb.InitialState()); !errors.Is(err, ErrNonFinite) {
				t.Errorf("FilterFrom error = %v, want ErrNonFinite", err)
			}
		})
	}
}

func TestFilterFrom_StateMismatch(t *testing.T) {
	fb48, err := New(48000, 4, 3)
	if err != nil {
		t.Fatal(err)
	}

	fb44, err := New(44100, 4, 3, WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatal(err)
	}

	fb2, err := New(48000, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	x := testutil.DeterministicNoise(1, 1, 64)

	tests := []struct {
		name   string
		states []FilterState
	}{
		{"band count", fb44.InitialState()},
		{"section count", fb2.InitialState()},
		{"empty", []FilterState{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := fb48.FilterFrom(x, tt.states); !errors.Is(err, ErrStateMismatch) {
				t.Fatalf("error = %v, want ErrStateMismatch", err)
			}
		})
	}

	shifted := fb48.InitialState()
	shifted[3].CenterFreq *= 2

	if _, _, err := fb48.FilterFrom(x, shifted); !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("centre mismatch: error = %v, want ErrStateMismatch", err)
	}
}

func TestFromFilters(t *testing.T) {
	specs, err := Plan(1, WithFrequencyRange(250, 4000))
	if err != nil {
		t.Fatal(err)
	}

	filters := make([]*BandFilter, len(specs))
	for i, s := range specs {
		if filters[i], err = DesignBandFilter(s, 48000, 3); err != nil {
			t.Fatal(err)
		}
	}

	fb, err := FromFilters(filters)
	if err != nil {
		t.Fatalf("FromFilters: %v", err)
	}

	if fb.NumBands() != len(specs) || fb.SampleRate() != 48000 || fb.Order() != 3 || fb.NthOct() != 0 {
		t.Fatalf("unexpected filterbank: bands=%d fs=%v order=%d", fb.NumBands(), fb.SampleRate(), fb.Order())
	}

	other, err := DesignBandFilter(specs[0], 44100, 3)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := FromFilters([]*BandFilter{filters[0], other}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("mixed sample rates: error = %v, want ErrConfiguration", err)
	}

	order4, err := DesignBandFilter(specs[1], 48000, 4)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := FromFilters([]*BandFilter{filters[0], order4}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("mixed orders: error = %v, want ErrConfiguration", err)
	}

	if _, err := FromFilters([]*BandFilter{filters[1], filters[0]}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("unordered: error = %v, want ErrConfiguration", err)
	}

	if _, err := FromFilters(nil); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("empty: error = %v, want ErrConfiguration", err)
	}
}
