package bank

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Filterbank holds one band-pass filter per band for a fixed sample rate,
// filter order and fractional-octave resolution.
//
// A Filterbank only stores coefficients. Filter state is passed in and
// returned explicitly, so one Filterbank can be shared by concurrent callers.
type Filterbank struct {
	filters    []*BandFilter
	skipped    []BandSpec
	sampleRate float64
	order      int
	nthOct     float64
	workers    int
}

// New builds a filterbank for the 1/nthOct-octave plan at sampleRate.
//
// Bands whose upper edge reaches the Nyquist frequency are skipped and
// reported through the configured logger and [Filterbank.Skipped].
func New(sampleRate float64, order int, nthOct float64, opts ...Option) (*Filterbank, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}

	if err := validateOrder(order); err != nil {
		return nil, err
	}

	if err := validateNthOct(nthOct); err != nil {
		return nil, err
	}

	cfg := applyOptions(opts)

	specs, err := planBands(nthOct, cfg)
	if err != nil {
		return nil, err
	}

	fb := &Filterbank{
		filters:    make([]*BandFilter, 0, len(specs)),
		sampleRate: sampleRate,
		order:      order,
		nthOct:     nthOct,
		workers:    cfg.workers,
	}

	for _, spec := range specs {
		f, err := DesignBandFilter(spec, sampleRate, order)
		if errors.Is(err, ErrAboveNyquist) {
			fb.skipped = append(fb.skipped, spec)
			cfg.logger.Warn("skipping band above Nyquist",
				"center_hz", spec.CenterFreq,
				"upper_edge_hz", spec.UpperEdge,
				"sample_rate", sampleRate)

			continue
		}

		if err != nil {
			return nil, fmt.Errorf("band %.6g Hz: %w", spec.CenterFreq, err)
		}

		fb.filters = append(fb.filters, f)
	}

	return fb, nil
}

// FromFilters assembles a filterbank from individually designed filters.
// All filters must share one sample rate and order, and their centre
// frequencies must be strictly increasing.
func FromFilters(filters []*BandFilter, opts ...Option) (*Filterbank, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: no band filters", ErrConfiguration)
	}

	cfg := applyOptions(opts)
	first := filters[0]

	for i, f := range filters {
		if f == nil {
			return nil, fmt.Errorf("%w: band filter %d is nil", ErrConfiguration, i)
		}

		if f.SampleRate != first.SampleRate {
			return nil, fmt.Errorf("%w: mixed sample rates %g and %g Hz",
				ErrConfiguration, first.SampleRate, f.SampleRate)
		}

		if f.Order != first.Order {
			return nil, fmt.Errorf("%w: mixed filter orders %d and %d",
				ErrConfiguration, first.Order, f.Order)
		}

		if i > 0 && !(filters[i-1].Spec.CenterFreq < f.Spec.CenterFreq) {
			return nil, fmt.Errorf("%w: centre frequencies not increasing at band %d", ErrConfiguration, i)
		}
	}

	return &Filterbank{
		filters:    append([]*BandFilter(nil), filters...),
		sampleRate: first.SampleRate,
		order:      first.Order,
		workers:    cfg.workers,
	}, nil
}

// Filter runs every band filter over waveform from zero initial state.
//
// It returns one output per band (each len(waveform) samples, ordered like
// [Filterbank.Bands]) and the final state of every band filter.
func (fb *Filterbank) Filter(waveform []float64) ([][]float64, []FilterState, error) {
	return fb.FilterFrom(waveform, nil)
}

// FilterFrom is like Filter but starts every band from states, typically
// the states returned by the previous call for the preceding block.
// A nil states slice starts from zero. The passed states are not modified.
//
// A waveform that is empty or holds a NaN or infinite sample is rejected
// with an error wrapping [ErrInvalidInput].
func (fb *Filterbank) FilterFrom(waveform []float64, states []FilterState) ([][]float64, []FilterState, error) {
	if err := ValidateWaveform(waveform); err != nil {
		return nil, nil, err
	}

	if states != nil && len(states) != len(fb.filters) {
		return nil, nil, fmt.Errorf("%w: got %d states for %d bands",
			ErrStateMismatch, len(states), len(fb.filters))
	}

	outputs := make([][]float64, len(fb.filters))
	finals := make([]FilterState, len(fb.filters))

	err := fb.forEachBand(func(i int) error {
		f := fb.filters[i]
		chain := f.Chain()

		if states != nil {
			if states[i].CenterFreq != f.Spec.CenterFreq {
				return fmt.Errorf("%w: band %d state is for %.6g Hz, filter is %.6g Hz",
					ErrStateMismatch, i, states[i].CenterFreq, f.Spec.CenterFreq)
			}

			if err := chain.SetState(states[i].Sections); err != nil {
				return fmt.Errorf("%w: band %.6g Hz: %w", ErrStateMismatch, f.Spec.CenterFreq, err)
			}
		}

		out := make([]float64, len(waveform))
		chain.ProcessBlockTo(out, waveform)

		outputs[i] = out
		finals[i] = FilterState{CenterFreq: f.Spec.CenterFreq, Sections: chain.State()}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return outputs, finals, nil
}

// ValidateWaveform reports whether x can be filtered: it returns
// [ErrEmptyInput] for an empty slice and an error wrapping [ErrNonFinite]
// for the first NaN or infinite sample.
func ValidateWaveform(x []float64) error {
	if len(x) == 0 {
		return ErrEmptyInput
	}

	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %v at index %d", ErrNonFinite, v, i)
		}
	}

	return nil
}

// forEachBand calls fn for every band index, on up to fb.workers
// goroutines. It returns the first error reported.
func (fb *Filterbank) forEachBand(fn func(i int) error) error {
	n := len(fb.filters)

	if fb.workers <= 1 || n <= 1 {
		for i := range n {
			if err := fn(i); err != nil {
				return err
			}
		}

		return nil
	}

	workers := min(fb.workers, n)
	jobs := make(chan int, n)
	errChan := make(chan error, n)

	for i := range n {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range jobs {
				if err := fn(i); err != nil {
					errChan <- err
				}
			}
		}()
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}

// InitialState returns zero states for every band, equivalent to passing
// nil to FilterFrom.
func (fb *Filterbank) InitialState() []FilterState {
	states := make([]FilterState, len(fb.filters))
	for i, f := range fb.filters {
		states[i] = FilterState{
			CenterFreq: f.Spec.CenterFreq,
			Sections:   make([][2]float64, len(f.Sections)),
		}
	}

	return states
}

// CloneStates returns a deep copy of states.
func CloneStates(states []FilterState) []FilterState {
	if states == nil {
		return nil
	}

	out := make([]FilterState, len(states))
	for i, s := range states {
		out[i] = s.clone()
	}

	return out
}

// Bands returns the band specs of the designed filters in ascending order.
func (fb *Filterbank) Bands() []BandSpec {
	specs := make([]BandSpec, len(fb.filters))
	for i, f := range fb.filters {
		specs[i] = f.Spec
	}

	return specs
}

// Filters returns the designed band filters. The slice is a copy; the
// filters themselves must not be modified.
func (fb *Filterbank) Filters() []*BandFilter {
	return append([]*BandFilter(nil), fb.filters...)
}

// CenterFrequencies returns the centre frequency of every band.
func (fb *Filterbank) CenterFrequencies() []float64 {
	return CenterFrequencies(fb.Bands())
}

// NumBands returns the number of designed bands.
func (fb *Filterbank) NumBands() int { return len(fb.filters) }

// SampleRate returns the sample rate the filters were designed for.
func (fb *Filterbank) SampleRate() float64 { return fb.sampleRate }

// Order returns the Butterworth prototype order of every band filter.
func (fb *Filterbank) Order() int { return fb.order }

// NthOct returns the fractional-octave resolution, or 0 for a filterbank
// assembled with FromFilters.
func (fb *Filterbank) NthOct() float64 { return fb.nthOct }

// Skipped returns the planned bands that were dropped because they reach
// the Nyquist frequency.
func (fb *Filterbank) Skipped() []BandSpec {
	return append([]BandSpec(nil), fb.skipped...)
}
