package octave

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cwbudde/octaveband/dsp/filter/bank"
	"github.com/cwbudde/octaveband/dsp/filter/weighting"
	"github.com/cwbudde/octaveband/measure/spl"
)

// Analyzer computes fractional-octave band levels for batches of signals.
// Filterbanks are built lazily and cached per sample rate. An Analyzer is
// safe for concurrent use.
type Analyzer struct {
	cfg config

	mu    sync.Mutex
	banks map[float64]*bank.Filterbank
}

// NewAnalyzer returns an Analyzer with the given options applied.
func NewAnalyzer(opts ...Option) *Analyzer {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return &Analyzer{
		cfg:   cfg,
		banks: make(map[float64]*bank.Filterbank),
	}
}

// NthOct returns the configured fractional-octave resolution.
func (a *Analyzer) NthOct() float64 { return a.cfg.nthOct }

// Order returns the configured band filter order.
func (a *Analyzer) Order() int { return a.cfg.order }

// Weighting returns the frequency weighting applied before band filtering.
func (a *Analyzer) Weighting() weighting.Type { return a.cfg.weighting }

// Method returns the band energy measurement in use.
func (a *Analyzer) Method() Method { return a.cfg.method }

// Filterbank returns the filterbank used for signals at sampleRate,
// building it on first use.
func (a *Analyzer) Filterbank(sampleRate float64) (*bank.Filterbank, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if fb, ok := a.banks[sampleRate]; ok {
		return fb, nil
	}

	opts := append([]bank.Option{bank.WithLogger(a.cfg.logger)}, a.cfg.bankOpts...)

	fb, err := bank.New(sampleRate, a.cfg.order, a.cfg.nthOct, opts...)
	if err != nil {
		return nil, err
	}

	a.banks[sampleRate] = fb

	return fb, nil
}

// Analyze runs the analysis for every input and returns one result per
// input, in input order.
//
// labels supplies one label per input. When labels is nil or its length
// differs from len(inputs), every result gets its default label (the base
// name of Source, or "input-<n>") and, for a mismatch, a warning is added
// to the report.
//
// A failing input sets Err on its own result only. Cancellation of ctx is
// checked between inputs; inputs not started when ctx is done are marked
// with ctx.Err().
func (a *Analyzer) Analyze(ctx context.Context, inputs []Input, labels []string) Report {
	var rep Report

	sources := make([]string, len(inputs))
	for i, in := range inputs {
		sources[i] = in.Source
	}

	resolved, warning := ResolveLabels(sources, labels)
	if warning != "" {
		rep.Warnings = append(rep.Warnings, warning)
		a.cfg.logger.Warn("label count mismatch", "labels", len(labels), "inputs", len(inputs))
	}

	rep.Results = make([]AnalysisResult, len(inputs))

	a.forEachInput(len(inputs), func(i int) {
		in := inputs[i]
		label := resolved[i]

		res := AnalysisResult{Label: label, Source: in.Source, SampleRate: in.SampleRate}

		if err := ctx.Err(); err != nil {
			res.Err = err
			rep.Results[i] = res

			return
		}

		res.Bands, res.Err = a.analyzeOne(in)
		if res.Err != nil {
			a.cfg.logger.Warn("analysis failed", "input", label, "error", res.Err)
		}

		rep.Results[i] = res
	})

	return rep
}

func (a *Analyzer) analyzeOne(in Input) ([]BandEnergyResult, error) {
	fb, err := a.Filterbank(in.SampleRate)
	if err != nil {
		return nil, err
	}

	if err := bank.ValidateWaveform(in.Samples); err != nil {
		return nil, err
	}

	samples := in.Samples
	if a.cfg.weighting != weighting.TypeZ {
		if samples, err = weighting.Apply(a.cfg.weighting, in.SampleRate, samples); err != nil {
			return nil, err
		}
	}

	energies, err := a.bandEnergies(fb, samples, in.SampleRate)
	if err != nil {
		return nil, err
	}

	levels := spl.Levels(energies)
	centers := fb.CenterFrequencies()

	bands := make([]BandEnergyResult, len(levels))
	for i := range levels {
		bands[i] = BandEnergyResult{CenterFreq: centers[i], LevelDB: levels[i]}
	}

	return bands, nil
}

func (a *Analyzer) bandEnergies(fb *bank.Filterbank, samples []float64, sampleRate float64) ([]float64, error) {
	switch a.cfg.method {
	case MethodFilterbank:
		outputs, _, err := fb.Filter(samples)
		if err != nil {
			return nil, err
		}

		return spl.Energies(outputs), nil
	case MethodSpectral:
		return spl.SpectralEnergies(samples, sampleRate, fb.Bands())
	default:
		return nil, fmt.Errorf("octave: unknown method %v", a.cfg.method)
	}
}

// forEachInput calls fn for every input index on up to cfg.workers
// goroutines.
func (a *Analyzer) forEachInput(n int, fn func(i int)) {
	if a.cfg.workers <= 1 || n <= 1 {
		for i := range n {
			fn(i)
		}

		return
	}

	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range min(a.cfg.workers, n) {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for i := range jobs {
				fn(i)
			}
		}()
	}

	wg.Wait()
}

// ResolveLabels returns one label per source. labels is used as is when
// it has exactly one entry per source. Otherwise every source gets its
// DefaultLabel, and a non-nil labels slice of the wrong length produces a
// warning message.
func ResolveLabels(sources, labels []string) ([]string, string) {
	var warning string

	if labels != nil && len(labels) != len(sources) {
		warning = fmt.Sprintf("got %d labels for %d inputs, using default labels", len(labels), len(sources))
		labels = nil
	}

	if labels != nil {
		return append([]string(nil), labels...), warning
	}

	out := make([]string, len(sources))
	for i, src := range sources {
		out[i] = DefaultLabel(i, src)
	}

	return out, warning
}

// DefaultLabel returns the label used for the input at index i when no
// caller label applies: the base name of source, or "input-<i+1>".
func DefaultLabel(i int, source string) string {
	if source == "" {
		return fmt.Sprintf("input-%d", i+1)
	}

	return filepath.Base(source)
}
