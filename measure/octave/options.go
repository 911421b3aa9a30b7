package octave

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/octaveband/dsp/filter/bank"
	"github.com/cwbudde/octaveband/dsp/filter/weighting"
)

type config struct {
	nthOct    float64
	order     int
	workers   int
	bankOpts  []bank.Option
	weighting weighting.Type
	method    Method
	logger    *slog.Logger
}

// Method selects how band energies are measured.
type Method int

const (
	// MethodFilterbank filters the signal through the Butterworth band
	// filters and sums the squared output of every band.
	MethodFilterbank Method = iota
	// MethodSpectral sums the FFT power of the bins inside every band, an
	// ideal brick-wall split of the same band plan.
	MethodSpectral
)

func (m Method) String() string {
	switch m {
	case MethodFilterbank:
		return "filterbank"
	case MethodSpectral:
		return "spectral"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

func defaultConfig() config {
	return config{
		nthOct:  bank.DefaultNthOct,
		order:   bank.DefaultOrder,
		workers: 1,
	}
}

// Option configures an Analyzer.
type Option func(*config)

// WithNthOct sets the fractional-octave resolution (3 for third-octave
// bands). Defaults to 3. Invalid values surface as a configuration error
// on every input.
func WithNthOct(n float64) Option {
	return func(cfg *config) { cfg.nthOct = n }
}

// WithOrder sets the Butterworth prototype order of the band filters.
// Defaults to 4.
func WithOrder(order int) Option {
	return func(cfg *config) { cfg.order = order }
}

// WithWorkers analyses up to n inputs concurrently. Values below 1 are
// ignored.
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// WithBankOptions passes options through to every filterbank the Analyzer
// builds, e.g. bank.WithBase10 or bank.WithWorkers.
func WithBankOptions(opts ...bank.Option) Option {
	return func(cfg *config) { cfg.bankOpts = append(cfg.bankOpts, opts...) }
}

// WithWeighting applies a frequency weighting to every signal before band
// filtering. Defaults to weighting.TypeZ (unweighted).
func WithWeighting(t weighting.Type) Option {
	return func(cfg *config) { cfg.weighting = t }
}

// WithMethod selects the band energy measurement. Defaults to
// MethodFilterbank.
func WithMethod(m Method) Option {
	return func(cfg *config) { cfg.method = m }
}

// WithLogger sets the logger for warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}
