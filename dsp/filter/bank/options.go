package bank

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

// Defaults for the configuration surface consumed by callers.
const (
	DefaultNthOct = 3.0
	DefaultOrder  = 4
)

const (
	defaultLowerFreq     = 16.0
	defaultUpperFreq     = 20000.0
	defaultReferenceFreq = 1000.0

	// maxBands bounds the plan size so an absurdly fine resolution fails
	// instead of allocating millions of filters.
	maxBands = 4096
	maxOrder = 64
)

var (
	// ErrConfiguration reports an invalid resolution, order, sample rate or
	// band specification. It is fatal for the filterbank being built.
	ErrConfiguration = errors.New("bank: invalid configuration")

	// ErrAboveNyquist reports a band whose upper edge is at or above half
	// the sample rate. It wraps ErrConfiguration.
	ErrAboveNyquist = fmt.Errorf("%w: band edge at or above Nyquist", ErrConfiguration)

	// ErrInvalidInput reports a waveform that cannot be filtered. It is
	// fatal for that waveform only.
	ErrInvalidInput = errors.New("bank: invalid input waveform")

	// ErrEmptyInput reports an empty waveform passed to Filter. It wraps
	// ErrInvalidInput.
	ErrEmptyInput = fmt.Errorf("%w: empty", ErrInvalidInput)

	// ErrNonFinite reports a NaN or infinite sample. It wraps
	// ErrInvalidInput.
	ErrNonFinite = fmt.Errorf("%w: non-finite sample", ErrInvalidInput)

	// ErrStateMismatch reports continuation states that were not produced
	// by a filterbank with the same bands and order.
	ErrStateMismatch = errors.New("bank: filter state does not match filterbank")
)

type config struct {
	lowerHz     float64
	upperHz     float64
	referenceHz float64
	base10      bool
	workers     int
	logger      *slog.Logger
}

func defaultConfig() config {
	return config{
		lowerHz:     defaultLowerFreq,
		upperHz:     defaultUpperFreq,
		referenceHz: defaultReferenceFreq,
		workers:     1,
	}
}

// Option configures the band plan and the filterbank.
type Option func(*config)

// WithFrequencyRange sets the lower and upper limits of the plan. The bands
// whose pass-band contains each limit are the first and last bands.
// Invalid ranges are ignored.
func WithFrequencyRange(lower, upper float64) Option {
	return func(cfg *config) {
		if lower > 0 && upper > lower && !math.IsInf(upper, 1) {
			cfg.lowerHz = lower
			cfg.upperHz = upper
		}
	}
}

// WithReferenceFrequency sets the frequency that band index k = 0 is
// centred on. Defaults to 1 kHz.
func WithReferenceFrequency(hz float64) Option {
	return func(cfg *config) {
		if hz > 0 && !math.IsInf(hz, 1) {
			cfg.referenceHz = hz
		}
	}
}

// WithBase10 selects the IEC 61260 base-ten octave ratio G = 10^(3/10)
// instead of exactly 2.
func WithBase10() Option {
	return func(cfg *config) { cfg.base10 = true }
}

// WithWorkers lets Filter process up to n bands concurrently.
// Values below 1 are ignored; the default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.workers = n
		}
	}
}

// WithLogger sets the logger used for construction warnings such as
// skipped bands. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) { cfg.logger = l }
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	return cfg
}

// octaveRatio returns the frequency ratio of one octave for the configured
// system.
func (cfg config) octaveRatio() float64 {
	if cfg.base10 {
		return math.Pow(10, 0.3)
	}

	return 2
}
