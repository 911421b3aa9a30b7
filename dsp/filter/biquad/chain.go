package biquad

import "errors"

// ErrStateLength is returned by [Chain.SetState] when the number of saved
// section states does not match the chain.
var ErrStateLength = errors.New("biquad: state length does not match section count")

// Chain is a cascade of sections processed in series, with an optional
// input gain.
type Chain struct {
	sections []section
	gain     float64
}

type chainConfig struct {
	gain float64
}

// ChainOption configures a Chain.
type ChainOption func(*chainConfig)

// WithGain scales the input of the cascade. Default is 1.
func WithGain(g float64) ChainOption {
	return func(cfg *chainConfig) { cfg.gain = g }
}

// NewChain returns a cascade with one section per coefficient set, all
// starting from zero state.
func NewChain(coeffs []Coefficients, opts ...ChainOption) *Chain {
	cfg := chainConfig{gain: 1}
	for _, o := range opts {
		if o != nil {
			o(&cfg)
		}
	}

	c := &Chain{
		sections: make([]section, len(coeffs)),
		gain:     cfg.gain,
	}
	for i := range coeffs {
		c.sections[i].Coefficients = coeffs[i]
	}

	return c
}

// ProcessBlockTo filters src into dst, carrying the delay lines over to the
// next call. dst must be at least as long as src and may alias it.
func (c *Chain) ProcessBlockTo(dst, src []float64) {
	dst = dst[:len(src)]

	if len(c.sections) == 0 {
		for i, x := range src {
			dst[i] = c.gain * x
		}

		return
	}

	c.sections[0].run(dst, src, c.gain)

	for i := 1; i < len(c.sections); i++ {
		c.sections[i].run(dst, dst, 1)
	}
}

// State returns a snapshot of the delay line [d0, d1] of every section.
func (c *Chain) State() [][2]float64 {
	states := make([][2]float64, len(c.sections))
	for i := range c.sections {
		states[i] = [2]float64{c.sections[i].d0, c.sections[i].d1}
	}

	return states
}

// SetState restores delay lines saved by State. A nil slice clears them.
func (c *Chain) SetState(states [][2]float64) error {
	if states == nil {
		for i := range c.sections {
			c.sections[i].d0, c.sections[i].d1 = 0, 0
		}

		return nil
	}

	if len(states) != len(c.sections) {
		return ErrStateLength
	}

	for i := range c.sections {
		c.sections[i].d0, c.sections[i].d1 = states[i][0], states[i][1]
	}

	return nil
}
