package biquad

import "math/cmplx"

// Poles returns the roots of z^2 + A1 z + A2. A first-order section has
// one pole at -A1 and one at the origin.
func (c Coefficients) Poles() [2]complex128 {
	sq := cmplx.Sqrt(complex(c.A1*c.A1-4*c.A2, 0))
	b := complex(-c.A1, 0)

	return [2]complex128{(b + sq) / 2, (b - sq) / 2}
}

// MaxPoleRadius returns the largest pole magnitude across all sections.
// An empty chain reports 0.
func (c *Chain) MaxPoleRadius() float64 {
	r := 0.0

	for i := range c.sections {
		p := c.sections[i].Poles()
		r = max(r, cmplx.Abs(p[0]), cmplx.Abs(p[1]))
	}

	return r
}

// Stable reports whether every pole of the cascade lies strictly inside
// the unit circle.
func (c *Chain) Stable() bool {
	return c.MaxPoleRadius() < 1
}
