package biquad

// Coefficients holds the transfer function of one second-order section,
//
//	H(z) = (B0 + B1 z^-1 + B2 z^-2) / (1 + A1 z^-1 + A2 z^-2)
//
// with a0 normalized to 1. A first-order section leaves B2 and A2 at zero.
type Coefficients struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// section is one coefficient set with its Direct Form II Transposed delay
// line:
//
//	y  = B0*x + d0
//	d0 = B1*x - A1*y + d1
//	d1 = B2*x - A2*y
type section struct {
	Coefficients

	d0, d1 float64
}

// run filters gain*src into dst. dst and src may be the same slice.
func (s *section) run(dst, src []float64, gain float64) {
	b0, b1, b2 := s.B0, s.B1, s.B2
	a1, a2 := s.A1, s.A2
	d0, d1 := s.d0, s.d1

	for i, x := range src {
		x *= gain
		y := b0*x + d0
		d0 = b1*x - a1*y + d1
		d1 = b2*x - a2*y
		dst[i] = y
	}

	s.d0, s.d1 = d0, d1
}
