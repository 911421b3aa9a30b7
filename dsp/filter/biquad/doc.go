// Package biquad runs cascades of second-order IIR sections.
//
// A [Chain] filters blocks in Direct Form II Transposed. Its delay lines
// can be saved with [Chain.State] and restored with [Chain.SetState], so
// a long signal processed in chunks gives the same output as one pass.
// [Chain.Response] and [Chain.Stable] inspect a design without running it.
package biquad
