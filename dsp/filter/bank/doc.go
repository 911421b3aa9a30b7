// Package bank provides the fractional-octave band plan, the band-pass
// filter designer, and the filterbank that applies them to a signal.
//
// The three parts build on each other:
//
//   - [Plan] generates the standard centre frequencies and band edges for a
//     1/N-octave resolution over the audible range.
//   - [DesignBandFilter] turns one [BandSpec] into a Butterworth band-pass
//     filter realised as a cascade of biquad sections.
//   - [New] builds a [Filterbank] holding one filter per band for a fixed
//     sample rate and order; [Filterbank.Filter] returns one output waveform
//     per band plus the final [FilterState] of every band.
//
// Centre frequencies follow a base-2 geometric series referenced to 1 kHz:
//
//	f_center = 1000 * 2^(k/N)          (for 1/N-octave, integer k)
//	f_upper  = f_center * 2^(1/(2*N))
//	f_lower  = f_center * 2^(-1/(2*N))
//
// The default range keeps the bands whose pass-band contains 16 Hz and
// 20 kHz, which reproduces the ANSI S1.11 / IEC 61260 preferred series
// (32 bands from the 16 Hz band to the 20 kHz band at N = 3).
// [WithBase10] switches to the IEC 61260 base-ten ratio G = 10^(3/10).
//
// Bands whose upper edge reaches the Nyquist frequency cannot be designed.
// [DesignBandFilter] rejects them with [ErrAboveNyquist]; [New] skips them
// and logs a warning, so the same plan works at any sample rate.
//
// Basic usage:
//
//	fb, err := bank.New(48000, 4, 3)
//	if err != nil {
//	    return err
//	}
//	outputs, states, err := fb.Filter(samples)
package bank
