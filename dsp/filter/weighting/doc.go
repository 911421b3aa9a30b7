// Package weighting provides the IEC 61672 A, C and Z frequency weightings
// as biquad cascades.
//
// A weighting is applied to a signal before band analysis to report
// weighted band levels, as a sound level meter does. Every curve is
// normalized to 0 dB at 1 kHz:
//
//   - A: approximates the 40-phon equal-loudness contour (noise levels).
//   - C: nearly flat between 200 Hz and 1.25 kHz (peak levels, C-A).
//   - Z: no weighting.
//
// The digital filters are bilinear transforms of the analog prototype
// poles, so the response deviates from the standard close to Nyquist.
package weighting
