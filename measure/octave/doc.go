// Package octave drives fractional-octave analysis over a batch of
// signals.
//
// An [Analyzer] filters every input through a [bank.Filterbank] built for
// the input's sample rate, reduces each band to a level relative to the
// loudest band (see package spl) and returns one [AnalysisResult] per
// input, in input order.
//
// Band energies come from the filterbank by default. [WithMethod] selects
// an FFT split of the same band plan instead (see spl.SpectralEnergies).
//
// Failures are isolated per input. An empty waveform, a NaN or infinite
// sample, or an invalid sample rate marks that input's result with Err
// and the batch continues. Caller-supplied labels that do not match the number of inputs are
// replaced by default labels and reported as a warning, never as an error.
package octave
