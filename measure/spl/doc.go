// Package spl reduces band-filtered waveforms to relative band levels.
//
// Each band's energy is the sum of its squared samples. Levels are
// expressed in dB relative to the loudest band of the same signal:
//
//	level_i = 10 * log10(E_i / max_j E_j)
//
// so the loudest band reads 0 dB and every other band reads <= 0 dB.
// A band without energy, including every band of an all-zero signal,
// reads [NoEnergy] (-Inf) instead of raising an error or producing NaN.
//
// [SpectralEnergies] computes ideal brick-wall band energies from an FFT.
// It is useful as an independent check of a filterbank's band split.
package spl
