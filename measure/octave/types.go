package octave

import "github.com/cwbudde/octaveband/measure/spl"

// Input is one mono signal to analyse.
type Input struct {
	Source     string    // identifier such as a file path; used for default labels
	Samples    []float64 // mono PCM samples
	SampleRate float64   // Hz
}

// BandEnergyResult is the level of one band relative to the loudest band
// of the same signal. LevelDB is spl.NoEnergy for a band without energy.
type BandEnergyResult struct {
	CenterFreq float64
	LevelDB    float64
}

// AnalysisResult holds the band levels of one input. Bands is ordered by
// ascending centre frequency. When the analysis of the input failed, Err
// is set and Bands is nil.
type AnalysisResult struct {
	Label      string
	Source     string
	SampleRate float64
	Bands      []BandEnergyResult
	Err        error
}

// OK reports whether the input was analysed successfully.
func (r AnalysisResult) OK() bool { return r.Err == nil }

// CenterFrequencies returns the centre frequency of every band.
func (r AnalysisResult) CenterFrequencies() []float64 {
	out := make([]float64, len(r.Bands))
	for i, b := range r.Bands {
		out[i] = b.CenterFreq
	}

	return out
}

// Levels returns the level of every band in dB.
func (r AnalysisResult) Levels() []float64 {
	out := make([]float64, len(r.Bands))
	for i, b := range r.Bands {
		out[i] = b.LevelDB
	}

	return out
}

// Peak returns the loudest band. ok is false when the result has no band
// with energy.
func (r AnalysisResult) Peak() (band BandEnergyResult, ok bool) {
	i := spl.Peak(r.Levels())
	if i < 0 {
		return BandEnergyResult{}, false
	}

	return r.Bands[i], true
}

// Report is the outcome of one Analyze call.
type Report struct {
	Results  []AnalysisResult // one per input, in input order
	Warnings []string         // non-fatal conditions such as a label count mismatch
}

// Failed returns the number of inputs whose analysis failed.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}

	return n
}
