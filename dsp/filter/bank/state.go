package bank

// FilterState is the delay-line memory of one band filter after processing
// a block. Pass the states returned by [Filterbank.Filter] to
// [Filterbank.FilterFrom] to continue filtering the next block of the same
// signal without a discontinuity.
type FilterState struct {
	CenterFreq float64      // centre frequency of the band the state belongs to
	Sections   [][2]float64 // DF-II-T state per biquad section
}

func (s FilterState) clone() FilterState {
	out := FilterState{CenterFreq: s.CenterFreq}
	if s.Sections != nil {
		out.Sections = make([][2]float64, len(s.Sections))
		copy(out.Sections, s.Sections)
	}

	return out
}
