// Package report renders analysis results as CSV or as an aligned text
// table.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/cwbudde/octaveband/measure/octave"
)

// Frequencies returns the sorted union of the centre frequencies of all
// successful results. Results at lower sample rates may lack the top bands.
func Frequencies(results []octave.AnalysisResult) []float64 {
	var freqs []float64

	for _, r := range results {
		if r.Err != nil {
			continue
		}

		for _, b := range r.Bands {
			if !slices.Contains(freqs, b.CenterFreq) {
				freqs = append(freqs, b.CenterFreq)
			}
		}
	}

	slices.Sort(freqs)

	return freqs
}

// WriteHeader writes the CSV header row "freqs,<fc>,...".
func WriteHeader(w io.Writer, freqs []float64) error {
	cw := csv.NewWriter(w)

	record := make([]string, 0, len(freqs)+1)
	record = append(record, "freqs")

	for _, f := range freqs {
		record = append(record, FormatNumber(f))
	}

	if err := cw.Write(record); err != nil {
		return err
	}

	cw.Flush()

	return cw.Error()
}

// WriteRows writes one CSV row per result with its levels aligned to
// freqs. Bands a result does not have are left empty. A failed result is
// written as "label,error: <message>".
func WriteRows(w io.Writer, freqs []float64, results []octave.AnalysisResult) error {
	cw := csv.NewWriter(w)

	for _, r := range results {
		if r.Err != nil {
			if err := cw.Write([]string{r.Label, "error: " + r.Err.Error()}); err != nil {
				return err
			}

			continue
		}

		if err := cw.Write(append([]string{r.Label}, alignedLevels(freqs, r, FormatNumber)...)); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteCSV writes the header followed by one row per result.
func WriteCSV(w io.Writer, results []octave.AnalysisResult) error {
	freqs := Frequencies(results)

	if err := WriteHeader(w, freqs); err != nil {
		return err
	}

	return WriteRows(w, freqs, results)
}

// WriteTable prints the band levels with one column per result, followed
// by the failed results.
func WriteTable(w io.Writer, results []octave.AnalysisResult) error {
	freqs := Frequencies(results)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	var ok []octave.AnalysisResult

	for _, r := range results {
		if r.Err == nil {
			ok = append(ok, r)
		}
	}

	if len(ok) > 0 {
		if _, err := fmt.Fprint(tw, "Band [Hz]\t"); err != nil {
			return err
		}

		for _, r := range ok {
			if _, err := fmt.Fprintf(tw, "%s\t", r.Label); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(tw); err != nil {
			return err
		}

		columns := make([][]string, len(ok))
		for j, r := range ok {
			columns[j] = alignedLevels(freqs, r, formatLevel)
		}

		for i, f := range freqs {
			if _, err := fmt.Fprintf(tw, "%.1f\t", f); err != nil {
				return err
			}

			for j := range ok {
				if _, err := fmt.Fprintf(tw, "%s\t", columns[j][i]); err != nil {
					return err
				}
			}

			if _, err := fmt.Fprintln(tw); err != nil {
				return err
			}
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			if _, err := fmt.Fprintf(w, "%s: error: %v\n", r.Label, r.Err); err != nil {
				return err
			}
		}
	}

	return nil
}

func alignedLevels(freqs []float64, r octave.AnalysisResult, format func(float64) string) []string {
	out := make([]string, len(freqs))

	for _, b := range r.Bands {
		if i, found := slices.BinarySearch(freqs, b.CenterFreq); found {
			out[i] = format(b.LevelDB)
		}
	}

	return out
}

// FormatNumber formats v with the shortest exact representation. -Inf is
// written as "-inf".
func FormatNumber(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatLevel(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}

	return strconv.FormatFloat(v, 'f', 1, 64)
}
