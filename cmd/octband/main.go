// Command octband prints fractional-octave band levels of WAV and MP3
// files.
//
// Usage:
//
//	octband [flags] file [file ...]
//	octband [flags] directory
//
// Levels are relative to the loudest band of each file. With -c the
// results are also written to a CSV file; the header row is written only
// when the file does not exist yet, rows are appended otherwise.
//
// Examples:
//
//	octband take1.wav take2.wav
//	octband -n 1 -f 6 recordings/
//	octband -c levels.csv -i left,right l.wav r.wav
//	octband -w A room.wav
//	octband -fft -n 6 take1.wav
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/cwbudde/octaveband/dsp/filter/bank"
	"github.com/cwbudde/octaveband/dsp/filter/weighting"
	"github.com/cwbudde/octaveband/internal/audiofile"
	"github.com/cwbudde/octaveband/internal/report"
	"github.com/cwbudde/octaveband/measure/octave"
)

type options struct {
	nthOct    float64
	order     int
	csvPath   string
	labels    string
	workers   int
	weighting weighting.Type
	spectral  bool
	base10    bool
	verbose   bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, files, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}

	if err != nil {
		return 2
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	files, err = audiofile.Expand(files)
	if err != nil {
		logger.Error("resolve inputs", "error", err)
		return 1
	}

	if len(files) == 0 {
		logger.Error("no input files")
		return 1
	}

	rep := analyzeFiles(ctx, files, parseLabels(opts.labels), opts, logger)

	for _, res := range rep.Results {
		if peak, ok := res.Peak(); ok {
			logger.Info("analysed", "input", res.Label, "bands", len(res.Bands), "peak_hz", peak.CenterFreq)
		}
	}

	if err := report.WriteTable(stdout, rep.Results); err != nil {
		logger.Error("write table", "error", err)
		return 1
	}

	if opts.csvPath != "" {
		if err := appendCSV(opts.csvPath, rep.Results); err != nil {
			logger.Error("write csv", "path", opts.csvPath, "error", err)
			return 1
		}

		logger.Debug("wrote csv", "path", opts.csvPath, "rows", len(rep.Results))
	}

	if rep.Failed() > 0 {
		return 1
	}

	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, []string, error) {
	var (
		opts      options
		weightArg string
	)

	fs := flag.NewFlagSet("octband", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Float64Var(&opts.nthOct, "n", bank.DefaultNthOct, "fractional-octave resolution (3 = third-octave bands)")
	fs.IntVar(&opts.order, "f", bank.DefaultOrder, "Butterworth filter order")
	fs.StringVar(&opts.csvPath, "c", "", "append results to this CSV file")
	fs.StringVar(&opts.labels, "i", "", "comma-separated labels, one per input file")
	fs.IntVar(&opts.workers, "j", 1, "number of files analysed concurrently")
	fs.StringVar(&weightArg, "w", "Z", "frequency weighting applied before band filtering (A, C or Z)")
	fs.BoolVar(&opts.spectral, "fft", false, "measure band energy with an FFT instead of the filterbank")
	fs.BoolVar(&opts.base10, "base10", false, "use base-ten octave ratio 10^(3/10)")
	fs.BoolVar(&opts.verbose, "v", false, "verbose logging")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: octband [flags] file [file ...] | directory\n\n")
		fmt.Fprintf(stderr, "Prints fractional-octave band levels relative to the loudest band.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}

	w, err := weighting.ParseType(weightArg)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -w: %v\n", err)
		return opts, nil, err
	}

	opts.weighting = w

	if fs.NArg() == 0 {
		fs.Usage()
		return opts, nil, errors.New("no inputs")
	}

	return opts, fs.Args(), nil
}

func parseLabels(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return parts
}

// analyzeFiles decodes and analyses files in order. Files that cannot be
// decoded get a failed result under their resolved label.
func analyzeFiles(ctx context.Context, files, labels []string, opts options, logger *slog.Logger) octave.Report {
	resolved, warning := octave.ResolveLabels(files, labels)
	if warning != "" {
		logger.Warn(warning)
	}

	bankOpts := []bank.Option{}
	if opts.base10 {
		bankOpts = append(bankOpts, bank.WithBase10())
	}

	method := octave.MethodFilterbank
	if opts.spectral {
		method = octave.MethodSpectral
	}

	analyzer := octave.NewAnalyzer(
		octave.WithNthOct(opts.nthOct),
		octave.WithOrder(opts.order),
		octave.WithWorkers(opts.workers),
		octave.WithBankOptions(bankOpts...),
		octave.WithWeighting(opts.weighting),
		octave.WithMethod(method),
		octave.WithLogger(logger),
	)

	results := make([]octave.AnalysisResult, len(files))

	var (
		inputs  []octave.Input
		inLabel []string
		slots   []int
	)

	for i, path := range files {
		clip, err := audiofile.Load(path)
		if err != nil {
			logger.Warn("skipping input", "file", path, "error", err)
			results[i] = octave.AnalysisResult{Label: resolved[i], Source: path, Err: err}

			continue
		}

		logger.Debug("decoded", "file", path, "sample_rate", clip.SampleRate,
			"channels", clip.Channels, "bits", clip.BitDepth, "samples", len(clip.Samples))

		inputs = append(inputs, octave.Input{Source: path, Samples: clip.Samples, SampleRate: clip.SampleRate})
		inLabel = append(inLabel, resolved[i])
		slots = append(slots, i)
	}

	rep := analyzer.Analyze(ctx, inputs, inLabel)
	for j, res := range rep.Results {
		results[slots[j]] = res
	}

	if warning != "" {
		rep.Warnings = append([]string{warning}, rep.Warnings...)
	}

	rep.Results = results

	return rep
}

// appendCSV writes results to path. The header row is written only when
// the file is created.
func appendCSV(path string, results []octave.AnalysisResult) error {
	_, statErr := os.Stat(path)
	newFile := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	freqs := report.Frequencies(results)

	if newFile {
		if err := report.WriteHeader(f, freqs); err != nil {
			_ = f.Close()
			return err
		}
	}

	if err := report.WriteRows(f, freqs, results); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
