// Package audiofile decodes WAV and MP3 files into mono float64 signals
// for analysis.
package audiofile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/tphakala/simd/f64"
)

var (
	// ErrUnsupportedFormat reports a file that is neither a PCM or float
	// WAV file nor an MP3 stream.
	ErrUnsupportedFormat = errors.New("audiofile: unsupported format")

	// ErrNoAudio reports a valid WAV file without sample frames.
	ErrNoAudio = errors.New("audiofile: no audio data")
)

const (
	wavFormatPCM        = 1
	wavFormatFloat      = 3
	wavFormatExtensible = 0xFFFE
)

// extensions lists the file types Load and Expand accept.
var extensions = []string{".wav", ".mp3"}

// Clip is a decoded, downmixed signal.
type Clip struct {
	Path       string
	Samples    []float64 // mono, scaled to [-1, 1)
	SampleRate float64
	Channels   int // channel count of the file before downmixing
	BitDepth   int
}

// Load decodes the audio file at path. Files ending in .mp3 are decoded
// as MP3, everything else as WAV.
func Load(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audiofile: open: %w", err)
	}
	defer f.Close()

	decode := Decode
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		decode = func(r io.ReadSeeker) (*Clip, error) { return DecodeMP3(r) }
	}

	clip, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	clip.Path = path

	return clip, nil
}

// Decode reads a WAV stream. Integer PCM of 8 to 32 bits is scaled to
// [-1, 1), 32-bit IEEE float is taken as is, and multi-channel audio is
// averaged to mono.
func Decode(r io.ReadSeeker) (*Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", ErrUnsupportedFormat)
	}

	bitDepth := int(dec.BitDepth)
	isFloat := dec.WavAudioFormat == wavFormatFloat

	var (
		fullScale float64
		err       error
	)

	switch {
	case isFloat && bitDepth == 32:
	case isFloat:
		return nil, fmt.Errorf("%w: %d-bit float samples", ErrUnsupportedFormat, bitDepth)
	case dec.WavAudioFormat == wavFormatPCM, dec.WavAudioFormat == wavFormatExtensible:
		if fullScale, err = fullScaleFor(bitDepth); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: WAV audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audiofile: decode PCM: %w", err)
	}

	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrUnsupportedFormat, channels)
	}

	if len(buf.Data) < channels {
		return nil, ErrNoAudio
	}

	frames := len(buf.Data) / channels
	data := buf.Data[:frames*channels]

	var samples []float64
	if isFloat {
		samples = float32Words(data)
	} else {
		samples = scalePCM(data, bitDepth, fullScale)
	}

	return &Clip{
		Samples:    downmix(samples, channels),
		SampleRate: float64(dec.SampleRate),
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}

func fullScaleFor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 8:
		return 1 << 7, nil
	case 16:
		return 1 << 15, nil
	case 24:
		return 1 << 23, nil
	case 32:
		return 1 << 31, nil
	default:
		return 0, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}
}

// DecodeMP3 reads an MP3 stream. The decoder always yields 16-bit stereo,
// which is averaged to mono.
func DecodeMP3(r io.Reader) (*Clip, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("audiofile: decode MP3: %w", err)
	}

	const (
		channels = 2
		bitDepth = 16
	)

	data := make([]int, len(raw)/2)
	for i := range data {
		data[i] = int(int16(binary.LittleEndian.Uint16(raw[2*i:])))
	}

	if len(data) < channels {
		return nil, ErrNoAudio
	}

	data = data[:len(data)/channels*channels]

	return &Clip{
		Samples:    downmix(scalePCM(data, bitDepth, 1<<15), channels),
		SampleRate: float64(dec.SampleRate()),
		Channels:   channels,
		BitDepth:   bitDepth,
	}, nil
}

// scalePCM converts integer samples to float64 in [-1, 1).
func scalePCM(data []int, bitDepth int, fullScale float64) []float64 {
	out := make([]float64, len(data))

	// 8-bit WAV samples are unsigned.
	offset := 0
	if bitDepth == 8 {
		offset = 1 << 7
	}

	for i, v := range data {
		out[i] = float64(v - offset)
	}

	f64.Scale(out, out, 1/fullScale)

	return out
}

// float32Words reinterprets the 32-bit words of a float WAV file.
func float32Words(data []int) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(math.Float32frombits(uint32(int32(v))))
	}

	return out
}

// downmix averages interleaved frames to mono.
func downmix(data []float64, channels int) []float64 {
	if channels == 1 {
		return data
	}

	mono := make([]float64, len(data)/channels)
	inv := 1 / float64(channels)

	for i := range mono {
		mono[i] = f64.Sum(data[i*channels:(i+1)*channels]) * inv
	}

	return mono
}

// Expand resolves command-line arguments to input files. A single
// directory argument expands to the .wav and .mp3 files it contains,
// sorted by name; anything else is returned unchanged.
func Expand(args []string) ([]string, error) {
	if len(args) != 1 {
		return args, nil
	}

	info, err := os.Stat(args[0])
	if err != nil || !info.IsDir() {
		return args, nil
	}

	entries, err := os.ReadDir(args[0])
	if err != nil {
		return nil, fmt.Errorf("audiofile: read directory: %w", err)
	}

	var files []string

	for _, e := range entries {
		if e.IsDir() || !isAudioFile(e.Name()) {
			continue
		}

		files = append(files, filepath.Join(args[0], e.Name()))
	}

	slices.Sort(files)

	return files, nil
}

func isAudioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(extensions, ext)
}
