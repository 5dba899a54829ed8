// ABOUTME: Offline spectral analyzer producing per-slice peak frequencies
// ABOUTME: Splits audio into fixed windows and finds the FFT magnitude peak of each
package analysis

import (
	"errors"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"runtime"
	"time"

	"github.com/mjibson/go-dsp/fft"
	"golang.org/x/sync/errgroup"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/decode"
)

// DefaultSlicesPerSecond gives 10ms slices
const DefaultSlicesPerSecond = 100

// ErrInvalidSliceRate is returned when the slice rate cannot produce a window
var ErrInvalidSliceRate = errors.New("invalid slices per second")

// PeakSequence holds one peak frequency (Hz) per slice, in time order
type PeakSequence []float64

// Result is the output of a full analysis pass
type Result struct {
	Peaks PeakSequence
	// Levels holds the RMS of each window relative to full scale, in [0, 1]
	Levels []float64

	SliceDuration time.Duration
	WindowSize    int
	SampleRate    int
}

// Len returns the number of slices
func (r *Result) Len() int {
	return len(r.Peaks)
}

// AnalyzeFile loads path and analyzes it
func AnalyzeFile(path string, slicesPerSecond int) (*Result, error) {
	buf, err := decode.Load(path)
	if err != nil {
		return nil, err
	}
	return Analyze(buf, slicesPerSecond)
}

// Analyze computes the peak sequence of buf.
// Multi-channel input is downmixed first, so windows are measured in frames.
// A trailing partial window is dropped.
func Analyze(buf audio.Buffer, slicesPerSecond int) (*Result, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	sampleRate := buf.Format.SampleRate
	if slicesPerSecond <= 0 || slicesPerSecond > sampleRate {
		return nil, fmt.Errorf("%w: %d at %d Hz", ErrInvalidSliceRate, slicesPerSecond, sampleRate)
	}

	windowSize := sampleRate / slicesPerSecond
	signal := buf.Mono()
	numWindows := len(signal) / windowSize

	result := &Result{
		Peaks:         make(PeakSequence, numWindows),
		Levels:        make([]float64, numWindows),
		SliceDuration: time.Duration(windowSize) * time.Second / time.Duration(sampleRate),
		WindowSize:    windowSize,
		SampleRate:    sampleRate,
	}

	binWidth := float64(sampleRate) / float64(windowSize)

	// Each worker writes only its own indices
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))

	for w := 0; w < numWindows; w++ {
		window := signal[w*windowSize : (w+1)*windowSize]
		g.Go(func() error {
			result.Peaks[w] = float64(PeakBin(window)) * binWidth
			result.Levels[w] = rms(window)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("Spectral analysis: %d slices of %d samples (%v each, %.2f Hz/bin)",
		numWindows, windowSize, result.SliceDuration, binWidth)

	return result, nil
}

// PeakBin returns the index of the largest FFT magnitude in [0, len(window)/2).
// The first maximum wins; a window without any positive magnitude yields 0.
func PeakBin(window []float64) int {
	half := len(window) / 2
	if half == 0 {
		return 0
	}

	spectrum := fft.FFTReal(window)

	peak := 0
	peakMag := 0.0
	for i := 0; i < half; i++ {
		mag := cmplx.Abs(spectrum[i])
		if mag > peakMag {
			peak = i
			peakMag = mag
		}
	}

	return peak
}

// RMS returns the root mean square of buf in raw 16-bit units
func RMS(buf audio.Buffer) float64 {
	if len(buf.Samples) == 0 {
		return 0
	}

	sum := 0.0
	for _, s := range buf.Samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf.Samples)))
}

// rms returns the root mean square of a normalized window
func rms(window []float64) float64 {
	if len(window) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range window {
		sum += v * v
	}
	return math.Min(1, math.Sqrt(sum/float64(len(window))))
}
