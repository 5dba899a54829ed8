// ABOUTME: Tests for the spectral analyzer
// ABOUTME: Tests slice counts, silence, pure tones and slice rate validation
package analysis

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-viz/internal/audiotest"
)

func TestAnalyzeSliceCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		sampleRate      int
		frames          int
		slicesPerSecond int
		expected        int
	}{
		{"exact fit", 44100, 44100, 50, 50},
		{"partial tail dropped", 44100, 44100 + 881, 50, 50},
		{"one more full window", 44100, 44100 + 882, 50, 51},
		{"shorter than a window", 8000, 10, 100, 0},
		{"empty", 8000, 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := audiotest.Silence(tt.sampleRate, 1, tt.frames)

			result, err := Analyze(buf, tt.slicesPerSecond)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			windowSize := tt.sampleRate / tt.slicesPerSecond
			if result.WindowSize != windowSize {
				t.Errorf("expected window size %d, got %d", windowSize, result.WindowSize)
			}
			if result.Len() != tt.expected {
				t.Errorf("expected %d peaks, got %d", tt.expected, result.Len())
			}
			if len(result.Levels) != tt.expected {
				t.Errorf("expected %d levels, got %d", tt.expected, len(result.Levels))
			}
			if result.Len() != tt.frames/windowSize {
				t.Errorf("expected floor(%d/%d) peaks, got %d", tt.frames, windowSize, result.Len())
			}
		})
	}
}

func TestAnalyzeSliceDurationMatchesWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sampleRate      int
		slicesPerSecond int
		expected        time.Duration
	}{
		{44100, 50, 20 * time.Millisecond},
		{48000, 100, 10 * time.Millisecond},
		// 220 frames at 22050 Hz
		{22050, 100, 9977324 * time.Nanosecond},
		// 110 frames at 11025 Hz
		{11025, 100, 9977324 * time.Nanosecond},
		// 147 frames at 44100 Hz
		{44100, 300, 3333333 * time.Nanosecond},
	}

	for _, tt := range tests {
		buf := audiotest.Silence(tt.sampleRate, 1, tt.sampleRate*10)

		result, err := Analyze(buf, tt.slicesPerSecond)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if result.SliceDuration != tt.expected {
			t.Errorf("%d Hz at %d/s: expected slice %v, got %v",
				tt.sampleRate, tt.slicesPerSecond, tt.expected, result.SliceDuration)
		}

		// The slice timeline must end within one slice of the audio, never after it
		end := time.Duration(result.Len()) * result.SliceDuration
		if end > buf.Duration() || buf.Duration()-end >= result.SliceDuration {
			t.Errorf("%d Hz at %d/s: slices end at %v, audio at %v",
				tt.sampleRate, tt.slicesPerSecond, end, buf.Duration())
		}
	}
}

func TestAnalyzeSilenceIsZero(t *testing.T) {
	t.Parallel()

	// 2 seconds of 44.1kHz mono silence at 50 slices/sec
	buf := audiotest.Silence(44100, 1, 88200)

	result, err := Analyze(buf, 50)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Len() != 100 {
		t.Fatalf("expected 100 peaks, got %d", result.Len())
	}
	for i, peak := range result.Peaks {
		if peak != 0.0 {
			t.Errorf("peak %d: expected 0.0, got %f", i, peak)
		}
	}
	for i, level := range result.Levels {
		if level != 0.0 {
			t.Errorf("level %d: expected 0.0, got %f", i, level)
		}
	}
	if result.SliceDuration != 20*time.Millisecond {
		t.Errorf("expected 20ms slices, got %v", result.SliceDuration)
	}
}

func TestAnalyzePureTone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		sampleRate      int
		slicesPerSecond int
		frequency       float64
	}{
		{"on bin 1kHz", 44100, 50, 1000},
		{"on bin 440Hz", 8000, 10, 440},
		{"between bins", 44100, 50, 1234.5},
		{"10ms slices", 48000, 100, 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := audiotest.Sine(tt.sampleRate, 1, tt.sampleRate, tt.frequency, 0.5)

			result, err := Analyze(buf, tt.slicesPerSecond)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			binWidth := float64(tt.sampleRate) / float64(result.WindowSize)
			expected := math.Round(tt.frequency/binWidth) * binWidth

			for i, peak := range result.Peaks {
				if math.Abs(peak-expected) > binWidth {
					t.Errorf("slice %d: expected ~%.2f Hz, got %.2f Hz", i, expected, peak)
				}
			}
		})
	}
}

func TestAnalyzeStereoDownmix(t *testing.T) {
	t.Parallel()

	buf := audiotest.Sine(8000, 2, 8000, 1000, 0.5)

	result, err := Analyze(buf, 10)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// Slices count frames, not interleaved samples
	if result.Len() != 10 {
		t.Fatalf("expected 10 peaks, got %d", result.Len())
	}
	for i, peak := range result.Peaks {
		if peak != 1000 {
			t.Errorf("slice %d: expected 1000 Hz, got %f", i, peak)
		}
	}
}

func TestAnalyzeLevels(t *testing.T) {
	t.Parallel()

	buf := audiotest.Sine(8000, 1, 8000, 400, 1.0)

	result, err := Analyze(buf, 10)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	// Full scale sine RMS is 1/sqrt(2)
	for i, level := range result.Levels {
		if math.Abs(level-1/math.Sqrt2) > 0.01 {
			t.Errorf("slice %d: expected level ~0.707, got %f", i, level)
		}
	}
}

func TestAnalyzeInvalidSliceRate(t *testing.T) {
	t.Parallel()

	buf := audiotest.Silence(8000, 1, 8000)

	for _, sps := range []int{0, -5, 8001} {
		_, err := Analyze(buf, sps)
		if !errors.Is(err, ErrInvalidSliceRate) {
			t.Errorf("slices=%d: expected ErrInvalidSliceRate, got %v", sps, err)
		}
	}
}

func TestPeakBinDegenerate(t *testing.T) {
	t.Parallel()

	if got := PeakBin(nil); got != 0 {
		t.Errorf("expected 0 for empty window, got %d", got)
	}
	if got := PeakBin([]float64{0.7}); got != 0 {
		t.Errorf("expected 0 for single sample window, got %d", got)
	}
	if got := PeakBin(make([]float64, 64)); got != 0 {
		t.Errorf("expected 0 for silent window, got %d", got)
	}
}

func TestRMS(t *testing.T) {
	t.Parallel()

	buf := audiotest.Silence(8000, 1, 100)
	if RMS(buf) != 0 {
		t.Errorf("expected 0 RMS for silence, got %f", RMS(buf))
	}

	buf.Samples = []int16{3, -3, 3, -3}
	if RMS(buf) != 3 {
		t.Errorf("expected RMS 3, got %f", RMS(buf))
	}
}

func TestAnalyzeFileMissing(t *testing.T) {
	t.Parallel()

	_, err := AnalyzeFile("does-not-exist.wav", 50)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
