// ABOUTME: Test fixtures for generated audio buffers and WAV files
// ABOUTME: Shared by decoder, analyzer, streamer and end-to-end tests
package audiotest

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
)

// NewBuffer creates a buffer from a waveform in [-1, 1] evaluated per frame and channel
func NewBuffer(sampleRate, channels, frames int, waveform func(frame, channel int) float64) audio.Buffer {
	samples := make([]int16, frames*channels)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			samples[i*channels+ch] = audio.SampleFromFloat32(float32(waveform(i, ch)))
		}
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:          "pcm",
			SampleRate:     sampleRate,
			Channels:       channels,
			BitDepth:       16,
			SourceBitDepth: 16,
		},
	}
}

// Silence creates an all-zero buffer
func Silence(sampleRate, channels, frames int) audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, func(int, int) float64 { return 0 })
}

// Sine creates a pure sinusoid at frequency Hz with the given amplitude
func Sine(sampleRate, channels, frames int, frequency, amplitude float64) audio.Buffer {
	return NewBuffer(sampleRate, channels, frames, func(i, _ int) float64 {
		t := float64(i) / float64(sampleRate)
		return amplitude * math.Sin(2*math.Pi*frequency*t)
	})
}

// WriteWAV encodes buf as a 16-bit PCM WAV file in a temp dir and returns its path
func WriteWAV(t testing.TB, name string, buf audio.Buffer) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.Format.SampleRate, 16, buf.Format.Channels, 1)

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(s)
	}

	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Format.Channels,
			SampleRate:  buf.Format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(intBuf); err != nil {
		t.Fatalf("failed to write WAV data: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("failed to finalize WAV: %v", err)
	}

	return path
}
