// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Converts streamed blocks or whole decoded buffers with linear interpolation
package resample

import (
	"fmt"
	"log"
	"math"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
)

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64
}

// New creates a new resampler
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
	}
}

// Resample converts interleaved input at inputRate into output at
// outputRate and returns the number of samples written
func (r *Resampler) Resample(input, output []int16) int {
	if len(input) == 0 {
		return 0
	}

	inputFrames := len(input) / r.channels
	outputFrames := len(output) / r.channels

	outIdx := 0
	for outIdx < outputFrames {
		inputIdx := int(r.position)
		if inputIdx >= inputFrames-1 {
			break
		}

		frac := r.position - float64(inputIdx)
		for ch := 0; ch < r.channels; ch++ {
			s1 := float64(input[inputIdx*r.channels+ch])
			s2 := float64(input[(inputIdx+1)*r.channels+ch])
			output[outIdx*r.channels+ch] = int16(math.Round(s1*(1-frac) + s2*frac))
		}

		outIdx++
		r.position += r.ratio
	}

	// Keep the fractional part for the next chunk
	r.position -= float64(int(r.position))

	return outIdx * r.channels
}

// Reset resets the resampler state
func (r *Resampler) Reset() {
	r.position = 0
}

// OutputSamplesNeeded calculates how many output samples will be produced from input samples
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	outputFrames := int(float64(inputFrames) / r.ratio)
	return outputFrames * r.channels
}

// InputSamplesNeeded calculates how many input samples are needed to produce output samples
func (r *Resampler) InputSamplesNeeded(outputSamples int) int {
	outputFrames := outputSamples / r.channels
	inputFrames := int(float64(outputFrames) * r.ratio)
	return inputFrames * r.channels
}

// Buffer converts a whole decoded buffer to rate. A buffer already at rate
// is returned unchanged.
func Buffer(buf audio.Buffer, rate int) (audio.Buffer, error) {
	if err := buf.Validate(); err != nil {
		return audio.Buffer{}, err
	}
	if rate <= 0 {
		return audio.Buffer{}, fmt.Errorf("invalid target sample rate %d", rate)
	}
	if rate == buf.Format.SampleRate {
		return buf, nil
	}

	r := New(buf.Format.SampleRate, rate, buf.Format.Channels)
	out := make([]int16, r.OutputSamplesNeeded(len(buf.Samples)))
	n := r.Resample(buf.Samples, out)

	format := buf.Format
	format.SampleRate = rate

	log.Printf("Resampled %d frames at %dHz to %d frames at %dHz",
		buf.Frames(), buf.Format.SampleRate, n/format.Channels, rate)

	return audio.Buffer{Samples: out[:n], Format: format}, nil
}
