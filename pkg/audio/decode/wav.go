// ABOUTME: WAV file loader
// ABOUTME: Decodes PCM WAV files with go-audio/wav into 16-bit samples
package decode

import (
	"errors"
	"fmt"
	"os"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/go-audio/wav"
)

// wavFormatPCM is the WAVE_FORMAT_PCM tag
const wavFormatPCM = 1

// LoadWAV decodes an entire PCM WAV file
func LoadWAV(f *os.File) (audio.Buffer, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return audio.Buffer{}, fmt.Errorf("failed to read WAV header: %w", err)
		}
		return audio.Buffer{}, errors.New("not a valid WAV file")
	}

	if dec.WavAudioFormat != wavFormatPCM {
		return audio.Buffer{}, fmt.Errorf("unsupported WAV encoding: format tag %d (only PCM)", dec.WavAudioFormat)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode WAV: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	if pcm.SourceBitDepth != 0 {
		bitDepth = pcm.SourceBitDepth
	}

	samples := make([]int16, len(pcm.Data))
	for i, s := range pcm.Data {
		if bitDepth == 8 {
			// 8-bit WAV is unsigned
			s -= 128
		}
		samples[i] = audio.SampleFromInt(s, bitDepth)
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:          "wav",
			SampleRate:     int(dec.SampleRate),
			Channels:       int(dec.NumChans),
			BitDepth:       16,
			SourceBitDepth: bitDepth,
		},
	}, nil
}
