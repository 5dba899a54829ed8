// ABOUTME: FLAC file loader
// ABOUTME: Decodes FLAC frames with mewkiz/flac into 16-bit samples
package decode

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/mewkiz/flac"
)

// LoadFLAC decodes an entire FLAC file
func LoadFLAC(f *os.File) (audio.Buffer, error) {
	stream, err := flac.New(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	channels := int(info.NChannels)
	bitDepth := int(info.BitsPerSample)

	var samples []int16
	if info.NSamples > 0 {
		samples = make([]int16, 0, int(info.NSamples)*channels)
	}

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return audio.Buffer{}, fmt.Errorf("flac frame error: %w", err)
		}

		// Interleave subframes
		for i := 0; i < int(frame.BlockSize); i++ {
			for ch := 0; ch < channels; ch++ {
				sample := frame.Subframes[ch].Samples[i]
				samples = append(samples, audio.SampleFromInt(int(sample), bitDepth))
			}
		}
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:          "flac",
			SampleRate:     int(info.SampleRate),
			Channels:       channels,
			BitDepth:       16,
			SourceBitDepth: bitDepth,
		},
	}, nil
}
