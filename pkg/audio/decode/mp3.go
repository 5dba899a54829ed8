// ABOUTME: MP3 file loader
// ABOUTME: Decodes MP3 audio with go-mp3 into 16-bit stereo samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// LoadMP3 decodes an entire MP3 file
func LoadMP3(f *os.File) (audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode MP3: %w", err)
	}

	// go-mp3 always produces 16-bit little-endian stereo
	data, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	numSamples := len(data) / 2
	numSamples -= numSamples % 2
	samples := make([]int16, numSamples)
	for i := 0; i < numSamples; i++ {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:          "mp3",
			SampleRate:     decoder.SampleRate(),
			Channels:       2,
			BitDepth:       16,
			SourceBitDepth: 16,
		},
	}, nil
}
