// ABOUTME: Ogg Vorbis file loader
// ABOUTME: Decodes Vorbis audio with jfreymuth/oggvorbis into 16-bit samples
package decode

import (
	"fmt"
	"os"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/jfreymuth/oggvorbis"
)

// LoadVorbis decodes an entire Ogg Vorbis file
func LoadVorbis(f *os.File) (audio.Buffer, error) {
	data, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode Ogg Vorbis: %w", err)
	}

	samples := make([]int16, len(data))
	for i, s := range data {
		samples[i] = audio.SampleFromFloat32(s)
	}

	return audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "vorbis",
			SampleRate: format.SampleRate,
			Channels:   format.Channels,
			BitDepth:   16,
			// Vorbis has no integer source depth
			SourceBitDepth: 0,
		},
	}, nil
}
