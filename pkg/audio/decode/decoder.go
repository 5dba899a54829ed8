// ABOUTME: File loader entry point and error types
// ABOUTME: Picks a codec by extension and decodes the whole file into memory
package decode

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
)

// ErrUnsupportedFormat is returned for file extensions without a loader
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// FileError reports an input file that is missing, unreadable or undecodable
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("audio file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Loader decodes a complete file into a 16-bit PCM buffer
type Loader func(f *os.File) (audio.Buffer, error)

var loaders = map[string]Loader{
	".wav":  LoadWAV,
	".wave": LoadWAV,
	".mp3":  LoadMP3,
	".flac": LoadFLAC,
	".ogg":  LoadVorbis,
	".oga":  LoadVorbis,
}

// Load opens path and decodes it fully before returning.
// Every failure is reported as a *FileError.
func Load(path string) (audio.Buffer, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := loaders[ext]
	if !ok {
		return audio.Buffer{}, &FileError{
			Path: path,
			Err:  fmt.Errorf("%w: %q (supported: .wav, .mp3, .flac, .ogg)", ErrUnsupportedFormat, ext),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	buf, err := loader(f)
	if err != nil {
		return audio.Buffer{}, &FileError{Path: path, Err: err}
	}

	if err := buf.Validate(); err != nil {
		return audio.Buffer{}, &FileError{Path: path, Err: err}
	}

	log.Printf("Loaded %s: %s (%d Hz, %d channels, %d-bit source, %v)",
		buf.Format.Codec, filepath.Base(path), buf.Format.SampleRate,
		buf.Format.Channels, buf.Format.SourceBitDepth, buf.Duration())

	return buf, nil
}
