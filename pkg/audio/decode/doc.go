// ABOUTME: Audio file loader package for multiple container support
// ABOUTME: Decodes WAV, MP3, FLAC and Ogg Vorbis files fully into memory
// Package decode loads audio files into audio.Buffer values.
//
// Supports: WAV (PCM), MP3, FLAC, Ogg Vorbis
//
// Files are decoded completely before playback starts so that the real-time
// output path never waits on disk or codec work. All loaders produce
// interleaved signed 16-bit samples.
//
// Example:
//
//	buf, err := decode.Load("song.wav")
//	var fileErr *decode.FileError
//	if errors.As(err, &fileErr) {
//	    log.Fatalf("cannot read %s: %v", fileErr.Path, fileErr.Err)
//	}
package decode
