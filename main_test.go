// ABOUTME: Tests for CLI parsing and the top-level run sequence
// ABOUTME: Covers usage errors, flag overrides, bad files and a headless run
package main

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/resonate-viz/internal/audiotest"
	"github.com/Resonate-Protocol/resonate-viz/internal/version"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/decode"
)

func TestParseArgsUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"two arguments", []string{"a.wav", "b.wav"}},
		{"flags only", []string{"-fps", "30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := parseArgs(tt.args, &out)
			if !errors.Is(err, errUsage) {
				t.Fatalf("expected usage error, got %v", err)
			}
			if !strings.Contains(out.String(), "Usage: resonate-viz [flags] <audio-file>") {
				t.Errorf("expected usage message, got %q", out.String())
			}
		})
	}
}

func TestParseArgsDefaults(t *testing.T) {
	var out bytes.Buffer
	config, err := parseArgs([]string{"song.wav"}, &out)
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}

	if config.Path != "song.wav" {
		t.Errorf("expected path song.wav, got %s", config.Path)
	}
	if config.FPS != 60 || config.SlicesPerSecond != 100 || config.FramesPerBlock != 64 {
		t.Errorf("unexpected defaults %+v", config)
	}
	if !config.UseTUI {
		t.Error("expected TUI by default")
	}
}

func TestParseArgsFlags(t *testing.T) {
	var out bytes.Buffer
	config, err := parseArgs([]string{
		"-fps", "30", "-slices", "50", "-block", "256",
		"-backend", "null", "-policy", "step", "-no-tui", "-log-file", "x.log",
		"song.flac",
	}, &out)
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}

	if config.FPS != 30 || config.SlicesPerSecond != 50 || config.FramesPerBlock != 256 {
		t.Errorf("numeric flags not applied: %+v", config)
	}
	if config.Backend != "null" || config.Policy != "step" || config.LogFile != "x.log" {
		t.Errorf("string flags not applied: %+v", config)
	}
	if config.UseTUI {
		t.Error("expected -no-tui to disable the TUI")
	}
}

func TestParseArgsRejectsInvalidValues(t *testing.T) {
	for _, args := range [][]string{
		{"-backend", "jack", "song.wav"},
		{"-policy", "smooth", "song.wav"},
		{"-fps", "0", "song.wav"},
		{"-fps", "fast", "song.wav"},
	} {
		var out bytes.Buffer
		if _, err := parseArgs(args, &out); err == nil || errors.Is(err, errUsage) {
			t.Errorf("%v: expected validation error, got %v", args, err)
		}
	}
}

func TestParseArgsVersion(t *testing.T) {
	var out bytes.Buffer
	if _, err := parseArgs([]string{"-version"}, &out); !errors.Is(err, errVersion) {
		t.Fatalf("expected version sentinel, got %v", err)
	}
	if out.String() != version.String()+"\n" {
		t.Errorf("expected %q, got %q", version.String(), out.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	config, err := parseArgs([]string{"-backend", "null", "-no-tui", "/nonexistent/song.wav"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}

	err = run(context.Background(), config)

	var fileErr *decode.FileError
	if !errors.As(err, &fileErr) {
		t.Fatalf("expected *decode.FileError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", err)
	}
}

func TestFatalErrorReachesConsoleInTUIMode(t *testing.T) {
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	config, err := parseArgs([]string{"/nonexistent/song.wav"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}
	if !config.UseTUI {
		t.Fatal("expected TUI mode by default")
	}

	// TUI mode sends the log to the file only
	var console, logFile bytes.Buffer
	log.SetOutput(&logFile)

	runErr := run(context.Background(), config)
	if runErr == nil {
		t.Fatal("expected run to fail for a missing file")
	}
	reportFatal(&console, &logFile, runErr)

	for name, got := range map[string]string{"console": console.String(), "log file": logFile.String()} {
		if !strings.Contains(got, "Fatal: audio file /nonexistent/song.wav") {
			t.Errorf("%s: expected fatal diagnostic, got %q", name, got)
		}
	}
}

func TestRunHeadless(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time playback")
	}

	path := audiotest.WriteWAV(t, "tone.wav", audiotest.Sine(8000, 2, 2400, 440, 0.5))
	config, err := parseArgs([]string{"-backend", "null", "-no-tui", "-slices", "50", "-rate", "16000", path}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}

	if err := run(context.Background(), config); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}
