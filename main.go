// ABOUTME: Entry point for the Resonate audio visualizer
// ABOUTME: Parses CLI flags, analyzes the file and runs playback with visuals
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Resonate-Protocol/resonate-viz/internal/app"
	"github.com/Resonate-Protocol/resonate-viz/internal/ui"
	"github.com/Resonate-Protocol/resonate-viz/internal/version"
	"github.com/Resonate-Protocol/resonate-viz/pkg/analysis"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/resample"
	"github.com/Resonate-Protocol/resonate-viz/pkg/playback"
	"github.com/Resonate-Protocol/resonate-viz/pkg/sync"
	"github.com/Resonate-Protocol/resonate-viz/pkg/visual"
)

// errUsage reports a wrong argument count; usage has already been printed
var errUsage = errors.New("usage")

// errVersion reports that -version was handled
var errVersion = errors.New("version requested")

// parseArgs turns command-line arguments into a validated config
func parseArgs(args []string, out io.Writer) (app.Config, error) {
	config := app.DefaultConfig()

	fs := flag.NewFlagSet("resonate-viz", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprintf(out, "Usage: %s [flags] <audio-file>\n\nFlags:\n", fs.Name())
		fs.PrintDefaults()
	}

	fs.IntVar(&config.FPS, "fps", config.FPS, "Target frame rate")
	fs.IntVar(&config.SlicesPerSecond, "slices", config.SlicesPerSecond, "Spectral slices per second")
	fs.IntVar(&config.FramesPerBlock, "block", config.FramesPerBlock, "Audio device block size in frames")
	fs.IntVar(&config.SampleRate, "rate", config.SampleRate, "Resample to this rate before playback (0 keeps the file's rate)")
	fs.StringVar(&config.Backend, "backend", config.Backend, "Audio output backend (malgo, oto, portaudio, null)")
	fs.StringVar(&config.Policy, "policy", config.Policy, "Slice advance policy (catchup, step)")
	fs.StringVar(&config.LogFile, "log-file", config.LogFile, "Log file path")
	noTUI := fs.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	showVersion := fs.Bool("version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return config, err
	}

	if *showVersion {
		fmt.Fprintln(out, version.String())
		return config, errVersion
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return config, errUsage
	}

	config.Path = fs.Arg(0)
	config.UseTUI = !*noTUI

	if err := config.Validate(); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return config, err
	}

	return config, nil
}

func main() {
	config, err := parseArgs(os.Args[1:], os.Stderr)
	switch {
	case errors.Is(err, errVersion), errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case err != nil:
		os.Exit(1)
	}

	// Set up logging
	f, err := os.OpenFile(config.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if config.UseTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil {
		stop()
		reportFatal(os.Stderr, f, err)
		_ = f.Close()
		os.Exit(1)
	}

	log.Printf("Visualizer stopped")
}

// reportFatal writes err to the console and the log file. In TUI mode the
// log only reaches the file, so the console copy is what the user sees.
func reportFatal(console, logFile io.Writer, err error) {
	log.SetOutput(io.MultiWriter(console, logFile))
	log.Printf("Fatal: %v", err)
}

// run loads and analyzes the file, then plays it with visuals. Nothing is
// started until the file has been fully decoded.
func run(ctx context.Context, config app.Config) error {
	buf, err := decode.Load(config.Path)
	if err != nil {
		return err
	}

	if config.SampleRate > 0 {
		if buf, err = resample.Buffer(buf, config.SampleRate); err != nil {
			return fmt.Errorf("failed to resample %s: %w", config.Path, err)
		}
	}

	result, err := analysis.Analyze(buf, config.SlicesPerSecond)
	if err != nil {
		return fmt.Errorf("failed to analyze %s: %w", config.Path, err)
	}
	log.Printf("Analyzed %d slices of %v (window %d frames, RMS %.1f)",
		result.Len(), result.SliceDuration, result.WindowSize, analysis.RMS(buf))

	dev, err := output.New(config.Backend)
	if err != nil {
		return err
	}

	streamer := playback.New(buf, dev, playback.Config{FramesPerBlock: config.FramesPerBlock})
	synchronizer := sync.New(result, streamer.Events(), streamer.Closed(), sync.Config{
		Policy: config.SyncPolicy(),
	})

	comp := app.Components{
		Streamer:     streamer,
		Synchronizer: synchronizer,
		Scene:        visual.NewScene(float64(buf.Format.SampleRate) / 2),
	}

	if config.UseTUI {
		term := ui.NewTerminal(ui.TrackInfo{
			Path:       config.Path,
			SampleRate: buf.Format.SampleRate,
			Channels:   buf.Format.Channels,
			Duration:   buf.Duration(),
			Backend:    dev.Name(),
			Slices:     result.Len(),
		})
		term.Start()
		defer func() {
			if err := term.Close(); err != nil {
				log.Printf("Error closing TUI: %v", err)
			}
		}()
		comp.Window = term
		comp.Renderer = term
	} else {
		headless := ui.NewHeadless(ui.Size{Width: 80, Height: 24}, config.FPS)
		comp.Window = headless
		comp.Renderer = headless
	}

	a := app.New(config, comp)
	if err := a.Run(ctx); err != nil {
		return err
	}

	if res := a.Result(); res.Abnormal {
		log.Printf("Playback ended abnormally: %v", res.Err)
	}
	stats := a.SyncStats()
	log.Printf("Synchronizer: %d peaks emitted, %d skipped, %d unconsumed, drift %v (%s)",
		stats.Emitted, stats.Skipped, stats.Remaining, stats.Drift, stats.Quality)

	return nil
}
