// ABOUTME: Main visualizer application orchestration
// ABOUTME: Runs the frame loop and joins the playback and synchronizer goroutines
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/Resonate-Protocol/resonate-viz/internal/ui"
	"github.com/Resonate-Protocol/resonate-viz/pkg/playback"
	"github.com/Resonate-Protocol/resonate-viz/pkg/sync"
	"github.com/Resonate-Protocol/resonate-viz/pkg/visual"
)

// Window is polled once per frame for input
type Window interface {
	Poll() ui.WindowEvent
}

// Renderer draws one frame into the given size
type Renderer interface {
	Render(frame visual.Frame, size ui.Size) error
}

// SceneBuilder turns synchronized peaks into frames
type SceneBuilder interface {
	Observe(peak sync.Peak)
	Update(delta, elapsed float32) visual.Frame
}

// Components are the collaborators the frame loop drives
type Components struct {
	Streamer     *playback.Streamer
	Synchronizer *sync.Synchronizer
	Scene        SceneBuilder
	Window       Window
	Renderer     Renderer

	// Clock paces frames; nil means the wall clock
	Clock clock.Clock
}

// App is the frame scheduler coordinating one visualized playback
type App struct {
	config Config
	comp   Components
	clock  clock.Clock
	period time.Duration

	size   ui.Size
	frames int
	result playback.Result
	stats  sync.Stats
}

// New creates the application
func New(config Config, comp Components) *App {
	clk := comp.Clock
	if clk == nil {
		clk = clock.New()
	}
	fps := config.FPS
	if fps <= 0 {
		fps = DefaultConfig().FPS
	}

	return &App{
		config: config,
		comp:   comp,
		clock:  clk,
		period: time.Second / time.Duration(fps),
	}
}

// Run starts playback and drives frames until playback completes, the
// window closes or ctx ends. Worker goroutines are always joined before it
// returns. A device that fails to start is returned as an error.
func (a *App) Run(ctx context.Context) error {
	if err := a.comp.Streamer.Start(); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	playCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(playCtx)
	g.Go(func() error {
		a.comp.Streamer.Wait(gctx)
		return nil
	})
	g.Go(func() error {
		a.stats = a.comp.Synchronizer.Run(gctx)
		return nil
	})

	log.Printf("Frame loop started at %d fps", a.config.FPS)

	gotResult, renderErr := a.loop(ctx)

	cancel()
	if err := g.Wait(); err != nil {
		log.Printf("Worker error: %v", err)
	}
	if !gotResult {
		a.result = <-a.comp.Streamer.Done()
	}

	log.Printf("Frame loop stopped after %d frames (playback %.3fs, abnormal=%v, interrupted=%v)",
		a.frames, a.result.Elapsed, a.result.Abnormal, a.result.Interrupted)

	if renderErr != nil {
		return fmt.Errorf("failed to render frame: %w", renderErr)
	}
	return nil
}

// loop runs frames until an exit condition; it reports whether the playback
// result was already received
func (a *App) loop(ctx context.Context) (bool, error) {
	start := a.clock.Now()
	last := start

	for {
		frameStart := a.clock.Now()
		delta := frameStart.Sub(last)
		last = frameStart

		switch ev := a.comp.Window.Poll(); ev.Kind {
		case ui.EventClose:
			log.Printf("Window closed, stopping playback")
			return false, nil
		case ui.EventResize:
			a.size = ev.Size
		}

		a.drainPeaks()

		frame := a.comp.Scene.Update(float32(delta.Seconds()), float32(frameStart.Sub(start).Seconds()))
		if err := a.comp.Renderer.Render(frame, a.size); err != nil {
			return false, err
		}
		a.frames++

		select {
		case res := <-a.comp.Streamer.Done():
			a.result = res
			return true, nil
		case <-ctx.Done():
			log.Printf("Interrupted, stopping playback")
			return false, nil
		default:
		}

		if remaining := a.period - a.clock.Since(frameStart); remaining > 0 {
			a.clock.Sleep(remaining)
		}
	}
}

// drainPeaks hands every pending peak to the scene builder
func (a *App) drainPeaks() {
	for {
		select {
		case p := <-a.comp.Synchronizer.Peaks():
			a.comp.Scene.Observe(p)
		default:
			return
		}
	}
}

// Frames returns the number of frames rendered
func (a *App) Frames() int {
	return a.frames
}

// Result returns the playback result; valid after Run
func (a *App) Result() playback.Result {
	return a.result
}

// SyncStats returns the synchronizer statistics; valid after Run
func (a *App) SyncStats() sync.Stats {
	return a.stats
}
