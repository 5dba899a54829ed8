// ABOUTME: Tests for the frame scheduler application
// ABOUTME: Tests completion, window close, device failures and frame pacing
package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Resonate-Protocol/resonate-viz/internal/audiotest"
	"github.com/Resonate-Protocol/resonate-viz/internal/ui"
	"github.com/Resonate-Protocol/resonate-viz/pkg/analysis"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-viz/pkg/playback"
	"github.com/Resonate-Protocol/resonate-viz/pkg/sync"
	"github.com/Resonate-Protocol/resonate-viz/pkg/visual"
)

// countdownWindow closes after a fixed number of polls
type countdownWindow struct {
	polls      int
	closeAfter int
}

func (w *countdownWindow) Poll() ui.WindowEvent {
	w.polls++
	if w.polls > w.closeAfter {
		return ui.WindowEvent{Kind: ui.EventClose}
	}
	return ui.WindowEvent{Kind: ui.EventNone}
}

// recordingRenderer remembers when each frame was drawn
type recordingRenderer struct {
	clk   clock.Clock
	times []time.Time
	err   error
}

func (r *recordingRenderer) Render(frame visual.Frame, size ui.Size) error {
	r.times = append(r.times, r.clk.Now())
	return r.err
}

func newTestApp(t *testing.T, buf audio.Buffer, dev output.Device, window Window, renderer Renderer, clk clock.Clock) *App {
	t.Helper()

	result, err := analysis.Analyze(buf, 50)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	config := DefaultConfig()
	config.Path = "test.wav"
	config.Backend = dev.Name()

	streamer := playback.New(buf, dev, playback.Config{FramesPerBlock: 64, EventBuffer: 64})
	synchronizer := sync.New(result, streamer.Events(), streamer.Closed(), sync.DefaultConfig())

	return New(config, Components{
		Streamer:     streamer,
		Synchronizer: synchronizer,
		Scene:        visual.NewScene(float64(buf.Format.SampleRate) / 2),
		Window:       window,
		Renderer:     renderer,
		Clock:        clk,
	})
}

func TestRunPlaysToCompletion(t *testing.T) {
	if testing.Short() {
		t.Skip("real-time playback")
	}

	buf := audiotest.Sine(8000, 1, 3200, 440, 0.5)
	window := ui.NewHeadless(ui.Size{Width: 40, Height: 12}, 0)
	a := newTestApp(t, buf, output.NewNull(), window, window, nil)

	start := time.Now()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	wall := time.Since(start)

	res := a.Result()
	if res.Abnormal || res.Interrupted {
		t.Errorf("expected clean completion, got %+v", res)
	}
	if wall < 300*time.Millisecond {
		t.Errorf("expected ~400ms of playback, took %v", wall)
	}
	if a.Frames() < 10 {
		t.Errorf("expected at least 10 frames at 60fps, got %d", a.Frames())
	}
	if window.Frames() != a.Frames() {
		t.Errorf("renderer saw %d frames, app counted %d", window.Frames(), a.Frames())
	}

	stats := a.SyncStats()
	if stats.Emitted == 0 {
		t.Errorf("expected synchronized peaks, got %+v", stats)
	}
	if stats.Emitted+stats.Skipped+stats.Remaining != 20 {
		t.Errorf("slice accounting does not cover 20 slices: %+v", stats)
	}
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	dev := audiotest.NewDevice()
	window := ui.NewHeadless(ui.Size{}, 0)
	window.RequestClose()

	a := newTestApp(t, audiotest.Silence(8000, 1, 8000), dev, window, window, nil)
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !a.Result().Interrupted {
		t.Errorf("expected interrupted playback, got %+v", a.Result())
	}
	if a.Frames() != 0 {
		t.Errorf("expected no frames after immediate close, got %d", a.Frames())
	}

	select {
	case <-dev.Closed():
	default:
		t.Error("expected device to be released")
	}
}

func TestRunReturnsDeviceError(t *testing.T) {
	dev := audiotest.NewDevice()
	dev.OpenErr = &output.DeviceError{Backend: "test", Op: "open", Err: errors.New("no device")}
	window := ui.NewHeadless(ui.Size{}, 0)

	a := newTestApp(t, audiotest.Silence(8000, 1, 800), dev, window, window, nil)
	err := a.Run(context.Background())

	var devErr *output.DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected *output.DeviceError, got %v", err)
	}
	if a.Frames() != 0 {
		t.Errorf("expected no frames, got %d", a.Frames())
	}
}

func TestRunEndsOnDeviceFault(t *testing.T) {
	dev := audiotest.NewDevice()
	window := ui.NewHeadless(ui.Size{}, 0)
	a := newTestApp(t, audiotest.Silence(8000, 1, 8000), dev, window, window, nil)

	fault := &output.DeviceError{Backend: "test", Op: "stream", Err: errors.New("unplugged")}
	go func() {
		time.Sleep(50 * time.Millisecond)
		dev.Fail(fault)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	res := a.Result()
	if !res.Abnormal || !errors.Is(res.Err, fault) {
		t.Errorf("expected abnormal completion carrying the fault, got %+v", res)
	}
}

func TestRunReturnsRenderError(t *testing.T) {
	renderer := &recordingRenderer{clk: clock.New(), err: errors.New("gpu lost")}
	a := newTestApp(t, audiotest.Silence(8000, 1, 8000), audiotest.NewDevice(),
		&countdownWindow{closeAfter: 100}, renderer, nil)

	if err := a.Run(context.Background()); err == nil {
		t.Fatal("expected render error")
	}
	if len(renderer.times) != 1 {
		t.Errorf("expected loop to stop after the failed frame, got %d frames", len(renderer.times))
	}
}

func TestFramePacing(t *testing.T) {
	mock := clock.NewMock()
	renderer := &recordingRenderer{clk: mock}
	window := &countdownWindow{closeAfter: 6}

	a := newTestApp(t, audiotest.Silence(8000, 1, 8000), audiotest.NewDevice(), window, renderer, mock)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				mock.Add(time.Millisecond)
			}
		}
	}()

	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(renderer.times) != 6 {
		t.Fatalf("expected 6 frames, got %d", len(renderer.times))
	}

	period := time.Second / 60
	for i := 1; i < len(renderer.times); i++ {
		if gap := renderer.times[i].Sub(renderer.times[i-1]); gap < period {
			t.Errorf("frame %d drawn %v after the previous one, want >= %v", i, gap, period)
		}
	}
}
