// ABOUTME: Visualizer run configuration
// ABOUTME: Defaults and validation for values parsed from the command line
package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Resonate-Protocol/resonate-viz/pkg/analysis"
	"github.com/Resonate-Protocol/resonate-viz/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-viz/pkg/sync"
)

// Config holds visualizer configuration
type Config struct {
	Path            string
	FPS             int
	SlicesPerSecond int
	FramesPerBlock  int
	// SampleRate resamples the decoded file before playback; 0 keeps the source rate
	SampleRate int
	Backend    string
	Policy     string
	UseTUI     bool
	LogFile    string
}

// DefaultConfig returns the defaults used by the CLI
func DefaultConfig() Config {
	return Config{
		FPS:             60,
		SlicesPerSecond: analysis.DefaultSlicesPerSecond,
		FramesPerBlock:  64,
		Backend:         "malgo",
		Policy:          sync.PolicyCatchUp.String(),
		UseTUI:          true,
		LogFile:         "resonate-viz.log",
	}
}

// Validate checks the configuration before any resource is acquired
func (c Config) Validate() error {
	if c.Path == "" {
		return errors.New("no audio file given")
	}
	if c.FPS <= 0 || c.FPS > 1000 {
		return fmt.Errorf("invalid fps %d (want 1-1000)", c.FPS)
	}
	if c.SlicesPerSecond <= 0 {
		return fmt.Errorf("invalid slices per second %d", c.SlicesPerSecond)
	}
	if c.FramesPerBlock <= 0 || c.FramesPerBlock > 1<<16 {
		return fmt.Errorf("invalid block size %d frames", c.FramesPerBlock)
	}
	if c.SampleRate < 0 || c.SampleRate > 384000 {
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	}
	if !slices.Contains(output.Backends, c.Backend) {
		return fmt.Errorf("unknown backend %q (want one of %v)", c.Backend, output.Backends)
	}
	if _, err := sync.ParsePolicy(c.Policy); err != nil {
		return err
	}
	return nil
}

// SyncPolicy returns the parsed synchronizer policy
func (c Config) SyncPolicy() sync.Policy {
	p, err := sync.ParsePolicy(c.Policy)
	if err != nil {
		return sync.PolicyCatchUp
	}
	return p
}
