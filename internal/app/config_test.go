// ABOUTME: Tests for visualizer configuration
// ABOUTME: Tests defaults and validation of CLI-derived settings
package app

import (
	"testing"

	"github.com/Resonate-Protocol/resonate-viz/pkg/sync"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.FPS != 60 {
		t.Errorf("expected 60 fps, got %d", config.FPS)
	}
	if config.SlicesPerSecond != 100 {
		t.Errorf("expected 100 slices/s, got %d", config.SlicesPerSecond)
	}
	if config.FramesPerBlock != 64 {
		t.Errorf("expected 64-frame blocks, got %d", config.FramesPerBlock)
	}
	if config.SyncPolicy() != sync.PolicyCatchUp {
		t.Errorf("expected catch-up policy, got %s", config.SyncPolicy())
	}
	if !config.UseTUI {
		t.Error("expected TUI enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Path = "song.wav"

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing path", func(c *Config) { c.Path = "" }, true},
		{"zero fps", func(c *Config) { c.FPS = 0 }, true},
		{"negative slices", func(c *Config) { c.SlicesPerSecond = -1 }, true},
		{"zero block", func(c *Config) { c.FramesPerBlock = 0 }, true},
		{"resample rate", func(c *Config) { c.SampleRate = 48000 }, false},
		{"negative rate", func(c *Config) { c.SampleRate = -1 }, true},
		{"unknown backend", func(c *Config) { c.Backend = "jack" }, true},
		{"null backend", func(c *Config) { c.Backend = "null" }, false},
		{"step policy", func(c *Config) { c.Policy = "step" }, false},
		{"unknown policy", func(c *Config) { c.Policy = "smooth" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
