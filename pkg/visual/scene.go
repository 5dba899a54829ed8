// ABOUTME: Scene builder turning synchronized spectral peaks into frames
// ABOUTME: Orbits the camera around a cube sized by level and tinted by frequency
package visual

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Resonate-Protocol/resonate-viz/pkg/sync"
)

const (
	orbitPeriod = 3   // seconds per camera revolution
	orbitRadius = 100 // distance from the scene center
	orbitHeight = 40
	pulsePeriod = 5 // seconds per color pulse

	cubeMin = 10
	cubeMax = 30

	// levelResponse is how fast the displayed level follows the audio (1/s)
	levelResponse = 12
)

// Scene keeps the audio state observed between frames
type Scene struct {
	maxFrequency float64

	peak    sync.Peak
	hasPeak bool
	level   float64
}

// NewScene creates a builder mapping 0..maxFrequency Hz onto the color ramp
func NewScene(maxFrequency float64) *Scene {
	if maxFrequency <= 0 {
		maxFrequency = 22050
	}
	return &Scene{maxFrequency: maxFrequency}
}

// Observe records the latest synchronized peak
func (s *Scene) Observe(p sync.Peak) {
	if s.hasPeak && p.Index < s.peak.Index {
		return
	}
	s.peak = p
	s.hasPeak = true
}

// Update builds the frame for total elapsed seconds, delta seconds after the last one
func (s *Scene) Update(delta, elapsed float32) Frame {
	s.level += (s.peak.Level - s.level) * math.Min(1, float64(delta)*levelResponse)

	// camera loops around the center
	angle := 2 * math.Pi * math.Mod(float64(elapsed), orbitPeriod) / orbitPeriod
	eye := mgl32.Vec3{
		orbitRadius * float32(math.Cos(angle)),
		orbitHeight,
		orbitRadius * float32(math.Sin(angle)),
	}

	// pulse runs 0 -> 1 -> 0 every pulsePeriod seconds
	pulse := unlerp(float32(math.Sin(2*math.Pi*float64(elapsed)/pulsePeriod)), -1, 1)

	side := lerp(clamp01(float32(s.level)*2), cubeMin, cubeMax)
	tone := clamp01(float32(s.peak.Frequency / s.maxFrequency))

	cube := Parallelepiped{
		Origin: mgl32.Vec3{-side / 2, 0, -side / 2},
		A:      mgl32.Vec3{side, 0, 0},
		B:      mgl32.Vec3{0, side, 0},
		C:      mgl32.Vec3{0, 0, side},
		Color:  mgl32.Vec4{lerp(tone, 0.75, 0.1), 0.25 * pulse, lerp(tone, 0, 0.9), 1},
	}

	slice := -1
	if s.hasPeak {
		slice = s.peak.Index
	}

	return Frame{
		Camera: Camera{
			Eye:    eye,
			Center: mgl32.Vec3{0, 0, 0},
			Up:     mgl32.Vec3{0, 1, 0},
			FovY:   mgl32.DegToRad(30),
			Near:   1,
			Far:    1000,
		},
		Light:     mgl32.Vec3{500, 500, 500},
		Shapes:    []Parallelepiped{cube},
		Elapsed:   elapsed,
		Frequency: s.peak.Frequency,
		Level:     s.level,
		Slice:     slice,
	}
}

// unlerp maps v from [lo, hi] to [0, 1]
func unlerp(v, lo, hi float32) float32 {
	return (v - lo) / (hi - lo)
}

// lerp maps f from [0, 1] to [lo, hi]
func lerp(f, lo, hi float32) float32 {
	return lo + f*(hi-lo)
}

func clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}
