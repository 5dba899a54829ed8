// ABOUTME: Scene description handed to renderers once per frame
// ABOUTME: Camera, light and parallelepiped shapes with projection helpers
package visual

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a perspective camera looking at Center
type Camera struct {
	Eye    mgl32.Vec3
	Center mgl32.Vec3
	Up     mgl32.Vec3

	// FovY is the vertical field of view in radians
	FovY float32
	Near float32
	Far  float32
}

// ViewProjection returns projection * view for the given aspect ratio
func (c Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	proj := mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
	view := mgl32.LookAtV(c.Eye, c.Center, c.Up)
	return proj.Mul4(view)
}

// Parallelepiped is the solid spanned by three edge vectors from Origin
type Parallelepiped struct {
	Origin mgl32.Vec3
	A      mgl32.Vec3
	B      mgl32.Vec3
	C      mgl32.Vec3
	Color  mgl32.Vec4
}

// Vertices returns the eight corners; bit 0 selects A, bit 1 B, bit 2 C
func (p Parallelepiped) Vertices() [8]mgl32.Vec3 {
	var v [8]mgl32.Vec3
	for i := range v {
		corner := p.Origin
		if i&1 != 0 {
			corner = corner.Add(p.A)
		}
		if i&2 != 0 {
			corner = corner.Add(p.B)
		}
		if i&4 != 0 {
			corner = corner.Add(p.C)
		}
		v[i] = corner
	}
	return v
}

// Edges lists vertex index pairs joined by an edge
var Edges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Frame is everything a renderer needs to draw one frame
type Frame struct {
	Camera Camera
	Light  mgl32.Vec3
	Shapes []Parallelepiped

	// Audio state the frame was built from
	Elapsed   float32
	Frequency float64
	Level     float64
	Slice     int
}

// Project maps a world point to normalized device coordinates.
// ok is false when the point is behind the camera or outside the depth range.
func Project(viewProj mgl32.Mat4, p mgl32.Vec3) (x, y float32, ok bool) {
	clip := viewProj.Mul4x1(p.Vec4(1))
	w := clip.W()
	if w <= 0 {
		return 0, 0, false
	}
	z := clip.Z() / w
	if z < -1 || z > 1 {
		return 0, 0, false
	}
	return clip.X() / w, clip.Y() / w, true
}
