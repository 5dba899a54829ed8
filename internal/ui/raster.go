// ABOUTME: ASCII wireframe rasterizer for terminal rendering
// ABOUTME: Projects frame shapes through the camera and draws their edges as text
package ui

import (
	"strings"

	"github.com/Resonate-Protocol/resonate-viz/pkg/visual"
)

// cellAspect is the height/width ratio of a terminal character cell
const cellAspect = 2

// Rasterize draws the frame's shapes into rows of width cols
func Rasterize(frame visual.Frame, cols, rows int) []string {
	if cols <= 0 || rows <= 0 {
		return nil
	}

	grid := make([][]byte, rows)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", cols))
	}

	aspect := float32(cols) / float32(rows*cellAspect)
	vp := frame.Camera.ViewProjection(aspect)

	for _, shape := range frame.Shapes {
		var pts [8][2]int
		var vis [8]bool
		for i, v := range shape.Vertices() {
			x, y, ok := visual.Project(vp, v)
			if !ok || x < -4 || x > 4 || y < -4 || y > 4 {
				continue
			}
			pts[i] = [2]int{
				int((x + 1) / 2 * float32(cols-1)),
				int((1 - y) / 2 * float32(rows-1)),
			}
			vis[i] = true
		}

		for _, e := range visual.Edges {
			if vis[e[0]] && vis[e[1]] {
				drawLine(grid, pts[e[0]], pts[e[1]], '.')
			}
		}
		for i, p := range pts {
			if vis[i] {
				plot(grid, p[0], p[1], '+')
			}
		}
	}

	out := make([]string, rows)
	for i, row := range grid {
		out[i] = string(row)
	}
	return out
}

// drawLine plots a Bresenham line from a to b
func drawLine(grid [][]byte, a, b [2]int, ch byte) {
	x0, y0 := a[0], a[1]
	x1, y1 := b[0], b[1]

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	errAcc := dx + dy

	for {
		plot(grid, x0, y0, ch)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * errAcc
		if e2 >= dy {
			errAcc += dy
			x0 += sx
		}
		if e2 <= dx {
			errAcc += dx
			y0 += sy
		}
	}
}

func plot(grid [][]byte, x, y int, ch byte) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	grid[y][x] = ch
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
