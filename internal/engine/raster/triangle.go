package raster

import (
	gomath "math"

	"github.com/Faultbox/blockview/internal/engine/geometry"
)

// screenVertex is a vertex after projection: pixel coordinates with y down,
// NDC depth, and its shaded color.
type screenVertex struct {
	x, y, z float32
	color   geometry.Color4
}

// rasterizeTriangle fills a triangle with barycentric interpolation of depth
// and color, sampling at pixel centers.
func rasterizeTriangle(fb *FrameBuffer, v [3]screenVertex, blend bool) int {
	minX := int(gomath.Floor(float64(min3(v[0].x, v[1].x, v[2].x))))
	maxX := int(gomath.Ceil(float64(max3(v[0].x, v[1].x, v[2].x))))
	minY := int(gomath.Floor(float64(min3(v[0].y, v[1].y, v[2].y))))
	maxY := int(gomath.Ceil(float64(max3(v[0].y, v[1].y, v[2].y))))

	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width-1)
	maxY = min(maxY, fb.Height-1)
	if minX > maxX || minY > maxY {
		return 0
	}

	area := edge(v[0].x, v[0].y, v[1].x, v[1].y, v[2].x, v[2].y)
	if area > -1e-9 && area < 1e-9 {
		return 0
	}
	inv := 1 / area

	written := 0
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(v[1].x, v[1].y, v[2].x, v[2].y, px, py) * inv
			w1 := edge(v[2].x, v[2].y, v[0].x, v[0].y, px, py) * inv
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*v[0].z + w1*v[1].z + w2*v[2].z
			c := geometry.Color4{
				R: w0*v[0].color.R + w1*v[1].color.R + w2*v[2].color.R,
				G: w0*v[0].color.G + w1*v[1].color.G + w2*v[2].color.G,
				B: w0*v[0].color.B + w1*v[1].color.B + w2*v[2].color.B,
				A: w0*v[0].color.A + w1*v[1].color.A + w2*v[2].color.A,
			}
			if fb.plot(x, y, z, c, blend) {
				written++
			}
		}
	}
	return written
}

// rasterizeLine draws a segment as a run of square dots of the given pixel
// width, interpolating depth and color.
func rasterizeLine(fb *FrameBuffer, a, b screenVertex, width float32) int {
	dx, dy := b.x-a.x, b.y-a.y
	steps := int(gomath.Ceil(float64(max(abs(dx), abs(dy)))))
	if steps < 1 {
		steps = 1
	}

	half := int(width / 2)
	written := 0
	for i := 0; i <= steps; i++ {
		t := float32(i) / float32(steps)
		x := int(a.x + dx*t)
		y := int(a.y + dy*t)
		z := a.z + (b.z-a.z)*t
		c := geometry.Color4{
			R: a.color.R + (b.color.R-a.color.R)*t,
			G: a.color.G + (b.color.G-a.color.G)*t,
			B: a.color.B + (b.color.B-a.color.B)*t,
			A: a.color.A + (b.color.A-a.color.A)*t,
		}
		for oy := -half; oy <= half; oy++ {
			for ox := -half; ox <= half; ox++ {
				if fb.plot(x+ox, y+oy, z, c, false) {
					written++
				}
			}
		}
	}
	return written
}

// edge is twice the signed area of (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func min3(a, b, c float32) float32 { return min(a, min(b, c)) }
func max3(a, b, c float32) float32 { return max(a, max(b, c)) }

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
