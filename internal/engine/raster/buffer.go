// Package raster is a headless software implementation of the scene
// renderer's graphics device. It reproduces the viewer's shading into an
// image so snapshots can be rendered without a GPU.
package raster

import (
	"image"
	"math"

	"github.com/Faultbox/blockview/internal/engine/geometry"
)

// FrameBuffer holds the render target as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []float32 // RGBA interleaved, 0..1, len = W*H*4
	Depth  []float32 // NDC depth per pixel, len = W*H, cleared to +inf
}

// NewFrameBuffer allocates a cleared frame buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]float32, w*h*4),
		Depth:  make([]float32, w*h),
	}
	fb.Clear(geometry.Color4{})
	return fb
}

// Clear fills the color buffer with c and resets depth.
func (fb *FrameBuffer) Clear(c geometry.Color4) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i], fb.Color[i+1], fb.Color[i+2], fb.Color[i+3] = c.R, c.G, c.B, c.A
	}
	inf := float32(math.Inf(1))
	for i := range fb.Depth {
		fb.Depth[i] = inf
	}
}

// plot writes one fragment with a LESS depth test. Blended fragments use
// source-alpha blending and leave depth untouched.
func (fb *FrameBuffer) plot(x, y int, z float32, c geometry.Color4, blend bool) bool {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return false
	}
	i := y*fb.Width + x
	if !(z < fb.Depth[i]) {
		return false
	}

	p := fb.Color[i*4 : i*4+4 : i*4+4]
	if blend {
		a := clamp01(c.A)
		p[0] = c.R*a + p[0]*(1-a)
		p[1] = c.G*a + p[1]*(1-a)
		p[2] = c.B*a + p[2]*(1-a)
		p[3] = a + p[3]*(1-a)
		return true
	}

	p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
	fb.Depth[i] = z
	return true
}

// Image converts the color buffer to an 8-bit image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, v := range fb.Color {
		img.Pix[i] = to8(v)
	}
	return img
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func clamp01(v float32) float32 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
