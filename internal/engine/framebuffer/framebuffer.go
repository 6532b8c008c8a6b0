// Package framebuffer provides the multisampled offscreen render target the
// viewport draws into, with a single-sample resolve target for presentation
// and pixel read-back.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Framebuffer is a multisampled color+depth target plus a resolve target.
type Framebuffer struct {
	msFBO      uint32
	msColor    uint32
	msDepth    uint32
	resolveFBO uint32
	resolveTex uint32

	width   int32
	height  int32
	samples int32
}

// New creates a framebuffer pair. samples < 1 is treated as 1.
func New(width, height, samples int32) (*Framebuffer, error) {
	fb := &Framebuffer{
		width:   max(width, 1),
		height:  max(height, 1),
		samples: max(samples, 1),
	}

	if err := fb.create(); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}

	return fb, nil
}

func (fb *Framebuffer) create() error {
	gl.GenFramebuffers(1, &fb.msFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.msFBO)

	gl.GenRenderbuffers(1, &fb.msColor)
	gl.GenRenderbuffers(1, &fb.msDepth)
	fb.allocate()
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, fb.msColor)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.msDepth)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("multisample framebuffer incomplete: 0x%x", status)
	}

	gl.GenFramebuffers(1, &fb.resolveFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.resolveFBO)
	gl.GenTextures(1, &fb.resolveTex)
	gl.BindTexture(gl.TEXTURE_2D, fb.resolveTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.resolveTex, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("resolve framebuffer incomplete: 0x%x", status)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	return nil
}

// allocate sizes the multisampled renderbuffers.
func (fb *Framebuffer) allocate() {
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.msColor)
	gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, fb.samples, gl.RGBA8, fb.width, fb.height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, fb.msDepth)
	gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, fb.samples, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
}

// Bind makes the multisampled target current.
func (fb *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.msFBO)
	gl.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// Clear clears color and depth of the bound target.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Resolve averages the samples into the resolve target.
func (fb *Framebuffer) Resolve() {
	fb.blit(fb.resolveFBO, fb.width, fb.height)
}

// Present resolves straight into the default framebuffer, scaled to the
// window size.
func (fb *Framebuffer) Present(windowWidth, windowHeight int32) {
	fb.blit(0, windowWidth, windowHeight)
}

func (fb *Framebuffer) blit(dst uint32, w, h int32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.msFBO)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst)
	filter := uint32(gl.NEAREST)
	if w != fb.width || h != fb.height {
		// Scaling a multisampled source is not allowed, resolve first.
		fb.blitRaw(fb.msFBO, fb.resolveFBO, fb.width, fb.height, gl.NEAREST)
		gl.BindFramebuffer(gl.READ_FRAMEBUFFER, fb.resolveFBO)
		gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst)
		filter = gl.LINEAR
	}
	gl.BlitFramebuffer(0, 0, fb.width, fb.height, 0, 0, w, h, gl.COLOR_BUFFER_BIT, filter)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (fb *Framebuffer) blitRaw(src, dst uint32, w, h int32, filter uint32) {
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, src)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, dst)
	gl.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, gl.COLOR_BUFFER_BIT, filter)
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Samples returns the sample count.
func (fb *Framebuffer) Samples() int32 { return fb.samples }

// Resize reallocates storage if the dimensions changed.
func (fb *Framebuffer) Resize(width, height int32) {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return
	}
	fb.width, fb.height = width, height

	fb.allocate()
	gl.BindTexture(gl.TEXTURE_2D, fb.resolveTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
}

// ReadPixels resolves and reads the color buffer as RGBA rows, bottom row
// first as GL stores them.
func (fb *Framebuffer) ReadPixels() []byte {
	fb.Resolve()
	pixels := make([]byte, fb.width*fb.height*4)

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.resolveFBO)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	return pixels
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.msFBO != 0 {
		gl.DeleteFramebuffers(1, &fb.msFBO)
		fb.msFBO = 0
	}
	if fb.resolveFBO != 0 {
		gl.DeleteFramebuffers(1, &fb.resolveFBO)
		fb.resolveFBO = 0
	}
	if fb.msColor != 0 {
		gl.DeleteRenderbuffers(1, &fb.msColor)
		fb.msColor = 0
	}
	if fb.msDepth != 0 {
		gl.DeleteRenderbuffers(1, &fb.msDepth)
		fb.msDepth = 0
	}
	if fb.resolveTex != 0 {
		gl.DeleteTextures(1, &fb.resolveTex)
		fb.resolveTex = 0
	}
}
