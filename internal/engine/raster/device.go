package raster

import (
	"errors"
	"fmt"
	"image"
	"slices"

	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/pkg/math"
)

var (
	// ErrUnknownProgram is returned for a handle the device did not create.
	ErrUnknownProgram = errors.New("unknown program")
	// ErrAttributeNotFound mirrors a GL attribute lookup that returns -1.
	ErrAttributeNotFound = errors.New("attribute location not found")
	// ErrBufferSize is returned when attribute buffers disagree on length.
	ErrBufferSize = errors.New("attribute buffer size mismatch")
)

// programAttributes lists the inputs each program declares.
var programAttributes = map[geometry.Shader][]string{
	geometry.ShaderBasic: {geometry.AttribPosition, geometry.AttribColor, geometry.AttribNormal},
	geometry.ShaderGlass: {geometry.AttribPosition, geometry.AttribColor, geometry.AttribNormal},
	geometry.ShaderLine:  {geometry.AttribPosition, geometry.AttribColor},
}

type vertexArray struct {
	data geometry.AttributeData
}

// Stats counts the work done since the last BeginFrame.
type Stats struct {
	DrawCalls int
	Triangles int
	Culled    int
	Fragments int
}

// Device rasterizes draw calls into a FrameBuffer. The fixed state matches
// the GL device: depth test LESS, back faces culled with clockwise front
// faces.
type Device struct {
	fb         *FrameBuffer
	Background geometry.Color4
	// CullBack discards triangles wound counter-clockwise on screen.
	CullBack bool

	next     uint32
	programs map[uint32]geometry.Shader
	arrays   map[uint32]*vertexArray

	current  geometry.Shader
	uniforms scene.FrameUniforms
	blend    bool
	stats    Stats
}

var _ scene.Device = (*Device)(nil)

// NewDevice creates a device rendering into a width x height buffer.
func NewDevice(width, height int) *Device {
	return &Device{
		fb:         NewFrameBuffer(width, height),
		Background: geometry.Color4{},
		CullBack:   true,
		programs:   make(map[uint32]geometry.Shader),
		arrays:     make(map[uint32]*vertexArray),
	}
}

// Size returns the frame buffer size.
func (d *Device) Size() (int, int) { return d.fb.Width, d.fb.Height }

// Stats returns counters for the current frame.
func (d *Device) Stats() Stats { return d.stats }

// Image returns the current frame as an 8-bit image.
func (d *Device) Image() *image.NRGBA { return d.fb.Image() }

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

// CreateProgram registers a program. It never fails for a known shader.
func (d *Device) CreateProgram(s geometry.Shader) (uint32, error) {
	if _, ok := programAttributes[s]; !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownProgram, s)
	}
	h := d.handle()
	d.programs[h] = s
	return h, nil
}

// DeleteProgram forgets a program.
func (d *Device) DeleteProgram(program uint32) { delete(d.programs, program) }

// CreateVertexArray copies the buffers after checking each one against the
// program's declared inputs.
func (d *Device) CreateVertexArray(program uint32, data geometry.AttributeData) (uint32, error) {
	s, ok := d.programs[program]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownProgram, program)
	}

	n := data.VertexCount()
	for _, a := range data.Attributes() {
		if !slices.Contains(programAttributes[s], a.Name) {
			return 0, fmt.Errorf("%s program: %w: %s", s, ErrAttributeNotFound, a.Name)
		}
		if len(a.Data) != n*int(a.Size) {
			return 0, fmt.Errorf("%s: %w: %d floats for %d vertices", a.Name, ErrBufferSize, len(a.Data), n)
		}
	}

	h := d.handle()
	d.arrays[h] = &vertexArray{data: geometry.AttributeData{
		Positions: slices.Clone(data.Positions),
		Colors:    slices.Clone(data.Colors),
		Normals:   slices.Clone(data.Normals),
	}}
	return h, nil
}

// DeleteVertexArray frees a vertex array.
func (d *Device) DeleteVertexArray(vao uint32) { delete(d.arrays, vao) }

// BeginFrame clears to Background and resets counters.
func (d *Device) BeginFrame() {
	d.fb.Clear(d.Background)
	d.blend = false
	d.stats = Stats{}
}

// SetTranslucent toggles alpha blending without depth writes.
func (d *Device) SetTranslucent(enabled bool) { d.blend = enabled }

// UseProgram selects the shading for following draws.
func (d *Device) UseProgram(program uint32, u scene.FrameUniforms) {
	if s, ok := d.programs[program]; ok {
		d.current = s
		d.uniforms = u
	}
}

// Draw rasterizes one vertex array with the current program.
func (d *Device) Draw(vao uint32, world math.Mat4, cfg geometry.DrawConfig, vertexCount int32) {
	va, ok := d.arrays[vao]
	if !ok {
		return
	}
	d.stats.DrawCalls++

	n := min(int(vertexCount), va.data.VertexCount())
	switch cfg.Mode {
	case geometry.ModeTriangles:
		for i := 0; i+2 < n; i += 3 {
			d.drawTriangle(va, world, i)
		}
	case geometry.ModeLines:
		width := cfg.LineWidth
		if width < 1 {
			width = 1
		}
		for i := 0; i+1 < n; i += 2 {
			d.drawSegment(va, world, i, width)
		}
	}
}

// clipVertex is a vertex in world and clip space.
type clipVertex struct {
	world math.Vec3
	clip  math.Vec4
	color geometry.Color4
}

func (d *Device) transform(va *vertexArray, world math.Mat4, i int) clipVertex {
	p := va.data.Positions[i*3 : i*3+3]
	wp := world.TransformPoint(math.Vec3{X: p[0], Y: p[1], Z: p[2]})
	c := va.data.Colors[i*4 : i*4+4]
	return clipVertex{
		world: wp,
		clip:  d.uniforms.ViewProj.MulVec4(math.Vec4{wp.X, wp.Y, wp.Z, 1}),
		color: geometry.Color4{R: c[0], G: c[1], B: c[2], A: c[3]},
	}
}

// toScreen maps clip space to pixels with y down. Vertices at or behind the
// eye plane are rejected.
func (d *Device) toScreen(v clipVertex) (screenVertex, bool) {
	w := v.clip[3]
	if w <= 1e-6 {
		return screenVertex{}, false
	}
	nx, ny, nz := v.clip[0]/w, v.clip[1]/w, v.clip[2]/w
	if nz < -1 || nz > 1 {
		return screenVertex{}, false
	}
	return screenVertex{
		x:     (nx*0.5 + 0.5) * float32(d.fb.Width),
		y:     (0.5 - ny*0.5) * float32(d.fb.Height),
		z:     nz,
		color: v.color,
	}, true
}

func (d *Device) drawTriangle(va *vertexArray, world math.Mat4, first int) {
	var cv [3]clipVertex
	var sv [3]screenVertex
	for k := 0; k < 3; k++ {
		cv[k] = d.transform(va, world, first+k)
		s, ok := d.toScreen(cv[k])
		if !ok {
			return
		}
		sv[k] = s
	}
	d.stats.Triangles++

	// Screen y points down, so a clockwise triangle in window space has a
	// positive area here.
	if d.CullBack && edge(sv[0].x, sv[0].y, sv[1].x, sv[1].y, sv[2].x, sv[2].y) <= 0 {
		d.stats.Culled++
		return
	}

	var normal math.Vec3
	if va.data.Normals != nil {
		nn := va.data.Normals[first*3 : first*3+3]
		normal = world.TransformDirection(math.Vec3{X: nn[0], Y: nn[1], Z: nn[2]})
	}
	centroid := cv[0].world.Add(cv[1].world).Add(cv[2].world).Scale(1.0 / 3)

	for k := range sv {
		switch d.current {
		case geometry.ShaderBasic:
			sv[k].color = basicShade(sv[k].color, normal, &d.uniforms)
		case geometry.ShaderGlass:
			sv[k].color = glassShade(sv[k].color, normal, centroid, &d.uniforms)
		}
	}

	d.stats.Fragments += rasterizeTriangle(d.fb, sv, d.blend)
}

func (d *Device) drawSegment(va *vertexArray, world math.Mat4, first int, width float32) {
	a, okA := d.toScreen(d.transform(va, world, first))
	b, okB := d.toScreen(d.transform(va, world, first+1))
	if !okA || !okB {
		return
	}
	d.stats.Fragments += rasterizeLine(d.fb, a, b, width)
}
