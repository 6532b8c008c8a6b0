// Package gldevice implements the scene renderer's graphics device on
// OpenGL 4.1 core.
//
// IMPORTANT: New must be called after the OpenGL context is created, and
// every method must run on the thread that owns it.
package gldevice

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/engine/framebuffer"
	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/internal/engine/shader"
	"github.com/Faultbox/blockview/internal/logger"
	"github.com/Faultbox/blockview/pkg/math"
)

// ErrUnknownProgram is returned for a program handle the device did not create.
var ErrUnknownProgram = errors.New("unknown program")

// Config holds device configuration.
type Config struct {
	Width      int32
	Height     int32
	Samples    int32
	Background geometry.Color4
}

type program struct {
	shader   geometry.Shader
	uniforms map[string]int32
}

// uniform returns a cached uniform location.
func (p *program) uniform(id uint32, name string) int32 {
	loc, ok := p.uniforms[name]
	if !ok {
		loc = shader.GetUniform(id, name)
		p.uniforms[name] = loc
	}
	return loc
}

type vertexArray struct {
	vao  uint32
	vbos []uint32
}

// Device draws into a multisampled offscreen framebuffer.
type Device struct {
	cfg       Config
	fb        *framebuffer.Framebuffer
	programs  map[uint32]*program
	arrays    map[uint32]*vertexArray
	current   *program
	currentID uint32
	log       *zap.Logger
}

var _ scene.Device = (*Device)(nil)

// New initializes OpenGL and creates the offscreen target.
func New(cfg Config) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log := logger.Named("gl")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	fb, err := framebuffer.New(cfg.Width, cfg.Height, cfg.Samples)
	if err != nil {
		return nil, err
	}

	return &Device{
		cfg:      cfg,
		fb:       fb,
		programs: make(map[uint32]*program),
		arrays:   make(map[uint32]*vertexArray),
		log:      log,
	}, nil
}

// Size returns the offscreen target size.
func (d *Device) Size() (int32, int32) { return d.fb.Size() }

// Resize resizes the offscreen target.
func (d *Device) Resize(width, height int32) {
	d.fb.Resize(width, height)
	d.log.Debug("resized", zap.Int32("width", width), zap.Int32("height", height))
}

// SetBackground sets the clear color.
func (d *Device) SetBackground(c geometry.Color4) { d.cfg.Background = c }

// CreateProgram compiles the program for a shader kind.
func (d *Device) CreateProgram(s geometry.Shader) (uint32, error) {
	id, err := shader.Program(s)
	if err != nil {
		return 0, err
	}
	d.programs[id] = &program{shader: s, uniforms: make(map[string]int32)}
	d.log.Debug("program created", zap.Stringer("shader", s), zap.Uint32("program", id))
	return id, nil
}

// DeleteProgram deletes a program.
func (d *Device) DeleteProgram(id uint32) {
	if _, ok := d.programs[id]; !ok {
		return
	}
	if d.currentID == id {
		d.current, d.currentID = nil, 0
	}
	delete(d.programs, id)
	gl.DeleteProgram(id)
}

// CreateVertexArray uploads one buffer per attribute, bound by name to the
// program's attribute locations.
func (d *Device) CreateVertexArray(id uint32, data geometry.AttributeData) (uint32, error) {
	if _, ok := d.programs[id]; !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownProgram, id)
	}

	va := &vertexArray{}
	gl.GenVertexArrays(1, &va.vao)
	gl.BindVertexArray(va.vao)
	defer gl.BindVertexArray(0)

	for _, a := range data.Attributes() {
		loc, err := shader.AttribLocation(id, a.Name)
		if err != nil {
			gl.BindVertexArray(0)
			d.deleteArray(va)
			return 0, err
		}

		var vbo uint32
		gl.GenBuffers(1, &vbo)
		va.vbos = append(va.vbos, vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
		if len(a.Data) > 0 {
			gl.BufferData(gl.ARRAY_BUFFER, len(a.Data)*4, gl.Ptr(a.Data), gl.STATIC_DRAW)
		}
		gl.EnableVertexAttribArray(loc)
		gl.VertexAttribPointerWithOffset(loc, a.Size, gl.FLOAT, false, a.Size*4, 0)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	d.arrays[va.vao] = va
	return va.vao, nil
}

// DeleteVertexArray deletes a vertex array and its buffers.
func (d *Device) DeleteVertexArray(vao uint32) {
	if va, ok := d.arrays[vao]; ok {
		delete(d.arrays, vao)
		d.deleteArray(va)
	}
}

func (d *Device) deleteArray(va *vertexArray) {
	if len(va.vbos) > 0 {
		gl.DeleteBuffers(int32(len(va.vbos)), &va.vbos[0])
	}
	gl.DeleteVertexArrays(1, &va.vao)
}

// BeginFrame binds the offscreen target, sets the fixed pipeline state and
// clears.
func (d *Device) BeginFrame() {
	d.fb.Bind()

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.DepthMask(true)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CW)
	gl.Enable(gl.MULTISAMPLE)
	gl.Disable(gl.BLEND)

	bg := d.cfg.Background
	d.fb.Clear(bg.R, bg.G, bg.B, bg.A)
	d.current, d.currentID = nil, 0
}

// SetTranslucent toggles alpha blending and depth writes.
func (d *Device) SetTranslucent(enabled bool) {
	if enabled {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		return
	}
	gl.Disable(gl.BLEND)
	gl.DepthMask(true)
}

// UseProgram makes a program current and uploads the frame uniforms.
func (d *Device) UseProgram(id uint32, u scene.FrameUniforms) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	gl.UseProgram(id)
	d.current, d.currentID = p, id

	gl.UniformMatrix4fv(p.uniform(id, geometry.UniformViewProj), 1, false, u.ViewProj.Ptr())

	switch p.shader {
	case geometry.ShaderBasic:
		names := [3]string{geometry.UniformOverrideColor1, geometry.UniformOverrideColor2, geometry.UniformOverrideColor3}
		for i, c := range u.OverrideColors {
			gl.Uniform4f(p.uniform(id, names[i]), c.R, c.G, c.B, c.A)
		}
		var preview int32
		if u.Preview {
			preview = 1
		}
		gl.Uniform1i(p.uniform(id, geometry.UniformIsPreview), preview)
	case geometry.ShaderGlass:
		setVec3(p.uniform(id, geometry.UniformCameraPosition), u.CameraPosition)
		gl.Uniform3f(p.uniform(id, geometry.UniformSkyColorUp), u.SkyUp.R, u.SkyUp.G, u.SkyUp.B)
		gl.Uniform3f(p.uniform(id, geometry.UniformSkyColorDown), u.SkyDown.R, u.SkyDown.G, u.SkyDown.B)
	}
}

func setVec3(loc int32, v math.Vec3) {
	gl.Uniform3f(loc, v.X, v.Y, v.Z)
}

// Draw draws a vertex array with the current program.
func (d *Device) Draw(vao uint32, world math.Mat4, cfg geometry.DrawConfig, vertexCount int32) {
	if d.current == nil {
		return
	}
	if _, ok := d.arrays[vao]; !ok {
		return
	}
	gl.UniformMatrix4fv(d.current.uniform(d.currentID, geometry.UniformWorld), 1, false, world.Ptr())

	gl.BindVertexArray(vao)
	switch cfg.Mode {
	case geometry.ModeLines:
		if cfg.LineWidth > 0 {
			gl.LineWidth(cfg.LineWidth)
		}
		gl.DrawArrays(gl.LINES, 0, vertexCount)
	default:
		gl.DrawArrays(gl.TRIANGLES, 0, vertexCount)
	}
	gl.BindVertexArray(0)
}

// Present resolves the frame into the default framebuffer.
func (d *Device) Present(windowWidth, windowHeight int32) {
	d.fb.Present(windowWidth, windowHeight)
	d.fb.Unbind()
	gl.Viewport(0, 0, windowWidth, windowHeight)
}

// ReadPixels returns the resolved frame as RGBA rows, bottom row first.
func (d *Device) ReadPixels() (pixels []byte, width, height int32) {
	width, height = d.fb.Size()
	return d.fb.ReadPixels(), width, height
}

// Destroy releases every program, vertex array and the offscreen target.
func (d *Device) Destroy() error {
	var err error
	for vao := range d.arrays {
		d.DeleteVertexArray(vao)
	}
	err = multierr.Append(err, glError("deleting vertex arrays"))

	for id := range d.programs {
		d.DeleteProgram(id)
	}
	err = multierr.Append(err, glError("deleting programs"))

	if d.fb != nil {
		d.fb.Destroy()
		d.fb = nil
		err = multierr.Append(err, glError("deleting framebuffer"))
	}
	return err
}

// glError drains the GL error queue.
func glError(op string) error {
	var err error
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		err = multierr.Append(err, fmt.Errorf("%s: GL error 0x%x", op, code))
	}
	return err
}
