package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/logger"
	"github.com/Faultbox/blockview/pkg/math"
)

// ErrDestroyed is returned when a destroyed renderer is updated.
var ErrDestroyed = errors.New("renderer destroyed")

// batch is one uploaded object.
type batch struct {
	vao         uint32
	program     uint32
	world       math.Mat4
	center      math.Vec3
	cfg         geometry.DrawConfig
	vertexCount int32
}

func (b *batch) translucent() bool      { return b.cfg.Shader.Translucent() }
func (b *batch) worldCenter() math.Vec3 { return b.center }

// Renderer uploads scene snapshots to a Device and draws them: opaque
// objects first, then translucent objects back to front.
type Renderer struct {
	dev      Device
	programs map[geometry.Shader]uint32
	settings Settings

	batches []*batch
	lastErr error
	log     *zap.Logger
}

// NewRenderer creates one program per shader kind. If any program fails the
// ones already created are deleted and the error is returned.
func NewRenderer(dev Device, settings Settings) (*Renderer, error) {
	r := &Renderer{
		dev:      dev,
		programs: make(map[geometry.Shader]uint32, len(geometry.Shaders)),
		settings: settings,
		log:      logger.Named("renderer"),
	}

	for _, s := range geometry.Shaders {
		program, err := dev.CreateProgram(s)
		if err != nil {
			r.deletePrograms()
			return nil, fmt.Errorf("%s shader: %w", s, err)
		}
		r.programs[s] = program
	}

	return r, nil
}

// Settings returns the current look settings.
func (r *Renderer) Settings() Settings { return r.settings }

// SetSettings replaces the look settings used from the next Paint.
func (r *Renderer) SetSettings(s Settings) { r.settings = s }

// Update replaces the uploaded objects with the snapshot. On failure the
// partially built arrays are deleted, the previous upload stays in use and
// the error is kept in LastError.
func (r *Renderer) Update(snap Snapshot) error {
	if r.programs == nil {
		return ErrDestroyed
	}

	next := make([]*batch, 0, len(snap))
	for i, obj := range snap {
		b, err := r.upload(obj)
		if err != nil {
			r.release(next)
			r.lastErr = fmt.Errorf("object %d: %w", i, err)
			r.log.Warn("keeping previous buffers", zap.Error(r.lastErr))
			return r.lastErr
		}
		next = append(next, b)
	}

	r.release(r.batches)
	r.batches = next
	r.lastErr = nil
	r.log.Debug("buffers uploaded", zap.Int("objects", len(next)))
	return nil
}

func (r *Renderer) upload(obj *Object) (*batch, error) {
	cfg := obj.DrawConfig()
	program, ok := r.programs[cfg.Shader]
	if !ok {
		return nil, fmt.Errorf("no program for %s shader", cfg.Shader)
	}

	data := obj.AttributeData()
	vao, err := r.dev.CreateVertexArray(program, data)
	if err != nil {
		return nil, err
	}

	return &batch{
		vao:         vao,
		program:     program,
		world:       obj.Transform(),
		center:      obj.WorldCenter(),
		cfg:         cfg,
		vertexCount: int32(data.VertexCount()),
	}, nil
}

// Sync uploads the scene if it changed since the last call and paints it.
// It must be the only caller of s.Paint.
func (r *Renderer) Sync(s *Scene, view View) {
	if snap, ok := s.Paint(); ok {
		_ = r.Update(snap)
	}
	r.Paint(view)
}

// Paint draws the uploaded objects from the view.
func (r *Renderer) Paint(view View) {
	if r.programs == nil {
		return
	}

	u := FrameUniforms{
		ViewProj:       view.ViewProj(),
		CameraPosition: view.Position(),
		OverrideColors: r.settings.OverrideColors,
		Preview:        r.settings.Preview,
		SkyUp:          r.settings.SkyUp,
		SkyDown:        r.settings.SkyDown,
	}

	r.dev.BeginFrame()

	var current uint32
	blending := false
	for _, i := range drawOrder(r.batches, u.CameraPosition) {
		b := r.batches[i]
		if b.vertexCount == 0 {
			continue
		}
		if b.translucent() && !blending {
			r.dev.SetTranslucent(true)
			blending = true
		}
		if b.program != current {
			r.dev.UseProgram(b.program, u)
			current = b.program
		}
		r.dev.Draw(b.vao, b.world, b.cfg, b.vertexCount)
	}
	if blending {
		r.dev.SetTranslucent(false)
	}
}

// LastError returns the error of the most recent failed Update, or nil once
// an Update succeeds.
func (r *Renderer) LastError() error { return r.lastErr }

// ObjectCount returns the number of uploaded objects.
func (r *Renderer) ObjectCount() int { return len(r.batches) }

// Destroy releases every device object. It must run while the device is
// still usable. Calling it again is a no-op.
func (r *Renderer) Destroy() {
	if r.programs == nil {
		return
	}
	r.release(r.batches)
	r.batches = nil
	r.deletePrograms()
	r.programs = nil
}

func (r *Renderer) release(batches []*batch) {
	for _, b := range batches {
		r.dev.DeleteVertexArray(b.vao)
	}
}

func (r *Renderer) deletePrograms() {
	for _, s := range geometry.Shaders {
		if p, ok := r.programs[s]; ok {
			r.dev.DeleteProgram(p)
			delete(r.programs, s)
		}
	}
}
