// Package scene holds the set of objects to draw, the change-tracking
// handshake between the scene builder and the renderer, and the renderer
// that turns a scene into device calls with a fixed draw-order policy.
package scene

import (
	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/pkg/math"
)

// Object places one drawable in the world.
type Object struct {
	content   geometry.Drawable
	transform math.Mat4
}

// NewObject wraps a drawable with the identity transform.
func NewObject(content geometry.Drawable) *Object {
	return &Object{content: content, transform: math.Identity()}
}

// NewObjectAt wraps a drawable with a model matrix.
func NewObjectAt(content geometry.Drawable, transform math.Mat4) *Object {
	return &Object{content: content, transform: transform}
}

// Content returns the wrapped drawable.
func (o *Object) Content() geometry.Drawable { return o.content }

// Transform returns the model matrix.
func (o *Object) Transform() math.Mat4 { return o.transform }

// AttributeData returns the flattened vertex buffers of the content.
func (o *Object) AttributeData() geometry.AttributeData { return o.content.AttributeData() }

// DrawConfig returns the content's draw config.
func (o *Object) DrawConfig() geometry.DrawConfig { return o.content.DrawConfig() }

// Center returns the content's local center.
func (o *Object) Center() math.Vec3 { return o.content.Center() }

// WorldCenter returns the local center moved by the model matrix.
func (o *Object) WorldCenter() math.Vec3 {
	return o.transform.TransformPoint(o.content.Center())
}

// Snapshot is the object list handed from a scene to the renderer. It is a
// copy; later scene mutations do not affect it.
type Snapshot []*Object

// Scene is an ordered list of objects with a dirty flag. A Scene is owned by
// one goroutine.
type Scene struct {
	objects []*Object
	changed bool
}

// New returns an empty, unchanged scene.
func New() *Scene {
	return &Scene{}
}

// Add appends objects and marks the scene changed.
func (s *Scene) Add(objs ...*Object) {
	s.objects = append(s.objects, objs...)
	s.changed = true
}

// Clear removes every object and marks the scene changed.
func (s *Scene) Clear() {
	s.objects = nil
	s.changed = true
}

// Len returns the number of objects.
func (s *Scene) Len() int { return len(s.objects) }

// Objects returns a copy of the object list.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// Changed reports whether the scene was mutated since the last Paint.
func (s *Scene) Changed() bool { return s.changed }

// Paint consumes the dirty flag. It returns a snapshot and true exactly once
// per mutation burst, and (nil, false) until the scene changes again.
func (s *Scene) Paint() (Snapshot, bool) {
	if !s.changed {
		return nil, false
	}
	s.changed = false
	return Snapshot(s.Objects()), true
}
