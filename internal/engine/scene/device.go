package scene

import (
	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/pkg/math"
)

// Device is the graphics backend the renderer drives. Handles are opaque
// and nonzero; zero means "none".
type Device interface {
	// CreateProgram builds the program for a shader kind.
	CreateProgram(shader geometry.Shader) (uint32, error)
	DeleteProgram(program uint32)

	// CreateVertexArray uploads attribute buffers bound to a program's
	// attribute locations. A missing attribute location is an error.
	CreateVertexArray(program uint32, data geometry.AttributeData) (uint32, error)
	DeleteVertexArray(vao uint32)

	// BeginFrame clears the target and resets per-frame state.
	BeginFrame()
	// SetTranslucent toggles blending with depth writes off.
	SetTranslucent(enabled bool)
	// UseProgram makes a program current and sets the frame uniforms.
	UseProgram(program uint32, u FrameUniforms)
	// Draw issues one draw call with the current program.
	Draw(vao uint32, world math.Mat4, cfg geometry.DrawConfig, vertexCount int32)
}

// FrameUniforms are the uniform values shared by every draw in a frame.
type FrameUniforms struct {
	ViewProj       math.Mat4
	CameraPosition math.Vec3
	OverrideColors [3]geometry.Color4
	Preview        bool
	SkyUp          geometry.Color4
	SkyDown        geometry.Color4
}

// View is the camera state the renderer needs.
type View interface {
	ViewProj() math.Mat4
	Position() math.Vec3
}

// Settings are the look-related renderer inputs.
type Settings struct {
	// OverrideColors replace the paint reference colors in preview mode.
	OverrideColors [3]geometry.Color4
	// Preview recolors paintable areas with OverrideColors.
	Preview bool
	SkyUp   geometry.Color4
	SkyDown geometry.Color4
}

// DefaultSettings returns preview mode with white paint and a pale sky.
func DefaultSettings() Settings {
	return Settings{
		OverrideColors: [3]geometry.Color4{geometry.White, geometry.White, geometry.White},
		Preview:        true,
		SkyUp:          geometry.RGBA(0.75, 0.8, 0.9, 1),
		SkyDown:        geometry.RGBA(0.3, 0.28, 0.25, 1),
	}
}
