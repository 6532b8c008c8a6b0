// Package camera provides the orbit camera used by the block viewport.
package camera

import (
	gomath "math"

	"github.com/Faultbox/blockview/pkg/math"
)

// Input is one frame of pointer input mapped to camera actions.
type Input struct {
	// Rotate is the drag motion of the rotate button, in pixels.
	Rotate math.Vec2
	// Pan is the drag motion of the pan button, in pixels.
	Pan math.Vec2
	// Wheel is the scroll amount, positive away from the user.
	Wheel float32
}

// minZoomFactor keeps a large wheel step from flipping the direction.
const minZoomFactor = 0.1

// OrbitCamera looks at Center from Center-Direction. The length of
// Direction is the orbit distance.
type OrbitCamera struct {
	Center    math.Vec3
	Direction math.Vec3
	Up        math.Vec3

	FovY   float32 // radians
	Aspect float32
	Near   float32
	Far    float32

	// Sensitivity
	RotateSpeed float32 // radians per pixel
	PanSpeed    float32 // world units per pixel per unit of distance
	ZoomSpeed   float32 // distance fraction per wheel step
}

// NewOrbitCamera creates a camera one unit in front of the origin.
func NewOrbitCamera() *OrbitCamera {
	c := &OrbitCamera{}
	c.Reset()
	return c
}

// Reset restores the default view and sensitivities.
func (c *OrbitCamera) Reset() {
	*c = OrbitCamera{
		Direction:   math.Vec3{Z: -1},
		Up:          math.UnitY,
		FovY:        float32(60 * gomath.Pi / 180),
		Aspect:      1,
		Near:        0.01,
		Far:         100,
		RotateSpeed: 0.005,
		PanSpeed:    0.001,
		ZoomSpeed:   0.1,
	}
}

// Position returns the eye position.
func (c *OrbitCamera) Position() math.Vec3 {
	return c.Center.Sub(c.Direction)
}

// Distance returns the distance from the eye to the center.
func (c *OrbitCamera) Distance() float32 {
	return c.Direction.Length()
}

// Right returns the unit vector to the right of the view.
func (c *OrbitCamera) Right() math.Vec3 {
	return c.Direction.Cross(c.Up).Normalize()
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, c.Up)
}

// ProjectionMatrix returns the perspective projection.
func (c *OrbitCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

// ViewProj returns projection * view.
func (c *OrbitCamera) ViewProj() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

// SetAspect sets the aspect ratio from a viewport size. Empty viewports are
// ignored.
func (c *OrbitCamera) SetAspect(width, height int) {
	if width > 0 && height > 0 {
		c.Aspect = float32(width) / float32(height)
	}
}

// Control applies one frame of input. Rotation yaws around world up and
// pitches around the camera's right axis, turning Direction and Up together.
// Panning moves Center in the view plane, scaled by distance so it tracks
// the pointer at any zoom. The wheel scales the distance.
func (c *OrbitCamera) Control(in Input) {
	if !in.Rotate.IsZero() {
		motion := in.Rotate.Scale(-c.RotateSpeed)
		q := math.QuatRotationY(motion.X).Mul(math.QuatFromAxisAngle(c.Right(), motion.Y))
		c.Direction = q.Rotate(c.Direction)
		c.Up = q.Rotate(c.Up)
	}

	if !in.Pan.IsZero() {
		motion := in.Pan.Scale(c.PanSpeed * c.Direction.Length())
		c.Center = c.Center.
			Add(c.Right().Scale(-motion.X)).
			Add(c.Up.Scale(motion.Y))
	}

	if in.Wheel != 0 {
		factor := 1 - c.ZoomSpeed*in.Wheel
		if factor < minZoomFactor {
			factor = minZoomFactor
		}
		c.Direction = c.Direction.Scale(factor)
	}
}

// OrthogonalizeUp makes Up a unit vector perpendicular to Direction. Call it
// after setting Direction or Up directly. When Up is parallel to Direction
// the world axis least aligned with Direction is used instead.
func (c *OrbitCamera) OrthogonalizeUp() {
	dir := c.Direction.Normalize()
	if dir == (math.Vec3{}) {
		return
	}

	up := c.Up.Sub(dir.Scale(c.Up.Dot(dir)))
	if up.Length() < 1e-6 {
		fallback := math.UnitY
		if abs(dir.Y) > 0.9 {
			fallback = math.UnitZ
		}
		up = fallback.Sub(dir.Scale(fallback.Dot(dir)))
	}
	c.Up = up.Normalize()
}

// LookFrom places the eye at a yaw and pitch (radians) around Center, at the
// given distance, with world up.
func (c *OrbitCamera) LookFrom(yaw, pitch, distance float32) {
	cp := float32(gomath.Cos(float64(pitch)))
	offset := math.Vec3{
		X: distance * cp * float32(gomath.Sin(float64(yaw))),
		Y: distance * float32(gomath.Sin(float64(pitch))),
		Z: distance * cp * float32(gomath.Cos(float64(yaw))),
	}
	c.Direction = offset.Neg()
	c.Up = math.UnitY
	c.OrthogonalizeUp()
}

// FitBounds centers the camera on a box and backs off along the current
// direction until the box's bounding sphere fits the vertical field of
// view. Far is pushed out if the box would be clipped.
func (c *OrbitCamera) FitBounds(lo, hi math.Vec3) {
	c.Center = lo.Add(hi).Scale(0.5)
	radius := hi.Sub(lo).Length() / 2
	if radius <= 0 {
		return
	}

	distance := radius / float32(gomath.Sin(float64(c.FovY)/2)) * 1.1
	dir := c.Direction.Normalize()
	if dir == (math.Vec3{}) {
		dir = math.Vec3{Z: -1}
	}
	c.Direction = dir.Scale(distance)

	if need := distance + 2*radius; c.Far < need {
		c.Far = need
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
