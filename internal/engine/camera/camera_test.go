package camera

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/blockview/pkg/math"
)

const eps = 1e-4

func near(a, b math.Vec3) bool {
	return abs(a.X-b.X) < eps && abs(a.Y-b.Y) < eps && abs(a.Z-b.Z) < eps
}

func TestNewOrbitCamera(t *testing.T) {
	c := NewOrbitCamera()

	if c.Position() != (math.Vec3{Z: 1}) {
		t.Errorf("Position() = %v, want (0, 0, 1)", c.Position())
	}
	if c.Distance() != 1 {
		t.Errorf("Distance() = %v, want 1", c.Distance())
	}
	if !near(c.Right(), math.Vec3{X: 1}) {
		t.Errorf("Right() = %v, want (1, 0, 0)", c.Right())
	}

	want := math.LookAt(math.Vec3{Z: 1}, math.Vec3{}, math.UnitY)
	if c.ViewMatrix() != want {
		t.Errorf("ViewMatrix() = %v, want %v", c.ViewMatrix(), want)
	}

	// The origin is straight ahead: it projects to the center of clip space.
	clip := c.ViewProj().MulVec4(math.Vec4{0, 0, 0, 1})
	if abs(clip[0]) > eps || abs(clip[1]) > eps || clip[3] <= 0 {
		t.Errorf("origin projects to %v", clip)
	}
}

func TestControl_Rotate(t *testing.T) {
	tests := []struct {
		name string
		drag math.Vec2
	}{
		{"yaw", math.Vec2{X: 100}},
		{"pitch", math.Vec2{Y: 80}},
		{"both", math.Vec2{X: -37, Y: 120}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.Direction = c.Direction.Scale(4)
			c.Control(Input{Rotate: tt.drag})

			if d := c.Distance(); abs(d-4) > eps {
				t.Errorf("distance changed to %v", d)
			}
			if d := c.Direction.Normalize().Dot(c.Up); abs(d) > eps {
				t.Errorf("up not perpendicular to direction: dot = %v", d)
			}
			if c.Center != (math.Vec3{}) {
				t.Errorf("rotation moved the center to %v", c.Center)
			}
		})
	}
}

func TestControl_YawAroundWorldUp(t *testing.T) {
	c := NewOrbitCamera()
	// -RotateSpeed * drag = pi/2
	c.Control(Input{Rotate: math.Vec2{X: float32(-gomath.Pi / 2 / 0.005)}})

	if !near(c.Direction, math.Vec3{X: -1}) {
		t.Errorf("Direction = %v, want (-1, 0, 0)", c.Direction)
	}
	if !near(c.Up, math.UnitY) {
		t.Errorf("Up = %v, want (0, 1, 0)", c.Up)
	}
}

func TestControl_PanScalesWithDistance(t *testing.T) {
	drag := math.Vec2{X: 10, Y: 20}

	c1 := NewOrbitCamera()
	c1.Control(Input{Pan: drag})

	c2 := NewOrbitCamera()
	c2.Direction = c2.Direction.Scale(10)
	c2.Control(Input{Pan: drag})

	// Right is +X, so a positive X drag moves the center left.
	if !near(c1.Center, math.Vec3{X: -0.01, Y: 0.02}) {
		t.Errorf("Center = %v, want (-0.01, 0.02, 0)", c1.Center)
	}
	if !near(c2.Center, c1.Center.Scale(10)) {
		t.Errorf("pan at distance 10 = %v, want %v", c2.Center, c1.Center.Scale(10))
	}
}

func TestControl_Wheel(t *testing.T) {
	tests := []struct {
		wheel float32
		want  float32
	}{
		{1, 0.9},
		{-1, 1.1},
		{0, 1},
		{50, minZoomFactor},
	}

	for _, tt := range tests {
		c := NewOrbitCamera()
		c.Control(Input{Wheel: tt.wheel})
		if d := c.Distance(); abs(d-tt.want) > eps {
			t.Errorf("wheel %v: distance = %v, want %v", tt.wheel, d, tt.want)
		}
		if !near(c.Direction.Normalize(), math.Vec3{Z: -1}) {
			t.Errorf("wheel %v: direction turned to %v", tt.wheel, c.Direction)
		}
	}
}

func TestOrthogonalizeUp(t *testing.T) {
	tests := []struct {
		name string
		dir  math.Vec3
		up   math.Vec3
	}{
		{"skewed", math.Vec3{Z: -2}, math.Vec3{Y: 1, Z: 0.5}},
		{"parallel", math.Vec3{Y: -3}, math.UnitY},
		{"unnormalized", math.Vec3{X: 1, Z: -1}, math.Vec3{Y: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewOrbitCamera()
			c.Direction, c.Up = tt.dir, tt.up
			c.OrthogonalizeUp()

			if abs(c.Up.Length()-1) > eps {
				t.Errorf("|Up| = %v, want 1", c.Up.Length())
			}
			if d := c.Up.Dot(c.Direction.Normalize()); abs(d) > eps {
				t.Errorf("Up·Direction = %v, want 0", d)
			}
		})
	}
}

func TestLookFrom(t *testing.T) {
	c := NewOrbitCamera()
	c.Center = math.Vec3{X: 1}
	c.LookFrom(0, float32(gomath.Pi/2)-0.01, 5)

	if d := c.Distance(); abs(d-5) > eps {
		t.Errorf("Distance() = %v, want 5", d)
	}
	if p := c.Position(); p.Y < 4.9 {
		t.Errorf("Position() = %v, want high above center", p)
	}
	if d := c.Up.Dot(c.Direction.Normalize()); abs(d) > eps {
		t.Errorf("Up not orthogonal: %v", d)
	}
}

func TestFitBounds(t *testing.T) {
	c := NewOrbitCamera()
	c.FitBounds(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 3, Y: 1, Z: 1})

	if c.Center != (math.Vec3{X: 1}) {
		t.Errorf("Center = %v, want (1, 0, 0)", c.Center)
	}
	radius := float32(gomath.Sqrt(24)) / 2
	if c.Distance() <= radius {
		t.Errorf("Distance() = %v, inside the bounding sphere (%v)", c.Distance(), radius)
	}
	if !near(c.Direction.Normalize(), math.Vec3{Z: -1}) {
		t.Errorf("direction turned to %v", c.Direction)
	}

	before := *c
	c.FitBounds(math.Vec3{X: 2}, math.Vec3{X: 2})
	if c.Direction != before.Direction {
		t.Error("empty bounds changed the distance")
	}
}

func TestSetAspect(t *testing.T) {
	c := NewOrbitCamera()
	c.SetAspect(1600, 900)
	if abs(c.Aspect-16.0/9) > eps {
		t.Errorf("Aspect = %v", c.Aspect)
	}
	c.SetAspect(0, 900)
	if abs(c.Aspect-16.0/9) > eps {
		t.Error("zero width changed the aspect")
	}
}
