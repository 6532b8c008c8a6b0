package raster

import (
	gomath "math"

	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/pkg/math"
)

// lightDir is the fixed directional light shared with the GLSL programs.
var lightDir = math.Vec3{X: 0.5, Y: -1, Z: 0.2}

// basicShade is the basic program: paint override then a fixed directional
// light, light = dot(n, -lightDir)*0.4 + 0.7.
func basicShade(c geometry.Color4, n math.Vec3, u *scene.FrameUniforms) geometry.Color4 {
	c = geometry.ApplyOverride(c, u.Preview, u.OverrideColors)
	light := n.Dot(lightDir.Neg())*0.4 + 0.7
	return geometry.Color4{R: c.R * light, G: c.G * light, B: c.B * light, A: c.A}
}

// glassShade is the glass program: hemispherical sky ambient and a rim term
// that makes grazing views more opaque and closer to the sky color.
func glassShade(c geometry.Color4, n, pos math.Vec3, u *scene.FrameUniforms) geometry.Color4 {
	n = n.Normalize()
	hemi := lerp(u.SkyDown, u.SkyUp, n.Y*0.5+0.5)

	view := u.CameraPosition.Sub(pos).Normalize()
	facing := n.Dot(view)
	if facing < 0 {
		facing = -facing
	}
	rim := float32(gomath.Pow(float64(1-facing), 3))

	base := geometry.Color4{R: c.R * hemi.R, G: c.G * hemi.G, B: c.B * hemi.B}
	out := lerp(base, u.SkyUp, rim*0.5)
	out.A = clamp01(c.A + rim*(1-c.A))
	return out
}

// lerp mixes the RGB of a and b. Alpha is left at zero.
func lerp(a, b geometry.Color4, t float32) geometry.Color4 {
	t = clamp01(t)
	return geometry.Color4{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
	}
}
