// Package geometry is the renderer-agnostic geometry model: flat-shaded
// meshes, line lists and the attribute buffers they flatten into.
package geometry

// Color4 is a linear RGBA color with components in 0..1.
type Color4 struct {
	R, G, B, A float32
}

// Named colors.
var (
	White = Color4{1, 1, 1, 1}
	Black = Color4{0, 0, 0, 1}
	Red   = Color4{1, 0, 0, 1}
	Green = Color4{0, 1, 0, 1}
	Blue  = Color4{0, 0, 1, 1}
)

// RGBA builds a color from its components.
func RGBA(r, g, b, a float32) Color4 {
	return Color4{r, g, b, a}
}

// Grey returns an opaque grey of the given level.
func Grey(level float32) Color4 {
	return Color4{level, level, level, 1}
}

// ColorFromBytes normalizes an 8-bit RGBA color.
func ColorFromBytes(c [4]uint8) Color4 {
	return Color4{
		R: float32(c[0]) / 255,
		G: float32(c[1]) / 255,
		B: float32(c[2]) / 255,
		A: float32(c[3]) / 255,
	}
}

// Array returns the components in RGBA order.
func (c Color4) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// PaintReferences are the vertex colors that mark the three paintable areas
// of a block.
var PaintReferences = [3]Color4{
	{1, 0.494, 0, 1},
	{0.608, 0.494, 0, 1},
	{0.216, 0.494, 0, 1},
}

// nearColor is the squared RGB distance under which two colors match.
const nearColor = 0.01

// ApplyOverride returns the color a basic-material vertex shows. In preview
// mode, vertices matching a paint reference take the override color of that
// slot; plain white vertices take the first slot. Outside preview mode c is
// returned unchanged.
func ApplyOverride(c Color4, preview bool, overrides [3]Color4) Color4 {
	if !preview {
		return c
	}
	if c.rgbDistanceSq(White) < nearColor {
		return overrides[0]
	}
	for i, ref := range PaintReferences {
		if c.rgbDistanceSq(ref) < nearColor {
			return overrides[i]
		}
	}
	return c
}

func (c Color4) rgbDistanceSq(o Color4) float32 {
	dr, dg, db := c.R-o.R, c.G-o.G, c.B-o.B
	return dr*dr + dg*dg + db*db
}
