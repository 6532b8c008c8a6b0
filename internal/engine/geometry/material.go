package geometry

import "fmt"

// Material is the surface material of a mesh.
type Material uint8

const (
	MaterialBasic Material = iota
	MaterialGlass
)

// String returns a human-readable material name.
func (m Material) String() string {
	switch m {
	case MaterialBasic:
		return "Basic"
	case MaterialGlass:
		return "Glass"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// Shader selects the program an object is drawn with.
type Shader uint8

const (
	ShaderBasic Shader = iota
	ShaderGlass
	ShaderLine
)

// Shaders lists every shader kind, in program creation order.
var Shaders = []Shader{ShaderBasic, ShaderGlass, ShaderLine}

// Translucent reports whether objects using the shader are blended and must
// be drawn after opaque geometry, back to front.
func (s Shader) Translucent() bool {
	return s == ShaderGlass
}

// String returns a human-readable shader name.
func (s Shader) String() string {
	switch s {
	case ShaderBasic:
		return "basic"
	case ShaderGlass:
		return "glass"
	case ShaderLine:
		return "line"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// DrawMode is the primitive topology of an attribute buffer.
type DrawMode uint8

const (
	ModeTriangles DrawMode = iota
	ModeLines
)

// DrawConfig describes how an object is drawn.
type DrawConfig struct {
	Shader    Shader
	Mode      DrawMode
	LineWidth float32 // 0 when the mode has no stroke width
}
