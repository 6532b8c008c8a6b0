package geometry

// Vertex attribute names shared with the shader programs.
const (
	AttribPosition = "vertex_position_in"
	AttribColor    = "vertex_color_in"
	AttribNormal   = "vertex_normal_in"
)

// Uniform names shared with the shader programs.
const (
	UniformViewProj       = "mat_view_proj"
	UniformWorld          = "mat_world"
	UniformOverrideColor1 = "override_color_1"
	UniformOverrideColor2 = "override_color_2"
	UniformOverrideColor3 = "override_color_3"
	UniformIsPreview      = "is_preview"
	UniformCameraPosition = "camera_position"
	UniformSkyColorUp     = "sky_color_up"
	UniformSkyColorDown   = "sky_color_down"
)

// AttributeData holds flattened per-vertex buffers in draw order. A nil
// buffer means the attribute is not provided.
type AttributeData struct {
	Positions []float32 // 3 per vertex
	Colors    []float32 // 4 per vertex
	Normals   []float32 // 3 per vertex
}

// Attribute is one named buffer with its component count.
type Attribute struct {
	Name string
	Size int32
	Data []float32
}

// VertexCount returns the number of vertices described by the buffers.
func (d AttributeData) VertexCount() int {
	return len(d.Positions) / 3
}

// Attributes returns the provided buffers in binding order.
func (d AttributeData) Attributes() []Attribute {
	attrs := make([]Attribute, 0, 3)
	if d.Positions != nil {
		attrs = append(attrs, Attribute{AttribPosition, 3, d.Positions})
	}
	if d.Colors != nil {
		attrs = append(attrs, Attribute{AttribColor, 4, d.Colors})
	}
	if d.Normals != nil {
		attrs = append(attrs, Attribute{AttribNormal, 3, d.Normals})
	}
	return attrs
}
