package geometry

import (
	"github.com/Faultbox/blockview/pkg/math"
)

// LineVertex is a line endpoint.
type LineVertex struct {
	Position math.Vec3
	Color    Color4
}

// Line is a list of disjoint segments: vertices 2i and 2i+1 form segment i.
type Line struct {
	vertices []LineVertex
	width    float32
	center   math.Vec3
}

// NewLine creates a line from segment endpoint pairs. A trailing unpaired
// vertex is dropped.
func NewLine(vertices []LineVertex, width float32) *Line {
	vertices = vertices[:len(vertices)&^1]
	var sum math.Vec3
	for _, v := range vertices {
		sum = sum.Add(v.Position)
	}
	var center math.Vec3
	if len(vertices) > 0 {
		center = sum.Scale(1 / float32(len(vertices)))
	}
	return &Line{vertices: vertices, width: width, center: center}
}

// NewPolylineLH builds a single-color polyline from left-handed positions,
// negating Z. A loop also joins the last point back to the first.
func NewPolylineLH(positions []math.Vec3, color Color4, width float32, loop bool) *Line {
	n := len(positions)
	segments := n - 1
	if loop {
		segments = n
	}
	if n < 2 {
		segments = 0
	}

	vertices := make([]LineVertex, 0, 2*segments)
	for i := 0; i < segments; i++ {
		vertices = append(vertices,
			LineVertex{Position: positions[i].FlipZ(), Color: color},
			LineVertex{Position: positions[(i+1)%n].FlipZ(), Color: color},
		)
	}
	return NewLine(vertices, width)
}

// NewBoxLine builds the 12 edges of an axis-aligned box.
func NewBoxLine(lo, hi math.Vec3, color Color4, width float32) *Line {
	corners := BoxEdges(lo, hi)
	vertices := make([]LineVertex, len(corners))
	for i, p := range corners {
		vertices[i] = LineVertex{Position: p, Color: color}
	}
	return NewLine(vertices, width)
}

// BoxEdges returns the 24 endpoints of a box wireframe (12 edges).
func BoxEdges(lo, hi math.Vec3) []math.Vec3 {
	c := func(x, y, z float32) math.Vec3 { return math.Vec3{X: x, Y: y, Z: z} }
	return []math.Vec3{
		// bottom
		c(lo.X, lo.Y, lo.Z), c(hi.X, lo.Y, lo.Z),
		c(hi.X, lo.Y, lo.Z), c(hi.X, lo.Y, hi.Z),
		c(hi.X, lo.Y, hi.Z), c(lo.X, lo.Y, hi.Z),
		c(lo.X, lo.Y, hi.Z), c(lo.X, lo.Y, lo.Z),
		// top
		c(lo.X, hi.Y, lo.Z), c(hi.X, hi.Y, lo.Z),
		c(hi.X, hi.Y, lo.Z), c(hi.X, hi.Y, hi.Z),
		c(hi.X, hi.Y, hi.Z), c(lo.X, hi.Y, hi.Z),
		c(lo.X, hi.Y, hi.Z), c(lo.X, hi.Y, lo.Z),
		// verticals
		c(lo.X, lo.Y, lo.Z), c(lo.X, hi.Y, lo.Z),
		c(hi.X, lo.Y, lo.Z), c(hi.X, hi.Y, lo.Z),
		c(hi.X, lo.Y, hi.Z), c(hi.X, hi.Y, hi.Z),
		c(lo.X, lo.Y, hi.Z), c(lo.X, hi.Y, hi.Z),
	}
}

// Vertices returns the segment endpoints. Callers must not modify them.
func (l *Line) Vertices() []LineVertex { return l.vertices }

// Width returns the stroke width.
func (l *Line) Width() float32 { return l.width }

// Center returns the mean endpoint position.
func (l *Line) Center() math.Vec3 { return l.center }

// AttributeData flattens the endpoints into position and color buffers.
// Lines carry no normals.
func (l *Line) AttributeData() AttributeData {
	d := AttributeData{
		Positions: make([]float32, 0, 3*len(l.vertices)),
		Colors:    make([]float32, 0, 4*len(l.vertices)),
	}
	for _, v := range l.vertices {
		d.Positions = append(d.Positions, v.Position.X, v.Position.Y, v.Position.Z)
		d.Colors = append(d.Colors, v.Color.R, v.Color.G, v.Color.B, v.Color.A)
	}
	return d
}

// DrawConfig returns a line-list config with the stroke width.
func (l *Line) DrawConfig() DrawConfig {
	return DrawConfig{Shader: ShaderLine, Mode: ModeLines, LineWidth: l.width}
}

func (l *Line) drawable() {}
