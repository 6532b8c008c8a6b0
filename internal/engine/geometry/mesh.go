package geometry

import (
	"github.com/Faultbox/blockview/pkg/math"
)

// Drawable is any geometry an object can carry. The set is closed: *Mesh and
// *Line.
type Drawable interface {
	AttributeData() AttributeData
	DrawConfig() DrawConfig
	// Center is the local, untransformed center.
	Center() math.Vec3
	drawable()
}

// Vertex is a mesh vertex.
type Vertex struct {
	Position math.Vec3
	Color    Color4
	Normal   math.Vec3
}

// Triangle holds three indices into the owning mesh's vertex list.
type Triangle [3]int

// ColorGroup is a set of triangles sharing one color.
type ColorGroup struct {
	Triangles []Triangle
	Color     Color4
}

// Mesh is an immutable triangle mesh. Glass is the only mutation.
type Mesh struct {
	vertices  []Vertex
	triangles []Triangle
	material  Material
	center    math.Vec3
}

// NewMesh creates a basic-material mesh. Every triangle index must be below
// len(vertices). The center is the mean vertex position, or the zero vector
// when there are no vertices.
func NewMesh(vertices []Vertex, triangles []Triangle) *Mesh {
	return &Mesh{
		vertices:  vertices,
		triangles: triangles,
		material:  MaterialBasic,
		center:    meanPosition(vertices),
	}
}

// NewSingleColorMeshLH builds a flat-shaded mesh from left-handed positions.
func NewSingleColorMeshLH(positions []math.Vec3, triangles []Triangle, color Color4) *Mesh {
	return NewMultipleColorMeshLH(positions, []ColorGroup{{Triangles: triangles, Color: color}})
}

// NewMultipleColorMeshLH builds a flat-shaded mesh from a shared pool of
// left-handed positions. Z is negated, and each triangle gets its own three
// vertices carrying the face normal cross(p1-p0, p2-p0).
func NewMultipleColorMeshLH(positions []math.Vec3, groups []ColorGroup) *Mesh {
	var n int
	for _, g := range groups {
		n += len(g.Triangles)
	}

	vertices := make([]Vertex, 0, 3*n)
	triangles := make([]Triangle, 0, n)
	for _, g := range groups {
		for _, tri := range g.Triangles {
			p0 := positions[tri[0]].FlipZ()
			p1 := positions[tri[1]].FlipZ()
			p2 := positions[tri[2]].FlipZ()
			normal := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()

			base := len(vertices)
			vertices = append(vertices,
				Vertex{Position: p0, Color: g.Color, Normal: normal},
				Vertex{Position: p1, Color: g.Color, Normal: normal},
				Vertex{Position: p2, Color: g.Color, Normal: normal},
			)
			triangles = append(triangles, Triangle{base, base + 1, base + 2})
		}
	}
	return NewMesh(vertices, triangles)
}

// Combine concatenates meshes into one, rebasing each mesh's indices by the
// number of vertices before it. The result is glass only when every input
// is glass.
func Combine(meshes ...*Mesh) *Mesh {
	var nv, nt int
	for _, m := range meshes {
		nv += len(m.vertices)
		nt += len(m.triangles)
	}

	vertices := make([]Vertex, 0, nv)
	triangles := make([]Triangle, 0, nt)
	glass := len(meshes) > 0
	for _, m := range meshes {
		base := len(vertices)
		vertices = append(vertices, m.vertices...)
		for _, tri := range m.triangles {
			triangles = append(triangles, Triangle{tri[0] + base, tri[1] + base, tri[2] + base})
		}
		glass = glass && m.material == MaterialGlass
	}

	out := NewMesh(vertices, triangles)
	if glass {
		out.Glass()
	}
	return out
}

// Glass switches the material to glass. The cached center is kept.
func (m *Mesh) Glass() *Mesh {
	m.material = MaterialGlass
	return m
}

// Material returns the mesh material.
func (m *Mesh) Material() Material { return m.material }

// Center returns the cached mean vertex position.
func (m *Mesh) Center() math.Vec3 { return m.center }

// Vertices returns the vertex list. Callers must not modify it.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Triangles returns the triangle list. Callers must not modify it.
func (m *Mesh) Triangles() []Triangle { return m.triangles }

// Bounds returns the axis-aligned bounds of the vertex positions.
func (m *Mesh) Bounds() (lo, hi math.Vec3, ok bool) {
	if len(m.vertices) == 0 {
		return lo, hi, false
	}
	lo, hi = m.vertices[0].Position, m.vertices[0].Position
	for _, v := range m.vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi, true
}

// AttributeData flattens the mesh into three equal-length buffers in
// per-triangle vertex order.
func (m *Mesh) AttributeData() AttributeData {
	n := 3 * len(m.triangles)
	d := AttributeData{
		Positions: make([]float32, 0, 3*n),
		Colors:    make([]float32, 0, 4*n),
		Normals:   make([]float32, 0, 3*n),
	}
	for _, tri := range m.triangles {
		for _, i := range tri {
			v := &m.vertices[i]
			d.Positions = append(d.Positions, v.Position.X, v.Position.Y, v.Position.Z)
			d.Colors = append(d.Colors, v.Color.R, v.Color.G, v.Color.B, v.Color.A)
			d.Normals = append(d.Normals, v.Normal.X, v.Normal.Y, v.Normal.Z)
		}
	}
	return d
}

// DrawConfig returns a triangle-list config for the mesh material.
func (m *Mesh) DrawConfig() DrawConfig {
	shader := ShaderBasic
	if m.material == MaterialGlass {
		shader = ShaderGlass
	}
	return DrawConfig{Shader: shader, Mode: ModeTriangles}
}

func (m *Mesh) drawable() {}

// FanTriangles returns the fan triangulation [0, i, i+1] of a convex polygon
// with n corners.
func FanTriangles(n int) []Triangle {
	if n < 3 {
		return nil
	}
	tris := make([]Triangle, 0, n-2)
	for i := 1; i < n-1; i++ {
		tris = append(tris, Triangle{0, i, i + 1})
	}
	return tris
}

func meanPosition(vertices []Vertex) math.Vec3 {
	if len(vertices) == 0 {
		return math.Vec3{}
	}
	var sum math.Vec3
	for i := range vertices {
		sum = sum.Add(vertices[i].Position)
	}
	return sum.Scale(1 / float32(len(vertices)))
}
