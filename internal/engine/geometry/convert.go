package geometry

import (
	"github.com/Faultbox/blockview/pkg/formats"
	"github.com/Faultbox/blockview/pkg/math"
)

// FromMeshFile converts each submesh into its own mesh. Triangles are
// exploded into per-triangle vertices and Z is negated on positions and
// normals. Glass submeshes yield glass meshes.
func FromMeshFile(f *formats.MeshFile) []*Mesh {
	meshes := make([]*Mesh, 0, len(f.Submeshes))
	for i := range f.Submeshes {
		meshes = append(meshes, FromSubmesh(f, i))
	}
	return meshes
}

// FromSubmesh converts submesh i of f.
func FromSubmesh(f *formats.MeshFile, i int) *Mesh {
	s := &f.Submeshes[i]
	first, end := s.TriangleRange()

	vertices := make([]Vertex, 0, 3*(end-first))
	triangles := make([]Triangle, 0, end-first)
	for _, tri := range f.Triangles[first:end] {
		base := len(vertices)
		for _, idx := range tri.Indices {
			v := &f.Vertices[idx]
			vertices = append(vertices, Vertex{
				Position: math.Vec3FromArray(v.Position).FlipZ(),
				Color:    ColorFromBytes(v.Color),
				Normal:   math.Vec3FromArray(v.Normal).FlipZ(),
			})
		}
		triangles = append(triangles, Triangle{base, base + 1, base + 2})
	}

	m := NewMesh(vertices, triangles)
	if s.IsGlass() {
		m.Glass()
	}
	return m
}

// SubmeshBounds returns the submesh bounding box converted to right-handed
// coordinates.
func SubmeshBounds(s *formats.Submesh) (lo, hi math.Vec3) {
	a := math.Vec3FromArray(s.BoundsMin).FlipZ()
	b := math.Vec3FromArray(s.BoundsMax).FlipZ()
	return a.Min(b), a.Max(b)
}
