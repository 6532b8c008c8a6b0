package geometry

import (
	gomath "math"

	"github.com/Faultbox/blockview/pkg/math"
)

// RegularPolygonYZ builds a regular n-gon in the plane x = center.X from
// left-handed coordinates. With inner > 0 it builds a ring between inner and
// radius instead of a filled polygon. Corner i sits at angle
// 2*pi*i/n + offset, measured from +Z towards +Y.
func RegularPolygonYZ(center math.Vec3, n int, radius, inner, offset float32, color Color4) *Mesh {
	if n < 3 {
		return NewMesh(nil, nil)
	}
	ring := inner > 0

	positions := make([]math.Vec3, 0, 2*n)
	for i := 0; i < n; i++ {
		theta := 2*gomath.Pi/float64(n)*float64(i) + float64(offset)
		u := math.Vec3{Y: float32(gomath.Sin(theta)), Z: float32(gomath.Cos(theta))}
		positions = append(positions, center.Add(u.Scale(radius)))
		if ring {
			positions = append(positions, center.Add(u.Scale(inner)))
		}
	}

	if !ring {
		return NewSingleColorMeshLH(positions, FanTriangles(n), color)
	}

	triangles := make([]Triangle, 0, 2*n)
	for i := 0; i < n; i++ {
		i0 := 2 * i
		i1 := i0 + 1
		i2 := (i0 + 2) % (2 * n)
		i3 := i2 + 1
		triangles = append(triangles, Triangle{i0, i2, i3}, Triangle{i0, i3, i1})
	}
	return NewSingleColorMeshLH(positions, triangles, color)
}
