package blockdef

import (
	gomath "math"

	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/pkg/formats"
	"github.com/Faultbox/blockview/pkg/math"
)

// Surface decal colors.
var (
	SurfaceGrey  = geometry.Grey(0.304987)
	SurfaceBlack = geometry.Grey(0.051269)
)

// surfaceEdgeWidth is the stroke width of decal outlines.
const surfaceEdgeWidth = 1

// SurfaceTransform places a decal: the rotation step about X, then the face
// orientation, translated to the quarter-unit voxel of the last position.
func SurfaceTransform(s *formats.DefinitionSurface) math.Mat4 {
	const halfPi = gomath.Pi / 2

	rotation := math.QuatRotationX(-halfPi * float32(s.RotationOr(0)))

	var orientation math.Quat
	switch s.OrientationOr(0) {
	case 1:
		orientation = math.QuatRotationZ(gomath.Pi)
	case 2:
		orientation = math.QuatRotationZ(halfPi)
	case 3:
		orientation = math.QuatRotationZ(-halfPi)
	case 4:
		orientation = math.QuatRotationX(-halfPi).Mul(math.QuatRotationZ(halfPi))
	case 5:
		orientation = math.QuatRotationX(halfPi).Mul(math.QuatRotationZ(halfPi))
	default:
		orientation = math.QuatIdentity()
	}

	var translation math.Vec3
	if p, ok := s.LastPosition(); ok {
		translation = math.Vec3{X: float32(p.X), Y: float32(p.Y), Z: -float32(p.Z)}.Scale(0.25)
	}

	return math.FromRotationTranslation(orientation.Mul(rotation), translation)
}

// SurfaceObjects builds the filled decal and its outline for a surface.
// Either result is nil when hidden or when the shape has no geometry of
// that kind. Unknown shapes yield nothing.
func SurfaceObjects(s *formats.DefinitionSurface, showSurface, showEdge bool) (mesh, edge *scene.Object) {
	if !showSurface && !showEdge {
		return nil, nil
	}

	transform := SurfaceTransform(s)
	shape := s.ShapeOr(0)

	var m *geometry.Mesh
	var outline []math.Vec3
	if corners, ok := SurfaceShape(shape); ok {
		if showSurface {
			m = geometry.NewSingleColorMeshLH(corners, geometry.FanTriangles(len(corners)), geometry.White)
		}
		if showEdge {
			outline = corners
		}
	} else {
		m, outline = multiColorSurface(shape, geometry.White, showSurface, showEdge)
	}

	if m != nil {
		mesh = scene.NewObjectAt(m, transform)
	}
	if outline != nil {
		edge = scene.NewObjectAt(geometry.NewPolylineLH(outline, geometry.Black, surfaceEdgeWidth, true), transform)
	}
	return mesh, edge
}

// SurfaceShape returns the left-handed corners of a single-color shape.
func SurfaceShape(shape int32) ([]math.Vec3, bool) {
	corners, ok := surfaceShapes[shape]
	if !ok {
		return nil, false
	}
	out := make([]math.Vec3, len(corners))
	for i, c := range corners {
		out[i] = math.Vec3FromArray(c)
	}
	return out, true
}

// multiColorSurface builds shape 3 (round light ring) and shapes 4 and 5
// (panels with a square or diamond inset).
func multiColorSurface(shape int32, color geometry.Color4, showSurface, showEdge bool) (*geometry.Mesh, []math.Vec3) {
	switch shape {
	case 3:
		if !showSurface {
			return nil, nil
		}
		center := math.Vec3{X: 0.125}
		offset := float32(22.5 * gomath.Pi / 180)
		outer := float32(0.0625 / gomath.Cos(22.5*gomath.Pi/180))
		inner := outer - 0.01
		return geometry.Combine(
			geometry.RegularPolygonYZ(center, 8, inner, 0, offset, SurfaceBlack),
			geometry.RegularPolygonYZ(center, 8, outer, inner, offset, color),
		), nil

	case 4, 5:
		outer := []math.Vec3{
			{X: 0.125, Y: 0.125, Z: 0.125},
			{X: 0.125, Y: 0.125, Z: -0.125},
			{X: 0.125, Y: -0.125, Z: -0.125},
			{X: 0.125, Y: -0.125, Z: 0.125},
		}

		var m *geometry.Mesh
		if showSurface {
			inset := []math.Vec3{
				{X: 0.125, Y: 0.03125, Z: 0.03125},
				{X: 0.125, Y: 0.03125, Z: -0.03125},
				{X: 0.125, Y: -0.03125, Z: -0.03125},
				{X: 0.125, Y: -0.03125, Z: 0.03125},
			}
			if shape == 5 {
				inset = []math.Vec3{
					{X: 0.125, Y: 0.041667},
					{X: 0.125, Z: -0.041667},
					{X: 0.125, Y: -0.041667},
					{X: 0.125, Z: 0.041667},
				}
			}
			positions := append(append(make([]math.Vec3, 0, 8), outer...), inset...)
			m = geometry.NewMultipleColorMeshLH(positions, []geometry.ColorGroup{
				{Triangles: panelFrame, Color: color},
				{Triangles: panelInset, Color: SurfaceGrey},
			})
		}

		var edge []math.Vec3
		if showEdge {
			edge = outer
		}
		return m, edge
	}
	return nil, nil
}

var (
	panelFrame = []geometry.Triangle{
		{0, 1, 4}, {1, 5, 4}, {1, 2, 5}, {2, 6, 5},
		{2, 3, 6}, {3, 7, 6}, {3, 0, 7}, {0, 4, 7},
	}
	panelInset = []geometry.Triangle{{4, 5, 6}, {4, 6, 7}}
)

// surfaceShapes maps single-color shape ids to polygon corners in
// left-handed block coordinates, on the +X face of a quarter-unit cell.
var surfaceShapes = map[int32][][3]float32{
	1: {{0.125, 0.125, 0.125}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	2: {{0.125, 0.125, 0.125}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}},
	6: {{-0.125, 0.125, 0.125}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {-0.125, -0.125, 0.125}},
	7: {{-0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {-0.125, -0.125, 0.125}},
	8: {{-0.125, 0.125, 0.125}, {0.125, 0.125, -0.125}, {0.125, -0.125, 0.125}},
	9: {{0.125, 0.125, 0.125}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0}},
	10: {{0.125, 0.125, 0}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}},
	11: {{0.125, 0.125, 0}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	12: {{0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0}},
	13: {{0.125, 0.125, 0.125}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0.0625}},
	14: {{0.125, 0.125, 0.0625}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0}},
	15: {{0.125, 0.125, 0}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, -0.0625}},
	16: {{0.125, 0.125, -0.0625}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}},
	17: {{0.125, 0.125, 0.0625}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	18: {{0.125, 0.125, 0}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0.0625}},
	19: {{0.125, 0.125, -0.0625}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, 0}},
	20: {{0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, -0.125, -0.0625}},
	21: {{-0.125, 0.125, 0.125}, {0.125, 0.125, 0}, {0.125, -0.125, 0}, {-0.125, -0.125, 0.125}},
	22: {{-0.125, 0.125, 0}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {-0.125, -0.125, 0}},
	23: {{-0.125, 0.125, 0.125}, {0.125, 0.125, 0.0625}, {0.125, -0.125, 0.0625}, {-0.125, -0.125, 0.125}},
	24: {{-0.125, 0.125, 0.0625}, {0.125, 0.125, 0}, {0.125, -0.125, 0}, {-0.125, -0.125, 0.0625}},
	25: {{-0.125, 0.125, 0}, {0.125, 0.125, -0.0625}, {0.125, -0.125, -0.0625}, {-0.125, -0.125, 0}},
	26: {{-0.125, 0.125, -0.0625}, {0.125, 0.125, -0.125}, {0.125, -0.125, -0.125}, {-0.125, -0.125, -0.0625}},
	27: {{-0.125, 0.125, -0.125}, {0.125, 0, -0.125}, {0.125, -0.125, 0}, {-0.125, -0.125, 0.125}},
	28: {{-0.125, 0, -0.125}, {0.125, -0.125, -0.125}, {-0.125, -0.125, 0}},
	29: {{-0.125, 0.125, -0.125}, {0.125, 0.0625, -0.125}, {0.125, -0.125, 0.0625}, {-0.125, -0.125, 0.125}},
	30: {{-0.125, 0.0625, -0.125}, {0.125, 0, -0.125}, {0.125, -0.125, 0}, {-0.125, -0.125, 0.0625}},
	31: {{-0.125, 0, -0.125}, {0.125, -0.0625, -0.125}, {0.125, -0.125, -0.0625}, {-0.125, -0.125, 0}},
	32: {{-0.125, -0.0625, -0.125}, {0.125, -0.125, -0.125}, {-0.125, -0.125, -0.0625}},
	33: {{0, 0.125, 0.125}, {-0.125, 0.125, -0.125}, {0, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	34: {{-0.125, 0.125, 0.125}, {-0.125, -0.125, -0.125}, {0, -0.125, 0.125}},
	35: {{0, 0.125, 0.125}, {-0.0625, 0.125, -0.125}, {0.0625, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	36: {{-0.0625, 0.125, 0.125}, {-0.125, 0.125, -0.125}, {0, -0.125, -0.125}, {0.0625, -0.125, 0.125}},
	37: {{-0.125, 0.125, 0.125}, {-0.125, 0, -0.125}, {-0.0625, -0.125, -0.125}, {0, -0.125, 0.125}},
	38: {{-0.125, 0, 0.125}, {-0.125, -0.125, -0.125}, {-0.0625, -0.125, 0.125}},
	39: {{0.125, 0.125, 0.125}, {0.0625, 0.125, -0.125}, {-0.0625, -0.125, -0.125}, {0, -0.125, 0.125}},
	40: {{0.0625, 0.125, 0.125}, {0, 0.125, -0.125}, {-0.125, -0.125, -0.125}, {-0.0625, -0.125, 0.125}},
	41: {{0, 0.125, 0.125}, {-0.0625, 0.125, -0.125}, {-0.125, 0, -0.125}, {-0.125, -0.125, 0.125}},
	42: {{-0.0625, 0.125, 0.125}, {-0.125, 0.125, -0.125}, {-0.125, 0, 0.125}},
	43: {{0.0625, 0.125, 0.125}, {0, 0.125, -0.125}, {0.0625, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	44: {{0, 0.125, 0.125}, {-0.0625, 0.125, -0.125}, {0, -0.125, -0.125}, {0.0625, -0.125, 0.125}},
	45: {{-0.0625, 0.125, 0.125}, {-0.125, 0.125, -0.125}, {-0.0625, -0.125, -0.125}, {0, -0.125, 0.125}},
	46: {{-0.125, 0.125, 0.125}, {-0.125, -0.125, -0.125}, {-0.0625, -0.125, 0.125}},
	47: {{-0.125, 0.125, 0.125}, {0.125, 0.125, 0}, {0.125, 0, 0.125}},
	48: {{-0.125, 0.125, 0}, {0.125, 0.125, -0.125}, {0.125, -0.125, 0.125}, {-0.125, 0, 0.125}},
	49: {{-0.125, 0.125, 0.125}, {0.125, 0.125, 0.0625}, {0.125, 0.0625, 0.125}},
	50: {{-0.125, 0.125, 0.0625}, {0.125, 0.125, 0}, {0.125, 0, 0.125}, {-0.125, 0.0625, 0.125}},
	51: {{-0.125, 0.125, 0}, {0.125, 0.125, -0.0625}, {0.125, -0.0625, 0.125}, {-0.125, 0, 0.125}},
	52: {{-0.125, 0.125, -0.0625}, {0.125, 0.125, -0.125}, {0.125, -0.125, 0.125}, {-0.125, -0.0625, 0.125}},
	53: {{0, 0.125, 0.125}, {-0.125, 0.125, -0.125}, {0, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	54: {{0.125, 0.125, 0.125}, {0, 0.125, -0.125}, {0.125, -0.125, -0.125}},
	55: {{-0.0625, 0.125, 0.125}, {-0.125, 0.125, -0.125}, {0, -0.125, -0.125}, {0.0625, -0.125, 0.125}},
	56: {{0, 0.125, 0.125}, {-0.0625, 0.125, -0.125}, {0.0625, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	57: {{0.0625, 0.125, 0.125}, {0, 0.125, -0.125}, {0.125, -0.125, -0.125}, {0.125, 0, 0.125}},
	58: {{0.125, 0.125, 0.125}, {0.0625, 0.125, -0.125}, {0.125, 0, -0.125}},
	59: {{0.0625, 0.125, 0.125}, {0, 0.125, -0.125}, {-0.125, -0.125, -0.125}, {-0.0625, -0.125, 0.125}},
	60: {{0.125, 0.125, 0.125}, {0.0625, 0.125, -0.125}, {-0.0625, -0.125, -0.125}, {0, -0.125, 0.125}},
	61: {{0.125, 0, 0.125}, {0.125, 0.125, -0.125}, {0, -0.125, -0.125}, {0.0625, -0.125, 0.125}},
	62: {{0.125, 0, -0.125}, {0.0625, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	63: {{-0.0625, 0.125, 0.125}, {-0.125, 0.125, -0.125}, {-0.0625, -0.125, -0.125}, {0, -0.125, 0.125}},
	64: {{0, 0.125, 0.125}, {-0.0625, 0.125, -0.125}, {0, -0.125, -0.125}, {0.0625, -0.125, 0.125}},
	65: {{0.0625, 0.125, 0.125}, {0, 0.125, -0.125}, {0.0625, -0.125, -0.125}, {0.125, -0.125, 0.125}},
	66: {{0.125, 0.125, 0.125}, {0.0625, 0.125, -0.125}, {0.125, -0.125, -0.125}},
}
