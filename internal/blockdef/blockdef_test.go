package blockdef

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/pkg/formats"
	"github.com/Faultbox/blockview/pkg/math"
)

func ptr[T any](v T) *T { return &v }

func surface(shape, orientation, rotation int32, pos ...formats.DefinitionPosition) *formats.DefinitionSurface {
	return &formats.DefinitionSurface{
		Shape:       ptr(shape),
		Orientation: ptr(orientation),
		Rotation:    ptr(rotation),
		Positions:   pos,
	}
}

func near(a, b math.Vec3) bool {
	return a.Sub(b).Length() < 1e-5
}

func triangleCount(o *scene.Object) int {
	if o == nil {
		return 0
	}
	return o.AttributeData().VertexCount() / 3
}

func TestSurfaceObjects(t *testing.T) {
	tests := []struct {
		name          string
		shape         int32
		wantTriangles int
		wantEdge      bool
	}{
		{"quad", 1, 2, true},
		{"triangle", 2, 1, true},
		{"last table entry", 66, 1, true},
		{"light ring", 3, 6 + 16, false},
		{"square inset panel", 4, 10, true},
		{"diamond inset panel", 5, 10, true},
		{"unknown shape", 200, 0, false},
		{"unset shape", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, edge := SurfaceObjects(surface(tt.shape, 0, 0), true, true)
			if got := triangleCount(mesh); got != tt.wantTriangles {
				t.Errorf("triangles = %d, want %d", got, tt.wantTriangles)
			}
			if tt.wantTriangles == 0 && mesh != nil {
				t.Error("expected no mesh")
			}
			if (edge != nil) != tt.wantEdge {
				t.Errorf("edge = %v, want %v", edge != nil, tt.wantEdge)
			}
		})
	}
}

func TestSurfaceObjects_Hidden(t *testing.T) {
	tests := []struct {
		name              string
		surface, edge     bool
		wantMesh, wantEdg bool
	}{
		{"nothing", false, false, false, false},
		{"surface only", true, false, true, false},
		{"edge only", false, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, edge := SurfaceObjects(surface(1, 0, 0), tt.surface, tt.edge)
			if (mesh != nil) != tt.wantMesh || (edge != nil) != tt.wantEdg {
				t.Errorf("got mesh=%v edge=%v", mesh != nil, edge != nil)
			}
		})
	}
}

func TestSurfaceObjects_EdgeIsClosedLoop(t *testing.T) {
	_, edge := SurfaceObjects(surface(1, 0, 0), false, true)
	line := edge.Content().(*geometry.Line)
	if got := len(line.Vertices()); got != 8 {
		t.Fatalf("edge vertices = %d, want 8 (4 closed segments)", got)
	}
	if line.Vertices()[0].Color != geometry.Black {
		t.Errorf("edge color = %v, want black", line.Vertices()[0].Color)
	}
}

func TestSurfaceTransform(t *testing.T) {
	tests := []struct {
		name string
		s    *formats.DefinitionSurface
		in   math.Vec3
		want math.Vec3
	}{
		{"identity", surface(1, 0, 0), math.Vec3{X: 1}, math.Vec3{X: 1}},
		{"translation uses last position, z flipped",
			surface(1, 0, 0, formats.DefinitionPosition{X: 9, Y: 9, Z: 9}, formats.DefinitionPosition{X: 4, Z: 8}),
			math.Vec3{}, math.Vec3{X: 1, Z: -2}},
		{"orientation 1 faces -X", surface(1, 1, 0), math.Vec3{X: 1}, math.Vec3{X: -1}},
		{"orientation 2 faces +Y", surface(1, 2, 0), math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{"orientation 3 faces -Y", surface(1, 3, 0), math.Vec3{X: 1}, math.Vec3{Y: -1}},
		{"rotation turns within the face", surface(1, 0, 1), math.Vec3{Y: 1}, math.Vec3{Z: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SurfaceTransform(tt.s).TransformPoint(tt.in)
			if !near(got, tt.want) {
				t.Errorf("transform(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSurfaceShape_Table(t *testing.T) {
	for _, id := range []int32{1, 2} {
		if _, ok := SurfaceShape(id); !ok {
			t.Errorf("shape %d missing", id)
		}
	}
	for id := int32(6); id <= 66; id++ {
		corners, ok := SurfaceShape(id)
		if !ok {
			t.Errorf("shape %d missing", id)
			continue
		}
		if len(corners) < 3 {
			t.Errorf("shape %d has %d corners", id, len(corners))
		}
	}
	for _, id := range []int32{0, 3, 4, 5, 67, 200} {
		if _, ok := SurfaceShape(id); ok {
			t.Errorf("shape %d should not be in the single-color table", id)
		}
	}
}

func TestMeshSlot(t *testing.T) {
	def := &formats.Definition{
		MeshDataName: ptr("meshes/a.mesh"),
		Mesh1Name:    ptr(""),
	}

	tests := []struct {
		slot     MeshSlot
		wantAttr string
		wantName string
	}{
		{MeshData, "mesh_data_name", "meshes/a.mesh"},
		{Mesh0, "mesh_0_name", ""},
		{Mesh1, "mesh_1_name", ""},
		{Mesh2, "mesh_2_name", ""},
		{MeshEditorOnly, "mesh_editor_only_name", ""},
	}

	for _, tt := range tests {
		t.Run(tt.wantAttr, func(t *testing.T) {
			if tt.slot.String() != tt.wantAttr {
				t.Errorf("String() = %q", tt.slot.String())
			}
			if got := MeshName(def, tt.slot); got != tt.wantName {
				t.Errorf("MeshName() = %q, want %q", got, tt.wantName)
			}
		})
	}
}

// oneTriangleMesh is a mesh file with an opaque and a glass submesh.
func oneTriangleMesh() *formats.MeshFile {
	v := func(x, y, z float32) formats.MeshVertex {
		return formats.MeshVertex{Position: [3]float32{x, y, z}, Color: [4]uint8{255, 255, 255, 255}, Normal: [3]float32{0, 0, 1}}
	}
	return &formats.MeshFile{
		Kind:       formats.MeshKindMesh,
		Vertices:   []formats.MeshVertex{v(0, 0, 0), v(0, 1, 0), v(1, 0, 0)},
		IndexCount: 6,
		Triangles: []formats.MeshTriangle{
			{Indices: [3]uint16{0, 1, 2}},
			{Indices: [3]uint16{0, 2, 1}},
		},
		Submeshes: []formats.Submesh{
			{Start: 0, Length: 3, BoundsMax: [3]float32{1, 1, 0}},
			{Start: 3, Length: 3, Material: formats.MaterialGlass, BoundsMax: [3]float32{1, 1, 0}},
		},
	}
}

func TestBuild(t *testing.T) {
	errMissing := errors.New("missing")
	loads := map[string]int{}
	loader := LoaderFunc(func(path string) (*formats.MeshFile, error) {
		loads[filepath.ToSlash(path)]++
		if filepath.Base(path) == "missing.mesh" {
			return nil, errMissing
		}
		return oneTriangleMesh(), nil
	})

	def := &formats.Definition{
		MeshDataName:       ptr("meshes/body.mesh"),
		Mesh0Name:          ptr("meshes/missing.mesh"),
		MeshEditorOnlyName: ptr("meshes/editor.mesh"),
	}
	def = withSurfaces(def, *surface(1, 0, 0), *surface(200, 0, 0))

	s := scene.New()
	s.Add(scene.NewObject(geometry.NewMesh(nil, nil))) // replaced by Build

	vis := DefaultVisibility()
	vis.Slots[MeshEditorOnly] = false
	vis.Bounds = true

	res := Build(s, "rom", def, vis, loader)

	if res.Meshes != 2 {
		t.Errorf("Meshes = %d, want 2", res.Meshes)
	}
	if res.Surfaces != 1 {
		t.Errorf("Surfaces = %d, want 1", res.Surfaces)
	}
	// 2 submeshes + 2 bounds + 1 decal + 1 decal edge
	if s.Len() != 6 {
		t.Errorf("scene has %d objects, want 6", s.Len())
	}
	if !errors.Is(res.Errors[Mesh0], errMissing) || len(res.Errors) != 1 {
		t.Errorf("Errors = %v", res.Errors)
	}
	if err := res.Errors.Err(); err == nil {
		t.Error("Errors.Err() = nil")
	}
	if loads["rom/meshes/editor.mesh"] != 0 {
		t.Error("hidden slot was loaded")
	}
	if !res.HasBounds || res.Hi.X != 1 {
		t.Errorf("bounds = %v..%v (%v)", res.Lo, res.Hi, res.HasBounds)
	}

	var glass int
	for _, o := range s.Objects() {
		if o.DrawConfig().Shader == geometry.ShaderGlass {
			glass++
		}
	}
	if glass != 1 {
		t.Errorf("glass objects = %d, want 1", glass)
	}
	if _, changed := s.Paint(); !changed {
		t.Error("Build did not mark the scene changed")
	}
}

func TestBuild_NothingVisible(t *testing.T) {
	s := scene.New()
	def := withSurfaces(&formats.Definition{MeshDataName: ptr("a.mesh")}, *surface(1, 0, 0))
	res := Build(s, "", def, Visibility{}, LoaderFunc(func(string) (*formats.MeshFile, error) {
		t.Fatal("loader called")
		return nil, nil
	}))

	if s.Len() != 0 || res.Meshes != 0 || res.Errors.Err() != nil {
		t.Errorf("scene len = %d, result = %+v", s.Len(), res)
	}
}

func withSurfaces(def *formats.Definition, surfaces ...formats.DefinitionSurface) *formats.Definition {
	def.SurfaceLists = []formats.SurfaceList{{Surfaces: surfaces}}
	return def
}

func TestCatalog(t *testing.T) {
	rom := t.TempDir()
	dir := filepath.Join(rom, DefinitionsDir)
	if err := os.MkdirAll(filepath.Join(dir, "sub.xml"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"b_window.xml": `<definition name="Window"/>`,
		"a_block.XML":  `<definition/>`,
		"broken.xml":   `<notadefinition/>`,
		"readme.txt":   "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c, err := Open(rom)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	var names []string
	for _, d := range c.Definitions {
		names = append(names, d.Filename)
	}
	want := []string{"a_block.XML", "b_window.xml", "broken.xml"}
	if len(names) != len(want) {
		t.Fatalf("definitions = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("definitions[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	if got := c.Definitions[1].Title(); got != "Window" {
		t.Errorf("Title() = %q, want Window", got)
	}
	if got := c.Definitions[0].Title(); got != "a_block.XML" {
		t.Errorf("Title() = %q, want the file name", got)
	}
	if i, ok := c.Find("B_WINDOW.xml"); !ok || i != 1 {
		t.Errorf("Find() = %d, %v", i, ok)
	}
	if err := c.ParseAll(); err == nil {
		t.Error("ParseAll() = nil, want the broken definition's error")
	}
	if got, want := c.MeshPath("meshes/x.mesh"), filepath.Join(rom, "meshes", "x.mesh"); got != want {
		t.Errorf("MeshPath() = %q, want %q", got, want)
	}
}

func TestCatalog_MissingDirectory(t *testing.T) {
	if _, err := Open(t.TempDir()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open() error = %v, want not-exist", err)
	}
}

func TestDefinition_Invalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "d.xml")
	os.WriteFile(path, []byte(`<definition name="One"/>`), 0o644)

	d := NewDefinition(path)
	if d.Title() != "One" {
		t.Fatalf("Title() = %q", d.Title())
	}

	os.WriteFile(path, []byte(`<definition name="Two"/>`), 0o644)
	if d.Title() != "One" {
		t.Error("parse result not memoized")
	}
	d.Invalidate()
	if d.Title() != "Two" {
		t.Errorf("Title() after Invalidate = %q, want Two", d.Title())
	}
}
