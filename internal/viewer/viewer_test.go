package viewer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/blockview/internal/blockdef"
	"github.com/Faultbox/blockview/internal/engine/camera"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/pkg/formats"
)

type fakeCache struct {
	loads       map[string]int
	invalidated []string
	fail        map[string]error
}

func newFakeCache() *fakeCache {
	return &fakeCache{loads: map[string]int{}, fail: map[string]error{}}
}

func (c *fakeCache) Load(path string) (*formats.MeshFile, error) {
	c.loads[filepath.Base(path)]++
	if err := c.fail[filepath.Base(path)]; err != nil {
		return nil, err
	}
	return triangleMesh(), nil
}

func (c *fakeCache) Invalidate(path string) bool {
	c.invalidated = append(c.invalidated, filepath.Base(path))
	return true
}

func triangleMesh() *formats.MeshFile {
	v := func(x, y, z float32) formats.MeshVertex {
		return formats.MeshVertex{Position: [3]float32{x, y, z}, Color: [4]uint8{255, 255, 255, 255}, Normal: [3]float32{0, 0, 1}}
	}
	return &formats.MeshFile{
		Kind:       formats.MeshKindMesh,
		Vertices:   []formats.MeshVertex{v(0, 0, 0), v(0, 2, 0), v(2, 0, 0)},
		IndexCount: 3,
		Triangles:  []formats.MeshTriangle{{Indices: [3]uint16{0, 1, 2}}},
		Submeshes:  []formats.Submesh{{Start: 0, Length: 3, BoundsMax: [3]float32{2, 2, 0}}},
	}
}

// writeRom creates a ROM directory with the given definition files.
func writeRom(t *testing.T, files map[string]string) string {
	t.Helper()
	rom := t.TempDir()
	dir := filepath.Join(rom, blockdef.DefinitionsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return rom
}

func defaultRom(t *testing.T) string {
	return writeRom(t, map[string]string{
		"a.xml": `<definition name="Alpha" mesh_data_name="meshes/a.mesh"><surfaces><surface shape="1"/></surfaces></definition>`,
		"b.xml": `<definition mesh_0_name="meshes\b.mesh"/>`,
		"c.xml": `<notadefinition/>`,
	})
}

func newViewer(t *testing.T, rom string) (*Viewer, *scene.Scene, *fakeCache) {
	t.Helper()
	cat, err := blockdef.Open(rom)
	if err != nil {
		t.Fatal(err)
	}
	s := scene.New()
	cache := newFakeCache()
	v := New(cat, s, camera.NewOrbitCamera(), cache, Options{Visibility: blockdef.DefaultVisibility(), Preview: true})
	return v, s, cache
}

func TestViewer_UpdateBuildsOnce(t *testing.T) {
	v, s, cache := newViewer(t, defaultRom(t))

	if !v.Update() {
		t.Fatal("first Update did not build")
	}
	if v.Update() {
		t.Error("second Update rebuilt a clean scene")
	}
	if cache.loads["a.mesh"] != 1 {
		t.Errorf("a.mesh loaded %d times", cache.loads["a.mesh"])
	}
	// mesh + decal + decal edge
	if s.Len() != 3 {
		t.Errorf("scene has %d objects, want 3", s.Len())
	}
	if _, changed := s.Paint(); !changed {
		t.Error("scene not marked changed after build")
	}
	if err := v.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
	if got := v.Title(); got != "Blockview - a.xml [1/3] Alpha" {
		t.Errorf("Title() = %q", got)
	}
}

func TestViewer_FitsCameraOnSelection(t *testing.T) {
	v, _, _ := newViewer(t, defaultRom(t))
	v.Update()

	if c := v.camera.Center; c.X != 1 || c.Y != 1 {
		t.Errorf("camera center = %v, want mesh center", c)
	}

	v.camera.Center.X = 5
	v.ToggleBounds()
	v.Update()
	if v.camera.Center.X != 5 {
		t.Error("toggling bounds refit the camera")
	}

	v.Next()
	v.Update()
	if v.camera.Center.X == 5 {
		t.Error("selecting a definition did not refit the camera")
	}
}

func TestViewer_Selection(t *testing.T) {
	tests := []struct {
		name string
		move func(v *Viewer)
		want int
	}{
		{"next", func(v *Viewer) { v.Next() }, 1},
		{"prev wraps", func(v *Viewer) { v.Prev() }, 2},
		{"next wraps", func(v *Viewer) { v.Select(2); v.Next() }, 0},
		{"select by name", func(v *Viewer) { v.SelectFile("B.XML") }, 1},
		{"unknown name", func(v *Viewer) { v.SelectFile("zzz.xml") }, 0},
	}

	rom := defaultRom(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, _ := newViewer(t, rom)
			tt.move(v)
			if v.Index() != tt.want {
				t.Errorf("Index() = %d, want %d", v.Index(), tt.want)
			}
		})
	}
}

func TestViewer_TogglesMarkDirty(t *testing.T) {
	tests := []struct {
		name   string
		toggle func(v *Viewer)
		dirty  bool
	}{
		{"slot", func(v *Viewer) { v.ToggleSlot(blockdef.Mesh0) }, true},
		{"invalid slot", func(v *Viewer) { v.ToggleSlot(blockdef.MeshSlot(9)) }, false},
		{"surfaces", func(v *Viewer) { v.ToggleSurfaces() }, true},
		{"edges", func(v *Viewer) { v.ToggleEdges() }, true},
		{"bounds", func(v *Viewer) { v.ToggleBounds() }, true},
		{"preview", func(v *Viewer) { v.TogglePreview() }, false},
		{"reset camera", func(v *Viewer) { v.ResetCamera() }, false},
	}

	rom := defaultRom(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _, _ := newViewer(t, rom)
			v.Update()
			tt.toggle(v)
			if v.Dirty() != tt.dirty {
				t.Errorf("Dirty() = %v, want %v", v.Dirty(), tt.dirty)
			}
		})
	}
}

func TestViewer_HiddenSlotNotLoaded(t *testing.T) {
	v, s, cache := newViewer(t, defaultRom(t))
	v.ToggleSlot(blockdef.MeshData)
	v.ToggleSurfaces()
	v.ToggleEdges()
	v.Update()

	if cache.loads["a.mesh"] != 0 || s.Len() != 0 {
		t.Errorf("loads = %v, scene len = %d", cache.loads, s.Len())
	}
}

func TestViewer_Errors(t *testing.T) {
	v, s, cache := newViewer(t, defaultRom(t))
	errMissing := errors.New("missing")
	cache.fail["b.mesh"] = errMissing

	v.Select(1)
	v.Update()
	if !errors.Is(v.Err(), errMissing) {
		t.Errorf("Err() = %v, want mesh failure", v.Err())
	}
	if p := v.Result().Paths[blockdef.Mesh0]; filepath.Base(p) != "b.mesh" {
		t.Errorf("mesh path = %q", p)
	}

	v.Select(2)
	v.Update()
	if !errors.Is(v.Err(), formats.ErrNotDefinition) {
		t.Errorf("Err() = %v, want ErrNotDefinition", v.Err())
	}
	if s.Len() != 0 {
		t.Errorf("broken definition left %d objects", s.Len())
	}
}

func TestViewer_EmptyCatalog(t *testing.T) {
	v, s, _ := newViewer(t, writeRom(t, nil))
	v.Update()

	if !errors.Is(v.Err(), ErrNoDefinitions) {
		t.Errorf("Err() = %v", v.Err())
	}
	if v.Selected() != nil || s.Len() != 0 || v.Title() != "Blockview" {
		t.Error("empty catalog selected something")
	}
	v.Next()
	if v.Index() != 0 {
		t.Errorf("Index() = %d", v.Index())
	}
}

func TestViewer_Invalidate(t *testing.T) {
	rom := defaultRom(t)
	meshPath := filepath.Join(rom, "meshes", "a.mesh")

	t.Run("used mesh", func(t *testing.T) {
		v, _, cache := newViewer(t, rom)
		v.Update()
		v.Invalidate([]string{meshPath})
		if !v.Dirty() {
			t.Error("changed mesh did not mark the scene dirty")
		}
		if len(cache.invalidated) == 0 {
			t.Error("cache not invalidated")
		}
	})

	t.Run("unused mesh", func(t *testing.T) {
		v, _, cache := newViewer(t, rom)
		v.Update()
		v.Invalidate([]string{filepath.Join(rom, "meshes", "other.mesh")})
		if v.Dirty() {
			t.Error("unrelated mesh marked the scene dirty")
		}
		if len(cache.invalidated) != 1 || cache.invalidated[0] != "other.mesh" {
			t.Errorf("invalidated = %v", cache.invalidated)
		}
	})

	t.Run("selected definition", func(t *testing.T) {
		v, _, _ := newViewer(t, rom)
		v.Update()
		v.Invalidate([]string{filepath.Join(rom, blockdef.DefinitionsDir, "a.xml")})
		if !v.Dirty() {
			t.Error("changed definition did not mark the scene dirty")
		}
	})

	t.Run("other definition", func(t *testing.T) {
		v, _, _ := newViewer(t, rom)
		v.Update()
		v.Invalidate([]string{filepath.Join(rom, blockdef.DefinitionsDir, "b.xml")})
		if v.Dirty() {
			t.Error("unselected definition marked the scene dirty")
		}
	})
}

func TestViewer_NewDefinitionRefreshesCatalog(t *testing.T) {
	rom := defaultRom(t)
	v, _, _ := newViewer(t, rom)
	v.Select(1)
	v.Update()

	path := filepath.Join(rom, blockdef.DefinitionsDir, "0_first.xml")
	if err := os.WriteFile(path, []byte(`<definition/>`), 0o644); err != nil {
		t.Fatal(err)
	}
	v.Invalidate([]string{path})

	if v.Catalog().Len() != 4 {
		t.Fatalf("catalog has %d definitions, want 4", v.Catalog().Len())
	}
	if d := v.Selected(); d == nil || d.Filename != "b.xml" {
		t.Errorf("selection moved to %v", d)
	}
}

func TestViewer_Apply(t *testing.T) {
	v, _, cache := newViewer(t, defaultRom(t))
	v.Update()

	fx := v.Apply([]Command{
		{Action: ActionToggleSlot, Slot: int(blockdef.Mesh2)},
		{Action: ActionTogglePreview},
		{Action: ActionSnapshot},
		{Action: ActionReload},
	})
	if !fx.Snapshot || !fx.PreviewChanged || fx.Quit {
		t.Errorf("effects = %+v", fx)
	}
	if v.Preview() {
		t.Error("preview still on")
	}
	if v.Visibility().Shows(blockdef.Mesh2) {
		t.Error("slot 2 still shown")
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "a.mesh" {
		t.Errorf("reload invalidated %v", cache.invalidated)
	}

	v.Update()
	if cache.loads["a.mesh"] != 2 {
		t.Errorf("a.mesh loaded %d times after reload", cache.loads["a.mesh"])
	}

	fx = v.Apply([]Command{{Action: ActionTogglePreview}, {Action: ActionTogglePreview}, {Action: ActionQuit}})
	if fx.PreviewChanged || !fx.Quit {
		t.Errorf("effects = %+v", fx)
	}

	v.Apply([]Command{{Action: ActionNextDefinition}})
	if v.Index() != 1 {
		t.Errorf("Index() = %d after next", v.Index())
	}
}

func TestViewer_WatchDirs(t *testing.T) {
	rom := defaultRom(t)
	v, _, _ := newViewer(t, rom)
	v.Update()

	dirs := v.WatchDirs()
	if len(dirs) != 2 {
		t.Fatalf("WatchDirs() = %v", dirs)
	}
	if filepath.Base(dirs[0]) != "definitions" || filepath.Base(dirs[1]) != "meshes" {
		t.Errorf("WatchDirs() = %v", dirs)
	}
	if again := v.WatchDirs(); len(again) != 0 {
		t.Errorf("directories returned twice: %v", again)
	}
}

func TestViewer_ResetCameraKeepsAspect(t *testing.T) {
	applied := 0
	cat, _ := blockdef.Open(defaultRom(t))
	cam := camera.NewOrbitCamera()
	v := New(cat, scene.New(), cam, newFakeCache(), Options{
		Visibility:     blockdef.DefaultVisibility(),
		CameraDefaults: func(*camera.OrbitCamera) { applied++ },
	})
	v.Update()
	cam.SetAspect(200, 100)
	cam.Center.X = 9

	v.ResetCamera()
	if cam.Aspect != 2 {
		t.Errorf("Aspect = %v, want 2", cam.Aspect)
	}
	if cam.Center.X != 1 {
		t.Errorf("Center = %v, want refit to bounds", cam.Center)
	}
	if applied != 2 {
		t.Errorf("defaults applied %d times, want 2", applied)
	}
}

func TestAction_String(t *testing.T) {
	if ActionSnapshot.String() != "snapshot" || Action(99).String() != "unknown" {
		t.Error("unexpected action names")
	}
}
