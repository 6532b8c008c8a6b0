package blockdef

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/blockview/internal/engine/geometry"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/pkg/formats"
	"github.com/Faultbox/blockview/pkg/math"
)

// BoundsColor is the color of submesh bounding box wireframes.
var BoundsColor = geometry.RGBA(1, 0.8, 0, 1)

// MeshLoader returns decoded mesh files by path.
type MeshLoader interface {
	Load(path string) (*formats.MeshFile, error)
}

// LoaderFunc adapts a function to MeshLoader.
type LoaderFunc func(path string) (*formats.MeshFile, error)

// Load calls f.
func (f LoaderFunc) Load(path string) (*formats.MeshFile, error) { return f(path) }

// Visibility selects what Build adds to the scene.
type Visibility struct {
	Slots    [5]bool // indexed by MeshSlot
	Surfaces bool
	Edges    bool
	Bounds   bool
}

// DefaultVisibility shows every mesh slot with surfaces and their edges.
func DefaultVisibility() Visibility {
	return Visibility{
		Slots:    [5]bool{true, true, true, true, true},
		Surfaces: true,
		Edges:    true,
	}
}

// Shows reports whether a slot is visible.
func (v Visibility) Shows(slot MeshSlot) bool {
	return int(slot) >= 0 && int(slot) < len(v.Slots) && v.Slots[slot]
}

// SlotErrors holds the load error of each failing mesh slot.
type SlotErrors map[MeshSlot]error

// Err combines the slot errors in slot order, or returns nil.
func (e SlotErrors) Err() error {
	var err error
	for _, slot := range MeshSlots {
		if e[slot] != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", slot, e[slot]))
		}
	}
	return err
}

// Result summarizes a Build.
type Result struct {
	// Paths maps each loaded slot to its mesh file.
	Paths     map[MeshSlot]string
	Errors    SlotErrors
	Meshes    int
	Surfaces  int
	Lo, Hi    math.Vec3 // world bounds of the mesh objects
	HasBounds bool
}

func (r *Result) extend(lo, hi math.Vec3) {
	if !r.HasBounds {
		r.Lo, r.Hi, r.HasBounds = lo, hi, true
		return
	}
	r.Lo, r.Hi = r.Lo.Min(lo), r.Hi.Max(hi)
}

// Build clears s and adds the visible parts of def: one object per submesh of
// each visible mesh slot, optional submesh bounds, and the surface decals.
// A slot that fails to load is recorded in Result.Errors and skipped.
func Build(s *scene.Scene, romDir string, def *formats.Definition, vis Visibility, loader MeshLoader) Result {
	s.Clear()
	res := Result{Paths: make(map[MeshSlot]string), Errors: make(SlotErrors)}

	for _, slot := range MeshSlots {
		if !vis.Shows(slot) {
			continue
		}
		name := MeshName(def, slot)
		if name == "" {
			continue
		}
		path := MeshPath(romDir, name)
		res.Paths[slot] = path

		f, err := loader.Load(path)
		if err != nil {
			res.Errors[slot] = err
			continue
		}

		for i, m := range geometry.FromMeshFile(f) {
			s.Add(scene.NewObject(m))
			res.Meshes++
			if lo, hi, ok := m.Bounds(); ok {
				res.extend(lo, hi)
			}
			if vis.Bounds {
				lo, hi := geometry.SubmeshBounds(&f.Submeshes[i])
				s.Add(scene.NewObject(geometry.NewBoxLine(lo, hi, BoundsColor, 1)))
			}
		}
	}

	if vis.Surfaces || vis.Edges {
		surfaces := def.Surfaces()
		for i := range surfaces {
			mesh, edge := SurfaceObjects(&surfaces[i], vis.Surfaces, vis.Edges)
			if mesh != nil {
				s.Add(mesh)
				res.Surfaces++
			}
			if edge != nil {
				s.Add(edge)
			}
		}
	}

	return res
}
