// Package viewer holds the interactive state of the block viewer: the
// selected definition, visibility toggles and the scene built from them.
// The scene is rebuilt only when something it depends on changed.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/blockdef"
	"github.com/Faultbox/blockview/internal/engine/camera"
	"github.com/Faultbox/blockview/internal/engine/scene"
	"github.com/Faultbox/blockview/internal/logger"
)

// ErrNoDefinitions is reported when the catalog is empty.
var ErrNoDefinitions = errors.New("no block definitions found")

// Cache loads meshes and forgets them when their file changes.
type Cache interface {
	blockdef.MeshLoader
	Invalidate(path string) bool
}

// Options holds the initial viewer state.
type Options struct {
	Visibility blockdef.Visibility
	Preview    bool
	// CameraDefaults is applied after every camera reset.
	CameraDefaults func(*camera.OrbitCamera)
}

// Viewer is the viewer state machine.
type Viewer struct {
	catalog *blockdef.Catalog
	scene   *scene.Scene
	camera  *camera.OrbitCamera
	cache   Cache
	opts    Options

	selected int
	vis      blockdef.Visibility
	preview  bool

	dirty  bool
	fit    bool
	result blockdef.Result
	defErr error

	watched map[string]bool
	log     *zap.Logger
}

// New creates a viewer with the first definition selected. Nothing is built
// until the first Update.
func New(cat *blockdef.Catalog, s *scene.Scene, cam *camera.OrbitCamera, cache Cache, opts Options) *Viewer {
	v := &Viewer{
		catalog: cat,
		scene:   s,
		camera:  cam,
		cache:   cache,
		opts:    opts,
		vis:     opts.Visibility,
		preview: opts.Preview,
		dirty:   true,
		fit:     true,
		watched: make(map[string]bool),
		log:     logger.Named("viewer"),
	}
	if opts.CameraDefaults != nil {
		opts.CameraDefaults(cam)
	}
	return v
}

// Catalog returns the definition catalog.
func (v *Viewer) Catalog() *blockdef.Catalog { return v.catalog }

// Index returns the selected catalog index.
func (v *Viewer) Index() int { return v.selected }

// Selected returns the selected definition, or nil for an empty catalog.
func (v *Viewer) Selected() *blockdef.Definition {
	if v.catalog == nil || v.selected < 0 || v.selected >= v.catalog.Len() {
		return nil
	}
	return v.catalog.Definitions[v.selected]
}

// Visibility returns the current toggles.
func (v *Viewer) Visibility() blockdef.Visibility { return v.vis }

// Preview reports whether paint override colors are on.
func (v *Viewer) Preview() bool { return v.preview }

// Result returns the summary of the last build.
func (v *Viewer) Result() blockdef.Result { return v.result }

// Dirty reports whether the next Update rebuilds the scene.
func (v *Viewer) Dirty() bool { return v.dirty }

// Err returns the problems of the last build: a definition that did not
// parse, or the mesh slots that failed to load.
func (v *Viewer) Err() error {
	if v.defErr != nil {
		return v.defErr
	}
	return v.result.Errors.Err()
}

// Title returns a window title for the current selection.
func (v *Viewer) Title() string {
	d := v.Selected()
	if d == nil {
		return "Blockview"
	}
	title := fmt.Sprintf("Blockview - %s [%d/%d]", d.Filename, v.selected+1, v.catalog.Len())
	if name := d.Title(); name != d.Filename {
		title += " " + name
	}
	return title
}

// Select picks a definition by catalog index, wrapping around at both ends.
// The camera is refit on the next Update.
func (v *Viewer) Select(i int) {
	n := 0
	if v.catalog != nil {
		n = v.catalog.Len()
	}
	if n == 0 {
		v.selected = 0
	} else {
		v.selected = ((i % n) + n) % n
	}
	v.dirty = true
	v.fit = true
}

// SelectFile picks a definition by file name.
func (v *Viewer) SelectFile(filename string) bool {
	if v.catalog == nil {
		return false
	}
	i, ok := v.catalog.Find(filename)
	if ok {
		v.Select(i)
	}
	return ok
}

// Next selects the following definition.
func (v *Viewer) Next() { v.Select(v.selected + 1) }

// Prev selects the previous definition.
func (v *Viewer) Prev() { v.Select(v.selected - 1) }

// ToggleSlot shows or hides a mesh slot.
func (v *Viewer) ToggleSlot(slot blockdef.MeshSlot) {
	if int(slot) < 0 || int(slot) >= len(v.vis.Slots) {
		return
	}
	v.vis.Slots[slot] = !v.vis.Slots[slot]
	v.dirty = true
}

// ToggleSurfaces shows or hides the surface decals.
func (v *Viewer) ToggleSurfaces() {
	v.vis.Surfaces = !v.vis.Surfaces
	v.dirty = true
}

// ToggleEdges shows or hides the surface outlines.
func (v *Viewer) ToggleEdges() {
	v.vis.Edges = !v.vis.Edges
	v.dirty = true
}

// ToggleBounds shows or hides submesh bounding boxes.
func (v *Viewer) ToggleBounds() {
	v.vis.Bounds = !v.vis.Bounds
	v.dirty = true
}

// TogglePreview switches the paint override colors. The scene does not
// change; only renderer settings do.
func (v *Viewer) TogglePreview() {
	v.preview = !v.preview
}

// ResetCamera restores the camera defaults, keeps the aspect ratio and
// refits the current bounds.
func (v *Viewer) ResetCamera() {
	aspect := v.camera.Aspect
	v.camera.Reset()
	v.camera.Aspect = aspect
	if v.opts.CameraDefaults != nil {
		v.opts.CameraDefaults(v.camera)
	}
	if v.result.HasBounds {
		v.camera.FitBounds(v.result.Lo, v.result.Hi)
	}
}

// Reload drops the cached selection and its meshes.
func (v *Viewer) Reload() {
	if d := v.Selected(); d != nil {
		d.Invalidate()
	}
	for _, p := range v.result.Paths {
		v.cache.Invalidate(p)
	}
	v.dirty = true
}

// Apply runs commands in order.
func (v *Viewer) Apply(cmds []Command) Effects {
	var fx Effects
	for _, c := range cmds {
		switch c.Action {
		case ActionQuit:
			fx.Quit = true
		case ActionResetCamera:
			v.ResetCamera()
		case ActionNextDefinition:
			v.Next()
		case ActionPrevDefinition:
			v.Prev()
		case ActionToggleSlot:
			v.ToggleSlot(blockdef.MeshSlot(c.Slot))
		case ActionToggleSurfaces:
			v.ToggleSurfaces()
		case ActionToggleEdges:
			v.ToggleEdges()
		case ActionToggleBounds:
			v.ToggleBounds()
		case ActionTogglePreview:
			v.TogglePreview()
			fx.PreviewChanged = !fx.PreviewChanged
		case ActionReload:
			v.Reload()
		case ActionSnapshot:
			fx.Snapshot = true
		}
	}
	return fx
}

// Invalidate handles changed files. A changed definition is re-read and a
// changed mesh is evicted from the cache; the scene is rebuilt only when
// the selection uses the file. A new definition file refreshes the catalog.
func (v *Viewer) Invalidate(paths []string) {
	for _, p := range paths {
		p = absPath(p)

		if i, ok := v.findDefinition(p); ok {
			v.catalog.Definitions[i].Invalidate()
			if i == v.selected {
				v.log.Info("definition changed", zap.String("path", p))
				v.dirty = true
			}
			continue
		}

		if v.isDefinitionFile(p) {
			v.refreshCatalog()
			continue
		}

		used := false
		for _, mp := range v.result.Paths {
			if absPath(mp) == p {
				v.cache.Invalidate(mp)
				used = true
			}
		}
		v.cache.Invalidate(p)
		if used {
			v.log.Info("mesh changed", zap.String("path", p))
			v.dirty = true
		}
	}
}

// WatchDirs returns directories the selection depends on that have not been
// returned before: the definitions directory and the directories of the
// loaded meshes.
func (v *Viewer) WatchDirs() []string {
	var dirs []string
	add := func(dir string) {
		dir = absPath(dir)
		if !v.watched[dir] {
			v.watched[dir] = true
			dirs = append(dirs, dir)
		}
	}
	if v.catalog != nil {
		add(filepath.Join(v.catalog.RomDir, blockdef.DefinitionsDir))
	}
	for _, slot := range blockdef.MeshSlots {
		if p, ok := v.result.Paths[slot]; ok {
			add(filepath.Dir(p))
		}
	}
	return dirs
}

// Update rebuilds the scene if anything it depends on changed and reports
// whether it did.
func (v *Viewer) Update() bool {
	if !v.dirty {
		return false
	}
	v.dirty = false
	v.rebuild()
	v.fit = false
	return true
}

func (v *Viewer) rebuild() {
	d := v.Selected()
	if d == nil {
		v.scene.Clear()
		v.result = blockdef.Result{}
		v.defErr = ErrNoDefinitions
		return
	}

	def, err := d.Parsed()
	if err != nil {
		v.scene.Clear()
		v.result = blockdef.Result{}
		v.defErr = fmt.Errorf("%s: %w", d.Filename, err)
		v.log.Warn("definition failed", zap.String("file", d.Filename), zap.Error(err))
		return
	}

	v.defErr = nil
	v.result = blockdef.Build(v.scene, v.catalog.RomDir, def, v.vis, v.cache)
	for _, err := range multierr.Errors(v.result.Errors.Err()) {
		v.log.Warn("mesh failed", zap.String("file", d.Filename), zap.Error(err))
	}
	v.log.Debug("scene built",
		zap.String("file", d.Filename),
		zap.Int("meshes", v.result.Meshes),
		zap.Int("surfaces", v.result.Surfaces),
		zap.Int("objects", v.scene.Len()))

	if v.fit && v.result.HasBounds {
		v.camera.FitBounds(v.result.Lo, v.result.Hi)
	}
}

func (v *Viewer) findDefinition(abs string) (int, bool) {
	if v.catalog == nil {
		return -1, false
	}
	for i, d := range v.catalog.Definitions {
		if absPath(d.Path) == abs {
			return i, true
		}
	}
	return -1, false
}

func (v *Viewer) isDefinitionFile(abs string) bool {
	if v.catalog == nil || !strings.EqualFold(filepath.Ext(abs), ".xml") {
		return false
	}
	return filepath.Dir(abs) == absPath(filepath.Join(v.catalog.RomDir, blockdef.DefinitionsDir))
}

// refreshCatalog re-lists the definitions, keeping the selection by name.
func (v *Viewer) refreshCatalog() {
	cat, err := blockdef.Open(v.catalog.RomDir)
	if cat == nil {
		v.log.Warn("catalog refresh failed", zap.Error(err))
		return
	}

	current := ""
	if d := v.Selected(); d != nil {
		current = d.Filename
	}
	v.catalog = cat
	if i, ok := cat.Find(current); ok {
		v.selected = i
		return
	}
	v.Select(v.selected)
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
