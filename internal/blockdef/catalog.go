package blockdef

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/logger"
)

// DefinitionsDir is where a ROM directory keeps its definition files.
var DefinitionsDir = filepath.Join("data", "definitions")

// Catalog is the sorted list of definition files of a ROM directory.
type Catalog struct {
	RomDir      string
	Definitions []*Definition
}

// Open lists the *.xml files in romDir/data/definitions. It fails only when
// the directory cannot be read; entries that cannot be stat'ed are skipped
// and reported together in the returned error alongside a usable catalog.
func Open(romDir string) (*Catalog, error) {
	dir := filepath.Join(romDir, DefinitionsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}

	c := &Catalog{RomDir: romDir}
	var errs error
	for _, e := range entries {
		if !strings.EqualFold(filepath.Ext(e.Name()), ".xml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", e.Name(), err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		c.Definitions = append(c.Definitions, NewDefinition(filepath.Join(dir, e.Name())))
	}

	slices.SortFunc(c.Definitions, func(a, b *Definition) int {
		return strings.Compare(a.Filename, b.Filename)
	})

	log := logger.Named("catalog")
	log.Info("definitions listed", zap.String("dir", dir), zap.Int("count", len(c.Definitions)))
	for _, err := range multierr.Errors(errs) {
		log.Warn("definition skipped", zap.Error(err))
	}
	return c, errs
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.Definitions) }

// Find returns the index of the definition with the given file name.
func (c *Catalog) Find(filename string) (int, bool) {
	for i, d := range c.Definitions {
		if strings.EqualFold(d.Filename, filename) {
			return i, true
		}
	}
	return -1, false
}

// FindPath returns the index of the definition at path.
func (c *Catalog) FindPath(path string) (int, bool) {
	path = filepath.Clean(path)
	for i, d := range c.Definitions {
		if filepath.Clean(d.Path) == path {
			return i, true
		}
	}
	return -1, false
}

// MeshPath resolves a mesh name from a definition against the ROM directory.
func (c *Catalog) MeshPath(name string) string {
	return MeshPath(c.RomDir, name)
}

// MeshPath resolves a mesh name, written with forward slashes, against romDir.
func MeshPath(romDir, name string) string {
	return filepath.Join(romDir, filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
}

// ParseAll parses every definition and returns the failures combined.
func (c *Catalog) ParseAll() error {
	var errs error
	for _, d := range c.Definitions {
		if _, err := d.Parsed(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", d.Filename, err))
		}
	}
	return errs
}
