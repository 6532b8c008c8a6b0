// Package assets handles mesh loading, caching and hot reload.
package assets

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/blockview/internal/logger"
	"github.com/Faultbox/blockview/pkg/formats"
)

// DecodeFunc decodes the mesh file at path.
type DecodeFunc func(path string) (*formats.MeshFile, error)

// entry is a memoized decode result. A failed decode is cached like a
// successful one until the path is invalidated.
type entry struct {
	mesh *formats.MeshFile
	err  error
}

// Stats reports cache activity.
type Stats struct {
	Entries int
	Hits    int
	Misses  int
	Errors  int
}

// MeshCache decodes each mesh path at most once.
type MeshCache struct {
	decode DecodeFunc
	data   map[string]entry
	mu     sync.RWMutex

	// Stats
	hits   int
	misses int

	log *zap.Logger
}

// NewMeshCache creates a cache that decodes with formats.ParseMeshFile.
func NewMeshCache() *MeshCache {
	return NewMeshCacheWith(formats.ParseMeshFile)
}

// NewMeshCacheWith creates a cache with a custom decoder.
func NewMeshCacheWith(decode DecodeFunc) *MeshCache {
	return &MeshCache{
		decode: decode,
		data:   make(map[string]entry),
		log:    logger.Named("assets"),
	}
}

func key(path string) string {
	return filepath.Clean(path)
}

// Load returns the decoded mesh for path, decoding it on first access.
func (c *MeshCache) Load(path string) (*formats.MeshFile, error) {
	k := key(path)

	c.mu.RLock()
	e, ok := c.data[k]
	c.mu.RUnlock()
	if ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.mesh, e.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another caller may have decoded it meanwhile.
	if e, ok := c.data[k]; ok {
		c.hits++
		return e.mesh, e.err
	}

	c.misses++
	mesh, err := c.decode(k)
	c.data[k] = entry{mesh: mesh, err: err}
	if err != nil {
		c.log.Warn("mesh decode failed", zap.String("path", k), zap.Error(err))
	} else {
		c.log.Debug("mesh decoded",
			zap.String("path", k),
			zap.Int("vertices", len(mesh.Vertices)),
			zap.Int("submeshes", len(mesh.Submeshes)),
		)
	}
	return mesh, err
}

// Invalidate drops the cached result for path. It reports whether an entry
// was present.
func (c *MeshCache) Invalidate(path string) bool {
	k := key(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.data[k]; !ok {
		return false
	}
	delete(c.data, k)
	c.log.Debug("mesh invalidated", zap.String("path", k))
	return true
}

// Contains reports whether path has a cached result.
func (c *MeshCache) Contains(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.data[key(path)]
	return ok
}

// Clear clears the cache.
func (c *MeshCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]entry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *MeshCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Stats{Entries: len(c.data), Hits: c.hits, Misses: c.misses}
	for _, e := range c.data {
		if e.err != nil {
			s.Errors++
		}
	}
	return s
}
