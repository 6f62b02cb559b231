package datasource

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/wodekuailen/climate-model/internal/log"
)

// Cache stores fetched grids on disk so repeated runs against the same
// dataset do not re-download a multi-decade series. Entries are msgpack
// files keyed by the dataset URL.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".msgpack")
}

// Get loads the cached grid for url, if present. A corrupt entry is treated
// as a miss.
func (c *Cache) Get(url string) (*Grid, bool) {
	raw, err := os.ReadFile(c.path(url))
	if err != nil {
		return nil, false
	}

	var g Grid
	if err := msgpack.Unmarshal(raw, &g); err != nil {
		log.Warnf("discarding corrupt cache entry for %v: %v", url, err)
		return nil, false
	}
	if err := g.Validate(); err != nil {
		log.Warnf("discarding invalid cache entry for %v: %v", url, err)
		return nil, false
	}
	return &g, true
}

// Put stores a grid for url. Cache write failures are logged, not fatal;
// the in-memory grid is already usable.
func (c *Cache) Put(url string, g *Grid) {
	raw, err := msgpack.Marshal(g)
	if err != nil {
		log.Warnf("encoding cache entry for %v: %v", url, err)
		return
	}
	if err := os.WriteFile(c.path(url), raw, 0o644); err != nil {
		log.Warnf("writing cache entry for %v: %v", url, err)
	}
}
