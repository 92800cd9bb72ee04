package registry

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"arbridge/internal/common/fsutil"
	"arbridge/pkg/types"
)

// Catalog indexes model files under an assets directory. Keys are paths
// relative to the directory, in slash form, as callers pass them in
// loadLocalModel's assetPath.
type Catalog struct {
	root    string
	formats map[string]bool

	mu     sync.RWMutex
	assets map[string]types.Asset
}

// NewCatalog prepares a catalog over dir for the given formats (extensions
// without dot). Call Scan to populate it.
func NewCatalog(dir string, formats []string) (*Catalog, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	c := &Catalog{root: abs, formats: make(map[string]bool), assets: make(map[string]types.Asset)}
	for _, f := range formats {
		c.formats[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}
	return c, nil
}

// LoadDir builds and scans a catalog in one step.
func LoadDir(dir string, formats []string) (*Catalog, error) {
	c, err := NewCatalog(dir, formats)
	if err != nil {
		return nil, err
	}
	if err := c.Scan(); err != nil {
		return nil, err
	}
	return c, nil
}

// Root returns the absolute assets directory.
func (c *Catalog) Root() string { return c.root }

// Scan walks the assets directory and replaces the index.
func (c *Catalog) Scan() error {
	found := make(map[string]types.Asset)
	err := filepath.WalkDir(c.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != c.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(d.Name()), "."))
		if !c.formats[ext] {
			return nil
		}
		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		found[key] = types.Asset{Path: key, Format: ext, SizeBytes: info.Size()}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan assets: %w", err)
	}
	c.mu.Lock()
	c.assets = found
	c.mu.Unlock()
	return nil
}

// Resolve maps an asset path to an absolute file path.
func (c *Catalog) Resolve(assetPath string) (string, error) {
	key, err := fsutil.CleanRel(assetPath)
	if err != nil {
		return "", err
	}
	c.mu.RLock()
	_, ok := c.assets[key]
	c.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("asset not found: %s", assetPath)
	}
	return filepath.Join(c.root, filepath.FromSlash(key)), nil
}

// List returns the indexed assets ordered by path.
func (c *Catalog) List() []types.Asset {
	c.mu.RLock()
	out := make([]types.Asset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
