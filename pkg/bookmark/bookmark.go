// Package bookmark implements a named, reusable SearchPath registry.
// A bookmark is sugar over the query model's SearchFromPath node:
// nothing else reads or writes it except by name.
package bookmark

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/grum999/bulicore/pkg/config"
	"github.com/grum999/bulicore/pkg/enum"
)

// Bookmark is a named SearchPath.
type Bookmark struct {
	Name               string `json:"name"`
	Path               string `json:"path"`
	Recursive          bool   `json:"recursive"`
	IncludeHidden      bool   `json:"includeHidden"`
	IncludeBackups     bool   `json:"includeBackups"`
	IncludeManagedOnly bool   `json:"includeManagedOnly"`
}

// ToSearchPath converts b into the enum.SearchPath the pipeline consumes.
func (b Bookmark) ToSearchPath() enum.SearchPath {
	return enum.SearchPath{
		Dir: b.Path, Recursive: b.Recursive, IncludeHidden: b.IncludeHidden,
		IncludeBackups: b.IncludeBackups, IncludeManagedOnly: b.IncludeManagedOnly,
	}
}

// Registry is the bookmark set persisted under
// config.Cache.ConfigRoot/bookmarks.json.
//
// Names are unique: Append on a duplicate name returns an error rather
// than silently overwriting a last-write-wins dict-keyed-by-name
// behaviour — recorded as an Open Question resolution in DESIGN.md,
// since a registry a user builds over many sessions should not lose
// an entry to a typo'd re-add.
type Registry struct {
	path string

	mu    sync.Mutex
	items []Bookmark
}

// Load reads the registry from cfg.BookmarksPath(), or starts empty if
// the file does not yet exist.
func Load(cfg config.Cache) (*Registry, error) {
	path := cfg.BookmarksPath()
	r := &Registry{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("bookmark: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &r.items); err != nil {
		return nil, fmt.Errorf("bookmark: parsing %s: %w", path, err)
	}
	return r, nil
}

// List returns a snapshot of every bookmark, in insertion order.
func (r *Registry) List() []Bookmark {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Bookmark, len(r.items))
	copy(out, r.items)
	return out
}

// Append adds b, failing if its name is already taken.
func (r *Registry) Append(b Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(b.Name) >= 0 {
		return fmt.Errorf("bookmark: %q already exists", b.Name)
	}
	r.items = append(r.items, b)
	return r.save()
}

// Remove deletes the bookmark named name.
func (r *Registry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("bookmark: %q not found", name)
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return r.save()
}

// Rename renames a bookmark, failing if newName is already taken.
func (r *Registry) Rename(oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(oldName)
	if i < 0 {
		return fmt.Errorf("bookmark: %q not found", oldName)
	}
	if oldName != newName && r.indexOf(newName) >= 0 {
		return fmt.Errorf("bookmark: %q already exists", newName)
	}
	r.items[i].Name = newName
	return r.save()
}

// Update replaces the path/flags of an existing bookmark in place,
// keeping its name and position.
func (r *Registry) Update(name string, b Bookmark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(name)
	if i < 0 {
		return fmt.Errorf("bookmark: %q not found", name)
	}
	b.Name = name
	r.items[i] = b
	return r.save()
}

func (r *Registry) indexOf(name string) int {
	for i, b := range r.items {
		if b.Name == name {
			return i
		}
	}
	return -1
}

func (r *Registry) save() error {
	data, err := json.MarshalIndent(r.items, "", "  ")
	if err != nil {
		return fmt.Errorf("bookmark: encoding registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("bookmark: creating config dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".bookmarks-*")
	if err != nil {
		return fmt.Errorf("bookmark: staging write: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, r.path)
}
