// Package enum implements recursive path enumeration with inclusion
// policies.
package enum

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/grum999/bulicore/pkg/descriptor"
)

// SearchPath describes one root to scan.
type SearchPath struct {
	Dir                string
	Recursive          bool
	IncludeHidden      bool
	IncludeBackups     bool
	IncludeManagedOnly bool
}

// Kind discriminates a file from a directory entry.
type Kind int

const (
	KindFile Kind = iota
	KindDirectory
)

// Entry is one yielded (path, kind) pair.
type Entry struct {
	Path string
	Kind Kind
}

// Event is the sealed set of progress notifications Enumerate emits.
type Event interface{ isEnumEvent() }

// StepPathScanned fires once per input SearchPath, after it has been
// fully walked.
type StepPathScanned struct{ Path string }

// StepEnumDone fires once, after every SearchPath has been walked.
type StepEnumDone struct{ Total int }

func (StepPathScanned) isEnumEvent() {}
func (StepEnumDone) isEnumEvent()    {}

// isHidden reports whether name is hidden by the conventional
// dot-prefix rule. This does not special-case Windows'
// FILE_ATTRIBUTE_HIDDEN bit — a future platform-specific predicate can
// replace this without changing Enumerate's contract.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// CanonicalPath resolves path to an absolute, cleaned form, used both
// to de-duplicate entries reached by more than one SearchPath and as
// the hash source for a path-identified (rather than content-
// identified) entry.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func isManaged(name string, sp SearchPath) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	tag := descriptor.FormatFromExtension(ext)
	if tag == descriptor.UNKNOWN {
		return false
	}
	if tag == descriptor.KRA && strings.HasSuffix(strings.ToLower(name), "~") && !sp.IncludeBackups {
		return false
	}
	return true
}

// Enumerate walks every SearchPath and returns the deduplicated list
// of (path, kind) entries it discovers, invoking emit for every
// progress event along the way. includeDirs controls whether
// directory rows are yielded at all.
func Enumerate(paths []SearchPath, includeDirs bool, emit func(Event)) ([]Entry, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	seen := make(map[string]bool)
	var out []Entry

	for _, sp := range paths {
		root, err := CanonicalPath(sp.Dir)
		if err != nil {
			return nil, err
		}
		if err := walkOne(root, sp, includeDirs, seen, &out); err != nil {
			return nil, err
		}
		emit(StepPathScanned{Path: sp.Dir})
	}
	emit(StepEnumDone{Total: len(out)})
	return out, nil
}

func walkOne(root string, sp SearchPath, includeDirs bool, seen map[string]bool, out *[]Entry) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return addEntry(root, KindFile, sp, includeDirs, seen, out)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// I/O errors are per-file and do not abort the walk; skip
			// the unreadable entry and continue.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root && !sp.Recursive && d.IsDir() {
			return filepath.SkipDir
		}
		if !sp.IncludeHidden && isHidden(d.Name()) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		kind := KindFile
		if d.IsDir() {
			kind = KindDirectory
		}
		return addEntry(path, kind, sp, includeDirs, seen, out)
	})
}

func addEntry(path string, kind Kind, sp SearchPath, includeDirs bool, seen map[string]bool, out *[]Entry) error {
	if kind == KindDirectory {
		if !includeDirs {
			return nil
		}
	} else if sp.IncludeManagedOnly && !isManaged(filepath.Base(path), sp) {
		return nil
	}
	canon, err := CanonicalPath(path)
	if err != nil {
		return err
	}
	if seen[canon] {
		return nil
	}
	seen[canon] = true
	*out = append(*out, Entry{Path: path, Kind: kind})
	return nil
}
