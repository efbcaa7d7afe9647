package bookmark

import (
	"testing"

	"github.com/grum999/bulicore/pkg/config"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := config.Cache{ConfigRoot: t.TempDir()}
	r, err := Load(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestAppendRejectsDuplicateName(t *testing.T) {
	r := testRegistry(t)
	if err := r.Append(Bookmark{Name: "art", Path: "/art"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Append(Bookmark{Name: "art", Path: "/other"}); err == nil {
		t.Fatal("expected an error appending a duplicate name")
	}
}

func TestRemoveAndList(t *testing.T) {
	r := testRegistry(t)
	r.Append(Bookmark{Name: "a", Path: "/a"})
	r.Append(Bookmark{Name: "b", Path: "/b"})
	if err := r.Remove("a"); err != nil {
		t.Fatal(err)
	}
	list := r.List()
	if len(list) != 1 || list[0].Name != "b" {
		t.Fatalf("expected only %q to remain, got %v", "b", list)
	}
}

func TestRenamePreservesPath(t *testing.T) {
	r := testRegistry(t)
	r.Append(Bookmark{Name: "a", Path: "/a"})
	if err := r.Rename("a", "renamed"); err != nil {
		t.Fatal(err)
	}
	list := r.List()
	if len(list) != 1 || list[0].Name != "renamed" || list[0].Path != "/a" {
		t.Fatalf("unexpected state after rename: %v", list)
	}
}

func TestPersistsAcrossLoad(t *testing.T) {
	cfg := config.Cache{ConfigRoot: t.TempDir()}
	r1, err := Load(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := r1.Append(Bookmark{Name: "a", Path: "/a", Recursive: true}); err != nil {
		t.Fatal(err)
	}

	r2, err := Load(cfg)
	if err != nil {
		t.Fatal(err)
	}
	list := r2.List()
	if len(list) != 1 || !list[0].Recursive {
		t.Fatalf("expected persisted bookmark to survive reload, got %v", list)
	}
}
