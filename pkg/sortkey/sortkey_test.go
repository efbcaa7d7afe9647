package sortkey

import (
	"testing"
	"time"

	"github.com/grum999/bulicore/pkg/descriptor"
)

func desc(name string, isDir bool, size int64) descriptor.Descriptor {
	if isDir {
		return descriptor.NewDirectory("/d/"+name, time.Now())
	}
	return descriptor.Descriptor{
		FullPath: "/d/" + name, Dir: "/d", Name: name,
		Format: descriptor.RASTER_PNG, Readable: true, ByteSize: size,
		Image: descriptor.Unknown,
	}
}

func TestDirectoriesAlwaysFirst(t *testing.T) {
	items := []descriptor.Descriptor{
		desc("b.png", false, 100),
		desc("sub", true, 0),
		desc("a.png", false, 50),
	}
	Sort(items, []Key{{Property: descriptor.FILE_SIZE, Ascending: true}})
	if !items[0].IsDirectory() {
		t.Fatal("expected directory first regardless of sort keys")
	}
}

func TestStableOnEqualKeys(t *testing.T) {
	items := []descriptor.Descriptor{
		desc("a.png", false, 100),
		desc("b.png", false, 100),
		desc("c.png", false, 100),
	}
	Sort(items, []Key{{Property: descriptor.FILE_SIZE, Ascending: true}})
	if items[0].Name != "a.png" || items[1].Name != "b.png" || items[2].Name != "c.png" {
		t.Fatalf("expected stable order preserved on ties, got %v %v %v", items[0].Name, items[1].Name, items[2].Name)
	}
}

func TestDescendingReversesOrder(t *testing.T) {
	items := []descriptor.Descriptor{
		desc("a.png", false, 10),
		desc("b.png", false, 30),
		desc("c.png", false, 20),
	}
	Sort(items, []Key{{Property: descriptor.FILE_SIZE, Ascending: false}})
	if items[0].Name != "b.png" || items[1].Name != "c.png" || items[2].Name != "a.png" {
		t.Fatalf("unexpected descending order: %v %v %v", items[0].Name, items[1].Name, items[2].Name)
	}
}

func TestIdempotentOnSortedInput(t *testing.T) {
	items := []descriptor.Descriptor{
		desc("a.png", false, 10),
		desc("b.png", false, 20),
	}
	keys := []Key{{Property: descriptor.FILE_SIZE, Ascending: true}}
	Sort(items, keys)
	again := append([]descriptor.Descriptor(nil), items...)
	Sort(again, keys)
	for i := range items {
		if items[i].Name != again[i].Name {
			t.Fatalf("sort should be idempotent on already-sorted input")
		}
	}
}
