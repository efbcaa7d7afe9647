package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/enum"
	"github.com/grum999/bulicore/pkg/rule"
	"github.com/grum999/bulicore/pkg/sortkey"
)

func writeTinyPNG(t *testing.T, path string) {
	t.Helper()
	// A minimal valid 1x1 PNG, header bytes only matter for probing.
	data := []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R',
		0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0,
		0x1f, 0x15, 0xc4, 0x89,
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunEnumeratesAnalysesFiltersAndSorts(t *testing.T) {
	dir := t.TempDir()
	writeTinyPNG(t, filepath.Join(dir, "a.png"))
	writeTinyPNG(t, filepath.Join(dir, "b.png"))
	if err := os.WriteFile(filepath.Join(dir, "note.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	tree := rule.Leaf(rule.Predicate{
		Property: descriptor.FILE_FORMAT,
		Type:     rule.TypeEnum,
		Operator: rule.OpEQ,
		Operand1: "PNG",
	})
	compiled, err := rule.Compile(tree)
	if err != nil {
		t.Fatal(err)
	}

	var events []Event
	results, err := Run(context.Background(), Request{
		Paths:    []enum.SearchPath{{Dir: dir, IncludeManagedOnly: false}},
		Rule:     compiled,
		SortKeys: []sortkey.Key{{Property: descriptor.FILE_NAME, Ascending: true}},
		Workers:  2,
	}, func(e Event) { events = append(events, e) })
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 PNG results, got %d", len(results))
	}
	if results[0].Name != "a.png" || results[1].Name != "b.png" {
		t.Fatalf("expected sorted by name, got %v %v", results[0].Name, results[1].Name)
	}

	var sawSortDone bool
	for _, e := range events {
		if e.Kind == SortDone {
			sawSortDone = true
		}
	}
	if !sawSortDone {
		t.Fatal("expected a SORT_DONE event")
	}
}

func TestDescribeBuildsOneDescriptor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writeTinyPNG(t, path)

	d := Describe(path)
	if d.IsDirectory() {
		t.Fatal("expected a file descriptor, got a directory one")
	}
	if d.Name != "a.png" || !d.Readable {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
	if d.Format != descriptor.RASTER_PNG {
		t.Fatalf("expected RASTER_PNG, got %v", d.Format)
	}
}

// TestAnalyseStopsDispatchingAfterMidPhaseCancellation exercises
// cancellation partway through a phase, not just before Run starts:
// the context is cancelled from inside the first progress callback,
// well before the whole entries slice has been dispatched.
func TestAnalyseStopsDispatchingAfterMidPhaseCancellation(t *testing.T) {
	const total = 1000
	entries := make([]enum.Entry, total)
	for i := range entries {
		entries[i] = enum.Entry{Path: fmt.Sprintf("/nonexistent/path/%d", i), Kind: enum.KindFile}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := analyse(ctx, entries, 1, func(e Event) {
		if e.Kind == ProgressAnalyse {
			cancel()
		}
	})

	var processed int
	for _, d := range results {
		if d.FullPath != "" {
			processed++
		}
	}
	if processed == 0 || processed >= total {
		t.Fatalf("expected cancellation to stop dispatch partway through, processed %d of %d", processed, total)
	}
}

// TestFilterStopsEvaluatingAfterMidPhaseCancellation is filter's
// analogue of TestAnalyseStopsDispatchingAfterMidPhaseCancellation.
func TestFilterStopsEvaluatingAfterMidPhaseCancellation(t *testing.T) {
	const total = 2000
	descs := make([]descriptor.Descriptor, total)
	for i := range descs {
		descs[i] = descriptor.Descriptor{FullPath: fmt.Sprintf("/p/%d", i), Format: descriptor.RASTER_PNG}
	}

	tree := rule.Leaf(rule.Predicate{
		Property: descriptor.FILE_FORMAT,
		Type:     rule.TypeEnum,
		Operator: rule.OpEQ,
		Operand1: "PNG",
	})
	compiled, err := rule.Compile(tree)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := filter(ctx, descs, compiled, 1, func(e Event) {
		if e.Kind == ProgressFilter {
			cancel()
		}
	})
	if len(out) == 0 || len(out) >= total {
		t.Fatalf("expected cancellation to leave some descriptors unevaluated, matched %d of %d", len(out), total)
	}
}

func TestRunHonorsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeTinyPNG(t, filepath.Join(dir, "a.png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, Request{
		Paths: []enum.SearchPath{{Dir: dir}},
	}, nil)
	if err == nil {
		t.Fatal("expected an error for an already-cancelled context")
	}
}
