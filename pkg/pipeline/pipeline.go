package pipeline

import (
	"context"
	"runtime"

	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/enum"
	"github.com/grum999/bulicore/pkg/rule"
	"github.com/grum999/bulicore/pkg/sortkey"
)

// Request describes one pipeline run: where to look, what to keep,
// and how to order the result.
type Request struct {
	Paths       []enum.SearchPath
	IncludeDirs bool
	Rule        rule.Compiled
	SortKeys    []sortkey.Key
	Workers     int
}

// Run executes the enumerate -> analyse -> filter -> sort sequence,
// emitting progress events as it goes. ctx is checked between phases
// here, and inside analyse's and filter's own per-file worker loops,
// so a cancellation lands as soon as the file in flight when it fires
// finishes rather than only once the whole phase completes. A
// cancelled context stops the run and emits CANCELLED instead of the
// terminal SORT_DONE event.
func Run(ctx context.Context, req Request, emit func(Event)) ([]descriptor.Descriptor, error) {
	if emit == nil {
		emit = func(Event) {}
	}
	if req.Workers <= 0 {
		req.Workers = runtime.NumCPU()
	}

	entries, err := enum.Enumerate(req.Paths, req.IncludeDirs, func(enum.Event) {})
	if err != nil {
		return nil, err
	}
	emit(Event{Kind: EnumDone, Done: len(entries), Total: len(entries)})

	if ctx.Err() != nil {
		emit(Event{Kind: Cancelled})
		return nil, ctx.Err()
	}

	descs := analyse(ctx, entries, req.Workers, emit)

	if ctx.Err() != nil {
		emit(Event{Kind: Cancelled})
		return nil, ctx.Err()
	}

	filtered := filter(ctx, descs, req.Rule, req.Workers, emit)
	emit(Event{Kind: BuildDone, Done: len(filtered), Total: len(filtered), Results: filtered})

	if ctx.Err() != nil {
		emit(Event{Kind: Cancelled})
		return nil, ctx.Err()
	}

	if len(req.SortKeys) > 0 {
		sortkey.Sort(filtered, req.SortKeys)
	}
	emit(Event{Kind: SortDone, Done: len(filtered), Total: len(filtered), Results: filtered})

	return filtered, nil
}
