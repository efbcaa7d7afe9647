package pipeline

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/grum999/bulicore/pkg/descriptor"
	"github.com/grum999/bulicore/pkg/rule"
)

// filter evaluates compiled against every descriptor concurrently,
// bounded by errgroup.SetLimit, returning only the matches in
// ascending original-index order so filtering never reorders the
// eventual sort's input. ctx is checked at the top of every worker's
// per-file loop iteration, the safe checkpoint between files; once
// cancelled, outstanding descriptors are left unevaluated (and so
// excluded from the result) instead of waiting for the full slice.
func filter(ctx context.Context, descs []descriptor.Descriptor, compiled rule.Compiled, workers int, emit func(Event)) []descriptor.Descriptor {
	if workers <= 0 {
		workers = 4
	}
	matched := make([]bool, len(descs))

	var g errgroup.Group
	g.SetLimit(workers)

	total := len(descs)
	var done int32
	const progressEvery = 64

	for i := range descs {
		i := i
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			matched[i] = compiled.Eval(descs[i])
			n := atomic.AddInt32(&done, 1)
			if n%progressEvery == 0 || int(n) == total {
				emit(Event{Kind: ProgressFilter, Done: int(n), Total: total})
			}
			return nil
		})
	}
	g.Wait()

	out := make([]descriptor.Descriptor, 0, len(descs))
	for i, ok := range matched {
		if ok {
			out = append(out, descs[i])
		}
	}
	emit(Event{Kind: FilterDone, Done: total, Total: total})
	return out
}
