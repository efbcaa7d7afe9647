// Package pipeline runs the enumerate -> analyse -> filter -> sort
// sequence, reporting progress through a typed event stream and
// supporting cooperative cancellation via context.Context, the way a
// long-running copy or sync command reports progress and honors
// ctrl-C.
package pipeline

import "github.com/grum999/bulicore/pkg/descriptor"

// EventKind identifies one pipeline progress notification.
type EventKind int

const (
	EnumDone EventKind = iota
	ProgressAnalyse
	AnalyseDone
	ProgressFilter
	FilterDone
	BuildDone
	SortDone
	Cancelled
)

func (k EventKind) String() string {
	switch k {
	case EnumDone:
		return "ENUM_DONE"
	case ProgressAnalyse:
		return "PROGRESS_ANALYSE"
	case AnalyseDone:
		return "ANALYSE_DONE"
	case ProgressFilter:
		return "PROGRESS_FILTER"
	case FilterDone:
		return "FILTER_DONE"
	case BuildDone:
		return "BUILD_DONE"
	case SortDone:
		return "SORT_DONE"
	case Cancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// Event is one point-in-time progress notification. Done/Total are
// populated for the PROGRESS_* and *_DONE kinds; Results is populated
// only on BUILD_DONE and SORT_DONE.
type Event struct {
	Kind    EventKind
	Done    int
	Total   int
	Results []descriptor.Descriptor
}
