// Package sortkey implements the multi-key, stable ordering used by
// the pipeline's optional sort phase.
package sortkey

import (
	"sort"
	"strings"

	"github.com/grum999/bulicore/pkg/descriptor"
)

// Key is one ordering key.
type Key struct {
	Property        descriptor.Property
	Ascending       bool
	CaseInsensitive bool
}

// Sort orders descs in place according to keys, left to right, with
// directories always preceding files regardless of keys. The sort is
// stable: ties preserve input order.
func Sort(descs []descriptor.Descriptor, keys []Key) {
	sort.SliceStable(descs, func(i, j int) bool {
		a, b := descs[i], descs[j]
		if a.IsDirectory() != b.IsDirectory() {
			return a.IsDirectory() // directories sort first
		}
		for _, k := range keys {
			cmp := compareByKey(a, b, k)
			if cmp != 0 {
				if !k.Ascending {
					cmp = -cmp
				}
				return cmp < 0
			}
		}
		return false
	})
}

// compareByKey returns -1/0/1 comparing a against b on key k, from
// the ascending point of view; missing values sort first when
// ascending and last when descending, so the "missing" cases here are
// expressed in ascending terms and Sort flips them along with
// everything else when the key is descending.
func compareByKey(a, b descriptor.Descriptor, k Key) int {
	av, aok := a.Property(k.Property)
	bv, bok := b.Property(k.Property)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return compareValues(av, bv, k.CaseInsensitive)
}

func compareValues(a, b interface{}, caseInsensitive bool) int {
	switch av := a.(type) {
	case int64:
		bv := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := b.(string)
		if caseInsensitive {
			av, bv = strings.ToLower(av), strings.ToLower(bv)
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case descriptor.FormatTag:
		bv := b.(descriptor.FormatTag)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}
