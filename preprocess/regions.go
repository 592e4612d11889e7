package preprocess

import (
	"sort"

	"github.com/rubiojr/dtspp/diag"
)

// Region is one segment of the active-region partition.
type Region struct {
	Span   diag.Range
	Active bool
}

// Regions is an ordered, non-overlapping partition of a unit. Adjacent
// segments always differ in activity.
type Regions []Region

// IsActive reports whether offset lies in an active segment. Offsets
// outside the unit are inactive.
func (rs Regions) IsActive(offset int) bool {
	i := sort.Search(len(rs), func(i int) bool { return rs[i].Span.End > offset })
	return i < len(rs) && rs[i].Active && rs[i].Span.Contains(offset)
}

// add appends a segment, merging it into the previous one when they touch
// and agree.
func (rs *Regions) add(span diag.Range, active bool) {
	if span.Len() <= 0 {
		return
	}
	if n := len(*rs); n > 0 {
		last := &(*rs)[n-1]
		if last.Active == active && last.Span.End == span.Start {
			last.Span.End = span.End
			return
		}
	}
	*rs = append(*rs, Region{Span: span, Active: active})
}
