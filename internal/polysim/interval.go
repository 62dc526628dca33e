package polysim

import "sort"

// Interval pairs an inclusive [start, stop] span with the site occupying
// it. Intervals are collected while a polymer is being assembled and
// frozen into a SiteIndex on Initialize.
type Interval[T any] struct {
	Start int
	Stop  int
	Value T
}

// SiteIndex is a static index over fixed-site intervals supporting
// overlap and containment range queries. Sites are fixed at polymer
// construction and number in the tens, so the index is a start-sorted
// slice scanned from a binary-searched upper bound.
type SiteIndex[T any] struct {
	entries []Interval[T]
	maxSpan int
}

// NewSiteIndex builds an index over the given intervals. The input slice
// is not retained.
func NewSiteIndex[T any](intervals []Interval[T]) *SiteIndex[T] {
	entries := make([]Interval[T], len(intervals))
	copy(entries, intervals)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Start < entries[j].Start
	})
	maxSpan := 0
	for _, entry := range entries {
		if span := entry.Stop - entry.Start; span > maxSpan {
			maxSpan = span
		}
	}
	return &SiteIndex[T]{entries: entries, maxSpan: maxSpan}
}

// Len returns the number of indexed intervals.
func (idx *SiteIndex[T]) Len() int { return len(idx.entries) }

// FindOverlapping returns the values of all intervals overlapping the
// inclusive query range [lo, hi], in ascending start order.
func (idx *SiteIndex[T]) FindOverlapping(lo, hi int) []T {
	var out []T
	// Entries starting after hi cannot overlap; entries starting before
	// lo-maxSpan cannot reach lo.
	first := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Start >= lo-idx.maxSpan
	})
	for i := first; i < len(idx.entries); i++ {
		entry := idx.entries[i]
		if entry.Start > hi {
			break
		}
		if entry.Stop >= lo {
			out = append(out, entry.Value)
		}
	}
	return out
}

// FindContained returns the values of all intervals fully contained in
// the inclusive query range [lo, hi], in ascending start order.
func (idx *SiteIndex[T]) FindContained(lo, hi int) []T {
	var out []T
	first := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].Start >= lo
	})
	for i := first; i < len(idx.entries); i++ {
		entry := idx.entries[i]
		if entry.Start > hi {
			break
		}
		if entry.Stop <= hi {
			out = append(out, entry.Value)
		}
	}
	return out
}
