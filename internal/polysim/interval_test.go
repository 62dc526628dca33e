package polysim

import (
	"reflect"
	"testing"
)

func testIndex() *SiteIndex[string] {
	return NewSiteIndex([]Interval[string]{
		{Start: 30, Stop: 35, Value: "c"},
		{Start: 1, Stop: 10, Value: "a"},
		{Start: 11, Stop: 25, Value: "b"},
		{Start: 90, Stop: 95, Value: "d"},
	})
}

func TestSiteIndexFindOverlapping(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		lo, hi int
		want   []string
	}{
		{1, 100, []string{"a", "b", "c", "d"}},
		{10, 11, []string{"a", "b"}},
		{26, 29, nil},
		{35, 35, []string{"c"}},
		{5, 5, []string{"a"}},
		{96, 100, nil},
		// Inverted window matches nothing.
		{101, 100, nil},
	}
	for _, tc := range tests {
		got := idx.FindOverlapping(tc.lo, tc.hi)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("FindOverlapping(%d, %d) = %v, want %v", tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestSiteIndexFindContained(t *testing.T) {
	idx := testIndex()

	tests := []struct {
		lo, hi int
		want   []string
	}{
		{1, 100, []string{"a", "b", "c", "d"}},
		{1, 25, []string{"a", "b"}},
		// Partial overlap is not containment.
		{2, 25, []string{"b"}},
		{30, 34, nil},
		{90, 95, []string{"d"}},
	}
	for _, tc := range tests {
		got := idx.FindContained(tc.lo, tc.hi)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("FindContained(%d, %d) = %v, want %v", tc.lo, tc.hi, got, tc.want)
		}
	}
}

func TestSiteIndexEmpty(t *testing.T) {
	idx := NewSiteIndex[string](nil)
	if idx.Len() != 0 {
		t.Errorf("Expected empty index, got %d entries", idx.Len())
	}
	if got := idx.FindOverlapping(1, 100); got != nil {
		t.Errorf("Expected no matches, got %v", got)
	}
}
