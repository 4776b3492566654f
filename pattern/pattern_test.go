package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestSegment1DLeftRight(t *testing.T) {
	p, err := Segment1D(1)
	if err != nil {
		t.Fatalf("Segment1D: %v", err)
	}
	if p.PointCount() != 3 {
		t.Fatalf("PointCount() = %d, want 3", p.PointCount())
	}

	left, right := p.LeftRight()
	sortOpt := cmpopts.SortSlices(func(a, b Offset) bool { return less(a, b) })
	if diff := cmp.Diff([]Offset{{-1}}, left, sortOpt); diff != "" {
		t.Errorf("left (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Offset{{1}}, right, sortOpt); diff != "" {
		t.Errorf("right (-want +got):\n%s", diff)
	}
}

func TestRectangleExtent(t *testing.T) {
	p, err := Rectangle(1, 1)
	if err != nil {
		t.Fatalf("Rectangle: %v", err)
	}
	if p.PointCount() != 9 {
		t.Fatalf("PointCount() = %d, want 9", p.PointCount())
	}
	ext := p.Extent()
	want := [][2]int{{-1, 1}, {-1, 1}}
	if diff := cmp.Diff(want, ext); diff != "" {
		t.Errorf("Extent (-want +got):\n%s", diff)
	}
}

func TestNegated(t *testing.T) {
	p, err := New([]Offset{{-1, 0}, {2, 3}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	neg := p.Negated()
	got := neg.RoundedPoints()
	sortOpt := cmpopts.SortSlices(func(a, b Offset) bool { return less(a, b) })
	want := []Offset{{1, 0}, {-2, -3}}
	if diff := cmp.Diff(want, got, sortOpt); diff != "" {
		t.Errorf("Negated (-want +got):\n%s", diff)
	}
}

func TestMinkowskiMultiple(t *testing.T) {
	p, err := Segment1D(1) // {-1,0,1}
	if err != nil {
		t.Fatalf("Segment1D: %v", err)
	}
	m2, err := MinkowskiMultiple(p, 2)
	if err != nil {
		t.Fatalf("MinkowskiMultiple: %v", err)
	}
	// {-1,0,1} + {-1,0,1} = {-2,-1,0,1,2}
	if m2.PointCount() != 5 {
		t.Fatalf("PointCount() = %d, want 5", m2.PointCount())
	}
	lo, hi := m2.RoundedCoordRange(0)
	if lo != -2 || hi != 2 {
		t.Errorf("RoundedCoordRange(0) = [%d,%d], want [-2,2]", lo, hi)
	}
}

func TestNewRejectsEmptyAndRagged(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
	if _, err := New([]Offset{{1, 2}, {1}}); err == nil {
		t.Error("New with ragged dims should fail")
	}
}
