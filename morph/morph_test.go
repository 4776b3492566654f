package morph

import (
	"testing"

	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

func flatWithDip(t *testing.T) *array.Array {
	t.Helper()
	data := []uint8{5, 5, 5, 1, 5, 5, 5}
	a, err := array.NewUint8([]int64{int64(len(data))}, data)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	return a
}

func segment1D(t *testing.T) *pattern.Pattern {
	t.Helper()
	p, err := pattern.Segment1D(1)
	if err != nil {
		t.Fatalf("Segment1D: %v", err)
	}
	return p
}

func mustMorph(t *testing.T, src *array.Array, pat *pattern.Pattern, sub SubtractionMode) *Morphology {
	t.Helper()
	m, err := New(src, pat, sub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// TestClosingRestoresFlatRegion exercises the spike-fill scenario: a 16x16
// byte image, all 200 except a single dark pixel at (8,8), closed with the
// 3x3 square, comes back entirely flat.
func TestClosingRestoresFlatRegion(t *testing.T) {
	data := make([]uint8, 16*16)
	for i := range data {
		data[i] = 200
	}
	data[8+8*16] = 50
	src, err := array.NewUint8([]int64{16, 16}, data)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	square, err := pattern.Rectangle(1, 1)
	if err != nil {
		t.Fatalf("Rectangle: %v", err)
	}

	closed, err := mustMorph(t, src, square, SubtractionNone).Closing(rank.Context{})
	if err != nil {
		t.Fatalf("Closing: %v", err)
	}
	for i, v := range closed {
		if v != 200 {
			t.Errorf("closed[%d] = %v, want 200 (spike filled)", i, v)
		}
	}
}

func TestDilationErosionBasic(t *testing.T) {
	src := flatWithDip(t)
	m := mustMorph(t, src, segment1D(t), SubtractionNone)
	dil, err := m.Dilation(rank.Context{})
	if err != nil {
		t.Fatalf("Dilation: %v", err)
	}
	for i, v := range dil {
		if v != 5 {
			t.Errorf("dilation[%d] = %v, want 5", i, v)
		}
	}

	ero, err := m.Erosion(rank.Context{})
	if err != nil {
		t.Fatalf("Erosion: %v", err)
	}
	want := []float64{5, 5, 1, 1, 1, 5, 5}
	for i := range want {
		if ero[i] != want[i] {
			t.Errorf("erosion[%d] = %v, want %v", i, ero[i], want[i])
		}
	}
}

func TestSubtractionModes(t *testing.T) {
	src := flatWithDip(t)

	// Dilation of the dip array is all 5s; subtracting src leaves the dip's
	// residue only.
	m := mustMorph(t, src, segment1D(t), SubtractSrcFromResult)
	topHat, err := m.Dilation(rank.Context{})
	if err != nil {
		t.Fatalf("Dilation: %v", err)
	}
	want := []float64{0, 0, 0, 4, 0, 0, 0}
	for i := range want {
		if topHat[i] != want[i] {
			t.Errorf("dilation top-hat[%d] = %v, want %v", i, topHat[i], want[i])
		}
	}

	// src - erosion is the erosion's residue, saturating at 0.
	m = mustMorph(t, src, segment1D(t), SubtractResultFromSrc)
	residue, err := m.Erosion(rank.Context{})
	if err != nil {
		t.Fatalf("Erosion: %v", err)
	}
	want = []float64{0, 0, 4, 0, 4, 0, 0}
	for i := range want {
		if residue[i] != want[i] {
			t.Errorf("erosion residue[%d] = %v, want %v", i, residue[i], want[i])
		}
	}
}

func TestOpeningClosingExtensivity(t *testing.T) {
	data := []uint8{3, 9, 1, 7, 7, 2, 8, 4, 6, 5}
	src, err := array.NewUint8([]int64{int64(len(data))}, data)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	m := mustMorph(t, src, segment1D(t), SubtractionNone)

	opened, err := m.Opening(rank.Context{})
	if err != nil {
		t.Fatalf("Opening: %v", err)
	}
	closed, err := m.Closing(rank.Context{})
	if err != nil {
		t.Fatalf("Closing: %v", err)
	}
	for i := range data {
		s := float64(data[i])
		if opened[i] > s {
			t.Errorf("opening[%d] = %v > src %v", i, opened[i], s)
		}
		if closed[i] < s {
			t.Errorf("closing[%d] = %v < src %v", i, closed[i], s)
		}
	}
}

func TestBeucherGradientIsZeroAwayFromEdges(t *testing.T) {
	data := []uint8{5, 5, 5, 5, 5, 5, 5, 5}
	src, err := array.NewUint8([]int64{int64(len(data))}, data)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	m := mustMorph(t, src, segment1D(t), SubtractionNone)
	grad, err := m.BeucherGradient(rank.Context{})
	if err != nil {
		t.Fatalf("BeucherGradient: %v", err)
	}
	for i, v := range grad {
		if v != 0 {
			t.Errorf("gradient[%d] = %v, want 0 on a flat field", i, v)
		}
	}
}

// WeakDilation is dil - (clos - src); since dil >= clos pointwise the result
// never drops below the source.
func TestWeakDilationNeverLowersSource(t *testing.T) {
	src := flatWithDip(t)
	m := mustMorph(t, src, segment1D(t), SubtractionNone)
	weak, err := m.WeakDilation(rank.Context{})
	if err != nil {
		t.Fatalf("WeakDilation: %v", err)
	}
	for i, v := range weak {
		srcBucket, _ := src.Bucket(int64(i))
		if v < float64(srcBucket) {
			t.Errorf("weakDilation[%d] = %v < source %v", i, v, srcBucket)
		}
	}
}

func TestWeakErosionNeverRaisesSource(t *testing.T) {
	data := []uint8{5, 5, 5, 9, 5, 5, 5}
	src, err := array.NewUint8([]int64{int64(len(data))}, data)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	m := mustMorph(t, src, segment1D(t), SubtractionNone)
	weak, err := m.WeakErosion(rank.Context{})
	if err != nil {
		t.Fatalf("WeakErosion: %v", err)
	}
	for i, v := range weak {
		if v > float64(data[i]) {
			t.Errorf("weakErosion[%d] = %v > source %v", i, v, data[i])
		}
	}
}

func TestMaskedChainsClampToSource(t *testing.T) {
	data := []uint8{3, 9, 1, 7, 7, 2, 8, 4, 6, 5}
	src, err := array.NewUint8([]int64{int64(len(data))}, data)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	pat := segment1D(t)
	m := mustMorph(t, src, pat, SubtractionNone)

	de, err := m.MaskedDilationErosion(pat, rank.Context{})
	if err != nil {
		t.Fatalf("MaskedDilationErosion: %v", err)
	}
	ed, err := m.MaskedErosionDilation(pat, rank.Context{})
	if err != nil {
		t.Fatalf("MaskedErosionDilation: %v", err)
	}
	for i := range data {
		s := float64(data[i])
		// With equal patterns the chains are a closing and an opening, so
		// the clamps restore the source exactly.
		if de[i] != s {
			t.Errorf("maskedDilationErosion[%d] = %v, want %v (min(closing, src))", i, de[i], s)
		}
		if ed[i] != s {
			t.Errorf("maskedErosionDilation[%d] = %v, want %v (max(opening, src))", i, ed[i], s)
		}
	}
}
