package rank

import (
	"errors"
	"math"
	"testing"

	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/errs"
)

// Materializing a range in two chunks reuses the cached slide state at the
// split point and must match a single-pass materialization exactly.
func TestSplitRangeMatchesSinglePass(t *testing.T) {
	data := make([]uint8, 64)
	for i := range data {
		data[i] = uint8((i*31 + 7) % 256)
	}
	p1 := segment1DProcessor(t, data)
	full, err := p1.Materialize(0, 64, false, Percentile(p1, Const(1), false), Context{})
	if err != nil {
		t.Fatalf("Materialize full: %v", err)
	}

	p2 := segment1DProcessor(t, data)
	op := Percentile(p2, Const(1), false)
	head, err := p2.Materialize(0, 40, false, op, Context{})
	if err != nil {
		t.Fatalf("Materialize head: %v", err)
	}
	tail, err := p2.Materialize(40, 24, false, op, Context{})
	if err != nil {
		t.Fatalf("Materialize tail: %v", err)
	}

	for i := range full {
		var got float64
		if i < 40 {
			got = head[i]
		} else {
			got = tail[i-40]
		}
		if got != full[i] {
			t.Errorf("split[%d] = %v, want %v", i, got, full[i])
		}
	}
}

func TestCancellationStopsMaterialize(t *testing.T) {
	data := make([]uint8, 32)
	p := segment1DProcessor(t, data)
	ctx := Context{Cancelled: func() bool { return true }}
	_, err := p.Materialize(0, 32, false, Percentile(p, Const(0), false), ctx)
	if !errors.Is(err, errs.ErrCancelled) {
		t.Fatalf("Materialize under cancellation = %v, want ErrCancelled", err)
	}
}

func TestProgressReportsCompletion(t *testing.T) {
	data := make([]uint8, 16)
	p := segment1DProcessor(t, data)
	var lastDone, lastTotal int64
	ctx := Context{Part: func(done, total int64) { lastDone, lastTotal = done, total }}
	if _, err := p.Materialize(0, 16, false, Percentile(p, Const(0), false), ctx); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if lastDone != 16 || lastTotal != 16 {
		t.Errorf("final progress report = (%d, %d), want (16, 16)", lastDone, lastTotal)
	}
}

// MeanBetweenPercentiles runs two shared positions over one bucket table; a
// full slide across the array must keep the pair consistent at every index.
func TestMeanBetweenPercentilesSlides(t *testing.T) {
	data := []uint8{4, 8, 2, 9, 1, 7, 3, 6, 5, 0}
	p := segment1DProcessor(t, data)
	op := MeanBetweenPercentiles(p, Const(0), Const(3), NumericFiller(-1), false)
	out, err := p.Materialize(0, int64(len(data)), true, op, Context{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	for i := range data {
		// ranks [0,3) cover the whole 3-element aperture, so the result is
		// the plain aperture mean.
		l := int64(len(data))
		a := data[array.Wrap(int64(i)-1, l)]
		b := data[i]
		c := data[array.Wrap(int64(i)+1, l)]
		want := float64(int(a)+int(b)+int(c)) / 3
		if math.Abs(out[i]-want) > 1e-9 {
			t.Errorf("meanBetweenPercentiles[%d] = %v, want %v", i, out[i], want)
		}
	}
}

func TestNaNControlFails(t *testing.T) {
	data := []float32{0.5, 0.25, 0.75, 0.5}
	src, err := array.NewFloat32([]int64{4}, data, 8, false)
	if err != nil {
		t.Fatalf("NewFloat32: %v", err)
	}
	ctrl, err := array.NewFloat32([]int64{4}, []float32{1, float32(math.NaN()), 1, 1}, 8, false)
	if err != nil {
		t.Fatalf("NewFloat32 control: %v", err)
	}
	p, err := NewProcessor(src, []int64{-1, 0, 1}, []int64{-1}, []int64{1})
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	_, err = p.Materialize(0, 4, false, Percentile(p, FromControl(ctrl), false), Context{})
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("NaN control rank index = %v, want ErrInvalidArgument", err)
	}
}

func TestEmptySourceReturnsImmediately(t *testing.T) {
	src, err := array.NewUint8([]int64{0}, nil)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	p, err := NewProcessor(src, []int64{0}, nil, nil)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	out, err := p.Materialize(0, 0, false, Percentile(p, Const(0), false), Context{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("empty source produced %d outputs, want 0", len(out))
	}
}
