package rank

import (
	"testing"

	"github.com/aperturego/aperture/array"
)

func segment1DProcessor(t *testing.T, data []uint8) *Processor {
	t.Helper()
	src, err := array.NewUint8([]int64{int64(len(data))}, data)
	if err != nil {
		t.Fatalf("NewUint8: %v", err)
	}
	// Segment1D(1) = {-1,0,1}; LeftRight per pattern_test.go: left={-1}, right={1}.
	shifts := []int64{-1, 0, 1}
	left := []int64{-1}
	right := []int64{1}
	p, err := NewProcessor(src, shifts, left, right)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return p
}

// TestDilationErosionViaPercentile exercises Testable Property 2: dilation is
// percentile(r=N) and erosion is percentile(r=0).
func TestDilationErosionViaPercentile(t *testing.T) {
	data := []uint8{5, 1, 9, 3, 7, 2}
	p := segment1DProcessor(t, data)

	dilation := Percentile(p, Const(3), false)
	got, err := p.Materialize(0, 6, false, dilation, Context{})
	if err != nil {
		t.Fatalf("Materialize dilation: %v", err)
	}
	want := []float64{5, 9, 9, 9, 7, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dilation[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	p2 := segment1DProcessor(t, data)
	erosion := Percentile(p2, Const(0), false)
	got2, err := p2.Materialize(0, 6, false, erosion, Context{})
	if err != nil {
		t.Fatalf("Materialize erosion: %v", err)
	}
	want2 := []float64{1, 1, 1, 3, 2, 2}
	for i := range want2 {
		if got2[i] != want2[i] {
			t.Errorf("erosion[%d] = %v, want %v", i, got2[i], want2[i])
		}
	}
}

// TestPercentileRankDuality exercises Testable Property 1: rank(percentile(p,
// r)) == r for r in [0, N) over a single aperture position.
func TestPercentileRankDuality(t *testing.T) {
	data := []uint8{5, 1, 9, 3, 7, 2} // window at p=2 is {3,9,1} per segment1DProcessor's shift set
	for r := 0; r < 3; r++ {
		p := segment1DProcessor(t, data)
		out, err := p.Materialize(2, 1, false, Percentile(p, Const(float64(r)), false), Context{})
		if err != nil {
			t.Fatalf("Materialize percentile: %v", err)
		}
		v := out[0]

		p2 := segment1DProcessor(t, data)
		rankOut, err := p2.Materialize(2, 1, false, Rank(p2, Const(v), false), Context{})
		if err != nil {
			t.Fatalf("Materialize rank: %v", err)
		}
		if int(rankOut[0]) != r {
			t.Errorf("rank(percentile(%d))=%d, want %d", r, int(rankOut[0]), r)
		}
	}
}

func TestMeanBetweenValuesFillsMinValueWhenEmpty(t *testing.T) {
	data := []uint8{10, 10, 10, 200, 10, 10}
	p := segment1DProcessor(t, data)
	// Window at p=3 is {4:10,3:200,2:10} per the (p-s) convention -> {10,200,10}.
	// Query an interval that contains no elements (e.g. [50,60)) and expect
	// the configured FILL_MIN_VALUE sentinel back.
	op := MeanBetweenValues(p, Const(50), Const(60), Filler{Kind: FillMinValue}, false)
	out, err := p.Materialize(3, 1, false, op, Context{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if out[0] != 50 {
		t.Errorf("meanBetweenValues empty-interval fill = %v, want 50 (FILL_MIN_VALUE)", out[0])
	}
}

func TestMeanBetweenValuesAveragesNonEmptyInterval(t *testing.T) {
	data := []uint8{10, 10, 10, 200, 10, 10}
	p := segment1DProcessor(t, data)
	op := MeanBetweenValues(p, Const(0), Const(256), NumericFiller(-1), false)
	out, err := p.Materialize(3, 1, false, op, Context{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	// window at p=3: values 10,200,10 -> mean = 220/3
	want := float64(10+200+10) / 3
	if out[0] != want {
		t.Errorf("mean = %v, want %v", out[0], want)
	}
}

func TestMeanReturnsAverageOfAperture(t *testing.T) {
	data := []uint8{10, 10, 10, 200, 10, 10}
	p := segment1DProcessor(t, data)
	out, err := p.Materialize(3, 1, false, Mean(p), Context{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	want := float64(10+200+10) / 3
	if out[0] != want {
		t.Errorf("mean = %v, want %v", out[0], want)
	}
}

func TestFunctionOfSumAppliesGivenFunction(t *testing.T) {
	data := []uint8{1, 2, 3, 4, 5, 6}
	p := segment1DProcessor(t, data)
	op := FunctionOfSum(p, func(sum float64) float64 { return sum * 2 })
	out, err := p.Materialize(2, 1, false, op, Context{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	// window at p=2: values at idx 3,2,1 = 4,3,2 -> sum=9 -> f(sum)=18
	if out[0] != 18 {
		t.Errorf("functionOfSum = %v, want 18", out[0])
	}
}
