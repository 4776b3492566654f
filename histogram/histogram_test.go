package histogram

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/aperturego/aperture/kind"
)

func mustNew(t *testing.T, p kind.Precision) *Histogram {
	t.Helper()
	h, err := New(p)
	if err != nil {
		t.Fatalf("New(%+v): %v", p, err)
	}
	return h
}

func TestIncludeExcludeRoundTrip(t *testing.T) {
	h := mustNew(t, kind.DefaultPrecision(8, false))
	for _, v := range []int64{10, 20, 20, 30, 5} {
		h.Include(v)
	}
	h.MoveToValue(100)
	wantRank := h.CurrentRank()
	wantSum := h.CurrentIntegral()
	wantBars := h.Bars()

	for _, v := range []int64{10, 20, 20, 30, 5} {
		h.Include(v)
	}
	for _, v := range []int64{10, 20, 20, 30, 5} {
		if err := h.Exclude(v); err != nil {
			t.Fatalf("Exclude(%d): %v", v, err)
		}
	}

	if h.CurrentRank() != wantRank {
		t.Errorf("rank drifted after include/exclude round trip: got %d, want %d", h.CurrentRank(), wantRank)
	}
	if h.CurrentIntegral() != wantSum {
		t.Errorf("sum drifted after include/exclude round trip: got %d, want %d", h.CurrentIntegral(), wantSum)
	}
	if diff := cmp.Diff(wantBars, h.Bars()); diff != "" {
		t.Errorf("bars drifted after include/exclude round trip (-want +got):\n%s", diff)
	}
}

func TestMoveToValueMatchesBruteForce(t *testing.T) {
	h := mustNew(t, kind.DefaultPrecision(8, false))
	values := []int64{3, 7, 7, 10, 1, 250, 128, 64, 64, 0}
	for _, v := range values {
		h.Include(v)
	}

	for _, target := range []int64{0, 1, 5, 64, 65, 129, 255, 256} {
		h.MoveToValue(target)
		wantRank, wantSum := bruteForceRankSum(values, target)
		if h.CurrentRank() != wantRank {
			t.Errorf("MoveToValue(%d): rank got %d, want %d", target, h.CurrentRank(), wantRank)
		}
		if h.CurrentIntegral() != wantSum {
			t.Errorf("MoveToValue(%d): sum got %d, want %d", target, h.CurrentIntegral(), wantSum)
		}
	}
}

func bruteForceRankSum(values []int64, v int64) (rank, sum int64) {
	for _, x := range values {
		if x < v {
			rank++
			sum += x
		}
	}
	return rank, sum
}

func TestMoveToRankTiesGoLeft(t *testing.T) {
	h := mustNew(t, kind.DefaultPrecision(4, false))
	for _, v := range []int64{2, 2, 2, 5, 5} {
		h.Include(v)
	}
	// Sorted multiset is [2,2,2,5,5]: ranks 0..2 live in bucket 2, ranks
	// 3..4 in bucket 5. Every rank of a multi-count bucket answers with the
	// same (leftmost) value.
	for r, want := range map[float64]int64{0: 2, 1: 2, 2: 2, 3: 5, 4: 5} {
		if got := h.MoveToRank(r); got != want {
			t.Errorf("MoveToRank(%v) = %d, want %d", r, got, want)
		}
	}
	// r >= N is clamped to the last rank; the rank operator (package rank)
	// additionally special-cases r == N to the maximum aperture value.
	if got := h.MoveToRank(5); got != 5 {
		t.Errorf("MoveToRank(N) = %d, want 5 (clamped to last rank)", got)
	}
}

func TestSharingConsistency(t *testing.T) {
	h1 := mustNew(t, kind.DefaultPrecision(8, false))
	h2 := h1.Share()
	require.Equal(t, 2, h1.ShareCount())
	require.Equal(t, h1.ShareCount(), h2.ShareCount())

	values := []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	for _, v := range values {
		h1.Include(v)
	}
	h1.MoveToValue(4)
	h2.MoveToValue(9)

	// More mixed updates after both are positioned.
	h1.Include(3)
	require.NoError(t, h2.Exclude(8))

	want := h2.CurrentIntegral() - h1.CurrentIntegral()
	got, err := h1.CurrentIntegralBetweenSharing(h2)
	require.NoError(t, err)
	if got != want {
		t.Errorf("CurrentIntegralBetweenSharing = %d, want %d", got, want)
	}

	bars := h1.Bars()
	wantIntegral, _, _, _ := IntegralBetweenValues(bars, h1.CurrentValue(), h2.CurrentValue())
	if got != wantIntegral {
		t.Errorf("sharing integral %d does not match one-shot IntegralBetweenValues %d", got, wantIntegral)
	}
}

func TestExcludeBelowZeroFails(t *testing.T) {
	h := mustNew(t, kind.DefaultPrecision(4, false))
	if err := h.Exclude(0); err == nil {
		t.Fatal("Exclude on empty bucket should fail")
	}
}

func TestPreciseIntegralBetweenValuesBoundaryFlags(t *testing.T) {
	bars := []int64{0, 0, 3, 5, 0, 0}
	_, _, isLeft, isRight := PreciseIntegralBetweenValues(bars, 0, 1)
	if !isLeft {
		t.Error("interval entirely left of non-empty range should set isLeftBound")
	}
	_, _, isLeft, isRight = PreciseIntegralBetweenValues(bars, 4, 6)
	if !isRight {
		t.Error("interval entirely right of non-empty range should set isRightBound")
	}
	_ = isLeft
}
