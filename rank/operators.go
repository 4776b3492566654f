// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rank

import (
	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/histogram"
)

// Scalar is a rank-operator parameter that is either a constant or read
// per-element from a control array (spec §4.5's "rank index may be a
// control array"). Ctrl, when set, is indexed by the aperture's own linear
// position (wrapped), not by an offset.
type Scalar struct {
	Const float64
	Ctrl  scalarSource
}

// scalarSource is the subset of *array.Array Scalar needs; kept narrow so
// any type with a ControlValue method can serve as a control array.
type scalarSource interface {
	ControlValue(i int64) (float64, error)
}

// Const builds a constant Scalar.
func Const(v float64) Scalar { return Scalar{Const: v} }

// FromControl builds a Scalar read from a control array at the current
// aperture position.
func FromControl(ctrl scalarSource) Scalar { return Scalar{Ctrl: ctrl} }

// At resolves the scalar's value at wrapped linear index p.
func (s Scalar) At(p int64, wrap func(int64) int64) (float64, error) {
	if s.Ctrl == nil {
		return s.Const, nil
	}
	return s.Ctrl.ControlValue(wrap(p))
}

// FillerKind discriminates the three special meanBetween... fallback
// sentinels from a plain numeric filler (spec §4.5, §9's open question:
// FILL_NEAREST_VALUE is represented as a tag rather than a NaN literal so it
// can never collide with a legitimate numeric fill value, including NaN
// itself for float-kind destinations).
type FillerKind int

const (
	// FillNumeric uses Filler.Value verbatim.
	FillNumeric FillerKind = iota
	// FillMinValue returns the query interval's lower bound.
	FillMinValue
	// FillMaxValue returns the query interval's upper bound.
	FillMaxValue
	// FillNearestValue returns whichever bound is adjacent to the
	// aperture's actual non-empty value range, or their midpoint if the
	// interval straddles it.
	FillNearestValue
)

// Filler configures the value meanBetweenValues/meanBetweenPercentiles
// return when the queried interval contains no aperture elements.
type Filler struct {
	Kind  FillerKind
	Value float64
}

// NumericFiller builds a plain numeric Filler.
func NumericFiller(v float64) Filler { return Filler{Kind: FillNumeric, Value: v} }

func resolveFiller(f Filler, v1, v2 float64, isLeft, isRight bool) float64 {
	switch f.Kind {
	case FillMinValue:
		return v1
	case FillMaxValue:
		return v2
	case FillNearestValue:
		switch {
		case isRight:
			return v1
		case isLeft:
			return v2
		default:
			return (v1 + v2) / 2
		}
	default:
		return f.Value
	}
}

func wrapFor(p *Processor) func(int64) int64 {
	return func(i int64) int64 { return array.Wrap(i, p.L) }
}

// percentileValue resolves the bucket-domain value at rank r on h, applying
// the spec §9 open-question resolution for r >= N: return the aperture's
// maximum value rather than saturating at M (the histogram primitive's
// Width()), since M is a quantization artifact, not a real aperture value.
func percentileValue(h *histogram.Histogram, r float64, precise bool) float64 {
	if r >= float64(h.Count()) {
		// Position one past the maximum so a between-sharing integral ending
		// here covers the maximum's bucket.
		if v, ok := h.MaxNonZeroValue(); ok {
			h.MoveToValue(v + 1)
			return float64(v)
		}
		h.MoveToValue(0)
		return 0
	}
	if r < 0 {
		r = 0
	}
	if precise {
		return h.MoveToPreciseRank(r)
	}
	return float64(h.MoveToRank(r))
}

// toNative converts a bucket-domain coordinate to the source's native
// value domain; Processor doesn't expose this directly so operators close
// over proc.Src.ValueFromBucket via this indirection-free helper instead.
func toNative(proc *Processor, bucket float64) float64 {
	return proc.Src.ValueFromBucket(bucket)
}

// Percentile builds the operator computing the aperture's value at rank r
// (spec §4.5's percentile(p, r)), r resolved per-element from rSel.
func Percentile(proc *Processor, rSel Scalar, precise bool) OperatorFunc {
	wrap := wrapFor(proc)
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		r, err := rSel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		return toNative(proc, percentileValue(h1, r, precise)), nil
	}
}

// PercentileBucket is Percentile without the final bucket-to-native-value
// conversion, for callers (package morph) that write results straight back
// into another array's bucket domain via array.SetFromBucket, avoiding a
// needless round trip through the native value domain on every stage of a
// multi-stage composition.
func PercentileBucket(proc *Processor, rSel Scalar, precise bool) OperatorFunc {
	wrap := wrapFor(proc)
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		r, err := rSel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		return percentileValue(h1, r, precise), nil
	}
}

// Rank builds the operator computing the aperture's rank of value v (spec
// §4.5's rank(p, v)): the count of aperture elements strictly less than v,
// interpolated within v's bucket in precise mode.
func Rank(proc *Processor, vSel Scalar, precise bool) OperatorFunc {
	wrap := wrapFor(proc)
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		v, err := vSel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		floorV := int64(v)
		h1.MoveToValue(floorV)
		if precise {
			d := v - float64(floorV)
			pr, _ := h1.InterpolateAt(d)
			return pr, nil
		}
		return float64(h1.CurrentRank()), nil
	}
}

// Mean builds the operator computing the aperture's plain average (spec
// §6's RankMorphology surface "mean").
func Mean(proc *Processor) OperatorFunc {
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		n := h1.Count()
		if n == 0 {
			return 0, nil
		}
		return toNative(proc, float64(h1.FullSum())/float64(n)), nil
	}
}

// MeanBetweenValues builds the operator computing the mean of aperture
// elements in [v1, v2) (spec §4.5's meanBetweenValues), falling back to
// filler when that interval contains no elements.
func MeanBetweenValues(proc *Processor, v1Sel, v2Sel Scalar, filler Filler, precise bool) OperatorFunc {
	wrap := wrapFor(proc)
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		v1, err := v1Sel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		v2, err := v2Sel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		bars := h1.Bars()
		var integral, count float64
		var isLeft, isRight bool
		if precise {
			integral, count, isLeft, isRight = histogram.PreciseIntegralBetweenValues(bars, v1, v2)
		} else {
			i, c, l, r := histogram.IntegralBetweenValues(bars, int64(v1), int64(v2))
			integral, count, isLeft, isRight = float64(i), float64(c), l, r
		}
		if count == 0 {
			return resolveFiller(filler, v1, v2, isLeft, isRight), nil
		}
		return toNative(proc, integral/count), nil
	}
}

// MeanBetweenPercentiles builds the operator computing the mean of aperture
// elements between percentile ranks r1 and r2 (spec §4.5's
// meanBetweenPercentiles), translating (r1, r2) to (v1, v2) via two shared
// histogram positions and dividing the integral over [v1, v2) by (r2-r1)
// rather than by the count of elements in [v1, v2). The two differ when a
// bucket at v1 or v2 holds elements on both sides of r1 or r2; whole buckets
// are integrated either way. Returns filler when r2<=r1.
func MeanBetweenPercentiles(proc *Processor, r1Sel, r2Sel Scalar, filler Filler, precise bool) OperatorFunc {
	wrap := wrapFor(proc)
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		r1, err := r1Sel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		r2, err := r2Sel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		v1 := percentileValue(h1, r1, precise)
		v2 := percentileValue(h2, r2, precise)
		if r2 <= r1 {
			bars := h1.Bars()
			_, _, isLeft, isRight := histogram.IntegralBetweenValues(bars, int64(v1), int64(v2))
			return resolveFiller(filler, v1, v2, isLeft, isRight), nil
		}
		var integral float64
		if precise {
			integral, err = h1.CurrentPreciseIntegralBetweenSharing(h2)
		} else {
			var i int64
			i, err = h1.CurrentIntegralBetweenSharing(h2)
			integral = float64(i)
		}
		if err != nil {
			return 0, err
		}
		return toNative(proc, integral/(r2-r1)), nil
	}
}

// FunctionOfSum builds the operator f(sum(aperture)) (spec §4.5's
// functionOfSum), the sum taken in bucket-quantized domain over the full
// aperture regardless of current position.
func FunctionOfSum(proc *Processor, f func(sum float64) float64) OperatorFunc {
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		return f(float64(h1.FullSum())), nil
	}
}

// FunctionOfPercentilePair builds the operator f(src(p), percentile(p, r1),
// percentile(p, r2)) (spec §4.5's functionOfPercentilePair).
func FunctionOfPercentilePair(proc *Processor, r1Sel, r2Sel Scalar, precise bool, f func(src, p1, p2 float64) float64) OperatorFunc {
	wrap := wrapFor(proc)
	return func(p int64, h1, h2 *histogram.Histogram) (float64, error) {
		r1, err := r1Sel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		r2, err := r2Sel.At(p, wrap)
		if err != nil {
			return 0, err
		}
		v1 := toNative(proc, percentileValue(h1, r1, precise))
		v2 := toNative(proc, percentileValue(h2, r2, precise))
		srcBucket, err := proc.bucketAt(p)
		if err != nil {
			return 0, err
		}
		return f(toNative(proc, float64(srcBucket)), v1, v2), nil
	}
}
