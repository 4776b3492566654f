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

package continuation

import (
	"fmt"

	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/errs"
	"github.com/aperturego/aperture/morph"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

// Wrapper runs morphology operators under a declared boundary mode by
// reallocating the source into a padded copy, running the parent operator
// over the copy (whose interior reads never cross the original border), and
// cropping the result back to the original extent. The padding per axis is
// the operator's aperture extent: the pattern's own bounding box for
// dilation, its negation for erosion, and their Minkowski sum for the
// two-stage compositions.
type Wrapper struct {
	src         *array.Array
	mode        Mode
	constBucket int64
}

// NewWrapper builds a Wrapper over src under mode. constBucket is only used
// by ModeConstant. ModeNone is rejected.
func NewWrapper(src *array.Array, mode Mode, constBucket int64) (*Wrapper, error) {
	if mode == ModeNone {
		return nil, fmt.Errorf("continuation mode NONE is not a valid boundary policy: %w", errs.ErrInvalidArgument)
	}
	return &Wrapper{src: src, mode: mode, constBucket: constBucket}, nil
}

// padding returns the per-axis [before, after] margins the given operator
// needs. Dilation's aperture reads src(p-s) for s in the pattern, so the
// read span per axis is the negated extent; erosion slides the negated
// pattern, mirroring it back. Two-stage compositions need the sum of both
// stages' margins.
func (w *Wrapper) padding(pat *pattern.Pattern, negated bool, stages int) (before, after []int64) {
	ext := pat.Extent()
	before = make([]int64, len(ext))
	after = make([]int64, len(ext))
	for d, e := range ext {
		lo, hi := int64(e[0]), int64(e[1])
		b, a := max64(0, hi), max64(0, -lo)
		if negated {
			b, a = a, b
		}
		if stages > 1 {
			// a dilation stage and an erosion stage each contribute their
			// own margin; for the compositions both directions are needed.
			b = max64(0, hi) + max64(0, -lo)
			a = b
		}
		before[d] = b
		after[d] = a
	}
	return before, after
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// Expand reallocates src into a copy padded by before/after elements per
// axis, filling the margin per mode: constant modes write the configured
// bucket, the coordinate modes (cyclic, mirror, nearest) resolve each
// out-of-range axis independently and copy the resolved element.
func Expand(src *array.Array, before, after []int64, mode Mode, constBucket int64) (*array.Array, error) {
	dims := src.Dims()
	if len(before) != len(dims) || len(after) != len(dims) {
		return nil, fmt.Errorf("padding rank %d/%d does not match array rank %d: %w", len(before), len(after), len(dims), errs.ErrSizeMismatch)
	}
	expDims := make([]int64, len(dims))
	for d := range dims {
		expDims[d] = dims[d] + before[d] + after[d]
	}
	expanded, err := array.NewLikeWithDims(src, expDims)
	if err != nil {
		return nil, err
	}

	expL, err := array.Len(expDims)
	if err != nil {
		return nil, err
	}
	expStrides := array.Strides(expDims)
	srcStrides := array.Strides(dims)
	coords := make([]int64, len(dims))
	for i := int64(0); i < expL; i++ {
		rem := i
		for d := len(expDims) - 1; d >= 0; d-- {
			coords[d] = rem/expStrides[d] - before[d]
			rem %= expStrides[d]
		}
		var bucket int64
		if inRange(coords, dims) {
			var srcIdx int64
			for d := range coords {
				srcIdx += coords[d] * srcStrides[d]
			}
			bucket, err = src.Bucket(srcIdx)
			if err != nil {
				return nil, err
			}
		} else {
			switch mode {
			case ModeZeroConstant:
				bucket = 0
			case ModeConstant:
				bucket = constBucket
			default:
				var srcIdx int64
				for d := range coords {
					srcIdx += resolveAxis(mode, coords[d], dims[d]) * srcStrides[d]
				}
				bucket, err = src.Bucket(srcIdx)
				if err != nil {
					return nil, err
				}
			}
		}
		if err := expanded.SetFromBucket(i, bucket); err != nil {
			return nil, err
		}
	}
	return expanded, nil
}

// Crop maps an operator result computed over the expanded shape back to the
// original shape, discarding the margins.
func Crop(vals []float64, expandedDims, before, origDims []int64) []float64 {
	expStrides := array.Strides(expandedDims)
	origStrides := array.Strides(origDims)
	origL, _ := array.Len(origDims)
	out := make([]float64, origL)
	coords := make([]int64, len(origDims))
	for i := int64(0); i < origL; i++ {
		rem := i
		var expIdx int64
		for d := len(origDims) - 1; d >= 0; d-- {
			coords[d] = rem / origStrides[d]
			rem %= origStrides[d]
			expIdx += (coords[d] + before[d]) * expStrides[d]
		}
		out[i] = vals[expIdx]
	}
	return out
}

func (w *Wrapper) run(pat *pattern.Pattern, negated bool, stages int,
	op func(m *morph.Morphology, ctx rank.Context) ([]float64, error), ctx rank.Context) ([]float64, error) {
	before, after := w.padding(pat, negated, stages)
	expanded, err := Expand(w.src, before, after, w.mode, w.constBucket)
	if err != nil {
		return nil, err
	}
	m, err := morph.New(expanded, pat, morph.SubtractionNone)
	if err != nil {
		return nil, err
	}
	vals, err := op(m, ctx)
	if err != nil {
		return nil, err
	}
	return Crop(vals, expanded.Dims(), before, w.src.Dims()), nil
}

// Dilation runs the aperture maximum under the wrapper's boundary mode.
func (w *Wrapper) Dilation(pat *pattern.Pattern, ctx rank.Context) ([]float64, error) {
	return w.run(pat, false, 1, (*morph.Morphology).Dilation, ctx)
}

// Erosion runs the aperture minimum under the wrapper's boundary mode.
func (w *Wrapper) Erosion(pat *pattern.Pattern, ctx rank.Context) ([]float64, error) {
	return w.run(pat, true, 1, (*morph.Morphology).Erosion, ctx)
}

// Closing runs erosion(dilation(src)) under the wrapper's boundary mode.
func (w *Wrapper) Closing(pat *pattern.Pattern, ctx rank.Context) ([]float64, error) {
	return w.run(pat, false, 2, (*morph.Morphology).Closing, ctx)
}

// Opening runs dilation(erosion(src)) under the wrapper's boundary mode.
func (w *Wrapper) Opening(pat *pattern.Pattern, ctx rank.Context) ([]float64, error) {
	return w.run(pat, false, 2, (*morph.Morphology).Opening, ctx)
}
