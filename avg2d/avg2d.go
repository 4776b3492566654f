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

// Package avg2d implements the quick 2D averager: a separable row/column
// sliding-sum mean filter over a 2D array, bypassing the histogram engine
// entirely (spec §4.9 calls this out as the one operator not built on
// SummingHistogram, since a plain running sum is sufficient and cheaper for
// a rectangular mean). Rows are the fastest-varying axis (axis 0, stride 1,
// spec §9), matching hwy/contrib/image's row-major layout.
package avg2d

import (
	"fmt"
	"math"

	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/errs"
)

// Rounding selects how a fractional mean is rounded to the destination's
// integer bucket domain.
type Rounding int

const (
	// RoundHalfAwayFromZero rounds 0.5 away from zero (the conventional
	// "round" behavior for non-negative bucket-domain sums).
	RoundHalfAwayFromZero Rounding = iota
	// RoundTruncate discards the fractional part.
	RoundTruncate
)

// DivisionMode selects how the windowed sum is divided by the rectangle's
// area.
type DivisionMode int

const (
	// DivisionExact divides with float64 division every element.
	DivisionExact DivisionMode = iota
	// DivisionReciprocal multiplies by a precomputed 1/area instead of
	// dividing per element — faster, and exact for areas that are a
	// power of two.
	DivisionReciprocal
)

// Averager computes the mean over a (2*rx+1) x (2*ry+1) rectangle centered
// at each element of a 2D array, via two separable sliding-sum passes.
type Averager struct {
	src        *array.Array
	width      int64
	height     int64
	rx, ry     int64
	rounding   Rounding
	div        DivisionMode
	reciprocal float64
}

// New builds an Averager over src, which must be exactly 2-dimensional.
// Returns ErrInvalidArgument if the rectangle's area would not fit a signed
// 32-bit count, or if either dimension would not fit a signed 32-bit index
// (spec §4.9).
func New(src *array.Array, rx, ry int, rounding Rounding, div DivisionMode) (*Averager, error) {
	dims := src.Dims()
	if len(dims) != 2 {
		return nil, fmt.Errorf("avg2d requires a 2-dimensional array, got %d dims: %w", len(dims), errs.ErrInvalidArgument)
	}
	if rx < 0 || ry < 0 {
		return nil, fmt.Errorf("radii must be non-negative, got (%d,%d): %w", rx, ry, errs.ErrInvalidArgument)
	}
	width, height := dims[0], dims[1]
	area := int64(2*rx+1) * int64(2*ry+1)
	if area <= 0 || area > math.MaxInt32 {
		return nil, fmt.Errorf("rectangle area %d exceeds signed 32-bit range: %w", area, errs.ErrInvalidArgument)
	}
	if width > math.MaxInt32 || height > math.MaxInt32 {
		return nil, fmt.Errorf("dimensions (%d,%d) exceed signed 32-bit range: %w", width, height, errs.ErrInvalidArgument)
	}
	return &Averager{
		src:        src,
		width:      width,
		height:     height,
		rx:         int64(rx),
		ry:         int64(ry),
		rounding:   rounding,
		div:        div,
		reciprocal: 1.0 / float64(area),
	}, nil
}

// Compute returns the averaged bucket-domain values, one per source
// element, in src's linear layout.
func (a *Averager) Compute() ([]float64, error) {
	n := a.width * a.height
	buckets := make([]int64, n)
	for i := range buckets {
		b, err := a.src.Bucket(int64(i))
		if err != nil {
			return nil, err
		}
		buckets[i] = b
	}

	rowSums := a.slideRows(buckets)
	colSums := a.slideCols(rowSums)

	area := float64((2*a.rx + 1) * (2*a.ry + 1))
	out := make([]float64, n)
	for i, s := range colSums {
		var mean float64
		if a.div == DivisionReciprocal {
			mean = float64(s) * a.reciprocal
		} else {
			mean = float64(s) / area
		}
		out[i] = a.round(mean)
	}
	return out, nil
}

func (a *Averager) round(v float64) float64 {
	if a.rounding == RoundTruncate {
		return math.Trunc(v)
	}
	if v >= 0 {
		return math.Floor(v + 0.5)
	}
	return math.Ceil(v - 0.5)
}

func (a *Averager) linear(x, y int64) int64 { return x + y*a.width }

// slideRows sums a window of radius rx along x (the fastest-varying axis),
// for every row independently, wrapping pseudo-cyclically at the row edges.
func (a *Averager) slideRows(data []int64) []int64 {
	out := make([]int64, len(data))
	for y := int64(0); y < a.height; y++ {
		var sum int64
		for dx := -a.rx; dx <= a.rx; dx++ {
			sum += data[a.linear(array.Wrap(dx, a.width), y)]
		}
		out[a.linear(0, y)] = sum
		for x := int64(1); x < a.width; x++ {
			leaving := data[a.linear(array.Wrap(x-1-a.rx, a.width), y)]
			entering := data[a.linear(array.Wrap(x+a.rx, a.width), y)]
			sum += entering - leaving
			out[a.linear(x, y)] = sum
		}
	}
	return out
}

// slideCols sums a window of radius ry along y, for every column
// independently, wrapping pseudo-cyclically at the column edges. It
// operates on slideRows' output, making the combined pass the separable sum
// over the full (2*rx+1) x (2*ry+1) rectangle.
func (a *Averager) slideCols(data []int64) []int64 {
	out := make([]int64, len(data))
	for x := int64(0); x < a.width; x++ {
		var sum int64
		for dy := -a.ry; dy <= a.ry; dy++ {
			sum += data[a.linear(x, array.Wrap(dy, a.height))]
		}
		out[a.linear(x, 0)] = sum
		for y := int64(1); y < a.height; y++ {
			leaving := data[a.linear(x, array.Wrap(y-1-a.ry, a.height))]
			entering := data[a.linear(x, array.Wrap(y+a.ry, a.height))]
			sum += entering - leaving
			out[a.linear(x, y)] = sum
		}
	}
	return out
}
