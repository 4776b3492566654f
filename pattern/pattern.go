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

// Package pattern implements the structuring element the rank and morphology
// engines slide across an array: a finite set of integer offsets in n-space,
// plus the derived left/right entry/exit sets a raster slide needs and the
// Minkowski algebra the granulometry driver uses. The core (package rank,
// package histogram) never sees a Pattern: package facade resolves its
// RoundedPoints and LeftRight sets into linear shifts, and the continuation
// wrapper reads its Extent, per spec §1's scope boundary ("the core consumes
// an abstract Pattern").
package pattern

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/aperturego/aperture/errs"
)

// MaxPoints bounds the number of offsets a pattern may hold, per spec §1
// ("sparse patterns whose offset count exceeds 2^31 are out of scope").
const MaxPoints = 1<<31 - 1

// Offset is one integer coordinate offset in n-space.
type Offset []int

// Add returns the elementwise sum of two offsets of equal dimension.
func (o Offset) Add(other Offset) Offset {
	out := make(Offset, len(o))
	for i := range o {
		out[i] = o[i] + other[i]
	}
	return out
}

// Negate returns the elementwise negation of the offset.
func (o Offset) Negate() Offset {
	out := make(Offset, len(o))
	for i, v := range o {
		out[i] = -v
	}
	return out
}

func (o Offset) key() string {
	return fmt.Sprint([]int(o))
}

// Pattern is a finite set of integer offsets in n-space — the structuring
// element. Patterns are immutable once constructed (spec §3 "Lifecycle").
type Pattern struct {
	dims   int
	points []Offset
}

// New builds a Pattern from a list of offsets, all of the same dimension,
// deduplicating repeated offsets. Returns ErrInvalidArgument for an empty,
// ragged, or oversized point list.
func New(points []Offset) (*Pattern, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("pattern has no points: %w", errs.ErrInvalidArgument)
	}
	dims := len(points[0])
	if dims == 0 {
		return nil, fmt.Errorf("pattern points must have at least one dimension: %w", errs.ErrInvalidArgument)
	}
	for i, p := range points {
		if len(p) != dims {
			return nil, fmt.Errorf("point %d has %d dims, want %d: %w", i, len(p), dims, errs.ErrInvalidArgument)
		}
	}
	uniq := lo.UniqBy(points, func(o Offset) string { return o.key() })
	if len(uniq) > MaxPoints {
		return nil, fmt.Errorf("pattern has %d points, exceeds MaxPoints=%d: %w", len(uniq), MaxPoints, errs.ErrInvalidArgument)
	}
	sorted := make([]Offset, len(uniq))
	copy(sorted, uniq)
	sort.Slice(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return &Pattern{dims: dims, points: sorted}, nil
}

func less(a, b Offset) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// DimCount returns the number of dimensions of the pattern's offsets.
func (p *Pattern) DimCount() int { return p.dims }

// PointCount returns the number of distinct offsets.
func (p *Pattern) PointCount() int { return len(p.points) }

// RoundedPoints returns a copy of the pattern's offsets. The name follows
// the external surface in spec §6; this module only ever holds integer
// offsets, so no rounding is performed.
func (p *Pattern) RoundedPoints() []Offset {
	out := make([]Offset, len(p.points))
	copy(out, p.points)
	return out
}

// RoundedCoordRange returns the inclusive [min, max] bounding range of the
// pattern's offsets along the given coordinate axis.
func (p *Pattern) RoundedCoordRange(coord int) (min, max int) {
	min, max = p.points[0][coord], p.points[0][coord]
	for _, pt := range p.points {
		if pt[coord] < min {
			min = pt[coord]
		}
		if pt[coord] > max {
			max = pt[coord]
		}
	}
	return min, max
}

// Extent returns the dimensional bounding box of the pattern: for each axis,
// the inclusive [min, max] range of offsets.
func (p *Pattern) Extent() [][2]int {
	out := make([][2]int, p.dims)
	for c := 0; c < p.dims; c++ {
		lo, hi := p.RoundedCoordRange(c)
		out[c] = [2]int{lo, hi}
	}
	return out
}

// Negated returns the pattern with every offset negated — the structuring
// element erosion uses (spec §4.7: "for erosion the pattern is negated").
func (p *Pattern) Negated() *Pattern {
	points := lo.Map(p.points, func(o Offset, _ int) Offset { return o.Negate() })
	np, _ := New(points) // negation preserves dims/count invariants
	return np
}

// Carcass returns the pattern's minimal Minkowski-decomposition set. This
// module does not implement general decomposition (spec §1 treats pattern
// enumeration as an external collaborator); a singleton pattern is its own
// carcass, and any other pattern's carcass is itself, so iterative
// morphology (package granulometry) remains correct (if conservative) when
// driven by a Pattern without a richer decomposition.
func (p *Pattern) Carcass() *Pattern {
	return p
}

// LeftRight computes the offsets that newly enter (Left) and leave (Right)
// the aperture when the current index advances by +1 along coordinate 0.
//
// Under the aperture convention aperture(q) = {src(q-s) : s in S} (spec
// §4.5), advancing q by +1 reuses the source positions shared by {q-s} and
// {(q+1)-s}: writing u=s-1, the new set is {q-u : u in S-e0}. So, relative
// to offsets actually fed back into src(q-s):
//
//   - Right (excluded at the old q, s must be drawn from S): S \ (S-e0).
//   - Left (included at the new q, s must be drawn from S): S \ (S+e0).
//
// Left's formula matches spec §3's "S ∖ (S+e0)" directly. Right is the
// mirror image under subtraction-indexed apertures (S ∖ (S-e0)), not the
// literal "(S+e0) ∖ S" spec §3 also mentions — that reading only holds for
// an addition-indexed aperture convention, which contradicts §4.5's
// explicit src(q-s) definition.
func (p *Pattern) LeftRight() (left, right []Offset) {
	e0 := make(Offset, p.dims)
	e0[0] = 1

	shiftedPlus := lo.Map(p.points, func(o Offset, _ int) Offset { return o.Add(e0) })
	shiftedMinus := lo.Map(p.points, func(o Offset, _ int) Offset { return o.Add(e0.Negate()) })
	plusSet := lo.SliceToMap(shiftedPlus, func(o Offset) (string, Offset) { return o.key(), o })
	minusSet := lo.SliceToMap(shiftedMinus, func(o Offset) (string, Offset) { return o.key(), o })

	left = lo.Filter(p.points, func(o Offset, _ int) bool {
		_, ok := plusSet[o.key()]
		return !ok
	})
	right = lo.Filter(p.points, func(o Offset, _ int) bool {
		_, ok := minusSet[o.key()]
		return !ok
	})
	return left, right
}

// Rectangle builds an n-dimensional rectangular pattern: for each axis i,
// offsets range over [-radii[i], radii[i]]. A 3x3 square in 2D is
// Rectangle(1, 1).
func Rectangle(radii ...int) (*Pattern, error) {
	if len(radii) == 0 {
		return nil, fmt.Errorf("rectangle needs at least one radius: %w", errs.ErrInvalidArgument)
	}
	var points []Offset
	var build func(dim int, cur Offset)
	build = func(dim int, cur Offset) {
		if dim == len(radii) {
			cp := make(Offset, len(cur))
			copy(cp, cur)
			points = append(points, cp)
			return
		}
		for d := -radii[dim]; d <= radii[dim]; d++ {
			cur[dim] = d
			build(dim+1, cur)
		}
	}
	build(0, make(Offset, len(radii)))
	return New(points)
}

// Segment1D builds the 1-D pattern {-radius, ..., radius}, the pattern used
// by the S1/S2 end-to-end scenarios in spec §8.
func Segment1D(radius int) (*Pattern, error) {
	return Rectangle(radius)
}

// MinkowskiSum returns the Minkowski sum {a+b : a in A, b in B}.
func MinkowskiSum(a, b *Pattern) (*Pattern, error) {
	if a.dims != b.dims {
		return nil, fmt.Errorf("Minkowski sum dimension mismatch %d vs %d: %w", a.dims, b.dims, errs.ErrInvalidArgument)
	}
	var points []Offset
	for _, pa := range a.points {
		for _, pb := range b.points {
			points = append(points, pa.Add(pb))
		}
	}
	return New(points)
}

// MinkowskiMultiple returns the Minkowski k-multiple of p: the Minkowski sum
// of p with itself k times. MinkowskiMultiple(p, 1) == p; k must be >= 1.
func MinkowskiMultiple(p *Pattern, k int) (*Pattern, error) {
	if k < 1 {
		return nil, fmt.Errorf("Minkowski multiple k=%d must be >= 1: %w", k, errs.ErrInvalidArgument)
	}
	result := p
	for i := 1; i < k; i++ {
		next, err := MinkowskiSum(result, p)
		if err != nil {
			return nil, err
		}
		result = next
	}
	return result, nil
}
