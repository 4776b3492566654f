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

// Package continuation implements the boundary-extension wrapper: given a
// source array and a declared ContinuationMode, it resolves out-of-range
// per-axis coordinates before handing a legal index back to the array for
// the actual bucket lookup (spec §4.7). It wraps any array.Array and
// satisfies rank.Source, so a Processor built over a Continuation sees
// seamless reads regardless of how far outside the source's extent a
// pattern offset reaches.
package continuation

import (
	"fmt"

	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/errs"
	"github.com/aperturego/aperture/kind"
)

// Mode selects the boundary-extension rule.
type Mode int

const (
	// ModeNone is the zero value and is always rejected by New — every
	// caller must pick an explicit mode (spec §4.7: "NONE is rejected").
	ModeNone Mode = iota
	// ModeCyclic wraps coordinates with a true modulo (negative values
	// wrap from the top, as if tiling the array without reflection).
	ModeCyclic
	// ModePseudoCyclic is array.Wrap's pseudo-cyclic wrap applied
	// per-axis: (c % d + d) % d. Equivalent to ModeCyclic for this
	// package's integer coordinates; kept distinct because spec §4.1's
	// histogram MoveToRank tie-breaking and this wrap share the name but
	// are independent concepts, and a future signed-remainder
	// distinction may apply to non-integer continuations.
	ModePseudoCyclic
	// ModeMirrorCyclic reflects at each boundary and keeps reflecting
	// cyclically beyond that (period 2*d).
	ModeMirrorCyclic
	// ModeZeroConstant treats every out-of-range read as bucket 0.
	ModeZeroConstant
	// ModeConstant treats every out-of-range read as a fixed configured
	// bucket value.
	ModeConstant
	// ModeNearest clamps to the nearest in-range coordinate (replicate
	// the edge element).
	ModeNearest
)

// Continuation wraps a source array, resolving any linear index (including
// ones outside [0, L)) to a legal bucket read according to Mode.
type Continuation struct {
	src          *array.Array
	dims         []int64
	strides      []int64
	mode         Mode
	constBucket  int64
	hasConstMode bool
}

// New builds a Continuation over src under mode. constBucket is only used
// by ModeConstant (spec §4.7's CONSTANT(c)) and is ignored otherwise.
func New(src *array.Array, mode Mode, constBucket int64) (*Continuation, error) {
	if mode == ModeNone {
		return nil, fmt.Errorf("continuation mode NONE is not a valid boundary policy: %w", errs.ErrInvalidArgument)
	}
	dims := src.Dims()
	return &Continuation{
		src:          src,
		dims:         dims,
		strides:      array.Strides(dims),
		mode:         mode,
		constBucket:  constBucket,
		hasConstMode: mode == ModeConstant,
	}, nil
}

// Len returns the wrapped source's element count.
func (c *Continuation) Len() int64 { return c.src.Len() }

// Precision returns the wrapped source's quantization configuration.
func (c *Continuation) Precision() kind.Precision { return c.src.Precision() }

// ValueFromBucket delegates to the wrapped source.
func (c *Continuation) ValueFromBucket(bucket float64) float64 { return c.src.ValueFromBucket(bucket) }

func (c *Continuation) decompose(i int64) []int64 {
	coords := make([]int64, len(c.dims))
	for d := len(c.dims) - 1; d >= 0; d-- {
		if c.dims[d] == 0 {
			continue
		}
		coords[d] = i / c.strides[d]
		i -= coords[d] * c.strides[d]
	}
	return coords
}

func (c *Continuation) recompose(coords []int64) int64 {
	var i int64
	for d := range coords {
		i += coords[d] * c.strides[d]
	}
	return i
}

// resolveAxis maps one out-of-range coordinate c along an axis of extent d
// to an in-range coordinate, per Mode. ModeZeroConstant and ModeConstant are
// not resolved here (callers short-circuit the whole lookup for them); any
// mode without a case of its own falls back to a cyclic wrap.
func resolveAxis(mode Mode, c, d int64) int64 {
	if d <= 0 {
		return 0
	}
	switch mode {
	case ModeCyclic, ModePseudoCyclic:
		return array.Wrap(c, d)
	case ModeMirrorCyclic:
		period := 2 * d
		c = array.Wrap(c, period)
		if c >= d {
			c = period - 1 - c
		}
		return c
	case ModeNearest:
		if c < 0 {
			return 0
		}
		if c >= d {
			return d - 1
		}
		return c
	default:
		return array.Wrap(c, d)
	}
}

func inRange(coords, dims []int64) bool {
	for d := range coords {
		if coords[d] < 0 || coords[d] >= dims[d] {
			return false
		}
	}
	return true
}

// Bucket resolves the out-of-range linear index i per Mode and returns the
// underlying array's bucket value. ModeZeroConstant/ModeConstant never
// touch the array for an out-of-range read; every other mode always
// produces an in-range coordinate first.
func (c *Continuation) Bucket(i int64) (int64, error) {
	coords := c.decompose(i)
	if !inRange(coords, c.dims) {
		switch c.mode {
		case ModeZeroConstant:
			return 0, nil
		case ModeConstant:
			return c.constBucket, nil
		}
		for d := range coords {
			coords[d] = resolveAxis(c.mode, coords[d], c.dims[d])
		}
	}
	return c.src.Bucket(c.recompose(coords))
}
