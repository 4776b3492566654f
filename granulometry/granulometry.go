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

// Package granulometry implements the iterative opening driver: a chain of
// erosions of a running "current" matrix, rotating through the supplied
// patterns, recording the granulometric sum at each step and reconstructing
// openings into an accumulator, until an erosion leaves the current matrix
// unchanged. After the first full rotation the driver switches from the
// literal patterns to their carcasses, so large structuring elements stay
// cheap to re-derive.
package granulometry

import (
	"fmt"

	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/errs"
	"github.com/aperturego/aperture/morph"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

// accumulatorRing is how many reconstructed openings are batched before
// being flushed into the accumulator.
const accumulatorRing = 4

// Result is a completed run's state.
type Result struct {
	// SumsOfOpenings holds, per slot k, the element sum of the running
	// matrix at the start of iteration k+1. The slice is preallocated to
	// the iteration budget; slots past the stopping iteration stay zero.
	// The sequence is non-increasing while the driver runs.
	SumsOfOpenings []float64
	// Accumulated is the running accumulator of reconstructed openings
	// (dilations of the eroded matrix by the Minkowski multiple matching
	// its erosion depth), or nil if accumulation was not requested.
	Accumulated []float64
	// Iterations is the number of iterations executed, including the final
	// one that detected stability.
	Iterations int
	// Done reports that the run stopped because an erosion left the
	// current matrix unchanged, rather than by exhausting the budget.
	Done bool
}

// Driver runs the iterative opening over a source with a rotation of base
// patterns.
type Driver struct {
	src        *array.Array
	patterns   []*pattern.Pattern
	accumulate bool
}

// New builds a Driver rotating through patterns, one per iteration.
func New(src *array.Array, patterns ...*pattern.Pattern) (*Driver, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("granulometry needs at least one pattern: %w", errs.ErrInvalidArgument)
	}
	return &Driver{src: src, patterns: patterns}, nil
}

// WithAccumulator enables reconstruction of each iteration's opening and its
// batched accumulation into Result.Accumulated.
func (d *Driver) WithAccumulator() *Driver {
	d.accumulate = true
	return d
}

// compareAndCopy copies next over cur, reporting whether any element
// differed — the fused stopping test, avoiding a separate equality scan.
func compareAndCopy(cur, next []float64) bool {
	changed := false
	for i := range cur {
		if cur[i] != next[i] {
			changed = true
		}
		cur[i] = next[i]
	}
	return changed
}

// Run executes up to maxIterations erosion steps and returns the completed
// Result. Iteration k erodes the current matrix with patterns[k mod K] (its
// carcass once the first K iterations have passed); if the erosion changes
// nothing the driver stops with Done set, otherwise it records the current
// matrix's element sum, reconstructs the opening into the accumulator when
// enabled, and replaces the current matrix with the eroded one.
func (d *Driver) Run(maxIterations int, ctx rank.Context) (*Result, error) {
	if maxIterations < 1 {
		return nil, fmt.Errorf("maxIterations %d must be >= 1: %w", maxIterations, errs.ErrInvalidArgument)
	}
	res := &Result{SumsOfOpenings: make([]float64, maxIterations)}
	if d.accumulate {
		res.Accumulated = make([]float64, d.src.Len())
	}

	cur, curArr, err := d.sourceValues()
	if err != nil {
		return nil, err
	}
	var store [][]float64
	useCarcasses := false
	multiplicity := 0

	for it := 1; it <= maxIterations; it++ {
		pat := d.patterns[(it-1)%len(d.patterns)]
		if useCarcasses {
			pat = pat.Carcass()
		}

		m, err := morph.New(curArr, pat, morph.SubtractionNone)
		if err != nil {
			return nil, err
		}
		eroded, err := m.Erosion(ctx)
		if err != nil {
			return nil, err
		}

		res.Iterations = it
		var sum float64
		for _, v := range cur {
			sum += v
		}
		if !compareAndCopy(cur, eroded) {
			res.Done = true
			break
		}
		res.SumsOfOpenings[it-1] = sum
		multiplicity++

		curArr, err = d.toArray(cur)
		if err != nil {
			return nil, err
		}
		if d.accumulate {
			opening, err := d.reconstruct(curArr, pat, multiplicity, ctx)
			if err != nil {
				return nil, err
			}
			store = append(store, opening)
			if len(store) == accumulatorRing {
				flush(res.Accumulated, store)
				store = store[:0]
			}
		}
		if it >= len(d.patterns) {
			useCarcasses = true
		}
	}
	flush(res.Accumulated, store)
	return res, nil
}

// reconstruct dilates the eroded matrix by the Minkowski multiple matching
// its erosion depth, yielding the opening of the original source at that
// granulometric size.
func (d *Driver) reconstruct(erodedArr *array.Array, pat *pattern.Pattern, multiplicity int, ctx rank.Context) ([]float64, error) {
	mpat, err := pattern.MinkowskiMultiple(pat, multiplicity)
	if err != nil {
		return nil, err
	}
	m, err := morph.New(erodedArr, mpat, morph.SubtractionNone)
	if err != nil {
		return nil, err
	}
	return m.Dilation(ctx)
}

func flush(acc []float64, store [][]float64) {
	if acc == nil {
		return
	}
	for _, opening := range store {
		for i, v := range opening {
			acc[i] += v
		}
	}
}

func (d *Driver) sourceValues() ([]float64, *array.Array, error) {
	n := d.src.Len()
	out := make([]float64, n)
	for i := range out {
		b, err := d.src.Bucket(int64(i))
		if err != nil {
			return nil, nil, err
		}
		out[i] = d.src.ValueFromBucket(float64(b))
	}
	return out, d.src, nil
}

// toArray writes native-domain values back into a fresh array shaped like
// the source, so the next erosion can slide over them.
func (d *Driver) toArray(vals []float64) (*array.Array, error) {
	arr, err := array.NewLike(d.src)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if err := arr.SetFromValue(int64(i), v); err != nil {
			return nil, err
		}
	}
	return arr, nil
}
