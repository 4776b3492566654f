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

// Package facade implements the StreamingApertureProcessor: the surface
// that binds a Pattern's offsets to a source array's strides, producing the
// linear shift/left/right sets the rank engine slides with, and exposes
// per-element, range, and pool-parallel materialization (spec §6).
package facade

import (
	"fmt"
	"sync"

	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/errs"
	"github.com/aperturego/aperture/internal/workerpool"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

// StreamingApertureProcessor binds one Pattern to one source array and
// drives the rank engine over it.
type StreamingApertureProcessor struct {
	proc *rank.Processor
	pat  *pattern.Pattern
}

func toShifts(points []pattern.Offset, strides []int64) []int64 {
	out := make([]int64, len(points))
	for i, pt := range points {
		var s int64
		for d, c := range pt {
			s += int64(c) * strides[d]
		}
		out[i] = s
	}
	return out
}

// New binds pat to src, resolving offsets against src's strides (spec §9:
// advancing the linear index by 1 moves along axis 0, the pattern's e0).
func New(src *array.Array, pat *pattern.Pattern) (*StreamingApertureProcessor, error) {
	return NewWithSource(src.Dims(), src, pat)
}

// NewWithSource is like New but lets the caller substitute the rank.Source
// the engine reads through — typically a *continuation.Continuation
// wrapping src, to change out-of-range boundary behavior (spec §4.7). dims
// must be src's shape; it drives offset-to-stride resolution independently
// of how rankSrc resolves out-of-range reads.
func NewWithSource(dims []int64, rankSrc rank.Source, pat *pattern.Pattern) (*StreamingApertureProcessor, error) {
	if pat.DimCount() != len(dims) {
		return nil, fmt.Errorf("pattern has %d dims, source has %d: %w", pat.DimCount(), len(dims), errs.ErrSizeMismatch)
	}
	strides := array.Strides(dims)
	shifts := toShifts(pat.RoundedPoints(), strides)
	leftOffsets, rightOffsets := pat.LeftRight()
	left := toShifts(leftOffsets, strides)
	right := toShifts(rightOffsets, strides)

	proc, err := rank.NewProcessor(rankSrc, shifts, left, right)
	if err != nil {
		return nil, err
	}
	return &StreamingApertureProcessor{proc: proc, pat: pat}, nil
}

// Len returns L, the number of output elements (one per source element).
func (s *StreamingApertureProcessor) Len() int64 { return s.proc.Src.Len() }

// Pattern returns the bound structuring element.
func (s *StreamingApertureProcessor) Pattern() *pattern.Pattern { return s.pat }

// MaterializeRange runs op over count consecutive linear indices starting at
// start, sliding a live histogram incrementally (spec §4.4/§5).
func (s *StreamingApertureProcessor) MaterializeRange(start, count int64, shared bool, op rank.OperatorFunc, ctx rank.Context) ([]float64, error) {
	return s.proc.Materialize(start, count, shared, op, ctx)
}

// MaterializeAll runs op over every element of the source array.
func (s *StreamingApertureProcessor) MaterializeAll(shared bool, op rank.OperatorFunc, ctx rank.Context) ([]float64, error) {
	return s.proc.Materialize(0, s.proc.Src.Len(), shared, op, ctx)
}

// MaterializeParallel splits the full output range across pool's workers.
// Each worker gets its own Processor (a Processor's live slide state is not
// safe for concurrent use, spec §5), so every range pays its own fresh-start
// cost at the boundary rather than continuing another worker's slide.
func (s *StreamingApertureProcessor) MaterializeParallel(pool *workerpool.Pool, shared bool, op rank.OperatorFunc) ([]float64, error) {
	n := s.proc.Src.Len()
	out := make([]float64, n)
	var mu sync.Mutex
	var firstErr error

	pool.ParallelFor(int(n), func(start, end int) {
		localProc, err := rank.NewProcessor(s.proc.Src, s.proc.Shifts, s.proc.Left, s.proc.Right)
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		res, err := localProc.Materialize(int64(start), int64(end-start), shared, op, rank.Context{})
		if err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			return
		}
		copy(out[start:end], res)
	})

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Percentile binds rank.Percentile to this processor.
func (s *StreamingApertureProcessor) Percentile(r rank.Scalar, precise bool) rank.OperatorFunc {
	return rank.Percentile(s.proc, r, precise)
}

// PercentileBucket binds rank.PercentileBucket to this processor.
func (s *StreamingApertureProcessor) PercentileBucket(r rank.Scalar, precise bool) rank.OperatorFunc {
	return rank.PercentileBucket(s.proc, r, precise)
}

// Rank binds rank.Rank to this processor.
func (s *StreamingApertureProcessor) Rank(v rank.Scalar, precise bool) rank.OperatorFunc {
	return rank.Rank(s.proc, v, precise)
}

// Mean binds rank.Mean to this processor.
func (s *StreamingApertureProcessor) Mean() rank.OperatorFunc {
	return rank.Mean(s.proc)
}

// MeanBetweenValues binds rank.MeanBetweenValues to this processor.
func (s *StreamingApertureProcessor) MeanBetweenValues(v1, v2 rank.Scalar, filler rank.Filler, precise bool) rank.OperatorFunc {
	return rank.MeanBetweenValues(s.proc, v1, v2, filler, precise)
}

// MeanBetweenPercentiles binds rank.MeanBetweenPercentiles to this processor.
func (s *StreamingApertureProcessor) MeanBetweenPercentiles(r1, r2 rank.Scalar, filler rank.Filler, precise bool) rank.OperatorFunc {
	return rank.MeanBetweenPercentiles(s.proc, r1, r2, filler, precise)
}

// FunctionOfSum binds rank.FunctionOfSum to this processor.
func (s *StreamingApertureProcessor) FunctionOfSum(f func(sum float64) float64) rank.OperatorFunc {
	return rank.FunctionOfSum(s.proc, f)
}

// FunctionOfPercentilePair binds rank.FunctionOfPercentilePair to this
// processor.
func (s *StreamingApertureProcessor) FunctionOfPercentilePair(r1, r2 rank.Scalar, precise bool, f func(src, p1, p2 float64) float64) rank.OperatorFunc {
	return rank.FunctionOfPercentilePair(s.proc, r1, r2, precise, f)
}
