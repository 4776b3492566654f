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

// Package rank implements the RankOperationProcessor: for a source array and
// a pattern's linear shift deltas, it produces operator output one element
// at a time, accelerating contiguous ranges by sliding one or two histograms
// incrementally across the pattern's shift set (spec §2, §4.4).
package rank

import (
	"fmt"

	"github.com/aperturego/aperture/errs"
	"github.com/aperturego/aperture/histogram"
	"github.com/aperturego/aperture/kind"
)

// Source is what the rank engine needs from a source array: per-index
// bucket lookup (already resolved for any out-of-range index — a plain
// *array.Array resolves it by pseudo-cyclic wrap, package continuation
// resolves it per the bound ContinuationMode), total element count, and the
// bucket-domain-to-native-value conversion. *array.Array satisfies this
// directly; *continuation.Continuation wraps one to change only Bucket's
// out-of-range behavior.
type Source interface {
	Bucket(i int64) (int64, error)
	Len() int64
	ValueFromBucket(bucket float64) float64
	Precision() kind.Precision
}

// Context carries cancellation and progress reporting for a materializing
// operation (spec §5's ArrayContext::part). Both fields are optional.
type Context struct {
	// Part is invoked periodically with (done, total) to report fractional
	// completion.
	Part func(done, total int64)
	// Cancelled is polled at loop boundaries; if it returns true, the
	// driver stops and returns ErrCancelled. Partial output is undefined.
	Cancelled func() bool
}

func (c Context) cancelled() bool {
	return c.Cancelled != nil && c.Cancelled()
}

func (c Context) report(done, total int64) {
	if c.Part != nil {
		c.Part(done, total)
	}
}

// state is one live incremental-slide position: a histogram (optionally
// sharing its table with a second position) and the linear index it is
// currently positioned at.
type state struct {
	h1 *histogram.Histogram
	h2 *histogram.Histogram
	p  int64
}

// Processor is the RankOperationProcessor bound to one source array and one
// pattern's shift set.
type Processor struct {
	Src         Source
	Shifts      []int64
	Left, Right []int64
	Precision   kind.Precision
	L           int64
	cache       map[int64]*state
}

// NewProcessor builds a processor over src using the given linear shift
// deltas (already resolved from pattern offsets against src's strides).
func NewProcessor(src Source, shifts, left, right []int64) (*Processor, error) {
	if src == nil {
		return nil, fmt.Errorf("nil source array: %w", errs.ErrInvalidArgument)
	}
	if len(shifts) == 0 {
		return nil, fmt.Errorf("pattern has no shifts: %w", errs.ErrInvalidArgument)
	}
	return &Processor{
		Src:       src,
		Shifts:    shifts,
		Left:      left,
		Right:     right,
		Precision: src.Precision(),
		L:         src.Len(),
		cache:     make(map[int64]*state),
	}, nil
}

// bucketAt resolves the bucket at linear index q, which may be outside
// [0, L) — out-of-range resolution is the Source's responsibility (spec
// §4.7: continuation is a property of the source view, not the driver).
func (p *Processor) bucketAt(q int64) (int64, error) {
	return p.Src.Bucket(q)
}

// freshState builds a histogram positioned at starting index p0 by
// including src[(p0-s) mod L] for every shift s.
func (p *Processor) freshState(p0 int64, shared bool) (*state, error) {
	h1, err := histogram.New(p.Precision)
	if err != nil {
		return nil, err
	}
	for _, s := range p.Shifts {
		v, err := p.bucketAt(p0 - s)
		if err != nil {
			return nil, err
		}
		h1.Include(v)
	}
	st := &state{h1: h1, p: p0}
	if shared {
		st.h2 = h1.Share()
	}
	return st, nil
}

// acquire returns a state positioned at p0, reusing a cached state from an
// earlier released range when available.
func (p *Processor) acquire(p0 int64, shared bool) (*state, error) {
	if st, ok := p.cache[p0]; ok {
		delete(p.cache, p0)
		if shared && st.h2 == nil {
			st.h2 = st.h1.Share()
		}
		return st, nil
	}
	return p.freshState(p0, shared)
}

// release caches st for a future range starting at its current position.
func (p *Processor) release(st *state) {
	p.cache[st.p] = st
}

// advance slides st forward by one index: exclude Right shifts at the old
// position, increment, include Left shifts at the new position (spec
// §4.4).
func (p *Processor) advance(st *state) error {
	for _, s := range p.Right {
		v, err := p.bucketAt(st.p - s)
		if err != nil {
			return err
		}
		if err := st.h1.Exclude(v); err != nil {
			return err
		}
	}
	st.p++
	for _, s := range p.Left {
		v, err := p.bucketAt(st.p - s)
		if err != nil {
			return err
		}
		st.h1.Include(v)
	}
	return nil
}

// OperatorFunc computes one output sample given the live histogram(s)
// positioned at linear index p. h2 is nil unless the operator requested a
// shared second position.
type OperatorFunc func(p int64, h1, h2 *histogram.Histogram) (float64, error)

// Materialize evaluates op over count consecutive linear indices starting at
// start, maintaining a live (optionally shared-pair) histogram slide. The
// source's L=0 (empty) case returns immediately without reading the source,
// with count zero values (spec §4.5).
func (p *Processor) Materialize(start, count int64, shared bool, op OperatorFunc, ctx Context) ([]float64, error) {
	out := make([]float64, count)
	if p.L == 0 || count == 0 {
		return out, nil
	}
	st, err := p.acquire(start, shared)
	if err != nil {
		return nil, err
	}
	for i := int64(0); i < count; i++ {
		if i > 0 {
			if err := p.advance(st); err != nil {
				return nil, err
			}
		}
		if ctx.cancelled() {
			return nil, errs.ErrCancelled
		}
		v, err := op(st.p, st.h1, st.h2)
		if err != nil {
			return nil, err
		}
		out[i] = v
		if i%4096 == 0 {
			ctx.report(i, count)
		}
	}
	ctx.report(count, count)
	// Cache the slide under the post-increment index, so a range starting
	// right after this one continues it instead of rebuilding.
	if err := p.advance(st); err == nil {
		p.release(st)
	}
	return out, nil
}
