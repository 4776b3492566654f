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

// Package morph implements the mathematical-morphology operator skeleton —
// dilation, erosion, and their standard compositions — on top of the rank
// engine's percentile operator: dilation is percentile(r=N), erosion is
// percentile(r=0) over the negated pattern. Every composite operator is
// wired from these two primitives:
//
//	closing              erosion(dilation(src))
//	opening              dilation(erosion(src))
//	weakDilation         dil - (clos - src)        (saturating)
//	weakErosion          ero + (src - open)        (saturating)
//	beucherGradient      dil - ero                 (saturating non-negative)
//	maskedDilationErosion  min(ero(dil(src)), src)
//	maskedErosionDilation  max(dil(ero(src)), src)
package morph

import (
	"github.com/aperturego/aperture/array"
	"github.com/aperturego/aperture/facade"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

// SubtractionMode modifies what Dilation and Erosion return: the plain
// operator result, or its saturating difference against the source in either
// direction. Composite operators always compose from the unmodified
// primitives and ignore the mode.
type SubtractionMode int

const (
	// SubtractionNone returns the operator result unmodified.
	SubtractionNone SubtractionMode = iota
	// SubtractSrcFromResult returns max(0, result - src): the top-hat
	// residue for dilation.
	SubtractSrcFromResult
	// SubtractResultFromSrc returns max(0, src - result): the top-hat
	// residue for erosion.
	SubtractResultFromSrc
)

// saturatingSub is max(0, a-b) for the non-negative bucket/value domains
// every supported kind quantizes into; floats in [0,1) saturate at 0 the
// same way.
func saturatingSub(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return 0
	}
	return d
}

// Morphology binds one source array and one pattern to the dilation and
// erosion processors it composes from.
type Morphology struct {
	src     *array.Array
	pat     *pattern.Pattern
	dilProc *facade.StreamingApertureProcessor
	eroProc *facade.StreamingApertureProcessor
	n       float64
	sub     SubtractionMode
}

// New binds pat to src. sub modifies Dilation and Erosion only.
func New(src *array.Array, pat *pattern.Pattern, sub SubtractionMode) (*Morphology, error) {
	dilProc, err := facade.New(src, pat)
	if err != nil {
		return nil, err
	}
	eroProc, err := facade.New(src, pat.Negated())
	if err != nil {
		return nil, err
	}
	return &Morphology{
		src:     src,
		pat:     pat,
		dilProc: dilProc,
		eroProc: eroProc,
		n:       float64(pat.PointCount()),
		sub:     sub,
	}, nil
}

// dilationRaw returns the aperture maximum per element, in the source's
// native value domain, with no SubtractionMode applied.
func (m *Morphology) dilationRaw(ctx rank.Context) ([]float64, error) {
	return m.dilProc.MaterializeAll(false, m.dilProc.Percentile(rank.Const(m.n), false), ctx)
}

// erosionRaw returns the aperture minimum per element (over the negated
// pattern), with no SubtractionMode applied.
func (m *Morphology) erosionRaw(ctx rank.Context) ([]float64, error) {
	return m.eroProc.MaterializeAll(false, m.eroProc.Percentile(rank.Const(0), false), ctx)
}

// applySubtraction folds the configured SubtractionMode into an operator
// result, elementwise against the source.
func (m *Morphology) applySubtraction(result []float64) ([]float64, error) {
	if m.sub == SubtractionNone {
		return result, nil
	}
	return m.combineWithSource(result, func(src, r float64) float64 {
		if m.sub == SubtractSrcFromResult {
			return saturatingSub(r, src)
		}
		return saturatingSub(src, r)
	})
}

// Dilation returns the per-element maximum over the pattern's aperture
// (percentile at r=N), modified by the configured SubtractionMode.
func (m *Morphology) Dilation(ctx rank.Context) ([]float64, error) {
	dil, err := m.dilationRaw(ctx)
	if err != nil {
		return nil, err
	}
	return m.applySubtraction(dil)
}

// Erosion returns the per-element minimum over the negated pattern's
// aperture (percentile at r=0), modified by the configured SubtractionMode.
func (m *Morphology) Erosion(ctx rank.Context) ([]float64, error) {
	ero, err := m.erosionRaw(ctx)
	if err != nil {
		return nil, err
	}
	return m.applySubtraction(ero)
}

func (m *Morphology) combineWithSource(other []float64, f func(src, other float64) float64) ([]float64, error) {
	out := make([]float64, len(other))
	for i := range other {
		srcBucket, err := m.src.Bucket(int64(i))
		if err != nil {
			return nil, err
		}
		out[i] = f(m.src.ValueFromBucket(float64(srcBucket)), other[i])
	}
	return out, nil
}

// Closing applies erosion to the dilation of src: erosion(dilation(src)),
// the composition that fills small dark gaps without shrinking bright
// regions.
func (m *Morphology) Closing(ctx rank.Context) ([]float64, error) {
	return m.chain(m.pat, m.pat, true, ctx)
}

// Opening applies dilation to the erosion of src: dilation(erosion(src)),
// the composition that removes small bright regions without eroding large
// ones.
func (m *Morphology) Opening(ctx rank.Context) ([]float64, error) {
	return m.chain(m.pat, m.pat, false, ctx)
}

// chain runs a two-stage dilation/erosion composition: dilateFirst selects
// erosion(dilation) (closing-shaped) vs dilation(erosion) (opening-shaped),
// with per-stage patterns.
func (m *Morphology) chain(firstPat, secondPat *pattern.Pattern, dilateFirst bool, ctx rank.Context) ([]float64, error) {
	firstM, err := New(m.src, firstPat, SubtractionNone)
	if err != nil {
		return nil, err
	}
	var mid *array.Array
	if dilateFirst {
		mid, err = firstM.materializeIntoLike(firstM.dilProc, firstM.dilProc.PercentileBucket(rank.Const(firstM.n), false), ctx)
	} else {
		mid, err = firstM.materializeIntoLike(firstM.eroProc, firstM.eroProc.PercentileBucket(rank.Const(0), false), ctx)
	}
	if err != nil {
		return nil, err
	}
	secondM, err := New(mid, secondPat, SubtractionNone)
	if err != nil {
		return nil, err
	}
	if dilateFirst {
		return secondM.erosionRaw(ctx)
	}
	return secondM.dilationRaw(ctx)
}

// WeakDilation returns dil - (clos - src), saturating: a dilation with the
// closing's residue subtracted back out, so flat regions pass through
// unchanged while genuine bright structure still grows.
func (m *Morphology) WeakDilation(ctx rank.Context) ([]float64, error) {
	dil, err := m.dilationRaw(ctx)
	if err != nil {
		return nil, err
	}
	clos, err := m.Closing(ctx)
	if err != nil {
		return nil, err
	}
	residue, err := m.combineWithSource(clos, func(src, c float64) float64 {
		return saturatingSub(c, src)
	})
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(dil))
	for i := range dil {
		out[i] = saturatingSub(dil[i], residue[i])
	}
	return out, nil
}

// WeakErosion returns ero + (src - open), saturating: the dual of
// WeakDilation.
func (m *Morphology) WeakErosion(ctx rank.Context) ([]float64, error) {
	ero, err := m.erosionRaw(ctx)
	if err != nil {
		return nil, err
	}
	open, err := m.Opening(ctx)
	if err != nil {
		return nil, err
	}
	residue, err := m.combineWithSource(open, func(src, o float64) float64 {
		return saturatingSub(src, o)
	})
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(ero))
	for i := range ero {
		out[i] = ero[i] + residue[i]
	}
	return out, nil
}

// BeucherGradient returns dilation - erosion, saturating non-negative — the
// standard morphological edge detector.
func (m *Morphology) BeucherGradient(ctx rank.Context) ([]float64, error) {
	dil, err := m.dilationRaw(ctx)
	if err != nil {
		return nil, err
	}
	ero, err := m.erosionRaw(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(dil))
	for i := range dil {
		out[i] = saturatingSub(dil[i], ero[i])
	}
	return out, nil
}

// MaskedDilationErosion dilates src with the bound pattern, erodes the
// result with eroPat, and clamps elementwise to never exceed src:
// min(ero(dil(src)), src). With eroPat equal to the bound pattern the chain
// is a closing, making the clamp an exact restoration of src; a smaller
// eroPat leaves part of the dilation's growth in place, bounded by src.
func (m *Morphology) MaskedDilationErosion(eroPat *pattern.Pattern, ctx rank.Context) ([]float64, error) {
	chained, err := m.chain(m.pat, eroPat, true, ctx)
	if err != nil {
		return nil, err
	}
	return m.combineWithSource(chained, func(src, c float64) float64 {
		if c > src {
			return src
		}
		return c
	})
}

// MaskedErosionDilation is the dual: erodes src with the bound pattern,
// dilates the result with dilPat, and clamps elementwise to never fall below
// src: max(dil(ero(src)), src).
func (m *Morphology) MaskedErosionDilation(dilPat *pattern.Pattern, ctx rank.Context) ([]float64, error) {
	chained, err := m.chain(m.pat, dilPat, false, ctx)
	if err != nil {
		return nil, err
	}
	return m.combineWithSource(chained, func(src, c float64) float64 {
		if c < src {
			return src
		}
		return c
	})
}

func (m *Morphology) materializeIntoLike(sap *facade.StreamingApertureProcessor, op rank.OperatorFunc, ctx rank.Context) (*array.Array, error) {
	vals, err := sap.MaterializeAll(false, op, ctx)
	if err != nil {
		return nil, err
	}
	dst, err := array.NewLike(m.src)
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if err := dst.SetFromBucket(int64(i), int64(v)); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
