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

// Package array is the typed element view the rank and morphology engines
// consume. It generalizes hwy/contrib/image.Image[T]'s aligned 2-D row
// layout to an arbitrary number of dimensions, and adds the per-kind
// value<->bucket quantization spec §3 requires (clamp-to-nonnegative for
// signed integer paths, floor*(M-1) binning with clamping for floats).
//
// Linear index = sum(c[i]*stride[i]), stride[0]=1 (spec §9). A Source never
// has its backing slice mutated by the engine; writes go through Dest.
package array

import (
	"fmt"
	"math"

	"github.com/aperturego/aperture/errs"
	"github.com/aperturego/aperture/kind"
)

// Strides computes row-major strides for dims with stride[0]=1, matching
// spec §9's coordinate system (stride_0 = 1, not the last axis).
func Strides(dims []int64) []int64 {
	strides := make([]int64, len(dims))
	if len(dims) == 0 {
		return strides
	}
	strides[0] = 1
	for i := 1; i < len(dims); i++ {
		strides[i] = strides[i-1] * dims[i-1]
	}
	return strides
}

// Len returns the product of dims (L in spec §4.4), or an error if it would
// overflow an int64.
func Len(dims []int64) (int64, error) {
	l := int64(1)
	for _, d := range dims {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension %d: %w", d, errs.ErrInvalidArgument)
		}
		if d == 0 {
			return 0, nil
		}
		if l > math.MaxInt64/d {
			return 0, fmt.Errorf("dims %v overflow index range: %w", dims, errs.ErrOutOfIndexRange)
		}
		l *= d
	}
	return l, nil
}

// Wrap maps a linear index into [0, L) by pseudo-cyclic wrapping:
// i_wrapped = (i % L + L) % L, per spec §9.
func Wrap(i, l int64) int64 {
	if l == 0 {
		return 0
	}
	i %= l
	if i < 0 {
		i += l
	}
	return i
}

// Array is a typed, flat-backed N-dimensional array view. Exactly one of
// its backing slices is populated, selected by Kind.
type Array struct {
	k         kind.Kind
	dims      []int64
	precision kind.Precision

	bitData []uint8
	u8Data  []uint8
	u16Data []uint16
	i32Data []int32
	i64Data []int64
	f32Data []float32
	f64Data []float64
}

func newArray(k kind.Kind, dims []int64, p kind.Precision) (*Array, error) {
	if _, err := Len(dims); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Array{k: k, dims: append([]int64(nil), dims...), precision: p}, nil
}

// NewBit creates a bit-kind array (data holds 0/1 in each byte).
func NewBit(dims []int64, data []uint8) (*Array, error) {
	a, err := newArray(kind.Bit, dims, kind.Precision{NumberOfAnalyzedBits: 1})
	if err != nil {
		return nil, err
	}
	if err := checkLen(dims, len(data)); err != nil {
		return nil, err
	}
	a.bitData = data
	return a, nil
}

// NewUint8 creates a u8-kind array.
func NewUint8(dims []int64, data []uint8) (*Array, error) {
	a, err := newArray(kind.Uint8, dims, kind.DefaultPrecision(8, false))
	if err != nil {
		return nil, err
	}
	if err := checkLen(dims, len(data)); err != nil {
		return nil, err
	}
	a.u8Data = data
	return a, nil
}

// NewUint16 creates a u16-kind array.
func NewUint16(dims []int64, data []uint16) (*Array, error) {
	a, err := newArray(kind.Uint16, dims, kind.DefaultPrecision(16, false))
	if err != nil {
		return nil, err
	}
	if err := checkLen(dims, len(data)); err != nil {
		return nil, err
	}
	a.u16Data = data
	return a, nil
}

// NewInt32 creates an i32-kind array, read as non-negative (spec §3).
// precisionBits selects how many bits the histogram analyzes (1..30).
func NewInt32(dims []int64, data []int32, precisionBits int) (*Array, error) {
	a, err := newArray(kind.Int32, dims, kind.DefaultPrecision(precisionBits, false))
	if err != nil {
		return nil, err
	}
	if err := checkLen(dims, len(data)); err != nil {
		return nil, err
	}
	a.i32Data = data
	return a, nil
}

// NewInt64 creates an i64-kind array, read as non-negative (spec §3).
func NewInt64(dims []int64, data []int64, precisionBits int) (*Array, error) {
	a, err := newArray(kind.Int64, dims, kind.DefaultPrecision(precisionBits, false))
	if err != nil {
		return nil, err
	}
	if err := checkLen(dims, len(data)); err != nil {
		return nil, err
	}
	a.i64Data = data
	return a, nil
}

// NewFloat32 creates an f32-kind array; values are expected in [0,1) and are
// quantized via numberOfAnalyzedBits.
func NewFloat32(dims []int64, data []float32, numberOfAnalyzedBits int, interpolated bool) (*Array, error) {
	a, err := newArray(kind.Float32, dims, kind.DefaultPrecision(numberOfAnalyzedBits, interpolated))
	if err != nil {
		return nil, err
	}
	if err := checkLen(dims, len(data)); err != nil {
		return nil, err
	}
	a.f32Data = data
	return a, nil
}

// NewFloat64 creates an f64-kind array; values are expected in [0,1) and are
// quantized via numberOfAnalyzedBits.
func NewFloat64(dims []int64, data []float64, numberOfAnalyzedBits int, interpolated bool) (*Array, error) {
	a, err := newArray(kind.Float64, dims, kind.DefaultPrecision(numberOfAnalyzedBits, interpolated))
	if err != nil {
		return nil, err
	}
	if err := checkLen(dims, len(data)); err != nil {
		return nil, err
	}
	a.f64Data = data
	return a, nil
}

// NewLike allocates a fresh, zero-valued array with src's kind, shape, and
// precision — the destination morph's closing/opening compose writes
// intermediate stages into via SetFromBucket, without re-quantizing through
// a native-value round trip.
func NewLike(src *Array) (*Array, error) {
	return NewLikeWithDims(src, src.dims)
}

// NewLikeWithDims is NewLike with a caller-chosen shape: same kind and
// precision as src, zero-valued backing of the given dims. The continuation
// wrapper uses it to allocate the boundary-padded copy it runs the parent
// operator over.
func NewLikeWithDims(src *Array, dims []int64) (*Array, error) {
	l, err := Len(dims)
	if err != nil {
		return nil, err
	}
	a := &Array{k: src.k, dims: append([]int64(nil), dims...), precision: src.precision}
	n := int(l)
	switch src.k {
	case kind.Bit:
		a.bitData = make([]uint8, n)
	case kind.Uint8:
		a.u8Data = make([]uint8, n)
	case kind.Uint16:
		a.u16Data = make([]uint16, n)
	case kind.Int32:
		a.i32Data = make([]int32, n)
	case kind.Int64:
		a.i64Data = make([]int64, n)
	case kind.Float32:
		a.f32Data = make([]float32, n)
	case kind.Float64:
		a.f64Data = make([]float64, n)
	default:
		return nil, fmt.Errorf("kind %s: %w", src.k, errs.ErrUnsupported)
	}
	return a, nil
}

func checkLen(dims []int64, n int) error {
	l, err := Len(dims)
	if err != nil {
		return err
	}
	if l != int64(n) {
		return fmt.Errorf("data length %d does not match dims %v (L=%d): %w", n, dims, l, errs.ErrSizeMismatch)
	}
	return nil
}

// Kind returns the element-kind discriminant.
func (a *Array) Kind() kind.Kind { return a.k }

// Dims returns a copy of the shape.
func (a *Array) Dims() []int64 {
	out := make([]int64, len(a.dims))
	copy(out, a.dims)
	return out
}

// Precision returns the quantization/interpolation configuration.
func (a *Array) Precision() kind.Precision { return a.precision }

// Len returns L, the total element count.
func (a *Array) Len() int64 {
	l, _ := Len(a.dims)
	return l
}

// Bucket returns the histogram bucket index for the element at linear index
// i, applying the per-kind binning rule. i may be outside [0, L) — it is
// pseudo-cyclically wrapped first, which is the default continuation
// behavior absent an explicit wrapper (package continuation); it mirrors
// this wrap so a continuation-less caller and a CYCLIC/PSEUDO_CYCLIC one see
// the same boundary behavior. Returns ErrInvalidArgument if a float value is
// NaN.
func (a *Array) Bucket(i int64) (int64, error) {
	i = Wrap(i, a.Len())
	m := int64(1) << uint(a.precision.NumberOfAnalyzedBits)
	switch a.k {
	case kind.Bit:
		if a.bitData[i] != 0 {
			return 1, nil
		}
		return 0, nil
	case kind.Uint8:
		return int64(a.u8Data[i]), nil
	case kind.Uint16:
		return int64(a.u16Data[i]), nil
	case kind.Int32:
		v := kind.ClampNonNegative(int64(a.i32Data[i]))
		if v >= m {
			v = m - 1
		}
		return v, nil
	case kind.Int64:
		v := kind.ClampNonNegative(a.i64Data[i])
		if v >= m {
			v = m - 1
		}
		return v, nil
	case kind.Float32:
		v := float64(a.f32Data[i])
		if math.IsNaN(v) {
			return 0, fmt.Errorf("NaN at index %d: %w", i, errs.ErrInvalidArgument)
		}
		return int64(kind.Bucket(v, int(m))), nil
	case kind.Float64:
		v := a.f64Data[i]
		if math.IsNaN(v) {
			return 0, fmt.Errorf("NaN at index %d: %w", i, errs.ErrInvalidArgument)
		}
		return int64(kind.Bucket(v, int(m))), nil
	default:
		return 0, fmt.Errorf("kind %s: %w", a.k, errs.ErrUnsupported)
	}
}

// ControlValue reads i as a control array value used to index a rank
// request (a real-valued rank or value index), unquantized. A NaN here is an
// error, per spec §4.5.
func (a *Array) ControlValue(i int64) (float64, error) {
	i = Wrap(i, a.Len())
	switch a.k {
	case kind.Bit:
		return float64(a.bitData[i]), nil
	case kind.Uint8:
		return float64(a.u8Data[i]), nil
	case kind.Uint16:
		return float64(a.u16Data[i]), nil
	case kind.Int32:
		return float64(a.i32Data[i]), nil
	case kind.Int64:
		return float64(a.i64Data[i]), nil
	case kind.Float32:
		v := float64(a.f32Data[i])
		if math.IsNaN(v) {
			return 0, fmt.Errorf("NaN in control array at index %d: %w", i, errs.ErrInvalidArgument)
		}
		return v, nil
	case kind.Float64:
		v := a.f64Data[i]
		if math.IsNaN(v) {
			return 0, fmt.Errorf("NaN in control array at index %d: %w", i, errs.ErrInvalidArgument)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("kind %s: %w", a.k, errs.ErrUnsupported)
	}
}

// ValueFromBucket converts a (possibly fractional) bucket coordinate back to
// the kind's native value domain: identity for integer kinds, the inverse of
// the floor((M-1)*v) binning for floats.
func (a *Array) ValueFromBucket(bucket float64) float64 {
	if !a.k.IsFloat() {
		return bucket
	}
	m := float64(int64(1) << uint(a.precision.NumberOfAnalyzedBits))
	if m <= 1 {
		return 0
	}
	return bucket / (m - 1)
}

// SetFromBucket writes a computed bucket-domain result back to the array at
// linear index i, converting to the kind's native representation.
func (a *Array) SetFromBucket(i, bucket int64) error {
	switch a.k {
	case kind.Bit:
		if bucket != 0 {
			a.bitData[i] = 1
		} else {
			a.bitData[i] = 0
		}
	case kind.Uint8:
		a.u8Data[i] = uint8(clampInt64(bucket, 0, 255))
	case kind.Uint16:
		a.u16Data[i] = uint16(clampInt64(bucket, 0, 65535))
	case kind.Int32:
		a.i32Data[i] = int32(bucket)
	case kind.Int64:
		a.i64Data[i] = bucket
	case kind.Float32:
		a.f32Data[i] = float32(a.ValueFromBucket(float64(bucket)))
	case kind.Float64:
		a.f64Data[i] = a.ValueFromBucket(float64(bucket))
	default:
		return fmt.Errorf("kind %s: %w", a.k, errs.ErrUnsupported)
	}
	return nil
}

// SetFromValue writes a native-domain value at linear index i: stored
// directly for float kinds, truncated to its (identical) bucket index for
// integer kinds.
func (a *Array) SetFromValue(i int64, v float64) error {
	switch a.k {
	case kind.Float32:
		a.f32Data[i] = float32(v)
		return nil
	case kind.Float64:
		a.f64Data[i] = v
		return nil
	default:
		return a.SetFromBucket(i, int64(v))
	}
}

func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
