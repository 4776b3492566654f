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

// Package errs defines the sentinel error kinds shared across the aperture
// engine. Every fallible entry point wraps one of these with fmt.Errorf's
// %w so callers can errors.Is against a kind without parsing messages.
package errs

import "errors"

var (
	// ErrInvalidArgument covers malformed patterns, control arrays, bit
	// levels, rectangle dimensions, and rejected continuation modes.
	ErrInvalidArgument = errors.New("aperture: invalid argument")

	// ErrSizeMismatch covers destination/source dimension or control-array
	// length mismatches.
	ErrSizeMismatch = errors.New("aperture: size mismatch")

	// ErrOutOfIndexRange covers extended dimensions or element counts that
	// would overflow the index type before any allocation happens.
	ErrOutOfIndexRange = errors.New("aperture: out of index range")

	// ErrUnsupported covers element kinds the engine does not implement.
	ErrUnsupported = errors.New("aperture: unsupported element kind")

	// ErrInternalInvariant covers states that should be impossible: a
	// bucket count going negative, or a rank difference significantly
	// negative. Seeing this means there is a bug in the engine itself.
	ErrInternalInvariant = errors.New("aperture: internal invariant violated")

	// ErrCancelled covers cooperative cancellation via ArrayContext;
	// partial output is undefined once this is returned.
	ErrCancelled = errors.New("aperture: cancelled")
)
