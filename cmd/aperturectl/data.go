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

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aperturego/aperture/array"
)

// parseUint8CSV parses a comma-separated list of small integers into a byte
// slice, the uint8 data payload every subcommand accepts via --data.
func parseUint8CSV(csv string) ([]uint8, error) {
	fields := strings.Split(csv, ",")
	out := make([]uint8, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid --data entry %q: %w", f, err)
		}
		out = append(out, uint8(v))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("--data must contain at least one value")
	}
	return out, nil
}

// buildArray parses --data into an array.Array, shaped as a 1D row of width
// elements when height<=1, or a width x height 2D grid otherwise.
func buildArray(csv string, width, height int) (*array.Array, error) {
	data, err := parseUint8CSV(csv)
	if err != nil {
		return nil, err
	}
	if height <= 1 {
		if len(data) != width {
			return nil, fmt.Errorf("--data has %d values, want %d for a 1D row", len(data), width)
		}
		return array.NewUint8([]int64{int64(width)}, data)
	}
	want := width * height
	if len(data) != want {
		return nil, fmt.Errorf("--data has %d values, want %d for a %dx%d grid", len(data), want, width, height)
	}
	return array.NewUint8([]int64{int64(width), int64(height)}, data)
}

func formatFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
