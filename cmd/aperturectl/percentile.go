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
	"github.com/spf13/cobra"

	"github.com/aperturego/aperture/facade"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

var (
	percentileRank    float64
	percentilePrecise bool
)

var percentileCmd = &cobra.Command{
	Use:   "percentile",
	Short: "Compute the rank-r percentile over a sliding aperture",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := buildArray(morphData, morphWidth, morphHeight)
		if err != nil {
			return err
		}
		var pat *pattern.Pattern
		if morphHeight > 1 {
			pat, err = pattern.Rectangle(morphRadius, morphRadius)
		} else {
			pat, err = pattern.Segment1D(morphRadius)
		}
		if err != nil {
			return err
		}
		proc, err := facade.New(src, pat)
		if err != nil {
			return err
		}
		out, err := proc.MaterializeAll(false, proc.Percentile(rank.Const(percentileRank), percentilePrecise), rank.Context{})
		if err != nil {
			return err
		}
		return printResult(cmd, "percentile", out)
	},
}

func init() {
	addMorphFlags(percentileCmd)
	percentileCmd.Flags().Float64Var(&percentileRank, "rank", 0, "fractional rank r, in [0, patternSize]")
	percentileCmd.Flags().BoolVar(&percentilePrecise, "precise", false, "interpolate between buckets instead of snapping to one")
	rootCmd.AddCommand(percentileCmd)
}
