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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aperturego/aperture/granulometry"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

var (
	granMaxIterations int
	granAccumulate    bool
)

var granulometryCmd = &cobra.Command{
	Use:   "granulometry",
	Short: "Run the iterative-opening granulometry driver and print its pattern spectrum",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := buildArray(morphData, morphWidth, morphHeight)
		if err != nil {
			return err
		}
		var basePat *pattern.Pattern
		if morphHeight > 1 {
			basePat, err = pattern.Rectangle(morphRadius, morphRadius)
		} else {
			basePat, err = pattern.Segment1D(morphRadius)
		}
		if err != nil {
			return err
		}
		d, err := granulometry.New(src, basePat)
		if err != nil {
			return err
		}
		if granAccumulate {
			d = d.WithAccumulator()
		}
		res, err := d.Run(granMaxIterations, rank.Context{})
		if err != nil {
			return err
		}
		if morphJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(res)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "iterations=%d done=%t\n", res.Iterations, res.Done)
		fmt.Fprintf(cmd.OutOrStdout(), "sums: %s\n", formatFloats(res.SumsOfOpenings))
		if res.Accumulated != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "accumulated: %s\n", formatFloats(res.Accumulated))
		}
		return nil
	},
}

func init() {
	addMorphFlags(granulometryCmd)
	granulometryCmd.Flags().IntVar(&granMaxIterations, "max-iterations", 5, "maximum number of granulometry steps to run")
	granulometryCmd.Flags().BoolVar(&granAccumulate, "accumulate", false, "reconstruct each opening and accumulate the pattern spectrum matrix")
	rootCmd.AddCommand(granulometryCmd)
}
