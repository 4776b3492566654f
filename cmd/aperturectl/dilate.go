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

	"github.com/aperturego/aperture/morph"
	"github.com/aperturego/aperture/pattern"
	"github.com/aperturego/aperture/rank"
)

var (
	morphData   string
	morphWidth  int
	morphHeight int
	morphRadius int
	morphJSON   bool
)

func addMorphFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&morphData, "data", "", "comma-separated uint8 values")
	cmd.Flags().IntVar(&morphWidth, "width", 0, "row width (1D length when height<=1)")
	cmd.Flags().IntVar(&morphHeight, "height", 0, "grid height; 0 or 1 for a 1D array")
	cmd.Flags().IntVar(&morphRadius, "radius", 1, "structuring element radius along each axis")
	cmd.Flags().BoolVar(&morphJSON, "json", false, "print machine-readable JSON instead of a comma-separated list")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("width")
}

func buildMorphology(cmd *cobra.Command) (*morph.Morphology, error) {
	src, err := buildArray(morphData, morphWidth, morphHeight)
	if err != nil {
		return nil, err
	}
	var pat *pattern.Pattern
	if morphHeight > 1 {
		pat, err = pattern.Rectangle(morphRadius, morphRadius)
	} else {
		pat, err = pattern.Segment1D(morphRadius)
	}
	if err != nil {
		return nil, err
	}
	return morph.New(src, pat, morph.SubtractionNone)
}

func printResult(cmd *cobra.Command, label string, vals []float64) error {
	if morphJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		return enc.Encode(map[string]any{label: vals})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", label, formatFloats(vals))
	return nil
}

var dilateCmd = &cobra.Command{
	Use:   "dilate",
	Short: "Compute the dilation (aperture maximum) of a synthetic array",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMorphology(cmd)
		if err != nil {
			return err
		}
		out, err := m.Dilation(rank.Context{})
		if err != nil {
			return err
		}
		return printResult(cmd, "dilation", out)
	},
}

func init() {
	addMorphFlags(dilateCmd)
	rootCmd.AddCommand(dilateCmd)
}
