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

	"github.com/aperturego/aperture/rank"
)

var erodeCmd = &cobra.Command{
	Use:   "erode",
	Short: "Compute the erosion (aperture minimum) of a synthetic array",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMorphology(cmd)
		if err != nil {
			return err
		}
		out, err := m.Erosion(rank.Context{})
		if err != nil {
			return err
		}
		return printResult(cmd, "erosion", out)
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Compute the morphological closing (erosion of dilation)",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMorphology(cmd)
		if err != nil {
			return err
		}
		out, err := m.Closing(rank.Context{})
		if err != nil {
			return err
		}
		return printResult(cmd, "closing", out)
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Compute the morphological opening (dilation of erosion)",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMorphology(cmd)
		if err != nil {
			return err
		}
		out, err := m.Opening(rank.Context{})
		if err != nil {
			return err
		}
		return printResult(cmd, "opening", out)
	},
}

var gradientCmd = &cobra.Command{
	Use:   "gradient",
	Short: "Compute the Beucher gradient (dilation minus erosion)",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := buildMorphology(cmd)
		if err != nil {
			return err
		}
		out, err := m.BeucherGradient(rank.Context{})
		if err != nil {
			return err
		}
		return printResult(cmd, "gradient", out)
	},
}

func init() {
	addMorphFlags(erodeCmd)
	addMorphFlags(closeCmd)
	addMorphFlags(openCmd)
	addMorphFlags(gradientCmd)
	rootCmd.AddCommand(erodeCmd, closeCmd, openCmd, gradientCmd)
}
