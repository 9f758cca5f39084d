// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the requireduse CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requireduse",
		Short: "requireduse - REQUIRED_USE constraint analyzer",
		Long: `requireduse parses, verifies, solves, and graphs Gentoo-style
REQUIRED_USE boolean USE-flag constraint expressions.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newSolveCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newClassifyCmd())
	cmd.AddCommand(newGraphCmd())

	return cmd
}
