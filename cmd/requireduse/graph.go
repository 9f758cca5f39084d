// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/projg2/requireduse/internal/requireduse/flatten"
	"github.com/projg2/requireduse/internal/requireduse/graph"
	"github.com/projg2/requireduse/internal/requireduse/sortnary"
)

// newGraphCmd creates the graph subcommand.
func newGraphCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "graph <constraint>",
		Short: "Print the condition -> effect graph of the flattened paths in DOT format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0])
		},
	}
}

func runGraph(cmd *cobra.Command, constraint string) error {
	tree, err := parseAndValidate(constraint)
	if err != nil {
		return err
	}

	sorted := sortnary.Sort(tree.Nodes, sortnary.ImmutableKey(nil))
	paths := flatten.Flatten(sorted)

	return graph.WriteDOT(cmd.OutOrStdout(), paths)
}
