// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projg2/requireduse/internal/requireduse/flatten"
	"github.com/projg2/requireduse/internal/requireduse/sortnary"
	"github.com/projg2/requireduse/internal/requireduse/verify"
)

// verifyConfig holds configuration for the verify command.
type verifyConfig struct {
	immutables []string
	profile    string
}

// newVerifyCmd creates the verify subcommand with all flags configured.
func newVerifyCmd() *cobra.Command {
	cfg := &verifyConfig{}

	cmd := &cobra.Command{
		Use:   "verify <constraint>",
		Short: "Run the static self-conflict/immutability/conflict/back-alteration analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, cfg, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&cfg.immutables, "immutable", nil, "fixed flag value, e.g. \"a\" or \"!b\" (repeatable)")
	cmd.Flags().StringVar(&cfg.profile, "profile", "", "YAML profile file providing a default immutable set")

	return cmd
}

func runVerify(cmd *cobra.Command, cfg *verifyConfig, constraint string) error {
	tree, err := parseAndValidate(constraint)
	if err != nil {
		return err
	}

	immutables, err := loadImmutables(cfg.profile, cfg.immutables)
	if err != nil {
		return err
	}

	sorted := sortnary.Sort(tree.Nodes, sortnary.ImmutableKey(immutables))
	paths := flatten.Flatten(sorted)

	out := cmd.OutOrStdout()
	for _, p := range paths {
		fmt.Fprintln(out, p.String())
	}

	if err := verify.All(paths, immutables); err != nil {
		fmt.Fprintln(out, err)
		return nil
	}

	fmt.Fprintln(out, "ok")
	return nil
}
