// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/projg2/requireduse/internal/requireduse/solve"
)

// solveConfig holds configuration for the solve command.
type solveConfig struct {
	immutables []string
	profile    string
	legacy     bool
}

// newSolveCmd creates the solve subcommand with all flags configured.
func newSolveCmd() *cobra.Command {
	cfg := &solveConfig{}

	cmd := &cobra.Command{
		Use:   "solve <constraint>",
		Short: "Print the solved assignment table for every input combination",
		Long: `Enumerates every assignment of the flags referenced by the constraint
and solves from each, printing a colored table: green for an
already-satisfied row, yellow for a row the propagator had to adjust,
red for a row that could not be solved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, cfg, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&cfg.immutables, "immutable", nil, "fixed flag value, e.g. \"a\" or \"!b\" (repeatable)")
	cmd.Flags().StringVar(&cfg.profile, "profile", "", "YAML profile file providing a default immutable set")
	cmd.Flags().BoolVar(&cfg.legacy, "legacy-single-flag", false, "reproduce the historical single-flag condition solver")

	return cmd
}

func runSolve(cmd *cobra.Command, cfg *solveConfig, constraint string) error {
	tree, err := parseAndValidate(constraint)
	if err != nil {
		return err
	}

	immutables, err := loadImmutables(cfg.profile, cfg.immutables)
	if err != nil {
		return err
	}

	outcomes := solve.AllAssignments(tree.Nodes, immutables, solve.Config{LegacySingleFlagMode: cfg.legacy})
	names := solve.AllFlagNames(tree.Nodes)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(names, "\t")+"\tRESULT")

	unsolvable := 0
	for _, o := range outcomes {
		row := make([]string, len(names))
		for i, n := range names {
			row[i] = fmt.Sprintf("%v", o.Input[n])
		}
		var verdict string
		switch {
		case o.Err != nil:
			unsolvable++
			verdict = color.RedString("error: %v", o.Err)
		case o.Iterations == 0:
			verdict = color.GreenString("ok (%s)", formatFinal(names, o.Final))
		default:
			verdict = color.YellowString("ok after %d pass(es) (%s)", o.Iterations, formatFinal(names, o.Final))
		}
		fmt.Fprintln(w, strings.Join(row, "\t")+"\t"+verdict)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if unsolvable > 0 {
		return fmt.Errorf("%d of %d assignments unsolvable", unsolvable, len(outcomes))
	}
	return nil
}

// formatFinal renders the final state of the given flag names in
// "a !b c" form, sorted for deterministic output.
func formatFinal(names []string, final map[string]bool) string {
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		if final[n] {
			parts[i] = n
		} else {
			parts[i] = "!" + n
		}
	}
	return strings.Join(parts, " ")
}
