// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/projg2/requireduse/internal/requireduse/classify"
)

// classifyConfig holds configuration for the classify command.
type classifyConfig struct {
	bucket string
}

// newClassifyCmd creates the classify subcommand with all flags configured.
func newClassifyCmd() *cobra.Command {
	cfg := &classifyConfig{}

	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Classify every \"package constraint\" line in a batch file",
		Long: `Reads "package constraint" lines, split at the first space (blank
lines and lines starting with # are skipped), classifies each as good,
need_topo_sort, cyclic, or parse_error, and prints the bucket counts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, cfg, args[0])
		},
	}

	cmd.Flags().StringVar(&cfg.bucket, "bucket", "", "print offending lines for this bucket (good|need_topo_sort|cyclic|parse_error)")

	return cmd
}

func runClassify(cmd *cobra.Command, cfg *classifyConfig, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	report, err := classify.Batch(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("classifying %s: %w", path, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s\n", report.RunID)
	for _, label := range []classify.Label{classify.Good, classify.NeedTopoSort, classify.Cyclic, classify.ParseError} {
		fmt.Fprintf(out, "  %s: %d\n", label, report.Counts[label])
	}

	if cfg.bucket == "" {
		return nil
	}
	var want classify.Label
	switch cfg.bucket {
	case "good":
		want = classify.Good
	case "need_topo_sort":
		want = classify.NeedTopoSort
	case "cyclic":
		want = classify.Cyclic
	case "parse_error":
		want = classify.ParseError
	default:
		return fmt.Errorf("unknown bucket %q", cfg.bucket)
	}

	fmt.Fprintf(out, "\n%s lines:\n", want)
	for _, v := range report.Results {
		if v.Label == want {
			fmt.Fprintf(out, "  %s: %s\n", v.Package, v.Source)
		}
	}
	return nil
}
