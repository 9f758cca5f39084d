// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package main is the entry point for the requireduse CLI.
package main

import (
	"log/slog"
	"os"

	"github.com/projg2/requireduse/internal/logging"
	"github.com/projg2/requireduse/pkg/errutil"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	logging.SetDefault("requireduse", version, "text")

	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		errutil.LogError(slog.Default(), "requireduse failed", err)
		os.Exit(1)
	}
}
