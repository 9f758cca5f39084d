// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package requireduse re-exports the oops-coded error taxonomy produced
// by internal/requireduse/* so callers outside the module can type-assert
// on a stable public type without reaching into internal packages.
package requireduse

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/classify"
	"github.com/projg2/requireduse/internal/requireduse/graph"
	"github.com/projg2/requireduse/internal/requireduse/solve"
	"github.com/projg2/requireduse/internal/requireduse/syntax"
	"github.com/projg2/requireduse/internal/requireduse/validate"
	"github.com/projg2/requireduse/internal/requireduse/verify"
)

// Re-exported error types, one per spec error kind. The originating
// packages return them wrapped in an oops error that carries the code;
// Code extracts it.
type (
	ParseError             = syntax.ParseError
	ValidationError        = validate.ValidationError
	SelfConflictError      = verify.SelfConflictError
	ImmutabilityError      = verify.ImmutabilityError
	ConflictError          = verify.ConflictError
	BackAlterationError    = verify.BackAlterationError
	CyclicError            = graph.CyclicError
	InfiniteLoopError      = solve.InfiniteLoopError
	SolveImmutabilityError = solve.ImmutabilityError
)

// Re-exported verdict labels for callers classifying constraint lines
// without importing internal/requireduse/classify directly.
type (
	Label   = classify.Label
	Verdict = classify.Verdict
	Report  = classify.Report
)

const (
	Good            = classify.Good
	NeedTopoSort    = classify.NeedTopoSort
	Cyclic          = classify.Cyclic
	ParseErrorLabel = classify.ParseError
)

// Code extracts the oops error code from err, if any ("" if err is nil or
// was not produced with an oops.Code wrapper).
func Code(err error) string {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	if code := oopsErr.Code(); code != nil {
		return fmt.Sprint(code)
	}
	return ""
}
