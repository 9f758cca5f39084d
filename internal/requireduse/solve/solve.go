// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package solve implements the reference iterative propagator: repeated
// left-to-right application of `apply`/`validate` over a replace_nary'd
// expression tree until a fixed point, an immutability violation, or a
// detected loop. It also enumerates every input assignment for the CLI
// `solve` subcommand, mirroring the reference implementation's
// print_solutions table.
package solve

import (
	"fmt"
	"sort"

	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
	"github.com/projg2/requireduse/internal/requireduse/normalize"
)

// MaxIterations bounds the propagator per §5's resource model.
const MaxIterations = 1000

// Config controls non-default solver behavior.
type Config struct {
	// LegacySingleFlagMode reproduces the historical solver variant that
	// treats an Implication's condition as a single flag rather than the
	// authoritative list form — see the documented open question on
	// condition representation. Off by default.
	LegacySingleFlagMode bool
}

// ConvergenceError reports that two applied paths disagree on a flag's
// value within a single pass.
type ConvergenceError struct {
	FlagName string
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("convergence error: conflicting values for %s", e.FlagName)
}

// ImmutabilityError reports that applying the constraint would alter a
// flag the caller declared immutable.
type ImmutabilityError struct {
	FlagName string
	Expected bool
}

func (e *ImmutabilityError) Error() string {
	return fmt.Sprintf("cannot alter immutable flag %s (expected %v)", e.FlagName, e.Expected)
}

// InfiniteLoopError reports that the propagator revisited a prior state
// without reaching a fixed point within MaxIterations passes.
type InfiniteLoopError struct {
	Iterations int
}

func (e *InfiniteLoopError) Error() string {
	return fmt.Sprintf("solver did not converge after %d iterations (loop detected)", e.Iterations)
}

func conditionHolds(states map[string]bool, cond []ast.Flag, legacy bool) bool {
	if legacy {
		if len(cond) == 0 {
			return true
		}
		return states[cond[0].Name] == cond[0].Polarity
	}
	for _, c := range cond {
		if states[c.Name] != c.Polarity {
			return false
		}
	}
	return true
}

// ValidateConstraint reports whether every flag/implication in exprs is
// currently satisfied by states.
func ValidateConstraint(states map[string]bool, exprs []ast.Expression, cfg Config) bool {
	for _, e := range exprs {
		switch v := e.(type) {
		case ast.Flag:
			if states[v.Name] != v.Polarity {
				return false
			}
		case *ast.Implication:
			if conditionHolds(states, v.Condition, cfg.LegacySingleFlagMode) {
				if !ValidateConstraint(states, v.Body, cfg) {
					return false
				}
			}
		case *ast.NaryOp:
			panic("requireduse/solve: n-ary operators must be replaced before solving")
		}
	}
	return true
}

func applySolving(states map[string]bool, exprs []ast.Expression, conflicts map[string]bool, immutables map[string]bool, cfg Config) error {
	for _, e := range exprs {
		switch v := e.(type) {
		case ast.Flag:
			if prev, ok := conflicts[v.Name]; ok && prev != v.Polarity {
				return oops.Code("INFINITE_LOOP").Wrapf(&ConvergenceError{FlagName: v.Name}, "applying constraint")
			}
			if fixed, ok := immutables[v.Name]; ok && fixed != v.Polarity {
				return oops.Code("IMMUTABILITY").Wrapf(&ImmutabilityError{FlagName: v.Name, Expected: fixed}, "applying constraint")
			}
			conflicts[v.Name] = v.Polarity
			states[v.Name] = v.Polarity
		case *ast.Implication:
			if conditionHolds(states, v.Condition, cfg.LegacySingleFlagMode) {
				if err := applySolving(states, v.Body, conflicts, immutables, cfg); err != nil {
					return err
				}
			}
		case *ast.NaryOp:
			return fmt.Errorf("n-ary operators must be replaced before solving")
		}
	}
	return nil
}

// Run iteratively propagates the constraint starting from initial
// values, respecting immutables, until a fixed point is reached or an
// error occurs. It ports the reference solver's apply/validate loop.
func Run(exprs []ast.Expression, initial map[string]bool, immutables map[string]bool, cfg Config) (map[string]bool, int, error) {
	replaced, err := normalize.ReplaceNary(exprs)
	if err != nil {
		return nil, 0, err
	}

	states := make(map[string]bool, len(initial))
	for k, v := range initial {
		states[k] = v
	}

	if ValidateConstraint(states, replaced, cfg) {
		return states, 0, nil
	}

	prevStates := []map[string]bool{copyState(states)}
	for iter := 1; iter <= MaxIterations; iter++ {
		conflicts := map[string]bool{}
		if err := applySolving(states, replaced, conflicts, immutables, cfg); err != nil {
			return states, iter, err
		}
		if ValidateConstraint(states, replaced, cfg) {
			return states, iter, nil
		}
		for _, prev := range prevStates {
			if statesEqual(prev, states) {
				return states, iter, oops.Code("INFINITE_LOOP").Wrapf(&InfiniteLoopError{Iterations: iter}, "solving constraint")
			}
		}
		prevStates = append(prevStates, copyState(states))
	}
	return states, MaxIterations, oops.Code("INFINITE_LOOP").Wrapf(&InfiniteLoopError{Iterations: MaxIterations}, "solving constraint")
}

func copyState(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func statesEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

// AllFlagNames returns every distinct flag name referenced anywhere in
// the expression tree (as a condition or an effect).
func AllFlagNames(exprs []ast.Expression) []string {
	seen := map[string]bool{}
	collectFlagNames(exprs, seen)
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func collectFlagNames(exprs []ast.Expression, seen map[string]bool) {
	for _, e := range exprs {
		switch v := e.(type) {
		case ast.Flag:
			seen[v.Name] = true
		case *ast.Implication:
			for _, c := range v.Condition {
				seen[c.Name] = true
			}
			collectFlagNames(v.Body, seen)
		case *ast.NaryOp:
			for _, c := range v.Children {
				collectFlagNames([]ast.Expression{c}, seen)
			}
		}
	}
}

// Outcome is one row of the full-assignment-space enumeration.
type Outcome struct {
	Input      map[string]bool
	Final      map[string]bool
	Iterations int
	Err        error
}

// AllAssignments enumerates every assignment of the flags referenced by
// exprs (2^n rows) and solves from each, mirroring the reference
// print_solutions driver used by the CLI's `solve` subcommand.
func AllAssignments(exprs []ast.Expression, immutables map[string]bool, cfg Config) []Outcome {
	names := AllFlagNames(exprs)
	n := len(names)
	outcomes := make([]Outcome, 0, 1<<uint(n))
	for bits := 0; bits < (1 << uint(n)); bits++ {
		initial := make(map[string]bool, n)
		for i, name := range names {
			initial[name] = bits&(1<<uint(i)) != 0
		}
		final, iters, err := Run(exprs, initial, immutables, cfg)
		outcomes = append(outcomes, Outcome{Input: initial, Final: final, Iterations: iters, Err: err})
	}
	return outcomes
}
