// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package verify runs the four static analyses over a flattened path
// list: self-conflict, immutability, mutual conflict, and
// back-alteration. Each analysis is conservative — it only raises when
// it can prove a problem exists, never merely suspects one.
package verify

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
	"github.com/projg2/requireduse/internal/requireduse/flatten"
)

// SelfConflictError reports a path whose own conditions contradict.
type SelfConflictError struct {
	Conditions []ast.Flag
	Effect     ast.Flag
	Culprit    ast.Flag
}

func (e *SelfConflictError) Error() string {
	return fmt.Sprintf("expression (%v => %s) is self-conflicting (both %s and %s cannot be true simultaneously)",
		e.Conditions, e.Effect, e.Culprit, e.Culprit.Negated())
}

// SelfConflict checks, for every path, whether its condition list
// contains both a flag and its negation.
func SelfConflict(paths []flatten.Path) error {
	for _, p := range paths {
		for _, ci := range p.Conditions {
			if containsEqual(p.Conditions, ci.Negated()) {
				return oops.Code("SELF_CONFLICT").Wrapf(
					&SelfConflictError{Conditions: p.Conditions, Effect: p.Effect, Culprit: ci},
					"self-conflict analysis")
			}
		}
	}
	return nil
}

// ImmutabilityError reports a path whose effect would alter a flag the
// caller has fixed externally.
type ImmutabilityError struct {
	Conditions []ast.Flag
	Effect     ast.Flag
	Expected   bool
}

func (e *ImmutabilityError) Error() string {
	return fmt.Sprintf("expression (%v => %s) can alter immutable flag (expected: %v)",
		e.Conditions, e.Effect, e.Expected)
}

// Immutability checks, for every path whose condition list can be true,
// that its effect does not contradict a fixed (immutable) flag value.
func Immutability(paths []flatten.Path, immutables map[string]bool) error {
	for _, p := range paths {
		blocked := false
		for _, ci := range p.Conditions {
			if v, ok := immutables[ci.Name]; ok && v != ci.Polarity {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		if v, ok := immutables[p.Effect.Name]; ok && v != p.Effect.Polarity {
			return oops.Code("IMMUTABILITY").Wrapf(
				&ImmutabilityError{Conditions: p.Conditions, Effect: p.Effect, Expected: p.Effect.Polarity},
				"immutability analysis")
		}
	}
	return nil
}

// SplitCommonPrefix splits two condition lists at their longest common
// occurrence-identical prefix (node-wise, not value-wise: two
// textually-identical flags from different source positions do not
// match here unless they are literally the same occurrence).
func SplitCommonPrefix(c1, c2 []ast.Flag) (prefix, rest1, rest2 []ast.Flag) {
	i := 0
	for i < len(c1) && i < len(c2) && c1[i].SameOccurrence(c2[i]) {
		i++
	}
	return append([]ast.Flag{}, c1[:i]...), append([]ast.Flag{}, c1[i:]...), append([]ast.Flag{}, c2[i:]...)
}

// ConditionsCanCoexist reports whether c1 and c2 could both hold at
// once: false only if c2 contains the negation of some member of c1
// after stripping their common prefix (the solver never backtracks past
// a shared prefix, so a contradiction confined to it cannot occur).
func ConditionsCanCoexist(c1, c2 []ast.Flag) bool {
	_, r1, r2 := SplitCommonPrefix(c1, c2)
	for _, ci := range r1 {
		if containsEqual(r2, ci.Negated()) {
			return false
		}
	}
	return true
}

// TestCondition reports whether condition c is matched by the given flag
// states. unspecifiedOK controls the outcome for names absent from
// states: false (fail), or true (treat as a match).
func TestCondition(c []ast.Flag, states map[string]bool, unspecifiedOK bool) bool {
	for _, ci := range c {
		v, ok := states[ci.Name]
		if !ok {
			if !unspecifiedOK {
				return false
			}
			continue
		}
		if v != ci.Polarity {
			return false
		}
	}
	return true
}

// ConditionCanOccur checks whether finalCondition can hold given a set
// of forced flags, after replaying every path in prevPaths to see what
// effects those paths' conditions would force first. A per-occurrence
// success cache (keyed like the reference's id(ci)-based cache) lets a
// shared condition prefix skip re-testing once it is known to hold.
func ConditionCanOccur(finalCondition []ast.Flag, prevPaths []flatten.Path, flags []ast.Flag) bool {
	states := map[string]bool{}
	for _, f := range flags {
		states[f.Name] = f.Polarity
	}

	successCache := map[int64]bool{}
	var prevCond []ast.Flag
	for _, p := range prevPaths {
		c := append([]ast.Flag{}, p.Conditions...)
		origC := append([]ast.Flag{}, c...)
		for len(c) > 0 && len(prevCond) > 0 {
			if c[0].SameOccurrence(prevCond[0]) && successCache[c[0].OccurrenceKey()] {
				c = c[1:]
				prevCond = prevCond[1:]
			} else {
				break
			}
		}
		if TestCondition(c, states, false) {
			for _, ci := range c {
				successCache[ci.OccurrenceKey()] = true
			}
			states[p.Effect.Name] = p.Effect.Polarity
		}
		prevCond = origC
	}

	return TestCondition(finalCondition, states, true)
}

// ConflictError reports two paths whose effects directly contradict and
// whose conditions can hold simultaneously.
type ConflictError struct {
	C1, C2 []ast.Flag
	E1     ast.Flag
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("expression (%v => %s) can conflict with (%v => %s)", e.C1, e.E1, e.C2, e.E1.Negated())
}

// Conflicts checks every unordered pair of paths for a direct conflict:
// opposite effects whose conditions can coexist and can both actually
// occur given everything that came before them.
func Conflicts(paths []flatten.Path) error {
	for i := 0; i < len(paths); i++ {
		c1, e1 := paths[i].Conditions, paths[i].Effect
		for j := i + 1; j < len(paths); j++ {
			c2, e2 := paths[j].Conditions, paths[j].Effect
			if !e1.Equal(e2.Negated()) || !ConditionsCanCoexist(c1, c2) {
				continue
			}
			common := unionFlags(c1, c2)
			if ConditionCanOccur(c1, paths[:i], common) && ConditionCanOccur(c2, paths[:j], common) {
				return oops.Code("CONFLICT").Wrapf(&ConflictError{C1: c1, C2: c2, E1: e1}, "conflict analysis")
			}
		}
	}
	return nil
}

// BackAlterationError reports that applying a later path's effect could
// re-enable the condition of an earlier path.
type BackAlterationError struct {
	Cj, Ci []ast.Flag
	Ej, Ei ast.Flag
}

func (e *BackAlterationError) Error() string {
	return fmt.Sprintf("expression (%v => %s) may enable the condition of (%v => %s)", e.Cj, e.Ej, e.Ci, e.Ei)
}

// BackAlteration checks every ordered pair (i < j) for back-alteration:
// path j's effect reappearing in the non-common part of path i's
// condition, while the two conditions can coexist. A circular exception
// carves out the mutually-referential case (a? ( b ) b? ( a )), where
// the later rule only fires once its own condition already holds, so it
// cannot change anything the earlier rule depends on.
//
// Per the documented open question, this exception may under-report
// when the shared literal appears in both suffixes with opposite
// polarity; that gap is preserved here rather than silently patched.
func BackAlteration(paths []flatten.Path) error {
	for i := 0; i < len(paths); i++ {
		ci, ei := paths[i].Conditions, paths[i].Effect
		for j := i + 1; j < len(paths); j++ {
			cj, ej := paths[j].Conditions, paths[j].Effect
			_, cis, cjs := SplitCommonPrefix(ci, cj)
			if !containsEqual(cis, ej) || !ConditionsCanCoexist(cis, cjs) {
				continue
			}
			if containsEqual(cjs, ei) {
				continue
			}
			return oops.Code("BACK_ALTERATION").Wrapf(
				&BackAlterationError{Cj: cj, Ej: ej, Ci: ci, Ei: ei}, "back-alteration analysis")
		}
	}
	return nil
}

func containsEqual(flags []ast.Flag, target ast.Flag) bool {
	for _, f := range flags {
		if f.Equal(target) {
			return true
		}
	}
	return false
}

func unionFlags(a, b []ast.Flag) []ast.Flag {
	out := append([]ast.Flag{}, a...)
	for _, f := range b {
		if !containsEqual(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// All runs the four analyses in the fixed reference order: self-conflict,
// immutability, mutual conflict, back-alteration. It returns the first
// error encountered.
func All(paths []flatten.Path, immutables map[string]bool) error {
	if err := SelfConflict(paths); err != nil {
		return err
	}
	if err := Immutability(paths, immutables); err != nil {
		return err
	}
	if err := Conflicts(paths); err != nil {
		return err
	}
	return BackAlteration(paths)
}
