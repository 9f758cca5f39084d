// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package graph builds the back-alteration edge relation over a flat
// implication list, exposes a Kahn topological sort over it, and prints
// the dependency graph as DOT for the CLI's `graph` subcommand.
package graph

import (
	"fmt"
	"io"
	"sort"

	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
	"github.com/projg2/requireduse/internal/requireduse/flatten"
)

// CanBreak reports whether applying `self` can break `other`: once
// `other` has been applied, `self` firing afterwards may leave it
// unsatisfied. Ported (four numbered checks) from the reference
// Implication.can_break:
//
//  1. the conditions are compatible: no flag of self.Conditions is the
//     negation of a flag of other.Conditions;
//  2. solving self does not make other trivially true: no flag of
//     other.Conditions is the negation of self.Effect;
//  3. solving other does not make self trivially true afterwards: no
//     flag of self.Conditions is the negation of other.Effect; and
//  4. solving self actually breaks other: self.Effect negates other's
//     effect, or self.Effect equals one of other's conditions while
//     other's effect is not already guaranteed when self fires (it is
//     neither one of self's conditions nor self's own effect).
//
// The code below runs checks 2 and 3 in the opposite order.
func CanBreak(self, other flatten.Path) bool {
	// 1. the conditions are compatible.
	for _, c2 := range other.Conditions {
		for _, c1 := range self.Conditions {
			if c2.Equal(c1.Negated()) {
				return false
			}
		}
	}
	// 3. solving other does not make self trivially true afterward.
	for _, c1 := range self.Conditions {
		if other.Effect.Equal(c1.Negated()) {
			return false
		}
	}
	// 2. solving self does not make other trivially true.
	for _, c2 := range other.Conditions {
		if c2.Equal(self.Effect.Negated()) {
			return false
		}
	}
	// 4. solving self does break other.
	if self.Effect.Equal(other.Effect.Negated()) {
		return true
	}
	for _, c2 := range other.Conditions {
		if c2.Equal(self.Effect) {
			trivial := containsEqualFlag(self.Conditions, other.Effect) || self.Effect.Equal(other.Effect)
			return !trivial
		}
	}
	return false
}

func containsEqualFlag(flags []ast.Flag, target ast.Flag) bool {
	for _, f := range flags {
		if f.Equal(target) {
			return true
		}
	}
	return false
}

// Deps returns, for every path index i, the set of path indices j such
// that paths[i] can break paths[j] — ported from fill_can_break, which
// stores exactly this "things I can break" set as each implication's
// own dependency set. TopoSort orders every path ahead of the paths it
// can break.
func Deps(paths []flatten.Path) map[int][]int {
	deps := make(map[int][]int, len(paths))
	for i := range paths {
		for j := range paths {
			if i == j {
				continue
			}
			if CanBreak(paths[i], paths[j]) {
				deps[i] = append(deps[i], j)
			}
		}
	}
	return deps
}

// CyclicError reports that the dependency relation contains a cycle.
type CyclicError struct{}

func (e *CyclicError) Error() string { return "back-alteration edges form a cycle" }

// TopoSort performs Kahn's algorithm over the relation produced by Deps:
// deps[i] lists the paths that paths[i] can break, each of which must
// appear after i in the returned order, so that one pass in that order
// never breaks an already-applied path. Ties are broken by ascending
// path String() form for deterministic output. Returns a *CyclicError if
// no full ordering exists.
func TopoSort(paths []flatten.Path, deps map[int][]int) ([]int, error) {
	indegree := make([]int, len(paths))
	for _, broken := range deps {
		for _, j := range broken {
			indegree[j]++
		}
	}

	var ready []int
	for i := range paths {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	var order []int
	for len(ready) > 0 {
		sort.Slice(ready, func(a, b int) bool {
			return paths[ready[a]].String() < paths[ready[b]].String()
		})
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, t := range deps[n] {
			indegree[t]--
			if indegree[t] == 0 {
				ready = append(ready, t)
			}
		}
	}

	if len(order) != len(paths) {
		return nil, oops.Code("CYCLIC").Wrapf(&CyclicError{}, "topological sort")
	}
	return order, nil
}

// WriteDOT renders the flattened paths as a DOT graph with one edge from
// each condition flag to its path's effect, plus a red bidirectional
// edge between any flag and its negation that both appear in the graph
// (as a condition or an effect) — ported from the reference
// implementation's print_graph.
func WriteDOT(w io.Writer, paths []flatten.Path) error {
	if _, err := fmt.Fprintln(w, "digraph {"); err != nil {
		return err
	}
	for _, p := range paths {
		for _, c := range p.Conditions {
			if _, err := fmt.Fprintf(w, "\t%q -> %q;\n", c, p.Effect); err != nil {
				return err
			}
		}
	}

	seen := map[string]bool{}
	var nodes []ast.Flag
	for _, p := range paths {
		for _, c := range p.Conditions {
			if !seen[c.String()] {
				seen[c.String()] = true
				nodes = append(nodes, c)
			}
		}
		if !seen[p.Effect.String()] {
			seen[p.Effect.String()] = true
			nodes = append(nodes, p.Effect)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].String() < nodes[j].String() })

	byName := map[string]bool{}
	for _, n := range nodes {
		byName[n.String()] = true
	}
	for _, n := range nodes {
		if n.Polarity && byName[n.Negated().String()] {
			if _, err := fmt.Fprintf(w, "\t%q -> %q [color=red];\n", n.Negated(), n); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "\t%q -> %q [color=red];\n", n, n.Negated()); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(w, "}")
	return err
}
