// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package sortnary stably reorders n-ary operator children by an
// immutability-aware key so a subsequent back-alteration pass is more
// likely to need no topological reordering at all.
package sortnary

import (
	"sort"

	"github.com/projg2/requireduse/internal/requireduse/ast"
)

// KeyFunc ranks a leaf flag: lower sorts first. 0 = forced by immutables,
// 1 = ordinary, 2 = masked by immutables.
type KeyFunc func(ast.Flag) int

// ImmutableKey builds a KeyFunc from a set of fixed flag values.
func ImmutableKey(immutables map[string]bool) KeyFunc {
	return func(f ast.Flag) int {
		v, ok := immutables[f.Name]
		if !ok {
			return 1
		}
		if v == f.Polarity {
			return 0
		}
		return 2
	}
}

// Sort reorders every n-ary operator's children in a copy of the tree.
// AllOf children are left in source order — their order never matters to
// their semantics. Implication bodies are recursed into but not
// reordered themselves (only operator children are). The sort is stable,
// so equal-keyed children keep their relative source order.
func Sort(exprs []ast.Expression, key KeyFunc) []ast.Expression {
	out := make([]ast.Expression, len(exprs))
	for i, e := range exprs {
		out[i] = sortExpr(e, key)
	}
	return out
}

func sortExpr(e ast.Expression, key KeyFunc) ast.Expression {
	switch v := e.(type) {
	case ast.Flag:
		return v
	case *ast.Implication:
		return &ast.Implication{
			Condition: v.Condition,
			Body:      Sort(v.Body, key),
		}
	case *ast.NaryOp:
		if v.Kind == ast.AllOf {
			return &ast.NaryOp{Kind: v.Kind, Children: Sort(v.Children, key), Polarity: v.Polarity}
		}
		children := Sort(v.Children, key)
		sorted := make([]ast.Expression, len(children))
		copy(sorted, children)
		sort.SliceStable(sorted, func(i, j int) bool {
			return minKey(sorted[i], key) < minKey(sorted[j], key)
		})
		return &ast.NaryOp{Kind: v.Kind, Children: sorted, Polarity: v.Polarity}
	default:
		return e
	}
}

// minKey recursively finds the smallest leaf key under an expression,
// so a whole subtree sorts according to its most-constrained leaf.
func minKey(e ast.Expression, key KeyFunc) int {
	switch v := e.(type) {
	case ast.Flag:
		return key(v)
	case *ast.Implication:
		best := key(v.Condition[0])
		for _, c := range v.Body {
			if k := minKey(c, key); k < best {
				best = k
			}
		}
		return best
	case *ast.NaryOp:
		best := 3
		for _, c := range v.Children {
			if k := minKey(c, key); k < best {
				best = k
			}
		}
		return best
	default:
		return 1
	}
}
