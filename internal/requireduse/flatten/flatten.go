// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package flatten converts a validated ast.Expression tree into the
// canonical Path list form: one (conditions, effect) pair per leaf
// assignment the constraint can force. This is the simplest of the
// pipeline's two lowerings — see internal/requireduse/normalize for the
// algebraically-equivalent alternate form used to cross-check it.
package flatten

import (
	"fmt"

	"github.com/projg2/requireduse/internal/requireduse/ast"
)

// Path is one forced assignment: if every flag in Conditions holds, then
// Effect must hold. Conditions is a fresh slice, but its ast.Flag values
// are copied unchanged from the AST, so each keeps its occurrence
// identity — verify's common-prefix analysis depends on it.
type Path struct {
	Conditions []ast.Flag
	Effect     ast.Flag
}

func (p Path) String() string {
	return fmt.Sprintf("%v => %s", p.Conditions, p.Effect)
}

// Flatten walks a document's top-level expressions and produces the
// canonical Path list. It ports the reference `flatten3` algorithm,
// described by its own author as "the most trivial [flattening] by
// design":
//
//   - a bare Flag yields one Path with the accumulated conditions;
//   - an Implication extends the accumulated conditions and recurses;
//   - AnyOf(a, b, c, ...) yields one path: [!b !c ...] => a;
//   - AtMostOneOf(a, b, c, ...) yields one path per excluded later
//     sibling: [a] => !b, [a] => !c, ..., [b] => !c, ...;
//   - ExactlyOneOf(xs) yields the AnyOf path(s) followed by the
//     AtMostOneOf paths for the same children.
func Flatten(exprs []ast.Expression) []Path {
	return flatten(exprs, nil)
}

func flatten(exprs []ast.Expression, conditions []ast.Flag) []Path {
	var out []Path
	for _, e := range exprs {
		out = append(out, flattenOne(e, conditions)...)
	}
	return out
}

func flattenOne(e ast.Expression, conditions []ast.Flag) []Path {
	switch v := e.(type) {
	case ast.Flag:
		return []Path{{Conditions: conditions, Effect: v}}
	case *ast.Implication:
		return flatten(v.Body, append(append([]ast.Flag{}, conditions...), v.Condition...))
	case *ast.NaryOp:
		switch v.Kind {
		case ast.AnyOf:
			return flattenAnyOf(v.Children, conditions)
		case ast.AtMostOneOf:
			return flattenAtMostOneOf(v.Children, conditions)
		case ast.ExactlyOneOf:
			out := flattenAnyOf(v.Children, conditions)
			return append(out, flattenAtMostOneOf(v.Children, conditions)...)
		case ast.AllOf:
			return flatten(v.Children, conditions)
		}
	}
	return nil
}

func flattenAnyOf(children []ast.Expression, conditions []ast.Flag) []Path {
	if len(children) == 0 {
		return nil
	}
	first, ok := children[0].(ast.Flag)
	if !ok {
		// children are guaranteed flags by validate.Walk; this branch
		// only matters for callers that drive flatten directly.
		return nil
	}
	negRest := make([]ast.Flag, 0, len(children)-1)
	for _, c := range children[1:] {
		if f, ok := c.(ast.Flag); ok {
			negRest = append(negRest, f.Negated())
		}
	}
	cond := append(append([]ast.Flag{}, conditions...), negRest...)
	return []Path{{Conditions: cond, Effect: first}}
}

func flattenAtMostOneOf(children []ast.Expression, conditions []ast.Flag) []Path {
	var out []Path
	for i := 0; i < len(children)-1; i++ {
		head, ok := children[i].(ast.Flag)
		if !ok {
			continue
		}
		rest := make([]ast.Flag, 0, len(children)-i-1)
		for _, c := range children[i+1:] {
			if f, ok := c.(ast.Flag); ok {
				rest = append(rest, f.Negated())
			}
		}
		if len(rest) == 0 {
			continue
		}
		cond := append(append([]ast.Flag{}, conditions...), head)
		for _, r := range rest {
			out = append(out, Path{Conditions: cond, Effect: r})
		}
	}
	return out
}
