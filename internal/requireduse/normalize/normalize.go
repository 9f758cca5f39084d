// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package normalize provides an algebraically-equivalent alternate
// lowering of a validated ast.Document into a flat implication list,
// used to cross-check internal/requireduse/flatten's output (see the
// equivalence testable property). It ports the reference pipeline's
// replace_nary + flatten_implications + to_impl steps: rewrite n-ary
// operators into nested implications, then fold the nesting into one
// flat Implication per leaf, concatenating condition lists along the
// way (equivalent to the reference's right-folded nested-Implication
// chain, since an Implication's condition is already conjunctive).
package normalize

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
)

// ReplaceNary rewrites AnyOf/ExactlyOneOf/AtMostOneOf operators into
// nested Implications, and unwraps AllOf into its children in place.
// Only flag children are supported, matching the post-validate
// invariant that n-ary operator children are flags, never nested
// operators or implications.
func ReplaceNary(exprs []ast.Expression) ([]ast.Expression, error) {
	var out []ast.Expression
	for _, e := range exprs {
		switch v := e.(type) {
		case ast.Flag:
			out = append(out, v)
		case *ast.Implication:
			body, err := ReplaceNary(v.Body)
			if err != nil {
				return nil, err
			}
			out = append(out, ast.NewImplication(v.Condition, body))
		case *ast.NaryOp:
			rewritten, err := replaceNaryOp(v)
			if err != nil {
				return nil, err
			}
			out = append(out, rewritten...)
		default:
			return nil, oops.Code("VALIDATION_ERROR").Errorf("unknown AST expression %T", e)
		}
	}
	return out, nil
}

func replaceNaryOp(v *ast.NaryOp) ([]ast.Expression, error) {
	if v.Kind == ast.AllOf {
		return v.Children, nil
	}
	constraint := make([]ast.Flag, len(v.Children))
	for i, c := range v.Children {
		f, ok := c.(ast.Flag)
		if !ok {
			return nil, fmt.Errorf("nested operators not supported in replace_nary (%s)", v.Kind)
		}
		constraint[i] = f
	}

	var out []ast.Expression

	if v.Kind == ast.AnyOf || v.Kind == ast.ExactlyOneOf {
		// || ( a b c ... ) -> [!b !c ...]? ( a )
		// ^^ ( a b c ... ) -> || ( a b c ... ) ?? ( a b c ... )
		if len(constraint) == 1 {
			out = append(out, constraint[0])
		} else {
			negRest := make([]ast.Flag, len(constraint)-1)
			for i, f := range constraint[1:] {
				negRest[i] = f.Negated()
			}
			out = append(out, ast.NewImplication(negRest, []ast.Expression{constraint[0]}))
		}
	}

	if v.Kind == ast.AtMostOneOf || v.Kind == ast.ExactlyOneOf {
		// ?? ( a b c ... ) -> a? ( !b !c ... ) b? ( !c ... ) ...
		rest := append([]ast.Flag{}, constraint...)
		for len(rest) > 1 {
			k := rest[0]
			rest = rest[1:]
			negRest := make([]ast.Expression, len(rest))
			for i, f := range rest {
				negRest[i] = f.Negated()
			}
			out = append(out, ast.NewImplication([]ast.Flag{k}, negRest))
		}
	}

	return out, nil
}

// FlattenImplications folds a replace_nary'd tree (flags and nested
// implications only) into one Implication per leaf flag, with a single
// concatenated (and therefore still conjunctive) condition list.
func FlattenImplications(exprs []ast.Expression) ([]*ast.Implication, error) {
	return flattenImplications(exprs, nil)
}

func flattenImplications(exprs []ast.Expression, accum []ast.Flag) ([]*ast.Implication, error) {
	var out []*ast.Implication
	for _, e := range exprs {
		switch v := e.(type) {
		case ast.Flag:
			cond := append([]ast.Flag{}, accum...)
			out = append(out, ast.NewImplication(cond, []ast.Expression{v}))
		case *ast.Implication:
			nested := append(append([]ast.Flag{}, accum...), v.Condition...)
			sub, err := flattenImplications(v.Body, nested)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		case *ast.NaryOp:
			return nil, fmt.Errorf("n-ary operators should be replaced already")
		default:
			return nil, fmt.Errorf("unknown AST expression %T", e)
		}
	}
	return out, nil
}

// ToImplications runs the full normalizer pipeline: replace n-ary
// operators, then fold nesting into a flat implication list. Every
// resulting Implication has exactly one flag in its Body.
func ToImplications(exprs []ast.Expression) ([]*ast.Implication, error) {
	replaced, err := ReplaceNary(exprs)
	if err != nil {
		return nil, err
	}
	return FlattenImplications(replaced)
}
