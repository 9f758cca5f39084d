// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package validate walks a parsed ast.Document and rejects shapes the
// rest of the pipeline does not support: an AllOf reaching here from
// source text (AllOf is internal-only, synthesized by normalize), a
// nested n-ary/implication inside an n-ary operator's children, or an
// implication condition that is not exactly one flag.
package validate

import (
	"fmt"

	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
)

// ValidationError reports the first structural violation found.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func errf(format string, args ...any) error {
	return oops.Code("VALIDATION_ERROR").Wrapf(&ValidationError{Message: fmt.Sprintf(format, args...)}, "validating constraint")
}

// Walk validates every expression in a document, stopping at the first
// violation. It returns only that error; the document is left unchanged
// and is not returned.
func Walk(doc *ast.Document) error {
	return walkAll(doc.Nodes)
}

func walkAll(exprs []ast.Expression) error {
	for _, e := range exprs {
		if err := walkExpr(e); err != nil {
			return err
		}
	}
	return nil
}

func walkExpr(e ast.Expression) error {
	switch v := e.(type) {
	case ast.Flag:
		return nil
	case *ast.Implication:
		if len(v.Condition) != 1 {
			return errf("implication condition must be exactly one flag, got %d", len(v.Condition))
		}
		return walkAll(v.Body)
	case *ast.NaryOp:
		if v.Kind == ast.AllOf {
			return errf("all-of operator forbidden in source constraint")
		}
		for _, c := range v.Children {
			switch c.(type) {
			case ast.Flag:
				// fine
			case *ast.Implication:
				return errf("USE-conditional group in %s operator forbidden", v.Kind)
			case *ast.NaryOp:
				return errf("nested %s group in %s operator forbidden", c.(*ast.NaryOp).Kind, v.Kind)
			default:
				return errf("unknown AST subexpression in %s operator", v.Kind)
			}
		}
		return nil
	default:
		return errf("unknown AST expression type %T", e)
	}
}
