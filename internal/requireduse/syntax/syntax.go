// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package syntax lexes and parses REQUIRED_USE-style constraint text into
// a concrete syntax tree, then lowers it into the internal/requireduse/ast
// expression tree.
package syntax

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
)

// constraintLexer defines the token types for the constraint grammar.
// Order matters: operator tokens must come before Ident so that "||",
// "^^", and "??" are never swallowed by the identifier pattern.
var constraintLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "OpOr", Pattern: `\|\|`},
	{Name: "OpXor", Pattern: `\^\^`},
	{Name: "OpAtMost", Pattern: `\?\?`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Bang", Pattern: `!`},
	{Name: "Question", Pattern: `\?`},
	{Name: "Ident", Pattern: `[A-Za-z0-9][A-Za-z0-9+_@-]*`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Document is the top-level parse result: a sequence of nodes.
type Document struct {
	Pos   lexer.Position `parser:""`
	Nodes []*Node        `parser:"@@*"`
}

// Node is a single constraint element. Exactly one field is non-nil.
//
// The parser tries alternatives in PEG order with MaxLookahead enabled:
// NaryGroup has an unambiguous leading operator token, but Implication
// and Literal share a `Bang? Ident` prefix distinguished only by a
// trailing "?", so backtracking is required to pick between them.
type Node struct {
	Pos         lexer.Position `parser:""`
	NaryGroup   *NaryGroup     `parser:"  @@"`
	Implication *Implication   `parser:"| @@"`
	Literal     *Literal       `parser:"| @@"`
}

// NaryGroup is `("||"|"^^"|"??") "(" Node* ")"`.
type NaryGroup struct {
	Pos  lexer.Position `parser:""`
	Op   string         `parser:"@(OpOr | OpXor | OpAtMost)"`
	Body []*Node        `parser:"LParen @@* RParen"`
}

// Implication is `Literal "?" "(" Node* ")"`.
type Implication struct {
	Pos       lexer.Position `parser:""`
	Condition *Literal       `parser:"@@ Question"`
	Body      []*Node        `parser:"LParen @@* RParen"`
}

// Literal is `"!"? Ident`.
type Literal struct {
	Pos      lexer.Position `parser:""`
	Negation bool           `parser:"@Bang?"`
	Name     string         `parser:"@Ident"`
}

var parser *participle.Parser[Document]

func init() {
	var err error
	parser, err = participle.Build[Document](
		participle.Lexer(constraintLexer),
		participle.UseLookahead(participle.MaxLookahead),
	)
	if err != nil {
		panic(fmt.Sprintf("requireduse/syntax: failed to build parser: %v", err))
	}
}

// ParseError wraps a lexer/parser failure with position context.
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// Parse lexes and parses constraint text into a concrete syntax Document.
// An empty or all-whitespace input parses to a Document with zero nodes,
// matching the reference parser's behavior on an empty token stream.
func Parse(text string) (*Document, error) {
	doc, err := parser.ParseString("", text)
	if err != nil {
		if uerr, ok := err.(participle.UnexpectedTokenError); ok {
			return nil, oops.Code("PARSE_ERROR").Wrapf(&ParseError{
				Line:    uerr.Pos.Line,
				Column:  uerr.Pos.Column,
				Message: err.Error(),
			}, "parsing constraint expression")
		}
		return nil, oops.Code("PARSE_ERROR").Wrapf(err, "parsing constraint expression")
	}
	return doc, nil
}

// Lower converts a concrete syntax Document into the ast expression tree.
// Lowering re-validates each literal's name against ast.NameRe — cheap
// insurance that holds regardless of how the lexer tokenized it.
func Lower(doc *Document) (*ast.Document, error) {
	nodes, err := lowerNodes(doc.Nodes)
	if err != nil {
		return nil, err
	}
	return &ast.Document{Nodes: nodes}, nil
}

func lowerNodes(nodes []*Node) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(nodes))
	for _, n := range nodes {
		e, err := lowerNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func lowerNode(n *Node) (ast.Expression, error) {
	switch {
	case n.NaryGroup != nil:
		return lowerNaryGroup(n.NaryGroup)
	case n.Implication != nil:
		return lowerImplication(n.Implication)
	case n.Literal != nil:
		return lowerLiteral(n.Literal)
	default:
		return nil, oops.Code("PARSE_ERROR").Errorf("empty node at %s", n.Pos)
	}
}

func lowerLiteral(l *Literal) (ast.Flag, error) {
	f, err := ast.NewFlag(l.Name)
	if err != nil {
		return ast.Flag{}, oops.Code("PARSE_ERROR").Wrapf(err, "invalid flag at %s", l.Pos)
	}
	if l.Negation {
		f = f.Negated()
	}
	return f, nil
}

func lowerImplication(impl *Implication) (*ast.Implication, error) {
	cond, err := lowerLiteral(impl.Condition)
	if err != nil {
		return nil, err
	}
	body, err := lowerNodes(impl.Body)
	if err != nil {
		return nil, err
	}
	return ast.NewImplication([]ast.Flag{cond}, body), nil
}

func lowerNaryGroup(g *NaryGroup) (*ast.NaryOp, error) {
	var kind ast.NaryKind
	switch g.Op {
	case "||":
		kind = ast.AnyOf
	case "^^":
		kind = ast.ExactlyOneOf
	case "??":
		kind = ast.AtMostOneOf
	default:
		return nil, oops.Code("PARSE_ERROR").Errorf("unknown operator %q at %s", g.Op, g.Pos)
	}
	body, err := lowerNodes(g.Body)
	if err != nil {
		return nil, err
	}
	return ast.NewNaryOp(kind, body), nil
}
