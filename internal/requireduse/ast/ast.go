// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package ast defines the expression tree for a REQUIRED_USE-style
// constraint: flags, conditional implications, and the four n-ary
// operators. Nodes are represented as a closed, tagged-union-shaped
// interface so downstream passes can switch on concrete type.
package ast

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
)

// NameRe matches the flag name grammar: an alnum start, then
// alnum/+/_/@/- characters.
var NameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9+_@-]*$`)

// Expression is any node that can appear as an operand of an Implication
// or n-ary operator: a Flag, an *Implication, or an *NaryOp.
type Expression interface {
	fmt.Stringer
	isExpression()
}

var nextOccurrenceID int64

func newOccurrenceID() int64 {
	return atomic.AddInt64(&nextOccurrenceID, 1)
}

// Flag is a literal reference to a named option with a polarity. Flag is
// a value type: two Flags with the same Name/Polarity are logically
// equal (see Equal), but the occurrence field is an arena-style identity
// tag distinguishing *this* construction of the literal from any other
// textually-identical one — the physical-identity notion the verifier's
// common-prefix analysis needs. Go slices of Flag values naturally
// preserve this tag across slicing/appending the way Python list
// references preserve object identity, so occurrence equality does the
// job an explicit arena+index scheme would.
type Flag struct {
	Name       string
	Polarity   bool
	occurrence int64
}

func (Flag) isExpression() {}

// NewFlag validates name and returns an enabled Flag with a fresh
// occurrence identity.
func NewFlag(name string) (Flag, error) {
	if !NameRe.MatchString(name) {
		return Flag{}, fmt.Errorf("invalid flag name: %s", name)
	}
	return Flag{Name: name, Polarity: true, occurrence: newOccurrenceID()}, nil
}

// Negated returns the same-named flag with the opposite polarity and a
// fresh occurrence identity — mirroring the reference implementation,
// where negated() always constructs a brand new Flag object.
func (f Flag) Negated() Flag {
	return Flag{Name: f.Name, Polarity: !f.Polarity, occurrence: newOccurrenceID()}
}

// Equal reports logical (value) equality: same name and polarity,
// ignoring occurrence identity. Use this for every condition/effect
// comparison; use SameOccurrence only for common-prefix identity checks.
func (f Flag) Equal(other Flag) bool {
	return f.Name == other.Name && f.Polarity == other.Polarity
}

// SameOccurrence reports whether f and other are literally the same
// constructed Flag value (the "is" comparison of the reference
// implementation's split_common_prefix).
func (f Flag) SameOccurrence(other Flag) bool {
	return f.occurrence == other.occurrence
}

// OccurrenceKey returns a comparable key suitable for use as a map key
// when caching per-occurrence results (ported from the reference's
// id(ci)-keyed success_cache).
func (f Flag) OccurrenceKey() int64 {
	return f.occurrence
}

func (f Flag) String() string {
	if f.Polarity {
		return f.Name
	}
	return "!" + f.Name
}

// NaryKind distinguishes the four n-ary operator flavors.
type NaryKind int

const (
	AnyOf        NaryKind = iota // ||
	ExactlyOneOf                 // ^^
	AtMostOneOf                  // ??
	AllOf                        // internal-only, synthesized by normalize
)

func (k NaryKind) String() string {
	switch k {
	case AnyOf:
		return "||"
	case ExactlyOneOf:
		return "^^"
	case AtMostOneOf:
		return "??"
	case AllOf:
		return "&&"
	default:
		return "?unknown?"
	}
}

// Implication is `condition? ( body )`: every element of Condition must
// hold (conjunctively) for Body to be enforced. Condition is always a
// list — spec's authoritative form — even though surface syntax only
// ever produces single-element conditions; normalize.MergeImplications
// builds multi-element conditions by folding nested implications.
type Implication struct {
	Condition []Flag
	Body      []Expression
}

func (*Implication) isExpression() {}

// NewImplication builds an Implication from condition and body as given.
// Duplicate condition flags are kept, and a self-contradictory condition
// is kept as is (verify.SelfConflict is what reports it).
func NewImplication(condition []Flag, body []Expression) *Implication {
	return &Implication{Condition: condition, Body: body}
}

func (i *Implication) String() string {
	cond := make([]string, len(i.Condition))
	for idx, c := range i.Condition {
		cond[idx] = c.String()
	}
	header := strings.Join(cond, " ")
	if len(i.Condition) == 1 {
		header = i.Condition[0].String()
	}
	return header + "? ( " + joinExpr(i.Body) + " )"
}

// NaryOp is one of the four n-ary operators. Polarity is only meaningful
// for AllOf, which normalize uses as a negatable internal grouping node;
// AllOf never appears in source text (validate rejects it outright).
type NaryOp struct {
	Kind     NaryKind
	Children []Expression
	Polarity bool
}

func (*NaryOp) isExpression() {}

// NewNaryOp builds a NaryOp. For AnyOf and AllOf it flattens any
// same-kind child into this node, exactly as the reference parser's
// flatten_operator does (so `|| ( a || ( b c ) )` becomes a single
// 3-child AnyOf, not a nested one); ^^ and ?? are never flattened this
// way in the reference implementation, so they are left nested here too.
func NewNaryOp(kind NaryKind, children []Expression) *NaryOp {
	flattenable := kind == AnyOf || kind == AllOf
	var flat []Expression
	for _, c := range children {
		if sub, ok := c.(*NaryOp); ok && flattenable && sub.Kind == kind {
			flat = append(flat, sub.Children...)
		} else {
			flat = append(flat, c)
		}
	}
	return &NaryOp{Kind: kind, Children: flat, Polarity: true}
}

func (n *NaryOp) String() string {
	prefix := ""
	if n.Kind == AllOf && !n.Polarity {
		prefix = "!"
	}
	return prefix + n.Kind.String() + " ( " + joinExpr(n.Children) + " )"
}

// Negated returns the negation of an AllOf node (used by normalize's
// De Morgan expansion). Only AllOf carries a polarity flag; calling this
// on another kind is a programming error in the caller.
func (n *NaryOp) Negated() *NaryOp {
	if n.Kind != AllOf {
		panic("ast: Negated is only defined for AllOf nodes")
	}
	return &NaryOp{Kind: AllOf, Children: n.Children, Polarity: !n.Polarity}
}

func joinExpr(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// Document is a top-level sequence of expressions — the parsed form of a
// full constraint string.
type Document struct {
	Nodes []Expression
}

func (d *Document) String() string {
	return joinExpr(d.Nodes)
}
