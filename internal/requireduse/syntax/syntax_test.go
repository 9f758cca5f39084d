// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projg2/requireduse/internal/requireduse/ast"
)

func lowerString(t *testing.T, text string) *ast.Document {
	t.Helper()
	doc, err := Parse(text)
	require.NoError(t, err)
	tree, err := Lower(doc)
	require.NoError(t, err)
	return tree
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse("   ")
	require.NoError(t, err)
	assert.Empty(t, doc.Nodes)
}

func TestParseLiteralAndNegation(t *testing.T) {
	tree := lowerString(t, "a !b")
	require.Len(t, tree.Nodes, 2)
	assert.Equal(t, "a", tree.Nodes[0].String())
	assert.Equal(t, "!b", tree.Nodes[1].String())
}

func TestParseImplication(t *testing.T) {
	tree := lowerString(t, "a? ( b c )")
	require.Len(t, tree.Nodes, 1)
	impl, ok := tree.Nodes[0].(*ast.Implication)
	require.True(t, ok)
	assert.Equal(t, "a", impl.Condition[0].String())
	assert.Len(t, impl.Body, 2)
}

func TestParseNaryGroups(t *testing.T) {
	for _, tc := range []struct {
		text string
		kind ast.NaryKind
	}{
		{"|| ( a b c )", ast.AnyOf},
		{"^^ ( a b c )", ast.ExactlyOneOf},
		{"?? ( a b c )", ast.AtMostOneOf},
	} {
		tree := lowerString(t, tc.text)
		require.Len(t, tree.Nodes, 1)
		op, ok := tree.Nodes[0].(*ast.NaryOp)
		require.True(t, ok)
		assert.Equal(t, tc.kind, op.Kind)
		assert.Len(t, op.Children, 3)
	}
}

func TestParseNestedConstraint(t *testing.T) {
	tree := lowerString(t, "cue? ( gstreamer ) ?? ( gstreamer ffmpeg )")
	require.Len(t, tree.Nodes, 2)
}

func TestParseErrorReportsPosition(t *testing.T) {
	_, err := Parse("a? ( b")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseMalformedNaryGroup(t *testing.T) {
	_, err := Parse("|| ?? ( a )")
	require.Error(t, err)
}
