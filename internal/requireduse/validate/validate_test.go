// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projg2/requireduse/internal/requireduse/syntax"
)

func parseTree(t *testing.T, text string) error {
	t.Helper()
	doc, err := syntax.Parse(text)
	require.NoError(t, err)
	tree, err := syntax.Lower(doc)
	require.NoError(t, err)
	return Walk(tree)
}

func TestWalkAcceptsValidConstraints(t *testing.T) {
	for _, text := range []string{
		"a",
		"a? ( b )",
		"|| ( a b c )",
		"^^ ( a b c )",
		"?? ( a b c )",
		"a? ( || ( b c ) )",
	} {
		assert.NoError(t, parseTree(t, text), text)
	}
}

func TestWalkRejectsNestedOperatorInNaryGroup(t *testing.T) {
	err := parseTree(t, "|| ( a? ( b ) c )")
	require.Error(t, err)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestWalkRejectsNestedNaryInNaryGroup(t *testing.T) {
	// A different-kind nested operator survives NewNaryOp's same-kind
	// flattening, so it reaches Walk and must be rejected.
	err := parseTree(t, "|| ( ?? ( a b ) c )")
	require.Error(t, err)
}
