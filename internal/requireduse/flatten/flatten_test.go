// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projg2/requireduse/internal/requireduse/syntax"
)

func flattenString(t *testing.T, text string) []Path {
	t.Helper()
	doc, err := syntax.Parse(text)
	require.NoError(t, err)
	tree, err := syntax.Lower(doc)
	require.NoError(t, err)
	return Flatten(tree.Nodes)
}

func TestFlattenBareFlag(t *testing.T) {
	paths := flattenString(t, "a")
	require.Len(t, paths, 1)
	assert.Empty(t, paths[0].Conditions)
	assert.Equal(t, "a", paths[0].Effect.Name)
}

func TestFlattenImplication(t *testing.T) {
	paths := flattenString(t, "a? ( b c )")
	require.Len(t, paths, 2)
	for _, p := range paths {
		require.Len(t, p.Conditions, 1)
		assert.Equal(t, "a", p.Conditions[0].Name)
	}
	assert.Equal(t, "b", paths[0].Effect.Name)
	assert.Equal(t, "c", paths[1].Effect.Name)
}

func TestFlattenAnyOf(t *testing.T) {
	paths := flattenString(t, "|| ( a b c )")
	require.Len(t, paths, 1)
	assert.Equal(t, "a", paths[0].Effect.Name)
	require.Len(t, paths[0].Conditions, 2)
	assert.Equal(t, "!b", paths[0].Conditions[0].String())
	assert.Equal(t, "!c", paths[0].Conditions[1].String())
}

func TestFlattenAtMostOneOf(t *testing.T) {
	paths := flattenString(t, "?? ( a b c )")
	// a => !b, a => !c, b => !c
	require.Len(t, paths, 3)
	assert.Equal(t, "a", paths[0].Conditions[0].Name)
	assert.Equal(t, "!b", paths[0].Effect.String())
	assert.Equal(t, "a", paths[1].Conditions[0].Name)
	assert.Equal(t, "!c", paths[1].Effect.String())
	assert.Equal(t, "b", paths[2].Conditions[0].Name)
	assert.Equal(t, "!c", paths[2].Effect.String())
}

func TestFlattenExactlyOneOf(t *testing.T) {
	paths := flattenString(t, "^^ ( a b )")
	// AnyOf path: [!b] => a ; AtMostOneOf path: [a] => !b
	require.Len(t, paths, 2)
	assert.Equal(t, "a", paths[0].Effect.Name)
	assert.Equal(t, "!b", paths[1].Effect.String())
}
