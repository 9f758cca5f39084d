// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projg2/requireduse/internal/requireduse/flatten"
	"github.com/projg2/requireduse/internal/requireduse/syntax"
	"github.com/projg2/requireduse/pkg/errutil"
)

func flattenText(t *testing.T, text string) []flatten.Path {
	t.Helper()
	doc, err := syntax.Parse(text)
	require.NoError(t, err)
	tree, err := syntax.Lower(doc)
	require.NoError(t, err)
	return flatten.Flatten(tree.Nodes)
}

func TestCanBreakCircularPairIsMutuallyHarmless(t *testing.T) {
	paths := flattenText(t, "a? ( b ) b? ( a )")
	require.Len(t, paths, 2)
	assert.False(t, CanBreak(paths[0], paths[1]))
	assert.False(t, CanBreak(paths[1], paths[0]))
}

func TestCanBreakDirectEffectConflictIsMutual(t *testing.T) {
	paths := flattenText(t, "x? ( y ) z? ( !y )")
	require.Len(t, paths, 2)
	assert.True(t, CanBreak(paths[0], paths[1]))
	assert.True(t, CanBreak(paths[1], paths[0]))
}

func TestCanBreakWhenOtherDependsOnSelfsEffect(t *testing.T) {
	paths := flattenText(t, "p? ( q ) q? ( r )")
	require.Len(t, paths, 2)
	assert.True(t, CanBreak(paths[0], paths[1]))
	assert.False(t, CanBreak(paths[1], paths[0]))
}

func TestTopoSortOrdersPrerequisiteFirst(t *testing.T) {
	paths := flattenText(t, "p? ( q ) q? ( r )")
	deps := Deps(paths)
	order, err := TopoSort(paths, deps)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1}, order)
}

func TestTopoSortDetectsCycle(t *testing.T) {
	paths := flattenText(t, "x? ( y ) z? ( !y )")
	deps := Deps(paths)
	_, err := TopoSort(paths, deps)
	require.Error(t, err)
	var cerr *CyclicError
	assert.ErrorAs(t, err, &cerr)
	errutil.AssertErrorCode(t, err, "CYCLIC")
}

func TestWriteDOTIncludesNegationEdges(t *testing.T) {
	paths := flattenText(t, "x? ( y ) z? ( !y )")
	var sb strings.Builder
	require.NoError(t, WriteDOT(&sb, paths))
	out := sb.String()
	assert.True(t, strings.HasPrefix(out, "digraph {"))
	assert.Equal(t, 2, strings.Count(out, "color=red"))
}

func TestWriteDOTOmitsNegationEdgesWhenNoneOverlap(t *testing.T) {
	paths := flattenText(t, "a? ( b ) c? ( d )")
	var sb strings.Builder
	require.NoError(t, WriteDOT(&sb, paths))
	assert.NotContains(t, sb.String(), "color=red")
}
