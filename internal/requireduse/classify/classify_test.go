// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package classify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projg2/requireduse/internal/requireduse/flatten"
	"github.com/projg2/requireduse/internal/requireduse/syntax"
)

func TestLineGoodOnBareFlag(t *testing.T) {
	v := Line(context.Background(), "pkg", "a")
	assert.Equal(t, Good, v.Label)
	assert.NoError(t, v.Err)
}

func TestLineGoodWhenSourceOrderAlreadySatisfiesDependencies(t *testing.T) {
	v := Line(context.Background(), "pkg", "p? ( q ) q? ( r )")
	assert.Equal(t, Good, v.Label)
}

func TestLineNeedsTopoSortWhenLaterRuleCanBreakEarlierOne(t *testing.T) {
	v := Line(context.Background(), "pkg", "q? ( r ) p? ( q )")
	assert.Equal(t, NeedTopoSort, v.Label)
	assert.NotEmpty(t, v.Order)
}

func TestLineCyclicOnMutualEffectConflict(t *testing.T) {
	v := Line(context.Background(), "pkg", "x? ( y ) z? ( !y )")
	assert.Equal(t, Cyclic, v.Label)
	require.Error(t, v.Err)
}

func TestLineParseErrorOnMalformedConstraint(t *testing.T) {
	v := Line(context.Background(), "pkg", "|| ( a")
	assert.Equal(t, ParseError, v.Label)
	require.Error(t, v.Err)
}

func TestBatchSkipsBlankAndCommentLines(t *testing.T) {
	input := strings.NewReader("\n# a comment\npkgA a\npkgB q? ( r ) p? ( q )\n")
	report, err := Batch(context.Background(), input)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Results, 2)
	assert.Equal(t, Good, report.Results[0].Label)
	assert.Equal(t, NeedTopoSort, report.Results[1].Label)
	assert.Equal(t, 1, report.Counts[Good])
	assert.Equal(t, 1, report.Counts[NeedTopoSort])
}

func TestBatchReportsMalformedLine(t *testing.T) {
	input := strings.NewReader("just-a-package-name\n")
	report, err := Batch(context.Background(), input)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, ParseError, report.Results[0].Label)
	assert.Error(t, report.Results[0].Err)
}

func TestLabelStrings(t *testing.T) {
	assert.Equal(t, "good", Good.String())
	assert.Equal(t, "need_topo_sort", NeedTopoSort.String())
	assert.Equal(t, "cyclic", Cyclic.String())
	assert.Equal(t, "parse_error", ParseError.String())
}

func TestOrderedPaths(t *testing.T) {
	v := Line(context.Background(), "pkg", "q? ( r ) p? ( q )")
	require.Equal(t, NeedTopoSort, v.Label)

	doc, err := syntax.Parse("q? ( r ) p? ( q )")
	require.NoError(t, err)
	tree, err := syntax.Lower(doc)
	require.NoError(t, err)
	paths := flatten.Flatten(tree.Nodes)

	reordered := OrderedPaths(paths, v.Order)
	require.Len(t, reordered, len(paths))
	assert.ElementsMatch(t, paths, reordered)
}
