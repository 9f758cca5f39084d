// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package immutable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	m, err := Parse("a !b c")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true, "b": false, "c": true}, m)
}

func TestParseEmpty(t *testing.T) {
	m, err := Parse("")
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestParseInvalidName(t *testing.T) {
	_, err := Parse("!!a")
	assert.Error(t, err)
}
