// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package immutable parses the externally-fixed flag list ("immutables")
// accepted alongside a constraint by solve/verify/classify: a
// whitespace-separated list of optionally-negated flag names.
package immutable

import (
	"strings"

	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
)

// Parse turns "a !b c" into {"a": true, "b": false, "c": true}.
func Parse(s string) (map[string]bool, error) {
	result := map[string]bool{}
	for _, tok := range strings.Fields(s) {
		polarity := true
		name := tok
		if strings.HasPrefix(tok, "!") {
			polarity = false
			name = tok[1:]
		}
		if !ast.NameRe.MatchString(name) {
			return nil, oops.Code("PARSE_ERROR").Errorf("invalid immutable flag name: %s", tok)
		}
		result[name] = polarity
	}
	return result, nil
}
