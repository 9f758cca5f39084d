// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

package main

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"

	"github.com/projg2/requireduse/internal/requireduse/ast"
	"github.com/projg2/requireduse/internal/requireduse/immutable"
	"github.com/projg2/requireduse/internal/requireduse/syntax"
	"github.com/projg2/requireduse/internal/requireduse/validate"
)

// parseAndValidate lexes, parses, and structurally validates constraint
// text, returning the ast tree ready for sortnary/flatten/normalize.
func parseAndValidate(text string) (*ast.Document, error) {
	doc, err := syntax.Parse(text)
	if err != nil {
		return nil, err
	}
	tree, err := syntax.Lower(doc)
	if err != nil {
		return nil, err
	}
	if err := validate.Walk(tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// loadImmutables merges a profile file's "immutable" key (whitespace
// syntax, e.g. "a !b c") with repeated --immutable flag values, flags
// taking precedence over the profile on a per-name basis.
func loadImmutables(profile string, flagValues []string) (map[string]bool, error) {
	merged := map[string]bool{}

	if profile != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(profile), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "loading profile %s", profile)
		}
		if spec := k.String("immutable"); spec != "" {
			parsed, err := immutable.Parse(spec)
			if err != nil {
				return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "parsing profile %s immutable spec", profile)
			}
			for name, v := range parsed {
				merged[name] = v
			}
		}
	}

	if len(flagValues) > 0 {
		parsed, err := immutable.Parse(strings.Join(flagValues, " "))
		if err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "parsing --immutable flags")
		}
		for name, v := range parsed {
			merged[name] = v
		}
	}

	return merged, nil
}
