// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 requireduse Contributors

// Package classify provides the single-line and batch façade over the
// full pipeline: parse, validate, flatten, topologically sort the
// back-alteration relation, and pairwise-check whether the existing
// source order already respects it. It ports the reference nsolve.py
// `solve` driver's verdict labeling.
package classify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/projg2/requireduse/internal/requireduse/ast"
	"github.com/projg2/requireduse/internal/requireduse/flatten"
	"github.com/projg2/requireduse/internal/requireduse/graph"
	"github.com/projg2/requireduse/internal/requireduse/sortnary"
	"github.com/projg2/requireduse/internal/requireduse/syntax"
	"github.com/projg2/requireduse/internal/requireduse/validate"
)

// Label names the classify verdict bucket, mirroring the reference
// solve() driver's three non-error outcomes plus a parse-failure bucket.
type Label int

const (
	// Good means the source order already satisfies every back-alteration
	// dependency: no rule can undo an earlier rule's effect.
	Good Label = iota
	// NeedTopoSort means the constraint is solvable but its rules must be
	// reordered (a later rule, in source order, can break an earlier one).
	NeedTopoSort
	// Cyclic means the back-alteration relation contains a cycle: no
	// ordering exists that avoids every rule breaking some other.
	Cyclic
	// ParseError means the source text failed to parse, to lower, or to
	// pass structural validation.
	ParseError
)

func (l Label) String() string {
	switch l {
	case Good:
		return "good"
	case NeedTopoSort:
		return "need_topo_sort"
	case Cyclic:
		return "cyclic"
	case ParseError:
		return "parse_error"
	default:
		return "unknown"
	}
}

// Verdict is the result of classifying a single constraint string.
type Verdict struct {
	Package string
	Source  string
	Label   Label
	Order   []int
	Err     error
}

var tracer = otel.Tracer("github.com/projg2/requireduse/internal/requireduse/classify")

var linesClassified = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "requireduse_classify_lines_total",
	Help: "Total constraint lines classified, by verdict label.",
}, []string{"label"})

// Line classifies a single REQUIRED_USE-style constraint string for the
// named package. It never panics: every failure mode (parse, validation,
// cyclic ordering) is reported through Verdict.Err with Verdict.Label set
// accordingly.
func Line(ctx context.Context, pkg, constraint string) Verdict {
	_, span := tracer.Start(ctx, "classify.Line", trace.WithAttributes(
		attribute.String("requireduse.package", pkg),
	))
	defer span.End()

	doc, err := syntax.Parse(constraint)
	if err != nil {
		linesClassified.WithLabelValues(ParseError.String()).Inc()
		return Verdict{Package: pkg, Source: constraint, Label: ParseError, Err: err}
	}
	tree, err := syntax.Lower(doc)
	if err != nil {
		linesClassified.WithLabelValues(ParseError.String()).Inc()
		return Verdict{Package: pkg, Source: constraint, Label: ParseError, Err: err}
	}
	if err := validate.Walk(tree); err != nil {
		linesClassified.WithLabelValues(ParseError.String()).Inc()
		return Verdict{Package: pkg, Source: constraint, Label: ParseError, Err: err}
	}

	sorted := sortnary.Sort(tree.Nodes, neutralKey)
	paths := flatten.Flatten(sorted)
	deps := graph.Deps(paths)

	order, err := graph.TopoSort(paths, deps)
	if err != nil {
		linesClassified.WithLabelValues(Cyclic.String()).Inc()
		return Verdict{Package: pkg, Source: constraint, Label: Cyclic, Order: order, Err: err}
	}

	// The source order is already good iff no later path can break an
	// earlier one, i.e. no j > i has CanBreak(paths[j], paths[i]).
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			if graph.CanBreak(paths[j], paths[i]) {
				linesClassified.WithLabelValues(NeedTopoSort.String()).Inc()
				return Verdict{Package: pkg, Source: constraint, Label: NeedTopoSort, Order: order}
			}
		}
	}

	linesClassified.WithLabelValues(Good.String()).Inc()
	return Verdict{Package: pkg, Source: constraint, Label: Good, Order: order}
}

// Report summarizes a batch classification run: one correlation ID, a
// verdict per input line, and per-label counts.
type Report struct {
	RunID   string
	Results []Verdict
	Counts  map[Label]int
}

// Batch reads "package constraint..." lines from r, split at the first
// space character (blank lines and lines starting with # are skipped;
// a line with no space is reported as a ParseError), and classifies
// each, tagging the run with a fresh ULID correlation ID for log
// correlation across the batch.
func Batch(ctx context.Context, r io.Reader) (Report, error) {
	runID := ulid.Make().String()
	ctx, span := tracer.Start(ctx, "classify.Batch", trace.WithAttributes(
		attribute.String("requireduse.run_id", runID),
	))
	defer span.End()

	report := Report{RunID: runID, Counts: map[Label]int{}}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			report.Results = append(report.Results, Verdict{
				Source: line,
				Label:  ParseError,
				Err:    fmt.Errorf("batch line %d: expected \"package constraint\"", lineNo),
			})
			report.Counts[ParseError]++
			continue
		}
		v := Line(ctx, fields[0], fields[1])
		report.Results = append(report.Results, v)
		report.Counts[v.Label]++
	}
	if err := scanner.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// OrderedPaths returns paths rearranged into the given order, such as
// the Verdict.Order that TopoSort selected.
func OrderedPaths(paths []flatten.Path, order []int) []flatten.Path {
	out := make([]flatten.Path, len(order))
	for i, idx := range order {
		out[i] = paths[idx]
	}
	return out
}

func neutralKey(ast.Flag) int { return 1 }
