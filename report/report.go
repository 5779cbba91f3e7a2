/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/sliceeval/analysis"
)

// Generator renders a list of analysis results.
type Generator func(results []analysis.Result) (string, error)

// Text concatenates the plain report of every result.
func Text(results []analysis.Result) (string, error) {
	var b strings.Builder
	for _, r := range results {
		b.WriteString(r.GenerateReport())
	}
	return b.String(), nil
}

var generators = map[string]Generator{
	"text":     Text,
	"markdown": Markdown,
	"tree":     Tree,
}

// ForFormat returns the generator registered for format.
func ForFormat(format string) (Generator, error) {
	g, ok := generators[format]
	if !ok {
		return nil, fmt.Errorf("unknown report format %q, supported: %s", format, strings.Join(Formats(), ", "))
	}
	return g, nil
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(generators))
	for k := range generators {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
