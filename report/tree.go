/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"fmt"
	"strconv"
	"strings"

	"chainguard.dev/sdk/pathtree"
	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/cases"
)

// Tree renders an overview with one node per level, one per result under
// it and one per bucket or combo under each result.
func Tree(results []analysis.Result) (string, error) {
	tree := pathtree.New()
	tree.PrintOption = pathtree.KeyValueLabel

	var levels []string
	perLevel := make(map[string]int)
	for _, r := range results {
		if perLevel[r.Level()] == 0 {
			levels = append(levels, r.Level())
		}
		perLevel[r.Level()]++
	}
	for _, level := range levels {
		if err := tree.Add(treeKey(level), "level", plural(perLevel[level], "result")); err != nil {
			return "", fmt.Errorf("adding level %s: %w", level, err)
		}
	}

	for _, r := range results {
		base := treeKey(r.Level()) + "/" + treeKey(r.Name())
		var err error
		switch r := r.(type) {
		case *analysis.BucketAnalysisResult:
			err = addBuckets(tree, base, "bucket", r.BucketPerformances())
		case *analysis.CalibrationAnalysisResult:
			value := fmt.Sprintf("ece %s, mce %s",
				cases.FormatFloat(r.ExpectedCalibrationError()), cases.FormatFloat(r.MaximumCalibrationError()))
			err = addBuckets(tree, base, value, r.BucketPerformances())
		case *analysis.ComboCountAnalysisResult:
			err = addCombos(tree, base, r)
		default:
			err = fmt.Errorf("unsupported result %s", r.Kind())
		}
		if err != nil {
			return "", fmt.Errorf("adding %s: %w", base, err)
		}
	}
	return tree.String(), nil
}

func addBuckets(tree *pathtree.Tree, base, value string, perfs []analysis.BucketPerformance) error {
	if err := tree.Add(base, value, plural(len(perfs), "bucket")); err != nil {
		return err
	}
	for i, p := range perfs {
		var scores []string
		for _, name := range p.MetricNames() {
			score := "-"
			if v, ok := p.Score(name); ok {
				score = cases.FormatFloat(v)
			}
			scores = append(scores, name+" "+score)
		}
		label := fmt.Sprintf("%s %s", p.Label(), plural(p.NSamples, "sample"))
		if err := tree.Add(base+"/"+strconv.Itoa(i+1), strings.Join(scores, ", "), label); err != nil {
			return err
		}
	}
	return nil
}

func addCombos(tree *pathtree.Tree, base string, r *analysis.ComboCountAnalysisResult) error {
	occurrences := r.ComboOccurrences()
	if err := tree.Add(base, "combo", plural(len(occurrences), "combo")); err != nil {
		return err
	}
	for i, occ := range occurrences {
		if err := tree.Add(base+"/"+strconv.Itoa(i+1), strconv.Itoa(occ.SampleCount), strings.Join(occ.Features, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// treeKey keeps names from introducing extra path segments.
func treeKey(s string) string {
	return strings.ReplaceAll(s, "/", "∕")
}

func plural(n int, word string) string {
	if n != 1 {
		word += "s"
	}
	return fmt.Sprintf("(%d %s)", n, word)
}
