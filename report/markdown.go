/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/cases"
)

// Markdown renders one section with a table per result.
func Markdown(results []analysis.Result) (string, error) {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s: %s (%s)\n\n", r.Level(), r.Name(), r.Kind())

		var (
			table string
			err   error
		)
		switch r := r.(type) {
		case *analysis.BucketAnalysisResult:
			table, err = bucketTable(r.BucketPerformances())
		case *analysis.CalibrationAnalysisResult:
			table, err = bucketTable(r.BucketPerformances())
			if err == nil {
				table += fmt.Sprintf("\nExpected calibration error: %s\nMaximum calibration error: %s\n",
					cases.FormatFloat(r.ExpectedCalibrationError()), cases.FormatFloat(r.MaximumCalibrationError()))
			}
		case *analysis.ComboCountAnalysisResult:
			table, err = comboTable(r)
		default:
			return "", fmt.Errorf("unsupported result %s", r.Kind())
		}
		if err != nil {
			return "", fmt.Errorf("rendering %s/%s: %w", r.Level(), r.Name(), err)
		}
		b.WriteString(table)
	}
	return b.String(), nil
}

func bucketTable(perfs []analysis.BucketPerformance) (string, error) {
	var metricNames []string
	if len(perfs) > 0 {
		metricNames = perfs[0].MetricNames()
	}
	columns := append(textColumns("Bucket"), numericColumns(metricNames...)...)
	columns = append(columns, numericColumns("Samples")...)

	var buf bytes.Buffer
	table := newReportTable(&buf, columns)
	for _, p := range perfs {
		row := []string{p.Label()}
		for _, name := range metricNames {
			if v, ok := p.Score(name); ok {
				row = append(row, cases.FormatFloat(v))
			} else {
				row = append(row, "-")
			}
		}
		row = append(row, strconv.Itoa(p.NSamples))
		if err := table.Append(row); err != nil {
			return "", err
		}
	}
	if err := table.Render(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func comboTable(r *analysis.ComboCountAnalysisResult) (string, error) {
	columns := append(textColumns(r.Features()...), numericColumns("Count")...)

	occurrences := r.ComboOccurrences()
	slices.SortStableFunc(occurrences, analysis.ComboOccurrence.Compare)

	var buf bytes.Buffer
	table := newReportTable(&buf, columns)
	for _, occ := range occurrences {
		if err := table.Append(append(slices.Clone(occ.Features), strconv.Itoa(occ.SampleCount))); err != nil {
			return "", err
		}
	}
	if err := table.Render(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
