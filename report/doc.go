/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package report renders analysis results for people.

# Generator Types

All generators implement the Generator function type:

	type Generator func(results []analysis.Result) (string, error)

Available generators:

  - Text: the plain tab separated report of every result, concatenated
  - Markdown: one markdown table per result, with calibration errors below calibration tables
  - Tree: a compact overview of levels, results and per bucket scores

# Usage

	res, err := a.Perform(ctx, cs, metrics, stats)
	if err != nil {
		return err
	}

	out, err := report.Markdown([]analysis.Result{res})
	if err != nil {
		return err
	}
	fmt.Print(out)

Generators never modify their input and are safe for concurrent use.
*/
package report
