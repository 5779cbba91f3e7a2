/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package cases holds the unit of analysis and the groupings produced by bucketing.

A Case is one example (or span, or token) together with its precomputed
feature values, addressed by a stable sample id. A Collection is a named or
interval-labelled group of sample ids emitted by a bucketing strategy.

	c := cases.New(3, map[string]any{"true_label": "pos", "length": 12.0})
	v, ok := c.Feature("length")

Cases are immutable: New copies the feature map and accessors never expose
the internal map.
*/
package cases
