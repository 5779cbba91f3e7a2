/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metaanalysis turns the buckets of a report into examples, so
// reports can themselves be analyzed like system outputs.
package metaanalysis

import (
	"chainguard.dev/sliceeval/processor"
)

// Keys of the describing fields of every meta example.
const (
	FeatureNameKey    = "feature_name"
	BucketIntervalKey = "bucket_interval"
	BucketNameKey     = "bucket_name"
	BucketSizeKey     = "bucket_size"
)

// ReportToSysOutput returns one example per bucket of every bucket analysis
// in report. Each example names the analyzed feature and the bucket, and
// carries the score of every metric evaluated on the bucket under the
// metric's name. Empty buckets carry no scores.
func ReportToSysOutput(report *processor.Report) []map[string]any {
	var examples []map[string]any
	for _, res := range report.BucketResults() {
		for _, perf := range res.BucketPerformances() {
			example := map[string]any{
				FeatureNameKey:    res.Name(),
				BucketIntervalKey: perf.BucketInterval,
				BucketNameKey:     perf.BucketName,
				BucketSizeKey:     perf.NSamples,
			}
			for _, name := range perf.MetricNames() {
				if v, ok := perf.Score(name); ok {
					example[name] = v
				}
			}
			examples = append(examples, example)
		}
	}
	return examples
}
