/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/metric"
)

// BucketPerformance is the measured performance of one bucket.
type BucketPerformance struct {
	// NSamples is the number of cases in the bucket.
	NSamples int `json:"n_samples"`
	// BucketSamples holds at most sample_limit of the bucket's example ids.
	BucketSamples []int `json:"bucket_samples"`
	// Results maps metric names to their result on the bucket. Empty buckets
	// hold empty results.
	Results map[string]metric.Result `json:"results"`
	// BucketInterval identifies numeric buckets.
	BucketInterval *cases.Interval `json:"bucket_interval,omitempty"`
	// BucketName identifies named buckets.
	BucketName string `json:"bucket_name,omitempty"`
}

// Label returns the interval string of numeric buckets and the name otherwise.
func (p BucketPerformance) Label() string {
	if p.BucketInterval != nil {
		return p.BucketInterval.String()
	}
	return p.BucketName
}

// MetricNames returns the sorted metric names of the bucket.
func (p BucketPerformance) MetricNames() []string {
	return slices.Sorted(maps.Keys(p.Results))
}

// Score returns the "score" value of the named metric, if evaluated.
func (p BucketPerformance) Score(metricName string) (float64, bool) {
	s, ok := metric.GetValueOrNone[metric.Score](p.Results[metricName], metric.ScoreKey)
	return s.Value, ok
}

func (p BucketPerformance) clone() BucketPerformance {
	out := p
	out.BucketSamples = slices.Clone(p.BucketSamples)
	out.Results = maps.Clone(p.Results)
	if p.BucketInterval != nil {
		iv := *p.BucketInterval
		out.BucketInterval = &iv
	}
	return out
}

func validatePerformances(perfs []BucketPerformance) error {
	if len(perfs) == 0 {
		return nil
	}
	want := perfs[0].MetricNames()
	for i, p := range perfs {
		if got := p.MetricNames(); !slices.Equal(got, want) {
			return fmt.Errorf("%w: bucket %d has %v, required %v", ErrInconsistentMetrics, i, got, want)
		}
		if p.BucketInterval != nil && p.BucketName != "" {
			return fmt.Errorf("%w: bucket %d has both an interval and a name", ErrConfiguration, i)
		}
		if p.NSamples < 0 || len(p.BucketSamples) > p.NSamples {
			return fmt.Errorf("%w: bucket %d keeps %d of %d samples", ErrConfiguration, i, len(p.BucketSamples), p.NSamples)
		}
	}
	return nil
}

func clonePerformances(perfs []BucketPerformance) []BucketPerformance {
	out := make([]BucketPerformance, len(perfs))
	for i, p := range perfs {
		out[i] = p.clone()
	}
	return out
}

// bucketReport renders the per metric bucket tables shared by bucket and
// calibration results.
func bucketReport(name string, perfs []BucketPerformance) []string {
	if len(perfs) == 0 {
		return nil
	}
	var texts []string
	for _, metricName := range perfs[0].MetricNames() {
		texts = append(texts,
			fmt.Sprintf("the information of #%s#", name),
			fmt.Sprintf("bucket_name\t%s\t#samples", metricName))
		for _, p := range perfs {
			score := "-"
			if v, ok := p.Score(metricName); ok {
				score = cases.FormatFloat(v)
			}
			texts = append(texts, strings.Join([]string{p.Label(), score, fmt.Sprint(p.NSamples)}, "\t"))
		}
		texts = append(texts, "")
	}
	return texts
}
