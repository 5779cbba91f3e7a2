/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package bucketing

import (
	"sort"

	"chainguard.dev/sliceeval/cases"
)

// Continuous splits samples into at most bucketNumber equal-frequency buckets
// over their numeric values.
func Continuous(samples []Sample, bucketNumber int) ([]cases.Collection, error) {
	if err := checkBucketNumber(bucketNumber); err != nil {
		return nil, err
	}

	type point struct {
		id    int
		value float64
	}
	points := make([]point, 0, len(samples))
	for _, s := range samples {
		v, err := numericValue(s)
		if err != nil {
			return nil, err
		}
		points = append(points, point{id: s.Case.SampleID(), value: v})
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].value < points[j].value
	})

	total := len(points)
	var out []cases.Collection
	start := 0
	for k := 1; k <= bucketNumber && start < total; k++ {
		end := k * total / bucketNumber
		if k == bucketNumber {
			end = total
		}
		if end <= start {
			continue
		}
		// Equal values at the boundary belong to the lower bucket.
		for end < total && points[end].value == points[end-1].value {
			end++
		}

		ids := make([]int, 0, end-start)
		for _, p := range points[start:end] {
			ids = append(ids, p.id)
		}
		out = append(out, cases.Collection{
			Samples:  ids,
			Interval: &cases.Interval{Low: points[start].value, High: points[end-1].value},
		})
		start = end
	}
	return out, nil
}
