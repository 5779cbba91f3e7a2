/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package bucketing

import (
	"fmt"
	"sort"

	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/params"
)

// OtherBucketName names the bucket that collects values outside the top K.
const OtherBucketName = "(other)"

// DiscreteSetting configures Discrete.
type DiscreteSetting struct {
	// MinCount is the minimum number of samples a value needs to get its own
	// bucket. Values below it are treated like values outside the top K.
	MinCount int `json:"min_count,omitempty" yaml:"min_count,omitempty"`

	// DropRemainder discards values outside the top K instead of folding them
	// into an OtherBucketName bucket.
	DropRemainder bool `json:"drop_remainder,omitempty" yaml:"drop_remainder,omitempty"`
}

// ParseDiscreteSetting accepts nil (defaults), a number (the minimum count),
// a DiscreteSetting, or a mapping with min_count / drop_remainder keys.
func ParseDiscreteSetting(setting any) (DiscreteSetting, error) {
	switch s := setting.(type) {
	case nil:
		return DiscreteSetting{MinCount: 1}, nil
	case DiscreteSetting:
		return s, nil
	case *DiscreteSetting:
		return *s, nil
	}

	if n, err := params.Convert[int](setting); err == nil {
		return DiscreteSetting{MinCount: n}, nil
	}

	m, ok := params.AsMap(setting)
	if !ok {
		return DiscreteSetting{}, fmt.Errorf("%w: discrete setting must be a count or mapping, got %T", ErrInvalidSetting, setting)
	}
	minCount, err := params.ExtractOptional(m, "min_count", 1)
	if err != nil {
		return DiscreteSetting{}, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	drop, err := params.ExtractOptional(m, "drop_remainder", false)
	if err != nil {
		return DiscreteSetting{}, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	return DiscreteSetting{MinCount: minCount, DropRemainder: drop}, nil
}

// Discrete groups samples by value and keeps the bucketNumber most frequent
// values as named buckets.
func Discrete(samples []Sample, bucketNumber int, setting DiscreteSetting) ([]cases.Collection, error) {
	if err := checkBucketNumber(bucketNumber); err != nil {
		return nil, err
	}

	groups := make(map[string][]int)
	for _, s := range samples {
		name := cases.FormatValue(s.Value)
		groups[name] = append(groups[name], s.Case.SampleID())
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := len(groups[names[i]]), len(groups[names[j]])
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})

	out := make([]cases.Collection, 0, min(len(names), bucketNumber)+1)
	kept := make(map[string]struct{}, bucketNumber)
	for _, name := range names {
		if len(out) == bucketNumber {
			break
		}
		if len(groups[name]) < setting.MinCount {
			continue
		}
		kept[name] = struct{}{}
		out = append(out, cases.Collection{Name: name, Samples: groups[name]})
	}

	if setting.DropRemainder || len(kept) == len(names) {
		return out, nil
	}

	// Keep input order for the remainder so the output is deterministic.
	var rest []int
	for _, s := range samples {
		if _, ok := kept[cases.FormatValue(s.Value)]; !ok {
			rest = append(rest, s.Case.SampleID())
		}
	}
	return append(out, cases.Collection{Name: OtherBucketName, Samples: rest}), nil
}
