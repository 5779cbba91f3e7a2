/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package bucketing

import (
	"encoding/json"
	"fmt"

	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/params"
)

// FixedSetting holds the explicit buckets for Fixed. Exactly one of
// Intervals and Labels is set.
type FixedSetting struct {
	Intervals []cases.Interval
	Labels    []string
}

// MarshalJSON renders the setting in the list form ParseFixedSetting accepts.
func (fs FixedSetting) MarshalJSON() ([]byte, error) {
	if len(fs.Labels) > 0 {
		return json.Marshal(fs.Labels)
	}
	if fs.Intervals == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(fs.Intervals)
}

// ParseFixedSetting accepts a FixedSetting, a list of [low, high] pairs or a
// list of labels, in either typed or decoded ([]any) form.
func ParseFixedSetting(setting any) (FixedSetting, error) {
	switch s := setting.(type) {
	case FixedSetting:
		return s, validateFixed(s)
	case *FixedSetting:
		return *s, validateFixed(*s)
	case []cases.Interval:
		return FixedSetting{Intervals: s}, validateFixed(FixedSetting{Intervals: s})
	case [][2]float64:
		fs := FixedSetting{Intervals: make([]cases.Interval, 0, len(s))}
		for _, b := range s {
			fs.Intervals = append(fs.Intervals, cases.Interval{Low: b[0], High: b[1]})
		}
		return fs, validateFixed(fs)
	case []string:
		return FixedSetting{Labels: s}, validateFixed(FixedSetting{Labels: s})
	case nil:
		return FixedSetting{}, fmt.Errorf("%w: fixed bucketing requires a setting", ErrInvalidSetting)
	}

	items, err := params.ConvertSlice[any](setting)
	if err != nil {
		return FixedSetting{}, fmt.Errorf("%w: fixed setting %w", ErrInvalidSetting, err)
	}
	var fs FixedSetting
	for i, item := range items {
		if label, ok := item.(string); ok {
			fs.Labels = append(fs.Labels, label)
			continue
		}
		bounds, err := params.ConvertSlice[float64](item)
		if err != nil || len(bounds) != 2 {
			return FixedSetting{}, fmt.Errorf("%w: entry %d must be a label or a [low, high] pair, got %v", ErrInvalidSetting, i, item)
		}
		fs.Intervals = append(fs.Intervals, cases.Interval{Low: bounds[0], High: bounds[1]})
	}
	return fs, validateFixed(fs)
}

func validateFixed(fs FixedSetting) error {
	switch {
	case len(fs.Intervals) == 0 && len(fs.Labels) == 0:
		return fmt.Errorf("%w: fixed setting is empty", ErrInvalidSetting)
	case len(fs.Intervals) > 0 && len(fs.Labels) > 0:
		return fmt.Errorf("%w: fixed setting mixes intervals and labels", ErrInvalidSetting)
	}
	for i, label := range fs.Labels {
		if label == "" {
			return fmt.Errorf("%w: label %d is empty", ErrInvalidSetting, i)
		}
	}
	for i, iv := range fs.Intervals {
		if iv.Low > iv.High {
			return fmt.Errorf("%w: interval %d has low %v > high %v", ErrInvalidSetting, i, iv.Low, iv.High)
		}
	}
	return nil
}

// Fixed routes each sample to the first matching caller supplied bucket.
// Intervals are inclusive-lower, exclusive-upper, except the last which is
// closed on both ends. bucketNumber must be positive but the bucket count
// comes from the setting.
func Fixed(samples []Sample, bucketNumber int, setting FixedSetting) ([]cases.Collection, error) {
	if err := checkBucketNumber(bucketNumber); err != nil {
		return nil, err
	}
	if err := validateFixed(setting); err != nil {
		return nil, err
	}

	if len(setting.Labels) > 0 {
		out := make([]cases.Collection, len(setting.Labels))
		index := make(map[string]int, len(setting.Labels))
		for i, label := range setting.Labels {
			out[i] = cases.Collection{Name: label, Samples: []int{}}
			if _, seen := index[label]; !seen {
				index[label] = i
			}
		}
		for _, s := range samples {
			if i, ok := index[cases.FormatValue(s.Value)]; ok {
				out[i].Samples = append(out[i].Samples, s.Case.SampleID())
			}
		}
		return out, nil
	}

	out := make([]cases.Collection, len(setting.Intervals))
	for i := range setting.Intervals {
		iv := setting.Intervals[i]
		out[i] = cases.Collection{Interval: &iv, Samples: []int{}}
	}
	last := len(setting.Intervals) - 1
	for _, s := range samples {
		v, err := numericValue(s)
		if err != nil {
			return nil, err
		}
		for i, iv := range setting.Intervals {
			if iv.Contains(v, i == last) {
				out[i].Samples = append(out[i].Samples, s.Case.SampleID())
				break
			}
		}
	}
	return out, nil
}
