/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"chainguard.dev/sliceeval/feature"
	"chainguard.dev/sliceeval/metric"
	"chainguard.dev/sliceeval/params"
)

// Level declares the features and default metrics of one granularity of
// analysis, such as "example", "span" or "token".
type Level struct {
	Name          string                   `json:"name"`
	Features      map[string]feature.Type  `json:"features"`
	MetricConfigs map[string]metric.Config `json:"metric_configs"`
}

// FeatureNames returns the sorted feature names.
func (l Level) FeatureNames() []string {
	return slices.Sorted(maps.Keys(l.Features))
}

// NumericFeatures returns the sorted names of features whose values are
// int or float.
func (l Level) NumericFeatures() []string {
	var out []string
	for _, name := range l.FeatureNames() {
		if dt, ok := feature.DataTypeOf(l.Features[name]); ok && dt.IsNumeric() {
			out = append(out, name)
		}
	}
	return out
}

// Metrics builds every configured metric, keyed by metric name.
func (l Level) Metrics() (map[string]metric.Evaluator, error) {
	out := make(map[string]metric.Evaluator, len(l.MetricConfigs))
	for key, cfg := range l.MetricConfigs {
		m, err := cfg.ToMetric()
		if err != nil {
			return nil, fmt.Errorf("level %s metric %s: %w", l.Name, key, configErr(err))
		}
		out[m.Name()] = m
	}
	return out, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Level) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	level, err := LevelFromMap(m)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

// LevelFromMap rebuilds a Level from its decoded form.
func LevelFromMap(m map[string]any) (Level, error) {
	name, err := params.Extract[string](m, "name")
	if err != nil {
		return Level{}, configErr(err)
	}
	rawFeatures, err := params.ExtractMap(m, "features")
	if err != nil {
		return Level{}, configErr(err)
	}
	rawConfigs, err := params.ExtractMap(m, "metric_configs")
	if err != nil {
		return Level{}, configErr(err)
	}

	l := Level{
		Name:          name,
		Features:      make(map[string]feature.Type, len(rawFeatures)),
		MetricConfigs: make(map[string]metric.Config, len(rawConfigs)),
	}
	for k, v := range rawFeatures {
		fm, ok := params.AsMap(v)
		if !ok {
			return Level{}, fmt.Errorf("%w: feature %q must be an object", ErrConfiguration, k)
		}
		if l.Features[k], err = feature.FromMap(fm); err != nil {
			return Level{}, fmt.Errorf("feature %q: %w", k, configErr(err))
		}
	}
	for k, v := range rawConfigs {
		cm, ok := params.AsMap(v)
		if !ok {
			return Level{}, fmt.Errorf("%w: metric config %q must be an object", ErrConfiguration, k)
		}
		if l.MetricConfigs[k], err = metric.ConfigFromMap(cm); err != nil {
			return Level{}, fmt.Errorf("metric config %q: %w", k, configErr(err))
		}
	}
	return l, nil
}
