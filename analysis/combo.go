/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/sliceeval/bucketing"
	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/metric"
	"github.com/chainguard-dev/clog"
)

// ComboCountAnalysis counts each combination of values of several features,
// e.g. (true_label, predicted_label) for a confusion matrix.
type ComboCountAnalysis struct {
	description string
	level       string
	features    []string
	method      string
	sampleLimit int
}

// NewComboCountAnalysis creates a ComboCountAnalysis over features. Only the
// discrete method is supported.
func NewComboCountAnalysis(level string, features []string, opts ...Option) (*ComboCountAnalysis, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := o.unsupported("combo count analysis", "num_buckets", "setting"); err != nil {
		return nil, err
	}
	a := &ComboCountAnalysis{
		description: o.description,
		level:       level,
		features:    slices.Clone(features),
		method:      bucketing.MethodDiscrete,
		sampleLimit: o.sampleLimit,
	}
	if o.method != nil && *o.method != bucketing.MethodDiscrete {
		return nil, fmt.Errorf("%w: combo count analysis only supports %q, got %q", ErrInvalidOption, bucketing.MethodDiscrete, *o.method)
	}
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: combo count analysis requires features", ErrInvalidOption)
	}
	return a, nil
}

// Kind implements Analysis.
func (*ComboCountAnalysis) Kind() string { return KindComboCountAnalysis }

// Level implements Analysis.
func (a *ComboCountAnalysis) Level() string { return a.level }

// Description implements Analysis.
func (a *ComboCountAnalysis) Description() string { return a.description }

// Features returns the combined features.
func (a *ComboCountAnalysis) Features() []string { return slices.Clone(a.features) }

// SampleLimit returns how many ids are kept per combination.
func (a *ComboCountAnalysis) SampleLimit() int { return a.sampleLimit }

// Name returns the name results are reported under, e.g. "combo(a,b)".
func (a *ComboCountAnalysis) Name() string {
	return "combo(" + strings.Join(a.features, ",") + ")"
}

func (*ComboCountAnalysis) isAnalysis() {}

// Perform implements Analysis. Metrics and statistics are not used.
func (a *ComboCountAnalysis) Perform(ctx context.Context, cs []cases.Case, _ map[string]metric.Metric, _ map[string]metric.Stats, opts ...PerformOption) (Result, error) {
	return run(ctx, a, len(cs), func(ctx context.Context) (Result, error) {
		cfg, err := newPerformConfig(opts)
		if err != nil {
			return nil, err
		}
		if err := requireFeatures("combo analysis", cs, a.features...); err != nil {
			return nil, err
		}

		type combo struct {
			values []string
			ids    []int
		}
		index := make(map[string]int)
		var combos []combo
		counted := 0
	next:
		for _, c := range cs {
			values := make([]string, len(a.features))
			for i, f := range a.features {
				v, ok := c.Feature(f)
				if !ok {
					clog.FromContext(ctx).With("sample_id", c.SampleID()).With("feature", f).Debug("Skipping case without feature")
					continue next
				}
				values[i] = cases.FormatValue(v)
			}
			key := strings.Join(values, "\x00")
			i, ok := index[key]
			if !ok {
				i = len(combos)
				index[key] = i
				combos = append(combos, combo{values: values})
			}
			combos[i].ids = append(combos[i].ids, c.SampleID())
			counted++
		}

		occurrences := make([]ComboOccurrence, len(combos))
		sizes := make([]int, len(combos))
		for i, c := range combos {
			occurrences[i] = ComboOccurrence{
				Features:    c.values,
				SampleCount: len(c.ids),
				SampleIDs:   subsample(c.ids, a.sampleLimit, cfg.rand),
			}
			sizes[i] = len(c.ids)
		}
		caseMeter.RecordBuckets(ctx, a.Kind(), a.level, counted, sizes)

		return asResult(NewComboCountAnalysisResult(a.Name(), a.level, a.features, occurrences))
	})
}

type comboAnalysisJSON struct {
	ClsName     string   `json:"cls_name"`
	Description string   `json:"description,omitempty"`
	Level       string   `json:"level"`
	Features    []string `json:"features"`
	Method      string   `json:"method"`
	SampleLimit int      `json:"sample_limit"`
}

// MarshalJSON implements json.Marshaler.
func (a *ComboCountAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(comboAnalysisJSON{
		ClsName:     a.Kind(),
		Description: a.description,
		Level:       a.level,
		Features:    a.features,
		Method:      a.method,
		SampleLimit: a.sampleLimit,
	})
}
