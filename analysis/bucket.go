/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"encoding/json"
	"fmt"

	"chainguard.dev/sliceeval/bucketing"
	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/metric"
	"github.com/chainguard-dev/clog"
)

// BucketAnalysis buckets cases by one feature and evaluates every metric on
// each bucket.
type BucketAnalysis struct {
	description string
	level       string
	feature     string
	method      string
	numBuckets  int
	setting     any
	sampleLimit int

	strategy bucketing.Strategy
}

// NewBucketAnalysis creates a BucketAnalysis over feature. It defaults to
// continuous bucketing into DefaultNumBuckets buckets. The bucketing method
// and setting are resolved here, so a bad method or setting fails early.
func NewBucketAnalysis(level, feature string, opts ...Option) (*BucketAnalysis, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	a := &BucketAnalysis{
		description: o.description,
		level:       level,
		feature:     feature,
		method:      bucketing.MethodContinuous,
		numBuckets:  DefaultNumBuckets,
		setting:     o.setting,
		sampleLimit: o.sampleLimit,
	}
	if o.method != nil {
		a.method = *o.method
	}
	if o.numBuckets != nil {
		a.numBuckets = *o.numBuckets
	}
	if feature == "" {
		return nil, fmt.Errorf("%w: bucket analysis requires a feature", ErrInvalidOption)
	}
	if a.strategy, err = bucketing.New(a.method, a.setting); err != nil {
		return nil, configErr(err)
	}
	return a, nil
}

// Kind implements Analysis.
func (*BucketAnalysis) Kind() string { return KindBucketAnalysis }

// Level implements Analysis.
func (a *BucketAnalysis) Level() string { return a.level }

// Description implements Analysis.
func (a *BucketAnalysis) Description() string { return a.description }

// Feature returns the bucketed feature.
func (a *BucketAnalysis) Feature() string { return a.feature }

// Method returns the bucketing method.
func (a *BucketAnalysis) Method() string { return a.method }

// NumBuckets returns the requested number of buckets.
func (a *BucketAnalysis) NumBuckets() int { return a.numBuckets }

// Setting returns the method specific setting as configured.
func (a *BucketAnalysis) Setting() any { return a.setting }

// SampleLimit returns how many ids are kept per bucket.
func (a *BucketAnalysis) SampleLimit() int { return a.sampleLimit }

func (*BucketAnalysis) isAnalysis() {}

// Perform implements Analysis.
func (a *BucketAnalysis) Perform(ctx context.Context, cs []cases.Case, metrics map[string]metric.Metric, stats map[string]metric.Stats, opts ...PerformOption) (Result, error) {
	return run(ctx, a, len(cs), func(ctx context.Context) (Result, error) {
		cfg, err := newPerformConfig(opts)
		if err != nil {
			return nil, err
		}
		if err := requireFeatures("bucket analysis", cs, a.feature); err != nil {
			return nil, err
		}
		names, err := sortedMetricNames(metrics, stats)
		if err != nil {
			return nil, err
		}

		samples := make([]bucketing.Sample, 0, len(cs))
		for _, c := range cs {
			v, ok := c.Feature(a.feature)
			if !ok {
				clog.FromContext(ctx).With("sample_id", c.SampleID()).Debug("Skipping case without feature")
				continue
			}
			samples = append(samples, bucketing.Sample{Case: c, Value: v})
		}

		collections, err := a.strategy.Bucket(samples, a.numBuckets)
		if err != nil {
			return nil, configErr(err)
		}

		perfs := make([]BucketPerformance, 0, len(collections))
		for _, coll := range collections {
			results := make(map[string]metric.Result, len(names))
			for _, name := range names {
				res, err := evaluate(metrics[name], stats[name], coll.Samples, cfg.alpha, nil)
				if err != nil {
					return nil, err
				}
				results[name] = res
			}
			perfs = append(perfs, BucketPerformance{
				NSamples:       len(coll.Samples),
				BucketSamples:  subsample(coll.Samples, a.sampleLimit, cfg.rand),
				Results:        results,
				BucketInterval: coll.Interval,
				BucketName:     coll.Name,
			})
		}
		caseMeter.RecordBuckets(ctx, a.Kind(), a.level, len(samples), bucketSizes(perfs))

		return asResult(NewBucketAnalysisResult(a.feature, a.level, perfs))
	})
}

type bucketAnalysisJSON struct {
	ClsName     string `json:"cls_name"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level"`
	Feature     string `json:"feature"`
	Method      string `json:"method"`
	NumBuckets  int    `json:"num_buckets"`
	Setting     any    `json:"setting"`
	SampleLimit int    `json:"sample_limit"`
}

// MarshalJSON implements json.Marshaler.
func (a *BucketAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(bucketAnalysisJSON{
		ClsName:     a.Kind(),
		Description: a.description,
		Level:       a.level,
		Feature:     a.feature,
		Method:      a.method,
		NumBuckets:  a.numBuckets,
		Setting:     a.setting,
		SampleLimit: a.sampleLimit,
	})
}
