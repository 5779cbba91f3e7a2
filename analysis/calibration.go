/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"chainguard.dev/sliceeval/bucketing"
	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/metric"
	"github.com/chainguard-dev/clog"
)

// CalibrationAnalysis divides [0, 1] into equal width confidence buckets and
// compares the accuracy of each bucket with its mean confidence.
type CalibrationAnalysis struct {
	description string
	level       string
	feature     string
	numBuckets  int
	sampleLimit int
}

// NewCalibrationAnalysis creates a CalibrationAnalysis reading confidences
// from feature. It defaults to DefaultCalibrationNumBuckets buckets.
func NewCalibrationAnalysis(level, feature string, opts ...Option) (*CalibrationAnalysis, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if err := o.unsupported("calibration analysis", "method", "setting"); err != nil {
		return nil, err
	}
	a := &CalibrationAnalysis{
		description: o.description,
		level:       level,
		feature:     feature,
		numBuckets:  DefaultCalibrationNumBuckets,
		sampleLimit: o.sampleLimit,
	}
	if o.numBuckets != nil {
		a.numBuckets = *o.numBuckets
	}
	if feature == "" {
		return nil, fmt.Errorf("%w: calibration analysis requires a feature", ErrInvalidOption)
	}
	return a, nil
}

// Kind implements Analysis.
func (*CalibrationAnalysis) Kind() string { return KindCalibrationAnalysis }

// Level implements Analysis.
func (a *CalibrationAnalysis) Level() string { return a.level }

// Description implements Analysis.
func (a *CalibrationAnalysis) Description() string { return a.description }

// Feature returns the confidence feature.
func (a *CalibrationAnalysis) Feature() string { return a.feature }

// NumBuckets returns the number of confidence buckets.
func (a *CalibrationAnalysis) NumBuckets() int { return a.numBuckets }

// SampleLimit returns how many ids are kept per bucket.
func (a *CalibrationAnalysis) SampleLimit() int { return a.sampleLimit }

func (*CalibrationAnalysis) isAnalysis() {}

// Intervals returns the confidence buckets: [i/n, (i+1)/n) with the last
// one closed at 1.
func (a *CalibrationAnalysis) Intervals() []cases.Interval {
	out := make([]cases.Interval, a.numBuckets)
	n := float64(a.numBuckets)
	for i := range out {
		out[i] = cases.Interval{Low: float64(i) / n, High: float64(i+1) / n}
	}
	out[len(out)-1].High = 1
	return out
}

// Perform implements Analysis. It requires an "Accuracy" metric whose
// statistics have one row per case.
func (a *CalibrationAnalysis) Perform(ctx context.Context, cs []cases.Case, metrics map[string]metric.Metric, stats map[string]metric.Stats, opts ...PerformOption) (Result, error) {
	return run(ctx, a, len(cs), func(ctx context.Context) (Result, error) {
		cfg, err := newPerformConfig(opts)
		if err != nil {
			return nil, err
		}
		if err := requireFeatures("calibration analysis", cs, a.feature); err != nil {
			return nil, err
		}
		acc, accStats := metrics[AccuracyMetric], stats[AccuracyMetric]
		if acc == nil || accStats == nil {
			return nil, fmt.Errorf("%w: calibration analysis: %s", ErrMetricNotFound, AccuracyMetric)
		}
		if accStats.Len() != len(cs) {
			return nil, fmt.Errorf("%w: %d %s rows for %d cases", ErrShapeMismatch, accStats.Len(), AccuracyMetric, len(cs))
		}

		// Cases without a confidence keep a zero row in the auxiliary stats
		// but are not bucketed.
		confidences := make([]float64, accStats.Len())
		samples := make([]bucketing.Sample, 0, len(cs))
		for _, c := range cs {
			id := c.SampleID()
			if id < 0 || id >= len(confidences) {
				return nil, fmt.Errorf("%w: sample id %d outside %d %s rows", ErrShapeMismatch, id, len(confidences), AccuracyMetric)
			}
			v, ok := c.Feature(a.feature)
			if !ok {
				clog.FromContext(ctx).With("sample_id", id).Debug("Skipping case without confidence")
				continue
			}
			conf, ok := cases.Numeric(v)
			if !ok {
				return nil, fmt.Errorf("%w: %w: sample %d confidence %v", ErrConfiguration, bucketing.ErrNonNumeric, id, v)
			}
			confidences[id] = conf
			samples = append(samples, bucketing.Sample{Case: c, Value: conf})
		}
		confStats := metric.NewColumnStats(confidences)

		collections, err := bucketing.Fixed(samples, a.numBuckets, bucketing.FixedSetting{Intervals: a.Intervals()})
		if err != nil {
			return nil, configErr(err)
		}

		perfs := make([]BucketPerformance, 0, len(collections))
		var totalErr, mce float64
		total := 0
		for _, coll := range collections {
			res, err := evaluate(acc, accStats, coll.Samples, cfg.alpha, confStats)
			if err != nil {
				return nil, err
			}
			n := len(coll.Samples)
			if n > 0 {
				accuracy, err := metric.GetValue[metric.Score](res, metric.ScoreKey)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrMissingConfidence, err)
				}
				confidence, err := metric.GetValue[metric.Score](res, metric.ConfidenceKey)
				if err != nil {
					return nil, fmt.Errorf("%w: %w", ErrMissingConfidence, err)
				}
				gap := math.Abs(accuracy.Value - confidence.Value)
				totalErr += float64(n) * gap
				total += n
				mce = math.Max(mce, gap)
			}
			perfs = append(perfs, BucketPerformance{
				NSamples:       n,
				BucketSamples:  subsample(coll.Samples, a.sampleLimit, cfg.rand),
				Results:        map[string]metric.Result{AccuracyMetric: res},
				BucketInterval: coll.Interval,
			})
		}
		ece := 0.0
		if total > 0 {
			ece = totalErr / float64(total)
		}
		caseMeter.RecordBuckets(ctx, a.Kind(), a.level, len(samples), bucketSizes(perfs))

		return asResult(NewCalibrationAnalysisResult(a.feature, a.level, perfs, ece, mce))
	})
}

type calibrationAnalysisJSON struct {
	ClsName     string `json:"cls_name"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level"`
	Feature     string `json:"feature"`
	NumBuckets  int    `json:"num_buckets"`
	SampleLimit int    `json:"sample_limit"`
}

// MarshalJSON implements json.Marshaler.
func (a *CalibrationAnalysis) MarshalJSON() ([]byte, error) {
	return json.Marshal(calibrationAnalysisJSON{
		ClsName:     a.Kind(),
		Description: a.description,
		Level:       a.level,
		Feature:     a.feature,
		NumBuckets:  a.numBuckets,
		SampleLimit: a.sampleLimit,
	})
}
