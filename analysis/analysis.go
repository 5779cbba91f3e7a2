/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"fmt"
	"sort"

	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/metric"
	"chainguard.dev/sliceeval/telemetry"
	"github.com/chainguard-dev/clog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Analysis kinds.
const (
	KindBucketAnalysis      = "BucketAnalysis"
	KindComboCountAnalysis  = "ComboCountAnalysis"
	KindCalibrationAnalysis = "CalibrationAnalysis"
)

// AccuracyMetric is the metric name calibration analysis evaluates.
const AccuracyMetric = "Accuracy"

const instrumentationName = "chainguard.dev/sliceeval/analysis"

// Analysis is a configured slicing operation. Implementations are immutable.
type Analysis interface {
	// Kind returns the cls_name discriminator.
	Kind() string
	// Level is the analysis level the analysis runs at.
	Level() string
	// Description is the human readable description, possibly empty.
	Description() string

	// Perform runs the analysis. Case sample ids index the rows of every
	// Stats table.
	Perform(ctx context.Context, cs []cases.Case, metrics map[string]metric.Metric, stats map[string]metric.Stats, opts ...PerformOption) (Result, error)

	isAnalysis()
}

var (
	_ Analysis = (*BucketAnalysis)(nil)
	_ Analysis = (*ComboCountAnalysis)(nil)
	_ Analysis = (*CalibrationAnalysis)(nil)
)

var caseMeter = telemetry.NewAnalysis(instrumentationName)

// run wraps an analysis body with a span, logging and counters.
func run(ctx context.Context, a Analysis, n int, body func(context.Context) (Result, error)) (Result, error) {
	tr := otel.Tracer(instrumentationName, oteltrace.WithInstrumentationVersion("1.0.0"))
	ctx, span := tr.Start(ctx, "analysis.perform", oteltrace.WithAttributes(
		attribute.String("analysis.kind", a.Kind()),
		attribute.String("analysis.level", a.Level()),
		attribute.Int("analysis.cases", n),
	))
	defer span.End()

	log := clog.FromContext(ctx).With("analysis", a.Kind(), "level", a.Level())
	ctx = clog.WithLogger(ctx, log)
	log.With("cases", n).Debug("Performing analysis")

	res, err := body(ctx)
	recordPerform(a, res, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.With("error", err).Warn("Analysis failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("analysis.result", res.Name()))
	span.SetStatus(codes.Ok, "")
	return res, nil
}

// requireFeatures checks the analyzed features on the first case.
func requireFeatures(kind string, cs []cases.Case, features ...string) error {
	for _, f := range features {
		if len(cs) == 0 || !cs[0].HasFeature(f) {
			return fmt.Errorf("%w: %s: feature %q", ErrFeatureNotFound, kind, f)
		}
	}
	return nil
}

// sortedMetricNames returns the metric names, checking each has statistics.
func sortedMetricNames(metrics map[string]metric.Metric, stats map[string]metric.Stats) ([]string, error) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		if _, ok := stats[name]; !ok {
			return nil, fmt.Errorf("%w: no statistics for metric %q", ErrMetricNotFound, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// evaluate computes a metric over the rows of stats at ids. Empty buckets
// yield an empty result.
func evaluate(m metric.Metric, stats metric.Stats, ids []int, alpha float64, aux metric.Stats) (metric.Result, error) {
	if len(ids) == 0 {
		return metric.Result{}, nil
	}
	filtered, err := stats.Filter(ids)
	if err != nil {
		return metric.Result{}, fmt.Errorf("%w: %s: %w", ErrShapeMismatch, m.Name(), err)
	}
	var filteredAux metric.Stats
	if aux != nil {
		if filteredAux, err = aux.Filter(ids); err != nil {
			return metric.Result{}, fmt.Errorf("%w: %s auxiliary: %w", ErrShapeMismatch, m.Name(), err)
		}
	}
	res, err := m.EvaluateFromStats(filtered, alpha, filteredAux)
	if err != nil {
		return metric.Result{}, fmt.Errorf("evaluating %s: %w", m.Name(), err)
	}
	return res, nil
}

func bucketSizes(perfs []BucketPerformance) []int {
	sizes := make([]int, len(perfs))
	for i, p := range perfs {
		sizes[i] = p.NSamples
	}
	return sizes
}
