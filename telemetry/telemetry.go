/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package telemetry provides OpenTelemetry instruments for analysis runs.
package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AttributeEnricher adds contextual attributes to recorded measurements.
type AttributeEnricher func(ctx context.Context, baseAttrs []attribute.KeyValue) []attribute.KeyValue

// Analysis records how many cases and buckets analyses process.
// Counters that fail to initialize degrade to no-ops.
type Analysis struct {
	meter        metric.Meter
	cases        metric.Int64Counter
	buckets      metric.Int64Counter
	emptyBuckets metric.Int64Counter
	attrEnricher AttributeEnricher
}

// NewAnalysis creates the instruments on the named meter of the global
// MeterProvider.
func NewAnalysis(meterName string) *Analysis {
	return NewAnalysisWithMeter(otel.Meter(meterName, metric.WithInstrumentationVersion("1.0.0")))
}

// NewAnalysisWithMeter creates the instruments on meter.
func NewAnalysisWithMeter(meter metric.Meter) *Analysis {
	cases, err := meter.Int64Counter("sliceeval.analysis.cases",
		metric.WithDescription("The number of cases bucketed by analyses"),
		metric.WithUnit("{cases}"))
	if err != nil {
		slog.Warn("Failed to create cases counter, metrics will be disabled", "error", err)
		cases = noop.Int64Counter{}
	}

	buckets, err := meter.Int64Counter("sliceeval.analysis.buckets",
		metric.WithDescription("The number of buckets emitted by analyses"),
		metric.WithUnit("{buckets}"))
	if err != nil {
		slog.Warn("Failed to create buckets counter, metrics will be disabled", "error", err)
		buckets = noop.Int64Counter{}
	}

	emptyBuckets, err := meter.Int64Counter("sliceeval.analysis.buckets.empty",
		metric.WithDescription("The number of emitted buckets holding no cases"),
		metric.WithUnit("{buckets}"))
	if err != nil {
		slog.Warn("Failed to create empty buckets counter, metrics will be disabled", "error", err)
		emptyBuckets = noop.Int64Counter{}
	}

	return &Analysis{
		meter:        meter,
		cases:        cases,
		buckets:      buckets,
		emptyBuckets: emptyBuckets,
	}
}

// SetAttributeEnricher sets the enricher called before each recording.
func (a *Analysis) SetAttributeEnricher(enricher AttributeEnricher) {
	a.attrEnricher = enricher
}

// RecordBuckets records one analysis run over n cases producing the given
// bucket sizes.
func (a *Analysis) RecordBuckets(ctx context.Context, kind, level string, n int, bucketSizes []int, attrs ...attribute.KeyValue) {
	baseAttrs := []attribute.KeyValue{
		attribute.String("kind", kind),
		attribute.String("level", level),
	}
	if a.attrEnricher != nil {
		baseAttrs = a.attrEnricher(ctx, baseAttrs)
	}
	baseAttrs = append(baseAttrs, attrs...)
	opt := metric.WithAttributes(baseAttrs...)

	var empty int64
	for _, size := range bucketSizes {
		if size == 0 {
			empty++
		}
	}
	a.cases.Add(ctx, int64(n), opt)
	a.buckets.Add(ctx, int64(len(bucketSizes)), opt)
	if empty > 0 {
		a.emptyBuckets.Add(ctx, empty, opt)
	}
}
