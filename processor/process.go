/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package processor

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand"

	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/feature"
	"chainguard.dev/sliceeval/metric"
	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNoSamples is returned when Process is given no samples.
	ErrNoSamples = errors.New("no samples")

	// ErrUnknownLevel is returned for analyses or metrics naming a level the
	// processor does not declare.
	ErrUnknownLevel = errors.New("unknown analysis level")
)

// levelData is everything the analyses of one level run over.
type levelData struct {
	cases   []cases.Case
	metrics map[string]metric.Metric
	stats   map[string]metric.Stats
	overall map[string]metric.Result
}

// Process computes the features of every sample, scores the whole output
// with each level's metrics and runs every analysis.
func Process(ctx context.Context, p Processor, md Metadata, samples []map[string]any, opts ...Option) (*Report, error) {
	o, err := newOptions(opts)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	md.TaskType = p.TaskType()
	log := clog.FromContext(ctx).With("task", md.TaskType)

	levels := p.DefaultLevels(md, samples)
	known := make(map[string]int, len(levels))
	for i, level := range levels {
		known[level.Name] = i
	}
	for name, configs := range o.metricConfigs {
		i, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("%w: metrics for %q", ErrUnknownLevel, name)
		}
		merged := maps.Clone(levels[i].MetricConfigs)
		if merged == nil {
			merged = make(map[string]metric.Config, len(configs))
		}
		for _, c := range configs {
			merged[c.MetricName()] = c
		}
		levels[i].MetricConfigs = merged
	}

	var analyses []analysis.Analysis
	if !o.noDefaults {
		if analyses, err = p.DefaultAnalyses(levels); err != nil {
			return nil, fmt.Errorf("default analyses: %w", err)
		}
	}
	analyses = append(analyses, o.analyses...)
	for _, a := range analyses {
		if _, ok := known[a.Level()]; !ok {
			return nil, fmt.Errorf("%w: %s on %q", ErrUnknownLevel, a.Kind(), a.Level())
		}
	}

	log.With("samples", len(samples), "levels", len(levels), "analyses", len(analyses)).Info("Processing system output")

	byLevel := make(map[string]*levelData, len(levels))
	report := &Report{
		ID:       uuid.New(),
		Metadata: md,
		Levels:   levels,
		Overall:  make(map[string]map[string]metric.Result, len(levels)),
	}
	for _, level := range levels {
		data, err := buildLevel(p, level, samples, o.alpha)
		if err != nil {
			return nil, fmt.Errorf("level %s: %w", level.Name, err)
		}
		byLevel[level.Name] = data
		report.Overall[level.Name] = data.overall
	}

	results := make([]analysis.Result, len(analyses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for i, a := range analyses {
		data := byLevel[a.Level()]
		g.Go(func() error {
			res, err := a.Perform(gctx, data.cases, data.metrics, data.stats,
				analysis.WithConfidenceAlpha(o.alpha),
				analysis.WithRand(rand.New(rand.NewSource(o.seed+int64(i)))))
			if err != nil {
				return fmt.Errorf("analysis %d (%s on %s): %w", i, a.Kind(), a.Level(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Analyses = results

	log.With("id", report.ID.String()).Info("Processed system output")
	return report, nil
}

// buildLevel turns samples into cases and computes every metric's
// statistics and overall result.
func buildLevel(p Processor, level analysis.Level, samples []map[string]any, alpha float64) (*levelData, error) {
	names := level.FeatureNames()
	cs := make([]cases.Case, len(samples))
	trueLabels := make([]string, len(samples))
	predLabels := make([]string, len(samples))
	for i, sample := range samples {
		values := make(map[string]any, len(names))
		for _, name := range names {
			v, err := computeFeature(level.Features[name], name, sample)
			if err != nil {
				return nil, fmt.Errorf("sample %d feature %s: %w", i, name, err)
			}
			values[name] = v
		}
		cs[i] = cases.New(i, values)

		var err error
		if trueLabels[i], err = p.TrueLabel(sample); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		if predLabels[i], err = p.PredictedLabel(sample); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}

	var aux metric.Stats
	if _, ok := level.Features[ConfidenceFeature]; ok {
		confidences := make([]float64, len(cs))
		for i, c := range cs {
			raw, _ := c.Feature(ConfidenceFeature)
			v, ok := cases.Numeric(raw)
			if !ok {
				return nil, fmt.Errorf("sample %d: %s must be numeric, got %v", i, ConfidenceFeature, raw)
			}
			confidences[i] = v
		}
		aux = metric.NewColumnStats(confidences)
	}

	evaluators, err := level.Metrics()
	if err != nil {
		return nil, err
	}
	data := &levelData{
		cases:   cs,
		metrics: make(map[string]metric.Metric, len(evaluators)),
		stats:   make(map[string]metric.Stats, len(evaluators)),
		overall: make(map[string]metric.Result, len(evaluators)),
	}
	for name, e := range evaluators {
		stats, err := e.CalcStats(trueLabels, predLabels)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		overall, err := e.EvaluateFromStats(stats, alpha, aux)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", name, err)
		}
		data.metrics[name] = e
		data.stats[name] = stats
		data.overall[name] = overall
	}
	return data, nil
}

func computeFeature(t feature.Type, name string, sample map[string]any) (any, error) {
	switch t := t.(type) {
	case feature.Value:
		return t.Compute(name, sample)
	case feature.Sequence:
		v, ok := sample[name]
		if !ok {
			return nil, fmt.Errorf("sample has no field %q", name)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported feature type %s", t.Kind())
}
