/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package processor

import (
	"fmt"
	"strings"

	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/bucketing"
	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/feature"
	"chainguard.dev/sliceeval/metric"
)

const (
	TaskTabularClassification = "tabular_classification"
	TaskTextClassification    = "text_classification"

	// ConfidenceFeature is the optional per sample confidence of the prediction.
	ConfidenceFeature = "confidence"

	// ColumnsField holds the input columns of tabular samples.
	ColumnsField = "columns"

	labelBuckets = 15
)

// TabularClassification processes tabular classification outputs. Samples
// carry true_label and predicted_label, an optional confidence and an
// optional "columns" mapping whose numeric entries become float features.
type TabularClassification struct{}

var _ Processor = TabularClassification{}

// TaskType implements Processor.
func (TabularClassification) TaskType() string { return TaskTabularClassification }

// DefaultLevels implements Processor.
func (TabularClassification) DefaultLevels(md Metadata, samples []map[string]any) []analysis.Level {
	features := labelFeatures()
	if len(samples) > 0 {
		if columns, ok := samples[0][ColumnsField].(map[string]any); ok {
			for name, v := range columns {
				if _, numeric := cases.Numeric(v); !numeric {
					continue
				}
				if _, exists := features[name]; exists {
					continue
				}
				features[name] = feature.Value{
					DType:       feature.Float,
					Description: fmt.Sprintf("input column %s", name),
					Func:        columnFunc(name),
				}
			}
		}
	}
	addConfidence(features, samples)
	return []analysis.Level{{
		Name:     LevelExample,
		Features: features,
		MetricConfigs: map[string]metric.Config{
			analysis.AccuracyMetric: metric.AccuracyConfig{
				Name:           analysis.AccuracyMetric,
				SourceLanguage: md.SourceLanguage,
				TargetLanguage: md.TargetLanguage,
			},
		},
	}}
}

// DefaultAnalyses implements Processor.
func (TabularClassification) DefaultAnalyses(levels []analysis.Level) ([]analysis.Analysis, error) {
	return classificationAnalyses(levels)
}

// TrueLabel implements Processor.
func (TabularClassification) TrueLabel(sample map[string]any) (string, error) {
	return label(sample, "true_label")
}

// PredictedLabel implements Processor.
func (TabularClassification) PredictedLabel(sample map[string]any) (string, error) {
	return label(sample, "predicted_label")
}

// TextClassification processes text classification outputs. Samples carry
// text, true_label, predicted_label and an optional confidence.
type TextClassification struct{}

var _ Processor = TextClassification{}

// TaskType implements Processor.
func (TextClassification) TaskType() string { return TaskTextClassification }

// DefaultLevels implements Processor.
func (TextClassification) DefaultLevels(md Metadata, samples []map[string]any) []analysis.Level {
	features := labelFeatures()
	features["text"] = feature.Value{DType: feature.String, Description: "the text of the example"}
	features["text_length"] = feature.Value{
		DType:       feature.Int,
		Description: "text length in tokens",
		Func: func(sample map[string]any) (any, error) {
			text, ok := sample["text"].(string)
			if !ok {
				return nil, fmt.Errorf("sample has no text, got %T", sample["text"])
			}
			return len(strings.Fields(text)), nil
		},
	}
	addConfidence(features, samples)
	return []analysis.Level{{
		Name:     LevelExample,
		Features: features,
		MetricConfigs: map[string]metric.Config{
			analysis.AccuracyMetric: metric.AccuracyConfig{
				Name:           analysis.AccuracyMetric,
				SourceLanguage: md.SourceLanguage,
				TargetLanguage: md.TargetLanguage,
			},
			"F1": metric.F1ScoreConfig{
				Name:           "F1",
				SourceLanguage: md.SourceLanguage,
				TargetLanguage: md.TargetLanguage,
				Average:        metric.AverageMacro,
				IgnoreClasses:  []string{},
			},
		},
	}}
}

// DefaultAnalyses implements Processor.
func (TextClassification) DefaultAnalyses(levels []analysis.Level) ([]analysis.Analysis, error) {
	return classificationAnalyses(levels)
}

// TrueLabel implements Processor.
func (TextClassification) TrueLabel(sample map[string]any) (string, error) {
	return label(sample, "true_label")
}

// PredictedLabel implements Processor.
func (TextClassification) PredictedLabel(sample map[string]any) (string, error) {
	return label(sample, "predicted_label")
}

func labelFeatures() map[string]feature.Type {
	return map[string]feature.Type{
		"true_label":      feature.Value{DType: feature.String, Description: "the true label of the input"},
		"predicted_label": feature.Value{DType: feature.String, Description: "the predicted label"},
	}
}

func addConfidence(features map[string]feature.Type, samples []map[string]any) {
	if len(samples) == 0 {
		return
	}
	if _, ok := samples[0][ConfidenceFeature]; ok {
		features[ConfidenceFeature] = feature.Value{
			DType:       feature.Float,
			Description: "the confidence of the prediction",
		}
	}
}

func columnFunc(name string) feature.Func {
	return func(sample map[string]any) (any, error) {
		columns, ok := sample[ColumnsField].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("sample has no %s", ColumnsField)
		}
		v, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("sample has no column %q", name)
		}
		return v, nil
	}
}

func label(sample map[string]any, field string) (string, error) {
	v, ok := sample[field]
	if !ok || v == nil {
		return "", fmt.Errorf("sample has no %s", field)
	}
	return cases.FormatValue(v), nil
}

// classificationAnalyses buckets the true label, counts the confusion
// matrix, buckets every numeric feature and checks calibration when
// confidences are present.
func classificationAnalyses(levels []analysis.Level) ([]analysis.Analysis, error) {
	var out []analysis.Analysis
	for _, level := range levels {
		features := level.Features

		a, err := analysis.NewBucketAnalysis(level.Name, "true_label",
			analysis.WithDescription(features["true_label"].Describe()),
			analysis.WithMethod(bucketing.MethodDiscrete),
			analysis.WithNumBuckets(labelBuckets))
		if err != nil {
			return nil, err
		}
		out = append(out, a)

		combo, err := analysis.NewComboCountAnalysis(level.Name, []string{"true_label", "predicted_label"},
			analysis.WithDescription("confusion matrix"))
		if err != nil {
			return nil, err
		}
		out = append(out, combo)

		for _, name := range level.NumericFeatures() {
			if name == ConfidenceFeature {
				continue
			}
			a, err := analysis.NewBucketAnalysis(level.Name, name,
				analysis.WithDescription(features[name].Describe()),
				analysis.WithMethod(bucketing.MethodContinuous))
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}

		if _, ok := features[ConfidenceFeature]; ok {
			cal, err := analysis.NewCalibrationAnalysis(level.Name, ConfidenceFeature,
				analysis.WithDescription("calibration of the prediction confidence"))
			if err != nil {
				return nil, err
			}
			out = append(out, cal)
		}
	}
	return out, nil
}
