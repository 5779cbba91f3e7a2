/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metric

import (
	"encoding/json"
	"fmt"

	"chainguard.dev/sliceeval/params"
)

// Config is the serializable description of a metric.
type Config interface {
	// Kind returns the cls_name discriminator.
	Kind() string
	// MetricName returns the name results are reported under.
	MetricName() string
	// ToMetric builds the configured metric.
	ToMetric() (Evaluator, error)

	isConfig()
}

// AccuracyConfig configures Accuracy.
type AccuracyConfig struct {
	Name           string `json:"name" yaml:"name" jsonschema:"required"`
	SourceLanguage string `json:"source_language" yaml:"source_language,omitempty"`
	TargetLanguage string `json:"target_language" yaml:"target_language,omitempty"`
}

// Kind implements Config.
func (AccuracyConfig) Kind() string { return "AccuracyConfig" }

// MetricName implements Config.
func (c AccuracyConfig) MetricName() string { return c.Name }

// ToMetric implements Config.
func (c AccuracyConfig) ToMetric() (Evaluator, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: accuracy config has no name", ErrInvalidConfig)
	}
	return NewAccuracy(c.Name), nil
}

func (AccuracyConfig) isConfig() {}

// MarshalJSON implements json.Marshaler.
func (c AccuracyConfig) MarshalJSON() ([]byte, error) {
	type plain AccuracyConfig
	return json.Marshal(struct {
		ClsName string `json:"cls_name"`
		plain
	}{c.Kind(), plain(c)})
}

// F1ScoreConfig configures F1Score.
type F1ScoreConfig struct {
	Name           string   `json:"name" yaml:"name" jsonschema:"required"`
	SourceLanguage string   `json:"source_language" yaml:"source_language,omitempty"`
	TargetLanguage string   `json:"target_language" yaml:"target_language,omitempty"`
	Average        string   `json:"average" yaml:"average,omitempty" jsonschema:"enum=micro,enum=macro"`
	IgnoreClasses  []string `json:"ignore_classes" yaml:"ignore_classes,omitempty"`
}

// Kind implements Config.
func (F1ScoreConfig) Kind() string { return "F1ScoreConfig" }

// MetricName implements Config.
func (c F1ScoreConfig) MetricName() string { return c.Name }

// ToMetric implements Config.
func (c F1ScoreConfig) ToMetric() (Evaluator, error) {
	if c.Name == "" {
		return nil, fmt.Errorf("%w: f1 config has no name", ErrInvalidConfig)
	}
	average := c.Average
	if average == "" {
		average = AverageMicro
	}
	return NewF1Score(c.Name, WithAverage(average), WithIgnoreClasses(c.IgnoreClasses...))
}

func (F1ScoreConfig) isConfig() {}

// MarshalJSON implements json.Marshaler.
func (c F1ScoreConfig) MarshalJSON() ([]byte, error) {
	type plain F1ScoreConfig
	p := plain(c)
	if p.IgnoreClasses == nil {
		p.IgnoreClasses = []string{}
	}
	if p.Average == "" {
		p.Average = AverageMicro
	}
	return json.Marshal(struct {
		ClsName string `json:"cls_name"`
		plain
	}{c.Kind(), p})
}

// UnmarshalConfig decodes a Config, dispatching on cls_name.
func UnmarshalConfig(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return ConfigFromMap(m)
}

// ConfigFromMap rebuilds a Config from its decoded form.
func ConfigFromMap(m map[string]any) (Config, error) {
	kind, err := params.Extract[string](m, "cls_name")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	name, err := params.Extract[string](m, "name")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	source, err := params.ExtractOptional(m, "source_language", "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	target, err := params.ExtractOptional(m, "target_language", "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch kind {
	case AccuracyConfig{}.Kind():
		return AccuracyConfig{Name: name, SourceLanguage: source, TargetLanguage: target}, nil

	case F1ScoreConfig{}.Kind():
		average, err := params.ExtractOptional(m, "average", AverageMicro)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		var ignore []string
		if _, ok := m["ignore_classes"]; ok {
			if ignore, err = params.ExtractSlice[string](m, "ignore_classes"); err != nil {
				return nil, fmt.Errorf("%w: ignore_classes %w", ErrInvalidConfig, err)
			}
		}
		return F1ScoreConfig{
			Name:           name,
			SourceLanguage: source,
			TargetLanguage: target,
			Average:        average,
			IgnoreClasses:  ignore,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
