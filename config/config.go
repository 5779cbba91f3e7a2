/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config loads declarative analysis configuration files.
//
// A configuration file is YAML (or JSON, which is valid YAML):
//
//	confidence_alpha: 0.1
//	replace_defaults: false
//	metrics:
//	- level: example
//	  cls_name: F1ScoreConfig
//	  name: F1
//	  average: macro
//	analyses:
//	- cls_name: BucketAnalysis
//	  level: example
//	  feature: text_length
//	  method: fixed
//	  setting: [[0, 10], [10, 100]]
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/metric"
	"chainguard.dev/sliceeval/processor"
	"chainguard.dev/sliceeval/schema"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned for configuration files that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// SchemaID identifies the JSON schema of configuration files.
const SchemaID = "https://chainguard.dev/sliceeval/config.schema.json"

// File is a configuration file.
type File struct {
	TaskType        string     `yaml:"task_type,omitempty" json:"task_type,omitempty" jsonschema:"description=Task type of the system output,enum=tabular_classification,enum=text_classification"`
	ConfidenceAlpha *float64   `yaml:"confidence_alpha,omitempty" json:"confidence_alpha,omitempty" jsonschema:"description=Significance level of confidence intervals; 0 disables them,minimum=0,exclusiveMaximum=1"`
	ReplaceDefaults bool       `yaml:"replace_defaults,omitempty" json:"replace_defaults,omitempty" jsonschema:"description=Run only the listed analyses instead of adding them to the defaults"`
	Metrics         []Metric   `yaml:"metrics,omitempty" json:"metrics,omitempty" jsonschema:"description=Metrics added to or replacing those of a level"`
	Analyses        []Analysis `yaml:"analyses,omitempty" json:"analyses,omitempty" jsonschema:"description=Analyses to run"`
}

// Metric configures one metric of a level.
type Metric struct {
	Level         string   `yaml:"level" json:"level" jsonschema:"required,description=Analysis level the metric scores"`
	ClsName       string   `yaml:"cls_name" json:"cls_name" jsonschema:"required,enum=AccuracyConfig,enum=F1ScoreConfig"`
	Name          string   `yaml:"name" json:"name" jsonschema:"required,description=Metric name used in results"`
	Average       string   `yaml:"average,omitempty" json:"average,omitempty" jsonschema:"enum=micro,enum=macro"`
	IgnoreClasses []string `yaml:"ignore_classes,omitempty" json:"ignore_classes,omitempty"`
}

// Analysis configures one analysis. Omitted fields take the analysis
// defaults.
type Analysis struct {
	ClsName     string   `yaml:"cls_name" json:"cls_name" jsonschema:"required,enum=BucketAnalysis,enum=ComboCountAnalysis,enum=CalibrationAnalysis"`
	Level       string   `yaml:"level" json:"level" jsonschema:"required"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Feature     string   `yaml:"feature,omitempty" json:"feature,omitempty" jsonschema:"description=Feature of bucket and calibration analyses"`
	Features    []string `yaml:"features,omitempty" json:"features,omitempty" jsonschema:"description=Features of combo count analyses"`
	Method      string   `yaml:"method,omitempty" json:"method,omitempty" jsonschema:"enum=continuous,enum=discrete,enum=fixed"`
	NumBuckets  *int     `yaml:"num_buckets,omitempty" json:"num_buckets,omitempty" jsonschema:"minimum=1"`
	Setting     any      `yaml:"setting,omitempty" json:"setting,omitempty" jsonschema:"description=Method specific setting such as fixed intervals or labels"`
	SampleLimit *int     `yaml:"sample_limit,omitempty" json:"sample_limit,omitempty" jsonschema:"minimum=0"`
}

// Load decodes a configuration file, rejecting unknown fields.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &f, nil
}

// LoadFile loads the configuration file at path.
func LoadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Load(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// BuildAnalyses constructs the configured analyses.
func (f *File) BuildAnalyses() ([]analysis.Analysis, error) {
	out := make([]analysis.Analysis, 0, len(f.Analyses))
	for i, a := range f.Analyses {
		built, err := analysis.AnalysisFromMap(a.toMap())
		if err != nil {
			return nil, fmt.Errorf("%w: analysis %d: %w", ErrInvalid, i, err)
		}
		out = append(out, built)
	}
	return out, nil
}

// BuildMetrics returns the configured metrics keyed by level.
func (f *File) BuildMetrics() (map[string][]metric.Config, error) {
	out := make(map[string][]metric.Config)
	for i, m := range f.Metrics {
		cfg, err := metric.ConfigFromMap(m.toMap())
		if err != nil {
			return nil, fmt.Errorf("%w: metric %d: %w", ErrInvalid, i, err)
		}
		if _, err := cfg.ToMetric(); err != nil {
			return nil, fmt.Errorf("%w: metric %d: %w", ErrInvalid, i, err)
		}
		out[m.Level] = append(out[m.Level], cfg)
	}
	return out, nil
}

// Options translates the file into processor options.
func (f *File) Options() ([]processor.Option, error) {
	var opts []processor.Option
	if f.ConfidenceAlpha != nil {
		opts = append(opts, processor.WithConfidenceAlpha(*f.ConfidenceAlpha))
	}
	if f.ReplaceDefaults {
		opts = append(opts, processor.WithoutDefaultAnalyses())
	}
	metrics, err := f.BuildMetrics()
	if err != nil {
		return nil, err
	}
	for level, configs := range metrics {
		opts = append(opts, processor.WithMetricConfigs(level, configs...))
	}
	analyses, err := f.BuildAnalyses()
	if err != nil {
		return nil, err
	}
	if len(analyses) > 0 {
		opts = append(opts, processor.WithAnalyses(analyses...))
	}
	return opts, nil
}

// Schema returns the JSON schema of configuration files.
func Schema() *jsonschema.Schema {
	return schema.ReflectType[File](schema.WithID(SchemaID), schema.WithTitle("sliceeval configuration"))
}

func (a Analysis) toMap() map[string]any {
	m := map[string]any{
		"cls_name": a.ClsName,
		"level":    a.Level,
	}
	if a.Description != "" {
		m["description"] = a.Description
	}
	if a.Feature != "" {
		m["feature"] = a.Feature
	}
	if a.Features != nil {
		m["features"] = a.Features
	}
	if a.Method != "" {
		m["method"] = a.Method
	}
	if a.NumBuckets != nil {
		m["num_buckets"] = *a.NumBuckets
	}
	if a.Setting != nil {
		m["setting"] = a.Setting
	}
	if a.SampleLimit != nil {
		m["sample_limit"] = *a.SampleLimit
	}
	return m
}

func (m Metric) toMap() map[string]any {
	out := map[string]any{
		"cls_name": m.ClsName,
		"name":     m.Name,
	}
	if m.Average != "" {
		out["average"] = m.Average
	}
	if m.IgnoreClasses != nil {
		out["ignore_classes"] = m.IgnoreClasses
	}
	return out
}
