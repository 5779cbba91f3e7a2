/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package processor turns system outputs into analysis reports. A
// Processor declares, per task type, the analysis levels, features,
// metrics and analyses that Process runs by default.
package processor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"chainguard.dev/sliceeval/analysis"
)

// ErrUnknownTask is returned when no processor is registered for a task type.
var ErrUnknownTask = errors.New("unknown task type")

// LevelExample is the name of the per example analysis level.
const LevelExample = "example"

// Metadata describes the system output being processed.
type Metadata struct {
	TaskType       string `json:"task_type"`
	SystemName     string `json:"system_name,omitempty"`
	DatasetName    string `json:"dataset_name,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

// Processor declares the default analysis of one task type.
type Processor interface {
	// TaskType names the task, e.g. "text_classification".
	TaskType() string

	// DefaultLevels returns the analysis levels for the given samples.
	// Optional features are declared only when the first sample has them.
	DefaultLevels(metadata Metadata, samples []map[string]any) []analysis.Level

	// DefaultAnalyses returns the analyses to run over levels.
	DefaultAnalyses(levels []analysis.Level) ([]analysis.Analysis, error)

	// TrueLabel and PredictedLabel extract the labels scored by metrics.
	TrueLabel(sample map[string]any) (string, error)
	PredictedLabel(sample map[string]any) (string, error)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Processor{}
)

// Register makes p available under its task type, replacing any
// processor registered before it.
func Register(p Processor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[p.TaskType()] = p
}

// Get returns the processor registered for taskType.
func Get(taskType string) (Processor, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[taskType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, taskType)
	}
	return p, nil
}

// TaskTypes returns the registered task types, sorted.
func TaskTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

func init() {
	Register(TabularClassification{})
	Register(TextClassification{})
}
