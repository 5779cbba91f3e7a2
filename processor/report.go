/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package processor

import (
	"encoding/json"
	"fmt"

	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/metric"
	"github.com/google/uuid"
)

// Report is the outcome of processing one system output.
type Report struct {
	ID       uuid.UUID        `json:"id"`
	Metadata Metadata         `json:"metadata"`
	Levels   []analysis.Level `json:"levels"`
	// Overall maps level and metric names to the metric over every sample.
	Overall  map[string]map[string]metric.Result `json:"overall"`
	Analyses []analysis.Result                   `json:"analyses"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Report) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       uuid.UUID                           `json:"id"`
		Metadata Metadata                            `json:"metadata"`
		Levels   []analysis.Level                    `json:"levels"`
		Overall  map[string]map[string]metric.Result `json:"overall"`
		Analyses []json.RawMessage                   `json:"analyses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	results := make([]analysis.Result, 0, len(raw.Analyses))
	for i, msg := range raw.Analyses {
		res, err := analysis.UnmarshalResult(msg)
		if err != nil {
			return fmt.Errorf("analysis %d: %w", i, err)
		}
		results = append(results, res)
	}
	*r = Report{
		ID:       raw.ID,
		Metadata: raw.Metadata,
		Levels:   raw.Levels,
		Overall:  raw.Overall,
		Analyses: results,
	}
	return nil
}

// BucketResults returns the bucket analysis results of the report.
func (r *Report) BucketResults() []*analysis.BucketAnalysisResult {
	var out []*analysis.BucketAnalysisResult
	for _, res := range r.Analyses {
		if b, ok := res.(*analysis.BucketAnalysisResult); ok {
			out = append(out, b)
		}
	}
	return out
}
