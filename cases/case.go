/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"encoding/json"
	"maps"
)

// Case is a single analysis unit with its computed feature values.
type Case struct {
	sampleID int
	features map[string]any
}

// New creates a Case, copying the provided features.
func New(sampleID int, features map[string]any) Case {
	return Case{
		sampleID: sampleID,
		features: maps.Clone(features),
	}
}

// SampleID returns the stable identifier of the case in the original example list.
func (c Case) SampleID() int {
	return c.sampleID
}

// Feature returns the value of the named feature and whether it is present.
func (c Case) Feature(name string) (any, bool) {
	v, ok := c.features[name]
	return v, ok
}

// HasFeature reports whether the case carries the named feature.
func (c Case) HasFeature(name string) bool {
	_, ok := c.features[name]
	return ok
}

// Features returns a copy of all feature values.
func (c Case) Features() map[string]any {
	return maps.Clone(c.features)
}

type caseJSON struct {
	SampleID int            `json:"sample_id"`
	Features map[string]any `json:"features"`
}

// MarshalJSON implements json.Marshaler.
func (c Case) MarshalJSON() ([]byte, error) {
	return json.Marshal(caseJSON{SampleID: c.sampleID, Features: c.features})
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Case) UnmarshalJSON(data []byte) error {
	var raw caseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = New(raw.SampleID, raw.Features)
	return nil
}
