/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metric

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"chainguard.dev/sliceeval/params"
)

// Well known value names.
const (
	ScoreKey      = "score"
	ScoreCIKey    = "score_ci"
	ConfidenceKey = "confidence"
)

// Value is a typed entry of a Result.
type Value interface {
	// Kind returns the serialization discriminator of the value.
	Kind() string

	isValue()
}

// Score is a point estimate.
type Score struct {
	Value float64
}

// Kind implements Value.
func (Score) Kind() string { return "Score" }

func (Score) isValue() {}

// ConfidenceInterval is an interval estimate at significance level Alpha.
type ConfidenceInterval struct {
	Low   float64
	High  float64
	Alpha float64
}

// Kind implements Value.
func (ConfidenceInterval) Kind() string { return "ConfidenceInterval" }

func (ConfidenceInterval) isValue() {}

// Result is the outcome of evaluating a metric. The zero value is the empty
// result produced for buckets without samples.
type Result struct {
	values map[string]Value
}

// NewResult builds a Result from the given values.
func NewResult(values map[string]Value) Result {
	return Result{values: maps.Clone(values)}
}

// IsEmpty reports whether the result holds no values.
func (r Result) IsEmpty() bool {
	return len(r.values) == 0
}

// Names returns the value names in sorted order.
func (r Result) Names() []string {
	return slices.Sorted(maps.Keys(r.values))
}

// With returns a copy of r with name set to v.
func (r Result) With(name string, v Value) Result {
	values := maps.Clone(r.values)
	if values == nil {
		values = make(map[string]Value, 1)
	}
	values[name] = v
	return Result{values: values}
}

// GetValue returns the named value, failing if it is absent or of another kind.
func GetValue[T Value](r Result, name string) (T, error) {
	v, ok := r.values[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrValueNotFound, name)
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q is a %s, not a %s", ErrValueNotFound, name, v.Kind(), zero.Kind())
	}
	return t, nil
}

// GetValueOrNone is GetValue without the error.
func GetValueOrNone[T Value](r Result, name string) (T, bool) {
	t, err := GetValue[T](r, name)
	return t, err == nil
}

type scoreJSON struct {
	ClsName string  `json:"cls_name"`
	Value   float64 `json:"value"`
}

type intervalJSON struct {
	ClsName string  `json:"cls_name"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Alpha   float64 `json:"alpha"`
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	values := make(map[string]any, len(r.values))
	for name, v := range r.values {
		switch v := v.(type) {
		case Score:
			values[name] = scoreJSON{ClsName: v.Kind(), Value: v.Value}
		case ConfidenceInterval:
			values[name] = intervalJSON{ClsName: v.Kind(), Low: v.Low, High: v.High, Alpha: v.Alpha}
		default:
			return nil, fmt.Errorf("unsupported value type %T", v)
		}
	}
	return json.Marshal(map[string]any{"values": values})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	res, err := ResultFromMap(raw)
	if err != nil {
		return err
	}
	*r = res
	return nil
}

// ResultFromMap rebuilds a Result from its decoded form.
func ResultFromMap(m map[string]any) (Result, error) {
	rawValues, err := params.ExtractMap(m, "values")
	if err != nil {
		return Result{}, err
	}
	values := make(map[string]Value, len(rawValues))
	for name, raw := range rawValues {
		vm, ok := params.AsMap(raw)
		if !ok {
			return Result{}, fmt.Errorf("value %q must be an object, got %T", name, raw)
		}
		v, err := valueFromMap(vm)
		if err != nil {
			return Result{}, fmt.Errorf("value %q: %w", name, err)
		}
		values[name] = v
	}
	return Result{values: values}, nil
}

func valueFromMap(m map[string]any) (Value, error) {
	kind, err := params.Extract[string](m, "cls_name")
	if err != nil {
		return nil, err
	}
	switch kind {
	case Score{}.Kind():
		v, err := params.Extract[float64](m, "value")
		if err != nil {
			return nil, err
		}
		return Score{Value: v}, nil
	case ConfidenceInterval{}.Kind():
		var ci ConfidenceInterval
		if ci.Low, err = params.Extract[float64](m, "low"); err != nil {
			return nil, err
		}
		if ci.High, err = params.Extract[float64](m, "high"); err != nil {
			return nil, err
		}
		if ci.Alpha, err = params.Extract[float64](m, "alpha"); err != nil {
			return nil, err
		}
		return ci, nil
	}
	return nil, fmt.Errorf("%w: value kind %q", ErrUnknownKind, kind)
}
