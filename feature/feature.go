/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package feature describes the features available at an analysis level.
package feature

import (
	"encoding/json"
	"errors"
	"fmt"

	"chainguard.dev/sliceeval/params"
)

// ErrUnknownKind is returned when a serialized feature has an unrecognized cls_name.
var ErrUnknownKind = errors.New("unknown feature kind")

// DataType names the type of a feature's values.
type DataType string

const (
	String DataType = "string"
	Float  DataType = "float"
	Int    DataType = "int"
)

// IsNumeric reports whether values of the type can be bucketed continuously.
func (d DataType) IsNumeric() bool {
	return d == Float || d == Int
}

// Func computes a feature value from one raw sample.
type Func func(sample map[string]any) (any, error)

// Type describes one feature.
type Type interface {
	// Kind returns the cls_name discriminator.
	Kind() string
	// Describe returns the human readable description.
	Describe() string

	isType()
}

// Value is a scalar feature.
type Value struct {
	DType       DataType
	Description string
	// Func derives the value from a sample. Nil means the sample carries the
	// value under the feature's own name. It is not serialized.
	Func Func
}

// Kind implements Type.
func (Value) Kind() string { return "Value" }

// Describe implements Type.
func (v Value) Describe() string { return v.Description }

func (Value) isType() {}

// Compute returns the feature named name for sample.
func (v Value) Compute(name string, sample map[string]any) (any, error) {
	if v.Func != nil {
		return v.Func(sample)
	}
	value, ok := sample[name]
	if !ok {
		return nil, fmt.Errorf("sample has no field %q", name)
	}
	return value, nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ClsName     string   `json:"cls_name"`
		DType       DataType `json:"dtype"`
		Description string   `json:"description,omitempty"`
	}{v.Kind(), v.DType, v.Description})
}

// Sequence is a feature whose value is a list of Feature values.
type Sequence struct {
	Feature     Type
	Description string
}

// Kind implements Type.
func (Sequence) Kind() string { return "Sequence" }

// Describe implements Type.
func (s Sequence) Describe() string {
	if s.Description == "" && s.Feature != nil {
		return s.Feature.Describe()
	}
	return s.Description
}

func (Sequence) isType() {}

// MarshalJSON implements json.Marshaler.
func (s Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ClsName     string `json:"cls_name"`
		Feature     Type   `json:"feature"`
		Description string `json:"description,omitempty"`
	}{s.Kind(), s.Feature, s.Description})
}

// DataTypeOf returns the data type of a scalar feature, looking through
// sequences. It returns false for sequences of nothing.
func DataTypeOf(t Type) (DataType, bool) {
	switch t := t.(type) {
	case Value:
		return t.DType, true
	case Sequence:
		return DataTypeOf(t.Feature)
	}
	return "", false
}

// Unmarshal decodes a Type, dispatching on cls_name.
func Unmarshal(data []byte) (Type, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return FromMap(m)
}

// FromMap rebuilds a Type from its decoded form.
func FromMap(m map[string]any) (Type, error) {
	kind, err := params.Extract[string](m, "cls_name")
	if err != nil {
		return nil, err
	}
	description, err := params.ExtractOptional(m, "description", "")
	if err != nil {
		return nil, err
	}

	switch kind {
	case Value{}.Kind():
		dtype, err := params.ExtractOptional(m, "dtype", string(String))
		if err != nil {
			return nil, err
		}
		return Value{DType: DataType(dtype), Description: description}, nil

	case Sequence{}.Kind():
		inner, err := params.ExtractMap(m, "feature")
		if err != nil {
			return nil, err
		}
		f, err := FromMap(inner)
		if err != nil {
			return nil, fmt.Errorf("sequence feature: %w", err)
		}
		return Sequence{Feature: f, Description: description}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}
