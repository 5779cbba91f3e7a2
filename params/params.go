/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package params

import (
	"fmt"
)

// Extract extracts a required parameter from args with type safety.
// Returns an error if the parameter is missing or cannot be converted to T.
func Extract[T any](args map[string]any, name string) (T, error) {
	var zero T

	value, exists := args[name]
	if !exists {
		return zero, fmt.Errorf("%s parameter is required", name)
	}

	v, err := Convert[T](value)
	if err != nil {
		return zero, fmt.Errorf("%s parameter: %w", name, err)
	}
	return v, nil
}

// ExtractOptional extracts an optional parameter with a default value.
// Returns the default if the parameter doesn't exist or is null, or an error
// if type conversion fails.
func ExtractOptional[T any](args map[string]any, name string, defaultValue T) (T, error) {
	value, exists := args[name]
	if !exists || value == nil {
		return defaultValue, nil
	}

	v, err := Convert[T](value)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%s parameter: %w", name, err)
	}
	return v, nil
}

// ExtractSlice extracts a required list parameter, converting each element to T.
func ExtractSlice[T any](args map[string]any, name string) ([]T, error) {
	value, exists := args[name]
	if !exists {
		return nil, fmt.Errorf("%s parameter is required", name)
	}
	if value == nil {
		return nil, nil
	}
	return ConvertSlice[T](value)
}

// ExtractMap extracts a required object parameter.
func ExtractMap(args map[string]any, name string) (map[string]any, error) {
	value, exists := args[name]
	if !exists {
		return nil, fmt.Errorf("%s parameter is required", name)
	}
	if value == nil {
		return map[string]any{}, nil
	}
	m, ok := AsMap(value)
	if !ok {
		return nil, fmt.Errorf("%s parameter must be an object, got %T", name, value)
	}
	return m, nil
}

// Convert converts a decoded value to T, applying the numeric conversions
// JSON (float64) and YAML (int) decoders require.
func Convert[T any](value any) (T, error) {
	if v, ok := value.(T); ok {
		return v, nil
	}
	if v, ok := convertNumeric[T](value); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("must be of type %T, got %T", zero, value)
}

// ConvertSlice converts a decoded list ([]any or []T) into []T.
func ConvertSlice[T any](value any) ([]T, error) {
	if v, ok := value.([]T); ok {
		return v, nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("must be a list, got %T", value)
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		v, err := Convert[T](item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// AsMap normalizes the object representations produced by encoding/json and
// gopkg.in/yaml.v3 into map[string]any.
func AsMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out, true
	}
	return nil, false
}

// convertNumeric handles common numeric conversions between float64 (JSON),
// int (YAML) and the sized integer types.
func convertNumeric[T any](value any) (T, bool) {
	var zero T
	f, ok := toFloat(value)
	if !ok {
		return zero, false
	}
	switch any(zero).(type) {
	case int:
		if f != float64(int(f)) {
			return zero, false
		}
		return any(int(f)).(T), true
	case int32:
		if f != float64(int32(f)) {
			return zero, false
		}
		return any(int32(f)).(T), true
	case int64:
		if f != float64(int64(f)) {
			return zero, false
		}
		return any(int64(f)).(T), true
	case float64:
		return any(f).(T), true
	}
	return zero, false
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}
