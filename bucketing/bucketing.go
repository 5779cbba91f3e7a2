/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package bucketing

import (
	"errors"
	"fmt"
	"sort"

	"chainguard.dev/sliceeval/cases"
)

var (
	// ErrInvalidBucketNumber is returned when a non-positive bucket count is requested.
	ErrInvalidBucketNumber = errors.New("bucket number must be positive")

	// ErrUnknownStrategy is returned when no strategy is registered under a name.
	ErrUnknownStrategy = errors.New("unknown bucketing strategy")

	// ErrInvalidSetting is returned when a strategy setting cannot be parsed.
	ErrInvalidSetting = errors.New("invalid bucket setting")

	// ErrNonNumeric is returned when a numeric strategy meets a non-numeric value.
	ErrNonNumeric = errors.New("feature value is not numeric")
)

// Sample pairs a case with the value of the feature being bucketed.
type Sample struct {
	Case  cases.Case
	Value any
}

// Strategy is a bucketing method bound to its parsed setting.
type Strategy interface {
	// Method returns the registry name of the strategy.
	Method() string
	// Bucket partitions the samples into collections.
	Bucket(samples []Sample, bucketNumber int) ([]cases.Collection, error)
}

// Factory builds a Strategy from a raw, possibly deserialized, setting.
type Factory func(setting any) (Strategy, error)

const (
	// MethodContinuous is the registry name of Continuous.
	MethodContinuous = "continuous"
	// MethodDiscrete is the registry name of Discrete.
	MethodDiscrete = "discrete"
	// MethodFixed is the registry name of Fixed.
	MethodFixed = "fixed"
)

var registry = map[string]Factory{
	MethodContinuous: func(setting any) (Strategy, error) {
		if setting != nil {
			return nil, fmt.Errorf("%w: continuous bucketing takes no setting, got %T", ErrInvalidSetting, setting)
		}
		return strategyFunc{method: MethodContinuous, fn: Continuous}, nil
	},
	MethodDiscrete: func(setting any) (Strategy, error) {
		ds, err := ParseDiscreteSetting(setting)
		if err != nil {
			return nil, err
		}
		return strategyFunc{method: MethodDiscrete, fn: func(samples []Sample, n int) ([]cases.Collection, error) {
			return Discrete(samples, n, ds)
		}}, nil
	},
	MethodFixed: func(setting any) (Strategy, error) {
		fs, err := ParseFixedSetting(setting)
		if err != nil {
			return nil, err
		}
		return strategyFunc{method: MethodFixed, fn: func(samples []Sample, n int) ([]cases.Collection, error) {
			return Fixed(samples, n, fs)
		}}, nil
	},
}

// New resolves a strategy by name and binds it to the given setting.
func New(method string, setting any) (Strategy, error) {
	factory, ok := registry[method]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownStrategy, method, Methods())
	}
	return factory(setting)
}

// Methods returns the registered strategy names in sorted order.
func Methods() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type strategyFunc struct {
	method string
	fn     func([]Sample, int) ([]cases.Collection, error)
}

func (s strategyFunc) Method() string { return s.method }

func (s strategyFunc) Bucket(samples []Sample, bucketNumber int) ([]cases.Collection, error) {
	return s.fn(samples, bucketNumber)
}

func checkBucketNumber(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidBucketNumber, n)
	}
	return nil
}

func numericValue(s Sample) (float64, error) {
	v, ok := cases.Numeric(s.Value)
	if !ok {
		return 0, fmt.Errorf("%w: sample %d has %T %v", ErrNonNumeric, s.Case.SampleID(), s.Value, s.Value)
	}
	return v, nil
}
