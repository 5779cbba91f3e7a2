/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"fmt"
	"math/rand"
)

// Default analysis parameters.
const (
	DefaultNumBuckets            = 4
	DefaultCalibrationNumBuckets = 10
	DefaultSampleLimit           = 50
)

// Option configures an analysis at construction.
type Option func(*options) error

type options struct {
	description string
	method      *string
	numBuckets  *int
	setting     any
	hasSetting  bool
	sampleLimit int
}

func newOptions(opts []Option) (*options, error) {
	o := &options{sampleLimit: DefaultSampleLimit}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// unsupported fails if any of the named options were given.
func (o *options) unsupported(kind string, names ...string) error {
	for _, name := range names {
		set := false
		switch name {
		case "method":
			set = o.method != nil
		case "num_buckets":
			set = o.numBuckets != nil
		case "setting":
			set = o.hasSetting
		}
		if set {
			return fmt.Errorf("%w: %s does not take %s", ErrInvalidOption, kind, name)
		}
	}
	return nil
}

// WithDescription sets the human readable description.
func WithDescription(description string) Option {
	return func(o *options) error {
		o.description = description
		return nil
	}
}

// WithMethod sets the bucketing method.
func WithMethod(method string) Option {
	return func(o *options) error {
		o.method = &method
		return nil
	}
}

// WithNumBuckets sets the number of buckets.
func WithNumBuckets(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("%w: num_buckets must be positive, got %d", ErrInvalidOption, n)
		}
		o.numBuckets = &n
		return nil
	}
}

// WithSetting sets the method specific bucketing setting.
func WithSetting(setting any) Option {
	return func(o *options) error {
		o.setting = setting
		o.hasSetting = true
		return nil
	}
}

// WithSampleLimit sets how many example ids are kept per bucket.
func WithSampleLimit(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("%w: sample_limit cannot be negative, got %d", ErrInvalidOption, n)
		}
		o.sampleLimit = n
		return nil
	}
}

// Rand is the random source used to subsample example ids.
type Rand interface {
	Perm(n int) []int
}

type globalRand struct{}

func (globalRand) Perm(n int) []int { return rand.Perm(n) }

// PerformOption configures a single Perform call.
type PerformOption func(*performConfig) error

type performConfig struct {
	alpha float64
	rand  Rand
}

func newPerformConfig(opts []PerformOption) (*performConfig, error) {
	c := &performConfig{rand: globalRand{}}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WithConfidenceAlpha requests confidence intervals at significance level
// alpha. An alpha <= 0 disables them, which is the default.
func WithConfidenceAlpha(alpha float64) PerformOption {
	return func(c *performConfig) error {
		if alpha >= 1 {
			return fmt.Errorf("%w: confidence alpha must be below 1, got %v", ErrInvalidOption, alpha)
		}
		c.alpha = alpha
		return nil
	}
}

// WithRand sets the random source used to subsample example ids.
func WithRand(r Rand) PerformOption {
	return func(c *performConfig) error {
		if r == nil {
			return fmt.Errorf("%w: random source cannot be nil", ErrInvalidOption)
		}
		c.rand = r
		return nil
	}
}

// subsample returns at most limit ids drawn uniformly without replacement.
func subsample(ids []int, limit int, r Rand) []int {
	if len(ids) <= limit {
		return append(make([]int, 0, len(ids)), ids...)
	}
	perm := r.Perm(len(ids))
	out := make([]int, limit)
	for i := range out {
		out[i] = ids[perm[i]]
	}
	return out
}
