/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package processor

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"

	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/metric"
)

// ErrInvalidOption is returned for option values Process cannot use.
var ErrInvalidOption = errors.New("invalid option")

// DefaultConfidenceAlpha is the significance level of confidence intervals.
const DefaultConfidenceAlpha = 0.05

// Option configures Process.
type Option func(*options) error

type options struct {
	alpha         float64
	seed          int64
	analyses      []analysis.Analysis
	noDefaults    bool
	metricConfigs map[string][]metric.Config
	concurrency   int
}

func newOptions(opts []Option) (*options, error) {
	o := &options{
		alpha:         DefaultConfidenceAlpha,
		seed:          rand.Int63(),
		metricConfigs: map[string][]metric.Config{},
		concurrency:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithConfidenceAlpha sets the significance level of confidence intervals.
// Zero disables them.
func WithConfidenceAlpha(alpha float64) Option {
	return func(o *options) error {
		if alpha < 0 || alpha >= 1 {
			return fmt.Errorf("%w: confidence alpha must be in [0, 1), got %v", ErrInvalidOption, alpha)
		}
		o.alpha = alpha
		return nil
	}
}

// WithSeed seeds the random sources used to subsample bucket members.
// Analysis i draws from a source seeded with seed+i.
func WithSeed(seed int64) Option {
	return func(o *options) error {
		o.seed = seed
		return nil
	}
}

// WithAnalyses adds analyses to run after the processor's defaults.
func WithAnalyses(analyses ...analysis.Analysis) Option {
	return func(o *options) error {
		for i, a := range analyses {
			if a == nil {
				return fmt.Errorf("%w: analysis %d is nil", ErrInvalidOption, i)
			}
		}
		o.analyses = append(o.analyses, analyses...)
		return nil
	}
}

// WithoutDefaultAnalyses runs only the analyses given by WithAnalyses.
func WithoutDefaultAnalyses() Option {
	return func(o *options) error {
		o.noDefaults = true
		return nil
	}
}

// WithMetricConfigs adds or replaces metrics of the named level.
func WithMetricConfigs(level string, configs ...metric.Config) Option {
	return func(o *options) error {
		o.metricConfigs[level] = append(o.metricConfigs[level], configs...)
		return nil
	}
}

// WithConcurrency bounds how many analyses run at once.
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidOption, n)
		}
		o.concurrency = n
		return nil
	}
}
