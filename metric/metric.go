/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metric

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrValueNotFound is returned when a Result lacks a requested value.
	ErrValueNotFound = errors.New("metric value not found")

	// ErrUnknownKind is returned when a serialized config or value has an
	// unrecognized cls_name.
	ErrUnknownKind = errors.New("unknown metric kind")

	// ErrInvalidConfig is returned for malformed metric configurations.
	ErrInvalidConfig = errors.New("invalid metric config")

	// ErrEmptyStats is returned when a metric is evaluated over no examples.
	ErrEmptyStats = errors.New("no statistics to evaluate")

	// ErrStatsMismatch is returned when two statistics tables that must be
	// row-aligned are not.
	ErrStatsMismatch = errors.New("statistics shape mismatch")

	// ErrInvalidAlpha is returned for significance levels outside (0, 1).
	ErrInvalidAlpha = errors.New("confidence alpha must be in (0, 1)")
)

// Metric evaluates a score from sufficient statistics.
type Metric interface {
	// Name is the key the metric's results are reported under.
	Name() string

	// EvaluateFromStats computes a Result over every row of stats.
	// An alpha <= 0 disables confidence intervals. aux is an optional
	// row-aligned table used by metrics that report auxiliary values; metrics
	// that do not use it ignore it.
	EvaluateFromStats(stats Stats, alpha float64, aux Stats) (Result, error)
}

// StatsCalculator computes per-example statistics from labels.
type StatsCalculator interface {
	CalcStats(trueLabels, predLabels []string) (Stats, error)
}

// Evaluator is a Metric that can also compute its own statistics.
type Evaluator interface {
	Metric
	StatsCalculator
}

// Rand is the random source used for resampling.
type Rand interface {
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Evaluate computes statistics from labels and evaluates them in one step.
func Evaluate(e Evaluator, trueLabels, predLabels []string, alpha float64) (Result, error) {
	stats, err := e.CalcStats(trueLabels, predLabels)
	if err != nil {
		return Result{}, err
	}
	return e.EvaluateFromStats(stats, alpha, nil)
}

func checkAlpha(alpha float64) error {
	if alpha >= 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidAlpha, alpha)
	}
	return nil
}

func checkLabels(trueLabels, predLabels []string) error {
	if len(trueLabels) != len(predLabels) {
		return fmt.Errorf("%w: %d true labels, %d predicted labels", ErrStatsMismatch, len(trueLabels), len(predLabels))
	}
	return nil
}
