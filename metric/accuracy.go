/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metric

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Accuracy is the fraction of examples whose prediction equals the label.
//
// Its statistics table has one column holding 1 for a correct prediction and
// 0 otherwise. When an auxiliary table is supplied its first column is
// averaged into a "confidence" value.
type Accuracy struct {
	name string
}

var _ Evaluator = (*Accuracy)(nil)

// NewAccuracy creates an Accuracy metric reported under name.
func NewAccuracy(name string) *Accuracy {
	return &Accuracy{name: name}
}

// Name implements Metric.
func (a *Accuracy) Name() string { return a.name }

// CalcStats implements StatsCalculator.
func (a *Accuracy) CalcStats(trueLabels, predLabels []string) (Stats, error) {
	if err := checkLabels(trueLabels, predLabels); err != nil {
		return nil, err
	}
	correct := make([]float64, len(trueLabels))
	for i := range trueLabels {
		if trueLabels[i] == predLabels[i] {
			correct[i] = 1
		}
	}
	return NewColumnStats(correct), nil
}

// EvaluateFromStats implements Metric.
func (a *Accuracy) EvaluateFromStats(stats Stats, alpha float64, aux Stats) (Result, error) {
	if err := checkAlpha(alpha); err != nil {
		return Result{}, err
	}
	n := stats.Len()
	if n == 0 {
		return Result{}, fmt.Errorf("%s: %w", a.name, ErrEmptyStats)
	}
	if stats.Width() < 1 {
		return Result{}, fmt.Errorf("%s: %w: no columns", a.name, ErrStatsMismatch)
	}

	correct := stats.Column(0)
	mean, std := stat.MeanStdDev(correct, nil)
	res := NewResult(map[string]Value{ScoreKey: Score{Value: mean}})

	if alpha > 0 && n > 1 {
		res = res.With(ScoreCIKey, tInterval(mean, std, n, alpha))
	}

	if aux != nil {
		if aux.Len() != n || aux.Width() < 1 {
			return Result{}, fmt.Errorf("%s: %w: %d auxiliary rows for %d examples", a.name, ErrStatsMismatch, aux.Len(), n)
		}
		res = res.With(ConfidenceKey, Score{Value: stat.Mean(aux.Column(0), nil)})
	}
	return res, nil
}

// tInterval is the two sided Student-t interval of a sample mean.
func tInterval(mean, std float64, n int, alpha float64) ConfidenceInterval {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - alpha/2)
	half := t * std / math.Sqrt(float64(n))
	return ConfidenceInterval{Low: mean - half, High: mean + half, Alpha: alpha}
}
