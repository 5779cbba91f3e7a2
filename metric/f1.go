/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metric

import (
	"fmt"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// Averaging modes for F1Score.
const (
	AverageMicro = "micro"
	AverageMacro = "macro"
)

// DefaultBootstrapSamples is the number of resamples used for F1 intervals.
const DefaultBootstrapSamples = 1000

// F1Score is the harmonic mean of precision and recall over class labels.
//
// Its statistics table has three columns per class, in sorted class order:
// true positives, true count and predicted count.
type F1Score struct {
	name          string
	average       string
	ignoreClasses []string
	resamples     int
	rand          Rand
}

var _ Evaluator = (*F1Score)(nil)

// F1Option configures an F1Score.
type F1Option func(*F1Score) error

// WithAverage selects micro or macro averaging.
func WithAverage(average string) F1Option {
	return func(f *F1Score) error {
		if average != AverageMicro && average != AverageMacro {
			return fmt.Errorf("%w: average must be %q or %q, got %q", ErrInvalidConfig, AverageMicro, AverageMacro, average)
		}
		f.average = average
		return nil
	}
}

// WithIgnoreClasses excludes the given labels from the class set.
func WithIgnoreClasses(classes ...string) F1Option {
	return func(f *F1Score) error {
		f.ignoreClasses = slices.Clone(classes)
		return nil
	}
}

// WithBootstrapSamples sets the number of resamples used for intervals.
func WithBootstrapSamples(n int) F1Option {
	return func(f *F1Score) error {
		if n <= 0 {
			return fmt.Errorf("%w: bootstrap samples must be positive, got %d", ErrInvalidConfig, n)
		}
		f.resamples = n
		return nil
	}
}

// WithRand sets the random source used for resampling.
func WithRand(r Rand) F1Option {
	return func(f *F1Score) error {
		if r == nil {
			return fmt.Errorf("%w: random source cannot be nil", ErrInvalidConfig)
		}
		f.rand = r
		return nil
	}
}

// NewF1Score creates an F1Score reported under name. It uses micro averaging
// unless configured otherwise.
func NewF1Score(name string, opts ...F1Option) (*F1Score, error) {
	f := &F1Score{
		name:      name,
		average:   AverageMicro,
		resamples: DefaultBootstrapSamples,
		rand:      globalRand{},
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Name implements Metric.
func (f *F1Score) Name() string { return f.name }

// Classes returns the sorted class set CalcStats would use for the labels.
func (f *F1Score) Classes(trueLabels, predLabels []string) []string {
	seen := make(map[string]struct{})
	for _, l := range slices.Concat(trueLabels, predLabels) {
		if slices.Contains(f.ignoreClasses, l) {
			continue
		}
		seen[l] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	slices.Sort(classes)
	return classes
}

// CalcStats implements StatsCalculator.
func (f *F1Score) CalcStats(trueLabels, predLabels []string) (Stats, error) {
	if err := checkLabels(trueLabels, predLabels); err != nil {
		return nil, err
	}
	classes := f.Classes(trueLabels, predLabels)
	rows := make([][]float64, len(trueLabels))
	for i := range trueLabels {
		row := make([]float64, 3*len(classes))
		for c, class := range classes {
			isTrue, isPred := trueLabels[i] == class, predLabels[i] == class
			if isTrue && isPred {
				row[3*c] = 1
			}
			if isTrue {
				row[3*c+1] = 1
			}
			if isPred {
				row[3*c+2] = 1
			}
		}
		rows[i] = row
	}
	return NewSimpleStats(rows)
}

// EvaluateFromStats implements Metric. Intervals are percentile bootstrap
// intervals.
func (f *F1Score) EvaluateFromStats(s Stats, alpha float64, _ Stats) (Result, error) {
	if err := checkAlpha(alpha); err != nil {
		return Result{}, err
	}
	n := s.Len()
	if n == 0 {
		return Result{}, fmt.Errorf("%s: %w", f.name, ErrEmptyStats)
	}
	if s.Width()%3 != 0 {
		return Result{}, fmt.Errorf("%s: %w: %d columns is not a multiple of 3", f.name, ErrStatsMismatch, s.Width())
	}

	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = s.Row(i)
	}
	res := NewResult(map[string]Value{ScoreKey: Score{Value: f.aggregate(rows)}})
	if alpha <= 0 {
		return res, nil
	}

	scores := make([]float64, f.resamples)
	sample := make([][]float64, n)
	for b := range scores {
		for i := range sample {
			sample[i] = rows[f.rand.Intn(n)]
		}
		scores[b] = f.aggregate(sample)
	}
	low, err := stats.Percentile(scores, 100*alpha/2)
	if err != nil {
		return Result{}, fmt.Errorf("bootstrap percentile: %w", err)
	}
	high, err := stats.Percentile(scores, 100*(1-alpha/2))
	if err != nil {
		return Result{}, fmt.Errorf("bootstrap percentile: %w", err)
	}
	return res.With(ScoreCIKey, ConfidenceInterval{Low: low, High: high, Alpha: alpha}), nil
}

// aggregate computes the F1 score of the summed statistics of rows.
func (f *F1Score) aggregate(rows [][]float64) float64 {
	if len(rows) == 0 {
		return 0
	}
	sum := make([]float64, len(rows[0]))
	for _, row := range rows {
		floats.Add(sum, row)
	}

	var tp, trueN, predN float64
	var macro []float64
	for c := 0; c < len(sum); c += 3 {
		tp, trueN, predN = tp+sum[c], trueN+sum[c+1], predN+sum[c+2]
		// Classes absent from both labels and predictions do not count.
		if sum[c+1]+sum[c+2] > 0 {
			macro = append(macro, f1(sum[c], sum[c+1], sum[c+2]))
		}
	}
	if f.average == AverageMacro {
		if len(macro) == 0 {
			return 0
		}
		return floats.Sum(macro) / float64(len(macro))
	}
	return f1(tp, trueN, predN)
}

func f1(tp, trueN, predN float64) float64 {
	if trueN+predN == 0 {
		return 0
	}
	return 2 * tp / (trueN + predN)
}
