/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"chainguard.dev/sliceeval/analysis"
	"chainguard.dev/sliceeval/bucketing"
	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/metric"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	trueLabels = []string{"a", "b", "a", "b", "a", "a", "c", "c"}
	predLabels = []string{"a", "b", "a", "b", "b", "a", "c", "a"}
)

// labelCases builds one case per label pair with "true" and "pred" features.
func labelCases() []cases.Case {
	out := make([]cases.Case, len(trueLabels))
	for i := range trueLabels {
		out[i] = cases.New(i, map[string]any{"true": trueLabels[i], "pred": predLabels[i]})
	}
	return out
}

// accuracyOver returns Accuracy inputs for the given per example correctness.
func accuracyOver(correct ...float64) (map[string]metric.Metric, map[string]metric.Stats) {
	return map[string]metric.Metric{analysis.AccuracyMetric: metric.NewAccuracy(analysis.AccuracyMetric)},
		map[string]metric.Stats{analysis.AccuracyMetric: metric.NewColumnStats(correct)}
}

// perfectlyCalibrated returns n cases whose confidence is 1 when the
// prediction is correct and 0 otherwise.
func perfectlyCalibrated(n int) ([]cases.Case, map[string]metric.Metric, map[string]metric.Stats) {
	cs := make([]cases.Case, n)
	correct := make([]float64, n)
	for i := range cs {
		if i%2 == 0 {
			correct[i] = 1
		}
		cs[i] = cases.New(i, map[string]any{"confidence": correct[i]})
	}
	metrics, stats := accuracyOver(correct...)
	return cs, metrics, stats
}

func TestBucketAnalysisFixed(t *testing.T) {
	ctx := context.Background()
	a, err := analysis.NewBucketAnalysis("example", "x",
		analysis.WithMethod(bucketing.MethodFixed),
		analysis.WithSetting([]any{[]any{0, 0.5}, []any{0.5, 1.0}}))
	require.NoError(t, err)

	xs := []float64{0.1, 0.6, 0.4, 0.9}
	cs := make([]cases.Case, len(xs))
	for i, x := range xs {
		cs[i] = cases.New(i, map[string]any{"x": x})
	}
	metrics, stats := accuracyOver(1, 0, 1, 1)

	res, err := a.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)
	bucketRes, ok := res.(*analysis.BucketAnalysisResult)
	if !ok {
		t.Fatalf("Perform(): got = %T, wanted = *analysis.BucketAnalysisResult", res)
	}

	perfs := bucketRes.BucketPerformances()
	if len(perfs) != 2 {
		t.Fatalf("buckets: got = %d, wanted = 2", len(perfs))
	}
	wantScores := []float64{1, 0.5}
	for i, p := range perfs {
		if p.NSamples != 2 {
			t.Errorf("bucket %d samples: got = %d, wanted = 2", i, p.NSamples)
		}
		if got, _ := p.Score(analysis.AccuracyMetric); got != wantScores[i] {
			t.Errorf("bucket %d accuracy: got = %v, wanted = %v", i, got, wantScores[i])
		}
	}
	if res.Name() != "x" || res.Level() != "example" {
		t.Errorf("identity: got = %s/%s, wanted = x/example", res.Name(), res.Level())
	}
}

func TestBucketAnalysisPartition(t *testing.T) {
	ctx := context.Background()
	const n = 37
	cs := make([]cases.Case, n)
	correct := make([]float64, n)
	for i := range cs {
		cs[i] = cases.New(i, map[string]any{"length": float64((i * 7) % 11)})
		correct[i] = float64(i % 2)
	}
	metrics, stats := accuracyOver(correct...)

	a, err := analysis.NewBucketAnalysis("example", "length")
	require.NoError(t, err)
	res, err := a.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)

	perfs := res.(*analysis.BucketAnalysisResult).BucketPerformances()
	if len(perfs) > analysis.DefaultNumBuckets {
		t.Errorf("buckets: got = %d, wanted <= %d", len(perfs), analysis.DefaultNumBuckets)
	}
	total := 0
	for i, p := range perfs {
		total += p.NSamples
		if p.BucketInterval == nil {
			t.Fatalf("bucket %d has no interval", i)
		}
		if i > 0 && perfs[i-1].BucketInterval.High > p.BucketInterval.Low {
			t.Errorf("bucket %d interval %v overlaps %v", i, p.BucketInterval, perfs[i-1].BucketInterval)
		}
		if diff := cmp.Diff([]string{analysis.AccuracyMetric}, p.MetricNames()); diff != "" {
			t.Errorf("bucket %d metrics (-want +got):\n%s", i, diff)
		}
	}
	if total != n {
		t.Errorf("total samples: got = %d, wanted = %d", total, n)
	}
}

func TestBucketAnalysisDiscreteEmptyAndOther(t *testing.T) {
	ctx := context.Background()
	cs := labelCases()
	metrics, stats := accuracyOver(1, 1, 1, 1, 0, 1, 1, 0)

	a, err := analysis.NewBucketAnalysis("example", "true",
		analysis.WithMethod(bucketing.MethodDiscrete),
		analysis.WithNumBuckets(1))
	require.NoError(t, err)
	res, err := a.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)

	perfs := res.(*analysis.BucketAnalysisResult).BucketPerformances()
	var names []string
	for _, p := range perfs {
		names = append(names, p.BucketName)
	}
	if diff := cmp.Diff([]string{"a", bucketing.OtherBucketName}, names); diff != "" {
		t.Errorf("bucket names (-want +got):\n%s", diff)
	}
}

func TestBucketAnalysisSubsampling(t *testing.T) {
	ctx := context.Background()
	const n = 200
	cs := make([]cases.Case, n)
	correct := make([]float64, n)
	for i := range cs {
		cs[i] = cases.New(i, map[string]any{"x": float64(i)})
	}
	metrics, stats := accuracyOver(correct...)

	a, err := analysis.NewBucketAnalysis("example", "x",
		analysis.WithNumBuckets(2),
		analysis.WithSampleLimit(10))
	require.NoError(t, err)

	perform := func(seed int64) []analysis.BucketPerformance {
		res, err := a.Perform(ctx, cs, metrics, stats, analysis.WithRand(rand.New(rand.NewSource(seed))))
		require.NoError(t, err)
		return res.(*analysis.BucketAnalysisResult).BucketPerformances()
	}

	first := perform(7)
	for i, p := range first {
		if p.NSamples != 100 {
			t.Errorf("bucket %d samples: got = %d, wanted = 100", i, p.NSamples)
		}
		if len(p.BucketSamples) != 10 {
			t.Errorf("bucket %d kept: got = %d, wanted = 10", i, len(p.BucketSamples))
		}
		seen := map[int]bool{}
		for _, id := range p.BucketSamples {
			if id < 100*i || id >= 100*(i+1) {
				t.Errorf("bucket %d kept foreign id %d", i, id)
			}
			if seen[id] {
				t.Errorf("bucket %d kept id %d twice", i, id)
			}
			seen[id] = true
		}
	}
	if diff := cmp.Diff(first, perform(7), cmp.AllowUnexported(metric.Result{})); diff != "" {
		t.Errorf("same seed, different buckets (-first +second):\n%s", diff)
	}
}

func TestComboCountAnalysis(t *testing.T) {
	ctx := context.Background()
	a, err := analysis.NewComboCountAnalysis("example", []string{"true", "pred"})
	require.NoError(t, err)

	res, err := a.Perform(ctx, labelCases(), nil, nil)
	require.NoError(t, err)
	combo := res.(*analysis.ComboCountAnalysisResult)
	if got, want := combo.Name(), "combo(true,pred)"; got != want {
		t.Errorf("Name(): got = %q, wanted = %q", got, want)
	}

	occs := combo.ComboOccurrences()
	if len(occs) > 5 {
		t.Errorf("combos: got = %d, wanted <= 5", len(occs))
	}
	total := 0
	counts := map[string]int{}
	for _, occ := range occs {
		total += occ.SampleCount
		counts[occ.Features[0]+"/"+occ.Features[1]] = occ.SampleCount
	}
	if total != len(trueLabels) {
		t.Errorf("total: got = %d, wanted = %d", total, len(trueLabels))
	}
	want := map[string]int{"a/a": 3, "b/b": 2, "a/b": 1, "c/c": 1, "c/a": 1}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counts (-want +got):\n%s", diff)
	}
}

func TestComboOccurrenceOrdering(t *testing.T) {
	occs := []analysis.ComboOccurrence{
		{Features: []string{"b", "a"}, SampleCount: 1},
		{Features: []string{"a", "b"}, SampleCount: 2},
		{Features: []string{"a", "b"}, SampleCount: 1},
	}
	slices.SortFunc(occs, analysis.ComboOccurrence.Compare)
	if !occs[0].Less(occs[1]) || !occs[1].Less(occs[2]) {
		t.Errorf("sorted order is not increasing: %v", occs)
	}
	if occs[0].SampleCount != 1 || occs[2].Features[0] != "b" {
		t.Errorf("sorted: got = %v", occs)
	}
}

func TestCalibrationPerfect(t *testing.T) {
	ctx := context.Background()
	cs, metrics, stats := perfectlyCalibrated(100)

	a, err := analysis.NewCalibrationAnalysis("example", "confidence")
	require.NoError(t, err)
	res, err := a.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)

	cal := res.(*analysis.CalibrationAnalysisResult)
	if got := cal.ExpectedCalibrationError(); math.Abs(got) > 1e-9 {
		t.Errorf("ECE: got = %v, wanted = 0", got)
	}
	if got := cal.MaximumCalibrationError(); math.Abs(got) > 1e-9 {
		t.Errorf("MCE: got = %v, wanted = 0", got)
	}
	perfs := cal.BucketPerformances()
	if len(perfs) != analysis.DefaultCalibrationNumBuckets {
		t.Fatalf("buckets: got = %d, wanted = %d", len(perfs), analysis.DefaultCalibrationNumBuckets)
	}
	if perfs[0].NSamples != 50 || perfs[9].NSamples != 50 {
		t.Errorf("edge buckets: got = %d and %d, wanted = 50 and 50", perfs[0].NSamples, perfs[9].NSamples)
	}
	if !perfs[5].Results[analysis.AccuracyMetric].IsEmpty() {
		t.Error("empty bucket has a non-empty result")
	}
}

func TestCalibrationErrors(t *testing.T) {
	ctx := context.Background()
	// Bucket [0.5, 0.6): confidence 0.5, accuracy 1. Bucket [0.9, 1.0]:
	// confidence 1, accuracy 0.5.
	cs := []cases.Case{
		cases.New(0, map[string]any{"conf": 0.5}),
		cases.New(1, map[string]any{"conf": 0.5}),
		cases.New(2, map[string]any{"conf": 1.0}),
		cases.New(3, map[string]any{"conf": 1.0}),
	}
	metrics, stats := accuracyOver(1, 1, 1, 0)

	a, err := analysis.NewCalibrationAnalysis("example", "conf")
	require.NoError(t, err)
	res, err := a.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)

	cal := res.(*analysis.CalibrationAnalysisResult)
	if got := cal.ExpectedCalibrationError(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ECE: got = %v, wanted = 0.5", got)
	}
	if got := cal.MaximumCalibrationError(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("MCE: got = %v, wanted = 0.5", got)
	}
	if ece, mce := cal.ExpectedCalibrationError(), cal.MaximumCalibrationError(); ece < 0 || ece > 1 || mce < ece {
		t.Errorf("bounds: ece = %v, mce = %v", ece, mce)
	}
}

func TestCalibrationSkipsMissingConfidence(t *testing.T) {
	ctx := context.Background()
	cs := []cases.Case{
		cases.New(0, map[string]any{"conf": 0.95}),
		cases.New(1, map[string]any{"conf": 0.95}),
		cases.New(2, map[string]any{}),
		cases.New(3, map[string]any{}),
	}
	metrics, stats := accuracyOver(1, 1, 1, 1)

	a, err := analysis.NewCalibrationAnalysis("example", "conf")
	require.NoError(t, err)
	res, err := a.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)

	cal := res.(*analysis.CalibrationAnalysisResult)
	bucketed := 0
	for i, p := range cal.BucketPerformances() {
		bucketed += p.NSamples
		if i < 9 && p.NSamples != 0 {
			t.Errorf("bucket %d: got = %d samples, wanted = 0", i, p.NSamples)
		}
	}
	if bucketed != 2 {
		t.Errorf("bucketed: got = %d, wanted = 2", bucketed)
	}
	require.InDelta(t, 0.05, cal.ExpectedCalibrationError(), 1e-9)
	require.InDelta(t, 0.05, cal.MaximumCalibrationError(), 1e-9)

	// A bucket analysis over the same feature buckets the same cases.
	b, err := analysis.NewBucketAnalysis("example", "conf",
		analysis.WithMethod(bucketing.MethodFixed), analysis.WithSetting([]any{[]any{0, 0.5}, []any{0.5, 1.0}}))
	require.NoError(t, err)
	bres, err := b.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)
	inBuckets := 0
	for _, p := range bres.(*analysis.BucketAnalysisResult).BucketPerformances() {
		inBuckets += p.NSamples
	}
	if inBuckets != bucketed {
		t.Errorf("bucket analysis: got = %d bucketed, wanted = %d", inBuckets, bucketed)
	}
}

func TestCalibrationNoSamplesInRange(t *testing.T) {
	ctx := context.Background()
	cs := []cases.Case{
		cases.New(0, map[string]any{"conf": 1.5}),
		cases.New(1, map[string]any{"conf": -0.2}),
	}
	metrics, stats := accuracyOver(1, 0)

	a, err := analysis.NewCalibrationAnalysis("example", "conf")
	require.NoError(t, err)
	res, err := a.Perform(ctx, cs, metrics, stats)
	require.NoError(t, err)

	cal := res.(*analysis.CalibrationAnalysisResult)
	if got := cal.ExpectedCalibrationError(); got != 0 {
		t.Errorf("ECE: got = %v, wanted = 0", got)
	}
	if got := cal.MaximumCalibrationError(); got != 0 {
		t.Errorf("MCE: got = %v, wanted = 0", got)
	}
	perfs := cal.BucketPerformances()
	if len(perfs) != analysis.DefaultCalibrationNumBuckets {
		t.Fatalf("buckets: got = %d, wanted = %d", len(perfs), analysis.DefaultCalibrationNumBuckets)
	}
	for i, p := range perfs {
		if p.NSamples != 0 {
			t.Errorf("bucket %d: got = %d samples, wanted = 0", i, p.NSamples)
		}
		if !p.Results[analysis.AccuracyMetric].IsEmpty() {
			t.Errorf("bucket %d: got a non-empty result", i)
		}
	}
}

func TestCalibrationIntervals(t *testing.T) {
	a, err := analysis.NewCalibrationAnalysis("example", "conf", analysis.WithNumBuckets(4))
	require.NoError(t, err)
	want := []cases.Interval{{Low: 0, High: 0.25}, {Low: 0.25, High: 0.5}, {Low: 0.5, High: 0.75}, {Low: 0.75, High: 1}}
	if diff := cmp.Diff(want, a.Intervals()); diff != "" {
		t.Errorf("Intervals() (-want +got):\n%s", diff)
	}
}

func TestPerformErrors(t *testing.T) {
	ctx := context.Background()
	metrics, stats := accuracyOver(1, 0, 1, 1, 0, 0, 1, 1)

	bucket, err := analysis.NewBucketAnalysis("example", "true", analysis.WithMethod(bucketing.MethodDiscrete))
	require.NoError(t, err)
	missing, err := analysis.NewBucketAnalysis("example", "nope")
	require.NoError(t, err)
	numeric, err := analysis.NewBucketAnalysis("example", "true")
	require.NoError(t, err)
	combo, err := analysis.NewComboCountAnalysis("example", []string{"true", "nope"})
	require.NoError(t, err)
	cal, err := analysis.NewCalibrationAnalysis("example", "true")
	require.NoError(t, err)
	calOK, err := analysis.NewCalibrationAnalysis("example", "confidence")
	require.NoError(t, err)
	calCases, _, _ := perfectlyCalibrated(4)

	tests := []struct {
		name    string
		a       analysis.Analysis
		cs      []cases.Case
		metrics map[string]metric.Metric
		stats   map[string]metric.Stats
		opts    []analysis.PerformOption
		want    error
	}{{
		name: "no cases",
		a:    bucket,
		want: analysis.ErrFeatureNotFound,
	}, {
		name:    "missing feature",
		a:       missing,
		cs:      labelCases(),
		metrics: metrics,
		stats:   stats,
		want:    analysis.ErrFeatureNotFound,
	}, {
		name:    "missing stats",
		a:       bucket,
		cs:      labelCases(),
		metrics: metrics,
		want:    analysis.ErrMetricNotFound,
	}, {
		name:    "non numeric continuous",
		a:       numeric,
		cs:      labelCases(),
		metrics: metrics,
		stats:   stats,
		want:    bucketing.ErrNonNumeric,
	}, {
		name: "combo missing feature",
		a:    combo,
		cs:   labelCases(),
		want: analysis.ErrFeatureNotFound,
	}, {
		name: "calibration without accuracy",
		a:    cal,
		cs:   labelCases(),
		want: analysis.ErrMetricNotFound,
	}, {
		name:    "calibration shape",
		a:       calOK,
		cs:      calCases,
		metrics: metrics,
		stats:   stats,
		want:    analysis.ErrShapeMismatch,
	}, {
		name:    "bad alpha",
		a:       bucket,
		cs:      labelCases(),
		metrics: metrics,
		stats:   stats,
		opts:    []analysis.PerformOption{analysis.WithConfidenceAlpha(2)},
		want:    analysis.ErrInvalidOption,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.a.Perform(ctx, tt.cs, tt.metrics, tt.stats, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("Perform() error: got = %v, wanted = %v", err, tt.want)
			}
			if !errors.Is(err, analysis.ErrConfiguration) {
				t.Errorf("Perform() error %v does not wrap ErrConfiguration", err)
			}
			if res != nil {
				t.Errorf("Perform() result: got = %v, wanted = nil", res)
			}
		})
	}
}

func TestConstructorErrors(t *testing.T) {
	tests := []struct {
		name string
		new  func() error
		want error
	}{{
		name: "unknown method",
		new: func() error {
			_, err := analysis.NewBucketAnalysis("example", "x", analysis.WithMethod("quantile"))
			return err
		},
		want: bucketing.ErrUnknownStrategy,
	}, {
		name: "fixed without setting",
		new: func() error {
			_, err := analysis.NewBucketAnalysis("example", "x", analysis.WithMethod(bucketing.MethodFixed))
			return err
		},
		want: bucketing.ErrInvalidSetting,
	}, {
		name: "zero buckets",
		new: func() error {
			_, err := analysis.NewCalibrationAnalysis("example", "conf", analysis.WithNumBuckets(0))
			return err
		},
		want: analysis.ErrInvalidOption,
	}, {
		name: "calibration setting",
		new: func() error {
			_, err := analysis.NewCalibrationAnalysis("example", "conf", analysis.WithSetting(1))
			return err
		},
		want: analysis.ErrInvalidOption,
	}, {
		name: "combo continuous",
		new: func() error {
			_, err := analysis.NewComboCountAnalysis("example", []string{"a"}, analysis.WithMethod(bucketing.MethodContinuous))
			return err
		},
		want: analysis.ErrInvalidOption,
	}, {
		name: "negative sample limit",
		new: func() error {
			_, err := analysis.NewComboCountAnalysis("example", []string{"a"}, analysis.WithSampleLimit(-1))
			return err
		},
		want: analysis.ErrInvalidOption,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.new()
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got = %v, wanted = %v", err, tt.want)
			}
			if !errors.Is(err, analysis.ErrConfiguration) {
				t.Errorf("error %v does not wrap ErrConfiguration", err)
			}
		})
	}
}

func TestResultValidation(t *testing.T) {
	score := metric.NewResult(map[string]metric.Value{metric.ScoreKey: metric.Score{Value: 1}})
	withConf := score.With(metric.ConfidenceKey, metric.Score{Value: 1})

	_, err := analysis.NewBucketAnalysisResult("x", "example", []analysis.BucketPerformance{
		{NSamples: 1, BucketSamples: []int{0}, Results: map[string]metric.Result{"Accuracy": score}, BucketName: "a"},
		{NSamples: 1, BucketSamples: []int{1}, Results: map[string]metric.Result{"F1": score}, BucketName: "b"},
	})
	if !errors.Is(err, analysis.ErrInconsistentMetrics) {
		t.Errorf("inconsistent metrics: got = %v, wanted = %v", err, analysis.ErrInconsistentMetrics)
	}

	_, err = analysis.NewComboCountAnalysisResult("combo(a,b)", "example", []string{"a", "b"}, []analysis.ComboOccurrence{
		{Features: []string{"x"}, SampleCount: 1, SampleIDs: []int{0}},
	})
	if !errors.Is(err, analysis.ErrFeatureArity) {
		t.Errorf("arity: got = %v, wanted = %v", err, analysis.ErrFeatureArity)
	}

	iv := &cases.Interval{Low: 0, High: 1}
	_, err = analysis.NewCalibrationAnalysisResult("conf", "example", []analysis.BucketPerformance{
		{NSamples: 1, BucketSamples: []int{0}, Results: map[string]metric.Result{"Accuracy": score}, BucketInterval: iv},
	}, 0, 0)
	if !errors.Is(err, analysis.ErrMissingConfidence) {
		t.Errorf("missing confidence: got = %v, wanted = %v", err, analysis.ErrMissingConfidence)
	}

	_, err = analysis.NewCalibrationAnalysisResult("conf", "example", []analysis.BucketPerformance{
		{NSamples: 1, BucketSamples: []int{0}, Results: map[string]metric.Result{"F1": withConf}, BucketInterval: iv},
	}, 0, 0)
	if !errors.Is(err, analysis.ErrMissingConfidence) {
		t.Errorf("missing accuracy: got = %v, wanted = %v", err, analysis.ErrMissingConfidence)
	}

	_, err = analysis.NewCalibrationAnalysisResult("conf", "example", []analysis.BucketPerformance{
		{NSamples: 0, BucketSamples: []int{}, Results: map[string]metric.Result{"Accuracy": {}}, BucketInterval: iv},
		{NSamples: 1, BucketSamples: []int{0}, Results: map[string]metric.Result{"Accuracy": withConf}, BucketInterval: iv},
	}, 0, 0)
	if err != nil {
		t.Errorf("empty bucket without confidence: got = %v, wanted = nil", err)
	}
}

func TestAnalysisSerialization(t *testing.T) {
	bucket, err := analysis.NewBucketAnalysis("example", "x",
		analysis.WithDescription("bucket on x"),
		analysis.WithMethod(bucketing.MethodFixed),
		analysis.WithSetting([][2]float64{{0, 0.5}, {0.5, 1}}))
	require.NoError(t, err)
	combo, err := analysis.NewComboCountAnalysis("example", []string{"true", "pred"})
	require.NoError(t, err)
	cal, err := analysis.NewCalibrationAnalysis("example", "confidence", analysis.WithSampleLimit(5))
	require.NoError(t, err)

	tests := []struct {
		a    analysis.Analysis
		want string
	}{{
		a:    bucket,
		want: `{"cls_name":"BucketAnalysis","description":"bucket on x","level":"example","feature":"x","method":"fixed","num_buckets":4,"setting":[[0,0.5],[0.5,1]],"sample_limit":50}`,
	}, {
		a:    combo,
		want: `{"cls_name":"ComboCountAnalysis","level":"example","features":["true","pred"],"method":"discrete","sample_limit":50}`,
	}, {
		a:    cal,
		want: `{"cls_name":"CalibrationAnalysis","level":"example","feature":"confidence","num_buckets":10,"sample_limit":5}`,
	}}

	for _, tt := range tests {
		t.Run(tt.a.Kind(), func(t *testing.T) {
			b, err := json.Marshal(tt.a)
			require.NoError(t, err)
			if got := string(b); got != tt.want {
				t.Errorf("json: got = %s, wanted = %s", got, tt.want)
			}

			back, err := analysis.UnmarshalAnalysis(b)
			require.NoError(t, err)
			if back.Kind() != tt.a.Kind() {
				t.Errorf("Kind(): got = %s, wanted = %s", back.Kind(), tt.a.Kind())
			}
			again, err := json.Marshal(back)
			require.NoError(t, err)
			if string(again) != string(b) {
				t.Errorf("re-marshal: got = %s, wanted = %s", again, b)
			}
		})
	}

	if _, err := analysis.UnmarshalAnalysis([]byte(`{"cls_name":"SpanAnalysis","level":"span"}`)); !errors.Is(err, analysis.ErrUnknownKind) {
		t.Errorf("unknown kind: got = %v, wanted = %v", err, analysis.ErrUnknownKind)
	}
}

func TestAnalysisFromMapDefaults(t *testing.T) {
	a, err := analysis.AnalysisFromMap(map[string]any{
		"cls_name": "BucketAnalysis",
		"level":    "example",
		"feature":  "length",
	})
	require.NoError(t, err)
	bucket := a.(*analysis.BucketAnalysis)
	if bucket.Method() != bucketing.MethodContinuous || bucket.NumBuckets() != 4 || bucket.SampleLimit() != 50 {
		t.Errorf("defaults: got = %s/%d/%d, wanted = continuous/4/50", bucket.Method(), bucket.NumBuckets(), bucket.SampleLimit())
	}

	// YAML decodes integers as int.
	a, err = analysis.AnalysisFromMap(map[string]any{
		"cls_name":    "CalibrationAnalysis",
		"level":       "example",
		"feature":     "confidence",
		"num_buckets": 5,
	})
	require.NoError(t, err)
	if got := a.(*analysis.CalibrationAnalysis).NumBuckets(); got != 5 {
		t.Errorf("NumBuckets(): got = %d, wanted = 5", got)
	}

	_, err = analysis.AnalysisFromMap(map[string]any{
		"cls_name":    "CalibrationAnalysis",
		"level":       "example",
		"feature":     "confidence",
		"num_buckets": 0,
	})
	if !errors.Is(err, analysis.ErrConfiguration) {
		t.Errorf("zero buckets: got = %v, wanted = %v", err, analysis.ErrConfiguration)
	}

	_, err = analysis.AnalysisFromMap(map[string]any{"cls_name": "BucketAnalysis", "level": "example"})
	if !errors.Is(err, analysis.ErrConfiguration) {
		t.Errorf("missing feature: got = %v, wanted = %v", err, analysis.ErrConfiguration)
	}
}

func TestResultSerialization(t *testing.T) {
	ctx := context.Background()
	metrics, stats := accuracyOver(1, 1, 1, 1, 0, 1, 1, 0)
	calCases, calMetrics, calStats := perfectlyCalibrated(20)

	bucket, err := analysis.NewBucketAnalysis("example", "true", analysis.WithMethod(bucketing.MethodDiscrete))
	require.NoError(t, err)
	combo, err := analysis.NewComboCountAnalysis("example", []string{"true", "pred"})
	require.NoError(t, err)
	cal, err := analysis.NewCalibrationAnalysis("example", "confidence")
	require.NoError(t, err)

	inputs := []struct {
		a       analysis.Analysis
		cs      []cases.Case
		metrics map[string]metric.Metric
		stats   map[string]metric.Stats
	}{
		{bucket, labelCases(), metrics, stats},
		{combo, labelCases(), nil, nil},
		{cal, calCases, calMetrics, calStats},
	}

	for _, in := range inputs {
		t.Run(in.a.Kind(), func(t *testing.T) {
			res, err := in.a.Perform(ctx, in.cs, in.metrics, in.stats, analysis.WithRand(rand.New(rand.NewSource(1))))
			require.NoError(t, err)
			b, err := json.Marshal(res)
			require.NoError(t, err)

			var head map[string]any
			require.NoError(t, json.Unmarshal(b, &head))
			if head["cls_name"] != res.Kind() {
				t.Errorf("cls_name: got = %v, wanted = %s", head["cls_name"], res.Kind())
			}

			back, err := analysis.UnmarshalResult(b)
			require.NoError(t, err)
			if diff := cmp.Diff(res.GenerateReport(), back.GenerateReport()); diff != "" {
				t.Errorf("report after round trip (-want +got):\n%s", diff)
			}
			again, err := json.Marshal(back)
			require.NoError(t, err)
			if string(again) != string(b) {
				t.Errorf("re-marshal: got = %s, wanted = %s", again, b)
			}
		})
	}

	if _, err := analysis.UnmarshalResult([]byte(`{"cls_name":"Nope"}`)); !errors.Is(err, analysis.ErrUnknownKind) {
		t.Errorf("unknown kind: got = %v, wanted = %v", err, analysis.ErrUnknownKind)
	}
}
