/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package bucketing_test

import (
	"errors"
	"sort"
	"testing"

	"chainguard.dev/sliceeval/bucketing"
	"chainguard.dev/sliceeval/cases"
	"github.com/google/go-cmp/cmp"
)

func samplesOf(values ...any) []bucketing.Sample {
	out := make([]bucketing.Sample, 0, len(values))
	for i, v := range values {
		out = append(out, bucketing.Sample{
			Case:  cases.New(i, map[string]any{"x": v}),
			Value: v,
		})
	}
	return out
}

func allIDs(cols []cases.Collection) []int {
	var ids []int
	for _, c := range cols {
		ids = append(ids, c.Samples...)
	}
	sort.Ints(ids)
	return ids
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestContinuousPartition(t *testing.T) {
	values := []any{5.0, 1.0, 3.0, 2.0, 8.0, 7.0, 4.0, 6.0, 9.0, 0.0}
	got, err := bucketing.Continuous(samplesOf(values...), 4)
	if err != nil {
		t.Fatalf("Continuous() = %v", err)
	}
	if len(got) == 0 || len(got) > 4 {
		t.Fatalf("bucket count: got = %d, wanted 1..4", len(got))
	}
	if diff := cmp.Diff(seq(len(values)), allIDs(got)); diff != "" {
		t.Errorf("partition (-want +got):\n%s", diff)
	}
	for i, c := range got {
		if c.Interval == nil {
			t.Fatalf("bucket %d has no interval", i)
		}
		if c.Interval.Low > c.Interval.High {
			t.Errorf("bucket %d: low %v > high %v", i, c.Interval.Low, c.Interval.High)
		}
		if i > 0 && got[i-1].Interval.High > c.Interval.Low {
			t.Errorf("bucket %d overlaps previous: %v then %v", i, got[i-1].Interval, c.Interval)
		}
	}
	if got[0].Interval.Low != 0 || got[len(got)-1].Interval.High != 9 {
		t.Errorf("range: got = [%v, %v], wanted = [0, 9]", got[0].Interval.Low, got[len(got)-1].Interval.High)
	}
}

func TestContinuousTiesStayTogether(t *testing.T) {
	got, err := bucketing.Continuous(samplesOf(1, 1, 1, 2, 3, 4), 2)
	if err != nil {
		t.Fatalf("Continuous() = %v", err)
	}
	want := []cases.Collection{
		{Samples: []int{0, 1, 2}, Interval: &cases.Interval{Low: 1, High: 1}},
		{Samples: []int{3, 4, 5}, Interval: &cases.Interval{Low: 2, High: 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Continuous() (-want +got):\n%s", diff)
	}

	// A tie spanning the split boundary is kept in the lower bucket.
	got, err = bucketing.Continuous(samplesOf(1, 2, 2, 2, 3, 4), 2)
	if err != nil {
		t.Fatalf("Continuous() = %v", err)
	}
	want = []cases.Collection{
		{Samples: []int{0, 1, 2, 3}, Interval: &cases.Interval{Low: 1, High: 2}},
		{Samples: []int{4, 5}, Interval: &cases.Interval{Low: 3, High: 4}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Continuous() (-want +got):\n%s", diff)
	}
}

func TestContinuousDegenerate(t *testing.T) {
	got, err := bucketing.Continuous(samplesOf(2.0, 2.0, 2.0), 4)
	if err != nil {
		t.Fatalf("Continuous() = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("bucket count: got = %d, wanted = 1", len(got))
	}
	if diff := cmp.Diff(&cases.Interval{Low: 2, High: 2}, got[0].Interval); diff != "" {
		t.Errorf("interval (-want +got):\n%s", diff)
	}

	got, err = bucketing.Continuous(nil, 3)
	if err != nil {
		t.Fatalf("Continuous(nil) = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("empty input: got = %d buckets, wanted = 0", len(got))
	}
}

func TestContinuousNonNumeric(t *testing.T) {
	_, err := bucketing.Continuous(samplesOf(1.0, "two"), 2)
	if !errors.Is(err, bucketing.ErrNonNumeric) {
		t.Errorf("Continuous() error: got = %v, wanted = %v", err, bucketing.ErrNonNumeric)
	}
}

func TestDiscreteTopK(t *testing.T) {
	values := []any{"a", "b", "a", "c", "b", "a", "d", "c"}

	tests := []struct {
		name    string
		setting bucketing.DiscreteSetting
		want    []cases.Collection
	}{{
		name:    "remainder kept as other",
		setting: bucketing.DiscreteSetting{MinCount: 1},
		want: []cases.Collection{
			{Name: "a", Samples: []int{0, 2, 5}},
			{Name: "b", Samples: []int{1, 4}},
			{Name: bucketing.OtherBucketName, Samples: []int{3, 6, 7}},
		},
	}, {
		name:    "remainder dropped",
		setting: bucketing.DiscreteSetting{MinCount: 1, DropRemainder: true},
		want: []cases.Collection{
			{Name: "a", Samples: []int{0, 2, 5}},
			{Name: "b", Samples: []int{1, 4}},
		},
	}, {
		name:    "min count",
		setting: bucketing.DiscreteSetting{MinCount: 3, DropRemainder: true},
		want: []cases.Collection{
			{Name: "a", Samples: []int{0, 2, 5}},
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bucketing.Discrete(samplesOf(values...), 2, tt.setting)
			if err != nil {
				t.Fatalf("Discrete() = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Discrete() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiscreteAllValuesFit(t *testing.T) {
	got, err := bucketing.Discrete(samplesOf(1, 2, 2, 1.5), 5, bucketing.DiscreteSetting{MinCount: 1})
	if err != nil {
		t.Fatalf("Discrete() = %v", err)
	}
	want := []cases.Collection{
		{Name: "2", Samples: []int{1, 2}},
		{Name: "1", Samples: []int{0}},
		{Name: "1.5", Samples: []int{3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Discrete() (-want +got):\n%s", diff)
	}
}

func TestDiscreteEmptyValue(t *testing.T) {
	got, err := bucketing.Discrete(samplesOf("", "a", ""), 2, bucketing.DiscreteSetting{MinCount: 1})
	if err != nil {
		t.Fatalf("Discrete() = %v", err)
	}
	want := []cases.Collection{
		{Name: cases.EmptyValue, Samples: []int{0, 2}},
		{Name: "a", Samples: []int{1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Discrete() (-want +got):\n%s", diff)
	}
	for _, c := range got {
		if c.Label() == "" {
			t.Errorf("bucket %v has no label", c.Samples)
		}
	}
}

func TestFixedEmptyLabel(t *testing.T) {
	_, err := bucketing.Fixed(samplesOf("x"), 1, bucketing.FixedSetting{Labels: []string{"x", ""}})
	if !errors.Is(err, bucketing.ErrInvalidSetting) {
		t.Errorf("Fixed() error: got = %v, wanted = %v", err, bucketing.ErrInvalidSetting)
	}
}

func TestFixedIntervals(t *testing.T) {
	setting := bucketing.FixedSetting{Intervals: []cases.Interval{{Low: 0, High: 0.5}, {Low: 0.5, High: 1}}}
	got, err := bucketing.Fixed(samplesOf(0.1, 0.6, 0.4, 0.9), 2, setting)
	if err != nil {
		t.Fatalf("Fixed() = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("bucket count: got = %d, wanted = 2", len(got))
	}
	for i, c := range got {
		if len(c.Samples) != 2 {
			t.Errorf("bucket %d: got = %d samples, wanted = 2", i, len(c.Samples))
		}
	}
	if diff := cmp.Diff([]int{0, 2}, got[0].Samples); diff != "" {
		t.Errorf("first bucket (-want +got):\n%s", diff)
	}
}

func TestFixedBoundaries(t *testing.T) {
	setting := bucketing.FixedSetting{Intervals: []cases.Interval{{Low: 0, High: 0.5}, {Low: 0.5, High: 1}, {Low: 2, High: 3}}}
	got, err := bucketing.Fixed(samplesOf(0.5, 1.0, 3.0, -1.0), 1, setting)
	if err != nil {
		t.Fatalf("Fixed() = %v", err)
	}
	want := []cases.Collection{
		{Samples: []int{}, Interval: &cases.Interval{Low: 0, High: 0.5}},
		{Samples: []int{0}, Interval: &cases.Interval{Low: 0.5, High: 1}},
		{Samples: []int{2}, Interval: &cases.Interval{Low: 2, High: 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fixed() (-want +got):\n%s", diff)
	}
}

func TestFixedLabels(t *testing.T) {
	got, err := bucketing.Fixed(samplesOf("x", "y", "z", "x"), 1, bucketing.FixedSetting{Labels: []string{"x", "w"}})
	if err != nil {
		t.Fatalf("Fixed() = %v", err)
	}
	want := []cases.Collection{
		{Name: "x", Samples: []int{0, 3}},
		{Name: "w", Samples: []int{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fixed() (-want +got):\n%s", diff)
	}
}

func TestParseFixedSetting(t *testing.T) {
	tests := []struct {
		name    string
		setting any
		want    bucketing.FixedSetting
		wantErr bool
	}{{
		name:    "decoded pairs",
		setting: []any{[]any{0, 0.5}, []any{0.5, 1}},
		want:    bucketing.FixedSetting{Intervals: []cases.Interval{{Low: 0, High: 0.5}, {Low: 0.5, High: 1}}},
	}, {
		name:    "typed pairs",
		setting: [][2]float64{{1, 2}},
		want:    bucketing.FixedSetting{Intervals: []cases.Interval{{Low: 1, High: 2}}},
	}, {
		name:    "decoded labels",
		setting: []any{"a", "b"},
		want:    bucketing.FixedSetting{Labels: []string{"a", "b"}},
	}, {
		name:    "nil",
		wantErr: true,
	}, {
		name:    "mixed",
		setting: []any{"a", []any{0, 1}},
		wantErr: true,
	}, {
		name:    "inverted",
		setting: []any{[]any{1, 0}},
		wantErr: true,
	}, {
		name:    "triple",
		setting: []any{[]any{0, 1, 2}},
		wantErr: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bucketing.ParseFixedSetting(tt.setting)
			if tt.wantErr {
				if !errors.Is(err, bucketing.ErrInvalidSetting) {
					t.Errorf("ParseFixedSetting() error: got = %v, wanted = %v", err, bucketing.ErrInvalidSetting)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFixedSetting() = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFixedSetting() (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseDiscreteSetting(t *testing.T) {
	tests := []struct {
		name    string
		setting any
		want    bucketing.DiscreteSetting
		wantErr bool
	}{
		{name: "nil", want: bucketing.DiscreteSetting{MinCount: 1}},
		{name: "number", setting: float64(3), want: bucketing.DiscreteSetting{MinCount: 3}},
		{name: "int", setting: 2, want: bucketing.DiscreteSetting{MinCount: 2}},
		{
			name:    "mapping",
			setting: map[string]any{"drop_remainder": true},
			want:    bucketing.DiscreteSetting{MinCount: 1, DropRemainder: true},
		},
		{name: "string", setting: "lots", wantErr: true},
		{name: "bad field", setting: map[string]any{"min_count": "x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bucketing.ParseDiscreteSetting(tt.setting)
			if tt.wantErr {
				if !errors.Is(err, bucketing.ErrInvalidSetting) {
					t.Errorf("ParseDiscreteSetting() error: got = %v, wanted = %v", err, bucketing.ErrInvalidSetting)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDiscreteSetting() = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDiscreteSetting(): got = %+v, wanted = %+v", got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, method := range bucketing.Methods() {
		var setting any
		if method == bucketing.MethodFixed {
			setting = []any{[]any{0, 1}}
		}
		s, err := bucketing.New(method, setting)
		if err != nil {
			t.Fatalf("New(%q) = %v", method, err)
		}
		if s.Method() != method {
			t.Errorf("Method(): got = %q, wanted = %q", s.Method(), method)
		}
	}

	if _, err := bucketing.New("quantile", nil); !errors.Is(err, bucketing.ErrUnknownStrategy) {
		t.Errorf("New(quantile) error: got = %v, wanted = %v", err, bucketing.ErrUnknownStrategy)
	}
	if _, err := bucketing.New(bucketing.MethodContinuous, 3); !errors.Is(err, bucketing.ErrInvalidSetting) {
		t.Errorf("New(continuous, 3) error: got = %v, wanted = %v", err, bucketing.ErrInvalidSetting)
	}
}

func TestInvalidBucketNumber(t *testing.T) {
	samples := samplesOf(1.0, 2.0)
	for _, method := range bucketing.Methods() {
		var setting any
		if method == bucketing.MethodFixed {
			setting = []any{[]any{0, 3}}
		}
		s, err := bucketing.New(method, setting)
		if err != nil {
			t.Fatalf("New(%q) = %v", method, err)
		}
		for _, n := range []int{0, -1} {
			if _, err := s.Bucket(samples, n); !errors.Is(err, bucketing.ErrInvalidBucketNumber) {
				t.Errorf("%s.Bucket(n=%d) error: got = %v, wanted = %v", method, n, err, bucketing.ErrInvalidBucketNumber)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	samples := samplesOf(3, 1, 2, 3, 1, 2, 2, 5, 4)
	for _, method := range []string{bucketing.MethodContinuous, bucketing.MethodDiscrete} {
		s, err := bucketing.New(method, nil)
		if err != nil {
			t.Fatalf("New(%q) = %v", method, err)
		}
		first, err := s.Bucket(samples, 3)
		if err != nil {
			t.Fatalf("Bucket() = %v", err)
		}
		second, err := s.Bucket(samples, 3)
		if err != nil {
			t.Fatalf("Bucket() = %v", err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s not deterministic (-first +second):\n%s", method, diff)
		}
		if diff := cmp.Diff(seq(len(samples)), allIDs(first)); diff != "" {
			t.Errorf("%s partition (-want +got):\n%s", method, diff)
		}
	}
}
