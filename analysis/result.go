/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"

	"chainguard.dev/sliceeval/cases"
	"chainguard.dev/sliceeval/metric"
)

// Result kinds.
const (
	KindBucketAnalysisResult      = "BucketAnalysisResult"
	KindComboCountAnalysisResult  = "ComboCountAnalysisResult"
	KindCalibrationAnalysisResult = "CalibrationAnalysisResult"
)

// Result is the validated outcome of an Analysis.
type Result interface {
	// Kind returns the cls_name discriminator.
	Kind() string
	// Name identifies the analyzed feature(s).
	Name() string
	// Level is the analysis level the result belongs to.
	Level() string
	// GenerateReport renders the result as tab separated text.
	GenerateReport() string

	isResult()
}

var (
	_ Result = (*BucketAnalysisResult)(nil)
	_ Result = (*ComboCountAnalysisResult)(nil)
	_ Result = (*CalibrationAnalysisResult)(nil)
)

// BucketAnalysisResult holds the per bucket performance of a BucketAnalysis.
type BucketAnalysisResult struct {
	name  string
	level string
	perfs []BucketPerformance
}

// NewBucketAnalysisResult validates that every bucket reports the same metrics.
func NewBucketAnalysisResult(name, level string, perfs []BucketPerformance) (*BucketAnalysisResult, error) {
	if err := validatePerformances(perfs); err != nil {
		return nil, err
	}
	return &BucketAnalysisResult{name: name, level: level, perfs: clonePerformances(perfs)}, nil
}

// Kind implements Result.
func (*BucketAnalysisResult) Kind() string { return KindBucketAnalysisResult }

// Name implements Result.
func (r *BucketAnalysisResult) Name() string { return r.name }

// Level implements Result.
func (r *BucketAnalysisResult) Level() string { return r.level }

// BucketPerformances returns a copy of the buckets in order.
func (r *BucketAnalysisResult) BucketPerformances() []BucketPerformance {
	return clonePerformances(r.perfs)
}

// GenerateReport implements Result.
func (r *BucketAnalysisResult) GenerateReport() string {
	return strings.Join(bucketReport(r.name, r.perfs), "\n")
}

func (*BucketAnalysisResult) isResult() {}

type bucketResultJSON struct {
	ClsName            string              `json:"cls_name"`
	Name               string              `json:"name"`
	Level              string              `json:"level"`
	BucketPerformances []BucketPerformance `json:"bucket_performances"`
}

// MarshalJSON implements json.Marshaler.
func (r *BucketAnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(bucketResultJSON{
		ClsName:            r.Kind(),
		Name:               r.name,
		Level:              r.level,
		BucketPerformances: nonNil(r.perfs),
	})
}

// ComboOccurrence counts one combination of feature values.
type ComboOccurrence struct {
	Features    []string `json:"features"`
	SampleCount int      `json:"sample_count"`
	// SampleIDs may be subsampled, so len(SampleIDs) <= SampleCount.
	SampleIDs []int `json:"sample_ids"`
}

// Compare orders occurrences by feature values, then by count.
func (o ComboOccurrence) Compare(other ComboOccurrence) int {
	if c := slices.Compare(o.Features, other.Features); c != 0 {
		return c
	}
	return cmp.Compare(o.SampleCount, other.SampleCount)
}

// Less reports whether o sorts before other.
func (o ComboOccurrence) Less(other ComboOccurrence) bool {
	return o.Compare(other) < 0
}

// ComboCountAnalysisResult holds the combination counts of a ComboCountAnalysis.
type ComboCountAnalysisResult struct {
	name        string
	level       string
	features    []string
	occurrences []ComboOccurrence
}

// NewComboCountAnalysisResult validates that every occurrence has one value
// per feature.
func NewComboCountAnalysisResult(name, level string, features []string, occurrences []ComboOccurrence) (*ComboCountAnalysisResult, error) {
	out := make([]ComboOccurrence, len(occurrences))
	for i, occ := range occurrences {
		if len(occ.Features) != len(features) {
			return nil, fmt.Errorf("%w: required %d, got %d", ErrFeatureArity, len(features), len(occ.Features))
		}
		if len(occ.SampleIDs) > occ.SampleCount {
			return nil, fmt.Errorf("%w: occurrence %v keeps %d of %d samples", ErrConfiguration, occ.Features, len(occ.SampleIDs), occ.SampleCount)
		}
		out[i] = ComboOccurrence{
			Features:    slices.Clone(occ.Features),
			SampleCount: occ.SampleCount,
			SampleIDs:   nonNil(slices.Clone(occ.SampleIDs)),
		}
	}
	return &ComboCountAnalysisResult{
		name:        name,
		level:       level,
		features:    slices.Clone(features),
		occurrences: out,
	}, nil
}

// Kind implements Result.
func (*ComboCountAnalysisResult) Kind() string { return KindComboCountAnalysisResult }

// Name implements Result.
func (r *ComboCountAnalysisResult) Name() string { return r.name }

// Level implements Result.
func (r *ComboCountAnalysisResult) Level() string { return r.level }

// Features returns the analyzed feature names.
func (r *ComboCountAnalysisResult) Features() []string { return slices.Clone(r.features) }

// ComboOccurrences returns a copy of the occurrences in discovery order.
func (r *ComboCountAnalysisResult) ComboOccurrences() []ComboOccurrence {
	out := make([]ComboOccurrence, len(r.occurrences))
	for i, occ := range r.occurrences {
		out[i] = ComboOccurrence{
			Features:    slices.Clone(occ.Features),
			SampleCount: occ.SampleCount,
			SampleIDs:   slices.Clone(occ.SampleIDs),
		}
	}
	return out
}

// GenerateReport implements Result.
func (r *ComboCountAnalysisResult) GenerateReport() string {
	texts := []string{
		"feature combos for " + strings.Join(r.features, ", "),
		strings.Join(append(slices.Clone(r.features), "#"), "\t"),
	}
	sorted := slices.Clone(r.occurrences)
	slices.SortStableFunc(sorted, ComboOccurrence.Compare)
	for _, occ := range sorted {
		texts = append(texts, strings.Join(append(slices.Clone(occ.Features), fmt.Sprint(occ.SampleCount)), "\t"))
	}
	texts = append(texts, "")
	return strings.Join(texts, "\n")
}

func (*ComboCountAnalysisResult) isResult() {}

type comboResultJSON struct {
	ClsName          string            `json:"cls_name"`
	Name             string            `json:"name"`
	Level            string            `json:"level"`
	Features         []string          `json:"features"`
	ComboOccurrences []ComboOccurrence `json:"combo_occurrences"`
}

// MarshalJSON implements json.Marshaler.
func (r *ComboCountAnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(comboResultJSON{
		ClsName:          r.Kind(),
		Name:             r.name,
		Level:            r.level,
		Features:         nonNil(r.features),
		ComboOccurrences: nonNil(r.occurrences),
	})
}

// CalibrationAnalysisResult holds the per confidence bucket accuracy of a
// CalibrationAnalysis and the resulting calibration errors.
type CalibrationAnalysisResult struct {
	name  string
	level string
	perfs []BucketPerformance
	ece   float64
	mce   float64
}

// NewCalibrationAnalysisResult validates that every bucket carries an
// Accuracy result and every non-empty bucket's Accuracy carries a confidence.
func NewCalibrationAnalysisResult(name, level string, perfs []BucketPerformance, ece, mce float64) (*CalibrationAnalysisResult, error) {
	if err := validatePerformances(perfs); err != nil {
		return nil, err
	}
	for i, p := range perfs {
		res, ok := p.Results[AccuracyMetric]
		if !ok {
			return nil, fmt.Errorf("%w: bucket %d requires %s, got %v", ErrMissingConfidence, i, AccuracyMetric, p.MetricNames())
		}
		if p.NSamples == 0 {
			continue
		}
		if _, ok := metric.GetValueOrNone[metric.Score](res, metric.ConfidenceKey); !ok {
			return nil, fmt.Errorf("%w: bucket %d %s result has no %q value", ErrMissingConfidence, i, AccuracyMetric, metric.ConfidenceKey)
		}
	}
	if math.IsNaN(ece) || math.IsNaN(mce) || ece < 0 || mce < 0 {
		return nil, fmt.Errorf("%w: calibration errors must be non-negative, got ece=%v mce=%v", ErrConfiguration, ece, mce)
	}
	return &CalibrationAnalysisResult{name: name, level: level, perfs: clonePerformances(perfs), ece: ece, mce: mce}, nil
}

// Kind implements Result.
func (*CalibrationAnalysisResult) Kind() string { return KindCalibrationAnalysisResult }

// Name implements Result.
func (r *CalibrationAnalysisResult) Name() string { return r.name }

// Level implements Result.
func (r *CalibrationAnalysisResult) Level() string { return r.level }

// BucketPerformances returns a copy of the confidence buckets in order.
func (r *CalibrationAnalysisResult) BucketPerformances() []BucketPerformance {
	return clonePerformances(r.perfs)
}

// ExpectedCalibrationError is the sample weighted mean gap between accuracy
// and confidence.
func (r *CalibrationAnalysisResult) ExpectedCalibrationError() float64 { return r.ece }

// MaximumCalibrationError is the largest per bucket gap between accuracy and
// confidence.
func (r *CalibrationAnalysisResult) MaximumCalibrationError() float64 { return r.mce }

// GenerateReport implements Result.
func (r *CalibrationAnalysisResult) GenerateReport() string {
	texts := bucketReport(r.name, r.perfs)
	texts = append(texts,
		"expected_calibration_error\t"+cases.FormatFloat(r.ece),
		"maximum_calibration_error\t"+cases.FormatFloat(r.mce),
		"")
	return strings.Join(texts, "\n")
}

func (*CalibrationAnalysisResult) isResult() {}

type calibrationResultJSON struct {
	ClsName                  string              `json:"cls_name"`
	Name                     string              `json:"name"`
	Level                    string              `json:"level"`
	BucketPerformances       []BucketPerformance `json:"bucket_performances"`
	ExpectedCalibrationError float64             `json:"expected_calibration_error"`
	MaximumCalibrationError  float64             `json:"maximum_calibration_error"`
}

// MarshalJSON implements json.Marshaler.
func (r *CalibrationAnalysisResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(calibrationResultJSON{
		ClsName:                  r.Kind(),
		Name:                     r.name,
		Level:                    r.level,
		BucketPerformances:       nonNil(r.perfs),
		ExpectedCalibrationError: r.ece,
		MaximumCalibrationError:  r.mce,
	})
}

// UnmarshalResult decodes a Result, dispatching on cls_name. The decoded
// result is validated like a freshly constructed one.
func UnmarshalResult(data []byte) (Result, error) {
	var head struct {
		ClsName string `json:"cls_name"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	switch head.ClsName {
	case KindBucketAnalysisResult:
		var raw bucketResultJSON
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return asResult(NewBucketAnalysisResult(raw.Name, raw.Level, raw.BucketPerformances))
	case KindComboCountAnalysisResult:
		var raw comboResultJSON
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return asResult(NewComboCountAnalysisResult(raw.Name, raw.Level, raw.Features, raw.ComboOccurrences))
	case KindCalibrationAnalysisResult:
		var raw calibrationResultJSON
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		return asResult(NewCalibrationAnalysisResult(raw.Name, raw.Level, raw.BucketPerformances,
			raw.ExpectedCalibrationError, raw.MaximumCalibrationError))
	}
	return nil, fmt.Errorf("%w: result %q", ErrUnknownKind, head.ClsName)
}

// asResult keeps a failed constructor from yielding a non-nil interface
// holding a nil pointer.
func asResult[R Result](r R, err error) (Result, error) {
	if err != nil {
		return nil, err
	}
	return r, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
