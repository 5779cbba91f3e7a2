/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"encoding/json"
	"fmt"

	"chainguard.dev/sliceeval/bucketing"
	"chainguard.dev/sliceeval/params"
)

// UnmarshalAnalysis decodes an Analysis, dispatching on cls_name.
func UnmarshalAnalysis(data []byte) (Analysis, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return AnalysisFromMap(m)
}

// AnalysisFromMap builds an Analysis from a decoded JSON or YAML mapping,
// dispatching on cls_name. Missing optional fields take their defaults.
func AnalysisFromMap(m map[string]any) (Analysis, error) {
	kind, err := params.Extract[string](m, "cls_name")
	if err != nil {
		return nil, configErr(err)
	}
	level, err := params.Extract[string](m, "level")
	if err != nil {
		return nil, configErr(err)
	}
	description, err := params.ExtractOptional(m, "description", "")
	if err != nil {
		return nil, configErr(err)
	}
	sampleLimit, err := params.ExtractOptional(m, "sample_limit", DefaultSampleLimit)
	if err != nil {
		return nil, configErr(err)
	}
	opts := []Option{WithDescription(description), WithSampleLimit(sampleLimit)}

	switch kind {
	case KindBucketAnalysis:
		feature, err := params.Extract[string](m, "feature")
		if err != nil {
			return nil, configErr(err)
		}
		method, err := params.ExtractOptional(m, "method", bucketing.MethodContinuous)
		if err != nil {
			return nil, configErr(err)
		}
		numBuckets, err := params.ExtractOptional(m, "num_buckets", DefaultNumBuckets)
		if err != nil {
			return nil, configErr(err)
		}
		opts = append(opts, WithMethod(method), WithNumBuckets(numBuckets))
		if setting := m["setting"]; setting != nil {
			opts = append(opts, WithSetting(setting))
		}
		return asAnalysis(NewBucketAnalysis(level, feature, opts...))

	case KindComboCountAnalysis:
		features, err := params.ExtractSlice[string](m, "features")
		if err != nil {
			return nil, configErr(err)
		}
		method, err := params.ExtractOptional(m, "method", bucketing.MethodDiscrete)
		if err != nil {
			return nil, configErr(err)
		}
		opts = append(opts, WithMethod(method))
		return asAnalysis(NewComboCountAnalysis(level, features, opts...))

	case KindCalibrationAnalysis:
		feature, err := params.Extract[string](m, "feature")
		if err != nil {
			return nil, configErr(err)
		}
		numBuckets, err := params.ExtractOptional(m, "num_buckets", DefaultCalibrationNumBuckets)
		if err != nil {
			return nil, configErr(err)
		}
		opts = append(opts, WithNumBuckets(numBuckets))
		return asAnalysis(NewCalibrationAnalysis(level, feature, opts...))
	}
	return nil, fmt.Errorf("%w: analysis %q", ErrUnknownKind, kind)
}

func asAnalysis[A Analysis](a A, err error) (Analysis, error) {
	if err != nil {
		return nil, err
	}
	return a, nil
}
