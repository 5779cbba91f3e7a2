/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package analysis slices evaluated examples and measures each slice.
//
// An Analysis is an immutable, validated description of one slicing
// operation. There are three kinds:
//
//   - BucketAnalysis buckets cases by one feature with a bucketing strategy
//     and evaluates every metric on each bucket.
//   - ComboCountAnalysis counts how often each combination of feature values
//     occurs, as in a confusion matrix.
//   - CalibrationAnalysis buckets cases by model confidence over [0, 1] and
//     compares per-bucket accuracy with per-bucket confidence, reporting the
//     expected and maximum calibration error.
//
// Perform runs an analysis over a list of cases, the metrics to evaluate and
// the per-example statistics of each metric, and returns a Result:
//
//	a, err := analysis.NewBucketAnalysis("example", "text_length",
//		analysis.WithMethod(bucketing.MethodContinuous),
//		analysis.WithNumBuckets(4))
//	if err != nil {
//		return err
//	}
//	res, err := a.Perform(ctx, cs, metrics, stats,
//		analysis.WithConfidenceAlpha(0.05))
//	if err != nil {
//		return err
//	}
//	fmt.Print(res.GenerateReport())
//
// # Serialization
//
// Analyses and results marshal to JSON with a "cls_name" discriminator.
// UnmarshalAnalysis, AnalysisFromMap and UnmarshalResult dispatch on it.
//
// # Errors
//
// Every configuration problem wraps ErrConfiguration, so callers can test
// for either the specific sentinel or the whole class:
//
//	if errors.Is(err, analysis.ErrConfiguration) { ... }
//
// Empty buckets and values outside every fixed interval are not errors.
//
// # Randomness
//
// Bucket and combo results keep at most sample_limit example ids per bucket,
// chosen uniformly without replacement. The source defaults to math/rand and
// can be replaced per call with WithRand. Analyses run in parallel must each
// be given their own source.
package analysis
