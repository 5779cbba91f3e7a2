/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metric defines how per-example statistics are turned into scores.
//
// A metric first computes a Stats table from labels (one row per example,
// one column per sufficient statistic) and then evaluates a score from any
// subset of those rows. Analyses rely on the second half only: they filter
// the rows belonging to a bucket and call EvaluateFromStats.
//
// # Results
//
// A Result maps value names to typed values. "score" is always present on an
// evaluated result. Metrics that accept an auxiliary Stats table add
// "confidence", and "score_ci" is added when a confidence level is
// requested:
//
//	res, err := acc.EvaluateFromStats(stats, 0.05, nil)
//	score, err := metric.GetValue[metric.Score](res, metric.ScoreKey)
//	ci, ok := metric.GetValueOrNone[metric.ConfidenceInterval](res, metric.ScoreCIKey)
//
// # Configs
//
// Metric configurations (AccuracyConfig, F1ScoreConfig) serialize with a
// "cls_name" discriminator and are rebuilt with UnmarshalConfig or
// ConfigFromMap.
package metric
