/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"errors"
	"fmt"
)

// ErrConfiguration is the root of every error caused by an invalid analysis,
// result or input.
var ErrConfiguration = errors.New("analysis configuration error")

var (
	// ErrFeatureNotFound is returned when the first case lacks an analyzed feature.
	ErrFeatureNotFound = fmt.Errorf("%w: feature not found", ErrConfiguration)

	// ErrMetricNotFound is returned when a required metric or its statistics are missing.
	ErrMetricNotFound = fmt.Errorf("%w: metric not found", ErrConfiguration)

	// ErrInconsistentMetrics is returned when buckets of one result carry different metrics.
	ErrInconsistentMetrics = fmt.Errorf("%w: inconsistent metrics", ErrConfiguration)

	// ErrFeatureArity is returned when a combo occurrence has the wrong number of values.
	ErrFeatureArity = fmt.Errorf("%w: inconsistent number of features", ErrConfiguration)

	// ErrShapeMismatch is returned when statistics are not aligned with the cases.
	ErrShapeMismatch = fmt.Errorf("%w: statistics shape mismatch", ErrConfiguration)

	// ErrUnknownKind is returned when a cls_name is not recognized.
	ErrUnknownKind = fmt.Errorf("%w: unknown kind", ErrConfiguration)

	// ErrMissingConfidence is returned when a calibration bucket lacks its
	// accuracy or confidence value.
	ErrMissingConfidence = fmt.Errorf("%w: missing confidence", ErrConfiguration)

	// ErrInvalidOption is returned for option values out of range.
	ErrInvalidOption = fmt.Errorf("%w: invalid option", ErrConfiguration)
)

func configErr(err error) error {
	if err == nil || errors.Is(err, ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConfiguration, err)
}
