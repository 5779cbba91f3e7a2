/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package params provides typed extraction from the generic mappings produced
// by decoding persisted JSON or YAML (map[string]any), smoothing over the
// numeric representations each decoder picks.
package params
