/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package metric

import (
	"errors"
	"fmt"
	"slices"
)

// ErrIndexOutOfRange is returned when filtering by an id with no row.
var ErrIndexOutOfRange = errors.New("sample id out of range")

// Stats is a table of per-example sufficient statistics.
type Stats interface {
	// Len is the number of examples.
	Len() int
	// Width is the number of statistics per example.
	Width() int
	// Row returns the statistics of example i.
	Row(i int) []float64
	// Column returns statistic j for every example.
	Column(j int) []float64
	// Filter returns a new table holding the rows at ids, in order.
	Filter(ids []int) (Stats, error)
}

// SimpleStats is an in-memory Stats.
type SimpleStats struct {
	rows  [][]float64
	width int
}

var _ Stats = (*SimpleStats)(nil)

// NewSimpleStats builds a table from rows, which must all be the same width.
func NewSimpleStats(rows [][]float64) (*SimpleStats, error) {
	s := &SimpleStats{rows: make([][]float64, len(rows))}
	for i, row := range rows {
		if i == 0 {
			s.width = len(row)
		} else if len(row) != s.width {
			return nil, fmt.Errorf("%w: row %d has %d columns, wanted %d", ErrStatsMismatch, i, len(row), s.width)
		}
		s.rows[i] = slices.Clone(row)
	}
	return s, nil
}

// NewColumnStats builds a single statistic table from one value per example.
func NewColumnStats(values []float64) *SimpleStats {
	s := &SimpleStats{rows: make([][]float64, len(values)), width: 1}
	for i, v := range values {
		s.rows[i] = []float64{v}
	}
	return s
}

// Len implements Stats.
func (s *SimpleStats) Len() int { return len(s.rows) }

// Width implements Stats.
func (s *SimpleStats) Width() int { return s.width }

// Row implements Stats.
func (s *SimpleStats) Row(i int) []float64 { return slices.Clone(s.rows[i]) }

// Column implements Stats.
func (s *SimpleStats) Column(j int) []float64 {
	out := make([]float64, len(s.rows))
	for i, row := range s.rows {
		out[i] = row[j]
	}
	return out
}

// Filter implements Stats.
func (s *SimpleStats) Filter(ids []int) (Stats, error) {
	out := &SimpleStats{rows: make([][]float64, len(ids)), width: s.width}
	for i, id := range ids {
		if id < 0 || id >= len(s.rows) {
			return nil, fmt.Errorf("%w: %d (have %d rows)", ErrIndexOutOfRange, id, len(s.rows))
		}
		out.rows[i] = slices.Clone(s.rows[id])
	}
	return out, nil
}
