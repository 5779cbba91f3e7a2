/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package cases

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Interval is a closed numeric range [Low, High] labelling a bucket.
// It serializes as a two element array.
type Interval struct {
	Low  float64
	High float64
}

// Contains reports whether v lies in [Low, High), or [Low, High] when closed is set.
func (i Interval) Contains(v float64, closed bool) bool {
	if v < i.Low {
		return false
	}
	if closed {
		return v <= i.High
	}
	return v < i.High
}

// String renders the interval as "(low, high)".
func (i Interval) String() string {
	return fmt.Sprintf("(%s, %s)", FormatFloat(i.Low), FormatFloat(i.High))
}

// MarshalJSON implements json.Marshaler.
func (i Interval) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{i.Low, i.High})
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Interval) UnmarshalJSON(data []byte) error {
	var bounds []float64
	if err := json.Unmarshal(data, &bounds); err != nil {
		return err
	}
	if len(bounds) != 2 {
		return fmt.Errorf("interval must have 2 bounds, got %d", len(bounds))
	}
	i.Low, i.High = bounds[0], bounds[1]
	return nil
}

// Collection is a group of sample ids produced by one bucketing call.
// Exactly one of Interval and Name is the bucket's identity.
type Collection struct {
	Samples  []int     `json:"samples"`
	Interval *Interval `json:"interval,omitempty"`
	Name     string    `json:"name,omitempty"`
}

// Label returns the human readable identity of the bucket.
func (c Collection) Label() string {
	if c.Interval != nil {
		return c.Interval.String()
	}
	return c.Name
}

// Numeric converts a feature value to float64.
func Numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// EmptyValue is the rendering of an empty string value, which would
// otherwise leave a bucket without a name.
const EmptyValue = `""`

// FormatValue stringifies a feature value for use as a bucket name or combo key.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return EmptyValue
		}
		return x
	case float64:
		return FormatFloat(x)
	case float32:
		return FormatFloat(float64(x))
	case nil:
		return "None"
	}
	return fmt.Sprint(v)
}

// FormatFloat renders a float in its shortest form, keeping a trailing ".0"
// on integral values so that 1 and 1.0 do not render identically to ints.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
