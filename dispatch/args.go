// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dispatch

import (
	"encoding/json"
	"math"
)

// Args are the key/value arguments of an operation. Values typically come
// from a JSON decoder, so numbers may be float64 or json.Number.
type Args map[string]any

// Int returns an integer argument. ok is false when the key is missing or
// the value is not an integral number.
func (a Args) Int(key string) (v int64, ok bool) {
	raw, present := a[key]
	if !present {
		return 0, false
	}
	switch n := raw.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

// Float returns a numeric argument. ok is false when the key is missing or
// the value is not a number.
func (a Args) Float(key string) (v float64, ok bool) {
	raw, present := a[key]
	if !present {
		return 0, false
	}
	switch n := raw.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// String returns a string argument. ok is false when the key is missing or
// the value is not a string.
func (a Args) String(key string) (v string, ok bool) {
	s, ok := a[key].(string)
	return s, ok
}

// IntOr returns the integer argument, or def when it is missing or invalid.
func (a Args) IntOr(key string, def int64) int64 {
	if v, ok := a.Int(key); ok {
		return v
	}
	return def
}

// FloatOr returns the numeric argument, or def when it is missing or invalid.
func (a Args) FloatOr(key string, def float64) float64 {
	if v, ok := a.Float(key); ok {
		return v
	}
	return def
}
