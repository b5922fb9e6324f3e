// Package models defines the content model consumed by the chart builder and
// the document builder.
package models

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
)

// Record is one dataset row keyed by column name.
type Record map[string]interface{}

// Dataset is an ordered sequence of records.
type Dataset []Record

// HasColumn reports whether any record carries the column.
func (d Dataset) HasColumn(name string) bool {
	for _, rec := range d {
		if _, ok := rec[name]; ok {
			return true
		}
	}
	return false
}

// Columns returns column names in first-seen order. Keys within a single
// record are sorted since map order is not stable.
func (d Dataset) Columns() []string {
	seen := make(map[string]bool)
	var cols []string
	for _, rec := range d {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			if !seen[k] {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			seen[k] = true
			cols = append(cols, k)
		}
	}
	return cols
}

// Floats returns the numeric values of a column, one per record.
func (d Dataset) Floats(column string) ([]float64, error) {
	values := make([]float64, len(d))
	for i, rec := range d {
		raw, ok := rec[column]
		if !ok || raw == nil {
			return nil, reportfmt.NewValidationError(column, "row %d has no value", i+1)
		}
		v, ok := ToFloat(raw)
		if !ok {
			return nil, reportfmt.NewValidationError(column, "row %d value %v is not numeric", i+1, raw)
		}
		values[i] = v
	}
	return values, nil
}

// ToFloat converts a scalar cell value to float64.
// Numeric strings are accepted the same way spreadsheet cells are read.
// NaN and infinities are not numbers a chart can plot and are rejected.
func ToFloat(v interface{}) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// Mean returns the arithmetic mean of values (0 for an empty slice).
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
