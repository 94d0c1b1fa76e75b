/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package columns

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Comparators holds the built-in comparators for one language. The
// alphanumeric comparator collates with numeric ordering so "item 9" sorts
// before "item 10".
//
// A Comparators is not safe for concurrent use: the collator keeps internal
// buffers. Use one per table.
type Comparators struct {
	tag      language.Tag
	collator *collate.Collator
}

// NewComparators creates comparators for the given language tag.
// language.Und gives the root collation order.
func NewComparators(tag language.Tag) *Comparators {
	return &Comparators{
		tag:      tag,
		collator: collate.New(tag, collate.Numeric),
	}
}

// Language returns the collation language.
func (c *Comparators) Language() language.Tag {
	return c.tag
}

// Resolve returns the comparator for a column: the column's own Compare
// function if set, otherwise the one named by its Hint.
func Resolve[R any](c *Comparators, col Column[R]) CompareFunc {
	if col.Compare != nil {
		return col.Compare
	}
	return c.ForHint(col.Hint)
}

// ForHint returns the built-in comparator named by h.
func (c *Comparators) ForHint(h Hint) CompareFunc {
	switch h {
	case HintNumeric:
		return c.Numeric
	case HintDate:
		return c.Date
	default:
		return c.Alphanumeric
	}
}

// Alphanumeric compares the string forms of a and b with the collator.
// nil sorts after every other value.
func (c *Comparators) Alphanumeric(a, b any) int {
	if cmp, done := compareMissing(a == nil, b == nil); done {
		return cmp
	}
	return c.collator.CompareString(FormatValue(a), FormatValue(b))
}

// Numeric compares a and b as numbers. Values that are not numbers, and
// NaN, sort after every number.
func (c *Comparators) Numeric(a, b any) int {
	fa, okA := toFloat64(a)
	fb, okB := toFloat64(b)
	if !okA {
		fa = math.NaN()
	}
	if !okB {
		fb = math.NaN()
	}
	return compareFloat64s(fa, fb)
}

// Date compares a and b as points in time. Values that cannot be read as
// a time sort after every valid time.
func (c *Comparators) Date(a, b any) int {
	ta, okA := toTime(a)
	tb, okB := toTime(b)
	if cmp, done := compareMissing(!okA, !okB); done {
		return cmp
	}
	return compareTimes(ta, tb)
}

// compareMissing orders missing values after present ones. done is false
// when both are present and the caller must compare the values.
func compareMissing(aMissing, bMissing bool) (cmp int, done bool) {
	switch {
	case aMissing && bMissing:
		return 0, true
	case aMissing:
		return 1, true
	case bMissing:
		return -1, true
	}
	return 0, false
}

// compareTimes compares two time.Time values
func compareTimes(a, b time.Time) int {
	if a.Before(b) {
		return -1
	}
	if a.After(b) {
		return 1
	}
	return 0
}

// compareFloat64s compares two float64 values with NaN handling.
// NaN values are considered greater than all other values (sort to end).
func compareFloat64s(a, b float64) int {
	aNaN := math.IsNaN(a)
	bNaN := math.IsNaN(b)

	if aNaN && bNaN {
		return 0
	}
	if aNaN {
		return 1
	}
	if bNaN {
		return -1
	}

	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// toFloat64 converts numeric values, bools and numeric strings.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
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
	case time.Duration:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
	time.DateOnly,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// toTime converts times, date strings and unix milliseconds.
func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}
	if ms, ok := toFloat64(v); ok && !math.IsNaN(ms) {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}
