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

// Package columns defines the schema every engine and renderer agrees on:
// column definitions, comparators and row identity.
package columns

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoColumns    = errors.New("no columns defined")
	ErrEmptyKey     = errors.New("column key is empty")
	ErrDuplicateKey = errors.New("duplicate column key")
	ErrNilAccessor  = errors.New("column has no accessor")
)

// Align is the horizontal alignment of a column's cells.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlign parses "left", "center" or "right". The empty string is left.
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "left", "start":
		return AlignLeft, nil
	case "center":
		return AlignCenter, nil
	case "right", "end":
		return AlignRight, nil
	}
	return AlignLeft, fmt.Errorf("unknown alignment %q", s)
}

// Hint names a built-in comparator.
type Hint int

const (
	HintAlphanumeric Hint = iota
	HintNumeric
	HintDate
)

func (h Hint) String() string {
	switch h {
	case HintNumeric:
		return "numeric"
	case HintDate:
		return "date"
	default:
		return "alphanumeric"
	}
}

// ParseHint parses a comparator hint name. The empty string is alphanumeric.
func ParseHint(s string) (Hint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "alphanumeric", "string", "text":
		return HintAlphanumeric, nil
	case "numeric", "number":
		return HintNumeric, nil
	case "date", "datetime", "time":
		return HintDate, nil
	}
	return HintAlphanumeric, fmt.Errorf("unknown comparator hint %q", s)
}

// CompareFunc orders two accessor values: negative if a < b, zero if equal,
// positive if a > b.
type CompareFunc func(a, b any) int

// Column describes one column of a table over records of type R.
type Column[R any] struct {
	// Key identifies the column. Unique within a column set.
	Key string
	// Title is the header text. Defaults to Key.
	Title string
	// Accessor extracts the cell value from a record.
	Accessor func(R) any
	// Compare overrides Hint when set.
	Compare CompareFunc
	Hint    Hint

	Sortable bool
	Align    Align
	// Width is a rendering hint in characters (0 = auto).
	Width int

	// Render produces the cell text instead of the default formatting.
	Render func(record R, index int) string
}

// DisplayName returns the header text.
func (c Column[R]) DisplayName() string {
	if c.Title == "" {
		return c.Key
	}
	return c.Title
}

// Value returns the accessor output for r, or nil without an accessor.
func (c Column[R]) Value(r R) any {
	if c.Accessor == nil {
		return nil
	}
	return c.Accessor(r)
}

// Text returns the display text of the cell for r. index is the record's
// position in the caller's input.
func (c Column[R]) Text(r R, index int) string {
	if c.Render != nil {
		return c.Render(r, index)
	}
	return FormatValue(c.Value(r))
}

// Validate checks a column set: it must be non-empty, every key must be
// non-empty and unique, and every column needs an accessor.
func Validate[R any](cols []Column[R]) error {
	if len(cols) == 0 {
		return ErrNoColumns
	}
	seen := make(map[string]bool, len(cols))
	for i, c := range cols {
		if c.Key == "" {
			return fmt.Errorf("column %d: %w", i, ErrEmptyKey)
		}
		if seen[c.Key] {
			return fmt.Errorf("column %q: %w", c.Key, ErrDuplicateKey)
		}
		seen[c.Key] = true
		if c.Accessor == nil {
			return fmt.Errorf("column %q: %w", c.Key, ErrNilAccessor)
		}
	}
	return nil
}

// Find returns the column with the given key.
func Find[R any](cols []Column[R], key string) (Column[R], bool) {
	for _, c := range cols {
		if c.Key == key {
			return c, true
		}
	}
	return Column[R]{}, false
}

// Keys returns the column keys in order.
func Keys[R any](cols []Column[R]) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

// Index maps column keys to their positions. Later duplicates win.
func Index[R any](cols []Column[R]) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c.Key] = i
	}
	return idx
}
