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

// Package sorting derives stably sorted copies of a record set from a
// single-column sort directive.
package sorting

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/logging"
)

var (
	ErrUnknownColumn = errors.New("unknown sort column")
	ErrNotSortable   = errors.New("column is not sortable")
)

// Engine sorts records of type R. It is not safe for concurrent use
// because the comparators are not.
type Engine[R any] struct {
	comparators *columns.Comparators
	logger      logging.Logger
}

// NewEngine creates a sort engine. A nil logger discards diagnostics.
func NewEngine[R any](comparators *columns.Comparators, logger logging.Logger) *Engine[R] {
	return &Engine[R]{
		comparators: comparators,
		logger:      logging.OrNoOp(logger),
	}
}

// Check reports whether the directive can be applied to the column set.
// Inactive directives always can.
func Check[R any](d Directive, cols []columns.Column[R]) error {
	if !d.Active() {
		return nil
	}
	col, ok := columns.Find(cols, d.ColumnKey)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownColumn, d.ColumnKey)
	}
	if !col.Sortable {
		return fmt.Errorf("%w: %q", ErrNotSortable, d.ColumnKey)
	}
	return nil
}

// Sort returns records ordered by the directive. Inactive directives and
// directives naming an unknown or non-sortable column return records
// unchanged; the latter log a diagnostic. Otherwise the result is a new
// slice and records is not modified.
func (e *Engine[R]) Sort(records []R, d Directive, cols []columns.Column[R]) []R {
	return sortBy(e, records, func(r R) R { return r }, d, cols)
}

// SortRows is Sort for rows carrying identities.
func (e *Engine[R]) SortRows(rows []columns.Row[R], d Directive, cols []columns.Column[R]) []columns.Row[R] {
	return sortBy(e, rows, func(r columns.Row[R]) R { return r.Record }, d, cols)
}

// sortBy sorts items by the accessor value of the directive's column. Values
// are extracted once; the permutation is sorted stably and descending order
// swaps comparator arguments so ties keep their input order in both
// directions.
func sortBy[T, R any](e *Engine[R], items []T, record func(T) R, d Directive, cols []columns.Column[R]) []T {
	if !d.Active() {
		return items
	}
	if err := Check(d, cols); err != nil {
		e.logger.WithFields(map[string]any{"column": d.ColumnKey}).Warn("sort skipped: %v", err)
		return items
	}
	col, _ := columns.Find(cols, d.ColumnKey)
	cmp := columns.Resolve(e.comparators, col)

	values := make([]any, len(items))
	for i, item := range items {
		values[i] = col.Value(record(item))
	}
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	descending := d.Direction == Descending
	slices.SortStableFunc(order, func(i, j int) int {
		if descending {
			return cmp(values[j], values[i])
		}
		return cmp(values[i], values[j])
	})

	sorted := make([]T, len(items))
	for k, i := range order {
		sorted[k] = items[i]
	}
	return sorted
}
