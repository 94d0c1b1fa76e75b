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

package selection

import "github.com/google/tabula/core/columns"

// Engine applies a Selection to records of type R, resolving identities
// with a RowIDFunc.
type Engine[R any] struct {
	sel      *Selection
	identify columns.RowIDFunc[R]
}

// NewEngine creates an engine over sel. A nil identify uses the input
// position.
func NewEngine[R any](sel *Selection, identify columns.RowIDFunc[R]) *Engine[R] {
	if identify == nil {
		identify = columns.IndexRowID[R]
	}
	return &Engine[R]{sel: sel, identify: identify}
}

// Selection returns the underlying key set.
func (e *Engine[R]) Selection() *Selection {
	return e.sel
}

// ID resolves the identity of record at input position index.
func (e *Engine[R]) ID(record R, index int) string {
	return e.identify(record, index)
}

func (e *Engine[R]) Select(record R, index int) bool {
	return e.sel.Select(e.identify(record, index))
}

func (e *Engine[R]) Deselect(record R, index int) bool {
	return e.sel.Deselect(e.identify(record, index))
}

func (e *Engine[R]) Toggle(record R, index int) bool {
	return e.sel.Toggle(e.identify(record, index))
}

func (e *Engine[R]) IsSelected(record R, index int) bool {
	return e.sel.IsSelected(e.identify(record, index))
}

// SelectAll selects or clears the whole working set.
func (e *Engine[R]) SelectAll(workingSet []columns.Row[R], on bool) bool {
	return e.sel.SelectAll(columns.IDs(workingSet), on)
}

// Clear deselects everything.
func (e *Engine[R]) Clear() bool {
	return e.sel.Clear()
}

// Summarize computes the tri-state over the working set.
func (e *Engine[R]) Summarize(workingSet []columns.Row[R]) Summary {
	return e.sel.Summarize(columns.IDs(workingSet))
}

// Selected returns the working-set rows that are selected, in working-set
// order.
func (e *Engine[R]) Selected(workingSet []columns.Row[R]) []columns.Row[R] {
	var out []columns.Row[R]
	for _, row := range workingSet {
		if e.sel.IsSelected(row.ID) {
			out = append(out, row)
		}
	}
	return out
}
