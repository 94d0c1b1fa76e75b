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

package views

import (
	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/pagination"
	"github.com/google/tabula/core/selection"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/windowing"
)

// Status summarizes whether a snapshot has rows to show.
type Status int

const (
	StatusReady Status = iota
	// StatusEmpty means the configuration is valid but the working set
	// has no rows.
	StatusEmpty
	// StatusInvalidConfig means Err holds a configuration error and no
	// rows were derived.
	StatusInvalidConfig
	// StatusFailed means a column callback panicked during recompute.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusInvalidConfig:
		return "invalid"
	case StatusFailed:
		return "failed"
	default:
		return "ready"
	}
}

// ViewModel is an immutable snapshot of a table. Renderers read it and
// never modify it; every mutation of the table publishes a new one.
type ViewModel[R any] struct {
	// Version increases with every recompute.
	Version uint64
	Status  Status
	Err     error

	Columns []columns.Column[R]
	Sort    sorting.Directive
	Filter  string

	// TotalRecords counts the records before filtering.
	TotalRecords int
	// Processed is the working set: filtered and sorted.
	Processed []columns.Row[R]
	// Paged is the current page of Processed.
	Paged []columns.Row[R]
	// Visible is the windowed part of Paged. It equals Paged when
	// Windowed is false.
	Visible []columns.Row[R]

	Page            pagination.Page
	PageSizeOptions []int
	Paginated       bool

	Viewport windowing.Viewport
	Windowed bool
	// Window is the range of Paged held in Visible.
	Window windowing.Range

	Mode selection.Mode
	selection.Summary
	// Selected are the selected rows of the working set in working-set
	// order.
	Selected []columns.Row[R]

	selected map[string]bool
}

// IsSelected reports whether the row with identity id is selected.
func (vm *ViewModel[R]) IsSelected(id string) bool {
	return vm.selected[id]
}

// WorkingSetIndex returns the position in Processed of the i-th visible
// row.
func (vm *ViewModel[R]) WorkingSetIndex(i int) int {
	return vm.Page.Offset + vm.Window.Start + i
}

// OffsetBefore is the spacer height above the visible rows.
func (vm *ViewModel[R]) OffsetBefore() int {
	if !vm.Windowed {
		return 0
	}
	return vm.Viewport.OffsetBefore(vm.Window)
}

// OffsetAfter is the spacer height below the visible rows.
func (vm *ViewModel[R]) OffsetAfter() int {
	if !vm.Windowed {
		return 0
	}
	return vm.Viewport.OffsetAfter(vm.Window, len(vm.Paged))
}
