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
	"github.com/google/tabula/core/pagination"
	"github.com/google/tabula/core/sorting"
)

// Handles are the mutators a rendering collaborator may call. They do not
// depend on the record type, so a header or pager can be written once for
// every table. Each reports whether the table changed.
type Handles struct {
	Sort           func(key string) bool
	Select         func(id string, selected bool) bool
	Toggle         func(id string) bool
	SelectAll      func(on bool) bool
	ClearSelection func() bool
	PageChange     func(page int) bool
	PageSizeChange func(size int) bool
	Filter         func(text string) bool
	ScrollTo       func(index int) bool
}

// Handles returns the table's mutators bound to t.
func (t *Table[R]) Handles() Handles {
	return Handles{
		Sort:           t.HandleSort,
		Select:         t.HandleSelect,
		Toggle:         t.HandleToggle,
		SelectAll:      t.HandleSelectAll,
		ClearSelection: t.ClearSelection,
		PageChange:     t.HandlePageChange,
		PageSizeChange: t.HandlePageSizeChange,
		Filter:         t.SetFilter,
		ScrollTo:       t.ScrollTo,
	}
}

// Controller is implemented by every Table regardless of record type.
type Controller interface {
	HandleSort(key string) bool
	SetSort(d sorting.Directive) bool
	HandleSelect(id string, selected bool) bool
	HandleToggle(id string) bool
	HandleSelectAll(on bool) bool
	ClearSelection() bool
	HandlePageChange(page int) bool
	HandlePageSizeChange(size int) bool
	HandlePageSizeChangeAt(size, page int) bool
	SetFilter(text string) bool
	ScrollTo(index int) bool
	Directive() sorting.Directive
	Filter() string
	PageState() pagination.State
	Display() *Display
}

// Display flattens the current snapshot.
func (t *Table[R]) Display() *Display {
	return t.vm.Display()
}

var _ Controller = (*Table[struct{}])(nil)
