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

// PagerSize is the number of page links shown by pagers.
const PagerSize = 7

// Display is the view model flattened to text for renderers that do not
// know the record type.
type Display struct {
	Status string
	Error  string
	Filter string

	Headers []Header
	Rows    []DisplayRow

	TotalRecords int
	WorkingSet   int

	Page            pagination.Page
	Paginated       bool
	Pager           []int // 0 marks a gap
	PageSizeOptions []int

	Selection SelectionInfo

	// Window bounds are 0-based and inclusive positions in the page.
	Windowed     bool
	WindowStart  int
	WindowEnd    int
	OffsetBefore int
	OffsetAfter  int
	// ScrollIndex is the page row at the top of the viewport.
	ScrollIndex int
	VisibleRows int
	PageRows    int
}

// Header describes one column header.
type Header struct {
	Key       string
	Title     string
	Align     columns.Align
	Width     int
	Sortable  bool
	Direction sorting.Direction
}

// DisplayRow is one rendered row.
type DisplayRow struct {
	ID string
	// Position is the 1-based position in the working set.
	Position int
	Selected bool
	Cells    []Cell
}

// Cell is one formatted cell.
type Cell struct {
	Key   string
	Text  string
	Align columns.Align
}

// SelectionInfo is the selection state as the select-all control reads it.
type SelectionInfo struct {
	Mode              selection.Mode
	Count             int
	AllSelected       bool
	PartiallySelected bool
}

// Enabled reports whether rows can be selected.
func (s SelectionInfo) Enabled() bool { return s.Mode != selection.ModeNone }

// Multiple reports whether the select-all control applies.
func (s SelectionInfo) Multiple() bool { return s.Mode == selection.ModeMultiple }

// Display flattens the snapshot. Cells are formatted with each column's
// Text; a renderer that panics yields columns.ErrorLabel.
func (vm *ViewModel[R]) Display() *Display {
	d := &Display{
		Status:          vm.Status.String(),
		Filter:          vm.Filter,
		TotalRecords:    vm.TotalRecords,
		WorkingSet:      len(vm.Processed),
		Page:            vm.Page,
		Paginated:       vm.Paginated,
		Pager:           vm.Page.Window(PagerSize),
		PageSizeOptions: vm.PageSizeOptions,
		Selection: SelectionInfo{
			Mode:              vm.Mode,
			Count:             vm.Count,
			AllSelected:       vm.AllSelected,
			PartiallySelected: vm.PartiallySelected,
		},
		Windowed:     vm.Windowed,
		WindowStart:  vm.Window.Start,
		WindowEnd:    vm.Window.End,
		OffsetBefore: vm.OffsetBefore(),
		OffsetAfter:  vm.OffsetAfter(),
		PageRows:     len(vm.Paged),
	}
	if vm.Windowed {
		d.ScrollIndex = min(vm.Viewport.ScrollIndex(), max(len(vm.Paged)-1, 0))
		d.VisibleRows = windowing.VisibleCount(vm.Viewport.Height, vm.Viewport.RowHeight)
	}
	if vm.Err != nil {
		d.Error = vm.Err.Error()
	}
	for _, c := range vm.Columns {
		d.Headers = append(d.Headers, Header{
			Key:       c.Key,
			Title:     c.DisplayName(),
			Align:     c.Align,
			Width:     c.Width,
			Sortable:  c.Sortable,
			Direction: vm.Sort.For(c.Key),
		})
	}
	if vm.Status == StatusInvalidConfig || vm.Status == StatusFailed {
		return d
	}
	d.Rows = make([]DisplayRow, len(vm.Visible))
	for i, row := range vm.Visible {
		cells := make([]Cell, len(vm.Columns))
		for j, c := range vm.Columns {
			cells[j] = Cell{Key: c.Key, Text: cellText(c, row), Align: c.Align}
		}
		d.Rows[i] = DisplayRow{
			ID:       row.ID,
			Position: vm.WorkingSetIndex(i) + 1,
			Selected: vm.IsSelected(row.ID),
			Cells:    cells,
		}
	}
	return d
}

func cellText[R any](c columns.Column[R], row columns.Row[R]) (text string) {
	defer func() {
		if recover() != nil {
			text = columns.ErrorLabel
		}
	}()
	return c.Text(row.Record, row.SourceIndex)
}
