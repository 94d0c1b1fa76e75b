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

package rendering

import (
	"fmt"

	"github.com/google/safehtml"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/views"
)

// Checkbox states, as used by aria-checked.
const (
	Checked   = "true"
	Unchecked = "false"
	Mixed     = "mixed"
)

// Page is the template model of a table page. Every link carries the
// complete view state.
type Page struct {
	Title   string
	Status  string
	Message string

	// The filter form resubmits the sort and page size.
	Filter       string
	FilterAction safehtml.URL
	SortKey      string
	SortDir      string
	PageSize     int

	Headers []HeaderView
	Rows    []RowView

	Selectable     bool
	Multiple       bool
	SelectAllState string
	SelectAllURL   safehtml.URL
	SelectedCount  int
	ClearURL       safehtml.URL

	Summary   string
	Paginated bool
	PrevURL   safehtml.URL
	NextURL   safehtml.URL
	HasPrev   bool
	HasNext   bool
	Pager     []PagerLink
	PageSizes []SizeLink

	Windowed   bool
	WindowNote string
	HasEarlier bool
	HasLater   bool
	EarlierURL safehtml.URL
	LaterURL   safehtml.URL
}

// HeaderView is one column header.
type HeaderView struct {
	Title    string
	Class    string
	Sortable bool
	SortURL  safehtml.URL
	// AriaSort is "ascending", "descending" or "none".
	AriaSort string
	Arrow    string
}

// RowView is one table row.
type RowView struct {
	ID        string
	Position  int
	Selected  bool
	SelectURL safehtml.URL
	Cells     []CellView
}

// CellView is one table cell.
type CellView struct {
	Text  string
	Class string
}

// PagerLink is one entry of the pager. Gap entries have no link.
type PagerLink struct {
	Number  int
	Gap     bool
	Current bool
	URL     safehtml.URL
}

// SizeLink offers one page size.
type SizeLink struct {
	Size    int
	Current bool
	URL     safehtml.URL
}

func alignClass(a columns.Align) string {
	switch a {
	case columns.AlignCenter:
		return "center"
	case columns.AlignRight:
		return "right"
	default:
		return "left"
	}
}

func arrow(d sorting.Direction) string {
	switch d {
	case sorting.Ascending:
		return "▲"
	case sorting.Descending:
		return "▼"
	default:
		return ""
	}
}

// NewPage builds the template model for d. q describes the current view
// state and is the base of every link.
func NewPage(title string, d *views.Display, q *query.Query) *Page {
	p := &Page{
		Title:        title,
		Status:       d.Status,
		Filter:       d.Filter,
		FilterAction: safehtml.URLSanitized(q.Path),
		PageSize:     q.PageSize,
		Selectable:   d.Selection.Enabled(),
		Multiple:     d.Selection.Multiple(),
		Paginated:    d.Paginated,
	}

	if sd := q.Directive(); sd.Active() {
		p.SortKey, p.SortDir = sd.ColumnKey, sd.Direction.Short()
	}

	for _, h := range d.Headers {
		p.Headers = append(p.Headers, HeaderView{
			Title:    h.Title,
			Class:    alignClass(h.Align),
			Sortable: h.Sortable,
			SortURL:  q.WithSort(h.Key),
			AriaSort: h.Direction.String(),
			Arrow:    arrow(h.Direction),
		})
	}

	switch d.Status {
	case views.StatusInvalidConfig.String():
		p.Message = "This table cannot be shown: " + d.Error
		return p
	case views.StatusFailed.String():
		p.Message = "This table failed to render."
		return p
	case views.StatusEmpty.String():
		p.Message = "No records."
		if d.TotalRecords > 0 {
			p.Message = fmt.Sprintf("No records match %q.", d.Filter)
		}
	}

	for _, r := range d.Rows {
		row := RowView{
			ID:        r.ID,
			Position:  r.Position,
			Selected:  r.Selected,
			SelectURL: q.WithSelected(r.ID, !r.Selected),
		}
		for _, c := range r.Cells {
			row.Cells = append(row.Cells, CellView{Text: c.Text, Class: alignClass(c.Align)})
		}
		p.Rows = append(p.Rows, row)
	}

	sel := d.Selection
	p.SelectedCount = sel.Count
	p.ClearURL = q.WithClear()
	switch {
	case sel.AllSelected:
		p.SelectAllState = Checked
	case sel.PartiallySelected:
		p.SelectAllState = Mixed
	default:
		p.SelectAllState = Unchecked
	}
	p.SelectAllURL = q.WithSelectAll(!sel.AllSelected)

	pg := d.Page
	switch {
	case d.WorkingSet == 0:
		p.Summary = "0 rows"
	case d.WorkingSet == d.TotalRecords:
		p.Summary = fmt.Sprintf("Rows %d–%d of %d", pg.StartItem, pg.EndItem, pg.TotalItems)
	default:
		p.Summary = fmt.Sprintf("Rows %d–%d of %d (filtered from %d)", pg.StartItem, pg.EndItem, pg.TotalItems, d.TotalRecords)
	}
	if d.Paginated {
		p.HasPrev, p.HasNext = pg.HasPrevious, pg.HasNext
		p.PrevURL = q.WithPage(pg.CurrentPage - 1)
		p.NextURL = q.WithPage(pg.CurrentPage + 1)
		for _, n := range d.Pager {
			link := PagerLink{Number: n, Gap: n == 0, Current: n == pg.CurrentPage}
			if !link.Gap {
				link.URL = q.WithPage(n)
			}
			p.Pager = append(p.Pager, link)
		}
		for _, size := range d.PageSizeOptions {
			p.PageSizes = append(p.PageSizes, SizeLink{
				Size:    size,
				Current: size == pg.PageSize,
				URL:     q.WithPageSize(size),
			})
		}
	}

	if d.Windowed {
		p.Windowed = true
		p.WindowNote = fmt.Sprintf("Showing rows %d–%d of this page's %d", d.WindowStart+1, d.WindowEnd+1, d.PageRows)
		step := max(d.VisibleRows, 1)
		p.HasEarlier = d.WindowStart > 0
		p.HasLater = d.WindowEnd < d.PageRows-1
		p.EarlierURL = q.WithScroll(max(d.ScrollIndex-step, 0))
		p.LaterURL = q.WithScroll(min(d.ScrollIndex+step, d.PageRows-1))
	}
	return p
}
