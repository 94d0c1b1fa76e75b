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
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/views"
)

func tableAlign(a columns.Align) int {
	switch a {
	case columns.AlignCenter:
		return tablewriter.ALIGN_CENTER
	case columns.AlignRight:
		return tablewriter.ALIGN_RIGHT
	default:
		return tablewriter.ALIGN_LEFT
	}
}

// RenderText writes the visible rows of d as an ASCII table followed by a
// summary line.
func RenderText(w io.Writer, d *views.Display) error {
	switch d.Status {
	case views.StatusInvalidConfig.String():
		_, err := fmt.Fprintf(w, "invalid table configuration: %s\n", d.Error)
		return err
	case views.StatusFailed.String():
		_, err := fmt.Fprintf(w, "table failed: %s\n", d.Error)
		return err
	}

	selectable := d.Selection.Enabled()
	var (
		headers []string
		aligns  []int
	)
	if selectable {
		headers = append(headers, "")
		aligns = append(aligns, tablewriter.ALIGN_CENTER)
	}
	for _, h := range d.Headers {
		title := h.Title
		if a := arrow(h.Direction); a != "" {
			title += " " + a
		}
		headers = append(headers, title)
		aligns = append(aligns, tableAlign(h.Align))
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetColumnAlignment(aligns)
	for _, r := range d.Rows {
		row := make([]string, 0, len(headers))
		if selectable {
			mark := "[ ]"
			if r.Selected {
				mark = "[x]"
			}
			row = append(row, mark)
		}
		for _, c := range r.Cells {
			row = append(row, c.Text)
		}
		table.Append(row)
	}
	table.Render()

	_, err := fmt.Fprintln(w, Summary(d))
	return err
}

// Summary describes the rows, page and selection of d in one line.
func Summary(d *views.Display) string {
	pg := d.Page
	var parts []string
	switch {
	case d.TotalRecords == 0:
		parts = append(parts, "no records")
	case d.WorkingSet == 0:
		parts = append(parts, fmt.Sprintf("no rows match %q", d.Filter))
	default:
		s := fmt.Sprintf("rows %d-%d of %d", pg.StartItem, pg.EndItem, pg.TotalItems)
		if d.WorkingSet != d.TotalRecords {
			s += fmt.Sprintf(" (filtered from %d)", d.TotalRecords)
		}
		parts = append(parts, s)
	}
	if d.Paginated && d.WorkingSet > 0 {
		parts = append(parts, fmt.Sprintf("page %d/%d", pg.CurrentPage, pg.TotalPages))
	}
	if d.Windowed {
		parts = append(parts, fmt.Sprintf("showing %d-%d", d.Page.Offset+d.WindowStart+1, d.Page.Offset+d.WindowEnd+1))
	}
	if d.Selection.Enabled() {
		parts = append(parts, fmt.Sprintf("%d selected", d.Selection.Count))
	}
	return strings.Join(parts, " · ")
}
