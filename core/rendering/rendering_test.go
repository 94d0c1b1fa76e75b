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
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/selection"
	"github.com/google/tabula/core/views"
	"github.com/google/tabula/core/windowing"
)

type fruit struct {
	name  string
	price float64
}

var fruitColumns = []columns.Column[fruit]{
	{Key: "name", Title: "Name", Accessor: func(f fruit) any { return f.name }, Sortable: true},
	{Key: "price", Title: "Price", Accessor: func(f fruit) any { return f.price }, Hint: columns.HintNumeric, Align: columns.AlignRight, Sortable: true},
}

func fruits(n int) []fruit {
	out := make([]fruit, n)
	for i := range out {
		out[i] = fruit{name: fmt.Sprintf("fruit-%02d", i), price: float64(i) + 0.5}
	}
	return out
}

func newTable(records []fruit, pageSize int) *views.Table[fruit] {
	return views.New(views.Config[fruit]{
		Records:         records,
		Columns:         fruitColumns,
		RowID:           func(f fruit, _ int) string { return f.name },
		SelectionMode:   selection.ModeMultiple,
		PageSize:        pageSize,
		PageSizeOptions: []int{2, 5},
		WindowThreshold: -1,
	})
}

func linkQuery(t *testing.T, u fmt.Stringer) *query.Query {
	t.Helper()
	parsed, err := url.Parse(u.String())
	require.NoError(t, err)
	return query.NewQuery(parsed)
}

func TestNewPage(t *testing.T) {
	table := newTable(fruits(5), 2)
	require.True(t, table.HandleSort("price"))
	require.True(t, table.HandlePageChange(2))
	require.True(t, table.HandleSelect("fruit-02", true))

	p := NewPage("Fruits", table.Display(), query.FromTable("/", table))
	assert.Equal(t, "price", p.SortKey)
	assert.Equal(t, "asc", p.SortDir)
	assert.Equal(t, 2, p.PageSize)

	require.Len(t, p.Headers, 2)
	assert.Equal(t, "none", p.Headers[0].AriaSort)
	assert.Equal(t, "ascending", p.Headers[1].AriaSort)
	assert.Equal(t, "▲", p.Headers[1].Arrow)
	assert.Equal(t, "right", p.Headers[1].Class)
	assert.Equal(t, "price", linkQuery(t, p.Headers[1].SortURL).Sort)

	require.Len(t, p.Rows, 2)
	assert.Equal(t, "fruit-02", p.Rows[0].ID)
	assert.Equal(t, 3, p.Rows[0].Position)
	assert.True(t, p.Rows[0].Selected)
	assert.Equal(t, []string{"fruit-02"}, linkQuery(t, p.Rows[0].SelectURL).Deselect)
	assert.Equal(t, []string{"fruit-03"}, linkQuery(t, p.Rows[1].SelectURL).Select)
	assert.Equal(t, "2.5", p.Rows[0].Cells[1].Text)

	assert.Equal(t, Mixed, p.SelectAllState)
	all := linkQuery(t, p.SelectAllURL)
	require.NotNil(t, all.SelectAll)
	assert.True(t, *all.SelectAll)
	assert.Equal(t, 1, p.SelectedCount)

	assert.Equal(t, "Rows 3–4 of 5", p.Summary)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, 1, linkQuery(t, p.PrevURL).Page)
	assert.Equal(t, 3, linkQuery(t, p.NextURL).Page)
	require.Len(t, p.Pager, 3)
	assert.True(t, p.Pager[1].Current)
	require.Len(t, p.PageSizes, 2)
	assert.True(t, p.PageSizes[0].Current)
	sized := linkQuery(t, p.PageSizes[1].URL)
	assert.Equal(t, 5, sized.PageSize)
	assert.Equal(t, 1, sized.Page)
	assert.Empty(t, p.Message)
}

func TestNewPageMessages(t *testing.T) {
	empty := newTable(nil, 2)
	p := NewPage("t", empty.Display(), query.FromTable("/", empty))
	assert.Equal(t, "No records.", p.Message)
	assert.Equal(t, "0 rows", p.Summary)

	filtered := newTable(fruits(3), 2)
	require.True(t, filtered.SetFilter("kiwi"))
	p = NewPage("t", filtered.Display(), query.FromTable("/", filtered))
	assert.Equal(t, `No records match "kiwi".`, p.Message)

	invalid := views.New(views.Config[fruit]{Records: fruits(3)})
	p = NewPage("t", invalid.Display(), query.FromTable("/", invalid))
	assert.Contains(t, p.Message, "cannot be shown")
	assert.Empty(t, p.Rows)
}

func TestNewPageWindowed(t *testing.T) {
	table := views.New(views.Config[fruit]{
		Records:           fruits(80),
		Columns:           fruitColumns,
		DisablePagination: true,
		Viewport:          windowing.Viewport{Height: 360, RowHeight: 36, Overscan: 2},
	})
	require.True(t, table.ScrollTo(30))

	p := NewPage("t", table.Display(), query.FromTable("/", table))
	require.True(t, p.Windowed)
	assert.Equal(t, "Showing rows 29–42 of this page's 80", p.WindowNote)
	assert.Len(t, p.Rows, 14)
	assert.True(t, p.HasEarlier)
	assert.True(t, p.HasLater)
	assert.Equal(t, 20, linkQuery(t, p.EarlierURL).Scroll)
	assert.Equal(t, 40, linkQuery(t, p.LaterURL).Scroll)
	assert.False(t, p.Paginated)
	assert.Empty(t, p.Pager)
}

func TestHTMLRenderer(t *testing.T) {
	r, err := NewHTMLRenderer()
	require.NoError(t, err)

	records := append(fruits(3), fruit{name: "<b>bold</b>", price: 9})
	table := newTable(records, 5)
	require.True(t, table.HandleSort("name"))
	require.True(t, table.HandleSelect("fruit-01", true))

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewPage("Fruit stand", table.Display(), query.FromTable("/", table))))
	html := buf.String()

	assert.Contains(t, html, "<title>Fruit stand</title>")
	assert.Contains(t, html, `aria-sort="ascending"`)
	assert.Contains(t, html, `aria-checked="mixed"`)
	assert.Contains(t, html, `class="selected"`)
	assert.Contains(t, html, "fruit-02")
	assert.Contains(t, html, "&lt;b&gt;bold&lt;/b&gt;")
	assert.NotContains(t, html, "<b>bold</b>")
	assert.Contains(t, html, `name="sort" value="name"`)
	assert.Contains(t, html, "Rows 1–4 of 4")
	assert.Contains(t, html, "deselect=fruit-01")
}

func TestHTMLRendererInvalid(t *testing.T) {
	r, err := NewHTMLRenderer()
	require.NoError(t, err)
	table := views.New(views.Config[fruit]{Records: fruits(2)})

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewPage("t", table.Display(), query.FromTable("/", table))))
	assert.Contains(t, buf.String(), "message invalid")
	assert.Contains(t, buf.String(), "cannot be shown")
}

func TestRenderText(t *testing.T) {
	table := newTable(fruits(5), 2)
	require.True(t, table.HandleSort("price"))
	require.True(t, table.HandleToggle("fruit-00"))

	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, table.Display()))
	out := buf.String()

	assert.Contains(t, out, "Price ▲")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "fruit-01")
	assert.NotContains(t, out, "fruit-02")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "rows 1-2 of 5 · page 1/3 · 1 selected", lines[len(lines)-1])
}

func TestRenderTextInvalid(t *testing.T) {
	table := views.New(views.Config[fruit]{Records: fruits(2)})
	var buf bytes.Buffer
	require.NoError(t, RenderText(&buf, table.Display()))
	assert.True(t, strings.HasPrefix(buf.String(), "invalid table configuration: "))
}

func TestSummary(t *testing.T) {
	table := newTable(fruits(5), 2)
	require.True(t, table.SetFilter("fruit-0"))
	assert.Equal(t, "rows 1-2 of 5 · page 1/3 · 0 selected", Summary(table.Display()))

	require.True(t, table.SetFilter("fruit-04"))
	assert.Equal(t, "rows 1-1 of 1 (filtered from 5) · page 1/1 · 0 selected", Summary(table.Display()))

	require.True(t, table.SetFilter("none"))
	assert.Equal(t, `no rows match "none" · 0 selected`, Summary(table.Display()))
}
