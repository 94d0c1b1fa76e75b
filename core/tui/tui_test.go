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

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/selection"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/views"
)

type item struct {
	name string
	n    int
}

func newTable(n int) *views.Table[item] {
	records := make([]item, n)
	for i := range records {
		records[i] = item{name: fmt.Sprintf("item-%02d", i), n: n - i}
	}
	return views.New(views.Config[item]{
		Records: records,
		Columns: []columns.Column[item]{
			{Key: "name", Accessor: func(r item) any { return r.name }, Sortable: true},
			{Key: "n", Accessor: func(r item) any { return r.n }, Hint: columns.HintNumeric, Align: columns.AlignRight, Sortable: true},
		},
		RowID:           func(r item, _ int) string { return r.name },
		SelectionMode:   selection.ModeMultiple,
		PageSize:        10,
		PageSizeOptions: []int{5, 10, 20},
		WindowThreshold: 1,
	})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

// newModel returns a model sized to show five rows.
func newModel(t *testing.T, table *views.Table[item]) Model {
	t.Helper()
	m, _ := update(New(table, Options{Title: "Items"}), tea.WindowSizeMsg{Width: 80, Height: 10})
	return m
}

func TestResize(t *testing.T) {
	table := newTable(30)
	newModel(t, table)

	vp := table.Viewport()
	assert.Equal(t, 5, vp.Height)
	assert.Equal(t, 1, vp.RowHeight)
	assert.Equal(t, 0, vp.Overscan)
	d := table.Display()
	require.True(t, d.Windowed)
	assert.Len(t, d.Rows, 5)
}

func TestCursorScrolls(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)

	for range 6 {
		m, _ = update(m, runes("j"))
	}
	assert.Equal(t, 6, m.cursor)
	d := table.Display()
	assert.Equal(t, 2, d.ScrollIndex)
	assert.Equal(t, 2, d.WindowStart)
	assert.Equal(t, 6, d.WindowEnd)

	for range 8 {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	}
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, 0, table.Display().ScrollIndex)

	for range 20 {
		m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 9, m.cursor, "the cursor stays on the page")
}

func TestSortFocusedColumn(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)

	m, _ = update(m, runes("s"))
	assert.Equal(t, sorting.Directive{ColumnKey: "name", Direction: sorting.Ascending}, table.Directive())

	m, _ = update(m, runes("l"), runes("l"), runes("s"))
	assert.Equal(t, 1, m.column, "focus stops at the last column")
	assert.Equal(t, sorting.Directive{ColumnKey: "n", Direction: sorting.Ascending}, table.Directive())
	assert.Equal(t, "item-29", table.Display().Rows[0].ID)

	update(m, runes("s"))
	assert.Equal(t, sorting.Descending, table.Directive().Direction)
}

func TestSelection(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)

	m, _ = update(m, runes("j"), runes("x"))
	assert.Equal(t, []string{"item-01"}, table.SelectionKeys())
	assert.Contains(t, m.View(), "[x]")
	assert.Contains(t, m.View(), "[-]")

	m, _ = update(m, runes("a"))
	assert.Len(t, table.SelectionKeys(), 30)
	m, _ = update(m, runes("a"))
	assert.Empty(t, table.SelectionKeys())

	m, _ = update(m, runes("x"), runes("c"))
	assert.Empty(t, table.SelectionKeys())
}

func TestPaging(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)

	m, _ = update(m, runes("j"), runes("n"))
	assert.Equal(t, 2, table.PageState().CurrentPage)
	assert.Equal(t, 0, m.cursor)
	assert.Equal(t, "item-10", table.Display().Rows[0].ID)

	m, _ = update(m, runes("p"))
	assert.Equal(t, 1, table.PageState().CurrentPage)

	m, _ = update(m, runes("+"))
	assert.Equal(t, 20, table.PageState().PageSize)
	m, _ = update(m, runes("+"))
	assert.Equal(t, 20, table.PageState().PageSize, "no larger option")
	m, _ = update(m, runes("-"), runes("-"))
	assert.Equal(t, 5, table.PageState().PageSize)
	update(m, runes("-"))
	assert.Equal(t, 5, table.PageState().PageSize)
}

func TestFilterDebounce(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)

	m, _ = update(m, runes("/"))
	require.True(t, m.filtering)

	m, cmd := update(m, runes("item-2"))
	assert.NotNil(t, cmd, "typing schedules the filter")
	assert.Empty(t, table.Filter(), "typing alone does not filter")

	m, _ = update(m, applyFilterMsg{seq: m.filterSeq - 1})
	assert.Empty(t, table.Filter(), "stale ticks are ignored")

	m, _ = update(m, applyFilterMsg{seq: m.filterSeq})
	assert.Equal(t, "item-2", table.Filter())
	assert.Equal(t, 10, table.Display().WorkingSet)
	assert.True(t, m.filtering, "the input stays open")

	m, _ = update(m, runes("9"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.filtering)
	assert.Equal(t, "item-2", table.Filter(), "escape discards pending input")
	assert.Equal(t, "item-2", m.filter.Value())

	m, _ = update(m, runes("/"), runes("9"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filtering)
	assert.Equal(t, "item-29", table.Filter(), "enter applies at once")
	assert.Contains(t, m.View(), "filter: item-29")
}

func TestView(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)
	m, _ = update(m, runes("s"))

	view := m.View()
	lines := strings.Split(view, "\n")
	assert.Contains(t, lines[0], "Items")
	assert.Contains(t, view, "name ▲")
	assert.Contains(t, view, "item-04")
	assert.NotContains(t, view, "item-05")
	assert.Contains(t, view, "rows 1-10 of 30 · page 1/3 · showing 1-5 · 0 selected")
}

func TestViewInvalid(t *testing.T) {
	table := views.New(views.Config[item]{Records: []item{{name: "a"}}})
	m, _ := update(New(table, Options{}), tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, m.View(), "invalid table configuration")
}

func TestFit(t *testing.T) {
	assert.Equal(t, "ab   ", fit("ab", 5, columns.AlignLeft))
	assert.Equal(t, "   ab", fit("ab", 5, columns.AlignRight))
	assert.Equal(t, " ab  ", fit("ab", 5, columns.AlignCenter))
	assert.Equal(t, "abcd…", fit("abcdefgh", 5, columns.AlignLeft))
	assert.Equal(t, "日本 ", fit("日本", 5, columns.AlignLeft))
}

func TestQuit(t *testing.T) {
	m := newModel(t, newTable(3))
	_, cmd := update(m, runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestApplyMsg(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)
	m, _ = update(m, runes("j"), runes("j"), runes("j"))

	m, _ = update(m, ApplyMsg(func() {
		table.SetRecords(table.Records()[:2])
	}))
	assert.Equal(t, 1, m.cursor, "the cursor is clamped to the new page")
	assert.Equal(t, 2, table.Display().WorkingSet)
}

func TestDisplayFollowsTableChanges(t *testing.T) {
	table := newTable(30)
	m := newModel(t, table)

	first := m.display()
	assert.Same(t, first, m.display(), "unchanged tables reuse the projection")

	m, _ = update(m, runes("s"))
	sorted := m.display()
	assert.NotSame(t, first, sorted)
	assert.Equal(t, sorting.Ascending, sorted.Headers[0].Direction)

	// Changes made outside the model are seen too.
	table.SetRecords(table.Records()[:3])
	assert.Equal(t, 3, m.display().WorkingSet)
	assert.Contains(t, m.View(), "rows 1-3 of 3")
}
