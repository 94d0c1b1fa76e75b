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

// Package tui presents a table in the terminal with bubbletea.
//
// The terminal height drives the table viewport with a row height of one
// line, so a windowed table renders exactly the rows that fit.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/core/rendering"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/views"
	"github.com/google/tabula/core/windowing"
)

// FilterDebounce is how long typing must pause before the filter applies.
const FilterDebounce = 250 * time.Millisecond

// maxColumnWidth caps inferred column widths.
const maxColumnWidth = 32

// Table is the table state the model drives.
type Table interface {
	views.Controller
	Viewport() windowing.Viewport
	SetViewport(windowing.Viewport) bool
	OnChange(fn func()) func()
}

// displayCache holds the projection of the latest snapshot. The table
// drops it on every change.
type displayCache struct {
	d *views.Display
}

func (c *displayCache) get(t Table) *views.Display {
	if c.d == nil {
		c.d = t.Display()
	}
	return c.d
}

func (c *displayCache) invalidate() { c.d = nil }

// Options configure a Model.
type Options struct {
	Title  string
	Logger logging.Logger
}

type applyFilterMsg struct{ seq int }

// ApplyMsg runs on the UI goroutine. Other goroutines send it to change
// the table, e.g. after a dataset reload.
type ApplyMsg func()

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	focusStyle    = lipgloss.NewStyle().Bold(true).Reverse(true)
	cursorStyle   = lipgloss.NewStyle().Background(lipgloss.Color("238"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model is the bubbletea model of a table.
type Model struct {
	table  Table
	title  string
	logger logging.Logger

	keys keyMap
	help help.Model

	// cache is shared by every copy of the model.
	cache *displayCache

	filter    textinput.Model
	filtering bool
	filterSeq int

	width  int
	height int

	// cursor is the focused row of the current page.
	cursor int
	// column is the focused column.
	column int
}

// New returns a model driving table.
func New(table Table, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter rows"
	ti.CharLimit = 128
	ti.SetValue(table.Filter())

	cache := &displayCache{}
	table.OnChange(cache.invalidate)

	return Model{
		table:  table,
		cache:  cache,
		title:  opts.Title,
		logger: logging.OrNoOp(opts.Logger),
		keys:   defaultKeyMap(),
		help:   help.New(),
		filter: ti,
	}
}

// display returns the projection of the current snapshot.
func (m Model) display() *views.Display {
	return m.cache.get(m.table)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case ApplyMsg:
		msg()
		m.moveCursor(m.cursor)
		return m, nil

	case applyFilterMsg:
		if msg.seq == m.filterSeq {
			m.applyFilter()
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateTable(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.filterSeq++
		m.applyFilter()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filterSeq++
		m.filter.SetValue(m.table.Filter())
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() == before {
		return m, cmd
	}
	m.filterSeq++
	seq := m.filterSeq
	return m, tea.Batch(cmd, tea.Tick(FilterDebounce, func(time.Time) tea.Msg {
		return applyFilterMsg{seq: seq}
	}))
}

func (m *Model) applyFilter() {
	if m.table.SetFilter(m.filter.Value()) {
		m.cursor = 0
		m.logger.Debug("filter applied: %q", m.table.Filter())
	}
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.display()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(m.cursor - 1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.cursor + 1)
	case key.Matches(msg, m.keys.Left):
		m.column = max(m.column-1, 0)
	case key.Matches(msg, m.keys.Right):
		m.column = min(m.column+1, max(len(d.Headers)-1, 0))
	case key.Matches(msg, m.keys.Sort):
		if m.column < len(d.Headers) {
			m.table.HandleSort(d.Headers[m.column].Key)
		}
	case key.Matches(msg, m.keys.Toggle):
		if row, ok := m.cursorRow(d); ok {
			m.table.HandleToggle(row.ID)
		}
	case key.Matches(msg, m.keys.SelectAll):
		m.table.HandleSelectAll(!d.Selection.AllSelected)
	case key.Matches(msg, m.keys.Clear):
		m.table.ClearSelection()
	case key.Matches(msg, m.keys.NextPage):
		if m.table.HandlePageChange(d.Page.CurrentPage + 1) {
			m.moveCursor(0)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if m.table.HandlePageChange(d.Page.CurrentPage - 1) {
			m.moveCursor(0)
		}
	case key.Matches(msg, m.keys.Grow):
		m.changePageSize(d, +1)
	case key.Matches(msg, m.keys.Shrink):
		m.changePageSize(d, -1)
	}
	return m, nil
}

// changePageSize moves to the next larger (dir > 0) or smaller page size
// option.
func (m *Model) changePageSize(d *views.Display, dir int) {
	options := slices.Clone(d.PageSizeOptions)
	slices.Sort(options)
	current := d.Page.PageSize
	next := current
	if dir > 0 {
		if i := slices.IndexFunc(options, func(n int) bool { return n > current }); i >= 0 {
			next = options[i]
		}
	} else {
		for _, n := range options {
			if n < current {
				next = n
			}
		}
	}
	if next != current && m.table.HandlePageSizeChange(next) {
		m.moveCursor(0)
	}
}

// resize fits the viewport to the rows left between the chrome.
func (m *Model) resize() {
	vp := m.table.Viewport()
	vp.Height = max(m.height-m.chromeHeight(), 1)
	vp.RowHeight = 1
	vp.Overscan = 0
	m.table.SetViewport(vp)
	m.moveCursor(m.cursor)
}

// chromeHeight is the number of lines around the rows: title, filter,
// header, status and help.
func (m Model) chromeHeight() int {
	return 4 + lipgloss.Height(m.help.View(m.keys))
}

// moveCursor clamps the cursor to the page and scrolls it into view.
func (m *Model) moveCursor(to int) {
	d := m.display()
	m.cursor = max(min(to, d.PageRows-1), 0)
	if !d.Windowed {
		return
	}
	visible := max(d.VisibleRows, 1)
	switch {
	case m.cursor < d.ScrollIndex:
		m.table.ScrollTo(m.cursor)
	case m.cursor >= d.ScrollIndex+visible:
		m.table.ScrollTo(m.cursor - visible + 1)
	}
}

// pageIndex returns the row of the current page that r shows.
func pageIndex(d *views.Display, r views.DisplayRow) int {
	return r.Position - 1 - d.Page.Offset
}

func (m Model) cursorRow(d *views.Display) (views.DisplayRow, bool) {
	for _, r := range d.Rows {
		if pageIndex(d, r) == m.cursor {
			return r, true
		}
	}
	return views.DisplayRow{}, false
}

// View implements tea.Model.
func (m Model) View() string {
	d := m.display()
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteByte('\n')
	switch {
	case m.filtering:
		b.WriteString(m.filter.View())
	case d.Filter != "":
		b.WriteString(statusStyle.Render("filter: " + d.Filter))
	}
	b.WriteByte('\n')

	switch d.Status {
	case views.StatusInvalidConfig.String():
		b.WriteString(errorStyle.Render("invalid table configuration: " + d.Error))
		b.WriteByte('\n')
		return b.String()
	case views.StatusFailed.String():
		b.WriteString(errorStyle.Render("table failed: " + d.Error))
		b.WriteByte('\n')
		return b.String()
	}

	widths := columnWidths(d)
	selectable := d.Selection.Enabled()
	headers := make([]string, 0, len(d.Headers)+1)
	if selectable {
		headers = append(headers, selectAllMark(d.Selection))
	}
	for i, h := range d.Headers {
		title := h.Title
		switch h.Direction {
		case sorting.Ascending:
			title += " ▲"
		case sorting.Descending:
			title += " ▼"
		}
		cell := fit(title, widths[i], columns.AlignLeft)
		if i == m.column {
			cell = focusStyle.Render(cell)
		} else {
			cell = headerStyle.Render(cell)
		}
		headers = append(headers, cell)
	}
	b.WriteString(strings.Join(headers, " "))
	b.WriteByte('\n')

	if len(d.Rows) == 0 {
		b.WriteString(statusStyle.Render("No records."))
		b.WriteByte('\n')
	}
	for _, r := range d.Rows {
		cells := make([]string, 0, len(r.Cells)+1)
		if selectable {
			mark := "[ ]"
			if r.Selected {
				mark = "[x]"
			}
			cells = append(cells, mark)
		}
		for i, c := range r.Cells {
			cells = append(cells, fit(c.Text, widths[i], c.Align))
		}
		line := strings.Join(cells, " ")
		switch {
		case pageIndex(d, r) == m.cursor:
			line = cursorStyle.Render(line)
		case r.Selected:
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(statusStyle.Render(rendering.Summary(d)))
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func selectAllMark(s views.SelectionInfo) string {
	switch {
	case !s.Multiple():
		return "   "
	case s.AllSelected:
		return "[x]"
	case s.PartiallySelected:
		return "[-]"
	default:
		return "[ ]"
	}
}

// columnWidths uses the configured width of each column, or else the
// widest of its title and visible cells.
func columnWidths(d *views.Display) []int {
	widths := make([]int, len(d.Headers))
	for i, h := range d.Headers {
		if h.Width > 0 {
			widths[i] = h.Width
			continue
		}
		w := runewidth.StringWidth(h.Title) + 2
		for _, r := range d.Rows {
			w = max(w, runewidth.StringWidth(r.Cells[i].Text))
		}
		widths[i] = min(w, maxColumnWidth)
	}
	return widths
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int, align columns.Align) string {
	s = runewidth.Truncate(s, width, "…")
	pad := width - runewidth.StringWidth(s)
	switch align {
	case columns.AlignRight:
		return strings.Repeat(" ", pad) + s
	case columns.AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}

// NewProgram returns a full screen program presenting table.
func NewProgram(table Table, opts Options, teaOpts ...tea.ProgramOption) *tea.Program {
	teaOpts = append([]tea.ProgramOption{tea.WithAltScreen()}, teaOpts...)
	return tea.NewProgram(New(table, opts), teaOpts...)
}

// Run runs p until the user quits.
func Run(p *tea.Program) error {
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
