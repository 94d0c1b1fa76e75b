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

// Package views owns the state of a table and publishes the view model
// every renderer reads. A Table runs the pipeline filter, sort, selection,
// pagination, windowing synchronously on every mutation and notifies its
// subscribers with the new snapshot.
package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/core/pagination"
	"github.com/google/tabula/core/selection"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/windowing"
)

var (
	ErrInvalidConfig = errors.New("invalid table configuration")
	ErrRecompute     = errors.New("table recompute failed")
)

type rowSet[R any] struct {
	rows []columns.Row[R]
	byID map[string]int
}

type selectionResult[R any] struct {
	summary  selection.Summary
	selected []columns.Row[R]
	set      map[string]bool
}

type pageResult[R any] struct {
	rows []columns.Row[R]
	page pagination.Page
}

type windowResult[R any] struct {
	rows     []columns.Row[R]
	rng      windowing.Range
	windowed bool
}

// Table holds the inputs of a table view and its current snapshot. It is
// not safe for concurrent use.
type Table[R any] struct {
	logger   logging.Logger
	observer Observer

	onSort           func(sorting.Directive)
	onSelect         func([]R, []int)
	onPageChange     func(int)
	onPageSizeChange func(int)

	rowID    columns.RowIDFunc[R]
	sorter   *sorting.Engine[R]
	selector *selection.Engine[R]
	sel      *selection.Selection
	pager    *pagination.Paginator
	fold     cases.Caser

	records         []R
	recordsVersion  uint64
	cols            []columns.Column[R]
	columnsVersion  uint64
	directive       sorting.Directive
	filter          string
	selVersion      uint64
	paginate        bool
	pageSizeOptions []int
	viewport        windowing.Viewport
	threshold       int

	rows      memo[rowSet[R]]
	filtered  memo[[]columns.Row[R]]
	sorted    memo[[]columns.Row[R]]
	selState  memo[selectionResult[R]]
	paged     memo[pageResult[R]]
	window    memo[windowResult[R]]

	version     uint64
	vm          *ViewModel[R]
	subscribers []subscriber[R]
	nextSub     uint64
	logged      map[string]bool
}

type subscriber[R any] struct {
	id uint64
	fn func(*ViewModel[R])
}

// New creates a table and computes its first snapshot. Configuration
// errors do not fail construction; they surface as StatusInvalidConfig.
func New[R any](cfg Config[R]) *Table[R] {
	logger := logging.OrNoOp(cfg.Logger)
	observer := cfg.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	pageSize := cfg.PageSize
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	options := slices.Clone(cfg.PageSizeOptions)
	if len(options) == 0 {
		options = slices.Clone(pagination.DefaultPageSizeOptions)
	}
	threshold := cfg.WindowThreshold
	if threshold == 0 {
		threshold = windowing.DefaultThreshold
	}
	rowID := cfg.RowID
	if rowID == nil {
		rowID = columns.IndexRowID[R]
	}
	sel := selection.New(cfg.SelectionMode)

	t := &Table[R]{
		logger:           logger,
		observer:         observer,
		onSort:           cfg.OnSort,
		onSelect:         cfg.OnSelect,
		onPageChange:     cfg.OnPageChange,
		onPageSizeChange: cfg.OnPageSizeChange,
		rowID:            rowID,
		sorter:           sorting.NewEngine[R](columns.NewComparators(cfg.Language), logger),
		selector:         selection.NewEngine(sel, rowID),
		sel:              sel,
		pager:            pagination.NewPaginator(pageSize),
		fold:             cases.Fold(),
		records:          cfg.Records,
		cols:             cfg.Columns,
		directive:        cfg.Sort,
		paginate:         !cfg.DisablePagination,
		pageSizeOptions:  options,
		viewport:         cfg.Viewport,
		threshold:        threshold,
		logged:           make(map[string]bool),
	}
	t.rows.stage = StageRows
	t.filtered.stage = StageFilter
	t.sorted.stage = StageSort
	t.selState.stage = StageSelection
	t.paged.stage = StagePagination
	t.window.stage = StageWindowing
	t.recompute()
	return t
}

// Snapshot returns the current view model.
func (t *Table[R]) Snapshot() *ViewModel[R] {
	return t.vm
}

// Subscribe registers fn to receive every new snapshot, in subscription
// order. It returns a function that removes the subscription.
func (t *Table[R]) Subscribe(fn func(*ViewModel[R])) func() {
	t.nextSub++
	id := t.nextSub
	t.subscribers = append(t.subscribers, subscriber[R]{id: id, fn: fn})
	return func() {
		t.subscribers = slices.DeleteFunc(t.subscribers, func(s subscriber[R]) bool { return s.id == id })
	}
}

// OnChange calls fn after every new snapshot.
func (t *Table[R]) OnChange(fn func()) func() {
	return t.Subscribe(func(*ViewModel[R]) { fn() })
}

func (t *Table[R]) Records() []R { return t.records }
func (t *Table[R]) Columns() []columns.Column[R] { return t.cols }
func (t *Table[R]) Directive() sorting.Directive { return t.directive }
func (t *Table[R]) Filter() string { return t.filter }
func (t *Table[R]) Viewport() windowing.Viewport { return t.effectiveViewport() }
func (t *Table[R]) SelectionMode() selection.Mode { return t.sel.Mode() }
func (t *Table[R]) PageState() pagination.State { return t.pager.State() }
func (t *Table[R]) SelectionKeys() []string { return t.sel.Keys() }

// HandleSort toggles the sort on the column key: none, ascending,
// descending, none. Unknown and non-sortable columns are ignored.
// Sorting stays available on a failed snapshot so that a sort which
// panicked can be changed or dropped.
func (t *Table[R]) HandleSort(key string) bool {
	if !t.sortable() {
		return false
	}
	return t.setSort(t.directive.Toggle(key))
}

// SetSort replaces the sort directive.
func (t *Table[R]) SetSort(d sorting.Directive) bool {
	if !t.sortable() || d == t.directive {
		return false
	}
	if !d.Active() {
		d = sorting.Directive{}
	}
	return t.setSort(d)
}

func (t *Table[R]) setSort(d sorting.Directive) bool {
	if err := sorting.Check(d, t.cols); err != nil {
		t.logger.WithFields(map[string]any{"column": d.ColumnKey}).Warn("sort ignored: %v", err)
		return false
	}
	t.directive = d
	t.publish(func() {
		if t.onSort != nil {
			t.onSort(d)
		}
	})
	return true
}

// HandleSelect selects or deselects the row with identity id.
func (t *Table[R]) HandleSelect(id string, selected bool) bool {
	if !t.known(id) {
		return false
	}
	if selected {
		return t.selectionChanged(t.sel.Select(id))
	}
	return t.selectionChanged(t.sel.Deselect(id))
}

// HandleToggle flips the selection of the row with identity id.
func (t *Table[R]) HandleToggle(id string) bool {
	if !t.known(id) {
		return false
	}
	return t.selectionChanged(t.sel.Toggle(id))
}

// SelectRecord selects or deselects a record given its input position.
func (t *Table[R]) SelectRecord(record R, index int, selected bool) bool {
	return t.HandleSelect(t.selector.ID(record, index), selected)
}

// HandleSelectAll selects every row of the working set, not only the
// current page, or clears the selection.
func (t *Table[R]) HandleSelectAll(on bool) bool {
	if !t.ready() {
		return false
	}
	return t.selectionChanged(t.selector.SelectAll(t.vm.Processed, on))
}

// ClearSelection deselects every row.
func (t *Table[R]) ClearSelection() bool {
	if !t.ready() {
		return false
	}
	return t.selectionChanged(t.selector.Clear())
}

// SetSelectionMode changes the selection mode. Switching to single keeps
// the most recently selected row; switching to none clears the selection.
func (t *Table[R]) SetSelectionMode(mode selection.Mode) bool {
	return t.selectionChanged(t.sel.SetMode(mode))
}

func (t *Table[R]) known(id string) bool {
	if !t.ready() {
		return false
	}
	if _, ok := t.rows.value.byID[id]; !ok {
		t.logger.Debug("ignoring selection of unknown row %q", id)
		return false
	}
	return true
}

func (t *Table[R]) selectionChanged(changed bool) bool {
	if !changed {
		return false
	}
	t.selVersion++
	t.publish(func() {
		if t.onSelect != nil {
			t.onSelect(t.selectedRecords())
		}
	})
	return true
}

// selectedRecords returns the selected records of the working set and
// their positions in it.
func (t *Table[R]) selectedRecords() ([]R, []int) {
	var (
		records []R
		indices []int
	)
	for i, row := range t.vm.Processed {
		if t.vm.IsSelected(row.ID) {
			records = append(records, row.Record)
			indices = append(indices, i)
		}
	}
	return records, indices
}

// HandlePageChange moves to page, clamped into range.
func (t *Table[R]) HandlePageChange(page int) bool {
	if !t.ready() || !t.paginate || !t.pager.GoToPage(page) {
		return false
	}
	t.viewport.ScrollTop = 0
	current := t.pager.State().CurrentPage
	t.publish(func() {
		if t.onPageChange != nil {
			t.onPageChange(current)
		}
	})
	return true
}

func (t *Table[R]) NextPage() bool {
	return t.HandlePageChange(t.pager.State().CurrentPage + 1)
}

func (t *Table[R]) PreviousPage() bool {
	return t.HandlePageChange(t.pager.State().CurrentPage - 1)
}

// HandlePageSizeChange changes the page size and returns to page 1.
func (t *Table[R]) HandlePageSizeChange(size int) bool {
	return t.HandlePageSizeChangeAt(size, 1)
}

// HandlePageSizeChangeAt changes the page size and moves to page.
func (t *Table[R]) HandlePageSizeChangeAt(size, page int) bool {
	if !t.ready() || !t.paginate {
		return false
	}
	before := t.pager.State()
	if size == before.PageSize || !t.pager.ChangePageSizeAt(size, page) {
		return false
	}
	after := t.pager.State()
	t.viewport.ScrollTop = 0
	t.publish(func() {
		if t.onPageSizeChange != nil {
			t.onPageSizeChange(after.PageSize)
		}
		if after.CurrentPage != before.CurrentPage && t.onPageChange != nil {
			t.onPageChange(after.CurrentPage)
		}
	})
	return true
}

// SetRecords replaces the records. Selected identities are kept.
func (t *Table[R]) SetRecords(records []R) {
	t.records = records
	t.recordsVersion++
	t.publish()
}

// SetColumns replaces the column set.
func (t *Table[R]) SetColumns(cols []columns.Column[R]) {
	t.cols = cols
	t.columnsVersion++
	t.publish()
}

// SetFilter restricts the working set to rows where any cell contains
// text, ignoring case. A changed filter returns to page 1.
func (t *Table[R]) SetFilter(text string) bool {
	text = strings.TrimSpace(text)
	if text == t.filter {
		return false
	}
	t.filter = text
	pageChanged := t.paginate && t.pager.GoToPage(1)
	t.viewport.ScrollTop = 0
	t.publish(func() {
		if pageChanged && t.onPageChange != nil {
			t.onPageChange(1)
		}
	})
	return true
}

// SetViewport replaces the viewport.
func (t *Table[R]) SetViewport(v windowing.Viewport) bool {
	if v == t.viewport {
		return false
	}
	t.viewport = v
	t.publish()
	return true
}

// ScrollTo scrolls the current page so the row at index is at the top.
func (t *Table[R]) ScrollTo(index int) bool {
	top := t.effectiveViewport().ScrollToIndex(index).ScrollTop
	if top == t.viewport.ScrollTop {
		return false
	}
	t.viewport.ScrollTop = top
	t.publish()
	return true
}

func (t *Table[R]) ready() bool {
	return t.vm != nil && (t.vm.Status == StatusReady || t.vm.Status == StatusEmpty)
}

func (t *Table[R]) sortable() bool {
	return t.ready() || (t.vm != nil && t.vm.Status == StatusFailed)
}

func (t *Table[R]) effectiveViewport() windowing.Viewport {
	v := t.viewport
	if v.RowHeight == 0 {
		v.RowHeight = DefaultRowHeight
	}
	return v
}

// publish recomputes the snapshot, runs callbacks and notifies
// subscribers.
func (t *Table[R]) publish(callbacks ...func()) {
	t.recompute()
	if t.ready() {
		for _, cb := range callbacks {
			cb()
		}
	}
	vm := t.vm
	// Subscribers may unsubscribe while being notified.
	for _, s := range slices.Clone(t.subscribers) {
		s.fn(vm)
	}
}

func (t *Table[R]) recompute() {
	start := time.Now()
	t.vm = t.build()
	t.observer.ObserveRecompute(t.vm.Status, time.Since(start))
}

func (t *Table[R]) validate(vp windowing.Viewport) error {
	if err := columns.Validate(t.cols); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := vp.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// logOnce logs each distinct error once until the table recovers.
func (t *Table[R]) logOnce(err error) {
	msg := err.Error()
	if t.logged[msg] {
		return
	}
	t.logged[msg] = true
	t.logger.Error("%s", msg)
}

func (t *Table[R]) build() (vm *ViewModel[R]) {
	t.version++
	vp := t.effectiveViewport()
	vm = &ViewModel[R]{
		Version:         t.version,
		Columns:         t.cols,
		Sort:            t.directive,
		Filter:          t.filter,
		TotalRecords:    len(t.records),
		PageSizeOptions: t.pageSizeOptions,
		Paginated:       t.paginate,
		Viewport:        vp,
		Window:          windowing.Full(0),
		Mode:            t.sel.Mode(),
		Page:            pagination.Compute(pagination.State{PageSize: t.pager.State().PageSize}),
	}
	if err := t.validate(vp); err != nil {
		vm.Status = StatusInvalidConfig
		vm.Err = err
		t.logOnce(err)
		return vm
	}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrRecompute, r)
			vm.Status = StatusFailed
			vm.Err = err
			vm.Processed, vm.Paged, vm.Visible, vm.Selected = nil, nil, nil, nil
			vm.Summary = selection.Summary{}
			vm.selected = nil
			vm.Windowed = false
			vm.Window = windowing.Full(0)
			t.logOnce(err)
		}
	}()

	obs := t.observer

	rs := t.rows.get(obs, newFingerprint(StageRows).u64(t.recordsVersion).sum(), func() rowSet[R] {
		rows := columns.BuildRows(t.records, t.rowID)
		byID := make(map[string]int, len(rows))
		for i, row := range rows {
			byID[row.ID] = i
		}
		return rowSet[R]{rows: rows, byID: byID}
	})

	filterKey := newFingerprint(StageFilter).
		u64(t.recordsVersion).u64(t.columnsVersion).str(t.filter).sum()
	filtered := t.filtered.get(obs, filterKey, func() []columns.Row[R] {
		return t.applyFilter(rs.rows)
	})

	sortKey := newFingerprint(StageSort).
		u64(filterKey).str(t.directive.ColumnKey).int(int(t.directive.Direction)).sum()
	processed := t.sorted.get(obs, sortKey, func() []columns.Row[R] {
		return t.sorter.SortRows(filtered, t.directive, t.cols)
	})

	selKey := newFingerprint(StageSelection).u64(sortKey).u64(t.selVersion).int(int(t.sel.Mode())).sum()
	sr := t.selState.get(obs, selKey, func() selectionResult[R] {
		set := make(map[string]bool, t.sel.Len())
		for _, id := range t.sel.Keys() {
			set[id] = true
		}
		return selectionResult[R]{
			summary:  t.selector.Summarize(processed),
			selected: t.selector.Selected(processed),
			set:      set,
		}
	})

	if t.paginate {
		t.pager.SetTotalItems(len(processed))
	}
	ps := t.pager.State()
	pageKey := newFingerprint(StagePagination).
		u64(sortKey).bool(t.paginate).int(ps.PageSize).int(ps.CurrentPage).sum()
	pr := t.paged.get(obs, pageKey, func() pageResult[R] {
		if !t.paginate {
			return pageResult[R]{
				rows: processed,
				page: pagination.Compute(pagination.State{
					PageSize:    max(1, len(processed)),
					CurrentPage: 1,
					TotalItems:  len(processed),
				}),
			}
		}
		rows, page := pagination.Paginate(processed, ps)
		return pageResult[R]{rows: rows, page: page}
	})

	windowKey := newFingerprint(StageWindowing).u64(pageKey).
		int(vp.Height).int(vp.RowHeight).int(vp.Overscan).int(vp.ScrollTop).
		int(t.threshold).int(len(processed)).sum()
	wr := t.window.get(obs, windowKey, func() windowResult[R] {
		if vp.Height <= 0 || !windowing.Active(len(processed), t.threshold) {
			return windowResult[R]{rows: pr.rows, rng: windowing.Full(len(pr.rows))}
		}
		rng, err := vp.Range(len(pr.rows))
		if err != nil || rng.Empty() {
			return windowResult[R]{rows: pr.rows[:0:0], rng: windowing.Full(0), windowed: err == nil}
		}
		return windowResult[R]{rows: pr.rows[rng.Start : rng.End+1], rng: rng, windowed: true}
	})

	vm.Processed = processed
	vm.Summary = sr.summary
	vm.Selected = sr.selected
	vm.selected = sr.set
	vm.Paged = pr.rows
	vm.Page = pr.page
	vm.Visible = wr.rows
	vm.Window = wr.rng
	vm.Windowed = wr.windowed
	vm.Status = StatusReady
	if len(processed) == 0 {
		vm.Status = StatusEmpty
	}
	clear(t.logged)
	return vm
}

func (t *Table[R]) applyFilter(rows []columns.Row[R]) []columns.Row[R] {
	if t.filter == "" {
		return rows
	}
	needle := t.fold.String(t.filter)
	out := make([]columns.Row[R], 0)
	for _, row := range rows {
		for _, c := range t.cols {
			if strings.Contains(t.fold.String(c.Text(row.Record, row.SourceIndex)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
