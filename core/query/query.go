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

// Package query maps table page URLs to table state and back.
//
// A URL carries the view state (sort, page, page size and filter) and
// optionally one-shot selection actions. Links produced by a Query always
// carry the complete view state so that they can be bookmarked; selection
// actions in links are idempotent so that reloading a page is harmless.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/safehtml"

	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/views"
)

// URL parameter names.
const (
	ParamSort      = "sort"
	ParamDir       = "dir"
	ParamPage      = "page"
	ParamPageSize  = "size"
	ParamFilter    = "q"
	ParamSelect    = "select"
	ParamDeselect  = "deselect"
	ParamToggle    = "toggle"
	ParamSelectAll = "all"
	ParamClear     = "clear"
	ParamScroll    = "scroll"
)

var stateParams = []string{ParamSort, ParamDir, ParamPage, ParamPageSize, ParamFilter}

// Query is the parsed state of a table page URL.
type Query struct {
	// Path is the base path, e.g. "/".
	Path string

	// HasState is set when the URL carries any view state parameter.
	// Apply leaves the view state alone otherwise.
	HasState bool

	Sort string
	Dir  sorting.Direction
	// Page and PageSize are 0 when absent.
	Page     int
	PageSize int
	Filter   string

	Select   []string
	Deselect []string
	Toggle   []string
	// SelectAll is nil when absent.
	SelectAll *bool
	Clear     bool
	// Scroll is the row of the current page to scroll to, -1 when absent.
	Scroll int
}

// NewQuery parses u. Malformed values are ignored.
func NewQuery(u *url.URL) *Query {
	q := &Query{Path: u.Path, Scroll: -1}
	values := u.Query()

	for _, p := range stateParams {
		if values.Has(p) {
			q.HasState = true
		}
	}

	q.Sort = strings.TrimSpace(values.Get(ParamSort))
	if q.Sort != "" {
		q.Dir = sorting.Ascending
		if dir, err := sorting.ParseDirection(values.Get(ParamDir)); err == nil && dir != sorting.None {
			q.Dir = dir
		}
	}
	q.Page = positive(values.Get(ParamPage))
	q.PageSize = positive(values.Get(ParamPageSize))
	q.Filter = strings.TrimSpace(values.Get(ParamFilter))

	q.Select = nonEmpty(values[ParamSelect])
	q.Deselect = nonEmpty(values[ParamDeselect])
	q.Toggle = nonEmpty(values[ParamToggle])
	if values.Has(ParamSelectAll) {
		on, err := strconv.ParseBool(values.Get(ParamSelectAll))
		if err == nil {
			q.SelectAll = &on
		}
	}
	q.Clear, _ = strconv.ParseBool(values.Get(ParamClear))
	if values.Has(ParamScroll) {
		if n, err := strconv.Atoi(values.Get(ParamScroll)); err == nil && n >= 0 {
			q.Scroll = n
		}
	}
	return q
}

// FromTable returns the query describing the current view state of c.
func FromTable(path string, c views.Controller) *Query {
	d := c.Directive()
	state := c.PageState()
	q := &Query{
		Path:     path,
		HasState: true,
		Page:     state.CurrentPage,
		PageSize: state.PageSize,
		Filter:   c.Filter(),
		Scroll:   -1,
	}
	if d.Active() {
		q.Sort, q.Dir = d.ColumnKey, d.Direction
	}
	return q
}

func positive(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Directive returns the sort directive of the query.
func (q *Query) Directive() sorting.Directive {
	if q.Sort == "" {
		return sorting.Directive{}
	}
	return sorting.Directive{ColumnKey: q.Sort, Direction: q.Dir}
}

// HasActions reports whether the query carries one-shot actions.
func (q *Query) HasActions() bool {
	return len(q.Select) > 0 || len(q.Deselect) > 0 || len(q.Toggle) > 0 ||
		q.SelectAll != nil || q.Clear || q.Scroll >= 0
}

// Apply moves c to the state described by q and performs its actions.
// It reports whether c changed.
//
// The filter is applied first since changing it returns to page 1; the
// page is applied after the sort and page size.
func (q *Query) Apply(c views.Controller) bool {
	changed := false
	if q.HasState {
		changed = c.SetFilter(q.Filter) || changed
		changed = c.SetSort(q.Directive()) || changed
		page := max(q.Page, 1)
		if q.PageSize > 0 && q.PageSize != c.PageState().PageSize {
			changed = c.HandlePageSizeChangeAt(q.PageSize, page) || changed
		} else {
			changed = c.HandlePageChange(page) || changed
		}
	}

	if q.Clear {
		changed = c.ClearSelection() || changed
	}
	if q.SelectAll != nil {
		changed = c.HandleSelectAll(*q.SelectAll) || changed
	}
	for _, id := range q.Select {
		changed = c.HandleSelect(id, true) || changed
	}
	for _, id := range q.Deselect {
		changed = c.HandleSelect(id, false) || changed
	}
	for _, id := range q.Toggle {
		changed = c.HandleToggle(id) || changed
	}
	if q.Scroll >= 0 {
		changed = c.ScrollTo(q.Scroll) || changed
	}
	return changed
}

// Clone returns a copy of the view state without actions.
func (q *Query) Clone() *Query {
	return &Query{
		Path:     q.Path,
		HasState: q.HasState,
		Sort:     q.Sort,
		Dir:      q.Dir,
		Page:     q.Page,
		PageSize: q.PageSize,
		Filter:   q.Filter,
		Scroll:   -1,
	}
}

// Values encodes the query as URL parameters.
func (q *Query) Values() url.Values {
	v := url.Values{}
	if d := q.Directive(); d.Active() {
		v.Set(ParamSort, d.ColumnKey)
		v.Set(ParamDir, d.Direction.Short())
	}
	if q.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set(ParamPageSize, strconv.Itoa(q.PageSize))
	}
	if q.Filter != "" {
		v.Set(ParamFilter, q.Filter)
	}
	for _, id := range q.Select {
		v.Add(ParamSelect, id)
	}
	for _, id := range q.Deselect {
		v.Add(ParamDeselect, id)
	}
	for _, id := range q.Toggle {
		v.Add(ParamToggle, id)
	}
	if q.SelectAll != nil {
		v.Set(ParamSelectAll, strconv.FormatBool(*q.SelectAll))
	}
	if q.Clear {
		v.Set(ParamClear, "true")
	}
	if q.Scroll >= 0 {
		v.Set(ParamScroll, strconv.Itoa(q.Scroll))
	}
	return v
}

// ToURL converts the query back to a URL string.
func (q *Query) ToURL() string {
	u := &url.URL{Path: q.Path, RawQuery: q.Values().Encode()}
	return u.String()
}

// ToSafeURL converts the query to a safehtml.URL.
func (q *Query) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(q.ToURL())
}

// WithSort returns a URL that toggles the sort on column key, keeping the
// current page.
func (q *Query) WithSort(key string) safehtml.URL {
	n := q.Clone()
	d := q.Directive().Toggle(key)
	n.Sort, n.Dir = "", sorting.None
	if d.Active() {
		n.Sort, n.Dir = d.ColumnKey, d.Direction
	}
	return n.ToSafeURL()
}

// WithPage returns a URL for page n.
func (q *Query) WithPage(page int) safehtml.URL {
	n := q.Clone()
	n.Page = page
	return n.ToSafeURL()
}

// WithPageSize returns a URL for page size n, on page 1.
func (q *Query) WithPageSize(size int) safehtml.URL {
	n := q.Clone()
	n.PageSize = size
	n.Page = 1
	return n.ToSafeURL()
}

// WithFilter returns a URL filtering by text, on page 1.
func (q *Query) WithFilter(text string) safehtml.URL {
	n := q.Clone()
	n.Filter = strings.TrimSpace(text)
	n.Page = 1
	return n.ToSafeURL()
}

// WithSelected returns a URL selecting or deselecting row id.
func (q *Query) WithSelected(id string, selected bool) safehtml.URL {
	n := q.Clone()
	if selected {
		n.Select = []string{id}
	} else {
		n.Deselect = []string{id}
	}
	return n.ToSafeURL()
}

// WithSelectAll returns a URL selecting every row of the working set, or
// none.
func (q *Query) WithSelectAll(on bool) safehtml.URL {
	n := q.Clone()
	n.SelectAll = &on
	return n.ToSafeURL()
}

// WithClear returns a URL clearing the selection.
func (q *Query) WithClear() safehtml.URL {
	n := q.Clone()
	n.Clear = true
	return n.ToSafeURL()
}

// WithScroll returns a URL scrolling the current page to row index.
func (q *Query) WithScroll(index int) safehtml.URL {
	n := q.Clone()
	n.Scroll = max(index, 0)
	return n.ToSafeURL()
}
