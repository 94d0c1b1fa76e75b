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

// Package pagination computes page bounds over a sorted sequence and
// navigates between pages with clamping.
package pagination

// DefaultPageSize is used when a page size is not configured.
const DefaultPageSize = 25

// DefaultPageSizeOptions are the page sizes offered to users.
var DefaultPageSizeOptions = []int{10, 25, 50, 100}

// State is the pagination input. CurrentPage is 1-based.
type State struct {
	PageSize    int
	CurrentPage int
	TotalItems  int
}

// TotalPages returns max(1, ceil(TotalItems/PageSize)).
func (s State) TotalPages() int {
	size := max(s.PageSize, 1)
	total := max(s.TotalItems, 0)
	return max(1, (total+size-1)/size)
}

// Clamp returns the state with PageSize at least 1, TotalItems at least 0
// and CurrentPage within [1, TotalPages].
func (s State) Clamp() State {
	s.PageSize = max(s.PageSize, 1)
	s.TotalItems = max(s.TotalItems, 0)
	s.CurrentPage = clampPage(s.CurrentPage, s.TotalPages())
	return s
}

func clampPage(page, totalPages int) int {
	return min(max(page, 1), totalPages)
}

// Page describes the slice of a sequence shown on the current page.
// StartItem and EndItem are 1-based and inclusive; both are 0 when Empty.
type Page struct {
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int

	StartItem int
	EndItem   int
	Empty     bool

	HasPrevious bool
	HasNext     bool

	// Offset and Limit are the slice bounds into the sequence.
	Offset int
	Limit  int
}

// Compute derives the page metadata for a state.
func Compute(s State) Page {
	s = s.Clamp()
	p := Page{
		CurrentPage: s.CurrentPage,
		PageSize:    s.PageSize,
		TotalItems:  s.TotalItems,
		TotalPages:  s.TotalPages(),
	}
	p.HasPrevious = p.CurrentPage > 1
	p.HasNext = p.CurrentPage < p.TotalPages
	if s.TotalItems == 0 {
		p.Empty = true
		return p
	}
	p.Offset = (s.CurrentPage - 1) * s.PageSize
	p.Limit = min(s.PageSize, s.TotalItems-p.Offset)
	p.StartItem = p.Offset + 1
	p.EndItem = min(s.CurrentPage*s.PageSize, s.TotalItems)
	return p
}

// Paginate returns the items of the current page and its metadata.
// TotalItems in the state is ignored in favour of len(items).
func Paginate[T any](items []T, s State) ([]T, Page) {
	s.TotalItems = len(items)
	p := Compute(s)
	if p.Empty {
		return items[:0:0], p
	}
	return items[p.Offset : p.Offset+p.Limit], p
}

// Window returns at most size entries for a pager control: page numbers
// around the current page, always including the first and last page, with
// gaps represented by 0. Sizes below 5 count as 5.
func (p Page) Window(size int) []int {
	size = max(size, 5)
	if p.TotalPages <= size {
		pages := make([]int, p.TotalPages)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}

	// Between two gaps there is room for size-4 pages.
	inner := size - 4
	lo := p.CurrentPage - (inner-1)/2
	hi := lo + inner - 1
	switch {
	case lo <= 3:
		return append(span(1, size-2), 0, p.TotalPages)
	case hi >= p.TotalPages-2:
		return append([]int{1, 0}, span(p.TotalPages-size+3, p.TotalPages)...)
	}
	pages := append([]int{1, 0}, span(lo, hi)...)
	return append(pages, 0, p.TotalPages)
}

func span(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, n)
	}
	return out
}
