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

package pagination

// Paginator holds a pagination state and applies navigation to it. Every
// method keeps the state clamped and reports whether it changed; callers
// skip downstream work when nothing changed.
type Paginator struct {
	state State
}

// NewPaginator creates a paginator at page 1. Page sizes below 1 use
// DefaultPageSize.
func NewPaginator(pageSize int) *Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Paginator{state: State{PageSize: pageSize, CurrentPage: 1}}
}

// State returns the current state.
func (p *Paginator) State() State {
	return p.state
}

// Page returns the page metadata for the current state.
func (p *Paginator) Page() Page {
	return Compute(p.state)
}

// SetTotalItems updates the item count and re-clamps the current page.
func (p *Paginator) SetTotalItems(n int) bool {
	return p.set(State{PageSize: p.state.PageSize, CurrentPage: p.state.CurrentPage, TotalItems: n})
}

// GoToPage moves to page n, clamped into [1, TotalPages].
func (p *Paginator) GoToPage(n int) bool {
	return p.set(State{PageSize: p.state.PageSize, CurrentPage: n, TotalItems: p.state.TotalItems})
}

// NextPage moves forward one page if there is one.
func (p *Paginator) NextPage() bool {
	return p.GoToPage(p.state.CurrentPage + 1)
}

// PreviousPage moves back one page if there is one.
func (p *Paginator) PreviousPage() bool {
	return p.GoToPage(p.state.CurrentPage - 1)
}

// FirstPage moves to page 1.
func (p *Paginator) FirstPage() bool {
	return p.GoToPage(1)
}

// LastPage moves to the last page.
func (p *Paginator) LastPage() bool {
	return p.GoToPage(p.state.TotalPages())
}

// ChangePageSize sets the page size and resets to page 1. The position of
// the previously visible rows is not preserved. Sizes below 1 are ignored.
func (p *Paginator) ChangePageSize(n int) bool {
	return p.ChangePageSizeAt(n, 1)
}

// ChangePageSizeAt sets the page size and moves to page, clamped against
// the new page count. Sizes below 1 are ignored.
func (p *Paginator) ChangePageSizeAt(n, page int) bool {
	if n < 1 {
		return false
	}
	return p.set(State{PageSize: n, CurrentPage: page, TotalItems: p.state.TotalItems})
}

func (p *Paginator) set(s State) bool {
	s = s.Clamp()
	if s == p.state {
		return false
	}
	p.state = s
	return true
}
