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

// Package selection tracks which rows are selected. Rows are keyed by
// identity, never by position, so a selection survives re-sorting,
// filtering and paging.
package selection

import (
	"fmt"
	"slices"
	"strings"
)

// Mode is the selection mode of a table.
type Mode int

const (
	ModeNone Mode = iota
	ModeSingle
	ModeMultiple
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeMultiple:
		return "multiple"
	default:
		return "none"
	}
}

// ParseMode parses "none", "single" or "multiple".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "single":
		return ModeSingle, nil
	case "multiple", "multi":
		return ModeMultiple, nil
	}
	return ModeNone, fmt.Errorf("unknown selection mode %q", s)
}

// Selection is the set of selected row identities under a mode. Mutators
// report whether the set changed.
type Selection struct {
	mode  Mode
	keys  map[string]struct{}
	order []string // insertion order of keys
}

// New creates an empty selection.
func New(mode Mode) *Selection {
	return &Selection{
		mode: mode,
		keys: make(map[string]struct{}),
	}
}

// Mode returns the selection mode.
func (s *Selection) Mode() Mode {
	return s.mode
}

// SetMode changes the mode. Switching to none clears the selection;
// switching to single keeps only the most recently selected key.
func (s *Selection) SetMode(mode Mode) bool {
	if mode == s.mode {
		return false
	}
	s.mode = mode
	switch mode {
	case ModeNone:
		return s.Clear()
	case ModeSingle:
		if len(s.order) > 1 {
			last := s.order[len(s.order)-1]
			s.reset()
			s.add(last)
			return true
		}
	}
	return false
}

// Select adds id. In single mode it replaces the current selection.
func (s *Selection) Select(id string) bool {
	switch s.mode {
	case ModeSingle:
		if len(s.order) == 1 && s.order[0] == id {
			return false
		}
		s.reset()
		s.add(id)
		return true
	case ModeMultiple:
		if s.IsSelected(id) {
			return false
		}
		s.add(id)
		return true
	}
	return false
}

// Deselect removes id.
func (s *Selection) Deselect(id string) bool {
	if s.mode == ModeNone || !s.IsSelected(id) {
		return false
	}
	delete(s.keys, id)
	s.order = slices.DeleteFunc(s.order, func(k string) bool { return k == id })
	return true
}

// Toggle selects id if it is not selected and deselects it otherwise.
func (s *Selection) Toggle(id string) bool {
	if s.IsSelected(id) {
		return s.Deselect(id)
	}
	return s.Select(id)
}

// SelectAll selects every id when on is true, in multiple mode only, and
// clears the selection when on is false.
func (s *Selection) SelectAll(ids []string, on bool) bool {
	if !on {
		return s.Clear()
	}
	if s.mode != ModeMultiple {
		return false
	}
	changed := false
	for _, id := range ids {
		if !s.IsSelected(id) {
			s.add(id)
			changed = true
		}
	}
	return changed
}

// Clear deselects everything.
func (s *Selection) Clear() bool {
	if len(s.keys) == 0 {
		return false
	}
	s.reset()
	return true
}

// IsSelected reports whether id is selected. Always false in mode none.
func (s *Selection) IsSelected(id string) bool {
	if s.mode == ModeNone {
		return false
	}
	_, ok := s.keys[id]
	return ok
}

// Len returns the number of selected keys.
func (s *Selection) Len() int {
	return len(s.keys)
}

// Keys returns the selected keys in selection order.
func (s *Selection) Keys() []string {
	return slices.Clone(s.order)
}

// Summary describes a selection relative to a working set.
type Summary struct {
	// Count is the number of working-set members that are selected.
	Count int
	// AllSelected is true iff the working set is non-empty and every
	// member is selected.
	AllSelected bool
	// PartiallySelected is true iff anything is selected and not
	// AllSelected. Drives an indeterminate "select all" control.
	PartiallySelected bool
}

// Summarize computes the tri-state of the selection over the working set
// identities.
func (s *Selection) Summarize(ids []string) Summary {
	if s.mode == ModeNone {
		return Summary{}
	}
	var sum Summary
	for _, id := range ids {
		if _, ok := s.keys[id]; ok {
			sum.Count++
		}
	}
	sum.AllSelected = len(ids) > 0 && sum.Count == len(ids)
	sum.PartiallySelected = len(s.keys) > 0 && !sum.AllSelected
	return sum
}

func (s *Selection) add(id string) {
	s.keys[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *Selection) reset() {
	clear(s.keys)
	s.order = s.order[:0]
}
