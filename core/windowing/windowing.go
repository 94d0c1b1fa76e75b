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

// Package windowing computes which rows of a page are worth rendering for
// a scrolling viewport of fixed-height rows.
package windowing

import (
	"errors"
	"fmt"
)

const (
	// DefaultThreshold is the working set size above which windowing
	// engages.
	DefaultThreshold = 50
	// DefaultOverscan is the number of extra rows rendered on each side of
	// the viewport.
	DefaultOverscan = 5
)

var (
	ErrBadRowHeight      = errors.New("row height must be positive")
	ErrBadViewportHeight = errors.New("viewport height must not be negative")
)

// Range is an inclusive index range. An empty range has End < Start.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return max(0, r.End-r.Start+1)
}

// Empty reports whether the range holds no indices.
func (r Range) Empty() bool {
	return r.End < r.Start
}

// Contains reports whether i is in the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d]", r.Start, r.End)
}

// Full returns the range covering n items.
func Full(n int) Range {
	return Range{Start: 0, End: n - 1}
}

// Active reports whether windowing engages for a working set of n records.
// A threshold below 0 disables windowing.
func Active(n, threshold int) bool {
	return threshold >= 0 && n > threshold
}

// VisibleCount returns ceil(viewportHeight/rowHeight).
func VisibleCount(viewportHeight, rowHeight int) int {
	if rowHeight <= 0 || viewportHeight <= 0 {
		return 0
	}
	return (viewportHeight + rowHeight - 1) / rowHeight
}

// ComputeVisibleRange returns the rows to render when the row at
// scrollIndex is at the top of the viewport, padded by overscan rows on
// each side and clamped to [0, itemCount-1].
func ComputeVisibleRange(viewportHeight, rowHeight, itemCount, overscan, scrollIndex int) (Range, error) {
	if rowHeight <= 0 {
		return Range{}, fmt.Errorf("%w: %d", ErrBadRowHeight, rowHeight)
	}
	if viewportHeight < 0 {
		return Range{}, fmt.Errorf("%w: %d", ErrBadViewportHeight, viewportHeight)
	}
	if itemCount <= 0 {
		return Full(0), nil
	}
	overscan = max(overscan, 0)
	scrollIndex = min(max(scrollIndex, 0), itemCount-1)
	visible := VisibleCount(viewportHeight, rowHeight)
	return Range{
		Start: max(0, scrollIndex-overscan),
		End:   min(itemCount-1, scrollIndex+visible+overscan-1),
	}, nil
}
