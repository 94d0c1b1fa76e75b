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

package windowing

// Viewport is the scroll container the rows are rendered into. Heights and
// ScrollTop share one unit (pixels in a browser, lines in a terminal).
type Viewport struct {
	Height    int
	RowHeight int
	Overscan  int
	ScrollTop int
}

// Validate reports whether the viewport can be windowed.
func (v Viewport) Validate() error {
	_, err := ComputeVisibleRange(v.Height, v.RowHeight, 0, v.Overscan, 0)
	return err
}

// ScrollIndex returns the index of the row at the top of the viewport.
func (v Viewport) ScrollIndex() int {
	if v.RowHeight <= 0 || v.ScrollTop <= 0 {
		return 0
	}
	return v.ScrollTop / v.RowHeight
}

// Range returns the rows to render out of itemCount.
func (v Viewport) Range(itemCount int) (Range, error) {
	return ComputeVisibleRange(v.Height, v.RowHeight, itemCount, v.Overscan, v.ScrollIndex())
}

// ScrollToIndex returns the viewport scrolled so row i is at the top.
func (v Viewport) ScrollToIndex(i int) Viewport {
	v.ScrollTop = max(i, 0) * max(v.RowHeight, 0)
	return v
}

// OffsetBefore is the height of the unrendered rows above r.
func (v Viewport) OffsetBefore(r Range) int {
	if r.Empty() {
		return 0
	}
	return r.Start * v.RowHeight
}

// OffsetAfter is the height of the unrendered rows below r out of
// itemCount rows.
func (v Viewport) OffsetAfter(r Range, itemCount int) int {
	if r.Empty() {
		return 0
	}
	return max(0, itemCount-1-r.End) * v.RowHeight
}

// TotalHeight is the scroll height of itemCount rows.
func (v Viewport) TotalHeight(itemCount int) int {
	return max(itemCount, 0) * v.RowHeight
}
