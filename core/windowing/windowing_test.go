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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveThreshold(t *testing.T) {
	assert.False(t, Active(40, DefaultThreshold))
	assert.False(t, Active(50, DefaultThreshold))
	assert.True(t, Active(51, DefaultThreshold))
	assert.True(t, Active(1, 0))
	assert.False(t, Active(1000, -1))
}

func TestComputeVisibleRange(t *testing.T) {
	tests := []struct {
		name                                      string
		height, rowHeight, count, overscan, index int
		want                                      Range
	}{
		{name: "top", height: 500, rowHeight: 50, count: 1000, overscan: 5, index: 0, want: Range{0, 14}},
		{name: "scrolled", height: 500, rowHeight: 50, count: 1000, overscan: 5, index: 100, want: Range{95, 114}},
		{name: "bottom", height: 500, rowHeight: 50, count: 1000, overscan: 5, index: 995, want: Range{990, 999}},
		{name: "partial row rounds up", height: 510, rowHeight: 50, count: 1000, overscan: 0, index: 0, want: Range{0, 10}},
		{name: "short list", height: 500, rowHeight: 50, count: 3, overscan: 5, index: 0, want: Range{0, 2}},
		{name: "scroll past end", height: 100, rowHeight: 10, count: 20, overscan: 0, index: 50, want: Range{19, 19}},
		{name: "negative overscan", height: 100, rowHeight: 10, count: 100, overscan: -3, index: 10, want: Range{10, 19}},
		{name: "zero height", height: 0, rowHeight: 10, count: 100, overscan: 2, index: 10, want: Range{8, 11}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeVisibleRange(tt.height, tt.rowHeight, tt.count, tt.overscan, tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeVisibleRangeEmpty(t *testing.T) {
	r, err := ComputeVisibleRange(500, 50, 0, 5, 0)
	require.NoError(t, err)
	assert.True(t, r.Empty())
	assert.Zero(t, r.Len())
}

func TestComputeVisibleRangeErrors(t *testing.T) {
	_, err := ComputeVisibleRange(500, 0, 10, 5, 0)
	assert.ErrorIs(t, err, ErrBadRowHeight)
	_, err = ComputeVisibleRange(-1, 10, 10, 5, 0)
	assert.ErrorIs(t, err, ErrBadViewportHeight)
}

func TestViewport(t *testing.T) {
	v := Viewport{Height: 500, RowHeight: 50, Overscan: 5}
	require.NoError(t, v.Validate())

	v = v.ScrollToIndex(100)
	assert.Equal(t, 5000, v.ScrollTop)
	assert.Equal(t, 100, v.ScrollIndex())

	v.ScrollTop = 5020
	assert.Equal(t, 100, v.ScrollIndex(), "partially scrolled rows stay at the top")

	r, err := v.Range(1000)
	require.NoError(t, err)
	assert.Equal(t, Range{95, 114}, r)
	assert.Equal(t, 20, r.Len())
	assert.Equal(t, 95*50, v.OffsetBefore(r))
	assert.Equal(t, (1000-115)*50, v.OffsetAfter(r, 1000))
	assert.Equal(t, v.TotalHeight(1000), v.OffsetBefore(r)+r.Len()*50+v.OffsetAfter(r, 1000))

	assert.ErrorIs(t, Viewport{Height: 10}.Validate(), ErrBadRowHeight)
}

func TestRange(t *testing.T) {
	r := Full(3)
	assert.Equal(t, Range{0, 2}, r)
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(3))
	assert.Equal(t, "[0, 2]", r.String())
	assert.True(t, Full(0).Empty())
}

func BenchmarkComputeVisibleRange(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = ComputeVisibleRange(900, 24, 1_000_000, DefaultOverscan, i%1_000_000)
	}
}
