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

package sorting

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/logging"
	logtest "github.com/google/tabula/core/logging/test"
)

type person struct {
	id   int
	name string
	team string
	age  int
}

func peopleColumns() []columns.Column[person] {
	return []columns.Column[person]{
		{Key: "id", Accessor: func(p person) any { return p.id }, Hint: columns.HintNumeric, Sortable: true},
		{Key: "name", Accessor: func(p person) any { return p.name }, Sortable: true},
		{Key: "team", Accessor: func(p person) any { return p.team }, Sortable: true},
		{Key: "age", Accessor: func(p person) any { return p.age }, Hint: columns.HintNumeric, Sortable: true},
		{Key: "notes", Accessor: func(p person) any { return "" }},
	}
}

func ids(ps []person) []int {
	out := make([]int, len(ps))
	for i, p := range ps {
		out[i] = p.id
	}
	return out
}

func newEngine(logger logging.Logger) *Engine[person] {
	return NewEngine[person](columns.NewComparators(language.Und), logger)
}

func TestSortAscending(t *testing.T) {
	people := []person{{id: 1, name: "B"}, {id: 2, name: "A"}, {id: 3, name: "C"}}
	e := newEngine(nil)

	sorted := e.Sort(people, Directive{ColumnKey: "name", Direction: Ascending}, peopleColumns())

	assert.Equal(t, []int{2, 1, 3}, ids(sorted))
	assert.Equal(t, []int{1, 2, 3}, ids(people), "input must not be modified")
}

func TestSortNumericHint(t *testing.T) {
	people := []person{{id: 1, age: 30}, {id: 2, age: 4}, {id: 3, age: 100}}
	e := newEngine(nil)

	sorted := e.Sort(people, Directive{ColumnKey: "age", Direction: Ascending}, peopleColumns())
	assert.Equal(t, []int{2, 1, 3}, ids(sorted))

	sorted = e.Sort(people, Directive{ColumnKey: "age", Direction: Descending}, peopleColumns())
	assert.Equal(t, []int{3, 1, 2}, ids(sorted))
}

func TestSortIsStable(t *testing.T) {
	// ties on team: (1,3,5) are "red", (2,4) are "blue"
	people := []person{
		{id: 1, team: "red"},
		{id: 2, team: "blue"},
		{id: 3, team: "red"},
		{id: 4, team: "blue"},
		{id: 5, team: "red"},
	}
	e := newEngine(nil)
	cols := peopleColumns()

	asc := e.Sort(people, Directive{ColumnKey: "team", Direction: Ascending}, cols)
	desc := e.Sort(people, Directive{ColumnKey: "team", Direction: Descending}, cols)

	if diff := cmp.Diff([]int{2, 4, 1, 3, 5}, ids(asc)); diff != "" {
		t.Errorf("ascending order mismatch (-want +got):\n%s", diff)
	}
	// Groups reverse, ties keep input order.
	if diff := cmp.Diff([]int{1, 3, 5, 2, 4}, ids(desc)); diff != "" {
		t.Errorf("descending order mismatch (-want +got):\n%s", diff)
	}

	again := e.Sort(people, Directive{ColumnKey: "team", Direction: Ascending}, cols)
	assert.Equal(t, ids(asc), ids(again), "repeated sorts must be reproducible")
}

func TestSortDescendingReversesDistinctKeys(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	people := make([]person, 200)
	for i := range people {
		people[i] = person{id: i, age: rng.Intn(1_000_000)*1000 + i}
	}
	e := newEngine(nil)
	cols := peopleColumns()

	asc := ids(e.Sort(people, Directive{ColumnKey: "age", Direction: Ascending}, cols))
	desc := ids(e.Sort(people, Directive{ColumnKey: "age", Direction: Descending}, cols))

	for i := range asc {
		require.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestSortInactiveReturnsInput(t *testing.T) {
	people := []person{{id: 2}, {id: 1}}
	e := newEngine(nil)

	for _, d := range []Directive{{}, {ColumnKey: "name"}, {Direction: Ascending}} {
		sorted := e.Sort(people, d, peopleColumns())
		assert.Equal(t, []int{2, 1}, ids(sorted))
	}
}

func TestSortSkipsUnsortableColumns(t *testing.T) {
	people := []person{{id: 2}, {id: 1}}
	logger := logtest.New()
	e := newEngine(logger)

	sorted := e.Sort(people, Directive{ColumnKey: "notes", Direction: Ascending}, peopleColumns())
	assert.Equal(t, []int{2, 1}, ids(sorted))

	sorted = e.Sort(people, Directive{ColumnKey: "missing", Direction: Ascending}, peopleColumns())
	assert.Equal(t, []int{2, 1}, ids(sorted))

	warnings := logger.EntriesAt(logging.Warn)
	require.Len(t, warnings, 2)
	assert.Equal(t, "notes", warnings[0].Fields["column"])
	assert.Contains(t, warnings[0].Message, "not sortable")
	assert.Contains(t, warnings[1].Message, "unknown sort column")
}

func TestCheck(t *testing.T) {
	cols := peopleColumns()
	assert.NoError(t, Check(Directive{}, cols))
	assert.NoError(t, Check(Directive{ColumnKey: "name", Direction: Descending}, cols))
	assert.True(t, errors.Is(Check(Directive{ColumnKey: "notes", Direction: Ascending}, cols), ErrNotSortable))
	assert.True(t, errors.Is(Check(Directive{ColumnKey: "x", Direction: Ascending}, cols), ErrUnknownColumn))
}

func TestSortRowsKeepsIdentity(t *testing.T) {
	people := []person{{id: 1, name: "B"}, {id: 2, name: "A"}}
	rows := columns.BuildRows(people, nil)
	e := newEngine(nil)

	sorted := e.SortRows(rows, Directive{ColumnKey: "name", Direction: Ascending}, peopleColumns())

	assert.Equal(t, []string{"1", "0"}, columns.IDs(sorted))
	assert.Equal(t, 1, sorted[0].SourceIndex)
}

func TestSortCustomComparator(t *testing.T) {
	people := []person{{id: 1, name: "ccc"}, {id: 2, name: "a"}, {id: 3, name: "bb"}}
	cols := peopleColumns()
	cols[1].Compare = func(a, b any) int { return len(b.(string)) - len(a.(string)) }
	e := newEngine(nil)

	sorted := e.Sort(people, Directive{ColumnKey: "name", Direction: Ascending}, cols)
	assert.Equal(t, []int{1, 3, 2}, ids(sorted))
}

func TestToggleCycle(t *testing.T) {
	var d Directive
	d = d.Toggle("name")
	assert.Equal(t, Directive{ColumnKey: "name", Direction: Ascending}, d)
	d = d.Toggle("name")
	assert.Equal(t, Descending, d.Direction)
	d = d.Toggle("name")
	assert.Equal(t, None, d.Direction)
	assert.False(t, d.Active())
	d = d.Toggle("name")
	assert.Equal(t, Ascending, d.Direction)

	d = d.Toggle("name").Toggle("age")
	assert.Equal(t, Directive{ColumnKey: "age", Direction: Ascending}, d)
	assert.Equal(t, None, d.For("name"))
	assert.Equal(t, Ascending, d.For("age"))
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		in      string
		want    Directive
		wantErr bool
	}{
		{in: "", want: Directive{}},
		{in: "name", want: Directive{ColumnKey: "name", Direction: Ascending}},
		{in: "name:desc", want: Directive{ColumnKey: "name", Direction: Descending}},
		{in: "name:ascending", want: Directive{ColumnKey: "name", Direction: Ascending}},
		{in: "name:sideways", wantErr: true},
		{in: ":asc", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirective(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if got.Active() {
				assert.Equal(t, tt.want.ColumnKey+":"+tt.want.Direction.Short(), got.String())
			}
		})
	}
}

func BenchmarkSort(b *testing.B) {
	for _, n := range []int{1_000, 100_000} {
		rng := rand.New(rand.NewSource(1))
		people := make([]person, n)
		for i := range people {
			people[i] = person{id: i, name: fmt.Sprintf("user-%d", rng.Intn(n)), age: rng.Intn(90)}
		}
		e := newEngine(nil)
		cols := peopleColumns()

		b.Run(fmt.Sprintf("name/%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				e.Sort(people, Directive{ColumnKey: "name", Direction: Ascending}, cols)
			}
		})
		b.Run(fmt.Sprintf("age/%d", n), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				e.Sort(people, Directive{ColumnKey: "age", Direction: Descending}, cols)
			}
		})
	}
}
