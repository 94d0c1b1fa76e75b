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

package datasources

import (
	"strconv"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/config"
)

// InferColumns builds one column per schema field. Numbers are right
// aligned and compare numerically, datetimes compare as dates, and every
// column is sortable. Annotations override the inferred title, alignment,
// hint, width and sortability; hidden columns are left out. Annotations
// for unknown fields are ignored.
func InferColumns(schema Schema, annotations []config.Column) []columns.Column[Record] {
	byKey := make(map[string]config.Column, len(annotations))
	for _, a := range annotations {
		byKey[a.Key] = a
	}

	cols := make([]columns.Column[Record], 0, len(schema.Fields))
	for _, f := range schema.Fields {
		col := columns.Column[Record]{
			Key:      f.Name,
			Accessor: fieldAccessor(f.Name),
			Sortable: true,
		}
		switch f.Type {
		case TypeNumber:
			col.Hint = columns.HintNumeric
			col.Align = columns.AlignRight
		case TypeDatetime:
			col.Hint = columns.HintDate
		case TypeBool:
			col.Align = columns.AlignCenter
		}

		if a, ok := byKey[f.Name]; ok {
			if a.Hidden {
				continue
			}
			col.Title = a.Title
			col.Width = a.Width
			if a.Align != "" {
				if align, err := columns.ParseAlign(a.Align); err == nil {
					col.Align = align
				}
			}
			if a.Hint != "" {
				if hint, err := columns.ParseHint(a.Hint); err == nil {
					col.Hint = hint
				}
			}
			if a.Sortable != nil {
				col.Sortable = *a.Sortable
			}
		}
		cols = append(cols, col)
	}
	return cols
}

func fieldAccessor(name string) func(Record) any {
	return func(r Record) any { return Value(r, name) }
}

// RowIDField identifies records by the text of a field. Records missing
// the field fall back to their input position. An empty field name
// identifies every record by position.
func RowIDField(field string) columns.RowIDFunc[Record] {
	if field == "" {
		return columns.IndexRowID[Record]
	}
	return func(r Record, index int) string {
		v := Value(r, field)
		if v == nil {
			return "#" + strconv.Itoa(index)
		}
		return columns.FormatValue(v)
	}
}
