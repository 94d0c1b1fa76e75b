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
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// CSVLoader reads delimited text. Column types are inferred from a sample
// of each column; empty cells load as null.
type CSVLoader struct {
	// Delimiter defaults to ','.
	Delimiter rune
	// NoHeader names the columns col_0, col_1, ... instead of reading
	// them from the first row.
	NoHeader bool
}

// SourceType implements Loader.
func (l CSVLoader) SourceType() string { return "csv" }

// Load implements Loader.
func (l CSVLoader) Load(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	if l.Delimiter != 0 {
		reader.Comma = l.Delimiter
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	var names []string
	if l.NoHeader {
		for i := range rows[0] {
			names = append(names, fmt.Sprintf("col_%d", i))
		}
	} else {
		for i, h := range rows[0] {
			h = strings.TrimSpace(h)
			if h == "" {
				h = fmt.Sprintf("col_%d", i)
			}
			names = append(names, h)
		}
		rows = rows[1:]
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Type: inferCSVType(i, rows)}
	}

	records := make([]Record, len(rows))
	for i, row := range rows {
		rec := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
		for j, f := range fields {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			rec.Fields[f.Name] = parseCell(cell, f.Type)
		}
		records[i] = rec
	}

	return &Dataset{
		Format:   "csv",
		Schema:   Schema{Fields: fields},
		Records:  records,
		LoadedAt: time.Now(),
	}, nil
}
