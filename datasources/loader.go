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

// Package datasources loads datasets from JSON and CSV files into
// schema-less records and derives table columns from them.
package datasources

import (
	"errors"
	"io"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Record is one row of a dataset. Field values are JSON-like: numbers,
// strings, booleans or null.
type Record = *structpb.Struct

var (
	ErrEmptyDataset  = errors.New("dataset has no rows")
	ErrNotAnObject   = errors.New("record is not an object")
	ErrUnknownFormat = errors.New("unknown dataset format")
)

// ValueType is the inferred type of a dataset field.
type ValueType int

const (
	TypeString ValueType = iota
	TypeNumber
	TypeBool
	TypeDatetime
)

// String returns the string representation of the value type.
func (t ValueType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeBool:
		return "bool"
	case TypeDatetime:
		return "datetime"
	default:
		return "string"
	}
}

// Field is one discovered field of a dataset.
type Field struct {
	Name string
	Type ValueType
}

// Schema lists the fields of a dataset in source order.
type Schema struct {
	Fields []Field
}

// Names returns the field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Dataset is a loaded file.
type Dataset struct {
	Name     string
	Path     string
	Format   string
	Schema   Schema
	Records  []Record
	LoadedAt time.Time
}

// Loader decodes one dataset format.
type Loader interface {
	// SourceType returns the format name used in configuration, e.g.
	// "json" or "csv".
	SourceType() string

	// Load decodes every record of r and discovers the schema.
	Load(r io.Reader) (*Dataset, error)
}
