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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// JSONLoader reads a JSON array of objects. Fields are ordered by their
// first appearance.
type JSONLoader struct{}

// SourceType implements Loader.
func (JSONLoader) SourceType() string { return "json" }

// Load implements Loader.
func (JSONLoader) Load(r io.Reader) (*Dataset, error) {
	var raws []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decoding JSON array: %w", err)
	}
	if len(raws) == 0 {
		return nil, ErrEmptyDataset
	}

	var order []string
	seen := make(map[string]bool)
	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		keys, err := objectKeys(raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
		rec := &structpb.Struct{}
		if err := protojson.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	return &Dataset{
		Format:   "json",
		Schema:   inferJSONSchema(order, records),
		Records:  records,
		LoadedAt: time.Now(),
	}, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotAnObject
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// inferJSONSchema types each field by its non-null values. Fields whose
// values disagree are strings.
func inferJSONSchema(order []string, records []Record) Schema {
	fields := make([]Field, len(order))
	for i, name := range order {
		var (
			t     ValueType
			typed bool
		)
		for _, rec := range records {
			v, ok := rec.GetFields()[name]
			if !ok {
				continue
			}
			vt, ok := typeOf(v)
			if !ok {
				continue
			}
			if !typed {
				t, typed = vt, true
				continue
			}
			if vt != t {
				t = TypeString
				break
			}
		}
		fields[i] = Field{Name: name, Type: t}
	}
	return Schema{Fields: fields}
}
