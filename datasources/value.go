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
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Value returns the Go value of a record field: float64, string, bool, or
// nil for null and missing fields. Lists and objects are returned as
// their JSON text.
func Value(r Record, field string) any {
	if r == nil {
		return nil
	}
	v, ok := r.GetFields()[field]
	if !ok {
		return nil
	}
	return goValue(v)
}

func goValue(v *structpb.Value) any {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return k.NumberValue
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_BoolValue:
		return k.BoolValue
	case *structpb.Value_ListValue, *structpb.Value_StructValue:
		b, err := json.Marshal(v.AsInterface())
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return nil
	}
}

// typeOf classifies a single value. ok is false for null.
func typeOf(v *structpb.Value) (t ValueType, ok bool) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return TypeNumber, true
	case *structpb.Value_BoolValue:
		return TypeBool, true
	case *structpb.Value_StringValue:
		if looksLikeDate(k.StringValue) {
			return TypeDatetime, true
		}
		return TypeString, true
	case *structpb.Value_NullValue, nil:
		return TypeString, false
	default:
		return TypeString, true
	}
}

var dateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// parseCell converts CSV text to a value. Empty cells are null.
func parseCell(s string, t ValueType) *structpb.Value {
	if s == "" {
		return structpb.NewNullValue()
	}
	switch t {
	case TypeNumber:
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return structpb.NewNumberValue(f)
		}
	case TypeBool:
		if b, ok := parseBool(s); ok {
			return structpb.NewBoolValue(b)
		}
	}
	return structpb.NewStringValue(s)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes":
		return true, true
	case "false", "no":
		return false, true
	}
	return false, false
}

// inferCSVType samples up to sampleSize non-empty cells of a column.
func inferCSVType(col int, rows [][]string) ValueType {
	const sampleSize = 100
	isNumber, isBool, isDate := true, true, true
	seen := 0
	for _, row := range rows {
		if seen == sampleSize {
			break
		}
		if col >= len(row) || row[col] == "" {
			continue
		}
		seen++
		val := row[col]
		if isNumber {
			if _, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err != nil {
				isNumber = false
			}
		}
		if isBool {
			if _, ok := parseBool(val); !ok {
				isBool = false
			}
		}
		if isDate && !looksLikeDate(val) {
			isDate = false
		}
	}
	switch {
	case seen == 0:
		return TypeString
	case isNumber:
		return TypeNumber
	case isBool:
		return TypeBool
	case isDate:
		return TypeDatetime
	}
	return TypeString
}
