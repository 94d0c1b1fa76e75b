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

package columns

import "strconv"

// RowIDFunc resolves the identity of a record. index is the record's
// position in the caller's input, not in any sorted or paged sequence.
//
// Two distinct records must not resolve to the same identity. Which one
// wins in a selection when they do is undefined.
type RowIDFunc[R any] func(record R, index int) string

// IndexRowID is the default identity: the input position. It is only stable
// when the caller keeps the input order stable across updates.
func IndexRowID[R any](_ R, index int) string {
	return strconv.Itoa(index)
}

// Row is a record paired with its input position and resolved identity.
type Row[R any] struct {
	Record      R
	SourceIndex int
	ID          string
}

// BuildRows resolves identities for records. A nil id uses IndexRowID.
func BuildRows[R any](records []R, id RowIDFunc[R]) []Row[R] {
	if id == nil {
		id = IndexRowID[R]
	}
	rows := make([]Row[R], len(records))
	for i, r := range records {
		rows[i] = Row[R]{Record: r, SourceIndex: i, ID: id(r, i)}
	}
	return rows
}

// Records returns the records of rows in order.
func Records[R any](rows []Row[R]) []R {
	out := make([]R, len(rows))
	for i, row := range rows {
		out[i] = row.Record
	}
	return out
}

// IDs returns the identities of rows in order.
func IDs[R any](rows []Row[R]) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.ID
	}
	return out
}
