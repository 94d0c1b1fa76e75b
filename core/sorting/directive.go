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
	"fmt"
	"strings"
)

// Direction is the sort direction of a column.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return "none"
	}
}

// Short returns "asc", "desc" or "" for use in URLs.
func (d Direction) Short() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// ParseDirection accepts the long and short direction names.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return None, fmt.Errorf("unknown sort direction %q", s)
}

// Directive selects at most one sort column and its direction.
type Directive struct {
	ColumnKey string
	Direction Direction
}

// Active reports whether the directive sorts anything.
func (d Directive) Active() bool {
	return d.ColumnKey != "" && d.Direction != None
}

// For returns the direction shown for the column key: the directive's
// direction for the active column, None for every other column.
func (d Directive) For(key string) Direction {
	if d.Active() && d.ColumnKey == key {
		return d.Direction
	}
	return None
}

// Toggle returns the directive after activating the column key. Repeated
// activation of the same column cycles none, ascending, descending, none.
// Activating a different column starts it at ascending.
func (d Directive) Toggle(key string) Directive {
	if key == "" {
		return Directive{}
	}
	if d.ColumnKey != key {
		return Directive{ColumnKey: key, Direction: Ascending}
	}
	switch d.Direction {
	case None:
		return Directive{ColumnKey: key, Direction: Ascending}
	case Ascending:
		return Directive{ColumnKey: key, Direction: Descending}
	default:
		return Directive{ColumnKey: key, Direction: None}
	}
}

// String formats the directive as "key:asc", "key:desc" or "".
func (d Directive) String() string {
	if !d.Active() {
		return ""
	}
	return d.ColumnKey + ":" + d.Direction.Short()
}

// ParseDirective parses "key", "key:asc" or "key:desc". A bare key sorts
// ascending. The empty string is the inactive directive.
func ParseDirective(s string) (Directive, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Directive{}, nil
	}
	key, dir, found := strings.Cut(s, ":")
	if !found {
		return Directive{ColumnKey: key, Direction: Ascending}, nil
	}
	direction, err := ParseDirection(dir)
	if err != nil {
		return Directive{}, err
	}
	if key == "" {
		return Directive{}, fmt.Errorf("sort directive %q has no column", s)
	}
	return Directive{ColumnKey: key, Direction: direction}, nil
}
