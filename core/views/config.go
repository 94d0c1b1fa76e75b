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

package views

import (
	"time"

	"golang.org/x/text/language"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/core/selection"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/windowing"
)

// DefaultRowHeight is used when the viewport does not set a row height.
const DefaultRowHeight = 36

// Config is the initial state of a Table.
type Config[R any] struct {
	Records []R
	Columns []columns.Column[R]
	// RowID resolves row identities. Defaults to the input position.
	RowID columns.RowIDFunc[R]

	Sort          sorting.Directive
	SelectionMode selection.Mode

	// PageSize defaults to pagination.DefaultPageSize.
	PageSize        int
	PageSizeOptions []int
	// DisablePagination shows the whole working set on one page.
	DisablePagination bool

	Viewport windowing.Viewport
	// WindowThreshold is the working set size above which windowing
	// engages. 0 uses windowing.DefaultThreshold, negative disables it.
	WindowThreshold int

	// Language selects the collation of alphanumeric columns.
	Language language.Tag

	Logger   logging.Logger
	Observer Observer

	// Callbacks run after a handle changed the state, before subscribers
	// are notified.
	OnSort           func(sorting.Directive)
	OnSelect         func(records []R, indices []int)
	OnPageChange     func(page int)
	OnPageSizeChange func(size int)
}

// Stage names one step of the recompute pipeline.
type Stage string

const (
	StageRows       Stage = "rows"
	StageFilter     Stage = "filter"
	StageSort       Stage = "sort"
	StageSelection  Stage = "selection"
	StagePagination Stage = "pagination"
	StageWindowing  Stage = "windowing"
)

// Stages lists the pipeline in execution order.
var Stages = []Stage{StageRows, StageFilter, StageSort, StageSelection, StagePagination, StageWindowing}

// Observer receives recompute timings. Implementations must be cheap; they
// run inside every mutation.
type Observer interface {
	// ObserveStage is called once per stage per recompute. cached is true
	// when the stage's inputs were unchanged and the previous output was
	// reused.
	ObserveStage(stage Stage, cached bool, d time.Duration)
	// ObserveRecompute is called once per recompute.
	ObserveRecompute(status Status, d time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveStage(Stage, bool, time.Duration) {}
func (nopObserver) ObserveRecompute(Status, time.Duration)  {}
