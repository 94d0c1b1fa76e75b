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
	"github.com/google/tabula/core/config"
	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/core/views"
)

// TableOptions are the collaborators of a table built by NewTable.
type TableOptions struct {
	Logger   logging.Logger
	Observer views.Observer
}

// TableConfig returns the table configuration presenting ds under cfg.
// Columns are inferred from the schema and annotated by cfg.Columns.
func TableConfig(ds *Dataset, cfg config.Config, opts TableOptions) views.Config[Record] {
	c := views.Config[Record]{
		RowID:           RowIDField(cfg.RowIDField),
		Sort:            cfg.Directive(),
		SelectionMode:   cfg.SelectionMode(),
		PageSize:        cfg.PageSize,
		PageSizeOptions: cfg.PageSizeOptions,
		Viewport:        cfg.Viewport(),
		WindowThreshold: cfg.WindowThreshold,
		Language:        cfg.LanguageTag(),
		Logger:          opts.Logger,
		Observer:        opts.Observer,
	}
	if ds != nil {
		c.Records = ds.Records
		c.Columns = InferColumns(ds.Schema, cfg.Columns)
	}
	return c
}

// NewTable builds a table presenting ds under cfg. A nil dataset yields an
// empty table without columns.
func NewTable(ds *Dataset, cfg config.Config, opts TableOptions) *views.Table[Record] {
	return views.New(TableConfig(ds, cfg, opts))
}
