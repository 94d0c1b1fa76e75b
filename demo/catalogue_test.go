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

package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/views"
	"github.com/google/tabula/datasources"
)

func TestCatalogueIsDeterministic(t *testing.T) {
	a, b := Catalogue(100), Catalogue(100)
	require.Len(t, a.Records, 100)
	for i := range a.Records {
		assert.True(t, proto.Equal(a.Records[i], b.Records[i]), "record %d", i)
	}
	assert.Equal(t, "SKU-00001", datasources.Value(a.Records[0], "sku"))
	assert.Equal(t, "Organic Apple", datasources.Value(a.Records[0], "name"))
	assert.Equal(t, 0.99, datasources.Value(a.Records[0], "price"))
	assert.Equal(t, "2023-01-01", datasources.Value(a.Records[0], "added"))
	assert.Nil(t, datasources.Value(a.Records[22], "price"))
	assert.Nil(t, datasources.Value(a.Records[30], "stock"))

	assert.Empty(t, Catalogue(-1).Records)
}

func TestCatalogueMatchesSchema(t *testing.T) {
	ds := Catalogue(10)
	names := ds.Schema.Names()
	for i, rec := range ds.Records {
		assert.Len(t, rec.GetFields(), len(names), "record %d", i)
		for _, name := range names {
			assert.Contains(t, rec.GetFields(), name)
		}
	}
	for _, a := range Annotations() {
		assert.Contains(t, names, a.Key)
	}
}

func TestCatalogueDrivesTable(t *testing.T) {
	ds := Catalogue(60)
	cols := datasources.InferColumns(ds.Schema, Annotations())
	require.NoError(t, columns.Validate(cols))

	table := views.New(views.Config[datasources.Record]{
		Records:  ds.Records,
		Columns:  cols,
		RowID:    datasources.RowIDField("sku"),
		PageSize: 25,
	})
	require.True(t, table.HandleSort("price"))

	vm := table.Snapshot()
	require.Equal(t, views.StatusReady, vm.Status)
	assert.Equal(t, 3, vm.Page.TotalPages)
	assert.Len(t, vm.Paged, 25)

	first := datasources.Value(vm.Paged[0].Record, "price").(float64)
	for _, r := range vm.Paged[1:] {
		p := datasources.Value(r.Record, "price").(float64)
		assert.GreaterOrEqual(t, p, first)
		first = p
	}
}
