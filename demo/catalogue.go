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

// Package demo generates the product catalogue presented when no dataset
// is configured.
package demo

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/tabula/core/config"
	"github.com/google/tabula/datasources"
)

// Name of the generated dataset.
const Name = "demo-catalogue"

// Cardinalities of the generated attributes. Values cycle so that every
// sortable column has duplicates.
var (
	categories = []string{"Äpfel", "Beeren", "Brot", "Käse", "Öle", "Zitrusfrüchte", "Getränke"}
	adjectives = []string{"Organic", "Fresh", "Smoked", "Aged", "Wild", "Golden", "Rustic", "Crisp"}
	nouns      = []string{"Apple", "Basil", "Cheddar", "Dates", "Espresso", "Fig", "Granola", "Honey", "Olives", "Zucchini"}
	statuses   = []string{"in stock", "low", "backorder", "discontinued"}
)

var epoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

// Schema of the generated catalogue.
func Schema() datasources.Schema {
	return datasources.Schema{Fields: []datasources.Field{
		{Name: "sku", Type: datasources.TypeString},
		{Name: "name", Type: datasources.TypeString},
		{Name: "category", Type: datasources.TypeString},
		{Name: "price", Type: datasources.TypeNumber},
		{Name: "stock", Type: datasources.TypeNumber},
		{Name: "status", Type: datasources.TypeString},
		{Name: "added", Type: datasources.TypeDatetime},
		{Name: "organic", Type: datasources.TypeBool},
	}}
}

// Catalogue returns n generated products. The same n always yields the
// same records. Every 23rd product has no price and every 31st no stock,
// so missing values sort last.
func Catalogue(n int) *datasources.Dataset {
	n = max(n, 0)
	records := make([]datasources.Record, n)
	for i := range n {
		records[i] = product(i)
	}
	return &datasources.Dataset{
		Name:     Name,
		Format:   "demo",
		Schema:   Schema(),
		Records:  records,
		LoadedAt: epoch,
	}
}

func product(i int) datasources.Record {
	fields := map[string]*structpb.Value{
		"sku":      structpb.NewStringValue(fmt.Sprintf("SKU-%05d", i+1)),
		"name":     structpb.NewStringValue(adjectives[i%len(adjectives)] + " " + nouns[(i/len(adjectives))%len(nouns)]),
		"category": structpb.NewStringValue(categories[(i*3)%len(categories)]),
		"price":    structpb.NewNumberValue(float64(99+(i*37)%9900) / 100),
		"stock":    structpb.NewNumberValue(float64((i * 13) % 250)),
		"status":   structpb.NewStringValue(statuses[(i/5)%len(statuses)]),
		"added":    structpb.NewStringValue(epoch.AddDate(0, 0, (i*7)%720).Format(time.DateOnly)),
		"organic":  structpb.NewBoolValue(i%3 == 0),
	}
	if i%23 == 22 {
		fields["price"] = structpb.NewNullValue()
	}
	if i%31 == 30 {
		fields["stock"] = structpb.NewNullValue()
	}
	return &structpb.Struct{Fields: fields}
}

// Annotations are the column settings used for the catalogue when the
// configuration names none.
func Annotations() []config.Column {
	return []config.Column{
		{Key: "sku", Title: "SKU", Width: 10},
		{Key: "name", Title: "Product", Width: 20},
		{Key: "category", Title: "Category", Width: 14},
		{Key: "price", Title: "Price", Width: 8},
		{Key: "stock", Title: "Stock", Width: 6},
		{Key: "status", Title: "Status", Width: 12},
		{Key: "added", Title: "Added", Width: 10},
		{Key: "organic", Title: "Organic", Width: 7},
	}
}
