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

package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "", want: Info},
		{in: "DEBUG", want: Debug},
		{in: "warn", want: Warn},
		{in: "error", want: Error},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := GetLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStandardLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOptions(&buf, "debug", "json")
	require.NoError(t, err)

	l.WithFields(map[string]any{"column": "name"}).Warn("column %q is not sortable", "name")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "name", entry["column"])
	assert.Equal(t, `column "name" is not sortable`, entry["msg"])
}

func TestStandardLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOptions(&buf, "warn", "text")
	require.NoError(t, err)

	l.Info("hidden")
	l.Error("shown")

	assert.Equal(t, Warn, l.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, &NoOpLogger{}, OrNoOp(nil))
	l := New()
	assert.Same(t, l, OrNoOp(l))
}
