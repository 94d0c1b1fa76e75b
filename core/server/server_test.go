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

package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/tabula/core/config"
	logtest "github.com/google/tabula/core/logging/test"
	"github.com/google/tabula/datasources"
	"github.com/google/tabula/demo"
)

func newServer(t *testing.T, mutate func(*config.Config)) (*Server, *datasources.Manager) {
	t.Helper()
	cfg := config.Default()
	cfg.Title = "Catalogue"
	cfg.PageSize = 10
	cfg.RowIDField = "sku"
	cfg.Columns = demo.Annotations()
	if mutate != nil {
		mutate(&cfg)
	}
	m := datasources.NewManager(nil)
	m.Set(demo.Catalogue(50))
	s, err := New(Options{Config: cfg, Manager: m, Logger: logtest.New()})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, m
}

func get(t *testing.T, h http.Handler, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	require.Fail(t, "no session cookie")
	return nil
}

func TestServeTable(t *testing.T) {
	s, _ := newServer(t, nil)
	h := s.Handler()

	rec := get(t, h, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Catalogue</title>")
	assert.Contains(t, body, "Rows 1–10 of 50")
	assert.Contains(t, body, "SKU-00001")
	assert.NotContains(t, body, "SKU-00011")
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	rec = get(t, h, "/?sort=sku&dir=desc&page=2&size=10", cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "SKU-00040")
	assert.NotContains(t, body, "SKU-00041")
	assert.Contains(t, body, `aria-sort="descending"`)
	assert.Equal(t, cookie.Value, sessionCookie(t, rec).Value)
	assert.Equal(t, 1, s.Sessions())
}

func TestSessionState(t *testing.T) {
	s, _ := newServer(t, nil)
	h := s.Handler()
	cookie := sessionCookie(t, get(t, h, "/", nil))

	rec := get(t, h, "/?page=1&size=10&select=SKU-00003", cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?page=1&size=10", rec.Header().Get("Location"))

	rec = get(t, h, "/", cookie)
	body := rec.Body.String()
	assert.Contains(t, body, `class="selected"`)
	assert.Contains(t, body, "deselect=SKU-00003")
	assert.Contains(t, body, "1 selected")

	// Another client has its own table.
	other := get(t, h, "/", nil)
	assert.NotContains(t, other.Body.String(), `class="selected"`)
	assert.NotEqual(t, cookie.Value, sessionCookie(t, other).Value)
	assert.Equal(t, 2, s.Sessions())
}

func TestUnknownSessionCookie(t *testing.T) {
	s, _ := newServer(t, nil)
	rec := get(t, s.Handler(), "/", &http.Cookie{Name: CookieName, Value: "not-a-uuid"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, "not-a-uuid", sessionCookie(t, rec).Value)
}

func TestSessionEviction(t *testing.T) {
	s, _ := newServer(t, func(c *config.Config) { c.SessionCacheSize = 1 })
	h := s.Handler()
	get(t, h, "/", nil)
	get(t, h, "/", nil)
	assert.Equal(t, 1, s.Sessions())
}

func TestRouting(t *testing.T) {
	s, _ := newServer(t, nil)
	h := s.Handler()

	assert.Equal(t, http.StatusNotFound, get(t, h, "/elsewhere", nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newServer(t, nil)
	h := s.Handler()
	get(t, h, "/", nil)

	rec := get(t, h, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "tabula_sessions 1")
	assert.Contains(t, body, `handler="table"`)
	assert.Contains(t, body, `tabula_recomputes_total{status="ready"}`)
}

func TestDatasetReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fruit.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "apple"}, {"name": "pear"}]`), 0o644))

	cfg := config.Default()
	m := datasources.NewManager(nil)
	_, err := m.LoadFile(path, "")
	require.NoError(t, err)
	s, err := New(Options{Config: cfg, Manager: m})
	require.NoError(t, err)
	defer s.Close()
	h := s.Handler()

	rec := get(t, h, "/", nil)
	cookie := sessionCookie(t, rec)
	assert.Contains(t, rec.Body.String(), "pear")

	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "quince", "kg": 2}]`), 0o644))
	_, err = m.Reload()
	require.NoError(t, err)

	body := get(t, h, "/", cookie).Body.String()
	assert.Contains(t, body, "quince")
	assert.NotContains(t, body, "pear")
	assert.Contains(t, body, ">kg </a>")

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = m.Reload()
	require.Error(t, err)
	assert.Contains(t, get(t, h, "/", cookie).Body.String(), "quince")

	metrics := get(t, h, "/metrics", nil).Body.String()
	assert.Contains(t, metrics, `tabula_dataset_reloads_total{outcome="ok"} 1`)
	assert.Contains(t, metrics, `tabula_dataset_reloads_total{outcome="error"} 1`)
}

func TestNewRequiresManager(t *testing.T) {
	_, err := New(Options{Config: config.Default()})
	assert.Error(t, err)
}
