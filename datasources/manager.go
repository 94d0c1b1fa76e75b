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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/tabula/core/logging"
)

// ReloadFunc is told about every load attempt. On failure ds is the
// dataset that stays current, which may be nil.
type ReloadFunc func(ds *Dataset, err error)

// Manager owns the current dataset and the loaders that produce it.
type Manager struct {
	mu      sync.RWMutex
	loaders map[string]Loader
	current *Dataset

	subs   map[int]ReloadFunc
	nextID int

	logger logging.Logger
}

// NewManager returns a manager with the JSON and CSV loaders registered.
func NewManager(logger logging.Logger) *Manager {
	m := &Manager{
		loaders: make(map[string]Loader),
		subs:    make(map[int]ReloadFunc),
		logger:  logging.OrNoOp(logger),
	}
	m.RegisterLoader(JSONLoader{})
	m.RegisterLoader(CSVLoader{})
	return m
}

// RegisterLoader registers a loader for its source type, replacing any
// loader registered for the same type.
func (m *Manager) RegisterLoader(l Loader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaders[strings.ToLower(l.SourceType())] = l
}

// Loader returns the loader registered for format.
func (m *Manager) Loader(format string) (Loader, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loaders[strings.ToLower(format)]
	return l, ok
}

// FormatOf returns format when set, and otherwise the extension of path
// without its dot.
func FormatOf(path, format string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// LoadFile loads path and makes it the current dataset. format selects
// the loader; when empty the file extension does. On failure the previous
// dataset stays current.
func (m *Manager) LoadFile(path, format string) (*Dataset, error) {
	ds, err := m.load(path, format)
	if err != nil {
		m.logger.WithFields(map[string]any{"path": path}).Error("loading dataset failed: %v", err)
		m.notify(m.Current(), err)
		return nil, err
	}
	m.Set(ds)
	m.logger.WithFields(map[string]any{
		"path":    path,
		"format":  ds.Format,
		"records": len(ds.Records),
		"fields":  len(ds.Schema.Fields),
	}).Info("dataset loaded")
	return ds, nil
}

func (m *Manager) load(path, format string) (*Dataset, error) {
	format = FormatOf(path, format)
	loader, ok := m.Loader(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := loader.Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	ds.Path = path
	ds.Format = format
	if ds.Name == "" {
		ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return ds, nil
}

// Reload loads the current dataset's file again.
func (m *Manager) Reload() (*Dataset, error) {
	cur := m.Current()
	if cur == nil || cur.Path == "" {
		return nil, errors.New("no file-backed dataset to reload")
	}
	return m.LoadFile(cur.Path, cur.Format)
}

// Set installs ds as the current dataset and notifies subscribers.
func (m *Manager) Set(ds *Dataset) {
	m.mu.Lock()
	m.current = ds
	m.mu.Unlock()
	m.notify(ds, nil)
}

// Current returns the current dataset, or nil before the first load.
func (m *Manager) Current() *Dataset {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Subscribe registers fn for load attempts and returns a function that
// removes it.
func (m *Manager) Subscribe(fn ReloadFunc) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify(ds *Dataset, err error) {
	m.mu.RLock()
	subs := make([]ReloadFunc, 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.RUnlock()
	for _, fn := range subs {
		fn(ds, err)
	}
}
