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
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/google/tabula/core/logging"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads the manager's dataset when its file changes.
type Watcher struct {
	manager  *Manager
	path     string
	debounce time.Duration
	logger   logging.Logger
	watcher  *fsnotify.Watcher
}

// NewWatcher watches the directory of the current dataset's file. Watching
// the directory rather than the file keeps working when editors replace
// the file on save.
func NewWatcher(m *Manager, debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	cur := m.Current()
	if cur == nil || cur.Path == "" {
		return nil, fmt.Errorf("no file-backed dataset to watch")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path, err := filepath.Abs(cur.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", cur.Path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}
	return &Watcher{
		manager:  m,
		path:     path,
		debounce: debounce,
		logger:   logging.OrNoOp(logger).WithFields(map[string]any{"path": path}),
		watcher:  w,
	}, nil
}

// Run processes file events until ctx is done. Each burst of writes,
// creates or renames of the watched file triggers one reload.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	mask := fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(evt.Name) != w.path || evt.Op&mask == 0 {
				continue
			}
			w.logger.Debug("dataset file event: %v", evt.Op)
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watching dataset failed: %v", err)
		case <-timer.C:
			// A removal without a following create fails here and keeps the
			// previous dataset.
			if _, err := w.manager.LoadFile(w.path, w.manager.Current().Format); err == nil {
				w.logger.Info("dataset reloaded")
			}
		}
	}
}
