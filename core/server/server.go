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

// Package server serves tables over HTTP. Every client gets its own table
// state, kept in a session identified by a cookie.
package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/google/tabula/core/config"
	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/core/metrics"
	"github.com/google/tabula/core/query"
	"github.com/google/tabula/core/rendering"
	"github.com/google/tabula/core/views"
	"github.com/google/tabula/datasources"
)

// CookieName is the name of the session cookie.
const CookieName = "tabula_session"

// Options are the dependencies of a Server.
type Options struct {
	Config  config.Config
	Manager *datasources.Manager
	// Metrics defaults to a fresh provider.
	Metrics *metrics.Provider
	Logger  logging.Logger
}

// Server represents the application server with all its dependencies
type Server struct {
	cfg      config.Config
	manager  *datasources.Manager
	metrics  *metrics.Provider
	renderer *rendering.HTMLRenderer
	logger   logging.Logger

	mu       sync.Mutex
	sessions *lru.Cache[string, *session]

	unsubscribe func()
}

type session struct {
	mu    sync.Mutex
	table *views.Table[datasources.Record]
}

// New creates a server presenting the current dataset of opts.Manager.
// Dataset reloads are pushed to every live session.
func New(opts Options) (*Server, error) {
	if opts.Manager == nil {
		return nil, fmt.Errorf("server: dataset manager is required")
	}
	renderer, err := rendering.NewHTMLRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	provider := opts.Metrics
	if provider == nil {
		provider = metrics.New()
	}
	s := &Server{
		cfg:      opts.Config,
		manager:  opts.Manager,
		metrics:  provider,
		renderer: renderer,
		logger:   logging.OrNoOp(opts.Logger),
	}
	s.sessions, err = lru.NewWithEvict(max(opts.Config.SessionCacheSize, 1), func(id string, _ *session) {
		s.logger.WithFields(map[string]any{"session": id}).Debug("session evicted")
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}
	s.unsubscribe = s.manager.Subscribe(s.datasetReloaded)
	return s, nil
}

// Close stops following dataset reloads.
func (s *Server) Close() {
	s.unsubscribe()
}

// Handler returns the HTTP handler serving the table at "/" and the
// metrics at "/metrics".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	mux.Handle("/", s.metrics.InstrumentHandler(http.HandlerFunc(s.ServeTable), "table"))
	return mux
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.Len()
}

// session returns the session for id, creating it when it is unknown or
// was evicted.
func (s *Server) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions.Get(id); ok {
		return sess
	}
	sess := &session{table: s.newTable()}
	s.sessions.Add(id, sess)
	s.metrics.SetSessions(s.sessions.Len())
	s.logger.WithFields(map[string]any{"session": id}).Debug("session created")
	return sess
}

func (s *Server) newTable() *views.Table[datasources.Record] {
	return datasources.NewTable(s.manager.Current(), s.cfg, datasources.TableOptions{
		Logger:   s.logger,
		Observer: s.metrics,
	})
}

func (s *Server) datasetReloaded(ds *datasources.Dataset, err error) {
	s.metrics.DatasetReloaded(err)
	if err != nil {
		s.logger.Warn("keeping previous dataset: %v", err)
		return
	}
	if ds == nil {
		return
	}
	cols := datasources.InferColumns(ds.Schema, s.cfg.Columns)
	sessions := s.sessions.Values()
	for _, sess := range sessions {
		sess.mu.Lock()
		sess.table.SetColumns(cols)
		sess.table.SetRecords(ds.Records)
		sess.mu.Unlock()
	}
	s.logger.WithFields(map[string]any{
		"records":  len(ds.Records),
		"sessions": len(sessions),
	}).Info("dataset pushed to sessions")
}

func (s *Server) title() string {
	if s.cfg.Title != "" {
		return s.cfg.Title
	}
	if ds := s.manager.Current(); ds != nil {
		return ds.Name
	}
	return "tabula"
}

// TableHandlerResult represents the result of handling a table request.
// A nil result means the page was written.
type TableHandlerResult struct {
	Error      error
	StatusCode int
	Message    string
	// Redirect is set when the request carried actions. It is the URL of
	// the resulting view state.
	Redirect string
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	fields map[string]any
	start  time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{fields: make(map[string]any), start: time.Now()}
}

// Record records the duration of operation in milliseconds.
func (tc *TimingCollector) Record(operation string, d time.Duration) {
	tc.fields[operation+"_ms"] = float64(d.Microseconds()) / 1000
}

// Fields returns the recorded timings and the total as log fields.
func (tc *TimingCollector) Fields() map[string]any {
	tc.Record("total", time.Since(tc.start))
	return tc.fields
}

// HandleTableRequest applies the state and actions of requestURL to the
// table of the session and writes the resulting page to w.
func (s *Server) HandleTableRequest(w io.Writer, requestURL *url.URL, sessionID string, setHeader func(key, value string)) *TableHandlerResult {
	timing := NewTimingCollector()

	parseStart := time.Now()
	q := query.NewQuery(requestURL)
	timing.Record("parse", time.Since(parseStart))

	sess := s.session(sessionID)

	sess.mu.Lock()
	applyStart := time.Now()
	q.Apply(sess.table)
	state := query.FromTable(requestURL.Path, sess.table)
	timing.Record("apply", time.Since(applyStart))

	if q.HasActions() {
		sess.mu.Unlock()
		return &TableHandlerResult{StatusCode: http.StatusSeeOther, Redirect: state.ToURL()}
	}

	pageStart := time.Now()
	page := rendering.NewPage(s.title(), sess.table.Display(), state)
	sess.mu.Unlock()
	timing.Record("page", time.Since(pageStart))

	renderStart := time.Now()
	setHeader("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Render(w, page); err != nil {
		s.logger.Error("Template rendering error: %v", err)
		return &TableHandlerResult{Error: err, StatusCode: http.StatusInternalServerError, Message: "rendering failed"}
	}
	timing.Record("render", time.Since(renderStart))

	s.logger.WithFields(timing.Fields()).WithFields(map[string]any{
		"session": sessionID,
		"status":  page.Status,
	}).Debug("table served")
	return nil
}

// ServeTable is the HTTP handler of the table page.
func (s *Server) ServeTable(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := sessionID(r)
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	var buf bytes.Buffer
	result := s.HandleTableRequest(&buf, r.URL, id, w.Header().Set)
	switch {
	case result == nil:
		if _, err := w.Write(buf.Bytes()); err != nil {
			s.logger.Debug("writing response: %v", err)
		}
	case result.Redirect != "":
		http.Redirect(w, r, result.Redirect, result.StatusCode)
	default:
		http.Error(w, result.Message, result.StatusCode)
	}
}

// sessionID returns the session of the request cookie, or a new one.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	return uuid.NewString()
}
