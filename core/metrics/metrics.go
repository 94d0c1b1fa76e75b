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

// Package metrics exports table and server metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/google/tabula/core/views"
)

const namespace = "tabula"

var stageBuckets = []float64{
	1e-6, // 1 microsecond
	1e-5,
	1e-4,
	1e-3, // 1 millisecond
	0.01,
	0.1,
	1,
}

// Provider owns a Prometheus registry and the collectors tabula reports
// to. It implements views.Observer so a table can report recomputes
// directly.
type Provider struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageRuns     *prometheus.CounterVec
	recomputes    *prometheus.CounterVec
	sessions      prometheus.Gauge
	reloads       *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New creates a provider with a fresh registry that also carries the Go
// runtime collector.
func New() *Provider {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	p := &Provider{
		registry: registry,
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent computing a pipeline stage, excluding cache hits.",
			Buckets:   stageBuckets,
		}, []string{"stage"}),
		stageRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_runs_total",
			Help:      "Pipeline stage evaluations by cache result.",
		}, []string{"stage", "result"}),
		recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputes_total",
			Help:      "View model recomputes by resulting status.",
		}, []string{"status"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Live server sessions.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_reloads_total",
			Help:      "Dataset reloads by outcome.",
		}, []string{"outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "A histogram of duration for requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "handler", "method"}),
	}
	registry.MustRegister(p.stageDuration, p.stageRuns, p.recomputes, p.sessions, p.reloads, p.httpDuration)
	return p
}

// ObserveStage implements views.Observer.
func (p *Provider) ObserveStage(stage views.Stage, cached bool, d time.Duration) {
	if cached {
		p.stageRuns.WithLabelValues(string(stage), "hit").Inc()
		return
	}
	p.stageRuns.WithLabelValues(string(stage), "miss").Inc()
	p.stageDuration.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// ObserveRecompute implements views.Observer.
func (p *Provider) ObserveRecompute(status views.Status, _ time.Duration) {
	p.recomputes.WithLabelValues(status.String()).Inc()
}

// SetSessions records the number of live sessions.
func (p *Provider) SetSessions(n int) {
	p.sessions.Set(float64(n))
}

// DatasetReloaded counts a reload attempt.
func (p *Provider) DatasetReloaded(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.reloads.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps handler to record request durations under label.
func (p *Provider) InstrumentHandler(handler http.Handler, label string) http.Handler {
	duration := p.httpDuration.MustCurryWith(prometheus.Labels{"handler": label})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler.ServeHTTP(rw, r)
		duration.With(prometheus.Labels{
			"code":   strconv.Itoa(rw.status),
			"method": r.Method,
		}).Observe(time.Since(start).Seconds())
	})
}

// Register adds a collector to the registry.
func (p *Provider) Register(c prometheus.Collector) error {
	return p.registry.Register(c)
}

// Gatherer exposes the registry for tests and exporters.
func (p *Provider) Gatherer() prometheus.Gatherer {
	return p.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

var _ views.Observer = (*Provider)(nil)
