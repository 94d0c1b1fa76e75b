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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/google/tabula/core/metrics"
	"github.com/google/tabula/core/server"
)

const shutdownGracePeriod = 10 * time.Second

func init() {
	serveCommand := &cobra.Command{
		Use:   "serve",
		Short: "Serve the table over HTTP",
		Long: `Serve the table over HTTP.

Every browser session keeps its own sort, page, filter and selection. The
Prometheus metrics are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
	RootCommand.AddCommand(serveCommand)
}

func serve(ctx context.Context) error {
	e, err := setup(settings, configFile, os.Stderr)
	if err != nil {
		return err
	}
	if err := e.watch(ctx); err != nil {
		return err
	}

	s, err := server.New(server.Options{
		Config:  e.cfg,
		Manager: e.manager,
		Metrics: metrics.New(),
		Logger:  e.logger,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	httpServer := &http.Server{
		Addr:              e.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		e.logger.WithFields(map[string]any{"addr": e.cfg.Addr}).Info("serving %s", e.title())
		errc <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
