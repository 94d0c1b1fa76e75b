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

// Package cmd implements the tabula command line.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/google/tabula/core/config"
	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/datasources"
	"github.com/google/tabula/demo"
)

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = &cobra.Command{
	Use:          path.Base(os.Args[0]),
	Short:        "Tabula",
	Long:         "Present JSON and CSV datasets as sortable, selectable, paginated tables in the browser or the terminal.",
	SilenceUsage: true,
}

var (
	settings   = config.NewViper()
	configFile string
)

func init() {
	flags := RootCommand.PersistentFlags()
	flags.StringVarP(&configFile, "config-file", "c", "", "set path of configuration file")
	if err := config.RegisterFlags(flags, settings); err != nil {
		panic(err)
	}
}

// env is what every command starts from.
type env struct {
	cfg     config.Config
	logger  logging.Logger
	manager *datasources.Manager
}

// setup loads the configuration and the dataset. Without a dataset the
// generated demo catalogue is presented.
func setup(v *viper.Viper, configFile string, logOutput io.Writer) (*env, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	logger, err := cfg.NewLogger(logOutput)
	if err != nil {
		return nil, err
	}

	m := datasources.NewManager(logger)
	if cfg.Dataset != "" {
		if _, err := m.LoadFile(cfg.Dataset, cfg.Format); err != nil {
			return nil, err
		}
	} else {
		m.Set(demo.Catalogue(cfg.DemoRows))
		if len(cfg.Columns) == 0 {
			cfg.Columns = demo.Annotations()
		}
		if cfg.RowIDField == "" {
			cfg.RowIDField = "sku"
		}
	}
	return &env{cfg: cfg, logger: logger, manager: m}, nil
}

func (e *env) title() string {
	if e.cfg.Title != "" {
		return e.cfg.Title
	}
	return e.manager.Current().Name
}

// watch reloads the dataset on file changes until ctx is done, when the
// configuration asks for it.
func (e *env) watch(ctx context.Context) error {
	if !e.cfg.Watch {
		return nil
	}
	if e.cfg.Dataset == "" {
		e.logger.Warn("--watch has no effect without --dataset")
		return nil
	}
	w, err := datasources.NewWatcher(e.manager, datasources.DefaultDebounce, e.logger)
	if err != nil {
		return fmt.Errorf("watching dataset: %w", err)
	}
	go func() {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			e.logger.Error("dataset watcher stopped: %v", err)
		}
	}()
	return nil
}
