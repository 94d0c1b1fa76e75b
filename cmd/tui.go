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
	"os"

	"github.com/spf13/cobra"

	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/core/tui"
	"github.com/google/tabula/datasources"
)

func init() {
	tuiCommand := &cobra.Command{
		Use:   "tui",
		Short: "Browse the table in the terminal",
		Long: `Browse the table in the terminal.

Unless --window-threshold is given, only the rows that fit the terminal are
rendered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(settings, configFile, os.Stderr)
			if err != nil {
				return err
			}
			// Logging to the terminal would garble the screen.
			e.logger.SetLevel(logging.Error)
			if f := cmd.Flag("window-threshold"); f == nil || !f.Changed {
				e.cfg.WindowThreshold = 1
			}
			if err := e.watch(cmd.Context()); err != nil {
				return err
			}

			table := datasources.NewTable(e.manager.Current(), e.cfg, datasources.TableOptions{Logger: e.logger})
			p := tui.NewProgram(table, tui.Options{Title: e.title(), Logger: e.logger})
			unsubscribe := e.manager.Subscribe(func(ds *datasources.Dataset, err error) {
				if err != nil || ds == nil {
					return
				}
				cols := datasources.InferColumns(ds.Schema, e.cfg.Columns)
				p.Send(tui.ApplyMsg(func() {
					table.SetColumns(cols)
					table.SetRecords(ds.Records)
				}))
			})
			defer unsubscribe()
			return tui.Run(p)
		},
	}
	RootCommand.AddCommand(tuiCommand)
}
