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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/google/tabula/core/rendering"
	"github.com/google/tabula/core/views"
	"github.com/google/tabula/core/windowing"
	"github.com/google/tabula/datasources"
)

// printChrome is the number of terminal lines around the printed rows:
// borders, header and summary.
const printChrome = 5

type printParams struct {
	page   int
	filter string
	all    bool
	// keepThreshold is set when --window-threshold was passed.
	keepThreshold bool
}

func init() {
	var params printParams
	printCommand := &cobra.Command{
		Use:   "print",
		Short: "Print one page of the table",
		Long: `Print one page of the table as text.

The sort, page size and other settings come from the global flags, e.g.

	tabula print --sort price:desc --page 2

On a terminal only the rows that fit the screen are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(settings, configFile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if f := cmd.Flag("window-threshold"); f != nil && f.Changed {
				params.keepThreshold = true
			}
			if !params.all {
				if _, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
					e.cfg.ViewportHeight = height - printChrome
				} else if !params.keepThreshold {
					e.cfg.WindowThreshold = -1
				}
			}
			return printTable(cmd.OutOrStdout(), e, params)
		},
	}
	printCommand.Flags().IntVar(&params.page, "page", 1, "page to print")
	printCommand.Flags().StringVarP(&params.filter, "filter", "q", "", "only print rows containing this text")
	printCommand.Flags().BoolVar(&params.all, "all", false, "print every row, ignoring the page size and the terminal height")
	RootCommand.AddCommand(printCommand)
}

func printTable(w io.Writer, e *env, params printParams) error {
	cfg := e.cfg
	tc := datasources.TableConfig(e.manager.Current(), cfg, datasources.TableOptions{Logger: e.logger})
	if params.all {
		tc.DisablePagination = true
		tc.WindowThreshold = -1
	} else if cfg.WindowThreshold >= 0 {
		tc.Viewport = windowing.Viewport{Height: max(cfg.ViewportHeight, 1), RowHeight: 1}
		if !params.keepThreshold {
			tc.WindowThreshold = 1
		}
	}
	table := views.New(tc)

	table.SetFilter(params.filter)
	if params.page > 1 {
		table.HandlePageChange(params.page)
	}
	d := table.Display()
	if d.Paginated && params.page > d.Page.TotalPages {
		e.logger.Warn("page %d does not exist, printing page %d", params.page, d.Page.CurrentPage)
	}
	if err := rendering.RenderText(w, d); err != nil {
		return fmt.Errorf("printing table: %w", err)
	}
	return nil
}
