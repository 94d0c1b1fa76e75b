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

// Package config loads tabula settings from defaults, an optional config
// file, TABULA_* environment variables and command line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/google/tabula/core/columns"
	"github.com/google/tabula/core/logging"
	"github.com/google/tabula/core/pagination"
	"github.com/google/tabula/core/selection"
	"github.com/google/tabula/core/sorting"
	"github.com/google/tabula/core/windowing"
)

// EnvPrefix prefixes every environment variable, e.g. TABULA_PAGE_SIZE.
const EnvPrefix = "tabula"

// Column annotates an inferred dataset column.
type Column struct {
	Key      string `mapstructure:"key"`
	Title    string `mapstructure:"title"`
	Align    string `mapstructure:"align"`
	Hint     string `mapstructure:"hint"`
	Width    int    `mapstructure:"width"`
	Sortable *bool  `mapstructure:"sortable"`
	Hidden   bool   `mapstructure:"hidden"`
}

// Config holds every setting of the tabula commands.
type Config struct {
	Addr string `mapstructure:"addr"`

	Dataset    string `mapstructure:"dataset"`
	Format     string `mapstructure:"format"`
	RowIDField string `mapstructure:"row_id_field"`
	Title      string `mapstructure:"title"`
	Watch      bool   `mapstructure:"watch"`
	DemoRows   int    `mapstructure:"demo_rows"`

	Sort            string `mapstructure:"sort"`
	Selection       string `mapstructure:"selection"`
	PageSize        int    `mapstructure:"page_size"`
	PageSizeOptions []int  `mapstructure:"page_size_options"`

	RowHeight       int `mapstructure:"row_height"`
	Overscan        int `mapstructure:"overscan"`
	WindowThreshold int `mapstructure:"window_threshold"`
	ViewportHeight  int `mapstructure:"viewport_height"`

	Language string `mapstructure:"lang"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	SessionCacheSize int `mapstructure:"session_cache_size"`

	Columns []Column `mapstructure:"columns"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:             "localhost:8080",
		Title:            "tabula",
		DemoRows:         500,
		Selection:        selection.ModeMultiple.String(),
		PageSize:         pagination.DefaultPageSize,
		PageSizeOptions:  slices.Clone(pagination.DefaultPageSizeOptions),
		RowHeight:        36,
		Overscan:         windowing.DefaultOverscan,
		WindowThreshold:  windowing.DefaultThreshold,
		ViewportHeight:   720,
		Language:         "und",
		LogLevel:         "info",
		LogFormat:        "text",
		SessionCacheSize: 1024,
	}
}

type flagSpec struct {
	key   string
	flag  string
	usage string
}

var flagSpecs = []flagSpec{
	{"addr", "addr", "listen address of the HTTP server"},
	{"dataset", "dataset", "JSON or CSV file to present (demo data when empty)"},
	{"format", "format", "dataset format: json or csv (default: by file extension)"},
	{"row_id_field", "row-id-field", "dataset field that identifies a row (default: row position)"},
	{"title", "title", "table title"},
	{"watch", "watch", "reload the dataset when the file changes"},
	{"demo_rows", "demo-rows", "number of generated rows when no dataset is given"},
	{"sort", "sort", "initial sort, e.g. name:asc"},
	{"selection", "selection", "selection mode: none, single or multiple"},
	{"page_size", "page-size", "rows per page"},
	{"page_size_options", "page-size-options", "page sizes offered to users"},
	{"row_height", "row-height", "row height used for windowing"},
	{"overscan", "overscan", "rows rendered beyond each edge of the viewport"},
	{"window_threshold", "window-threshold", "working set size above which windowing engages (negative disables)"},
	{"viewport_height", "viewport-height", "viewport height used for windowing"},
	{"lang", "lang", "collation language, e.g. de or sv"},
	{"log_level", "log-level", "log level: error, warn, info or debug"},
	{"log_format", "log-format", "log format: text, json or json-pretty"},
	{"session_cache_size", "session-cache-size", "maximum number of server sessions kept"},
}

// RegisterFlags defines every setting as a flag on fs and binds it to v.
func RegisterFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	d := Default()
	fs.String("addr", d.Addr, "")
	fs.String("dataset", d.Dataset, "")
	fs.String("format", d.Format, "")
	fs.String("row-id-field", d.RowIDField, "")
	fs.String("title", d.Title, "")
	fs.Bool("watch", d.Watch, "")
	fs.Int("demo-rows", d.DemoRows, "")
	fs.String("sort", d.Sort, "")
	fs.String("selection", d.Selection, "")
	fs.Int("page-size", d.PageSize, "")
	fs.IntSlice("page-size-options", d.PageSizeOptions, "")
	fs.Int("row-height", d.RowHeight, "")
	fs.Int("overscan", d.Overscan, "")
	fs.Int("window-threshold", d.WindowThreshold, "")
	fs.Int("viewport-height", d.ViewportHeight, "")
	fs.String("lang", d.Language, "")
	fs.String("log-level", d.LogLevel, "")
	fs.String("log-format", d.LogFormat, "")
	fs.Int("session-cache-size", d.SessionCacheSize, "")

	for _, s := range flagSpecs {
		f := fs.Lookup(s.flag)
		f.Usage = s.usage
		if err := v.BindPFlag(s.key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", s.flag, err)
		}
	}
	return nil
}

// NewViper returns a viper instance with the defaults and environment
// binding installed. Every key gets a default so Unmarshal sees values that
// only come from the environment.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	for key, value := range map[string]any{
		"addr":               d.Addr,
		"dataset":            d.Dataset,
		"format":             d.Format,
		"row_id_field":       d.RowIDField,
		"title":              d.Title,
		"watch":              d.Watch,
		"demo_rows":          d.DemoRows,
		"sort":               d.Sort,
		"selection":          d.Selection,
		"page_size":          d.PageSize,
		"page_size_options":  d.PageSizeOptions,
		"row_height":         d.RowHeight,
		"overscan":           d.Overscan,
		"window_threshold":   d.WindowThreshold,
		"viewport_height":    d.ViewportHeight,
		"lang":               d.Language,
		"log_level":          d.LogLevel,
		"log_format":         d.LogFormat,
		"session_cache_size": d.SessionCacheSize,
	} {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path into v and decodes the
// result. An empty path skips the file.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.PageSize < 1 {
		errs = append(errs, fmt.Errorf("page_size must be at least 1, got %d", c.PageSize))
	}
	for _, n := range c.PageSizeOptions {
		if n < 1 {
			errs = append(errs, fmt.Errorf("page_size_options must be at least 1, got %d", n))
		}
	}
	if c.RowHeight < 1 {
		errs = append(errs, fmt.Errorf("row_height must be at least 1, got %d", c.RowHeight))
	}
	if c.Overscan < 0 {
		errs = append(errs, fmt.Errorf("overscan must not be negative, got %d", c.Overscan))
	}
	if c.ViewportHeight < 0 {
		errs = append(errs, fmt.Errorf("viewport_height must not be negative, got %d", c.ViewportHeight))
	}
	if c.SessionCacheSize < 1 {
		errs = append(errs, fmt.Errorf("session_cache_size must be at least 1, got %d", c.SessionCacheSize))
	}
	if _, err := language.Parse(c.Language); err != nil {
		errs = append(errs, fmt.Errorf("lang: %w", err))
	}
	if _, err := logging.GetLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := selection.ParseMode(c.Selection); err != nil {
		errs = append(errs, fmt.Errorf("selection: %w", err))
	}
	if _, err := sorting.ParseDirective(c.Sort); err != nil {
		errs = append(errs, fmt.Errorf("sort: %w", err))
	}
	switch strings.ToLower(c.Format) {
	case "", "json", "csv":
	default:
		errs = append(errs, fmt.Errorf("format must be json or csv, got %q", c.Format))
	}
	seen := make(map[string]bool, len(c.Columns))
	for i, col := range c.Columns {
		if col.Key == "" {
			errs = append(errs, fmt.Errorf("columns[%d]: key is empty", i))
			continue
		}
		if seen[col.Key] {
			errs = append(errs, fmt.Errorf("columns[%d]: duplicate key %q", i, col.Key))
		}
		seen[col.Key] = true
		if _, err := columns.ParseAlign(col.Align); err != nil {
			errs = append(errs, fmt.Errorf("columns[%d]: %w", i, err))
		}
		if _, err := columns.ParseHint(col.Hint); err != nil {
			errs = append(errs, fmt.Errorf("columns[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// LanguageTag returns the collation language. Invalid tags are undefined.
func (c Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und
	}
	return tag
}

// Directive returns the initial sort. Invalid values sort nothing.
func (c Config) Directive() sorting.Directive {
	d, _ := sorting.ParseDirective(c.Sort)
	return d
}

// SelectionMode returns the selection mode. Invalid values select nothing.
func (c Config) SelectionMode() selection.Mode {
	m, _ := selection.ParseMode(c.Selection)
	return m
}

// Viewport returns the windowing viewport.
func (c Config) Viewport() windowing.Viewport {
	return windowing.Viewport{
		Height:    c.ViewportHeight,
		RowHeight: c.RowHeight,
		Overscan:  c.Overscan,
	}
}

// Annotation returns the annotation for the column key.
func (c Config) Annotation(key string) (Column, bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// NewLogger builds the logger described by the log settings.
func (c Config) NewLogger(w io.Writer) (logging.Logger, error) {
	l, err := logging.NewWithOptions(w, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}
	return l, nil
}
