// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mysql

import (
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/modelgov/database/plugin"
	"github.com/blinklabs-io/modelgov/database/plugin/metadata/internal/gormstore"
)

var defaultConnOptions = gormstore.ConnOptions{
	Host:     "localhost",
	Port:     3306,
	User:     "root",
	Database: "modelgov",
	TimeZone: "UTC",
	MaxConns: 20,
}

var (
	cmdlineOptions struct {
		logger       *slog.Logger
		promRegistry prometheus.Registerer
		conn         gormstore.ConnOptions
	}
	cmdlineOptionsMutex sync.RWMutex
)

// Register plugin
func init() {
	cmdlineOptions.conn = defaultConnOptions
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "mysql",
			Description:        "MySQL relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: cmdlineOptions.conn.PluginOptions(
				"MySQL",
				"MYSQL",
				defaultConnOptions,
			),
		},
	)
}

// SetRuntimeOptions provides the logger and metrics registry used for the
// next instance created from the command line options
func SetRuntimeOptions(logger *slog.Logger, promRegistry prometheus.Registerer) {
	cmdlineOptionsMutex.Lock()
	defer cmdlineOptionsMutex.Unlock()
	cmdlineOptions.logger = logger
	cmdlineOptions.promRegistry = promRegistry
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := []MysqlOptionFunc{
		WithConnOptions(cmdlineOptions.conn),
		WithLogger(cmdlineOptions.logger),
		WithPromRegistry(cmdlineOptions.promRegistry),
	}
	cmdlineOptionsMutex.RUnlock()
	p, err := New(opts...)
	if err != nil {
		// Defer the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
