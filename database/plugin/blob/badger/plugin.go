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

package badger

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/modelgov/database/plugin"
)

var (
	cmdlineOptions struct {
		logger       *slog.Logger
		promRegistry prometheus.Registerer
		settings     Settings
		gcSeconds    uint64
	}
	cmdlineOptionsMutex sync.RWMutex
)

// Register plugin
func init() {
	defaults := DefaultSettings()
	cmdlineOptions.settings = defaults
	cmdlineOptions.gcSeconds = uint64(defaults.GcInterval / time.Second)
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB local key-value store",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "data directory for asset records",
					DefaultValue: defaults.DataDir,
					Dest:         &cmdlineOptions.settings.DataDir,
				},
				{
					Name:         "block-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "block cache size in bytes",
					DefaultValue: defaults.BlockCacheSize,
					Dest:         &cmdlineOptions.settings.BlockCacheSize,
				},
				{
					Name:         "index-cache-size",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "index cache size in bytes",
					DefaultValue: defaults.IndexCacheSize,
					Dest:         &cmdlineOptions.settings.IndexCacheSize,
				},
				{
					Name:         "gc",
					Type:         plugin.PluginOptionTypeBool,
					Description:  "enable value log garbage collection",
					DefaultValue: defaults.Gc,
					Dest:         &cmdlineOptions.settings.Gc,
				},
				{
					Name:         "gc-interval",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "seconds between value log garbage collection runs",
					DefaultValue: cmdlineOptions.gcSeconds,
					Dest:         &cmdlineOptions.gcSeconds,
				},
			},
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
	settings := cmdlineOptions.settings
	if cmdlineOptions.gcSeconds > 0 {
		settings.GcInterval = time.Duration(cmdlineOptions.gcSeconds) * time.Second //nolint:gosec
	} else {
		settings.Gc = false
	}
	opts := []BlobStoreBadgerOptionFunc{
		WithSettings(settings),
		WithLogger(cmdlineOptions.logger),
		WithPromRegistry(cmdlineOptions.promRegistry),
	}
	cmdlineOptionsMutex.RUnlock()
	p, err := New(opts...)
	if err != nil {
		return plugin.NewErrorPlugin(err)
	}
	return p
}
