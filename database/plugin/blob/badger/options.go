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
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Settings are the tunables of the badger store
type Settings struct {
	// DataDir is the parent of the "blob" directory. Empty means in-memory.
	DataDir        string
	BlockCacheSize uint64
	IndexCacheSize uint64
	GcInterval     time.Duration
	Gc             bool
}

// DefaultSettings are sized for small asset records
func DefaultSettings() Settings {
	return Settings{
		DataDir:        ".modelgov",
		BlockCacheSize: 64 << 20,
		IndexCacheSize: 32 << 20,
		GcInterval:     5 * time.Minute,
		Gc:             true,
	}
}

type BlobStoreBadgerOptionFunc func(*BlobStoreBadger)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(registry prometheus.Registerer) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.promRegistry = registry
	}
}

// WithSettings replaces all tunables
func WithSettings(settings Settings) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.settings = settings
	}
}

// WithDataDir specifies the data directory to use for storage
func WithDataDir(dataDir string) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.settings.DataDir = dataDir
	}
}

// WithGc enables or disables value log garbage collection
func WithGc(enabled bool) BlobStoreBadgerOptionFunc {
	return func(b *BlobStoreBadger) {
		b.settings.Gc = enabled
	}
}
