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

package database

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/modelgov/database/plugin"
	"github.com/blinklabs-io/modelgov/database/plugin/blob"
	"github.com/blinklabs-io/modelgov/database/plugin/blob/badger"
	"github.com/blinklabs-io/modelgov/database/plugin/metadata"
	"github.com/blinklabs-io/modelgov/database/plugin/metadata/mysql"
	"github.com/blinklabs-io/modelgov/database/plugin/metadata/postgres"
	"github.com/blinklabs-io/modelgov/database/plugin/metadata/sqlite"
)

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"
)

type Config struct {
	PromRegistry   prometheus.Registerer
	Logger         *slog.Logger
	BlobPlugin     string
	MetadataPlugin string
	// DataDir selects in-memory storage for the local plugins when empty
	DataDir string
}

// Database pairs a blob store holding asset records with a metadata store
// holding models, proposals and role grants
type Database struct {
	logger   *slog.Logger
	blob     blob.BlobStore
	metadata metadata.MetadataStore
	dataDir  string
}

func (d *Database) Blob() blob.BlobStore {
	return d.blob
}

func (d *Database) Metadata() metadata.MetadataStore {
	return d.metadata
}

// DataDir returns the configured data directory, empty when in-memory
func (d *Database) DataDir() string {
	return d.dataDir
}

func (d *Database) Logger() *slog.Logger {
	return d.logger
}

// Transaction opens a Txn across both stores
func (d *Database) Transaction(readWrite bool) *Txn {
	return NewTxn(d, readWrite)
}

func (d *Database) Close() error {
	var errs []error
	if d.metadata != nil {
		errs = append(errs, d.metadata.Close())
	}
	if d.blob != nil {
		errs = append(errs, d.blob.Close())
	}
	return errors.Join(errs...)
}

// New creates a new database instance using the configured storage plugins
func New(cfg *Config) (*Database, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	blobPlugin := cfg.BlobPlugin
	if blobPlugin == "" {
		blobPlugin = DefaultBlobPlugin
	}
	metadataPlugin := cfg.MetadataPlugin
	if metadataPlugin == "" {
		metadataPlugin = DefaultMetadataPlugin
	}
	// Local plugins share the configured data dir. Plugins without a data dir
	// option ignore it
	if err := plugin.SetPluginOption(
		plugin.PluginTypeBlob,
		blobPlugin,
		"data-dir",
		cfg.DataDir,
	); err != nil {
		return nil, err
	}
	if err := plugin.SetPluginOption(
		plugin.PluginTypeMetadata,
		metadataPlugin,
		"data-dir",
		cfg.DataDir,
	); err != nil {
		return nil, err
	}
	badger.SetRuntimeOptions(logger, cfg.PromRegistry)
	sqlite.SetRuntimeOptions(logger, cfg.PromRegistry)
	postgres.SetRuntimeOptions(logger, cfg.PromRegistry)
	mysql.SetRuntimeOptions(logger, cfg.PromRegistry)
	blobDb, err := blob.New(blobPlugin)
	if err != nil {
		return nil, err
	}
	metadataDb, err := metadata.New(metadataPlugin)
	if err != nil {
		_ = blobDb.Close()
		return nil, err
	}
	db := &Database{
		logger:   logger,
		blob:     blobDb,
		metadata: metadataDb,
		dataDir:  cfg.DataDir,
	}
	// The database is returned with a CommitTimestampError so the caller
	// can inspect or close it
	if err := db.checkCommitTimestamp(); err != nil {
		return db, err
	}
	return db, nil
}
