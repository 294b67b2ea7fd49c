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

package postgres

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/blinklabs-io/modelgov/database/plugin/metadata/internal/gormstore"
)

// MetadataStorePostgres keeps models, proposals and role grants in Postgres
type MetadataStorePostgres struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	conn         gormstore.ConnOptions
}

func New(opts ...PostgresOptionFunc) (*MetadataStorePostgres, error) {
	d := &MetadataStorePostgres{}
	for _, opt := range opts {
		opt(d)
	}
	d.conn = d.conn.WithDefaults(defaultConnOptions)
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return d, nil
}

// connString returns the DSN when one is set, otherwise a keyword/value
// string built from the connection settings
func (d *MetadataStorePostgres) connString() string {
	if dsn := strings.TrimSpace(d.conn.DSN); dsn != "" {
		return dsn
	}
	kv := []string{
		"host=" + d.conn.Host,
		"user=" + d.conn.User,
		"password=" + d.conn.Password,
		"dbname=" + d.conn.Database,
		"port=" + strconv.FormatUint(d.conn.Port, 10),
		"sslmode=" + d.conn.SSLMode,
	}
	if d.conn.TimeZone != "" {
		kv = append(kv, "TimeZone="+d.conn.TimeZone)
	}
	return strings.Join(kv, " ")
}

// Start implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Start() error {
	db, err := gorm.Open(postgres.Open(d.connString()), gormstore.Config())
	if err != nil {
		return err
	}
	sqlDB, err := gormstore.ConfigurePool(db, d.conn.MaxConns)
	if err != nil {
		return err
	}
	store, err := gormstore.Init(db, d.conn.Database, d.logger, d.promRegistry)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.Store = store
	d.logger.Info(
		"connected to postgres metadata store",
		"component", "database",
		"host", d.conn.Host,
		"port", d.conn.Port,
		"database", d.conn.Database,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}

func (d *MetadataStorePostgres) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}
