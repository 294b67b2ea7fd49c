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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/blinklabs-io/modelgov/database/plugin/metadata/internal/gormstore"
)

// MySQL server error for an unknown database
const mysqlErrBadDb = 1049

// MetadataStoreMysql keeps models, proposals and role grants in MySQL
type MetadataStoreMysql struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	conn         gormstore.ConnOptions
}

func New(opts ...MysqlOptionFunc) (*MetadataStoreMysql, error) {
	d := &MetadataStoreMysql{}
	for _, opt := range opts {
		opt(d)
	}
	d.conn = d.conn.WithDefaults(defaultConnOptions)
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return d, nil
}

// driverConfig parses the DSN when one is set, otherwise it assembles the
// config from the connection settings
func (d *MetadataStoreMysql) driverConfig() (*mysql.Config, error) {
	if dsn := strings.TrimSpace(d.conn.DSN); dsn != "" {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		return cfg, nil
	}
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.conn.Host, strconv.FormatUint(d.conn.Port, 10))
	cfg.User = d.conn.User
	cfg.Passwd = d.conn.Password
	cfg.DBName = d.conn.Database
	cfg.ParseTime = true
	cfg.AllowNativePasswords = true
	cfg.TLSConfig = d.conn.SSLMode
	if d.conn.TimeZone != "" {
		loc, err := time.LoadLocation(d.conn.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("load time zone: %w", err)
		}
		cfg.Loc = loc
	}
	return cfg, nil
}

// open connects to the configured database, creating it on first use
func open(cfg *mysql.Config) (*gorm.DB, error) {
	db, err := gorm.Open(gormmysql.Open(cfg.FormatDSN()), gormstore.Config())
	if err == nil {
		return db, nil
	}
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlErrBadDb {
		return nil, err
	}
	if err := createDatabase(cfg); err != nil {
		return nil, fmt.Errorf("create database %q: %w", cfg.DBName, err)
	}
	return gorm.Open(gormmysql.Open(cfg.FormatDSN()), gormstore.Config())
}

func createDatabase(cfg *mysql.Config) error {
	if cfg.DBName == "" {
		return errors.New("no database name configured")
	}
	serverCfg := *cfg
	serverCfg.DBName = ""
	serverDb, err := gorm.Open(
		gormmysql.Open(serverCfg.FormatDSN()),
		gormstore.Config(),
	)
	if err != nil {
		return err
	}
	sqlDB, err := serverDb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return serverDb.Exec(
		"CREATE DATABASE IF NOT EXISTS `" +
			strings.ReplaceAll(cfg.DBName, "`", "``") + "`",
	).Error
}

// Start implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Start() error {
	cfg, err := d.driverConfig()
	if err != nil {
		return err
	}
	db, err := open(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormstore.ConfigurePool(db, d.conn.MaxConns)
	if err != nil {
		return err
	}
	store, err := gormstore.Init(db, cfg.DBName, d.logger, d.promRegistry)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	d.Store = store
	d.logger.Info(
		"connected to mysql metadata store",
		"component", "database",
		"addr", cfg.Addr,
		"database", cfg.DBName,
	)
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

func (d *MetadataStoreMysql) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}
