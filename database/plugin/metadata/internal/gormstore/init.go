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

package gormstore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/blinklabs-io/modelgov/database/models"
)

// Config returns the gorm config shared by all metadata plugins
func Config() *gorm.Config {
	return &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	}
}

// Init configures tracing and metrics on an opened gorm handle and creates
// the table schemas
func Init(
	db *gorm.DB,
	dbName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*Store, error) {
	// Configure tracing for GORM
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	if promRegistry != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		err = promRegistry.Register(
			collectors.NewDBStatsCollector(sqlDB, dbName),
		)
		if err != nil {
			var alreadyRegistered prometheus.AlreadyRegisteredError
			if !errors.As(err, &alreadyRegistered) {
				return nil, err
			}
		}
	}
	// Create table schemas
	logger.Debug(fmt.Sprintf("creating table: %#v", &CommitTimestamp{}))
	if err := db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return nil, err
	}
	for _, model := range models.MigrateModels {
		logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := db.AutoMigrate(model); err != nil {
			return nil, err
		}
	}
	return New(db), nil
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}
