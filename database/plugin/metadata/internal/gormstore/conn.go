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
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/blinklabs-io/modelgov/database/plugin"
)

// ConnOptions are the connection settings of a networked metadata store
type ConnOptions struct {
	Host     string
	User     string
	Password string
	Database string
	SSLMode  string
	TimeZone string
	// DSN takes precedence over the individual settings when set
	DSN      string
	Port     uint64
	MaxConns int
}

// WithDefaults returns a copy with every unset field taken from defaults
func (c ConnOptions) WithDefaults(defaults ConnOptions) ConnOptions {
	if c.Host == "" {
		c.Host = defaults.Host
	}
	if c.User == "" {
		c.User = defaults.User
	}
	if c.Database == "" {
		c.Database = defaults.Database
	}
	if c.SSLMode == "" {
		c.SSLMode = defaults.SSLMode
	}
	if c.TimeZone == "" {
		c.TimeZone = defaults.TimeZone
	}
	if c.Port == 0 {
		c.Port = defaults.Port
	}
	if c.MaxConns <= 0 {
		c.MaxConns = defaults.MaxConns
	}
	return c
}

// PluginOptions exposes the fields of c as plugin options. Each option also
// reads <envPrefix>_<NAME> from the environment.
func (c *ConnOptions) PluginOptions(
	label string,
	envPrefix string,
	defaults ConnOptions,
) []plugin.PluginOption {
	str := func(name, desc, env, def string, dest *string) plugin.PluginOption {
		return plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeString,
			Description:  label + " " + desc,
			DefaultValue: def,
			CustomEnvVar: envPrefix + "_" + env,
			Dest:         dest,
		}
	}
	return []plugin.PluginOption{
		str("host", "host", "HOST", defaults.Host, &c.Host),
		{
			Name:         "port",
			Type:         plugin.PluginOptionTypeUint,
			Description:  label + " port",
			DefaultValue: defaults.Port,
			CustomEnvVar: envPrefix + "_PORT",
			Dest:         &c.Port,
		},
		str("user", "user", "USER", defaults.User, &c.User),
		// No default password: credentials must be supplied
		str("password", "password", "PASSWORD", "", &c.Password),
		str("database", "database name", "DATABASE", defaults.Database, &c.Database),
		str("ssl-mode", "TLS mode", "SSLMODE", defaults.SSLMode, &c.SSLMode),
		str("timezone", "time zone", "TIMEZONE", defaults.TimeZone, &c.TimeZone),
		str("dsn", "DSN, overrides the other connection options", "DSN", "", &c.DSN),
		{
			Name:         "max-connections",
			Type:         plugin.PluginOptionTypeInt,
			Description:  "maximum number of open connections",
			DefaultValue: defaults.MaxConns,
			Dest:         &c.MaxConns,
		},
	}
}

// ConfigurePool applies the pool limits to an opened handle
func ConfigurePool(db *gorm.DB, maxConns int) (*sql.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(min(10, maxConns))
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	return sqlDB, nil
}
