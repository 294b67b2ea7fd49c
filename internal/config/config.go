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

package config

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/modelgov/database/plugin"
	"github.com/blinklabs-io/modelgov/internal/secrets"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "modelgov.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultBlobPlugin      = "badger"
	DefaultMetadataPlugin  = "sqlite"
	EnvPrefix              = "modelgov"
)

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type tempConfig struct {
	Config   yaml.Node                 `yaml:"config,omitempty"`
	Database *databaseConfig           `yaml:"database,omitempty"`
	Blob     map[string]map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]map[string]any `yaml:"metadata,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath    string   `yaml:"databasePath"    split_words:"true"`
	BlobPlugin      string   `yaml:"blobPlugin"      envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin  string   `yaml:"metadataPlugin"  envconfig:"DATABASE_METADATA_PLUGIN"`
	BindAddr        string   `yaml:"bindAddr"        split_words:"true"`
	TlsCertFilePath string   `yaml:"tlsCertFilePath" envconfig:"TLS_CERT_FILE_PATH"`
	TlsKeyFilePath  string   `yaml:"tlsKeyFilePath"  envconfig:"TLS_KEY_FILE_PATH"`
	JwtSecret       string   `yaml:"jwtSecret"       split_words:"true"`
	JwtSecretFile   string   `yaml:"jwtSecretFile"   split_words:"true"`
	ShutdownTimeout string   `yaml:"shutdownTimeout" split_words:"true"`
	ServerUrl       string   `yaml:"serverUrl"       split_words:"true"`
	Token           string   `yaml:"token"`
	Admins          []string `yaml:"admins"`
	Creators        []string `yaml:"creators"`
	RpcPort         uint     `yaml:"rpcPort"         split_words:"true"`
	MetricsPort     uint     `yaml:"metricsPort"     split_words:"true"`
	Tracing         bool     `yaml:"tracing"`
	TracingStdout   bool     `yaml:"tracingStdout"   split_words:"true"`
}

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    ".modelgov",
		BlobPlugin:      DefaultBlobPlugin,
		MetadataPlugin:  DefaultMetadataPlugin,
		BindAddr:        "0.0.0.0",
		ShutdownTimeout: DefaultShutdownTimeout,
		ServerUrl:       "http://127.0.0.1:9090",
		RpcPort:         9090,
		MetricsPort:     12798,
	}
}

// findConfigFile returns the first config file found in the default search
// path, or an empty string
func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, ".modelgov", "modelgov.yaml")
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := "/etc/modelgov/modelgov.yaml"
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

// LoadConfig builds the configuration from defaults, the YAML config file and
// the environment, in that order. Plugin options in the file and the
// environment are applied to the registered storage plugins.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadConfigFile(cfg, configFile); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if _, err := cfg.ShutdownTimeoutDuration(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if !tempCfg.Config.IsZero() {
		// Overlay the config section onto the defaults
		if err := tempCfg.Config.Decode(cfg); err != nil {
			return fmt.Errorf("error parsing config section: %w", err)
		}
	} else if err := yaml.Unmarshal(buf, cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Blob != nil {
		pluginConfig["blob"] = tempCfg.Blob
	}
	if tempCfg.Metadata != nil {
		pluginConfig["metadata"] = tempCfg.Metadata
	}
	if tempCfg.Database != nil {
		if tempCfg.Database.Blob != nil {
			name, options := pluginSection("blob", tempCfg.Database.Blob)
			if name != "" {
				cfg.BlobPlugin = name
			}
			mergePluginConfig(pluginConfig, "blob", options)
		}
		if tempCfg.Database.Metadata != nil {
			name, options := pluginSection("metadata", tempCfg.Database.Metadata)
			if name != "" {
				cfg.MetadataPlugin = name
			}
			mergePluginConfig(pluginConfig, "metadata", options)
		}
	}
	if len(pluginConfig) > 0 {
		if err := plugin.ProcessConfig(pluginConfig); err != nil {
			return fmt.Errorf("error processing plugin config: %w", err)
		}
	}
	return nil
}

// pluginSection splits a database.<type> section into the selected plugin
// name and per-plugin option maps
func pluginSection(
	pluginType string,
	section map[string]any,
) (string, map[string]map[string]any) {
	var name string
	if val, ok := section["plugin"].(string); ok {
		name = val
	}
	options := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			options[k] = val
		case map[any]any:
			stringAnyMap := make(map[string]any)
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					stringAnyMap[keyStr] = vv
				}
			}
			options[k] = stringAnyMap
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				pluginType,
				k,
				v,
			)
		}
	}
	return name, options
}

func mergePluginConfig(
	pluginConfig map[string]map[string]map[string]any,
	pluginType string,
	options map[string]map[string]any,
) {
	if pluginConfig[pluginType] == nil {
		pluginConfig[pluginType] = options
		return
	}
	maps.Copy(pluginConfig[pluginType], options)
}

func (c *Config) ShutdownTimeoutDuration() (time.Duration, error) {
	if c.ShutdownTimeout == "" {
		return 30 * time.Second, nil
	}
	ret, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	return ret, nil
}

// Secret returns the token signing secret. A secret file, which may be SOPS
// encrypted, takes precedence over an inline secret.
func (c *Config) Secret() ([]byte, error) {
	if c.JwtSecretFile != "" {
		return secrets.LoadSecretFile(c.JwtSecretFile)
	}
	if c.JwtSecret != "" {
		return []byte(c.JwtSecret), nil
	}
	return nil, errors.New(
		"no token secret configured: set jwtSecret or jwtSecretFile",
	)
}
