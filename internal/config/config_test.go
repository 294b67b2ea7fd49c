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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov/database/plugin"
)

type noopPlugin struct{}

func (noopPlugin) Start() error { return nil }
func (noopPlugin) Stop() error  { return nil }

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modelgov.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFlat(t *testing.T) {
	path := writeConfig(t, `
databasePath: /var/lib/modelgov
bindAddr: 127.0.0.1
rpcPort: 9940
metricsPort: 8088
tlsCertFilePath: cert.pem
tlsKeyFilePath: key.pem
jwtSecret: s3cret
admins: [root]
creators: [alice, bob]
tracing: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	expected := DefaultConfig()
	expected.DatabasePath = "/var/lib/modelgov"
	expected.BindAddr = "127.0.0.1"
	expected.RpcPort = 9940
	expected.MetricsPort = 8088
	expected.TlsCertFilePath = "cert.pem"
	expected.TlsKeyFilePath = "key.pem"
	expected.JwtSecret = "s3cret"
	expected.Admins = []string{"root"}
	expected.Creators = []string{"alice", "bob"}
	expected.Tracing = true
	assert.Equal(t, expected, cfg)
}

func TestLoadConfigSectionKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
config:
  rpcPort: 9999
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(9999), cfg.RpcPort)
	assert.Equal(t, ".modelgov", cfg.DatabasePath)
	assert.Equal(t, DefaultMetadataPlugin, cfg.MetadataPlugin)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
rpcPort: 9940
creators: [alice]
`)
	t.Setenv("MODELGOV_RPC_PORT", "7000")
	t.Setenv("MODELGOV_CREATORS", "carol,dave")
	t.Setenv("MODELGOV_DATABASE_METADATA_PLUGIN", "postgres")
	t.Setenv("MODELGOV_SHUTDOWN_TIMEOUT", "5s")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint(7000), cfg.RpcPort)
	assert.Equal(t, []string{"carol", "dave"}, cfg.Creators)
	assert.Equal(t, "postgres", cfg.MetadataPlugin)
	timeout, err := cfg.ShutdownTimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, timeout)
}

func TestLoadConfigInvalid(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "rpcPort: [nope"))
	require.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "shutdownTimeout: soon"))
	require.Error(t, err)
}

func TestLoadConfigPluginOptions(t *testing.T) {
	var dataDir string
	var cacheSize uint64
	name := "config-test"
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeMetadata,
		Name:               name,
		NewFromOptionsFunc: func() plugin.Plugin { return noopPlugin{} },
		Options: []plugin.PluginOption{
			{
				Name:         "data-dir",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: "",
				Dest:         &dataDir,
			},
			{
				Name:         "cache-size",
				Type:         plugin.PluginOptionTypeUint,
				DefaultValue: uint64(0),
				Dest:         &cacheSize,
			},
		},
	})
	path := writeConfig(t, `
database:
  metadata:
    plugin: config-test
    config-test:
      data-dir: /data/metadata
      cache-size: 4096
    bogus: 1
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, name, cfg.MetadataPlugin)
	assert.Equal(t, "/data/metadata", dataDir)
	assert.Equal(t, uint64(4096), cacheSize)
}

func TestSecret(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.Secret()
	require.Error(t, err)

	cfg.JwtSecret = "inline"
	secret, err := cfg.Secret()
	require.NoError(t, err)
	assert.Equal(t, []byte("inline"), secret)

	path := filepath.Join(t.TempDir(), "jwt.secret")
	require.NoError(t, os.WriteFile(path, []byte("from-file\n"), 0o600))
	cfg.JwtSecretFile = path
	secret, err = cfg.Secret()
	require.NoError(t, err)
	assert.Equal(t, []byte("from-file"), secret)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
	cfg := DefaultConfig()
	assert.Same(t, cfg, FromContext(WithContext(context.Background(), cfg)))
}
