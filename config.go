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

package modelgov

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry    prometheus.Registerer
	logger          *slog.Logger
	dataDir         string
	blobPlugin      string
	metadataPlugin  string
	bindAddr        string
	tlsCertFilePath string
	tlsKeyFilePath  string
	jwtSecret       []byte
	admins          []string
	creators        []string
	rpcPort         uint
	tracing         bool
	tracingStdout   bool
	shutdownTimeout time.Duration
}

func (n *Node) configValidate() error {
	if len(n.config.jwtSecret) == 0 {
		return errors.New("a token secret is required")
	}
	if n.config.tlsCertFilePath != "" && n.config.tlsKeyFilePath == "" ||
		n.config.tlsCertFilePath == "" && n.config.tlsKeyFilePath != "" {
		return errors.New(
			"TLS requires both a certificate and a key file",
		)
	}
	return nil
}

// ConfigOptionFunc modifies a node Config
type ConfigOptionFunc func(*Config)

// NewConfig returns a Config with opts applied over a discarding logger
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithDatabasePath sets the data directory. Empty keeps all state in memory
func WithDatabasePath(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin selects the blob storage plugin
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin selects the metadata storage plugin
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithLogger sets the logger shared by all node components
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithBindAddr specifies the address the RPC server listens on
func WithBindAddr(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.bindAddr = addr
	}
}

// WithRpcPort sets the ModelService listen port
func WithRpcPort(port uint) ConfigOptionFunc {
	return func(c *Config) {
		c.rpcPort = port
	}
}

// WithTlsCertFilePath enables TLS on the ModelService with this certificate
func WithTlsCertFilePath(path string) ConfigOptionFunc {
	return func(c *Config) {
		c.tlsCertFilePath = path
	}
}

// WithTlsKeyFilePath sets the private key matching WithTlsCertFilePath
func WithTlsKeyFilePath(path string) ConfigOptionFunc {
	return func(c *Config) {
		c.tlsKeyFilePath = path
	}
}

// WithJwtSecret specifies the secret used to verify caller tokens
func WithJwtSecret(secret []byte) ConfigOptionFunc {
	return func(c *Config) {
		c.jwtSecret = secret
	}
}

// WithAdmins grants the admin role to the given principals at startup
func WithAdmins(admins ...string) ConfigOptionFunc {
	return func(c *Config) {
		c.admins = admins
	}
}

// WithCreators grants the creator role to the given principals at startup
func WithCreators(creators ...string) ConfigOptionFunc {
	return func(c *Config) {
		c.creators = creators
	}
}

// WithPrometheusRegistry sets where ledger, event bus and store metrics are registered
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithTracing enables OpenTelemetry spans for ledger operations and metadata
// queries. Spans go to the OTLP/HTTP endpoint named by the standard
// OTEL_EXPORTER_OTLP_* variables.
func WithTracing(tracing bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracing = tracing
	}
}

// WithTracingStdout writes spans to stdout instead of OTLP. Tracing must also be enabled
func WithTracingStdout(stdout bool) ConfigOptionFunc {
	return func(c *Config) {
		c.tracingStdout = stdout
	}
}

// WithShutdownTimeout bounds how long a graceful shutdown may take
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}
