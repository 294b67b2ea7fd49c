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

package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	_ "net/http/pprof" // #nosec G108
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/blinklabs-io/modelgov"
	"github.com/blinklabs-io/modelgov/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NodeOptions builds the node options for a loaded configuration
func NodeOptions(
	cfg *config.Config,
	logger *slog.Logger,
) ([]modelgov.ConfigOptionFunc, error) {
	shutdownTimeout, err := cfg.ShutdownTimeoutDuration()
	if err != nil {
		return nil, err
	}
	secret, err := cfg.Secret()
	if err != nil {
		return nil, err
	}
	return []modelgov.ConfigOptionFunc{
		modelgov.WithLogger(logger),
		modelgov.WithDatabasePath(cfg.DatabasePath),
		modelgov.WithBlobPlugin(cfg.BlobPlugin),
		modelgov.WithMetadataPlugin(cfg.MetadataPlugin),
		modelgov.WithBindAddr(cfg.BindAddr),
		modelgov.WithRpcPort(cfg.RpcPort),
		modelgov.WithTlsCertFilePath(cfg.TlsCertFilePath),
		modelgov.WithTlsKeyFilePath(cfg.TlsKeyFilePath),
		modelgov.WithJwtSecret(secret),
		modelgov.WithAdmins(cfg.Admins...),
		modelgov.WithCreators(cfg.Creators...),
		modelgov.WithTracing(cfg.Tracing),
		modelgov.WithTracingStdout(cfg.TracingStdout),
		modelgov.WithShutdownTimeout(shutdownTimeout),
		// Enable metrics with default prometheus registry
		modelgov.WithPrometheusRegistry(prometheus.DefaultRegisterer),
	}, nil
}

func Run(cfg *config.Config, logger *slog.Logger) error {
	logger.Debug(
		"loaded config",
		"component", "node",
		"database_path", cfg.DatabasePath,
		"blob_plugin", cfg.BlobPlugin,
		"metadata_plugin", cfg.MetadataPlugin,
		"rpc_port", cfg.RpcPort,
	)
	opts, err := NodeOptions(cfg, logger)
	if err != nil {
		return err
	}
	shutdownTimeout, _ := cfg.ShutdownTimeoutDuration()
	n, err := modelgov.New(modelgov.NewConfig(opts...))
	if err != nil {
		return err
	}

	// Metrics and debug listener
	http.Handle("/metrics", promhttp.Handler())
	metricsAddr := net.JoinHostPort(
		cfg.BindAddr,
		strconv.FormatUint(uint64(cfg.MetricsPort), 10),
	)
	logger.Info(
		"serving prometheus metrics on "+metricsAddr,
		"component", "node",
	)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		ReadHeaderTimeout: 60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errChan := make(chan error, 2)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("failed to start metrics listener: %w", err)
		}
	}()

	signalCtx, signalCtxStop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer signalCtxStop()

	go func() {
		errChan <- n.Run(signalCtx)
	}()

	var runErr error
	select {
	case <-signalCtx.Done():
		logger.Info("signal received, initiating graceful shutdown")
	case runErr = <-errChan:
		if runErr != nil {
			logger.Error("node error", "error", runErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown error", "error", err)
	}
	if err := n.Stop(); err != nil {
		logger.Error("shutdown errors occurred", "error", err)
		return errors.Join(runErr, err)
	}
	logger.Info("shutdown complete")
	return runErr
}
