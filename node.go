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

// Package modelgov wires the storage, ledger, notification and RPC layers
// into a runnable node.
package modelgov

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/blinklabs-io/modelgov/api"
	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/auth"
	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/event"
	"github.com/blinklabs-io/modelgov/ledger"
)

type Node struct {
	eventBus      *event.EventBus
	db            *database.Database
	assets        *assets.Registry
	checker       *auth.Checker
	ledgerState   *ledger.LedgerState
	apiServer     *api.Server
	shutdownFuncs []func(context.Context) error
	config        Config
	started       chan struct{}
	done          chan struct{}
	shutdownOnce  sync.Once
}

func New(cfg Config) (*Node, error) {
	if cfg.logger == nil {
		cfg.logger = NewConfig().logger
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewEventBus(cfg.promRegistry, cfg.logger),
		started:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	if err := n.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return n, nil
}

// Run starts the node and blocks until ctx is cancelled or Stop is called
func (n *Node) Run(ctx context.Context) error {
	if n.config.tracing {
		if err := n.setupTracing(); err != nil {
			return err
		}
	}
	db, err := database.New(&database.Config{
		DataDir:        n.config.dataDir,
		Logger:         n.config.logger,
		PromRegistry:   n.config.promRegistry,
		BlobPlugin:     n.config.blobPlugin,
		MetadataPlugin: n.config.metadataPlugin,
	})
	if db != nil {
		n.db = db
	}
	if err != nil {
		var dbErr database.CommitTimestampError
		if errors.As(err, &dbErr) {
			return fmt.Errorf(
				"database stores are out of sync, restore %s from a backup: %w",
				n.config.dataDir,
				err,
			)
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.assets = assets.NewRegistry(n.db, n.config.logger)
	if err := n.assets.VerifySupply(nil); err != nil {
		return err
	}
	n.checker = auth.NewChecker(n.db, n.assets, n.config.logger)
	if err := n.checker.SeedRoles(n.config.admins, n.config.creators); err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}
	n.eventBus.SubscribeAll(
		event.NewLogSubscriber(n.config.logger.With("component", "notify")),
	)
	n.ledgerState, err = ledger.NewLedgerState(ledger.LedgerStateConfig{
		Logger:       n.config.logger,
		Database:     n.db,
		Capabilities: n.checker,
		Electorate:   n.assets,
		Assets:       n.assets,
		Notifier:     n.eventBus,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to load ledger state: %w", err)
	}
	n.apiServer, err = api.NewServer(api.ServerConfig{
		Logger:          n.config.logger,
		Ledger:          n.ledgerState,
		JwtSecret:       n.config.jwtSecret,
		Host:            n.config.bindAddr,
		Port:            n.config.rpcPort,
		TlsCertFilePath: n.config.tlsCertFilePath,
		TlsKeyFilePath:  n.config.tlsKeyFilePath,
	})
	if err != nil {
		return err
	}
	if err := n.apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start RPC server: %w", err)
	}
	close(n.started)

	select {
	case <-ctx.Done():
	case <-n.done:
	}
	return nil
}

// Started is closed once the RPC server is accepting requests
func (n *Node) Started() <-chan struct{} {
	return n.started
}

// RpcAddr returns the RPC listening address once started
func (n *Node) RpcAddr() net.Addr {
	if n.apiServer == nil {
		return nil
	}
	return n.apiServer.Addr()
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error
	n.config.logger.Debug("starting graceful shutdown")

	// Stop accepting requests before closing storage
	if n.apiServer != nil {
		if stopErr := n.apiServer.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("rpc shutdown: %w", stopErr))
		}
	}
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}
	for _, fn := range n.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	n.shutdownFuncs = nil

	n.config.logger.Debug("graceful shutdown complete")
	close(n.done)
	return err
}
