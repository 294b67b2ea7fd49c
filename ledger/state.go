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

// Package ledger implements the model registry and the proposal, voting and
// approval state machine on top of the coordinated database.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blinklabs-io/modelgov/ledger"

type LedgerStateConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	Capabilities CapabilityChecker
	Electorate   ElectorateOracle
	Assets       AssetRegistry
	Notifier     Notifier
	PromRegistry prometheus.Registerer
}

// LedgerState applies operations one at a time. Mutations hold the write
// lock from validation through notification.
type LedgerState struct {
	sync.RWMutex
	config  LedgerStateConfig
	db      *database.Database
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics stateMetrics
}

func NewLedgerState(cfg LedgerStateConfig) (*LedgerState, error) {
	if cfg.Database == nil {
		return nil, errors.New("a database is required")
	}
	if cfg.Capabilities == nil {
		return nil, errors.New("a capability checker is required")
	}
	if cfg.Electorate == nil {
		return nil, errors.New("an electorate oracle is required")
	}
	if cfg.Assets == nil {
		return nil, errors.New("an asset registry is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	ls := &LedgerState{
		config: cfg,
		db:     cfg.Database,
		logger: cfg.Logger.With("component", "ledger"),
		tracer: otel.Tracer(tracerName),
	}
	ls.metrics.init(cfg.PromRegistry)
	if err := ls.refreshGauges(nil); err != nil {
		return nil, fmt.Errorf("load ledger state: %w", err)
	}
	return ls, nil
}

func (ls *LedgerState) refreshGauges(txn *database.Txn) error {
	if txn == nil {
		txn = ls.db.Transaction(false)
		defer txn.Release()
	}
	modelCount, err := ls.db.CountModels(txn)
	if err != nil {
		return err
	}
	proposalCount, err := ls.db.CountProposals(txn)
	if err != nil {
		return err
	}
	electorate, err := ls.config.Electorate.ElectorateSize(txn)
	if err != nil {
		return err
	}
	ls.metrics.models.Set(float64(modelCount))
	ls.metrics.proposals.Set(float64(proposalCount))
	ls.metrics.electorate.Set(float64(electorate))
	return nil
}

func (ls *LedgerState) startSpan(
	ctx context.Context,
	op string,
	attrs ...attribute.KeyValue,
) trace.Span {
	if ctx == nil {
		ctx = context.Background()
	}
	_, span := ls.tracer.Start(
		ctx,
		"ledger."+op,
		trace.WithAttributes(attrs...),
	)
	return span
}

// finish records the outcome of an operation on its span and in metrics
func (ls *LedgerState) finish(span trace.Span, op string, err error) {
	ls.metrics.operations.WithLabelValues(op, errorKind(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ls.logger.Debug(
			"operation rejected",
			"op", op,
			"error", err,
		)
	}
	span.End()
}

// update runs fn in a read-write transaction. The gauges are refreshed from
// the committed state.
func (ls *LedgerState) update(fn func(*database.Txn) error) error {
	if err := ls.db.Transaction(true).Do(fn); err != nil {
		return err
	}
	if err := ls.refreshGauges(nil); err != nil {
		ls.logger.Warn(
			"failed to refresh ledger gauges",
			"error", err,
		)
	}
	return nil
}

// modelValid reports whether a model was created and still has an
// outstanding asset
func (ls *LedgerState) modelValid(txn *database.Txn, modelId uint64) (bool, error) {
	model, err := ls.db.Model(modelId, txn)
	if err != nil {
		return false, err
	}
	if model == nil {
		return false, nil
	}
	return ls.config.Assets.Exists(txn, modelId)
}

func (ls *LedgerState) publish(eventType event.EventType, data any) {
	if ls.config.Notifier == nil {
		return
	}
	ls.config.Notifier.Publish(eventType, event.NewEvent(eventType, data))
}

// requireHolder returns the asset for a valid model held by caller
func (ls *LedgerState) requireHolder(
	txn *database.Txn,
	modelId uint64,
	caller string,
) (*assets.Asset, error) {
	valid, err := ls.modelValid(txn, modelId)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, fmt.Errorf("model %d: %w", modelId, ErrNotFound)
	}
	asset, err := ls.config.Assets.Get(txn, modelId)
	if err != nil {
		return nil, err
	}
	if asset.Holder != caller {
		return nil, fmt.Errorf(
			"%q does not hold model %d: %w",
			caller,
			modelId,
			ErrUnauthorized,
		)
	}
	return asset, nil
}
