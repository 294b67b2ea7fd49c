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

package ledger

import (
	"context"
	"fmt"

	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/event"
	"go.opentelemetry.io/otel/attribute"
)

// TransferModel moves a model's asset from its holder to newHolder. Voting
// delegations made by the previous holder are dropped.
func (ls *LedgerState) TransferModel(
	ctx context.Context,
	modelId uint64,
	caller string,
	newHolder string,
) error {
	span := ls.startSpan(
		ctx,
		"TransferModel",
		attribute.Int64("model.id", int64(modelId)), // #nosec G115
	)
	ls.Lock()
	defer ls.Unlock()
	err := ls.update(func(txn *database.Txn) error {
		if newHolder == "" {
			return fmt.Errorf("%w: empty new holder", ErrInvalidArgument)
		}
		if _, err := ls.requireHolder(txn, modelId, caller); err != nil {
			return err
		}
		return ls.config.Assets.Transfer(txn, modelId, newHolder)
	})
	ls.finish(span, "transfer_model", err)
	if err != nil {
		return err
	}
	ls.logger.Info(
		"transferred model",
		"model_id", modelId,
		"from", caller,
		"to", newHolder,
	)
	ls.publish(
		event.ModelTransferredEventType,
		event.ModelTransferredEvent{
			From:    caller,
			To:      newHolder,
			ModelID: modelId,
		},
	)
	return nil
}

// DelegateVoting grants a delegate the right to vote on the model's changes
func (ls *LedgerState) DelegateVoting(
	ctx context.Context,
	modelId uint64,
	caller string,
	delegate string,
) error {
	return ls.setDelegate(ctx, "delegate_voting", modelId, caller, delegate, false)
}

// RevokeDelegate removes a delegate's voting rights
func (ls *LedgerState) RevokeDelegate(
	ctx context.Context,
	modelId uint64,
	caller string,
	delegate string,
) error {
	return ls.setDelegate(ctx, "revoke_delegate", modelId, caller, delegate, true)
}

func (ls *LedgerState) setDelegate(
	ctx context.Context,
	op string,
	modelId uint64,
	caller string,
	delegate string,
	revoke bool,
) error {
	span := ls.startSpan(
		ctx,
		"SetDelegate",
		attribute.Int64("model.id", int64(modelId)), // #nosec G115
		attribute.Bool("revoke", revoke),
	)
	ls.Lock()
	defer ls.Unlock()
	err := ls.update(func(txn *database.Txn) error {
		if delegate == "" {
			return fmt.Errorf("%w: empty delegate", ErrInvalidArgument)
		}
		if _, err := ls.requireHolder(txn, modelId, caller); err != nil {
			return err
		}
		return ls.config.Assets.SetDelegate(txn, modelId, delegate, revoke)
	})
	ls.finish(span, op, err)
	if err != nil {
		return err
	}
	ls.publish(
		event.DelegateUpdatedEventType,
		event.DelegateUpdatedEvent{
			Holder:   caller,
			Delegate: delegate,
			ModelID:  modelId,
			Revoked:  revoke,
		},
	)
	return nil
}

// BurnModel destroys a model's asset. The model stays in storage but is no
// longer valid for any operation.
func (ls *LedgerState) BurnModel(
	ctx context.Context,
	modelId uint64,
	caller string,
) error {
	span := ls.startSpan(
		ctx,
		"BurnModel",
		attribute.Int64("model.id", int64(modelId)), // #nosec G115
	)
	ls.Lock()
	defer ls.Unlock()
	err := ls.update(func(txn *database.Txn) error {
		if _, err := ls.requireHolder(txn, modelId, caller); err != nil {
			return err
		}
		if err := ls.config.Assets.Burn(txn, modelId); err != nil {
			return fmt.Errorf("burn asset for model %d: %w", modelId, err)
		}
		return nil
	})
	ls.finish(span, "burn_model", err)
	if err != nil {
		return err
	}
	ls.logger.Info(
		"burned model",
		"model_id", modelId,
		"holder", caller,
	)
	ls.publish(
		event.ModelBurnedEventType,
		event.ModelBurnedEvent{
			Holder:  caller,
			ModelID: modelId,
		},
	)
	return nil
}

// ElectorateSize returns the current size of the voting population
func (ls *LedgerState) ElectorateSize(ctx context.Context) (uint64, error) {
	span := ls.startSpan(ctx, "ElectorateSize")
	ls.RLock()
	defer ls.RUnlock()
	txn := ls.db.Transaction(false)
	defer txn.Release()
	size, err := ls.config.Electorate.ElectorateSize(txn)
	ls.finish(span, "electorate_size", err)
	return size, err
}
