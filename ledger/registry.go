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
	"github.com/blinklabs-io/modelgov/database/models"
	"github.com/blinklabs-io/modelgov/event"
	"go.opentelemetry.io/otel/attribute"
)

// Model is the public view of a registered model
type Model struct {
	ID       uint64
	Name     string
	Location string
	Author   string
	Complete bool
}

func modelFromRecord(m *models.Model) Model {
	return Model{
		ID:       m.ModelID,
		Name:     m.Name,
		Location: m.Location,
		Author:   m.Author,
		Complete: m.Complete,
	}
}

// Register creates a model authored by creator and mints its asset to the
// creator. A failed registration does not consume a model id.
func (ls *LedgerState) Register(
	ctx context.Context,
	name string,
	location string,
	creator string,
) (uint64, error) {
	span := ls.startSpan(ctx, "Register")
	ls.Lock()
	defer ls.Unlock()
	var modelId uint64
	err := ls.update(func(txn *database.Txn) error {
		ok, err := ls.config.Capabilities.IsCreator(txn, creator)
		if err != nil {
			return fmt.Errorf("check creator role: %w", err)
		}
		if !ok {
			return fmt.Errorf("%q is not a creator: %w", creator, ErrUnauthorized)
		}
		modelId, err = ls.db.NextModelId(txn)
		if err != nil {
			return fmt.Errorf("allocate model id: %w", err)
		}
		model := &models.Model{
			ModelID:  modelId,
			Name:     name,
			Location: location,
			Author:   creator,
		}
		if err := ls.db.CreateModel(model, txn); err != nil {
			return fmt.Errorf("store model %d: %w", modelId, err)
		}
		if err := ls.config.Assets.Mint(txn, modelId, creator); err != nil {
			return fmt.Errorf("mint asset for model %d: %w", modelId, err)
		}
		return nil
	})
	if err == nil {
		span.SetAttributes(attribute.Int64("model.id", int64(modelId))) // #nosec G115
	}
	ls.finish(span, "register", err)
	if err != nil {
		return 0, err
	}
	ls.logger.Info(
		"registered model",
		"model_id", modelId,
		"author", creator,
	)
	ls.publish(
		event.ModelCreatedEventType,
		event.ModelCreatedEvent{
			ModelID:  modelId,
			Name:     name,
			Location: location,
			Author:   creator,
		},
	)
	return modelId, nil
}

// MarkComplete flags a model as complete. Repeating the call is allowed and
// emits a notification each time.
func (ls *LedgerState) MarkComplete(
	ctx context.Context,
	modelId uint64,
	caller string,
) error {
	span := ls.startSpan(
		ctx,
		"MarkComplete",
		attribute.Int64("model.id", int64(modelId)), // #nosec G115
	)
	ls.Lock()
	defer ls.Unlock()
	err := ls.update(func(txn *database.Txn) error {
		ok, err := ls.config.Capabilities.IsAdmin(txn, caller)
		if err != nil {
			return fmt.Errorf("check admin role: %w", err)
		}
		if !ok {
			return fmt.Errorf("%q is not an admin: %w", caller, ErrUnauthorized)
		}
		valid, err := ls.modelValid(txn, modelId)
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("model %d: %w", modelId, ErrNotFound)
		}
		return ls.db.SetModelComplete(modelId, txn)
	})
	ls.finish(span, "mark_complete", err)
	if err != nil {
		return err
	}
	ls.publish(
		event.ModelCompletedEventType,
		event.ModelCompletedEvent{ModelID: modelId},
	)
	return nil
}

// GetModel returns the current record for a model
func (ls *LedgerState) GetModel(ctx context.Context, modelId uint64) (Model, error) {
	span := ls.startSpan(
		ctx,
		"GetModel",
		attribute.Int64("model.id", int64(modelId)), // #nosec G115
	)
	ls.RLock()
	defer ls.RUnlock()
	txn := ls.db.Transaction(false)
	defer txn.Release()
	ret, err := ls.getModel(txn, modelId)
	ls.finish(span, "get_model", err)
	return ret, err
}

func (ls *LedgerState) getModel(txn *database.Txn, modelId uint64) (Model, error) {
	model, err := ls.db.Model(modelId, txn)
	if err != nil {
		return Model{}, err
	}
	if model == nil {
		return Model{}, fmt.Errorf("model %d: %w", modelId, ErrNotFound)
	}
	exists, err := ls.config.Assets.Exists(txn, modelId)
	if err != nil {
		return Model{}, err
	}
	if !exists {
		return Model{}, fmt.Errorf("model %d: %w", modelId, ErrNotFound)
	}
	return modelFromRecord(model), nil
}

// applyChange overwrites a model's content. It is only called while
// approving a change, inside the approval transaction.
func (ls *LedgerState) applyChange(
	txn *database.Txn,
	modelId uint64,
	name string,
	location string,
) error {
	if err := ls.db.SetModelContent(modelId, name, location, txn); err != nil {
		return fmt.Errorf("apply change to model %d: %w", modelId, err)
	}
	return nil
}
