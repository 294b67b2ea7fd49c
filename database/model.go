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

package database

import (
	"github.com/blinklabs-io/modelgov/database/models"
)

// NextModelId returns the next model ID to be allocated
func (d *Database) NextModelId(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetNextModelId(txn.Metadata())
}

// CreateModel stores a new model and advances the model ID counter past it
func (d *Database) CreateModel(model *models.Model, txn *Txn) error {
	if err := d.metadata.CreateModel(model, txn.Metadata()); err != nil {
		return err
	}
	return d.metadata.SetNextModelId(model.ModelID+1, txn.Metadata())
}

// Model returns the model record with the given ID, or nil if it doesn't exist
func (d *Database) Model(modelId uint64, txn *Txn) (*models.Model, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetModel(modelId, txn.Metadata())
}

func (d *Database) SetModelComplete(modelId uint64, txn *Txn) error {
	return d.metadata.SetModelComplete(modelId, txn.Metadata())
}

func (d *Database) SetModelContent(
	modelId uint64,
	name string,
	location string,
	txn *Txn,
) error {
	return d.metadata.SetModelContent(modelId, name, location, txn.Metadata())
}

func (d *Database) CountModels(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.CountModels(txn.Metadata())
}
