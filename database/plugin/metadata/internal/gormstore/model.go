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
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/modelgov/database/models"
	"github.com/blinklabs-io/modelgov/database/types"
)

// GetNextModelId returns the next model ID to allocate. IDs start at 0.
func (s *Store) GetNextModelId(txn types.Txn) (uint64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var counter models.ModelCounter
	if result := db.First(&counter, modelCounterRowId); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, result.Error
	}
	return counter.NextID, nil
}

// SetNextModelId stores the next model ID to allocate
func (s *Store) SetNextModelId(nextId uint64, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	counter := models.ModelCounter{
		ID:     modelCounterRowId,
		NextID: nextId,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"next_id"}),
	}).Create(&counter).Error
}

// CreateModel inserts a new model record
func (s *Store) CreateModel(model *models.Model, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(model).Error
}

// GetModel returns the model with the given ID, or nil if there is none
func (s *Store) GetModel(modelId uint64, txn types.Txn) (*models.Model, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var model models.Model
	if result := db.Where("model_id = ?", modelId).First(&model); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &model, nil
}

// SetModelComplete marks a model complete
func (s *Store) SetModelComplete(modelId uint64, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Model(&models.Model{}).
		Where("model_id = ?", modelId).
		Update("complete", true).Error
}

// SetModelContent overwrites the name and location of a model
func (s *Store) SetModelContent(
	modelId uint64,
	name string,
	location string,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Model{}).
		Where("model_id = ?", modelId).
		Updates(map[string]any{
			"name":     name,
			"location": location,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrModelNotFound
	}
	return nil
}

// CountModels returns the number of model records
func (s *Store) CountModels(txn types.Txn) (uint64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.Model{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil //nolint:gosec
}
