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
	"gorm.io/gorm/clause"

	"github.com/blinklabs-io/modelgov/database/models"
	"github.com/blinklabs-io/modelgov/database/types"
)

// HasRole returns whether the principal holds the role
func (s *Store) HasRole(principal string, role string, txn types.Txn) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var count int64
	if result := db.Model(&models.RoleGrant{}).
		Where("principal = ? AND role = ?", principal, role).
		Count(&count); result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// SetRole grants a role to a principal. Granting an existing role is a no-op.
func (s *Store) SetRole(principal string, role string, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	grant := models.RoleGrant{
		Principal: principal,
		Role:      role,
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error
}

// GetRoleGrants returns all role grants
func (s *Store) GetRoleGrants(txn types.Txn) ([]models.RoleGrant, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var grants []models.RoleGrant
	if result := db.Order("principal ASC, role ASC").Find(&grants); result.Error != nil {
		return nil, result.Error
	}
	return grants, nil
}
