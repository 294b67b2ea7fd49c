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

	"github.com/blinklabs-io/modelgov/database/models"
	"github.com/blinklabs-io/modelgov/database/types"
)

// CountProposals returns the number of proposals recorded for a model, which
// is also the change ID of the next proposal
func (s *Store) CountProposals(modelId uint64, txn types.Txn) (uint64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.Proposal{}).
		Where("model_id = ?", modelId).
		Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil //nolint:gosec
}

// CountAllProposals returns the number of proposals across all models
func (s *Store) CountAllProposals(txn types.Txn) (uint64, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return 0, err
	}
	var count int64
	if result := db.Model(&models.Proposal{}).Count(&count); result.Error != nil {
		return 0, result.Error
	}
	return uint64(count), nil //nolint:gosec
}

// CreateProposal inserts a new proposal
func (s *Store) CreateProposal(proposal *models.Proposal, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(proposal).Error
}

// GetProposal returns a single proposal, or nil if there is none
func (s *Store) GetProposal(
	modelId uint64,
	changeId uint64,
	txn types.Txn,
) (*models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var proposal models.Proposal
	if result := db.Where(
		"model_id = ? AND change_id = ?",
		modelId,
		changeId,
	).First(&proposal); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &proposal, nil
}

// GetProposals returns all proposals for a model ordered by change ID
func (s *Store) GetProposals(
	modelId uint64,
	txn types.Txn,
) ([]models.Proposal, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var proposals []models.Proposal
	if result := db.Where("model_id = ?", modelId).
		Order("change_id ASC").
		Find(&proposals); result.Error != nil {
		return nil, result.Error
	}
	return proposals, nil
}

// SetProposalApproved marks a proposal approved
func (s *Store) SetProposalApproved(
	modelId uint64,
	changeId uint64,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Model(&models.Proposal{}).
		Where("model_id = ? AND change_id = ?", modelId, changeId).
		Update("approved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProposalNotFound
	}
	return nil
}

// HasVoted returns whether the voter already voted on the proposal
func (s *Store) HasVoted(
	modelId uint64,
	changeId uint64,
	voter string,
	txn types.Txn,
) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	var count int64
	if result := db.Model(&models.ProposalVote{}).
		Where(
			"model_id = ? AND change_id = ? AND voter = ?",
			modelId,
			changeId,
			voter,
		).
		Count(&count); result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// AddVote records a vote and increments the proposal's vote count
func (s *Store) AddVote(vote *models.ProposalVote, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	if result := db.Create(vote); result.Error != nil {
		return result.Error
	}
	result := db.Model(&models.Proposal{}).
		Where("model_id = ? AND change_id = ?", vote.ModelID, vote.ChangeID).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.ErrProposalNotFound
	}
	return nil
}
