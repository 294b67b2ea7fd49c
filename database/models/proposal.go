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

package models

import "errors"

var ErrProposalNotFound = errors.New("proposal not found")

// Proposal is a suggested replacement name/location for a model.
// Proposals are append-only per model: ChangeID is the position in the
// model's list and is never reused.
type Proposal struct {
	ID        uint   `gorm:"primarykey"`
	ModelID   uint64 `gorm:"uniqueIndex:idx_proposal_model_change,priority:1;not null"`
	ChangeID  uint64 `gorm:"uniqueIndex:idx_proposal_model_change,priority:2;not null"`
	Name      string `gorm:"not null"`
	Location  string `gorm:"not null"`
	Proposer  string `gorm:"index;size:256;not null"`
	Approved  bool   `gorm:"index;not null;default:false"`
	VoteCount uint64 `gorm:"not null;default:0"`
}

// TableName returns the table name
func (Proposal) TableName() string {
	return "proposal"
}

// ProposalVote records that a voter has voted on a proposal. The unique
// index rejects a second vote from the same voter.
type ProposalVote struct {
	ID       uint   `gorm:"primarykey"`
	ModelID  uint64 `gorm:"uniqueIndex:idx_vote_unique,priority:1;not null"`
	ChangeID uint64 `gorm:"uniqueIndex:idx_vote_unique,priority:2;not null"`
	Voter    string `gorm:"uniqueIndex:idx_vote_unique,priority:3;size:256;not null"`
}

// TableName returns the table name
func (ProposalVote) TableName() string {
	return "proposal_vote"
}
