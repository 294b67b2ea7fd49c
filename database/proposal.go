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

// AppendProposal stores a new proposal at the end of the model's proposal
// list and returns its change ID
func (d *Database) AppendProposal(
	proposal *models.Proposal,
	txn *Txn,
) (uint64, error) {
	changeId, err := d.metadata.CountProposals(proposal.ModelID, txn.Metadata())
	if err != nil {
		return 0, err
	}
	proposal.ChangeID = changeId
	if err := d.metadata.CreateProposal(proposal, txn.Metadata()); err != nil {
		return 0, err
	}
	return changeId, nil
}

// Proposal returns a single proposal, or nil if it doesn't exist
func (d *Database) Proposal(
	modelId uint64,
	changeId uint64,
	txn *Txn,
) (*models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetProposal(modelId, changeId, txn.Metadata())
}

// Proposals returns the proposals for a model ordered by change ID
func (d *Database) Proposals(
	modelId uint64,
	txn *Txn,
) ([]models.Proposal, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetProposals(modelId, txn.Metadata())
}

func (d *Database) CountProposals(txn *Txn) (uint64, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.CountAllProposals(txn.Metadata())
}

func (d *Database) SetProposalApproved(
	modelId uint64,
	changeId uint64,
	txn *Txn,
) error {
	return d.metadata.SetProposalApproved(modelId, changeId, txn.Metadata())
}

func (d *Database) HasVoted(
	modelId uint64,
	changeId uint64,
	voter string,
	txn *Txn,
) (bool, error) {
	return d.metadata.HasVoted(modelId, changeId, voter, txn.Metadata())
}

// AddVote records the voter and increments the proposal's vote count
func (d *Database) AddVote(
	modelId uint64,
	changeId uint64,
	voter string,
	txn *Txn,
) error {
	return d.metadata.AddVote(
		&models.ProposalVote{
			ModelID:  modelId,
			ChangeID: changeId,
			Voter:    voter,
		},
		txn.Metadata(),
	)
}
