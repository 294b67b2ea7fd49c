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

// Proposal is the public view of a proposed change. The voter set is not
// exposed.
type Proposal struct {
	ModelID   uint64
	ChangeID  uint64
	Name      string
	Location  string
	Proposer  string
	Approved  bool
	VoteCount uint64
}

func proposalFromRecord(p *models.Proposal) Proposal {
	return Proposal{
		ModelID:   p.ModelID,
		ChangeID:  p.ChangeID,
		Name:      p.Name,
		Location:  p.Location,
		Proposer:  p.Proposer,
		Approved:  p.Approved,
		VoteCount: p.VoteCount,
	}
}

// majority reports whether votes is a strict majority of the electorate. An
// empty electorate can never approve a change.
func majority(votes uint64, electorate uint64) bool {
	if electorate == 0 {
		return false
	}
	return votes > electorate/2
}

func changeAttrs(modelId uint64, changeId uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64("model.id", int64(modelId)),   // #nosec G115
		attribute.Int64("change.id", int64(changeId)), // #nosec G115
	}
}

// ProposeChange appends a proposed name and location for a model. Any
// principal may propose.
func (ls *LedgerState) ProposeChange(
	ctx context.Context,
	modelId uint64,
	name string,
	location string,
	proposer string,
) (uint64, error) {
	span := ls.startSpan(
		ctx,
		"ProposeChange",
		attribute.Int64("model.id", int64(modelId)), // #nosec G115
	)
	ls.Lock()
	defer ls.Unlock()
	var changeId uint64
	err := ls.update(func(txn *database.Txn) error {
		valid, err := ls.modelValid(txn, modelId)
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("model %d: %w", modelId, ErrNotFound)
		}
		changeId, err = ls.db.AppendProposal(
			&models.Proposal{
				ModelID:  modelId,
				Name:     name,
				Location: location,
				Proposer: proposer,
			},
			txn,
		)
		if err != nil {
			return fmt.Errorf("store proposal for model %d: %w", modelId, err)
		}
		return nil
	})
	ls.finish(span, "propose_change", err)
	if err != nil {
		return 0, err
	}
	ls.logger.Info(
		"proposed change",
		"model_id", modelId,
		"change_id", changeId,
		"proposer", proposer,
	)
	ls.publish(
		event.ChangeProposedEventType,
		event.ChangeProposedEvent{
			ModelID:  modelId,
			ChangeID: changeId,
			Name:     name,
			Location: location,
			Proposer: proposer,
		},
	)
	return changeId, nil
}

// VoteChange records one vote from voter on a pending change
func (ls *LedgerState) VoteChange(
	ctx context.Context,
	modelId uint64,
	changeId uint64,
	voter string,
) error {
	span := ls.startSpan(ctx, "VoteChange", changeAttrs(modelId, changeId)...)
	ls.Lock()
	defer ls.Unlock()
	err := ls.update(func(txn *database.Txn) error {
		proposal, err := ls.lookupProposal(txn, modelId, changeId)
		if err != nil {
			return err
		}
		ok, err := ls.config.Capabilities.IsHolderOrDelegate(txn, modelId, voter)
		if err != nil {
			return fmt.Errorf("check voting rights: %w", err)
		}
		if !ok {
			return fmt.Errorf(
				"%q holds no voting rights for model %d: %w",
				voter,
				modelId,
				ErrUnauthorized,
			)
		}
		if proposal.Approved {
			return fmt.Errorf(
				"change %d of model %d: %w",
				changeId,
				modelId,
				ErrAlreadyApproved,
			)
		}
		voted, err := ls.db.HasVoted(modelId, changeId, voter, txn)
		if err != nil {
			return err
		}
		if voted {
			return fmt.Errorf(
				"%q on change %d of model %d: %w",
				voter,
				changeId,
				modelId,
				ErrDuplicateVote,
			)
		}
		return ls.db.AddVote(modelId, changeId, voter, txn)
	})
	ls.finish(span, "vote_change", err)
	if err != nil {
		return err
	}
	ls.publish(
		event.VoteCastEventType,
		event.VoteCastEvent{
			Voter:    voter,
			ModelID:  modelId,
			ChangeID: changeId,
		},
	)
	return nil
}

// ApproveChange finalizes a change that holds a strict majority of the
// current electorate and applies it to the model
func (ls *LedgerState) ApproveChange(
	ctx context.Context,
	modelId uint64,
	changeId uint64,
	caller string,
) error {
	span := ls.startSpan(ctx, "ApproveChange", changeAttrs(modelId, changeId)...)
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
		proposal, err := ls.lookupProposal(txn, modelId, changeId)
		if err != nil {
			return err
		}
		if proposal.Approved {
			return fmt.Errorf(
				"change %d of model %d: %w",
				changeId,
				modelId,
				ErrAlreadyApproved,
			)
		}
		electorate, err := ls.config.Electorate.ElectorateSize(txn)
		if err != nil {
			return fmt.Errorf("read electorate size: %w", err)
		}
		if !majority(proposal.VoteCount, electorate) {
			return fmt.Errorf(
				"change %d of model %d has %d of %d votes: %w",
				changeId,
				modelId,
				proposal.VoteCount,
				electorate,
				ErrInsufficientVotes,
			)
		}
		if err := ls.db.SetProposalApproved(modelId, changeId, txn); err != nil {
			return err
		}
		return ls.applyChange(txn, modelId, proposal.Name, proposal.Location)
	})
	ls.finish(span, "approve_change", err)
	if err != nil {
		return err
	}
	ls.logger.Info(
		"approved change",
		"model_id", modelId,
		"change_id", changeId,
	)
	ls.publish(
		event.ChangeApprovedEventType,
		event.ChangeApprovedEvent{
			ModelID:  modelId,
			ChangeID: changeId,
		},
	)
	return nil
}

// GetProposals returns the proposals for a model ordered by change id. An
// unknown model has no proposals.
func (ls *LedgerState) GetProposals(
	ctx context.Context,
	modelId uint64,
) ([]Proposal, error) {
	span := ls.startSpan(
		ctx,
		"GetProposals",
		attribute.Int64("model.id", int64(modelId)), // #nosec G115
	)
	ls.RLock()
	defer ls.RUnlock()
	ret, err := ls.getProposals(modelId)
	ls.finish(span, "get_proposals", err)
	return ret, err
}

func (ls *LedgerState) getProposals(modelId uint64) ([]Proposal, error) {
	txn := ls.db.Transaction(false)
	defer txn.Release()
	ret := []Proposal{}
	valid, err := ls.modelValid(txn, modelId)
	if err != nil {
		return nil, err
	}
	if !valid {
		return ret, nil
	}
	records, err := ls.db.Proposals(modelId, txn)
	if err != nil {
		return nil, err
	}
	for i := range records {
		ret = append(ret, proposalFromRecord(&records[i]))
	}
	return ret, nil
}

// lookupProposal loads a proposal of a valid model
func (ls *LedgerState) lookupProposal(
	txn *database.Txn,
	modelId uint64,
	changeId uint64,
) (*models.Proposal, error) {
	valid, err := ls.modelValid(txn, modelId)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, fmt.Errorf("model %d: %w", modelId, ErrNotFound)
	}
	proposal, err := ls.db.Proposal(modelId, changeId, txn)
	if err != nil {
		return nil, err
	}
	if proposal == nil {
		return nil, fmt.Errorf(
			"change %d of model %d: %w",
			changeId,
			modelId,
			ErrNotFound,
		)
	}
	return proposal, nil
}
