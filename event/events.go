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

package event

const (
	ModelCreatedEventType     EventType = "model.created"
	ModelCompletedEventType   EventType = "model.completed"
	ChangeProposedEventType   EventType = "change.proposed"
	ChangeApprovedEventType   EventType = "change.approved"
	VoteCastEventType         EventType = "vote.cast"
	ModelTransferredEventType EventType = "model.transferred"
	DelegateUpdatedEventType  EventType = "model.delegate"
	ModelBurnedEventType      EventType = "model.burned"
)

// AllEventTypes lists every event type published by the ledger
var AllEventTypes = []EventType{
	ModelCreatedEventType,
	ModelCompletedEventType,
	ChangeProposedEventType,
	ChangeApprovedEventType,
	VoteCastEventType,
	ModelTransferredEventType,
	DelegateUpdatedEventType,
	ModelBurnedEventType,
}

type ModelCreatedEvent struct {
	Name     string
	Location string
	Author   string
	ModelID  uint64
}

type ModelCompletedEvent struct {
	ModelID uint64
}

type ChangeProposedEvent struct {
	Name     string
	Location string
	Proposer string
	ModelID  uint64
	ChangeID uint64
}

// ChangeApprovedEvent is emitted after an approved change has been applied
// to the model
type ChangeApprovedEvent struct {
	ModelID  uint64
	ChangeID uint64
}

type VoteCastEvent struct {
	Voter    string
	ModelID  uint64
	ChangeID uint64
}

type ModelTransferredEvent struct {
	From    string
	To      string
	ModelID uint64
}

// DelegateUpdatedEvent is emitted when a holder grants or revokes voting
// rights
type DelegateUpdatedEvent struct {
	Holder   string
	Delegate string
	ModelID  uint64
	Revoked  bool
}

type ModelBurnedEvent struct {
	Holder  string
	ModelID uint64
}
