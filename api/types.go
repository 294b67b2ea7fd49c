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

package api

// Wire types for ModelService. Requests and responses are JSON encoded.

type Empty struct{}

type RegisterRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type RegisterResponse struct {
	ModelId uint64 `json:"modelId"`
}

// ModelRequest identifies a model
type ModelRequest struct {
	ModelId uint64 `json:"modelId"`
}

type GetModelResponse struct {
	ModelId  uint64 `json:"modelId"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Complete bool   `json:"complete"`
	Author   string `json:"author"`
}

type ProposeChangeRequest struct {
	ModelId  uint64 `json:"modelId"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type ProposeChangeResponse struct {
	ChangeId uint64 `json:"changeId"`
}

// ChangeRequest identifies a proposed change
type ChangeRequest struct {
	ModelId  uint64 `json:"modelId"`
	ChangeId uint64 `json:"changeId"`
}

type Proposal struct {
	ModelId   uint64 `json:"modelId"`
	ChangeId  uint64 `json:"changeId"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Proposer  string `json:"proposer"`
	Approved  bool   `json:"approved"`
	VoteCount uint64 `json:"voteCount"`
}

type GetProposalsResponse struct {
	Proposals []Proposal `json:"proposals"`
}

type TransferModelRequest struct {
	ModelId   uint64 `json:"modelId"`
	NewHolder string `json:"newHolder"`
}

type DelegateVotingRequest struct {
	ModelId  uint64 `json:"modelId"`
	Delegate string `json:"delegate"`
	Revoke   bool   `json:"revoke,omitempty"`
}

type GetElectorateResponse struct {
	Size uint64 `json:"size"`
}
