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

package metadata

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/blinklabs-io/modelgov/database/models"
	"github.com/blinklabs-io/modelgov/database/plugin"
	"github.com/blinklabs-io/modelgov/database/types"
)

type MetadataStore interface {
	plugin.Plugin

	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Models
	GetNextModelId(types.Txn) (uint64, error)
	SetNextModelId(uint64, types.Txn) error
	CreateModel(*models.Model, types.Txn) error
	GetModel(
		uint64, // modelId
		types.Txn,
	) (*models.Model, error)
	SetModelComplete(uint64, types.Txn) error
	SetModelContent(
		uint64, // modelId
		string, // name
		string, // location
		types.Txn,
	) error
	CountModels(types.Txn) (uint64, error)

	// Proposals
	CountProposals(
		uint64, // modelId
		types.Txn,
	) (uint64, error)
	CountAllProposals(types.Txn) (uint64, error)
	CreateProposal(*models.Proposal, types.Txn) error
	GetProposal(
		uint64, // modelId
		uint64, // changeId
		types.Txn,
	) (*models.Proposal, error)
	GetProposals(
		uint64, // modelId
		types.Txn,
	) ([]models.Proposal, error)
	SetProposalApproved(
		uint64, // modelId
		uint64, // changeId
		types.Txn,
	) error
	HasVoted(
		uint64, // modelId
		uint64, // changeId
		string, // voter
		types.Txn,
	) (bool, error)
	AddVote(*models.ProposalVote, types.Txn) error

	// Roles
	HasRole(
		string, // principal
		string, // role
		types.Txn,
	) (bool, error)
	SetRole(
		string, // principal
		string, // role
		types.Txn,
	) error
	GetRoleGrants(types.Txn) ([]models.RoleGrant, error)
}

// New returns the started metadata plugin selected by name
func New(pluginName string) (MetadataStore, error) {
	p, err := plugin.StartPlugin(plugin.PluginTypeMetadata, pluginName)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
