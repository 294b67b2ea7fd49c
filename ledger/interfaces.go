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
	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/event"
)

// CapabilityChecker answers whether a principal holds a capability. Checks
// run inside the operation's transaction.
type CapabilityChecker interface {
	IsCreator(txn *database.Txn, principal string) (bool, error)
	IsAdmin(txn *database.Txn, principal string) (bool, error)
	IsHolderOrDelegate(
		txn *database.Txn,
		modelId uint64,
		principal string,
	) (bool, error)
}

// ElectorateOracle reports the current size of the voting population
type ElectorateOracle interface {
	ElectorateSize(txn *database.Txn) (uint64, error)
}

// AssetRegistry manages the asset backing each model
type AssetRegistry interface {
	Mint(txn *database.Txn, modelId uint64, holder string) error
	Exists(txn *database.Txn, modelId uint64) (bool, error)
	Get(txn *database.Txn, modelId uint64) (*assets.Asset, error)
	Transfer(txn *database.Txn, modelId uint64, newHolder string) error
	SetDelegate(
		txn *database.Txn,
		modelId uint64,
		delegate string,
		revoke bool,
	) error
	Burn(txn *database.Txn, modelId uint64) error
}

// Notifier receives a notification for each successful state transition
type Notifier interface {
	Publish(eventType event.EventType, evt event.Event)
}
