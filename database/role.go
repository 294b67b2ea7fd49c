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

func (d *Database) HasRole(principal string, role string, txn *Txn) (bool, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.HasRole(principal, role, txn.Metadata())
}

func (d *Database) SetRole(principal string, role string, txn *Txn) error {
	return d.metadata.SetRole(principal, role, txn.Metadata())
}

func (d *Database) RoleGrants(txn *Txn) ([]models.RoleGrant, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetRoleGrants(txn.Metadata())
}
