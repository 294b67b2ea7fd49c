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

// Package auth answers capability questions for ledger operations. Roles
// come from the role grant table, which is seeded from configuration, and
// holder rights come from the asset registry.
package auth

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/database/models"
)

type Checker struct {
	db     *database.Database
	assets *assets.Registry
	logger *slog.Logger
}

func NewChecker(
	db *database.Database,
	assetRegistry *assets.Registry,
	logger *slog.Logger,
) *Checker {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Checker{
		db:     db,
		assets: assetRegistry,
		logger: logger.With("component", "auth"),
	}
}

// SeedRoles grants the configured roles. Existing grants are kept.
func (c *Checker) SeedRoles(admins []string, creators []string) error {
	return c.db.Transaction(true).Do(func(txn *database.Txn) error {
		for _, principal := range admins {
			if err := c.db.SetRole(principal, models.RoleAdmin, txn); err != nil {
				return fmt.Errorf("grant admin role to %q: %w", principal, err)
			}
		}
		for _, principal := range creators {
			if err := c.db.SetRole(principal, models.RoleCreator, txn); err != nil {
				return fmt.Errorf("grant creator role to %q: %w", principal, err)
			}
		}
		c.logger.Debug(
			"seeded role grants",
			"admins", len(admins),
			"creators", len(creators),
		)
		return nil
	})
}

func (c *Checker) IsCreator(txn *database.Txn, principal string) (bool, error) {
	return c.db.HasRole(principal, models.RoleCreator, txn)
}

func (c *Checker) IsAdmin(txn *database.Txn, principal string) (bool, error) {
	return c.db.HasRole(principal, models.RoleAdmin, txn)
}

func (c *Checker) IsHolderOrDelegate(
	txn *database.Txn,
	modelId uint64,
	principal string,
) (bool, error) {
	return c.assets.IsHolderOrDelegate(txn, modelId, principal)
}
