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

package assets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/database"
)

func newTestRegistry(t *testing.T) (*database.Database, *assets.Registry) {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, assets.NewRegistry(db, nil)
}

func update(t *testing.T, db *database.Database, fn func(*database.Txn) error) error {
	t.Helper()
	return db.Transaction(true).Do(fn)
}

func TestMintAndSupply(t *testing.T) {
	db, reg := newTestRegistry(t)
	size, err := reg.ElectorateSize(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)

	for i := range uint64(3) {
		require.NoError(t, update(t, db, func(txn *database.Txn) error {
			return reg.Mint(txn, i, "alice")
		}))
	}
	size, err = reg.ElectorateSize(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), size)

	err = update(t, db, func(txn *database.Txn) error {
		return reg.Mint(txn, 1, "bob")
	})
	require.ErrorIs(t, err, assets.ErrAssetExists)

	asset, err := reg.Get(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), asset.ModelId)
	assert.Equal(t, "alice", asset.Holder)
	assert.Empty(t, asset.Delegates)

	list, err := reg.List(nil)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, a := range list {
		assert.Equal(t, uint64(i), a.ModelId) //nolint:gosec
	}
	require.NoError(t, reg.VerifySupply(nil))
}

func TestHolderAndDelegates(t *testing.T) {
	db, reg := newTestRegistry(t)
	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		return reg.Mint(txn, 0, "alice")
	}))
	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		return reg.SetDelegate(txn, 0, "carol", false)
	}))
	// Delegating twice keeps a single entry
	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		return reg.SetDelegate(txn, 0, "carol", false)
	}))
	asset, err := reg.Get(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, asset.Delegates)

	for principal, expected := range map[string]bool{
		"alice": true,
		"carol": true,
		"dave":  false,
	} {
		ok, err := reg.IsHolderOrDelegate(nil, 0, principal)
		require.NoError(t, err)
		assert.Equal(t, expected, ok, principal)
	}

	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		return reg.SetDelegate(txn, 0, "carol", true)
	}))
	ok, err := reg.IsHolderOrDelegate(nil, 0, "carol")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = reg.IsHolderOrDelegate(nil, 99, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTransferClearsDelegates(t *testing.T) {
	db, reg := newTestRegistry(t)
	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		if err := reg.Mint(txn, 0, "alice"); err != nil {
			return err
		}
		return reg.SetDelegate(txn, 0, "carol", false)
	}))
	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		return reg.Transfer(txn, 0, "bob")
	}))
	asset, err := reg.Get(nil, 0)
	require.NoError(t, err)
	assert.Equal(t, "bob", asset.Holder)
	assert.Empty(t, asset.Delegates)
	ok, err := reg.IsHolderOrDelegate(nil, 0, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBurn(t *testing.T) {
	db, reg := newTestRegistry(t)
	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		if err := reg.Mint(txn, 0, "alice"); err != nil {
			return err
		}
		return reg.Mint(txn, 1, "alice")
	}))
	require.NoError(t, update(t, db, func(txn *database.Txn) error {
		return reg.Burn(txn, 0)
	}))
	exists, err := reg.Exists(nil, 0)
	require.NoError(t, err)
	assert.False(t, exists)
	size, err := reg.ElectorateSize(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), size)
	require.NoError(t, reg.VerifySupply(nil))

	err = update(t, db, func(txn *database.Txn) error {
		return reg.Burn(txn, 0)
	})
	require.ErrorIs(t, err, assets.ErrAssetNotFound)
}

func TestRolledBackMintLeavesNoAsset(t *testing.T) {
	db, reg := newTestRegistry(t)
	txn := db.Transaction(true)
	require.NoError(t, reg.Mint(txn, 0, "alice"))
	require.NoError(t, txn.Rollback())
	exists, err := reg.Exists(nil, 0)
	require.NoError(t, err)
	assert.False(t, exists)
	size, err := reg.ElectorateSize(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)
}
