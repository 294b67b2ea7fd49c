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

package database_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/database/models"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testModel(id uint64) *models.Model {
	return &models.Model{
		ModelID:  id,
		Name:     "model",
		Location: "ipfs://model",
		Author:   "alice",
	}
}

func TestCreateModelAdvancesCounter(t *testing.T) {
	db := newTestDatabase(t)
	for i := range uint64(3) {
		err := db.Transaction(true).Do(func(txn *database.Txn) error {
			nextId, err := db.NextModelId(txn)
			if err != nil {
				return err
			}
			assert.Equal(t, i, nextId)
			return db.CreateModel(testModel(nextId), txn)
		})
		require.NoError(t, err)
	}
	nextId, err := db.NextModelId(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), nextId)
	count, err := db.CountModels(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestDoRollsBackOnError(t *testing.T) {
	db := newTestDatabase(t)
	errBoom := errors.New("boom")
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.CreateModel(testModel(0), txn); err != nil {
			return err
		}
		if err := db.Blob().Set(txn.Blob(), []byte("asset_x"), []byte{1}); err != nil {
			return err
		}
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)

	model, err := db.Model(0, nil)
	require.NoError(t, err)
	assert.Nil(t, model)
	nextId, err := db.NextModelId(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nextId)
	txn := db.Transaction(false)
	defer txn.Release()
	_, err = db.Blob().Get(txn.Blob(), []byte("asset_x"))
	require.Error(t, err)
}

func TestCommitUpdatesBothTimestamps(t *testing.T) {
	db := newTestDatabase(t)
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.SetRole("alice", models.RoleAdmin, txn)
	})
	require.NoError(t, err)
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Positive(t, metadataTs)
	assert.Equal(t, metadataTs, blobTs)
}

func TestReadOnlyCommitDoesNotWrite(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(false)
	require.NoError(t, txn.Commit())
	ts, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Equal(t, int64(0), ts)
	// Finished transactions ignore further commits and rollbacks
	require.NoError(t, txn.Commit())
	require.NoError(t, txn.Rollback())
}

func TestProposalAppendOrder(t *testing.T) {
	db := newTestDatabase(t)
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		for i := range uint64(3) {
			changeId, err := db.AppendProposal(&models.Proposal{
				ModelID:  4,
				Name:     "n",
				Location: "l",
				Proposer: "bob",
			}, txn)
			if err != nil {
				return err
			}
			assert.Equal(t, i, changeId)
		}
		return db.AddVote(4, 2, "carol", txn)
	})
	require.NoError(t, err)
	proposals, err := db.Proposals(4, nil)
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	assert.Equal(t, uint64(1), proposals[2].VoteCount)
	total, err := db.CountProposals(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	cfg := &database.Config{DataDir: t.TempDir()}
	db, err := database.New(cfg)
	require.NoError(t, err)
	err = db.Transaction(true).Do(func(txn *database.Txn) error {
		return db.CreateModel(testModel(0), txn)
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = database.New(cfg)
	require.NoError(t, err)
	defer db.Close()
	nextId, err := db.NextModelId(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nextId)
	model, err := db.Model(0, nil)
	require.NoError(t, err)
	require.NotNil(t, model)
	assert.Equal(t, "alice", model.Author)
}

func TestCommitTimestampMismatch(t *testing.T) {
	cfg := &database.Config{DataDir: t.TempDir()}
	db, err := database.New(cfg)
	require.NoError(t, err)
	// Simulate a commit that only reached the blob store
	blobTxn := db.Blob().NewTransaction(true)
	require.NoError(t, db.Blob().SetCommitTimestamp(12345, blobTxn))
	require.NoError(t, blobTxn.Commit())
	require.NoError(t, db.Close())

	db, err = database.New(cfg)
	var tsErr database.CommitTimestampError
	require.ErrorAs(t, err, &tsErr)
	assert.Equal(t, int64(12345), tsErr.BlobTimestamp)
	assert.Equal(t, int64(0), tsErr.MetadataTimestamp)
	require.NotNil(t, db)
	require.NoError(t, db.Close())
}

func TestUnknownPlugin(t *testing.T) {
	_, err := database.New(&database.Config{BlobPlugin: "nope"})
	require.Error(t, err)
	_, err = database.New(&database.Config{MetadataPlugin: "nope"})
	require.Error(t, err)
}
