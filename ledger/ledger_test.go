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

package ledger_test

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/event"
	"github.com/blinklabs-io/modelgov/ledger"
)

func TestNewLedgerStateRequiresCollaborators(t *testing.T) {
	tl := newTestLedger(t)
	_, err := ledger.NewLedgerState(ledger.LedgerStateConfig{})
	require.Error(t, err)
	_, err = ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database: tl.db,
	})
	require.Error(t, err)
	_, err = ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:     tl.db,
		Capabilities: tl.caps,
		Electorate:   tl.electorate,
	})
	require.Error(t, err)
	// The notifier is optional
	_, err = ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:     tl.db,
		Capabilities: tl.caps,
		Electorate:   tl.electorate,
		Assets:       tl.assets,
	})
	require.NoError(t, err)
}

func TestRegister(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	for i := range uint64(3) {
		id, err := tl.ls.Register(ctx, "M", "U", creator)
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}
	model, err := tl.ls.GetModel(ctx, 1)
	require.NoError(t, err)
	assert.Equal(
		t,
		ledger.Model{ID: 1, Name: "M", Location: "U", Author: creator},
		model,
	)
	asset, err := tl.assets.Get(nil, 1)
	require.NoError(t, err)
	assert.Equal(t, creator, asset.Holder)
	require.Equal(t, 3, tl.notifier.count())
	last := tl.notifier.last()
	assert.Equal(t, event.ModelCreatedEventType, last.Type)
	assert.Equal(
		t,
		event.ModelCreatedEvent{
			Name:     "M",
			Location: "U",
			Author:   creator,
			ModelID:  2,
		},
		last.Data,
	)
}

func TestRegisterUnauthorizedConsumesNoId(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	_, err := tl.ls.Register(ctx, "M", "U", "mallory")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	assert.Equal(t, 0, tl.notifier.count())
	nextId, err := tl.db.NextModelId(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), nextId)
	size, err := tl.assets.ElectorateSize(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)
	assert.Equal(t, uint64(0), tl.register(t, "M", "U"))
}

func TestRegisterConcurrent(t *testing.T) {
	tl := newTestLedger(t)
	const count = 10
	var wg sync.WaitGroup
	ids := make([]uint64, count)
	for i := range count {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := tl.ls.Register(context.Background(), "M", "U", creator)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()
	slices.Sort(ids)
	for i, id := range ids {
		assert.Equal(t, uint64(i), id) // #nosec G115
	}
}

func TestGetModelNotFound(t *testing.T) {
	tl := newTestLedger(t)
	tl.register(t, "M", "U")
	_, err := tl.ls.GetModel(context.Background(), 7)
	require.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestMarkComplete(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	id := tl.register(t, "M", "U")

	// The role check comes before the existence check
	err := tl.ls.MarkComplete(ctx, 7, creator)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	err = tl.ls.MarkComplete(ctx, 7, admin)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	require.Equal(t, 1, tl.notifier.count())

	for range 2 {
		require.NoError(t, tl.ls.MarkComplete(ctx, id, admin))
		model, err := tl.ls.GetModel(ctx, id)
		require.NoError(t, err)
		assert.True(t, model.Complete)
		last := tl.notifier.last()
		assert.Equal(t, event.ModelCompletedEventType, last.Type)
		assert.Equal(t, event.ModelCompletedEvent{ModelID: id}, last.Data)
	}
	assert.Equal(t, 3, tl.notifier.count())
}

func TestProposeChange(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	first := tl.register(t, "A", "UA")
	second := tl.register(t, "B", "UB")

	for i := range uint64(3) {
		changeId, err := tl.ls.ProposeChange(ctx, first, "A2", "UA2", "anyone")
		require.NoError(t, err)
		assert.Equal(t, i, changeId)
	}
	// Change ids are allocated per model
	changeId, err := tl.ls.ProposeChange(ctx, second, "B2", "UB2", "bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), changeId)
	assert.Equal(
		t,
		event.ChangeProposedEvent{
			Name:     "B2",
			Location: "UB2",
			Proposer: "bob",
			ModelID:  second,
			ChangeID: 0,
		},
		tl.notifier.last().Data,
	)

	_, err = tl.ls.ProposeChange(ctx, 7, "X", "UX", "bob")
	require.ErrorIs(t, err, ledger.ErrNotFound)

	// Proposing does not touch the model
	model, err := tl.ls.GetModel(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "A", model.Name)
}

func TestVoteChange(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	id := tl.register(t, "M", "U")
	changeId, err := tl.ls.ProposeChange(ctx, id, "M2", "U2", "bob")
	require.NoError(t, err)
	tl.caps.allowVoter("v1")
	tl.caps.allowVoter("v2")

	// Existence is checked before voting rights
	err = tl.ls.VoteChange(ctx, id, 5, "nobody")
	require.ErrorIs(t, err, ledger.ErrNotFound)
	err = tl.ls.VoteChange(ctx, 7, 0, "v1")
	require.ErrorIs(t, err, ledger.ErrNotFound)
	err = tl.ls.VoteChange(ctx, id, changeId, "nobody")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	require.NoError(t, tl.ls.VoteChange(ctx, id, changeId, "v1"))
	assert.Equal(
		t,
		event.VoteCastEvent{Voter: "v1", ModelID: id, ChangeID: changeId},
		tl.notifier.last().Data,
	)
	events := tl.notifier.count()
	err = tl.ls.VoteChange(ctx, id, changeId, "v1")
	require.ErrorIs(t, err, ledger.ErrDuplicateVote)
	assert.Equal(t, events, tl.notifier.count())
	require.NoError(t, tl.ls.VoteChange(ctx, id, changeId, "v2"))

	proposals, err := tl.ls.GetProposals(ctx, id)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.Equal(t, uint64(2), proposals[0].VoteCount)
	assert.False(t, proposals[0].Approved)
}

func TestApproveChangeElectorateOfTwo(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.electorate.set(2)
	tl.caps.allowVoter("v1")
	tl.caps.allowVoter("v2")
	id := tl.register(t, "M1", "U1")
	changeId, err := tl.ls.ProposeChange(ctx, id, "M1-v2", "U2", "bob")
	require.NoError(t, err)

	require.NoError(t, tl.ls.VoteChange(ctx, id, changeId, "v1"))
	err = tl.ls.ApproveChange(ctx, id, changeId, admin)
	require.ErrorIs(t, err, ledger.ErrInsufficientVotes)
	model, err := tl.ls.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "M1", model.Name)

	require.NoError(t, tl.ls.VoteChange(ctx, id, changeId, "v2"))
	require.NoError(t, tl.ls.ApproveChange(ctx, id, changeId, admin))
	assert.Equal(
		t,
		event.ChangeApprovedEvent{ModelID: id, ChangeID: changeId},
		tl.notifier.last().Data,
	)
	model, err = tl.ls.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "M1-v2", model.Name)
	assert.Equal(t, "U2", model.Location)
	assert.Equal(t, creator, model.Author)
	proposals, err := tl.ls.GetProposals(ctx, id)
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	assert.True(t, proposals[0].Approved)
}

func TestApproveChangeThreshold(t *testing.T) {
	testDefs := []struct {
		electorate uint64
		votes      int
		approved   bool
	}{
		{electorate: 0, votes: 0},
		{electorate: 0, votes: 1},
		{electorate: 1, votes: 0},
		{electorate: 1, votes: 1, approved: true},
		{electorate: 3, votes: 1},
		{electorate: 3, votes: 2, approved: true},
		{electorate: 4, votes: 2},
		{electorate: 4, votes: 3, approved: true},
	}
	for _, testDef := range testDefs {
		tl := newTestLedger(t)
		ctx := context.Background()
		tl.electorate.set(testDef.electorate)
		id := tl.register(t, "M", "U")
		changeId, err := tl.ls.ProposeChange(ctx, id, "M2", "U2", "bob")
		require.NoError(t, err)
		for i := range testDef.votes {
			voter := "voter" + strings.Repeat("x", i)
			tl.caps.allowVoter(voter)
			require.NoError(t, tl.ls.VoteChange(ctx, id, changeId, voter))
		}
		err = tl.ls.ApproveChange(ctx, id, changeId, admin)
		if testDef.approved {
			assert.NoError(
				t,
				err,
				"electorate %d with %d votes",
				testDef.electorate,
				testDef.votes,
			)
		} else {
			assert.ErrorIs(
				t,
				err,
				ledger.ErrInsufficientVotes,
				"electorate %d with %d votes",
				testDef.electorate,
				testDef.votes,
			)
		}
	}
}

func TestApproveChangeChecks(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.electorate.set(1)
	tl.caps.allowVoter("v1")
	tl.caps.allowVoter("v2")
	id := tl.register(t, "M", "U")
	changeId, err := tl.ls.ProposeChange(ctx, id, "M2", "U2", "bob")
	require.NoError(t, err)
	require.NoError(t, tl.ls.VoteChange(ctx, id, changeId, "v1"))

	// The role check comes before the existence check
	err = tl.ls.ApproveChange(ctx, 7, 0, creator)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	err = tl.ls.ApproveChange(ctx, id, changeId, creator)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	err = tl.ls.ApproveChange(ctx, id, 9, admin)
	require.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, tl.ls.ApproveChange(ctx, id, changeId, admin))
	events := tl.notifier.count()

	// Approval is terminal
	err = tl.ls.ApproveChange(ctx, id, changeId, admin)
	require.ErrorIs(t, err, ledger.ErrAlreadyApproved)
	err = tl.ls.VoteChange(ctx, id, changeId, "v2")
	require.ErrorIs(t, err, ledger.ErrAlreadyApproved)
	assert.Equal(t, events, tl.notifier.count())
	proposals, err := tl.ls.GetProposals(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), proposals[0].VoteCount)
}

func TestApproveAppliesOnlyApprovedChange(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.electorate.set(1)
	tl.caps.allowVoter("v1")
	id := tl.register(t, "M", "U")
	_, err := tl.ls.ProposeChange(ctx, id, "first", "U1", "bob")
	require.NoError(t, err)
	second, err := tl.ls.ProposeChange(ctx, id, "second", "U2", "bob")
	require.NoError(t, err)
	require.NoError(t, tl.ls.VoteChange(ctx, id, second, "v1"))
	require.NoError(t, tl.ls.ApproveChange(ctx, id, second, admin))
	model, err := tl.ls.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "second", model.Name)
	assert.Equal(t, "U2", model.Location)
	proposals, err := tl.ls.GetProposals(ctx, id)
	require.NoError(t, err)
	require.Len(t, proposals, 2)
	assert.False(t, proposals[0].Approved)
	assert.True(t, proposals[1].Approved)
}

func TestGetProposals(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	id := tl.register(t, "M", "U")
	for _, name := range []string{"a", "b", "c"} {
		_, err := tl.ls.ProposeChange(ctx, id, name, "U-"+name, "p-"+name)
		require.NoError(t, err)
	}
	proposals, err := tl.ls.GetProposals(ctx, id)
	require.NoError(t, err)
	require.Len(t, proposals, 3)
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(
			t,
			ledger.Proposal{
				ModelID:  id,
				ChangeID: uint64(i), // #nosec G115
				Name:     name,
				Location: "U-" + name,
				Proposer: "p-" + name,
			},
			proposals[i],
		)
	}
	// Reading again yields the same sequence
	again, err := tl.ls.GetProposals(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, proposals, again)

	unknown, err := tl.ls.GetProposals(ctx, 7)
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestFailedOperationsChangeNothing(t *testing.T) {
	tl := newTestLedger(t)
	ctx := context.Background()
	tl.electorate.set(4)
	tl.caps.allowVoter("v1")
	id := tl.register(t, "M", "U")
	changeId, err := tl.ls.ProposeChange(ctx, id, "M2", "U2", "bob")
	require.NoError(t, err)
	require.NoError(t, tl.ls.VoteChange(ctx, id, changeId, "v1"))

	snapshot := func() (ledger.Model, []ledger.Proposal, uint64) {
		model, err := tl.ls.GetModel(ctx, id)
		require.NoError(t, err)
		proposals, err := tl.ls.GetProposals(ctx, id)
		require.NoError(t, err)
		nextId, err := tl.db.NextModelId(nil)
		require.NoError(t, err)
		return model, proposals, nextId
	}
	model, proposals, nextId := snapshot()
	events := tl.notifier.count()

	_, err = tl.ls.Register(ctx, "X", "UX", "mallory")
	require.Error(t, err)
	require.Error(t, tl.ls.MarkComplete(ctx, id, "mallory"))
	_, err = tl.ls.ProposeChange(ctx, 9, "X", "UX", "bob")
	require.Error(t, err)
	require.Error(t, tl.ls.VoteChange(ctx, id, changeId, "v1"))
	require.Error(t, tl.ls.VoteChange(ctx, id, changeId, "mallory"))
	require.Error(t, tl.ls.ApproveChange(ctx, id, changeId, admin))
	require.Error(t, tl.ls.ApproveChange(ctx, id, changeId, "mallory"))
	require.Error(t, tl.ls.TransferModel(ctx, id, "mallory", "mallory"))
	require.Error(t, tl.ls.BurnModel(ctx, id, "mallory"))

	model2, proposals2, nextId2 := snapshot()
	assert.Equal(t, model, model2)
	assert.Equal(t, proposals, proposals2)
	assert.Equal(t, nextId, nextId2)
	assert.Equal(t, events, tl.notifier.count())
}

func TestLedgerMetrics(t *testing.T) {
	tl := newTestLedger(t)
	reg := prometheus.NewRegistry()
	ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:     tl.db,
		Capabilities: tl.caps,
		Electorate:   tl.assets,
		Assets:       tl.assets,
		PromRegistry: reg,
	})
	require.NoError(t, err)
	ctx := context.Background()
	_, err = ls.Register(ctx, "M", "U", creator)
	require.NoError(t, err)
	_, err = ls.Register(ctx, "M", "U", "mallory")
	require.Error(t, err)
	_, err = ls.ProposeChange(ctx, 0, "M2", "U2", "bob")
	require.NoError(t, err)

	expected := `
# HELP modelgov_ledger_models number of registered models
# TYPE modelgov_ledger_models gauge
modelgov_ledger_models 1
# HELP modelgov_ledger_proposals number of proposals across all models
# TYPE modelgov_ledger_proposals gauge
modelgov_ledger_proposals 1
# HELP modelgov_ledger_electorate_size current electorate size
# TYPE modelgov_ledger_electorate_size gauge
modelgov_ledger_electorate_size 1
`
	require.NoError(t, promtestutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"modelgov_ledger_models",
		"modelgov_ledger_proposals",
		"modelgov_ledger_electorate_size",
	))
	count, err := promtestutil.GatherAndCount(
		reg,
		"modelgov_ledger_operations_total",
	)
	require.NoError(t, err)
	// register/ok, register/unauthorized, propose_change/ok
	assert.Equal(t, 3, count)
}

func TestPersistence(t *testing.T) {
	dataDir := t.TempDir()
	open := func() (*database.Database, *ledger.LedgerState) {
		db, err := database.New(&database.Config{DataDir: dataDir})
		require.NoError(t, err)
		ls, err := ledger.NewLedgerState(ledger.LedgerStateConfig{
			Database:     db,
			Capabilities: newMockCapabilities(),
			Electorate:   &mockElectorate{},
			Assets:       assets.NewRegistry(db, nil),
		})
		require.NoError(t, err)
		return db, ls
	}
	ctx := context.Background()
	db, ls := open()
	id, err := ls.Register(ctx, "M", "U", creator)
	require.NoError(t, err)
	_, err = ls.ProposeChange(ctx, id, "M2", "U2", "bob")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, ls = open()
	defer db.Close()
	model, err := ls.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "M", model.Name)
	proposals, err := ls.GetProposals(ctx, id)
	require.NoError(t, err)
	assert.Len(t, proposals, 1)
	next, err := ls.Register(ctx, "N", "V", creator)
	require.NoError(t, err)
	assert.Equal(t, id+1, next)
}
