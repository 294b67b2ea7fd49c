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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/auth"
	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/event"
	"github.com/blinklabs-io/modelgov/internal/test/testutil"
	"github.com/blinklabs-io/modelgov/ledger"
)

// newAssetLedger wires the ledger to the concrete role checker and uses the
// asset supply as the electorate
func newAssetLedger(t *testing.T, bus *event.EventBus) *ledger.LedgerState {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	reg := assets.NewRegistry(db, nil)
	checker := auth.NewChecker(db, reg, nil)
	require.NoError(t, checker.SeedRoles([]string{admin}, []string{creator}))
	cfg := ledger.LedgerStateConfig{
		Database:     db,
		Capabilities: checker,
		Electorate:   reg,
		Assets:       reg,
	}
	if bus != nil {
		cfg.Notifier = bus
	}
	ls, err := ledger.NewLedgerState(cfg)
	require.NoError(t, err)
	return ls
}

func TestHolderVotingAndDelegation(t *testing.T) {
	ls := newAssetLedger(t, nil)
	ctx := context.Background()
	first, err := ls.Register(ctx, "A", "UA", creator)
	require.NoError(t, err)
	second, err := ls.Register(ctx, "B", "UB", creator)
	require.NoError(t, err)
	size, err := ls.ElectorateSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), size)

	// Hand the second model to alice so two distinct principals can vote
	require.NoError(t, ls.TransferModel(ctx, second, creator, "alice"))
	err = ls.TransferModel(ctx, second, creator, "bob")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	changeId, err := ls.ProposeChange(ctx, first, "A2", "UA2", "bob")
	require.NoError(t, err)
	require.NoError(t, ls.VoteChange(ctx, first, changeId, creator))
	err = ls.VoteChange(ctx, first, changeId, "alice")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)

	// Only the holder may delegate
	err = ls.DelegateVoting(ctx, first, "alice", "alice")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	require.NoError(t, ls.DelegateVoting(ctx, first, creator, "alice"))
	err = ls.ApproveChange(ctx, first, changeId, admin)
	require.ErrorIs(t, err, ledger.ErrInsufficientVotes)
	require.NoError(t, ls.VoteChange(ctx, first, changeId, "alice"))
	require.NoError(t, ls.ApproveChange(ctx, first, changeId, admin))
	model, err := ls.GetModel(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "A2", model.Name)

	require.NoError(t, ls.RevokeDelegate(ctx, first, creator, "alice"))
	changeId, err = ls.ProposeChange(ctx, first, "A3", "UA3", "bob")
	require.NoError(t, err)
	err = ls.VoteChange(ctx, first, changeId, "alice")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
}

func TestTransferClearsDelegates(t *testing.T) {
	ls := newAssetLedger(t, nil)
	ctx := context.Background()
	id, err := ls.Register(ctx, "A", "UA", creator)
	require.NoError(t, err)
	require.NoError(t, ls.DelegateVoting(ctx, id, creator, "bob"))
	require.NoError(t, ls.TransferModel(ctx, id, creator, "alice"))
	changeId, err := ls.ProposeChange(ctx, id, "A2", "UA2", "carol")
	require.NoError(t, err)
	err = ls.VoteChange(ctx, id, changeId, "bob")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	err = ls.VoteChange(ctx, id, changeId, creator)
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	require.NoError(t, ls.VoteChange(ctx, id, changeId, "alice"))
}

func TestBurnedModelIsNotFound(t *testing.T) {
	ls := newAssetLedger(t, nil)
	ctx := context.Background()
	id, err := ls.Register(ctx, "A", "UA", creator)
	require.NoError(t, err)
	changeId, err := ls.ProposeChange(ctx, id, "A2", "UA2", "bob")
	require.NoError(t, err)

	err = ls.BurnModel(ctx, id, "bob")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	require.NoError(t, ls.BurnModel(ctx, id, creator))

	size, err := ls.ElectorateSize(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), size)
	_, err = ls.GetModel(ctx, id)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = ls.ProposeChange(ctx, id, "A3", "UA3", "bob")
	require.ErrorIs(t, err, ledger.ErrNotFound)
	err = ls.VoteChange(ctx, id, changeId, creator)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	err = ls.ApproveChange(ctx, id, changeId, admin)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	err = ls.MarkComplete(ctx, id, admin)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	err = ls.BurnModel(ctx, id, creator)
	require.ErrorIs(t, err, ledger.ErrNotFound)
	proposals, err := ls.GetProposals(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, proposals)

	// Burned ids are never reused
	next, err := ls.Register(ctx, "B", "UB", creator)
	require.NoError(t, err)
	assert.Equal(t, id+1, next)
}

func TestNotificationsOnEventBus(t *testing.T) {
	bus := event.NewEventBus(nil, nil)
	defer bus.Stop()
	_, created := bus.Subscribe(event.ModelCreatedEventType)
	_, proposed := bus.Subscribe(event.ChangeProposedEventType)
	_, votes := bus.Subscribe(event.VoteCastEventType)
	_, approved := bus.Subscribe(event.ChangeApprovedEventType)
	_, burned := bus.Subscribe(event.ModelBurnedEventType)

	ls := newAssetLedger(t, bus)
	ctx := context.Background()
	timeout := 2 * time.Second

	id, err := ls.Register(ctx, "A", "UA", creator)
	require.NoError(t, err)
	createdEvt := testutil.RequireEventData[event.ModelCreatedEvent](
		t,
		created,
		timeout,
	)
	assert.Equal(t, id, createdEvt.ModelID)
	assert.Equal(t, creator, createdEvt.Author)

	changeId, err := ls.ProposeChange(ctx, id, "A2", "UA2", "bob")
	require.NoError(t, err)
	proposedEvt := testutil.RequireEventData[event.ChangeProposedEvent](
		t,
		proposed,
		timeout,
	)
	assert.Equal(t, changeId, proposedEvt.ChangeID)
	assert.Equal(t, "bob", proposedEvt.Proposer)

	// A rejected vote is not announced
	err = ls.VoteChange(ctx, id, changeId, "bob")
	require.ErrorIs(t, err, ledger.ErrUnauthorized)
	testutil.RequireNoReceive(t, votes, 50*time.Millisecond, "rejected vote")

	require.NoError(t, ls.VoteChange(ctx, id, changeId, creator))
	voteEvt := testutil.RequireEventData[event.VoteCastEvent](t, votes, timeout)
	assert.Equal(t, creator, voteEvt.Voter)

	require.NoError(t, ls.ApproveChange(ctx, id, changeId, admin))
	approvedEvt := testutil.RequireEventData[event.ChangeApprovedEvent](
		t,
		approved,
		timeout,
	)
	assert.Equal(t, event.ChangeApprovedEvent{ModelID: id, ChangeID: changeId}, approvedEvt)

	require.NoError(t, ls.BurnModel(ctx, id, creator))
	burnedEvt := testutil.RequireEventData[event.ModelBurnedEvent](t, burned, timeout)
	assert.Equal(t, creator, burnedEvt.Holder)
}
