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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov/assets"
	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/event"
	"github.com/blinklabs-io/modelgov/ledger"
)

const (
	creator = "creator"
	admin   = "admin"
)

// mockCapabilities grants roles from fixed sets. Voters may vote on every
// model.
type mockCapabilities struct {
	mu       sync.Mutex
	creators map[string]bool
	admins   map[string]bool
	voters   map[string]bool
}

func newMockCapabilities() *mockCapabilities {
	return &mockCapabilities{
		creators: map[string]bool{creator: true},
		admins:   map[string]bool{admin: true},
		voters:   map[string]bool{},
	}
}

func (m *mockCapabilities) allowVoter(voter string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voters[voter] = true
}

func (m *mockCapabilities) IsCreator(_ *database.Txn, p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creators[p], nil
}

func (m *mockCapabilities) IsAdmin(_ *database.Txn, p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admins[p], nil
}

func (m *mockCapabilities) IsHolderOrDelegate(
	_ *database.Txn,
	_ uint64,
	p string,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voters[p], nil
}

type mockElectorate struct {
	mu   sync.Mutex
	size uint64
}

func (m *mockElectorate) set(size uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.size = size
}

func (m *mockElectorate) ElectorateSize(_ *database.Txn) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size, nil
}

// recordingNotifier keeps every published event in order
type recordingNotifier struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recordingNotifier) Publish(_ event.EventType, evt event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recordingNotifier) last() event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type testLedger struct {
	ls         *ledger.LedgerState
	db         *database.Database
	assets     *assets.Registry
	caps       *mockCapabilities
	electorate *mockElectorate
	notifier   *recordingNotifier
}

func newTestLedger(t *testing.T) *testLedger {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	tl := &testLedger{
		db:         db,
		assets:     assets.NewRegistry(db, nil),
		caps:       newMockCapabilities(),
		electorate: &mockElectorate{},
		notifier:   &recordingNotifier{},
	}
	tl.ls, err = ledger.NewLedgerState(ledger.LedgerStateConfig{
		Database:     db,
		Capabilities: tl.caps,
		Electorate:   tl.electorate,
		Assets:       tl.assets,
		Notifier:     tl.notifier,
	})
	require.NoError(t, err)
	return tl
}

func (tl *testLedger) register(t *testing.T, name, location string) uint64 {
	t.Helper()
	id, err := tl.ls.Register(context.Background(), name, location, creator)
	require.NoError(t, err)
	return id
}
