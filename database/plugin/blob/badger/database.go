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

package badger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/blinklabs-io/modelgov/database/types"
)

// BlobStoreBadger holds asset records and the asset supply counter. With no
// data directory the store lives in memory only.
type BlobStoreBadger struct {
	promRegistry prometheus.Registerer
	db           *badger.DB
	logger       *slog.Logger
	gcStop       chan struct{}
	gcWg         sync.WaitGroup
	settings     Settings
}

func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	d := &BlobStoreBadger{
		settings: DefaultSettings(),
	}
	d.settings.DataDir = ""
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	badgerOpts, err := d.badgerOptions()
	if err != nil {
		return nil, err
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}
	d.db = db
	if d.promRegistry != nil {
		d.registerBlobMetrics()
	}
	if d.settings.DataDir != "" && d.settings.Gc {
		d.startGc()
	}
	return d, nil
}

func (d *BlobStoreBadger) badgerOptions() (badger.Options, error) {
	var opts badger.Options
	if d.settings.DataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(d.settings.DataDir, 0o755); err != nil {
			return opts, fmt.Errorf("failed to create data dir: %w", err)
		}
		opts = badger.DefaultOptions(filepath.Join(d.settings.DataDir, "blob")).
			WithBlockCacheSize(int64(d.settings.BlockCacheSize)). //nolint:gosec
			WithIndexCacheSize(int64(d.settings.IndexCacheSize)). //nolint:gosec
			WithCompression(options.Snappy)
	}
	return opts.
		WithLogger(NewBadgerLogger(d.logger)).
		WithLoggingLevel(badger.WARNING), nil
}

// Start implements the plugin.Plugin interface. The store is opened by New.
func (d *BlobStoreBadger) Start() error {
	return nil
}

// Stop implements the plugin.Plugin interface
func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

func (d *BlobStoreBadger) Close() error {
	d.stopGc()
	return d.db.Close()
}

func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

func (d *BlobStoreBadger) NewTransaction(update bool) types.Txn {
	return &badgerTxn{store: d, tx: d.db.NewTransaction(update)}
}

func (d *BlobStoreBadger) badgerTxn(txn types.Txn) (*badger.Txn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	bTxn, ok := txn.(*badgerTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	switch {
	case bTxn.store != d:
		return nil, errors.New("transaction from different store")
	case bTxn.finished:
		return nil, errTxnFinished
	case bTxn.tx == nil:
		return nil, types.ErrBlobStoreUnavailable
	}
	return bTxn.tx, nil
}

func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	tx, err := d.badgerTxn(txn)
	if err != nil {
		return nil, err
	}
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, types.ErrBlobKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	tx, err := d.badgerTxn(txn)
	if err != nil {
		return err
	}
	return tx.Set(key, val)
}

func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	tx, err := d.badgerTxn(txn)
	if err != nil {
		return err
	}
	return tx.Delete(key)
}

// NewIterator returns an iterator bound to txn. Items are only valid while
// txn is open.
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	tx, err := d.badgerTxn(txn)
	if err != nil {
		return &blobIterator{err: err}
	}
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = opts.Prefix
	iterOpts.Reverse = opts.Reverse
	return &blobIterator{iter: tx.NewIterator(iterOpts)}
}
