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

	badger "github.com/dgraph-io/badger/v4"

	"github.com/blinklabs-io/modelgov/database/types"
)

var errTxnFinished = errors.New("transaction already finished")

// badgerTxn implements types.Txn on top of a badger transaction
type badgerTxn struct {
	store    *BlobStoreBadger
	tx       *badger.Txn
	finished bool
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.tx.Commit()
}

func (t *badgerTxn) Rollback() error {
	if !t.finished {
		t.finished = true
		t.tx.Discard()
	}
	return nil
}

// blobIterator adapts a badger iterator. When err is set the iterator is
// empty and reports err.
type blobIterator struct {
	iter *badger.Iterator
	err  error
}

func (it *blobIterator) Rewind() {
	if it.iter != nil {
		it.iter.Rewind()
	}
}

func (it *blobIterator) Seek(key []byte) {
	if it.iter != nil {
		it.iter.Seek(key)
	}
}

func (it *blobIterator) Valid() bool {
	return it.iter != nil && it.iter.Valid()
}

func (it *blobIterator) ValidForPrefix(prefix []byte) bool {
	return it.iter != nil && it.iter.ValidForPrefix(prefix)
}

func (it *blobIterator) Next() {
	if it.iter != nil {
		it.iter.Next()
	}
}

func (it *blobIterator) Item() types.BlobItem {
	if it.iter == nil {
		return nil
	}
	return blobItem{it.iter.Item()}
}

func (it *blobIterator) Close() {
	if it.iter != nil {
		it.iter.Close()
	}
}

func (it *blobIterator) Err() error {
	return it.err
}

type blobItem struct {
	item *badger.Item
}

func (i blobItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i blobItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}
