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

// Package types holds the store-neutral interfaces and keys shared by the
// database package and its plugins.
package types

import "errors"

var (
	ErrBlobKeyNotFound      = errors.New("blob key not found")
	ErrTxnWrongType         = errors.New("invalid transaction type")
	ErrNilTxn               = errors.New("nil transaction")
	ErrBlobStoreUnavailable = errors.New("blob store unavailable")
)

// Txn is the per-store half of a database.Txn
type Txn interface {
	Commit() error
	Rollback() error
}

type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

// BlobIterator walks blob keys in order. Items are only valid while the
// transaction that created the iterator is open.
type BlobIterator interface {
	Rewind()
	Seek(key []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

type BlobIteratorOptions struct {
	Prefix  []byte
	Reverse bool
}
