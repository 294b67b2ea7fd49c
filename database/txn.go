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
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/modelgov/database/types"
)

// ErrPartialCommit is returned when the blob store committed but the
// metadata store did not. The stores diverge until restored from backup.
var ErrPartialCommit = errors.New("partial commit")

// Txn spans one transaction in each store. A read-write Txn stamps both
// stores with the same commit timestamp before committing them.
type Txn struct {
	db          *Database
	blobTxn     types.Txn
	metadataTxn types.Txn
	mu          sync.Mutex
	readWrite   bool
	done        bool
}

func NewTxn(db *Database, readWrite bool) *Txn {
	return &Txn{
		db:          db,
		readWrite:   readWrite,
		blobTxn:     db.Blob().NewTransaction(readWrite),
		metadataTxn: db.Metadata().Transaction(),
	}
}

func (t *Txn) DB() *Database {
	return t.db
}

func (t *Txn) Metadata() types.Txn {
	return t.metadataTxn
}

func (t *Txn) Blob() types.Txn {
	return t.blobTxn
}

// Do runs fn and commits, or rolls back when fn fails. The error from fn is
// returned as is so that callers can match it with errors.Is.
func (t *Txn) Do(fn func(*Txn) error) error {
	if err := fn(t); err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Commit commits the blob store first. A read-only Txn is only released.
func (t *Txn) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	if !t.readWrite {
		return t.rollback()
	}
	if err := t.db.updateCommitTimestamp(t, time.Now().UnixMilli()); err != nil {
		_ = t.rollback()
		return fmt.Errorf("update commit timestamp: %w", err)
	}
	t.done = true
	if err := t.blobTxn.Commit(); err != nil {
		_ = t.metadataTxn.Rollback()
		return fmt.Errorf("blob commit: %w", err)
	}
	if err := t.metadataTxn.Commit(); err != nil {
		_ = t.metadataTxn.Rollback()
		t.db.logger.Error(
			"metadata commit failed after blob commit",
			"component", "database",
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPartialCommit, err)
	}
	return nil
}

func (t *Txn) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rollback()
}

func (t *Txn) rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	var errs []error
	if err := t.blobTxn.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("blob rollback: %w", err))
	}
	if err := t.metadataTxn.Rollback(); err != nil {
		errs = append(errs, fmt.Errorf("metadata rollback: %w", err))
	}
	return errors.Join(errs...)
}

// Release ends the Txn without committing. It is meant for defer and only
// logs failures.
func (t *Txn) Release() {
	if err := t.Rollback(); err != nil {
		t.db.logger.Debug(
			"transaction release failed",
			"component", "database",
			"error", err,
			"read_write", t.readWrite,
		)
	}
}
