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
	"fmt"
)

// CommitTimestampError reports stores that were last committed by different
// transactions
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: metadata %d, blob %d",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

func (d *Database) checkCommitTimestamp() error {
	metadataTs, err := d.metadata.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read metadata commit timestamp: %w", err)
	}
	blobTs, err := d.blob.GetCommitTimestamp()
	if err != nil {
		return fmt.Errorf("read blob commit timestamp: %w", err)
	}
	if metadataTs != blobTs {
		return CommitTimestampError{
			MetadataTimestamp: metadataTs,
			BlobTimestamp:     blobTs,
		}
	}
	return nil
}

func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.metadata.SetCommitTimestamp(timestamp, txn.Metadata()); err != nil {
		return err
	}
	return d.blob.SetCommitTimestamp(timestamp, txn.Blob())
}
