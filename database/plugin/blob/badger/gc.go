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
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// Discard ratio passed to RunValueLogGC
const gcDiscardRatio = 0.5

func (d *BlobStoreBadger) startGc() {
	d.gcStop = make(chan struct{})
	d.gcWg.Add(1)
	go func() {
		defer d.gcWg.Done()
		ticker := time.NewTicker(d.settings.GcInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.runGc()
			case <-d.gcStop:
				return
			}
		}
	}()
}

func (d *BlobStoreBadger) stopGc() {
	if d.gcStop == nil {
		return
	}
	close(d.gcStop)
	d.gcWg.Wait()
	d.gcStop = nil
}

// runGc rewrites value log files until badger reports nothing to reclaim
func (d *BlobStoreBadger) runGc() {
	for {
		err := d.db.RunValueLogGC(gcDiscardRatio)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) {
			d.logger.Warn(
				"blob store value log GC failed",
				"component", "database",
				"error", err,
			)
		}
		return
	}
}
