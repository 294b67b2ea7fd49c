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

package assets

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blinklabs-io/modelgov/database"
	"github.com/blinklabs-io/modelgov/database/types"
)

// Registry stores asset records in the blob store. Mutating methods must be
// called with a read-write transaction.
type Registry struct {
	db     *database.Database
	logger *slog.Logger
}

func NewRegistry(db *database.Database, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Registry{
		db:     db,
		logger: logger.With("component", "assets"),
	}
}

// Get returns the asset for a model
func (r *Registry) Get(txn *database.Txn, modelId uint64) (*Asset, error) {
	if txn == nil {
		txn = r.db.Transaction(false)
		defer txn.Release()
	}
	data, err := r.db.Blob().Get(txn.Blob(), types.AssetBlobKey(modelId))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return nil, fmt.Errorf("model %d: %w", modelId, ErrAssetNotFound)
		}
		return nil, err
	}
	asset, err := decodeAsset(data)
	if err != nil {
		return nil, fmt.Errorf("decode asset for model %d: %w", modelId, err)
	}
	return asset, nil
}

// Exists reports whether the asset for a model is outstanding
func (r *Registry) Exists(txn *database.Txn, modelId uint64) (bool, error) {
	_, err := r.Get(txn, modelId)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Registry) put(txn *database.Txn, asset *Asset) error {
	data, err := encodeAsset(asset)
	if err != nil {
		return fmt.Errorf("encode asset for model %d: %w", asset.ModelId, err)
	}
	return r.db.Blob().Set(txn.Blob(), types.AssetBlobKey(asset.ModelId), data)
}

// Mint creates the asset for a new model, held by holder
func (r *Registry) Mint(txn *database.Txn, modelId uint64, holder string) error {
	exists, err := r.Exists(txn, modelId)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("model %d: %w", modelId, ErrAssetExists)
	}
	if err := r.put(txn, &Asset{ModelId: modelId, Holder: holder}); err != nil {
		return err
	}
	supply, err := r.ElectorateSize(txn)
	if err != nil {
		return err
	}
	return r.setSupply(txn, supply+1)
}

// Burn destroys the asset for a model
func (r *Registry) Burn(txn *database.Txn, modelId uint64) error {
	if _, err := r.Get(txn, modelId); err != nil {
		return err
	}
	if err := r.db.Blob().Delete(txn.Blob(), types.AssetBlobKey(modelId)); err != nil {
		return err
	}
	supply, err := r.ElectorateSize(txn)
	if err != nil {
		return err
	}
	if supply == 0 {
		return errors.New("asset supply underflow")
	}
	return r.setSupply(txn, supply-1)
}

// Transfer moves the asset to a new holder. Delegations made by the previous
// holder are cleared.
func (r *Registry) Transfer(
	txn *database.Txn,
	modelId uint64,
	newHolder string,
) error {
	asset, err := r.Get(txn, modelId)
	if err != nil {
		return err
	}
	asset.Holder = newHolder
	asset.Delegates = nil
	return r.put(txn, asset)
}

// SetDelegate grants or revokes voting rights for a delegate
func (r *Registry) SetDelegate(
	txn *database.Txn,
	modelId uint64,
	delegate string,
	revoke bool,
) error {
	asset, err := r.Get(txn, modelId)
	if err != nil {
		return err
	}
	if revoke {
		asset.removeDelegate(delegate)
	} else {
		asset.addDelegate(delegate)
	}
	return r.put(txn, asset)
}

// IsHolderOrDelegate reports whether the principal holds the model's asset or
// was delegated voting rights by the holder. Models without an outstanding
// asset have no holder.
func (r *Registry) IsHolderOrDelegate(
	txn *database.Txn,
	modelId uint64,
	principal string,
) (bool, error) {
	asset, err := r.Get(txn, modelId)
	if err != nil {
		if errors.Is(err, ErrAssetNotFound) {
			return false, nil
		}
		return false, err
	}
	return asset.Holder == principal || asset.IsDelegate(principal), nil
}

// ElectorateSize returns the number of outstanding assets
func (r *Registry) ElectorateSize(txn *database.Txn) (uint64, error) {
	if txn == nil {
		txn = r.db.Transaction(false)
		defer txn.Release()
	}
	data, err := r.db.Blob().Get(txn.Blob(), []byte(types.AssetSupplyBlobKey))
	if err != nil {
		if errors.Is(err, types.ErrBlobKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid asset supply record length %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

func (r *Registry) setSupply(txn *database.Txn, supply uint64) error {
	return r.db.Blob().Set(
		txn.Blob(),
		[]byte(types.AssetSupplyBlobKey),
		types.BlobKeyUint64ToBytes(supply),
	)
}

// List returns all outstanding assets ordered by model ID
func (r *Registry) List(txn *database.Txn) ([]Asset, error) {
	if txn == nil {
		txn = r.db.Transaction(false)
		defer txn.Release()
	}
	iter := r.db.Blob().NewIterator(
		txn.Blob(),
		types.BlobIteratorOptions{Prefix: []byte(types.AssetBlobKeyPrefix)},
	)
	defer iter.Close()
	var ret []Asset
	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()
		if _, ok := types.AssetBlobKeyToModelId(item.Key()); !ok {
			continue
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		asset, err := decodeAsset(data)
		if err != nil {
			return nil, err
		}
		ret = append(ret, *asset)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

// VerifySupply compares the supply counter against the stored asset records
// and logs a warning on mismatch
func (r *Registry) VerifySupply(txn *database.Txn) error {
	if txn == nil {
		txn = r.db.Transaction(false)
		defer txn.Release()
	}
	supply, err := r.ElectorateSize(txn)
	if err != nil {
		return err
	}
	assets, err := r.List(txn)
	if err != nil {
		return err
	}
	if uint64(len(assets)) != supply {
		r.logger.Warn(
			"asset supply counter does not match stored assets",
			"supply", supply,
			"assets", len(assets),
		)
		return fmt.Errorf(
			"asset supply mismatch: counter %d, records %d",
			supply,
			len(assets),
		)
	}
	return nil
}
