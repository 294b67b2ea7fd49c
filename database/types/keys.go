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

package types

import (
	"encoding/binary"
	"slices"
)

const (
	AssetBlobKeyPrefix = "asset_"
	AssetSupplyBlobKey = "asset_supply"
)

func BlobKeyUint64ToBytes(input uint64) []byte {
	ret := make([]byte, 8)
	binary.BigEndian.PutUint64(ret, input)
	return ret
}

// AssetBlobKey returns the blob key for the asset backing a model. The
// supply counter shares the prefix but never collides since its suffix is
// not 8 bytes long.
func AssetBlobKey(modelId uint64) []byte {
	return slices.Concat(
		[]byte(AssetBlobKeyPrefix),
		BlobKeyUint64ToBytes(modelId),
	)
}

// AssetBlobKeyToModelId extracts the model ID from an asset blob key. The
// second return value is false for keys that are not asset record keys.
func AssetBlobKeyToModelId(key []byte) (uint64, bool) {
	if len(key) != len(AssetBlobKeyPrefix)+8 {
		return 0, false
	}
	if string(key[:len(AssetBlobKeyPrefix)]) != AssetBlobKeyPrefix {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[len(AssetBlobKeyPrefix):]), true
}
