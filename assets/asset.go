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

// Package assets tracks the transferable asset that backs each model. The
// asset holder and the holder's delegates carry the model's voting rights,
// and the number of outstanding assets sizes the electorate.
package assets

import (
	"errors"
	"slices"

	"github.com/blinklabs-io/gouroboros/cbor"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrAssetExists   = errors.New("asset already minted")
)

// Asset is the stored record for a model's asset
type Asset struct {
	cbor.StructAsArray
	ModelId   uint64
	Holder    string
	Delegates []string
}

// IsDelegate reports whether the principal was delegated voting rights by
// the holder
func (a *Asset) IsDelegate(principal string) bool {
	return slices.Contains(a.Delegates, principal)
}

func (a *Asset) addDelegate(principal string) {
	if !a.IsDelegate(principal) {
		a.Delegates = append(a.Delegates, principal)
		slices.Sort(a.Delegates)
	}
}

func (a *Asset) removeDelegate(principal string) {
	a.Delegates = slices.DeleteFunc(a.Delegates, func(d string) bool {
		return d == principal
	})
}

func encodeAsset(a *Asset) ([]byte, error) {
	return cbor.Encode(a)
}

func decodeAsset(data []byte) (*Asset, error) {
	var a Asset
	if _, err := cbor.Decode(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
