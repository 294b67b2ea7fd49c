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

// Package secrets loads and protects the token signing secret. Secret files
// may be plain text or SOPS encrypted.
package secrets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	sopsapi "github.com/getsops/sops/v3"
	"github.com/getsops/sops/v3/aes"
	scommon "github.com/getsops/sops/v3/cmd/sops/common"
	"github.com/getsops/sops/v3/config"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/getsops/sops/v3/gcpkms"
	skeys "github.com/getsops/sops/v3/keys"
	awskms "github.com/getsops/sops/v3/kms"
	jsonstore "github.com/getsops/sops/v3/stores/json"
	"github.com/getsops/sops/v3/version"
)

const (
	EnvGcpKmsResourceId = "MODELGOV_GCP_KMS_RESOURCE_ID"
	EnvAwsKmsKeyArns    = "MODELGOV_AWS_KMS_KEY_ARNS"
	EnvAwsKmsProfile    = "MODELGOV_AWS_KMS_PROFILE"
)

// IsEncrypted reports whether data is a SOPS document
func IsEncrypted(data []byte) bool {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return false
	}
	_, ok := doc["sops"]
	return ok
}

func Decrypt(data []byte) ([]byte, error) {
	return decrypt.Data(data, "binary")
}

// LoadSecretFile returns the secret stored at path. SOPS encrypted files are
// decrypted with the master keys recorded in their metadata. Surrounding
// whitespace is removed.
func LoadSecretFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read secret file: %w", err)
	}
	secret := data
	if IsEncrypted(data) {
		secret, err = Decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("decrypt secret file %s: %w", path, err)
		}
	}
	secret = bytes.TrimSpace(secret)
	if len(secret) == 0 {
		return nil, fmt.Errorf("secret file %s is empty", path)
	}
	return secret, nil
}

// Encrypt wraps data in a SOPS document encrypted to the KMS keys named in
// the environment
func Encrypt(data []byte) ([]byte, error) {
	if IsEncrypted(data) {
		return nil, errors.New("secret is already encrypted")
	}
	keyGroups, err := masterKeyGroupsFromEnv()
	if err != nil {
		return nil, err
	}
	store := jsonstore.NewBinaryStore(&config.JSONBinaryStoreConfig{})
	branches, err := store.LoadPlainFile(data)
	if err != nil {
		return nil, fmt.Errorf("load secret: %w", err)
	}
	tree := sopsapi.Tree{
		Branches: branches,
		Metadata: sopsapi.Metadata{
			KeyGroups: keyGroups,
			Version:   version.Version,
		},
	}
	dataKey, errs := tree.GenerateDataKey()
	if len(errs) > 0 {
		return nil, fmt.Errorf("generate data key: %w", errors.Join(errs...))
	}
	err = scommon.EncryptTree(scommon.EncryptTreeOpts{
		DataKey: dataKey,
		Tree:    &tree,
		Cipher:  aes.NewCipher(),
	})
	if err != nil {
		return nil, fmt.Errorf("encrypt secret: %w", err)
	}
	return store.EmitEncryptedFile(tree)
}

// keyGroup converts KMS master keys to a SOPS key group
func keyGroup[K skeys.MasterKey](keys []K) sopsapi.KeyGroup {
	group := make(sopsapi.KeyGroup, 0, len(keys))
	for _, k := range keys {
		group = append(group, k)
	}
	return group
}

// masterKeyGroupsFromEnv returns one key group per configured KMS provider
func masterKeyGroupsFromEnv() ([]sopsapi.KeyGroup, error) {
	var groups []sopsapi.KeyGroup
	if rid := os.Getenv(EnvGcpKmsResourceId); rid != "" {
		if g := keyGroup(gcpkms.MasterKeysFromResourceIDString(rid)); len(g) > 0 {
			groups = append(groups, g)
		}
	}
	if arns := os.Getenv(EnvAwsKmsKeyArns); arns != "" {
		profile := os.Getenv(EnvAwsKmsProfile)
		if g := keyGroup(awskms.MasterKeysFromArnString(arns, nil, profile)); len(g) > 0 {
			groups = append(groups, g)
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf(
			"no KMS master key configured: set %s or %s",
			EnvGcpKmsResourceId,
			EnvAwsKmsKeyArns,
		)
	}
	return groups, nil
}
