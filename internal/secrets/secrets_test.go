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

package secrets_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov/internal/secrets"
)

func TestLoadPlainSecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jwt.secret")
	require.NoError(t, os.WriteFile(path, []byte("  s3cret\n"), 0o600))
	secret, err := secrets.LoadSecretFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), secret)
}

func TestLoadSecretFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := secrets.LoadSecretFile(filepath.Join(dir, "missing"))
	require.Error(t, err)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0o600))
	_, err = secrets.LoadSecretFile(empty)
	require.Error(t, err)
}

func TestEncryptRequiresMasterKey(t *testing.T) {
	t.Setenv(secrets.EnvGcpKmsResourceId, "")
	t.Setenv(secrets.EnvAwsKmsKeyArns, "")
	_, err := secrets.Encrypt([]byte("s3cret"))
	require.ErrorContains(t, err, secrets.EnvGcpKmsResourceId)
}

func TestIsEncrypted(t *testing.T) {
	assert.False(t, secrets.IsEncrypted([]byte("s3cret")))
	assert.False(t, secrets.IsEncrypted([]byte(`{"data":"s3cret"}`)))
	assert.True(t, secrets.IsEncrypted([]byte(`{"data":"ENC[...]","sops":{}}`)))
	_, err := secrets.Encrypt([]byte(`{"data":"ENC[...]","sops":{}}`))
	require.ErrorContains(t, err, "already encrypted")
}
