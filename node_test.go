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

package modelgov_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/modelgov"
	"github.com/blinklabs-io/modelgov/api"
)

var testSecret = []byte("node-secret")

func freePort(t *testing.T) uint {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())
	return uint(port) // #nosec G115
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := modelgov.New(modelgov.NewConfig())
	require.Error(t, err)
	_, err = modelgov.New(modelgov.NewConfig(
		modelgov.WithJwtSecret(testSecret),
		modelgov.WithTlsCertFilePath("cert.pem"),
	))
	require.Error(t, err)
	_, err = modelgov.New(modelgov.NewConfig(
		modelgov.WithJwtSecret(testSecret),
	))
	require.NoError(t, err)
}

func startNode(t *testing.T, opts ...modelgov.ConfigOptionFunc) (*modelgov.Node, string) {
	t.Helper()
	port := freePort(t)
	opts = append(
		[]modelgov.ConfigOptionFunc{
			modelgov.WithJwtSecret(testSecret),
			modelgov.WithBindAddr("127.0.0.1"),
			modelgov.WithRpcPort(port),
			modelgov.WithAdmins("admin"),
			modelgov.WithCreators("alice"),
			modelgov.WithPrometheusRegistry(prometheus.NewRegistry()),
			modelgov.WithShutdownTimeout(5 * time.Second),
		},
		opts...,
	)
	n, err := modelgov.New(modelgov.NewConfig(opts...))
	require.NoError(t, err)
	errCh := make(chan error, 1)
	go func() {
		errCh <- n.Run(context.Background())
	}()
	select {
	case <-n.Started():
	case err := <-errCh:
		require.NoError(t, err)
		t.Fatal("node exited before starting")
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for node to start")
	}
	t.Cleanup(func() {
		require.NoError(t, n.Stop())
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("timeout waiting for node to stop")
		}
	})
	return n, "http://" + n.RpcAddr().String()
}

func TestNodeServesLedger(t *testing.T) {
	_, url := startNode(t)
	token, err := api.IssueToken(testSecret, "alice", time.Minute)
	require.NoError(t, err)
	client := api.NewClient(url, api.WithToken(token))
	ctx := context.Background()
	id, err := client.Register(ctx, "M", "U")
	require.NoError(t, err)
	model, err := api.NewClient(url).GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", model.Author)
	size, err := client.GetElectorate(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), size)
}

func TestNodePersistsAcrossRestart(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()
	token, err := api.IssueToken(testSecret, "alice", time.Minute)
	require.NoError(t, err)

	n, url := startNode(t, modelgov.WithDatabasePath(dataDir))
	id, err := api.NewClient(url, api.WithToken(token)).Register(ctx, "M", "U")
	require.NoError(t, err)
	require.NoError(t, n.Stop())

	_, url = startNode(t, modelgov.WithDatabasePath(dataDir))
	model, err := api.NewClient(url).GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "M", model.Name)
}
