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

package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/cenkalti/backoff/v4"
)

const defaultClientRetries = 3

// Client calls ModelService. Calls failing with an unavailable status are
// retried with exponential backoff.
type Client struct {
	httpClient connect.HTTPClient
	logger     *slog.Logger
	token      string
	maxRetries uint64
	// initialInterval is the first retry delay
	initialInterval time.Duration

	register       *connect.Client[RegisterRequest, RegisterResponse]
	markComplete   *connect.Client[ModelRequest, Empty]
	getModel       *connect.Client[ModelRequest, GetModelResponse]
	proposeChange  *connect.Client[ProposeChangeRequest, ProposeChangeResponse]
	getProposals   *connect.Client[ModelRequest, GetProposalsResponse]
	voteChange     *connect.Client[ChangeRequest, Empty]
	approveChange  *connect.Client[ChangeRequest, Empty]
	transferModel  *connect.Client[TransferModelRequest, Empty]
	delegateVoting *connect.Client[DelegateVotingRequest, Empty]
	burnModel      *connect.Client[ModelRequest, Empty]
	getElectorate  *connect.Client[Empty, GetElectorateResponse]
}

type ClientOptionFunc func(*Client)

// WithToken sets the bearer token sent with every call
func WithToken(token string) ClientOptionFunc {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(httpClient connect.HTTPClient) ClientOptionFunc {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMaxRetries sets how many times an unavailable call is retried
func WithMaxRetries(maxRetries uint64) ClientOptionFunc {
	return func(c *Client) {
		c.maxRetries = maxRetries
	}
}

func WithRetryInterval(interval time.Duration) ClientOptionFunc {
	return func(c *Client) {
		c.initialInterval = interval
	}
}

func WithClientLogger(logger *slog.Logger) ClientOptionFunc {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL string, opts ...ClientOptionFunc) *Client {
	c := &Client{
		httpClient:      http.DefaultClient,
		maxRetries:      defaultClientRetries,
		initialInterval: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	c.logger = c.logger.With("component", "api-client")
	baseURL = strings.TrimRight(baseURL, "/")
	clientOpts := []connect.ClientOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(tokenInterceptor(c.token)),
	}
	c.register = connect.NewClient[RegisterRequest, RegisterResponse](c.httpClient, baseURL+RegisterProcedure, clientOpts...)
	c.markComplete = connect.NewClient[ModelRequest, Empty](c.httpClient, baseURL+MarkCompleteProcedure, clientOpts...)
	c.getModel = connect.NewClient[ModelRequest, GetModelResponse](c.httpClient, baseURL+GetModelProcedure, clientOpts...)
	c.proposeChange = connect.NewClient[ProposeChangeRequest, ProposeChangeResponse](c.httpClient, baseURL+ProposeChangeProcedure, clientOpts...)
	c.getProposals = connect.NewClient[ModelRequest, GetProposalsResponse](c.httpClient, baseURL+GetProposalsProcedure, clientOpts...)
	c.voteChange = connect.NewClient[ChangeRequest, Empty](c.httpClient, baseURL+VoteChangeProcedure, clientOpts...)
	c.approveChange = connect.NewClient[ChangeRequest, Empty](c.httpClient, baseURL+ApproveChangeProcedure, clientOpts...)
	c.transferModel = connect.NewClient[TransferModelRequest, Empty](c.httpClient, baseURL+TransferModelProcedure, clientOpts...)
	c.delegateVoting = connect.NewClient[DelegateVotingRequest, Empty](c.httpClient, baseURL+DelegateVotingProcedure, clientOpts...)
	c.burnModel = connect.NewClient[ModelRequest, Empty](c.httpClient, baseURL+BurnModelProcedure, clientOpts...)
	c.getElectorate = connect.NewClient[Empty, GetElectorateResponse](c.httpClient, baseURL+GetElectorateProcedure, clientOpts...)
	return c
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = 5 * time.Second
	return backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)
}

func call[Req, Res any](
	ctx context.Context,
	c *Client,
	client *connect.Client[Req, Res],
	msg *Req,
) (*Res, error) {
	var resp *connect.Response[Res]
	err := backoff.RetryNotify(
		func() error {
			var err error
			resp, err = client.CallUnary(ctx, connect.NewRequest(msg))
			if err != nil {
				if connect.CodeOf(err) == connect.CodeUnavailable {
					return err
				}
				return backoff.Permanent(err)
			}
			return nil
		},
		c.backOff(ctx),
		func(err error, delay time.Duration) {
			c.logger.Debug(
				"retrying call",
				"error", err,
				"delay", delay,
			)
		},
	)
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *Client) Register(ctx context.Context, name, location string) (uint64, error) {
	resp, err := call(ctx, c, c.register, &RegisterRequest{Name: name, Location: location})
	if err != nil {
		return 0, err
	}
	return resp.ModelId, nil
}

func (c *Client) MarkComplete(ctx context.Context, modelId uint64) error {
	_, err := call(ctx, c, c.markComplete, &ModelRequest{ModelId: modelId})
	return err
}

func (c *Client) GetModel(ctx context.Context, modelId uint64) (*GetModelResponse, error) {
	return call(ctx, c, c.getModel, &ModelRequest{ModelId: modelId})
}

func (c *Client) ProposeChange(
	ctx context.Context,
	modelId uint64,
	name string,
	location string,
) (uint64, error) {
	resp, err := call(
		ctx,
		c,
		c.proposeChange,
		&ProposeChangeRequest{ModelId: modelId, Name: name, Location: location},
	)
	if err != nil {
		return 0, err
	}
	return resp.ChangeId, nil
}

func (c *Client) GetProposals(ctx context.Context, modelId uint64) ([]Proposal, error) {
	resp, err := call(ctx, c, c.getProposals, &ModelRequest{ModelId: modelId})
	if err != nil {
		return nil, err
	}
	return resp.Proposals, nil
}

func (c *Client) VoteChange(ctx context.Context, modelId, changeId uint64) error {
	_, err := call(ctx, c, c.voteChange, &ChangeRequest{ModelId: modelId, ChangeId: changeId})
	return err
}

func (c *Client) ApproveChange(ctx context.Context, modelId, changeId uint64) error {
	_, err := call(ctx, c, c.approveChange, &ChangeRequest{ModelId: modelId, ChangeId: changeId})
	return err
}

func (c *Client) TransferModel(ctx context.Context, modelId uint64, newHolder string) error {
	_, err := call(
		ctx,
		c,
		c.transferModel,
		&TransferModelRequest{ModelId: modelId, NewHolder: newHolder},
	)
	return err
}

func (c *Client) DelegateVoting(
	ctx context.Context,
	modelId uint64,
	delegate string,
	revoke bool,
) error {
	_, err := call(
		ctx,
		c,
		c.delegateVoting,
		&DelegateVotingRequest{ModelId: modelId, Delegate: delegate, Revoke: revoke},
	)
	return err
}

func (c *Client) BurnModel(ctx context.Context, modelId uint64) error {
	_, err := call(ctx, c, c.burnModel, &ModelRequest{ModelId: modelId})
	return err
}

func (c *Client) GetElectorate(ctx context.Context) (uint64, error) {
	resp, err := call(ctx, c, c.getElectorate, &Empty{})
	if err != nil {
		return 0, err
	}
	return resp.Size, nil
}
