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
	"net/http"

	"connectrpc.com/connect"
	"github.com/blinklabs-io/modelgov/ledger"
)

const ModelServiceName = "modelgov.v1.ModelService"

const (
	RegisterProcedure       = "/" + ModelServiceName + "/Register"
	MarkCompleteProcedure   = "/" + ModelServiceName + "/MarkComplete"
	GetModelProcedure       = "/" + ModelServiceName + "/GetModel"
	ProposeChangeProcedure  = "/" + ModelServiceName + "/ProposeChange"
	GetProposalsProcedure   = "/" + ModelServiceName + "/GetProposals"
	VoteChangeProcedure     = "/" + ModelServiceName + "/VoteChange"
	ApproveChangeProcedure  = "/" + ModelServiceName + "/ApproveChange"
	TransferModelProcedure  = "/" + ModelServiceName + "/TransferModel"
	DelegateVotingProcedure = "/" + ModelServiceName + "/DelegateVoting"
	BurnModelProcedure      = "/" + ModelServiceName + "/BurnModel"
	GetElectorateProcedure  = "/" + ModelServiceName + "/GetElectorate"
)

// publicProcedures can be called without a token
var publicProcedures = map[string]bool{
	GetModelProcedure:      true,
	GetProposalsProcedure:  true,
	GetElectorateProcedure: true,
}

// Ledger is the set of ledger operations served over RPC
type Ledger interface {
	Register(ctx context.Context, name, location, creator string) (uint64, error)
	MarkComplete(ctx context.Context, modelId uint64, caller string) error
	GetModel(ctx context.Context, modelId uint64) (ledger.Model, error)
	ProposeChange(
		ctx context.Context,
		modelId uint64,
		name, location, proposer string,
	) (uint64, error)
	GetProposals(ctx context.Context, modelId uint64) ([]ledger.Proposal, error)
	VoteChange(ctx context.Context, modelId, changeId uint64, voter string) error
	ApproveChange(ctx context.Context, modelId, changeId uint64, caller string) error
	TransferModel(ctx context.Context, modelId uint64, caller, newHolder string) error
	DelegateVoting(ctx context.Context, modelId uint64, caller, delegate string) error
	RevokeDelegate(ctx context.Context, modelId uint64, caller, delegate string) error
	BurnModel(ctx context.Context, modelId uint64, caller string) error
	ElectorateSize(ctx context.Context) (uint64, error)
}

type modelService struct {
	ledger Ledger
}

func caller(ctx context.Context) (string, error) {
	principal, ok := PrincipalFromContext(ctx)
	if !ok {
		return "", connect.NewError(connect.CodeUnauthenticated, errMissingToken)
	}
	return principal, nil
}

func (s *modelService) register(
	ctx context.Context,
	req *connect.Request[RegisterRequest],
) (*connect.Response[RegisterResponse], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	id, err := s.ledger.Register(ctx, req.Msg.Name, req.Msg.Location, principal)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&RegisterResponse{ModelId: id}), nil
}

func (s *modelService) markComplete(
	ctx context.Context,
	req *connect.Request[ModelRequest],
) (*connect.Response[Empty], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.MarkComplete(ctx, req.Msg.ModelId, principal); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *modelService) getModel(
	ctx context.Context,
	req *connect.Request[ModelRequest],
) (*connect.Response[GetModelResponse], error) {
	model, err := s.ledger.GetModel(ctx, req.Msg.ModelId)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&GetModelResponse{
		ModelId:  model.ID,
		Name:     model.Name,
		Location: model.Location,
		Complete: model.Complete,
		Author:   model.Author,
	}), nil
}

func (s *modelService) proposeChange(
	ctx context.Context,
	req *connect.Request[ProposeChangeRequest],
) (*connect.Response[ProposeChangeResponse], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	changeId, err := s.ledger.ProposeChange(
		ctx,
		req.Msg.ModelId,
		req.Msg.Name,
		req.Msg.Location,
		principal,
	)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&ProposeChangeResponse{ChangeId: changeId}), nil
}

func (s *modelService) getProposals(
	ctx context.Context,
	req *connect.Request[ModelRequest],
) (*connect.Response[GetProposalsResponse], error) {
	proposals, err := s.ledger.GetProposals(ctx, req.Msg.ModelId)
	if err != nil {
		return nil, connectError(err)
	}
	resp := &GetProposalsResponse{
		Proposals: make([]Proposal, 0, len(proposals)),
	}
	for _, p := range proposals {
		resp.Proposals = append(resp.Proposals, Proposal{
			ModelId:   p.ModelID,
			ChangeId:  p.ChangeID,
			Name:      p.Name,
			Location:  p.Location,
			Proposer:  p.Proposer,
			Approved:  p.Approved,
			VoteCount: p.VoteCount,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *modelService) voteChange(
	ctx context.Context,
	req *connect.Request[ChangeRequest],
) (*connect.Response[Empty], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.VoteChange(ctx, req.Msg.ModelId, req.Msg.ChangeId, principal); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *modelService) approveChange(
	ctx context.Context,
	req *connect.Request[ChangeRequest],
) (*connect.Response[Empty], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.ApproveChange(ctx, req.Msg.ModelId, req.Msg.ChangeId, principal); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *modelService) transferModel(
	ctx context.Context,
	req *connect.Request[TransferModelRequest],
) (*connect.Response[Empty], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.TransferModel(ctx, req.Msg.ModelId, principal, req.Msg.NewHolder); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *modelService) delegateVoting(
	ctx context.Context,
	req *connect.Request[DelegateVotingRequest],
) (*connect.Response[Empty], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Revoke {
		err = s.ledger.RevokeDelegate(ctx, req.Msg.ModelId, principal, req.Msg.Delegate)
	} else {
		err = s.ledger.DelegateVoting(ctx, req.Msg.ModelId, principal, req.Msg.Delegate)
	}
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *modelService) burnModel(
	ctx context.Context,
	req *connect.Request[ModelRequest],
) (*connect.Response[Empty], error) {
	principal, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.BurnModel(ctx, req.Msg.ModelId, principal); err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *modelService) getElectorate(
	ctx context.Context,
	_ *connect.Request[Empty],
) (*connect.Response[GetElectorateResponse], error) {
	size, err := s.ledger.ElectorateSize(ctx)
	if err != nil {
		return nil, connectError(err)
	}
	return connect.NewResponse(&GetElectorateResponse{Size: size}), nil
}

// newModelServiceHandler routes every ModelService procedure
func newModelServiceHandler(
	svc *modelService,
	opts ...connect.HandlerOption,
) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(RegisterProcedure, connect.NewUnaryHandler(RegisterProcedure, svc.register, opts...))
	mux.Handle(MarkCompleteProcedure, connect.NewUnaryHandler(MarkCompleteProcedure, svc.markComplete, opts...))
	mux.Handle(GetModelProcedure, connect.NewUnaryHandler(GetModelProcedure, svc.getModel, opts...))
	mux.Handle(ProposeChangeProcedure, connect.NewUnaryHandler(ProposeChangeProcedure, svc.proposeChange, opts...))
	mux.Handle(GetProposalsProcedure, connect.NewUnaryHandler(GetProposalsProcedure, svc.getProposals, opts...))
	mux.Handle(VoteChangeProcedure, connect.NewUnaryHandler(VoteChangeProcedure, svc.voteChange, opts...))
	mux.Handle(ApproveChangeProcedure, connect.NewUnaryHandler(ApproveChangeProcedure, svc.approveChange, opts...))
	mux.Handle(TransferModelProcedure, connect.NewUnaryHandler(TransferModelProcedure, svc.transferModel, opts...))
	mux.Handle(DelegateVotingProcedure, connect.NewUnaryHandler(DelegateVotingProcedure, svc.delegateVoting, opts...))
	mux.Handle(BurnModelProcedure, connect.NewUnaryHandler(BurnModelProcedure, svc.burnModel, opts...))
	mux.Handle(GetElectorateProcedure, connect.NewUnaryHandler(GetElectorateProcedure, svc.getElectorate, opts...))
	return "/" + ModelServiceName + "/", mux
}
