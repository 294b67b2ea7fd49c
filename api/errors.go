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
	"errors"

	"connectrpc.com/connect"
	"github.com/blinklabs-io/modelgov/ledger"
)

// connectError maps a ledger error to the matching RPC status
func connectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	code := connect.CodeInternal
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, ledger.ErrUnauthorized):
		code = connect.CodePermissionDenied
	case errors.Is(err, ledger.ErrDuplicateVote):
		code = connect.CodeAlreadyExists
	case errors.Is(err, ledger.ErrAlreadyApproved),
		errors.Is(err, ledger.ErrInsufficientVotes):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, ledger.ErrInvalidArgument):
		code = connect.CodeInvalidArgument
	}
	return connect.NewError(code, err)
}
