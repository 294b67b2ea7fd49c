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

package ledger

import "errors"

var (
	// ErrNotFound is returned when a model or change does not exist. Models
	// whose asset has been burned are treated as not existing.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the caller lacks the capability an
	// operation requires
	ErrUnauthorized = errors.New("unauthorized")
	// ErrDuplicateVote is returned when a voter votes on a change twice
	ErrDuplicateVote = errors.New("duplicate vote")
	// ErrInsufficientVotes is returned when approval is attempted before a
	// change has votes from a strict majority of the electorate
	ErrInsufficientVotes = errors.New("insufficient votes")
	// ErrAlreadyApproved is returned when voting on or approving a change
	// that has already been approved
	ErrAlreadyApproved = errors.New("already approved")
	// ErrInvalidArgument is returned for malformed input to asset operations
	ErrInvalidArgument = errors.New("invalid argument")
)

// errorKind returns a short label for an operation error, used in metrics
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrDuplicateVote):
		return "duplicate_vote"
	case errors.Is(err, ErrInsufficientVotes):
		return "insufficient_votes"
	case errors.Is(err, ErrAlreadyApproved):
		return "already_approved"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}
