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

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/blinklabs-io/modelgov/api"
	"github.com/blinklabs-io/modelgov/internal/secrets"
	"github.com/spf13/cobra"
)

func newClient(cmd *cobra.Command) *api.Client {
	cfg := mustConfig(cmd)
	return api.NewClient(cfg.ServerUrl, api.WithToken(cfg.Token))
}

func parseId(arg string, what string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, arg, err)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func tokenCommand() *cobra.Command {
	var principal string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for a principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := mustConfig(cmd).Secret()
			if err != nil {
				return err
			}
			token, err := api.IssueToken(secret, principal, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&principal, "principal", "", "principal the token identifies")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	_ = cmd.MarkFlagRequired("principal")
	return cmd
}

func secretCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Manage sops encrypted secret files",
	}
	encryptCmd := &cobra.Command{
		Use:   "encrypt [file]",
		Short: "Encrypt a secret with the configured KMS keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			out, err := secrets.Encrypt(data)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.AddCommand(encryptCmd)
	return cmd
}

func modelCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "model",
		Short: "Register and manage models",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "register <name> <location>",
			Short: "Register a new model",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := newClient(cmd).Register(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <model-id>",
			Short: "Show a model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseId(args[0], "model id")
				if err != nil {
					return err
				}
				model, err := newClient(cmd).GetModel(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), model)
			},
		},
		&cobra.Command{
			Use:   "complete <model-id>",
			Short: "Mark a model complete",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseId(args[0], "model id")
				if err != nil {
					return err
				}
				return newClient(cmd).MarkComplete(cmd.Context(), id)
			},
		},
		&cobra.Command{
			Use:   "transfer <model-id> <new-holder>",
			Short: "Transfer a model asset",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseId(args[0], "model id")
				if err != nil {
					return err
				}
				return newClient(cmd).TransferModel(cmd.Context(), id, args[1])
			},
		},
		delegateCommand(),
		&cobra.Command{
			Use:   "burn <model-id>",
			Short: "Destroy a model asset",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseId(args[0], "model id")
				if err != nil {
					return err
				}
				return newClient(cmd).BurnModel(cmd.Context(), id)
			},
		},
	)
	return cmd
}

func delegateCommand() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "delegate <model-id> <delegate>",
		Short: "Grant or revoke voting rights for a model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseId(args[0], "model id")
			if err != nil {
				return err
			}
			return newClient(cmd).DelegateVoting(cmd.Context(), id, args[1], revoke)
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "revoke instead of grant")
	return cmd
}

func changeArgs(args []string) (uint64, uint64, error) {
	modelId, err := parseId(args[0], "model id")
	if err != nil {
		return 0, 0, err
	}
	changeId, err := parseId(args[1], "change id")
	if err != nil {
		return 0, 0, err
	}
	return modelId, changeId, nil
}

func changeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change",
		Short: "Propose, vote on and approve model changes",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "propose <model-id> <name> <location>",
			Short: "Propose a change to a model",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseId(args[0], "model id")
				if err != nil {
					return err
				}
				changeId, err := newClient(cmd).ProposeChange(cmd.Context(), id, args[1], args[2])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), changeId)
				return nil
			},
		},
		&cobra.Command{
			Use:   "list <model-id>",
			Short: "List proposed changes for a model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseId(args[0], "model id")
				if err != nil {
					return err
				}
				proposals, err := newClient(cmd).GetProposals(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), proposals)
			},
		},
		&cobra.Command{
			Use:   "vote <model-id> <change-id>",
			Short: "Vote for a proposed change",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				modelId, changeId, err := changeArgs(args)
				if err != nil {
					return err
				}
				return newClient(cmd).VoteChange(cmd.Context(), modelId, changeId)
			},
		},
		&cobra.Command{
			Use:   "approve <model-id> <change-id>",
			Short: "Approve a change that has a majority",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				modelId, changeId, err := changeArgs(args)
				if err != nil {
					return err
				}
				return newClient(cmd).ApproveChange(cmd.Context(), modelId, changeId)
			},
		},
	)
	return cmd
}

func electorateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "electorate",
		Short: "Show the current electorate size",
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := newClient(cmd).GetElectorate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), size)
			return nil
		},
	}
}
