/* Copyright 2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Comcast/resourceful/config"
	"github.com/Comcast/resourceful/core"
	"github.com/Comcast/resourceful/crew"
	"github.com/Comcast/resourceful/interpreters"
	"github.com/Comcast/resourceful/sio"

	"github.com/spf13/cobra"
)

// load reads a resource tree and builds its Namespace and
// ReducerOptions.
func (a *app) load(ctx context.Context, filename string) (*config.Tree, core.Namespace, *core.ReducerOptions, error) {
	if filename == "" {
		return nil, nil, nil, errors.New("no resource tree (use -c)")
	}
	t, err := config.Load(filename)
	if err != nil {
		return nil, nil, nil, err
	}
	is := interpreters.Standard()
	ns, err := t.Namespace(ctx, is, a.env)
	if err != nil {
		return nil, nil, nil, err
	}
	ro, err := t.ReducerOptions(ctx, is, a.logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return t, ns, ro, nil
}

func (a *app) replayCmd() *cobra.Command {
	var (
		treeFile  string
		stateFile string
		r         = &sio.Replay{}
		validate  bool
	)

	cmd := &cobra.Command{
		Use:   "replay -c tree.yaml",
		Short: "Reduce action descriptors from stdin into collections",
		Long: `Read action descriptors (one JSON object per line) from stdin,
dispatch each one to a collection for every top-level resource in the
tree, and write the resulting state (a JSON object of arrays) to
stdout.

Nothing performs the actions' effects.  With --auto commit (or
rollback), each optimistic action is immediately followed by its
commit (or rollback).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			_, ns, ro, err := a.load(ctx, treeFile)
			if err != nil {
				return err
			}

			store := crew.NewStore(treeFile)
			store.Logger = a.logger
			if err := store.AddNamespace(ns, ro); err != nil {
				return err
			}

			if stateFile != "" {
				f, err := os.Open(stateFile)
				if err != nil {
					return err
				}
				snap, err := sio.ReadSnapshot(f)
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", stateFile, err)
				}
				if err := sio.Seed(store, snap); err != nil {
					return err
				}
			}

			if validate {
				if r.Validator, err = sio.DefaultValidator(); err != nil {
					return err
				}
			}
			r.In = cmd.InOrStdin()
			r.Out = cmd.OutOrStdout()
			r.Store = store
			r.Logger = a.logger

			sum, err := r.Run(ctx)
			if sum != nil {
				a.logger.Info("replayed",
					"lines", sum.Lines,
					"dispatched", sum.Dispatched,
					"bad", sum.Bad,
					"unmatched", sum.Unmatched,
					"ignored", sum.Ignored)
			}
			return err
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&treeFile, "config", "c", "", "resource tree (YAML or JSON)")
	fs.StringVar(&stateFile, "state", "", "initial state (JSON object of arrays)")
	fs.StringVar(&r.Auto, "auto", sio.AutoNone, "follow each action with its \"commit\" or \"rollback\"")
	fs.BoolVar(&r.Tags, "tags", false, "tag each output line")
	fs.BoolVar(&r.Timestamps, "timestamps", false, "timestamp each output line")
	fs.BoolVar(&r.EchoInput, "echo", false, "echo input lines")
	fs.BoolVar(&r.PrintStrides, "strides", false, "write a line per stride")
	fs.BoolVar(&r.WriteStatePerMsg, "state-per-line", false, "write state after every input line")
	fs.BoolVar(&validate, "validate", true, "validate each line against the action schema")

	return cmd
}
