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

// Command resourceful makes, inspects, and replays resource actions.
//
// Nothing here talks to the network.  "replay" reads action
// descriptors (one JSON object per line), reduces them into
// collections, and writes the resulting state.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Comcast/resourceful/config"
	"github.com/Comcast/resourceful/util"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what the subcommands share.
type app struct {
	env    *config.Env
	logger *slog.Logger

	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "resourceful",
		Short: "resourceful makes and reduces optimistic resource actions",
		Long: `resourceful generates action descriptors for REST resources and
reduces them (optimistically, then by commit or rollback) into
in-memory collections.

Settings come from flags and the environment (RESOURCEFUL_BASE_URL,
RESOURCEFUL_LOG_LEVEL, RESOURCEFUL_LOG_FORMAT).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn, or error (overrides RESOURCEFUL_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "text or json (overrides RESOURCEFUL_LOG_FORMAT)")

	root.AddCommand(
		a.typesCmd(),
		a.actionCmd(),
		a.replayCmd(),
		a.docCmd(),
		a.graphCmd(),
	)

	return root
}

func (a *app) init(cmd *cobra.Command) error {
	e, err := config.FromEnv()
	if err != nil {
		return err
	}
	a.env = e

	cfg := e.LogConfig()
	if a.logLevel != "" {
		cfg.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Format = a.logFormat
	}
	cfg.Output = cmd.ErrOrStderr()
	a.logger = util.NewLogger(cfg)
	slog.SetDefault(a.logger)
	util.Logging = util.ParseLevel(cfg.Level) <= slog.LevelDebug

	return nil
}
