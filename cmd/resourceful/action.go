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
	"encoding/json"
	"fmt"

	"github.com/Comcast/resourceful/core"

	"github.com/spf13/cobra"
)

func (a *app) actionCmd() *cobra.Command {
	var (
		baseURL string
		prefix  string
		body    string
		ownId   string
		skip    string
		headers map[string]string
		stage   string
	)

	cmd := &cobra.Command{
		Use:   "action <basePath> <verb> [id]",
		Short: "Print the action descriptor for a request",
		Long: `Print the action descriptor that a resource would dispatch.

The verb is create, read, read_pagination, update, patch, delete, or
the name of a custom method.  With --stage commit (or rollback), the
descriptor's commit (or rollback) is printed instead, with the body
as its payload.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			basePath, verb := args[0], args[1]
			var id string
			if 2 < len(args) {
				id = args[2]
			}

			var payload interface{}
			if body != "" {
				if err := json.Unmarshal([]byte(body), &payload); err != nil {
					return fmt.Errorf("--body: %w", err)
				}
			}

			if baseURL == "" && a.env != nil {
				baseURL = a.env.BaseURL
			}
			opts := &core.Options{
				BaseURL: baseURL,
				Headers: headers,
			}
			custom := !core.IsReserved(verb)
			if custom {
				opts.Methods = map[string]core.Callback{
					verb: func(failure, result interface{}) {
						a.logger.Info(verb, "error", failure, "result", result)
					},
				}
			}
			r := core.NewResource(basePath, opts)

			var (
				act *core.Action
				err error
			)
			switch verb {
			case core.VerbCreate:
				act = r.Create(payload, prefix)
			case core.VerbRead:
				act = r.Read(id, ownId, prefix)
			case core.VerbReadPagination, "readPagination":
				act = r.ReadPagination(id, ownId, prefix, skip)
			case core.VerbUpdate:
				act = r.Update(id, payload, ownId, prefix)
			case core.VerbPatch:
				act = r.Patch(id, payload, prefix)
			case core.VerbDelete:
				act = r.Delete(id, prefix)
			default:
				if !custom {
					return &core.UnknownMethod{BasePath: r.BasePath, Method: verb}
				}
				act, err = r.Call(verb, id, payload)
			}
			if err != nil {
				return err
			}

			switch stage {
			case "", "optimistic":
			case "commit":
				act = act.Commit(payload)
			case "rollback":
				act = act.Rollback(payload)
			default:
				return fmt.Errorf("unknown stage %q", stage)
			}

			js, err := json.MarshalIndent(act, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", js)
			return err
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "base URL (default from RESOURCEFUL_BASE_URL)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "path inserted between the base URL and the base path")
	cmd.Flags().StringVar(&body, "body", "", "request body (JSON)")
	cmd.Flags().StringVar(&ownId, "own-id", "", "correlation id for read, read_pagination, and update")
	cmd.Flags().StringVar(&skip, "skip", "", "pagination offset for read_pagination")
	cmd.Flags().StringToStringVarP(&headers, "header", "H", nil, "request header (name=value)")
	cmd.Flags().StringVar(&stage, "stage", "", "optimistic, commit, or rollback")

	return cmd
}
