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
	"gopkg.in/yaml.v2"
)

func (a *app) typesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "types <basePath> [method...]",
		Short: "Print the action types for a base path",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			types := core.Types(args[0], args[1:]...)

			var (
				bs  []byte
				err error
			)
			switch output {
			case "json":
				bs, err = json.MarshalIndent(types, "", "  ")
				bs = append(bs, '\n')
			case "yaml":
				bs, err = yaml.Marshal(types)
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(bs)
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "json or yaml")

	return cmd
}
