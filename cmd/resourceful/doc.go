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
	"errors"

	"github.com/Comcast/resourceful/tools"

	"github.com/spf13/cobra"
)

func (a *app) docCmd() *cobra.Command {
	var (
		treeFile string
		cssFiles []string
		types    bool
	)

	cmd := &cobra.Command{
		Use:   "doc -c tree.yaml",
		Short: "Write HTML documentation for a resource tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if treeFile == "" {
				return errors.New("no resource tree (use -c)")
			}
			return tools.ReadAndRenderPage(treeFile, cssFiles, cmd.OutOrStdout(), types)
		},
	}

	cmd.Flags().StringVarP(&treeFile, "config", "c", "", "resource tree (YAML or JSON)")
	cmd.Flags().StringSliceVar(&cssFiles, "css", nil, "stylesheet URLs")
	cmd.Flags().BoolVar(&types, "types", false, "embed the action types as JSON")

	return cmd
}
