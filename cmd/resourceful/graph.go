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

	"github.com/Comcast/resourceful/tools"

	"github.com/spf13/cobra"
)

func (a *app) graphCmd() *cobra.Command {
	var (
		treeFile  string
		format    string
		resource  string
		dot       tools.DotOpts
		highlight string
	)

	cmd := &cobra.Command{
		Use:   "graph -c tree.yaml",
		Short: "Write a Graphviz or Mermaid diagram",
		Long: `Write a diagram of a resource tree.

"dot" (Graphviz) draws the tree itself.  "mermaid" draws the lifecycle
of a record of the resource given by --resource.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			_, ns, _, err := a.load(ctx, treeFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "dot":
				dot.ShowTypes = true
				dot.Highlight = or(highlight, resource)
				return tools.Dot(ns, out, &dot)
			case "mermaid":
				if resource == "" {
					return errors.New("mermaid needs --resource")
				}
				r := ns.Find(resource)
				if r == nil {
					return fmt.Errorf("no resource %q", resource)
				}
				return tools.Mermaid(r.Types(), out, &tools.MermaidOpts{
					ShowTypes:   true,
					PendingFill: "#bcf2db",
					Highlight:   highlight,
				})
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&treeFile, "config", "c", "", "resource tree (YAML or JSON)")
	fs.StringVar(&format, "format", "dot", "dot or mermaid")
	fs.StringVarP(&resource, "resource", "r", "", "resource path (like users/projects)")
	fs.BoolVar(&dot.ShowOptions, "show-options", false, "include options in dot labels")
	fs.StringVar(&highlight, "highlight", "", "resource path (dot) or action type (mermaid) to highlight")

	return cmd
}

func or(s, otherwise string) string {
	if s != "" {
		return s
	}
	return otherwise
}
