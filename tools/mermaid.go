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

package tools

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Comcast/resourceful/core"
)

type MermaidOpts struct {
	// ShowTypes labels each edge with its action type.  Otherwise
	// edges get the verb and stage.
	ShowTypes bool `json:"showTypes"`

	// PendingFill is the fill color of the states that are
	// waiting on an effect.
	PendingFill string `json:"pendingFill,omitempty"`

	// Highlight is an action type whose edges are drawn thick.
	Highlight string `json:"highlight,omitempty"`
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the lifecycle of a record with the given action types.
func Mermaid(types *core.ActionTypes, w io.Writer, opts *MermaidOpts) error {
	if opts == nil {
		opts = &MermaidOpts{
			ShowTypes:   true,
			PendingFill: "#bcf2db",
		}
	}

	ts := Lifecycle(types)
	slog.Debug("mermaid", "base", types.Base, "transitions", len(ts))

	if _, err := fmt.Fprintf(w, "graph TB\n"); err != nil {
		return err
	}

	nids := make(map[string]string)
	node := func(name string) string {
		if nid, already := nids[name]; already {
			return nid
		}
		nid := fmt.Sprintf("n%d", len(nids)+1)
		nids[name] = nid

		switch name {
		case Absent:
			fmt.Fprintf(w, "  %s((\"%s\"))\n", nid, name)
		case Synced:
			fmt.Fprintf(w, "  %s(\"%s\")\n", nid, name)
		default:
			fmt.Fprintf(w, "  %s[\"%s\"]\n", nid, name)
			if opts.PendingFill != "" {
				fmt.Fprintf(w, "  style %s fill:%s\n", nid, opts.PendingFill)
			}
		}
		return nid
	}

	for _, t := range ts {
		from, to := node(t.From), node(t.To)

		label := t.Verb + " " + t.Stage.String()
		if opts.ShowTypes {
			label = t.Type
		}
		label = strings.Replace(label, `"`, `'`, -1)

		arrow := "-->"
		switch {
		case t.Type == opts.Highlight:
			arrow = "==>"
		case types.IsMethod(t.Verb):
			arrow = "-.->"
		}
		if _, err := fmt.Fprintf(w, "  %s -- \"%s\" %s %s\n", from, label, arrow, to); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n")
	return err
}
