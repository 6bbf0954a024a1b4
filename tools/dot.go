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

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Comcast/resourceful/core"

	"gopkg.in/yaml.v2"
)

type DotOpts struct {
	// ShowOptions adds each resource's own options (base URL,
	// headers, methods) to its label, rendered as YAML.
	ShowOptions bool

	// ShowTypes adds the base action type to each label.
	ShowTypes bool

	// Highlight is the base path of a resource to draw in red.
	Highlight string
}

// Dot makes a Graphviz dot file for the given resource tree.
func Dot(ns core.Namespace, w io.Writer, opts *DotOpts) error {
	if opts == nil {
		opts = &DotOpts{
			ShowTypes: true,
		}
	}

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=LR,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	count := 0
	err := ns.Walk(func(r *core.Resource) error {
		count++
		label, err := dotLabel(r, opts)
		if err != nil {
			return err
		}

		color, fillcolor := "black", "#99ddc8"
		if 0 < len(r.Children) {
			fillcolor = "#52aa5e"
		}
		if r.BasePath == strings.Trim(opts.Highlight, "/") {
			color, fillcolor = "red", "#f98b8b"
		}
		fmt.Fprintf(w, "  %s [color=\"%s\", fillcolor=\"%s\", label=<%s> ]\n",
			dotId(r.BasePath), color, fillcolor, label)

		for _, name := range r.Children.Names() {
			fmt.Fprintf(w, "  %s -> %s\n", dotId(r.BasePath), dotId(r.Children[name].BasePath))
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("dot", "resources", count)

	_, err = fmt.Fprintf(w, "}\n")
	return err
}

func dotLabel(r *core.Resource, opts *DotOpts) (string, error) {
	name := r.BasePath
	if i := strings.LastIndex(name, "/"); 0 <= i {
		name = name[i+1:]
	}
	label := "<B>" + escape(name) + "</B>"

	if doc := r.Options().Doc; doc != "" {
		if 40 < len(doc) {
			if period := strings.Index(doc, ". "); 0 < period {
				doc = doc[0 : period+1]
			}
		}
		label += "<BR/><FONT POINT-SIZE='8'>" + escape(doc) + "</FONT>"
	}

	if opts.ShowTypes {
		label += "<BR/><FONT POINT-SIZE='8' FACE='monospace'>" + escape(r.Types().Base) + "_*</FONT>"
	}

	if opts.ShowOptions {
		o := r.Options()
		summary := map[string]interface{}{}
		if o.BaseURL != "" {
			summary["baseUrl"] = o.BaseURL
		}
		if 0 < len(o.Headers) {
			summary["headers"] = o.Headers
		}
		if ms := r.Methods(); 0 < len(ms) {
			summary["methods"] = ms
		}
		if 0 < len(summary) {
			bs, err := yaml.Marshal(summary)
			if err != nil {
				return "", err
			}
			label += `<FONT POINT-SIZE="6"><BR/>` +
				strings.Replace(escape(string(bs)), "\n", `<BR ALIGN="LEFT"/>`, -1) +
				`</FONT>`
		}
	}

	return label, nil
}

// dotId quotes a base path for use as a node id.
func dotId(basePath string) string {
	return `"` + strings.Replace(basePath, `"`, `\"`, -1) + `"`
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string {
	return htmlEscaper.Replace(s)
}
