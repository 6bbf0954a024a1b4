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
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Comcast/resourceful/config"
	"github.com/Comcast/resourceful/core"
	"github.com/Comcast/resourceful/interpreters/noop"

	md "github.com/russross/blackfriday/v2"
)

// RenderHTML writes documentation for every resource in the tree: its
// (Markdown) doc and a table of its action types and requests.
func RenderHTML(ns core.Namespace, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	return ns.Walk(func(r *core.Resource) error {
		f(`<div class="resource" id="%s">`, escape(r.BasePath))
		f(`<h2><code>%s</code></h2>`, escape(r.BasePath))

		if doc := r.Options().Doc; doc != "" {
			f(`<div class="resourceDoc doc">%s</div>`, md.Run([]byte(doc)))
		}

		f(`<table class="types">`)
		f(`<tr><th>name</th><th>type</th><th>commit</th><th>rollback</th><th>method</th><th>url</th></tr>`)
		for _, e := range Endpoints(r) {
			f(`<tr><td>%s</td><td><code>%s</code></td><td><code>%s</code></td><td><code>%s</code></td><td>%s</td><td><code>%s</code></td></tr>`,
				escape(e.Name),
				escape(e.Types.Type), escape(e.Types.Commit), escape(e.Types.Rollback),
				e.Method, escape(e.URL))
		}
		f(`</table>`)

		if 0 < len(r.Children) {
			f(`<div class="children">nested:`)
			for _, name := range r.Children.Names() {
				c := r.Children[name]
				f(` <a href="#%s"><code>%s</code></a>`, escape(c.BasePath), escape(name))
			}
			f(`</div>`)
		}

		f(`</div>`)
		return nil
	})
}

// RenderPage writes a complete HTML page for the resource tree.
//
// With includeTypes, the page also carries each resource's
// ActionTypes as JSON (in the variable "resourceTypes") for scripts.
func RenderPage(title string, ns core.Namespace, out io.Writer, cssFiles []string, includeTypes bool) error {
	if cssFiles == nil {
		cssFiles = []string{"/static/resources.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, escape(title))

	if includeTypes {
		types := make(map[string]*core.ActionTypes)
		ns.Walk(func(r *core.Resource) error {
			types[r.BasePath] = r.Types()
			return nil
		})
		js, err := json.Marshal(types)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, `  <script>
  var resourceTypes = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, escape(title))

	if err := RenderHTML(ns, out); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, `
  </body>
</html>
`)
	return err
}

// ReadAndRenderPage loads a resource tree file and renders its page.
//
// Callback code isn't run, so methods are compiled with the noop
// interpreter.
func ReadAndRenderPage(filename string, cssFiles []string, out io.Writer, includeTypes bool) error {
	t, err := config.Load(filename)
	if err != nil {
		return err
	}

	ns, err := t.Namespace(context.Background(), noopInterpreters(t), nil)
	if err != nil {
		return err
	}

	title := filename
	if t.Doc != "" {
		title = firstLine(t.Doc)
	}
	return RenderPage(title, ns, out, cssFiles, includeTypes)
}

// noopInterpreters maps every interpreter the tree mentions to noop.
func noopInterpreters(t *config.Tree) core.InterpretersMap {
	is := core.NewInterpretersMap()
	i := noop.NewInterpreter()
	i.Silent = true
	var walk func(t *config.Tree)
	walk = func(t *config.Tree) {
		for _, src := range t.Methods {
			is[src.Interpreter] = i
		}
		if t.OnRollback != nil {
			is[t.OnRollback.Interpreter] = i
		}
		for _, sub := range t.Resources {
			walk(sub)
		}
	}
	walk(t)
	return is
}

func firstLine(s string) string {
	for i, c := range s {
		if c == '\n' {
			return s[:i]
		}
	}
	return s
}
