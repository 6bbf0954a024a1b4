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

// Package config reads resource trees from YAML (or JSON) and
// settings from the environment.
//
// A tree looks like
//
//	baseUrl: https://api.example.com
//	headers:
//	  authorization: Bearer token
//	onRollback:
//	  interpreter: goja
//	  source: _.log(_.error);
//	resources:
//	  users:
//	    doc: People.
//	    methods:
//	      invite: _.log(_.result);
//	    resources:
//	      projects: true
//	  teams: true
//
// A method or onRollback given as a plain string is code for
// DefaultInterpreter.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/Comcast/resourceful/core"

	"github.com/jsccast/yaml"
)

// DefaultInterpreter is the interpreter for callbacks given as plain
// strings.
var DefaultInterpreter = "goja"

// Tree is a resource and (via Resources) its nested resources.
type Tree struct {
	BaseURL    string                          `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
	Headers    map[string]string               `json:"headers,omitempty" yaml:",omitempty"`
	Doc        string                          `json:"doc,omitempty" yaml:",omitempty"`
	Methods    map[string]*core.CallbackSource `json:"methods,omitempty" yaml:",omitempty"`
	OnRollback *core.CallbackSource            `json:"onRollback,omitempty" yaml:",omitempty"`
	Resources  map[string]*Tree                `json:"resources,omitempty" yaml:",omitempty"`
}

// Load reads a Tree from the given file.
func Load(filename string) (*Tree, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	t, err := Parse(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return t, nil
}

// Parse parses a Tree from YAML (which includes JSON).
func Parse(bs []byte) (*Tree, error) {
	var x interface{}
	if err := yaml.Unmarshal(bs, &x); err != nil {
		return nil, fmt.Errorf("parse tree: %w", err)
	}
	if x == nil {
		return &Tree{}, nil
	}
	m, is := normalize(x).(map[string]interface{})
	if !is {
		return nil, &BadTree{"", "not a map", x}
	}
	return parseTree("", m)
}

// normalize turns any map[interface{}]interface{} into a
// map[string]interface{}.
func normalize(x interface{}) interface{} {
	switch vv := x.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			m[fmt.Sprintf("%v", k)] = normalize(v)
		}
		return m
	case map[string]interface{}:
		for k, v := range vv {
			vv[k] = normalize(v)
		}
		return vv
	case []interface{}:
		for i, v := range vv {
			vv[i] = normalize(v)
		}
		return vv
	default:
		return x
	}
}

func parseTree(path string, m map[string]interface{}) (*Tree, error) {
	t := &Tree{}
	for k, v := range m {
		var err error
		switch k {
		case "baseUrl":
			t.BaseURL, err = asString(path, k, v)
		case "doc":
			t.Doc, err = asString(path, k, v)
		case "headers":
			t.Headers, err = asHeaders(path, v)
		case "onRollback":
			t.OnRollback, err = asCallbackSource(path, k, v)
		case "methods":
			ms, is := v.(map[string]interface{})
			if !is {
				return nil, &BadTree{path, k, v}
			}
			t.Methods = make(map[string]*core.CallbackSource, len(ms))
			for name, src := range ms {
				if core.IsReserved(name) {
					return nil, &BadTree{path, "reserved method " + name, src}
				}
				if t.Methods[name], err = asCallbackSource(path, "methods."+name, src); err != nil {
					return nil, err
				}
			}
		case "resources":
			rs, is := v.(map[string]interface{})
			if !is {
				return nil, &BadTree{path, k, v}
			}
			t.Resources = make(map[string]*Tree, len(rs))
			for name, r := range rs {
				sub := join(path, name)
				switch vv := r.(type) {
				case nil:
					t.Resources[name] = &Tree{}
				case bool:
					if vv {
						t.Resources[name] = &Tree{}
					}
				case map[string]interface{}:
					if t.Resources[name], err = parseTree(sub, vv); err != nil {
						return nil, err
					}
				default:
					return nil, &BadTree{sub, "resource", r}
				}
			}
		default:
			return nil, &BadTree{path, "unknown key " + k, v}
		}
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "/" + name
}

func asString(path, k string, v interface{}) (string, error) {
	s, is := v.(string)
	if !is {
		return "", &BadTree{path, k, v}
	}
	return s, nil
}

func asHeaders(path string, v interface{}) (map[string]string, error) {
	m, is := v.(map[string]interface{})
	if !is {
		return nil, &BadTree{path, "headers", v}
	}
	acc := make(map[string]string, len(m))
	for k, x := range m {
		acc[k] = fmt.Sprintf("%v", x)
	}
	return acc, nil
}

func asCallbackSource(path, k string, v interface{}) (*core.CallbackSource, error) {
	switch vv := v.(type) {
	case string:
		return &core.CallbackSource{
			Interpreter: DefaultInterpreter,
			Source:      vv,
		}, nil
	case map[string]interface{}:
		src, have := vv["source"]
		if !have {
			return nil, &BadTree{path, k + " without source", v}
		}
		interpreter := DefaultInterpreter
		if x, have := vv["interpreter"]; have {
			s, is := x.(string)
			if !is {
				return nil, &BadTree{path, k + ".interpreter", x}
			}
			interpreter = s
		}
		return &core.CallbackSource{
			Interpreter: interpreter,
			Source:      src,
		}, nil
	default:
		return nil, &BadTree{path, k, v}
	}
}

// BadTree reports a problem with a resource tree.
type BadTree struct {
	Path  string
	What  string
	Value interface{}
}

func (e *BadTree) Error() string {
	path := e.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("bad tree at %s: %s (%T)", path, e.What, e.Value)
}

// Options compiles the Tree into core.Options.
//
// Each custom method's code sees "method" and "basePath" (along with
// "error" and "result").  The base path is the path of names from the
// root of the Tree to the resource that owns the call.  A resource
// without methods inherits its parent's, compiled again for its own
// base path.
func (t *Tree) Options(ctx context.Context, interpreters core.InterpretersMap) (*core.Options, error) {
	return t.options(ctx, interpreters, "", nil)
}

func (t *Tree) options(ctx context.Context, interpreters core.InterpretersMap, path string, inherited map[string]*core.CallbackSource) (*core.Options, error) {
	o := &core.Options{
		BaseURL: t.BaseURL,
		Headers: t.Headers,
		Doc:     t.Doc,
	}
	methods := t.Methods
	if len(methods) == 0 {
		methods = inherited
	}
	if 0 < len(methods) {
		o.Methods = make(map[string]core.Callback, len(methods))
		for _, name := range sortedKeys(methods) {
			f, err := methods[name].Compile(ctx, interpreters, map[string]interface{}{
				"method":   name,
				"basePath": path,
			})
			if err != nil {
				return nil, fmt.Errorf("%s: method %s: %w", or(path, "(root)"), name, err)
			}
			o.Methods[name] = f
		}
	}
	if 0 < len(t.Resources) {
		o.Resources = make(map[string]*core.Options, len(t.Resources))
		for name, sub := range t.Resources {
			so, err := sub.options(ctx, interpreters, join(path, name), methods)
			if err != nil {
				return nil, err
			}
			o.Resources[name] = so
		}
	}
	return o, nil
}

func sortedKeys(m map[string]*core.CallbackSource) []string {
	acc := make([]string, 0, len(m))
	for k := range m {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}

// ReducerOptions compiles the Tree's onRollback (if any).
//
// The rollback code sees the rollback payload as "error".
func (t *Tree) ReducerOptions(ctx context.Context, interpreters core.InterpretersMap, logger *slog.Logger) (*core.ReducerOptions, error) {
	ro := &core.ReducerOptions{
		Logger: logger,
	}
	if t.OnRollback != nil {
		f, err := t.OnRollback.Compile(ctx, interpreters, map[string]interface{}{
			"method": "onRollback",
		})
		if err != nil {
			return nil, fmt.Errorf("onRollback: %w", err)
		}
		ro.OnRollback = func(payload interface{}) {
			f(payload, nil)
		}
	}
	return ro, nil
}

// Namespace builds the Tree's resources.  The Env (if not nil) can
// override the root's base URL.
func (t *Tree) Namespace(ctx context.Context, interpreters core.InterpretersMap, e *Env) (core.Namespace, error) {
	o, err := t.Options(ctx, interpreters)
	if err != nil {
		return nil, err
	}
	if e != nil && e.BaseURL != "" {
		o.BaseURL = e.BaseURL
	}
	return core.NewTree(o), nil
}

func or(s, otherwise string) string {
	if s == "" {
		return otherwise
	}
	return s
}
