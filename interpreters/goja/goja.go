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

// Package goja runs callback code (custom methods and rollback
// handlers) written in ECMAScript.
package goja

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Comcast/resourceful/core"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the message of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is what Exec returns when its context is done
	// before the code finishes.
	Interrupted = errors.New(InterruptedMessage)
)

func init() {
	core.DefaultInterpreters["goja"] = NewInterpreter()
}

// LibraryProvider returns the source of the named library.
type LibraryProvider func(ctx context.Context, i *Interpreter, name string) (string, error)

// Interpreter is a core.Interpreter backed by Goja
// (https://github.com/dop251/goja), an ECMAScript 5.1+ runtime
// written in Go.
type Interpreter struct {
	// Testing adds sleep(ms) to the global environment.
	Testing bool

	// LibraryProvider resolves the names in a Source's Requires.
	// Defaults to DefaultLibraryProvider.
	LibraryProvider LibraryProvider

	// Logger gets the output of _.log.  Defaults to
	// slog.Default().
	Logger *slog.Logger
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// DefaultLibraryProvider reads "file://" libraries relative to the
// working directory.
var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// ProvideLibrary resolves the library name.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	provide := i.LibraryProvider
	if provide == nil {
		provide = DefaultLibraryProvider
	}
	return provide(ctx, i, name)
}

// MakeFileLibraryProvider makes a LibraryProvider for "file://NAME"
// libraries under the given directory.  Names that escape the
// directory are refused.
func MakeFileLibraryProvider(dir string) LibraryProvider {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		scheme, path, found := strings.Cut(name, "://")
		if !found {
			return "", fmt.Errorf("library '%s' isn't a URL", name)
		}
		if scheme != "file" {
			return "", fmt.Errorf("library '%s': unsupported scheme '%s'", name, scheme)
		}
		path = filepath.Clean(path)
		if filepath.IsAbs(path) || strings.HasPrefix(path, "..") {
			return "", fmt.Errorf("library '%s' is outside '%s'", name, dir)
		}
		bs, err := os.ReadFile(filepath.Join(dir, path))
		if err != nil {
			return "", err
		}
		return string(bs), nil
	}
}

// MakeMapLibraryProvider makes a LibraryProvider that serves
// libraries from the given map.
func MakeMapLibraryProvider(srcs map[string]string) LibraryProvider {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		if src, have := srcs[name]; have {
			return src, nil
		}
		return "", fmt.Errorf("no library '%s'", name)
	}
}

// Source is callback code along with the libraries it needs.
type Source struct {
	Code     string   `json:"code" yaml:"code"`
	Requires []string `json:"requires,omitempty" yaml:",omitempty"`
}

// AsSource accepts either a string of code or a map with "code" and
// (optionally) "requires", which is a library name or a list of them.
//
// Maps from gopkg.in/yaml.v2 (map[interface{}]interface{}) are
// accepted along with map[string]interface{}.
func AsSource(src interface{}) (*Source, error) {
	switch vv := src.(type) {
	case string:
		return &Source{Code: vv}, nil
	case *Source:
		return vv, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(vv))
		for k, v := range vv {
			s, is := k.(string)
			if !is {
				return nil, fmt.Errorf("bad source key (%T)", k)
			}
			m[s] = v
		}
		return sourceFromMap(m)
	case map[string]interface{}:
		return sourceFromMap(vv)
	default:
		return nil, fmt.Errorf("bad Goja source (%T)", src)
	}
}

func sourceFromMap(m map[string]interface{}) (*Source, error) {
	code, is := m["code"].(string)
	if !is {
		return nil, errors.New("Goja source without code")
	}
	s := &Source{Code: code}
	switch vv := m["requires"].(type) {
	case nil:
	case string:
		s.Requires = []string{vv}
	case []string:
		s.Requires = vv
	case []interface{}:
		for _, x := range vv {
			name, is := x.(string)
			if !is {
				return nil, fmt.Errorf("bad library name (%T)", x)
			}
			s.Requires = append(s.Requires, name)
		}
	default:
		return nil, fmt.Errorf("bad requires (%T)", vv)
	}
	return s, nil
}

// Compile puts the required libraries in front of the code and
// compiles the result.
//
// The code is the body of a function, so it can "return" a value.
// Compile blocks if the LibraryProvider does.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	s, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	var acc strings.Builder
	for _, name := range s.Requires {
		lib, err := i.ProvideLibrary(ctx, name)
		if err != nil {
			return nil, err
		}
		acc.WriteString(lib)
		acc.WriteString("\n")
	}
	fmt.Fprintf(&acc, "(function() {\n%s\n}());\n", s.Code)

	code := acc.String()
	p, err := goja.Compile("", code, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, code)
	}
	return p, nil
}

func (i *Interpreter) logger() *slog.Logger {
	if i.Logger == nil {
		return slog.Default()
	}
	return i.Logger
}

// throw raises a JavaScript exception.
func throw(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func exportString(o *goja.Runtime, x interface{}) string {
	if v, is := x.(goja.Value); is {
		x = v.Export()
	}
	s, is := x.(string)
	if !is {
		throw(o, "not a string")
	}
	return s
}

// helpers are the functions at _ (next to the environment).
func (i *Interpreter) helpers(o *goja.Runtime) map[string]interface{} {
	return map[string]interface{}{
		"gensym": func() interface{} {
			return core.Gensym(32)
		},
		"esc": func(x interface{}) interface{} {
			return url.QueryEscape(exportString(o, x))
		},
		"cronNext": func(x interface{}) interface{} {
			c, err := cronexpr.Parse(exportString(o, x))
			if err != nil {
				throw(o, err.Error())
			}
			return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
		},
		"log": func(x interface{}) interface{} {
			if v, is := x.(goja.Value); is {
				x = v.Export()
			}
			js, err := json.Marshal(&x)
			if err != nil {
				i.logger().Warn("goja log", "error", err)
				return x
			}
			i.logger().Info("goja log", "value", json.RawMessage(js))
			return x
		},
	}
}

// Exec runs the code.  The code is compiled first unless compiled
// is given.
//
// The environment is at _ along with some helpers:
//
//	_.gensym(): a random string.
//	_.esc(s): s query-escaped.
//	_.cronNext(expr): the next time (RFC3339) for the cron expression.
//	_.log(x): log x (as JSON) at info level.
//
// When the Testing flag is set, sleep(ms) is also available.
//
// Exec returns the exported value (if any) that the code returns.
// When the context is done first, Exec returns Interrupted.
func (i *Interpreter) Exec(ctx context.Context, env map[string]interface{}, src interface{}, compiled interface{}) (interface{}, error) {
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return nil, err
		}
	}
	p, is := compiled.(*goja.Program)
	if !is {
		return nil, fmt.Errorf("not a Goja program: %T", compiled)
	}

	o := goja.New()

	bindings := i.helpers(o)
	for k, v := range env {
		bindings[k] = v
	}
	o.Set("_", bindings)

	if i.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	// The watcher exits when Exec returns.  An Interrupt after
	// RunProgram has returned does nothing.
	watch, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		<-watch.Done()
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	if err != nil {
		var ie *goja.InterruptedError
		if errors.As(err, &ie) {
			return nil, Interrupted
		}
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.Export(), nil
}
