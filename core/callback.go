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

package core

import (
	"context"
	"log/slog"
	"time"
)

var (
	// DefaultInterpreters will be used in CallbackSource.Compile
	// if given nil interpreters.
	DefaultInterpreters = NewInterpretersMap()

	// CallbackTimeout limits the execution of a compiled
	// Callback.
	CallbackTimeout = time.Second
)

// Interpreter can compile and execute code for Callbacks.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code in the given environment.  The
	// result of previous Compile() might be provided.
	Exec(ctx context.Context, env map[string]interface{}, code interface{}, compiled interface{}) (interface{}, error)
}

// InterpretersMap maps interpreter names to Interpreters.
type InterpretersMap map[string]Interpreter

// NewInterpretersMap makes an empty InterpretersMap.
func NewInterpretersMap() InterpretersMap {
	return make(InterpretersMap)
}

// CallbackSource can be compiled to a Callback.
//
// A resource tree read from a file uses these for custom methods and
// for a Reducer's OnRollback.
type CallbackSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:",omitempty"`
	Source      interface{} `json:"source"`
}

// Copy makes a shallow copy.
func (s *CallbackSource) Copy() *CallbackSource {
	if s == nil {
		return nil
	}
	return &CallbackSource{
		Interpreter: s.Interpreter,
		Source:      s.Source,
	}
}

// Compile attempts to compile the CallbackSource into a Callback using
// the given interpreters, which defaults to DefaultInterpreters.
//
// The code sees "error" and "result" in its environment, along with
// the given (optional) static properties.  Execution errors are
// logged since a Callback can't return one.
func (s *CallbackSource) Compile(ctx context.Context, interpreters InterpretersMap, props map[string]interface{}) (Callback, error) {
	if s == nil {
		return nil, NilCallbackSource
	}
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[s.Interpreter]
	if !have {
		return nil, &UnknownInterpreter{s.Interpreter}
	}

	x, err := interpreter.Compile(ctx, s.Source)
	if err != nil {
		return nil, err
	}

	return func(failure, result interface{}) {
		env := make(map[string]interface{}, len(props)+2)
		for p, v := range props {
			env[p] = v
		}
		env["error"] = failure
		env["result"] = result

		ctx, cancel := context.WithTimeout(context.Background(), CallbackTimeout)
		defer cancel()

		if _, err := interpreter.Exec(ctx, env, s.Source, x); err != nil {
			slog.Error("callback failed", "interpreter", s.Interpreter, "error", err)
		}
	}, nil
}
