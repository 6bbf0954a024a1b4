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

// These errors are user errors, not internal errors.  A Reducer
// never returns any error.

import (
	"errors"
	"fmt"
)

// UnknownMethod occurs when a custom method is requested from a
// Resource that doesn't have it.
type UnknownMethod struct {
	BasePath string
	Method   string
}

func (e *UnknownMethod) Error() string {
	return `method "` + e.Method + `" not found for resource "` + e.BasePath + `"`
}

// BadOption occurs when OptionsFromMap finds a value of the wrong
// type.
type BadOption struct {
	Name  string
	Value interface{}
}

func (e *BadOption) Error() string {
	return fmt.Sprintf(`bad option "%s" (%T)`, e.Name, e.Value)
}

// BadBranch occurs when a namespace branch is neither a boolean nor
// options.
type BadBranch struct {
	Name  string
	Value interface{}
}

func (e *BadBranch) Error() string {
	return fmt.Sprintf(`bad namespace branch "%s" (%T)`, e.Name, e.Value)
}

// UnknownInterpreter occurs when a CallbackSource names an
// interpreter that isn't in the given map of interpreters.
type UnknownInterpreter struct {
	Name string
}

func (e *UnknownInterpreter) Error() string {
	return `interpreter "` + e.Name + `" not found`
}

// NilCallbackSource occurs when compiling a nil CallbackSource.
var NilCallbackSource = errors.New("nil callback source")
