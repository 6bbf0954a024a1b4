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

// Package testutil has helpers for tests of resources and reducers.
package testutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// JS renders its argument as compact JSON.  If that fails, the
// result is the Go syntax representation, and a warning is logged.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err == nil {
		return string(bs)
	}
	slog.Warn("testutil.JS", "error", err, "value", fmt.Sprintf("%#v", x))
	return fmt.Sprintf("%#v", x)
}

// Dwimjs parses a string, bytes, or json.RawMessage as JSON and
// panics if it can't.  Anything else is returned as is.
//
// Payloads and records in tests are usually written as JSON
// literals, and Dwimjs turns them into the maps and slices that a
// decoded action would carry.
func Dwimjs(x interface{}) interface{} {
	var src []byte
	switch vv := x.(type) {
	case string:
		src = []byte(vv)
	case []byte:
		src = vv
	case json.RawMessage:
		src = vv
	default:
		return x
	}
	var v interface{}
	if err := json.Unmarshal(src, &v); err != nil {
		panic(fmt.Sprintf("Dwimjs: %s: %q", err, src))
	}
	return v
}
