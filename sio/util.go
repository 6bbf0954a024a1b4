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

// Package sio couples a crew.Store to streams of JSON action
// descriptors.
package sio

import (
	"encoding/json"
	"errors"
	"fmt"
)

var errNoType = errors.New("no type")

// ShortLimit is the number of bytes JShort keeps.
var ShortLimit = 70

func render(x interface{}, indent bool) string {
	if x == nil {
		return "null"
	}
	var (
		js  []byte
		err error
	)
	if indent {
		js, err = json.MarshalIndent(&x, "", "  ")
	} else {
		js, err = json.Marshal(&x)
	}
	if err != nil {
		return fmt.Sprintf("%#v", x)
	}
	return string(js)
}

// JS renders its argument as compact JSON (or with '%#v' if that
// fails).
func JS(x interface{}) string {
	return render(x, false)
}

// JSON renders its argument as indented JSON (or with '%#v' if that
// fails).
func JSON(x interface{}) string {
	return render(x, true)
}

// JShort renders its argument like JS but truncates to ShortLimit
// bytes followed by "...".
func JShort(x interface{}) string {
	js := JS(x)
	if len(js) <= ShortLimit {
		return js
	}
	return js[:ShortLimit] + "..."
}
