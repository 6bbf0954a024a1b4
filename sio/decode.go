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

package sio

import (
	"encoding/json"

	"github.com/Comcast/resourceful/core"
)

// Decode parses one JSON action descriptor.
//
// If the Validator isn't nil, the message is validated first.
func Decode(js []byte, v *Validator) (*core.Action, error) {
	if v != nil {
		if err := v.ValidateJSON(js); err != nil {
			return nil, err
		}
	}
	var a core.Action
	if err := json.Unmarshal(js, &a); err != nil {
		return nil, &BadJSON{Err: err}
	}
	if a.Type == "" {
		return nil, &BadJSON{Err: errNoType}
	}
	return &a, nil
}
