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

package crew

import (
	"github.com/Comcast/resourceful/core"
)

// Collection is a triple: name, core.Reducer, and core.State.
type Collection struct {
	Name    string        `json:"name,omitempty"`
	Reducer *core.Reducer `json:"-" yaml:"-"`
	State   core.State    `json:"state"`
}

// Update overlays the given collection data on the target
// Collection.
//
// The State (if any) is copied.
//
// Not thread-safe.
func (c *Collection) Update(overlay *Collection) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Reducer != nil {
		c.Reducer = overlay.Reducer
	}
	if overlay.State != nil {
		c.State = overlay.State.Copy()
	}
}

// Copy returns a new Collection with the same name, same Reducer,
// and a copy of the State.
//
// The Items themselves are shared, which is fine since a Reducer
// never modifies an Item.
func (c *Collection) Copy() *Collection {
	return &Collection{
		Name:    c.Name,
		Reducer: c.Reducer,
		State:   c.State.Copy(),
	}
}
