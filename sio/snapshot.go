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
	"fmt"
	"io"

	"github.com/Comcast/resourceful/core"
	"github.com/Comcast/resourceful/crew"
)

// ReadSnapshot reads a JSON object that maps collection names to
// arrays of records.
func ReadSnapshot(r io.Reader) (map[string]core.State, error) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, &BadJSON{Err: err}
	}
	acc := make(map[string]core.State, len(raw))
	for name, x := range raw {
		s, is := core.AsState(x)
		if !is {
			return nil, fmt.Errorf("collection %q: not an array of records", name)
		}
		acc[name] = s
	}
	return acc, nil
}

// Seed sets the States of the Store's Collections.  Every name must
// be a Collection in the Store.
func Seed(store *crew.Store, snap map[string]core.State) error {
	store.Lock()
	defer store.Unlock()
	for name, s := range snap {
		c, have := store.Collections[name]
		if !have {
			return fmt.Errorf("seed: unknown collection %q", name)
		}
		c.Update(&crew.Collection{State: s})
	}
	return nil
}

// WriteSnapshot writes the Store's States as indented JSON.
func WriteSnapshot(w io.Writer, store *crew.Store) error {
	_, err := fmt.Fprintf(w, "%s\n", JSON(store.Snapshot()))
	return err
}
