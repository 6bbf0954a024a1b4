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
	"encoding/json"
	"strconv"
)

// Reserved Item keys.
const (
	IdKey              = "id"
	RollbackKey        = "_rollback"
	PendingDeletionKey = "_pendingDeletion"
)

// Item is a resource record.
//
// While a mutation is in flight, an Item can carry a snapshot of its
// previous value at RollbackKey or a true PendingDeletionKey.
type Item map[string]interface{}

// Id returns the record's id.  Only string ids are ids.
func (it Item) Id() string {
	s, _ := it[IdKey].(string)
	return s
}

// Copy makes a shallow copy.
func (it Item) Copy() Item {
	acc := make(Item, len(it)+1)
	for k, v := range it {
		acc[k] = v
	}
	return acc
}

// Snapshot returns the value that a rollback would restore.
func (it Item) Snapshot() (Item, bool) {
	x, have := it[RollbackKey]
	if !have || x == nil {
		return nil, false
	}
	return AsItem(x)
}

// PendingDeletion reports whether a delete is in flight.
func (it Item) PendingDeletion() bool {
	b, _ := it[PendingDeletionKey].(bool)
	return b
}

// AsItem tries to make an Item out of the given thing.
//
// Maps are used directly.  Anything else goes through a JSON round
// trip, which needs to produce an object.
func AsItem(x interface{}) (Item, bool) {
	switch vv := x.(type) {
	case Item:
		return vv, vv != nil
	case map[string]interface{}:
		return Item(vv), vv != nil
	case nil, string, bool, float64, int, int64, json.Number, []interface{}:
		return nil, false
	}
	y, err := Canonicalize(x)
	if err != nil {
		return nil, false
	}
	m, is := y.(map[string]interface{})
	return Item(m), is
}

// State is an ordered collection of Items.
type State []Item

// AsState tries to make a State out of the given thing.
func AsState(x interface{}) (State, bool) {
	switch vv := x.(type) {
	case nil:
		return State{}, true
	case State:
		return vv, true
	case []Item:
		return State(vv), true
	case []map[string]interface{}:
		acc := make(State, len(vv))
		for i, m := range vv {
			acc[i] = Item(m)
		}
		return acc, true
	case []interface{}:
		acc := make(State, 0, len(vv))
		for _, y := range vv {
			it, is := AsItem(y)
			if !is {
				return nil, false
			}
			acc = append(acc, it)
		}
		return acc, true
	}
	y, err := Canonicalize(x)
	if err != nil {
		return nil, false
	}
	if _, is := y.([]interface{}); !is {
		return nil, false
	}
	return AsState(y)
}

// Index returns the position of the Item with the given id or -1.
func (s State) Index(id string) int {
	if id == "" {
		return -1
	}
	for i, it := range s {
		if it.Id() == id {
			return i
		}
	}
	return -1
}

// Find returns the Item with the given id (if any).
func (s State) Find(id string) Item {
	if i := s.Index(id); 0 <= i {
		return s[i]
	}
	return nil
}

// Copy copies the slice.  The Items are shared.
func (s State) Copy() State {
	if s == nil {
		return nil
	}
	acc := make(State, len(s))
	copy(acc, s)
	return acc
}

// remove returns a State without the Item at i.  The receiver isn't
// modified.
func (s State) remove(i int) State {
	acc := make(State, 0, len(s)-1)
	acc = append(acc, s[:i]...)
	return append(acc, s[i+1:]...)
}

// idString renders a server-assigned id.
func idString(x interface{}) (string, bool) {
	switch vv := x.(type) {
	case string:
		return vv, vv != ""
	case float64:
		return strconv.FormatFloat(vv, 'f', -1, 64), true
	case int:
		return strconv.Itoa(vv), true
	case int64:
		return strconv.FormatInt(vv, 10), true
	case json.Number:
		return vv.String(), true
	}
	return "", false
}
