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

// Package crew hosts Reducers.
//
// A Store owns named Collections and serializes the Actions
// dispatched to them, which is the host loop that a Reducer expects.
package crew

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Comcast/resourceful/core"
)

// Store is a set of named Collections.
type Store struct {
	sync.RWMutex

	Id          string                 `json:"id"`
	Collections map[string]*Collection `json:"collections"`

	// Logger defaults to slog.Default().
	Logger *slog.Logger `json:"-"`

	// q guards queue and busy.
	q     sync.Mutex
	queue []*core.Action
	busy  bool
}

// NewStore makes an empty Store.
func NewStore(id string) *Store {
	return &Store{
		Id:          id,
		Collections: make(map[string]*Collection),
	}
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Add adds a Collection with the given Reducer and initial State.
func (s *Store) Add(name string, r *core.Reducer, initial core.State) error {
	if r == nil {
		return fmt.Errorf("collection %q: nil reducer", name)
	}
	if initial == nil {
		initial = core.State{}
	}
	s.Lock()
	defer s.Unlock()
	if _, have := s.Collections[name]; have {
		return &Exists{name}
	}
	s.Collections[name] = &Collection{
		Name:    name,
		Reducer: r,
		State:   initial,
	}
	return nil
}

// AddNamespace adds a Collection for each top-level Resource in the
// Namespace.  See core.Resource.Reducer.
func (s *Store) AddNamespace(ns core.Namespace, opts *core.ReducerOptions) error {
	for _, name := range ns.Names() {
		if err := s.Add(name, ns[name].Reducer(opts), nil); err != nil {
			return err
		}
	}
	return nil
}

// Names returns the sorted Collection names.
func (s *Store) Names() []string {
	s.RLock()
	defer s.RUnlock()
	return s.names()
}

// Dispatch gives the Action to every Collection's Reducer and returns
// the Strides that weren't ignored.
//
// Actions are reduced one at a time in the order they arrive.  An
// Action dispatched while another is being reduced (say, by a custom
// method's Callback) is queued, and the Dispatch already in progress
// reduces it before returning.  That Dispatch returns the Strides of
// the queued Actions too, and the queuing call returns nil.
//
// No lock is held while a Reducer runs, so a Callback can also Get
// or Snapshot.
func (s *Store) Dispatch(a *core.Action) []*core.Stride {
	if a == nil {
		return nil
	}
	s.q.Lock()
	if s.busy {
		s.queue = append(s.queue, a)
		s.q.Unlock()
		s.logger().Debug("queued", "type", a.Type)
		return nil
	}
	s.busy = true
	s.q.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.q.Lock()
			s.busy, s.queue = false, nil
			s.q.Unlock()
			panic(r)
		}
	}()

	var acc []*core.Stride
	for ; a != nil; a = s.next() {
		acc = append(acc, s.step(a)...)
	}
	return acc
}

// next pops the queue.  When it's empty, the Store is no longer busy.
func (s *Store) next() *core.Action {
	s.q.Lock()
	defer s.q.Unlock()
	if len(s.queue) == 0 {
		s.busy = false
		s.queue = nil
		return nil
	}
	a := s.queue[0]
	s.queue = s.queue[1:]
	return a
}

func (s *Store) step(a *core.Action) []*core.Stride {
	s.RLock()
	cs := make([]*Collection, 0, len(s.Collections))
	for _, name := range s.names() {
		cs = append(cs, s.Collections[name])
	}
	s.RUnlock()

	var acc []*core.Stride
	for _, c := range cs {
		s.RLock()
		from := c.State
		s.RUnlock()
		stride := c.Reducer.Step(from, a)
		if stride.Ignored {
			continue
		}
		s.Lock()
		c.State = stride.To
		s.Unlock()
		acc = append(acc, stride)
	}
	if len(acc) == 0 {
		s.logger().Debug("no collection", "type", a.Type)
	}
	return acc
}

func (s *Store) names() []string {
	acc := make([]string, 0, len(s.Collections))
	for name := range s.Collections {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// Dispatcher returns a core.Dispatch that dispatches to this Store.
// Each call returns the resulting Strides (nil when the Action was
// queued).
func (s *Store) Dispatcher() core.Dispatch {
	return func(a *core.Action) interface{} {
		return s.Dispatch(a)
	}
}

// Get returns a copy of the named Collection's State.
func (s *Store) Get(name string) (core.State, bool) {
	s.RLock()
	defer s.RUnlock()
	c, have := s.Collections[name]
	if !have {
		return nil, false
	}
	return c.State.Copy(), true
}

// Snapshot returns a copy of every Collection's State.
func (s *Store) Snapshot() map[string]core.State {
	s.RLock()
	acc := make(map[string]core.State, len(s.Collections))
	for name, c := range s.Collections {
		acc[name] = c.State.Copy()
	}
	s.RUnlock()
	return acc
}

// Copy gets a read lock and returns a copy of the Store.
func (s *Store) Copy() *Store {
	s.RLock()
	cs := make(map[string]*Collection, len(s.Collections))
	for name, c := range s.Collections {
		cs[name] = c.Copy()
	}
	acc := &Store{
		Id:          s.Id,
		Collections: cs,
		Logger:      s.Logger,
	}
	s.RUnlock()
	return acc
}

// Exists occurs when adding a Collection with a name that's taken.
type Exists struct {
	Name string
}

func (e *Exists) Error() string {
	return fmt.Sprintf("collection %q exists", e.Name)
}
