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
	"log/slog"
	"reflect"
)

// DefaultChildField is the Item key that holds a nested collection.
var DefaultChildField = "children"

// ReducerOptions configures a Reducer.
type ReducerOptions struct {
	// ChildReducer, if not nil, gets Actions whose types this
	// Reducer doesn't recognize.  See Action.Nest.
	ChildReducer *Reducer

	// ChildField is the Item key of the nested collection that
	// ChildReducer reduces.  Defaults to DefaultChildField.
	ChildField string

	// OnRollback is called with the payload of every rollback.
	// The default logs the payload as an error.
	OnRollback func(payload interface{})

	// OnUnmatched is called with every Action whose id matched no
	// Item.  The default logs at debug level.
	OnUnmatched func(a *Action)

	// Methods resolves custom methods by name when an Action's
	// Meta has no Func (say, after a JSON round trip).
	Methods map[string]Callback

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Reducer applies Actions for one resource to a State.
//
// A Reducer is a pure function of (State, Action) apart from the
// callbacks it invokes.  It never modifies a given State or any of
// its Items.
type Reducer struct {
	BasePath string

	types      *ActionTypes
	child      *Reducer
	childField string
	onRollback func(interface{})
	onUnmatch  func(*Action)
	methods    map[string]Callback
	logger     *slog.Logger
}

// NewReducer makes a Reducer for the given base path.
func NewReducer(basePath string, opts *ReducerOptions) *Reducer {
	if opts == nil {
		opts = &ReducerOptions{}
	}
	r := &Reducer{
		BasePath:   trimTrailing(basePath),
		types:      Types(basePath),
		child:      opts.ChildReducer,
		childField: opts.ChildField,
		onRollback: opts.OnRollback,
		onUnmatch:  opts.OnUnmatched,
		methods:    opts.Methods,
		logger:     opts.Logger,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.childField == "" {
		r.childField = DefaultChildField
	}
	if r.onRollback == nil {
		r.onRollback = func(payload interface{}) {
			r.logger.Error("rollback", "basePath", r.BasePath, "payload", payload)
		}
	}
	if r.onUnmatch == nil {
		r.onUnmatch = func(a *Action) {
			r.logger.Debug("unmatched", "type", a.Type, "id", a.Id())
		}
	}
	return r
}

// Types returns the ActionTypes this Reducer recognizes.
func (r *Reducer) Types() *ActionTypes {
	return r.types
}

// Reduce returns the State that results from applying the Action.
func (r *Reducer) Reduce(state State, a *Action) State {
	return r.Step(state, a).To
}

// Walk applies the Actions in order.
func (r *Reducer) Walk(state State, as []*Action) *Walked {
	w := &Walked{
		Strides: make([]*Stride, 0, len(as)),
	}
	for _, a := range as {
		s := r.Step(state, a)
		w.Strides = append(w.Strides, s)
		state = s.To
	}
	return w
}

// Step applies the Action and reports what happened.
func (r *Reducer) Step(state State, a *Action) *Stride {
	if state == nil {
		state = State{}
	}
	s := NewStride(state, a)

	if a == nil || !r.types.Owns(a.Type) {
		s.Ignored = true
		return s
	}

	verb, stage, known := r.types.Lookup(a.Type)
	s.Verb, s.Stage = verb, stage

	meta := a.Meta
	if meta == nil {
		meta = &Meta{}
	}

	if !known {
		r.delegate(s, meta.Id)
		return s
	}

	// Custom methods never touch the collection.
	if !isVerb(verb) || meta.Func != nil {
		f := meta.Func
		if f == nil {
			f = r.methods[or(meta.Method, verb)]
		}
		s.Traces.Add(map[string]interface{}{
			"method": verb,
			"stage":  stage.String(),
		})
		switch {
		case stage == Optimistic:
		case f == nil:
			r.unmatched(s)
		case stage == Committed:
			f(nil, a.Payload)
		case stage == RolledBack:
			f(a.Payload, nil)
		}
		return s
	}

	var (
		id    = meta.Id
		index = state.Index(id)
		item  Item
	)
	if 0 <= index {
		item = state[index]
	}

	s.Traces.Add(map[string]interface{}{
		"type":  a.Type,
		"id":    id,
		"index": index,
	})

	switch verb {
	case VerbCreate:
		r.create(s, stage, index, item)
	case VerbRead:
		r.read(s, stage, index, item)
	case VerbReadPagination:
		r.readPagination(s, stage, meta.Skip)
	case VerbUpdate, VerbPatch:
		r.update(s, stage, index, item)
	case VerbDelete:
		r.delete(s, stage, index, item)
	}

	return s
}

func isVerb(name string) bool {
	for _, verb := range Verbs {
		if name == verb {
			return true
		}
	}
	return false
}

func (r *Reducer) unmatched(s *Stride) {
	s.Unmatched = true
	s.Traces.Add(map[string]interface{}{
		"unmatched": s.Consumed.Id(),
	})
	r.onUnmatch(s.Consumed)
}

// replace sets To to a copy of From with the Item at i replaced.
func (s *Stride) replace(i int, it Item) {
	acc := s.From.Copy()
	acc[i] = it
	s.To = acc
	s.Changed = true
}

func (s *Stride) remove(i int) {
	s.To = s.From.remove(i)
	s.Changed = true
}

func (s *Stride) append(it Item) {
	acc := make(State, 0, len(s.From)+1)
	acc = append(acc, s.From...)
	s.To = append(acc, it)
	s.Changed = true
}

func (s *Stride) reset(state State) {
	s.To = state
	s.Changed = true
}

func (r *Reducer) create(s *Stride, stage Stage, index int, item Item) {
	a := s.Consumed
	switch stage {
	case Optimistic:
		p, is := AsItem(a.Payload)
		if !is {
			p = Item{}
		}
		p = p.Copy()
		if id := a.Id(); id != "" {
			p[IdKey] = id
		}
		s.append(p)

	case Committed:
		if item == nil {
			r.unmatched(s)
			return
		}
		it := item.Copy()
		if id, is := idString(a.Payload); is {
			it[IdKey] = id
		} else if echo, is := AsItem(a.Payload); is {
			for k, v := range echo {
				it[k] = v
			}
			if id, is := idString(echo[IdKey]); is {
				it[IdKey] = id
			}
		}
		s.replace(index, it)

	case RolledBack:
		r.onRollback(a.Payload)
		if item == nil {
			r.unmatched(s)
			return
		}
		s.remove(index)
	}
}

func (r *Reducer) read(s *Stride, stage Stage, index int, item Item) {
	a := s.Consumed
	switch stage {
	case Optimistic:
		r.logger.Info(a.Type, "id", a.Id())

	case Committed:
		id := a.Id()
		if id == "" {
			state, is := AsState(a.Payload)
			if !is || a.Payload == nil {
				r.unmatched(s)
				return
			}
			s.reset(state.Copy())
			return
		}
		p, is := AsItem(a.Payload)
		if !is {
			r.unmatched(s)
			return
		}
		p = p.Copy()
		p[IdKey] = id
		if item == nil {
			s.append(p)
		} else {
			s.replace(index, p)
		}

	case RolledBack:
		r.onRollback(a.Payload)
	}
}

// readPagination replaces the collection with the first page and
// merges later pages into it.
func (r *Reducer) readPagination(s *Stride, stage Stage, skip string) {
	a := s.Consumed
	switch stage {
	case Optimistic:
		r.logger.Info(a.Type, "id", a.Id())

	case Committed:
		page, is := AsState(a.Payload)
		if !is || a.Payload == nil {
			r.unmatched(s)
			return
		}
		if skip == "" || skip == "0" {
			s.reset(page.Copy())
			return
		}
		acc := s.From.Copy()
		for _, it := range page {
			if i := pageIndex(acc, it); 0 <= i {
				acc[i] = it
			} else {
				acc = append(acc, it)
			}
		}
		s.reset(acc)

	case RolledBack:
		r.onRollback(a.Payload)
	}
}

// pageIndex finds the Item in acc with the same id value as it.  Ids
// need not be strings, since a page comes straight from the server.
// An Item without an id never matches.
func pageIndex(acc State, it Item) int {
	id := it[IdKey]
	if id == nil {
		return -1
	}
	for i, x := range acc {
		if reflect.DeepEqual(x[IdKey], id) {
			return i
		}
	}
	return -1
}

func (r *Reducer) update(s *Stride, stage Stage, index int, item Item) {
	a := s.Consumed
	if stage == RolledBack {
		r.onRollback(a.Payload)
	}
	if item == nil {
		r.unmatched(s)
		return
	}

	switch stage {
	case Optimistic:
		p, is := AsItem(a.Payload)
		if !is {
			r.unmatched(s)
			return
		}
		var it Item
		if s.Verb == VerbPatch {
			it = item.Copy()
			for k, v := range p {
				it[k] = v
			}
		} else {
			it = p.Copy()
			if _, have := it[IdKey]; !have {
				it[IdKey] = item[IdKey]
			}
		}
		it[RollbackKey] = item
		s.replace(index, it)

	case Committed:
		it := item.Copy()
		delete(it, RollbackKey)
		s.replace(index, it)

	case RolledBack:
		previous, have := item.Snapshot()
		if !have {
			r.unmatched(s)
			return
		}
		s.replace(index, previous.Copy())
	}
}

func (r *Reducer) delete(s *Stride, stage Stage, index int, item Item) {
	a := s.Consumed
	if stage == RolledBack {
		r.onRollback(a.Payload)
	}
	if item == nil {
		r.unmatched(s)
		return
	}

	switch stage {
	case Optimistic:
		it := item.Copy()
		it[PendingDeletionKey] = true
		s.replace(index, it)

	case Committed:
		s.remove(index)

	case RolledBack:
		it := item.Copy()
		delete(it, PendingDeletionKey)
		s.replace(index, it)
	}
}

// delegate hands the Action to the child Reducer, which reduces the
// nested collection of the Item with the given id.
func (r *Reducer) delegate(s *Stride, id string) {
	if r.child == nil {
		s.Ignored = true
		return
	}

	index := s.From.Index(id)
	s.Traces.Add(map[string]interface{}{
		"child": r.child.BasePath,
		"id":    id,
		"index": index,
	})
	if index < 0 {
		r.unmatched(s)
		return
	}
	item := s.From[index]

	nested, is := AsState(item[r.childField])
	if !is {
		nested = State{}
	}

	child := r.child.Step(nested, s.Consumed.unnest())
	s.Verb, s.Stage = child.Verb, child.Stage
	s.Traces.Add(child.Traces.Messages...)

	if child.Ignored {
		s.Ignored = true
	}
	if child.Unmatched {
		s.Unmatched = true
	}
	if !child.Changed {
		return
	}

	it := item.Copy()
	it[r.childField] = child.To
	s.replace(index, it)
}
