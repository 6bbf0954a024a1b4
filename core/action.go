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

import "encoding/json"

// HTTP methods used in Effects.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodPatch  = "PATCH"
	MethodDelete = "DELETE"
)

// MergePatchContentType is the content-type of every patch Effect.
const MergePatchContentType = "merge-patch+json"

// Callback receives the outcome of a custom resource method.
//
// On commit, err is nil and result is the commit payload.  On
// rollback, err is the rollback payload.
type Callback func(err interface{}, result interface{})

// Effect describes the request that should eventually be made.
//
// An Effect is just data.  This package never performs it.
type Effect struct {
	URL     string            `json:"url" yaml:"url"`
	Method  string            `json:"method" yaml:"method"`
	Body    interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Copy makes a shallow copy.  The Body is not copied.
func (e *Effect) Copy() *Effect {
	if e == nil {
		return nil
	}
	return &Effect{
		URL:     e.URL,
		Method:  e.Method,
		Body:    e.Body,
		Headers: copyHeaders(e.Headers),
	}
}

// Meta is an Action's metadata.
type Meta struct {
	// Id is the correlation id.  For a create, it's a temporary
	// id until the commit arrives with the real one.
	Id string `json:"id,omitempty" yaml:"id,omitempty"`

	// NestedId, if not empty, is the id of the target record in
	// a nested collection of the record given by Id.  See
	// Action.Nest.
	NestedId string `json:"nestedId,omitempty" yaml:"nestedId,omitempty"`

	// Skip is the pagination offset of a read_pagination commit.
	Skip string `json:"skipParam,omitempty" yaml:"skipParam,omitempty"`

	// Method is the name of the custom method (if any).
	Method string `json:"method,omitempty" yaml:"method,omitempty"`

	// Func is the custom method's Callback.  It does not survive
	// serialization, but Method does.
	Func Callback `json:"-" yaml:"-"`

	// Offline describes the deferred effect.  Only optimistic
	// Actions have one.
	Offline *Offline `json:"offline,omitempty" yaml:"offline,omitempty"`
}

// Copy makes a copy.  The Offline (if any) is copied, too.
func (m *Meta) Copy() *Meta {
	if m == nil {
		return nil
	}
	acc := *m
	acc.Offline = m.Offline.Copy()
	return &acc
}

// Offline holds the Effect and the two Actions (sans payload) that
// should follow.
type Offline struct {
	Effect   *Effect `json:"effect" yaml:"effect"`
	Commit   *Phase  `json:"commit" yaml:"commit"`
	Rollback *Phase  `json:"rollback" yaml:"rollback"`
}

// Copy makes a deep copy, except for the Effect's body.
func (o *Offline) Copy() *Offline {
	if o == nil {
		return nil
	}
	return &Offline{
		Effect:   o.Effect.Copy(),
		Commit:   o.Commit.Copy(),
		Rollback: o.Rollback.Copy(),
	}
}

// Phase is a commit or rollback Action waiting for its payload.
type Phase struct {
	Type string `json:"type" yaml:"type"`
	Meta *Meta  `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Copy makes a copy.
func (p *Phase) Copy() *Phase {
	if p == nil {
		return nil
	}
	return &Phase{
		Type: p.Type,
		Meta: p.Meta.Copy(),
	}
}

// Action makes the Action that this Phase describes.
func (p *Phase) Action(payload interface{}) *Action {
	if p == nil {
		return nil
	}
	meta := p.Meta.Copy()
	if meta == nil {
		meta = &Meta{}
	}
	return &Action{
		Type:    p.Type,
		Payload: payload,
		Meta:    meta,
	}
}

// Action is the descriptor that a Reducer consumes.
type Action struct {
	Type    string      `json:"type" yaml:"type"`
	Payload interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	Meta    *Meta       `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Copy makes a copy.  The Payload is not copied.
func (a *Action) Copy() *Action {
	if a == nil {
		return nil
	}
	return &Action{
		Type:    a.Type,
		Payload: a.Payload,
		Meta:    a.Meta.Copy(),
	}
}

// Id returns the correlation id (if any).
func (a *Action) Id() string {
	if a == nil || a.Meta == nil {
		return ""
	}
	return a.Meta.Id
}

// Effect returns the deferred Effect (if any).
func (a *Action) Effect() *Effect {
	if a == nil || a.Meta == nil || a.Meta.Offline == nil {
		return nil
	}
	return a.Meta.Offline.Effect
}

// Commit makes the commit Action with the given payload.
//
// Returns nil if this Action isn't optimistic.
func (a *Action) Commit(payload interface{}) *Action {
	if a == nil || a.Meta == nil || a.Meta.Offline == nil {
		return nil
	}
	return a.Meta.Offline.Commit.Action(payload)
}

// Rollback makes the rollback Action with the given payload.
//
// Returns nil if this Action isn't optimistic.
func (a *Action) Rollback(payload interface{}) *Action {
	if a == nil || a.Meta == nil || a.Meta.Offline == nil {
		return nil
	}
	return a.Meta.Offline.Rollback.Action(payload)
}

// Nest returns a copy of this Action that's addressed to a nested
// collection of the record with the given parent id.
//
// The Action's id becomes the NestedId, and the parent id becomes the
// id.  Both phases are updated, so the commit and rollback follow the
// same route.  A parent Reducer with a child Reducer will then hand
// the Action to its child.
func (a *Action) Nest(parentId string) *Action {
	acc := a.Copy()
	if acc.Meta == nil {
		acc.Meta = &Meta{}
	}
	nest := func(m *Meta) {
		if m == nil {
			return
		}
		m.NestedId, m.Id = m.Id, parentId
	}
	nest(acc.Meta)
	if o := acc.Meta.Offline; o != nil {
		if o.Commit != nil {
			nest(o.Commit.Meta)
		}
		if o.Rollback != nil {
			nest(o.Rollback.Meta)
		}
	}
	return acc
}

// unnest undoes Nest (for the Action only) for a child Reducer.
func (a *Action) unnest() *Action {
	acc := a.Copy()
	if acc.Meta != nil {
		acc.Meta.Id, acc.Meta.NestedId = acc.Meta.NestedId, ""
	}
	return acc
}

// String renders the Action as JSON.
func (a *Action) String() string {
	js, err := json.Marshal(a)
	if err != nil {
		return a.Type + "/{*}"
	}
	return string(js)
}

func copyHeaders(hs map[string]string) map[string]string {
	if hs == nil {
		return nil
	}
	acc := make(map[string]string, len(hs))
	for k, v := range hs {
		acc[k] = v
	}
	return acc
}
