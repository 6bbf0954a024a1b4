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

var (
	// TracesInitialCap is the initial capacity for Traces buffers.
	TracesInitialCap = 4
)

// Traces holds trace messages.
type Traces struct {
	Messages []interface{} `json:"messages,omitempty" yaml:",omitempty"`
}

// NewTraces creates an initialized Traces.
func NewTraces() *Traces {
	return &Traces{
		Messages: make([]interface{}, 0, TracesInitialCap),
	}
}

func (ts *Traces) Add(xs ...interface{}) {
	ts.Messages = append(ts.Messages, xs...)
}

// Stride represents one Action consumed by a Reducer.
type Stride struct {
	// From is the State before the Action.
	From State `json:"from"`

	// To is the State after the Action.  It's From itself (not a
	// copy) when nothing changed.
	To State `json:"to"`

	// Consumed is the Action.
	Consumed *Action `json:"consumed,omitempty" yaml:",omitempty"`

	// Verb and Stage say how the Action was understood.  Verb is
	// empty if the Action's type wasn't recognized.
	Verb  string `json:"verb,omitempty" yaml:",omitempty"`
	Stage Stage  `json:"stage" yaml:"stage"`

	// Unmatched reports that the Action's id matched no Item (or
	// the matched Item couldn't take the Action).
	Unmatched bool `json:"unmatched,omitempty" yaml:",omitempty"`

	// Changed reports that To isn't From.
	Changed bool `json:"changed,omitempty" yaml:",omitempty"`

	// Ignored reports that the Action wasn't for this Reducer.
	Ignored bool `json:"ignored,omitempty" yaml:",omitempty"`

	Traces *Traces `json:"traces,omitempty" yaml:",omitempty"`
}

// NewStride makes a Stride that starts (and, so far, ends) at the given
// State.
func NewStride(from State, a *Action) *Stride {
	return &Stride{
		From:     from,
		To:       from,
		Consumed: a,
		Traces:   NewTraces(),
	}
}

func (s *Stride) String() string {
	js, err := json.Marshal(s)
	if err != nil {
		return "{*}"
	}
	return string(js)
}

// Walked represents a sequence of Strides taken by Walk().
type Walked struct {
	Strides []*Stride `json:"strides" yaml:",omitempty"`
}

// From returns the State before the first Stride.
func (w *Walked) From() State {
	if 0 == len(w.Strides) {
		return nil
	}
	return w.Strides[0].From
}

// To returns the State after the last Stride.
func (w *Walked) To() State {
	if 0 == len(w.Strides) {
		return nil
	}
	return w.Strides[len(w.Strides)-1].To
}

// Unmatched returns the Actions that matched nothing.
func (w *Walked) Unmatched() []*Action {
	var acc []*Action
	for _, s := range w.Strides {
		if s.Unmatched {
			acc = append(acc, s.Consumed)
		}
	}
	return acc
}
