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

// Package tools renders resource trees as documentation and diagrams.
package tools

import (
	"github.com/Comcast/resourceful/core"
)

// Record states in a lifecycle diagram.
const (
	Absent          = "absent"
	Pending         = "pending"
	Synced          = "synced"
	Updating        = "updating"
	PendingDeletion = "pendingDeletion"
)

// Transition is an edge in the lifecycle of one record.
type Transition struct {
	From  string     `json:"from" yaml:"from"`
	To    string     `json:"to" yaml:"to"`
	Verb  string     `json:"verb" yaml:"verb"`
	Stage core.Stage `json:"stage" yaml:"stage"`
	Type  string     `json:"type" yaml:"type"`
}

var lifecycle = []Transition{
	{From: Absent, To: Pending, Verb: core.VerbCreate, Stage: core.Optimistic},
	{From: Pending, To: Synced, Verb: core.VerbCreate, Stage: core.Committed},
	{From: Pending, To: Absent, Verb: core.VerbCreate, Stage: core.RolledBack},
	{From: Absent, To: Synced, Verb: core.VerbRead, Stage: core.Committed},
	{From: Absent, To: Synced, Verb: core.VerbReadPagination, Stage: core.Committed},
	{From: Synced, To: Synced, Verb: core.VerbRead, Stage: core.Committed},
	{From: Synced, To: Updating, Verb: core.VerbUpdate, Stage: core.Optimistic},
	{From: Synced, To: Updating, Verb: core.VerbPatch, Stage: core.Optimistic},
	{From: Updating, To: Synced, Verb: core.VerbUpdate, Stage: core.Committed},
	{From: Updating, To: Synced, Verb: core.VerbUpdate, Stage: core.RolledBack},
	{From: Updating, To: Synced, Verb: core.VerbPatch, Stage: core.Committed},
	{From: Updating, To: Synced, Verb: core.VerbPatch, Stage: core.RolledBack},
	{From: Synced, To: PendingDeletion, Verb: core.VerbDelete, Stage: core.Optimistic},
	{From: PendingDeletion, To: Absent, Verb: core.VerbDelete, Stage: core.Committed},
	{From: PendingDeletion, To: Synced, Verb: core.VerbDelete, Stage: core.RolledBack},
}

// Lifecycle returns the transitions a record can take, with the
// action types of the given registry filled in.
//
// Custom methods never change a record, so they appear as loops on
// Synced.
func Lifecycle(types *core.ActionTypes) []Transition {
	acc := make([]Transition, 0, len(lifecycle)+len(types.Sets))
	for _, t := range lifecycle {
		set, _ := types.Get(t.Verb)
		t.Type = set.Of(t.Stage)
		acc = append(acc, t)
	}
	for _, name := range types.Names() {
		if !types.IsMethod(name) {
			continue
		}
		set, _ := types.Get(name)
		acc = append(acc, Transition{
			From:  Synced,
			To:    Synced,
			Verb:  name,
			Stage: core.Committed,
			Type:  set.Commit,
		})
	}
	return acc
}

// Endpoint describes the request behind one verb or custom method.
type Endpoint struct {
	Name   string       `json:"name" yaml:"name"`
	Types  core.TypeSet `json:"types" yaml:"types"`
	Method string       `json:"method" yaml:"method"`
	URL    string       `json:"url" yaml:"url"`
}

// Endpoints lists the Resource's requests with ":id" and ":skip"
// placeholders in the URLs.
func Endpoints(r *core.Resource) []Endpoint {
	acc := make([]Endpoint, 0, len(core.Verbs))
	add := func(name, method string, segments ...string) {
		set, _ := r.Types().Get(name)
		acc = append(acc, Endpoint{
			Name:   name,
			Types:  set,
			Method: method,
			URL:    r.URL("", segments...),
		})
	}
	add(core.VerbCreate, core.MethodPost)
	add(core.VerbRead, core.MethodGet, ":id")
	add(core.VerbReadPagination, core.MethodGet, ":id", ":skip")
	add(core.VerbUpdate, core.MethodPut, ":id")
	add(core.VerbPatch, core.MethodPatch, ":id")
	add(core.VerbDelete, core.MethodDelete, ":id")
	for _, name := range r.Methods() {
		add(name, core.MethodPost, ":id", name)
	}
	return acc
}
