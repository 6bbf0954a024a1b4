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
	"testing"

	"github.com/Comcast/resourceful/util"
	. "github.com/Comcast/resourceful/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture builds a Resource, its Reducer, and a record of every
// rollback and unmatched Action.
type fixture struct {
	resource  *Resource
	reducer   *Reducer
	rollbacks Recorder
	unmatched Recorder
}

func newFixture(basePath string, opts *ReducerOptions) *fixture {
	f := &fixture{
		resource: NewResource(basePath, &Options{IdSource: SeqIds("tmp_id:")}),
	}
	if opts == nil {
		opts = &ReducerOptions{}
	}
	opts.Logger = util.Nop()
	opts.OnRollback = func(p interface{}) { f.rollbacks.Record(p) }
	opts.OnUnmatched = func(a *Action) { f.unmatched.Record(a.Type, a.Id()) }
	f.reducer = NewReducer(basePath, opts)
	return f
}

func state(js string) State {
	s, is := AsState(Dwimjs(js))
	if !is {
		panic(js)
	}
	return s
}

func TestReducerCreateLifecycle(t *testing.T) {
	f := newFixture("users", nil)

	a := f.resource.Create(Dwimjs(`{"name":"homer"}`), "")
	s := f.reducer.Reduce(nil, a)
	assert.JSONEq(t, `[{"id":"tmp_id:1","name":"homer"}]`, JS(s))

	s = f.reducer.Reduce(s, a.Commit("real-id"))
	assert.JSONEq(t, `[{"id":"real-id","name":"homer"}]`, JS(s))
	assert.Zero(t, f.unmatched.Count())
}

func TestReducerCreateCommitEcho(t *testing.T) {
	f := newFixture("users", nil)

	a := f.resource.Create(Dwimjs(`{"name":"homer"}`), "")
	s := f.reducer.Reduce(state(`[{"id":"0"}]`), a)
	s = f.reducer.Reduce(s, a.Commit(Dwimjs(`{"id":"42","name":"Homer","age":39}`)))
	assert.JSONEq(t, `[{"id":"0"},{"id":"42","name":"Homer","age":39}]`, JS(s))

	b := f.resource.Create(nil, "")
	s = f.reducer.Reduce(s, b)
	s = f.reducer.Reduce(s, b.Commit(float64(7)))
	assert.Equal(t, "7", s[2].Id())
}

func TestReducerCreateRollback(t *testing.T) {
	f := newFixture("users", nil)

	a := f.resource.Create(Dwimjs(`{"name":"homer"}`), "")
	s := f.reducer.Reduce(state(`[{"id":"1"}]`), a)
	require.Len(t, s, 2)

	s = f.reducer.Reduce(s, a.Rollback("boom"))
	assert.JSONEq(t, `[{"id":"1"}]`, JS(s))
	assert.Equal(t, [][]interface{}{{"boom"}}, f.rollbacks.Calls)
}

func TestReducerRead(t *testing.T) {
	f := newFixture("users", nil)
	initial := state(`[{"id":"1","name":"a"},{"id":"2","name":"b"}]`)

	// Optimistic reads are informational.
	a := f.resource.Read("", "", "")
	stride := f.reducer.Step(initial, a)
	assert.False(t, stride.Changed)
	assert.Equal(t, initial, stride.To)

	// Without an id, the payload is the whole collection.
	s := f.reducer.Reduce(initial, a.Commit(Dwimjs(`[{"id":"3"},{"id":"1","name":"z"}]`)))
	assert.JSONEq(t, `[{"id":"3"},{"id":"1","name":"z"}]`, JS(s))

	// A new id is appended.
	s = f.reducer.Reduce(initial, f.resource.Read("9", "", "").Commit(Dwimjs(`{"name":"c"}`)))
	assert.JSONEq(t, `[{"id":"1","name":"a"},{"id":"2","name":"b"},{"id":"9","name":"c"}]`, JS(s))

	// An existing id is replaced.
	s = f.reducer.Reduce(initial, f.resource.Read("2", "", "").Commit(Dwimjs(`{"id":"2","name":"B"}`)))
	assert.JSONEq(t, `[{"id":"1","name":"a"},{"id":"2","name":"B"}]`, JS(s))

	// ownId addresses the local record.
	s = f.reducer.Reduce(initial, f.resource.Read("remote", "1", "").Commit(Dwimjs(`{"id":"remote","name":"r"}`)))
	assert.JSONEq(t, `[{"id":"1","name":"r"},{"id":"2","name":"b"}]`, JS(s))

	// A null collection isn't an empty one.
	stride = f.reducer.Step(initial, a.Commit(nil))
	assert.False(t, stride.Changed)
	assert.Equal(t, initial, stride.To)
	assert.Equal(t, 1, f.unmatched.Count())

	// Rollbacks just report.
	stride = f.reducer.Step(initial, a.Rollback("offline"))
	assert.False(t, stride.Changed)
	assert.Equal(t, 1, f.rollbacks.Count())

	assert.JSONEq(t, `[{"id":"1","name":"a"},{"id":"2","name":"b"}]`, JS(initial))
}

func TestReducerReadPagination(t *testing.T) {
	f := newFixture("users", nil)
	initial := state(`[{"id":"old"}]`)

	first := f.resource.ReadPagination("", "", "", "0")
	s := f.reducer.Reduce(initial, first)
	assert.Equal(t, initial, s)

	s = f.reducer.Reduce(s, first.Commit(Dwimjs(`[{"id":"1"},{"id":"2"}]`)))
	assert.JSONEq(t, `[{"id":"1"},{"id":"2"}]`, JS(s))

	next := f.resource.ReadPagination("", "", "", "2")
	s = f.reducer.Reduce(s, next.Commit(Dwimjs(`[{"id":"2","x":true},{"id":"3"}]`)))
	assert.JSONEq(t, `[{"id":"1"},{"id":"2","x":true},{"id":"3"}]`, JS(s))

	s = f.reducer.Reduce(s, next.Rollback("nope"))
	assert.Len(t, s, 3)
	assert.Equal(t, 1, f.rollbacks.Count())

	s = f.reducer.Reduce(s, first.Commit(nil))
	assert.Len(t, s, 3)
	assert.Equal(t, 1, f.unmatched.Count())
}

func TestReducerReadPaginationNumericIds(t *testing.T) {
	f := newFixture("users", nil)
	first := f.resource.ReadPagination("", "", "", "0")
	next := f.resource.ReadPagination("", "", "", "2")

	s := f.reducer.Reduce(nil, first.Commit(Dwimjs(`[{"id":1},{"id":2}]`)))
	s = f.reducer.Reduce(s, next.Commit(Dwimjs(`[{"id":2,"x":true},{"id":3}]`)))
	s = f.reducer.Reduce(s, next.Commit(Dwimjs(`[{"id":2,"x":true},{"id":3}]`)))
	assert.JSONEq(t, `[{"id":1},{"id":2,"x":true},{"id":3}]`, JS(s))

	// Items without ids can't be matched, so they're appended.
	s = f.reducer.Reduce(s, next.Commit(Dwimjs(`[{"name":"anon"}]`)))
	s = f.reducer.Reduce(s, next.Commit(Dwimjs(`[{"name":"anon"}]`)))
	assert.Len(t, s, 5)
}

func TestReducerUpdateRollback(t *testing.T) {
	f := newFixture("users", nil)
	initial := state(`[{"id":"1","name":"homer","age":39},{"id":"2"}]`)

	a := f.resource.Update("1", Dwimjs(`{"name":"marge"}`), "", "")
	s := f.reducer.Reduce(initial, a)
	assert.JSONEq(t, `[
	  {"id":"1","name":"marge","_rollback":{"id":"1","name":"homer","age":39}},
	  {"id":"2"}
	]`, JS(s))

	s = f.reducer.Reduce(s, a.Rollback(Dwimjs(`{"status":500}`)))
	assert.Equal(t, initial, s)
	assert.Equal(t, [][]interface{}{{map[string]interface{}{"status": float64(500)}}}, f.rollbacks.Calls)

	// The given State was never modified.
	assert.JSONEq(t, `[{"id":"1","name":"homer","age":39},{"id":"2"}]`, JS(initial))
}

func TestReducerUpdateCommit(t *testing.T) {
	f := newFixture("users", nil)

	a := f.resource.Update("1", Dwimjs(`{"id":"1","name":"marge"}`), "", "")
	s := f.reducer.Reduce(state(`[{"id":"1","name":"homer"}]`), a)
	s = f.reducer.Reduce(s, a.Commit(nil))
	assert.JSONEq(t, `[{"id":"1","name":"marge"}]`, JS(s))
	assert.Zero(t, f.rollbacks.Count())
}

func TestReducerPatch(t *testing.T) {
	f := newFixture("users", nil)
	initial := state(`[{"id":"1","name":"homer","age":39}]`)

	a := f.resource.Patch("1", Dwimjs(`{"age":40}`), "")
	s := f.reducer.Reduce(initial, a)
	assert.JSONEq(t, `[{"id":"1","name":"homer","age":40,"_rollback":{"id":"1","name":"homer","age":39}}]`, JS(s))

	committed := f.reducer.Reduce(s, a.Commit(nil))
	assert.JSONEq(t, `[{"id":"1","name":"homer","age":40}]`, JS(committed))

	rolledBack := f.reducer.Reduce(s, a.Rollback("conflict"))
	assert.JSONEq(t, `[{"id":"1","name":"homer","age":39}]`, JS(rolledBack))
}

func TestReducerDeleteLifecycle(t *testing.T) {
	f := newFixture("users", nil)
	initial := state(`[{"id":"1","name":"homer"},{"id":"2"}]`)

	a := f.resource.Delete("1", "")
	s := f.reducer.Reduce(initial, a)
	assert.JSONEq(t, `[{"id":"1","name":"homer","_pendingDeletion":true},{"id":"2"}]`, JS(s))
	assert.True(t, s[0].PendingDeletion())

	committed := f.reducer.Reduce(s, a.Commit(nil))
	assert.JSONEq(t, `[{"id":"2"}]`, JS(committed))

	rolledBack := f.reducer.Reduce(s, a.Rollback("gone"))
	assert.JSONEq(t, `[{"id":"1","name":"homer"},{"id":"2"}]`, JS(rolledBack))
	assert.False(t, rolledBack[0].PendingDeletion())
	assert.Equal(t, 1, f.rollbacks.Count())
}

func TestReducerUnmatched(t *testing.T) {
	f := newFixture("users", nil)
	initial := state(`[{"id":"1"}]`)

	for _, a := range []*Action{
		f.resource.Create(nil, "").Commit("x"),
		f.resource.Update("2", Dwimjs(`{}`), "", ""),
		f.resource.Patch("2", Dwimjs(`{}`), "").Commit(nil),
		f.resource.Delete("2", "").Rollback(nil),
		// No snapshot to restore.
		f.resource.Update("1", Dwimjs(`{}`), "", "").Rollback(nil),
	} {
		stride := f.reducer.Step(initial, a)
		assert.True(t, stride.Unmatched, a.Type)
		assert.False(t, stride.Changed, a.Type)
		assert.Equal(t, initial, stride.To, a.Type)
	}
	assert.Equal(t, 5, f.unmatched.Count())
	assert.Equal(t, []interface{}{"USERS_UPDATE", "2"}, f.unmatched.Calls[1])
}

func TestReducerIgnored(t *testing.T) {
	f := newFixture("users", nil)
	initial := state(`[{"id":"1"}]`)

	other := NewResource("teams", nil).Delete("1", "")
	stride := f.reducer.Step(initial, other)
	assert.True(t, stride.Ignored)
	assert.Equal(t, initial, stride.To)

	// Owned but unknown, and there's no child Reducer.
	stride = f.reducer.Step(initial, &Action{Type: "USERS_PROJECTS_DELETE", Meta: &Meta{Id: "1"}})
	assert.True(t, stride.Ignored)
	assert.False(t, stride.Unmatched)

	stride = f.reducer.Step(initial, nil)
	assert.True(t, stride.Ignored)
	assert.Zero(t, f.unmatched.Count())
}

func TestReducerCustomMethod(t *testing.T) {
	var calls Recorder
	r := NewResource("users", &Options{
		Methods: map[string]Callback{
			"invite": func(err, result interface{}) { calls.Record(err, result) },
		},
	})
	f := newFixture("users", nil)
	initial := state(`[{"id":"1"}]`)

	a, err := r.Call("invite", "1", Dwimjs(`{"email":"h@example.com"}`))
	require.NoError(t, err)

	stride := f.reducer.Step(initial, a)
	assert.False(t, stride.Changed)
	assert.Equal(t, "invite", stride.Verb)
	assert.Zero(t, calls.Count())

	stride = f.reducer.Step(initial, a.Commit("sent"))
	assert.False(t, stride.Changed)
	assert.Equal(t, Committed, stride.Stage)

	stride = f.reducer.Step(initial, a.Rollback("bounced"))
	assert.False(t, stride.Changed)

	assert.Equal(t, [][]interface{}{{nil, "sent"}, {"bounced", nil}}, calls.Calls)
	assert.Equal(t, initial, stride.To)
}

func TestReducerCustomMethodByName(t *testing.T) {
	var calls Recorder
	f := newFixture("users", &ReducerOptions{
		Methods: map[string]Callback{
			"invite": func(err, result interface{}) { calls.Record(err, result) },
		},
	})
	r := NewResource("users", &Options{
		Methods: map[string]Callback{
			"invite": func(interface{}, interface{}) {},
		},
	})
	a, err := r.Call("invite", "1", nil)
	require.NoError(t, err)

	// The Callback doesn't survive the wire.
	js, err := json.Marshal(a.Commit("sent"))
	require.NoError(t, err)
	var c Action
	require.NoError(t, json.Unmarshal(js, &c))
	require.Nil(t, c.Meta.Func)

	f.reducer.Reduce(nil, &c)
	assert.Equal(t, [][]interface{}{{nil, "sent"}}, calls.Calls)

	// Unknown methods are unmatched.
	stride := f.reducer.Step(nil, &Action{Type: "USERS#nope_commit", Meta: &Meta{Id: "1"}})
	assert.True(t, stride.Unmatched)
	assert.Equal(t, 1, f.unmatched.Count())
}

func TestReducerChild(t *testing.T) {
	projects := NewResource("users/projects", &Options{IdSource: SeqIds("p")})
	f := newFixture("users", &ReducerOptions{
		ChildReducer: NewReducer("users/projects", &ReducerOptions{Logger: util.Nop()}),
	})
	initial := state(`[{"id":"u1"},{"id":"u2","children":[{"id":"x"}]}]`)

	a := projects.Create(Dwimjs(`{"name":"garden"}`), "").Nest("u1")
	s := f.reducer.Reduce(initial, a)
	assert.JSONEq(t, `[{"id":"u1","children":[{"id":"p1","name":"garden"}]},{"id":"u2","children":[{"id":"x"}]}]`, JS(s))

	stride := f.reducer.Step(s, a.Commit("p-real"))
	assert.True(t, stride.Changed)
	assert.Equal(t, VerbCreate, stride.Verb)
	assert.Equal(t, Committed, stride.Stage)
	assert.JSONEq(t, `[{"id":"u1","children":[{"id":"p-real","name":"garden"}]},{"id":"u2","children":[{"id":"x"}]}]`, JS(stride.To))

	d := projects.Delete("x", "").Nest("u2")
	s = f.reducer.Reduce(stride.To, d)
	s = f.reducer.Reduce(s, d.Commit(nil))
	assert.JSONEq(t, `[{"id":"u1","children":[{"id":"p-real","name":"garden"}]},{"id":"u2","children":[]}]`, JS(s))

	// No parent record.
	stride = f.reducer.Step(initial, projects.Delete("x", "").Nest("u3"))
	assert.True(t, stride.Unmatched)
	assert.Equal(t, initial, stride.To)
	assert.Equal(t, 1, f.unmatched.Count())
}

func TestReducerChildField(t *testing.T) {
	projects := NewResource("users/projects", &Options{IdSource: SeqIds("p")})
	r := NewReducer("users", &ReducerOptions{
		ChildReducer: NewReducer("users/projects", &ReducerOptions{Logger: util.Nop()}),
		ChildField:   "projects",
		Logger:       util.Nop(),
	})
	s := r.Reduce(state(`[{"id":"u1"}]`), projects.Create(nil, "").Nest("u1"))
	assert.JSONEq(t, `[{"id":"u1","projects":[{"id":"p1"}]}]`, JS(s))
}

func TestReducerWalk(t *testing.T) {
	f := newFixture("users", nil)
	a := f.resource.Create(Dwimjs(`{"name":"homer"}`), "")
	u := f.resource.Patch("real", Dwimjs(`{"age":40}`), "")

	w := f.reducer.Walk(nil, []*Action{
		a,
		a.Commit("real"),
		u,
		u.Commit(nil),
		f.resource.Delete("ghost", "").Commit(nil),
	})
	require.Len(t, w.Strides, 5)
	assert.Empty(t, w.From())
	assert.JSONEq(t, `[{"id":"real","name":"homer","age":40}]`, JS(w.To()))
	require.Len(t, w.Unmatched(), 1)
	assert.Equal(t, "USERS_DELETE_commit", w.Unmatched()[0].Type)
	assert.NotEmpty(t, w.Strides[0].String())

	empty := f.reducer.Walk(nil, nil)
	assert.Nil(t, empty.To())
}

func TestReducerDefaults(t *testing.T) {
	r := NewReducer("users/", nil)
	assert.Equal(t, "users", r.BasePath)
	assert.Equal(t, "USERS", r.Types().Base)

	// The default callbacks only log.
	a := NewResource("users", nil).Update("1", Dwimjs(`{}`), "", "")
	s := r.Reduce(nil, a.Rollback("boom"))
	assert.Empty(t, s)
}

func TestResourceReducer(t *testing.T) {
	var calls Recorder
	ns := NewTree(&Options{
		IdSource: SeqIds("t"),
		Resources: map[string]*Options{
			"users": {
				Methods: map[string]Callback{
					"invite": func(err, result interface{}) { calls.Record(err, result) },
				},
				Resources: map[string]*Options{
					"projects": {},
				},
			},
		},
	})
	users, projects := ns.Find("users"), ns.Find("users/projects")
	r := users.Reducer(&ReducerOptions{Logger: util.Nop()})

	s := r.Reduce(state(`[{"id":"u1"}]`), projects.Create(nil, "").Nest("u1"))
	assert.JSONEq(t, `[{"id":"u1","projects":[{"id":"t1"}]}]`, JS(s))

	a, err := users.Call("invite", "u1", nil)
	require.NoError(t, err)
	c := a.Commit("ok")
	c.Meta.Func = nil
	r.Reduce(s, c)
	assert.Equal(t, 1, calls.Count())
}
