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
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Comcast/resourceful/core"
	"github.com/Comcast/resourceful/util"
	. "github.com/Comcast/resourceful/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*Store, core.Namespace) {
	ns := testTree()
	s := NewStore("test")
	s.Logger = util.Nop()
	require.NoError(t, s.AddNamespace(ns, &core.ReducerOptions{Logger: util.Nop()}))
	return s, ns
}

func testTree() core.Namespace {
	return core.NewNamespace([]string{"teams", "users"}, &core.Options{
		IdSource: SeqIds("tmp_id:"),
	})
}

func TestStoreDispatch(t *testing.T) {
	s, ns := newStore(t)
	assert.Equal(t, []string{"teams", "users"}, s.Names())

	a := ns["users"].Create(Dwimjs(`{"name":"homer"}`), "")
	strides := s.Dispatch(a)
	require.Len(t, strides, 1)
	assert.True(t, strides[0].Changed)

	users, have := s.Get("users")
	require.True(t, have)
	assert.JSONEq(t, `[{"id":"tmp_id:1","name":"homer"}]`, JS(users))

	teams, _ := s.Get("teams")
	assert.Empty(t, teams)

	s.Dispatch(a.Commit("1"))
	users, _ = s.Get("users")
	assert.Equal(t, "1", users[0].Id())

	assert.Empty(t, s.Dispatch(&core.Action{Type: "NOPE"}))
	assert.Nil(t, s.Dispatch(nil))

	_, have = s.Get("nope")
	assert.False(t, have)
}

func TestStoreDispatcher(t *testing.T) {
	s := NewStore("test")
	s.Logger = util.Nop()
	users := core.NewResource("users", &core.Options{
		IdSource: SeqIds("u"),
		Dispatch: s.Dispatcher(),
	})
	require.NoError(t, s.Add("users", core.NewReducer("users", &core.ReducerOptions{Logger: util.Nop()}), nil))

	x := users.Dispatcher().Create(Dwimjs(`{}`), "")
	strides, is := x.([]*core.Stride)
	require.True(t, is)
	require.Len(t, strides, 1)

	snap := s.Snapshot()
	assert.JSONEq(t, `{"users":[{"id":"u1"}]}`, JS(snap))
}

func TestStoreAdd(t *testing.T) {
	s, _ := newStore(t)
	err := s.Add("users", core.NewReducer("users", nil), nil)
	var exists *Exists
	require.ErrorAs(t, err, &exists)
	assert.Equal(t, "users", exists.Name)

	require.Error(t, s.Add("x", nil, nil))
}

func TestStoreCopy(t *testing.T) {
	s, ns := newStore(t)
	s.Dispatch(ns["users"].Create(nil, ""))

	c := s.Copy()
	s.Dispatch(ns["users"].Create(nil, ""))

	assert.Len(t, c.Collections["users"].State, 1)
	assert.Len(t, s.Collections["users"].State, 2)

	js, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
	  "id": "test",
	  "collections": {
	    "teams": {"name": "teams", "state": []},
	    "users": {"name": "users", "state": [{"id": "tmp_id:1"}]}
	  }
	}`, string(js))
}

func TestStoreConcurrentDispatch(t *testing.T) {
	s, ns := newStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(ns["users"].Create(nil, ""))
		}()
	}
	wg.Wait()
	users, _ := s.Get("users")
	assert.Len(t, users, 50)
}

func TestStoreDispatchFromCallback(t *testing.T) {
	s := NewStore("test")
	s.Logger = util.Nop()

	var (
		users  *core.Resource
		inner  []*core.Stride
		during core.State
	)
	users = core.NewResource("users", &core.Options{
		IdSource: SeqIds("u"),
		Methods: map[string]core.Callback{
			"refresh": func(err, result interface{}) {
				inner = s.Dispatch(users.Create(Dwimjs(`{"name":"bart"}`), ""))
				during, _ = s.Get("users")
			},
		},
	})
	require.NoError(t, s.Add("users", users.Reducer(&core.ReducerOptions{Logger: util.Nop()}), nil))

	call, err := users.Call("refresh", "42", nil)
	require.NoError(t, err)

	done := make(chan []*core.Stride)
	go func() {
		done <- s.Dispatch(call.Commit("ok"))
	}()

	var strides []*core.Stride
	select {
	case strides = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch from a Callback blocked")
	}

	assert.Nil(t, inner)
	assert.Empty(t, during)
	require.Len(t, strides, 2)
	assert.Equal(t, "refresh", strides[0].Verb)
	assert.Equal(t, core.VerbCreate, strides[1].Verb)

	got, _ := s.Get("users")
	assert.JSONEq(t, `[{"id":"u1","name":"bart"}]`, JS(got))

	// The queue is drained, so the next Dispatch runs directly.
	require.Len(t, s.Dispatch(users.Delete("u1", "")), 1)
}

func TestCollectionUpdate(t *testing.T) {
	c := &Collection{Name: "a"}
	st := core.State{core.Item{"id": "1"}}
	c.Update(&Collection{Name: "b", State: st})
	assert.Equal(t, "b", c.Name)
	assert.Equal(t, st, c.State)
	st[0] = core.Item{"id": "2"}
	assert.Equal(t, "1", c.State[0].Id())
}
