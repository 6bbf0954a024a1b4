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
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Comcast/resourceful/core"
	"github.com/Comcast/resourceful/crew"
	"github.com/Comcast/resourceful/util"
	"github.com/Comcast/resourceful/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) (*crew.Store, core.Namespace) {
	ns := core.NewNamespace([]string{"users"}, &core.Options{
		BaseURL:  "http://example",
		IdSource: testutil.SeqIds("tmp_id:"),
	})
	s := crew.NewStore("test")
	s.Logger = util.Nop()
	require.NoError(t, s.AddNamespace(ns, &core.ReducerOptions{Logger: util.Nop()}))
	return s, ns
}

func lines(as ...*core.Action) string {
	acc := make([]string, 0, len(as))
	for _, a := range as {
		acc = append(acc, JS(a))
	}
	return strings.Join(acc, "\n") + "\n"
}

func TestValidator(t *testing.T) {
	v, err := DefaultValidator()
	require.NoError(t, err)

	r := core.NewResource("users", nil)
	for _, a := range []*core.Action{
		r.Create(testutil.Dwimjs(`{"name":"homer"}`), ""),
		r.Patch("1", testutil.Dwimjs(`{"a":1}`), "/p"),
		r.Read("", "", "").Commit(testutil.Dwimjs(`[{"id":"1"}]`)),
		r.ReadPagination("", "", "", "10").Commit(nil),
	} {
		js, err := json.Marshal(a)
		require.NoError(t, err)
		assert.NoError(t, v.ValidateJSON(js), string(js))
	}

	for _, js := range []string{
		`{}`,
		`{"type":""}`,
		`{"type":"X","meta":{"id":1}}`,
		`{"type":"X","meta":{"offline":{"effect":{"url":"u","method":"GET"}}}}`,
		`{"type":"X","meta":{"offline":{"effect":{"url":"u","method":"HEAD"},"commit":{"type":"c"},"rollback":{"type":"r"}}}}`,
	} {
		err := v.ValidateJSON([]byte(js))
		var invalid *Invalid
		require.ErrorAs(t, err, &invalid, js)
		assert.Contains(t, err.Error(), "invalid action", js)
	}

	var bad *BadJSON
	require.ErrorAs(t, v.ValidateJSON([]byte(`{`)), &bad)
}

func TestDecode(t *testing.T) {
	r := core.NewResource("users", nil)
	a := r.Delete("1", "")
	js, err := json.Marshal(a)
	require.NoError(t, err)

	got, err := Decode(js, nil)
	require.NoError(t, err)
	assert.Equal(t, a.Type, got.Type)
	assert.Equal(t, "1", got.Id())
	assert.Equal(t, "USERS_DELETE_commit", got.Commit(nil).Type)
	assert.Equal(t, "users/1", got.Effect().URL)

	_, err = Decode([]byte(`{"payload":1}`), nil)
	require.Error(t, err)

	v, err := NewValidator()
	require.NoError(t, err)
	_, err = Decode([]byte(`{"type":7}`), v)
	require.Error(t, err)
}

func TestReplay(t *testing.T) {
	store, ns := testStore(t)
	users := ns["users"]

	a := users.Create(testutil.Dwimjs(`{"name":"homer"}`), "")
	input := "# a comment\n\n" +
		lines(a, a.Commit("1")) +
		"not json\n" +
		lines(users.Delete("ghost", "").Commit(nil)) +
		"quit\n" +
		lines(users.Create(nil, ""))

	var out bytes.Buffer
	v, err := DefaultValidator()
	require.NoError(t, err)
	r := &Replay{
		In:           strings.NewReader(input),
		Out:          &out,
		Store:        store,
		Validator:    v,
		Tags:         true,
		PrintStrides: true,
		Logger:       util.Nop(),
	}
	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Summary{
		Lines:      6,
		Dispatched: 3,
		Bad:        1,
		Unmatched:  1,
	}, sum)

	got := out.String()
	assert.Contains(t, got, "error   line 5: ")
	assert.Contains(t, got, `"unmatched":true`)
	assert.Contains(t, got, `state   {"users":[{"id":"1","name":"homer"}]}`)
	assert.Equal(t, 1, strings.Count(got, "state"))
}

func TestReplayAuto(t *testing.T) {
	store, ns := testStore(t)
	users := ns["users"]

	var out bytes.Buffer
	r := NewReplay(store)
	r.In = strings.NewReader(lines(
		users.Create(testutil.Dwimjs(`{"id":"42","name":"homer"}`), ""),
		users.Patch("42", testutil.Dwimjs(`{"age":40}`), ""),
	))
	r.Out = &out
	r.Auto = AutoCommit
	r.WriteStatePerMsg = true
	r.Logger = util.Nop()

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Dispatched)
	assert.Zero(t, sum.Unmatched)

	users2, _ := store.Get("users")
	assert.JSONEq(t, `[{"id":"42","name":"homer","age":40}]`, JS(users2))
	assert.Equal(t, 2, strings.Count(out.String(), "\n"))

	store, ns = testStore(t)
	r = &Replay{
		In:     strings.NewReader(lines(ns["users"].Create(nil, ""))),
		Out:    &out,
		Store:  store,
		Auto:   AutoRollback,
		Logger: util.Nop(),
	}
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	users2, _ = store.Get("users")
	assert.Empty(t, users2)

	r.Auto = "sometimes"
	_, err = r.Run(context.Background())
	require.Error(t, err)
}

func TestReplayCanceled(t *testing.T) {
	store, ns := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Replay{
		In:     strings.NewReader(lines(ns["users"].Create(nil, ""))),
		Out:    &bytes.Buffer{},
		Store:  store,
		Logger: util.Nop(),
	}
	_, err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSnapshot(t *testing.T) {
	store, _ := testStore(t)

	snap, err := ReadSnapshot(strings.NewReader(`{"users":[{"id":"1"},{"id":"2"}]}`))
	require.NoError(t, err)
	require.NoError(t, Seed(store, snap))

	users, _ := store.Get("users")
	assert.Len(t, users, 2)

	var out bytes.Buffer
	require.NoError(t, WriteSnapshot(&out, store))
	assert.JSONEq(t, `{"users":[{"id":"1"},{"id":"2"}]}`, out.String())

	require.Error(t, Seed(store, map[string]core.State{"teams": nil}))

	_, err = ReadSnapshot(strings.NewReader(`{"users":3}`))
	require.Error(t, err)
	_, err = ReadSnapshot(strings.NewReader(`[`))
	require.Error(t, err)
}

func TestJShort(t *testing.T) {
	assert.Equal(t, "null", JS(nil))
	s := JShort(strings.Repeat("x", 100))
	assert.Len(t, s, 73)
	assert.Equal(t, "{\n  \"a\": 1\n}", JSON(map[string]int{"a": 1}))
}
