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
	"sort"
	"strings"
)

// The standard verbs.
const (
	VerbCreate         = "create"
	VerbRead           = "read"
	VerbReadPagination = "read_pagination"
	VerbUpdate         = "update"
	VerbPatch          = "patch"
	VerbDelete         = "delete"
)

// Verbs lists the standard verbs in their canonical order.
var Verbs = []string{
	VerbCreate,
	VerbRead,
	VerbReadPagination,
	VerbUpdate,
	VerbPatch,
	VerbDelete,
}

const (
	// CommitSuffix is appended to an action type to get the
	// type of its commit.
	CommitSuffix = "_commit"

	// RollbackSuffix is appended to an action type to get the
	// type of its rollback.
	RollbackSuffix = "_rollback"

	// MethodSeparator separates a base type from the name of a
	// custom method.
	MethodSeparator = "#"
)

// Stage is one of the three phases of an Action's life.
type Stage int

const (
	Optimistic Stage = iota // Applied before the effect is known.
	Committed               // The effect succeeded.
	RolledBack              // The effect failed.
)

func (s Stage) String() string {
	switch s {
	case Optimistic:
		return "optimistic"
	case Committed:
		return "commit"
	case RolledBack:
		return "rollback"
	default:
		return "unknown"
	}
}

// MarshalText renders the Stage by name.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a Stage name.
func (s *Stage) UnmarshalText(bs []byte) error {
	switch string(bs) {
	case "optimistic":
		*s = Optimistic
	case "commit":
		*s = Committed
	case "rollback":
		*s = RolledBack
	default:
		return &BadOption{"stage", string(bs)}
	}
	return nil
}

// TypeSet is the triple of action types for a verb.
type TypeSet struct {
	Type     string `json:"type" yaml:"type"`
	Commit   string `json:"commit" yaml:"commit"`
	Rollback string `json:"rollback" yaml:"rollback"`
}

// NewTypeSet derives the commit and rollback types from the given
// (optimistic) type.
func NewTypeSet(typ string) TypeSet {
	return TypeSet{
		Type:     typ,
		Commit:   typ + CommitSuffix,
		Rollback: typ + RollbackSuffix,
	}
}

// Of returns the type for the given stage.
func (ts TypeSet) Of(s Stage) string {
	switch s {
	case Committed:
		return ts.Commit
	case RolledBack:
		return ts.Rollback
	default:
		return ts.Type
	}
}

// BaseType formats a base path as the prefix of all of its action
// types.
//
// "users/projects/" becomes "USERS_PROJECTS". Only the path
// separator is rewritten, so "user-data" and "user_data" stay apart.
// Paths that differ only in letter case, or in "_" versus "/", share
// a base type.
func BaseType(basePath string) string {
	basePath = strings.Trim(basePath, "/")
	return strings.ToUpper(strings.ReplaceAll(basePath, "/", "_"))
}

// ActionTypes is the registry of action types for one resource.
type ActionTypes struct {
	// Base is the prefix shared by all of these types.
	Base string `json:"base" yaml:"base"`

	// Sets maps a verb (or custom method name) to its types.
	Sets map[string]TypeSet `json:"types" yaml:"types"`

	// methods is the set of custom method names.
	methods map[string]bool

	// index maps each type back to its verb and stage.
	index map[string]typeRef
}

type typeRef struct {
	verb  string
	stage Stage
}

// Types builds the ActionTypes for the given base path and custom
// method names.
func Types(basePath string, methods ...string) *ActionTypes {
	base := BaseType(basePath)
	ts := &ActionTypes{
		Base:    base,
		Sets:    make(map[string]TypeSet, len(Verbs)+len(methods)),
		methods: make(map[string]bool, len(methods)),
		index:   make(map[string]typeRef, 3*(len(Verbs)+len(methods))),
	}
	for _, verb := range Verbs {
		ts.add(verb, NewTypeSet(base+"_"+strings.ToUpper(verb)))
	}
	for _, name := range methods {
		ts.methods[name] = true
		ts.add(name, NewTypeSet(base+MethodSeparator+name))
	}
	return ts
}

func (ts *ActionTypes) add(verb string, set TypeSet) {
	ts.Sets[verb] = set
	for _, s := range []Stage{Optimistic, Committed, RolledBack} {
		ts.index[set.Of(s)] = typeRef{verb, s}
	}
}

// Get returns the TypeSet for the given verb or custom method.
func (ts *ActionTypes) Get(verb string) (TypeSet, bool) {
	set, have := ts.Sets[verb]
	return set, have
}

// Names returns the standard verbs followed by the sorted custom
// method names.
func (ts *ActionTypes) Names() []string {
	acc := make([]string, 0, len(ts.Sets))
	acc = append(acc, Verbs...)
	methods := make([]string, 0, len(ts.methods))
	for name := range ts.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return append(acc, methods...)
}

// IsMethod reports whether the name is a custom method.
func (ts *ActionTypes) IsMethod(name string) bool {
	return ts.methods[name]
}

// Owns reports whether the type belongs to this resource or to one
// of its nested resources.
func (ts *ActionTypes) Owns(typ string) bool {
	if !strings.HasPrefix(typ, ts.Base) {
		return false
	}
	rest := typ[len(ts.Base):]
	return rest == "" ||
		strings.HasPrefix(rest, "_") ||
		strings.HasPrefix(rest, MethodSeparator)
}

// Lookup finds the verb and stage of the given type.
//
// Custom method types that were not declared when the ActionTypes was
// built are still recognized by their separator.
func (ts *ActionTypes) Lookup(typ string) (verb string, stage Stage, found bool) {
	if ref, have := ts.index[typ]; have {
		return ref.verb, ref.stage, true
	}
	prefix := ts.Base + MethodSeparator
	if !strings.HasPrefix(typ, prefix) {
		return "", Optimistic, false
	}
	name := typ[len(prefix):]
	switch {
	case strings.HasSuffix(name, CommitSuffix):
		name, stage = strings.TrimSuffix(name, CommitSuffix), Committed
	case strings.HasSuffix(name, RollbackSuffix):
		name, stage = strings.TrimSuffix(name, RollbackSuffix), RolledBack
	}
	if name == "" {
		return "", Optimistic, false
	}
	return name, stage, true
}
