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
	"sort"
	"strings"
)

// Resource makes Actions for one base path.
//
// An empty string argument means "not given".  In particular, an
// optional prefix is inserted between the base URL and the base
// path (after trimming its slashes):
//
//	r := NewResource("path/", &Options{BaseURL: "http://example/"})
//	r.Delete("id", "/prefix/id2/").Effect().URL
//	// http://example/prefix/id2/path/id
type Resource struct {
	// BasePath is the resource's path (sans trailing slash).
	BasePath string

	// Children are the nested resources (if any).
	Children Namespace

	opts    *Options
	baseURL string
	types   *ActionTypes
	methods map[string]Callback
	ids     IdSource
}

// NewResource makes a Resource.
//
// Custom methods with reserved names are dropped (with a warning).
// Nested resources given by opts.Resources are built recursively
// with base paths under this one.
func NewResource(basePath string, opts *Options) *Resource {
	opts = (*Options)(nil).Merge(opts)
	basePath = trimTrailing(basePath)

	methods := make(map[string]Callback, len(opts.Methods))
	names := make([]string, 0, len(opts.Methods))
	for name, f := range opts.Methods {
		if IsReserved(name) {
			slog.Warn("ignoring custom method with reserved name",
				"basePath", basePath, "method", name)
			continue
		}
		methods[name] = f
		names = append(names, name)
	}

	ids := opts.IdSource
	if ids == nil {
		ids = DefaultIdSource
	}

	r := &Resource{
		BasePath: basePath,
		opts:     opts,
		baseURL:  trimTrailing(opts.BaseURL),
		types:    Types(basePath, names...),
		methods:  methods,
		ids:      ids,
	}

	if 0 < len(opts.Resources) {
		r.Children = namespace(basePath, opts.Resources, opts)
	}

	return r
}

// Types returns the ActionTypes of this Resource.
func (r *Resource) Types() *ActionTypes {
	return r.types
}

// Options returns the (merged) Options used by this Resource.
func (r *Resource) Options() *Options {
	return r.opts
}

// Methods returns the sorted names of the custom methods.
func (r *Resource) Methods() []string {
	acc := make([]string, 0, len(r.methods))
	for name := range r.methods {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// URL composes the Effect URL for the given prefix and trailing
// segments.
func (r *Resource) URL(prefix string, segments ...string) string {
	fragments := make([]string, 0, 3+len(segments))
	fragments = append(fragments, r.baseURL, TrimPrefix(prefix), r.BasePath)
	fragments = append(fragments, segments...)
	return Compose(fragments...)
}

func (r *Resource) headers() map[string]string {
	if len(r.opts.Headers) == 0 {
		return nil
	}
	return copyHeaders(r.opts.Headers)
}

// action assembles an optimistic Action for the verb.
func (r *Resource) action(verb, id string, payload interface{}, effect *Effect) *Action {
	set := r.types.Sets[verb]
	return &Action{
		Type:    set.Type,
		Payload: payload,
		Meta: &Meta{
			Id: id,
			Offline: &Offline{
				Effect:   effect,
				Commit:   &Phase{Type: set.Commit, Meta: &Meta{Id: id}},
				Rollback: &Phase{Type: set.Rollback, Meta: &Meta{Id: id}},
			},
		},
	}
}

func or(s, otherwise string) string {
	if s != "" {
		return s
	}
	return otherwise
}

// Create makes a POST Action with a new temporary id.
func (r *Resource) Create(body interface{}, prefix string) *Action {
	id := r.ids()
	return r.action(VerbCreate, id, body, &Effect{
		URL:     r.URL(prefix),
		Method:  MethodPost,
		Body:    body,
		Headers: r.headers(),
	})
}

// Read makes a GET Action.
//
// Without an id, the whole collection is read.  The ownId (if any)
// is the correlation id instead of the id.
func (r *Resource) Read(id, ownId, prefix string) *Action {
	return r.action(VerbRead, or(ownId, id), nil, &Effect{
		URL:     r.URL(prefix, id),
		Method:  MethodGet,
		Headers: r.headers(),
	})
}

// ReadPagination makes a GET Action with an extra segment for the
// pagination offset.  The commit carries the offset as Meta.Skip.
func (r *Resource) ReadPagination(id, ownId, prefix, skip string) *Action {
	a := r.action(VerbReadPagination, or(ownId, id), nil, &Effect{
		URL:     r.URL(prefix, id, skip),
		Method:  MethodGet,
		Headers: r.headers(),
	})
	a.Meta.Offline.Commit.Meta.Skip = skip
	return a
}

// Update makes a PUT Action.
func (r *Resource) Update(id string, body interface{}, ownId, prefix string) *Action {
	return r.action(VerbUpdate, or(ownId, id), body, &Effect{
		URL:     r.URL(prefix, id),
		Method:  MethodPut,
		Body:    body,
		Headers: r.headers(),
	})
}

// Patch makes a PATCH Action.
//
// The Effect's content-type is always MergePatchContentType
// regardless of any configured header.
func (r *Resource) Patch(id string, body interface{}, prefix string) *Action {
	hs := r.headers()
	if hs == nil {
		hs = make(map[string]string, 1)
	}
	for k := range hs {
		if strings.EqualFold(k, "content-type") {
			delete(hs, k)
		}
	}
	hs["content-type"] = MergePatchContentType

	return r.action(VerbPatch, id, body, &Effect{
		URL:     r.URL(prefix, id),
		Method:  MethodPatch,
		Body:    body,
		Headers: hs,
	})
}

// Delete makes a DELETE Action.
func (r *Resource) Delete(id, prefix string) *Action {
	return r.action(VerbDelete, id, nil, &Effect{
		URL:     r.URL(prefix, id),
		Method:  MethodDelete,
		Headers: r.headers(),
	})
}

// Call makes a POST Action for the named custom method.
//
// The Effect URL is basePath/id/method.  The commit and rollback carry
// the method's Callback (and name) so that a Reducer can report the
// outcome to it.
func (r *Resource) Call(method, id string, body interface{}) (*Action, error) {
	f, have := r.methods[method]
	if !have {
		return nil, &UnknownMethod{r.BasePath, method}
	}
	a := r.action(method, id, nil, &Effect{
		URL:     r.URL("", id, method),
		Method:  MethodPost,
		Body:    body,
		Headers: r.headers(),
	})
	a.Meta.Method = method
	for _, p := range []*Phase{a.Meta.Offline.Commit, a.Meta.Offline.Rollback} {
		p.Meta.Method = method
		p.Meta.Func = f
	}
	return a, nil
}

// Dispatcher returns a Dispatcher that sends this Resource's Actions
// to the configured Dispatch.
//
// Without a configured Dispatch, the Dispatcher's calls just return
// the Actions.
func (r *Resource) Dispatcher() *Dispatcher {
	return NewDispatcher(r, r.opts.Dispatch)
}

// Reducer makes a Reducer for this Resource.
//
// The Reducer resolves this Resource's custom methods by name.  If
// the given options have no ChildReducer and this Resource has
// exactly one nested resource, that resource's Reducer becomes the
// child, and the nested collection is kept under the child's name.
func (r *Resource) Reducer(opts *ReducerOptions) *Reducer {
	acc := ReducerOptions{}
	if opts != nil {
		acc = *opts
	}
	if acc.Methods == nil && 0 < len(r.methods) {
		acc.Methods = r.methods
	}
	if acc.ChildReducer == nil && len(r.Children) == 1 {
		for name, child := range r.Children {
			childOpts := acc
			childOpts.ChildReducer = nil
			childOpts.ChildField = ""
			childOpts.Methods = nil
			acc.ChildReducer = child.Reducer(&childOpts)
			if acc.ChildField == "" {
				acc.ChildField = name
			}
		}
	}
	return NewReducer(r.BasePath, &acc)
}
