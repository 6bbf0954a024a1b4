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

// Namespace maps names to Resources.
type Namespace map[string]*Resource

// NewNamespace makes a Resource for each name, all with the same
// Options.
func NewNamespace(names []string, opts *Options) Namespace {
	ns := make(Namespace, len(names))
	for _, name := range names {
		ns[name] = NewResource(name, opts)
	}
	return ns
}

// NewNamespaceFromMap makes a Resource for each branch.
//
// A branch value can be true (or nil), false (to omit the branch),
// *Options, or a map that OptionsFromMap accepts.  A branch's Options
// are merged over the given Options.
func NewNamespaceFromMap(branches map[string]interface{}, opts *Options) (Namespace, error) {
	bs := make(map[string]*Options, len(branches))
	for name, x := range branches {
		o, err := AsBranch(name, x)
		if err != nil {
			return nil, err
		}
		if o != nil {
			bs[name] = o
		}
	}
	return namespace("", bs, opts), nil
}

// NewTree makes the Namespace given by opts.Resources.
func NewTree(opts *Options) Namespace {
	if opts == nil {
		return Namespace{}
	}
	return namespace("", opts.Resources, opts)
}

// namespace builds Resources for the branches under the given base
// path, recursively.
func namespace(basePath string, branches map[string]*Options, parent *Options) Namespace {
	ns := make(Namespace, len(branches))
	for name, o := range branches {
		path := name
		if basePath != "" {
			path = basePath + "/" + name
		}
		ns[name] = NewResource(path, parent.Merge(o))
	}
	return ns
}

// Names returns the sorted names.
func (ns Namespace) Names() []string {
	acc := make([]string, 0, len(ns))
	for name := range ns {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// Find returns the Resource at the given slash-separated path of
// names (if any).
func (ns Namespace) Find(path string) *Resource {
	var (
		r     *Resource
		here  = ns
		names = strings.Split(strings.Trim(path, "/"), "/")
	)
	for _, name := range names {
		if here == nil {
			return nil
		}
		var have bool
		if r, have = here[name]; !have {
			return nil
		}
		here = r.Children
	}
	return r
}

// Walk calls the given function on every Resource, depth first, in
// name order.  Walk stops at the first error.
func (ns Namespace) Walk(f func(r *Resource) error) error {
	for _, name := range ns.Names() {
		r := ns[name]
		if err := f(r); err != nil {
			return err
		}
		if err := r.Children.Walk(f); err != nil {
			return err
		}
	}
	return nil
}
