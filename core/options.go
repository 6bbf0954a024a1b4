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

import "fmt"

// Dispatch receives an Action and returns whatever it likes.
type Dispatch func(*Action) interface{}

// IdSource generates temporary ids for created records.
type IdSource func() string

// Options configures a Resource and, via Resources, a tree of them.
//
// Options are not modified by this package.
type Options struct {
	// BaseURL is prepended to every Effect URL.  A trailing slash
	// is ignored.
	BaseURL string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`

	// Headers are included in every Effect.
	Headers map[string]string `json:"headers,omitempty" yaml:",omitempty"`

	// Doc is documentation (in Markdown) for the resource.  Not
	// inherited.
	Doc string `json:"doc,omitempty" yaml:",omitempty"`

	// Methods are the custom resource methods.
	Methods map[string]Callback `json:"-" yaml:"-"`

	// Dispatch, if not nil, is used by Resource.Dispatcher.
	Dispatch Dispatch `json:"-" yaml:"-"`

	// IdSource generates temporary ids.  Defaults to
	// DefaultIdSource.
	IdSource IdSource `json:"-" yaml:"-"`

	// Resources are nested resources.  Each one's Options are
	// merged over these.  Not inherited.
	Resources map[string]*Options `json:"resources,omitempty" yaml:",omitempty"`
}

// Merge returns a new Options with the given Options shallow-merged
// over the receiver.
//
// Fields that are set in over win.  Doc and Resources are never
// inherited from the receiver.
func (o *Options) Merge(over *Options) *Options {
	acc := &Options{}
	if o != nil {
		*acc = *o
	}
	acc.Doc = ""
	acc.Resources = nil
	if over == nil {
		return acc
	}
	if over.BaseURL != "" {
		acc.BaseURL = over.BaseURL
	}
	if over.Headers != nil {
		acc.Headers = over.Headers
	}
	if over.Methods != nil {
		acc.Methods = over.Methods
	}
	if over.Dispatch != nil {
		acc.Dispatch = over.Dispatch
	}
	if over.IdSource != nil {
		acc.IdSource = over.IdSource
	}
	acc.Doc = over.Doc
	acc.Resources = over.Resources
	return acc
}

// reservedOptions are keys that OptionsFromMap does not treat as
// implicit custom methods.
var reservedOptions = map[string]bool{
	"baseUrl":         true,
	"headers":         true,
	"doc":             true,
	"dispatch":        true,
	"idSource":        true,
	"resourceMethods": true,
	"resources":       true,
	"childReducer":    true,
	"onRollback":      true,
}

// IsReserved reports whether the name can't be used for a custom
// method.
func IsReserved(name string) bool {
	if reservedOptions[name] {
		return true
	}
	switch name {
	case VerbCreate, VerbRead, VerbReadPagination, "readPagination", VerbUpdate, VerbPatch, VerbDelete:
		return true
	}
	return false
}

// AsCallback converts a function with a suitable signature to a
// Callback.
func AsCallback(x interface{}) (Callback, bool) {
	switch vv := x.(type) {
	case Callback:
		return vv, vv != nil
	case func(interface{}, interface{}):
		return Callback(vv), vv != nil
	case func(interface{}):
		return func(err, result interface{}) {
			if err != nil {
				vv(err)
				return
			}
			vv(result)
		}, vv != nil
	case func():
		return func(interface{}, interface{}) { vv() }, vv != nil
	}
	return nil, false
}

// OptionsFromMap makes Options from a loosely typed map.
//
// Recognized keys are "baseUrl", "headers", "doc", "dispatch",
// "idSource", "resourceMethods", and "resources".  When
// "resourceMethods" is absent, every other key with a function value
// becomes a custom method.  "childReducer" and "onRollback" are
// Reducer options and are ignored here.
func OptionsFromMap(m map[string]interface{}) (*Options, error) {
	o := &Options{}
	if m == nil {
		return o, nil
	}

	if x, have := m["baseUrl"]; have {
		s, is := x.(string)
		if !is {
			return nil, &BadOption{"baseUrl", x}
		}
		o.BaseURL = s
	}

	if x, have := m["doc"]; have {
		s, is := x.(string)
		if !is {
			return nil, &BadOption{"doc", x}
		}
		o.Doc = s
	}

	if x, have := m["headers"]; have && x != nil {
		hs, err := asHeaders(x)
		if err != nil {
			return nil, err
		}
		o.Headers = hs
	}

	if x, have := m["dispatch"]; have && x != nil {
		switch vv := x.(type) {
		case Dispatch:
			o.Dispatch = vv
		case func(*Action) interface{}:
			o.Dispatch = vv
		default:
			return nil, &BadOption{"dispatch", x}
		}
	}

	if x, have := m["idSource"]; have && x != nil {
		switch vv := x.(type) {
		case IdSource:
			o.IdSource = vv
		case func() string:
			o.IdSource = vv
		default:
			return nil, &BadOption{"idSource", x}
		}
	}

	if x, have := m["resourceMethods"]; have && x != nil {
		methods, err := asMethods(x)
		if err != nil {
			return nil, err
		}
		o.Methods = methods
	} else {
		for name, x := range m {
			if IsReserved(name) {
				continue
			}
			if f, is := AsCallback(x); is {
				if o.Methods == nil {
					o.Methods = make(map[string]Callback)
				}
				o.Methods[name] = f
			}
		}
	}

	if x, have := m["resources"]; have && x != nil {
		rs, is := x.(map[string]interface{})
		if !is {
			return nil, &BadOption{"resources", x}
		}
		o.Resources = make(map[string]*Options, len(rs))
		for name, y := range rs {
			child, err := AsBranch(name, y)
			if err != nil {
				return nil, err
			}
			if child != nil {
				o.Resources[name] = child
			}
		}
	}

	return o, nil
}

// AsBranch interprets the value of a namespace branch.
//
// true (or nil) means no options of its own.  false means the branch
// is omitted, and nil Options are returned.
func AsBranch(name string, x interface{}) (*Options, error) {
	switch vv := x.(type) {
	case nil:
		return &Options{}, nil
	case bool:
		if !vv {
			return nil, nil
		}
		return &Options{}, nil
	case *Options:
		return vv, nil
	case map[string]interface{}:
		return OptionsFromMap(vv)
	default:
		return nil, &BadBranch{name, x}
	}
}

func asHeaders(x interface{}) (map[string]string, error) {
	switch vv := x.(type) {
	case map[string]string:
		return copyHeaders(vv), nil
	case map[string]interface{}:
		acc := make(map[string]string, len(vv))
		for k, v := range vv {
			switch s := v.(type) {
			case string:
				acc[k] = s
			case fmt.Stringer:
				acc[k] = s.String()
			default:
				acc[k] = fmt.Sprintf("%v", v)
			}
		}
		return acc, nil
	default:
		return nil, &BadOption{"headers", x}
	}
}

func asMethods(x interface{}) (map[string]Callback, error) {
	switch vv := x.(type) {
	case map[string]Callback:
		return vv, nil
	case map[string]interface{}:
		acc := make(map[string]Callback, len(vv))
		for name, y := range vv {
			f, is := AsCallback(y)
			if !is {
				return nil, &BadOption{"resourceMethods." + name, y}
			}
			acc[name] = f
		}
		return acc, nil
	default:
		return nil, &BadOption{"resourceMethods", x}
	}
}
