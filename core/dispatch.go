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

// Dispatcher wraps a Resource so that each Action it makes is handed
// to a Dispatch.  Each call returns whatever the Dispatch returns.
type Dispatcher struct {
	Resource *Resource
	dispatch Dispatch
}

// NewDispatcher makes a Dispatcher.  A nil Dispatch just returns the
// Action.
func NewDispatcher(r *Resource, d Dispatch) *Dispatcher {
	if d == nil {
		d = func(a *Action) interface{} { return a }
	}
	return &Dispatcher{
		Resource: r,
		dispatch: d,
	}
}

func (d *Dispatcher) Create(body interface{}, prefix string) interface{} {
	return d.dispatch(d.Resource.Create(body, prefix))
}

func (d *Dispatcher) Read(id, ownId, prefix string) interface{} {
	return d.dispatch(d.Resource.Read(id, ownId, prefix))
}

func (d *Dispatcher) ReadPagination(id, ownId, prefix, skip string) interface{} {
	return d.dispatch(d.Resource.ReadPagination(id, ownId, prefix, skip))
}

func (d *Dispatcher) Update(id string, body interface{}, ownId, prefix string) interface{} {
	return d.dispatch(d.Resource.Update(id, body, ownId, prefix))
}

func (d *Dispatcher) Patch(id string, body interface{}, prefix string) interface{} {
	return d.dispatch(d.Resource.Patch(id, body, prefix))
}

func (d *Dispatcher) Delete(id, prefix string) interface{} {
	return d.dispatch(d.Resource.Delete(id, prefix))
}

// Call dispatches a custom method's Action.  Nothing is dispatched if
// the method is unknown.
func (d *Dispatcher) Call(method, id string, body interface{}) (interface{}, error) {
	a, err := d.Resource.Call(method, id, body)
	if err != nil {
		return nil, err
	}
	return d.dispatch(a), nil
}

// Dispatchers returns a Dispatcher for every Resource in the
// Namespace, keyed by name.
func (ns Namespace) Dispatchers() map[string]*Dispatcher {
	acc := make(map[string]*Dispatcher, len(ns))
	for name, r := range ns {
		acc[name] = r.Dispatcher()
	}
	return acc
}
