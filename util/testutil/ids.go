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

package testutil

import (
	"strconv"
	"sync"
)

// SeqIds returns a deterministic id source: prefix1, prefix2, ...
func SeqIds(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		n++
		id := prefix + strconv.Itoa(n)
		mu.Unlock()
		return id
	}
}

// Recorder collects the arguments of callbacks.
type Recorder struct {
	sync.Mutex
	Calls [][]interface{}
}

// Record appends the given arguments as one call.
func (r *Recorder) Record(args ...interface{}) {
	r.Lock()
	r.Calls = append(r.Calls, args)
	r.Unlock()
}

// Count returns the number of recorded calls.
func (r *Recorder) Count() int {
	r.Lock()
	defer r.Unlock()
	return len(r.Calls)
}
