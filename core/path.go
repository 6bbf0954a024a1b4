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

import "strings"

// Compose joins the given path fragments with slashes.
//
// Empty fragments are dropped.  A fragment that starts with '?' is a
// query string, which is appended verbatim after the joined path
// regardless of its position.  If more than one fragment is a query
// string, the last one wins.
func Compose(fragments ...string) string {
	var (
		query string
		acc   = make([]string, 0, len(fragments))
	)
	for _, f := range fragments {
		switch {
		case f == "":
		case strings.HasPrefix(f, "?"):
			query = f
		default:
			acc = append(acc, f)
		}
	}
	return strings.Join(acc, "/") + query
}

// TrimPrefix removes all leading and trailing slashes from a prefix
// fragment.
//
// A prefix is always inserted between the base URL and the base path.
// "/prefix/id2/" becomes "prefix/id2".
func TrimPrefix(prefix string) string {
	return strings.Trim(prefix, "/")
}

// trimTrailing removes one trailing slash (if any).
func trimTrailing(s string) string {
	return strings.TrimSuffix(s, "/")
}
