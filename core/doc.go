/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package core provides the core gear for optimistic updates of
// REST-shaped resources.
//
// There are two halves.  A Resource makes Actions: for each verb
// (create, read, update, patch, delete, and any custom methods), an
// Action carries the optimistic change, an Effect that describes the
// HTTP request that should eventually happen, and the types of the
// commit and rollback Actions that should follow once the outcome of
// that request is known.  A Reducer consumes those Actions and
// evolves a State, which is just an ordered collection of Items.
//
// An optimistic Action is applied immediately.  A commit finalizes
// it.  A rollback reverts it using the snapshot that the optimistic
// step kept on the Item.
//
// This package does no IO.  Somebody else (an offline queue, a
// network middleware, a test) reads each Action's Effect, performs
// the request, and then dispatches the Action's Commit() or
// Rollback() with the request's result or error as the payload.
//
// Both halves agree on action type strings via ActionTypes, which
// are derived deterministically from a resource's base path.
//
// A Reducer never returns an error.  Unknown types are ignored (or
// handed to a child Reducer), and ids that match nothing are
// reported via ReducerOptions.OnUnmatched and otherwise ignored.
package core
