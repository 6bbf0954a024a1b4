// Package resourceful provides optimistic-update machinery for
// REST-shaped resources.
//
// The core code is in package 'core', a serialized store is in
// 'crew', JSON-lines plumbing is in 'sio', resource trees read from
// files are in 'config', and diagrams and HTML docs are in 'tools'.
// The command-line tool is in `cmd/resourceful`.
package resourceful
