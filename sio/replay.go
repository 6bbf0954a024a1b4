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
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Comcast/resourceful/core"
	"github.com/Comcast/resourceful/crew"
	"github.com/Comcast/resourceful/util"
)

// Auto modes for Replay.
const (
	AutoNone     = ""
	AutoCommit   = "commit"
	AutoRollback = "rollback"
)

// Replay reads action descriptors (one JSON object per line) and
// dispatches them to a Store.
//
// Since nothing here performs an Effect, Replay can pretend to be
// the executor: with Auto set, each optimistic Action is immediately
// followed by its commit (with the Effect's body as the payload) or
// its rollback.
type Replay struct {
	// In is the source of action descriptors.
	In io.Reader

	// Out gets the results.
	Out io.Writer

	Store *crew.Store

	// Validator, if not nil, checks each line before decoding.
	Validator *Validator

	// Auto is AutoNone, AutoCommit, or AutoRollback.
	Auto string

	// Timestamps prepends a timestamp to each output line.
	Timestamps bool

	// EchoInput writes input lines (prepended with "input") to
	// the output.
	EchoInput bool

	// Tags prefixes tags indicating type of output ("input",
	// "stride", "state", "error").
	Tags bool

	// PrintStrides writes a line for each Stride.
	PrintStrides bool

	// WriteStatePerMsg writes ALL state after every input line
	// is processed.  Otherwise state is written once at the end.
	WriteStatePerMsg bool

	Logger *slog.Logger
}

// NewReplay makes a Replay that uses stdin and stdout.
func NewReplay(store *crew.Store) *Replay {
	return &Replay{
		In:    os.Stdin,
		Out:   os.Stdout,
		Store: store,
	}
}

// Summary counts what happened during a Replay.
type Summary struct {
	Lines      int `json:"lines"`
	Dispatched int `json:"dispatched"`
	Bad        int `json:"bad"`
	Unmatched  int `json:"unmatched"`
	Ignored    int `json:"ignored"`
}

func (r *Replay) printf(tag, format string, args ...interface{}) {
	if r.Tags {
		format = fmt.Sprintf("%-7s", tag) + " " + format
	}
	if r.Timestamps {
		ts := fmt.Sprintf("%-31s", time.Now().UTC().Format(time.RFC3339Nano))
		format = ts + " " + format
	}
	fmt.Fprintf(r.Out, format, args...)
}

// Run processes lines until EOF, a "quit" line, or the context is
// done.
//
// Blank lines and lines starting with '#' are skipped.  A line that
// can't be decoded is reported (tagged "error") and skipped.
func (r *Replay) Run(ctx context.Context) (*Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch r.Auto {
	case AutoNone, AutoCommit, AutoRollback:
	default:
		return nil, fmt.Errorf("bad auto mode %q", r.Auto)
	}

	var (
		sum = &Summary{}
		in  = bufio.NewScanner(r.In)
	)
	in.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for in.Scan() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		line := in.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "quit" {
			break
		}
		sum.Lines++
		if r.EchoInput {
			r.printf("input", "%s\n", line)
		}
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		a, err := Decode([]byte(trimmed), r.Validator)
		if err != nil {
			sum.Bad++
			logger.Warn("bad input", "line", sum.Lines, "text", JShort(trimmed), "error", err)
			r.printf("error", "line %d: %s\n", sum.Lines, err)
			continue
		}

		r.dispatch(sum, a)
		if follow := r.follow(a); follow != nil {
			r.dispatch(sum, follow)
		}

		if r.WriteStatePerMsg {
			r.printf("state", "%s\n", JS(r.Store.Snapshot()))
		}
	}
	if err := in.Err(); err != nil {
		return sum, err
	}

	if !r.WriteStatePerMsg {
		r.printf("state", "%s\n", JS(r.Store.Snapshot()))
	}
	logger.Debug("replay done", "lines", sum.Lines, "bad", sum.Bad)

	return sum, nil
}

// follow makes the automatic commit or rollback (if any).
func (r *Replay) follow(a *core.Action) *core.Action {
	if r.Auto != AutoNone {
		util.Logf("replay auto %s for %s %s", r.Auto, a.Type, a.Id())
	}
	switch r.Auto {
	case AutoCommit:
		var body interface{}
		if e := a.Effect(); e != nil {
			body = e.Body
		}
		return a.Commit(body)
	case AutoRollback:
		return a.Rollback("auto rollback")
	}
	return nil
}

func (r *Replay) dispatch(sum *Summary, a *core.Action) {
	sum.Dispatched++
	strides := r.Store.Dispatch(a)
	if len(strides) == 0 {
		sum.Ignored++
	}
	for _, s := range strides {
		if s.Unmatched {
			sum.Unmatched++
		}
		if r.PrintStrides {
			r.printf("stride", "%s\n", JS(map[string]interface{}{
				"type":      a.Type,
				"id":        a.Id(),
				"verb":      s.Verb,
				"stage":     s.Stage,
				"changed":   s.Changed,
				"unmatched": s.Unmatched,
			}))
		}
	}
}
