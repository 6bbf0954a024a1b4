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

// Package util has logging setup shared by the commands.
package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logging is a clumsy switch that affects what Logf does.
//
// If Logging is true, then Logf logs at debug level.
var Logging = false

// Logf logs a formatted message at debug level if Logging is true.
func Logf(format string, args ...interface{}) {
	if !Logging {
		return
	}
	slog.Debug(fmt.Sprintf(format, args...))
}

// Log output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LogConfig says how to make a logger.
type LogConfig struct {
	// Level is "debug", "info", "warn", or "error".  Anything else
	// means "info".
	Level string

	// Format is FormatText (default) or FormatJSON.
	Format string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// NewLogger makes a logger according to the LogConfig.
func NewLogger(cfg LogConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, FormatJSON) {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}
	return slog.New(h)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
