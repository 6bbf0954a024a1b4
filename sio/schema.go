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
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed action.schema.json
var actionSchema []byte

const actionSchemaURL = "action.schema.json"

// Validator checks decoded JSON against the action descriptor schema.
type Validator struct {
	schema *jsonschema.Schema
}

var (
	defaultValidator    *Validator
	defaultValidatorErr error
	defaultValidatorOne sync.Once
)

// DefaultValidator returns a shared Validator.
func DefaultValidator() (*Validator, error) {
	defaultValidatorOne.Do(func() {
		defaultValidator, defaultValidatorErr = NewValidator()
	})
	return defaultValidator, defaultValidatorErr
}

// NewValidator compiles the action descriptor schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(actionSchemaURL, bytes.NewReader(actionSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(actionSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate checks generic JSON (as produced by encoding/json) against
// the schema.
func (v *Validator) Validate(x interface{}) error {
	if err := v.schema.Validate(x); err != nil {
		return &Invalid{Err: err}
	}
	return nil
}

// ValidateJSON parses and validates the given JSON.
func (v *Validator) ValidateJSON(js []byte) error {
	var x interface{}
	if err := json.Unmarshal(js, &x); err != nil {
		return &BadJSON{Err: err}
	}
	return v.Validate(x)
}

// Invalid occurs when a message doesn't look like an action
// descriptor.
type Invalid struct {
	Err error
}

func (e *Invalid) Error() string {
	// The schema errors are verbose, so report the innermost
	// causes only.
	if ve, is := e.Err.(*jsonschema.ValidationError); is {
		return "invalid action: " + leafMessages(ve)
	}
	return "invalid action: " + e.Err.Error()
}

func (e *Invalid) Unwrap() error {
	return e.Err
}

func leafMessages(ve *jsonschema.ValidationError) string {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return loc + ": " + ve.Message
	}
	acc := ""
	for i, c := range ve.Causes {
		if 0 < i {
			acc += "; "
		}
		acc += leafMessages(c)
	}
	return acc
}

// BadJSON occurs when a message isn't JSON.
type BadJSON struct {
	Err error
}

func (e *BadJSON) Error() string {
	return "bad JSON: " + e.Err.Error()
}

func (e *BadJSON) Unwrap() error {
	return e.Err
}
