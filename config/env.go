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

package config

import (
	"fmt"

	"github.com/Comcast/resourceful/util"

	"github.com/caarlos0/env/v11"
)

// Env holds the settings that come from environment variables.
type Env struct {
	BaseURL   string `env:"RESOURCEFUL_BASE_URL"`
	LogLevel  string `env:"RESOURCEFUL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"RESOURCEFUL_LOG_FORMAT" envDefault:"text"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv reads an Env.
func FromEnv() (*Env, error) {
	e := &Env{}
	if err := ParseEnv(e); err != nil {
		return nil, err
	}
	return e, nil
}

// LogConfig returns the logging part of the Env.
func (e *Env) LogConfig() util.LogConfig {
	return util.LogConfig{
		Level:  e.LogLevel,
		Format: e.LogFormat,
	}
}
