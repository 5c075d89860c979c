/*
 * Copyright 2023 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import (
	"time"
)

// Config defines the configuration for advisor construction.
type Config struct {
	// Logger is the logging interface, defaulting to `DefaultLogger()`.
	Logger Logger
	// IncludePatterns are glob patterns over component names. Only matching components are
	// considered aspect candidates. Empty means every candidate is eligible.
	// Example: []string{"audit*", "*Aspect"}
	IncludePatterns []string
	// PointcutParser compiles pointcut expressions, defaulting to `pointcut.NewParser(config)`.
	PointcutParser PointcutParser
	// ScriptMaxExecutionTime is the maximum execution time for `js:` pointcuts, defaulting to 2000 milliseconds.
	ScriptMaxExecutionTime time.Duration
	// Properties are global properties in key-value format.
	// Pointcut expressions can read them with `global.propertyKey`.
	Properties map[string]interface{}
}

// NewConfig creates a new Config with default values and applies the provided options.
func NewConfig(opts ...Option) Config {
	c := &Config{
		ScriptMaxExecutionTime: time.Millisecond * 2000,
		Logger:                 DefaultLogger(),
		Properties:             make(map[string]interface{}),
	}

	for _, opt := range opts {
		_ = opt(c)
	}
	return *c
}
