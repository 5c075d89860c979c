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

// Option is a function type that modifies the Config.
type Option func(*Config) error

// WithLogger is an option that sets the logger of the Config.
func WithLogger(logger Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}

// WithIncludePatterns is an option that restricts aspect candidates to component names matching any pattern.
func WithIncludePatterns(patterns ...string) Option {
	return func(c *Config) error {
		c.IncludePatterns = append(c.IncludePatterns, patterns...)
		return nil
	}
}

// WithPointcutParser is an option that sets the pointcut parser of the Config.
func WithPointcutParser(parser PointcutParser) Option {
	return func(c *Config) error {
		c.PointcutParser = parser
		return nil
	}
}

// WithScriptMaxExecutionTime is an option that sets the js max execution time of the Config.
func WithScriptMaxExecutionTime(scriptMaxExecutionTime time.Duration) Option {
	return func(c *Config) error {
		c.ScriptMaxExecutionTime = scriptMaxExecutionTime
		return nil
	}
}

// WithProperties is an option that merges global properties into the Config.
func WithProperties(properties map[string]interface{}) Option {
	return func(c *Config) error {
		if c.Properties == nil {
			c.Properties = make(map[string]interface{})
		}
		for k, v := range properties {
			c.Properties[k] = v
		}
		return nil
	}
}
