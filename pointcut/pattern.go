/*
 * Copyright 2024 The RuleGo Authors.
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

package pointcut

import (
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/rulego/aop/api/types"
)

// Separator splits type and method names in patterns.
// `*` never crosses it, `**` does.
const Separator = '.'

var globCache sync.Map

// CompilePattern compiles a dotted glob pattern, caching the result.
func CompilePattern(pattern string) (glob.Glob, error) {
	pattern = strings.TrimSpace(pattern)
	if g, ok := globCache.Load(pattern); ok {
		return g.(glob.Glob), nil
	}
	g, err := glob.Compile(pattern, Separator)
	if err != nil {
		return nil, err
	}
	globCache.Store(pattern, g)
	return g, nil
}

// MatchPattern reports whether name matches pattern. Invalid patterns never match.
func MatchPattern(pattern, name string) bool {
	g, err := CompilePattern(pattern)
	if err != nil {
		return false
	}
	return g.Match(name)
}

// TypePattern matches join points whose target type name ("pkg.Type") matches a glob.
// TypePattern 按目标类型名称匹配的切入点，例如 "service.*"
type TypePattern struct {
	Pattern string
	glob    glob.Glob
}

// NewTypePattern compiles pattern.
func NewTypePattern(pattern string) (*TypePattern, error) {
	g, err := CompilePattern(pattern)
	if err != nil {
		return nil, &types.InvalidPointcutError{Expression: pattern, Err: err}
	}
	return &TypePattern{Pattern: pattern, glob: g}, nil
}

func (p *TypePattern) Matches(jp *types.JoinPoint) bool {
	if jp == nil {
		return false
	}
	return p.glob.Match(jp.TypeName())
}

func (p *TypePattern) String() string {
	return "within(" + p.Pattern + ")"
}

// NamePatterns matches plain names, such as component names, against a list of globs.
type NamePatterns []glob.Glob

// NewNamePatterns compiles patterns without separators.
func NewNamePatterns(patterns []string) (NamePatterns, error) {
	var result NamePatterns
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, nil
}

// Match reports whether name matches any pattern. An empty list matches everything.
func (p NamePatterns) Match(name string) bool {
	if len(p) == 0 {
		return true
	}
	for _, g := range p {
		if g.Match(name) {
			return true
		}
	}
	return false
}
