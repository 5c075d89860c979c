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

package types

import (
	"reflect"
	"strings"
)

// JoinPoint is a candidate execution point evaluated against pointcuts.
// JoinPoint 连接点，切入点根据它判断是否需要执行增强点
type JoinPoint struct {
	// Id identifies one invocation. Empty while only matching.
	Id string
	// Method is the name of the operation being called.
	Method string
	// Target is the object whose operation is called.
	Target interface{}
	// TargetType is the type of Target. Derived from Target when nil.
	TargetType reflect.Type
	// This is the proxy wrapping Target, if any.
	This interface{}
	// Args are the call arguments.
	Args []interface{}
}

// TypeName returns the target type as "pkg.Type", pointers stripped.
func (jp *JoinPoint) TypeName() string {
	t := jp.targetType()
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// Signature returns "pkg.Type.Method".
func (jp *JoinPoint) Signature() string {
	if name := jp.TypeName(); name != "" {
		return name + "." + jp.Method
	}
	return jp.Method
}

func (jp *JoinPoint) targetType() reflect.Type {
	if jp.TargetType != nil {
		return jp.TargetType
	}
	if jp.Target != nil {
		return reflect.TypeOf(jp.Target)
	}
	return nil
}

// Pointcut is a boolean test over join points.
// Pointcut 切入点
type Pointcut interface {
	Matches(jp *JoinPoint) bool
}

// PointcutFunc adapts a function to a Pointcut.
type PointcutFunc func(jp *JoinPoint) bool

func (f PointcutFunc) Matches(jp *JoinPoint) bool {
	return f(jp)
}

type truePointcut struct{}

func (truePointcut) Matches(*JoinPoint) bool { return true }

func (truePointcut) String() string { return "true" }

// TruePointcut matches every join point.
var TruePointcut Pointcut = truePointcut{}

// UnionPointcut matches when any of its members matches.
type UnionPointcut []Pointcut

func (u UnionPointcut) Matches(jp *JoinPoint) bool {
	for _, p := range u {
		if p != nil && p.Matches(jp) {
			return true
		}
	}
	return false
}

func (u UnionPointcut) String() string {
	var parts []string
	for _, p := range u {
		parts = append(parts, PointcutString(p))
	}
	return "(" + strings.Join(parts, " || ") + ")"
}

// Union combines pointcuts, dropping nil members.
func Union(pointcuts ...Pointcut) Pointcut {
	var u UnionPointcut
	for _, p := range pointcuts {
		if p != nil {
			u = append(u, p)
		}
	}
	if len(u) == 1 {
		return u[0]
	}
	return u
}

// PointcutString renders a pointcut for logs.
func PointcutString(p Pointcut) string {
	if s, ok := p.(interface{ String() string }); ok {
		return s.String()
	}
	if p == nil {
		return "<nil>"
	}
	return reflect.TypeOf(p).String()
}

// NamedPointcuts resolves pointcut-only operations declared by one aspect.
type NamedPointcuts map[string]Pointcut

// PointcutParser turns a pointcut expression into a Pointcut.
// The expression language itself is opaque to the advisor machinery.
// PointcutParser 切入点表达式解析器
type PointcutParser interface {
	// Parse compiles expression. named holds the aspect's named pointcuts, callable by name.
	Parse(expression string, named NamedPointcuts) (Pointcut, error)
	// ParseTypePattern compiles a type pattern such as "service.*".
	ParseTypePattern(pattern string) (Pointcut, error)
}
