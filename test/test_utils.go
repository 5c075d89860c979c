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

// Package test holds fixtures shared by the package tests: sample aspects,
// sample targets, a recorder for advice calls and a logger writing to testing.T.
package test

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/rulego/aop/api/types"
)

// Recorder collects advice events. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Add records one event.
func (r *Recorder) Add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Reset clears the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// JoinPoint builds a join point on target.
func JoinPoint(target interface{}, method string, args ...interface{}) *types.JoinPoint {
	return &types.JoinPoint{Target: target, TargetType: reflect.TypeOf(target), Method: method, Args: args}
}

// Logger writes to the test log and keeps every line for assertions.
type Logger struct {
	t     testing.TB
	mu    sync.Mutex
	lines []string
}

// NewLogger creates a logger bound to t.
func NewLogger(t testing.TB) *Logger {
	return &Logger{t: t}
}

func (l *Logger) Printf(format string, v ...interface{}) {
	line := fmt.Sprintf(format, v...)
	l.mu.Lock()
	l.lines = append(l.lines, line)
	l.mu.Unlock()
	l.t.Log(line)
}

// Lines returns the logged lines.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
