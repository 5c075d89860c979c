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

// Package metrics holds invocation counters collected by the metrics aspect.
package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Counters is a snapshot of invocation counters.
type Counters struct {
	Current int64 // Number of invocations in flight
	Total   int64 // Total number of invocations
	Failed  int64 // Number of invocations returning an error
	Success int64 // Number of invocations returning normally
}

type counters struct {
	current int64
	total   int64
	failed  int64
	success int64
}

func (c *counters) snapshot() Counters {
	return Counters{
		Current: atomic.LoadInt64(&c.current),
		Total:   atomic.LoadInt64(&c.total),
		Failed:  atomic.LoadInt64(&c.failed),
		Success: atomic.LoadInt64(&c.success),
	}
}

// InvocationMetrics counts invocations, overall and per join point signature.
// It is safe for concurrent use.
type InvocationMetrics struct {
	all         counters
	bySignature sync.Map // string -> *counters
}

// NewInvocationMetrics creates empty metrics.
func NewInvocationMetrics() *InvocationMetrics {
	return &InvocationMetrics{}
}

func (m *InvocationMetrics) of(signature string) *counters {
	if c, ok := m.bySignature.Load(signature); ok {
		return c.(*counters)
	}
	c, _ := m.bySignature.LoadOrStore(signature, &counters{})
	return c.(*counters)
}

// Start records an invocation entering signature.
func (m *InvocationMetrics) Start(signature string) {
	c := m.of(signature)
	atomic.AddInt64(&m.all.current, 1)
	atomic.AddInt64(&m.all.total, 1)
	atomic.AddInt64(&c.current, 1)
	atomic.AddInt64(&c.total, 1)
}

// Done records an invocation of signature leaving, failed when err is not nil.
func (m *InvocationMetrics) Done(signature string, err error) {
	c := m.of(signature)
	atomic.AddInt64(&m.all.current, -1)
	atomic.AddInt64(&c.current, -1)
	if err != nil {
		atomic.AddInt64(&m.all.failed, 1)
		atomic.AddInt64(&c.failed, 1)
	} else {
		atomic.AddInt64(&m.all.success, 1)
		atomic.AddInt64(&c.success, 1)
	}
}

// Get returns the overall counters.
func (m *InvocationMetrics) Get() Counters {
	return m.all.snapshot()
}

// GetSignature returns the counters of one signature.
func (m *InvocationMetrics) GetSignature(signature string) Counters {
	if c, ok := m.bySignature.Load(signature); ok {
		return c.(*counters).snapshot()
	}
	return Counters{}
}

// Signatures returns the recorded signatures, sorted.
func (m *InvocationMetrics) Signatures() []string {
	var result []string
	m.bySignature.Range(func(key, value interface{}) bool {
		result = append(result, key.(string))
		return true
	})
	sort.Strings(result)
	return result
}

// Reset clears every counter.
func (m *InvocationMetrics) Reset() {
	atomic.StoreInt64(&m.all.current, 0)
	atomic.StoreInt64(&m.all.total, 0)
	atomic.StoreInt64(&m.all.failed, 0)
	atomic.StoreInt64(&m.all.success, 0)
	m.bySignature.Range(func(key, value interface{}) bool {
		m.bySignature.Delete(key)
		return true
	})
}
