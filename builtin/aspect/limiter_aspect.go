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

package aspect

import (
	"errors"
	"sync/atomic"

	"github.com/rulego/aop/api/types"
)

// ErrConcurrencyLimitReached the maximum number of concurrent executions is reached.
var ErrConcurrencyLimitReached = errors.New("concurrency limit reached")

// ConcurrencyLimiterAspect limits the number of join points executing at the same time.
// ConcurrencyLimiterAspect 限制连接点并发执行数量的切面
//
// Usage:
// 使用方法：
//
//	// 创建最大 100 个并发执行的切面
//	limiter := NewConcurrencyLimiterAspect(100)
//	_ = registry.Register("limiter", limiter)
type ConcurrencyLimiterAspect struct {
	types.AspectMeta `order:"10"`
	Limit            types.AroundFunc `pointcut:"true"`
	Max              int64            // Maximum number of concurrent executions  最大并发执行数量
	currentCount     int64            // Current number of concurrent executions  当前并发执行数量
}

// NewConcurrencyLimiterAspect creates a limiter allowing max concurrent executions.
func NewConcurrencyLimiterAspect(max int) *ConcurrencyLimiterAspect {
	a := &ConcurrencyLimiterAspect{Max: int64(max)}
	a.Limit = a.limit
	return a
}

func (a *ConcurrencyLimiterAspect) limit(pjp types.ProceedingJoinPoint) (interface{}, error) {
	for {
		current := atomic.LoadInt64(&a.currentCount)
		if current >= a.Max {
			return nil, ErrConcurrencyLimitReached
		}
		// 如果CAS失败，说明有其他goroutine修改了计数器，重试
		if atomic.CompareAndSwapInt64(&a.currentCount, current, current+1) {
			break
		}
	}
	defer atomic.AddInt64(&a.currentCount, -1)
	return pjp.Proceed()
}

// Current returns the number of executions in flight.
func (a *ConcurrencyLimiterAspect) Current() int64 {
	return atomic.LoadInt64(&a.currentCount)
}
