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

package advisor

import (
	"github.com/gofrs/uuid/v5"
	"github.com/rulego/aop/api/types"
)

var _ types.ProceedingJoinPoint = (*Invocation)(nil)

// TargetFunc is the operation at the end of an interceptor chain.
type TargetFunc func(args ...interface{}) (interface{}, error)

// Invocation runs a join point through a chain of advice. It is not safe for concurrent use;
// create one per call.
// Invocation 一次方法调用，依次执行拦截器链
type Invocation struct {
	jp           *types.JoinPoint
	interceptors []types.Advice
	target       TargetFunc
	index        int
}

// NewInvocation creates an invocation. The join point gets a fresh id when it has none.
func NewInvocation(jp *types.JoinPoint, interceptors []types.Advice, target TargetFunc) *Invocation {
	if jp.Id == "" {
		uuId, _ := uuid.NewV4()
		jp.Id = uuId.String()
	}
	return &Invocation{jp: jp, interceptors: interceptors, target: target}
}

// JoinPoint returns the join point being executed.
func (i *Invocation) JoinPoint() *types.JoinPoint {
	return i.jp
}

// Proceed calls the next interceptor, or the target once the chain is exhausted.
func (i *Invocation) Proceed() (interface{}, error) {
	if i.index >= len(i.interceptors) {
		if i.target == nil {
			return nil, nil
		}
		return i.target(i.jp.Args...)
	}
	advice := i.interceptors[i.index]
	i.index++
	return advice.Invoke(i)
}

// ProceedWith replaces the call arguments, then proceeds.
func (i *Invocation) ProceedWith(args ...interface{}) (interface{}, error) {
	i.jp.Args = args
	return i.Proceed()
}

// invocationMatcher decides at call time whether a candidate advisor's advice runs.
type invocationMatcher interface {
	MatchesInvocation(jp *types.JoinPoint) bool
}

// Chain returns the advice of the advisors whose pointcut matches jp, in the given order.
// Advisors are expected to be sorted by precedence already. Placeholder advice is left out.
func Chain(advisors []types.Advisor, jp *types.JoinPoint) []types.Advice {
	var chain []types.Advice
	for _, a := range advisors {
		pc := a.GetPointcut()
		if pc == nil || !pc.Matches(jp) {
			continue
		}
		// 延迟实例化的切面：候选匹配之后，再按运行时条件判断是否执行
		if m, ok := a.(invocationMatcher); ok && a.IsLazy() && !m.MatchesInvocation(jp) {
			continue
		}
		if advice := a.GetAdvice(); !types.IsEmptyAdvice(advice) {
			chain = append(chain, advice)
		}
	}
	return chain
}

// Invoke runs target through the matching advice of advisors.
func Invoke(advisors []types.Advisor, jp *types.JoinPoint, target TargetFunc) (interface{}, error) {
	return NewInvocation(jp, Chain(advisors, jp), target).Proceed()
}
