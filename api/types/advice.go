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
	"fmt"
	"reflect"
)

// AdviceKind classifies an advice-bearing operation.
// AdviceKind 增强类型
type AdviceKind int

const (
	// KindUnknown is never produced by a successful classification.
	KindUnknown AdviceKind = iota
	// KindBefore runs before the matched operation.
	KindBefore
	// KindAfter runs after the matched operation, whatever the outcome.
	KindAfter
	// KindAfterReturning runs after the matched operation returned without error.
	KindAfterReturning
	// KindAfterThrowing runs after the matched operation returned an error.
	KindAfterThrowing
	// KindAround wraps the matched operation.
	KindAround
	// KindPointcutOnly declares a named pointcut and produces no advisor.
	KindPointcutOnly
)

var adviceKindNames = map[AdviceKind]string{
	KindBefore:         "before",
	KindAfter:          "after",
	KindAfterReturning: "afterReturning",
	KindAfterThrowing:  "afterThrowing",
	KindAround:         "around",
	KindPointcutOnly:   "pointcut",
}

var adviceKindsByName = map[string]AdviceKind{
	"before":         KindBefore,
	"after":          KindAfter,
	"afterReturning": KindAfterReturning,
	"afterreturning": KindAfterReturning,
	"afterThrowing":  KindAfterThrowing,
	"afterthrowing":  KindAfterThrowing,
	"around":         KindAround,
	"pointcut":       KindPointcutOnly,
}

func (k AdviceKind) String() string {
	if name, ok := adviceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("AdviceKind(%d)", int(k))
}

// ParseAdviceKind returns the kind named by an `aop` tag value.
func ParseAdviceKind(name string) (AdviceKind, bool) {
	k, ok := adviceKindsByName[name]
	return k, ok
}

// IsBefore reports whether the kind runs on the way in.
func (k AdviceKind) IsBefore() bool {
	return k == KindBefore
}

// IsAfter reports whether the kind belongs to the after family.
func (k AdviceKind) IsAfter() bool {
	return k == KindAfter || k == KindAfterReturning || k == KindAfterThrowing
}

// BeforeFunc is the advice executed before the matched operation. A non nil error stops the invocation.
// BeforeFunc 目标方法执行之前的增强点，返回错误则终止执行
type BeforeFunc func(jp *JoinPoint) error

// AfterFunc is the advice executed after the matched operation, like a finally block.
// AfterFunc 目标方法执行之后的增强点，无论是否出错都会执行
type AfterFunc func(jp *JoinPoint, result interface{}, err error)

// AfterReturningFunc is the advice executed after the matched operation returned normally.
// AfterReturningFunc 目标方法正常返回之后的增强点
type AfterReturningFunc func(jp *JoinPoint, result interface{})

// AfterThrowingFunc is the advice executed after the matched operation returned an error.
// AfterThrowingFunc 目标方法返回错误之后的增强点
type AfterThrowingFunc func(jp *JoinPoint, err error)

// AroundFunc wraps the matched operation. It decides whether and how to call Proceed.
// AroundFunc 环绕增强点，由增强逻辑决定是否调用 Proceed
type AroundFunc func(pjp ProceedingJoinPoint) (interface{}, error)

// PointcutDef declares a named pointcut. It carries no behaviour.
// PointcutDef 声明一个可被引用的命名切入点
type PointcutDef struct{}

// AdviceFuncKinds maps the advice function types to the kind they imply.
var AdviceFuncKinds = map[reflect.Type]AdviceKind{
	reflect.TypeOf(BeforeFunc(nil)):         KindBefore,
	reflect.TypeOf(AfterFunc(nil)):          KindAfter,
	reflect.TypeOf(AfterReturningFunc(nil)): KindAfterReturning,
	reflect.TypeOf(AfterThrowingFunc(nil)):  KindAfterThrowing,
	reflect.TypeOf(AroundFunc(nil)):         KindAround,
	reflect.TypeOf(PointcutDef{}):           KindPointcutOnly,
}

// MethodInvocation is one in-flight call travelling through an interceptor chain.
type MethodInvocation interface {
	// JoinPoint returns the join point being executed.
	JoinPoint() *JoinPoint
	// Proceed calls the next interceptor, or the target at the end of the chain.
	Proceed() (interface{}, error)
}

// ProceedingJoinPoint is what around advice receives.
type ProceedingJoinPoint interface {
	MethodInvocation
	// ProceedWith replaces the arguments before proceeding.
	ProceedWith(args ...interface{}) (interface{}, error)
}

// Advice is the executable part of an advisor.
// Advice 增强逻辑，以拦截器的形式执行
type Advice interface {
	// Kind returns the advice kind the advice was built for.
	Kind() AdviceKind
	// Invoke runs the advice around the invocation.
	Invoke(mi MethodInvocation) (interface{}, error)
}

type emptyAdvice struct{}

func (emptyAdvice) Kind() AdviceKind { return KindUnknown }

func (emptyAdvice) Invoke(mi MethodInvocation) (interface{}, error) {
	return mi.Proceed()
}

// EmptyAdvice is the canonical placeholder cached when an operation produced no advice.
// EmptyAdvice 无增强逻辑时缓存的占位对象
var EmptyAdvice Advice = emptyAdvice{}

// IsEmptyAdvice reports whether advice is the placeholder.
func IsEmptyAdvice(advice Advice) bool {
	if advice == nil {
		return true
	}
	_, ok := advice.(emptyAdvice)
	return ok
}
