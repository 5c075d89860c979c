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

package test

import (
	"github.com/rulego/aop/api/types"
)

// OrderService is a target used by the fixture pointcuts.
type OrderService struct {
	Name string
}

// GetOrder returns a fake order.
func (s *OrderService) GetOrder(id int) (string, error) {
	return s.Name, nil
}

// UserRepository is a target no fixture service pointcut matches.
type UserRepository struct{}

// LoggingAspect 日志切面：before 与 after 各一个
type LoggingAspect struct {
	types.AspectMeta `order:"0"`
	Services         types.PointcutDef `pointcut:"within('test.*Service')"`
	LogIn            types.BeforeFunc  `pointcut:"Services()"`
	LogOut           types.AfterFunc   `pointcut:"Services()"`
	Recorder         *Recorder
}

// NewLoggingAspect binds the advice to recorder.
func NewLoggingAspect(recorder *Recorder) *LoggingAspect {
	a := &LoggingAspect{Recorder: recorder}
	a.LogIn = func(jp *types.JoinPoint) error {
		recorder.Add("logging.before:" + jp.Method)
		return nil
	}
	a.LogOut = func(jp *types.JoinPoint, result interface{}, err error) {
		recorder.Add("logging.after:" + jp.Method)
	}
	return a
}

// SecurityAspect has a single before advice.
type SecurityAspect struct {
	types.AspectMeta `order:"0"`
	Check            types.BeforeFunc `pointcut:"within('test.*Service')"`
}

// NewSecurityAspect binds the advice to recorder.
func NewSecurityAspect(recorder *Recorder) *SecurityAspect {
	return &SecurityAspect{Check: func(jp *types.JoinPoint) error {
		recorder.Add("security.before:" + jp.Method)
		return nil
	}}
}

// TxAspect uses every advice kind, declared in a fixed order.
type TxAspect struct {
	types.AspectMeta `order:"5"`
	Begin            types.BeforeFunc         `pointcut:"true"`
	Wrap             types.AroundFunc         `pointcut:"true"`
	Commit           types.AfterReturningFunc `pointcut:"true"`
	Rollback         types.AfterThrowingFunc  `pointcut:"true"`
	Cleanup          types.AfterFunc          `pointcut:"true"`
}

// NewTxAspect binds the advice to recorder.
func NewTxAspect(recorder *Recorder) *TxAspect {
	return &TxAspect{
		Begin: func(jp *types.JoinPoint) error {
			recorder.Add("tx.begin")
			return nil
		},
		Wrap: func(pjp types.ProceedingJoinPoint) (interface{}, error) {
			recorder.Add("tx.around.in")
			result, err := pjp.Proceed()
			recorder.Add("tx.around.out")
			return result, err
		},
		Commit: func(jp *types.JoinPoint, result interface{}) {
			recorder.Add("tx.commit")
		},
		Rollback: func(jp *types.JoinPoint, err error) {
			recorder.Add("tx.rollback:" + err.Error())
		},
		Cleanup: func(jp *types.JoinPoint, result interface{}, err error) {
			recorder.Add("tx.cleanup")
		},
	}
}

// PerTargetAspect is materialized per target instance.
type PerTargetAspect struct {
	types.AspectMeta `perclause:"pertarget(within('test.OrderService'))" order:"20"`
	Trace            types.BeforeFunc `pointcut:"method == 'GetOrder'"`
}

// NewPerTargetAspect binds the advice to recorder.
func NewPerTargetAspect(recorder *Recorder) *PerTargetAspect {
	return &PerTargetAspect{Trace: func(jp *types.JoinPoint) error {
		recorder.Add("pertarget.before:" + jp.Method)
		return nil
	}}
}

// PerThisAspect is materialized per proxy instance.
type PerThisAspect struct {
	types.AspectMeta `perclause:"perthis(this != nil)"`
	Trace            types.AfterReturningFunc `pointcut:"true"`
}

// PerTypeWithinAspect is materialized per enclosing type.
type PerTypeWithinAspect struct {
	types.AspectMeta `perclause:"pertypewithin(test.Order*)"`
	Trace            types.BeforeFunc `pointcut:"true"`
}

// PerCflowAspect uses an instantiation model that is not supported.
type PerCflowAspect struct {
	types.AspectMeta `perclause:"percflow(execution('**.Get*'))"`
	Trace            types.BeforeFunc `pointcut:"true"`
}

// PrecedenceAspect declares precedence, which is not supported.
type PrecedenceAspect struct {
	types.AspectMeta `precedence:"SecurityAspect, LoggingAspect"`
	Trace            types.BeforeFunc `pointcut:"true"`
}

// AuditAspect inherits the LoggingAspect marker and operations.
type AuditAspect struct {
	LoggingAspect
	Audit types.AfterReturningFunc `pointcut:"Services() && method startsWith 'Get'"`
}

// OrderedAspect computes its order instead of declaring it.
type OrderedAspect struct {
	types.AspectMeta
	Trace types.BeforeFunc `pointcut:"true"`
	order int
}

// NewOrderedAspect creates an aspect reporting order.
func NewOrderedAspect(order int) *OrderedAspect {
	return &OrderedAspect{order: order, Trace: func(*types.JoinPoint) error { return nil }}
}

func (a *OrderedAspect) Order() int {
	return a.order
}

// MixedAspect mixes valid, misclassified and pointcut-only operations.
type MixedAspect struct {
	types.AspectMeta
	First     types.BeforeFunc                `pointcut:"true"`
	Unknown   func(jp *types.JoinPoint) error `aop:"beforeish" pointcut:"true"`
	Conflict  types.BeforeFunc                `aop:"after" pointcut:"true"`
	NoKind    string                          `pointcut:"true"`
	Reads     types.PointcutDef               `pointcut:"method startsWith 'Get'"`
	Plain     func(jp *types.JoinPoint) error `aop:"before" pointcut:"Reads()"`
	Broken    types.AfterFunc                 `pointcut:"method =="`
	Missing   types.AfterFunc
	Last      types.AfterThrowingFunc         `pointcut:"Reads"`
	NotAdvice int
}

// PlainStruct carries no aspect marker.
type PlainStruct struct {
	Check types.BeforeFunc `pointcut:"true"`
}
