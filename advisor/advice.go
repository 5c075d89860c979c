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
	"fmt"
	"reflect"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/metadata"
	reflectutil "github.com/rulego/aop/utils/reflect"
)

// adviceStrategies maps every advice kind to the interceptor built for it.
var adviceStrategies = map[types.AdviceKind]func(m adviceMethod) types.Advice{
	types.KindBefore:         func(m adviceMethod) types.Advice { return &beforeAdvice{m} },
	types.KindAfter:          func(m adviceMethod) types.Advice { return &afterAdvice{m} },
	types.KindAfterReturning: func(m adviceMethod) types.Advice { return &afterReturningAdvice{m} },
	types.KindAfterThrowing:  func(m adviceMethod) types.Advice { return &afterThrowingAdvice{m} },
	types.KindAround:         func(m adviceMethod) types.Advice { return &aroundAdvice{m} },
}

// adviceMethod binds an operation to the aspect instance factory serving its function.
type adviceMethod struct {
	op               metadata.Operation
	pointcut         types.Pointcut
	aif              types.AspectInstanceFactory
	declarationOrder int
	aspectName       string
}

// bind returns the advice function read from the current aspect instance, converted to the
// type of its kind. A nil function is returned as an invalid value.
func (m *adviceMethod) bind() (reflect.Value, error) {
	instance, err := m.aif.GetInstance()
	if err != nil {
		return reflect.Value{}, fmt.Errorf("aspect %s: instantiate: %w", m.aspectName, err)
	}
	fv, err := reflectutil.FieldValue(instance, m.op.Index)
	if err != nil {
		return reflect.Value{}, fmt.Errorf("aspect %s: advice %s: %w", m.aspectName, m.op.Name, err)
	}
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return reflect.Value{}, nil
	}
	funcType, _ := metadata.AdviceFuncType(m.op.Kind)
	return fv.Convert(funcType), nil
}

func (m *adviceMethod) Kind() types.AdviceKind {
	return m.op.Kind
}

func (m *adviceMethod) GetAspectName() string {
	return m.aspectName
}

func (m *adviceMethod) GetDeclarationOrder() int {
	return m.declarationOrder
}

func (m *adviceMethod) GetOrder() int {
	return m.aif.GetOrder()
}

func (m *adviceMethod) IsBeforeAdvice() bool {
	return m.op.Kind.IsBefore()
}

func (m *adviceMethod) IsAfterAdvice() bool {
	return m.op.Kind.IsAfter()
}

func (m *adviceMethod) String() string {
	return fmt.Sprintf("%s advice %s.%s", m.op.Kind, m.aspectName, m.op.Name)
}

type beforeAdvice struct {
	adviceMethod
}

func (a *beforeAdvice) Invoke(mi types.MethodInvocation) (interface{}, error) {
	fv, err := a.bind()
	if err != nil {
		return nil, err
	}
	if fv.IsValid() {
		if err := fv.Interface().(types.BeforeFunc)(mi.JoinPoint()); err != nil {
			return nil, err
		}
	}
	return mi.Proceed()
}

type afterAdvice struct {
	adviceMethod
}

func (a *afterAdvice) Invoke(mi types.MethodInvocation) (result interface{}, err error) {
	fv, bindErr := a.bind()
	if bindErr != nil {
		return nil, bindErr
	}
	defer func() {
		if fv.IsValid() {
			fv.Interface().(types.AfterFunc)(mi.JoinPoint(), result, err)
		}
	}()
	return mi.Proceed()
}

type afterReturningAdvice struct {
	adviceMethod
}

func (a *afterReturningAdvice) Invoke(mi types.MethodInvocation) (interface{}, error) {
	fv, err := a.bind()
	if err != nil {
		return nil, err
	}
	result, err := mi.Proceed()
	if err == nil && fv.IsValid() {
		fv.Interface().(types.AfterReturningFunc)(mi.JoinPoint(), result)
	}
	return result, err
}

type afterThrowingAdvice struct {
	adviceMethod
}

func (a *afterThrowingAdvice) Invoke(mi types.MethodInvocation) (interface{}, error) {
	fv, err := a.bind()
	if err != nil {
		return nil, err
	}
	result, err := mi.Proceed()
	if err != nil && fv.IsValid() {
		fv.Interface().(types.AfterThrowingFunc)(mi.JoinPoint(), err)
	}
	return result, err
}

type aroundAdvice struct {
	adviceMethod
}

func (a *aroundAdvice) Invoke(mi types.MethodInvocation) (interface{}, error) {
	fv, err := a.bind()
	if err != nil {
		return nil, err
	}
	if !fv.IsValid() {
		return mi.Proceed()
	}
	return fv.Interface().(types.AroundFunc)(proceedingJoinPoint(mi))
}

// proceedingJoinPoint adapts mi for around advice.
func proceedingJoinPoint(mi types.MethodInvocation) types.ProceedingJoinPoint {
	if pjp, ok := mi.(types.ProceedingJoinPoint); ok {
		return pjp
	}
	return &proceedingAdapter{MethodInvocation: mi}
}

type proceedingAdapter struct {
	types.MethodInvocation
}

func (p *proceedingAdapter) ProceedWith(args ...interface{}) (interface{}, error) {
	p.JoinPoint().Args = args
	return p.Proceed()
}
