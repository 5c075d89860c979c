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
	"sync"
	"sync/atomic"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/metadata"
)

var _ types.Advisor = (*InstantiationModelAwareAdvisor)(nil)

// InstantiationModelAwareAdvisor is the advisor produced for one advice-bearing operation.
//
// For lazily instantiated aspects the pointcut is the union of the per-clause pointcut and the
// declared pointcut until the aspect instance exists, and the declared pointcut alone afterwards.
// The advice is built on first use and cached, including the EmptyAdvice placeholder.
// InstantiationModelAwareAdvisor 感知实例化模型的增强器
type InstantiationModelAwareAdvisor struct {
	factory          *Factory
	op               metadata.Operation
	aif              types.AspectInstanceFactory
	declarationOrder int
	aspectName       string

	declaredPointcut types.Pointcut
	pointcut         types.Pointcut
	lazy             bool
	// materialized latches once the aspect instance was observed created
	materialized atomic.Bool

	mu     sync.Mutex
	advice types.Advice
}

func newAdvisor(factory *Factory, op metadata.Operation, declared types.Pointcut, aif types.AspectInstanceFactory,
	declarationOrder int, aspectName string) *InstantiationModelAwareAdvisor {
	a := &InstantiationModelAwareAdvisor{
		factory:          factory,
		op:               op,
		aif:              aif,
		declarationOrder: declarationOrder,
		aspectName:       aspectName,
		declaredPointcut: declared,
		pointcut:         declared,
	}
	md := aif.GetAspectMetadata()
	if md != nil && md.IsLazilyInstantiated() {
		a.lazy = true
		a.pointcut = &perTargetPointcut{
			advisor: a,
			union:   types.Union(md.PerClausePointcut, declared),
		}
	} else {
		a.advice = a.instantiateAdvice()
	}
	return a
}

// GetPointcut returns the current matching predicate.
func (a *InstantiationModelAwareAdvisor) GetPointcut() types.Pointcut {
	return a.pointcut
}

// GetDeclaredPointcut returns the pointcut declared on the operation.
func (a *InstantiationModelAwareAdvisor) GetDeclaredPointcut() types.Pointcut {
	return a.declaredPointcut
}

// GetAdvice returns the advice, building it under the advisor lock on first use.
func (a *InstantiationModelAwareAdvisor) GetAdvice() types.Advice {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.advice == nil {
		a.advice = a.instantiateAdvice()
	}
	return a.advice
}

func (a *InstantiationModelAwareAdvisor) instantiateAdvice() types.Advice {
	advice, err := a.factory.GetAdvice(a.op, a.declaredPointcut, a.aif, a.declarationOrder, a.aspectName)
	if err != nil {
		a.factory.logger().Printf("aspect %s: advice %s not built: %v", a.aspectName, a.op.Name, err)
	}
	if advice == nil {
		return types.EmptyAdvice
	}
	return advice
}

// IsLazy reports whether the backing aspect is materialized on demand.
func (a *InstantiationModelAwareAdvisor) IsLazy() bool {
	return a.lazy
}

// IsAdviceInstantiated reports whether the advice has been built.
func (a *InstantiationModelAwareAdvisor) IsAdviceInstantiated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.advice != nil
}

// IsMaterialized reports whether the backing aspect instance exists. Eager advisors always report true.
func (a *InstantiationModelAwareAdvisor) IsMaterialized() bool {
	if !a.lazy || a.materialized.Load() {
		return true
	}
	if aware, ok := a.aif.(types.MaterializationAware); ok && aware.IsMaterialized() {
		a.materialized.Store(true)
		return true
	}
	return false
}

// MatchesInvocation reports whether the advice runs at jp. A lazy advisor first creates the
// aspect instance when jp is inside the per-clause scope, then requires the instance to exist
// and the declared pointcut to match. Eager advisors use the declared pointcut.
func (a *InstantiationModelAwareAdvisor) MatchesInvocation(jp *types.JoinPoint) bool {
	if !a.lazy {
		return a.declaredPointcut.Matches(jp)
	}
	if !a.IsMaterialized() {
		if md := a.aif.GetAspectMetadata(); md != nil && md.PerClausePointcut != nil && md.PerClausePointcut.Matches(jp) {
			if _, err := a.aif.GetInstance(); err != nil {
				a.factory.logger().Printf("aspect %s: instance not created: %v", a.aspectName, err)
				return false
			}
		}
	}
	return a.IsMaterialized() && a.declaredPointcut.Matches(jp)
}

// GetAspectInstanceFactory returns the factory serving the aspect instance.
func (a *InstantiationModelAwareAdvisor) GetAspectInstanceFactory() types.AspectInstanceFactory {
	return a.aif
}

// GetOperation returns the operation the advisor was built for.
func (a *InstantiationModelAwareAdvisor) GetOperation() metadata.Operation {
	return a.op
}

func (a *InstantiationModelAwareAdvisor) GetAspectName() string {
	return a.aspectName
}

func (a *InstantiationModelAwareAdvisor) GetDeclarationOrder() int {
	return a.declarationOrder
}

func (a *InstantiationModelAwareAdvisor) GetOrder() int {
	return a.aif.GetOrder()
}

// IsBeforeAdvice is derived from the operation kind and never builds the advice.
func (a *InstantiationModelAwareAdvisor) IsBeforeAdvice() bool {
	return a.op.Kind.IsBefore()
}

// IsAfterAdvice is derived from the operation kind and never builds the advice.
func (a *InstantiationModelAwareAdvisor) IsAfterAdvice() bool {
	return a.op.Kind.IsAfter()
}

func (a *InstantiationModelAwareAdvisor) String() string {
	return fmt.Sprintf("InstantiationModelAwareAdvisor: expression [%s]; advice: %s.%s; instantiation model: %s",
		a.op.Expression, a.aspectName, a.op.Name, a.modelName())
}

func (a *InstantiationModelAwareAdvisor) modelName() string {
	if md := a.aif.GetAspectMetadata(); md != nil {
		return md.Model.String()
	}
	return types.Singleton.String()
}

// perTargetPointcut matches with the union pointcut until the aspect is materialized.
type perTargetPointcut struct {
	advisor *InstantiationModelAwareAdvisor
	union   types.Pointcut
}

func (p *perTargetPointcut) Matches(jp *types.JoinPoint) bool {
	if p.advisor.IsMaterialized() {
		return p.advisor.declaredPointcut.Matches(jp)
	}
	return p.union.Matches(jp)
}

func (p *perTargetPointcut) String() string {
	return fmt.Sprintf("perTarget(%s)", types.PointcutString(p.union))
}
