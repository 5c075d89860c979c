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

// Package aop turns declarative aspects into ordered chains of advice applied around
// matched operations.
//
// # Usage
//
// Declare an aspect by embedding types.AspectMeta. Exported fields of an advice function type
// carry advice, the `pointcut` tag selects the join points they apply to:
//
//	type LoggingAspect struct {
//		types.AspectMeta `order:"0"`
//		Services         types.PointcutDef `pointcut:"within('service.*Service')"`
//		LogIn            types.BeforeFunc  `pointcut:"Services()"`
//		LogOut           types.AfterFunc   `pointcut:"Services()"`
//	}
//
// Register aspects in a component registry
//
//	registry := engine.NewComponentRegistry()
//	_ = registry.Register("logging", &LoggingAspect{LogIn: logIn, LogOut: logOut})
//
// Create a weaver
//
//	weaver, err := aop.New(registry, types.WithLogger(logger))
//
// Find the ordered advisors of a join point
//
//	advisors, err := weaver.FindEligibleAdvisors(&types.JoinPoint{Target: orderService, Method: "GetOrder"})
//
// Or run a target function through them
//
//	result, err := weaver.Invoke(jp, func(args ...interface{}) (interface{}, error) {
//		return orderService.GetOrder(args[0].(int))
//	})
package aop

import (
	"github.com/rulego/aop/advisor"
	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/engine"
	"github.com/rulego/aop/order"
)

// Weaver builds, filters and sorts the advisors of a registry.
// Weaver 切面织入器
type Weaver struct {
	config  types.Config
	factory *advisor.Factory
	builder *engine.AdvisorsBuilder
}

// New creates a weaver over registry.
func New(registry types.ComponentRegistry, opts ...types.Option) (*Weaver, error) {
	config := types.NewConfig(opts...)
	factory := advisor.NewFactory(config)
	builder, err := engine.NewAdvisorsBuilder(registry, factory)
	if err != nil {
		return nil, err
	}
	return &Weaver{config: factory.Config(), factory: factory, builder: builder}, nil
}

// Config returns the weaver configuration.
func (w *Weaver) Config() types.Config {
	return w.config
}

// Factory returns the advisor factory.
func (w *Weaver) Factory() *advisor.Factory {
	return w.factory
}

// BuildAllAdvisors returns the advisors of every aspect in the registry.
func (w *Weaver) BuildAllAdvisors() ([]types.Advisor, error) {
	return w.builder.BuildAllAdvisors()
}

// SortByPrecedence returns advisors in invocation order.
func (w *Weaver) SortByPrecedence(advisors []types.Advisor) []types.Advisor {
	return order.SortWithLogger(advisors, w.config.Logger)
}

// FindEligibleAdvisors returns the advisors matching jp, in invocation order.
// Lazily instantiated aspects keep one instance per runtime scope of jp, see Release.
func (w *Weaver) FindEligibleAdvisors(jp *types.JoinPoint) ([]types.Advisor, error) {
	advisors, err := w.builder.AdvisorsFor(jp)
	if err != nil {
		return nil, err
	}
	var eligible []types.Advisor
	for _, a := range advisors {
		if pc := a.GetPointcut(); pc != nil && pc.Matches(jp) {
			eligible = append(eligible, a)
		}
	}
	return w.SortByPrecedence(eligible), nil
}

// Invoke runs target through the advice eligible for jp.
func (w *Weaver) Invoke(jp *types.JoinPoint, target advisor.TargetFunc) (interface{}, error) {
	eligible, err := w.FindEligibleAdvisors(jp)
	if err != nil {
		return nil, err
	}
	return advisor.Invoke(eligible, jp, target)
}

// Release drops the aspect instances kept for scope, e.g. a target that is no longer used.
func (w *Weaver) Release(scope interface{}) {
	w.builder.Evict(scope)
}
