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

// Package advisor turns resolved aspects into advisors, and advisors into interceptor chains.
//
// A Factory reads the operations of an aspect in declaration order and builds one
// InstantiationModelAwareAdvisor per advice-bearing operation. Named pointcuts
// (types.PointcutDef fields) are parsed first so that advice expressions can call them by name.
//
//	factory := advisor.NewFactory(types.NewConfig())
//	aif, _ := advisor.NewSingletonInstanceFactory(factory.Resolver(), "logging", &LoggingAspect{})
//	advisors, _ := factory.GetAdvisors(aif)
package advisor

import (
	"errors"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/metadata"
	"github.com/rulego/aop/pointcut"
)

var errMissingPointcut = errors.New("advice declares no pointcut")

// Factory builds advisors from aspect instance factories. It is safe for concurrent use.
// Factory 增强器工厂
type Factory struct {
	config   types.Config
	parser   types.PointcutParser
	resolver *metadata.Resolver
}

// NewFactory creates a factory. The pointcut parser defaults to pointcut.NewParser(config).
func NewFactory(config types.Config) *Factory {
	if config.Logger == nil {
		config.Logger = types.NopLogger()
	}
	parser := config.PointcutParser
	if parser == nil {
		parser = pointcut.NewParser(config)
	}
	return &Factory{
		config:   config,
		parser:   parser,
		resolver: metadata.NewResolver(parser),
	}
}

// Resolver returns the metadata resolver the factory reads aspects with.
func (f *Factory) Resolver() *metadata.Resolver {
	return f.resolver
}

// Config returns the factory configuration.
func (f *Factory) Config() types.Config {
	return f.config
}

func (f *Factory) logger() types.Logger {
	return f.config.Logger
}

// GetAdvisors returns one advisor per advice-bearing operation of the aspect, in declaration order.
// Misclassified operations and operations whose pointcut does not compile are logged and skipped.
// The factory is decorated so that the aspect instance is created once, on first use.
func (f *Factory) GetAdvisors(aif types.AspectInstanceFactory) ([]types.Advisor, error) {
	md := aif.GetAspectMetadata()
	if md == nil {
		return nil, &types.InvalidAspectError{AspectName: "<unknown>", TypeName: "<nil>", Reason: "missing aspect metadata"}
	}
	lazyAif := NewLazySingletonInstanceFactory(aif)
	ops := f.resolver.Operations(md.AspectName, md.AspectType)
	named := f.namedPointcuts(md.AspectName, ops)

	var advisors []types.Advisor
	for _, op := range ops {
		if op.Err != nil {
			f.logger().Printf("aspect %s: skip operation %s: %v", md.AspectName, op.Name, op.Err)
			continue
		}
		if !op.IsAdviceBearing() {
			continue
		}
		declared, err := f.getPointcut(op, named)
		if err != nil {
			f.logger().Printf("aspect %s: skip advice %s: %v", md.AspectName, op.Name, err)
			continue
		}
		advisors = append(advisors, newAdvisor(f, op, declared, lazyAif, len(advisors), md.AspectName))
	}
	return advisors, nil
}

// GetAdvisor builds the advisor of a single operation. It returns nil and no error when the
// operation is not advice-bearing. Like GetAdvisors, the aspect instance is created once, on first use.
func (f *Factory) GetAdvisor(op metadata.Operation, aif types.AspectInstanceFactory, declarationOrder int, aspectName string) (types.Advisor, error) {
	if op.Err != nil {
		return nil, op.Err
	}
	if !op.IsAdviceBearing() {
		return nil, nil
	}
	md := aif.GetAspectMetadata()
	if md == nil {
		return nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: "<nil>", Reason: "missing aspect metadata"}
	}
	named := f.namedPointcuts(aspectName, f.resolver.Operations(aspectName, md.AspectType))
	declared, err := f.getPointcut(op, named)
	if err != nil {
		return nil, err
	}
	return newAdvisor(f, op, declared, NewLazySingletonInstanceFactory(aif), declarationOrder, aspectName), nil
}

// GetAdvice builds the executable advice of op. It returns nil and no error for pointcut-only
// operations.
func (f *Factory) GetAdvice(op metadata.Operation, declared types.Pointcut, aif types.AspectInstanceFactory,
	declarationOrder int, aspectName string) (types.Advice, error) {
	if op.Err != nil {
		return nil, op.Err
	}
	if op.Kind == types.KindPointcutOnly {
		return nil, nil
	}
	if md := aif.GetAspectMetadata(); md == nil || !f.resolver.IsAspect(md.AspectType) {
		return nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: "<unknown>", Reason: "advice declared outside an aspect"}
	}
	strategy, ok := adviceStrategies[op.Kind]
	if !ok {
		return nil, &types.AmbiguousAdviceClassificationError{AspectName: aspectName, Operation: op.Name, Reason: "no advice for kind " + op.Kind.String()}
	}
	return strategy(adviceMethod{
		op:               op,
		pointcut:         declared,
		aif:              aif,
		declarationOrder: declarationOrder,
		aspectName:       aspectName,
	}), nil
}

// getPointcut compiles the expression declared on op.
func (f *Factory) getPointcut(op metadata.Operation, named types.NamedPointcuts) (types.Pointcut, error) {
	if op.Expression == "" {
		return nil, &types.InvalidPointcutError{Expression: op.Expression, Err: errMissingPointcut}
	}
	return f.parser.Parse(op.Expression, named)
}

// namedPointcuts parses the pointcut-only operations. Every name is registered before parsing,
// so named pointcuts can reference each other regardless of declaration order.
func (f *Factory) namedPointcuts(aspectName string, ops []metadata.Operation) types.NamedPointcuts {
	named := types.NamedPointcuts{}
	for _, op := range ops {
		if op.IsPointcutOnly() {
			named[op.Name] = nil
		}
	}
	for _, op := range ops {
		if !op.IsPointcutOnly() {
			continue
		}
		pc, err := f.parser.Parse(op.Expression, named)
		if err != nil {
			f.logger().Printf("aspect %s: named pointcut %s: %v", aspectName, op.Name, err)
			continue
		}
		named[op.Name] = pc
	}
	return named
}
