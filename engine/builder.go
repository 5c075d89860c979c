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

// Package engine discovers the aspects of a component registry and builds their advisors.
package engine

import (
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/rulego/aop/advisor"
	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/pointcut"
)

// AdvisorsBuilder scans a registry for aspects once and serves their advisors afterwards.
//
// The aspect names are published once, together with the per-aspect caches: advisors of
// singleton aspects held by singleton components, and instance factories for every other
// aspect, whose advisors are rebuilt per call. Discovery failures of one aspect are logged
// and do not affect the others.
//
// AdvisorsFor additionally keeps one advisor set per runtime scope for the aspects that are
// not cached, so that each scope gets its own aspect instance.
// AdvisorsBuilder 切面增强器构建器
type AdvisorsBuilder struct {
	registry types.ComponentRegistry
	factory  *advisor.Factory
	patterns pointcut.NamePatterns
	logger   types.Logger

	mu          sync.Mutex
	aspectNames atomic.Pointer[[]string]
	// written under mu before aspectNames is published, read only afterwards
	advisorsCache map[string][]types.Advisor
	factoryCache  map[string]types.AspectInstanceFactory
	// scopeKey -> []types.Advisor
	scoped sync.Map
}

// scopeKey identifies the advisors of one aspect within one runtime scope.
type scopeKey struct {
	aspectName string
	scope      interface{}
}

// NewAdvisorsBuilder creates a builder over registry. Invalid include patterns are reported here.
func NewAdvisorsBuilder(registry types.ComponentRegistry, factory *advisor.Factory) (*AdvisorsBuilder, error) {
	config := factory.Config()
	patterns, err := pointcut.NewNamePatterns(config.IncludePatterns)
	if err != nil {
		return nil, err
	}
	return &AdvisorsBuilder{
		registry: registry,
		factory:  factory,
		patterns: patterns,
		logger:   config.Logger,
	}, nil
}

// IsEligible reports whether the named component may be an aspect.
func (b *AdvisorsBuilder) IsEligible(name string) bool {
	return b.patterns.Match(name)
}

// AspectNames returns the published aspect names, nil before the first successful scan.
func (b *AdvisorsBuilder) AspectNames() []string {
	if names := b.aspectNames.Load(); names != nil {
		return append([]string{}, *names...)
	}
	return nil
}

// BuildAllAdvisors returns the advisors of every aspect in the registry, in discovery order.
func (b *AdvisorsBuilder) BuildAllAdvisors() ([]types.Advisor, error) {
	if names := b.aspectNames.Load(); names != nil {
		return b.cachedAdvisors(*names), nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if names := b.aspectNames.Load(); names != nil {
		return b.cachedAdvisors(*names), nil
	}

	names, advisorsCache, factoryCache, advisors, err := b.scan()
	if err != nil {
		return nil, err
	}
	b.advisorsCache = advisorsCache
	b.factoryCache = factoryCache
	b.aspectNames.Store(&names)
	return advisors, nil
}

func (b *AdvisorsBuilder) scan() ([]string, map[string][]types.Advisor, map[string]types.AspectInstanceFactory, []types.Advisor, error) {
	resolver := b.factory.Resolver()
	names := []string{}
	advisorsCache := make(map[string][]types.Advisor)
	factoryCache := make(map[string]types.AspectInstanceFactory)
	var result []types.Advisor

	for _, name := range b.registry.CandidateNames() {
		if !b.IsEligible(name) {
			continue
		}
		t, ok := b.registry.TypeOf(name)
		if !ok || t == nil || !resolver.IsAspect(t) {
			continue
		}
		md, err := resolver.Resolve(name, t)
		if err != nil {
			b.logger.Printf("skip aspect %s: %v", name, err)
			continue
		}

		var aif types.AspectInstanceFactory
		if md.Model == types.Singleton {
			aif, err = advisor.NewRegistryInstanceFactory(b.registry, resolver, name)
		} else {
			if b.registry.IsSingleton(name) {
				return nil, nil, nil, nil, &types.IllegalStateError{
					AspectName: name,
					Reason:     "component is singleton scoped but the aspect instantiation model is " + md.Model.String(),
				}
			}
			aif, err = advisor.NewPrototypeInstanceFactory(b.registry, resolver, name)
		}
		if err != nil {
			b.logger.Printf("skip aspect %s: %v", name, err)
			continue
		}
		advisors, err := b.factory.GetAdvisors(aif)
		if err != nil {
			b.logger.Printf("skip aspect %s: %v", name, err)
			continue
		}

		names = append(names, name)
		if md.Model == types.Singleton && b.registry.IsSingleton(name) {
			advisorsCache[name] = advisors
		} else {
			factoryCache[name] = aif
		}
		result = append(result, advisors...)
	}
	return names, advisorsCache, factoryCache, result, nil
}

func (b *AdvisorsBuilder) cachedAdvisors(names []string) []types.Advisor {
	var result []types.Advisor
	for _, name := range names {
		if advisors, ok := b.advisorsCache[name]; ok {
			result = append(result, advisors...)
			continue
		}
		aif, ok := b.factoryCache[name]
		if !ok {
			continue
		}
		advisors, err := b.factory.GetAdvisors(aif)
		if err != nil {
			b.logger.Printf("skip aspect %s: %v", name, err)
			continue
		}
		result = append(result, advisors...)
	}
	return result
}

// AdvisorsFor returns the advisors of every aspect in the registry for the runtime scope of jp,
// in discovery order. Aspects that are not cached get one advisor set, and so one aspect
// instance, per scope: the target for pertarget, the proxy for perthis, the target type for
// pertypewithin, the target for singleton aspects held by prototype components.
// AdvisorsFor 按连接点运行时作用域获取增强器
func (b *AdvisorsBuilder) AdvisorsFor(jp *types.JoinPoint) ([]types.Advisor, error) {
	names := b.aspectNames.Load()
	if names == nil {
		if _, err := b.BuildAllAdvisors(); err != nil {
			return nil, err
		}
		names = b.aspectNames.Load()
	}
	var result []types.Advisor
	for _, name := range *names {
		if advisors, ok := b.advisorsCache[name]; ok {
			result = append(result, advisors...)
			continue
		}
		aif, ok := b.factoryCache[name]
		if !ok {
			continue
		}
		advisors, err := b.scopedAdvisors(name, aif, jp)
		if err != nil {
			b.logger.Printf("skip aspect %s: %v", name, err)
			continue
		}
		result = append(result, advisors...)
	}
	return result, nil
}

// Evict drops the advisor sets, and with them the aspect instances, kept for scope.
func (b *AdvisorsBuilder) Evict(scope interface{}) {
	if !isComparable(scope) {
		return
	}
	b.scoped.Range(func(key, value interface{}) bool {
		if key.(scopeKey).scope == scope {
			b.scoped.Delete(key)
		}
		return true
	})
}

func (b *AdvisorsBuilder) scopedAdvisors(name string, aif types.AspectInstanceFactory, jp *types.JoinPoint) ([]types.Advisor, error) {
	scope := scopeOf(aif.GetAspectMetadata(), jp)
	if !isComparable(scope) {
		return b.factory.GetAdvisors(aif)
	}
	key := scopeKey{aspectName: name, scope: scope}
	if advisors, ok := b.scoped.Load(key); ok {
		return advisors.([]types.Advisor), nil
	}
	advisors, err := b.factory.GetAdvisors(aif)
	if err != nil {
		return nil, err
	}
	// 并发构建时只保留先存入的一组，未使用的增强器尚未创建切面实例
	actual, _ := b.scoped.LoadOrStore(key, advisors)
	return actual.([]types.Advisor), nil
}

// scopeOf returns the runtime scope an aspect instance is bound to.
func scopeOf(md *types.AspectMetadata, jp *types.JoinPoint) interface{} {
	if jp == nil {
		return nil
	}
	switch md.Model {
	case types.PerThis:
		return jp.This
	case types.PerTypeWithin:
		return jp.TypeName()
	default:
		return jp.Target
	}
}

// isComparable reports whether v can be used as a map key without panicking.
func isComparable(v interface{}) bool {
	return v == nil || reflect.ValueOf(v).Comparable()
}
