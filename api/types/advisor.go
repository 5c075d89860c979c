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
	"reflect"
	"sync"
)

// PrecedenceInfo is the ordering metadata of an advisor.
// It can be read without building the advice.
type PrecedenceInfo interface {
	// GetAspectName returns the name of the owning aspect.
	GetAspectName() string
	// GetDeclarationOrder returns the 0-based index of the advice within its aspect.
	GetDeclarationOrder() int
	// GetOrder returns the cross aspect order, the smaller the value, the higher the priority.
	GetOrder() int
	// IsBeforeAdvice reports whether the advice is before advice.
	IsBeforeAdvice() bool
	// IsAfterAdvice reports whether the advice belongs to the after family.
	IsAfterAdvice() bool
}

// Advisor pairs a pointcut with an advice plus ordering metadata.
// Advisor 增强器：切入点 + 增强逻辑 + 排序元数据
type Advisor interface {
	PrecedenceInfo
	// GetPointcut returns the current matching predicate.
	GetPointcut() Pointcut
	// GetAdvice returns the advice, building it on first use.
	GetAdvice() Advice
	// IsLazy reports whether the backing aspect is materialized on demand.
	IsLazy() bool
	// IsAdviceInstantiated reports whether the advice has been built.
	IsAdviceInstantiated() bool
}

// AspectInstanceFactory supplies the aspect instance backing a set of advisors.
// AspectInstanceFactory 切面实例工厂
type AspectInstanceFactory interface {
	// GetInstance returns the aspect instance, creating it if needed.
	GetInstance() (interface{}, error)
	// GetOrder returns the order of the aspect.
	GetOrder() int
	// GetAspectMetadata returns the resolved aspect metadata.
	GetAspectMetadata() *AspectMetadata
	// GetCreationMutex returns the lock guarding instance creation, or nil when none is needed.
	GetCreationMutex() sync.Locker
}

// MaterializationAware is implemented by lazy instance factories.
type MaterializationAware interface {
	// IsMaterialized reports whether the aspect instance has been created.
	IsMaterialized() bool
}

// ComponentRegistry supplies aspect candidates. It is owned by the embedding application.
// ComponentRegistry 组件注册表，提供候选切面
type ComponentRegistry interface {
	// CandidateNames enumerates component names eligible to be aspects.
	CandidateNames() []string
	// TypeOf returns the type of the named component.
	TypeOf(name string) (reflect.Type, bool)
	// IsSingleton reports whether the registry keeps a single instance for the name.
	IsSingleton(name string) bool
	// Get returns the named component instance.
	Get(name string) (interface{}, error)
}

// SingletonMutexProvider is implemented by registries exposing their singleton creation lock.
type SingletonMutexProvider interface {
	SingletonMutex() sync.Locker
}
