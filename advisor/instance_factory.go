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
	"sync"
	"sync/atomic"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/metadata"
)

var (
	_ types.AspectInstanceFactory = (*SingletonInstanceFactory)(nil)
	_ types.AspectInstanceFactory = (*RegistryInstanceFactory)(nil)
	_ types.AspectInstanceFactory = (*PrototypeInstanceFactory)(nil)
	_ types.AspectInstanceFactory = (*LazySingletonInstanceFactory)(nil)
	_ types.MaterializationAware  = (*LazySingletonInstanceFactory)(nil)
)

// orderOf returns the declared order, else the instance's own Order(), else LowestPrecedence.
func orderOf(md *types.AspectMetadata, instance interface{}) int {
	if md != nil && md.Order != nil {
		return *md.Order
	}
	if ordered, ok := instance.(types.Ordered); ok {
		return ordered.Order()
	}
	return types.LowestPrecedence
}

// SingletonInstanceFactory serves an already created aspect instance.
// SingletonInstanceFactory 持有已创建的单例切面实例
type SingletonInstanceFactory struct {
	instance interface{}
	metadata *types.AspectMetadata
}

// NewSingletonInstanceFactory resolves the metadata of instance and wraps it.
func NewSingletonInstanceFactory(resolver *metadata.Resolver, aspectName string, instance interface{}) (*SingletonInstanceFactory, error) {
	if instance == nil {
		return nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: "<nil>", Reason: "nil aspect instance"}
	}
	md, err := resolver.Resolve(aspectName, reflect.TypeOf(instance))
	if err != nil {
		return nil, err
	}
	return &SingletonInstanceFactory{instance: instance, metadata: md}, nil
}

func (f *SingletonInstanceFactory) GetInstance() (interface{}, error) {
	return f.instance, nil
}

func (f *SingletonInstanceFactory) GetOrder() int {
	return orderOf(f.metadata, f.instance)
}

func (f *SingletonInstanceFactory) GetAspectMetadata() *types.AspectMetadata {
	return f.metadata
}

func (f *SingletonInstanceFactory) GetCreationMutex() sync.Locker {
	return nil
}

// RegistryInstanceFactory looks the aspect instance up in a component registry by name.
// RegistryInstanceFactory 从组件注册表中按名称获取切面实例
type RegistryInstanceFactory struct {
	registry  types.ComponentRegistry
	name      string
	metadata  *types.AspectMetadata
	mu        sync.Mutex
	orderOnce sync.Once
	order     int
}

// NewRegistryInstanceFactory resolves the metadata of the named component.
func NewRegistryInstanceFactory(registry types.ComponentRegistry, resolver *metadata.Resolver, name string) (*RegistryInstanceFactory, error) {
	t, ok := registry.TypeOf(name)
	if !ok || t == nil {
		return nil, &types.InvalidAspectError{AspectName: name, TypeName: "<nil>", Reason: "component type not found"}
	}
	md, err := resolver.Resolve(name, t)
	if err != nil {
		return nil, err
	}
	return &RegistryInstanceFactory{registry: registry, name: name, metadata: md}, nil
}

// Name returns the component name.
func (f *RegistryInstanceFactory) Name() string {
	return f.name
}

func (f *RegistryInstanceFactory) GetInstance() (interface{}, error) {
	return f.registry.Get(f.name)
}

// GetOrder uses the declared order. Otherwise a singleton component implementing
// types.Ordered is asked, and anything else gets LowestPrecedence.
func (f *RegistryInstanceFactory) GetOrder() int {
	f.orderOnce.Do(func() {
		if f.metadata.Order != nil {
			f.order = *f.metadata.Order
			return
		}
		f.order = types.LowestPrecedence
		if !f.registry.IsSingleton(f.name) || !implementsOrdered(f.metadata.AspectType) {
			return
		}
		if instance, err := f.registry.Get(f.name); err == nil {
			f.order = orderOf(nil, instance)
		}
	})
	return f.order
}

func (f *RegistryInstanceFactory) GetAspectMetadata() *types.AspectMetadata {
	return f.metadata
}

// GetCreationMutex returns the registry's singleton lock when available, else a lock owned by the factory.
func (f *RegistryInstanceFactory) GetCreationMutex() sync.Locker {
	if provider, ok := f.registry.(types.SingletonMutexProvider); ok && f.registry.IsSingleton(f.name) {
		return provider.SingletonMutex()
	}
	return &f.mu
}

func (f *RegistryInstanceFactory) String() string {
	return fmt.Sprintf("RegistryInstanceFactory: name=%s", f.name)
}

func implementsOrdered(t reflect.Type) bool {
	orderedType := reflect.TypeOf((*types.Ordered)(nil)).Elem()
	return t.Implements(orderedType) || reflect.PtrTo(t).Implements(orderedType)
}

// PrototypeInstanceFactory serves a fresh aspect instance per lookup. The component
// must not be singleton scoped.
type PrototypeInstanceFactory struct {
	*RegistryInstanceFactory
}

// NewPrototypeInstanceFactory fails with IllegalStateError when the registry keeps the component as a singleton.
func NewPrototypeInstanceFactory(registry types.ComponentRegistry, resolver *metadata.Resolver, name string) (*PrototypeInstanceFactory, error) {
	if registry.IsSingleton(name) {
		return nil, &types.IllegalStateError{AspectName: name, Reason: "cannot use a singleton scoped component as a prototype aspect instance factory"}
	}
	f, err := NewRegistryInstanceFactory(registry, resolver, name)
	if err != nil {
		return nil, err
	}
	return &PrototypeInstanceFactory{RegistryInstanceFactory: f}, nil
}

// LazySingletonInstanceFactory decorates a factory so that the instance is created
// once, on first use, under the creation mutex.
// LazySingletonInstanceFactory 延迟创建并缓存切面实例
type LazySingletonInstanceFactory struct {
	delegate     types.AspectInstanceFactory
	mu           sync.Mutex
	instance     atomic.Value
	materialized atomic.Bool
}

// NewLazySingletonInstanceFactory wraps delegate. An already lazy delegate is returned as is.
func NewLazySingletonInstanceFactory(delegate types.AspectInstanceFactory) *LazySingletonInstanceFactory {
	if lazy, ok := delegate.(*LazySingletonInstanceFactory); ok {
		return lazy
	}
	return &LazySingletonInstanceFactory{delegate: delegate}
}

func (f *LazySingletonInstanceFactory) GetInstance() (interface{}, error) {
	if f.materialized.Load() {
		return f.instance.Load().(*instanceHolder).value, nil
	}
	mutex := f.delegate.GetCreationMutex()
	if mutex == nil {
		mutex = &f.mu
	}
	mutex.Lock()
	defer mutex.Unlock()
	if f.materialized.Load() {
		return f.instance.Load().(*instanceHolder).value, nil
	}
	instance, err := f.delegate.GetInstance()
	if err != nil {
		return nil, err
	}
	f.instance.Store(&instanceHolder{value: instance})
	f.materialized.Store(true)
	return instance, nil
}

// IsMaterialized reports whether GetInstance has succeeded once.
func (f *LazySingletonInstanceFactory) IsMaterialized() bool {
	return f.materialized.Load()
}

func (f *LazySingletonInstanceFactory) GetOrder() int {
	return f.delegate.GetOrder()
}

func (f *LazySingletonInstanceFactory) GetAspectMetadata() *types.AspectMetadata {
	return f.delegate.GetAspectMetadata()
}

func (f *LazySingletonInstanceFactory) GetCreationMutex() sync.Locker {
	return f.delegate.GetCreationMutex()
}

// Delegate returns the decorated factory.
func (f *LazySingletonInstanceFactory) Delegate() types.AspectInstanceFactory {
	return f.delegate
}

// instanceHolder lets atomic.Value store instances of varying concrete types.
type instanceHolder struct {
	value interface{}
}
