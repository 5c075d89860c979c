/*
 * Copyright 2023 The RuleGo Authors.
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

package engine

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/rulego/aop/api/types"
)

var (
	_ types.ComponentRegistry      = (*ComponentRegistry)(nil)
	_ types.SingletonMutexProvider = (*ComponentRegistry)(nil)
)

// Scope decides how many instances the registry keeps for a component.
type Scope int

const (
	// ScopeSingleton one shared instance, created on first Get.
	ScopeSingleton Scope = iota
	// ScopePrototype a new instance on every Get.
	ScopePrototype
)

func (s Scope) String() string {
	if s == ScopePrototype {
		return "prototype"
	}
	return "singleton"
}

// NewFunc creates a component instance.
type NewFunc func() (interface{}, error)

// Registry is the default component registry.
var Registry = NewComponentRegistry()

type component struct {
	name    string
	typ     reflect.Type
	scope   Scope
	newFunc NewFunc

	once     sync.Once
	instance interface{}
	err      error
}

func (c *component) get() (interface{}, error) {
	if c.scope == ScopePrototype {
		return c.newFunc()
	}
	c.once.Do(func() {
		c.instance, c.err = c.newFunc()
	})
	return c.instance, c.err
}

// ComponentRegistry is an in-memory registry of named components, candidates for aspects.
// ComponentRegistry 组件注册表
type ComponentRegistry struct {
	// components is a map of registered components.
	components map[string]*component
	// names keeps the registration order.
	names []string
	// singletonMu is handed to aspect instance factories creating singleton aspects.
	singletonMu sync.Mutex
	// RWMutex is a read/write mutex lock.
	sync.RWMutex
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{components: make(map[string]*component)}
}

// Register adds an existing instance as a singleton component.
func (r *ComponentRegistry) Register(name string, instance interface{}) error {
	if instance == nil {
		return fmt.Errorf("component instance is nil. name=%s", name)
	}
	return r.RegisterFactory(name, reflect.TypeOf(instance), ScopeSingleton, func() (interface{}, error) {
		return instance, nil
	})
}

// RegisterFactory adds a component created by newFunc. typ is reported by TypeOf
// without creating an instance.
func (r *ComponentRegistry) RegisterFactory(name string, typ reflect.Type, scope Scope, newFunc NewFunc) error {
	if name == "" {
		return errors.New("component name can not be empty")
	}
	if typ == nil || newFunc == nil {
		return fmt.Errorf("component type and constructor are required. name=%s", name)
	}
	r.Lock()
	defer r.Unlock()
	if r.components == nil {
		r.components = make(map[string]*component)
	}
	if _, ok := r.components[name]; ok {
		return errors.New("the component already exists. name=" + name)
	}
	r.components[name] = &component{name: name, typ: typ, scope: scope, newFunc: newFunc}
	r.names = append(r.names, name)
	return nil
}

// Unregister removes a component.
func (r *ComponentRegistry) Unregister(name string) error {
	r.Lock()
	defer r.Unlock()
	if _, ok := r.components[name]; !ok {
		return fmt.Errorf("component not found. name=%s", name)
	}
	delete(r.components, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i:i], r.names[i+1:]...)
			break
		}
	}
	return nil
}

// CandidateNames returns the component names in registration order.
func (r *ComponentRegistry) CandidateNames() []string {
	r.RLock()
	defer r.RUnlock()
	return append([]string(nil), r.names...)
}

func (r *ComponentRegistry) TypeOf(name string) (reflect.Type, bool) {
	if c, ok := r.lookup(name); ok {
		return c.typ, true
	}
	return nil, false
}

func (r *ComponentRegistry) IsSingleton(name string) bool {
	c, ok := r.lookup(name)
	return ok && c.scope == ScopeSingleton
}

// Get returns the named instance. Singletons are created once.
func (r *ComponentRegistry) Get(name string) (interface{}, error) {
	c, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("component not found. name=%s", name)
	}
	return c.get()
}

// SingletonMutex returns the lock serializing singleton aspect creation.
func (r *ComponentRegistry) SingletonMutex() sync.Locker {
	return &r.singletonMu
}

func (r *ComponentRegistry) lookup(name string) (*component, bool) {
	r.RLock()
	defer r.RUnlock()
	c, ok := r.components[name]
	return c, ok
}
