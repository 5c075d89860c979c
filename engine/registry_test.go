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
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rulego/aop/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentRegistry(t *testing.T) {
	registry := NewComponentRegistry()
	service := &test.OrderService{Name: "order"}
	require.NoError(t, registry.Register("orderService", service))
	assert.Error(t, registry.Register("orderService", service))
	assert.Error(t, registry.Register("nil", nil))
	assert.Error(t, registry.RegisterFactory("", reflect.TypeOf(service), ScopeSingleton, nil))

	var created int32
	require.NoError(t, registry.RegisterFactory("repo", reflect.TypeOf(&test.UserRepository{}), ScopePrototype, func() (interface{}, error) {
		atomic.AddInt32(&created, 1)
		return &test.UserRepository{}, nil
	}))
	assert.Equal(t, []string{"orderService", "repo"}, registry.CandidateNames())

	typ, ok := registry.TypeOf("repo")
	assert.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&test.UserRepository{}), typ)
	assert.Equal(t, int32(0), atomic.LoadInt32(&created))
	assert.True(t, registry.IsSingleton("orderService"))
	assert.False(t, registry.IsSingleton("repo"))
	assert.False(t, registry.IsSingleton("missing"))

	instance, err := registry.Get("orderService")
	require.NoError(t, err)
	assert.True(t, instance == service)

	first, _ := registry.Get("repo")
	second, _ := registry.Get("repo")
	assert.False(t, first == second)
	assert.Equal(t, int32(2), atomic.LoadInt32(&created))

	_, err = registry.Get("missing")
	assert.Error(t, err)

	require.NoError(t, registry.Unregister("orderService"))
	assert.Error(t, registry.Unregister("orderService"))
	assert.Equal(t, []string{"repo"}, registry.CandidateNames())
	assert.NotNil(t, registry.SingletonMutex())
	assert.Equal(t, "prototype", ScopePrototype.String())
}

func TestComponentRegistrySingletonCreatedOnce(t *testing.T) {
	registry := NewComponentRegistry()
	var created int32
	errBoom := errors.New("boom")
	require.NoError(t, registry.RegisterFactory("service", reflect.TypeOf(&test.OrderService{}), ScopeSingleton, func() (interface{}, error) {
		atomic.AddInt32(&created, 1)
		return &test.OrderService{}, nil
	}))
	require.NoError(t, registry.RegisterFactory("broken", reflect.TypeOf(&test.OrderService{}), ScopeSingleton, func() (interface{}, error) {
		return nil, errBoom
	}))

	var wg sync.WaitGroup
	instances := make([]interface{}, 8)
	for i := range instances {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			instances[i], _ = registry.Get("service")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&created))
	for _, instance := range instances {
		assert.True(t, instance == instances[0])
	}

	_, err := registry.Get("broken")
	assert.ErrorIs(t, err, errBoom)
}
