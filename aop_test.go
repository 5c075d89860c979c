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

package aop

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/engine"
	"github.com/rulego/aop/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWeaver(t *testing.T, recorder *test.Recorder) *Weaver {
	registry := engine.NewComponentRegistry()
	require.NoError(t, registry.Register("logging", test.NewLoggingAspect(recorder)))
	require.NoError(t, registry.Register("security", test.NewSecurityAspect(recorder)))
	require.NoError(t, registry.Register("tx", test.NewTxAspect(recorder)))
	require.NoError(t, registry.Register("orderService", &test.OrderService{Name: "order-1"}))
	weaver, err := New(registry, types.WithLogger(test.NewLogger(t)))
	require.NoError(t, err)
	return weaver
}

func TestWeaverFindEligibleAdvisors(t *testing.T) {
	weaver := newWeaver(t, &test.Recorder{})

	all, err := weaver.BuildAllAdvisors()
	require.NoError(t, err)
	assert.Len(t, all, 8)

	advisors, err := weaver.FindEligibleAdvisors(test.JoinPoint(&test.OrderService{}, "GetOrder"))
	require.NoError(t, err)
	var got []string
	for _, a := range advisors {
		got = append(got, fmt.Sprintf("%s.%d", a.GetAspectName(), a.GetDeclarationOrder()))
	}
	assert.Equal(t, []string{
		"logging.1",
		"logging.0",
		"security.0",
		"tx.4",
		"tx.3",
		"tx.2",
		"tx.0",
		"tx.1",
	}, got)

	advisors, err = weaver.FindEligibleAdvisors(test.JoinPoint(&test.UserRepository{}, "Save"))
	require.NoError(t, err)
	assert.Len(t, advisors, 5)
	for _, a := range advisors {
		assert.Equal(t, "tx", a.GetAspectName())
	}
}

func TestWeaverInvoke(t *testing.T) {
	recorder := &test.Recorder{}
	weaver := newWeaver(t, recorder)
	service := &test.OrderService{Name: "order-1"}

	result, err := weaver.Invoke(test.JoinPoint(service, "GetOrder", 1), func(args ...interface{}) (interface{}, error) {
		recorder.Add("target")
		return service.GetOrder(args[0].(int))
	})
	require.NoError(t, err)
	assert.Equal(t, "order-1", result)
	assert.Equal(t, []string{
		"logging.before:GetOrder",
		"security.before:GetOrder",
		"tx.begin",
		"tx.around.in",
		"target",
		"tx.around.out",
		"tx.commit",
		"tx.cleanup",
		"logging.after:GetOrder",
	}, recorder.Events())

	recorder.Reset()
	_, err = weaver.Invoke(test.JoinPoint(&test.UserRepository{}, "Save"), func(args ...interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{
		"tx.begin",
		"tx.around.in",
		"tx.around.out",
		"tx.rollback:boom",
		"tx.cleanup",
	}, recorder.Events())
}

func TestWeaverPrototypeAspect(t *testing.T) {
	recorder := &test.Recorder{}
	created := 0
	registry := engine.NewComponentRegistry()
	require.NoError(t, registry.RegisterFactory("perTarget", reflect.TypeOf(&test.PerTargetAspect{}), engine.ScopePrototype, func() (interface{}, error) {
		created++
		return test.NewPerTargetAspect(recorder), nil
	}))
	weaver, err := New(registry, types.WithLogger(test.NewLogger(t)))
	require.NoError(t, err)

	service := &test.OrderService{}
	// 首次调用不匹配声明的切入点：实例已创建，增强不执行
	for i := 0; i < 3; i++ {
		_, err = weaver.Invoke(test.JoinPoint(service, "Other"), nil)
		require.NoError(t, err)
	}
	assert.Empty(t, recorder.Events())
	assert.Equal(t, 1, created)

	jp := test.JoinPoint(service, "GetOrder")
	_, err = weaver.Invoke(jp, nil)
	require.NoError(t, err)
	_, err = weaver.Invoke(jp, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"pertarget.before:GetOrder", "pertarget.before:GetOrder"}, recorder.Events())

	// 已实例化后只使用声明的切入点
	advisors, err := weaver.FindEligibleAdvisors(test.JoinPoint(service, "Other"))
	require.NoError(t, err)
	assert.Empty(t, advisors)

	// 每个目标对象一个切面实例
	_, err = weaver.Invoke(test.JoinPoint(&test.OrderService{}, "GetOrder"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, recorder.Events(), 3)

	// 不在 pertarget 子句范围内
	advisors, err = weaver.FindEligibleAdvisors(test.JoinPoint(&test.UserRepository{}, "Save"))
	require.NoError(t, err)
	assert.Empty(t, advisors)

	weaver.Release(service)
	_, err = weaver.Invoke(jp, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.Len(t, recorder.Events(), 4)
}

func TestWeaverIllegalState(t *testing.T) {
	registry := engine.NewComponentRegistry()
	require.NoError(t, registry.Register("perTarget", test.NewPerTargetAspect(&test.Recorder{})))
	weaver, err := New(registry)
	require.NoError(t, err)

	_, err = weaver.FindEligibleAdvisors(test.JoinPoint(&test.OrderService{}, "GetOrder"))
	assert.True(t, errors.Is(err, types.ErrIllegalState))
}

func TestNewWithIncludePatterns(t *testing.T) {
	registry := engine.NewComponentRegistry()
	require.NoError(t, registry.Register("logging", test.NewLoggingAspect(&test.Recorder{})))
	require.NoError(t, registry.Register("security", test.NewSecurityAspect(&test.Recorder{})))
	weaver, err := New(registry, types.WithIncludePatterns("sec*"))
	require.NoError(t, err)

	advisors, err := weaver.BuildAllAdvisors()
	require.NoError(t, err)
	require.Len(t, advisors, 1)
	assert.Equal(t, "security", advisors[0].GetAspectName())
}
