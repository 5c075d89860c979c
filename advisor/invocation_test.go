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
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardAspect struct {
	types.AspectMeta `order:"1"`
	Deny             types.BeforeFunc `pointcut:"method == 'Delete'"`
}

type argsAspect struct {
	types.AspectMeta
	Rewrite types.AroundFunc `pointcut:"true"`
}

var errDenied = errors.New("denied")

func TestInvokeAdviceKinds(t *testing.T) {
	f, _ := newFactory(t)
	recorder := &test.Recorder{}
	advisors, err := f.GetAdvisors(singleton(t, f, "tx", test.NewTxAspect(recorder)))
	require.NoError(t, err)

	jp := test.JoinPoint(&test.OrderService{}, "GetOrder", 1)
	result, err := Invoke(advisors, jp, func(args ...interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []string{"tx.begin", "tx.around.in", "tx.cleanup", "tx.commit", "tx.around.out"}, recorder.Events())

	recorder.Reset()
	_, err = Invoke(advisors, test.JoinPoint(&test.OrderService{}, "GetOrder", 1), func(args ...interface{}) (interface{}, error) {
		return nil, errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []string{"tx.begin", "tx.around.in", "tx.cleanup", "tx.rollback:boom", "tx.around.out"}, recorder.Events())
}

func TestBeforeAdviceStopsInvocation(t *testing.T) {
	f, _ := newFactory(t)
	guard := &guardAspect{Deny: func(jp *types.JoinPoint) error {
		return errDenied
	}}
	advisors, err := f.GetAdvisors(singleton(t, f, "guard", guard))
	require.NoError(t, err)

	called := false
	target := func(args ...interface{}) (interface{}, error) {
		called = true
		return nil, nil
	}
	_, err = Invoke(advisors, test.JoinPoint(&test.OrderService{}, "Delete"), target)
	assert.True(t, errors.Is(err, errDenied))
	assert.False(t, called)

	_, err = Invoke(advisors, test.JoinPoint(&test.OrderService{}, "GetOrder"), target)
	assert.NoError(t, err)
	assert.True(t, called)
}

func TestAroundProceedWith(t *testing.T) {
	f, _ := newFactory(t)
	aspect := &argsAspect{Rewrite: func(pjp types.ProceedingJoinPoint) (interface{}, error) {
		return pjp.ProceedWith(42)
	}}
	advisors, err := f.GetAdvisors(singleton(t, f, "args", aspect))
	require.NoError(t, err)

	jp := test.JoinPoint(&test.OrderService{}, "GetOrder", 1)
	result, err := Invoke(advisors, jp, func(args ...interface{}) (interface{}, error) {
		return args[0], nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, []interface{}{42}, jp.Args)
}

func TestInvocationId(t *testing.T) {
	jp := test.JoinPoint(&test.OrderService{}, "GetOrder")
	inv := NewInvocation(jp, nil, nil)
	_, err := uuid.FromString(inv.JoinPoint().Id)
	assert.NoError(t, err)

	jp = &types.JoinPoint{Id: "fixed"}
	assert.Equal(t, "fixed", NewInvocation(jp, nil, nil).JoinPoint().Id)
}

func TestNilAdviceFuncProceeds(t *testing.T) {
	f, _ := newFactory(t)
	advisors, err := f.GetAdvisors(singleton(t, f, "logging", &test.LoggingAspect{}))
	require.NoError(t, err)
	require.Len(t, advisors, 2)

	result, err := Invoke(advisors, test.JoinPoint(&test.OrderService{}, "GetOrder"), func(args ...interface{}) (interface{}, error) {
		return "order", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "order", result)
}

func TestChainFiltersByPointcut(t *testing.T) {
	f, _ := newFactory(t)
	recorder := &test.Recorder{}
	advisors, err := f.GetAdvisors(singleton(t, f, "logging", test.NewLoggingAspect(recorder)))
	require.NoError(t, err)

	assert.Len(t, Chain(advisors, test.JoinPoint(&test.OrderService{}, "GetOrder")), 2)
	assert.Empty(t, Chain(advisors, test.JoinPoint(&test.UserRepository{}, "GetOrder")))
}
