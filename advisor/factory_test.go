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
	"strings"
	"testing"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/metadata"
	"github.com/rulego/aop/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactory(t *testing.T) (*Factory, *test.Logger) {
	logger := test.NewLogger(t)
	return NewFactory(types.NewConfig(types.WithLogger(logger))), logger
}

func singleton(t *testing.T, f *Factory, name string, instance interface{}) *SingletonInstanceFactory {
	aif, err := NewSingletonInstanceFactory(f.Resolver(), name, instance)
	require.NoError(t, err)
	return aif
}

func TestGetAdvisorsDeclarationOrder(t *testing.T) {
	f, _ := newFactory(t)
	advisors, err := f.GetAdvisors(singleton(t, f, "tx", test.NewTxAspect(&test.Recorder{})))
	require.NoError(t, err)
	require.Len(t, advisors, 5)

	kinds := []string{"before", "around", "afterReturning", "afterThrowing", "after"}
	for i, a := range advisors {
		assert.Equal(t, "tx", a.GetAspectName())
		assert.Equal(t, i, a.GetDeclarationOrder())
		assert.Equal(t, 5, a.GetOrder())
		assert.False(t, a.IsLazy())
		assert.True(t, a.IsAdviceInstantiated())
		assert.Equal(t, kinds[i], a.GetAdvice().Kind().String())
	}
	assert.True(t, advisors[0].IsBeforeAdvice())
	assert.False(t, advisors[1].IsBeforeAdvice())
	assert.False(t, advisors[1].IsAfterAdvice())
	assert.True(t, advisors[2].IsAfterAdvice())
	assert.True(t, advisors[4].IsAfterAdvice())
}

func TestGetAdvisorsSkipsBrokenOperations(t *testing.T) {
	f, logger := newFactory(t)
	advisors, err := f.GetAdvisors(singleton(t, f, "mixed", &test.MixedAspect{}))
	require.NoError(t, err)

	var names []string
	for i, a := range advisors {
		names = append(names, a.(*InstantiationModelAwareAdvisor).GetOperation().Name)
		assert.Equal(t, i, a.GetDeclarationOrder())
	}
	assert.Equal(t, []string{"First", "Plain", "Last"}, names)

	logged := strings.Join(logger.Lines(), "\n")
	for _, name := range []string{"Unknown", "Conflict", "NoKind", "Broken", "Missing"} {
		assert.Contains(t, logged, name)
	}

	reads := test.JoinPoint(&test.OrderService{}, "GetOrder")
	writes := test.JoinPoint(&test.OrderService{}, "Save")
	assert.True(t, advisors[1].GetPointcut().Matches(reads))
	assert.False(t, advisors[1].GetPointcut().Matches(writes))
	assert.True(t, advisors[2].GetPointcut().Matches(reads))
	assert.False(t, advisors[2].GetPointcut().Matches(writes))
}

func TestGetAdvisorsInheritedAspect(t *testing.T) {
	f, _ := newFactory(t)
	recorder := &test.Recorder{}
	audit := &test.AuditAspect{LoggingAspect: *test.NewLoggingAspect(recorder)}
	audit.Audit = func(jp *types.JoinPoint, result interface{}) {
		recorder.Add("audit:" + jp.Method)
	}
	advisors, err := f.GetAdvisors(singleton(t, f, "audit", audit))
	require.NoError(t, err)
	require.Len(t, advisors, 3)

	jp := test.JoinPoint(&test.OrderService{}, "GetOrder")
	for _, a := range advisors {
		assert.True(t, a.GetPointcut().Matches(jp))
		assert.False(t, a.GetPointcut().Matches(test.JoinPoint(&test.UserRepository{}, "GetOrder")))
	}
}

func TestGetAdvisor(t *testing.T) {
	f, _ := newFactory(t)
	aif := singleton(t, f, "logging", test.NewLoggingAspect(&test.Recorder{}))
	ops := f.Resolver().Operations("logging", aif.GetAspectMetadata().AspectType)

	a, err := f.GetAdvisor(ops[0], aif, 0, "logging")
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = f.GetAdvisor(ops[2], aif, 7, "logging")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 7, a.GetDeclarationOrder())
	assert.True(t, a.IsAfterAdvice())
	assert.True(t, a.GetPointcut().Matches(test.JoinPoint(&test.OrderService{}, "GetOrder")))

	broken := metadata.Operation{Name: "Broken", Kind: types.KindBefore, Expression: "method =="}
	_, err = f.GetAdvisor(broken, aif, 0, "logging")
	assert.True(t, errors.Is(err, types.ErrInvalidPointcut))
}

func TestGetAdvice(t *testing.T) {
	f, _ := newFactory(t)
	aif := singleton(t, f, "logging", test.NewLoggingAspect(&test.Recorder{}))
	ops := f.Resolver().Operations("logging", aif.GetAspectMetadata().AspectType)

	advice, err := f.GetAdvice(ops[0], types.TruePointcut, aif, 0, "logging")
	require.NoError(t, err)
	assert.Nil(t, advice)

	advice, err = f.GetAdvice(ops[1], types.TruePointcut, aif, 0, "logging")
	require.NoError(t, err)
	assert.Equal(t, types.KindBefore, advice.Kind())

	ambiguous := metadata.Operation{Name: "Odd", Err: &types.AmbiguousAdviceClassificationError{AspectName: "logging", Operation: "Odd"}}
	_, err = f.GetAdvice(ambiguous, types.TruePointcut, aif, 0, "logging")
	assert.True(t, errors.Is(err, types.ErrAmbiguousAdvice))
}

func TestOrderFromInstance(t *testing.T) {
	f, _ := newFactory(t)
	advisors, err := f.GetAdvisors(singleton(t, f, "ordered", test.NewOrderedAspect(-3)))
	require.NoError(t, err)
	require.Len(t, advisors, 1)
	assert.Equal(t, -3, advisors[0].GetOrder())

	md := &types.AspectMetadata{}
	assert.Equal(t, types.LowestPrecedence, orderOf(md, struct{}{}))
}

func TestNilAspectInstance(t *testing.T) {
	f, _ := newFactory(t)
	_, err := NewSingletonInstanceFactory(f.Resolver(), "nil", nil)
	assert.True(t, errors.Is(err, types.ErrInvalidAspect))

	_, err = NewSingletonInstanceFactory(f.Resolver(), "plain", &test.PlainStruct{})
	assert.True(t, errors.Is(err, types.ErrInvalidAspect))
}
