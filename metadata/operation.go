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

package metadata

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rulego/aop/api/types"
	reflectutil "github.com/rulego/aop/utils/reflect"
)

// adviceFuncTypes is the inverse of types.AdviceFuncKinds for function kinds.
var adviceFuncTypes = map[types.AdviceKind]reflect.Type{
	types.KindBefore:         reflect.TypeOf(types.BeforeFunc(nil)),
	types.KindAfter:          reflect.TypeOf(types.AfterFunc(nil)),
	types.KindAfterReturning: reflect.TypeOf(types.AfterReturningFunc(nil)),
	types.KindAfterThrowing:  reflect.TypeOf(types.AfterThrowingFunc(nil)),
	types.KindAround:         reflect.TypeOf(types.AroundFunc(nil)),
}

// AdviceFuncType returns the function type an advice of kind k must convert to.
func AdviceFuncType(k types.AdviceKind) (reflect.Type, bool) {
	t, ok := adviceFuncTypes[k]
	return t, ok
}

// Operation is one exported field of an aspect, in declaration order.
// Operation 切面上的一个增强点
type Operation struct {
	// Name is the field name, also the name other expressions reference it by.
	Name string
	// Index is the field index path from the aspect struct.
	Index []int
	// Type is the field type.
	Type reflect.Type
	// Kind is the classified advice kind, KindUnknown when classification failed.
	Kind types.AdviceKind
	// Expression is the declared pointcut expression.
	Expression string
	// Err holds the classification failure, if any.
	Err error
}

// IsAdviceBearing reports whether the operation produces an advisor.
func (op *Operation) IsAdviceBearing() bool {
	return op != nil && op.Err == nil && op.Kind != types.KindUnknown && op.Kind != types.KindPointcutOnly
}

// IsPointcutOnly reports whether the operation only declares a named pointcut.
func (op *Operation) IsPointcutOnly() bool {
	return op != nil && op.Err == nil && op.Kind == types.KindPointcutOnly
}

func (op *Operation) String() string {
	return fmt.Sprintf("%s[%s]", op.Name, op.Kind)
}

// ClassifyAdvice determines the advice kind of a field. A field with neither an `aop` tag,
// a `pointcut` tag nor an advice function type is not advice-bearing: KindUnknown and a nil error.
// ClassifyAdvice 判断字段的增强类型
func ClassifyAdvice(aspectName string, field reflectutil.Field) (types.AdviceKind, error) {
	typeKind, hasTypeKind := types.AdviceFuncKinds[field.Type]
	tagValue, hasTag := field.Tag.Lookup(types.TagAdvice)
	if !hasTag {
		if hasTypeKind {
			return typeKind, nil
		}
		if _, ok := field.Tag.Lookup(types.TagPointcut); ok {
			return types.KindUnknown, ambiguous(aspectName, field.Name, "pointcut declared without an advice kind")
		}
		return types.KindUnknown, nil
	}

	tagKind, ok := types.ParseAdviceKind(strings.TrimSpace(tagValue))
	if !ok {
		return types.KindUnknown, ambiguous(aspectName, field.Name, fmt.Sprintf("unknown advice kind %q", tagValue))
	}
	if hasTypeKind && typeKind != tagKind {
		return types.KindUnknown, ambiguous(aspectName, field.Name, fmt.Sprintf("tag declares %s but field type implies %s", tagKind, typeKind))
	}
	if tagKind == types.KindPointcutOnly {
		return tagKind, nil
	}
	expected := adviceFuncTypes[tagKind]
	if !field.Type.ConvertibleTo(expected) {
		return types.KindUnknown, ambiguous(aspectName, field.Name, fmt.Sprintf("field type %s cannot carry %s advice", field.Type, tagKind))
	}
	return tagKind, nil
}

func ambiguous(aspectName, operation, reason string) error {
	return &types.AmbiguousAdviceClassificationError{AspectName: aspectName, Operation: operation, Reason: reason}
}
