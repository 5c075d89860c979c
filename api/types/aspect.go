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

package types

import (
	"fmt"
	"math"
	"reflect"
)

// The package provides AOP (Aspect Oriented Programming) building blocks, Which turn declarative aspect
// definitions into ordered advisors that a proxy layer can apply around matched operations.
//
//   - An aspect is a Go struct embedding AspectMeta. Its exported advice fields are advice-bearing operations.
//   - Every advice-bearing operation becomes one Advisor: a pointcut plus an executable advice.
//
// 该包提供 AOP(面向切面编程，Aspect Oriented Programming)基础结构，把声明式的切面定义转换成有序的增强器(Advisor)。
//
//   - 切面是内嵌 AspectMeta 的结构体，导出的增强字段即增强点。
//   - 每个增强点生成一个 Advisor：切入点 + 可执行的增强逻辑。
//
// Example:
//
//	type LoggingAspect struct {
//		types.AspectMeta `perclause:"pertarget(within('service.*'))" order:"10"`
//		Services types.PointcutDef `pointcut:"within('service.*')"`
//		LogIn    types.BeforeFunc  `pointcut:"Services()"`
//		LogOut   types.AfterFunc   `aop:"after" pointcut:"Services() && method != 'Close'"`
//	}

const (
	// LowestPrecedence is the order used when an aspect declares none.
	// LowestPrecedence 切面未声明顺序时使用的默认值
	LowestPrecedence = math.MaxInt32
	// HighestPrecedence is the smallest possible order value.
	HighestPrecedence = math.MinInt32
)

// Struct tag keys understood on the AspectMeta marker and on advice fields.
const (
	TagPerClause  = "perclause"
	TagOrder      = "order"
	TagPrecedence = "precedence"
	TagAdvice     = "aop"
	TagPointcut   = "pointcut"
)

// AspectMeta marks a struct as an aspect when embedded. The embedded field's tags carry the aspect metadata.
// AspectMeta 内嵌到结构体中将其标记为切面，内嵌字段的tag声明切面元数据。
type AspectMeta struct{}

// AspectMetaType is the reflect type of the marker.
var AspectMetaType = reflect.TypeOf(AspectMeta{})

// Ordered is implemented by aspects that compute their own order.
// Order returns the execution order, the smaller the value, the higher the priority
// Ordered 切面自定义顺序，值越小，优先级越高
type Ordered interface {
	Order() int
}

// InstantiationModel determines when and how often an aspect instance is created.
// InstantiationModel 切面实例化模型
type InstantiationModel int

const (
	// Singleton aspects are created eagerly, one instance for the registry lifetime.
	Singleton InstantiationModel = iota
	// PerTarget aspects are created lazily for each target instance.
	PerTarget
	// PerThis aspects are created lazily for each proxy instance.
	PerThis
	// PerTypeWithin aspects are created lazily for each enclosing type.
	PerTypeWithin
)

var instantiationModelNames = map[InstantiationModel]string{
	Singleton:     "singleton",
	PerTarget:     "pertarget",
	PerThis:       "perthis",
	PerTypeWithin: "pertypewithin",
}

func (m InstantiationModel) String() string {
	if name, ok := instantiationModelNames[m]; ok {
		return name
	}
	return fmt.Sprintf("InstantiationModel(%d)", int(m))
}

// IsLazy reports whether the aspect instance is materialized on demand.
func (m InstantiationModel) IsLazy() bool {
	return m == PerTarget || m == PerThis || m == PerTypeWithin
}

// AspectMetadata is the resolved, read-only description of an aspect type.
// AspectMetadata 解析后的切面元数据，只读
type AspectMetadata struct {
	// AspectName is the registry name of the aspect.
	AspectName string
	// AspectType is the (non pointer) struct type declaring the operations.
	AspectType reflect.Type
	// DeclaringType is the nearest type in the embedding chain carrying the AspectMeta marker.
	DeclaringType reflect.Type
	// Model is the instantiation model declared by the per-clause.
	Model InstantiationModel
	// PerClause is the raw per-clause declaration.
	PerClause string
	// PerClausePointcut decides which join points may cause materialization.
	// It is TruePointcut for singleton aspects.
	PerClausePointcut Pointcut
	// Order is the declared order, nil when the aspect declares none.
	Order *int
}

// IsLazilyInstantiated reports whether the aspect is materialized on demand.
func (m *AspectMetadata) IsLazilyInstantiated() bool {
	return m.Model.IsLazy()
}

// IsPerThisOrPerTarget reports whether the aspect is instantiated per proxy or per target.
func (m *AspectMetadata) IsPerThisOrPerTarget() bool {
	return m.Model == PerThis || m.Model == PerTarget
}

// IsPerTypeWithin reports whether the aspect is instantiated per enclosing type.
func (m *AspectMetadata) IsPerTypeWithin() bool {
	return m.Model == PerTypeWithin
}
