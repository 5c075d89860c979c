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

package aspect

import (
	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/api/types/metrics"
)

// MetricsAspect 实现了统计连接点执行指标的功能
type MetricsAspect struct {
	types.AspectMeta `order:"20"`
	Enter            types.BeforeFunc `pointcut:"true"`
	Exit             types.AfterFunc  `pointcut:"true"`
	metrics          *metrics.InvocationMetrics
}

// NewMetricsAspect creates the aspect recording into m, new metrics when nil.
func NewMetricsAspect(m *metrics.InvocationMetrics) *MetricsAspect {
	if m == nil {
		m = metrics.NewInvocationMetrics()
	}
	a := &MetricsAspect{metrics: m}
	a.Enter = func(jp *types.JoinPoint) error {
		a.metrics.Start(jp.Signature())
		return nil
	}
	a.Exit = func(jp *types.JoinPoint, result interface{}, err error) {
		a.metrics.Done(jp.Signature(), err)
	}
	return a
}

// GetMetrics returns the collected metrics.
func (a *MetricsAspect) GetMetrics() *metrics.InvocationMetrics {
	return a.metrics
}
