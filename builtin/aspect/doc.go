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

// Package aspect provides built-in aspects, declared the same way as user aspects.
//
// Package aspect 提供内置切面，声明方式与用户切面相同。
//
// Available Built-in Aspects:
// 可用的内置切面：
//
//   - Debug: logs every matched join point on the way in and on the way out
//     Debug：在连接点执行前后记录日志
//
//   - ConcurrencyLimiterAspect: limits concurrent executions of matched join points
//     ConcurrencyLimiterAspect：限制连接点并发执行数量
//
//   - MetricsAspect: counts executions, failures and successes per signature
//     MetricsAspect：按签名统计执行、失败与成功次数
//
// Aspect Execution Order:
// 切面执行顺序：
//
//  1. ConcurrencyLimiterAspect (order: 10)
//  2. MetricsAspect (order: 20)
//  3. Debug (order: 900)
//
// Usage Examples:
// 使用示例：
//
//	registry := engine.NewComponentRegistry()
//	_ = registry.Register("debug", aspect.NewDebug(logger))
//	_ = registry.Register("limiter", aspect.NewConcurrencyLimiterAspect(100))
//	weaver, _ := aop.New(registry)
package aspect
