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

package aspect

import (
	"github.com/rulego/aop/api/types"
)

const (
	// In flow type logged before the join point.
	In = "IN"
	// Out flow type logged after the join point.
	Out = "OUT"
)

// Debug 连接点debug日志切面，切入点为所有连接点
type Debug struct {
	types.AspectMeta `order:"900"`
	In               types.BeforeFunc `pointcut:"true"`
	Out              types.AfterFunc  `pointcut:"true"`
	Logger           types.Logger
}

// NewDebug creates the aspect logging on logger, the default logger when nil.
func NewDebug(logger types.Logger) *Debug {
	if logger == nil {
		logger = types.DefaultLogger()
	}
	aspect := &Debug{Logger: logger}
	aspect.In = aspect.before
	aspect.Out = aspect.after
	return aspect
}

func (aspect *Debug) before(jp *types.JoinPoint) error {
	aspect.onDebug(In, jp, nil, nil)
	return nil
}

func (aspect *Debug) after(jp *types.JoinPoint, result interface{}, err error) {
	aspect.onDebug(Out, jp, result, err)
}

func (aspect *Debug) onDebug(flowType string, jp *types.JoinPoint, result interface{}, err error) {
	if flowType == In {
		aspect.Logger.Printf("flowType=%s, id=%s, signature=%s, args=%v", flowType, jp.Id, jp.Signature(), jp.Args)
		return
	}
	aspect.Logger.Printf("flowType=%s, id=%s, signature=%s, result=%v, err=%v", flowType, jp.Id, jp.Signature(), result, err)
}
