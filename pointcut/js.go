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

package pointcut

import (
	"errors"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/rulego/aop/api/types"
)

// ErrScriptTimeout the js pointcut exceeded Config.ScriptMaxExecutionTime.
var ErrScriptTimeout = errors.New("js pointcut execution timeout")

// jsPointcut evaluates a precompiled JavaScript expression. goja runtimes are not
// goroutine safe, so each evaluation borrows one from a pool.
type jsPointcut struct {
	parser     *Parser
	expression string
	program    *goja.Program
	named      types.NamedPointcuts
	vmPool     sync.Pool
}

func (p *Parser) parseJs(expression string, named types.NamedPointcuts) (types.Pointcut, error) {
	if expression == "" {
		return nil, &types.InvalidPointcutError{Expression: JsPrefix, Err: errEmptyExpression}
	}
	program, err := goja.Compile("", expression, true)
	if err != nil {
		return nil, &types.InvalidPointcutError{Expression: JsPrefix + expression, Err: err}
	}
	pc := &jsPointcut{
		parser:     p,
		expression: expression,
		program:    program,
		named:      named,
	}
	pc.vmPool = sync.Pool{
		New: func() interface{} {
			return goja.New()
		},
	}
	return pc, nil
}

func (j *jsPointcut) Matches(jp *types.JoinPoint) bool {
	if jp == nil {
		return false
	}
	result, err := j.run(jp)
	if err != nil {
		j.parser.config.Logger.Printf("js pointcut evaluation error. expression=%s, joinPoint=%s, err=%s", j.expression, jp.Signature(), err.Error())
		return false
	}
	return result
}

func (j *jsPointcut) run(jp *types.JoinPoint) (bool, error) {
	vm := j.vmPool.Get().(*goja.Runtime)

	for k, v := range j.parser.env(jp, j.named) {
		if err := vm.Set(k, v); err != nil {
			j.vmPool.Put(vm)
			return false, err
		}
	}

	var timer *time.Timer
	if max := j.parser.config.ScriptMaxExecutionTime; max > 0 {
		timer = time.AfterFunc(max, func() {
			vm.Interrupt(ErrScriptTimeout)
		})
	}
	value, err := vm.RunProgram(j.program)
	// 定时器已触发时，中断可能在 ClearInterrupt 之后才生效，该 vm 不再放回池中
	if timer == nil || timer.Stop() {
		vm.ClearInterrupt()
		j.vmPool.Put(vm)
	}
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return false, ErrScriptTimeout
		}
		return false, err
	}
	return value.ToBoolean(), nil
}

func (j *jsPointcut) String() string {
	return JsPrefix + " " + j.expression
}
