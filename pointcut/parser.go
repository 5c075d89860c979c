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

// Package pointcut compiles pointcut expressions into types.Pointcut values.
//
// Two expression languages are supported:
//
//   - expr (default): https://github.com/expr-lang/expr, e.g. `within('service.*') && method startsWith 'Get'`
//   - js: JavaScript evaluated by goja, selected with the `js:` prefix, e.g. `js: method.indexOf('Get') === 0`
//
// Variables available in both languages:
//
//   - method: the operation name
//   - target: the target type name, "pkg.Type"
//   - signature: "pkg.Type.Method"
//   - args: the call arguments
//   - this: the proxy, if any
//   - global: Config.Properties
//
// Functions available in both languages:
//
//   - the functions registered in funcs.PointcutFuncMap, e.g. hasPrefix(s, prefix)
//   - within(pattern): target matches a dotted glob
//   - execution(pattern): signature matches a dotted glob
//   - <Name>(): the named pointcut declared by a pointcut-only operation of the same aspect
//
// An expression consisting of a single named pointcut reference, `Name` or `Name()`,
// resolves to that pointcut directly.
package pointcut

import (
	"errors"
	"regexp"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/builtin/funcs"
)

// JsPrefix selects the JavaScript evaluator.
const JsPrefix = "js:"

var _ types.PointcutParser = (*Parser)(nil)

var errEmptyExpression = errors.New("empty expression")

var namedRefRegex = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(\(\s*\))?$`)

// Parser is the default types.PointcutParser.
// Parser 默认的切入点表达式解析器
type Parser struct {
	config types.Config
}

// NewParser creates a parser bound to config (logger, properties, script timeout).
func NewParser(config types.Config) *Parser {
	if config.Logger == nil {
		config.Logger = types.NopLogger()
	}
	return &Parser{config: config}
}

// Parse compiles expression against the aspect's named pointcuts.
func (p *Parser) Parse(expression string, named types.NamedPointcuts) (types.Pointcut, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &types.InvalidPointcutError{Expression: expression, Err: errEmptyExpression}
	}
	if strings.HasPrefix(expression, JsPrefix) {
		return p.parseJs(strings.TrimSpace(strings.TrimPrefix(expression, JsPrefix)), named)
	}
	if m := namedRefRegex.FindStringSubmatch(expression); m != nil {
		if _, ok := named[m[1]]; ok {
			return &namedRef{name: m[1], named: named}, nil
		}
	}
	return p.parseExpr(expression, named)
}

// ParseTypePattern compiles a dotted glob over target type names.
func (p *Parser) ParseTypePattern(pattern string) (types.Pointcut, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, &types.InvalidPointcutError{Expression: pattern, Err: errEmptyExpression}
	}
	return NewTypePattern(pattern)
}

// env builds the evaluation scope for jp.
func (p *Parser) env(jp *types.JoinPoint, named types.NamedPointcuts) map[string]interface{} {
	args := jp.Args
	if args == nil {
		args = []interface{}{}
	}
	typeName := jp.TypeName()
	signature := jp.Signature()
	env := funcs.PointcutFuncMap.GetAll()
	for k, v := range map[string]interface{}{
		"method":    jp.Method,
		"target":    typeName,
		"signature": signature,
		"args":      args,
		"this":      jp.This,
		"global":    p.config.Properties,
		"within": func(pattern string) bool {
			return MatchPattern(pattern, typeName)
		},
		"execution": func(pattern string) bool {
			return MatchPattern(pattern, signature)
		},
	} {
		env[k] = v
	}
	for name := range named {
		ref := &namedRef{name: name, named: named}
		env[name] = func() bool {
			return ref.Matches(jp)
		}
	}
	return env
}

// namedRef resolves a named pointcut at evaluation time, so pointcut-only operations
// may reference each other regardless of declaration order.
type namedRef struct {
	name  string
	named types.NamedPointcuts
}

func (r *namedRef) Matches(jp *types.JoinPoint) bool {
	if pc := r.named[r.name]; pc != nil {
		return pc.Matches(jp)
	}
	return false
}

func (r *namedRef) String() string {
	return r.name + "()"
}

// exprPointcut is a compiled expr-lang program.
type exprPointcut struct {
	parser     *Parser
	expression string
	program    *vm.Program
	named      types.NamedPointcuts
}

func (p *Parser) parseExpr(expression string, named types.NamedPointcuts) (types.Pointcut, error) {
	sample := p.env(&types.JoinPoint{}, named)
	program, err := expr.Compile(expression, expr.Env(sample), expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, &types.InvalidPointcutError{Expression: expression, Err: err}
	}
	return &exprPointcut{parser: p, expression: expression, program: program, named: named}, nil
}

func (e *exprPointcut) Matches(jp *types.JoinPoint) bool {
	if jp == nil {
		return false
	}
	out, err := vm.Run(e.program, e.parser.env(jp, e.named))
	if err != nil {
		e.parser.config.Logger.Printf("pointcut evaluation error. expression=%s, joinPoint=%s, err=%s", e.expression, jp.Signature(), err.Error())
		return false
	}
	result, ok := out.(bool)
	return ok && result
}

func (e *exprPointcut) String() string {
	return e.expression
}
