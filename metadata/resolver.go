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

// Package metadata resolves aspect structs into types.AspectMetadata and enumerates
// their advice-bearing operations in declaration order.
//
// An aspect is recognized by the types.AspectMeta marker, embedded either in the
// struct itself or in one of its embedded structs (nearest wins). The marker tags declare:
//
//   - perclause: singleton (default), perthis(expr), pertarget(expr) or pertypewithin(typePattern)
//   - order: the cross aspect order
//   - precedence: not supported, rejected with InvalidAspectError
package metadata

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/utils/maps"
	reflectutil "github.com/rulego/aop/utils/reflect"
)

// aspectTag is the decoded form of the marker tags.
type aspectTag struct {
	PerClause  string
	Order      *int
	Precedence *string
}

// Resolver resolves aspect metadata. It is safe for concurrent use.
// Resolver 切面元数据解析器
type Resolver struct {
	parser     types.PointcutParser
	operations sync.Map // reflect.Type -> []Operation
}

// NewResolver creates a resolver using parser for per-clause expressions.
func NewResolver(parser types.PointcutParser) *Resolver {
	return &Resolver{parser: parser}
}

// IsAspect reports whether t, or a struct it embeds, carries the aspect marker.
func (r *Resolver) IsAspect(t reflect.Type) bool {
	_, _, ok := findMarker(t)
	return ok
}

// Resolve builds the metadata of the aspect registered as aspectName with type t.
func (r *Resolver) Resolve(aspectName string, t reflect.Type) (*types.AspectMetadata, error) {
	aspectType := reflectutil.Indirect(t)
	if aspectType == nil || aspectType.Kind() != reflect.Struct {
		return nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: typeName(t), Reason: "not a struct type"}
	}
	declaring, marker, ok := findMarker(aspectType)
	if !ok {
		return nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: aspectType.String(), Reason: "no aspect marker found"}
	}

	var attrs aspectTag
	tags := reflectutil.TagMap(marker.Tag, types.TagPerClause, types.TagOrder, types.TagPrecedence)
	if err := maps.WeakMap2Struct(tags, &attrs); err != nil {
		return nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: aspectType.String(), Reason: "malformed aspect tag: " + err.Error()}
	}
	if attrs.Precedence != nil {
		return nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: aspectType.String(), Reason: "precedence declarations are not supported, use order"}
	}

	model, perClausePointcut, err := r.parsePerClause(aspectName, aspectType, attrs.PerClause)
	if err != nil {
		return nil, err
	}
	return &types.AspectMetadata{
		AspectName:        aspectName,
		AspectType:        aspectType,
		DeclaringType:     declaring,
		Model:             model,
		PerClause:         strings.TrimSpace(attrs.PerClause),
		PerClausePointcut: perClausePointcut,
		Order:             attrs.Order,
	}, nil
}

// Operations returns the operations of t in declaration order. Fields that are not
// advice-bearing are left out; misclassified ones are kept with Err set.
func (r *Resolver) Operations(aspectName string, t reflect.Type) []Operation {
	aspectType := reflectutil.Indirect(t)
	if cached, ok := r.operations.Load(aspectType); ok {
		return withAspectName(cached.([]Operation), aspectName)
	}
	var ops []Operation
	fields := reflectutil.GetFields(aspectType, func(sf reflect.StructField) bool {
		return reflectutil.Indirect(sf.Type) != types.AspectMetaType
	})
	for _, field := range fields {
		kind, err := ClassifyAdvice(aspectName, field)
		if kind == types.KindUnknown && err == nil {
			continue
		}
		ops = append(ops, Operation{
			Name:       field.Name,
			Index:      field.Index,
			Type:       field.Type,
			Kind:       kind,
			Expression: strings.TrimSpace(field.Tag.Get(types.TagPointcut)),
			Err:        err,
		})
	}
	r.operations.Store(aspectType, ops)
	return withAspectName(ops, aspectName)
}

// withAspectName copies ops, naming aspectName in classification errors.
func withAspectName(ops []Operation, aspectName string) []Operation {
	result := make([]Operation, len(ops))
	copy(result, ops)
	for i := range result {
		if e, ok := result[i].Err.(*types.AmbiguousAdviceClassificationError); ok && e.AspectName != aspectName {
			named := *e
			named.AspectName = aspectName
			result[i].Err = &named
		}
	}
	return result
}

func (r *Resolver) parsePerClause(aspectName string, aspectType reflect.Type, perClause string) (types.InstantiationModel, types.Pointcut, error) {
	perClause = strings.TrimSpace(perClause)
	if perClause == "" || strings.EqualFold(perClause, types.Singleton.String()) {
		return types.Singleton, types.TruePointcut, nil
	}
	kind := perClause
	if i := strings.Index(perClause, "("); i >= 0 {
		kind = strings.TrimSpace(perClause[:i])
	}
	var model types.InstantiationModel
	switch strings.ToLower(kind) {
	case types.PerThis.String():
		model = types.PerThis
	case types.PerTarget.String():
		model = types.PerTarget
	case types.PerTypeWithin.String():
		model = types.PerTypeWithin
	case types.Singleton.String():
		return types.Singleton, types.TruePointcut, nil
	default:
		return 0, nil, &types.UnsupportedPerClauseError{AspectName: aspectName, Kind: kind}
	}

	start := strings.Index(perClause, "(")
	end := strings.LastIndex(perClause, ")")
	if start < 0 || end <= start {
		return 0, nil, &types.InvalidAspectError{AspectName: aspectName, TypeName: aspectType.String(), Reason: fmt.Sprintf("malformed per-clause %q", perClause)}
	}
	expression := strings.TrimSpace(perClause[start+1 : end])

	var pc types.Pointcut
	var err error
	if model == types.PerTypeWithin {
		pc, err = r.parser.ParseTypePattern(expression)
	} else {
		pc, err = r.parser.Parse(expression, nil)
	}
	if err != nil {
		return 0, nil, err
	}
	return model, pc, nil
}

// findMarker searches t, then its embedded structs nearest first, for the aspect marker.
// The marker type itself is the root of every aspect and never counts as one.
func findMarker(t reflect.Type) (reflect.Type, reflect.StructField, bool) {
	t = reflectutil.Indirect(t)
	if t == nil || t.Kind() != reflect.Struct || t == types.AspectMetaType {
		return nil, reflect.StructField{}, false
	}
	if sf, ok := reflectutil.FindEmbedded(t, types.AspectMetaType); ok {
		return t, sf, true
	}
	for _, embedded := range reflectutil.EmbeddedTypes(t) {
		if embedded == types.AspectMetaType {
			continue
		}
		if sf, ok := reflectutil.FindEmbedded(embedded, types.AspectMetaType); ok {
			return embedded, sf, true
		}
	}
	return nil, reflect.StructField{}, false
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
