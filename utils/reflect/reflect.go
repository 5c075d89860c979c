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

// Package reflect provides utility functions for reflection-based operations.
// It includes functions for walking struct fields in declaration order, reading
// struct tags and resolving field values through embedded structs.
//
// Key features:
// - GetFields: Retrieves exported fields in source declaration order, expanding embedded structs in place
// - EmbeddedTypes: Lists the embedded struct types of a struct, nearest first
// - TagMap: Collects selected struct tag values into a map
// - FieldValue: Resolves a field by index path on a value, following pointers
//
// The functions in this package are used to discover advice-bearing operations on
// aspect structs, where the order of declaration is significant.
package reflect

import (
	"errors"
	"reflect"
)

// ErrNotStruct the value does not resolve to a struct.
var ErrNotStruct = errors.New("value is not a struct")

// Field describes one exported struct field reached from the root type.
type Field struct {
	// Name is the field name.
	Name string
	// Index is the index path usable with reflect.Value.FieldByIndex.
	Index []int
	// Type is the field type.
	Type reflect.Type
	// Tag is the field tag.
	Tag reflect.StructTag
	// Owner is the struct type declaring the field.
	Owner reflect.Type
}

// Indirect strips pointer types.
func Indirect(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// GetFields returns the exported fields of t in source declaration order.
// Embedded structs are expanded in place unless expand returns false for them,
// in which case they are skipped entirely.
// GetFields 按声明顺序获取结构体导出字段，内嵌结构体在原位置展开
func GetFields(t reflect.Type, expand func(reflect.StructField) bool) []Field {
	t = Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var fields []Field
	collectFields(t, nil, expand, map[reflect.Type]bool{t: true}, &fields)
	return fields
}

func collectFields(t reflect.Type, prefix []int, expand func(reflect.StructField) bool, visiting map[reflect.Type]bool, out *[]Field) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int{}, prefix...), i)
		if sf.Anonymous {
			et := Indirect(sf.Type)
			if et.Kind() == reflect.Struct {
				if expand != nil && !expand(sf) {
					continue
				}
				//跳过循环内嵌
				if visiting[et] {
					continue
				}
				visiting[et] = true
				collectFields(et, index, expand, visiting, out)
				delete(visiting, et)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		*out = append(*out, Field{
			Name:  sf.Name,
			Index: index,
			Type:  sf.Type,
			Tag:   sf.Tag,
			Owner: t,
		})
	}
}

// EmbeddedTypes returns the struct types embedded by t, breadth first: direct embeddings
// before their own embeddings. t itself is not included.
func EmbeddedTypes(t reflect.Type) []reflect.Type {
	t = Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var result []reflect.Type
	seen := map[reflect.Type]bool{t: true}
	queue := []reflect.Type{t}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for i := 0; i < current.NumField(); i++ {
			sf := current.Field(i)
			if !sf.Anonymous {
				continue
			}
			et := Indirect(sf.Type)
			if et.Kind() != reflect.Struct || seen[et] {
				continue
			}
			seen[et] = true
			result = append(result, et)
			queue = append(queue, et)
		}
	}
	return result
}

// FindEmbedded returns the embedded field of t (direct embeddings only) whose type is target.
func FindEmbedded(t reflect.Type, target reflect.Type) (reflect.StructField, bool) {
	t = Indirect(t)
	if t == nil || t.Kind() != reflect.Struct {
		return reflect.StructField{}, false
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && Indirect(sf.Type) == target {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}

// TagMap collects the values of the given keys present in tag.
func TagMap(tag reflect.StructTag, keys ...string) map[string]string {
	values := make(map[string]string)
	for _, key := range keys {
		if v, ok := tag.Lookup(key); ok {
			values[key] = v
		}
	}
	return values
}

// FieldValue resolves the field at index on v, following pointers.
// It fails instead of panicking when an embedded pointer on the path is nil.
func FieldValue(v interface{}, index []int) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return reflect.Value{}, ErrNotStruct
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrNotStruct
	}
	return rv.FieldByIndexErr(index)
}
