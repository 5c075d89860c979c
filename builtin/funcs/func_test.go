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

package funcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinFunc(t *testing.T) {
	t.Run("TestHasPrefixFunc", func(t *testing.T) {
		f, ok := PointcutFuncMap.Get("hasPrefix")
		assert.True(t, ok)
		fn, ok := f.(func(string, string) bool)
		assert.True(t, ok)
		assert.True(t, fn("GetOrder", "Get"))
		assert.False(t, fn("SaveOrder", "Get"))
	})

	t.Run("TestPointcutFuncMap", func(t *testing.T) {
		PointcutFuncMap.RegisterAll(map[string]any{
			"test": func(a int) int {
				return a + 1
			},
		})
		PointcutFuncMap.Register("test2", func(a int) int {
			return a + 1
		})
		cp := PointcutFuncMap.GetAll()
		_, ok := cp["test"]
		assert.True(t, ok)
		_, ok = cp["test2"]
		assert.True(t, ok)
		assert.Equal(t, len(cp), len(PointcutFuncMap.Names()))

		PointcutFuncMap.UnRegister("test")
		_, ok = PointcutFuncMap.Get("test")
		assert.False(t, ok)

		_, ok = PointcutFuncMap.Get("test2")
		assert.True(t, ok)

		PointcutFuncMap.UnRegister("test2")
		_, ok = PointcutFuncMap.Get("test2")
		assert.False(t, ok)
	})
}
