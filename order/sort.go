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

package order

import (
	"errors"

	"github.com/rulego/aop/api/types"
)

// ErrCycle the precedence constraints contradict each other.
var ErrCycle = errors.New("precedence cycle")

// SortByPrecedence returns the advisors in invocation order, highest precedence first.
// The input slice is not modified. When the constraints form a cycle, the insertion order is returned.
func SortByPrecedence(advisors []types.Advisor) []types.Advisor {
	return SortWithLogger(advisors, nil)
}

// SortWithLogger is SortByPrecedence, logging the fallback to insertion order on logger.
func SortWithLogger(advisors []types.Advisor, logger types.Logger) []types.Advisor {
	infos := make([]types.PrecedenceInfo, len(advisors))
	for i, a := range advisors {
		infos[i] = a
	}
	indexes, err := PartialSort(infos, Compare)
	result := make([]types.Advisor, len(advisors))
	if err != nil {
		if logger != nil {
			logger.Printf("advisor sort: %v, keeping insertion order of %d advisors", err, len(advisors))
		}
		copy(result, advisors)
		return result
	}
	for i, index := range indexes {
		result[i] = advisors[index]
	}
	return result
}

// PartialSort topologically sorts items under compare and returns the resulting permutation
// of indexes. An edge is added only for strict Higher or Lower results. Among the items whose
// predecessors are all placed, the earliest inserted goes first, so unordered items keep their
// relative order. ErrCycle is returned when no such order exists.
func PartialSort(items []types.PrecedenceInfo, compare func(a, b types.PrecedenceInfo) Precedence) ([]int, error) {
	n := len(items)
	successors := make([][]int, n)
	inDegree := make([]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			switch compare(items[i], items[j]) {
			case Higher:
				successors[i] = append(successors[i], j)
				inDegree[j]++
			case Lower:
				successors[j] = append(successors[j], i)
				inDegree[i]++
			}
		}
	}

	placed := make([]bool, n)
	result := make([]int, 0, n)
	for len(result) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !placed[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, ErrCycle
		}
		placed[next] = true
		result = append(result, next)
		for _, s := range successors[next] {
			inDegree[s]--
		}
	}
	return result, nil
}
