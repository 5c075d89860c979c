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

// Package order sorts advisors into invocation order.
//
// Compare is a partial order: advisors of different aspects sharing the same numeric order
// are Unordered, and SortByPrecedence keeps such pairs in their incoming relative order.
// Within one aspect, before advice declared first runs first, while for the after family
// the advice declared last has the higher precedence.
package order

import (
	"fmt"

	"github.com/rulego/aop/api/types"
)

// Precedence is the outcome of comparing two advisors.
// Precedence 两个增强器之间的优先级关系
type Precedence int

const (
	// Higher the first advisor runs before the second on the way in.
	Higher Precedence = -1
	// Unordered the advisors may run in either relative order.
	Unordered Precedence = 0
	// Lower the first advisor runs after the second on the way in.
	Lower Precedence = 1
)

func (p Precedence) String() string {
	switch p {
	case Higher:
		return "higher"
	case Lower:
		return "lower"
	case Unordered:
		return "unordered"
	default:
		return fmt.Sprintf("Precedence(%d)", int(p))
	}
}

// Reverse returns the precedence seen from the other advisor.
func (p Precedence) Reverse() Precedence {
	return -p
}

// Compare decides the relative precedence of a and b.
//
//  1. A lower numeric order wins.
//  2. On equal orders within the same aspect: if either is after advice, the one declared
//     later wins, otherwise the one declared earlier wins.
//  3. Anything else is Unordered.
func Compare(a, b types.PrecedenceInfo) Precedence {
	if oa, ob := a.GetOrder(), b.GetOrder(); oa != ob {
		if oa < ob {
			return Higher
		}
		return Lower
	}
	if a.GetAspectName() != b.GetAspectName() {
		return Unordered
	}
	return compareWithinAspect(a, b)
}

func compareWithinAspect(a, b types.PrecedenceInfo) Precedence {
	delta := a.GetDeclarationOrder() - b.GetDeclarationOrder()
	if delta == 0 {
		return Unordered
	}
	if a.IsAfterAdvice() || b.IsAfterAdvice() {
		// the advice declared last has the higher precedence
		if delta < 0 {
			return Lower
		}
		return Higher
	}
	if delta < 0 {
		return Higher
	}
	return Lower
}
