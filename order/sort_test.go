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
	"fmt"
	"strings"
	"testing"

	"github.com/rulego/aop/api/types"
	"github.com/rulego/aop/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fakeAdvisor struct {
	aspect string
	order  int
	decl   int
	kind   types.AdviceKind
}

func (a *fakeAdvisor) GetAspectName() string { return a.aspect }
func (a *fakeAdvisor) GetDeclarationOrder() int { return a.decl }
func (a *fakeAdvisor) GetOrder() int { return a.order }
func (a *fakeAdvisor) IsBeforeAdvice() bool { return a.kind.IsBefore() }
func (a *fakeAdvisor) IsAfterAdvice() bool { return a.kind.IsAfter() }
func (a *fakeAdvisor) GetPointcut() types.Pointcut { return types.TruePointcut }
func (a *fakeAdvisor) GetAdvice() types.Advice { return types.EmptyAdvice }
func (a *fakeAdvisor) IsLazy() bool { return false }
func (a *fakeAdvisor) IsAdviceInstantiated() bool { return true }
func (a *fakeAdvisor) String() string { return fmt.Sprintf("%s.%s%d", a.aspect, a.kind, a.decl) }

func advisor(aspect string, order, decl int, kind types.AdviceKind) *fakeAdvisor {
	return &fakeAdvisor{aspect: aspect, order: order, decl: decl, kind: kind}
}

func names(advisors []types.Advisor) []string {
	var result []string
	for _, a := range advisors {
		result = append(result, a.(*fakeAdvisor).String())
	}
	return result
}

func TestCompareNumericOrder(t *testing.T) {
	assert.Equal(t, Higher, Compare(advisor("a", 1, 5, types.KindAfter), advisor("b", 2, 0, types.KindBefore)))
	assert.Equal(t, Lower, Compare(advisor("a", 2, 0, types.KindBefore), advisor("a", 1, 5, types.KindBefore)))
	assert.Equal(t, Higher, Compare(advisor("a", types.HighestPrecedence, 0, types.KindBefore), advisor("b", types.LowestPrecedence, 0, types.KindBefore)))
}

func TestCompareWithinAspect(t *testing.T) {
	before0 := advisor("a", 0, 0, types.KindBefore)
	before1 := advisor("a", 0, 1, types.KindBefore)
	around2 := advisor("a", 0, 2, types.KindAround)
	after3 := advisor("a", 0, 3, types.KindAfterReturning)
	after4 := advisor("a", 0, 4, types.KindAfter)

	assert.Equal(t, Higher, Compare(before0, before1))
	assert.Equal(t, Lower, Compare(before1, before0))
	assert.Equal(t, Higher, Compare(before1, around2))
	assert.Equal(t, Lower, Compare(after3, after4))
	assert.Equal(t, Higher, Compare(after4, after3))
	assert.Equal(t, Lower, Compare(before0, after3))
	assert.Equal(t, Higher, Compare(after3, around2))
	assert.Equal(t, Unordered, Compare(before0, advisor("a", 0, 0, types.KindBefore)))
}

func TestCompareDifferentAspects(t *testing.T) {
	assert.Equal(t, Unordered, Compare(advisor("a", 3, 0, types.KindBefore), advisor("b", 3, 1, types.KindBefore)))
	assert.Equal(t, Unordered, Compare(advisor("a", 3, 0, types.KindAfter), advisor("b", 3, 1, types.KindAfter)))
}

func genAdvisor() *rapid.Generator[*fakeAdvisor] {
	return rapid.Custom(func(t *rapid.T) *fakeAdvisor {
		return advisor(
			rapid.SampledFrom([]string{"a", "b", "c"}).Draw(t, "aspect"),
			rapid.IntRange(0, 2).Draw(t, "order"),
			rapid.IntRange(0, 4).Draw(t, "decl"),
			rapid.SampledFrom([]types.AdviceKind{types.KindBefore, types.KindAfter, types.KindAfterReturning, types.KindAfterThrowing, types.KindAround}).Draw(t, "kind"),
		)
	})
}

func TestCompareAntisymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genAdvisor().Draw(t, "a")
		b := genAdvisor().Draw(t, "b")
		if got, want := Compare(a, b), Compare(b, a).Reverse(); got != want {
			t.Fatalf("Compare(%s, %s)=%s, reversed=%s", a, b, got, want)
		}
	})
}

func TestSortProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOfN(genAdvisor(), 0, 12).Draw(t, "advisors")
		advisors := make([]types.Advisor, len(items))
		for i, item := range items {
			advisors[i] = item
		}
		infos := make([]types.PrecedenceInfo, len(items))
		for i, item := range items {
			infos[i] = item
		}
		_, cycleErr := PartialSort(infos, Compare)

		sorted := SortByPrecedence(advisors)
		if len(sorted) != len(advisors) {
			t.Fatalf("sorted %d advisors into %d", len(advisors), len(sorted))
		}
		seen := map[types.Advisor]int{}
		for _, a := range sorted {
			seen[a]++
		}
		for _, a := range advisors {
			if seen[a] != 1 {
				t.Fatalf("advisor %s appears %d times", a, seen[a])
			}
		}
		if cycleErr != nil {
			for i := range advisors {
				if sorted[i] != advisors[i] {
					t.Fatalf("fallback must keep insertion order")
				}
			}
			return
		}
		for i := 0; i < len(sorted); i++ {
			for j := i + 1; j < len(sorted); j++ {
				if Compare(sorted[j], sorted[i]) == Higher {
					t.Fatalf("%s placed after %s", sorted[j], sorted[i])
				}
			}
		}
	})
}

func TestSortNumericOrder(t *testing.T) {
	advisors := []types.Advisor{
		advisor("c", 10, 0, types.KindBefore),
		advisor("a", 1, 0, types.KindBefore),
		advisor("b", 5, 0, types.KindAfter),
	}
	assert.Equal(t, []string{"a.before0", "b.after0", "c.before0"}, names(SortByPrecedence(advisors)))
	assert.Equal(t, "c.before0", advisors[0].(*fakeAdvisor).String())
}

func TestSortWithinAspect(t *testing.T) {
	befores := []types.Advisor{
		advisor("a", 0, 2, types.KindBefore),
		advisor("a", 0, 0, types.KindBefore),
		advisor("a", 0, 1, types.KindBefore),
	}
	assert.Equal(t, []string{"a.before0", "a.before1", "a.before2"}, names(SortByPrecedence(befores)))

	afters := []types.Advisor{
		advisor("a", 0, 0, types.KindAfter),
		advisor("a", 0, 1, types.KindAfterReturning),
		advisor("a", 0, 2, types.KindAfterThrowing),
	}
	assert.Equal(t, []string{"a.afterThrowing2", "a.afterReturning1", "a.after0"}, names(SortByPrecedence(afters)))
}

func TestSortAllUnorderedKeepsInsertionOrder(t *testing.T) {
	advisors := []types.Advisor{
		advisor("c", 0, 0, types.KindAfter),
		advisor("a", 0, 0, types.KindBefore),
		advisor("b", 0, 0, types.KindAround),
	}
	assert.Equal(t, []string{"c.after0", "a.before0", "b.around0"}, names(SortByPrecedence(advisors)))
}

func TestSortCycleFallsBack(t *testing.T) {
	advisors := []types.Advisor{
		advisor("a", 0, 0, types.KindBefore),
		advisor("a", 0, 1, types.KindAfter),
		advisor("a", 0, 2, types.KindBefore),
	}
	infos := []types.PrecedenceInfo{advisors[0], advisors[1], advisors[2]}
	_, err := PartialSort(infos, Compare)
	require.ErrorIs(t, err, ErrCycle)

	logger := test.NewLogger(t)
	sorted := SortWithLogger(advisors, logger)
	assert.Equal(t, []string{"a.before0", "a.after1", "a.before2"}, names(sorted))
	require.Len(t, logger.Lines(), 1)
	assert.True(t, strings.Contains(logger.Lines()[0], "insertion order"))
}

func TestSortLoggingAndSecurity(t *testing.T) {
	logBefore := advisor("logging", 0, 0, types.KindBefore)
	logAfter := advisor("logging", 0, 1, types.KindAfter)
	secBefore := advisor("security", 0, 0, types.KindBefore)

	assert.Equal(t, Unordered, Compare(logBefore, secBefore))
	assert.Equal(t, Unordered, Compare(logAfter, secBefore))

	sorted := SortByPrecedence([]types.Advisor{logBefore, logAfter, secBefore})
	assert.Equal(t, []string{"logging.after1", "logging.before0", "security.before0"}, names(sorted))
}

func TestSortEmpty(t *testing.T) {
	assert.Empty(t, SortByPrecedence(nil))
}
