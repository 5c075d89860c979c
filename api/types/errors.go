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

package types

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAspect the type does not qualify as an aspect.
	ErrInvalidAspect = errors.New("invalid aspect")
	// ErrUnsupportedPerClause the aspect uses an instantiation model that cannot be represented.
	ErrUnsupportedPerClause = errors.New("unsupported per-clause")
	// ErrAmbiguousAdvice the operation cannot be classified into a known advice kind.
	ErrAmbiguousAdvice = errors.New("ambiguous advice classification")
	// ErrIllegalState registry scoping contradicts the aspect per-clause.
	ErrIllegalState = errors.New("illegal state")
	// ErrInvalidPointcut the pointcut expression cannot be compiled.
	ErrInvalidPointcut = errors.New("invalid pointcut")
)

// InvalidAspectError is returned when a type carries no aspect marker, or declares unsupported directives.
type InvalidAspectError struct {
	AspectName string
	TypeName   string
	Reason     string
}

func (e *InvalidAspectError) Error() string {
	return fmt.Sprintf("invalid aspect. aspectName=%s, type=%s: %s", e.AspectName, e.TypeName, e.Reason)
}

func (e *InvalidAspectError) Is(target error) bool {
	return target == ErrInvalidAspect
}

// UnsupportedPerClauseError is returned for per-clauses other than singleton, perthis, pertarget and pertypewithin.
type UnsupportedPerClauseError struct {
	AspectName string
	Kind       string
}

func (e *UnsupportedPerClauseError) Error() string {
	return fmt.Sprintf("unsupported per-clause. aspectName=%s, kind=%s", e.AspectName, e.Kind)
}

func (e *UnsupportedPerClauseError) Is(target error) bool {
	return target == ErrUnsupportedPerClause
}

// AmbiguousAdviceClassificationError is returned for an operation whose advice kind cannot be determined.
type AmbiguousAdviceClassificationError struct {
	AspectName string
	Operation  string
	Reason     string
}

func (e *AmbiguousAdviceClassificationError) Error() string {
	return fmt.Sprintf("ambiguous advice. aspectName=%s, operation=%s: %s", e.AspectName, e.Operation, e.Reason)
}

func (e *AmbiguousAdviceClassificationError) Is(target error) bool {
	return target == ErrAmbiguousAdvice
}

// IllegalStateError is returned when a lazily instantiated aspect is registered with singleton scope.
type IllegalStateError struct {
	AspectName string
	Reason     string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("illegal state. aspectName=%s: %s", e.AspectName, e.Reason)
}

func (e *IllegalStateError) Is(target error) bool {
	return target == ErrIllegalState
}

// InvalidPointcutError wraps a compile failure of a pointcut expression.
type InvalidPointcutError struct {
	Expression string
	Err        error
}

func (e *InvalidPointcutError) Error() string {
	return fmt.Sprintf("invalid pointcut. expression=%s: %v", e.Expression, e.Err)
}

func (e *InvalidPointcutError) Is(target error) bool {
	return target == ErrInvalidPointcut
}

func (e *InvalidPointcutError) Unwrap() error {
	return e.Err
}
