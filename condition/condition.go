/*
 * Copyright 2025 The RuleGo Authors.
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

package condition

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rulego/groupreduce/schema"
	"github.com/rulego/groupreduce/utils/fieldpath"
)

// Condition is a boolean predicate over a record
type Condition interface {
	// Evaluate runs the predicate. Ordering comparisons with a null operand
	// are false; other evaluation failures are returned.
	Evaluate(record *schema.Record) (bool, error)
	// Expression returns the source text
	Expression() string
	// Paths lists the field paths the expression reads
	Paths() [][]fieldpath.FieldPart
}

type ExprCondition struct {
	expression string
	program    *vm.Program
	paths      [][]fieldpath.FieldPart
}

var exprOptions = []expr.Option{
	expr.Function("like_match", func(params ...any) (any, error) {
		if len(params) != 2 {
			return false, fmt.Errorf("like_match function requires 2 parameters")
		}
		text, ok1 := params[0].(string)
		pattern, ok2 := params[1].(string)
		if !ok1 || !ok2 {
			return false, fmt.Errorf("like_match function requires string parameters")
		}
		return matchesLikePattern(text, pattern), nil
	}),
	expr.Function("is_null", func(params ...any) (any, error) {
		if len(params) != 1 {
			return false, fmt.Errorf("is_null function requires 1 parameter")
		}
		return params[0] == nil, nil
	}),
	expr.Function("is_not_null", func(params ...any) (any, error) {
		if len(params) != 1 {
			return false, fmt.Errorf("is_not_null function requires 1 parameter")
		}
		return params[0] != nil, nil
	}),
	expr.AllowUndefinedVariables(),
	expr.AsBool(),
}

func init() {
	exprOptions = append(exprOptions, nullSafeOptions()...)
}

// NewExprCondition compiles a boolean expression. Field names are plain
// identifiers and nested fields are reached with dots or brackets,
// e.g. "amt > 10 && author.contact.city == 'Paris'".
func NewExprCondition(expression string) (*ExprCondition, error) {
	paths, err := Variables(expression)
	if err != nil {
		return nil, err
	}
	program, err := expr.Compile(expression, exprOptions...)
	if err != nil {
		return nil, err
	}
	return &ExprCondition{expression: expression, program: program, paths: paths}, nil
}

func (ec *ExprCondition) Evaluate(record *schema.Record) (bool, error) {
	var env map[string]interface{}
	if record != nil {
		env = record.AsMap()
	} else {
		env = map[string]interface{}{}
	}
	result, err := expr.Run(ec.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", ec.expression, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q returned %T, expected bool", ec.expression, result)
	}
	return b, nil
}

func (ec *ExprCondition) Expression() string {
	return ec.expression
}

func (ec *ExprCondition) Paths() [][]fieldpath.FieldPart {
	return ec.paths
}

// matchesLikePattern implements SQL LIKE matching.
// % matches any sequence and _ matches exactly one character.
func matchesLikePattern(text, pattern string) bool {
	return likeMatch(text, pattern, 0, 0)
}

func likeMatch(text, pattern string, textIndex, patternIndex int) bool {
	if patternIndex >= len(pattern) {
		return textIndex >= len(text)
	}

	// text exhausted: only trailing % may remain
	if textIndex >= len(text) {
		for i := patternIndex; i < len(pattern); i++ {
			if pattern[i] != '%' {
				return false
			}
		}
		return true
	}

	switch patternChar := pattern[patternIndex]; patternChar {
	case '%':
		if likeMatch(text, pattern, textIndex, patternIndex+1) {
			return true
		}
		for i := textIndex; i < len(text); i++ {
			if likeMatch(text, pattern, i+1, patternIndex+1) {
				return true
			}
		}
		return false
	case '_':
		return likeMatch(text, pattern, textIndex+1, patternIndex+1)
	default:
		if text[textIndex] == patternChar {
			return likeMatch(text, pattern, textIndex+1, patternIndex+1)
		}
		return false
	}
}
