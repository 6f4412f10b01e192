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
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm/runtime"
)

// ordering comparisons are rewritten to these functions so that a null
// operand makes the comparison false instead of failing the evaluation
var nullSafeComparisons = map[string]struct {
	function string
	compare  func(a, b interface{}) bool
}{
	"<":  {"null_safe_lt", runtime.Less},
	"<=": {"null_safe_le", runtime.LessOrEqual},
	">":  {"null_safe_gt", runtime.More},
	">=": {"null_safe_ge", runtime.MoreOrEqual},
}

func nullSafeOptions() []expr.Option {
	opts := make([]expr.Option, 0, len(nullSafeComparisons)+1)
	for op, c := range nullSafeComparisons {
		op, compare := op, c.compare
		opts = append(opts, expr.Function(c.function, func(params ...any) (result any, err error) {
			a, b := params[0], params[1]
			if a == nil || b == nil {
				return false, nil
			}
			defer func() {
				if r := recover(); r != nil {
					result, err = false, fmt.Errorf("invalid operation: %T %s %T", a, op, b)
				}
			}()
			return compare(a, b), nil
		}, new(func(any, any) bool)))
	}
	return append(opts, expr.Patch(nullSafePatcher{}))
}

type nullSafePatcher struct{}

func (nullSafePatcher) Visit(node *ast.Node) {
	n, ok := (*node).(*ast.BinaryNode)
	if !ok {
		return
	}
	c, ok := nullSafeComparisons[n.Operator]
	if !ok {
		return
	}
	ast.Patch(node, &ast.CallNode{
		Callee:    &ast.IdentifierNode{Value: c.function},
		Arguments: []ast.Node{n.Left, n.Right},
	})
}
