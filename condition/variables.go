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
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/rulego/groupreduce/utils/fieldpath"
)

// Variables parses an expression and returns every field path it reads, in
// order of first appearance. Member chains such as a.b[0].c yield one path;
// function names, closure pointers and let-bound names are not fields.
func Variables(expression string) ([][]fieldpath.FieldPart, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}
	c := &pathCollector{
		covered:  make(map[ast.Node]bool),
		declared: make(map[string]bool),
	}
	ast.Walk(&tree.Node, c)

	var paths [][]fieldpath.FieldPart
	seen := make(map[string]bool)
	add := func(p []fieldpath.FieldPart) {
		if len(p) == 0 || p[0].IsIndex || c.declared[p[0].Name] || p[0].Name == "$env" {
			return
		}
		key := fieldpath.Join(p)
		if seen[key] {
			return
		}
		seen[key] = true
		paths = append(paths, p)
	}
	for _, n := range c.candidates {
		if c.covered[n] {
			continue
		}
		if p, ok := pathOf(n); ok {
			add(p)
		}
	}
	return paths, nil
}

// pathCollector sees nodes bottom up, so inner chain nodes are recorded as
// candidates before their parent marks them covered.
type pathCollector struct {
	candidates []ast.Node
	covered    map[ast.Node]bool
	declared   map[string]bool
}

func (c *pathCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c.candidates = append(c.candidates, n)
	case *ast.MemberNode:
		c.covered[n.Node] = true
		if n.Method {
			return
		}
		c.candidates = append(c.candidates, n)
	case *ast.ChainNode:
		c.covered[n.Node] = true
		c.candidates = append(c.candidates, n)
	case *ast.CallNode:
		c.covered[n.Callee] = true
		// obj.method(): obj is still read
		if m, ok := n.Callee.(*ast.MemberNode); ok && m.Method {
			c.candidates = append(c.candidates, m.Node)
			delete(c.covered, m.Node)
		}
	case *ast.VariableDeclaratorNode:
		c.declared[n.Name] = true
	}
}

func pathOf(node ast.Node) ([]fieldpath.FieldPart, bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return []fieldpath.FieldPart{{Name: n.Value}}, true
	case *ast.ChainNode:
		return pathOf(n.Node)
	case *ast.MemberNode:
		base, ok := pathOf(n.Node)
		if !ok {
			return nil, false
		}
		switch p := n.Property.(type) {
		case *ast.StringNode:
			return append(base, fieldpath.FieldPart{Name: p.Value}), true
		case *ast.IntegerNode:
			return append(base, fieldpath.FieldPart{Index: p.Value, IsIndex: true}), true
		}
		// computed property: the static prefix is what can be checked
		return base, true
	}
	return nil, false
}
