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

package relational

// Expression is a compiled engine expression
type Expression interface {
	// Extract returns the expression text
	Extract() string
}

// Relation is the input of a pushed down stage
type Relation interface {
	Name() string
	Columns() []string
}

// ExpressionFactory compiles expression text for an engine
type ExpressionFactory interface {
	Capabilities() Capabilities
	Compile(sql string) (Expression, error)
	// QualifiedColumnName returns the quoted column name of field in rel
	QualifiedColumnName(rel Relation, field string) (string, error)
}

// Engine is an external relational engine
type Engine interface {
	// ExpressionFactory returns a factory supporting every requested capability
	ExpressionFactory(caps ...Capability) (ExpressionFactory, bool)
}

// Result tells whether a stage can be pushed down and why not
type Result struct {
	Feasible bool
	Reason   string
}

func feasible() Result {
	return Result{Feasible: true}
}

func infeasible(reason string) Result {
	return Result{Reason: reason}
}

func (r Result) String() string {
	if r.Feasible {
		return "feasible"
	}
	return "not feasible: " + r.Reason
}
