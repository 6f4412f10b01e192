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

import (
	"fmt"

	"github.com/rulego/groupreduce/aggregator"
	"github.com/rulego/groupreduce/failure"
	"github.com/rulego/groupreduce/functions"
	"github.com/rulego/groupreduce/schema"
)

const (
	reasonUnsupportedAggregation = "Unsupported aggregation definition"
	reasonNoExpressionFactory    = "Cannot find an Expression Factory"
	reasonUnsupportedFilter      = "Filter Operation is not supported. Only ANY, MIN and MAX are supported."
)

// GroupByPlan is the relational form of a GroupBy stage
type GroupByPlan struct {
	GroupBy []Expression
	// Select maps output columns to their expressions
	Select map[string]Expression
	// Order lists the output columns, group by fields first
	Order []string
}

// DedupPlan is the relational form of a Dedup stage
type DedupPlan struct {
	PartitionBy []Expression
	// Filter orders the rows of a partition, nil keeps any row
	Filter *FilterExpression
}

// FilterExpression selects the surviving row of a dedup partition
type FilterExpression struct {
	Kind       functions.SelectionKind
	Expression Expression
}

// TranslateGroupBy builds the pushdown plan of a GroupBy stage. The BigQuery
// capability is only requested when an aggregate needs it.
func TranslateGroupBy(engine Engine, relation Relation, groupBy []string, descriptors []functions.Descriptor) (*GroupByPlan, Result) {
	requiresBigQuery := false
	for _, d := range descriptors {
		if !Pushable(d.Kind) {
			return nil, infeasible(reasonUnsupportedAggregation)
		}
		if RequiresBigQuery(d.Kind) {
			requiresBigQuery = true
		}
	}

	factory, ok := expressionFactory(engine, requiresBigQuery)
	if !ok {
		return nil, infeasible(reasonNoExpressionFactory)
	}

	plan := &GroupByPlan{
		GroupBy: make([]Expression, 0, len(groupBy)),
		Select:  make(map[string]Expression, len(groupBy)+len(descriptors)),
		Order:   make([]string, 0, len(groupBy)+len(descriptors)),
	}
	for _, field := range groupBy {
		column, err := ColumnName(factory, relation, field)
		if err != nil {
			return nil, infeasible(fmt.Sprintf("%s: %v", reasonUnsupportedAggregation, err))
		}
		expr, err := factory.Compile(column)
		if err != nil {
			return nil, infeasible(fmt.Sprintf("%s: %v", reasonUnsupportedAggregation, err))
		}
		plan.GroupBy = append(plan.GroupBy, expr)
		plan.Select[field] = expr
		plan.Order = append(plan.Order, field)
	}

	bigQuery := factory.Capabilities().Contains(BigQuery)
	for _, d := range descriptors {
		column, err := ColumnName(factory, relation, d.Field)
		if err != nil {
			return nil, infeasible(fmt.Sprintf("%s: %v", reasonUnsupportedAggregation, err))
		}
		template, ok := ANSITemplate(d.Kind)
		if !ok && bigQuery {
			template, ok = BigQueryTemplate(d.Kind)
		}
		if !ok {
			return nil, infeasible(reasonUnsupportedAggregation)
		}
		expr, err := factory.Compile(fmt.Sprintf(template, column))
		if err != nil {
			return nil, infeasible(fmt.Sprintf("%s: %v", reasonUnsupportedAggregation, err))
		}
		plan.Select[d.Name] = expr
		plan.Order = append(plan.Order, d.Name)
	}
	return plan, feasible()
}

// TranslateDedup builds the pushdown plan of a Dedup stage. Only ANY, MIN
// and MAX filters can be pushed down.
func TranslateDedup(engine Engine, relation Relation, uniqueFields []string, filter *aggregator.Filter) (*DedupPlan, Result) {
	if filter != nil {
		switch filter.Kind {
		case functions.SelectAny, functions.SelectMin, functions.SelectMax:
		default:
			return nil, infeasible(reasonUnsupportedFilter)
		}
	}
	factory, ok := expressionFactory(engine, false)
	if !ok {
		return nil, infeasible(reasonNoExpressionFactory)
	}

	plan := &DedupPlan{PartitionBy: make([]Expression, 0, len(uniqueFields))}
	for _, field := range uniqueFields {
		expr, err := compileColumn(factory, relation, field)
		if err != nil {
			return nil, infeasible(err.Error())
		}
		plan.PartitionBy = append(plan.PartitionBy, expr)
	}
	if filter != nil {
		expr, err := compileColumn(factory, relation, filter.Field)
		if err != nil {
			return nil, infeasible(err.Error())
		}
		plan.Filter = &FilterExpression{Kind: filter.Kind, Expression: expr}
	}
	return plan, feasible()
}

func compileColumn(factory ExpressionFactory, relation Relation, field string) (Expression, error) {
	column, err := ColumnName(factory, relation, field)
	if err != nil {
		return nil, err
	}
	return factory.Compile(column)
}

func expressionFactory(engine Engine, bigQuery bool) (ExpressionFactory, bool) {
	if engine == nil {
		return nil, false
	}
	if bigQuery {
		return engine.ExpressionFactory(BigQuery)
	}
	return engine.ExpressionFactory()
}

// ColumnName returns the column reference of field. The wildcard is kept
// as is, and the qualified name is used when the factory can provide one.
func ColumnName(factory ExpressionFactory, relation Relation, field string) (string, error) {
	if field == functions.Wildcard {
		return field, nil
	}
	if factory.Capabilities().Contains(CanGetQualifiedColumnName) {
		return factory.QualifiedColumnName(relation, field)
	}
	return field, nil
}

// ValidateConditions checks that every field referenced by a condition
// exists in the resolved output schema, descending into nested records.
func ValidateConditions(output *schema.Schema, descriptors []functions.Descriptor, collector *failure.Collector) {
	functions.ValidateConditions(output, descriptors, collector)
}
