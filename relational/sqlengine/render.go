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

package sqlengine

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/rulego/groupreduce/functions"
	"github.com/rulego/groupreduce/relational"
)

// RenderGroupBy renders a group by plan as a SELECT statement over table
func RenderGroupBy(plan *relational.GroupByPlan, table string) (string, error) {
	if plan == nil {
		return "", errors.New("nil group by plan")
	}
	selects := make([]string, 0, len(plan.Order))
	for _, name := range plan.Order {
		expr, ok := plan.Select[name]
		if !ok {
			return "", errors.New("no expression for column " + name)
		}
		selects = append(selects, expr.Extract()+" AS "+pq.QuoteIdentifier(name))
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(pq.QuoteIdentifier(table))
	if len(plan.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(joinExpressions(plan.GroupBy))
	}
	return sb.String(), nil
}

// RenderDedup renders a dedup plan over table, keeping one row per
// partition with ROW_NUMBER. Without partition expressions every row is kept.
func RenderDedup(plan *relational.DedupPlan, table string, columns []string) (string, error) {
	if plan == nil {
		return "", errors.New("nil dedup plan")
	}
	if len(columns) == 0 {
		return "", errors.New("no output columns")
	}
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	projection := strings.Join(quoted, ", ")
	if len(plan.PartitionBy) == 0 {
		return "SELECT " + projection + " FROM " + pq.QuoteIdentifier(table), nil
	}

	var over strings.Builder
	over.WriteString("PARTITION BY ")
	over.WriteString(joinExpressions(plan.PartitionBy))
	if plan.Filter != nil {
		switch plan.Filter.Kind {
		case functions.SelectMin:
			over.WriteString(" ORDER BY " + plan.Filter.Expression.Extract() + " ASC NULLS LAST")
		case functions.SelectMax:
			over.WriteString(" ORDER BY " + plan.Filter.Expression.Extract() + " DESC NULLS LAST")
		}
	}
	return "SELECT " + projection + " FROM (SELECT *, ROW_NUMBER() OVER (" + over.String() + ") AS " +
		pq.QuoteIdentifier("rn") + " FROM " + pq.QuoteIdentifier(table) + ") AS " + pq.QuoteIdentifier("dedup") +
		" WHERE " + pq.QuoteIdentifier("rn") + " = 1", nil
}

func joinExpressions(exprs []relational.Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.Extract()
	}
	return strings.Join(parts, ", ")
}
