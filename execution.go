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

package groupreduce

import (
	"errors"

	"github.com/rulego/groupreduce/aggregator"
	"github.com/rulego/groupreduce/relational"
	"github.com/rulego/groupreduce/relational/sqlengine"
)

// Mode is how a stage executes
type Mode int

const (
	RowWise Mode = iota
	Pushdown
)

func (m Mode) String() string {
	if m == Pushdown {
		return "pushdown"
	}
	return "row-wise"
}

// Execution is the immutable outcome of planning a stage: a relational
// plan, or the reducer with the reason pushdown was not possible.
type Execution struct {
	mode    Mode
	groupBy *relational.GroupByPlan
	dedup   *relational.DedupPlan
	columns []string
	reducer aggregator.Reducer
	reason  string
}

func rowWise(reducer aggregator.Reducer, reason string) *Execution {
	return &Execution{mode: RowWise, reducer: reducer, reason: reason}
}

func (e *Execution) Mode() Mode {
	return e.mode
}

// Pushdown reports whether the stage runs in the relational engine
func (e *Execution) Pushdown() bool {
	return e.mode == Pushdown
}

// GroupByPlan returns the plan of a pushed down GroupBy
func (e *Execution) GroupByPlan() *relational.GroupByPlan {
	return e.groupBy
}

// DedupPlan returns the plan of a pushed down Dedup
func (e *Execution) DedupPlan() *relational.DedupPlan {
	return e.dedup
}

// Reducer returns the reducer of a row wise execution
func (e *Execution) Reducer() aggregator.Reducer {
	return e.reducer
}

// Reason explains why the stage runs row wise
func (e *Execution) Reason() string {
	return e.reason
}

// Render renders the pushdown plan as SQL over table. columns lists the
// dedup output columns and defaults to the relation columns.
func (e *Execution) Render(table string, columns []string) (string, error) {
	switch {
	case e.groupBy != nil:
		return sqlengine.RenderGroupBy(e.groupBy, table)
	case e.dedup != nil:
		if len(columns) == 0 {
			columns = e.columns
		}
		return sqlengine.RenderDedup(e.dedup, table, columns)
	}
	return "", errors.New("row wise execution has no SQL plan")
}
