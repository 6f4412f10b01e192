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

/*
Package groupreduce groups a stream of records by key and reduces every
group with associative aggregate functions, or keeps one record per key.
When an external relational engine can evaluate the whole stage, the stage
is pushed down to it as a SQL plan instead.

# Core Features

• GroupBy - sum, count, average, min, max, statistics, collections, string
and logical aggregates, each with a conditional variant
• Dedup - one record per unique key, selected by ANY, MIN, MAX, FIRST or LAST
• Partition independence - partial results merge associatively, so the
result does not depend on how records are split
• Pushdown - all or nothing translation to ANSI or BigQuery SQL
• Batch validation - every configuration problem is reported at once

# Getting Started

	stage := groupreduce.NewGroupByStage(&config.GroupByConfig{
		GroupByFields: "dept",
		Aggregates:    "total:sum(amt),n:count(*),big:sumIf(amt):condition(amt != nil && amt > 10)",
	}, groupreduce.WithDiscardLog())

	output, err := stage.Configure(inputSchema)
	if err != nil {
		// err lists every configuration failure
	}

	exec, err := stage.Plan(sqlengine.New(sqlengine.ANSI), sqlengine.NewTable("sales", columns...))
	if exec.Pushdown() {
		sql, _ := exec.Render("sales", nil)
		// run sql on the engine
	} else {
		records, err := stage.Run(ctx, input)
	}

Conditions are expr-lang expressions evaluated against each record. Fields
may be null, so comparisons should guard them: "amt != nil && amt > 10".
*/
package groupreduce
