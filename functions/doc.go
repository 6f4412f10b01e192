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
Package functions implements the aggregate and selection functions used by
group-by and deduplicate stages.

Every aggregate function follows a three step contract: Initialize resets to
the identity value, MergeValue folds one record, and MergeAggregates folds
another partial computed independently. Folding any list of records in one
pass or split into sublists that are merged afterwards gives the same result.
State is kept in a form that merges exactly: average keeps sum and count,
variance keeps count, mean and the sum of squared deviations.

# Kinds

	Avg, Count, CountDistinct, CountNulls, Sum, Min, Max
	Stddev, Variance, SumOfSquares, CorrectedSumOfSquares
	First, Last, Any
	CollectList, CollectSet, Concat, ConcatDistinct
	LongestString, ShortestString, LogicalAnd, LogicalOr

Each kind has a conditional counterpart suffixed with If (SumIf, AnyIf, ...)
that only feeds records for which its condition holds:

	fn, err := functions.NewFunction(functions.Descriptor{
		Name:      "big",
		Kind:      functions.SumIf,
		Field:     "amt",
		Condition: "amt > 10",
	}, amtSchema)

Type checks happen in NewFunction and surface as *InvalidFunctionError, so a
misconfigured stage is rejected before any record is read.

# Selection

Deduplication keeps one record per key with a SelectionFunction: ANY and
FIRST keep the earlier record, LAST the later one, MIN and MAX compare a
field and let null lose against any value.
*/
package functions
