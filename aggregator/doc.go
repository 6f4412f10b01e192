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
Package aggregator implements the group reducers of the engine.

A reducer turns records into group keys, folds records of the same key into
a partial result, merges partial results computed on different partitions
and finally emits output records. Two reducers are provided:

• GroupBy - computes a set of aggregate functions per group key
• Dedup - keeps exactly one record per unique key, optionally selected by a
filter function such as MAX(amount)

# Lifecycle

Configure validates the reducer against the input schema and returns the
output schema. When the input schema is unknown at configuration time the
reducer resolves it from the first record it sees, validating it the same
way; a failure at that point is fatal and surfaces as *ConfigError.

	g := aggregator.NewGroupBy([]string{"dept"}, []functions.Descriptor{
		{Name: "total", Kind: functions.Sum, Field: "amt"},
	})
	collector := failure.NewCollector()
	out := g.Configure(input, collector)
	if err := collector.Err(); err != nil {
		return err
	}

# Reduction contract

For one key, the result must not depend on how records were split into
partitions as long as the order of records inside each partition is kept.
GroupKey, InitializeAggregateValue, MergeValue, MergePartitions and Finalize
are safe for concurrent use on distinct partial results.
*/
package aggregator
