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
	"github.com/rulego/groupreduce/functions"
)

// ANSI SQL templates. The only verb is %[1]s, the column expression.
var ansiTemplates = map[functions.Kind]string{
	functions.Avg:                   "AVG(%[1]s)",
	functions.Max:                   "MAX(%[1]s)",
	functions.Min:                   "MIN(%[1]s)",
	functions.Stddev:                "STDDEV_POP(%[1]s)",
	functions.Sum:                   "SUM(%[1]s)",
	functions.Variance:              "VAR_POP(%[1]s)",
	functions.Count:                 "COUNT(%[1]s)",
	functions.CountNulls:            "SUM(CASE WHEN %[1]s IS NULL THEN 1 ELSE 0 END)",
	functions.CountDistinct:         "COUNT(DISTINCT %[1]s) + COALESCE(MAX(CASE WHEN %[1]s IS NULL THEN 1 ELSE 0 END), 0)",
	functions.SumOfSquares:          "CASE WHEN COUNT(%[1]s) > 0 THEN SUM(POWER(%[1]s, 2)) ELSE 0 END",
	functions.CorrectedSumOfSquares: "CASE WHEN COUNT(%[1]s) > 1 THEN SUM(POWER(%[1]s, 2)) - (POWER(SUM(%[1]s), 2)/COUNT(%[1]s)) ELSE 0 END",
}

// BigQuery only templates
var bigQueryTemplates = map[functions.Kind]string{
	functions.CollectList:    "ARRAY_AGG(%[1]s IGNORE NULLS)",
	functions.CollectSet:     "ARRAY_AGG(DISTINCT %[1]s IGNORE NULLS)",
	functions.Concat:         `STRING_AGG(CAST(%[1]s AS STRING), ", ")`,
	functions.ConcatDistinct: `STRING_AGG(DISTINCT CAST(%[1]s AS STRING) , ", ")`,
	functions.LogicalAnd:     "COALESCE(LOGICAL_AND(%[1]s), TRUE)",
	functions.LogicalOr:      "COALESCE(LOGICAL_OR(%[1]s), FALSE)",
	functions.ShortestString: "STRING_AGG(CAST(%[1]s AS STRING) ORDER BY LENGTH(CAST(%[1]s AS STRING)) ASC LIMIT 1)",
	functions.LongestString:  "STRING_AGG(CAST(%[1]s AS STRING) ORDER BY LENGTH(CAST(%[1]s AS STRING)) DESC LIMIT 1)",
}

// ANSITemplate returns the ANSI template of k
func ANSITemplate(k functions.Kind) (string, bool) {
	t, ok := ansiTemplates[k]
	return t, ok
}

// BigQueryTemplate returns the BigQuery only template of k
func BigQueryTemplate(k functions.Kind) (string, bool) {
	t, ok := bigQueryTemplates[k]
	return t, ok
}

// Pushable reports whether some engine can evaluate k
func Pushable(k functions.Kind) bool {
	_, ansi := ansiTemplates[k]
	_, bq := bigQueryTemplates[k]
	return ansi || bq
}

// RequiresBigQuery reports whether k can only be pushed to a BigQuery capable engine
func RequiresBigQuery(k functions.Kind) bool {
	_, ansi := ansiTemplates[k]
	_, bq := bigQueryTemplates[k]
	return !ansi && bq
}
