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

// Package config holds the user facing configuration of the GroupBy and
// Dedup stages. Properties use the compact text forms of the plugin
// properties they come from:
//
//	groupByFields:   "dept,region"
//	aggregates:      "total:sum(amt),n:count(*),big:sumIf(amt):condition(amt > 10)"
//	uniqueFields:    "dept"
//	filterOperation: "amt:max"
//
// Stage properties can be loaded from JSON with GroupByFromJSON and
// DedupFromJSON. Values containing a macro such as ${field} are not
// validated since they are only known when the pipeline runs.
package config
