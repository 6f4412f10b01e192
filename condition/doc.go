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
Package condition evaluates boolean expressions over records for conditional
aggregate functions.

Expressions are compiled with the expr-lang library. Record fields are
referenced by name and nested fields by path:

	amt > 10 && like_match(dept, 'A%')
	author.contact.address.city == 'Paris'
	is_not_null(items[0].sku)

# Custom Functions

	like_match(text, pattern) - SQL LIKE with % and _ wildcards
	is_null(value)            - value is null or absent
	is_not_null(value)        - value is present and not null

# Static Analysis

Variables lists the field paths an expression reads without evaluating it.
Stages use it to check, before any record flows, that every referenced path
resolves in the schema the condition will run against:

	paths, err := condition.Variables("a.b.c > 1 && d")
	// [[a b c] [d]]

Evaluation errors such as comparing null with a number are returned to the
caller rather than treated as false.
*/
package condition
