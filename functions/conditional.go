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

package functions

import (
	"fmt"

	"github.com/rulego/groupreduce/condition"
	"github.com/rulego/groupreduce/schema"
)

// Conditional feeds records to the wrapped function only when the condition holds
type Conditional struct {
	fn   AggregateFunction
	cond condition.Condition
}

// NewConditional wraps fn
func NewConditional(fn AggregateFunction, cond condition.Condition) *Conditional {
	return &Conditional{fn: fn, cond: cond}
}

// Condition returns the filtering condition
func (c *Conditional) Condition() condition.Condition {
	return c.cond
}

// Unwrap returns the wrapped function
func (c *Conditional) Unwrap() AggregateFunction {
	return c.fn
}

func (c *Conditional) Initialize() {
	c.fn.Initialize()
}

func (c *Conditional) MergeValue(record *schema.Record) error {
	ok, err := c.cond.Evaluate(record)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return c.fn.MergeValue(record)
}

func (c *Conditional) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*Conditional)
	if !ok {
		return fmt.Errorf("cannot merge %T into conditional function", other)
	}
	return c.fn.MergeAggregates(o.fn)
}

func (c *Conditional) Aggregate() interface{} {
	return c.fn.Aggregate()
}

func (c *Conditional) OutputSchema() *schema.Schema {
	return c.fn.OutputSchema()
}
