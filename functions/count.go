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

	"github.com/rulego/groupreduce/schema"
)

// CountFunction counts non-null values of a field, or every record for the wildcard
type CountFunction struct {
	field string
	count int64
}

func (f *CountFunction) Initialize() {
	f.count = 0
}

func (f *CountFunction) MergeValue(record *schema.Record) error {
	if f.field == Wildcard || valueOf(record, f.field) != nil {
		f.count++
	}
	return nil
}

func (f *CountFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*CountFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	f.count += o.count
	return nil
}

func (f *CountFunction) Aggregate() interface{} {
	return f.count
}

func (f *CountFunction) OutputSchema() *schema.Schema {
	return schema.Of(schema.Long)
}

// CountNullsFunction counts null values of a field
type CountNullsFunction struct {
	field string
	count int64
}

func (f *CountNullsFunction) Initialize() {
	f.count = 0
}

func (f *CountNullsFunction) MergeValue(record *schema.Record) error {
	if valueOf(record, f.field) == nil {
		f.count++
	}
	return nil
}

func (f *CountNullsFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*CountNullsFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	f.count += o.count
	return nil
}

func (f *CountNullsFunction) Aggregate() interface{} {
	return f.count
}

func (f *CountNullsFunction) OutputSchema() *schema.Schema {
	return schema.Of(schema.Long)
}

// CountDistinctFunction counts distinct values. Null counts once, as one more distinct value.
type CountDistinctFunction struct {
	field   string
	values  *valueSet
	hasNull bool
}

func (f *CountDistinctFunction) Initialize() {
	f.values = newValueSet()
	f.hasNull = false
}

func (f *CountDistinctFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		f.hasNull = true
		return nil
	}
	if err := f.values.add(v); err != nil {
		return fmt.Errorf("field %s: %w", f.field, err)
	}
	return nil
}

func (f *CountDistinctFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*CountDistinctFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	f.hasNull = f.hasNull || o.hasNull
	return f.values.merge(o.values)
}

func (f *CountDistinctFunction) Aggregate() interface{} {
	n := int64(f.values.len())
	if f.hasNull {
		n++
	}
	return n
}

func (f *CountDistinctFunction) OutputSchema() *schema.Schema {
	return schema.Of(schema.Long)
}
