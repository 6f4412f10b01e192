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
	"strings"
	"unicode/utf8"

	"github.com/rulego/groupreduce/schema"
	"github.com/rulego/groupreduce/utils/cast"
)

// PickFunction keeps a single non-null value: the first seen for First and
// Any, the last seen for Last. Merging treats the other partial as later.
type PickFunction struct {
	field       string
	kind        Kind
	fieldSchema *schema.Schema
	value       interface{}
	seen        bool
}

func (f *PickFunction) Initialize() {
	f.value, f.seen = nil, false
}

func (f *PickFunction) take(v interface{}) {
	if f.kind == Last || !f.seen {
		f.value = v
		f.seen = true
	}
}

func (f *PickFunction) MergeValue(record *schema.Record) error {
	if v := valueOf(record, f.field); v != nil {
		f.take(v)
	}
	return nil
}

func (f *PickFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*PickFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	if o.seen {
		f.take(o.value)
	}
	return nil
}

func (f *PickFunction) Aggregate() interface{} {
	return f.value
}

func (f *PickFunction) OutputSchema() *schema.Schema {
	return schema.NullableOf(f.fieldSchema)
}

// CollectFunction gathers non-null values into a list, or a set when distinct
type CollectFunction struct {
	field       string
	distinct    bool
	fieldSchema *schema.Schema
	list        []interface{}
	set         *valueSet
}

func (f *CollectFunction) Initialize() {
	f.list = nil
	f.set = newValueSet()
}

func (f *CollectFunction) add(v interface{}) error {
	if f.distinct {
		return f.set.add(v)
	}
	f.list = append(f.list, v)
	return nil
}

func (f *CollectFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		return nil
	}
	if err := f.add(v); err != nil {
		return fmt.Errorf("field %s: %w", f.field, err)
	}
	return nil
}

func (f *CollectFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*CollectFunction)
	if !ok || o.distinct != f.distinct {
		return mergeTypeError(f, other)
	}
	if f.distinct {
		return f.set.merge(o.set)
	}
	f.list = append(f.list, o.list...)
	return nil
}

func (f *CollectFunction) Aggregate() interface{} {
	src := f.list
	if f.distinct {
		src = f.set.items
	}
	out := make([]interface{}, len(src))
	copy(out, src)
	return out
}

func (f *CollectFunction) OutputSchema() *schema.Schema {
	return schema.ArrayOf(f.fieldSchema)
}

// concatSeparator joins concatenated values
const concatSeparator = ", "

// ConcatFunction joins the string form of non-null values
type ConcatFunction struct {
	field    string
	distinct bool
	list     []string
	set      *valueSet
}

func (f *ConcatFunction) Initialize() {
	f.list = nil
	f.set = newValueSet()
}

func (f *ConcatFunction) add(s string) error {
	if f.distinct {
		return f.set.add(s)
	}
	f.list = append(f.list, s)
	return nil
}

func (f *ConcatFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		return nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.field, err)
	}
	return f.add(s)
}

func (f *ConcatFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*ConcatFunction)
	if !ok || o.distinct != f.distinct {
		return mergeTypeError(f, other)
	}
	if f.distinct {
		return f.set.merge(o.set)
	}
	f.list = append(f.list, o.list...)
	return nil
}

func (f *ConcatFunction) Aggregate() interface{} {
	parts := f.list
	if f.distinct {
		parts = make([]string, 0, f.set.len())
		for _, v := range f.set.items {
			parts = append(parts, v.(string))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return strings.Join(parts, concatSeparator)
}

func (f *ConcatFunction) OutputSchema() *schema.Schema {
	return schema.NullableOf(schema.Of(schema.String))
}

// LengthFunction keeps the longest or shortest string by character count.
// Ties keep the string seen first.
type LengthFunction struct {
	field   string
	longest bool
	value   string
	seen    bool
}

func (f *LengthFunction) Initialize() {
	f.value, f.seen = "", false
}

func (f *LengthFunction) offer(s string) {
	if !f.seen {
		f.value, f.seen = s, true
		return
	}
	n, cur := utf8.RuneCountInString(s), utf8.RuneCountInString(f.value)
	if (f.longest && n > cur) || (!f.longest && n < cur) {
		f.value = s
	}
}

func (f *LengthFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("field %s: expected string, got %T", f.field, v)
	}
	f.offer(s)
	return nil
}

func (f *LengthFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*LengthFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	if o.seen {
		f.offer(o.value)
	}
	return nil
}

func (f *LengthFunction) Aggregate() interface{} {
	if !f.seen {
		return nil
	}
	return f.value
}

func (f *LengthFunction) OutputSchema() *schema.Schema {
	return schema.NullableOf(schema.Of(schema.String))
}

// LogicalFunction computes the conjunction or disjunction of non-null booleans.
// With no values the result is the identity: true for and, false for or.
type LogicalFunction struct {
	field string
	and   bool
	value bool
}

func (f *LogicalFunction) Initialize() {
	f.value = f.and
}

func (f *LogicalFunction) combine(b bool) {
	if f.and {
		f.value = f.value && b
	} else {
		f.value = f.value || b
	}
}

func (f *LogicalFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		return nil
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.field, err)
	}
	f.combine(b)
	return nil
}

func (f *LogicalFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*LogicalFunction)
	if !ok || o.and != f.and {
		return mergeTypeError(f, other)
	}
	f.combine(o.value)
	return nil
}

func (f *LogicalFunction) Aggregate() interface{} {
	return f.value
}

func (f *LogicalFunction) OutputSchema() *schema.Schema {
	return schema.Of(schema.Boolean)
}
