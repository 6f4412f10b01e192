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
	"math"

	"github.com/rulego/groupreduce/schema"
	"github.com/rulego/groupreduce/utils/cast"
	"github.com/shopspring/decimal"
)

// numericMode selects the accumulator representation of sum and average
type numericMode int

const (
	modeLong numericMode = iota
	modeDouble
	modeDecimal
)

// sumDecimalPrecision is the precision of decimal sums
const sumDecimalPrecision = 38

func numericModeOf(s *schema.Schema) (numericMode, bool) {
	switch {
	case s.LogicalType() == schema.Decimal:
		return modeDecimal, true
	case s.LogicalType() != schema.NoLogicalType:
		return 0, false
	case s.Type() == schema.Int || s.Type() == schema.Long:
		return modeLong, true
	case s.Type() == schema.Float || s.Type() == schema.Double:
		return modeDouble, true
	}
	return 0, false
}

// numericSum is an exact running sum in one of three representations
type numericSum struct {
	mode   numericMode
	long   int64
	double float64
	dec    decimal.Decimal
}

func (s *numericSum) reset() {
	s.long, s.double, s.dec = 0, 0, decimal.Zero
}

func (s *numericSum) add(field string, v interface{}) error {
	switch s.mode {
	case modeLong:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		s.long += i
	case modeDouble:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		s.double += f
	case modeDecimal:
		d, err := cast.ToDecimalE(v)
		if err != nil {
			return fmt.Errorf("field %s: %w", field, err)
		}
		s.dec = s.dec.Add(d)
	}
	return nil
}

func (s *numericSum) merge(o *numericSum) {
	s.long += o.long
	s.double += o.double
	s.dec = s.dec.Add(o.dec)
}

func (s *numericSum) value() interface{} {
	switch s.mode {
	case modeLong:
		return s.long
	case modeDouble:
		return s.double
	}
	return s.dec
}

// SumFunction adds non-null values. The result is null when no value was seen.
type SumFunction struct {
	field       string
	mode        numericMode
	fieldSchema *schema.Schema
	sum         numericSum
	seen        bool
}

func (f *SumFunction) Initialize() {
	f.sum = numericSum{mode: f.mode}
	f.sum.reset()
	f.seen = false
}

func (f *SumFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		return nil
	}
	if err := f.sum.add(f.field, v); err != nil {
		return err
	}
	f.seen = true
	return nil
}

func (f *SumFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*SumFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	if o.seen {
		f.sum.merge(&o.sum)
		f.seen = true
	}
	return nil
}

func (f *SumFunction) Aggregate() interface{} {
	if !f.seen {
		return nil
	}
	return f.sum.value()
}

func (f *SumFunction) OutputSchema() *schema.Schema {
	switch f.mode {
	case modeLong:
		return schema.NullableOf(schema.Of(schema.Long))
	case modeDouble:
		return schema.NullableOf(schema.Of(schema.Double))
	}
	return schema.NullableOf(schema.DecimalOf(sumDecimalPrecision, f.fieldSchema.Scale()))
}

// AvgFunction keeps the running sum and count separately so that partial
// averages combine exactly.
type AvgFunction struct {
	field       string
	mode        numericMode
	fieldSchema *schema.Schema
	sum         numericSum
	count       int64
}

func (f *AvgFunction) Initialize() {
	f.sum = numericSum{mode: f.mode}
	f.sum.reset()
	f.count = 0
}

func (f *AvgFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		return nil
	}
	if err := f.sum.add(f.field, v); err != nil {
		return err
	}
	f.count++
	return nil
}

func (f *AvgFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*AvgFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	f.sum.merge(&o.sum)
	f.count += o.count
	return nil
}

func (f *AvgFunction) Aggregate() interface{} {
	if f.count == 0 {
		return nil
	}
	switch f.mode {
	case modeLong:
		return float64(f.sum.long) / float64(f.count)
	case modeDouble:
		return f.sum.double / float64(f.count)
	}
	return f.sum.dec.DivRound(decimal.NewFromInt(f.count), int32(f.fieldSchema.Scale()))
}

func (f *AvgFunction) OutputSchema() *schema.Schema {
	if f.mode == modeDecimal {
		return schema.NullableOf(schema.DecimalOf(f.fieldSchema.Precision(), f.fieldSchema.Scale()))
	}
	return schema.NullableOf(schema.Of(schema.Double))
}

// ExtremumFunction keeps the smallest or largest non-null value. Ties keep
// the value seen first.
type ExtremumFunction struct {
	field       string
	max         bool
	fieldSchema *schema.Schema
	value       interface{}
}

func (f *ExtremumFunction) Initialize() {
	f.value = nil
}

func (f *ExtremumFunction) offer(v interface{}) error {
	if v == nil {
		return nil
	}
	if f.value == nil {
		f.value = v
		return nil
	}
	c, err := cast.Compare(v, f.value)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.field, err)
	}
	if (f.max && c > 0) || (!f.max && c < 0) {
		f.value = v
	}
	return nil
}

func (f *ExtremumFunction) MergeValue(record *schema.Record) error {
	return f.offer(valueOf(record, f.field))
}

func (f *ExtremumFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*ExtremumFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	return f.offer(o.value)
}

func (f *ExtremumFunction) Aggregate() interface{} {
	return f.value
}

func (f *ExtremumFunction) OutputSchema() *schema.Schema {
	return schema.NullableOf(f.fieldSchema)
}

// MomentsFunction tracks count, mean and the sum of squared deviations
// (Welford) and merges partials with the pairwise update of Chan et al.
// It backs variance, standard deviation and both sums of squares.
type MomentsFunction struct {
	field string
	kind  Kind
	n     int64
	mean  float64
	m2    float64
	sumSq float64
}

func (f *MomentsFunction) Initialize() {
	f.n, f.mean, f.m2, f.sumSq = 0, 0, 0, 0
}

func (f *MomentsFunction) MergeValue(record *schema.Record) error {
	v := valueOf(record, f.field)
	if v == nil {
		return nil
	}
	x, err := cast.ToFloat64E(v)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.field, err)
	}
	f.n++
	delta := x - f.mean
	f.mean += delta / float64(f.n)
	f.m2 += delta * (x - f.mean)
	f.sumSq += x * x
	return nil
}

func (f *MomentsFunction) MergeAggregates(other AggregateFunction) error {
	o, ok := other.(*MomentsFunction)
	if !ok {
		return mergeTypeError(f, other)
	}
	if o.n == 0 {
		return nil
	}
	if f.n == 0 {
		f.n, f.mean, f.m2, f.sumSq = o.n, o.mean, o.m2, o.sumSq
		return nil
	}
	total := float64(f.n + o.n)
	delta := o.mean - f.mean
	f.mean += delta * float64(o.n) / total
	f.m2 += o.m2 + delta*delta*float64(f.n)*float64(o.n)/total
	f.sumSq += o.sumSq
	f.n += o.n
	return nil
}

func (f *MomentsFunction) Aggregate() interface{} {
	switch f.kind {
	case Variance:
		if f.n == 0 {
			return nil
		}
		return f.m2 / float64(f.n)
	case Stddev:
		if f.n == 0 {
			return nil
		}
		return math.Sqrt(f.m2 / float64(f.n))
	case SumOfSquares:
		return f.sumSq
	default:
		if f.n < 2 {
			return 0.0
		}
		return f.m2
	}
}

func (f *MomentsFunction) OutputSchema() *schema.Schema {
	if f.kind == Variance || f.kind == Stddev {
		return schema.NullableOf(schema.Of(schema.Double))
	}
	return schema.Of(schema.Double)
}
