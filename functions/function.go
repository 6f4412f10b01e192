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

// Wildcard is the source field of functions that read no column, as in COUNT(*)
const Wildcard = "*"

// AggregateFunction is the accumulator of one output field for one group.
// An instance is owned by a single fold and is never shared between groups.
type AggregateFunction interface {
	// Initialize resets the state to the identity of the function
	Initialize()
	// MergeValue folds one record into the state
	MergeValue(record *schema.Record) error
	// MergeAggregates folds the state of another instance of the same
	// function into this one. other is treated as coming after the receiver.
	MergeAggregates(other AggregateFunction) error
	// Aggregate returns the current result, nil for null
	Aggregate() interface{}
	// OutputSchema returns the schema of Aggregate
	OutputSchema() *schema.Schema
}

// Descriptor configures one aggregate output field
type Descriptor struct {
	// Name of the output field
	Name string
	Kind Kind
	// Field is the source field, or Wildcard
	Field string
	// Condition is an expression over the record, only for conditional kinds
	Condition string
}

// String renders the descriptor as name:Kind(field)
func (d Descriptor) String() string {
	return fmt.Sprintf("%s:%s(%s)", d.Name, d.Kind, d.Field)
}

// InvalidFunctionError reports a descriptor that cannot be instantiated
// for the given field schema. It is a configuration problem, never a
// runtime one.
type InvalidFunctionError struct {
	Descriptor       Descriptor
	Message          string
	CorrectiveAction string
}

func (e *InvalidFunctionError) Error() string {
	if e.CorrectiveAction == "" {
		return e.Message
	}
	return e.Message + " " + e.CorrectiveAction
}

func invalid(d Descriptor, action, format string, args ...interface{}) error {
	return &InvalidFunctionError{Descriptor: d, Message: fmt.Sprintf(format, args...), CorrectiveAction: action}
}

// NewFunction creates the aggregate function for d. fieldSchema is the
// schema of the source field and is ignored for the wildcard.
func NewFunction(d Descriptor, fieldSchema *schema.Schema) (AggregateFunction, error) {
	f, err := NewFactory(d, fieldSchema)
	if err != nil {
		return nil, err
	}
	return f.New(), nil
}

// Factory creates accumulators for one descriptor. The descriptor is
// validated and its condition compiled once; every accumulator of the
// factory shares the compiled condition.
type Factory struct {
	descriptor  Descriptor
	fieldSchema *schema.Schema
	cond        condition.Condition
	output      *schema.Schema
}

// NewFactory validates d against fieldSchema
func NewFactory(d Descriptor, fieldSchema *schema.Schema) (*Factory, error) {
	if !d.Kind.Valid() {
		return nil, invalid(d, "", "Unknown aggregate function %s.", d.Kind)
	}
	if d.Field == "" {
		return nil, invalid(d, "Please specify a field or '*'.", "Aggregate %s has no source field.", d.Name)
	}
	if d.Field == Wildcard {
		if !d.Kind.AcceptsWildcard() {
			return nil, invalid(d, "Please specify a field.", "Aggregate function %s does not support '*'.", d.Kind)
		}
	} else if fieldSchema == nil {
		return nil, invalid(d, "", "Field '%s' does not exist in input schema.", d.Field)
	}

	f := &Factory{descriptor: d, fieldSchema: fieldSchema}
	if d.Kind.IsConditional() {
		if d.Condition == "" {
			return nil, invalid(d, "Please specify a condition.", "Conditional function %s requires a condition.", d.Kind)
		}
		c, err := condition.NewExprCondition(d.Condition)
		if err != nil {
			return nil, invalid(d, "Please fix the condition expression.", "Invalid condition '%s' for %s: %v.", d.Condition, d.Name, err)
		}
		f.cond = c
	}

	fn, err := newBase(d, fieldSchema)
	if err != nil {
		return nil, err
	}
	f.output = fn.OutputSchema()
	return f, nil
}

// Descriptor returns the descriptor of the factory
func (f *Factory) Descriptor() Descriptor {
	return f.descriptor
}

// Condition returns the compiled condition, nil for unconditional kinds
func (f *Factory) Condition() condition.Condition {
	return f.cond
}

// OutputSchema returns the schema of the accumulator results
func (f *Factory) OutputSchema() *schema.Schema {
	return f.output
}

// New returns a fresh accumulator in its initial state
func (f *Factory) New() AggregateFunction {
	fn, err := newBase(f.descriptor, f.fieldSchema)
	if err != nil {
		// newBase accepted the same arguments in NewFactory
		panic(err)
	}
	fn.Initialize()
	if f.cond != nil {
		return NewConditional(fn, f.cond)
	}
	return fn
}

func newBase(d Descriptor, fieldSchema *schema.Schema) (AggregateFunction, error) {
	field := d.Field
	var fs *schema.Schema
	if fieldSchema != nil {
		fs = fieldSchema.NonNullable()
	}
	switch d.Kind.Base() {
	case Count:
		return &CountFunction{field: field}, nil
	case CountNulls:
		return &CountNullsFunction{field: field}, nil
	case CountDistinct:
		if t := fs.Type(); t != schema.String && t != schema.Int && t != schema.Long && t != schema.Boolean {
			return nil, invalid(d, "Please specify a string, integer, long or boolean field.",
				"Distinct counting is not supported for the field %s of type %s.", field, fs)
		}
		return &CountDistinctFunction{field: field}, nil
	case Sum:
		mode, ok := numericModeOf(fs)
		if !ok {
			return nil, invalid(d, "Please specify a numeric or decimal field.",
				"Sum is not supported for the field %s of type %s.", field, fs)
		}
		return &SumFunction{field: field, mode: mode, fieldSchema: fs}, nil
	case Avg:
		mode, ok := numericModeOf(fs)
		if !ok {
			return nil, invalid(d, "Please specify a numeric or decimal field.",
				"Average is not supported for the field %s of type %s.", field, fs)
		}
		return &AvgFunction{field: field, mode: mode, fieldSchema: fs}, nil
	case Min, Max:
		if !isOrderable(fs) {
			return nil, invalid(d, "Please specify a numeric, date, time, timestamp, datetime or decimal field.",
				"%s is not supported for the field %s of type %s.", d.Kind.Base(), field, fs)
		}
		return &ExtremumFunction{field: field, max: d.Kind.Base() == Max, fieldSchema: fs}, nil
	case Stddev, Variance, SumOfSquares, CorrectedSumOfSquares:
		if !fs.Type().IsNumeric() && fs.LogicalType() != schema.Decimal {
			return nil, invalid(d, "Please specify a numeric field.",
				"%s is not supported for the field %s of type %s.", d.Kind.Base(), field, fs)
		}
		return &MomentsFunction{field: field, kind: d.Kind.Base()}, nil
	case First, Last, Any:
		return &PickFunction{field: field, kind: d.Kind.Base(), fieldSchema: fs}, nil
	case CollectList, CollectSet:
		return &CollectFunction{field: field, distinct: d.Kind.Base() == CollectSet, fieldSchema: fs}, nil
	case Concat, ConcatDistinct:
		return &ConcatFunction{field: field, distinct: d.Kind.Base() == ConcatDistinct}, nil
	case LongestString, ShortestString:
		if fs.Type() != schema.String {
			return nil, invalid(d, "Please specify a string field.",
				"%s is not supported for the field %s of type %s.", d.Kind.Base(), field, fs)
		}
		return &LengthFunction{field: field, longest: d.Kind.Base() == LongestString}, nil
	case LogicalAnd, LogicalOr:
		if fs.Type() != schema.Boolean {
			return nil, invalid(d, "Please specify a boolean field.",
				"%s is not supported for the field %s of type %s.", d.Kind.Base(), field, fs)
		}
		return &LogicalFunction{field: field, and: d.Kind.Base() == LogicalAnd}, nil
	}
	return nil, invalid(d, "", "Unknown aggregate function %s.", d.Kind)
}

// OutputSchema returns the output schema the descriptor would produce without
// keeping the instance.
func OutputSchema(d Descriptor, fieldSchema *schema.Schema) (*schema.Schema, error) {
	f, err := NewFactory(d, fieldSchema)
	if err != nil {
		return nil, err
	}
	return f.OutputSchema(), nil
}

func isOrderable(s *schema.Schema) bool {
	switch s.LogicalType() {
	case schema.Date, schema.Time, schema.Timestamp, schema.Datetime, schema.Decimal:
		return true
	}
	return s.Type().IsNumeric()
}

func mergeTypeError(receiver, other AggregateFunction) error {
	return fmt.Errorf("cannot merge %T into %T", other, receiver)
}

func valueOf(record *schema.Record, field string) interface{} {
	if record == nil {
		return nil
	}
	return record.Get(field)
}
