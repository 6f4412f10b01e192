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

package aggregator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rulego/groupreduce/failure"
	"github.com/rulego/groupreduce/functions"
	"github.com/rulego/groupreduce/lineage"
	"github.com/rulego/groupreduce/schema"
)

// Filter chooses which record of a duplicate group survives
type Filter struct {
	Kind  functions.SelectionKind
	Field string
}

func (f Filter) String() string {
	return fmt.Sprintf("%s(%s)", f.Kind, f.Field)
}

// Dedup keeps one record per combination of unique field values. Without a
// filter the first record folded into a group survives. With no unique
// fields every record is its own group and records pass through unchanged.
type Dedup struct {
	uniqueFields []string
	filter       *Filter
	keys         *KeyExtractor
	opts         options

	mu       sync.RWMutex
	resolved *dedupSchemas
}

type dedupSchemas struct {
	input     *schema.Schema
	key       *schema.Schema
	output    *schema.Schema
	selection functions.SelectionFunction
}

var _ Reducer = (*Dedup)(nil)

// NewDedup creates a dedup reducer. filter may be nil.
func NewDedup(uniqueFields []string, filter *Filter, opts ...Option) *Dedup {
	d := &Dedup{
		uniqueFields: append([]string(nil), uniqueFields...),
		keys:         NewUniqueKeyExtractor(uniqueFields),
		opts:         newOptions(opts),
	}
	if filter != nil {
		f := *filter
		d.filter = &f
	}
	return d
}

func (d *Dedup) Kind() Kind {
	return DedupKind
}

// UniqueFields returns the key fields
func (d *Dedup) UniqueFields() []string {
	return append([]string(nil), d.uniqueFields...)
}

// Filter returns the filter, nil when none is configured
func (d *Dedup) Filter() *Filter {
	if d.filter == nil {
		return nil
	}
	f := *d.filter
	return &f
}

// Ungrouped reports whether records bypass grouping because no unique
// field is configured
func (d *Dedup) Ungrouped() bool {
	return len(d.uniqueFields) == 0
}

// Configure validates the reducer against input and returns the output
// schema, which has the input fields under the name "<input>.dedup".
func (d *Dedup) Configure(input *schema.Schema, collector *failure.Collector) *schema.Schema {
	if input == nil {
		return nil
	}
	local := failure.NewCollector()
	resolved := d.resolve(input, local)
	collector.Merge(local)
	if resolved == nil {
		return nil
	}
	d.mu.Lock()
	d.resolved = resolved
	d.mu.Unlock()
	d.emitLineage(input)
	return resolved.output
}

// OutputSchema derives the output schema without caching it
func (d *Dedup) OutputSchema(input *schema.Schema) (*schema.Schema, error) {
	if input == nil {
		return nil, nil
	}
	collector := failure.NewCollector()
	resolved := d.resolve(input, collector)
	if resolved == nil {
		return nil, newConfigError(DedupKind.String(), collector)
	}
	return resolved.output, nil
}

// Validate reports every configuration problem against input
func (d *Dedup) Validate(input *schema.Schema, collector *failure.Collector) {
	for _, f := range d.uniqueFields {
		if input.Field(f) == nil {
			collector.AddFailure(fmt.Sprintf("Field '%s' does not exist in the input schema", f),
				"Ensure all unique fields exist in the input schema.").
				WithConfigElement("uniqueFields", f)
		}
	}
	if d.filter != nil {
		if _, err := d.newSelection(input); err != nil {
			f := collector.AddFailure(err.Error(), "")
			var invalid *functions.InvalidFunctionError
			if errors.As(err, &invalid) {
				f.Message = invalid.Message
				f.CorrectiveAction = invalid.CorrectiveAction
			}
			f.WithConfigProperty("filterOperation")
		}
	}
}

func (d *Dedup) newSelection(input *schema.Schema) (functions.SelectionFunction, error) {
	var fieldSchema *schema.Schema
	if field := input.Field(d.filter.Field); field != nil {
		fieldSchema = field.Schema
	}
	return functions.NewSelection(d.filter.Kind, d.filter.Field, fieldSchema)
}

func (d *Dedup) resolve(input *schema.Schema, collector *failure.Collector) *dedupSchemas {
	d.Validate(input, collector)
	if collector.HasFailures() {
		return nil
	}
	key, err := d.keys.KeySchema(input)
	if err != nil {
		collector.AddFailure(err.Error(), "")
		return nil
	}
	fields := make([]*schema.Field, 0, len(input.Fields()))
	for _, f := range input.NonNullable().Fields() {
		fields = append(fields, schema.NewField(f.Name, f.Schema))
	}
	output, err := schema.NewRecordSchema(input.Name()+".dedup", fields...)
	if err != nil {
		collector.AddFailure(err.Error(), "")
		return nil
	}
	resolved := &dedupSchemas{input: input, key: key, output: output}
	if d.filter != nil {
		// validated above
		resolved.selection, _ = d.newSelection(input)
	}
	return resolved
}

func (d *Dedup) schemas(s *schema.Schema) (*dedupSchemas, error) {
	d.mu.RLock()
	resolved := d.resolved
	d.mu.RUnlock()
	if resolved != nil {
		return resolved, d.checkInput(resolved, s)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.resolved != nil {
		return d.resolved, d.checkInput(d.resolved, s)
	}
	collector := failure.NewCollector()
	resolved = d.resolve(s, collector)
	if resolved == nil {
		d.opts.logger.Error("dedup configuration is invalid for input schema %s: %v", s.Name(), collector.Err())
		return nil, newConfigError(DedupKind.String(), collector)
	}
	d.resolved = resolved
	d.opts.logger.Debug("resolved dedup output schema %s from the first record", resolved.output.Name())
	d.emitLineage(s)
	return resolved, nil
}

func (d *Dedup) checkInput(resolved *dedupSchemas, s *schema.Schema) error {
	if resolved.input == s || resolved.input.Equal(s) {
		return nil
	}
	for _, f := range d.uniqueFields {
		if s.Field(f) == nil {
			return configErrorf(DedupKind.String(), "",
				"Failed to groupBy because field %s does not exist in input schema %s.", f, s.Name())
		}
	}
	if d.filter != nil && s.Field(d.filter.Field) == nil {
		return configErrorf(DedupKind.String(), "",
			"Failed to merge values because the field '%s' cannot be used as a filter field since it does not exist in the output schema", d.filter.Field)
	}
	return configErrorf(DedupKind.String(), "All records of a run must share one schema.",
		"Record schema %s does not match the input schema %s.", s.Name(), resolved.input.Name())
}

// GroupKey returns the unique field values. Without unique fields the
// record itself is the key.
func (d *Dedup) GroupKey(record *schema.Record) (*schema.Record, error) {
	if _, err := d.schemas(record.Schema()); err != nil {
		return nil, err
	}
	return d.keys.Extract(record)
}

func (d *Dedup) InitializeAggregateValue(record *schema.Record) (*PartialResult, error) {
	s, err := d.schemas(record.Schema())
	if err != nil {
		return nil, err
	}
	return &PartialResult{Kind: DedupKind, InputSchema: s.input, Selected: record}, nil
}

func (d *Dedup) MergeValue(partial *PartialResult, record *schema.Record) (*PartialResult, error) {
	selected, err := d.choose(partial.Selected, record)
	if err != nil {
		return nil, err
	}
	partial.Selected = selected
	return partial, nil
}

func (d *Dedup) MergePartitions(a, b *PartialResult) (*PartialResult, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	if a.Kind != DedupKind || b.Kind != DedupKind {
		return nil, fmt.Errorf("cannot merge %s and %s partial results in a dedup", a.Kind, b.Kind)
	}
	return d.MergeValue(a, b.Selected)
}

// choose returns the surviving record of a and b, a when there is no filter
func (d *Dedup) choose(a, b *schema.Record) (*schema.Record, error) {
	if a == nil {
		return b, nil
	}
	if b == nil || d.filter == nil {
		return a, nil
	}
	s, err := d.schemas(a.Schema())
	if err != nil {
		return nil, err
	}
	if _, ok := b.Value(d.filter.Field); !ok {
		return nil, configErrorf(DedupKind.String(), "",
			"Failed to merge values because the field '%s' cannot be used as a filter field since it does not exist in the output schema", d.filter.Field)
	}
	return s.selection.Select(a, b)
}

// Finalize emits the surviving record with its values unchanged
func (d *Dedup) Finalize(_ *schema.Record, partial *PartialResult, emit Emitter) error {
	s, err := d.schemas(partial.InputSchema)
	if err != nil {
		return err
	}
	out, err := project(s.output, partial.Selected)
	if err != nil {
		return err
	}
	return emit(out)
}

// Lineage describes the one to one mapping of every field of input
func (d *Dedup) Lineage(input *schema.Schema) []lineage.Operation {
	if input == nil {
		return nil
	}
	names := input.NonNullable().FieldNames()
	ops := make([]lineage.Operation, 0, len(names))
	for _, name := range names {
		ops = append(ops, lineage.NewTransform("dedup", "Removed duplicate records based on unique fields.",
			[]string{name}, name))
	}
	return ops
}

func (d *Dedup) emitLineage(input *schema.Schema) {
	if d.opts.lineage != nil {
		d.opts.lineage.Record(d.Lineage(input))
	}
}
