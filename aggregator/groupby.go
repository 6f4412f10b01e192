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

const groupKeySchemaName = "group.key.schema"

// GroupBy computes aggregate functions per group of records sharing the
// values of the group by fields. With no group by fields all records form a
// single group.
type GroupBy struct {
	groupByFields []string
	aggregates    []functions.Descriptor
	keys          *KeyExtractor
	opts          options

	mu       sync.RWMutex
	resolved *groupBySchemas
}

type groupBySchemas struct {
	input     *schema.Schema
	key       *schema.Schema
	output    *schema.Schema
	factories map[string]*functions.Factory
}

var _ Reducer = (*GroupBy)(nil)

// NewGroupBy creates a group by reducer. Output fields are the group by
// fields followed by the aggregates, in the given order.
func NewGroupBy(groupByFields []string, aggregates []functions.Descriptor, opts ...Option) *GroupBy {
	return &GroupBy{
		groupByFields: append([]string(nil), groupByFields...),
		aggregates:    append([]functions.Descriptor(nil), aggregates...),
		keys:          NewGroupKeyExtractor(groupByFields),
		opts:          newOptions(opts),
	}
}

func (g *GroupBy) Kind() Kind {
	return GroupByKind
}

// GroupByFields returns the key fields
func (g *GroupBy) GroupByFields() []string {
	return append([]string(nil), g.groupByFields...)
}

// Aggregates returns the aggregate descriptors
func (g *GroupBy) Aggregates() []functions.Descriptor {
	return append([]functions.Descriptor(nil), g.aggregates...)
}

// Configure validates the reducer against input and returns the output
// schema. A nil input defers validation to the first record; nil is
// returned in that case and when validation fails.
func (g *GroupBy) Configure(input *schema.Schema, collector *failure.Collector) *schema.Schema {
	if input == nil {
		return nil
	}
	local := failure.NewCollector()
	resolved := g.resolve(input, local)
	collector.Merge(local)
	if resolved == nil {
		return nil
	}
	g.mu.Lock()
	g.resolved = resolved
	g.mu.Unlock()
	g.emitLineage()
	return resolved.output
}

// OutputSchema derives the output schema without caching it
func (g *GroupBy) OutputSchema(input *schema.Schema) (*schema.Schema, error) {
	if input == nil {
		return nil, nil
	}
	collector := failure.NewCollector()
	resolved := g.resolve(input, collector)
	if resolved == nil {
		return nil, newConfigError(GroupByKind.String(), collector)
	}
	return resolved.output, nil
}

// Validate reports every configuration problem against input
func (g *GroupBy) Validate(input *schema.Schema, collector *failure.Collector) {
	for _, f := range g.groupByFields {
		if input.Field(f) == nil {
			collector.AddFailure(fmt.Sprintf("Cannot group by field '%s' because it does not exist in input schema.", f),
				"Ensure the group by field exists in the input schema.").
				WithConfigElement("groupByFields", f)
		}
	}

	names := make(map[string]struct{}, len(g.groupByFields)+len(g.aggregates))
	for _, f := range g.groupByFields {
		names[f] = struct{}{}
	}
	for _, d := range g.aggregates {
		if _, dup := names[d.Name]; dup {
			collector.AddFailure(fmt.Sprintf("Output field '%s' is defined more than once.", d.Name),
				"Please use a unique name for every group by field and aggregate.").
				WithConfigElement("aggregates", d.String())
		}
		names[d.Name] = struct{}{}

		var fieldSchema *schema.Schema
		if d.Field != functions.Wildcard {
			field := input.Field(d.Field)
			if field == nil {
				collector.AddFailure(fmt.Sprintf("Invalid aggregate %s(%s): Field '%s' does not exist in input schema.",
					d.Kind, d.Field, d.Field), "").
					WithConfigElement("aggregates", d.String())
				continue
			}
			fieldSchema = field.Schema
		}
		if _, err := functions.NewFactory(d, fieldSchema); err != nil {
			f := collector.AddFailure(err.Error(), "")
			var invalid *functions.InvalidFunctionError
			if errors.As(err, &invalid) {
				f.Message = invalid.Message
				f.CorrectiveAction = invalid.CorrectiveAction
			}
			f.WithConfigElement("aggregates", d.String())
		}
	}
	functions.ValidateConditions(input, g.aggregates, collector)
}

func (g *GroupBy) resolve(input *schema.Schema, collector *failure.Collector) *groupBySchemas {
	g.Validate(input, collector)
	if collector.HasFailures() {
		return nil
	}
	key, err := g.keys.KeySchema(input)
	if err != nil {
		collector.AddFailure(err.Error(), "")
		return nil
	}
	resolved := &groupBySchemas{
		input:     input,
		key:       key,
		factories: make(map[string]*functions.Factory, len(g.aggregates)),
	}
	fields := make([]*schema.Field, 0, len(g.groupByFields)+len(g.aggregates))
	for _, f := range key.Fields() {
		fields = append(fields, schema.NewField(f.Name, f.Schema))
	}
	for _, d := range g.aggregates {
		var fieldSchema *schema.Schema
		if d.Field != functions.Wildcard {
			fieldSchema = input.Field(d.Field).Schema
		}
		factory, err := functions.NewFactory(d, fieldSchema)
		if err != nil {
			collector.AddFailure(err.Error(), "").WithConfigElement("aggregates", d.String())
			return nil
		}
		resolved.factories[d.Name] = factory
		fields = append(fields, schema.NewField(d.Name, factory.OutputSchema()))
	}
	output, err := schema.NewRecordSchema(input.Name()+".agg", fields...)
	if err != nil {
		collector.AddFailure(err.Error(), "")
		return nil
	}
	resolved.output = output
	return resolved
}

// schemas returns the resolved schemas for records of schema s, resolving
// them on first use.
func (g *GroupBy) schemas(s *schema.Schema) (*groupBySchemas, error) {
	g.mu.RLock()
	resolved := g.resolved
	g.mu.RUnlock()
	if resolved != nil {
		return resolved, g.checkInput(resolved, s)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolved != nil {
		return g.resolved, g.checkInput(g.resolved, s)
	}
	collector := failure.NewCollector()
	resolved = g.resolve(s, collector)
	if resolved == nil {
		g.opts.logger.Error("group by configuration is invalid for input schema %s: %v", s.Name(), collector.Err())
		return nil, newConfigError(GroupByKind.String(), collector)
	}
	g.resolved = resolved
	g.opts.logger.Debug("resolved group by output schema %s from the first record", resolved.output.Name())
	g.emitLineage()
	return resolved, nil
}

func (g *GroupBy) checkInput(resolved *groupBySchemas, s *schema.Schema) error {
	if resolved.input == s || resolved.input.Equal(s) {
		return nil
	}
	for _, f := range g.groupByFields {
		if s.Field(f) == nil {
			return configErrorf(GroupByKind.String(), "",
				"Cannot group by field '%s' because it does not exist in input schema %s", f, s.Name())
		}
	}
	return configErrorf(GroupByKind.String(), "All records of a run must share one schema.",
		"Record schema %s does not match the input schema %s.", s.Name(), resolved.input.Name())
}

func (g *GroupBy) GroupKey(record *schema.Record) (*schema.Record, error) {
	if _, err := g.schemas(record.Schema()); err != nil {
		return nil, err
	}
	return g.keys.Extract(record)
}

func (g *GroupBy) InitializeAggregateValue(record *schema.Record) (*PartialResult, error) {
	s, err := g.schemas(record.Schema())
	if err != nil {
		return nil, err
	}
	partial := &PartialResult{
		Kind:        GroupByKind,
		InputSchema: s.input,
		Functions:   make(map[string]functions.AggregateFunction, len(g.aggregates)),
	}
	for _, d := range g.aggregates {
		partial.Functions[d.Name] = s.factories[d.Name].New()
	}
	return g.MergeValue(partial, record)
}

func (g *GroupBy) MergeValue(partial *PartialResult, record *schema.Record) (*PartialResult, error) {
	for _, d := range g.aggregates {
		fn, ok := partial.Functions[d.Name]
		if !ok {
			return nil, fmt.Errorf("partial result has no state for aggregate %s", d.Name)
		}
		if err := fn.MergeValue(record); err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", d, err)
		}
	}
	return partial, nil
}

func (g *GroupBy) MergePartitions(a, b *PartialResult) (*PartialResult, error) {
	if a == nil {
		return b, nil
	}
	if b == nil {
		return a, nil
	}
	if a.Kind != GroupByKind || b.Kind != GroupByKind {
		return nil, fmt.Errorf("cannot merge %s and %s partial results in a group by", a.Kind, b.Kind)
	}
	for _, d := range g.aggregates {
		fa, okA := a.Functions[d.Name]
		fb, okB := b.Functions[d.Name]
		if !okA || !okB {
			return nil, fmt.Errorf("partial result has no state for aggregate %s", d.Name)
		}
		if err := fa.MergeAggregates(fb); err != nil {
			return nil, fmt.Errorf("aggregate %s: %w", d, err)
		}
	}
	return a, nil
}

func (g *GroupBy) Finalize(groupKey *schema.Record, partial *PartialResult, emit Emitter) error {
	s, err := g.schemas(partial.InputSchema)
	if err != nil {
		return err
	}
	b := schema.NewBuilder(s.output)
	for _, f := range g.groupByFields {
		b.Set(f, groupKey.Get(f))
	}
	for _, d := range g.aggregates {
		b.Set(d.Name, partial.Functions[d.Name].Aggregate())
	}
	out, err := b.Build()
	if err != nil {
		return err
	}
	return emit(out)
}

// Lineage describes how every aggregate output field is derived
func (g *GroupBy) Lineage() []lineage.Operation {
	ops := make([]lineage.Operation, 0, len(g.groupByFields)+len(g.aggregates))
	for _, f := range g.groupByFields {
		ops = append(ops, lineage.NewTransform("Group "+f, "Grouped by field '"+f+"'.", []string{f}, f))
	}
	for _, d := range g.aggregates {
		ops = append(ops, lineage.NewTransform("Group "+d.Name,
			fmt.Sprintf("Aggregate function applied: '%s'.", functions.DisplayName(d.Kind)),
			[]string{d.Field}, d.Name))
	}
	return ops
}

func (g *GroupBy) emitLineage() {
	if g.opts.lineage != nil {
		g.opts.lineage.Record(g.Lineage())
	}
}
