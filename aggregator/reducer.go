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
	"github.com/rulego/groupreduce/functions"
	"github.com/rulego/groupreduce/lineage"
	"github.com/rulego/groupreduce/logger"
	"github.com/rulego/groupreduce/schema"
)

// Kind identifies a reducer
type Kind int

const (
	GroupByKind Kind = iota + 1
	DedupKind
)

func (k Kind) String() string {
	switch k {
	case GroupByKind:
		return "groupby"
	case DedupKind:
		return "dedup"
	default:
		return "unknown"
	}
}

// PartialResult is the accumulated state of one group. GroupBy fills
// Functions, Dedup fills Selected.
type PartialResult struct {
	Kind        Kind
	InputSchema *schema.Schema
	// Functions maps output field names to their accumulators
	Functions map[string]functions.AggregateFunction
	Selected  *schema.Record
}

// Emitter receives finalized output records
type Emitter func(record *schema.Record) error

// Reducer is the contract a distributed executor drives.
type Reducer interface {
	Kind() Kind
	// GroupKey projects the record onto the key fields
	GroupKey(record *schema.Record) (*schema.Record, error)
	// InitializeAggregateValue creates the partial result of a group from its first record
	InitializeAggregateValue(record *schema.Record) (*PartialResult, error)
	// MergeValue folds a record into the partial result
	MergeValue(partial *PartialResult, record *schema.Record) (*PartialResult, error)
	// MergePartitions combines two partial results of the same key; b comes after a
	MergePartitions(a, b *PartialResult) (*PartialResult, error)
	// Finalize emits the output records of a group
	Finalize(groupKey *schema.Record, partial *PartialResult, emit Emitter) error
	// OutputSchema derives the output schema, nil when input is unknown
	OutputSchema(input *schema.Schema) (*schema.Schema, error)
}

// Option configures a reducer
type Option func(*options)

type options struct {
	lineage lineage.Recorder
	logger  logger.Logger
}

// WithLineage records field lineage when the output schema is resolved
func WithLineage(recorder lineage.Recorder) Option {
	return func(o *options) {
		o.lineage = recorder
	}
}

// WithLogger sets the logger, the default logger is used otherwise
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.GetDefault()
	}
	return o
}

// project builds a record of schema s taking each field from record
func project(s *schema.Schema, record *schema.Record) (*schema.Record, error) {
	b := schema.NewBuilder(s)
	for _, f := range s.Fields() {
		b.Set(f.Name, record.Get(f.Name))
	}
	return b.Build()
}
