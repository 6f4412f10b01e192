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

package groupreduce

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rulego/groupreduce/aggregator"
	"github.com/rulego/groupreduce/config"
	"github.com/rulego/groupreduce/failure"
	"github.com/rulego/groupreduce/functions"
	"github.com/rulego/groupreduce/lineage"
	"github.com/rulego/groupreduce/logger"
	"github.com/rulego/groupreduce/relational"
	"github.com/rulego/groupreduce/runner"
	"github.com/rulego/groupreduce/schema"
)

// ErrPushedDown is returned by Run when the stage was planned for pushdown
var ErrPushedDown = errors.New("stage is pushed down to the relational engine")

// Stage is a configured GroupBy or Dedup stage. It validates its
// configuration, decides once between pushdown and row wise execution and
// can run row wise locally.
type Stage struct {
	kind    aggregator.Kind
	groupBy *config.GroupByConfig
	dedup   *config.DedupConfig
	logger  logger.Logger
	lineage lineage.Recorder
	stats   *runner.StatsCollector

	buildOnce sync.Once
	reducer   aggregator.Reducer
	buildErr  error

	mu        sync.Mutex
	input     *schema.Schema
	output    *schema.Schema
	execution *Execution
}

// NewGroupByStage creates a GroupBy stage
func NewGroupByStage(cfg *config.GroupByConfig, opts ...Option) *Stage {
	if cfg == nil {
		cfg = &config.GroupByConfig{}
	}
	return newStage(aggregator.GroupByKind, cfg, nil, opts)
}

// NewDedupStage creates a Dedup stage
func NewDedupStage(cfg *config.DedupConfig, opts ...Option) *Stage {
	if cfg == nil {
		cfg = &config.DedupConfig{}
	}
	return newStage(aggregator.DedupKind, nil, cfg, opts)
}

func newStage(kind aggregator.Kind, groupBy *config.GroupByConfig, dedup *config.DedupConfig, opts []Option) *Stage {
	s := &Stage{kind: kind, groupBy: groupBy, dedup: dedup, logger: logger.GetDefault(), stats: runner.NewStatsCollector()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(kind.String())
	return s
}

// Kind returns the reducer kind of the stage
func (s *Stage) Kind() aggregator.Kind {
	return s.kind
}

// Reducer builds the reducer from the configuration
func (s *Stage) Reducer() (aggregator.Reducer, error) {
	s.buildOnce.Do(func() {
		s.reducer, s.buildErr = s.buildReducer()
	})
	return s.reducer, s.buildErr
}

func (s *Stage) buildReducer() (aggregator.Reducer, error) {
	opts := []aggregator.Option{aggregator.WithLogger(s.logger)}
	if s.lineage != nil {
		opts = append(opts, aggregator.WithLineage(s.lineage))
	}
	switch s.kind {
	case aggregator.GroupByKind:
		descriptors, err := s.groupBy.Descriptors()
		if err != nil {
			return nil, err
		}
		return aggregator.NewGroupBy(s.groupBy.Fields(), descriptors, opts...), nil
	default:
		op, err := s.dedup.Filter()
		if err != nil {
			return nil, err
		}
		var filter *aggregator.Filter
		if op != nil {
			filter = &aggregator.Filter{Kind: op.Kind, Field: op.Field}
		}
		return aggregator.NewDedup(s.dedup.Fields(), filter, opts...), nil
	}
}

// Configure validates the configuration, against input when it is known,
// and returns the output schema. Every failure is reported in the returned
// error. A nil input defers schema checks to the first record.
func (s *Stage) Configure(input *schema.Schema) (*schema.Schema, error) {
	collector := failure.NewCollector()
	if s.kind == aggregator.GroupByKind {
		s.groupBy.Validate(collector)
	} else {
		s.dedup.Validate(collector)
	}
	if collector.HasFailures() {
		return nil, collector.Err()
	}

	reducer, err := s.Reducer()
	if err != nil {
		collector.AddFailure(err.Error(), "")
		return nil, collector.Err()
	}
	var output *schema.Schema
	switch r := reducer.(type) {
	case *aggregator.GroupBy:
		output = r.Configure(input, collector)
	case *aggregator.Dedup:
		output = r.Configure(input, collector)
	}
	if err := collector.Err(); err != nil {
		s.logger.Warn("configuration has %d failures", len(collector.Failures()))
		return nil, err
	}

	s.mu.Lock()
	s.input = input
	s.output = output
	s.mu.Unlock()
	if output == nil {
		s.logger.Info("input schema unknown, output schema is resolved at run time")
	}
	return output, nil
}

// OutputSchema returns the schema resolved by Configure, nil if unknown
func (s *Stage) OutputSchema() *schema.Schema {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Plan decides between pushdown and row wise execution. The decision is
// taken once; later calls return the same Execution. A nil engine always
// plans row wise.
func (s *Stage) Plan(engine relational.Engine, relation relational.Relation) (*Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.execution != nil {
		return s.execution, nil
	}
	reducer, err := s.Reducer()
	if err != nil {
		return nil, err
	}

	exec, err := s.plan(engine, relation, reducer)
	if err != nil {
		return nil, err
	}
	if exec.Pushdown() {
		s.logger.Info("pushed down to the relational engine")
	} else {
		s.logger.Info("running row wise: %s", exec.Reason())
	}
	s.execution = exec
	return exec, nil
}

func (s *Stage) plan(engine relational.Engine, relation relational.Relation, reducer aggregator.Reducer) (*Execution, error) {
	if engine == nil {
		return rowWise(reducer, "no relational engine"), nil
	}
	switch r := reducer.(type) {
	case *aggregator.GroupBy:
		descriptors := r.Aggregates()
		collector := failure.NewCollector()
		relational.ValidateConditions(s.input, descriptors, collector)
		if err := collector.Err(); err != nil {
			return nil, err
		}
		plan, res := relational.TranslateGroupBy(engine, relation, r.GroupByFields(), descriptors)
		if !res.Feasible {
			return rowWise(reducer, res.Reason), nil
		}
		return &Execution{mode: Pushdown, groupBy: plan, columns: plan.Order}, nil
	case *aggregator.Dedup:
		plan, res := relational.TranslateDedup(engine, relation, r.UniqueFields(), r.Filter())
		if !res.Feasible {
			return rowWise(reducer, res.Reason), nil
		}
		var columns []string
		if relation != nil {
			columns = relation.Columns()
		}
		return &Execution{mode: Pushdown, dedup: plan, columns: columns}, nil
	}
	return nil, fmt.Errorf("unsupported reducer %T", reducer)
}

// Execution returns the planned execution, nil before Plan
func (s *Stage) Execution() *Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execution
}

// Run reduces records locally. It fails with ErrPushedDown when the stage
// was planned for pushdown. Configuration errors found on the first record
// are fatal.
func (s *Stage) Run(ctx context.Context, records []*schema.Record) ([]*schema.Record, error) {
	if exec := s.Execution(); exec != nil && exec.Pushdown() {
		return nil, ErrPushedDown
	}
	reducer, err := s.Reducer()
	if err != nil {
		return nil, err
	}
	opts := []runner.Option{runner.WithLogger(s.logger), runner.WithStats(s.stats)}
	if n := s.partitions(); n != nil {
		opts = append(opts, runner.WithPartitions(*n))
	}
	return runner.New(reducer, opts...).Run(ctx, records)
}

// Stats returns the counters of every local run of the stage
func (s *Stage) Stats() *runner.StatsCollector {
	return s.stats
}

func (s *Stage) partitions() *int {
	if s.kind == aggregator.GroupByKind {
		return s.groupBy.NumPartitions
	}
	return s.dedup.NumPartitions
}

// Descriptors returns the parsed aggregates of a GroupBy stage
func (s *Stage) Descriptors() ([]functions.Descriptor, error) {
	if s.kind != aggregator.GroupByKind {
		return nil, nil
	}
	return s.groupBy.Descriptors()
}
