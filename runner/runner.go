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

// Package runner is a local host for the reducers: it splits records into
// partitions, combines each split concurrently, shuffles the partial
// results by key hash, merges them and finalizes every group. It is the
// reference for how a distributed engine drives a Reducer.
package runner

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	uuid "github.com/gofrs/uuid"
	"github.com/rulego/groupreduce/aggregator"
	"github.com/rulego/groupreduce/logger"
	"github.com/rulego/groupreduce/schema"
	"golang.org/x/sync/errgroup"
)

// Runner executes a reducer over an in-memory record set
type Runner struct {
	reducer    aggregator.Reducer
	partitions int
	logger     logger.Logger
	stats      *StatsCollector
}

// Option configures a Runner
type Option func(*Runner)

// WithPartitions sets the number of input splits and reduce partitions.
// Values below one are ignored.
func WithPartitions(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.partitions = n
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStats makes the runner count into a shared collector
func WithStats(sc *StatsCollector) Option {
	return func(r *Runner) {
		if sc != nil {
			r.stats = sc
		}
	}
}

// New creates a runner. The default partition count is GOMAXPROCS.
func New(reducer aggregator.Reducer, opts ...Option) *Runner {
	r := &Runner{
		reducer:    reducer,
		partitions: runtime.GOMAXPROCS(0),
		logger:     logger.GetDefault(),
		stats:      NewStatsCollector(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Partitions returns the number of partitions
func (r *Runner) Partitions() int {
	return r.partitions
}

// Stats returns the statistics collector of the runner
func (r *Runner) Stats() *StatsCollector {
	return r.stats
}

// group is the state of one key inside a split or a reduce partition
type group struct {
	id      string
	hash    uint64
	key     *schema.Record
	seq     int
	partial *aggregator.PartialResult
}

type split struct {
	groups map[string]*group
	order  []*group
}

type output struct {
	id     string
	seq    int
	record *schema.Record
}

// ungrouped is implemented by reducers whose records bypass grouping
type ungrouped interface {
	Ungrouped() bool
}

// Run reduces records and returns the output records ordered by group key.
// The first error aborts the run.
func (r *Runner) Run(ctx context.Context, records []*schema.Record) (result []*schema.Record, err error) {
	defer func() {
		r.stats.finishRun(err)
	}()
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("failed to generate run id: %w", err)
	}
	log := r.logger.With("run=" + id.String())
	start := time.Now()
	log.Info("%s run started with %d records and %d partitions", r.reducer.Kind(), len(records), r.partitions)

	splits, err := r.combine(ctx, records)
	if err != nil {
		log.Error("combine failed: %v", err)
		return nil, err
	}
	outputs, err := r.reduce(ctx, splits)
	if err != nil {
		log.Error("reduce failed: %v", err)
		return nil, err
	}

	sort.Slice(outputs, func(i, j int) bool {
		if outputs[i].id != outputs[j].id {
			return outputs[i].id < outputs[j].id
		}
		return outputs[i].seq < outputs[j].seq
	})
	result = make([]*schema.Record, len(outputs))
	for i, o := range outputs {
		result[i] = o.record
	}
	r.stats.addOutput(len(result))
	log.Info("run finished with %d output records in %v", len(result), time.Since(start))
	return result, nil
}

// combine splits records round robin and folds every split concurrently
func (r *Runner) combine(ctx context.Context, records []*schema.Record) ([]*split, error) {
	n := r.partitions
	passThrough := false
	if u, ok := r.reducer.(ungrouped); ok {
		passThrough = u.Ungrouped()
	}

	splits := make([]*split, n)
	g, gctx := errgroup.WithContext(ctx)
	for s := 0; s < n; s++ {
		s := s
		g.Go(func() error {
			out := &split{groups: make(map[string]*group)}
			for i := s; i < len(records); i += n {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := r.fold(out, records[i], i, passThrough); err != nil {
					return err
				}
			}
			splits[s] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return splits, nil
}

func (r *Runner) fold(out *split, record *schema.Record, seq int, passThrough bool) error {
	keyRecord, err := r.reducer.GroupKey(record)
	if err != nil {
		return err
	}
	r.stats.incrementInput()
	var id string
	var hash uint64
	if passThrough {
		hash = xxhash.Sum64String(strconv.Itoa(seq))
	} else {
		key := aggregator.NewKey(keyRecord)
		id = key.String()
		hash = key.Hash()
	}

	if !passThrough {
		if existing, ok := out.groups[id]; ok {
			existing.partial, err = r.reducer.MergeValue(existing.partial, record)
			return err
		}
	}
	partial, err := r.reducer.InitializeAggregateValue(record)
	if err != nil {
		return err
	}
	r.stats.incrementPartials()
	grp := &group{id: id, hash: hash, key: keyRecord, seq: seq, partial: partial}
	if !passThrough {
		out.groups[id] = grp
	}
	out.order = append(out.order, grp)
	return nil
}

// reduce merges the partial results of every reduce partition in split
// order and finalizes the groups
func (r *Runner) reduce(ctx context.Context, splits []*split) ([]output, error) {
	n := uint64(r.partitions)
	var (
		mu      sync.Mutex
		outputs []output
	)
	g, gctx := errgroup.WithContext(ctx)
	for p := uint64(0); p < n; p++ {
		p := p
		g.Go(func() error {
			merged := make(map[string]*group)
			var order []*group
			for _, s := range splits {
				for _, grp := range s.order {
					if grp.hash%n != p {
						continue
					}
					if err := gctx.Err(); err != nil {
						return err
					}
					existing, ok := merged[grp.id]
					if !ok {
						cp := *grp
						if grp.id != "" {
							merged[grp.id] = &cp
						}
						order = append(order, &cp)
						continue
					}
					partial, err := r.reducer.MergePartitions(existing.partial, grp.partial)
					if err != nil {
						return err
					}
					existing.partial = partial
					r.stats.incrementMerges()
					if grp.seq < existing.seq {
						existing.seq = grp.seq
					}
				}
			}

			local := make([]output, 0, len(order))
			for _, grp := range order {
				grp := grp
				err := r.reducer.Finalize(grp.key, grp.partial, func(record *schema.Record) error {
					local = append(local, output{id: grp.id, seq: grp.seq, record: record})
					return nil
				})
				if err != nil {
					return err
				}
			}
			mu.Lock()
			outputs = append(outputs, local...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// IsConfigError reports whether err is a fatal configuration error
func IsConfigError(err error) bool {
	var cfgErr *aggregator.ConfigError
	return errors.As(err, &cfgErr)
}
