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

package runner

import "sync/atomic"

// Statistics field names
const (
	RunCount      = "run_count"
	FailedRuns    = "failed_runs"
	InputCount    = "input_count"
	PartialCount  = "partial_count"
	MergeCount    = "merge_count"
	OutputCount   = "output_count"
	ReductionRate = "reduction_rate"
)

// StatsCollector counts records flowing through runs. It is safe for
// concurrent use and may be shared by several runners.
type StatsCollector struct {
	runs     int64
	failed   int64
	input    int64
	partials int64
	merges   int64
	output   int64
}

// NewStatsCollector creates a new statistics collector
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{}
}

func (sc *StatsCollector) incrementInput() {
	atomic.AddInt64(&sc.input, 1)
}

func (sc *StatsCollector) incrementPartials() {
	atomic.AddInt64(&sc.partials, 1)
}

func (sc *StatsCollector) incrementMerges() {
	atomic.AddInt64(&sc.merges, 1)
}

func (sc *StatsCollector) addOutput(n int) {
	atomic.AddInt64(&sc.output, int64(n))
}

func (sc *StatsCollector) finishRun(err error) {
	atomic.AddInt64(&sc.runs, 1)
	if err != nil {
		atomic.AddInt64(&sc.failed, 1)
	}
}

// GetInputCount returns the number of records folded
func (sc *StatsCollector) GetInputCount() int64 {
	return atomic.LoadInt64(&sc.input)
}

// GetOutputCount returns the number of finalized records
func (sc *StatsCollector) GetOutputCount() int64 {
	return atomic.LoadInt64(&sc.output)
}

// Reset resets statistics information
func (sc *StatsCollector) Reset() {
	atomic.StoreInt64(&sc.runs, 0)
	atomic.StoreInt64(&sc.failed, 0)
	atomic.StoreInt64(&sc.input, 0)
	atomic.StoreInt64(&sc.partials, 0)
	atomic.StoreInt64(&sc.merges, 0)
	atomic.StoreInt64(&sc.output, 0)
}

// GetBasicStats returns the counters keyed by field name
func (sc *StatsCollector) GetBasicStats() map[string]int64 {
	return map[string]int64{
		RunCount:     atomic.LoadInt64(&sc.runs),
		FailedRuns:   atomic.LoadInt64(&sc.failed),
		InputCount:   sc.GetInputCount(),
		PartialCount: atomic.LoadInt64(&sc.partials),
		MergeCount:   atomic.LoadInt64(&sc.merges),
		OutputCount:  sc.GetOutputCount(),
	}
}

// GetDetailedStats adds the reduction rate, the percentage of input
// records that did not survive as output records
func (sc *StatsCollector) GetDetailedStats() map[string]interface{} {
	basic := sc.GetBasicStats()
	rate := 0.0
	if basic[InputCount] > 0 {
		rate = float64(basic[InputCount]-basic[OutputCount]) / float64(basic[InputCount]) * 100
	}
	stats := make(map[string]interface{}, len(basic)+1)
	for k, v := range basic {
		stats[k] = v
	}
	stats[ReductionRate] = rate
	return stats
}
