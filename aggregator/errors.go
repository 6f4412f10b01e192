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
	"fmt"

	"github.com/rulego/groupreduce/failure"
)

// ConfigError is a fatal configuration problem detected while running,
// typically when the input schema is only resolved from the first record.
// It wraps the collected failures, so errors.As can extract a *failure.Failure.
type ConfigError struct {
	Stage    string
	Failures []*failure.Failure
	err      error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %v", e.Stage, e.err)
}

func (e *ConfigError) Unwrap() error {
	return e.err
}

func newConfigError(stage string, collector *failure.Collector) *ConfigError {
	return &ConfigError{Stage: stage, Failures: collector.Failures(), err: collector.Err()}
}

func configErrorf(stage, action, format string, args ...interface{}) *ConfigError {
	collector := failure.NewCollector()
	collector.AddFailure(fmt.Sprintf(format, args...), action)
	return newConfigError(stage, collector)
}
