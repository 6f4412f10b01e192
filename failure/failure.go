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

// Package failure collects configuration failures so that every check of a
// stage runs before the stage is rejected.
package failure

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Failure is a single configuration problem
type Failure struct {
	Message          string
	CorrectiveAction string
	// ConfigProperty is the stage property at fault, e.g. "groupByFields"
	ConfigProperty string
	// ConfigElement narrows the property to one entry, e.g. "amt" in "aggregates"
	ConfigElement string
}

func (f *Failure) Error() string {
	var sb strings.Builder
	sb.WriteString(f.Message)
	if f.CorrectiveAction != "" {
		sb.WriteString(" ")
		sb.WriteString(f.CorrectiveAction)
	}
	switch {
	case f.ConfigProperty != "" && f.ConfigElement != "":
		sb.WriteString(fmt.Sprintf(" [%s: %s]", f.ConfigProperty, f.ConfigElement))
	case f.ConfigProperty != "":
		sb.WriteString(fmt.Sprintf(" [%s]", f.ConfigProperty))
	}
	return sb.String()
}

// WithConfigProperty attributes the failure to a stage property
func (f *Failure) WithConfigProperty(property string) *Failure {
	f.ConfigProperty = property
	return f
}

// WithConfigElement attributes the failure to one element of a list property
func (f *Failure) WithConfigElement(property, element string) *Failure {
	f.ConfigProperty = property
	f.ConfigElement = element
	return f
}

// Collector accumulates failures. Safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	failures []*Failure
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{}
}

// AddFailure records a failure and returns it for attribution
func (c *Collector) AddFailure(message, correctiveAction string) *Failure {
	f := &Failure{Message: message, CorrectiveAction: correctiveAction}
	c.mu.Lock()
	c.failures = append(c.failures, f)
	c.mu.Unlock()
	return f
}

// Merge copies the failures of another collector into c
func (c *Collector) Merge(other *Collector) {
	if other == nil || other == c {
		return
	}
	fs := other.Failures()
	c.mu.Lock()
	c.failures = append(c.failures, fs...)
	c.mu.Unlock()
}

// Failures returns a snapshot of the collected failures in insertion order
func (c *Collector) Failures() []*Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Failure, len(c.failures))
	copy(out, c.failures)
	return out
}

// HasFailures reports whether any failure was collected
func (c *Collector) HasFailures() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.failures) > 0
}

// Err returns every failure as a *multierror.Error, or nil when there are none
func (c *Collector) Err() error {
	var merr *multierror.Error
	for _, f := range c.Failures() {
		merr = multierror.Append(merr, f)
	}
	if merr != nil {
		merr.ErrorFormat = formatFailures
	}
	return merr.ErrorOrNil()
}

func formatFailures(errs []error) string {
	if len(errs) == 1 {
		return fmt.Sprintf("configuration failure: %s", errs[0])
	}
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = fmt.Sprintf("  * %s", err)
	}
	return fmt.Sprintf("%d configuration failures:\n%s", len(errs), strings.Join(lines, "\n"))
}
