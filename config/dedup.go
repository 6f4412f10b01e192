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

package config

import (
	"fmt"
	"strings"

	"github.com/rulego/groupreduce/failure"
	"github.com/rulego/groupreduce/functions"
)

// DedupConfig configures a Dedup stage
type DedupConfig struct {
	// UniqueFields is a comma separated list of fields
	UniqueFields string `json:"uniqueFields"`
	// FilterOperation selects the surviving record as field:function,
	// e.g. "amt:max". Empty keeps the first record.
	FilterOperation string `json:"filterOperation,omitempty"`
	NumPartitions   *int   `json:"numPartitions,omitempty"`
}

// FilterOperation is a parsed filter
type FilterOperation struct {
	Field string
	Kind  functions.SelectionKind
}

// Fields returns the unique fields in order
func (c *DedupConfig) Fields() []string {
	return SplitList(c.UniqueFields)
}

// Filter parses the filter operation, nil when none is configured
func (c *DedupConfig) Filter() (*FilterOperation, error) {
	value := strings.TrimSpace(c.FilterOperation)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ":")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return nil, &SyntaxError{Property: propertyFilterOperation, Value: value, Message: "expected field:function"}
	}
	kind, err := functions.ParseSelectionKind(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, &SyntaxError{Property: propertyFilterOperation, Value: value, Message: err.Error()}
	}
	return &FilterOperation{Field: strings.TrimSpace(parts[0]), Kind: kind}, nil
}

// Validate adds every problem of the configuration to collector
func (c *DedupConfig) Validate(collector *failure.Collector) {
	validatePartitions(c.NumPartitions, collector)
	if ContainsMacro(c.FilterOperation) {
		return
	}
	if _, err := c.Filter(); err != nil {
		msg := err.Error()
		if se, ok := err.(*SyntaxError); ok {
			msg = fmt.Sprintf("Invalid filter operation '%s': %s.", se.Value, se.Message)
		}
		collector.AddFailure(msg, "Specify the filter as field:function where function is one of ANY, MIN, MAX, FIRST or LAST.").
			WithConfigProperty(propertyFilterOperation)
	}
}

// DedupFromJSON reads a Dedup configuration from JSON, see GroupByFromJSON
func DedupFromJSON(raw string) (*DedupConfig, error) {
	props, err := properties(raw)
	if err != nil {
		return nil, err
	}
	c := &DedupConfig{
		UniqueFields:    listValue(props.Get(propertyUniqueFields)),
		FilterOperation: props.Get(propertyFilterOperation).String(),
	}
	c.NumPartitions, err = partitionsValue(props.Get(propertyNumPartitions))
	if err != nil {
		return nil, err
	}
	return c, nil
}
