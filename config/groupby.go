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
	"github.com/tidwall/gjson"
)

const (
	propertyGroupByFields   = "groupByFields"
	propertyAggregates      = "aggregates"
	propertyNumPartitions   = "numPartitions"
	propertyUniqueFields    = "uniqueFields"
	propertyFilterOperation = "filterOperation"
)

// GroupByConfig configures a GroupBy stage
type GroupByConfig struct {
	// GroupByFields is a comma separated list of fields
	GroupByFields string `json:"groupByFields"`
	// Aggregates is a comma separated list of name:function(field) entries
	Aggregates string `json:"aggregates"`
	// NumPartitions is the number of reduce partitions, nil lets the host decide
	NumPartitions *int `json:"numPartitions,omitempty"`
}

// Fields returns the group by fields in order
func (c *GroupByConfig) Fields() []string {
	return SplitList(c.GroupByFields)
}

// Descriptors parses the aggregates
func (c *GroupByConfig) Descriptors() ([]functions.Descriptor, error) {
	return ParseAggregates(c.Aggregates)
}

// Validate adds every problem of the configuration to collector. Macro
// values are skipped.
func (c *GroupByConfig) Validate(collector *failure.Collector) {
	validatePartitions(c.NumPartitions, collector)

	if !ContainsMacro(c.GroupByFields) && len(c.Fields()) == 0 {
		collector.AddFailure("Group by fields must be specified.", "Specify at least one field to group by.").
			WithConfigProperty(propertyGroupByFields)
	}

	if ContainsMacro(c.Aggregates) {
		return
	}
	entries := 0
	for _, entry := range splitTopLevel(c.Aggregates, ',') {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		entries++
		if _, err := ParseAggregate(entry); err != nil {
			msg := err.Error()
			if se, ok := err.(*SyntaxError); ok {
				msg = fmt.Sprintf("Invalid aggregate '%s': %s.", se.Value, se.Message)
			}
			collector.AddFailure(msg, "Aggregates must be specified as name:function(field), with :condition(expression) for conditional functions.").
				WithConfigElement(propertyAggregates, strings.TrimSpace(entry))
		}
	}
	if entries == 0 {
		collector.AddFailure("Aggregates must be specified.", "Specify at least one aggregate.").
			WithConfigProperty(propertyAggregates)
	}
}

func validatePartitions(n *int, collector *failure.Collector) {
	if n != nil && *n < 0 {
		collector.AddFailure("Number of Partitions cannot be less than zero.", "Specify a positive number of partitions or leave it empty.").
			WithConfigProperty(propertyNumPartitions)
	}
}

// GroupByFromJSON reads a GroupBy configuration from JSON. The properties may
// be the root object or nested under "properties". groupByFields may be a
// string or an array; aggregates may be a string or an array of objects with
// name, function, field and condition.
func GroupByFromJSON(raw string) (*GroupByConfig, error) {
	props, err := properties(raw)
	if err != nil {
		return nil, err
	}
	c := &GroupByConfig{GroupByFields: listValue(props.Get(propertyGroupByFields))}

	aggregates := props.Get(propertyAggregates)
	if aggregates.IsArray() {
		var entries []string
		var parseErr error
		aggregates.ForEach(func(_, item gjson.Result) bool {
			if item.Type == gjson.String {
				entries = append(entries, item.String())
				return true
			}
			if !item.IsObject() {
				parseErr = fmt.Errorf("aggregates: expected an object or a string, got %s", item.Raw)
				return false
			}
			entry := fmt.Sprintf("%s:%s(%s)", item.Get("name").String(), item.Get("function").String(), item.Get("field").String())
			if cond := item.Get("condition"); cond.Exists() && cond.String() != "" {
				entry += ":condition(" + cond.String() + ")"
			}
			entries = append(entries, entry)
			return true
		})
		if parseErr != nil {
			return nil, parseErr
		}
		c.Aggregates = strings.Join(entries, ",")
	} else {
		c.Aggregates = aggregates.String()
	}

	c.NumPartitions, err = partitionsValue(props.Get(propertyNumPartitions))
	if err != nil {
		return nil, err
	}
	return c, nil
}

func properties(raw string) (gjson.Result, error) {
	if !gjson.Valid(raw) {
		return gjson.Result{}, fmt.Errorf("invalid JSON configuration")
	}
	root := gjson.Parse(raw)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("configuration must be a JSON object")
	}
	if props := root.Get("properties"); props.IsObject() {
		return props, nil
	}
	return root, nil
}

func listValue(v gjson.Result) string {
	if !v.IsArray() {
		return v.String()
	}
	var items []string
	for _, item := range v.Array() {
		items = append(items, item.String())
	}
	return strings.Join(items, ",")
}

func partitionsValue(v gjson.Result) (*int, error) {
	if !v.Exists() || v.Type == gjson.Null || (v.Type == gjson.String && strings.TrimSpace(v.Str) == "") {
		return nil, nil
	}
	switch v.Type {
	case gjson.Number:
		if v.Num != float64(int64(v.Num)) {
			return nil, fmt.Errorf("numPartitions: %s is not an integer", v.Raw)
		}
	case gjson.String:
		if !gjson.Valid(v.Str) || gjson.Parse(v.Str).Type != gjson.Number {
			return nil, fmt.Errorf("numPartitions: %q is not a number", v.Str)
		}
		v = gjson.Parse(v.Str)
	default:
		return nil, fmt.Errorf("numPartitions: %s is not a number", v.Raw)
	}
	n := int(v.Int())
	return &n, nil
}
