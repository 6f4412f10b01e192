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

// Package relational decides whether a GroupBy or Dedup stage can be
// rewritten as a relational expression and run by an external SQL engine,
// and builds the plan when it can.
//
// Translation is all or nothing: either every aggregate has an expression
// template the engine supports, or the stage runs row wise. Infeasibility
// is reported as a Result, never as an error.
package relational

import (
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Capability is a feature an expression factory may advertise
type Capability uint

const (
	// CanGetQualifiedColumnName means the factory can quote column names for a relation
	CanGetQualifiedColumnName Capability = iota
	// BigQuery enables ordered string aggregation, array aggregation and logical aggregates
	BigQuery
)

var capabilityNames = map[Capability]string{
	CanGetQualifiedColumnName: "CAN_GET_QUALIFIED_COLUMN_NAME",
	BigQuery:                  "BIGQUERY",
}

func (c Capability) String() string {
	if n, ok := capabilityNames[c]; ok {
		return n
	}
	return "UNKNOWN"
}

// Capabilities is an immutable set of capabilities
type Capabilities struct {
	set *bitset.BitSet
}

// NewCapabilities creates a set holding caps
func NewCapabilities(caps ...Capability) Capabilities {
	set := bitset.New(uint(len(capabilityNames)))
	for _, c := range caps {
		set.Set(uint(c))
	}
	return Capabilities{set: set}
}

// Contains reports whether c is in the set
func (s Capabilities) Contains(c Capability) bool {
	return s.set != nil && s.set.Test(uint(c))
}

// ContainsAll reports whether every capability of caps is in the set
func (s Capabilities) ContainsAll(caps ...Capability) bool {
	if len(caps) == 0 {
		return true
	}
	return s.set != nil && s.set.IsSuperSet(NewCapabilities(caps...).set)
}

// With returns a new set holding s and caps
func (s Capabilities) With(caps ...Capability) Capabilities {
	out := NewCapabilities(caps...)
	if s.set != nil {
		out.set.InPlaceUnion(s.set)
	}
	return out
}

// Len returns the number of capabilities in the set
func (s Capabilities) Len() int {
	if s.set == nil {
		return 0
	}
	return int(s.set.Count())
}

func (s Capabilities) String() string {
	var names []string
	if s.set != nil {
		for i, ok := s.set.NextSet(0); ok; i, ok = s.set.NextSet(i + 1) {
			names = append(names, Capability(i).String())
		}
	}
	return "[" + strings.Join(names, ",") + "]"
}
