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

package functions

import (
	"fmt"
	"strings"

	"github.com/rulego/groupreduce/schema"
	"github.com/rulego/groupreduce/utils/cast"
)

// SelectionKind identifies how deduplication picks between two records
type SelectionKind int

const (
	SelectAny SelectionKind = iota + 1
	SelectMin
	SelectMax
	SelectFirst
	SelectLast
)

var selectionNames = map[SelectionKind]string{
	SelectAny:   "ANY",
	SelectMin:   "MIN",
	SelectMax:   "MAX",
	SelectFirst: "FIRST",
	SelectLast:  "LAST",
}

func (k SelectionKind) String() string {
	if n, ok := selectionNames[k]; ok {
		return n
	}
	return fmt.Sprintf("SelectionKind(%d)", int(k))
}

// ParseSelectionKind parses a selection name, ignoring case
func ParseSelectionKind(name string) (SelectionKind, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for k, n := range selectionNames {
		if n == upper {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown filter function %q", name)
}

// SelectionFunction chooses one of two records
type SelectionFunction interface {
	// Select returns a or b. Ties return a.
	Select(a, b *schema.Record) (*schema.Record, error)
	Kind() SelectionKind
	Field() string
}

// NewSelection validates the field type and creates a selection function.
// Min and Max require a numeric field or a date, time, timestamp, datetime
// or decimal logical type.
func NewSelection(kind SelectionKind, field string, fieldSchema *schema.Schema) (SelectionFunction, error) {
	d := Descriptor{Name: field, Field: field}
	if _, ok := selectionNames[kind]; !ok {
		return nil, invalid(d, "Only ANY, MIN, MAX, FIRST and LAST are supported.", "Unknown filter function %s.", kind)
	}
	if fieldSchema == nil {
		return nil, invalid(d, "", "Invalid filter %s(%s): Field '%s' does not exist in input schema.", kind, field, field)
	}
	if (kind == SelectMin || kind == SelectMax) && !isOrderable(fieldSchema.NonNullable()) {
		return nil, invalid(d, "", "Unsupported filter operation %s(%s): Field has a type that is not supported for deduplication operations.", kind, field)
	}
	return &selector{kind: kind, field: field}, nil
}

type selector struct {
	kind  SelectionKind
	field string
}

func (s *selector) Kind() SelectionKind {
	return s.kind
}

func (s *selector) Field() string {
	return s.field
}

func (s *selector) Select(a, b *schema.Record) (*schema.Record, error) {
	switch s.kind {
	case SelectAny, SelectFirst:
		return a, nil
	case SelectLast:
		return b, nil
	}
	va, vb := a.Get(s.field), b.Get(s.field)
	// null loses against any value
	switch {
	case vb == nil:
		return a, nil
	case va == nil:
		return b, nil
	}
	c, err := cast.Compare(vb, va)
	if err != nil {
		return nil, fmt.Errorf("select %s(%s): %w", s.kind, s.field, err)
	}
	if (s.kind == SelectMax && c > 0) || (s.kind == SelectMin && c < 0) {
		return b, nil
	}
	return a, nil
}
