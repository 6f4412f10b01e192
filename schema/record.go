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

package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Record is an immutable set of values conforming to a record schema.
// A nil value means null; it is distinct from a zero value.
type Record struct {
	schema *Schema
	values []interface{}
}

// Schema returns the record schema
func (r *Record) Schema() *Schema {
	return r.schema
}

// Get returns the value of a field, nil when the field is null or absent
func (r *Record) Get(name string) interface{} {
	v, _ := r.Value(name)
	return v
}

// Value returns the value of a field and whether the field exists in the schema
func (r *Record) Value(name string) (interface{}, bool) {
	idx, ok := r.schema.fieldIndex[name]
	if !ok {
		return nil, false
	}
	return r.values[idx], true
}

// Values returns the values in schema field order
func (r *Record) Values() []interface{} {
	out := make([]interface{}, len(r.values))
	copy(out, r.values)
	return out
}

// AsMap returns the record as a map keyed by field name. Nested records are converted too.
func (r *Record) AsMap() map[string]interface{} {
	m := make(map[string]interface{}, len(r.values))
	for i, f := range r.schema.fields {
		v := r.values[i]
		if nested, ok := v.(*Record); ok && nested != nil {
			v = nested.AsMap()
		}
		m[f.Name] = v
	}
	return m
}

// Equal compares two records structurally: same field order, names and values
func (r *Record) Equal(o *Record) bool {
	if r == o {
		return true
	}
	if r == nil || o == nil || len(r.values) != len(o.values) {
		return false
	}
	for i, f := range r.schema.fields {
		if o.schema.fields[i].Name != f.Name {
			return false
		}
		if !valueEqual(r.values[i], o.values[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b interface{}) bool {
	ra, okA := a.(*Record)
	rb, okB := b.(*Record)
	if okA && okB {
		return ra.Equal(rb)
	}
	return reflect.DeepEqual(a, b)
}

// String renders the record as {name:value,...}
func (r *Record) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, f := range r.schema.fields {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(f.Name)
		sb.WriteString(":")
		sb.WriteString(fmt.Sprintf("%v", r.values[i]))
	}
	sb.WriteString("}")
	return sb.String()
}

// Builder assembles a record for a schema
type Builder struct {
	schema *Schema
	values []interface{}
	err    error
}

// NewBuilder creates a builder for a record schema
func NewBuilder(s *Schema) *Builder {
	b := &Builder{schema: s.NonNullable()}
	if b.schema.typ != RecordType {
		b.err = fmt.Errorf("cannot build a record for non record schema %s", s)
		return b
	}
	b.values = make([]interface{}, len(b.schema.fields))
	return b
}

// Set assigns a field value, converted to the Go type of the field schema.
// Unknown fields and mismatched values are reported by Build.
func (b *Builder) Set(name string, v interface{}) *Builder {
	if b.err != nil {
		return b
	}
	idx, ok := b.schema.fieldIndex[name]
	if !ok {
		b.err = fmt.Errorf("field %s does not exist in schema %s", name, b.schema.name)
		return b
	}
	value, err := normalize(b.schema.fields[idx].Schema, v)
	if err != nil {
		b.err = fmt.Errorf("field %s in schema %s: %w", name, b.schema.name, err)
		return b
	}
	b.values[idx] = value
	return b
}

// Build validates nullability and returns the record
func (b *Builder) Build() (*Record, error) {
	if b.err != nil {
		return nil, b.err
	}
	for i, f := range b.schema.fields {
		if b.values[i] == nil && !f.Schema.IsNullable() && f.Schema.typ != Null {
			return nil, fmt.Errorf("non-nullable field %s in schema %s cannot be null", f.Name, b.schema.name)
		}
	}
	values := make([]interface{}, len(b.values))
	copy(values, b.values)
	return &Record{schema: b.schema, values: values}, nil
}

// MustBuild is like Build but panics on error. Intended for tests and literals.
func (b *Builder) MustBuild() *Record {
	r, err := b.Build()
	if err != nil {
		panic(err)
	}
	return r
}

// FromMap builds a record of schema s from a map keyed by field name. Missing keys are null.
func FromMap(s *Schema, m map[string]interface{}) (*Record, error) {
	b := NewBuilder(s)
	if b.err != nil {
		return nil, b.err
	}
	for k, v := range m {
		b.Set(k, v)
	}
	return b.Build()
}
