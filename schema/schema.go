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

// Package schema provides the record and schema model consumed by the
// aggregation engine. Schemas are immutable once constructed and records
// always conform to exactly one schema.
package schema

import (
	"fmt"
	"strings"
)

// Type is the physical type of a schema
type Type int

const (
	Null Type = iota
	Boolean
	Int
	Long
	Float
	Double
	String
	Bytes
	Array
	Map
	RecordType
	Union
)

// String returns the lower case name of the type
func (t Type) String() string {
	switch t {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	case Array:
		return "array"
	case Map:
		return "map"
	case RecordType:
		return "record"
	case Union:
		return "union"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether the type holds numbers
func (t Type) IsNumeric() bool {
	return t == Int || t == Long || t == Float || t == Double
}

// LogicalType refines a physical type
type LogicalType int

const (
	NoLogicalType LogicalType = iota
	Date
	Timestamp
	Time
	Datetime
	Decimal
)

// String returns the name of the logical type
func (l LogicalType) String() string {
	switch l {
	case Date:
		return "date"
	case Timestamp:
		return "timestamp"
	case Time:
		return "time"
	case Datetime:
		return "datetime"
	case Decimal:
		return "decimal"
	default:
		return ""
	}
}

// IsTemporal reports whether the logical type represents a point or span in time
func (l LogicalType) IsTemporal() bool {
	return l == Date || l == Timestamp || l == Time || l == Datetime
}

// Schema describes the shape of a value. A nullable schema is a union of
// null and exactly one other schema.
type Schema struct {
	typ         Type
	logicalType LogicalType
	precision   int
	scale       int
	name        string
	fields      []*Field
	fieldIndex  map[string]int
	component   *Schema
	values      *Schema
	unionOf     []*Schema
}

// Field is a named member of a record schema
type Field struct {
	Name   string
	Schema *Schema
}

// NewField creates a field
func NewField(name string, s *Schema) *Field {
	return &Field{Name: name, Schema: s}
}

// Of creates a schema of a simple type
func Of(t Type) *Schema {
	return &Schema{typ: t}
}

// NullableOf wraps s into a union with null. Wrapping an already nullable schema returns it unchanged.
func NullableOf(s *Schema) *Schema {
	if s.IsNullable() {
		return s
	}
	return &Schema{typ: Union, unionOf: []*Schema{s, Of(Null)}}
}

// ArrayOf creates an array schema
func ArrayOf(component *Schema) *Schema {
	return &Schema{typ: Array, component: component}
}

// MapOf creates a map schema with string keys
func MapOf(values *Schema) *Schema {
	return &Schema{typ: Map, values: values}
}

// DecimalOf creates a decimal schema backed by bytes
func DecimalOf(precision, scale int) *Schema {
	return &Schema{typ: Bytes, logicalType: Decimal, precision: precision, scale: scale}
}

// DateSchema creates a date schema backed by int days since epoch
func DateSchema() *Schema {
	return &Schema{typ: Int, logicalType: Date}
}

// TimestampSchema creates a timestamp schema backed by long microseconds since epoch
func TimestampSchema() *Schema {
	return &Schema{typ: Long, logicalType: Timestamp}
}

// TimeSchema creates a time schema backed by long microseconds since midnight
func TimeSchema() *Schema {
	return &Schema{typ: Long, logicalType: Time}
}

// DatetimeSchema creates a datetime schema backed by an ISO-8601 string
func DatetimeSchema() *Schema {
	return &Schema{typ: String, logicalType: Datetime}
}

// RecordOf creates a record schema and panics on duplicate field names.
// Use NewRecordSchema when the field list comes from user input.
func RecordOf(name string, fields ...*Field) *Schema {
	s, err := NewRecordSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// NewRecordSchema creates a record schema, rejecting duplicate or empty field names
func NewRecordSchema(name string, fields ...*Field) (*Schema, error) {
	s := &Schema{
		typ:        RecordType,
		name:       name,
		fields:     make([]*Field, 0, len(fields)),
		fieldIndex: make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f == nil || f.Name == "" {
			return nil, fmt.Errorf("record %s: field name cannot be empty", name)
		}
		if _, exists := s.fieldIndex[f.Name]; exists {
			return nil, fmt.Errorf("record %s: duplicate field name %s", name, f.Name)
		}
		s.fieldIndex[f.Name] = len(s.fields)
		s.fields = append(s.fields, &Field{Name: f.Name, Schema: f.Schema})
	}
	return s, nil
}

// Type returns the physical type
func (s *Schema) Type() Type {
	return s.typ
}

// LogicalType returns the logical type, NoLogicalType if none
func (s *Schema) LogicalType() LogicalType {
	return s.logicalType
}

// Precision returns the decimal precision
func (s *Schema) Precision() int {
	return s.precision
}

// Scale returns the decimal scale
func (s *Schema) Scale() int {
	return s.scale
}

// Name returns the record name
func (s *Schema) Name() string {
	return s.name
}

// Component returns the element schema of an array
func (s *Schema) Component() *Schema {
	return s.component
}

// MapValues returns the value schema of a map
func (s *Schema) MapValues() *Schema {
	return s.values
}

// IsNullable reports whether the schema is a union containing null
func (s *Schema) IsNullable() bool {
	if s.typ != Union {
		return false
	}
	for _, u := range s.unionOf {
		if u.typ == Null {
			return true
		}
	}
	return false
}

// NonNullable unwraps a nullable union. Non nullable schemas are returned as is.
func (s *Schema) NonNullable() *Schema {
	if !s.IsNullable() {
		return s
	}
	for _, u := range s.unionOf {
		if u.typ != Null {
			return u
		}
	}
	return s
}

// Fields returns the fields of a record schema in declared order
func (s *Schema) Fields() []*Field {
	return s.fields
}

// FieldNames returns the record field names in declared order
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up a record field by name. Nullable records are unwrapped.
func (s *Schema) Field(name string) *Field {
	rs := s.NonNullable()
	if rs.typ != RecordType {
		return nil
	}
	if idx, ok := rs.fieldIndex[name]; ok {
		return rs.fields[idx]
	}
	return nil
}

// Equal compares two schemas structurally. Record names are ignored.
func (s *Schema) Equal(o *Schema) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if s.typ != o.typ || s.logicalType != o.logicalType || s.precision != o.precision || s.scale != o.scale {
		return false
	}
	switch s.typ {
	case Array:
		return s.component.Equal(o.component)
	case Map:
		return s.values.Equal(o.values)
	case Union:
		if len(s.unionOf) != len(o.unionOf) {
			return false
		}
		for i := range s.unionOf {
			if !s.unionOf[i].Equal(o.unionOf[i]) {
				return false
			}
		}
	case RecordType:
		if len(s.fields) != len(o.fields) {
			return false
		}
		for i := range s.fields {
			if s.fields[i].Name != o.fields[i].Name || !s.fields[i].Schema.Equal(o.fields[i].Schema) {
				return false
			}
		}
	}
	return true
}

// String renders a compact, human readable form of the schema
func (s *Schema) String() string {
	if s == nil {
		return "<nil>"
	}
	switch s.typ {
	case Union:
		parts := make([]string, len(s.unionOf))
		for i, u := range s.unionOf {
			parts[i] = u.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case Array:
		return "array<" + s.component.String() + ">"
	case Map:
		return "map<" + s.values.String() + ">"
	case RecordType:
		parts := make([]string, len(s.fields))
		for i, f := range s.fields {
			parts[i] = f.Name + ":" + f.Schema.String()
		}
		return s.name + "{" + strings.Join(parts, ",") + "}"
	}
	if s.logicalType == Decimal {
		return fmt.Sprintf("decimal(%d,%d)", s.precision, s.scale)
	}
	if s.logicalType != NoLogicalType {
		return s.logicalType.String()
	}
	return s.typ.String()
}
