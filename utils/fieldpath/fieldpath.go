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

// Package fieldpath resolves dotted field paths such as "author.contact.email"
// against schemas and records.
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rulego/groupreduce/schema"
)

// FieldPart represents a single part of field path
type FieldPart struct {
	Name    string // Field name or map key
	Index   int    // Array index when IsIndex is set
	IsIndex bool
}

// String renders the part the way it appears in a path
func (p FieldPart) String() string {
	if p.IsIndex {
		return fmt.Sprintf("[%d]", p.Index)
	}
	return p.Name
}

// FieldAccessError field access error
type FieldAccessError struct {
	Path    string
	Message string
}

func (e *FieldAccessError) Error() string {
	return fmt.Sprintf("field access error for path '%s': %s", e.Path, e.Message)
}

// ParseFieldPath parses field path, supports:
// - a.b.c (nested fields)
// - a.b[0] (array index)
// - a.b["key"] / a.b['key'] (quoted key)
func ParseFieldPath(fieldPath string) ([]FieldPart, error) {
	if strings.TrimSpace(fieldPath) == "" {
		return nil, &FieldAccessError{Path: fieldPath, Message: "empty field path"}
	}
	var parts []FieldPart
	for _, segment := range strings.Split(fieldPath, ".") {
		if segment == "" {
			return nil, &FieldAccessError{Path: fieldPath, Message: "empty path segment"}
		}
		bracket := strings.Index(segment, "[")
		if bracket == -1 {
			parts = append(parts, FieldPart{Name: segment})
			continue
		}
		if bracket > 0 {
			parts = append(parts, FieldPart{Name: segment[:bracket]})
		}
		remaining := segment[bracket:]
		for len(remaining) > 0 {
			if !strings.HasPrefix(remaining, "[") {
				return nil, &FieldAccessError{Path: fieldPath, Message: "unexpected text after bracket"}
			}
			end := strings.Index(remaining, "]")
			if end == -1 {
				return nil, &FieldAccessError{Path: fieldPath, Message: "unmatched bracket in field path"}
			}
			part, err := parseBracketContent(fieldPath, remaining[1:end])
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			remaining = remaining[end+1:]
		}
	}
	return parts, nil
}

func parseBracketContent(path, content string) (FieldPart, error) {
	content = strings.TrimSpace(content)
	if len(content) >= 2 && (content[0] == '\'' || content[0] == '"') && content[len(content)-1] == content[0] {
		return FieldPart{Name: content[1 : len(content)-1]}, nil
	}
	idx, err := strconv.Atoi(content)
	if err != nil {
		return FieldPart{}, &FieldAccessError{Path: path, Message: fmt.Sprintf("invalid index %q", content)}
	}
	return FieldPart{Index: idx, IsIndex: true}, nil
}

// Names converts plain name segments into parts
func Names(names ...string) []FieldPart {
	parts := make([]FieldPart, len(names))
	for i, n := range names {
		parts[i] = FieldPart{Name: n}
	}
	return parts
}

// Join renders parts back to a dotted path
func Join(parts []FieldPart) string {
	var sb strings.Builder
	for i, p := range parts {
		if p.IsIndex {
			sb.WriteString(p.String())
			continue
		}
		if i > 0 {
			sb.WriteString(".")
		}
		sb.WriteString(p.Name)
	}
	return sb.String()
}

// IsNestedField checks if field name contains dots or array indices (nested field)
func IsNestedField(fieldName string) bool {
	return strings.Contains(fieldName, ".") || strings.Contains(fieldName, "[")
}

// ExtractTopLevelField extracts top-level field name from nested field path
func ExtractTopLevelField(fieldPath string) string {
	end := strings.IndexAny(fieldPath, ".[")
	if end > 0 {
		return fieldPath[:end]
	}
	return fieldPath
}

// ResolveSchema walks the whole path through s and returns the schema at its end.
// Nullable wrappers are unwrapped at every level; index parts descend into array
// components and name parts into record fields or map values.
func ResolveSchema(s *schema.Schema, parts []FieldPart) (*schema.Schema, bool) {
	if s == nil || len(parts) == 0 {
		return nil, false
	}
	current := s
	for _, part := range parts {
		current = current.NonNullable()
		switch {
		case part.IsIndex:
			if current.Type() != schema.Array {
				return nil, false
			}
			current = current.Component()
		case current.Type() == schema.RecordType:
			f := current.Field(part.Name)
			if f == nil {
				return nil, false
			}
			current = f.Schema
		case current.Type() == schema.Map:
			current = current.MapValues()
		default:
			return nil, false
		}
	}
	return current, true
}

// ExistsInSchema reports whether every element of the path resolves in s
func ExistsInSchema(s *schema.Schema, parts []FieldPart) bool {
	_, ok := ResolveSchema(s, parts)
	return ok
}

// GetNestedField reads the value at path from a record. Nested values may be
// records, maps or slices.
func GetNestedField(r *schema.Record, parts []FieldPart) (interface{}, bool) {
	if r == nil || len(parts) == 0 {
		return nil, false
	}
	var current interface{} = r
	for _, part := range parts {
		next, ok := accessFieldPart(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func accessFieldPart(data interface{}, part FieldPart) (interface{}, bool) {
	switch v := data.(type) {
	case *schema.Record:
		if v == nil || part.IsIndex {
			return nil, false
		}
		return v.Value(part.Name)
	case map[string]interface{}:
		if part.IsIndex {
			return nil, false
		}
		val, ok := v[part.Name]
		return val, ok
	case []interface{}:
		if !part.IsIndex {
			return nil, false
		}
		idx := part.Index
		if idx < 0 {
			idx = len(v) + idx
		}
		if idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	}
	return nil, false
}
