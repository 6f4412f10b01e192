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

	"github.com/rulego/groupreduce/functions"
)

// SyntaxError reports a property value that cannot be parsed
type SyntaxError struct {
	Property string
	Value    string
	Message  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Property, e.Value, e.Message)
}

// ContainsMacro reports whether a property value is resolved at run time
func ContainsMacro(value string) bool {
	return strings.Contains(value, "${")
}

// SplitList splits a comma separated list, trimming blanks and dropping empty items
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitTopLevel splits on sep outside of parentheses and quotes
func splitTopLevel(value string, sep rune) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, c := range value {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == sep && depth == 0:
			parts = append(parts, value[start:i])
			start = i + 1
		}
	}
	return append(parts, value[start:])
}

// ParseAggregate parses one "name:function(field)" entry, optionally followed
// by ":condition(expression)" for conditional functions.
func ParseAggregate(entry string) (functions.Descriptor, error) {
	entry = strings.TrimSpace(entry)
	fail := func(msg string, args ...interface{}) (functions.Descriptor, error) {
		return functions.Descriptor{}, &SyntaxError{Property: "aggregates", Value: entry, Message: fmt.Sprintf(msg, args...)}
	}

	colon := strings.Index(entry, ":")
	if colon <= 0 {
		return fail("expected name:function(field)")
	}
	name := strings.TrimSpace(entry[:colon])
	rest := strings.TrimSpace(entry[colon+1:])

	open := strings.Index(rest, "(")
	if open <= 0 {
		return fail("expected name:function(field)")
	}
	closing := matchingParen(rest, open)
	if closing < 0 {
		return fail("unbalanced parentheses")
	}
	fnName := strings.TrimSpace(rest[:open])
	field := strings.TrimSpace(rest[open+1 : closing])
	if field == "" {
		return fail("function %s has no field", fnName)
	}
	kind, err := functions.ParseKind(fnName)
	if err != nil {
		return fail("unknown function %s", fnName)
	}
	d := functions.Descriptor{Name: name, Kind: kind, Field: field}

	tail := strings.TrimSpace(rest[closing+1:])
	if tail == "" {
		if kind.IsConditional() {
			return fail("function %s requires a condition", fnName)
		}
		return d, nil
	}
	if !strings.HasPrefix(tail, ":") {
		return fail("unexpected text %q", tail)
	}
	cond := strings.TrimSpace(tail[1:])
	const prefix = "condition("
	if len(cond) < len(prefix) || !strings.EqualFold(cond[:len(prefix)], prefix) || !strings.HasSuffix(cond, ")") {
		return fail("expected :condition(expression)")
	}
	if !kind.IsConditional() {
		return fail("function %s does not accept a condition", fnName)
	}
	d.Condition = strings.TrimSpace(cond[len(prefix) : len(cond)-1])
	if d.Condition == "" {
		return fail("empty condition")
	}
	return d, nil
}

func matchingParen(s string, open int) int {
	depth := 0
	var quote rune
	for i, c := range s[open:] {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth == 0 {
				return open + i
			}
		}
	}
	return -1
}

// ParseAggregates parses a comma separated list of aggregate entries
func ParseAggregates(value string) ([]functions.Descriptor, error) {
	var out []functions.Descriptor
	for _, entry := range splitTopLevel(value, ',') {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		d, err := ParseAggregate(entry)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// FormatAggregate renders a descriptor in the text form ParseAggregate reads
func FormatAggregate(d functions.Descriptor) string {
	s := fmt.Sprintf("%s:%s(%s)", d.Name, d.Kind, d.Field)
	if d.Condition != "" {
		s += ":condition(" + d.Condition + ")"
	}
	return s
}
