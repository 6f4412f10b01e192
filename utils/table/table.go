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

// Package table renders reduced records as plain text tables
package table

import (
	"fmt"
	"io"
	"strings"

	"github.com/rulego/groupreduce/schema"
)

const minColumnWidth = 4

// Columns returns the column order of records: the fields of the first
// record schema, then fields only later records carry.
func Columns(records []*schema.Record) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, r := range records {
		if r == nil {
			continue
		}
		for _, name := range r.Schema().FieldNames() {
			if !seen[name] {
				seen[name] = true
				columns = append(columns, name)
			}
		}
	}
	return columns
}

// Write prints records as a table. An empty column order uses Columns.
// Null values are printed as NULL.
func Write(w io.Writer, records []*schema.Record, columnOrder []string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "(0 rows)")
		return err
	}
	columns := columnOrder
	if len(columns) == 0 {
		columns = Columns(records)
	}

	cells := make([][]string, len(records))
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = max(len(col), minColumnWidth)
	}
	for r, record := range records {
		cells[r] = make([]string, len(columns))
		for i, col := range columns {
			cells[r][i] = cell(record, col)
			widths[i] = max(widths[i], len(cells[r][i]))
		}
	}

	var sb strings.Builder
	border(&sb, widths)
	row(&sb, widths, columns)
	border(&sb, widths)
	for _, c := range cells {
		row(&sb, widths, c)
	}
	border(&sb, widths)
	fmt.Fprintf(&sb, "(%d rows)\n", len(records))
	_, err := io.WriteString(w, sb.String())
	return err
}

// Format returns the table Write would print
func Format(records []*schema.Record, columnOrder []string) string {
	var sb strings.Builder
	_ = Write(&sb, records, columnOrder)
	return sb.String()
}

func cell(record *schema.Record, column string) string {
	if record == nil {
		return ""
	}
	v, ok := record.Value(column)
	if !ok {
		return ""
	}
	if v == nil {
		return "NULL"
	}
	if nested, ok := v.(*schema.Record); ok {
		return nested.String()
	}
	return fmt.Sprintf("%v", v)
}

func border(sb *strings.Builder, widths []int) {
	sb.WriteString("+")
	for _, w := range widths {
		sb.WriteString(strings.Repeat("-", w+2))
		sb.WriteString("+")
	}
	sb.WriteString("\n")
}

func row(sb *strings.Builder, widths []int, values []string) {
	sb.WriteString("|")
	for i, v := range values {
		fmt.Fprintf(sb, " %-*s |", widths[i], v)
	}
	sb.WriteString("\n")
}
