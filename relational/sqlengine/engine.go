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

// Package sqlengine is a string SQL engine for relational pushdown. It
// compiles expression fragments for the ANSI or BigQuery dialect and renders
// pushdown plans as complete statements.
package sqlengine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rulego/groupreduce/logger"
	"github.com/rulego/groupreduce/relational"
	"github.com/xwb1989/sqlparser"
)

// Dialect selects the SQL flavour
type Dialect int

const (
	ANSI Dialect = iota
	BigQuery
)

func (d Dialect) String() string {
	if d == BigQuery {
		return "bigquery"
	}
	return "ansi"
}

// Option configures an Engine
type Option func(*Engine)

// WithQualifiedColumnNames makes the engine quote column names
func WithQualifiedColumnNames() Option {
	return func(e *Engine) {
		e.caps = e.caps.With(relational.CanGetQualifiedColumnName)
	}
}

// WithLogger sets the logger used to report rejected fragments
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine is a relational.Engine producing SQL text
type Engine struct {
	dialect Dialect
	caps    relational.Capabilities
	logger  logger.Logger
}

var _ relational.Engine = (*Engine)(nil)

// New creates an engine. The BigQuery dialect advertises the BigQuery capability.
func New(dialect Dialect, opts ...Option) *Engine {
	e := &Engine{dialect: dialect, caps: relational.NewCapabilities(), logger: logger.GetDefault()}
	if dialect == BigQuery {
		e.caps = e.caps.With(relational.BigQuery)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dialect returns the engine dialect
func (e *Engine) Dialect() Dialect {
	return e.dialect
}

func (e *Engine) ExpressionFactory(caps ...relational.Capability) (relational.ExpressionFactory, bool) {
	if !e.caps.ContainsAll(caps...) {
		e.logger.Debug("%s engine has capabilities %s, %v requested", e.dialect, e.caps, caps)
		return nil, false
	}
	return &factory{engine: e}, true
}

// Expression is a compiled SQL fragment
type Expression string

func (x Expression) Extract() string {
	return string(x)
}

type factory struct {
	engine *Engine
}

func (f *factory) Capabilities() relational.Capabilities {
	return f.engine.caps
}

// Compile validates an ANSI fragment by parsing it as a select expression.
// BigQuery fragments use syntax the parser does not know and are kept as is.
func (f *factory) Compile(sql string) (relational.Expression, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, errors.New("empty expression")
	}
	if f.engine.dialect == ANSI {
		if _, err := sqlparser.Parse("select " + sql + " from t"); err != nil {
			f.engine.logger.Debug("rejected ANSI fragment %q: %v", sql, err)
			return nil, fmt.Errorf("invalid expression %q: %w", sql, err)
		}
	}
	return Expression(sql), nil
}

func (f *factory) QualifiedColumnName(rel relational.Relation, field string) (string, error) {
	if !f.engine.caps.Contains(relational.CanGetQualifiedColumnName) {
		return "", errors.New("qualified column names are not supported")
	}
	for _, c := range rel.Columns() {
		if c == field {
			return pq.QuoteIdentifier(field), nil
		}
	}
	return "", fmt.Errorf("column %s does not exist in relation %s", field, rel.Name())
}

// Table is a named relation with a fixed column list
type Table struct {
	name    string
	columns []string
}

var _ relational.Relation = (*Table)(nil)

// NewTable creates a relation
func NewTable(name string, columns ...string) *Table {
	return &Table{name: name, columns: append([]string(nil), columns...)}
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}
