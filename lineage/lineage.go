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

// Package lineage describes which output fields derive from which input
// fields. Recording lineage never affects computation.
package lineage

import (
	"fmt"
	"strings"
	"sync"
)

// Operation is a field level transform from input fields to output fields
type Operation struct {
	Name        string
	Description string
	Inputs      []string
	Outputs     []string
}

// NewTransform creates an operation
func NewTransform(name, description string, inputs []string, outputs ...string) Operation {
	return Operation{
		Name:        name,
		Description: description,
		Inputs:      append([]string(nil), inputs...),
		Outputs:     append([]string(nil), outputs...),
	}
}

func (o Operation) String() string {
	return fmt.Sprintf("%s(%s -> %s)", o.Name, strings.Join(o.Inputs, ","), strings.Join(o.Outputs, ","))
}

// Recorder receives lineage operations
type Recorder interface {
	Record(ops []Operation)
}

// RecorderFunc adapts a function to Recorder
type RecorderFunc func(ops []Operation)

func (f RecorderFunc) Record(ops []Operation) {
	f(ops)
}

// MemoryRecorder keeps every recorded operation in memory
type MemoryRecorder struct {
	mu  sync.Mutex
	ops []Operation
}

// NewMemoryRecorder creates an empty in-memory recorder
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Record(ops []Operation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, ops...)
}

// Operations returns the recorded operations in order
func (m *MemoryRecorder) Operations() []Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Operation, len(m.ops))
	copy(out, m.ops)
	return out
}

// Outputs indexes the recorded operations by output field
func (m *MemoryRecorder) Outputs() map[string][]Operation {
	idx := make(map[string][]Operation)
	for _, op := range m.Operations() {
		for _, out := range op.Outputs {
			idx[out] = append(idx[out], op)
		}
	}
	return idx
}
