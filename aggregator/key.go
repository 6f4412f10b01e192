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

package aggregator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rulego/groupreduce/schema"
	"github.com/shopspring/decimal"
)

// KeyExtractor builds group key records from the configured fields, in the
// configured order. The key schema of the last resolved input schema is
// cached and reused for structurally equal inputs.
type KeyExtractor struct {
	fields      []string
	passThrough bool
	name        func(input *schema.Schema) string
	stage       Kind
	cache       atomic.Pointer[resolvedKey]
}

type resolvedKey struct {
	input *schema.Schema
	key   *schema.Schema
}

// NewGroupKeyExtractor creates the extractor of a group by. With no fields
// every record maps to the same empty key.
func NewGroupKeyExtractor(fields []string) *KeyExtractor {
	return &KeyExtractor{
		fields: append([]string(nil), fields...),
		name:   func(*schema.Schema) string { return groupKeySchemaName },
		stage:  GroupByKind,
	}
}

// NewUniqueKeyExtractor creates the extractor of a dedup. With no fields the
// record itself is its key.
func NewUniqueKeyExtractor(fields []string) *KeyExtractor {
	return &KeyExtractor{
		fields:      append([]string(nil), fields...),
		passThrough: len(fields) == 0,
		name:        func(input *schema.Schema) string { return input.Name() + ".unique" },
		stage:       DedupKind,
	}
}

// Fields returns the key fields
func (e *KeyExtractor) Fields() []string {
	return append([]string(nil), e.fields...)
}

// KeySchema returns the key schema for records of input. A missing field is
// a *ConfigError.
func (e *KeyExtractor) KeySchema(input *schema.Schema) (*schema.Schema, error) {
	if e.passThrough {
		return input, nil
	}
	if cached := e.cache.Load(); cached != nil && (cached.input == input || cached.input.Equal(input)) {
		return cached.key, nil
	}
	keyFields := make([]*schema.Field, 0, len(e.fields))
	for _, f := range e.fields {
		field := input.Field(f)
		if field == nil {
			if e.stage == DedupKind {
				return nil, configErrorf(e.stage.String(), "",
					"Failed to groupBy because field %s does not exist in input schema %s.", f, input.Name())
			}
			return nil, configErrorf(e.stage.String(), "",
				"Cannot group by field '%s' because it does not exist in input schema %s", f, input.Name())
		}
		keyFields = append(keyFields, schema.NewField(f, field.Schema))
	}
	s, err := schema.NewRecordSchema(e.name(input), keyFields...)
	if err != nil {
		return nil, err
	}
	e.cache.Store(&resolvedKey{input: input, key: s})
	return s, nil
}

// Extract projects record onto the key fields
func (e *KeyExtractor) Extract(record *schema.Record) (*schema.Record, error) {
	if e.passThrough {
		return record, nil
	}
	s, err := e.KeySchema(record.Schema())
	if err != nil {
		return nil, err
	}
	return project(s, record)
}

// Key wraps a group key record with its canonical encoding. Two keys with
// equal values have equal encodings, so the encoding can index maps and
// route keys to partitions.
type Key struct {
	record  *schema.Record
	encoded string
}

// NewKey encodes a group key record
func NewKey(record *schema.Record) Key {
	var sb strings.Builder
	encodeValue(&sb, record)
	return Key{record: record, encoded: sb.String()}
}

// Record returns the key record
func (k Key) Record() *schema.Record {
	return k.record
}

// String returns the canonical encoding
func (k Key) String() string {
	return k.encoded
}

// Hash returns the xxhash of the canonical encoding
func (k Key) Hash() uint64 {
	return xxhash.Sum64String(k.encoded)
}

// Partition maps the key to one of n partitions
func (k Key) Partition(n int) int {
	if n <= 1 {
		return 0
	}
	return int(k.Hash() % uint64(n))
}

func encodeValue(sb *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case nil:
		sb.WriteString("null")
	case *schema.Record:
		if val == nil {
			sb.WriteString("null")
			return
		}
		sb.WriteString("{")
		for i, f := range val.Schema().Fields() {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(strconv.Quote(f.Name))
			sb.WriteString(":")
			encodeValue(sb, val.Get(f.Name))
		}
		sb.WriteString("}")
	case string:
		sb.WriteString(strconv.Quote(val))
	case []byte:
		sb.WriteString("b")
		sb.WriteString(strconv.Quote(string(val)))
	case decimal.Decimal:
		sb.WriteString("d")
		sb.WriteString(val.String())
	case time.Time:
		sb.WriteString("t")
		sb.WriteString(strconv.FormatInt(val.UnixNano(), 10))
	case []interface{}:
		sb.WriteString("[")
		for i, item := range val {
			if i > 0 {
				sb.WriteString(",")
			}
			encodeValue(sb, item)
		}
		sb.WriteString("]")
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("{")
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(":")
			encodeValue(sb, val[k])
		}
		sb.WriteString("}")
	default:
		sb.WriteString(fmt.Sprintf("%T:%v", val, val))
	}
}
