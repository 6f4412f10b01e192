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
	"math"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
)

// normalize converts v to the Go type records of s hold:
// Int int32, Long int64, Float float32, Double float64, Boolean bool,
// String string, Bytes []byte, decimals decimal.Decimal, arrays
// []interface{}, maps map[string]interface{} and records *Record. Temporal
// logical types also accept time.Time. Values of another type are rejected.
func normalize(s *Schema, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	s = s.NonNullable()
	if t, ok := v.(time.Time); ok {
		if s.logicalType.IsTemporal() {
			return t, nil
		}
		return nil, mismatch(s, v)
	}
	switch s.typ {
	case Null:
		return nil, mismatch(s, v)
	case Boolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Int:
		if i, ok := toInt64(v); ok {
			if i < math.MinInt32 || i > math.MaxInt32 {
				return nil, fmt.Errorf("value %v overflows int", v)
			}
			return int32(i), nil
		}
	case Long:
		if i, ok := toInt64(v); ok {
			return i, nil
		}
	case Float:
		if f, ok := toFloat64(v); ok {
			return float32(f), nil
		}
	case Double:
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
	case String:
		if str, ok := v.(string); ok {
			return str, nil
		}
	case Bytes:
		if s.logicalType == Decimal {
			if d, ok := v.(decimal.Decimal); ok {
				return d, nil
			}
			break
		}
		if b, ok := v.([]byte); ok {
			return b, nil
		}
	case Array:
		return normalizeArray(s, v)
	case Map:
		return normalizeMap(s, v)
	case RecordType:
		if r, ok := v.(*Record); ok {
			return r, nil
		}
	case Union:
		return v, nil
	}
	return nil, mismatch(s, v)
}

func normalizeArray(s *Schema, v interface{}) (interface{}, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, mismatch(s, v)
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		item, err := normalize(s.component, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = item
	}
	return out, nil
}

func normalizeMap(s *Schema, v interface{}) (interface{}, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, mismatch(s, v)
	}
	out := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		item, err := normalize(s.values, iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", key, err)
		}
		out[key] = item
	}
	return out, nil
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func mismatch(s *Schema, v interface{}) error {
	return fmt.Errorf("value %v of type %T does not match schema %s", v, v, s)
}
