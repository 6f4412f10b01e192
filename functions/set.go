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
	"reflect"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/rulego/groupreduce/schema"
	"github.com/shopspring/decimal"
)

// valueSet keeps distinct values in first-seen order. Values are bucketed
// by structural hash and compared for equality within a bucket.
type valueSet struct {
	hash  func(v interface{}) (uint64, error)
	index map[uint64][]int
	items []interface{}
}

func newValueSet() *valueSet {
	return &valueSet{hash: hashValue, index: make(map[uint64][]int)}
}

func (s *valueSet) add(v interface{}) error {
	h, err := s.hash(v)
	if err != nil {
		return err
	}
	for _, i := range s.index[h] {
		if sameValue(s.items[i], v) {
			return nil
		}
	}
	s.index[h] = append(s.index[h], len(s.items))
	s.items = append(s.items, v)
	return nil
}

func (s *valueSet) merge(o *valueSet) error {
	for _, v := range o.items {
		if err := s.add(v); err != nil {
			return err
		}
	}
	return nil
}

func (s *valueSet) len() int {
	return len(s.items)
}

// hashValue hashes a record value. Types whose identity lives in unexported
// fields are normalised first.
func hashValue(v interface{}) (uint64, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		v = struct{ Decimal string }{x.String()}
	case time.Time:
		v = struct{ Time int64 }{x.UnixNano()}
	case *schema.Record:
		v = x.AsMap()
	}
	return hashstructure.Hash(v, hashstructure.FormatV2, nil)
}

// sameValue is the equality matching hashValue
func sameValue(a, b interface{}) bool {
	switch x := a.(type) {
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.String() == y.String()
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.UnixNano() == y.UnixNano()
	case *schema.Record:
		y, ok := b.(*schema.Record)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}
