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

// Package cast converts record values between the Go representations used
// for schema types and compares them.
package cast

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	spfcast "github.com/spf13/cast"
	"golang.org/x/exp/constraints"
)

// ToFloat64E converts a numeric or decimal value to float64
func ToFloat64E(v interface{}) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, fmt.Errorf("cannot convert null to float64")
	case decimal.Decimal:
		f, _ := x.Float64()
		return f, nil
	case *decimal.Decimal:
		f, _ := x.Float64()
		return f, nil
	}
	return spfcast.ToFloat64E(v)
}

// ToInt64E converts an integral value to int64
func ToInt64E(v interface{}) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("cannot convert null to int64")
	}
	return spfcast.ToInt64E(v)
}

// ToStringE converts a value to its string form
func ToStringE(v interface{}) (string, error) {
	if v == nil {
		return "", fmt.Errorf("cannot convert null to string")
	}
	return spfcast.ToStringE(v)
}

// ToBoolE converts a value to bool
func ToBoolE(v interface{}) (bool, error) {
	if v == nil {
		return false, fmt.Errorf("cannot convert null to bool")
	}
	return spfcast.ToBoolE(v)
}

// ToDecimalE converts a value to an exact decimal
func ToDecimalE(v interface{}) (decimal.Decimal, error) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("cannot convert null to decimal")
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		return *x, nil
	case string:
		return decimal.NewFromString(x)
	case float32:
		return decimal.NewFromFloat32(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	}
	i, err := spfcast.ToInt64E(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("cannot convert %v (%T) to decimal: %w", v, v, err)
	}
	return decimal.NewFromInt(i), nil
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Compare orders two non-null values of the same schema type. Integers, floats
// and decimals compare numerically with each other; strings, booleans (false
// before true) and times compare within their own kind.
func Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("cannot compare null values")
	}
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("cannot compare string with %T", b)
		}
		return compareOrdered(x, y), nil
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, fmt.Errorf("cannot compare bool with %T", b)
		}
		return compareOrdered(boolRank(x), boolRank(y)), nil
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, fmt.Errorf("cannot compare time with %T", b)
		}
		return x.Compare(y), nil
	case decimal.Decimal, *decimal.Decimal:
		return compareDecimal(a, b)
	}
	switch b.(type) {
	case decimal.Decimal, *decimal.Decimal:
		return compareDecimal(a, b)
	}
	if isIntegral(a) && isIntegral(b) {
		x, err := spfcast.ToInt64E(a)
		if err != nil {
			return 0, err
		}
		y, err := spfcast.ToInt64E(b)
		if err != nil {
			return 0, err
		}
		return compareOrdered(x, y), nil
	}
	x, err := spfcast.ToFloat64E(a)
	if err != nil {
		return 0, fmt.Errorf("cannot compare %T: %w", a, err)
	}
	y, err := spfcast.ToFloat64E(b)
	if err != nil {
		return 0, fmt.Errorf("cannot compare %T: %w", b, err)
	}
	return compareOrdered(x, y), nil
}

func compareDecimal(a, b interface{}) (int, error) {
	x, err := ToDecimalE(a)
	if err != nil {
		return 0, err
	}
	y, err := ToDecimalE(b)
	if err != nil {
		return 0, err
	}
	return x.Cmp(y), nil
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isIntegral(v interface{}) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}
