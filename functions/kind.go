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
	"fmt"
	"strings"
)

// Kind identifies an aggregate function
type Kind int

const (
	Avg Kind = iota + 1
	Count
	CountDistinct
	First
	Last
	Max
	Min
	Stddev
	Sum
	Variance
	CollectList
	CollectSet
	LongestString
	ShortestString
	CountNulls
	Concat
	ConcatDistinct
	LogicalAnd
	LogicalOr
	CorrectedSumOfSquares
	SumOfSquares
	Any

	CountIf
	CountDistinctIf
	SumIf
	AvgIf
	MinIf
	MaxIf
	StddevIf
	VarianceIf
	CollectListIf
	CollectSetIf
	LongestStringIf
	ShortestStringIf
	ConcatIf
	ConcatDistinctIf
	LogicalAndIf
	LogicalOrIf
	CorrectedSumOfSquaresIf
	SumOfSquaresIf
	AnyIf
)

type kindInfo struct {
	display  string
	base     Kind
	wildcard bool
}

// kinds is read only after init
var kinds = map[Kind]kindInfo{
	Avg:                     {display: "Avg"},
	Count:                   {display: "Count", wildcard: true},
	CountDistinct:           {display: "CountDistinct"},
	First:                   {display: "First"},
	Last:                    {display: "Last"},
	Max:                     {display: "Max"},
	Min:                     {display: "Min"},
	Stddev:                  {display: "Stddev"},
	Sum:                     {display: "Sum"},
	Variance:                {display: "Variance"},
	CollectList:             {display: "CollectList"},
	CollectSet:              {display: "CollectSet"},
	LongestString:           {display: "LongestString"},
	ShortestString:          {display: "ShortestString"},
	CountNulls:              {display: "CountNulls"},
	Concat:                  {display: "Concat"},
	ConcatDistinct:          {display: "ConcatDistinct"},
	LogicalAnd:              {display: "LogicalAnd"},
	LogicalOr:               {display: "LogicalOr"},
	CorrectedSumOfSquares:   {display: "CorrectedSumOfSquares"},
	SumOfSquares:            {display: "SumOfSquares"},
	Any:                     {display: "Any"},
	CountIf:                 {display: "CountIf", base: Count, wildcard: true},
	CountDistinctIf:         {display: "CountDistinctIf", base: CountDistinct},
	SumIf:                   {display: "SumIf", base: Sum},
	AvgIf:                   {display: "AvgIf", base: Avg},
	MinIf:                   {display: "MinIf", base: Min},
	MaxIf:                   {display: "MaxIf", base: Max},
	StddevIf:                {display: "StddevIf", base: Stddev},
	VarianceIf:              {display: "VarianceIf", base: Variance},
	CollectListIf:           {display: "CollectListIf", base: CollectList},
	CollectSetIf:            {display: "CollectSetIf", base: CollectSet},
	LongestStringIf:         {display: "LongestStringIf", base: LongestString},
	ShortestStringIf:        {display: "ShortestStringIf", base: ShortestString},
	ConcatIf:                {display: "ConcatIf", base: Concat},
	ConcatDistinctIf:        {display: "ConcatDistinctIf", base: ConcatDistinct},
	LogicalAndIf:            {display: "LogicalAndIf", base: LogicalAnd},
	LogicalOrIf:             {display: "LogicalOrIf", base: LogicalOr},
	CorrectedSumOfSquaresIf: {display: "CorrectedSumOfSquaresIf", base: CorrectedSumOfSquares},
	SumOfSquaresIf:          {display: "SumOfSquaresIf", base: SumOfSquares},
	AnyIf:                   {display: "AnyIf", base: Any},
}

// byName maps upper case names to kinds
var byName map[string]Kind

func init() {
	byName = make(map[string]Kind, len(kinds)+1)
	for k, info := range kinds {
		byName[strings.ToUpper(info.display)] = k
	}
	// legacy spelling found in older pipeline configurations
	byName["LONGSETSTRINGIF"] = LongestStringIf
}

// String returns the display name
func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.display
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DisplayName returns the display name of a kind, e.g. "CountDistinct"
func DisplayName(k Kind) string {
	return k.String()
}

// ParseKind looks up a kind by name, ignoring case and underscores
func ParseKind(name string) (Kind, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	if k, ok := byName[key]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("unknown aggregate function %q", name)
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// IsConditional reports whether the kind takes a condition
func (k Kind) IsConditional() bool {
	return kinds[k].base != 0
}

// Base returns the unconditional kind a conditional kind wraps.
// Unconditional kinds return themselves.
func (k Kind) Base() Kind {
	if b := kinds[k].base; b != 0 {
		return b
	}
	return k
}

// AcceptsWildcard reports whether "*" is a valid source field
func (k Kind) AcceptsWildcard() bool {
	return kinds[k].wildcard
}

// Kinds returns every kind in declaration order
func Kinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := Avg; k <= AnyIf; k++ {
		out = append(out, k)
	}
	return out
}
