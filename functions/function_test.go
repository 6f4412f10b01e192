package functions

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rulego/groupreduce/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = schema.RecordOf("sales",
	schema.NewField("amt", schema.NullableOf(schema.Of(schema.Long))),
	schema.NewField("qty", schema.NullableOf(schema.Of(schema.Int))),
	schema.NewField("price", schema.NullableOf(schema.Of(schema.Double))),
	schema.NewField("name", schema.NullableOf(schema.Of(schema.String))),
	schema.NewField("flag", schema.NullableOf(schema.Of(schema.Boolean))),
	schema.NewField("cost", schema.NullableOf(schema.DecimalOf(10, 2))),
	schema.NewField("day", schema.NullableOf(schema.DateSchema())),
	schema.NewField("tags", schema.NullableOf(schema.ArrayOf(schema.Of(schema.String)))),
)

func testRecords(t *testing.T) []*schema.Record {
	rows := []map[string]interface{}{
		{"amt": int64(10), "qty": int32(1), "price": 1.5, "name": "heart", "flag": true, "cost": decimal.RequireFromString("1.10"), "day": int32(19000)},
		{"amt": int64(20), "qty": int32(2), "price": 2.25, "name": "ditch", "flag": true, "cost": decimal.RequireFromString("2.20"), "day": int32(18000)},
		{"amt": nil, "qty": int32(2), "price": nil, "name": nil, "flag": nil, "cost": nil, "day": nil},
		{"amt": int64(5), "qty": int32(3), "price": 7.0, "name": "extent", "flag": false, "cost": decimal.RequireFromString("0.35"), "day": int32(19500)},
		{"amt": int64(20), "qty": int32(5), "price": 0.5, "name": "effective", "flag": true, "cost": decimal.RequireFromString("9.99"), "day": int32(17000)},
		{"amt": int64(-3), "qty": int32(8), "price": 3.75, "name": "absorption", "flag": false, "cost": decimal.RequireFromString("1.10"), "day": int32(19999)},
		{"amt": int64(10), "qty": nil, "price": 3.75, "name": "ditch", "flag": true, "cost": decimal.RequireFromString("4.00"), "day": int32(18500)},
	}
	out := make([]*schema.Record, len(rows))
	for i, row := range rows {
		r, err := schema.FromMap(testSchema, row)
		require.NoError(t, err)
		out[i] = r
	}
	return out
}

func newFn(t *testing.T, d Descriptor) AggregateFunction {
	var fs *schema.Schema
	if d.Field != Wildcard {
		if f := testSchema.Field(d.Field); f != nil {
			fs = f.Schema
		}
	}
	fn, err := NewFunction(d, fs)
	require.NoError(t, err, d.String())
	return fn
}

// fold runs records through a fresh function split at the given cut points,
// merging the partials left to right.
func fold(t *testing.T, d Descriptor, records []*schema.Record, cuts ...int) interface{} {
	bounds := append(append([]int{0}, cuts...), len(records))
	var acc AggregateFunction
	for i := 0; i+1 < len(bounds); i++ {
		part := newFn(t, d)
		for _, r := range records[bounds[i]:bounds[i+1]] {
			require.NoError(t, part.MergeValue(r))
		}
		if acc == nil {
			acc = part
			continue
		}
		require.NoError(t, acc.MergeAggregates(part))
	}
	return acc.Aggregate()
}

func assertSameAggregate(t *testing.T, expected, actual interface{}) {
	switch e := expected.(type) {
	case float64:
		a, ok := actual.(float64)
		require.True(t, ok, "expected float64, got %T", actual)
		assert.InDelta(t, e, a, 1e-9)
	case decimal.Decimal:
		a, ok := actual.(decimal.Decimal)
		require.True(t, ok, "expected decimal, got %T", actual)
		assert.True(t, e.Equal(a), "%s != %s", e, a)
	default:
		assert.Equal(t, expected, actual)
	}
}

func associativityCases() []Descriptor {
	return []Descriptor{
		{Name: "avg", Kind: Avg, Field: "amt"},
		{Name: "avgPrice", Kind: Avg, Field: "price"},
		{Name: "avgCost", Kind: Avg, Field: "cost"},
		{Name: "count", Kind: Count, Field: "amt"},
		{Name: "countAll", Kind: Count, Field: Wildcard},
		{Name: "countDistinct", Kind: CountDistinct, Field: "name"},
		{Name: "first", Kind: First, Field: "name"},
		{Name: "last", Kind: Last, Field: "name"},
		{Name: "any", Kind: Any, Field: "name"},
		{Name: "max", Kind: Max, Field: "amt"},
		{Name: "minDay", Kind: Min, Field: "day"},
		{Name: "maxCost", Kind: Max, Field: "cost"},
		{Name: "stddev", Kind: Stddev, Field: "price"},
		{Name: "sum", Kind: Sum, Field: "amt"},
		{Name: "sumPrice", Kind: Sum, Field: "price"},
		{Name: "sumCost", Kind: Sum, Field: "cost"},
		{Name: "variance", Kind: Variance, Field: "qty"},
		{Name: "list", Kind: CollectList, Field: "name"},
		{Name: "set", Kind: CollectSet, Field: "name"},
		{Name: "longest", Kind: LongestString, Field: "name"},
		{Name: "shortest", Kind: ShortestString, Field: "name"},
		{Name: "nulls", Kind: CountNulls, Field: "price"},
		{Name: "concat", Kind: Concat, Field: "name"},
		{Name: "concatDistinct", Kind: ConcatDistinct, Field: "name"},
		{Name: "and", Kind: LogicalAnd, Field: "flag"},
		{Name: "or", Kind: LogicalOr, Field: "flag"},
		{Name: "css", Kind: CorrectedSumOfSquares, Field: "amt"},
		{Name: "sos", Kind: SumOfSquares, Field: "price"},
		{Name: "countIf", Kind: CountIf, Field: Wildcard, Condition: "amt != nil && amt > 5"},
		{Name: "sumIf", Kind: SumIf, Field: "amt", Condition: "flag == true"},
		{Name: "anyIf", Kind: AnyIf, Field: "name", Condition: "qty != nil && qty > 2"},
		{Name: "setIf", Kind: CollectSetIf, Field: "name", Condition: "is_not_null(price) && price > 1"},
	}
}

func TestAssociativity(t *testing.T) {
	records := testRecords(t)
	splits := [][]int{{1}, {3}, {1, 2, 3, 4, 5, 6}, {2, 5}, {6}}
	for _, d := range associativityCases() {
		t.Run(d.Name, func(t *testing.T) {
			single := fold(t, d, records)
			for _, cuts := range splits {
				assertSameAggregate(t, single, fold(t, d, records, cuts...))
			}
		})
	}
}

func TestExpectedAggregates(t *testing.T) {
	records := testRecords(t)
	tests := []struct {
		d        Descriptor
		expected interface{}
	}{
		{Descriptor{Name: "sum", Kind: Sum, Field: "amt"}, int64(62)},
		{Descriptor{Name: "sumQty", Kind: Sum, Field: "qty"}, int64(21)},
		{Descriptor{Name: "sumCost", Kind: Sum, Field: "cost"}, decimal.RequireFromString("18.74")},
		{Descriptor{Name: "count", Kind: Count, Field: "amt"}, int64(6)},
		{Descriptor{Name: "countAll", Kind: Count, Field: Wildcard}, int64(7)},
		{Descriptor{Name: "countDistinct", Kind: CountDistinct, Field: "name"}, int64(6)},
		{Descriptor{Name: "first", Kind: First, Field: "name"}, "heart"},
		{Descriptor{Name: "last", Kind: Last, Field: "name"}, "ditch"},
		{Descriptor{Name: "max", Kind: Max, Field: "amt"}, int64(20)},
		{Descriptor{Name: "min", Kind: Min, Field: "amt"}, int64(-3)},
		{Descriptor{Name: "minDay", Kind: Min, Field: "day"}, int32(17000)},
		{Descriptor{Name: "maxCost", Kind: Max, Field: "cost"}, decimal.RequireFromString("9.99")},
		{Descriptor{Name: "list", Kind: CollectList, Field: "name"}, []interface{}{"heart", "ditch", "extent", "effective", "absorption", "ditch"}},
		{Descriptor{Name: "set", Kind: CollectSet, Field: "name"}, []interface{}{"heart", "ditch", "extent", "effective", "absorption"}},
		{Descriptor{Name: "longest", Kind: LongestString, Field: "name"}, "absorption"},
		{Descriptor{Name: "shortest", Kind: ShortestString, Field: "name"}, "heart"},
		{Descriptor{Name: "nulls", Kind: CountNulls, Field: "price"}, int64(1)},
		{Descriptor{Name: "concatDistinct", Kind: ConcatDistinct, Field: "name"}, "heart, ditch, extent, effective, absorption"},
		{Descriptor{Name: "and", Kind: LogicalAnd, Field: "flag"}, false},
		{Descriptor{Name: "or", Kind: LogicalOr, Field: "flag"}, true},
		{Descriptor{Name: "sumIf", Kind: SumIf, Field: "amt", Condition: "amt != nil && amt > 10"}, int64(40)},
		{Descriptor{Name: "countIf", Kind: CountIf, Field: "amt", Condition: "qty != nil && qty >= 2"}, int64(4)},
		{Descriptor{Name: "sumIfNullAmt", Kind: SumIf, Field: "amt", Condition: "amt > 10"}, int64(40)},
		{Descriptor{Name: "countIfNullQty", Kind: CountIf, Field: "amt", Condition: "qty >= 2"}, int64(4)},
		{Descriptor{Name: "longestIf", Kind: LongestStringIf, Field: "name", Condition: `name == "absorption"`}, "absorption"},
		{Descriptor{Name: "shortestIf", Kind: ShortestStringIf, Field: "name", Condition: `flag == true`}, "heart"},
	}
	for _, tt := range tests {
		t.Run(tt.d.Name, func(t *testing.T) {
			assertSameAggregate(t, tt.expected, fold(t, tt.d, records))
		})
	}
}

func TestStatisticsMatchOracle(t *testing.T) {
	records := testRecords(t)
	var prices stats.Float64Data
	for _, r := range records {
		if v := r.Get("price"); v != nil {
			prices = append(prices, v.(float64))
		}
	}
	mean, err := stats.Mean(prices)
	require.NoError(t, err)
	pvar, err := stats.PopulationVariance(prices)
	require.NoError(t, err)
	sdev, err := stats.StandardDeviationPopulation(prices)
	require.NoError(t, err)
	sum, err := stats.Sum(prices)
	require.NoError(t, err)

	var sumSq float64
	for _, p := range prices {
		sumSq += p * p
	}

	cuts := []int{2, 4}
	assert.InDelta(t, mean, fold(t, Descriptor{Name: "a", Kind: Avg, Field: "price"}, records, cuts...), 1e-12)
	assert.InDelta(t, pvar, fold(t, Descriptor{Name: "v", Kind: Variance, Field: "price"}, records, cuts...), 1e-12)
	assert.InDelta(t, sdev, fold(t, Descriptor{Name: "s", Kind: Stddev, Field: "price"}, records, cuts...), 1e-12)
	assert.InDelta(t, sumSq, fold(t, Descriptor{Name: "q", Kind: SumOfSquares, Field: "price"}, records, cuts...), 1e-12)
	assert.InDelta(t, sumSq-sum*sum/float64(len(prices)),
		fold(t, Descriptor{Name: "c", Kind: CorrectedSumOfSquares, Field: "price"}, records, cuts...), 1e-9)
}

func TestAverageExactness(t *testing.T) {
	s := schema.RecordOf("r", schema.NewField("v", schema.Of(schema.Long)))
	var records []*schema.Record
	var total int64
	for i := int64(1); i <= 101; i++ {
		records = append(records, schema.NewBuilder(s).Set("v", i*7).MustBuild())
		total += i * 7
	}
	d := Descriptor{Name: "avg", Kind: Avg, Field: "v"}
	expected := float64(total) / 101

	for _, parts := range []int{1, 2, 3, 7, 101} {
		var acc AggregateFunction
		for p := 0; p < parts; p++ {
			fn, err := NewFunction(d, s.Field("v").Schema)
			require.NoError(t, err)
			for i := p; i < len(records); i += parts {
				require.NoError(t, fn.MergeValue(records[i]))
			}
			if acc == nil {
				acc = fn
			} else {
				require.NoError(t, fn.MergeAggregates(acc))
				acc = fn
			}
		}
		assert.Equal(t, expected, acc.Aggregate(), "parts=%d", parts)
	}
}

func TestCountDistinct_BooleanWithNull(t *testing.T) {
	var records []*schema.Record
	for _, v := range []interface{}{true, false, true, nil} {
		r, err := schema.FromMap(testSchema, map[string]interface{}{"flag": v})
		require.NoError(t, err)
		records = append(records, r)
	}
	d := Descriptor{Name: "n", Kind: CountDistinct, Field: "flag"}
	assert.Equal(t, int64(3), fold(t, d, records))
	assert.Equal(t, int64(3), fold(t, d, records, 1, 3))
}

func TestEmptyAggregates(t *testing.T) {
	tests := []struct {
		d        Descriptor
		expected interface{}
	}{
		{Descriptor{Name: "sum", Kind: Sum, Field: "amt"}, nil},
		{Descriptor{Name: "avg", Kind: Avg, Field: "amt"}, nil},
		{Descriptor{Name: "count", Kind: Count, Field: "amt"}, int64(0)},
		{Descriptor{Name: "max", Kind: Max, Field: "amt"}, nil},
		{Descriptor{Name: "var", Kind: Variance, Field: "amt"}, nil},
		{Descriptor{Name: "sos", Kind: SumOfSquares, Field: "amt"}, 0.0},
		{Descriptor{Name: "css", Kind: CorrectedSumOfSquares, Field: "amt"}, 0.0},
		{Descriptor{Name: "list", Kind: CollectList, Field: "amt"}, []interface{}{}},
		{Descriptor{Name: "concat", Kind: Concat, Field: "name"}, nil},
		{Descriptor{Name: "and", Kind: LogicalAnd, Field: "flag"}, true},
		{Descriptor{Name: "or", Kind: LogicalOr, Field: "flag"}, false},
		{Descriptor{Name: "longest", Kind: LongestString, Field: "name"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.d.Name, func(t *testing.T) {
			fn := newFn(t, tt.d)
			assert.Equal(t, tt.expected, fn.Aggregate())
		})
	}
}

func TestOutputSchemas(t *testing.T) {
	tests := []struct {
		d        Descriptor
		expected *schema.Schema
	}{
		{Descriptor{Name: "count", Kind: Count, Field: "name"}, schema.Of(schema.Long)},
		{Descriptor{Name: "countAll", Kind: Count, Field: Wildcard}, schema.Of(schema.Long)},
		{Descriptor{Name: "sumInt", Kind: Sum, Field: "qty"}, schema.NullableOf(schema.Of(schema.Long))},
		{Descriptor{Name: "sumDouble", Kind: Sum, Field: "price"}, schema.NullableOf(schema.Of(schema.Double))},
		{Descriptor{Name: "sumDecimal", Kind: Sum, Field: "cost"}, schema.NullableOf(schema.DecimalOf(38, 2))},
		{Descriptor{Name: "avg", Kind: Avg, Field: "qty"}, schema.NullableOf(schema.Of(schema.Double))},
		{Descriptor{Name: "max", Kind: Max, Field: "day"}, schema.NullableOf(schema.DateSchema())},
		{Descriptor{Name: "list", Kind: CollectList, Field: "name"}, schema.ArrayOf(schema.Of(schema.String))},
		{Descriptor{Name: "sumIf", Kind: SumIf, Field: "amt", Condition: "amt > 1"}, schema.NullableOf(schema.Of(schema.Long))},
		{Descriptor{Name: "and", Kind: LogicalAnd, Field: "flag"}, schema.Of(schema.Boolean)},
		{Descriptor{Name: "concat", Kind: Concat, Field: "amt"}, schema.NullableOf(schema.Of(schema.String))},
	}
	for _, tt := range tests {
		t.Run(tt.d.Name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(newFn(t, tt.d).OutputSchema()), "got %s", newFn(t, tt.d).OutputSchema())
		})
	}
}

func TestNewFunction_ConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		message string
	}{
		{"count distinct on double", Descriptor{Name: "x", Kind: CountDistinct, Field: "price"},
			"Distinct counting is not supported for the field price of type double."},
		{"count distinct on decimal", Descriptor{Name: "x", Kind: CountDistinctIf, Field: "cost", Condition: "true"},
			"Distinct counting is not supported"},
		{"min on string", Descriptor{Name: "x", Kind: Min, Field: "name"}, "Min is not supported"},
		{"max on boolean", Descriptor{Name: "x", Kind: MaxIf, Field: "flag", Condition: "true"}, "Max is not supported"},
		{"sum on string", Descriptor{Name: "x", Kind: Sum, Field: "name"}, "Sum is not supported"},
		{"avg on date", Descriptor{Name: "x", Kind: Avg, Field: "day"}, "Average is not supported"},
		{"variance on string", Descriptor{Name: "x", Kind: Variance, Field: "name"}, "Variance is not supported"},
		{"longest on long", Descriptor{Name: "x", Kind: LongestString, Field: "amt"}, "LongestString is not supported"},
		{"logical on string", Descriptor{Name: "x", Kind: LogicalOr, Field: "name"}, "LogicalOr is not supported"},
		{"missing condition", Descriptor{Name: "x", Kind: SumIf, Field: "amt"}, "requires a condition"},
		{"bad condition", Descriptor{Name: "x", Kind: SumIf, Field: "amt", Condition: "amt >"}, "Invalid condition"},
		{"wildcard sum", Descriptor{Name: "x", Kind: Sum, Field: Wildcard}, "does not support '*'"},
		{"missing field", Descriptor{Name: "x", Kind: Sum, Field: "nope"}, "does not exist in input schema"},
		{"empty field", Descriptor{Name: "x", Kind: Count}, "has no source field"},
		{"unknown kind", Descriptor{Name: "x", Kind: Kind(0), Field: "amt"}, "Unknown aggregate function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fs *schema.Schema
			if f := testSchema.Field(tt.d.Field); f != nil {
				fs = f.Schema
			}
			_, err := NewFunction(tt.d, fs)
			require.Error(t, err)
			var ife *InvalidFunctionError
			require.True(t, errors.As(err, &ife))
			assert.Contains(t, ife.Message, tt.message)
			assert.Equal(t, tt.d, ife.Descriptor)
		})
	}
}

func TestCountDistinct_AllowedTypes(t *testing.T) {
	for _, field := range []string{"name", "qty", "amt", "flag"} {
		_, err := NewFunction(Descriptor{Name: "x", Kind: CountDistinct, Field: field}, testSchema.Field(field).Schema)
		assert.NoError(t, err, field)
	}
}

func TestMergeAggregates_TypeMismatch(t *testing.T) {
	sum := newFn(t, Descriptor{Name: "s", Kind: Sum, Field: "amt"})
	count := newFn(t, Descriptor{Name: "c", Kind: Count, Field: "amt"})
	assert.Error(t, sum.MergeAggregates(count))

	cond := newFn(t, Descriptor{Name: "s", Kind: SumIf, Field: "amt", Condition: "amt > 1"})
	assert.Error(t, cond.MergeAggregates(sum))
}

func TestConditional_EvaluationErrorIsReturned(t *testing.T) {
	fn := newFn(t, Descriptor{Name: "s", Kind: SumIf, Field: "amt", Condition: "name > 3"})
	r, err := schema.FromMap(testSchema, map[string]interface{}{"name": "x", "amt": int64(1)})
	require.NoError(t, err)
	assert.Error(t, fn.MergeValue(r))

	c, ok := fn.(*Conditional)
	require.True(t, ok)
	assert.Equal(t, "name > 3", c.Condition().Expression())
	assert.IsType(t, &SumFunction{}, c.Unwrap())
}

func TestMergeValue_MismatchedValueNeverReachesFunction(t *testing.T) {
	loose := schema.RecordOf("loose", schema.NewField("amt", schema.Of(schema.Long)))
	_, err := schema.NewBuilder(loose).Set("amt", "not a number").Build()
	assert.Error(t, err)

	fn, err := NewFunction(Descriptor{Name: "s", Kind: Sum, Field: "amt"}, loose.Field("amt").Schema)
	require.NoError(t, err)
	require.NoError(t, fn.MergeValue(schema.NewBuilder(loose).Set("amt", 7).MustBuild()))
	assert.Equal(t, int64(7), fn.Aggregate())
}

func TestInitialize_Resets(t *testing.T) {
	records := testRecords(t)
	for _, d := range associativityCases() {
		t.Run(d.Name, func(t *testing.T) {
			fresh := newFn(t, d).Aggregate()
			fn := newFn(t, d)
			for _, r := range records {
				require.NoError(t, fn.MergeValue(r))
			}
			fn.Initialize()
			assert.Equal(t, fresh, fn.Aggregate())
		})
	}
}

func TestCollectSet_TemporalAndDecimalIdentity(t *testing.T) {
	s := schema.RecordOf("r",
		schema.NewField("ts", schema.TimestampSchema()),
		schema.NewField("d", schema.DecimalOf(5, 2)),
	)
	now := time.Unix(1700000000, 0)
	var records []*schema.Record
	for i := 0; i < 4; i++ {
		records = append(records, schema.NewBuilder(s).
			Set("ts", now.Add(time.Duration(i%2)*time.Second)).
			Set("d", decimal.RequireFromString(fmt.Sprintf("1.%d0", i%2))).
			MustBuild())
	}
	ts, err := NewFunction(Descriptor{Name: "t", Kind: CollectSet, Field: "ts"}, s.Field("ts").Schema)
	require.NoError(t, err)
	ds, err := NewFunction(Descriptor{Name: "d", Kind: CollectSet, Field: "d"}, s.Field("d").Schema)
	require.NoError(t, err)
	for _, r := range records {
		require.NoError(t, ts.MergeValue(r))
		require.NoError(t, ds.MergeValue(r))
	}
	assert.Len(t, ts.Aggregate(), 2)
	assert.Len(t, ds.Aggregate(), 2)
}

func TestMomentsStability(t *testing.T) {
	s := schema.RecordOf("r", schema.NewField("v", schema.Of(schema.Double)))
	d := Descriptor{Name: "v", Kind: Variance, Field: "v"}
	a, err := NewFunction(d, s.Field("v").Schema)
	require.NoError(t, err)
	b, err := NewFunction(d, s.Field("v").Schema)
	require.NoError(t, err)
	for i := 0; i < 1000; i++ {
		x := 1e9 + float64(i%10)
		target := a
		if i%3 == 0 {
			target = b
		}
		require.NoError(t, target.MergeValue(schema.NewBuilder(s).Set("v", x).MustBuild()))
	}
	require.NoError(t, a.MergeAggregates(b))
	v := a.Aggregate().(float64)
	assert.False(t, math.IsNaN(v))
	assert.InDelta(t, 8.25, v, 1e-3)
}

func TestValueSet_HashCollisionKeepsDistinctValues(t *testing.T) {
	set := newValueSet()
	set.hash = func(interface{}) (uint64, error) { return 42, nil }
	for _, v := range []interface{}{"a", "b", "a", int64(1), int64(1), decimal.RequireFromString("1.5"), decimal.RequireFromString("1.5")} {
		require.NoError(t, set.add(v))
	}
	assert.Equal(t, []interface{}{"a", "b", int64(1), decimal.RequireFromString("1.5")}, set.items)
	assert.Equal(t, 4, set.len())
}

func TestFactory_SharesCompiledCondition(t *testing.T) {
	f, err := NewFactory(Descriptor{Name: "big", Kind: SumIf, Field: "amt", Condition: "amt > 10"}, testSchema.Field("amt").Schema)
	require.NoError(t, err)
	require.NotNil(t, f.Condition())
	assert.Equal(t, schema.NullableOf(schema.Of(schema.Long)), f.OutputSchema())

	a, b := f.New(), f.New()
	ca, cb := a.(*Conditional), b.(*Conditional)
	assert.Same(t, f.Condition(), ca.Condition())
	assert.Same(t, ca.Condition(), cb.Condition())

	for _, r := range testRecords(t) {
		require.NoError(t, a.MergeValue(r))
	}
	assert.Equal(t, int64(40), a.Aggregate())
	assert.Nil(t, b.Aggregate())

	plain, err := NewFactory(Descriptor{Name: "n", Kind: Count, Field: Wildcard}, nil)
	require.NoError(t, err)
	assert.Nil(t, plain.Condition())
	_, ok := plain.New().(*CountFunction)
	assert.True(t, ok)
}
