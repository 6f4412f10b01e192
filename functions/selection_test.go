package functions

import (
	"testing"

	"github.com/rulego/groupreduce/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelectionKind(t *testing.T) {
	for in, want := range map[string]SelectionKind{"any": SelectAny, "MIN": SelectMin, " max ": SelectMax, "first": SelectFirst, "Last": SelectLast} {
		k, err := ParseSelectionKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, k)
	}
	_, err := ParseSelectionKind("median")
	assert.Error(t, err)
	assert.Equal(t, "MAX", SelectMax.String())
}

func TestNewSelection_Validation(t *testing.T) {
	tests := []struct {
		name    string
		kind    SelectionKind
		field   string
		wantErr string
	}{
		{"max long", SelectMax, "amt", ""},
		{"min date", SelectMin, "day", ""},
		{"max decimal", SelectMax, "cost", ""},
		{"min double", SelectMin, "price", ""},
		{"any string", SelectAny, "name", ""},
		{"last boolean", SelectLast, "flag", ""},
		{"max string", SelectMax, "name", "not supported for deduplication operations"},
		{"min boolean", SelectMin, "flag", "not supported for deduplication operations"},
		{"missing", SelectMax, "nope", "does not exist in input schema"},
		{"unknown kind", SelectionKind(42), "amt", "Unknown filter function"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fs *schema.Schema
			if f := testSchema.Field(tt.field); f != nil {
				fs = f.Schema
			}
			sel, err := NewSelection(tt.kind, tt.field, fs)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.kind, sel.Kind())
				assert.Equal(t, tt.field, sel.Field())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelection_Select(t *testing.T) {
	rec := func(amt interface{}, id int) *schema.Record {
		r, err := schema.FromMap(testSchema, map[string]interface{}{"amt": amt, "qty": int32(id)})
		require.NoError(t, err)
		return r
	}
	a, b := rec(int64(10), 1), rec(int64(20), 2)
	tie := rec(int64(10), 3)
	null := rec(nil, 4)

	sel := func(k SelectionKind) SelectionFunction {
		s, err := NewSelection(k, "amt", testSchema.Field("amt").Schema)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name     string
		kind     SelectionKind
		x, y     *schema.Record
		expected *schema.Record
	}{
		{"max picks larger", SelectMax, a, b, b},
		{"max picks larger reversed", SelectMax, b, a, b},
		{"min picks smaller", SelectMin, b, a, a},
		{"tie keeps first", SelectMax, a, tie, a},
		{"null loses max", SelectMax, null, a, a},
		{"null loses min", SelectMin, a, null, a},
		{"both null keeps first", SelectMin, null, rec(nil, 5), null},
		{"any keeps first", SelectAny, b, a, b},
		{"first keeps first", SelectFirst, a, b, a},
		{"last keeps second", SelectLast, a, b, b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sel(tt.kind).Select(tt.x, tt.y)
			require.NoError(t, err)
			assert.Same(t, tt.expected, got)
		})
	}
}

func TestSelection_FoldOrderIndependent(t *testing.T) {
	records := testRecords(t)
	s, err := NewSelection(SelectMax, "cost", testSchema.Field("cost").Schema)
	require.NoError(t, err)

	foldAll := func(rs []*schema.Record) *schema.Record {
		acc := rs[0]
		for _, r := range rs[1:] {
			acc, err = s.Select(acc, r)
			require.NoError(t, err)
		}
		return acc
	}
	left := foldAll(records[:3])
	right := foldAll(records[3:])
	merged, err := s.Select(right, left)
	require.NoError(t, err)
	assert.Same(t, foldAll(records), merged)
	assert.True(t, decimal.RequireFromString("9.99").Equal(merged.Get("cost").(decimal.Decimal)))
}

func TestSelection_CompareError(t *testing.T) {
	loose := schema.RecordOf("loose", schema.NewField("v", schema.NullableOf(schema.Of(schema.Long))))
	s, err := NewSelection(SelectMax, "v", loose.Field("v").Schema)
	require.NoError(t, err)
	text := schema.RecordOf("text", schema.NewField("v", schema.Of(schema.String)))
	_, err = s.Select(
		schema.NewBuilder(loose).Set("v", int64(1)).MustBuild(),
		schema.NewBuilder(text).Set("v", "x").MustBuild(),
	)
	assert.Error(t, err)
}
