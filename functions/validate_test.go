package functions

import (
	"testing"

	"github.com/rulego/groupreduce/failure"
	"github.com/rulego/groupreduce/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookSchema() *schema.Schema {
	address := schema.RecordOf("address",
		schema.NewField("city", schema.Of(schema.String)),
		schema.NewField("zip", schema.Of(schema.String)),
	)
	contact := schema.RecordOf("contact",
		schema.NewField("email", schema.Of(schema.String)),
		schema.NewField("address", schema.NullableOf(address)),
	)
	author := schema.RecordOf("author",
		schema.NewField("name", schema.Of(schema.String)),
		schema.NewField("contact", contact),
	)
	return schema.RecordOf("book",
		schema.NewField("title", schema.Of(schema.String)),
		schema.NewField("price", schema.Of(schema.Double)),
		schema.NewField("author", author),
	)
}

func TestMissingConditionFields_NestedPaths(t *testing.T) {
	s := bookSchema()
	tests := []struct {
		condition string
		missing   []string
	}{
		{"price > 1", nil},
		{"author.name == 'Jan'", nil},
		{"author.contact.email == 'jan@doe.com'", nil},
		{"author.contact.address.city == 'Paris'", nil},
		// a path that skips a level must not validate
		{"author.contact.city == 'Paris'", []string{"author.contact.city"}},
		{"author.address.city == 'Paris'", []string{"author.address.city"}},
		{"author.contact.address.country == 'FR'", []string{"author.contact.address.country"}},
		{"author.contact.address.city.name == 'x'", []string{"author.contact.address.city.name"}},
		{"isbn != nil && price > 2", []string{"isbn"}},
	}
	for _, tt := range tests {
		t.Run(tt.condition, func(t *testing.T) {
			d := Descriptor{Name: "n", Kind: CountIf, Field: Wildcard, Condition: tt.condition}
			missing, err := MissingConditionFields(d, s)
			require.NoError(t, err)
			assert.Equal(t, tt.missing, missing)
		})
	}
}

func TestValidateConditions(t *testing.T) {
	s := bookSchema()
	descriptors := []Descriptor{
		{Name: "a", Kind: SumIf, Field: "price", Condition: "author.contact.address.zip == '75001'"},
		{Name: "b", Kind: SumIf, Field: "price", Condition: "author.contact.zip == '75001'"},
		{Name: "c", Kind: Sum, Field: "price", Condition: "ignored.for.unconditional"},
		{Name: "d", Kind: CountIf, Field: Wildcard, Condition: "price >"},
	}
	collector := failure.NewCollector()
	ValidateConditions(s, descriptors, collector)
	fs := collector.Failures()
	require.Len(t, fs, 2)
	assert.Equal(t, "Field author.contact.zip not found in output schema.", fs[0].Message)
	assert.Equal(t, "author.contact.zip", fs[0].ConfigElement)
	assert.Equal(t, "d:CountIf(*)", fs[1].ConfigElement)

	empty := failure.NewCollector()
	ValidateConditions(nil, descriptors, empty)
	assert.False(t, empty.HasFailures())
}
